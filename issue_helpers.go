package dynmig

import (
	"fmt"

	"github.com/reoring/dynmig/i18n"
)

// newIssue builds a single Issue with its message rendered via i18n.
func newIssue(path, code string, params map[string]any) Issue {
	var data map[string]string
	if len(params) > 0 {
		data = make(map[string]string, len(params))
		for k, v := range params {
			data[k] = fmt.Sprint(v)
		}
	}
	return Issue{Path: path, Code: code, Message: i18n.T(code, data), Params: params}
}

// failAt is the common single-issue failure constructor.
func failAt(path, code string, params map[string]any) Issues {
	return Issues{newIssue(path, code, params)}
}
