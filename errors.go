package dynmig

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeNotARecord      = "not_a_record"
	CodeNotASequence    = "not_a_sequence"
	CodeNotAMap         = "not_a_map"
	CodeNotAVariant     = "not_a_variant"
	CodeFieldNotFound   = "field_not_found"
	CodeFieldExists     = "field_exists"
	CodeKeyNotFound     = "key_not_found"
	CodeIndexOutOfRange = "index_out_of_range"
	CodeNotSingleField  = "not_single_field"
	CodeCaseMismatch    = "case_mismatch"
	CodeTypeMismatch    = "type_mismatch"
	CodeConversion      = "conversion_error"
	CodeOverflow        = "overflow"
	CodeDivisionByZero  = "division_by_zero"
	CodeNoInput         = "no_input"
	CodeExplicitFail    = "explicit_fail"
	CodeSplitLength     = "split_length_mismatch"
	CodeEmptySequence   = "empty_sequence"
	CodeEmptyMap        = "empty_map"
	CodeMaxDepth        = "max_depth"
	// Serialization and builder passes
	CodeUnknownTag        = "unknown_tag"
	CodeUnresolvedDefault = "unresolved_default"
	// Typed wrapper boundaries (distinguish schema trouble from migration trouble)
	CodeEncodeFailed = "encode_failed"
	CodeDecodeFailed = "decode_failed"
)

// Issue represents a single migration failure entry.
type Issue struct {
	Path    string // Slash-rendered optic path (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, expected shapes, etc.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"field":"email", "got":"Sequence"})
	// for i18n and observability.
	Params map[string]any
}

// Issues is a collection of migration errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. field_not_found at /address/zip
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AsIssues extracts an Issues value from err when possible.
func AsIssues(err error) (Issues, bool) {
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// HasCode reports whether any issue carries the given code.
func (iss Issues) HasCode(code string) bool {
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

// appendIssues flattens err into dst, preserving individual issues when err
// is already an Issues value.
func appendIssues(dst Issues, err error) Issues {
	if err == nil {
		return dst
	}
	if iss, ok := AsIssues(err); ok {
		return append(dst, iss...)
	}
	return append(dst, Issue{Path: "/", Code: CodeConversion, Message: err.Error(), Cause: err})
}
