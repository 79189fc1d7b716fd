package codec

import (
	"github.com/goccy/go-json"

	dynmig "github.com/reoring/dynmig"
)

// EncodeValueJSON renders a value in the tagged JSON form.
func EncodeValueJSON(v dynmig.DynamicValue) ([]byte, error) {
	return json.MarshalIndent(toTree(v), "", "  ")
}

// DecodeValueJSON parses the tagged JSON form.
func DecodeValueJSON(data []byte) (dynmig.DynamicValue, error) {
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, dynmig.Issues{{Path: "/", Code: dynmig.CodeDecodeFailed, Message: "invalid JSON", Cause: err}}
	}
	return fromTree(tree)
}

// EncodeMigrationJSON renders a migration through its self-describing
// DynamicValue form.
func EncodeMigrationJSON(m dynmig.Migration) ([]byte, error) {
	return EncodeValueJSON(dynmig.MigrationToDynamic(m))
}

// DecodeMigrationJSON parses a migration encoded by EncodeMigrationJSON.
func DecodeMigrationJSON(data []byte) (dynmig.Migration, error) {
	v, err := DecodeValueJSON(data)
	if err != nil {
		return dynmig.Migration{}, err
	}
	return dynmig.MigrationFromDynamic(v)
}
