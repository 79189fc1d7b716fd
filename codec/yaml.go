package codec

import (
	"gopkg.in/yaml.v3"

	dynmig "github.com/reoring/dynmig"
)

// EncodeValueYAML renders a value in the tagged YAML form.
func EncodeValueYAML(v dynmig.DynamicValue) ([]byte, error) {
	return yaml.Marshal(toTree(v))
}

// DecodeValueYAML parses the tagged YAML form.
func DecodeValueYAML(data []byte) (dynmig.DynamicValue, error) {
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, dynmig.Issues{{Path: "/", Code: dynmig.CodeDecodeFailed, Message: "invalid YAML", Cause: err}}
	}
	return fromTree(tree)
}

// EncodeMigrationYAML renders a migration through its self-describing
// DynamicValue form.
func EncodeMigrationYAML(m dynmig.Migration) ([]byte, error) {
	return EncodeValueYAML(dynmig.MigrationToDynamic(m))
}

// DecodeMigrationYAML parses a migration encoded by EncodeMigrationYAML.
func DecodeMigrationYAML(data []byte) (dynmig.Migration, error) {
	v, err := DecodeValueYAML(data)
	if err != nil {
		return dynmig.Migration{}, err
	}
	return dynmig.MigrationFromDynamic(v)
}
