// Package codec maps DynamicValue trees and serialized migrations to and
// from JSON and YAML bytes. The wire form is a tagged tree: every node is an
// object whose "$type" key names the DynamicValue variant, so decoding is
// unambiguous and primitives survive round trips without number-precision
// surprises (primitive payloads travel in their canonical string form).
package codec

import (
	dynmig "github.com/reoring/dynmig"
)

const typeKey = "$type"

// toTree renders a value as a plain any-tree suitable for JSON or YAML
// marshaling.
func toTree(v dynmig.DynamicValue) any {
	switch t := dynmig.Force(v).(type) {
	case dynmig.Primitive:
		return map[string]any{
			typeKey: "primitive",
			"kind":  t.K.String(),
			"value": dynmig.FormatPrimitive(t),
		}
	case dynmig.Record:
		fields := make([]any, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = map[string]any{"name": f.Name, "value": toTree(f.Value)}
		}
		return map[string]any{typeKey: "record", "fields": fields}
	case dynmig.Variant:
		return map[string]any{typeKey: "variant", "case": t.Case, "value": toTree(t.Value)}
	case dynmig.Sequence:
		elems := make([]any, len(t.Elements))
		for i, e := range t.Elements {
			elems[i] = toTree(e)
		}
		return map[string]any{typeKey: "sequence", "elements": elems}
	case dynmig.MapValue:
		entries := make([]any, len(t.Entries))
		for i, e := range t.Entries {
			entries[i] = map[string]any{"key": toTree(e.Key), "value": toTree(e.Value)}
		}
		return map[string]any{typeKey: "map", "entries": entries}
	case dynmig.Null:
		return map[string]any{typeKey: "null"}
	}
	return map[string]any{typeKey: "null"}
}

// fromTree parses the tagged any-tree back into a value.
func fromTree(n any) (dynmig.DynamicValue, error) {
	obj, ok := asObject(n)
	if !ok {
		return nil, decodeErr("expected an object node")
	}
	tag, _ := obj[typeKey].(string)
	switch tag {
	case "primitive":
		kindName, _ := obj["kind"].(string)
		kind, ok := dynmig.PrimitiveKindFromString(kindName)
		if !ok {
			return nil, decodeErr("unknown primitive kind " + kindName)
		}
		raw, _ := obj["value"].(string)
		p, err := dynmig.ParsePrimitive(kind, raw)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "record":
		items, ok := asList(obj["fields"])
		if !ok {
			return nil, decodeErr("record fields must be a list")
		}
		fields := make([]dynmig.Field, len(items))
		for i, it := range items {
			fo, ok := asObject(it)
			if !ok {
				return nil, decodeErr("record field must be an object")
			}
			name, _ := fo["name"].(string)
			fv, err := fromTree(fo["value"])
			if err != nil {
				return nil, err
			}
			fields[i] = dynmig.F(name, fv)
		}
		return dynmig.NewRecord(fields...), nil
	case "variant":
		caseName, _ := obj["case"].(string)
		pv, err := fromTree(obj["value"])
		if err != nil {
			return nil, err
		}
		return dynmig.NewVariant(caseName, pv), nil
	case "sequence":
		items, ok := asList(obj["elements"])
		if !ok {
			return nil, decodeErr("sequence elements must be a list")
		}
		elems := make([]dynmig.DynamicValue, len(items))
		for i, it := range items {
			ev, err := fromTree(it)
			if err != nil {
				return nil, err
			}
			elems[i] = ev
		}
		return dynmig.NewSequence(elems...), nil
	case "map":
		items, ok := asList(obj["entries"])
		if !ok {
			return nil, decodeErr("map entries must be a list")
		}
		entries := make([]dynmig.MapEntry, len(items))
		for i, it := range items {
			eo, ok := asObject(it)
			if !ok {
				return nil, decodeErr("map entry must be an object")
			}
			kv, err := fromTree(eo["key"])
			if err != nil {
				return nil, err
			}
			vv, err := fromTree(eo["value"])
			if err != nil {
				return nil, err
			}
			entries[i] = dynmig.E(kv, vv)
		}
		return dynmig.NewMap(entries...), nil
	case "null":
		return dynmig.Null{}, nil
	}
	return nil, decodeErr("unknown node tag " + tag)
}

// asObject tolerates both map[string]any (JSON) and map[any]any (YAML v2
// style trees some sources still produce).
func asObject(n any) (map[string]any, bool) {
	switch m := n.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = v
		}
		return out, true
	}
	return nil, false
}

func asList(n any) ([]any, bool) {
	l, ok := n.([]any)
	return l, ok
}

func decodeErr(msg string) error {
	return dynmig.Issues{{Path: "/", Code: dynmig.CodeDecodeFailed, Message: msg}}
}
