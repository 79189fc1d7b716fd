package dynmig

import (
	"fmt"
	"strings"
)

// OpticNode is one step of a DynamicOptic path.
type OpticNode interface {
	isOpticNode()
	String() string
}

// FieldNode selects a named field of a Record.
type FieldNode struct{ Name string }

// CaseNode selects the payload of a Variant when its tag matches; a
// mismatching tag is a no-op for writes, never an error.
type CaseNode struct{ Name string }

// AtIndexNode selects a single Sequence element.
type AtIndexNode struct{ Index int }

// AtIndicesNode selects several Sequence elements.
type AtIndicesNode struct{ Indices []int }

// AtMapKeyNode selects the value under one structurally-equal map key.
type AtMapKeyNode struct{ Key DynamicValue }

// AtMapKeysNode selects the values under several map keys.
type AtMapKeysNode struct{ Keys []DynamicValue }

// ElementsNode selects every element of a Sequence.
type ElementsNode struct{}

// MapKeysNode selects every key of a Map.
type MapKeysNode struct{}

// MapValuesNode selects every value of a Map.
type MapValuesNode struct{}

// WrappedNode unwraps the sole field of a single-field Record.
type WrappedNode struct{}

func (FieldNode) isOpticNode()     {}
func (CaseNode) isOpticNode()      {}
func (AtIndexNode) isOpticNode()   {}
func (AtIndicesNode) isOpticNode() {}
func (AtMapKeyNode) isOpticNode()  {}
func (AtMapKeysNode) isOpticNode() {}
func (ElementsNode) isOpticNode()  {}
func (MapKeysNode) isOpticNode()   {}
func (MapValuesNode) isOpticNode() {}
func (WrappedNode) isOpticNode()   {}

func (n FieldNode) String() string   { return "/" + n.Name }
func (n CaseNode) String() string    { return "/case:" + n.Name }
func (n AtIndexNode) String() string { return fmt.Sprintf("/%d", n.Index) }
func (n AtIndicesNode) String() string {
	parts := make([]string, len(n.Indices))
	for i, ix := range n.Indices {
		parts[i] = fmt.Sprintf("%d", ix)
	}
	return "/[" + strings.Join(parts, ",") + "]"
}
func (n AtMapKeyNode) String() string { return "/key:" + describeValue(n.Key) }
func (n AtMapKeysNode) String() string {
	parts := make([]string, len(n.Keys))
	for i, k := range n.Keys {
		parts[i] = describeValue(k)
	}
	return "/keys:[" + strings.Join(parts, ",") + "]"
}
func (ElementsNode) String() string  { return "/*" }
func (MapKeysNode) String() string   { return "/~keys" }
func (MapValuesNode) String() string { return "/~values" }
func (WrappedNode) String() string   { return "/~wrapped" }

// DynamicOptic is an immutable path into a DynamicValue. The zero value is
// the root path.
type DynamicOptic struct {
	nodes []OpticNode
}

// Root is the empty path.
var Root = DynamicOptic{}

// NewOptic builds a path from explicit nodes.
func NewOptic(nodes ...OpticNode) DynamicOptic {
	return DynamicOptic{nodes: nodes}
}

func (o DynamicOptic) push(n OpticNode) DynamicOptic {
	ns := make([]OpticNode, len(o.nodes)+1)
	copy(ns, o.nodes)
	ns[len(o.nodes)] = n
	return DynamicOptic{nodes: ns}
}

// Field appends a record-field step.
func (o DynamicOptic) Field(name string) DynamicOptic { return o.push(FieldNode{Name: name}) }

// CaseOf appends a variant-case step.
func (o DynamicOptic) CaseOf(name string) DynamicOptic { return o.push(CaseNode{Name: name}) }

// At appends a sequence-index step.
func (o DynamicOptic) At(i int) DynamicOptic { return o.push(AtIndexNode{Index: i}) }

// AtIndices appends a multi-index step.
func (o DynamicOptic) AtIndices(ix ...int) DynamicOptic {
	return o.push(AtIndicesNode{Indices: ix})
}

// AtKey appends a map-key step.
func (o DynamicOptic) AtKey(k DynamicValue) DynamicOptic { return o.push(AtMapKeyNode{Key: k}) }

// AtKeys appends a multi-key step.
func (o DynamicOptic) AtKeys(ks ...DynamicValue) DynamicOptic {
	return o.push(AtMapKeysNode{Keys: ks})
}

// Elements appends an all-elements step.
func (o DynamicOptic) Elements() DynamicOptic { return o.push(ElementsNode{}) }

// MapKeys appends an all-keys step.
func (o DynamicOptic) MapKeys() DynamicOptic { return o.push(MapKeysNode{}) }

// MapValues appends an all-values step.
func (o DynamicOptic) MapValues() DynamicOptic { return o.push(MapValuesNode{}) }

// Wrapped appends a single-field-unwrap step.
func (o DynamicOptic) Wrapped() DynamicOptic { return o.push(WrappedNode{}) }

// Prefix re-roots the path under p: p's steps run first.
func (o DynamicOptic) Prefix(p DynamicOptic) DynamicOptic {
	if len(p.nodes) == 0 {
		return o
	}
	ns := make([]OpticNode, 0, len(p.nodes)+len(o.nodes))
	ns = append(ns, p.nodes...)
	ns = append(ns, o.nodes...)
	return DynamicOptic{nodes: ns}
}

// Nodes returns a copy of the path steps.
func (o DynamicOptic) Nodes() []OpticNode {
	ns := make([]OpticNode, len(o.nodes))
	copy(ns, o.nodes)
	return ns
}

// IsRoot reports whether the path is empty.
func (o DynamicOptic) IsRoot() bool { return len(o.nodes) == 0 }

// Equal compares two paths node by node.
func (o DynamicOptic) Equal(p DynamicOptic) bool {
	if len(o.nodes) != len(p.nodes) {
		return false
	}
	for i, n := range o.nodes {
		if !opticNodeEqual(n, p.nodes[i]) {
			return false
		}
	}
	return true
}

func opticNodeEqual(a, b OpticNode) bool {
	switch an := a.(type) {
	case FieldNode:
		bn, ok := b.(FieldNode)
		return ok && an.Name == bn.Name
	case CaseNode:
		bn, ok := b.(CaseNode)
		return ok && an.Name == bn.Name
	case AtIndexNode:
		bn, ok := b.(AtIndexNode)
		return ok && an.Index == bn.Index
	case AtIndicesNode:
		bn, ok := b.(AtIndicesNode)
		if !ok || len(an.Indices) != len(bn.Indices) {
			return false
		}
		for i := range an.Indices {
			if an.Indices[i] != bn.Indices[i] {
				return false
			}
		}
		return true
	case AtMapKeyNode:
		bn, ok := b.(AtMapKeyNode)
		return ok && ValueEqual(an.Key, bn.Key)
	case AtMapKeysNode:
		bn, ok := b.(AtMapKeysNode)
		if !ok || len(an.Keys) != len(bn.Keys) {
			return false
		}
		for i := range an.Keys {
			if !ValueEqual(an.Keys[i], bn.Keys[i]) {
				return false
			}
		}
		return true
	case ElementsNode:
		_, ok := b.(ElementsNode)
		return ok
	case MapKeysNode:
		_, ok := b.(MapKeysNode)
		return ok
	case MapValuesNode:
		_, ok := b.(MapValuesNode)
		return ok
	case WrappedNode:
		_, ok := b.(WrappedNode)
		return ok
	}
	return false
}

// String renders the path in slash form; the root renders as "/".
func (o DynamicOptic) String() string {
	if len(o.nodes) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, n := range o.nodes {
		b.WriteString(n.String())
	}
	return b.String()
}

// ModifyFunc rewrites a located subvalue.
type ModifyFunc func(DynamicValue) (DynamicValue, error)

// Modify applies fn at every target the path designates and returns the
// rebuilt root. Fan-out steps (Elements, AtIndices, AtMapKeys, MapKeys,
// MapValues) aggregate all branch failures into a single Issues value.
func (o DynamicOptic) Modify(root DynamicValue, fn ModifyFunc) (DynamicValue, error) {
	return o.ModifyWith(root, fn, DefaultApplyOpt())
}

// ModifyWith is Modify with explicit options.
func (o DynamicOptic) ModifyWith(root DynamicValue, fn ModifyFunc, opt ApplyOpt) (DynamicValue, error) {
	return modifyAt(root, o.nodes, "", fn, opt.normalized(), 0)
}

// Get reads the subvalue the path designates. Fan-out steps yield a Sequence
// of all designated targets; a mismatched Case step fails with case_mismatch.
func (o DynamicOptic) Get(root DynamicValue) (DynamicValue, error) {
	return o.GetWith(root, DefaultApplyOpt())
}

// GetWith is Get with explicit options.
func (o DynamicOptic) GetWith(root DynamicValue, opt ApplyOpt) (DynamicValue, error) {
	targets, fan, err := getAt(root, o.nodes, "", opt.normalized(), 0)
	if err != nil {
		return nil, err
	}
	if fan {
		return NewSequence(targets...), nil
	}
	return targets[0], nil
}

func pathJoin(base string, n OpticNode) string { return base + n.String() }

func modifyAt(v DynamicValue, nodes []OpticNode, path string, fn ModifyFunc, opt ApplyOpt, depth int) (DynamicValue, error) {
	if depth > opt.MaxDepth {
		return nil, failAt(orRoot(path), CodeMaxDepth, map[string]any{"max": opt.MaxDepth})
	}
	v = Force(v)
	if len(nodes) == 0 {
		return fn(v)
	}
	head, rest := nodes[0], nodes[1:]
	switch n := head.(type) {
	case FieldNode:
		r, ok := v.(Record)
		if !ok {
			return nil, failAt(orRoot(path), CodeNotARecord, map[string]any{"got": v.Kind().String()})
		}
		i := r.IndexOf(n.Name)
		if i < 0 {
			return nil, failAt(pathJoin(path, n), CodeFieldNotFound, map[string]any{"field": n.Name})
		}
		nv, err := modifyAt(r.Fields[i].Value, rest, pathJoin(path, n), fn, opt, depth+1)
		if err != nil {
			return nil, err
		}
		return recordWithValueAt(r, i, nv), nil
	case CaseNode:
		vr, ok := v.(Variant)
		if !ok {
			return nil, failAt(orRoot(path), CodeNotAVariant, map[string]any{"got": v.Kind().String()})
		}
		if vr.Case != n.Name {
			// Wrong branch, not wrong shape: skip.
			return v, nil
		}
		nv, err := modifyAt(vr.Value, rest, pathJoin(path, n), fn, opt, depth+1)
		if err != nil {
			return nil, err
		}
		return NewVariant(vr.Case, nv), nil
	case AtIndexNode:
		s, ok := v.(Sequence)
		if !ok {
			return nil, failAt(orRoot(path), CodeNotASequence, map[string]any{"got": v.Kind().String()})
		}
		if n.Index < 0 || n.Index >= len(s.Elements) {
			return nil, failAt(pathJoin(path, n), CodeIndexOutOfRange, map[string]any{"index": n.Index, "length": len(s.Elements)})
		}
		nv, err := modifyAt(s.Elements[n.Index], rest, pathJoin(path, n), fn, opt, depth+1)
		if err != nil {
			return nil, err
		}
		return sequenceWithElementAt(s, n.Index, nv), nil
	case AtIndicesNode:
		s, ok := v.(Sequence)
		if !ok {
			return nil, failAt(orRoot(path), CodeNotASequence, map[string]any{"got": v.Kind().String()})
		}
		elems := append([]DynamicValue(nil), s.Elements...)
		var all Issues
		for _, ix := range n.Indices {
			p := path + fmt.Sprintf("/%d", ix)
			if ix < 0 || ix >= len(elems) {
				all = append(all, newIssue(p, CodeIndexOutOfRange, map[string]any{"index": ix, "length": len(elems)}))
				continue
			}
			nv, err := modifyAt(elems[ix], rest, p, fn, opt, depth+1)
			if err != nil {
				all = appendIssues(all, err)
				continue
			}
			elems[ix] = nv
		}
		if len(all) > 0 {
			return nil, all
		}
		return NewSequence(elems...), nil
	case AtMapKeyNode:
		m, ok := v.(MapValue)
		if !ok {
			return nil, failAt(orRoot(path), CodeNotAMap, map[string]any{"got": v.Kind().String()})
		}
		entries := append([]MapEntry(nil), m.Entries...)
		found := false
		for i, e := range entries {
			if ValueEqual(e.Key, n.Key) {
				nv, err := modifyAt(e.Value, rest, pathJoin(path, n), fn, opt, depth+1)
				if err != nil {
					return nil, err
				}
				entries[i] = MapEntry{Key: e.Key, Value: nv}
				found = true
				break
			}
		}
		if !found {
			return nil, failAt(pathJoin(path, n), CodeKeyNotFound, map[string]any{"key": describeValue(n.Key)})
		}
		return NewMap(entries...), nil
	case AtMapKeysNode:
		m, ok := v.(MapValue)
		if !ok {
			return nil, failAt(orRoot(path), CodeNotAMap, map[string]any{"got": v.Kind().String()})
		}
		entries := append([]MapEntry(nil), m.Entries...)
		var all Issues
		for _, k := range n.Keys {
			p := path + "/key:" + describeValue(k)
			idx := -1
			for i, e := range entries {
				if ValueEqual(e.Key, k) {
					idx = i
					break
				}
			}
			if idx < 0 {
				all = append(all, newIssue(p, CodeKeyNotFound, map[string]any{"key": describeValue(k)}))
				continue
			}
			nv, err := modifyAt(entries[idx].Value, rest, p, fn, opt, depth+1)
			if err != nil {
				all = appendIssues(all, err)
				continue
			}
			entries[idx] = MapEntry{Key: entries[idx].Key, Value: nv}
		}
		if len(all) > 0 {
			return nil, all
		}
		return NewMap(entries...), nil
	case ElementsNode:
		s, ok := v.(Sequence)
		if !ok {
			return nil, failAt(orRoot(path), CodeNotASequence, map[string]any{"got": v.Kind().String()})
		}
		elems := make([]DynamicValue, len(s.Elements))
		var all Issues
		for i, e := range s.Elements {
			p := path + fmt.Sprintf("/%d", i)
			nv, err := modifyAt(e, rest, p, fn, opt, depth+1)
			if err != nil {
				all = appendIssues(all, err)
				continue
			}
			elems[i] = nv
		}
		if len(all) > 0 {
			return nil, all
		}
		return NewSequence(elems...), nil
	case MapKeysNode:
		m, ok := v.(MapValue)
		if !ok {
			return nil, failAt(orRoot(path), CodeNotAMap, map[string]any{"got": v.Kind().String()})
		}
		entries := make([]MapEntry, len(m.Entries))
		var all Issues
		for i, e := range m.Entries {
			p := path + "/key:" + describeValue(e.Key)
			nk, err := modifyAt(e.Key, rest, p, fn, opt, depth+1)
			if err != nil {
				all = appendIssues(all, err)
				continue
			}
			entries[i] = MapEntry{Key: nk, Value: e.Value}
		}
		if len(all) > 0 {
			return nil, all
		}
		return NewMap(entries...), nil
	case MapValuesNode:
		m, ok := v.(MapValue)
		if !ok {
			return nil, failAt(orRoot(path), CodeNotAMap, map[string]any{"got": v.Kind().String()})
		}
		entries := make([]MapEntry, len(m.Entries))
		var all Issues
		for i, e := range m.Entries {
			p := path + "/key:" + describeValue(e.Key)
			nv, err := modifyAt(e.Value, rest, p, fn, opt, depth+1)
			if err != nil {
				all = appendIssues(all, err)
				continue
			}
			entries[i] = MapEntry{Key: e.Key, Value: nv}
		}
		if len(all) > 0 {
			return nil, all
		}
		return NewMap(entries...), nil
	case WrappedNode:
		r, ok := v.(Record)
		if !ok {
			return nil, failAt(orRoot(path), CodeNotARecord, map[string]any{"got": v.Kind().String()})
		}
		if len(r.Fields) != 1 {
			return nil, failAt(pathJoin(path, n), CodeNotSingleField, map[string]any{"fields": len(r.Fields)})
		}
		nv, err := modifyAt(r.Fields[0].Value, rest, pathJoin(path, n), fn, opt, depth+1)
		if err != nil {
			return nil, err
		}
		return NewRecord(F(r.Fields[0].Name, nv)), nil
	}
	return nil, failAt(orRoot(path), CodeUnknownTag, map[string]any{"node": head.String()})
}

// getAt returns all targets under nodes plus whether any fan-out step was
// crossed (a fan-out read yields a Sequence even for a single target).
func getAt(v DynamicValue, nodes []OpticNode, path string, opt ApplyOpt, depth int) ([]DynamicValue, bool, error) {
	if depth > opt.MaxDepth {
		return nil, false, failAt(orRoot(path), CodeMaxDepth, map[string]any{"max": opt.MaxDepth})
	}
	v = Force(v)
	if len(nodes) == 0 {
		return []DynamicValue{v}, false, nil
	}
	head, rest := nodes[0], nodes[1:]
	single := func(next DynamicValue, n OpticNode) ([]DynamicValue, bool, error) {
		return getAt(next, rest, pathJoin(path, n), opt, depth+1)
	}
	fanOut := func(values []DynamicValue, renderPath func(int) string) ([]DynamicValue, bool, error) {
		var out []DynamicValue
		var all Issues
		for i, e := range values {
			ts, _, err := getAt(e, rest, renderPath(i), opt, depth+1)
			if err != nil {
				all = appendIssues(all, err)
				continue
			}
			out = append(out, ts...)
		}
		if len(all) > 0 {
			return nil, true, all
		}
		return out, true, nil
	}
	switch n := head.(type) {
	case FieldNode:
		r, ok := v.(Record)
		if !ok {
			return nil, false, failAt(orRoot(path), CodeNotARecord, map[string]any{"got": v.Kind().String()})
		}
		fv, ok := r.Get(n.Name)
		if !ok {
			return nil, false, failAt(pathJoin(path, n), CodeFieldNotFound, map[string]any{"field": n.Name})
		}
		return single(fv, n)
	case CaseNode:
		vr, ok := v.(Variant)
		if !ok {
			return nil, false, failAt(orRoot(path), CodeNotAVariant, map[string]any{"got": v.Kind().String()})
		}
		if vr.Case != n.Name {
			return nil, false, failAt(pathJoin(path, n), CodeCaseMismatch, map[string]any{"want": n.Name, "got": vr.Case})
		}
		return single(vr.Value, n)
	case AtIndexNode:
		s, ok := v.(Sequence)
		if !ok {
			return nil, false, failAt(orRoot(path), CodeNotASequence, map[string]any{"got": v.Kind().String()})
		}
		if n.Index < 0 || n.Index >= len(s.Elements) {
			return nil, false, failAt(pathJoin(path, n), CodeIndexOutOfRange, map[string]any{"index": n.Index, "length": len(s.Elements)})
		}
		return single(s.Elements[n.Index], n)
	case AtIndicesNode:
		s, ok := v.(Sequence)
		if !ok {
			return nil, false, failAt(orRoot(path), CodeNotASequence, map[string]any{"got": v.Kind().String()})
		}
		picked := make([]DynamicValue, 0, len(n.Indices))
		var all Issues
		for _, ix := range n.Indices {
			if ix < 0 || ix >= len(s.Elements) {
				all = append(all, newIssue(path+fmt.Sprintf("/%d", ix), CodeIndexOutOfRange, map[string]any{"index": ix, "length": len(s.Elements)}))
				continue
			}
			picked = append(picked, s.Elements[ix])
		}
		if len(all) > 0 {
			return nil, true, all
		}
		return fanOut(picked, func(i int) string { return path + fmt.Sprintf("/%d", n.Indices[i]) })
	case AtMapKeyNode:
		m, ok := v.(MapValue)
		if !ok {
			return nil, false, failAt(orRoot(path), CodeNotAMap, map[string]any{"got": v.Kind().String()})
		}
		mv, ok := m.Get(n.Key)
		if !ok {
			return nil, false, failAt(pathJoin(path, n), CodeKeyNotFound, map[string]any{"key": describeValue(n.Key)})
		}
		return single(mv, n)
	case AtMapKeysNode:
		m, ok := v.(MapValue)
		if !ok {
			return nil, false, failAt(orRoot(path), CodeNotAMap, map[string]any{"got": v.Kind().String()})
		}
		picked := make([]DynamicValue, 0, len(n.Keys))
		var all Issues
		for _, k := range n.Keys {
			mv, ok := m.Get(k)
			if !ok {
				all = append(all, newIssue(path+"/key:"+describeValue(k), CodeKeyNotFound, map[string]any{"key": describeValue(k)}))
				continue
			}
			picked = append(picked, mv)
		}
		if len(all) > 0 {
			return nil, true, all
		}
		return fanOut(picked, func(i int) string { return path + "/key:" + describeValue(n.Keys[i]) })
	case ElementsNode:
		s, ok := v.(Sequence)
		if !ok {
			return nil, false, failAt(orRoot(path), CodeNotASequence, map[string]any{"got": v.Kind().String()})
		}
		return fanOut(s.Elements, func(i int) string { return path + fmt.Sprintf("/%d", i) })
	case MapKeysNode:
		m, ok := v.(MapValue)
		if !ok {
			return nil, false, failAt(orRoot(path), CodeNotAMap, map[string]any{"got": v.Kind().String()})
		}
		keys := make([]DynamicValue, len(m.Entries))
		for i, e := range m.Entries {
			keys[i] = e.Key
		}
		return fanOut(keys, func(i int) string { return path + "/key:" + describeValue(m.Entries[i].Key) })
	case MapValuesNode:
		m, ok := v.(MapValue)
		if !ok {
			return nil, false, failAt(orRoot(path), CodeNotAMap, map[string]any{"got": v.Kind().String()})
		}
		values := make([]DynamicValue, len(m.Entries))
		for i, e := range m.Entries {
			values[i] = e.Value
		}
		return fanOut(values, func(i int) string { return path + "/key:" + describeValue(m.Entries[i].Key) })
	case WrappedNode:
		r, ok := v.(Record)
		if !ok {
			return nil, false, failAt(orRoot(path), CodeNotARecord, map[string]any{"got": v.Kind().String()})
		}
		if len(r.Fields) != 1 {
			return nil, false, failAt(pathJoin(path, n), CodeNotSingleField, map[string]any{"fields": len(r.Fields)})
		}
		return single(r.Fields[0].Value, n)
	}
	return nil, false, failAt(orRoot(path), CodeUnknownTag, map[string]any{"node": head.String()})
}

func orRoot(path string) string {
	if path == "" {
		return "/"
	}
	return path
}

func recordWithValueAt(r Record, i int, v DynamicValue) Record {
	fields := append([]Field(nil), r.Fields...)
	fields[i] = Field{Name: fields[i].Name, Value: v}
	return Record{Fields: fields}
}

func sequenceWithElementAt(s Sequence, i int, v DynamicValue) Sequence {
	elems := append([]DynamicValue(nil), s.Elements...)
	elems[i] = v
	return Sequence{Elements: elems}
}
