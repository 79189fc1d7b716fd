package dynmig

import "fmt"

// applyAction navigates to the action's target path and applies its body,
// splicing the rebuilt subtree into the whole value.
func applyAction(a Action, v DynamicValue, opt ApplyOpt) (DynamicValue, error) {
	at := a.Optic()
	base := at.String()
	switch t := a.(type) {
	case Identity:
		// Still navigates, so a broken path fails even for identity.
		return at.ModifyWith(v, func(cur DynamicValue) (DynamicValue, error) {
			return cur, nil
		}, opt)
	case AddField:
		return at.ModifyWith(v, func(cur DynamicValue) (DynamicValue, error) {
			return applyAddField(t, cur, base, opt)
		}, opt)
	case DropField:
		return at.ModifyWith(v, func(cur DynamicValue) (DynamicValue, error) {
			return applyDropField(t, cur, base)
		}, opt)
	case Rename:
		return at.ModifyWith(v, func(cur DynamicValue) (DynamicValue, error) {
			return applyRename(t, cur, base)
		}, opt)
	case TransformValue:
		return at.ModifyWith(v, func(cur DynamicValue) (DynamicValue, error) {
			return applyFieldTransform(cur, t.Field, t.Forward, base, opt, true)
		}, opt)
	case Mandate:
		return at.ModifyWith(v, func(cur DynamicValue) (DynamicValue, error) {
			return applyMandate(t, cur, base, opt)
		}, opt)
	case Optionalize:
		return at.ModifyWith(v, func(cur DynamicValue) (DynamicValue, error) {
			return applyOptionalize(t, cur, base)
		}, opt)
	case ChangeType:
		return at.ModifyWith(v, func(cur DynamicValue) (DynamicValue, error) {
			return applyFieldTransform(cur, t.Field, t.Converter, base, opt, true)
		}, opt)
	case RenameCase:
		return at.ModifyWith(v, func(cur DynamicValue) (DynamicValue, error) {
			if vr, ok := Force(cur).(Variant); ok && vr.Case == t.From {
				return NewVariant(t.To, vr.Value), nil
			}
			return cur, nil
		}, opt)
	case TransformCase:
		return at.ModifyWith(v, func(cur DynamicValue) (DynamicValue, error) {
			vr, ok := Force(cur).(Variant)
			if !ok || vr.Case != t.Case {
				return cur, nil
			}
			payload, err := Migration{Actions: t.Actions}.ApplyWith(vr.Value, opt)
			if err != nil {
				return nil, err
			}
			return NewVariant(vr.Case, payload), nil
		}, opt)
	case TransformElements:
		return at.ModifyWith(v, func(cur DynamicValue) (DynamicValue, error) {
			return applyTransformElements(t, cur, base, opt)
		}, opt)
	case TransformKeys:
		return at.ModifyWith(v, func(cur DynamicValue) (DynamicValue, error) {
			return applyTransformKeys(t, cur, base, opt)
		}, opt)
	case TransformValues:
		return at.ModifyWith(v, func(cur DynamicValue) (DynamicValue, error) {
			return applyTransformValues(t, cur, base, opt)
		}, opt)
	case Join:
		return at.ModifyWith(v, func(cur DynamicValue) (DynamicValue, error) {
			return applyJoin(t, cur, base, opt)
		}, opt)
	case Split:
		return at.ModifyWith(v, func(cur DynamicValue) (DynamicValue, error) {
			return applySplit(t, cur, base, opt)
		}, opt)
	}
	return nil, failAt(base, CodeUnknownTag, map[string]any{"action": fmt.Sprintf("%T", a)})
}

func requireRecord(v DynamicValue, path string) (Record, error) {
	r, ok := Force(v).(Record)
	if !ok {
		return Record{}, failAt(path, CodeNotARecord, map[string]any{"got": Force(v).Kind().String()})
	}
	return r, nil
}

func applyAddField(t AddField, cur DynamicValue, base string, opt ApplyOpt) (DynamicValue, error) {
	r, err := requireRecord(cur, base)
	if err != nil {
		return nil, err
	}
	if r.IndexOf(t.Name) >= 0 {
		return nil, failAt(base+"/"+t.Name, CodeFieldExists, map[string]any{"field": t.Name})
	}
	in := DynamicValue(r)
	dv, err := evalExpr(t.Default, &in, opt)
	if err != nil {
		return nil, err
	}
	fields := append(append([]Field(nil), r.Fields...), F(t.Name, dv))
	return Record{Fields: fields}, nil
}

func applyDropField(t DropField, cur DynamicValue, base string) (DynamicValue, error) {
	r, err := requireRecord(cur, base)
	if err != nil {
		return nil, err
	}
	i := r.IndexOf(t.Name)
	if i < 0 {
		return r, nil
	}
	fields := make([]Field, 0, len(r.Fields)-1)
	fields = append(fields, r.Fields[:i]...)
	fields = append(fields, r.Fields[i+1:]...)
	return Record{Fields: fields}, nil
}

func applyRename(t Rename, cur DynamicValue, base string) (DynamicValue, error) {
	r, err := requireRecord(cur, base)
	if err != nil {
		return nil, err
	}
	i := r.IndexOf(t.From)
	if i < 0 {
		return r, nil
	}
	if t.To != t.From && r.IndexOf(t.To) >= 0 {
		return nil, failAt(base+"/"+t.To, CodeFieldExists, map[string]any{"field": t.To})
	}
	fields := append([]Field(nil), r.Fields...)
	fields[i] = F(t.To, fields[i].Value)
	return Record{Fields: fields}, nil
}

// applyFieldTransform rewrites one field through an expression, failing when
// the field is missing (required=true).
func applyFieldTransform(cur DynamicValue, name string, e Expr, base string, opt ApplyOpt, required bool) (DynamicValue, error) {
	r, err := requireRecord(cur, base)
	if err != nil {
		return nil, err
	}
	i := r.IndexOf(name)
	if i < 0 {
		if required {
			return nil, failAt(base+"/"+name, CodeFieldNotFound, map[string]any{"field": name})
		}
		return r, nil
	}
	in := r.Fields[i].Value
	nv, err := evalExpr(e, &in, opt)
	if err != nil {
		return nil, err
	}
	return recordWithValueAt(r, i, nv), nil
}

func applyMandate(t Mandate, cur DynamicValue, base string, opt ApplyOpt) (DynamicValue, error) {
	r, err := requireRecord(cur, base)
	if err != nil {
		return nil, err
	}
	i := r.IndexOf(t.Field)
	if i < 0 {
		return r, nil
	}
	payload, isSome, isOpt := asOption(r.Fields[i].Value)
	if !isOpt {
		return r, nil
	}
	if isSome {
		return recordWithValueAt(r, i, payload), nil
	}
	in := DynamicValue(r)
	dv, err := evalExpr(t.Default, &in, opt)
	if err != nil {
		return nil, err
	}
	return recordWithValueAt(r, i, dv), nil
}

func applyOptionalize(t Optionalize, cur DynamicValue, base string) (DynamicValue, error) {
	r, err := requireRecord(cur, base)
	if err != nil {
		return nil, err
	}
	i := r.IndexOf(t.Field)
	if i < 0 {
		return r, nil
	}
	return recordWithValueAt(r, i, Some(r.Fields[i].Value)), nil
}

func applyTransformElements(t TransformElements, cur DynamicValue, base string, opt ApplyOpt) (DynamicValue, error) {
	s, ok := Force(cur).(Sequence)
	if !ok {
		return nil, failAt(base, CodeNotASequence, map[string]any{"got": Force(cur).Kind().String()})
	}
	elems := make([]DynamicValue, len(s.Elements))
	var all Issues
	for i, e := range s.Elements {
		in := e
		nv, err := evalExpr(t.Forward, &in, opt)
		if err != nil {
			all = appendIssues(all, prefixIssuePaths(err, fmt.Sprintf("%s/%d", base, i)))
			continue
		}
		elems[i] = nv
	}
	if len(all) > 0 {
		return nil, all
	}
	return NewSequence(elems...), nil
}

func applyTransformKeys(t TransformKeys, cur DynamicValue, base string, opt ApplyOpt) (DynamicValue, error) {
	switch c := Force(cur).(type) {
	case MapValue:
		entries := make([]MapEntry, len(c.Entries))
		var all Issues
		for i, e := range c.Entries {
			in := e.Key
			nk, err := evalExpr(t.Forward, &in, opt)
			if err != nil {
				all = appendIssues(all, prefixIssuePaths(err, base+"/key:"+describeValue(e.Key)))
				continue
			}
			entries[i] = MapEntry{Key: nk, Value: e.Value}
		}
		if len(all) > 0 {
			return nil, all
		}
		return NewMap(entries...), nil
	case Record:
		fields := make([]Field, len(c.Fields))
		var all Issues
		for i, f := range c.Fields {
			in := DynamicValue(Str(f.Name))
			nn, err := evalExpr(t.Forward, &in, opt)
			if err != nil {
				all = appendIssues(all, prefixIssuePaths(err, base+"/"+f.Name))
				continue
			}
			fields[i] = F(coerceToString(nn), f.Value)
		}
		if len(all) > 0 {
			return nil, all
		}
		return Record{Fields: fields}, nil
	default:
		return nil, failAt(base, CodeNotAMap, map[string]any{"got": Force(cur).Kind().String()})
	}
}

func applyTransformValues(t TransformValues, cur DynamicValue, base string, opt ApplyOpt) (DynamicValue, error) {
	switch c := Force(cur).(type) {
	case MapValue:
		entries := make([]MapEntry, len(c.Entries))
		var all Issues
		for i, e := range c.Entries {
			in := e.Value
			nv, err := evalExpr(t.Forward, &in, opt)
			if err != nil {
				all = appendIssues(all, prefixIssuePaths(err, base+"/key:"+describeValue(e.Key)))
				continue
			}
			entries[i] = MapEntry{Key: e.Key, Value: nv}
		}
		if len(all) > 0 {
			return nil, all
		}
		return NewMap(entries...), nil
	case Record:
		fields := make([]Field, len(c.Fields))
		var all Issues
		for i, f := range c.Fields {
			in := f.Value
			nv, err := evalExpr(t.Forward, &in, opt)
			if err != nil {
				all = appendIssues(all, prefixIssuePaths(err, base+"/"+f.Name))
				continue
			}
			fields[i] = F(f.Name, nv)
		}
		if len(all) > 0 {
			return nil, all
		}
		return Record{Fields: fields}, nil
	default:
		return nil, failAt(base, CodeNotAMap, map[string]any{"got": Force(cur).Kind().String()})
	}
}

func applyJoin(t Join, cur DynamicValue, base string, opt ApplyOpt) (DynamicValue, error) {
	r, err := requireRecord(cur, base)
	if err != nil {
		return nil, err
	}
	if r.IndexOf(t.Target) >= 0 {
		return nil, failAt(base+"/"+t.Target, CodeFieldExists, map[string]any{"field": t.Target})
	}
	sources := make([]DynamicValue, len(t.Sources))
	for i, sp := range t.Sources {
		sv, err := sp.GetWith(r, opt)
		if err != nil {
			return nil, err
		}
		sources[i] = sv
	}
	in := DynamicValue(NewSequence(sources...))
	joined, err := evalExpr(t.Combiner, &in, opt)
	if err != nil {
		return nil, err
	}
	out := r
	for _, sp := range t.Sources {
		if name, ok := singleFieldPath(sp); ok {
			dropped, err := applyDropField(DropField{Name: name}, out, base)
			if err != nil {
				return nil, err
			}
			out = dropped.(Record)
		}
	}
	fields := append(append([]Field(nil), out.Fields...), F(t.Target, joined))
	return Record{Fields: fields}, nil
}

func applySplit(t Split, cur DynamicValue, base string, opt ApplyOpt) (DynamicValue, error) {
	r, err := requireRecord(cur, base)
	if err != nil {
		return nil, err
	}
	i := r.IndexOf(t.Source)
	if i < 0 {
		return nil, failAt(base+"/"+t.Source, CodeFieldNotFound, map[string]any{"field": t.Source})
	}
	in := r.Fields[i].Value
	parts, err := evalExpr(t.Splitter, &in, opt)
	if err != nil {
		return nil, err
	}
	seq, ok := Force(parts).(Sequence)
	if !ok {
		return nil, failAt(base+"/"+t.Source, CodeTypeMismatch, map[string]any{"want": "Sequence", "got": Force(parts).Kind().String()})
	}
	if len(seq.Elements) != len(t.Targets) {
		return nil, failAt(base+"/"+t.Source, CodeSplitLength, map[string]any{"want": len(t.Targets), "got": len(seq.Elements)})
	}
	dropped, err := applyDropField(DropField{Name: t.Source}, r, base)
	if err != nil {
		return nil, err
	}
	out := dropped.(Record)
	for j, tp := range t.Targets {
		elem := seq.Elements[j]
		if name, ok := singleFieldPath(tp); ok && out.IndexOf(name) < 0 {
			out = Record{Fields: append(append([]Field(nil), out.Fields...), F(name, elem))}
			continue
		}
		written, err := tp.ModifyWith(out, func(DynamicValue) (DynamicValue, error) {
			return elem, nil
		}, opt)
		if err != nil {
			return nil, err
		}
		wr, err := requireRecord(written, base)
		if err != nil {
			return nil, err
		}
		out = wr
	}
	return out, nil
}

// singleFieldPath reports whether the path is exactly one Field step.
func singleFieldPath(p DynamicOptic) (string, bool) {
	ns := p.Nodes()
	if len(ns) != 1 {
		return "", false
	}
	f, ok := ns[0].(FieldNode)
	if !ok {
		return "", false
	}
	return f.Name, true
}

// coerceToString renders a transformed key as a field name.
func coerceToString(v DynamicValue) string {
	if p, ok := Force(v).(Primitive); ok {
		return FormatPrimitive(p)
	}
	return describeValue(v)
}

// prefixIssuePaths rebases the paths of err's issues under prefix, keeping
// aggregated branch failures readable.
func prefixIssuePaths(err error, prefix string) error {
	iss, ok := AsIssues(err)
	if !ok {
		return err
	}
	out := make(Issues, len(iss))
	for i, it := range iss {
		p := it.Path
		if p == "/" {
			p = ""
		}
		it.Path = prefix + p
		out[i] = it
	}
	return out
}
