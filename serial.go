package dynmig

// Self-describing DynamicValue encoding of migrations. Every algebra element
// becomes Variant("<Tag>", Record(...)); decoding an unknown tag fails with
// unknown_tag. Round trip reproduces a structurally equal element.

func optionalExpr(e Expr) DynamicValue {
	if e == nil {
		return Null{}
	}
	return ExprToDynamic(e)
}

func optionalExprFrom(v DynamicValue) (Expr, error) {
	if _, ok := Force(v).(Null); ok {
		return nil, nil
	}
	return ExprFromDynamic(v)
}

// OpticToDynamic encodes a path as a sequence of tagged nodes.
func OpticToDynamic(o DynamicOptic) DynamicValue {
	nodes := o.Nodes()
	elems := make([]DynamicValue, len(nodes))
	for i, n := range nodes {
		switch t := n.(type) {
		case FieldNode:
			elems[i] = NewVariant("Field", NewRecord(F("name", Str(t.Name))))
		case CaseNode:
			elems[i] = NewVariant("Case", NewRecord(F("name", Str(t.Name))))
		case AtIndexNode:
			elems[i] = NewVariant("AtIndex", NewRecord(F("index", Int(int32(t.Index)))))
		case AtIndicesNode:
			ix := make([]DynamicValue, len(t.Indices))
			for j, x := range t.Indices {
				ix[j] = Int(int32(x))
			}
			elems[i] = NewVariant("AtIndices", NewRecord(F("indices", NewSequence(ix...))))
		case AtMapKeyNode:
			elems[i] = NewVariant("AtMapKey", NewRecord(F("key", t.Key)))
		case AtMapKeysNode:
			elems[i] = NewVariant("AtMapKeys", NewRecord(F("keys", NewSequence(t.Keys...))))
		case ElementsNode:
			elems[i] = NewVariant("Elements", NewRecord())
		case MapKeysNode:
			elems[i] = NewVariant("MapKeys", NewRecord())
		case MapValuesNode:
			elems[i] = NewVariant("MapValues", NewRecord())
		case WrappedNode:
			elems[i] = NewVariant("Wrapped", NewRecord())
		}
	}
	return NewSequence(elems...)
}

// OpticFromDynamic decodes a path produced by OpticToDynamic.
func OpticFromDynamic(v DynamicValue) (DynamicOptic, error) {
	s, ok := Force(v).(Sequence)
	if !ok {
		return Root, failAt("/", CodeDecodeFailed, map[string]any{"want": "Sequence", "got": Force(v).Kind().String()})
	}
	o := Root
	for i, e := range s.Elements {
		vr, ok := Force(e).(Variant)
		if !ok {
			return Root, failAt("/", CodeDecodeFailed, map[string]any{"want": "Variant", "got": Force(e).Kind().String()})
		}
		body, _ := Force(vr.Value).(Record)
		switch vr.Case {
		case "Field":
			name, err := decodeStringField(body, "name")
			if err != nil {
				return Root, err
			}
			o = o.Field(name)
		case "Case":
			name, err := decodeStringField(body, "name")
			if err != nil {
				return Root, err
			}
			o = o.CaseOf(name)
		case "AtIndex":
			ix, err := decodeIntField(body, "index")
			if err != nil {
				return Root, err
			}
			o = o.At(ix)
		case "AtIndices":
			sv, ok := body.Get("indices")
			if !ok {
				return Root, failAt("/indices", CodeFieldNotFound, map[string]any{"field": "indices"})
			}
			seq, ok := Force(sv).(Sequence)
			if !ok {
				return Root, failAt("/indices", CodeDecodeFailed, map[string]any{"want": "Sequence"})
			}
			ix := make([]int, len(seq.Elements))
			for j, iv := range seq.Elements {
				p, ok := Force(iv).(Primitive)
				if !ok || p.K != PrimInt {
					return Root, failAt("/indices", CodeDecodeFailed, map[string]any{"want": "Int"})
				}
				ix[j] = int(p.Value.(int32))
			}
			o = o.AtIndices(ix...)
		case "AtMapKey":
			kv, ok := body.Get("key")
			if !ok {
				return Root, failAt("/key", CodeFieldNotFound, map[string]any{"field": "key"})
			}
			o = o.AtKey(kv)
		case "AtMapKeys":
			sv, ok := body.Get("keys")
			if !ok {
				return Root, failAt("/keys", CodeFieldNotFound, map[string]any{"field": "keys"})
			}
			seq, ok := Force(sv).(Sequence)
			if !ok {
				return Root, failAt("/keys", CodeDecodeFailed, map[string]any{"want": "Sequence"})
			}
			o = o.AtKeys(seq.Elements...)
		case "Elements":
			o = o.Elements()
		case "MapKeys":
			o = o.MapKeys()
		case "MapValues":
			o = o.MapValues()
		case "Wrapped":
			o = o.Wrapped()
		default:
			return Root, failAt("/", CodeUnknownTag, map[string]any{"tag": vr.Case, "index": i})
		}
	}
	return o, nil
}

// ExprToDynamic encodes an expression tree.
func ExprToDynamic(e Expr) DynamicValue {
	switch t := e.(type) {
	case Literal:
		return NewVariant("Literal", NewRecord(F("value", t.Value)))
	case Input:
		return NewVariant("Input", NewRecord())
	case FieldAccess:
		return NewVariant("FieldAccess", NewRecord(
			F("name", Str(t.Name)),
			F("inner", ExprToDynamic(t.Inner)),
		))
	case OpticAccess:
		return NewVariant("OpticAccess", NewRecord(
			F("path", OpticToDynamic(t.Path)),
			F("inner", ExprToDynamic(t.Inner)),
		))
	case DefaultValue:
		fields := []Field{}
		if t.Value != nil {
			fields = append(fields, F("value", t.Value))
		}
		if t.Err != "" {
			fields = append(fields, F("error", Str(t.Err)))
		}
		if t.Marker != "" {
			fields = append(fields, F("marker", Str(t.Marker)))
		}
		return NewVariant("DefaultValue", NewRecord(fields...))
	case Convert:
		return NewVariant("Convert", NewRecord(
			F("from", Str(t.From.String())),
			F("to", Str(t.To.String())),
			F("inner", ExprToDynamic(t.Inner)),
		))
	case Concat:
		parts := make([]DynamicValue, len(t.Parts))
		for i, p := range t.Parts {
			parts[i] = ExprToDynamic(p)
		}
		return NewVariant("Concat", NewRecord(
			F("parts", NewSequence(parts...)),
			F("separator", Str(t.Separator)),
		))
	case SplitString:
		return NewVariant("SplitString", NewRecord(
			F("separator", Str(t.Separator)),
			F("inner", ExprToDynamic(t.Inner)),
			F("index", Int(int32(t.Index))),
		))
	case Compose:
		return NewVariant("Compose", NewRecord(
			F("outer", ExprToDynamic(t.Outer)),
			F("inner", ExprToDynamic(t.Inner)),
		))
	case WrapSome:
		return NewVariant("WrapSome", NewRecord(F("inner", ExprToDynamic(t.Inner))))
	case UnwrapOption:
		return NewVariant("UnwrapOption", NewRecord(
			F("inner", ExprToDynamic(t.Inner)),
			F("fallback", optionalExpr(t.Fallback)),
		))
	case ConstructSeq:
		parts := make([]DynamicValue, len(t.Parts))
		for i, p := range t.Parts {
			parts[i] = ExprToDynamic(p)
		}
		return NewVariant("ConstructSeq", NewRecord(F("parts", NewSequence(parts...))))
	case Fail:
		return NewVariant("Fail", NewRecord(F("message", Str(t.Message))))
	case Arithmetic:
		return NewVariant("Arithmetic", NewRecord(
			F("op", Str(t.Op.String())),
			F("left", ExprToDynamic(t.Left)),
			F("right", ExprToDynamic(t.Right)),
		))
	case Relational:
		return NewVariant("Relational", NewRecord(
			F("op", Str(t.Op.String())),
			F("left", ExprToDynamic(t.Left)),
			F("right", ExprToDynamic(t.Right)),
		))
	case Logical:
		return NewVariant("Logical", NewRecord(
			F("op", Str(t.Op.String())),
			F("left", ExprToDynamic(t.Left)),
			F("right", ExprToDynamic(t.Right)),
		))
	case Not:
		return NewVariant("Not", NewRecord(F("inner", ExprToDynamic(t.Inner))))
	}
	return Null{}
}

// ExprFromDynamic decodes an expression produced by ExprToDynamic.
func ExprFromDynamic(v DynamicValue) (Expr, error) {
	vr, ok := Force(v).(Variant)
	if !ok {
		return nil, failAt("/", CodeDecodeFailed, map[string]any{"want": "Variant", "got": Force(v).Kind().String()})
	}
	body, _ := Force(vr.Value).(Record)
	inner := func(name string) (Expr, error) {
		fv, ok := body.Get(name)
		if !ok {
			return nil, failAt("/"+name, CodeFieldNotFound, map[string]any{"field": name})
		}
		return ExprFromDynamic(fv)
	}
	switch vr.Case {
	case "Literal":
		fv, ok := body.Get("value")
		if !ok {
			return nil, failAt("/value", CodeFieldNotFound, map[string]any{"field": "value"})
		}
		return Literal{Value: fv}, nil
	case "Input":
		return Input{}, nil
	case "FieldAccess":
		name, err := decodeStringField(body, "name")
		if err != nil {
			return nil, err
		}
		in, err := inner("inner")
		if err != nil {
			return nil, err
		}
		return FieldAccess{Name: name, Inner: in}, nil
	case "OpticAccess":
		pv, ok := body.Get("path")
		if !ok {
			return nil, failAt("/path", CodeFieldNotFound, map[string]any{"field": "path"})
		}
		path, err := OpticFromDynamic(pv)
		if err != nil {
			return nil, err
		}
		in, err := inner("inner")
		if err != nil {
			return nil, err
		}
		return OpticAccess{Path: path, Inner: in}, nil
	case "DefaultValue":
		d := DefaultValue{}
		if fv, ok := body.Get("value"); ok {
			d.Value = fv
		}
		if s, err := decodeStringField(body, "error"); err == nil {
			d.Err = s
		}
		if s, err := decodeStringField(body, "marker"); err == nil {
			d.Marker = s
		}
		return d, nil
	case "Convert":
		from, err := decodeKindField(body, "from")
		if err != nil {
			return nil, err
		}
		to, err := decodeKindField(body, "to")
		if err != nil {
			return nil, err
		}
		in, err := inner("inner")
		if err != nil {
			return nil, err
		}
		return Convert{From: from, To: to, Inner: in}, nil
	case "Concat":
		parts, err := decodeExprSeq(body, "parts")
		if err != nil {
			return nil, err
		}
		sep, err := decodeStringField(body, "separator")
		if err != nil {
			return nil, err
		}
		return Concat{Parts: parts, Separator: sep}, nil
	case "SplitString":
		sep, err := decodeStringField(body, "separator")
		if err != nil {
			return nil, err
		}
		in, err := inner("inner")
		if err != nil {
			return nil, err
		}
		ix, err := decodeIntField(body, "index")
		if err != nil {
			return nil, err
		}
		return SplitString{Separator: sep, Inner: in, Index: ix}, nil
	case "Compose":
		outer, err := inner("outer")
		if err != nil {
			return nil, err
		}
		in, err := inner("inner")
		if err != nil {
			return nil, err
		}
		return Compose{Outer: outer, Inner: in}, nil
	case "WrapSome":
		in, err := inner("inner")
		if err != nil {
			return nil, err
		}
		return WrapSome{Inner: in}, nil
	case "UnwrapOption":
		in, err := inner("inner")
		if err != nil {
			return nil, err
		}
		fb, ok := body.Get("fallback")
		if !ok {
			return UnwrapOption{Inner: in}, nil
		}
		fe, err := optionalExprFrom(fb)
		if err != nil {
			return nil, err
		}
		return UnwrapOption{Inner: in, Fallback: fe}, nil
	case "ConstructSeq":
		parts, err := decodeExprSeq(body, "parts")
		if err != nil {
			return nil, err
		}
		return ConstructSeq{Parts: parts}, nil
	case "Fail":
		msg, err := decodeStringField(body, "message")
		if err != nil {
			return nil, err
		}
		return Fail{Message: msg}, nil
	case "Arithmetic":
		op, err := decodeStringField(body, "op")
		if err != nil {
			return nil, err
		}
		l, err := inner("left")
		if err != nil {
			return nil, err
		}
		r, err := inner("right")
		if err != nil {
			return nil, err
		}
		for _, cand := range []ArithOp{OpAdd, OpSub, OpMul, OpDiv} {
			if cand.String() == op {
				return Arithmetic{Op: cand, Left: l, Right: r}, nil
			}
		}
		return nil, failAt("/op", CodeUnknownTag, map[string]any{"op": op})
	case "Relational":
		op, err := decodeStringField(body, "op")
		if err != nil {
			return nil, err
		}
		l, err := inner("left")
		if err != nil {
			return nil, err
		}
		r, err := inner("right")
		if err != nil {
			return nil, err
		}
		for _, cand := range []RelOp{OpLt, OpLte, OpGt, OpGte, OpEq, OpNeq} {
			if cand.String() == op {
				return Relational{Op: cand, Left: l, Right: r}, nil
			}
		}
		return nil, failAt("/op", CodeUnknownTag, map[string]any{"op": op})
	case "Logical":
		op, err := decodeStringField(body, "op")
		if err != nil {
			return nil, err
		}
		l, err := inner("left")
		if err != nil {
			return nil, err
		}
		r, err := inner("right")
		if err != nil {
			return nil, err
		}
		for _, cand := range []LogicOp{OpAnd, OpOr} {
			if cand.String() == op {
				return Logical{Op: cand, Left: l, Right: r}, nil
			}
		}
		return nil, failAt("/op", CodeUnknownTag, map[string]any{"op": op})
	case "Not":
		in, err := inner("inner")
		if err != nil {
			return nil, err
		}
		return Not{Inner: in}, nil
	}
	return nil, failAt("/", CodeUnknownTag, map[string]any{"tag": vr.Case})
}

// ActionToDynamic encodes one action.
func ActionToDynamic(a Action) DynamicValue {
	at := F("at", OpticToDynamic(a.Optic()))
	switch t := a.(type) {
	case Identity:
		return NewVariant("Identity", NewRecord(at))
	case AddField:
		return NewVariant("AddField", NewRecord(at,
			F("name", Str(t.Name)),
			F("default", optionalExpr(t.Default)),
		))
	case DropField:
		return NewVariant("DropField", NewRecord(at,
			F("name", Str(t.Name)),
			F("reverseDefault", optionalExpr(t.ReverseDefault)),
		))
	case Rename:
		return NewVariant("Rename", NewRecord(at,
			F("from", Str(t.From)),
			F("to", Str(t.To)),
		))
	case TransformValue:
		return NewVariant("TransformValue", NewRecord(at,
			F("field", Str(t.Field)),
			F("forward", optionalExpr(t.Forward)),
			F("backward", optionalExpr(t.Backward)),
		))
	case Mandate:
		return NewVariant("Mandate", NewRecord(at,
			F("field", Str(t.Field)),
			F("default", optionalExpr(t.Default)),
		))
	case Optionalize:
		return NewVariant("Optionalize", NewRecord(at,
			F("field", Str(t.Field)),
			F("reverseDefault", optionalExpr(t.ReverseDefault)),
		))
	case ChangeType:
		return NewVariant("ChangeType", NewRecord(at,
			F("field", Str(t.Field)),
			F("converter", optionalExpr(t.Converter)),
			F("reverseConverter", optionalExpr(t.ReverseConverter)),
		))
	case RenameCase:
		return NewVariant("RenameCase", NewRecord(at,
			F("from", Str(t.From)),
			F("to", Str(t.To)),
		))
	case TransformCase:
		nested := make([]DynamicValue, len(t.Actions))
		for i, n := range t.Actions {
			nested[i] = ActionToDynamic(n)
		}
		return NewVariant("TransformCase", NewRecord(at,
			F("case", Str(t.Case)),
			F("actions", NewSequence(nested...)),
		))
	case TransformElements:
		return NewVariant("TransformElements", NewRecord(at,
			F("forward", optionalExpr(t.Forward)),
			F("backward", optionalExpr(t.Backward)),
		))
	case TransformKeys:
		return NewVariant("TransformKeys", NewRecord(at,
			F("forward", optionalExpr(t.Forward)),
			F("backward", optionalExpr(t.Backward)),
		))
	case TransformValues:
		return NewVariant("TransformValues", NewRecord(at,
			F("forward", optionalExpr(t.Forward)),
			F("backward", optionalExpr(t.Backward)),
		))
	case Join:
		srcs := make([]DynamicValue, len(t.Sources))
		for i, sp := range t.Sources {
			srcs[i] = OpticToDynamic(sp)
		}
		return NewVariant("Join", NewRecord(at,
			F("target", Str(t.Target)),
			F("sources", NewSequence(srcs...)),
			F("combiner", optionalExpr(t.Combiner)),
			F("splitter", optionalExpr(t.Splitter)),
		))
	case Split:
		tgts := make([]DynamicValue, len(t.Targets))
		for i, tp := range t.Targets {
			tgts[i] = OpticToDynamic(tp)
		}
		return NewVariant("Split", NewRecord(at,
			F("source", Str(t.Source)),
			F("targets", NewSequence(tgts...)),
			F("splitter", optionalExpr(t.Splitter)),
			F("combiner", optionalExpr(t.Combiner)),
		))
	}
	return Null{}
}

// ActionFromDynamic decodes one action.
func ActionFromDynamic(v DynamicValue) (Action, error) {
	vr, ok := Force(v).(Variant)
	if !ok {
		return nil, failAt("/", CodeDecodeFailed, map[string]any{"want": "Variant", "got": Force(v).Kind().String()})
	}
	body, _ := Force(vr.Value).(Record)
	at := Root
	if av, ok := body.Get("at"); ok {
		var err error
		at, err = OpticFromDynamic(av)
		if err != nil {
			return nil, err
		}
	}
	switch vr.Case {
	case "Identity":
		return Identity{At: at}, nil
	case "AddField":
		name, err := decodeStringField(body, "name")
		if err != nil {
			return nil, err
		}
		d, err := decodeOptionalExprField(body, "default")
		if err != nil {
			return nil, err
		}
		return AddField{At: at, Name: name, Default: d}, nil
	case "DropField":
		name, err := decodeStringField(body, "name")
		if err != nil {
			return nil, err
		}
		d, err := decodeOptionalExprField(body, "reverseDefault")
		if err != nil {
			return nil, err
		}
		return DropField{At: at, Name: name, ReverseDefault: d}, nil
	case "Rename":
		from, err := decodeStringField(body, "from")
		if err != nil {
			return nil, err
		}
		to, err := decodeStringField(body, "to")
		if err != nil {
			return nil, err
		}
		return Rename{At: at, From: from, To: to}, nil
	case "TransformValue":
		field, err := decodeStringField(body, "field")
		if err != nil {
			return nil, err
		}
		fwd, err := decodeOptionalExprField(body, "forward")
		if err != nil {
			return nil, err
		}
		bwd, err := decodeOptionalExprField(body, "backward")
		if err != nil {
			return nil, err
		}
		return TransformValue{At: at, Field: field, Forward: fwd, Backward: bwd}, nil
	case "Mandate":
		field, err := decodeStringField(body, "field")
		if err != nil {
			return nil, err
		}
		d, err := decodeOptionalExprField(body, "default")
		if err != nil {
			return nil, err
		}
		return Mandate{At: at, Field: field, Default: d}, nil
	case "Optionalize":
		field, err := decodeStringField(body, "field")
		if err != nil {
			return nil, err
		}
		d, err := decodeOptionalExprField(body, "reverseDefault")
		if err != nil {
			return nil, err
		}
		return Optionalize{At: at, Field: field, ReverseDefault: d}, nil
	case "ChangeType":
		field, err := decodeStringField(body, "field")
		if err != nil {
			return nil, err
		}
		conv, err := decodeOptionalExprField(body, "converter")
		if err != nil {
			return nil, err
		}
		rev, err := decodeOptionalExprField(body, "reverseConverter")
		if err != nil {
			return nil, err
		}
		return ChangeType{At: at, Field: field, Converter: conv, ReverseConverter: rev}, nil
	case "RenameCase":
		from, err := decodeStringField(body, "from")
		if err != nil {
			return nil, err
		}
		to, err := decodeStringField(body, "to")
		if err != nil {
			return nil, err
		}
		return RenameCase{At: at, From: from, To: to}, nil
	case "TransformCase":
		caseName, err := decodeStringField(body, "case")
		if err != nil {
			return nil, err
		}
		av, ok := body.Get("actions")
		if !ok {
			return nil, failAt("/actions", CodeFieldNotFound, map[string]any{"field": "actions"})
		}
		seq, ok := Force(av).(Sequence)
		if !ok {
			return nil, failAt("/actions", CodeDecodeFailed, map[string]any{"want": "Sequence"})
		}
		nested := make([]Action, len(seq.Elements))
		for i, e := range seq.Elements {
			na, err := ActionFromDynamic(e)
			if err != nil {
				return nil, err
			}
			nested[i] = na
		}
		return TransformCase{At: at, Case: caseName, Actions: nested}, nil
	case "TransformElements", "TransformKeys", "TransformValues":
		fwd, err := decodeOptionalExprField(body, "forward")
		if err != nil {
			return nil, err
		}
		bwd, err := decodeOptionalExprField(body, "backward")
		if err != nil {
			return nil, err
		}
		switch vr.Case {
		case "TransformElements":
			return TransformElements{At: at, Forward: fwd, Backward: bwd}, nil
		case "TransformKeys":
			return TransformKeys{At: at, Forward: fwd, Backward: bwd}, nil
		default:
			return TransformValues{At: at, Forward: fwd, Backward: bwd}, nil
		}
	case "Join":
		target, err := decodeStringField(body, "target")
		if err != nil {
			return nil, err
		}
		srcs, err := decodeOpticSeq(body, "sources")
		if err != nil {
			return nil, err
		}
		comb, err := decodeOptionalExprField(body, "combiner")
		if err != nil {
			return nil, err
		}
		split, err := decodeOptionalExprField(body, "splitter")
		if err != nil {
			return nil, err
		}
		return Join{At: at, Target: target, Sources: srcs, Combiner: comb, Splitter: split}, nil
	case "Split":
		source, err := decodeStringField(body, "source")
		if err != nil {
			return nil, err
		}
		tgts, err := decodeOpticSeq(body, "targets")
		if err != nil {
			return nil, err
		}
		split, err := decodeOptionalExprField(body, "splitter")
		if err != nil {
			return nil, err
		}
		comb, err := decodeOptionalExprField(body, "combiner")
		if err != nil {
			return nil, err
		}
		return Split{At: at, Source: source, Targets: tgts, Splitter: split, Combiner: comb}, nil
	}
	return nil, failAt("/", CodeUnknownTag, map[string]any{"tag": vr.Case})
}

// MigrationToDynamic encodes a whole migration as a sequence of actions.
func MigrationToDynamic(m Migration) DynamicValue {
	elems := make([]DynamicValue, len(m.Actions))
	for i, a := range m.Actions {
		elems[i] = ActionToDynamic(a)
	}
	return NewSequence(elems...)
}

// MigrationFromDynamic decodes a migration produced by MigrationToDynamic.
func MigrationFromDynamic(v DynamicValue) (Migration, error) {
	s, ok := Force(v).(Sequence)
	if !ok {
		return Migration{}, failAt("/", CodeDecodeFailed, map[string]any{"want": "Sequence", "got": Force(v).Kind().String()})
	}
	actions := make([]Action, len(s.Elements))
	for i, e := range s.Elements {
		a, err := ActionFromDynamic(e)
		if err != nil {
			return Migration{}, err
		}
		actions[i] = a
	}
	return Migration{Actions: actions}, nil
}

func decodeStringField(r Record, name string) (string, error) {
	fv, ok := r.Get(name)
	if !ok {
		return "", failAt("/"+name, CodeFieldNotFound, map[string]any{"field": name})
	}
	p, ok := Force(fv).(Primitive)
	if !ok {
		return "", failAt("/"+name, CodeDecodeFailed, map[string]any{"want": "String"})
	}
	s, ok := p.StringValue()
	if !ok {
		return "", failAt("/"+name, CodeDecodeFailed, map[string]any{"want": "String", "got": p.K.String()})
	}
	return s, nil
}

func decodeIntField(r Record, name string) (int, error) {
	fv, ok := r.Get(name)
	if !ok {
		return 0, failAt("/"+name, CodeFieldNotFound, map[string]any{"field": name})
	}
	p, ok := Force(fv).(Primitive)
	if !ok || p.K != PrimInt {
		return 0, failAt("/"+name, CodeDecodeFailed, map[string]any{"want": "Int"})
	}
	return int(p.Value.(int32)), nil
}

func decodeKindField(r Record, name string) (PrimitiveKind, error) {
	s, err := decodeStringField(r, name)
	if err != nil {
		return 0, err
	}
	k, ok := PrimitiveKindFromString(s)
	if !ok {
		return 0, failAt("/"+name, CodeUnknownTag, map[string]any{"kind": s})
	}
	return k, nil
}

func decodeOptionalExprField(r Record, name string) (Expr, error) {
	fv, ok := r.Get(name)
	if !ok {
		return nil, nil
	}
	return optionalExprFrom(fv)
}

func decodeExprSeq(r Record, name string) ([]Expr, error) {
	fv, ok := r.Get(name)
	if !ok {
		return nil, failAt("/"+name, CodeFieldNotFound, map[string]any{"field": name})
	}
	s, ok := Force(fv).(Sequence)
	if !ok {
		return nil, failAt("/"+name, CodeDecodeFailed, map[string]any{"want": "Sequence"})
	}
	out := make([]Expr, len(s.Elements))
	for i, e := range s.Elements {
		ex, err := ExprFromDynamic(e)
		if err != nil {
			return nil, err
		}
		out[i] = ex
	}
	return out, nil
}

func decodeOpticSeq(r Record, name string) ([]DynamicOptic, error) {
	fv, ok := r.Get(name)
	if !ok {
		return nil, failAt("/"+name, CodeFieldNotFound, map[string]any{"field": name})
	}
	s, ok := Force(fv).(Sequence)
	if !ok {
		return nil, failAt("/"+name, CodeDecodeFailed, map[string]any{"want": "Sequence"})
	}
	out := make([]DynamicOptic, len(s.Elements))
	for i, e := range s.Elements {
		o, err := OpticFromDynamic(e)
		if err != nil {
			return nil, err
		}
		out[i] = o
	}
	return out, nil
}
