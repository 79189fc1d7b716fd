package dynmig_test

import (
	"testing"

	dynmig "github.com/reoring/dynmig"
)

func evalWith(t *testing.T, e dynmig.Expr, in dynmig.DynamicValue) dynmig.DynamicValue {
	t.Helper()
	got, err := dynmig.EvalExpr(e, &in)
	if err != nil {
		t.Fatalf("unexpected eval error: %v", err)
	}
	return got
}

func TestExpr_LiteralAndInput(t *testing.T) {
	got, err := dynmig.EvalExpr(dynmig.Lit(dynmig.Int(5)), nil)
	if err != nil || !dynmig.ValueEqual(got, dynmig.Int(5)) {
		t.Fatalf("got %v (%v), want 5", got, err)
	}

	in := dynmig.DynamicValue(dynmig.Str("x"))
	got, err = dynmig.EvalExpr(dynmig.Ident(), &in)
	if err != nil || !dynmig.ValueEqual(got, dynmig.Str("x")) {
		t.Fatalf("got %v (%v), want x", got, err)
	}

	// Without an input the identity expression fails.
	_, err = dynmig.EvalExpr(dynmig.Ident(), nil)
	iss, ok := dynmig.AsIssues(err)
	if !ok || !iss.HasCode(dynmig.CodeNoInput) {
		t.Fatalf("expected no_input, got %v", err)
	}
}

func TestExpr_FieldAccess(t *testing.T) {
	in := dynmig.DynamicValue(dynmig.NewRecord(dynmig.F("n", dynmig.Int(3))))
	got := evalWith(t, dynmig.FieldAccess{Name: "n", Inner: dynmig.Ident()}, in)
	if !dynmig.ValueEqual(got, dynmig.Int(3)) {
		t.Fatalf("got %v, want 3", got)
	}

	_, err := dynmig.EvalExpr(dynmig.FieldAccess{Name: "missing", Inner: dynmig.Ident()}, &in)
	iss, ok := dynmig.AsIssues(err)
	if !ok || !iss.HasCode(dynmig.CodeFieldNotFound) {
		t.Fatalf("expected field_not_found, got %v", err)
	}
}

func TestExpr_OpticAccess(t *testing.T) {
	in := dynmig.DynamicValue(person())
	e := dynmig.OpticAccess{Path: dynmig.Root.Field("address").Field("city"), Inner: dynmig.Ident()}
	got := evalWith(t, e, in)
	if !dynmig.ValueEqual(got, dynmig.Str("London")) {
		t.Fatalf("got %v, want London", got)
	}
}

func TestExpr_ConvertAndCompose(t *testing.T) {
	in := dynmig.DynamicValue(dynmig.Int(42))
	conv := dynmig.Convert{From: dynmig.PrimInt, To: dynmig.PrimString, Inner: dynmig.Ident()}
	got := evalWith(t, conv, in)
	if !dynmig.ValueEqual(got, dynmig.Str("42")) {
		t.Fatalf("got %v, want \"42\"", got)
	}

	// Compose pipes Inner into Outer.
	double := dynmig.Arithmetic{Op: dynmig.OpMul, Left: dynmig.Ident(), Right: dynmig.Lit(dynmig.Int(2))}
	addOne := dynmig.Arithmetic{Op: dynmig.OpAdd, Left: dynmig.Ident(), Right: dynmig.Lit(dynmig.Int(1))}
	got = evalWith(t, dynmig.Compose{Outer: addOne, Inner: double}, dynmig.Int(10))
	if !dynmig.ValueEqual(got, dynmig.Int(21)) {
		t.Fatalf("got %v, want 21", got)
	}
}

func TestExpr_ConcatAndSplit(t *testing.T) {
	in := dynmig.DynamicValue(dynmig.NewRecord(
		dynmig.F("first", dynmig.Str("Ada")),
		dynmig.F("last", dynmig.Str("Lovelace")),
	))
	concat := dynmig.Concat{
		Parts: []dynmig.Expr{
			dynmig.FieldAccess{Name: "first", Inner: dynmig.Ident()},
			dynmig.FieldAccess{Name: "last", Inner: dynmig.Ident()},
		},
		Separator: " ",
	}
	got := evalWith(t, concat, in)
	if !dynmig.ValueEqual(got, dynmig.Str("Ada Lovelace")) {
		t.Fatalf("got %v", got)
	}

	split := dynmig.SplitString{Separator: " ", Inner: dynmig.Ident(), Index: 1}
	got = evalWith(t, split, dynmig.Str("Ada Lovelace"))
	if !dynmig.ValueEqual(got, dynmig.Str("Lovelace")) {
		t.Fatalf("got %v, want Lovelace", got)
	}

	// Out-of-range piece index fails.
	in2 := dynmig.DynamicValue(dynmig.Str("one"))
	_, err := dynmig.EvalExpr(dynmig.SplitString{Separator: " ", Inner: dynmig.Ident(), Index: 5}, &in2)
	iss, ok := dynmig.AsIssues(err)
	if !ok || !iss.HasCode(dynmig.CodeIndexOutOfRange) {
		t.Fatalf("expected index_out_of_range, got %v", err)
	}

	// Concat over a non-string part fails.
	in3 := dynmig.DynamicValue(dynmig.Int(1))
	_, err = dynmig.EvalExpr(dynmig.Concat{Parts: []dynmig.Expr{dynmig.Ident()}}, &in3)
	iss, ok = dynmig.AsIssues(err)
	if !ok || !iss.HasCode(dynmig.CodeTypeMismatch) {
		t.Fatalf("expected type_mismatch, got %v", err)
	}
}

func TestExpr_OptionWrapUnwrap(t *testing.T) {
	got := evalWith(t, dynmig.WrapSome{Inner: dynmig.Ident()}, dynmig.Int(1))
	if !dynmig.ValueEqual(got, dynmig.Some(dynmig.Int(1))) {
		t.Fatalf("got %v", got)
	}

	unwrap := dynmig.UnwrapOption{Inner: dynmig.Ident(), Fallback: dynmig.Lit(dynmig.Int(0))}

	// Canonical Some.
	got = evalWith(t, unwrap, dynmig.Some(dynmig.Int(9)))
	if !dynmig.ValueEqual(got, dynmig.Int(9)) {
		t.Fatalf("got %v, want 9", got)
	}
	// Bare-payload Some is accepted on read.
	got = evalWith(t, unwrap, dynmig.NewVariant("Some", dynmig.Int(9)))
	if !dynmig.ValueEqual(got, dynmig.Int(9)) {
		t.Fatalf("bare payload: got %v, want 9", got)
	}
	// None and Null fall back.
	got = evalWith(t, unwrap, dynmig.None())
	if !dynmig.ValueEqual(got, dynmig.Int(0)) {
		t.Fatalf("None: got %v, want 0", got)
	}
	got = evalWith(t, unwrap, dynmig.Null{})
	if !dynmig.ValueEqual(got, dynmig.Int(0)) {
		t.Fatalf("Null: got %v, want 0", got)
	}
	// Plain values pass through unchanged.
	got = evalWith(t, unwrap, dynmig.Int(7))
	if !dynmig.ValueEqual(got, dynmig.Int(7)) {
		t.Fatalf("plain: got %v, want 7", got)
	}
}

func TestExpr_ConstructSeqAndFail(t *testing.T) {
	e := dynmig.ConstructSeq{Parts: []dynmig.Expr{
		dynmig.Lit(dynmig.Int(1)),
		dynmig.Lit(dynmig.Int(2)),
	}}
	got, err := dynmig.EvalExpr(e, nil)
	if err != nil || !dynmig.ValueEqual(got, dynmig.NewSequence(dynmig.Int(1), dynmig.Int(2))) {
		t.Fatalf("got %v (%v)", got, err)
	}

	_, err = dynmig.EvalExpr(dynmig.Fail{Message: "boom"}, nil)
	iss, ok := dynmig.AsIssues(err)
	if !ok || !iss.HasCode(dynmig.CodeExplicitFail) {
		t.Fatalf("expected explicit_fail, got %v", err)
	}
}

func TestExpr_Arithmetic(t *testing.T) {
	add := dynmig.Arithmetic{Op: dynmig.OpAdd, Left: dynmig.Lit(dynmig.Int(2)), Right: dynmig.Lit(dynmig.Int(3))}
	got, err := dynmig.EvalExpr(add, nil)
	if err != nil || !dynmig.ValueEqual(got, dynmig.Int(5)) {
		t.Fatalf("got %v (%v), want 5", got, err)
	}

	// Integer division truncates toward zero.
	div := dynmig.Arithmetic{Op: dynmig.OpDiv, Left: dynmig.Lit(dynmig.Int(-7)), Right: dynmig.Lit(dynmig.Int(2))}
	got, err = dynmig.EvalExpr(div, nil)
	if err != nil || !dynmig.ValueEqual(got, dynmig.Int(-3)) {
		t.Fatalf("got %v (%v), want -3", got, err)
	}

	// Float division keeps the fraction.
	fdiv := dynmig.Arithmetic{Op: dynmig.OpDiv, Left: dynmig.Lit(dynmig.Double(7)), Right: dynmig.Lit(dynmig.Double(2))}
	got, err = dynmig.EvalExpr(fdiv, nil)
	if err != nil || !dynmig.ValueEqual(got, dynmig.Double(3.5)) {
		t.Fatalf("got %v (%v), want 3.5", got, err)
	}

	// Division by zero fails.
	dz := dynmig.Arithmetic{Op: dynmig.OpDiv, Left: dynmig.Lit(dynmig.Int(1)), Right: dynmig.Lit(dynmig.Int(0))}
	_, err = dynmig.EvalExpr(dz, nil)
	iss, ok := dynmig.AsIssues(err)
	if !ok || !iss.HasCode(dynmig.CodeDivisionByZero) {
		t.Fatalf("expected division_by_zero, got %v", err)
	}

	// Fixed-width overflow fails instead of wrapping.
	ov := dynmig.Arithmetic{Op: dynmig.OpAdd, Left: dynmig.Lit(dynmig.Byte(100)), Right: dynmig.Lit(dynmig.Byte(100))}
	_, err = dynmig.EvalExpr(ov, nil)
	iss, ok = dynmig.AsIssues(err)
	if !ok || !iss.HasCode(dynmig.CodeOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}

	// Mixed kinds fail.
	mix := dynmig.Arithmetic{Op: dynmig.OpAdd, Left: dynmig.Lit(dynmig.Int(1)), Right: dynmig.Lit(dynmig.Long(1))}
	_, err = dynmig.EvalExpr(mix, nil)
	iss, ok = dynmig.AsIssues(err)
	if !ok || !iss.HasCode(dynmig.CodeTypeMismatch) {
		t.Fatalf("expected type_mismatch, got %v", err)
	}
}

func TestExpr_RelationalAndLogical(t *testing.T) {
	lt := dynmig.Relational{Op: dynmig.OpLt, Left: dynmig.Lit(dynmig.Int(1)), Right: dynmig.Lit(dynmig.Int(2))}
	got, err := dynmig.EvalExpr(lt, nil)
	if err != nil || !dynmig.ValueEqual(got, dynmig.Bool(true)) {
		t.Fatalf("got %v (%v)", got, err)
	}

	eq := dynmig.Relational{Op: dynmig.OpEq, Left: dynmig.Lit(dynmig.Str("a")), Right: dynmig.Lit(dynmig.Str("b"))}
	got, err = dynmig.EvalExpr(eq, nil)
	if err != nil || !dynmig.ValueEqual(got, dynmig.Bool(false)) {
		t.Fatalf("got %v (%v)", got, err)
	}

	and := dynmig.Logical{Op: dynmig.OpAnd, Left: dynmig.Lit(dynmig.Bool(true)), Right: dynmig.Lit(dynmig.Bool(false))}
	got, err = dynmig.EvalExpr(and, nil)
	if err != nil || !dynmig.ValueEqual(got, dynmig.Bool(false)) {
		t.Fatalf("got %v (%v)", got, err)
	}

	not := dynmig.Not{Inner: dynmig.Lit(dynmig.Bool(false))}
	got, err = dynmig.EvalExpr(not, nil)
	if err != nil || !dynmig.ValueEqual(got, dynmig.Bool(true)) {
		t.Fatalf("got %v (%v)", got, err)
	}

	// Booleans do not order.
	badOrd := dynmig.Relational{Op: dynmig.OpLt, Left: dynmig.Lit(dynmig.Bool(true)), Right: dynmig.Lit(dynmig.Bool(false))}
	_, err = dynmig.EvalExpr(badOrd, nil)
	iss, ok := dynmig.AsIssues(err)
	if !ok || !iss.HasCode(dynmig.CodeTypeMismatch) {
		t.Fatalf("expected type_mismatch, got %v", err)
	}
}

func TestExpr_DefaultValueMarker(t *testing.T) {
	_, err := dynmig.EvalExpr(dynmig.DefaultValue{Marker: "price"}, nil)
	iss, ok := dynmig.AsIssues(err)
	if !ok || !iss.HasCode(dynmig.CodeUnresolvedDefault) {
		t.Fatalf("expected unresolved_default, got %v", err)
	}

	got, err := dynmig.EvalExpr(dynmig.DefaultValue{Value: dynmig.Int(1)}, nil)
	if err != nil || !dynmig.ValueEqual(got, dynmig.Int(1)) {
		t.Fatalf("got %v (%v)", got, err)
	}
}

// TestExpr_Reverse covers the structural reverse rules.
func TestExpr_Reverse(t *testing.T) {
	conv := dynmig.Convert{From: dynmig.PrimInt, To: dynmig.PrimString, Inner: dynmig.Ident()}
	rev, ok := conv.Reverse().(dynmig.Convert)
	if !ok || rev.From != dynmig.PrimString || rev.To != dynmig.PrimInt {
		t.Fatalf("convert reverse = %#v", conv.Reverse())
	}
	if !dynmig.ExprEqual(conv.Reverse().Reverse(), conv) {
		t.Fatalf("double reverse must restore the conversion")
	}

	comp := dynmig.Compose{Outer: conv, Inner: dynmig.Ident()}
	crev, ok := comp.Reverse().(dynmig.Compose)
	if !ok || !dynmig.ExprEqual(crev.Inner, conv.Reverse()) {
		t.Fatalf("compose reverse must swap and reverse parts: %#v", comp.Reverse())
	}

	wrap := dynmig.WrapSome{Inner: dynmig.Ident()}
	if _, ok := wrap.Reverse().(dynmig.UnwrapOption); !ok {
		t.Fatalf("WrapSome reverse must be UnwrapOption")
	}
	unwrap := dynmig.UnwrapOption{Inner: dynmig.Ident()}
	if _, ok := unwrap.Reverse().(dynmig.WrapSome); !ok {
		t.Fatalf("UnwrapOption reverse must be WrapSome")
	}

	// Expressions without an inverse reverse to themselves.
	lit := dynmig.Lit(dynmig.Int(1))
	if !dynmig.ExprEqual(lit.Reverse(), lit) {
		t.Fatalf("literal must reverse to itself")
	}
}
