package dynmig

import (
	"fmt"
	"math/big"
	"strings"
)

// Expr is a pure expression evaluated against zero or one input value during
// migration. Reverse is structural and best-effort: only Convert and Compose
// have a meaningful inverse, everything else returns itself.
type Expr interface {
	Reverse() Expr
	isExpr()
}

// Literal returns a fixed value, ignoring the input.
type Literal struct{ Value DynamicValue }

// Input returns the evaluation input and fails when none is supplied.
type Input struct{}

// FieldAccess evaluates Inner to a record and extracts the named field.
type FieldAccess struct {
	Name  string
	Inner Expr
}

// OpticAccess evaluates Inner and navigates Path into the result.
type OpticAccess struct {
	Path  DynamicOptic
	Inner Expr
}

// DefaultValue carries a value resolved ahead of interpretation time, or the
// resolution error. A non-empty Marker is an unresolved builder placeholder
// that fails at evaluation time.
type DefaultValue struct {
	Value  DynamicValue
	Err    string
	Marker string
}

// Convert applies a primitive conversion to the evaluated Inner.
type Convert struct {
	From  PrimitiveKind
	To    PrimitiveKind
	Inner Expr
}

// Concat evaluates each part to a string primitive and joins them.
type Concat struct {
	Parts     []Expr
	Separator string
}

// SplitString splits the evaluated Inner by Separator and picks one element.
type SplitString struct {
	Separator string
	Inner     Expr
	Index     int
}

// Compose feeds the result of Inner as input to Outer.
type Compose struct {
	Outer Expr
	Inner Expr
}

// WrapSome wraps the evaluated Inner in the canonical Some encoding.
type WrapSome struct{ Inner Expr }

// UnwrapOption extracts a Some payload; None and Null evaluate Fallback;
// non-option values pass through unchanged.
type UnwrapOption struct {
	Inner    Expr
	Fallback Expr
}

// ConstructSeq evaluates each part in order, short-circuiting on the first
// failure.
type ConstructSeq struct{ Parts []Expr }

// Fail always fails with its message.
type Fail struct{ Message string }

// ArithOp enumerates arithmetic operators.
type ArithOp int

const (
	OpAdd ArithOp = iota + 1
	OpSub
	OpMul
	OpDiv
)

func (op ArithOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	}
	return "?"
}

// Arithmetic applies Op over two operands of the same numeric kind. Overflow
// on fixed-width kinds fails rather than wrapping.
type Arithmetic struct {
	Op    ArithOp
	Left  Expr
	Right Expr
}

// RelOp enumerates relational operators.
type RelOp int

const (
	OpLt RelOp = iota + 1
	OpLte
	OpGt
	OpGte
	OpEq
	OpNeq
)

func (op RelOp) String() string {
	switch op {
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpEq:
		return "=="
	case OpNeq:
		return "!="
	}
	return "?"
}

// Relational compares two operands of the same primitive kind.
type Relational struct {
	Op    RelOp
	Left  Expr
	Right Expr
}

// LogicOp enumerates boolean connectives.
type LogicOp int

const (
	OpAnd LogicOp = iota + 1
	OpOr
)

func (op LogicOp) String() string {
	if op == OpAnd {
		return "&&"
	}
	return "||"
}

// Logical combines two boolean operands.
type Logical struct {
	Op    LogicOp
	Left  Expr
	Right Expr
}

// Not negates a boolean operand.
type Not struct{ Inner Expr }

func (Literal) isExpr()      {}
func (Input) isExpr()        {}
func (FieldAccess) isExpr()  {}
func (OpticAccess) isExpr()  {}
func (DefaultValue) isExpr() {}
func (Convert) isExpr()      {}
func (Concat) isExpr()       {}
func (SplitString) isExpr()  {}
func (Compose) isExpr()      {}
func (WrapSome) isExpr()     {}
func (UnwrapOption) isExpr() {}
func (ConstructSeq) isExpr() {}
func (Fail) isExpr()         {}
func (Arithmetic) isExpr()   {}
func (Relational) isExpr()   {}
func (Logical) isExpr()      {}
func (Not) isExpr()          {}

func (e Literal) Reverse() Expr      { return e }
func (e Input) Reverse() Expr        { return e }
func (e FieldAccess) Reverse() Expr  { return e }
func (e OpticAccess) Reverse() Expr  { return e }
func (e DefaultValue) Reverse() Expr { return e }
func (e Convert) Reverse() Expr {
	return Convert{From: e.To, To: e.From, Inner: e.Inner}
}
func (e Concat) Reverse() Expr      { return e }
func (e SplitString) Reverse() Expr { return e }
func (e Compose) Reverse() Expr {
	return Compose{Outer: e.Inner.Reverse(), Inner: e.Outer.Reverse()}
}
func (e WrapSome) Reverse() Expr {
	return UnwrapOption{Inner: e.Inner, Fallback: Fail{Message: "cannot unwrap empty option"}}
}
func (e UnwrapOption) Reverse() Expr { return WrapSome{Inner: e.Inner} }
func (e ConstructSeq) Reverse() Expr { return e }
func (e Fail) Reverse() Expr         { return e }
func (e Arithmetic) Reverse() Expr   { return e }
func (e Relational) Reverse() Expr   { return e }
func (e Logical) Reverse() Expr      { return e }
func (e Not) Reverse() Expr          { return e }

// Lit is shorthand for a Literal expression.
func Lit(v DynamicValue) Literal { return Literal{Value: v} }

// Ident is shorthand for the Input expression.
func Ident() Input { return Input{} }

// EvalExpr evaluates e against an optional input; a nil input means the
// expression runs with no context (e.g. a schema default).
func EvalExpr(e Expr, in *DynamicValue) (DynamicValue, error) {
	return evalExpr(e, in, DefaultApplyOpt())
}

func evalExpr(e Expr, in *DynamicValue, opt ApplyOpt) (DynamicValue, error) {
	if e == nil {
		return nil, failAt("/", CodeUnresolvedDefault, nil)
	}
	switch t := e.(type) {
	case Literal:
		return t.Value, nil
	case Input:
		if in == nil {
			return nil, failAt("/", CodeNoInput, nil)
		}
		return *in, nil
	case FieldAccess:
		v, err := evalExpr(t.Inner, in, opt)
		if err != nil {
			return nil, err
		}
		r, ok := Force(v).(Record)
		if !ok {
			return nil, failAt("/", CodeNotARecord, map[string]any{"got": Force(v).Kind().String()})
		}
		fv, ok := r.Get(t.Name)
		if !ok {
			return nil, failAt("/"+t.Name, CodeFieldNotFound, map[string]any{"field": t.Name})
		}
		return fv, nil
	case OpticAccess:
		v, err := evalExpr(t.Inner, in, opt)
		if err != nil {
			return nil, err
		}
		return t.Path.GetWith(v, opt)
	case DefaultValue:
		if t.Marker != "" {
			return nil, failAt("/", CodeUnresolvedDefault, map[string]any{"field": t.Marker})
		}
		if t.Err != "" {
			return nil, failAt("/", CodeExplicitFail, map[string]any{"message": t.Err})
		}
		return t.Value, nil
	case Convert:
		v, err := evalExpr(t.Inner, in, opt)
		if err != nil {
			return nil, err
		}
		return ConvertPrimitive(t.From, t.To, v)
	case Concat:
		parts := make([]string, len(t.Parts))
		for i, pe := range t.Parts {
			v, err := evalExpr(pe, in, opt)
			if err != nil {
				return nil, err
			}
			p, ok := Force(v).(Primitive)
			if !ok {
				return nil, failAt("/", CodeTypeMismatch, map[string]any{"want": "String", "got": Force(v).Kind().String()})
			}
			s, ok := p.StringValue()
			if !ok {
				return nil, failAt("/", CodeTypeMismatch, map[string]any{"want": "String", "got": p.K.String()})
			}
			parts[i] = s
		}
		return Str(strings.Join(parts, t.Separator)), nil
	case SplitString:
		v, err := evalExpr(t.Inner, in, opt)
		if err != nil {
			return nil, err
		}
		p, ok := Force(v).(Primitive)
		if !ok {
			return nil, failAt("/", CodeTypeMismatch, map[string]any{"want": "String", "got": Force(v).Kind().String()})
		}
		s, ok := p.StringValue()
		if !ok {
			return nil, failAt("/", CodeTypeMismatch, map[string]any{"want": "String", "got": p.K.String()})
		}
		pieces := strings.Split(s, t.Separator)
		if t.Index < 0 || t.Index >= len(pieces) {
			return nil, failAt("/", CodeIndexOutOfRange, map[string]any{"index": t.Index, "length": len(pieces)})
		}
		return Str(pieces[t.Index]), nil
	case Compose:
		v, err := evalExpr(t.Inner, in, opt)
		if err != nil {
			return nil, err
		}
		return evalExpr(t.Outer, &v, opt)
	case WrapSome:
		v, err := evalExpr(t.Inner, in, opt)
		if err != nil {
			return nil, err
		}
		return Some(v), nil
	case UnwrapOption:
		v, err := evalExpr(t.Inner, in, opt)
		if err != nil {
			return nil, err
		}
		payload, isSome, isOpt := asOption(v)
		if !isOpt {
			return v, nil
		}
		if isSome {
			return payload, nil
		}
		return evalExpr(t.Fallback, in, opt)
	case ConstructSeq:
		elems := make([]DynamicValue, len(t.Parts))
		for i, pe := range t.Parts {
			v, err := evalExpr(pe, in, opt)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return NewSequence(elems...), nil
	case Fail:
		return nil, failAt("/", CodeExplicitFail, map[string]any{"message": t.Message})
	case Arithmetic:
		return evalArithmetic(t, in, opt)
	case Relational:
		return evalRelational(t, in, opt)
	case Logical:
		l, err := evalBool(t.Left, in, opt)
		if err != nil {
			return nil, err
		}
		r, err := evalBool(t.Right, in, opt)
		if err != nil {
			return nil, err
		}
		if t.Op == OpAnd {
			return Bool(l && r), nil
		}
		return Bool(l || r), nil
	case Not:
		b, err := evalBool(t.Inner, in, opt)
		if err != nil {
			return nil, err
		}
		return Bool(!b), nil
	}
	return nil, failAt("/", CodeUnknownTag, map[string]any{"expr": fmt.Sprintf("%T", e)})
}

func evalBool(e Expr, in *DynamicValue, opt ApplyOpt) (bool, error) {
	v, err := evalExpr(e, in, opt)
	if err != nil {
		return false, err
	}
	p, ok := Force(v).(Primitive)
	if !ok || p.K != PrimBoolean {
		return false, failAt("/", CodeTypeMismatch, map[string]any{"want": "Boolean", "got": describeValue(v)})
	}
	return p.Value.(bool), nil
}

func evalOperands(left, right Expr, in *DynamicValue, opt ApplyOpt) (Primitive, Primitive, error) {
	lv, err := evalExpr(left, in, opt)
	if err != nil {
		return Primitive{}, Primitive{}, err
	}
	rv, err := evalExpr(right, in, opt)
	if err != nil {
		return Primitive{}, Primitive{}, err
	}
	lp, ok := Force(lv).(Primitive)
	if !ok {
		return Primitive{}, Primitive{}, failAt("/", CodeTypeMismatch, map[string]any{"want": "Primitive", "got": Force(lv).Kind().String()})
	}
	rp, ok := Force(rv).(Primitive)
	if !ok {
		return Primitive{}, Primitive{}, failAt("/", CodeTypeMismatch, map[string]any{"want": "Primitive", "got": Force(rv).Kind().String()})
	}
	if lp.K != rp.K {
		return Primitive{}, Primitive{}, failAt("/", CodeTypeMismatch, map[string]any{"left": lp.K.String(), "right": rp.K.String()})
	}
	return lp, rp, nil
}

func evalArithmetic(t Arithmetic, in *DynamicValue, opt ApplyOpt) (DynamicValue, error) {
	lp, rp, err := evalOperands(t.Left, t.Right, in, opt)
	if err != nil {
		return nil, err
	}
	if !lp.K.IsNumeric() {
		return nil, failAt("/", CodeTypeMismatch, map[string]any{"want": "numeric", "got": lp.K.String()})
	}
	lr, _ := primitiveToRat(lp)
	rr, _ := primitiveToRat(rp)
	if lr == nil || rr == nil {
		return nil, failAt("/", CodeConversion, map[string]any{"kind": lp.K.String()})
	}
	out := new(big.Rat)
	switch t.Op {
	case OpAdd:
		out.Add(lr, rr)
	case OpSub:
		out.Sub(lr, rr)
	case OpMul:
		out.Mul(lr, rr)
	case OpDiv:
		if rr.Sign() == 0 {
			return nil, failAt("/", CodeDivisionByZero, nil)
		}
		if lp.K.IsIntegral() {
			// Integer division truncates toward zero.
			q := new(big.Int).Quo(lr.Num(), rr.Num())
			out.SetInt(q)
		} else {
			out.Quo(lr, rr)
		}
	default:
		return nil, failAt("/", CodeUnknownTag, map[string]any{"op": t.Op.String()})
	}
	// Re-narrowing to the operand kind surfaces overflow on fixed-width kinds.
	return ratToPrimitive(out, lp.K)
}

func evalRelational(t Relational, in *DynamicValue, opt ApplyOpt) (DynamicValue, error) {
	lp, rp, err := evalOperands(t.Left, t.Right, in, opt)
	if err != nil {
		return nil, err
	}
	if t.Op == OpEq || t.Op == OpNeq {
		eq := lp.Equal(rp)
		if t.Op == OpNeq {
			eq = !eq
		}
		return Bool(eq), nil
	}
	var cmp int
	switch {
	case lp.K.IsNumeric():
		lr, _ := primitiveToRat(lp)
		rr, _ := primitiveToRat(rp)
		if lr == nil || rr == nil {
			return nil, failAt("/", CodeConversion, map[string]any{"kind": lp.K.String()})
		}
		cmp = lr.Cmp(rr)
	case lp.K == PrimString:
		cmp = strings.Compare(lp.Value.(string), rp.Value.(string))
	case lp.K == PrimChar:
		cmp = int(lp.Value.(rune)) - int(rp.Value.(rune))
	default:
		return nil, failAt("/", CodeTypeMismatch, map[string]any{"want": "ordered primitive", "got": lp.K.String()})
	}
	switch t.Op {
	case OpLt:
		return Bool(cmp < 0), nil
	case OpLte:
		return Bool(cmp <= 0), nil
	case OpGt:
		return Bool(cmp > 0), nil
	case OpGte:
		return Bool(cmp >= 0), nil
	}
	return nil, failAt("/", CodeUnknownTag, map[string]any{"op": t.Op.String()})
}

// ExprEqual is structural equality over expressions, used by the optimizer
// and by serialization round-trip checks.
func ExprEqual(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch at := a.(type) {
	case Literal:
		bt, ok := b.(Literal)
		return ok && ValueEqual(at.Value, bt.Value)
	case Input:
		_, ok := b.(Input)
		return ok
	case FieldAccess:
		bt, ok := b.(FieldAccess)
		return ok && at.Name == bt.Name && ExprEqual(at.Inner, bt.Inner)
	case OpticAccess:
		bt, ok := b.(OpticAccess)
		return ok && at.Path.Equal(bt.Path) && ExprEqual(at.Inner, bt.Inner)
	case DefaultValue:
		bt, ok := b.(DefaultValue)
		return ok && at.Err == bt.Err && at.Marker == bt.Marker && ValueEqual(at.Value, bt.Value)
	case Convert:
		bt, ok := b.(Convert)
		return ok && at.From == bt.From && at.To == bt.To && ExprEqual(at.Inner, bt.Inner)
	case Concat:
		bt, ok := b.(Concat)
		if !ok || at.Separator != bt.Separator || len(at.Parts) != len(bt.Parts) {
			return false
		}
		for i := range at.Parts {
			if !ExprEqual(at.Parts[i], bt.Parts[i]) {
				return false
			}
		}
		return true
	case SplitString:
		bt, ok := b.(SplitString)
		return ok && at.Separator == bt.Separator && at.Index == bt.Index && ExprEqual(at.Inner, bt.Inner)
	case Compose:
		bt, ok := b.(Compose)
		return ok && ExprEqual(at.Outer, bt.Outer) && ExprEqual(at.Inner, bt.Inner)
	case WrapSome:
		bt, ok := b.(WrapSome)
		return ok && ExprEqual(at.Inner, bt.Inner)
	case UnwrapOption:
		bt, ok := b.(UnwrapOption)
		return ok && ExprEqual(at.Inner, bt.Inner) && ExprEqual(at.Fallback, bt.Fallback)
	case ConstructSeq:
		bt, ok := b.(ConstructSeq)
		if !ok || len(at.Parts) != len(bt.Parts) {
			return false
		}
		for i := range at.Parts {
			if !ExprEqual(at.Parts[i], bt.Parts[i]) {
				return false
			}
		}
		return true
	case Fail:
		bt, ok := b.(Fail)
		return ok && at.Message == bt.Message
	case Arithmetic:
		bt, ok := b.(Arithmetic)
		return ok && at.Op == bt.Op && ExprEqual(at.Left, bt.Left) && ExprEqual(at.Right, bt.Right)
	case Relational:
		bt, ok := b.(Relational)
		return ok && at.Op == bt.Op && ExprEqual(at.Left, bt.Left) && ExprEqual(at.Right, bt.Right)
	case Logical:
		bt, ok := b.(Logical)
		return ok && at.Op == bt.Op && ExprEqual(at.Left, bt.Left) && ExprEqual(at.Right, bt.Right)
	case Not:
		bt, ok := b.(Not)
		return ok && ExprEqual(at.Inner, bt.Inner)
	}
	return false
}
