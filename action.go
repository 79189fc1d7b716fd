package dynmig

import (
	"fmt"
	"strings"
)

// Action is one migration step targeted at a path. Reverse is a structural,
// best-effort inverse: value-level round trips are only guaranteed when the
// embedded expressions are true inverses. PrefixPath re-roots the target
// path, used when flattening nested TransformCase migrations.
type Action interface {
	// Optic returns the target path of the action.
	Optic() DynamicOptic
	Reverse() Action
	// ReverseChecked reports whether the structural inverse is well-defined
	// (false for DropField without a reverse default).
	ReverseChecked() (Action, bool)
	PrefixPath(p DynamicOptic) Action
	Describe() string
	isAction()
}

// Identity leaves the value unchanged.
type Identity struct{ At DynamicOptic }

// AddField appends a new field computed by Default to the target record.
// A nil Default makes the action fail at apply time with unresolved_default.
type AddField struct {
	At      DynamicOptic
	Name    string
	Default Expr
}

// DropField removes a field when present; absence is a no-op. ReverseDefault
// feeds the AddField produced by Reverse; when nil the drop is irreversible.
type DropField struct {
	At             DynamicOptic
	Name           string
	ReverseDefault Expr
}

// Rename renames a field in place; a missing source field is a no-op and an
// existing target field is an error.
type Rename struct {
	At   DynamicOptic
	From string
	To   string
}

// TransformValue replaces a field's value with Forward applied to it.
type TransformValue struct {
	At       DynamicOptic
	Field    string
	Forward  Expr
	Backward Expr
}

// Mandate unwraps an optional field: Some yields its payload, None and Null
// evaluate Default, plain values and a missing field pass through.
type Mandate struct {
	At      DynamicOptic
	Field   string
	Default Expr
}

// Optionalize wraps a field's value in the Some encoding. ReverseDefault is
// carried so that Mandate.Reverse survives a double reverse; it may be nil.
type Optionalize struct {
	At             DynamicOptic
	Field          string
	ReverseDefault Expr
}

// ChangeType replaces a field's value via Converter (typically a Convert
// expression); ReverseConverter drives the reverse direction.
type ChangeType struct {
	At               DynamicOptic
	Field            string
	Converter        Expr
	ReverseConverter Expr
}

// RenameCase retags a matching variant; anything else passes through.
type RenameCase struct {
	At   DynamicOptic
	From string
	To   string
}

// TransformCase applies a nested migration to a matching variant's payload;
// anything else passes through.
type TransformCase struct {
	At      DynamicOptic
	Case    string
	Actions []Action
}

// TransformElements applies Forward to every element of a sequence,
// collecting all element failures.
type TransformElements struct {
	At       DynamicOptic
	Forward  Expr
	Backward Expr
}

// TransformKeys applies Forward to every map key, or to every field name of
// a record (fed the old name as a string; non-string results are coerced).
type TransformKeys struct {
	At       DynamicOptic
	Forward  Expr
	Backward Expr
}

// TransformValues applies Forward to every map value or record field value.
type TransformValues struct {
	At       DynamicOptic
	Forward  Expr
	Backward Expr
}

// Join reads each source path under the target record, feeds the combiner a
// sequence of their values, and appends the result as Target. Single-field
// source paths are consumed.
type Join struct {
	At       DynamicOptic
	Target   string
	Sources  []DynamicOptic
	Combiner Expr
	Splitter Expr
}

// Split evaluates the splitter on the Source field, requires a sequence of
// exactly len(Targets) elements, removes Source, and writes element i at
// target path i (single-field targets are appended when absent).
type Split struct {
	At       DynamicOptic
	Source   string
	Targets  []DynamicOptic
	Splitter Expr
	Combiner Expr
}

func (Identity) isAction()          {}
func (AddField) isAction()          {}
func (DropField) isAction()         {}
func (Rename) isAction()            {}
func (TransformValue) isAction()    {}
func (Mandate) isAction()           {}
func (Optionalize) isAction()       {}
func (ChangeType) isAction()        {}
func (RenameCase) isAction()        {}
func (TransformCase) isAction()     {}
func (TransformElements) isAction() {}
func (TransformKeys) isAction()     {}
func (TransformValues) isAction()   {}
func (Join) isAction()              {}
func (Split) isAction()             {}

func (a Identity) Optic() DynamicOptic          { return a.At }
func (a AddField) Optic() DynamicOptic          { return a.At }
func (a DropField) Optic() DynamicOptic         { return a.At }
func (a Rename) Optic() DynamicOptic            { return a.At }
func (a TransformValue) Optic() DynamicOptic    { return a.At }
func (a Mandate) Optic() DynamicOptic           { return a.At }
func (a Optionalize) Optic() DynamicOptic       { return a.At }
func (a ChangeType) Optic() DynamicOptic        { return a.At }
func (a RenameCase) Optic() DynamicOptic        { return a.At }
func (a TransformCase) Optic() DynamicOptic     { return a.At }
func (a TransformElements) Optic() DynamicOptic { return a.At }
func (a TransformKeys) Optic() DynamicOptic     { return a.At }
func (a TransformValues) Optic() DynamicOptic   { return a.At }
func (a Join) Optic() DynamicOptic              { return a.At }
func (a Split) Optic() DynamicOptic             { return a.At }

func (a Identity) Reverse() Action { return a }
func (a AddField) Reverse() Action {
	return DropField{At: a.At, Name: a.Name, ReverseDefault: a.Default}
}
func (a DropField) Reverse() Action {
	return AddField{At: a.At, Name: a.Name, Default: a.ReverseDefault}
}
func (a Rename) Reverse() Action { return Rename{At: a.At, From: a.To, To: a.From} }
func (a TransformValue) Reverse() Action {
	return TransformValue{At: a.At, Field: a.Field, Forward: a.Backward, Backward: a.Forward}
}
func (a Mandate) Reverse() Action {
	return Optionalize{At: a.At, Field: a.Field, ReverseDefault: a.Default}
}
func (a Optionalize) Reverse() Action {
	return Mandate{At: a.At, Field: a.Field, Default: a.ReverseDefault}
}
func (a ChangeType) Reverse() Action {
	return ChangeType{At: a.At, Field: a.Field, Converter: a.ReverseConverter, ReverseConverter: a.Converter}
}
func (a RenameCase) Reverse() Action { return RenameCase{At: a.At, From: a.To, To: a.From} }
func (a TransformCase) Reverse() Action {
	rev := make([]Action, len(a.Actions))
	for i, n := range a.Actions {
		rev[len(a.Actions)-1-i] = n.Reverse()
	}
	return TransformCase{At: a.At, Case: a.Case, Actions: rev}
}
func (a TransformElements) Reverse() Action {
	return TransformElements{At: a.At, Forward: a.Backward, Backward: a.Forward}
}
func (a TransformKeys) Reverse() Action {
	return TransformKeys{At: a.At, Forward: a.Backward, Backward: a.Forward}
}
func (a TransformValues) Reverse() Action {
	return TransformValues{At: a.At, Forward: a.Backward, Backward: a.Forward}
}
func (a Join) Reverse() Action {
	return Split{At: a.At, Source: a.Target, Targets: a.Sources, Splitter: a.Splitter, Combiner: a.Combiner}
}
func (a Split) Reverse() Action {
	return Join{At: a.At, Target: a.Source, Sources: a.Targets, Combiner: a.Combiner, Splitter: a.Splitter}
}

func (a Identity) ReverseChecked() (Action, bool) { return a.Reverse(), true }
func (a AddField) ReverseChecked() (Action, bool) { return a.Reverse(), true }
func (a DropField) ReverseChecked() (Action, bool) {
	return a.Reverse(), a.ReverseDefault != nil
}
func (a Rename) ReverseChecked() (Action, bool)         { return a.Reverse(), true }
func (a TransformValue) ReverseChecked() (Action, bool) { return a.Reverse(), a.Backward != nil }
func (a Mandate) ReverseChecked() (Action, bool)        { return a.Reverse(), true }
func (a Optionalize) ReverseChecked() (Action, bool)    { return a.Reverse(), true }
func (a ChangeType) ReverseChecked() (Action, bool) {
	return a.Reverse(), a.ReverseConverter != nil
}
func (a RenameCase) ReverseChecked() (Action, bool) { return a.Reverse(), true }
func (a TransformCase) ReverseChecked() (Action, bool) {
	ok := true
	for _, n := range a.Actions {
		if _, nok := n.ReverseChecked(); !nok {
			ok = false
		}
	}
	return a.Reverse(), ok
}
func (a TransformElements) ReverseChecked() (Action, bool) { return a.Reverse(), a.Backward != nil }
func (a TransformKeys) ReverseChecked() (Action, bool)     { return a.Reverse(), a.Backward != nil }
func (a TransformValues) ReverseChecked() (Action, bool)   { return a.Reverse(), a.Backward != nil }
func (a Join) ReverseChecked() (Action, bool)              { return a.Reverse(), a.Splitter != nil }
func (a Split) ReverseChecked() (Action, bool)             { return a.Reverse(), a.Combiner != nil }

func (a Identity) PrefixPath(p DynamicOptic) Action { return Identity{At: a.At.Prefix(p)} }
func (a AddField) PrefixPath(p DynamicOptic) Action {
	a.At = a.At.Prefix(p)
	return a
}
func (a DropField) PrefixPath(p DynamicOptic) Action {
	a.At = a.At.Prefix(p)
	return a
}
func (a Rename) PrefixPath(p DynamicOptic) Action {
	a.At = a.At.Prefix(p)
	return a
}
func (a TransformValue) PrefixPath(p DynamicOptic) Action {
	a.At = a.At.Prefix(p)
	return a
}
func (a Mandate) PrefixPath(p DynamicOptic) Action {
	a.At = a.At.Prefix(p)
	return a
}
func (a Optionalize) PrefixPath(p DynamicOptic) Action {
	a.At = a.At.Prefix(p)
	return a
}
func (a ChangeType) PrefixPath(p DynamicOptic) Action {
	a.At = a.At.Prefix(p)
	return a
}
func (a RenameCase) PrefixPath(p DynamicOptic) Action {
	a.At = a.At.Prefix(p)
	return a
}
func (a TransformCase) PrefixPath(p DynamicOptic) Action {
	a.At = a.At.Prefix(p)
	return a
}
func (a TransformElements) PrefixPath(p DynamicOptic) Action {
	a.At = a.At.Prefix(p)
	return a
}
func (a TransformKeys) PrefixPath(p DynamicOptic) Action {
	a.At = a.At.Prefix(p)
	return a
}
func (a TransformValues) PrefixPath(p DynamicOptic) Action {
	a.At = a.At.Prefix(p)
	return a
}
func (a Join) PrefixPath(p DynamicOptic) Action {
	a.At = a.At.Prefix(p)
	return a
}
func (a Split) PrefixPath(p DynamicOptic) Action {
	a.At = a.At.Prefix(p)
	return a
}

func (a Identity) Describe() string { return fmt.Sprintf("identity at %s", a.At) }
func (a AddField) Describe() string {
	return fmt.Sprintf("add field %q at %s", a.Name, a.At)
}
func (a DropField) Describe() string {
	return fmt.Sprintf("drop field %q at %s", a.Name, a.At)
}
func (a Rename) Describe() string {
	return fmt.Sprintf("rename field %q to %q at %s", a.From, a.To, a.At)
}
func (a TransformValue) Describe() string {
	return fmt.Sprintf("transform field %q at %s", a.Field, a.At)
}
func (a Mandate) Describe() string {
	return fmt.Sprintf("mandate field %q at %s", a.Field, a.At)
}
func (a Optionalize) Describe() string {
	return fmt.Sprintf("optionalize field %q at %s", a.Field, a.At)
}
func (a ChangeType) Describe() string {
	return fmt.Sprintf("change type of field %q at %s", a.Field, a.At)
}
func (a RenameCase) Describe() string {
	return fmt.Sprintf("rename case %q to %q at %s", a.From, a.To, a.At)
}
func (a TransformCase) Describe() string {
	inner := make([]string, len(a.Actions))
	for i, n := range a.Actions {
		inner[i] = n.Describe()
	}
	return fmt.Sprintf("transform case %q at %s [%s]", a.Case, a.At, strings.Join(inner, "; "))
}
func (a TransformElements) Describe() string {
	return fmt.Sprintf("transform elements at %s", a.At)
}
func (a TransformKeys) Describe() string { return fmt.Sprintf("transform keys at %s", a.At) }
func (a TransformValues) Describe() string {
	return fmt.Sprintf("transform values at %s", a.At)
}
func (a Join) Describe() string {
	return fmt.Sprintf("join %d sources into field %q at %s", len(a.Sources), a.Target, a.At)
}
func (a Split) Describe() string {
	return fmt.Sprintf("split field %q into %d targets at %s", a.Source, len(a.Targets), a.At)
}

// ActionKind returns a stable name for the action's variant, used by the
// introspector and the serialized form.
func ActionKind(a Action) string {
	switch a.(type) {
	case Identity:
		return "Identity"
	case AddField:
		return "AddField"
	case DropField:
		return "DropField"
	case Rename:
		return "Rename"
	case TransformValue:
		return "TransformValue"
	case Mandate:
		return "Mandate"
	case Optionalize:
		return "Optionalize"
	case ChangeType:
		return "ChangeType"
	case RenameCase:
		return "RenameCase"
	case TransformCase:
		return "TransformCase"
	case TransformElements:
		return "TransformElements"
	case TransformKeys:
		return "TransformKeys"
	case TransformValues:
		return "TransformValues"
	case Join:
		return "Join"
	case Split:
		return "Split"
	}
	return "Unknown"
}

// ActionEqual is structural equality over actions.
func ActionEqual(a, b Action) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch at := a.(type) {
	case Identity:
		bt, ok := b.(Identity)
		return ok && at.At.Equal(bt.At)
	case AddField:
		bt, ok := b.(AddField)
		return ok && at.At.Equal(bt.At) && at.Name == bt.Name && ExprEqual(at.Default, bt.Default)
	case DropField:
		bt, ok := b.(DropField)
		return ok && at.At.Equal(bt.At) && at.Name == bt.Name && ExprEqual(at.ReverseDefault, bt.ReverseDefault)
	case Rename:
		bt, ok := b.(Rename)
		return ok && at.At.Equal(bt.At) && at.From == bt.From && at.To == bt.To
	case TransformValue:
		bt, ok := b.(TransformValue)
		return ok && at.At.Equal(bt.At) && at.Field == bt.Field && ExprEqual(at.Forward, bt.Forward) && ExprEqual(at.Backward, bt.Backward)
	case Mandate:
		bt, ok := b.(Mandate)
		return ok && at.At.Equal(bt.At) && at.Field == bt.Field && ExprEqual(at.Default, bt.Default)
	case Optionalize:
		bt, ok := b.(Optionalize)
		return ok && at.At.Equal(bt.At) && at.Field == bt.Field && ExprEqual(at.ReverseDefault, bt.ReverseDefault)
	case ChangeType:
		bt, ok := b.(ChangeType)
		return ok && at.At.Equal(bt.At) && at.Field == bt.Field && ExprEqual(at.Converter, bt.Converter) && ExprEqual(at.ReverseConverter, bt.ReverseConverter)
	case RenameCase:
		bt, ok := b.(RenameCase)
		return ok && at.At.Equal(bt.At) && at.From == bt.From && at.To == bt.To
	case TransformCase:
		bt, ok := b.(TransformCase)
		if !ok || !at.At.Equal(bt.At) || at.Case != bt.Case || len(at.Actions) != len(bt.Actions) {
			return false
		}
		for i := range at.Actions {
			if !ActionEqual(at.Actions[i], bt.Actions[i]) {
				return false
			}
		}
		return true
	case TransformElements:
		bt, ok := b.(TransformElements)
		return ok && at.At.Equal(bt.At) && ExprEqual(at.Forward, bt.Forward) && ExprEqual(at.Backward, bt.Backward)
	case TransformKeys:
		bt, ok := b.(TransformKeys)
		return ok && at.At.Equal(bt.At) && ExprEqual(at.Forward, bt.Forward) && ExprEqual(at.Backward, bt.Backward)
	case TransformValues:
		bt, ok := b.(TransformValues)
		return ok && at.At.Equal(bt.At) && ExprEqual(at.Forward, bt.Forward) && ExprEqual(at.Backward, bt.Backward)
	case Join:
		bt, ok := b.(Join)
		if !ok || !at.At.Equal(bt.At) || at.Target != bt.Target || len(at.Sources) != len(bt.Sources) {
			return false
		}
		for i := range at.Sources {
			if !at.Sources[i].Equal(bt.Sources[i]) {
				return false
			}
		}
		return ExprEqual(at.Combiner, bt.Combiner) && ExprEqual(at.Splitter, bt.Splitter)
	case Split:
		bt, ok := b.(Split)
		if !ok || !at.At.Equal(bt.At) || at.Source != bt.Source || len(at.Targets) != len(bt.Targets) {
			return false
		}
		for i := range at.Targets {
			if !at.Targets[i].Equal(bt.Targets[i]) {
				return false
			}
		}
		return ExprEqual(at.Splitter, bt.Splitter) && ExprEqual(at.Combiner, bt.Combiner)
	}
	return false
}
