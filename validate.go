package dynmig

import "fmt"

// Shape is a structural schema skeleton: enough to check a migration's
// field-level consistency without a full schema system.
type Shape struct {
	Kind   ValueKind
	Prim   PrimitiveKind     // set when Kind == KindPrimitive
	Fields []ShapeField      // set when Kind == KindRecord
	Cases  map[string]*Shape // set when Kind == KindVariant
	Elem   *Shape            // set when Kind == KindSequence or KindMap (value shape)
	Key    *Shape            // set when Kind == KindMap
}

// ShapeField is a named field of a record shape. Optional marks option-typed
// fields; Default feeds the builder's schema-default resolution.
type ShapeField struct {
	Name     string
	Shape    *Shape
	Optional bool
	Default  DynamicValue
}

// RecordShape builds a record shape.
func RecordShape(fields ...ShapeField) Shape {
	return Shape{Kind: KindRecord, Fields: fields}
}

// PrimShape builds a primitive shape.
func PrimShape(k PrimitiveKind) *Shape { return &Shape{Kind: KindPrimitive, Prim: k} }

func (s Shape) fieldIndex(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// DefaultFor returns the declared default for a field, when present.
func (s Shape) DefaultFor(name string) (DynamicValue, bool) {
	i := s.fieldIndex(name)
	if i < 0 || s.Fields[i].Default == nil {
		return nil, false
	}
	return s.Fields[i].Default, true
}

// ValidationResult reports the outcome of a structural migration check.
type ValidationResult struct {
	Errors Issues
}

// Valid reports whether no errors were collected.
func (r ValidationResult) Valid() bool { return len(r.Errors) == 0 }

// ValidResult is the empty (passing) result.
func ValidResult() ValidationResult { return ValidationResult{} }

// ValidateMigration simulates the field-set effect of the migration's
// root-level record actions on the source shape and diffs the outcome
// against the target shape. Deep-path actions are skipped; value-level
// semantics stay with the interpreter.
func ValidateMigration(m Migration, source, target Shape) ValidationResult {
	var errs Issues
	if source.Kind != KindRecord || target.Kind != KindRecord {
		errs = append(errs, newIssue("/", CodeNotARecord, map[string]any{"hint": "shape validation covers record schemas"}))
		return ValidationResult{Errors: errs}
	}
	// Simulated field set, order preserved.
	names := make([]string, len(source.Fields))
	for i, f := range source.Fields {
		names[i] = f.Name
	}
	has := func(n string) int {
		for i, x := range names {
			if x == n {
				return i
			}
		}
		return -1
	}
	for _, a := range m.Actions {
		if !a.Optic().IsRoot() {
			continue
		}
		switch t := a.(type) {
		case AddField:
			if has(t.Name) >= 0 {
				errs = append(errs, newIssue("/"+t.Name, CodeFieldExists, map[string]any{"field": t.Name}))
				continue
			}
			names = append(names, t.Name)
		case DropField:
			if i := has(t.Name); i >= 0 {
				names = append(names[:i], names[i+1:]...)
			}
		case Rename:
			i := has(t.From)
			if i < 0 {
				continue
			}
			if t.To != t.From && has(t.To) >= 0 {
				errs = append(errs, newIssue("/"+t.To, CodeFieldExists, map[string]any{"field": t.To}))
				continue
			}
			names[i] = t.To
		case TransformValue:
			if has(t.Field) < 0 {
				errs = append(errs, newIssue("/"+t.Field, CodeFieldNotFound, map[string]any{"field": t.Field}))
			}
		case ChangeType:
			if has(t.Field) < 0 {
				errs = append(errs, newIssue("/"+t.Field, CodeFieldNotFound, map[string]any{"field": t.Field}))
			}
		case Split:
			if has(t.Source) < 0 {
				errs = append(errs, newIssue("/"+t.Source, CodeFieldNotFound, map[string]any{"field": t.Source}))
				continue
			}
			if i := has(t.Source); i >= 0 {
				names = append(names[:i], names[i+1:]...)
			}
			for _, tp := range t.Targets {
				if n, ok := singleFieldPath(tp); ok && has(n) < 0 {
					names = append(names, n)
				}
			}
		case Join:
			for _, sp := range t.Sources {
				if n, ok := singleFieldPath(sp); ok {
					if i := has(n); i >= 0 {
						names = append(names[:i], names[i+1:]...)
					} else {
						errs = append(errs, newIssue("/"+n, CodeFieldNotFound, map[string]any{"field": n}))
					}
				}
			}
			names = append(names, t.Target)
		}
	}
	// Every target field must be produced; every produced field must exist in
	// the target.
	for _, f := range target.Fields {
		if has(f.Name) < 0 {
			errs = append(errs, Issue{
				Path:    "/" + f.Name,
				Code:    CodeFieldNotFound,
				Message: fmt.Sprintf("target field %q is not produced by the migration", f.Name),
				Params:  map[string]any{"field": f.Name},
			})
		}
	}
	for _, n := range names {
		if target.fieldIndex(n) < 0 {
			errs = append(errs, Issue{
				Path:    "/" + n,
				Code:    CodeUnknownTag,
				Message: fmt.Sprintf("migrated field %q does not exist in the target shape", n),
				Params:  map[string]any{"field": n},
			})
		}
	}
	return ValidationResult{Errors: errs}
}

// LintValue reports diagnostic warnings for a migration against a concrete
// value: fan-out transforms that would visit an empty collection succeed
// trivially, which usually signals a mistargeted path.
func LintValue(m Migration, v DynamicValue) Issues {
	var warns Issues
	for _, a := range m.Actions {
		at := a.Optic()
		switch a.(type) {
		case TransformElements:
			tv, err := at.Get(v)
			if err != nil {
				continue
			}
			if s, ok := Force(tv).(Sequence); ok && len(s.Elements) == 0 {
				warns = append(warns, newIssue(at.String(), CodeEmptySequence, nil))
			}
		case TransformKeys, TransformValues:
			tv, err := at.Get(v)
			if err != nil {
				continue
			}
			if mp, ok := Force(tv).(MapValue); ok && len(mp.Entries) == 0 {
				warns = append(warns, newIssue(at.String(), CodeEmptyMap, nil))
			}
		}
	}
	return warns
}
