// Package dsl provides a fluent builder over the migration algebra and the
// typed Migration wrapper that pairs a dynamic migration with converters for
// concrete Go types.
package dsl

import (
	"fmt"

	dynmig "github.com/reoring/dynmig"
)

// Builder accumulates migration actions. The zero value targets the root
// path; At rescopes subsequent steps.
type Builder struct {
	at      dynmig.DynamicOptic
	actions []dynmig.Action
}

// NewBuilder creates an empty Builder scoped at the root.
func NewBuilder() *Builder { return &Builder{at: dynmig.Root} }

// At rescopes subsequent steps to the given path.
func (b *Builder) At(path dynmig.DynamicOptic) *Builder {
	b.at = path
	return b
}

// AtRoot rescopes subsequent steps back to the root.
func (b *Builder) AtRoot() *Builder { return b.At(dynmig.Root) }

// AddField appends an AddField step with an explicit default expression.
func (b *Builder) AddField(name string, def dynmig.Expr) *Builder {
	b.actions = append(b.actions, dynmig.AddField{At: b.at, Name: name, Default: def})
	return b
}

// AddFieldFromSchemaDefault appends an AddField step whose default is
// resolved from the target shape's declared field default at Build time.
func (b *Builder) AddFieldFromSchemaDefault(name string) *Builder {
	b.actions = append(b.actions, dynmig.AddField{
		At:      b.at,
		Name:    name,
		Default: dynmig.DefaultValue{Marker: name},
	})
	return b
}

// DropField appends a DropField step; the optional reverse default keeps the
// migration reversible.
func (b *Builder) DropField(name string, reverseDefault dynmig.Expr) *Builder {
	b.actions = append(b.actions, dynmig.DropField{At: b.at, Name: name, ReverseDefault: reverseDefault})
	return b
}

// RenameField appends a Rename step.
func (b *Builder) RenameField(from, to string) *Builder {
	b.actions = append(b.actions, dynmig.Rename{At: b.at, From: from, To: to})
	return b
}

// TransformField appends a TransformValue step.
func (b *Builder) TransformField(name string, forward, backward dynmig.Expr) *Builder {
	b.actions = append(b.actions, dynmig.TransformValue{At: b.at, Field: name, Forward: forward, Backward: backward})
	return b
}

// ChangeFieldType appends a ChangeType step converting between primitive
// kinds.
func (b *Builder) ChangeFieldType(name string, from, to dynmig.PrimitiveKind) *Builder {
	conv := dynmig.Convert{From: from, To: to, Inner: dynmig.Ident()}
	b.actions = append(b.actions, dynmig.ChangeType{
		At:               b.at,
		Field:            name,
		Converter:        conv,
		ReverseConverter: conv.Reverse(),
	})
	return b
}

// MandateField appends a Mandate step.
func (b *Builder) MandateField(name string, def dynmig.Expr) *Builder {
	b.actions = append(b.actions, dynmig.Mandate{At: b.at, Field: name, Default: def})
	return b
}

// OptionalizeField appends an Optionalize step.
func (b *Builder) OptionalizeField(name string) *Builder {
	b.actions = append(b.actions, dynmig.Optionalize{At: b.at, Field: name})
	return b
}

// RenameCase appends a RenameCase step.
func (b *Builder) RenameCase(from, to string) *Builder {
	b.actions = append(b.actions, dynmig.RenameCase{At: b.at, From: from, To: to})
	return b
}

// TransformCase appends a TransformCase step; nested is built relative to
// the case payload.
func (b *Builder) TransformCase(caseName string, nested func(*Builder)) *Builder {
	nb := NewBuilder()
	nested(nb)
	b.actions = append(b.actions, dynmig.TransformCase{At: b.at, Case: caseName, Actions: nb.actions})
	return b
}

// TransformElements appends a TransformElements step.
func (b *Builder) TransformElements(forward, backward dynmig.Expr) *Builder {
	b.actions = append(b.actions, dynmig.TransformElements{At: b.at, Forward: forward, Backward: backward})
	return b
}

// TransformKeys appends a TransformKeys step.
func (b *Builder) TransformKeys(forward, backward dynmig.Expr) *Builder {
	b.actions = append(b.actions, dynmig.TransformKeys{At: b.at, Forward: forward, Backward: backward})
	return b
}

// TransformValues appends a TransformValues step.
func (b *Builder) TransformValues(forward, backward dynmig.Expr) *Builder {
	b.actions = append(b.actions, dynmig.TransformValues{At: b.at, Forward: forward, Backward: backward})
	return b
}

// Join appends a Join step combining source paths into a new target field.
func (b *Builder) Join(target string, sources []dynmig.DynamicOptic, combiner, splitter dynmig.Expr) *Builder {
	b.actions = append(b.actions, dynmig.Join{
		At: b.at, Target: target, Sources: sources, Combiner: combiner, Splitter: splitter,
	})
	return b
}

// Split appends a Split step distributing a source field over target paths.
func (b *Builder) Split(source string, targets []dynmig.DynamicOptic, splitter, combiner dynmig.Expr) *Builder {
	b.actions = append(b.actions, dynmig.Split{
		At: b.at, Source: source, Targets: targets, Splitter: splitter, Combiner: combiner,
	})
	return b
}

// BuildContext supplies the target shape whose declared field defaults
// resolve AddFieldFromSchemaDefault markers.
type BuildContext struct {
	Target dynmig.Shape
}

// Build resolves default markers and returns the migration. An unresolved
// marker fails here, at build time, not at apply time.
func (b *Builder) Build(ctx BuildContext) (dynmig.Migration, error) {
	actions := make([]dynmig.Action, len(b.actions))
	for i, a := range b.actions {
		af, ok := a.(dynmig.AddField)
		if !ok {
			actions[i] = a
			continue
		}
		marker, ok := af.Default.(dynmig.DefaultValue)
		if !ok || marker.Marker == "" {
			actions[i] = a
			continue
		}
		dv, ok := ctx.Target.DefaultFor(marker.Marker)
		if !ok {
			return dynmig.Migration{}, dynmig.Issues{{
				Path:    "/" + marker.Marker,
				Code:    dynmig.CodeUnresolvedDefault,
				Message: fmt.Sprintf("no default declared for field %q in the target shape", marker.Marker),
				Params:  map[string]any{"field": marker.Marker},
			}}
		}
		af.Default = dynmig.DefaultValue{Value: dv}
		actions[i] = af
	}
	return dynmig.NewMigration(actions...), nil
}

// BuildPartial returns the migration with markers left in place; applying an
// action with an unresolved marker fails with unresolved_default.
func (b *Builder) BuildPartial() dynmig.Migration {
	return dynmig.NewMigration(append([]dynmig.Action(nil), b.actions...)...)
}

// MustBuild is Build that panics on error, for static migration definitions.
func (b *Builder) MustBuild(ctx BuildContext) dynmig.Migration {
	m, err := b.Build(ctx)
	if err != nil {
		panic(err)
	}
	return m
}
