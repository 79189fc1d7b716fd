package dsl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dynmig "github.com/reoring/dynmig"
	"github.com/reoring/dynmig/dsl"
)

func TestBuilder_BuildsActions(t *testing.T) {
	m := dsl.NewBuilder().
		RenameField("mail", "email").
		AddField("active", dynmig.Lit(dynmig.Bool(true))).
		At(dynmig.Root.Field("address")).
		RenameField("zip", "postcode").
		MustBuild(dsl.BuildContext{})

	require.Equal(t, 3, m.ActionCount())

	ren, ok := m.Actions[0].(dynmig.Rename)
	require.True(t, ok)
	assert.Equal(t, "mail", ren.From)
	assert.Equal(t, "email", ren.To)
	assert.True(t, ren.At.IsRoot())

	deep, ok := m.Actions[2].(dynmig.Rename)
	require.True(t, ok)
	assert.True(t, deep.At.Equal(dynmig.Root.Field("address")))
}

func TestBuilder_AppliedEndToEnd(t *testing.T) {
	m := dsl.NewBuilder().
		RenameField("mail", "email").
		ChangeFieldType("age", dynmig.PrimString, dynmig.PrimInt).
		MandateField("nick", dynmig.Lit(dynmig.Str("anon"))).
		MustBuild(dsl.BuildContext{})

	v := dynmig.NewRecord(
		dynmig.F("mail", dynmig.Str("ada@example.com")),
		dynmig.F("age", dynmig.Str("36")),
		dynmig.F("nick", dynmig.None()),
	)
	out, err := m.Apply(v)
	require.NoError(t, err)

	want := dynmig.NewRecord(
		dynmig.F("email", dynmig.Str("ada@example.com")),
		dynmig.F("age", dynmig.Int(36)),
		dynmig.F("nick", dynmig.Str("anon")),
	)
	assert.True(t, dynmig.ValueEqual(out, want), "got %v", out)
}

func TestBuilder_SchemaDefaultResolution(t *testing.T) {
	target := dynmig.RecordShape(
		dynmig.ShapeField{Name: "active", Shape: dynmig.PrimShape(dynmig.PrimBoolean), Default: dynmig.Bool(true)},
	)
	m, err := dsl.NewBuilder().
		AddFieldFromSchemaDefault("active").
		Build(dsl.BuildContext{Target: target})
	require.NoError(t, err)

	out, err := m.Apply(dynmig.NewRecord())
	require.NoError(t, err)
	got, ok := dynmig.Force(out).(dynmig.Record).Get("active")
	require.True(t, ok)
	assert.True(t, dynmig.ValueEqual(got, dynmig.Bool(true)))
}

func TestBuilder_UnresolvedMarkerFailsAtBuild(t *testing.T) {
	_, err := dsl.NewBuilder().
		AddFieldFromSchemaDefault("missing").
		Build(dsl.BuildContext{Target: dynmig.RecordShape()})
	require.Error(t, err)
	iss, ok := dynmig.AsIssues(err)
	require.True(t, ok)
	assert.True(t, iss.HasCode(dynmig.CodeUnresolvedDefault))
}

func TestBuilder_BuildPartialDefersResolution(t *testing.T) {
	m := dsl.NewBuilder().
		AddFieldFromSchemaDefault("active").
		BuildPartial()
	require.Equal(t, 1, m.ActionCount())

	// The marker survives into apply time and fails there.
	_, err := m.Apply(dynmig.NewRecord())
	require.Error(t, err)
	iss, ok := dynmig.AsIssues(err)
	require.True(t, ok)
	assert.True(t, iss.HasCode(dynmig.CodeUnresolvedDefault))
}

func TestBuilder_TransformCaseNesting(t *testing.T) {
	m := dsl.NewBuilder().
		TransformCase("Some", func(nb *dsl.Builder) {
			nb.RenameField("v", "value")
		}).
		MustBuild(dsl.BuildContext{})

	tc, ok := m.Actions[0].(dynmig.TransformCase)
	require.True(t, ok)
	assert.Equal(t, "Some", tc.Case)
	require.Len(t, tc.Actions, 1)

	v := dynmig.NewVariant("Some", dynmig.NewRecord(dynmig.F("v", dynmig.Int(1))))
	out, err := m.Apply(v)
	require.NoError(t, err)
	got, err := dynmig.Root.CaseOf("Some").Field("value").Get(out)
	require.NoError(t, err)
	assert.True(t, dynmig.ValueEqual(got, dynmig.Int(1)))
}

func TestBuilder_JoinSplit(t *testing.T) {
	m := dsl.NewBuilder().
		Join("name",
			[]dynmig.DynamicOptic{dynmig.Root.Field("first"), dynmig.Root.Field("last")},
			dynmig.Concat{Parts: []dynmig.Expr{
				dynmig.OpticAccess{Path: dynmig.Root.At(0), Inner: dynmig.Ident()},
				dynmig.OpticAccess{Path: dynmig.Root.At(1), Inner: dynmig.Ident()},
			}, Separator: " "},
			nil).
		MustBuild(dsl.BuildContext{})

	v := dynmig.NewRecord(
		dynmig.F("first", dynmig.Str("Ada")),
		dynmig.F("last", dynmig.Str("Lovelace")),
	)
	out, err := m.Apply(v)
	require.NoError(t, err)
	got, err := dynmig.Root.Field("name").Get(out)
	require.NoError(t, err)
	assert.True(t, dynmig.ValueEqual(got, dynmig.Str("Ada Lovelace")))
}
