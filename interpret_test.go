package dynmig_test

import (
	"testing"

	dynmig "github.com/reoring/dynmig"
)

func TestTransformElements(t *testing.T) {
	v := dynmig.NewRecord(dynmig.F("nums", dynmig.NewSequence(
		dynmig.Int(1), dynmig.Int(2), dynmig.Int(3),
	)))
	inc := dynmig.Arithmetic{Op: dynmig.OpAdd, Left: dynmig.Ident(), Right: dynmig.Lit(dynmig.Int(1))}
	dec := dynmig.Arithmetic{Op: dynmig.OpSub, Left: dynmig.Ident(), Right: dynmig.Lit(dynmig.Int(1))}
	m := dynmig.NewMigration(dynmig.TransformElements{
		At: dynmig.Root.Field("nums"), Forward: inc, Backward: dec,
	})

	out := mustApply(t, m, v)
	want := dynmig.NewRecord(dynmig.F("nums", dynmig.NewSequence(
		dynmig.Int(2), dynmig.Int(3), dynmig.Int(4),
	)))
	if !dynmig.ValueEqual(out, want) {
		t.Fatalf("got %v, want %v", out, want)
	}

	back := mustApply(t, m.Reverse(), out)
	if !dynmig.ValueEqual(back, v) {
		t.Fatalf("element round trip failed: %v", back)
	}

	// An empty sequence transforms to itself.
	empty := dynmig.NewRecord(dynmig.F("nums", dynmig.NewSequence()))
	if got := mustApply(t, m, empty); !dynmig.ValueEqual(got, empty) {
		t.Fatalf("empty sequence must pass through")
	}
}

// TestTransformElements_CollectsAllFailures checks that every failing element
// is reported, with element-indexed paths.
func TestTransformElements_CollectsAllFailures(t *testing.T) {
	v := dynmig.NewRecord(dynmig.F("nums", dynmig.NewSequence(
		dynmig.Int(1), dynmig.Str("two"), dynmig.Int(3), dynmig.Str("four"),
	)))
	inc := dynmig.Arithmetic{Op: dynmig.OpAdd, Left: dynmig.Ident(), Right: dynmig.Lit(dynmig.Int(1))}
	m := dynmig.NewMigration(dynmig.TransformElements{At: dynmig.Root.Field("nums"), Forward: inc})

	_, err := m.Apply(v)
	iss, ok := dynmig.AsIssues(err)
	if !ok {
		t.Fatalf("expected issues, got %v", err)
	}
	if len(iss) != 2 {
		t.Fatalf("expected 2 issues (one per bad element), got %d: %v", len(iss), iss)
	}
	if iss[0].Path != "/nums/1" || iss[1].Path != "/nums/3" {
		t.Fatalf("unexpected issue paths: %q, %q", iss[0].Path, iss[1].Path)
	}
}

func TestTransformKeysAndValues_Map(t *testing.T) {
	v := dynmig.NewMap(
		dynmig.E(dynmig.Str("a"), dynmig.Int(1)),
		dynmig.E(dynmig.Str("b"), dynmig.Int(2)),
	)
	upper := dynmig.Concat{Parts: []dynmig.Expr{dynmig.Ident(), dynmig.Lit(dynmig.Str("!"))}}
	mk := dynmig.NewMigration(dynmig.TransformKeys{Forward: upper})
	out := mustApply(t, mk, v)
	want := dynmig.NewMap(
		dynmig.E(dynmig.Str("a!"), dynmig.Int(1)),
		dynmig.E(dynmig.Str("b!"), dynmig.Int(2)),
	)
	if !dynmig.ValueEqual(out, want) {
		t.Fatalf("got %v, want %v", out, want)
	}

	inc := dynmig.Arithmetic{Op: dynmig.OpAdd, Left: dynmig.Ident(), Right: dynmig.Lit(dynmig.Int(1))}
	mv := dynmig.NewMigration(dynmig.TransformValues{Forward: inc})
	out = mustApply(t, mv, v)
	want = dynmig.NewMap(
		dynmig.E(dynmig.Str("a"), dynmig.Int(2)),
		dynmig.E(dynmig.Str("b"), dynmig.Int(3)),
	)
	if !dynmig.ValueEqual(out, want) {
		t.Fatalf("got %v, want %v", out, want)
	}
}

// TestTransformKeys_Record feeds each field name to the expression as a
// string and renames the field to the result.
func TestTransformKeys_Record(t *testing.T) {
	v := dynmig.NewRecord(
		dynmig.F("first", dynmig.Str("Ada")),
		dynmig.F("last", dynmig.Str("Lovelace")),
	)
	prefix := dynmig.Concat{Parts: []dynmig.Expr{dynmig.Lit(dynmig.Str("p_")), dynmig.Ident()}}
	m := dynmig.NewMigration(dynmig.TransformKeys{Forward: prefix})
	out := mustApply(t, m, v)
	want := dynmig.NewRecord(
		dynmig.F("p_first", dynmig.Str("Ada")),
		dynmig.F("p_last", dynmig.Str("Lovelace")),
	)
	if !dynmig.ValueEqual(out, want) {
		t.Fatalf("got %v, want %v", out, want)
	}
}

func TestTransformKeys_WrongKind(t *testing.T) {
	m := dynmig.NewMigration(dynmig.TransformKeys{Forward: dynmig.Ident()})
	_, err := m.Apply(dynmig.NewSequence(dynmig.Int(1)))
	iss, ok := dynmig.AsIssues(err)
	if !ok || !iss.HasCode(dynmig.CodeNotAMap) {
		t.Fatalf("expected not_a_map, got %v", err)
	}
}

func TestJoinSplit_RoundTrip(t *testing.T) {
	v := dynmig.NewRecord(
		dynmig.F("first", dynmig.Str("Ada")),
		dynmig.F("last", dynmig.Str("Lovelace")),
		dynmig.F("age", dynmig.Int(36)),
	)
	// Combiner sees Sequence(first, last) as its input.
	combiner := dynmig.Concat{
		Parts: []dynmig.Expr{
			dynmig.OpticAccess{Path: dynmig.Root.At(0), Inner: dynmig.Ident()},
			dynmig.OpticAccess{Path: dynmig.Root.At(1), Inner: dynmig.Ident()},
		},
		Separator: " ",
	}
	// Splitter turns the joined string back into a two-element sequence.
	splitter := dynmig.ConstructSeq{Parts: []dynmig.Expr{
		dynmig.SplitString{Separator: " ", Inner: dynmig.Ident(), Index: 0},
		dynmig.SplitString{Separator: " ", Inner: dynmig.Ident(), Index: 1},
	}}
	join := dynmig.Join{
		Target:   "name",
		Sources:  []dynmig.DynamicOptic{dynmig.Root.Field("first"), dynmig.Root.Field("last")},
		Combiner: combiner,
		Splitter: splitter,
	}

	out := mustApply(t, dynmig.NewMigration(join), v)
	want := dynmig.NewRecord(
		dynmig.F("age", dynmig.Int(36)),
		dynmig.F("name", dynmig.Str("Ada Lovelace")),
	)
	if !dynmig.ValueEqual(out, want) {
		t.Fatalf("join produced %v, want %v", out, want)
	}

	// The structural reverse splits the joined field back out.
	back := mustApply(t, dynmig.NewMigration(join.Reverse()), out)
	wantBack := dynmig.NewRecord(
		dynmig.F("age", dynmig.Int(36)),
		dynmig.F("first", dynmig.Str("Ada")),
		dynmig.F("last", dynmig.Str("Lovelace")),
	)
	if !dynmig.ValueEqual(back, wantBack) {
		t.Fatalf("split produced %v, want %v", back, wantBack)
	}
}

func TestSplit_LengthMismatch(t *testing.T) {
	v := dynmig.NewRecord(dynmig.F("name", dynmig.Str("Ada Lovelace")))
	split := dynmig.Split{
		Source: "name",
		Targets: []dynmig.DynamicOptic{
			dynmig.Root.Field("first"),
			dynmig.Root.Field("last"),
			dynmig.Root.Field("middle"),
		},
		// Always yields two parts, so the target count never matches.
		Splitter: dynmig.ConstructSeq{Parts: []dynmig.Expr{
			dynmig.SplitString{Separator: " ", Inner: dynmig.Ident(), Index: 0},
			dynmig.SplitString{Separator: " ", Inner: dynmig.Ident(), Index: 1},
		}},
	}
	_, err := dynmig.NewMigration(split).Apply(v)
	iss, ok := dynmig.AsIssues(err)
	if !ok || !iss.HasCode(dynmig.CodeSplitLength) {
		t.Fatalf("expected split_length_mismatch, got %v", err)
	}
}

func TestJoin_TargetExists(t *testing.T) {
	v := dynmig.NewRecord(
		dynmig.F("a", dynmig.Str("x")),
		dynmig.F("full", dynmig.Str("taken")),
	)
	join := dynmig.Join{
		Target:   "full",
		Sources:  []dynmig.DynamicOptic{dynmig.Root.Field("a")},
		Combiner: dynmig.OpticAccess{Path: dynmig.Root.At(0), Inner: dynmig.Ident()},
	}
	_, err := dynmig.NewMigration(join).Apply(v)
	iss, ok := dynmig.AsIssues(err)
	if !ok || !iss.HasCode(dynmig.CodeFieldExists) {
		t.Fatalf("expected field_exists, got %v", err)
	}
}

// TestScenario_TagAndDefault strings several actions together: tag a legacy
// payload, backfill a field from an expression, and tighten an optional.
func TestScenario_TagAndDefault(t *testing.T) {
	legacy := dynmig.NewRecord(
		dynmig.F("id", dynmig.Int(42)),
		dynmig.F("email", dynmig.Some(dynmig.Str("ada@example.com"))),
	)
	m := dynmig.NewMigration(
		dynmig.ChangeType{Field: "id", Converter: dynmig.Convert{From: dynmig.PrimInt, To: dynmig.PrimLong, Inner: dynmig.Ident()}},
		dynmig.Mandate{Field: "email", Default: dynmig.Lit(dynmig.Str("unknown"))},
		dynmig.AddField{Name: "active", Default: dynmig.Lit(dynmig.Bool(true))},
	)
	out := mustApply(t, m, legacy)
	want := dynmig.NewRecord(
		dynmig.F("id", dynmig.Long(42)),
		dynmig.F("email", dynmig.Str("ada@example.com")),
		dynmig.F("active", dynmig.Bool(true)),
	)
	if !dynmig.ValueEqual(out, want) {
		t.Fatalf("got %v, want %v", out, want)
	}
}

// TestScenario_VariantPayloads runs case-scoped actions over a sum type in a
// sequence, exercising case no-ops and deep paths together.
func TestScenario_VariantPayloads(t *testing.T) {
	events := dynmig.NewRecord(dynmig.F("events", dynmig.NewSequence(
		dynmig.NewVariant("Created", dynmig.NewRecord(dynmig.F("who", dynmig.Str("ada")))),
		dynmig.NewVariant("Deleted", dynmig.NewRecord(dynmig.F("who", dynmig.Str("bob")))),
	)))
	m := dynmig.NewMigration(
		dynmig.RenameCase{At: dynmig.Root.Field("events").At(0), From: "Created", To: "Added"},
		dynmig.TransformCase{
			At:   dynmig.Root.Field("events").At(1),
			Case: "Deleted",
			Actions: []dynmig.Action{
				dynmig.Rename{From: "who", To: "by"},
			},
		},
	)
	out := mustApply(t, m, events)

	c0, err := dynmig.Root.Field("events").At(0).Get(out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v := dynmig.Force(c0).(dynmig.Variant); v.Case != "Added" {
		t.Fatalf("got case %q, want Added", v.Case)
	}

	by, err := dynmig.Root.Field("events").At(1).CaseOf("Deleted").Field("by").Get(out)
	if err != nil || !dynmig.ValueEqual(by, dynmig.Str("bob")) {
		t.Fatalf("got %v (%v), want bob", by, err)
	}
}
