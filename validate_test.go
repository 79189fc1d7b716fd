package dynmig_test

import (
	"testing"

	dynmig "github.com/reoring/dynmig"
)

func TestValidateMigration_Pass(t *testing.T) {
	source := dynmig.RecordShape(
		dynmig.ShapeField{Name: "mail", Shape: dynmig.PrimShape(dynmig.PrimString)},
		dynmig.ShapeField{Name: "age", Shape: dynmig.PrimShape(dynmig.PrimInt)},
	)
	target := dynmig.RecordShape(
		dynmig.ShapeField{Name: "email", Shape: dynmig.PrimShape(dynmig.PrimString)},
		dynmig.ShapeField{Name: "age", Shape: dynmig.PrimShape(dynmig.PrimInt)},
		dynmig.ShapeField{Name: "active", Shape: dynmig.PrimShape(dynmig.PrimBoolean)},
	)
	m := dynmig.NewMigration(
		dynmig.Rename{From: "mail", To: "email"},
		dynmig.AddField{Name: "active", Default: dynmig.Lit(dynmig.Bool(true))},
	)
	res := dynmig.ValidateMigration(m, source, target)
	if !res.Valid() {
		t.Fatalf("expected valid, got %v", res.Errors)
	}
}

func TestValidateMigration_MissingTargetField(t *testing.T) {
	source := dynmig.RecordShape(
		dynmig.ShapeField{Name: "a", Shape: dynmig.PrimShape(dynmig.PrimInt)},
	)
	target := dynmig.RecordShape(
		dynmig.ShapeField{Name: "a", Shape: dynmig.PrimShape(dynmig.PrimInt)},
		dynmig.ShapeField{Name: "b", Shape: dynmig.PrimShape(dynmig.PrimInt)},
	)
	res := dynmig.ValidateMigration(dynmig.IdentityMigration(), source, target)
	if res.Valid() {
		t.Fatalf("expected a missing-target-field error")
	}
	if !res.Errors.HasCode(dynmig.CodeFieldNotFound) {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
}

func TestValidateMigration_LeftoverField(t *testing.T) {
	source := dynmig.RecordShape(
		dynmig.ShapeField{Name: "a", Shape: dynmig.PrimShape(dynmig.PrimInt)},
		dynmig.ShapeField{Name: "legacy", Shape: dynmig.PrimShape(dynmig.PrimString)},
	)
	target := dynmig.RecordShape(
		dynmig.ShapeField{Name: "a", Shape: dynmig.PrimShape(dynmig.PrimInt)},
	)
	// Not dropping "legacy" leaves a field the target shape does not know.
	res := dynmig.ValidateMigration(dynmig.IdentityMigration(), source, target)
	if res.Valid() {
		t.Fatalf("expected a leftover-field error")
	}

	fixed := dynmig.NewMigration(dynmig.DropField{Name: "legacy"})
	if res := dynmig.ValidateMigration(fixed, source, target); !res.Valid() {
		t.Fatalf("expected valid after dropping, got %v", res.Errors)
	}
}

func TestValidateMigration_DuplicateAdd(t *testing.T) {
	source := dynmig.RecordShape(
		dynmig.ShapeField{Name: "a", Shape: dynmig.PrimShape(dynmig.PrimInt)},
	)
	target := dynmig.RecordShape(
		dynmig.ShapeField{Name: "a", Shape: dynmig.PrimShape(dynmig.PrimInt)},
	)
	m := dynmig.NewMigration(dynmig.AddField{Name: "a", Default: dynmig.Lit(dynmig.Int(0))})
	res := dynmig.ValidateMigration(m, source, target)
	if res.Valid() || !res.Errors.HasCode(dynmig.CodeFieldExists) {
		t.Fatalf("expected field_exists, got %v", res.Errors)
	}
}

func TestValidateMigration_NonRecordShapes(t *testing.T) {
	res := dynmig.ValidateMigration(dynmig.IdentityMigration(), *dynmig.PrimShape(dynmig.PrimInt), *dynmig.PrimShape(dynmig.PrimInt))
	if res.Valid() || !res.Errors.HasCode(dynmig.CodeNotARecord) {
		t.Fatalf("expected not_a_record, got %v", res.Errors)
	}
}

func TestShape_DefaultFor(t *testing.T) {
	s := dynmig.RecordShape(
		dynmig.ShapeField{Name: "active", Shape: dynmig.PrimShape(dynmig.PrimBoolean), Default: dynmig.Bool(true)},
		dynmig.ShapeField{Name: "name", Shape: dynmig.PrimShape(dynmig.PrimString)},
	)
	dv, ok := s.DefaultFor("active")
	if !ok || !dynmig.ValueEqual(dv, dynmig.Bool(true)) {
		t.Fatalf("got %v (%v)", dv, ok)
	}
	if _, ok := s.DefaultFor("name"); ok {
		t.Fatalf("field without a default must report none")
	}
}

func TestLintValue(t *testing.T) {
	m := dynmig.NewMigration(
		dynmig.TransformElements{At: dynmig.Root.Field("items"), Forward: dynmig.Ident()},
		dynmig.TransformValues{At: dynmig.Root.Field("attrs"), Forward: dynmig.Ident()},
	)
	v := dynmig.NewRecord(
		dynmig.F("items", dynmig.NewSequence()),
		dynmig.F("attrs", dynmig.NewMap()),
	)
	warns := dynmig.LintValue(m, v)
	if len(warns) != 2 {
		t.Fatalf("expected 2 warnings, got %d: %v", len(warns), warns)
	}
	if !warns.HasCode(dynmig.CodeEmptySequence) || !warns.HasCode(dynmig.CodeEmptyMap) {
		t.Fatalf("unexpected warning codes: %v", warns)
	}

	// Non-empty collections lint clean.
	full := dynmig.NewRecord(
		dynmig.F("items", dynmig.NewSequence(dynmig.Int(1))),
		dynmig.F("attrs", dynmig.NewMap(dynmig.E(dynmig.Str("k"), dynmig.Int(1)))),
	)
	if warns := dynmig.LintValue(m, full); len(warns) != 0 {
		t.Fatalf("expected no warnings, got %v", warns)
	}
}
