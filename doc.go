package dynmig

// Package dynmig provides:
//
// - An untyped structural value model (DynamicValue: primitive, record,
//   variant, sequence, map, null) with deep structural equality
// - A composable path language (DynamicOptic) for reading and rewriting
//   subvalues inside a DynamicValue
// - A migration algebra (Action/Migration) describing transformations
//   between two versions of a structural schema, with best-effort reversal
// - A pure expression language (Expr) used by actions to compute defaults,
//   transformed values, and primitive conversions
// - A stable error model via Issues (slash paths, code, message)
//
// Design policy:
// - Keep only public APIs in the root package; no hidden mutable state.
// - Place the builder DSL under dsl/, byte codecs under codec/, and the CLI
//   under cmd/dynmig.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	m := dynmig.NewMigration(
//		dynmig.Rename{At: dynmig.Root, From: "fullName", To: "name"},
//		dynmig.AddField{At: dynmig.Root, Name: "email", Default: dynmig.Literal{Value: dynmig.Str("n/a")}},
//	)
//	out, err := m.Apply(in)
//
// Applying a migration never mutates its input: every step produces a new
// value or halts with an error, and prior steps are not rolled back.
