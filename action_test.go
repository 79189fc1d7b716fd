package dynmig_test

import (
	"testing"

	dynmig "github.com/reoring/dynmig"
)

// TestAction_ReverseInvolution checks that a double structural reverse
// restores the original action for every variant.
func TestAction_ReverseInvolution(t *testing.T) {
	at := dynmig.Root.Field("payload")
	conv := dynmig.Convert{From: dynmig.PrimInt, To: dynmig.PrimString, Inner: dynmig.Ident()}
	actions := []dynmig.Action{
		dynmig.Identity{At: at},
		dynmig.AddField{At: at, Name: "n", Default: dynmig.Lit(dynmig.Int(0))},
		dynmig.DropField{At: at, Name: "n", ReverseDefault: dynmig.Lit(dynmig.Int(0))},
		dynmig.DropField{At: at, Name: "n"},
		dynmig.Rename{At: at, From: "a", To: "b"},
		dynmig.TransformValue{At: at, Field: "n", Forward: dynmig.Ident(), Backward: dynmig.Ident()},
		dynmig.Mandate{At: at, Field: "n", Default: dynmig.Lit(dynmig.Int(0))},
		dynmig.Optionalize{At: at, Field: "n", ReverseDefault: dynmig.Lit(dynmig.Int(0))},
		dynmig.ChangeType{At: at, Field: "n", Converter: conv, ReverseConverter: conv.Reverse()},
		dynmig.RenameCase{At: at, From: "Old", To: "New"},
		dynmig.TransformCase{At: at, Case: "Some", Actions: []dynmig.Action{
			dynmig.Rename{From: "x", To: "y"},
		}},
		dynmig.TransformElements{At: at, Forward: dynmig.Ident(), Backward: dynmig.Ident()},
		dynmig.TransformKeys{At: at, Forward: dynmig.Ident(), Backward: dynmig.Ident()},
		dynmig.TransformValues{At: at, Forward: dynmig.Ident(), Backward: dynmig.Ident()},
		dynmig.Join{At: at, Target: "full", Sources: []dynmig.DynamicOptic{dynmig.Root.Field("a")}, Combiner: dynmig.Ident(), Splitter: dynmig.Ident()},
		dynmig.Split{At: at, Source: "full", Targets: []dynmig.DynamicOptic{dynmig.Root.Field("a")}, Splitter: dynmig.Ident(), Combiner: dynmig.Ident()},
	}
	for _, a := range actions {
		back := a.Reverse().Reverse()
		if !dynmig.ActionEqual(back, a) {
			t.Fatalf("%s: double reverse changed the action:\n got %#v\nwant %#v", dynmig.ActionKind(a), back, a)
		}
	}
}

func TestAction_ReversePairs(t *testing.T) {
	at := dynmig.Root
	add := dynmig.AddField{At: at, Name: "n", Default: dynmig.Lit(dynmig.Int(0))}
	drop, ok := add.Reverse().(dynmig.DropField)
	if !ok || drop.Name != "n" || !dynmig.ExprEqual(drop.ReverseDefault, add.Default) {
		t.Fatalf("AddField reverse = %#v", add.Reverse())
	}

	ren := dynmig.Rename{At: at, From: "a", To: "b"}
	rrev, ok := ren.Reverse().(dynmig.Rename)
	if !ok || rrev.From != "b" || rrev.To != "a" {
		t.Fatalf("Rename reverse = %#v", ren.Reverse())
	}

	man := dynmig.Mandate{At: at, Field: "n", Default: dynmig.Lit(dynmig.Int(0))}
	opt, ok := man.Reverse().(dynmig.Optionalize)
	if !ok || opt.Field != "n" {
		t.Fatalf("Mandate reverse = %#v", man.Reverse())
	}

	join := dynmig.Join{At: at, Target: "full", Sources: []dynmig.DynamicOptic{dynmig.Root.Field("a")}, Combiner: dynmig.Ident(), Splitter: dynmig.Ident()}
	split, ok := join.Reverse().(dynmig.Split)
	if !ok || split.Source != "full" || len(split.Targets) != 1 {
		t.Fatalf("Join reverse = %#v", join.Reverse())
	}

	// Nested actions reverse in reverse order.
	tc := dynmig.TransformCase{At: at, Case: "Some", Actions: []dynmig.Action{
		dynmig.Rename{From: "a", To: "b"},
		dynmig.Rename{From: "c", To: "d"},
	}}
	trev := tc.Reverse().(dynmig.TransformCase)
	first := trev.Actions[0].(dynmig.Rename)
	if first.From != "d" || first.To != "c" {
		t.Fatalf("nested reverse order wrong: %#v", trev.Actions)
	}
}

func TestAction_ReverseChecked(t *testing.T) {
	reversible := []dynmig.Action{
		dynmig.Identity{},
		dynmig.AddField{Name: "n", Default: dynmig.Lit(dynmig.Int(0))},
		dynmig.DropField{Name: "n", ReverseDefault: dynmig.Lit(dynmig.Int(0))},
		dynmig.Rename{From: "a", To: "b"},
		dynmig.Mandate{Field: "n", Default: dynmig.Lit(dynmig.Int(0))},
		dynmig.Optionalize{Field: "n"},
		dynmig.RenameCase{From: "Old", To: "New"},
	}
	for _, a := range reversible {
		if _, ok := a.ReverseChecked(); !ok {
			t.Fatalf("%s: expected a well-defined reverse", dynmig.ActionKind(a))
		}
	}

	irreversible := []dynmig.Action{
		dynmig.DropField{Name: "n"},
		dynmig.TransformValue{Field: "n", Forward: dynmig.Ident()},
		dynmig.ChangeType{Field: "n", Converter: dynmig.Ident()},
		dynmig.TransformElements{Forward: dynmig.Ident()},
		dynmig.TransformKeys{Forward: dynmig.Ident()},
		dynmig.TransformValues{Forward: dynmig.Ident()},
		dynmig.Join{Target: "full", Combiner: dynmig.Ident()},
		dynmig.Split{Source: "full", Splitter: dynmig.Ident()},
		dynmig.TransformCase{Case: "Some", Actions: []dynmig.Action{
			dynmig.DropField{Name: "n"},
		}},
	}
	for _, a := range irreversible {
		if _, ok := a.ReverseChecked(); ok {
			t.Fatalf("%s: expected the reverse to be reported as undefined", dynmig.ActionKind(a))
		}
	}
}

// TestAction_PrefixPath reroots only the target path; embedded source and
// target paths stay relative to the rerooted record.
func TestAction_PrefixPath(t *testing.T) {
	prefix := dynmig.Root.Field("inner")
	ren := dynmig.Rename{At: dynmig.Root.Field("payload"), From: "a", To: "b"}
	moved := ren.PrefixPath(prefix).(dynmig.Rename)
	if !moved.At.Equal(dynmig.Root.Field("inner").Field("payload")) {
		t.Fatalf("prefix produced %s", moved.At)
	}
	if moved.From != "a" || moved.To != "b" {
		t.Fatalf("prefix must not touch field names")
	}

	join := dynmig.Join{At: dynmig.Root, Target: "full", Sources: []dynmig.DynamicOptic{dynmig.Root.Field("a")}, Combiner: dynmig.Ident()}
	mj := join.PrefixPath(prefix).(dynmig.Join)
	if !mj.At.Equal(prefix) {
		t.Fatalf("join At = %s", mj.At)
	}
	if !mj.Sources[0].Equal(dynmig.Root.Field("a")) {
		t.Fatalf("join sources must stay relative, got %s", mj.Sources[0])
	}
}

func TestActionKind(t *testing.T) {
	if dynmig.ActionKind(dynmig.AddField{}) != "AddField" {
		t.Fatalf("unexpected kind name")
	}
	if dynmig.ActionKind(dynmig.TransformCase{}) != "TransformCase" {
		t.Fatalf("unexpected kind name")
	}
}
