package dynmig

import "strings"

// Migration is an ordered sequence of actions. It forms a monoid under
// AndThen with the empty migration as identity.
type Migration struct {
	Actions []Action
}

// NewMigration builds a migration from the given actions, in order.
func NewMigration(actions ...Action) Migration { return Migration{Actions: actions} }

// IdentityMigration is the empty migration.
func IdentityMigration() Migration { return Migration{} }

// AndThen appends n's actions after m's.
func (m Migration) AndThen(n Migration) Migration {
	if len(n.Actions) == 0 {
		return m
	}
	if len(m.Actions) == 0 {
		return n
	}
	out := make([]Action, 0, len(m.Actions)+len(n.Actions))
	out = append(out, m.Actions...)
	out = append(out, n.Actions...)
	return Migration{Actions: out}
}

// Append adds actions at the end.
func (m Migration) Append(actions ...Action) Migration {
	return m.AndThen(Migration{Actions: actions})
}

// Reverse reverses the sequence and each action in it.
func (m Migration) Reverse() Migration {
	out := make([]Action, len(m.Actions))
	for i, a := range m.Actions {
		out[len(m.Actions)-1-i] = a.Reverse()
	}
	return Migration{Actions: out}
}

// ActionCount returns the number of actions.
func (m Migration) ActionCount() int { return len(m.Actions) }

// IsIdentity reports whether the migration has no actions.
func (m Migration) IsIdentity() bool { return len(m.Actions) == 0 }

// IsEmpty is an alias for IsIdentity.
func (m Migration) IsEmpty() bool { return m.IsIdentity() }

// Equal compares two migrations action by action.
func (m Migration) Equal(n Migration) bool {
	if len(m.Actions) != len(n.Actions) {
		return false
	}
	for i, a := range m.Actions {
		if !ActionEqual(a, n.Actions[i]) {
			return false
		}
	}
	return true
}

// Describe renders a human-readable summary, one action per line.
func (m Migration) Describe() string {
	if len(m.Actions) == 0 {
		return "identity migration"
	}
	lines := make([]string, len(m.Actions))
	for i, a := range m.Actions {
		lines[i] = a.Describe()
	}
	return strings.Join(lines, "\n")
}

// Apply runs the migration against a value, producing the migrated value or
// halting at the first failing action. Prior actions are not rolled back;
// callers wanting atomicity keep the input.
func (m Migration) Apply(v DynamicValue) (DynamicValue, error) {
	return m.ApplyWith(v, DefaultApplyOpt())
}

// ApplyWith is Apply with explicit options.
func (m Migration) ApplyWith(v DynamicValue, opt ApplyOpt) (DynamicValue, error) {
	opt = opt.normalized()
	cur := v
	for _, a := range m.Actions {
		next, err := applyAction(a, cur, opt)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
