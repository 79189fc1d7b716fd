package dynmig

import (
	"fmt"
	"sort"
	"strings"
)

// Summarize counts actions by variant name, recursing into TransformCase.
func Summarize(m Migration) map[string]int {
	out := map[string]int{}
	var walk func(actions []Action)
	walk = func(actions []Action) {
		for _, a := range actions {
			out[ActionKind(a)]++
			if tc, ok := a.(TransformCase); ok {
				walk(tc.Actions)
			}
		}
	}
	walk(m.Actions)
	return out
}

// actionWeight scores how invasive an action is for the complexity metric.
func actionWeight(a Action) int {
	switch a.(type) {
	case Join, Split, TransformCase:
		return 3
	case TransformValue, ChangeType, TransformElements, TransformKeys, TransformValues:
		return 2
	case Identity:
		return 0
	default:
		return 1
	}
}

// Complexity produces a bounded score in [0,10] scaling with action count
// and weight.
func Complexity(m Migration) int {
	total := 0
	for _, a := range m.Actions {
		total += actionWeight(a)
		if tc, ok := a.(TransformCase); ok {
			total += Complexity(Migration{Actions: tc.Actions})
		}
	}
	if total > 10 {
		return 10
	}
	return total
}

// IsFullyReversible reports whether every action (including nested ones) has
// a well-defined structural inverse.
func IsFullyReversible(m Migration) bool {
	for _, a := range m.Actions {
		if _, ok := a.ReverseChecked(); !ok {
			return false
		}
	}
	return true
}

// GenerateDocumentation renders a markdown description of the migration.
func GenerateDocumentation(m Migration) string {
	b := &strings.Builder{}
	b.WriteString("# Migration\n\n")
	if m.IsIdentity() {
		b.WriteString("No changes.\n")
		return b.String()
	}
	fmt.Fprintf(b, "%d step(s), complexity %d/10.\n\n", m.ActionCount(), Complexity(m))
	for i, a := range m.Actions {
		fmt.Fprintf(b, "%d. %s\n", i+1, a.Describe())
	}
	summary := Summarize(m)
	kinds := make([]string, 0, len(summary))
	for k := range summary {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	b.WriteString("\n## Summary\n\n")
	for _, k := range kinds {
		fmt.Fprintf(b, "- %s: %d\n", k, summary[k])
	}
	if !IsFullyReversible(m) {
		b.WriteString("\nThis migration is not fully reversible.\n")
	}
	return b.String()
}

// GenerateSQLDDL renders best-effort ALTER TABLE hints for record-level
// actions at the root path. Actions that have no relational analogue come
// out as comments.
func GenerateSQLDDL(m Migration, table string) string {
	if table == "" {
		table = "t"
	}
	b := &strings.Builder{}
	for _, a := range m.Actions {
		switch t := a.(type) {
		case AddField:
			fmt.Fprintf(b, "ALTER TABLE %s ADD COLUMN %s;\n", table, t.Name)
		case DropField:
			fmt.Fprintf(b, "ALTER TABLE %s DROP COLUMN %s;\n", table, t.Name)
		case Rename:
			fmt.Fprintf(b, "ALTER TABLE %s RENAME COLUMN %s TO %s;\n", table, t.From, t.To)
		case ChangeType:
			if conv, ok := t.Converter.(Convert); ok {
				fmt.Fprintf(b, "ALTER TABLE %s ALTER COLUMN %s TYPE %s;\n", table, t.Field, sqlType(conv.To))
			} else {
				fmt.Fprintf(b, "-- %s\n", t.Describe())
			}
		case Mandate:
			fmt.Fprintf(b, "ALTER TABLE %s ALTER COLUMN %s SET NOT NULL;\n", table, t.Field)
		case Optionalize:
			fmt.Fprintf(b, "ALTER TABLE %s ALTER COLUMN %s DROP NOT NULL;\n", table, t.Field)
		case Identity:
			// nothing to emit
		default:
			fmt.Fprintf(b, "-- %s\n", a.Describe())
		}
	}
	return b.String()
}

func sqlType(k PrimitiveKind) string {
	switch k {
	case PrimBoolean:
		return "BOOLEAN"
	case PrimByte, PrimShort:
		return "SMALLINT"
	case PrimInt:
		return "INTEGER"
	case PrimLong, PrimBigInt:
		return "BIGINT"
	case PrimFloat:
		return "REAL"
	case PrimDouble:
		return "DOUBLE PRECISION"
	case PrimBigDecimal:
		return "NUMERIC"
	case PrimUUID:
		return "UUID"
	case PrimInstant, PrimOffsetDateTime, PrimZonedDateTime:
		return "TIMESTAMPTZ"
	case PrimLocalDate:
		return "DATE"
	case PrimLocalTime, PrimOffsetTime:
		return "TIME"
	case PrimLocalDateTime:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}
