package dynmig

// Optimize rewrites the action sequence into a semantically equivalent,
// shorter one. Only adjacent actions at the same path are touched, so
// aliasing paths can never be reordered past each other:
//
//   - AddField(x) directly followed by DropField(x) cancels out
//   - Rename(a,b) directly followed by Rename(b,a) cancels out
//   - Rename(a,b) directly followed by Rename(b,c) fuses into Rename(a,c)
//
// The pass runs to a fixpoint over a result stack, so cancellations exposed
// by earlier rewrites are found too.
func Optimize(m Migration) Migration {
	stack := make([]Action, 0, len(m.Actions))
	for _, a := range m.Actions {
		stack = append(stack, a)
		for len(stack) >= 2 {
			n := len(stack)
			fused, drop := fusePair(stack[n-2], stack[n-1])
			if drop {
				stack = stack[:n-2]
				continue
			}
			if fused != nil {
				stack = stack[:n-2]
				stack = append(stack, fused)
				continue
			}
			break
		}
	}
	return Migration{Actions: stack}
}

// fusePair inspects two adjacent actions: drop=true removes both, a non-nil
// fused action replaces both, (nil,false) leaves them alone.
func fusePair(first, second Action) (fused Action, drop bool) {
	switch f := first.(type) {
	case AddField:
		d, ok := second.(DropField)
		if ok && f.At.Equal(d.At) && f.Name == d.Name {
			return nil, true
		}
	case Rename:
		s, ok := second.(Rename)
		if !ok || !f.At.Equal(s.At) || f.To != s.From {
			return nil, false
		}
		if s.To == f.From {
			return nil, true
		}
		return Rename{At: f.At, From: f.From, To: s.To}, false
	}
	return nil, false
}
