package dynmig

// ApplyOpt bundles interpreter options.
type ApplyOpt struct {
	// MaxDepth bounds optic recursion so adversarially nested values cannot
	// exhaust the stack.
	MaxDepth int
}

// DefaultApplyOpt returns the options used by Apply.
func DefaultApplyOpt() ApplyOpt {
	return ApplyOpt{MaxDepth: 1000}
}

func (o ApplyOpt) normalized() ApplyOpt {
	if o.MaxDepth <= 0 {
		o.MaxDepth = 1000
	}
	return o
}
