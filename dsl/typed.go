package dsl

import (
	dynmig "github.com/reoring/dynmig"
)

// Converter bridges a concrete Go type and the dynamic value model. It
// stands in for a full schema system, which is the caller's concern.
type Converter[T any] interface {
	ToDynamic(v T) (dynmig.DynamicValue, error)
	FromDynamic(v dynmig.DynamicValue) (T, error)
}

// Typed pairs a dynamic migration with converters for its source and target
// types, so callers can migrate A values directly into B values.
type Typed[A, B any] struct {
	Migration dynmig.Migration
	Source    Converter[A]
	Target    Converter[B]
}

// NewTyped builds a typed migration wrapper.
func NewTyped[A, B any](m dynmig.Migration, source Converter[A], target Converter[B]) Typed[A, B] {
	return Typed[A, B]{Migration: m, Source: source, Target: target}
}

// Apply encodes, migrates, and decodes. The three failure surfaces stay
// distinct: encode_failed means the source converter rejected the input,
// migration issues pass through untouched, decode_failed means the migrated
// value does not fit the target type.
func (t Typed[A, B]) Apply(a A) (B, error) {
	var zero B
	dv, err := t.Source.ToDynamic(a)
	if err != nil {
		return zero, wrapBoundary(err, dynmig.CodeEncodeFailed)
	}
	out, err := t.Migration.Apply(dv)
	if err != nil {
		return zero, err
	}
	b, err := t.Target.FromDynamic(out)
	if err != nil {
		return zero, wrapBoundary(err, dynmig.CodeDecodeFailed)
	}
	return b, nil
}

// Reverse swaps direction: the reversed migration plus swapped converters.
func (t Typed[A, B]) Reverse() Typed[B, A] {
	return Typed[B, A]{Migration: t.Migration.Reverse(), Source: t.Target, Target: t.Source}
}

func wrapBoundary(err error, code string) error {
	if iss, ok := dynmig.AsIssues(err); ok && iss.HasCode(code) {
		return iss
	}
	return dynmig.Issues{{Path: "/", Code: code, Message: err.Error(), Cause: err}}
}
