package grib2

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// SetError is the failure of one section set in DecodeAll or FieldAll.
type SetError struct {
	Index int
	Err   error
}

func (e *SetError) Error() string { return fmt.Sprintf("section set %d: %v", e.Index, e.Err) }

func (e *SetError) Unwrap() error { return e.Err }

// DecodeAll decodes every SectionSet concurrently, at most limit at a time
// (limit ≤ 0 means unbounded). The result is index-aligned with sets; a set that
// fails to decode leaves a nil slot and contributes a *SetError to the
// combined error.
// Cancelling ctx stops decodes that have not started.
func DecodeAll(ctx context.Context, sets []SectionSet, limit int) ([]PackedImage, error) {
	return decodeEach(ctx, sets, limit, SectionSet.Decode)
}

// FieldAll is DecodeAll for Field.
func FieldAll(ctx context.Context, sets []SectionSet, limit int) ([]*Field, error) {
	return decodeEach(ctx, sets, limit, SectionSet.Field)
}

func decodeEach[T any](ctx context.Context, sets []SectionSet, limit int, decode func(SectionSet) (T, error)) ([]T, error) {
	out := make([]T, len(sets))
	errs := make([]error, len(sets))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := range sets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := decode(sets[i])
			if err != nil {
				errs[i] = &SetError{Index: i, Err: err}
				return nil
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, multierr.Combine(errs...)
}
