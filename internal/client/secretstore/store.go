// Package secretstore provides the durable key-value storage the session
// keeps its credential pair in. Only two names are ever used
// (common.AccessTokenSecretName and common.RefreshTokenSecretName), but the
// backends are generic.
package secretstore

import (
	"context"
	"errors"
)

// Store is a named-secret store. Get reports ok=false for a missing name;
// Delete of a missing name is not an error.
type Store interface {
	Get(ctx context.Context, name string) (value string, ok bool, err error)
	Set(ctx context.Context, name, value string) error
	Delete(ctx context.Context, name string) error
}

// Batcher is implemented by stores that can write or remove several secrets
// in one atomic step.
type Batcher interface {
	SetMany(ctx context.Context, values map[string]string) error
	DeleteMany(ctx context.Context, names ...string) error
}

// SetAll writes every value, atomically when s implements Batcher.
func SetAll(ctx context.Context, s Store, values map[string]string) error {
	if b, ok := s.(Batcher); ok {
		return b.SetMany(ctx, values)
	}
	for name, value := range values {
		if err := s.Set(ctx, name, value); err != nil {
			return err
		}
	}
	return nil
}

// DeleteAll removes every name. Without Batcher support it keeps going after
// a failure and returns the joined errors.
func DeleteAll(ctx context.Context, s Store, names ...string) error {
	if b, ok := s.(Batcher); ok {
		return b.DeleteMany(ctx, names...)
	}
	var errs []error
	for _, name := range names {
		if err := s.Delete(ctx, name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
