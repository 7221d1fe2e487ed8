// Package access implements the single ownership check applied by every
// mutating operation.
package access

import (
	"fmt"

	"bookreview/internal/apperror"
)

// Owned is a resource that belongs to exactly one user.
type Owned interface {
	Owner() string
}

// Capability proves that Requester may mutate Resource.
type Capability[T Owned] struct {
	Requester string
	Resource  T
}

// Authorize returns a capability when requesterID owns resource.
// An empty requester yields ErrUnauthorized, any other mismatch ErrForbidden.
func Authorize[T Owned](requesterID string, resource T) (Capability[T], error) {
	if requesterID == "" {
		return Capability[T]{}, apperror.ErrUnauthorized
	}
	if resource.Owner() != requesterID {
		return Capability[T]{}, fmt.Errorf("not the owner of this resource: %w", apperror.ErrForbidden)
	}
	return Capability[T]{Requester: requesterID, Resource: resource}, nil
}

// RequireUser fails with ErrUnauthorized when no requester is present.
func RequireUser(requesterID string) error {
	if requesterID == "" {
		return apperror.ErrUnauthorized
	}
	return nil
}
