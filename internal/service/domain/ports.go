package domain

import (
	"context"
)

// ListingCache is a read-through cache for movie listings. Entries are
// keyed by a listing kind plus a fingerprint of the query value.
// GetListing returns the key a miss should be filled under (empty when
// the lookup failed); Invalidate drops every cached listing at once.
type ListingCache interface {
	GetListing(ctx context.Context, kind string, query any, dest any) (key string, hit bool, err error)
	SetListing(ctx context.Context, key string, value any) error
	Invalidate(ctx context.Context) error
}

// EventPublisher delivers catalog events to a named queue.
type EventPublisher interface {
	Publish(ctx context.Context, queue string, message any) error
}

type noopCache struct{}

func (noopCache) GetListing(context.Context, string, any, any) (string, bool, error) {
	return "", false, nil
}
func (noopCache) SetListing(context.Context, string, any) error { return nil }
func (noopCache) Invalidate(context.Context) error              { return nil }

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, any) error { return nil }
