package board

import (
	"context"
	"sync"

	"github.com/cespare/xxhash/v2"

	"jobmate/board-service/internal/listing"
	"jobmate/board-service/internal/loader"
	"jobmate/board-service/internal/preference"
)

// Source provides the published listings collection.
type Source interface {
	Published(ctx context.Context) ([]listing.JobListing, error)
}

// OwnerSource provides the listings created by one user.
type OwnerSource interface {
	ListByOwner(ctx context.Context, userID string) ([]listing.JobListing, error)
}

// Service builds listing views bound to a profile's preferences.
type Service struct {
	published Source
	owned     OwnerSource
	deleter   Deleter
	profiles  preference.Profiles

	stripes [profileStripes]sync.Mutex
}

// profileStripes bounds the number of preference locks regardless of how
// many profiles are seen.
const profileStripes = 64

// NewService returns a configured Service.
func NewService(published Source, owned OwnerSource, deleter Deleter, profiles preference.Profiles) *Service {
	return &Service{published: published, owned: owned, deleter: deleter, profiles: profiles}
}

// Preferences returns the preference store of profileID. Stores for the same
// profile share a lock stripe, so concurrent toggles do not lose updates.
func (s *Service) Preferences(profileID string) *preference.Store {
	mu := &s.stripes[xxhash.Sum64String(profileID)%profileStripes]
	return preference.NewLockedStore(s.profiles.ForProfile(profileID), mu)
}

// OpenListings mounts a published listings page for profileID. The load
// starts immediately and runs until it settles.
func (s *Service) OpenListings(ctx context.Context, profileID string, notify Notifier) *ListingsPage {
	p := NewListingsPage(s.Preferences(profileID), notify)
	p.Mount(loader.Go(context.WithoutCancel(ctx), s.published.Published))
	return p
}

// OpenMyListings loads the owner's listings and returns the view over them.
func (s *Service) OpenMyListings(ctx context.Context, userID string, notify Notifier) (*MyListingsPage, error) {
	listings, err := s.owned.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	return NewMyListingsPage(userID, listings, s.deleter, notify), nil
}
