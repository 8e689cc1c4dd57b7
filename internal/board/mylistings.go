package board

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"jobmate/board-service/internal/listing"
	"jobmate/board-service/internal/preference"
)

// Deleter removes a listing on the server.
type Deleter interface {
	Delete(ctx context.Context, userID, id string) error
}

// MyListingsPage is the owner's listings view. Deletion is optimistic: the
// listing disappears locally before the server confirms, and reappears with
// a retry notice if the server call fails.
type MyListingsPage struct {
	userID   string
	listings []listing.JobListing
	remote   Deleter
	notify   Notifier

	mu      sync.Mutex
	deleted []string
}

// NewMyListingsPage returns the view over an already loaded collection.
func NewMyListingsPage(userID string, listings []listing.JobListing, remote Deleter, notify Notifier) *MyListingsPage {
	if notify == nil {
		notify = Discard
	}
	return &MyListingsPage{userID: userID, listings: listings, remote: remote, notify: notify}
}

// Visible returns the listings not pending or confirmed deletion, in order.
func (m *MyListingsPage) Visible() []listing.JobListing {
	m.mu.Lock()
	gone := preference.Set(m.deleted)
	m.mu.Unlock()

	out := make([]listing.JobListing, 0, len(m.listings))
	for _, l := range m.listings {
		if _, ok := gone[l.ID]; !ok {
			out = append(out, l)
		}
	}
	return out
}

// Delete removes id locally, then asks the server to delete it. On failure
// the local removal is reverted and a notice offering a retry is emitted.
func (m *MyListingsPage) Delete(ctx context.Context, id string) error {
	m.apply(id)

	err := m.remote.Delete(ctx, m.userID, id)
	if err == nil {
		return nil
	}

	slog.Warn("delete listing failed, restoring", "listingId", id, "err", err)
	m.revert(id)
	m.notify.Notify(Notice{
		Title:       "Failed to delete job listing",
		ActionLabel: "Retry",
		ActionHint:  "Click the delete button in the job card to retry",
		Action: func() {
			_ = m.Delete(context.WithoutCancel(ctx), id)
		},
	})
	return fmt.Errorf("delete listing %s: %w", id, err)
}

func (m *MyListingsPage) apply(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !preference.Contains(m.deleted, id) {
		m.deleted = append(m.deleted, id)
	}
}

func (m *MyListingsPage) revert(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = preference.Remove(m.deleted, id)
}
