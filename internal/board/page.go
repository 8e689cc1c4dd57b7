// Package board composes the listing views: deferred listing data, the
// filter form, and the profile's hidden/favorite preference overlays.
package board

import (
	"context"
	"fmt"
	"sync"

	"jobmate/board-service/internal/filter"
	"jobmate/board-service/internal/listing"
	"jobmate/board-service/internal/loader"
	"jobmate/board-service/internal/preference"
)

// State is the render state of a listing view.
type State string

const (
	// StateLoading means the listings have not arrived; render a skeleton.
	StateLoading State = "loading"
	StateReady   State = "ready"
	// StateFailed means the listings could not be loaded. It must be shown as
	// an error, never as an empty result.
	StateFailed State = "failed"
)

// Item is one rendered listing with its preference overlay flags.
type Item struct {
	listing.JobListing
	Hidden   bool `json:"hidden"`
	Favorite bool `json:"favorite"`
}

// View is a point-in-time render of a ListingsPage.
type View struct {
	State State
	Items []Item
	Err   error
}

// ListingsPage is the published listings view for one profile.
//
// The collection arrives through a loader.Future; until it settles, Render
// reports StateLoading. Filtering re-runs on every Render against the
// resolved snapshot and never triggers another load.
type ListingsPage struct {
	prefs  *preference.Store
	form   *filter.Form
	notify Notifier

	mu       sync.Mutex
	listings []listing.JobListing
	state    State
	loadErr  error
	mounted  bool
	settled  chan struct{}
	unmount  chan struct{}
}

// NewListingsPage returns an unmounted page. A nil notifier discards notices.
func NewListingsPage(prefs *preference.Store, notify Notifier) *ListingsPage {
	if notify == nil {
		notify = Discard
	}
	return &ListingsPage{
		prefs:   prefs,
		form:    filter.NewForm(),
		notify:  notify,
		state:   StateLoading,
		settled: make(chan struct{}),
		unmount: make(chan struct{}),
	}
}

// Form is the page's filter form state.
func (p *ListingsPage) Form() *filter.Form { return p.form }

// Mount starts consuming the listings future. It returns immediately.
func (p *ListingsPage) Mount(listings *loader.Future[[]listing.JobListing]) {
	p.mu.Lock()
	if p.mounted {
		p.mu.Unlock()
		return
	}
	p.mounted = true
	p.mu.Unlock()

	go func() {
		select {
		case <-listings.Done():
		case <-p.unmount:
			return
		}
		v, err := listings.Await(context.Background())
		p.settle(v, err)
	}()
}

func (p *ListingsPage) settle(v []listing.JobListing, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	select {
	case <-p.unmount:
		// torn down before the data arrived
		return
	default:
	}
	if err != nil {
		p.state, p.loadErr = StateFailed, err
	} else {
		p.state, p.listings = StateReady, v
	}
	close(p.settled)
}

// Unmount tears the page down. A listings future settling afterwards has no
// effect.
func (p *ListingsPage) Unmount() {
	p.mu.Lock()
	defer p.mu.Unlock()
	select {
	case <-p.unmount:
	default:
		close(p.unmount)
	}
}

// Wait blocks until the listings have settled, ctx is done, or the page is
// unmounted.
func (p *ListingsPage) Wait(ctx context.Context) error {
	select {
	case <-p.settled:
		return nil
	case <-p.unmount:
		return fmt.Errorf("listings page unmounted")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Render derives the current view from the loaded listings, the form
// criteria and the stored preferences.
func (p *ListingsPage) Render(ctx context.Context) View {
	p.mu.Lock()
	state, listings, loadErr := p.state, p.listings, p.loadErr
	p.mu.Unlock()

	switch state {
	case StateLoading:
		return View{State: StateLoading}
	case StateFailed:
		return View{State: StateFailed, Err: loadErr}
	}

	hidden := p.prefs.IDs(ctx, preference.KeyHidden)
	favorites := p.prefs.IDs(ctx, preference.KeyFavorites)
	visible := filter.Apply(listings, hidden, favorites, p.form.Criteria())

	hiddenSet, favoriteSet := preference.Set(hidden), preference.Set(favorites)
	items := make([]Item, 0, len(visible))
	for _, l := range visible {
		_, isHidden := hiddenSet[l.ID]
		_, isFavorite := favoriteSet[l.ID]
		items = append(items, Item{JobListing: l, Hidden: isHidden, Favorite: isFavorite})
	}
	return View{State: StateReady, Items: items}
}

// ToggleHide flips whether id is hidden and reports the new state. Hiding
// emits a notice whose Undo action shows the listing again.
func (p *ListingsPage) ToggleHide(ctx context.Context, id, title string) (bool, error) {
	_, hidden, err := p.prefs.ToggleID(ctx, preference.KeyHidden, id)
	if err != nil {
		return hidden, fmt.Errorf("toggle hidden %s: %w", id, err)
	}
	if !hidden {
		return false, nil
	}

	p.notify.Notify(Notice{
		Title:       "Job Hidden",
		Description: fmt.Sprintf("%s will no longer be shown.", title),
		ActionLabel: "Undo",
		ActionHint:  "Enable show hidden in the filter section, then use the show button on the listing to show it again.",
		Action: func() {
			_ = p.Unhide(context.Background(), id)
		},
	})
	return true, nil
}

// Unhide removes id from the hidden set. It is a no-op when id is not hidden.
func (p *ListingsPage) Unhide(ctx context.Context, id string) error {
	if _, err := p.prefs.RemoveID(ctx, preference.KeyHidden, id); err != nil {
		return fmt.Errorf("unhide %s: %w", id, err)
	}
	return nil
}

// ToggleFavorite flips whether id is a favorite and reports the new state.
func (p *ListingsPage) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	_, favorite, err := p.prefs.ToggleID(ctx, preference.KeyFavorites, id)
	if err != nil {
		return favorite, fmt.Errorf("toggle favorite %s: %w", id, err)
	}
	return favorite, nil
}
