package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"jobmate/board-service/internal/board"
	"jobmate/board-service/internal/checkout"
	"jobmate/board-service/internal/httpapi"
	"jobmate/board-service/internal/listing"
	"jobmate/board-service/internal/preference"
)

// ── fakes ──────────────────────────────────────────────────────────────────

type fakeSource struct {
	listings []listing.JobListing
	err      error
}

func (f *fakeSource) Published(context.Context) ([]listing.JobListing, error) {
	return f.listings, f.err
}

type fakeStore struct {
	owned     map[string][]listing.JobListing
	deleteErr error
	created   *listing.Draft
}

func (f *fakeStore) ListByOwner(_ context.Context, userID string) ([]listing.JobListing, error) {
	return f.owned[userID], nil
}

func (f *fakeStore) Create(_ context.Context, _ string, d *listing.Draft) (*listing.JobListing, error) {
	f.created = d
	return &listing.JobListing{ID: "new-id", Title: d.Title}, nil
}

func (f *fakeStore) Update(_ context.Context, userID, id string, d *listing.Draft) (*listing.JobListing, error) {
	for _, l := range f.owned[userID] {
		if l.ID == id {
			l.Title = d.Title
			return &l, nil
		}
	}
	return nil, listing.ErrNotFound
}

func (f *fakeStore) Delete(_ context.Context, userID, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for _, l := range f.owned[userID] {
		if l.ID == id {
			return nil
		}
	}
	return listing.ErrNotFound
}

type fakePayments struct{ err error }

func (f *fakePayments) Submit(_ context.Context, _, listingID, _ string, _ int) (*listing.JobListing, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &listing.JobListing{ID: listingID}, nil
}

// ── harness ────────────────────────────────────────────────────────────────

type harness struct {
	mux      *http.ServeMux
	source   *fakeSource
	store    *fakeStore
	payments *fakePayments
}

func newHarness() *harness {
	h := &harness{
		source: &fakeSource{listings: []listing.JobListing{
			{ID: "a", Title: "Go Engineer", Location: "Remote", Salary: 90000, Type: listing.TypeFullTime, ExperienceLevel: listing.LevelMid},
			{ID: "b", Title: "Designer", Location: "Paris", Salary: 50000, Type: listing.TypePartTime, ExperienceLevel: listing.LevelJunior},
		}},
		store: &fakeStore{owned: map[string][]listing.JobListing{
			"u1": {{ID: "m1", Title: "Mine"}, {ID: "m2", Title: "Also mine"}},
		}},
		payments: &fakePayments{},
	}
	svc := board.NewService(h.source, h.store, h.store, preference.NewMemoryProfiles())
	h.mux = http.NewServeMux()
	httpapi.NewHandler(svc, h.store, h.payments).RegisterRoutes(h.mux)
	return h
}

func (h *harness) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	req.Header.Set("x-user-id", "u1")
	rec := httptest.NewRecorder()
	h.mux.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
}

type listResponse struct {
	Items []struct {
		ID       string `json:"id"`
		Hidden   bool   `json:"hidden"`
		Favorite bool   `json:"favorite"`
	} `json:"items"`
	Count int `json:"count"`
}

// ── tests ──────────────────────────────────────────────────────────────────

func TestMissingUserHeader(t *testing.T) {
	h := newHarness()
	req := httptest.NewRequest(http.MethodGet, "/listings", nil)
	rec := httptest.NewRecorder()
	h.mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestListListings_Filtering(t *testing.T) {
	h := newHarness()

	cases := []struct {
		query string
		want  []string
	}{
		{"", []string{"a", "b"}},
		{"?title=go", []string{"a"}},
		{"?location=PAR", []string{"b"}},
		{"?minimumSalary=60000", []string{"a"}},
		{"?minimumSalary=", []string{"a", "b"}},
		{"?type=Part+Time", []string{"b"}},
		{"?experienceLevel=Mid-Level", []string{"a"}},
		{"?experienceLevel=bogus", []string{"a", "b"}},
		{"?title=(", []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			rec := h.do(t, http.MethodGet, "/listings"+tc.query, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}
			var resp listResponse
			decode(t, rec, &resp)
			if resp.Count != len(tc.want) {
				t.Fatalf("count = %d, want %d", resp.Count, len(tc.want))
			}
			for i, id := range tc.want {
				if resp.Items[i].ID != id {
					t.Errorf("item %d = %s, want %s", i, resp.Items[i].ID, id)
				}
			}
		})
	}
}

func TestListListings_LoadFailureIsNotEmpty(t *testing.T) {
	h := newHarness()
	h.source.err = errors.New("db down")

	rec := h.do(t, http.MethodGet, "/listings", "")
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestHideUndoFlow(t *testing.T) {
	h := newHarness()

	rec := h.do(t, http.MethodPost, "/listings/a/hide", `{"title":"Go Engineer"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("hide status = %d", rec.Code)
	}
	var hideResp struct {
		Hidden bool                `json:"hidden"`
		Notice *httpapi.NoticeJSON `json:"notice"`
	}
	decode(t, rec, &hideResp)
	if !hideResp.Hidden || hideResp.Notice == nil {
		t.Fatalf("hide response = %+v", hideResp)
	}
	if hideResp.Notice.Description != "Go Engineer will no longer be shown." || hideResp.Notice.ActionLabel != "Undo" {
		t.Errorf("notice = %+v", hideResp.Notice)
	}

	var list listResponse
	decode(t, h.do(t, http.MethodGet, "/listings", ""), &list)
	if list.Count != 1 || list.Items[0].ID != "b" {
		t.Errorf("after hide: %+v", list)
	}

	decode(t, h.do(t, http.MethodGet, "/listings?showHidden=true", ""), &list)
	if list.Count != 2 || !list.Items[0].Hidden {
		t.Errorf("showHidden: %+v", list)
	}

	if rec := h.do(t, http.MethodPost, "/listings/a/unhide", ""); rec.Code != http.StatusOK {
		t.Fatalf("unhide status = %d", rec.Code)
	}
	decode(t, h.do(t, http.MethodGet, "/listings", ""), &list)
	if list.Count != 2 {
		t.Errorf("after undo: %+v", list)
	}
}

func TestToggleFavorite(t *testing.T) {
	h := newHarness()

	var fav map[string]bool
	decode(t, h.do(t, http.MethodPost, "/listings/b/favorite", ""), &fav)
	if !fav["favorite"] {
		t.Fatalf("favorite = %v", fav)
	}

	var list listResponse
	decode(t, h.do(t, http.MethodGet, "/listings?onlyShowFavorites=true", ""), &list)
	if list.Count != 1 || list.Items[0].ID != "b" || !list.Items[0].Favorite {
		t.Errorf("favorites view = %+v", list)
	}
}

func TestUnknownAction(t *testing.T) {
	h := newHarness()
	if rec := h.do(t, http.MethodPost, "/listings/a/explode", ""); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if rec := h.do(t, http.MethodGet, "/listings/a/hide", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

const validDraft = `{
	"title": "Backend Engineer",
	"companyName": "Acme",
	"location": "Remote",
	"applyUrl": "https://acme.example/jobs/1",
	"type": "Full Time",
	"experienceLevel": "Senior",
	"salary": 120000,
	"shortDescription": "Build APIs",
	"description": "Build and run our Go services."
}`

func TestCreateListing(t *testing.T) {
	h := newHarness()

	rec := h.do(t, http.MethodPost, "/my-listings", validDraft)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if h.store.created == nil || h.store.created.Title != "Backend Engineer" {
		t.Errorf("created = %+v", h.store.created)
	}

	rec = h.do(t, http.MethodPost, "/my-listings", `{"title":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid draft status = %d, want 400", rec.Code)
	}
}

func TestUpdateListing(t *testing.T) {
	h := newHarness()
	if rec := h.do(t, http.MethodPut, "/my-listings/m1", validDraft); rec.Code != http.StatusOK {
		t.Errorf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if rec := h.do(t, http.MethodPut, "/my-listings/zzz", validDraft); rec.Code != http.StatusNotFound {
		t.Errorf("missing listing status = %d, want 404", rec.Code)
	}
}

func TestDeleteListing(t *testing.T) {
	h := newHarness()

	rec := h.do(t, http.MethodDelete, "/my-listings/m1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	if rec := h.do(t, http.MethodDelete, "/my-listings/zzz", ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing listing status = %d, want 404", rec.Code)
	}

	h.store.deleteErr = errors.New("connection reset")
	rec = h.do(t, http.MethodDelete, "/my-listings/m2", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	var resp struct {
		Notice *httpapi.NoticeJSON `json:"notice"`
	}
	decode(t, rec, &resp)
	if resp.Notice == nil || resp.Notice.Title != "Failed to delete job listing" || resp.Notice.ActionLabel != "Retry" {
		t.Errorf("notice = %+v", resp.Notice)
	}
}

func TestListMyListings(t *testing.T) {
	h := newHarness()
	var out []listing.JobListing
	decode(t, h.do(t, http.MethodGet, "/my-listings", ""), &out)
	if len(out) != 2 {
		t.Errorf("got %d listings, want 2", len(out))
	}
}

func TestConfirmCheckout(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"ok", nil, http.StatusOK, ""},
		{"declined", &checkout.PaymentError{Type: "card_error", Message: "Your card was declined."}, http.StatusPaymentRequired, "Your card was declined."},
		{"provider", &checkout.PaymentError{Type: "api_error", Message: "x"}, http.StatusPaymentRequired, "An unexpected error occurred."},
		{"transport", errors.New("timeout"), http.StatusBadGateway, "An unexpected error occurred."},
		{"validation", &listing.ValidationError{Msg: "days must be at least 1"}, http.StatusBadRequest, "days must be at least 1"},
		{"missing", listing.ErrNotFound, http.StatusNotFound, "job listing not found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness()
			h.payments.err = tc.err
			rec := h.do(t, http.MethodPost, "/checkout/m1/confirm", `{"paymentIntentId":"pi_1","days":30}`)
			if rec.Code != tc.code {
				t.Fatalf("status = %d, want %d", rec.Code, tc.code)
			}
			if tc.message == "" {
				return
			}
			var resp map[string]string
			decode(t, rec, &resp)
			if resp["error"] != tc.message {
				t.Errorf("error = %q, want %q", resp["error"], tc.message)
			}
		})
	}
}
