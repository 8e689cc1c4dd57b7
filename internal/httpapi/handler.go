// Package httpapi implements the HTTP handlers for the board service.
//
// All routes expect an x-user-id header forwarded by the Gateway. The user
// id is also the profile whose hidden/favorite preferences apply.
//
// Routes:
//
//	GET    /listings                     → filtered published listings
//	POST   /listings/{id}/hide           → toggle hidden, returns undo notice
//	POST   /listings/{id}/unhide         → undo a hide
//	POST   /listings/{id}/favorite       → toggle favorite
//	GET    /my-listings                  → listings owned by the user
//	POST   /my-listings                  → create a draft listing
//	PUT    /my-listings/{id}             → replace a draft listing
//	DELETE /my-listings/{id}             → optimistic delete
//	POST   /checkout/{id}/confirm        → confirm payment and publish
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"jobmate/board-service/internal/board"
	"jobmate/board-service/internal/checkout"
	"jobmate/board-service/internal/filter"
	"jobmate/board-service/internal/listing"
)

const maxBodyBytes = 1 << 20

// ListingStore is the owner-scoped listing persistence the handlers need.
type ListingStore interface {
	ListByOwner(ctx context.Context, userID string) ([]listing.JobListing, error)
	Create(ctx context.Context, userID string, d *listing.Draft) (*listing.JobListing, error)
	Update(ctx context.Context, userID, id string, d *listing.Draft) (*listing.JobListing, error)
	Delete(ctx context.Context, userID, id string) error
}

// Payments confirms a payment and publishes the paid listing.
type Payments interface {
	Submit(ctx context.Context, userID, listingID, intentID string, days int) (*listing.JobListing, error)
}

// ─── Response types ───────────────────────────────────────────────────────────

// NoticeJSON is the wire shape of a board.Notice. The action itself is
// exposed as a route the client calls.
type NoticeJSON struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ActionLabel string `json:"actionLabel,omitempty"`
	ActionHint  string `json:"actionHint,omitempty"`
}

func toNoticeJSON(n board.Notice) *NoticeJSON {
	return &NoticeJSON{
		Title:       n.Title,
		Description: n.Description,
		ActionLabel: n.ActionLabel,
		ActionHint:  n.ActionHint,
	}
}

// ─── Handler ─────────────────────────────────────────────────────────────────

// Handler holds shared dependencies.
type Handler struct {
	board    *board.Service
	store    ListingStore
	payments Payments
}

// NewHandler returns a configured Handler.
func NewHandler(svc *board.Service, store ListingStore, payments Payments) *Handler {
	return &Handler{board: svc, store: store, payments: payments}
}

// RegisterRoutes mounts all board-service routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/listings", h.handleListings)
	mux.HandleFunc("/listings/", h.handleListingAction)
	mux.HandleFunc("/my-listings", h.handleMyListings)
	mux.HandleFunc("/my-listings/", h.handleMyListing)
	mux.HandleFunc("/checkout/", h.handleCheckout)
}

// ─── Route dispatch ───────────────────────────────────────────────────────────

// handleListings handles GET /listings
func (h *Handler) handleListings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.listListings(w, r)
}

// handleListingAction handles POST /listings/{id}/hide|unhide|favorite
func (h *Handler) handleListingAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 3 || parts[1] == "" {
		jsonError(w, "invalid path", http.StatusNotFound)
		return
	}

	id, action := parts[1], parts[2]
	switch action {
	case "hide":
		h.toggleHide(w, r, id)
	case "unhide":
		h.unhide(w, r, id)
	case "favorite":
		h.toggleFavorite(w, r, id)
	default:
		jsonError(w, fmt.Sprintf("unknown action %q", action), http.StatusNotFound)
	}
}

// handleMyListings handles GET and POST /my-listings
func (h *Handler) handleMyListings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listMyListings(w, r)
	case http.MethodPost:
		h.createListing(w, r)
	default:
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleMyListing handles PUT and DELETE /my-listings/{id}
func (h *Handler) handleMyListing(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 2 || parts[1] == "" {
		jsonError(w, "invalid path", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodPut:
		h.updateListing(w, r, parts[1])
	case http.MethodDelete:
		h.deleteListing(w, r, parts[1])
	default:
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleCheckout handles POST /checkout/{id}/confirm
func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 3 || parts[1] == "" || parts[2] != "confirm" {
		jsonError(w, "invalid path", http.StatusNotFound)
		return
	}
	h.confirmCheckout(w, r, parts[1])
}

// ─── Individual handlers ──────────────────────────────────────────────────────

func (h *Handler) listListings(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	page := h.board.OpenListings(r.Context(), userID, nil)
	defer page.Unmount()
	page.Form().Set(filter.ParseQuery(r.URL.Query()))

	if err := page.Wait(r.Context()); err != nil {
		jsonError(w, "request cancelled", http.StatusServiceUnavailable)
		return
	}

	view := page.Render(r.Context())
	if view.State == board.StateFailed {
		log.Printf("[board] listListings load error: %v", view.Err)
		jsonError(w, "failed to load job listings", http.StatusBadGateway)
		return
	}

	jsonOK(w, map[string]any{
		"items": view.Items,
		"count": len(view.Items),
	})
}

func (h *Handler) toggleHide(w http.ResponseWriter, r *http.Request, id string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body struct {
		Title string `json:"title"`
	}
	if err := decodeOptional(r, &body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	notices := &board.NoticeBuffer{}
	page := board.NewListingsPage(h.board.Preferences(userID), notices)
	hidden, err := page.ToggleHide(r.Context(), id, body.Title)
	if err != nil {
		log.Printf("[board] toggleHide error: %v", err)
		jsonError(w, "preference store error", http.StatusInternalServerError)
		return
	}

	resp := struct {
		Hidden bool        `json:"hidden"`
		Notice *NoticeJSON `json:"notice,omitempty"`
	}{Hidden: hidden}
	if pending := notices.Drain(); len(pending) > 0 {
		resp.Notice = toNoticeJSON(pending[0])
	}
	jsonOK(w, resp)
}

func (h *Handler) unhide(w http.ResponseWriter, r *http.Request, id string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	page := board.NewListingsPage(h.board.Preferences(userID), nil)
	if err := page.Unhide(r.Context(), id); err != nil {
		log.Printf("[board] unhide error: %v", err)
		jsonError(w, "preference store error", http.StatusInternalServerError)
		return
	}
	jsonOK(w, map[string]bool{"hidden": false})
}

func (h *Handler) toggleFavorite(w http.ResponseWriter, r *http.Request, id string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	page := board.NewListingsPage(h.board.Preferences(userID), nil)
	favorite, err := page.ToggleFavorite(r.Context(), id)
	if err != nil {
		log.Printf("[board] toggleFavorite error: %v", err)
		jsonError(w, "preference store error", http.StatusInternalServerError)
		return
	}
	jsonOK(w, map[string]bool{"favorite": favorite})
}

func (h *Handler) listMyListings(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	page, err := h.board.OpenMyListings(r.Context(), userID, nil)
	if err != nil {
		writeDomainError(w, "listMyListings", err)
		return
	}
	jsonOK(w, page.Visible())
}

func (h *Handler) createListing(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	draft, err := readDraft(r)
	if err != nil {
		writeDomainError(w, "createListing", err)
		return
	}

	l, err := h.store.Create(r.Context(), userID, draft)
	if err != nil {
		writeDomainError(w, "createListing", err)
		return
	}
	jsonCreated(w, l)
}

func (h *Handler) updateListing(w http.ResponseWriter, r *http.Request, id string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	draft, err := readDraft(r)
	if err != nil {
		writeDomainError(w, "updateListing", err)
		return
	}

	l, err := h.store.Update(r.Context(), userID, id, draft)
	if err != nil {
		writeDomainError(w, "updateListing", err)
		return
	}
	jsonOK(w, l)
}

func (h *Handler) deleteListing(w http.ResponseWriter, r *http.Request, id string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	notices := &board.NoticeBuffer{}
	page, err := h.board.OpenMyListings(r.Context(), userID, notices)
	if err != nil {
		writeDomainError(w, "deleteListing", err)
		return
	}

	if err := page.Delete(r.Context(), id); err != nil {
		if errors.Is(err, listing.ErrNotFound) {
			jsonError(w, "job listing not found", http.StatusNotFound)
			return
		}
		log.Printf("[board] deleteListing error: %v", err)
		resp := struct {
			Error  string      `json:"error"`
			Notice *NoticeJSON `json:"notice,omitempty"`
		}{Error: "failed to delete job listing"}
		if pending := notices.Drain(); len(pending) > 0 {
			resp.Notice = toNoticeJSON(pending[0])
		}
		jsonStatus(w, http.StatusBadGateway, resp)
		return
	}

	jsonOK(w, map[string]any{"deleted": id, "listings": page.Visible()})
}

func (h *Handler) confirmCheckout(w http.ResponseWriter, r *http.Request, listingID string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body struct {
		PaymentIntentID string `json:"paymentIntentId"`
		Days            int    `json:"days"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	l, err := h.payments.Submit(r.Context(), userID, listingID, body.PaymentIntentID, body.Days)
	if err != nil {
		var ve *listing.ValidationError
		var pe *checkout.PaymentError
		switch {
		case errors.As(err, &ve):
			jsonError(w, ve.Msg, http.StatusBadRequest)
		case errors.Is(err, listing.ErrNotFound):
			jsonError(w, "job listing not found", http.StatusNotFound)
		case errors.As(err, &pe):
			jsonError(w, checkout.UserMessage(err), http.StatusPaymentRequired)
		default:
			log.Printf("[board] confirmCheckout error: %v", err)
			jsonError(w, checkout.UserMessage(err), http.StatusBadGateway)
		}
		return
	}
	jsonOK(w, l)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get("x-user-id")
	if userID == "" {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}

func readDraft(r *http.Request) (*listing.Draft, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, &listing.ValidationError{Msg: "could not read body"}
	}
	return listing.ValidateDraft(raw)
}

// decodeOptional decodes a JSON body into v, accepting an empty body.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func writeDomainError(w http.ResponseWriter, op string, err error) {
	var ve *listing.ValidationError
	switch {
	case errors.As(err, &ve):
		jsonError(w, ve.Msg, http.StatusBadRequest)
	case errors.Is(err, listing.ErrNotFound):
		jsonError(w, "job listing not found", http.StatusNotFound)
	default:
		log.Printf("[board] %s error: %v", op, err)
		jsonError(w, "database error", http.StatusInternalServerError)
	}
}

func jsonOK(w http.ResponseWriter, v any) {
	jsonStatus(w, http.StatusOK, v)
}

func jsonCreated(w http.ResponseWriter, v any) {
	jsonStatus(w, http.StatusCreated, v)
}

func jsonStatus(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	jsonStatus(w, code, map[string]string{"error": msg})
}
