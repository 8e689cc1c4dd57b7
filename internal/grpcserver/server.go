// Package grpcserver implements the BoardService gRPC server.
//
// It delegates all business logic to board.Service and handles
// only the gRPC transport concerns: metadata extraction, error mapping,
// and conversion between the domain model and google.protobuf.Struct
// messages.
package grpcserver

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"jobmate/board-service/internal/board"
	"jobmate/board-service/internal/filter"
	"jobmate/board-service/internal/listing"
)

// Server implements BoardServiceServer.
type Server struct {
	svc *board.Service
}

// NewServer constructs a gRPC Server backed by the given board.Service.
func NewServer(svc *board.Service) *Server {
	return &Server{svc: svc}
}

// ─── RPC implementations ──────────────────────────────────────────────────────

// ListListings returns the caller's filtered view of the published listings.
// Request fields mirror the HTTP query parameters.
func (s *Server) ListListings(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	page := s.svc.OpenListings(ctx, userID, nil)
	defer page.Unmount()
	page.Form().Set(filter.ParseQuery(criteriaValues(req)))

	if err := page.Wait(ctx); err != nil {
		return nil, status.FromContextError(err).Err()
	}

	view := page.Render(ctx)
	if view.State == board.StateFailed {
		return nil, status.Error(codes.Unavailable, "failed to load job listings")
	}

	items := make([]any, 0, len(view.Items))
	for _, it := range view.Items {
		items = append(items, itemToMap(it))
	}
	return structpb.NewStruct(map[string]any{
		"items": items,
		"count": len(items),
	})
}

// ToggleHide flips the hidden flag of a listing for the caller.
func (s *Server) ToggleHide(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	id, err := requiredString(req, "id")
	if err != nil {
		return nil, err
	}

	notices := &board.NoticeBuffer{}
	page := board.NewListingsPage(s.svc.Preferences(userID), notices)
	hidden, err := page.ToggleHide(ctx, id, req.GetFields()["title"].GetStringValue())
	if err != nil {
		return nil, toGRPCError(err)
	}

	out := map[string]any{"hidden": hidden}
	if pending := notices.Drain(); len(pending) > 0 {
		n := pending[0]
		out["notice"] = map[string]any{
			"title":       n.Title,
			"description": n.Description,
			"actionLabel": n.ActionLabel,
			"actionHint":  n.ActionHint,
		}
	}
	return structpb.NewStruct(out)
}

// Unhide removes a listing from the caller's hidden set. It is the Undo
// action of the notice returned by ToggleHide.
func (s *Server) Unhide(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	id, err := requiredString(req, "id")
	if err != nil {
		return nil, err
	}

	page := board.NewListingsPage(s.svc.Preferences(userID), nil)
	if err := page.Unhide(ctx, id); err != nil {
		return nil, toGRPCError(err)
	}
	return structpb.NewStruct(map[string]any{"hidden": false})
}

// ToggleFavorite flips the favorite flag of a listing for the caller.
func (s *Server) ToggleFavorite(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	id, err := requiredString(req, "id")
	if err != nil {
		return nil, err
	}

	page := board.NewListingsPage(s.svc.Preferences(userID), nil)
	favorite, err := page.ToggleFavorite(ctx, id)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return structpb.NewStruct(map[string]any{"favorite": favorite})
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// userIDFromCtx extracts the x-user-id value forwarded by the Gateway
// via gRPC metadata.
func userIDFromCtx(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing metadata")
	}
	vals := md.Get("x-user-id")
	if len(vals) == 0 || vals[0] == "" {
		return "", status.Error(codes.Unauthenticated, "missing x-user-id metadata")
	}
	return vals[0], nil
}

// toGRPCError maps domain errors to gRPC status errors.
func toGRPCError(err error) error {
	if errors.Is(err, listing.ErrNotFound) {
		return status.Error(codes.NotFound, err.Error())
	}
	var ve *listing.ValidationError
	if errors.As(err, &ve) {
		return status.Error(codes.InvalidArgument, ve.Msg)
	}
	return status.Error(codes.Internal, "internal server error")
}

func requiredString(req *structpb.Struct, field string) (string, error) {
	v := req.GetFields()[field].GetStringValue()
	if v == "" {
		return "", status.Errorf(codes.InvalidArgument, "%s is required", field)
	}
	return v, nil
}

// criteriaValues flattens a request Struct into query values so gRPC and
// HTTP share one lenient criteria parser.
func criteriaValues(req *structpb.Struct) url.Values {
	q := url.Values{}
	for k, v := range req.GetFields() {
		switch x := v.GetKind().(type) {
		case *structpb.Value_StringValue:
			q.Set(k, x.StringValue)
		case *structpb.Value_NumberValue:
			q.Set(k, strconv.FormatFloat(x.NumberValue, 'f', -1, 64))
		case *structpb.Value_BoolValue:
			q.Set(k, strconv.FormatBool(x.BoolValue))
		}
	}
	return q
}

// itemToMap converts a rendered listing to the map shape structpb accepts.
// ExpiresAt is optional and omitted when nil.
func itemToMap(it board.Item) map[string]any {
	m := map[string]any{
		"id":               it.ID,
		"title":            it.Title,
		"companyName":      it.CompanyName,
		"location":         it.Location,
		"applyUrl":         it.ApplyURL,
		"type":             string(it.Type),
		"experienceLevel":  string(it.ExperienceLevel),
		"salary":           it.Salary,
		"shortDescription": it.ShortDescription,
		"description":      it.Description,
		"hidden":           it.Hidden,
		"favorite":         it.Favorite,
	}
	if it.ExpiresAt != nil {
		m["expiresAt"] = it.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return m
}
