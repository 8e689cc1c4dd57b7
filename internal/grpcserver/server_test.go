package grpcserver_test

import (
	"context"
	"errors"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"jobmate/board-service/internal/board"
	"jobmate/board-service/internal/grpcserver"
	"jobmate/board-service/internal/listing"
	"jobmate/board-service/internal/preference"
)

type stubSource struct {
	err error
}

func (s *stubSource) Published(context.Context) ([]listing.JobListing, error) {
	return []listing.JobListing{
		{ID: "a", Title: "Go Engineer", Salary: 90000, Type: listing.TypeFullTime, ExperienceLevel: listing.LevelMid},
		{ID: "b", Title: "Designer", Salary: 40000, Type: listing.TypePartTime, ExperienceLevel: listing.LevelJunior},
	}, s.err
}

func (s *stubSource) ListByOwner(context.Context, string) ([]listing.JobListing, error) {
	return nil, nil
}

func (s *stubSource) Delete(context.Context, string, string) error { return nil }

func newServer(src *stubSource) *grpcserver.Server {
	svc := board.NewService(src, src, src, preference.NewMemoryProfiles())
	return grpcserver.NewServer(svc)
}

func userCtx(userID string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-user-id", userID))
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	return s
}

func itemIDs(resp *structpb.Struct) []string {
	var ids []string
	for _, v := range resp.GetFields()["items"].GetListValue().GetValues() {
		ids = append(ids, v.GetStructValue().GetFields()["id"].GetStringValue())
	}
	return ids
}

func TestListListings_RequiresUser(t *testing.T) {
	_, err := newServer(&stubSource{}).ListListings(context.Background(), &structpb.Struct{})
	if status.Code(err) != codes.Unauthenticated {
		t.Errorf("code = %v, want Unauthenticated", status.Code(err))
	}
}

func TestListListings_Criteria(t *testing.T) {
	srv := newServer(&stubSource{})

	resp, err := srv.ListListings(userCtx("u1"), mustStruct(t, map[string]any{"minimumSalary": 50000}))
	if err != nil {
		t.Fatalf("ListListings: %v", err)
	}
	if ids := itemIDs(resp); len(ids) != 1 || ids[0] != "a" {
		t.Errorf("ids = %v, want [a]", ids)
	}

	resp, err = srv.ListListings(userCtx("u1"), mustStruct(t, map[string]any{"title": "DESIGN"}))
	if err != nil {
		t.Fatal(err)
	}
	if ids := itemIDs(resp); len(ids) != 1 || ids[0] != "b" {
		t.Errorf("ids = %v, want [b]", ids)
	}
}

func TestListListings_LoadFailure(t *testing.T) {
	_, err := newServer(&stubSource{err: errors.New("db down")}).ListListings(userCtx("u1"), &structpb.Struct{})
	if status.Code(err) != codes.Unavailable {
		t.Errorf("code = %v, want Unavailable", status.Code(err))
	}
}

func TestToggleHide(t *testing.T) {
	srv := newServer(&stubSource{})
	ctx := userCtx("u1")

	resp, err := srv.ToggleHide(ctx, mustStruct(t, map[string]any{"id": "a", "title": "Go Engineer"}))
	if err != nil {
		t.Fatalf("ToggleHide: %v", err)
	}
	if !resp.GetFields()["hidden"].GetBoolValue() {
		t.Error("expected hidden = true")
	}
	notice := resp.GetFields()["notice"].GetStructValue()
	if notice.GetFields()["actionLabel"].GetStringValue() != "Undo" {
		t.Errorf("notice = %v", notice)
	}

	list, _ := srv.ListListings(ctx, &structpb.Struct{})
	if ids := itemIDs(list); len(ids) != 1 || ids[0] != "b" {
		t.Errorf("after hide ids = %v, want [b]", ids)
	}

	// other profiles are unaffected
	list, _ = srv.ListListings(userCtx("u2"), &structpb.Struct{})
	if ids := itemIDs(list); len(ids) != 2 {
		t.Errorf("u2 ids = %v", ids)
	}

	resp, _ = srv.ToggleHide(ctx, mustStruct(t, map[string]any{"id": "a"}))
	if resp.GetFields()["hidden"].GetBoolValue() {
		t.Error("second toggle should unhide")
	}
	if _, ok := resp.GetFields()["notice"]; ok {
		t.Error("unhide must not carry a notice")
	}
}

func TestUnhide_UndoesToggleHide(t *testing.T) {
	srv := newServer(&stubSource{})
	ctx := userCtx("u1")

	if _, err := srv.ToggleHide(ctx, mustStruct(t, map[string]any{"id": "b", "title": "Designer"})); err != nil {
		t.Fatal(err)
	}
	resp, err := srv.Unhide(ctx, mustStruct(t, map[string]any{"id": "b"}))
	if err != nil {
		t.Fatalf("Unhide: %v", err)
	}
	if resp.GetFields()["hidden"].GetBoolValue() {
		t.Error("expected hidden = false")
	}
	list, _ := srv.ListListings(ctx, &structpb.Struct{})
	if ids := itemIDs(list); len(ids) != 2 {
		t.Errorf("after undo ids = %v, want [a b]", ids)
	}

	if _, err := srv.Unhide(ctx, &structpb.Struct{}); status.Code(err) != codes.InvalidArgument {
		t.Errorf("missing id: code = %v, want InvalidArgument", status.Code(err))
	}
}

func TestToggleFavorite_RequiresID(t *testing.T) {
	_, err := newServer(&stubSource{}).ToggleFavorite(userCtx("u1"), &structpb.Struct{})
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("code = %v, want InvalidArgument", status.Code(err))
	}
}

func TestOverTheWire(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	grpcserver.Register(gs, newServer(&stubSource{}))
	go func() { _ = gs.Serve(lis) }()
	defer gs.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer conn.Close()

	ctx := metadata.AppendToOutgoingContext(context.Background(), "x-user-id", "u1")

	fav := new(structpb.Struct)
	if err := conn.Invoke(ctx, "/"+grpcserver.ServiceName+"/ToggleFavorite", mustStruct(t, map[string]any{"id": "b"}), fav); err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	if !fav.GetFields()["favorite"].GetBoolValue() {
		t.Error("expected favorite = true")
	}

	hide := new(structpb.Struct)
	if err := conn.Invoke(ctx, "/"+grpcserver.ServiceName+"/ToggleHide", mustStruct(t, map[string]any{"id": "a", "title": "Go Engineer"}), hide); err != nil {
		t.Fatalf("ToggleHide: %v", err)
	}
	if hide.GetFields()["notice"].GetStructValue().GetFields()["actionLabel"].GetStringValue() != "Undo" {
		t.Fatalf("hide response = %v", hide)
	}
	all := new(structpb.Struct)
	if err := conn.Invoke(ctx, "/"+grpcserver.ServiceName+"/ListListings", &structpb.Struct{}, all); err != nil {
		t.Fatalf("ListListings: %v", err)
	}
	if ids := itemIDs(all); len(ids) != 1 || ids[0] != "b" {
		t.Fatalf("after hide ids = %v, want [b]", ids)
	}

	undo := new(structpb.Struct)
	if err := conn.Invoke(ctx, "/"+grpcserver.ServiceName+"/Unhide", mustStruct(t, map[string]any{"id": "a"}), undo); err != nil {
		t.Fatalf("Unhide: %v", err)
	}
	all = new(structpb.Struct)
	if err := conn.Invoke(ctx, "/"+grpcserver.ServiceName+"/ListListings", &structpb.Struct{}, all); err != nil {
		t.Fatalf("ListListings: %v", err)
	}
	if ids := itemIDs(all); len(ids) != 2 {
		t.Errorf("after undo ids = %v, want both listings back", ids)
	}

	list := new(structpb.Struct)
	req := mustStruct(t, map[string]any{"onlyShowFavorites": true})
	if err := conn.Invoke(ctx, "/"+grpcserver.ServiceName+"/ListListings", req, list); err != nil {
		t.Fatalf("ListListings: %v", err)
	}
	if ids := itemIDs(list); len(ids) != 1 || ids[0] != "b" {
		t.Errorf("favorites ids = %v, want [b]", ids)
	}

	hc, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: grpcserver.ServiceName})
	if err != nil {
		t.Fatalf("health Check: %v", err)
	}
	if hc.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("health = %v", hc.GetStatus())
	}
}
