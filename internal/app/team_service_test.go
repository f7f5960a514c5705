package app_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"careerpath-service/internal/app"
	"careerpath-service/internal/domain"
	"careerpath-service/internal/infra/memory"
	"github.com/rs/zerolog"
)

func TestCreateTeamValidates(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTeamService()

	cases := []struct {
		name  string
		input app.NewTeam
	}{
		{"empty name", app.NewTeam{Name: "  ", Capacity: 4}},
		{"capacity one", app.NewTeam{Name: "Solo", Capacity: 1}},
		{"capacity too large", app.NewTeam{Name: "Crowd", Capacity: app.MaxTeamCapacity + 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := service.CreateTeam(ctx, "lead", tc.input); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	team, err := service.CreateTeam(ctx, "lead", app.NewTeam{Name: " Hackathon ", Capacity: 4})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if team.Name != "Hackathon" || team.Status != domain.TeamStatusOpen || team.CurrentMembers != 1 {
		t.Fatalf("unexpected team %+v", team)
	}
	members, err := service.ListMembers(ctx, team.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 1 || members[0].UserID != "lead" || members[0].Role != domain.RoleLeader {
		t.Fatalf("unexpected members %+v", members)
	}
}

func TestConcurrentAcceptsRespectCapacity(t *testing.T) {
	ctx := context.Background()
	service, store, _ := newTeamService()
	team := mustCreateTeam(t, service, "lead", 2)

	r1 := mustRequest(t, service, team.ID, "u1")
	r2 := mustRequest(t, service, team.ID, "u2")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{r1.ID, r2.ID} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = service.Accept(ctx, "lead", id)
		}(i, id)
	}
	wg.Wait()

	var ok, exceeded int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrCapacityExceeded):
			exceeded++
		default:
			t.Fatalf("unexpected error %v", err)
		}
	}
	if ok != 1 || exceeded != 1 {
		t.Fatalf("expected one success and one capacity error, got %v", errs)
	}

	got, err := store.GetTeam(ctx, team.ID)
	if err != nil {
		t.Fatalf("get team: %v", err)
	}
	if got.CurrentMembers != 2 || got.Status != domain.TeamStatusFull {
		t.Fatalf("unexpected final team %+v", got)
	}
	pending, _ := store.ListJoinRequests(ctx, team.ID, domain.RequestPending)
	if len(pending) != 1 {
		t.Fatalf("losing request must stay pending, got %+v", pending)
	}
}

func TestRemoveLeaderIsForbidden(t *testing.T) {
	ctx := context.Background()
	service, store, _ := newTeamService()
	team := mustCreateTeam(t, service, "lead", 3)

	if _, err := service.RemoveMember(ctx, "lead", team.ID, "lead"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	got, _ := store.GetTeam(ctx, team.ID)
	if got != team {
		t.Fatalf("team changed: %+v", got)
	}
	members, _ := store.ListMembers(ctx, team.ID)
	if len(members) != 1 {
		t.Fatalf("leader must remain, got %+v", members)
	}
}

func TestReopenFullTeamIsInvalid(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTeamService()
	team := mustCreateTeam(t, service, "lead", 2)
	req := mustRequest(t, service, team.ID, "u1")
	full, err := service.Accept(ctx, "lead", req.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if full.Status != domain.TeamStatusFull {
		t.Fatalf("expected FULL, got %s", full.Status)
	}

	if _, err := service.SetStatus(ctx, "lead", team.ID, domain.TeamStatusOpen); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
	if _, err := service.SetStatus(ctx, "lead", team.ID, domain.TeamStatusFull); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected invalid state for manual FULL, got %v", err)
	}
	if _, err := service.SetStatus(ctx, "u1", team.ID, domain.TeamStatusClosed); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden for non-leader, got %v", err)
	}
	if _, err := service.SetStatus(ctx, "lead", team.ID, "ARCHIVED"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestJoinRequestLifecycle(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTeamService()
	team := mustCreateTeam(t, service, "lead", 3)

	if _, err := service.CreateJoinRequest(ctx, "missing", "u1", ""); !errors.Is(err, domain.ErrTeamNotFound) {
		t.Fatalf("expected team not found, got %v", err)
	}
	if _, err := service.CreateJoinRequest(ctx, team.ID, "lead", ""); !errors.Is(err, domain.ErrAlreadyMember) {
		t.Fatalf("expected already member, got %v", err)
	}

	req := mustRequest(t, service, team.ID, "u1")
	if _, err := service.CreateJoinRequest(ctx, team.ID, "u1", "again"); !errors.Is(err, domain.ErrDuplicatePendingRequest) {
		t.Fatalf("expected duplicate pending, got %v", err)
	}
	if _, err := service.Accept(ctx, "u2", req.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden accept, got %v", err)
	}
	if _, err := service.Accept(ctx, "lead", "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	rejected, err := service.Reject(ctx, "lead", req.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != domain.RequestRejected || rejected.ResolvedAt == nil {
		t.Fatalf("unexpected rejected request %+v", rejected)
	}
	if _, err := service.Accept(ctx, "lead", req.ID); !errors.Is(err, domain.ErrAlreadyProcessed) {
		t.Fatalf("expected already processed, got %v", err)
	}
	if _, err := service.Reject(ctx, "lead", req.ID); !errors.Is(err, domain.ErrAlreadyProcessed) {
		t.Fatalf("expected already processed, got %v", err)
	}

	// A rejected user may ask again.
	again := mustRequest(t, service, team.ID, "u1")
	if _, err := service.CancelJoinRequest(ctx, "lead", again.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("only the requester may cancel, got %v", err)
	}
	cancelled, err := service.CancelJoinRequest(ctx, "u1", again.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != domain.RequestCancelled {
		t.Fatalf("unexpected cancelled request %+v", cancelled)
	}
	if _, err := service.CancelJoinRequest(ctx, "u1", again.ID); !errors.Is(err, domain.ErrAlreadyProcessed) {
		t.Fatalf("expected already processed, got %v", err)
	}

	if _, err := service.ListJoinRequests(ctx, "u1", team.ID, ""); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden listing, got %v", err)
	}
	all, err := service.ListJoinRequests(ctx, "lead", team.ID, "")
	if err != nil {
		t.Fatalf("list requests: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(all))
	}
}

func TestClosedTeamRejectsRequestsAndAccepts(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTeamService()
	team := mustCreateTeam(t, service, "lead", 3)
	req := mustRequest(t, service, team.ID, "u1")

	closed, err := service.SetStatus(ctx, "lead", team.ID, domain.TeamStatusClosed)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Status != domain.TeamStatusClosed {
		t.Fatalf("expected CLOSED, got %s", closed.Status)
	}
	if _, err := service.CreateJoinRequest(ctx, team.ID, "u2", ""); !errors.Is(err, domain.ErrTeamUnavailable) {
		t.Fatalf("expected team unavailable, got %v", err)
	}
	if _, err := service.Accept(ctx, "lead", req.ID); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}

	reopened, err := service.SetStatus(ctx, "lead", team.ID, domain.TeamStatusOpen)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Status != domain.TeamStatusOpen {
		t.Fatalf("expected OPEN, got %s", reopened.Status)
	}
}

func TestRemoveMemberReopensFullTeam(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTeamService()
	team := mustCreateTeam(t, service, "lead", 2)
	req := mustRequest(t, service, team.ID, "u1")
	if _, err := service.Accept(ctx, "lead", req.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := service.CreateJoinRequest(ctx, team.ID, "u2", ""); !errors.Is(err, domain.ErrTeamUnavailable) {
		t.Fatalf("expected full team to refuse requests, got %v", err)
	}

	if _, err := service.RemoveMember(ctx, "u2", team.ID, "u1"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := service.RemoveMember(ctx, "lead", team.ID, "ghost"); !errors.Is(err, domain.ErrMemberNotFound) {
		t.Fatalf("expected member not found, got %v", err)
	}

	// Members may leave on their own.
	got, err := service.RemoveMember(ctx, "u1", team.ID, "u1")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got.CurrentMembers != 1 || got.Status != domain.TeamStatusOpen {
		t.Fatalf("unexpected team after removal %+v", got)
	}
}

func TestRemoveMemberKeepsClosedTeamClosed(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTeamService()
	team := mustCreateTeam(t, service, "lead", 3)
	req := mustRequest(t, service, team.ID, "u1")
	if _, err := service.Accept(ctx, "lead", req.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := service.SetStatus(ctx, "lead", team.ID, domain.TeamStatusClosed); err != nil {
		t.Fatalf("close: %v", err)
	}
	got, err := service.RemoveMember(ctx, "lead", team.ID, "u1")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got.Status != domain.TeamStatusClosed || got.CurrentMembers != 1 {
		t.Fatalf("unexpected team %+v", got)
	}
}

func TestRandomOperationsKeepInvariants(t *testing.T) {
	ctx := context.Background()
	service, store, _ := newTeamService()
	rnd := rand.New(rand.NewSource(7))
	team := mustCreateTeam(t, service, "lead", 4)
	users := []string{"u1", "u2", "u3", "u4", "u5", "u6"}

	for step := 0; step < 400; step++ {
		user := users[rnd.Intn(len(users))]
		switch rnd.Intn(5) {
		case 0:
			_, _ = service.CreateJoinRequest(ctx, team.ID, user, "")
		case 1, 2:
			pending, _ := store.ListJoinRequests(ctx, team.ID, domain.RequestPending)
			if len(pending) > 0 {
				_, _ = service.Accept(ctx, "lead", pending[rnd.Intn(len(pending))].ID)
			}
		case 3:
			_, _ = service.RemoveMember(ctx, user, team.ID, user)
		case 4:
			status := []domain.TeamStatus{domain.TeamStatusOpen, domain.TeamStatusClosed}[rnd.Intn(2)]
			_, _ = service.SetStatus(ctx, "lead", team.ID, status)
		}
		assertTeamInvariants(t, store, team.ID, step)
	}
}

func TestEventsPublishedAfterCommit(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTeamService()
	team := mustCreateTeam(t, service, "lead", 2)

	events, cancel, err := service.Subscribe(ctx, team.ID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	req := mustRequest(t, service, team.ID, "u1")
	if _, err := service.Accept(ctx, "lead", req.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	// A failed operation publishes nothing.
	_, _ = service.RemoveMember(ctx, "lead", team.ID, "lead")

	want := []domain.TeamEventType{domain.EventJoinRequested, domain.EventRequestAccepted}
	for _, typ := range want {
		select {
		case ev := <-events:
			if ev.Type != typ || ev.TeamID != team.ID {
				t.Fatalf("expected %s, got %+v", typ, ev)
			}
			if typ == domain.EventRequestAccepted && ev.Team.Status != domain.TeamStatusFull {
				t.Fatalf("expected FULL snapshot, got %+v", ev.Team)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s", typ)
		}
	}
	select {
	case ev := <-events:
		t.Fatalf("unexpected event %+v", ev)
	default:
	}

	if _, _, err := service.Subscribe(ctx, "missing"); !errors.Is(err, domain.ErrTeamNotFound) {
		t.Fatalf("expected team not found, got %v", err)
	}
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	ctx := context.Background()
	service := app.NewTeamService(memory.NewTeamStore(), failingBus{}, zerolog.Nop())
	team := mustCreateTeam(t, service, "lead", 2)
	if _, err := service.CreateJoinRequest(ctx, team.ID, "u1", ""); err != nil {
		t.Fatalf("create request: %v", err)
	}
}

func TestListTeamsFiltersByStatus(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTeamService()
	open := mustCreateTeam(t, service, "a", 3)
	closed := mustCreateTeam(t, service, "b", 3)
	if _, err := service.SetStatus(ctx, "b", closed.ID, domain.TeamStatusClosed); err != nil {
		t.Fatalf("close: %v", err)
	}

	teams, err := service.ListTeams(ctx, domain.TeamStatusOpen)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(teams) != 1 || teams[0].ID != open.ID {
		t.Fatalf("unexpected open teams %+v", teams)
	}
	all, _ := service.ListTeams(ctx, "")
	if len(all) != 2 {
		t.Fatalf("expected 2 teams, got %d", len(all))
	}
	if _, err := service.ListTeams(ctx, "nope"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func assertTeamInvariants(t *testing.T, store *memory.TeamStore, teamID string, step int) {
	t.Helper()
	ctx := context.Background()
	team, err := store.GetTeam(ctx, teamID)
	if err != nil {
		t.Fatalf("step %d: get team: %v", step, err)
	}
	members, _ := store.ListMembers(ctx, teamID)
	if team.CurrentMembers != len(members) {
		t.Fatalf("step %d: count %d but %d members", step, team.CurrentMembers, len(members))
	}
	if team.CurrentMembers < 1 || team.CurrentMembers > team.Capacity {
		t.Fatalf("step %d: member count %d outside [1, %d]", step, team.CurrentMembers, team.Capacity)
	}
	if team.Status != domain.TeamStatusClosed && (team.Status == domain.TeamStatusFull) != (team.CurrentMembers == team.Capacity) {
		t.Fatalf("step %d: status %s with %d/%d members", step, team.Status, team.CurrentMembers, team.Capacity)
	}

	isMember := make(map[string]bool, len(members))
	leaders := 0
	for _, m := range members {
		isMember[m.UserID] = true
		if m.Role == domain.RoleLeader {
			leaders++
		}
	}
	if leaders != 1 || !isMember[team.LeaderID] {
		t.Fatalf("step %d: expected exactly one leader", step)
	}

	pending, _ := store.ListJoinRequests(ctx, teamID, domain.RequestPending)
	seen := make(map[string]bool)
	for _, req := range pending {
		if seen[req.UserID] {
			t.Fatalf("step %d: two pending requests for %s", step, req.UserID)
		}
		seen[req.UserID] = true
		if isMember[req.UserID] {
			t.Fatalf("step %d: pending request for member %s", step, req.UserID)
		}
	}
}

type failingBus struct{}

func (failingBus) Publish(context.Context, domain.TeamEvent) error { return errors.New("bus down") }

func (failingBus) Subscribe(context.Context, string) (<-chan domain.TeamEvent, func(), error) {
	return nil, nil, errors.New("bus down")
}

func newTeamService() (*app.TeamService, *memory.TeamStore, *memory.EventHub) {
	store := memory.NewTeamStore()
	hub := memory.NewEventHub(16)
	return app.NewTeamService(store, hub, zerolog.Nop()), store, hub
}

func mustCreateTeam(t *testing.T, service *app.TeamService, leader string, capacity int) domain.Team {
	t.Helper()
	team, err := service.CreateTeam(context.Background(), leader, app.NewTeam{Name: fmt.Sprintf("%s's team", leader), Capacity: capacity})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	return team
}

func mustRequest(t *testing.T, service *app.TeamService, teamID, userID string) domain.JoinRequest {
	t.Helper()
	req, err := service.CreateJoinRequest(context.Background(), teamID, userID, "let me in")
	if err != nil {
		t.Fatalf("join request: %v", err)
	}
	return req
}
