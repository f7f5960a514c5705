package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"careerpath-service/internal/app"
	"careerpath-service/internal/domain"
)

// TeamStore is an in-memory app.TeamStore. Transactions are serialized by a
// single mutex and work on a copy of the state that replaces the original
// only when the callback succeeds.
type TeamStore struct {
	mu    sync.RWMutex
	state teamState
}

type memberKey struct {
	teamID string
	userID string
}

type teamState struct {
	teams    map[string]domain.Team
	members  map[memberKey]domain.TeamMember
	requests map[string]domain.JoinRequest
}

func NewTeamStore() *TeamStore {
	return &TeamStore{state: teamState{
		teams:    make(map[string]domain.Team),
		members:  make(map[memberKey]domain.TeamMember),
		requests: make(map[string]domain.JoinRequest),
	}}
}

func (s teamState) clone() teamState {
	out := teamState{
		teams:    make(map[string]domain.Team, len(s.teams)),
		members:  make(map[memberKey]domain.TeamMember, len(s.members)),
		requests: make(map[string]domain.JoinRequest, len(s.requests)),
	}
	for k, v := range s.teams {
		out.teams[k] = v
	}
	for k, v := range s.members {
		out.members[k] = v
	}
	for k, v := range s.requests {
		out.requests[k] = v
	}
	return out
}

func (s *TeamStore) InTx(ctx context.Context, fn func(tx app.TeamTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &teamTx{state: s.state.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = tx.state
	return nil
}

func (s *TeamStore) GetTeam(_ context.Context, teamID string) (domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	team, ok := s.state.teams[teamID]
	if !ok {
		return domain.Team{}, domain.ErrTeamNotFound
	}
	return team, nil
}

func (s *TeamStore) ListTeams(_ context.Context, status domain.TeamStatus) ([]domain.Team, error) {
	s.mu.RLock()
	out := make([]domain.Team, 0, len(s.state.teams))
	for _, team := range s.state.teams {
		if status == "" || team.Status == status {
			out = append(out, team)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *TeamStore) ListMembers(_ context.Context, teamID string) ([]domain.TeamMember, error) {
	s.mu.RLock()
	var out []domain.TeamMember
	for key, member := range s.state.members {
		if key.teamID == teamID {
			out = append(out, member)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].JoinedAt.Before(out[j].JoinedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (s *TeamStore) ListJoinRequests(_ context.Context, teamID string, status domain.RequestStatus) ([]domain.JoinRequest, error) {
	s.mu.RLock()
	var out []domain.JoinRequest
	for _, req := range s.state.requests {
		if req.TeamID == teamID && (status == "" || req.Status == status) {
			out = append(out, req)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// teamTx mutates a private copy of the store state.
type teamTx struct {
	state teamState
}

func (tx *teamTx) InsertTeam(_ context.Context, team domain.Team) error {
	if _, ok := tx.state.teams[team.ID]; ok {
		return domain.Invalid("id", "team %s already exists", team.ID)
	}
	tx.state.teams[team.ID] = team
	return nil
}

func (tx *teamTx) LockTeam(_ context.Context, teamID string) (domain.Team, error) {
	team, ok := tx.state.teams[teamID]
	if !ok {
		return domain.Team{}, domain.ErrTeamNotFound
	}
	return team, nil
}

func (tx *teamTx) CompareAndSetMembers(_ context.Context, teamID string, expected, next int, status domain.TeamStatus) (bool, error) {
	team, ok := tx.state.teams[teamID]
	if !ok {
		return false, domain.ErrTeamNotFound
	}
	if team.CurrentMembers != expected || next > team.Capacity || next < 1 {
		return false, nil
	}
	team.CurrentMembers = next
	team.Status = status
	team.UpdatedAt = time.Now().UTC()
	tx.state.teams[teamID] = team
	return true, nil
}

func (tx *teamTx) SetTeamStatus(_ context.Context, teamID string, status domain.TeamStatus) error {
	team, ok := tx.state.teams[teamID]
	if !ok {
		return domain.ErrTeamNotFound
	}
	team.Status = status
	team.UpdatedAt = time.Now().UTC()
	tx.state.teams[teamID] = team
	return nil
}

func (tx *teamTx) InsertMember(_ context.Context, member domain.TeamMember) error {
	key := memberKey{teamID: member.TeamID, userID: member.UserID}
	if _, ok := tx.state.members[key]; ok {
		return domain.ErrAlreadyMember
	}
	tx.state.members[key] = member
	return nil
}

func (tx *teamTx) GetMember(_ context.Context, teamID, userID string) (domain.TeamMember, error) {
	member, ok := tx.state.members[memberKey{teamID: teamID, userID: userID}]
	if !ok {
		return domain.TeamMember{}, domain.ErrMemberNotFound
	}
	return member, nil
}

func (tx *teamTx) DeleteMember(_ context.Context, teamID, userID string) error {
	key := memberKey{teamID: teamID, userID: userID}
	if _, ok := tx.state.members[key]; !ok {
		return domain.ErrMemberNotFound
	}
	delete(tx.state.members, key)
	return nil
}

func (tx *teamTx) InsertJoinRequest(_ context.Context, req domain.JoinRequest) error {
	for _, existing := range tx.state.requests {
		if existing.TeamID == req.TeamID && existing.UserID == req.UserID && existing.Status == domain.RequestPending {
			return domain.ErrDuplicatePendingRequest
		}
	}
	tx.state.requests[req.ID] = req
	return nil
}

func (tx *teamTx) GetJoinRequest(_ context.Context, requestID string) (domain.JoinRequest, error) {
	req, ok := tx.state.requests[requestID]
	if !ok {
		return domain.JoinRequest{}, domain.ErrJoinRequestNotFound
	}
	return req, nil
}

func (tx *teamTx) FindPendingRequest(_ context.Context, teamID, userID string) (domain.JoinRequest, bool, error) {
	for _, req := range tx.state.requests {
		if req.TeamID == teamID && req.UserID == userID && req.Status == domain.RequestPending {
			return req, true, nil
		}
	}
	return domain.JoinRequest{}, false, nil
}

func (tx *teamTx) ResolveJoinRequest(_ context.Context, requestID string, status domain.RequestStatus, at time.Time) error {
	req, ok := tx.state.requests[requestID]
	if !ok {
		return domain.ErrJoinRequestNotFound
	}
	if req.Status != domain.RequestPending {
		return domain.ErrAlreadyProcessed
	}
	req.Status = status
	req.ResolvedAt = &at
	tx.state.requests[requestID] = req
	return nil
}
