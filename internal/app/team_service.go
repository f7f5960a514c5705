package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"careerpath-service/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MaxTeamCapacity bounds the member capacity a leader may configure.
const MaxTeamCapacity = 100

// TeamStore is the persistent store behind the team state machine. Mutations
// run inside InTx; if fn returns an error nothing it did is kept.
type TeamStore interface {
	InTx(ctx context.Context, fn func(tx TeamTx) error) error
	GetTeam(ctx context.Context, teamID string) (domain.Team, error)
	ListTeams(ctx context.Context, status domain.TeamStatus) ([]domain.Team, error)
	ListMembers(ctx context.Context, teamID string) ([]domain.TeamMember, error)
	ListJoinRequests(ctx context.Context, teamID string, status domain.RequestStatus) ([]domain.JoinRequest, error)
}

// TeamTx is the set of row operations available inside a transaction.
// LockTeam serializes all transactions touching the same team.
type TeamTx interface {
	InsertTeam(ctx context.Context, team domain.Team) error
	LockTeam(ctx context.Context, teamID string) (domain.Team, error)
	// CompareAndSetMembers updates the member count and status only if the
	// stored count still equals expected. It reports whether the swap happened.
	CompareAndSetMembers(ctx context.Context, teamID string, expected, next int, status domain.TeamStatus) (bool, error)
	SetTeamStatus(ctx context.Context, teamID string, status domain.TeamStatus) error

	InsertMember(ctx context.Context, member domain.TeamMember) error
	GetMember(ctx context.Context, teamID, userID string) (domain.TeamMember, error)
	DeleteMember(ctx context.Context, teamID, userID string) error

	InsertJoinRequest(ctx context.Context, req domain.JoinRequest) error
	GetJoinRequest(ctx context.Context, requestID string) (domain.JoinRequest, error)
	FindPendingRequest(ctx context.Context, teamID, userID string) (domain.JoinRequest, bool, error)
	// ResolveJoinRequest moves a pending request to a terminal status and
	// returns ErrAlreadyProcessed if it is no longer pending.
	ResolveJoinRequest(ctx context.Context, requestID string, status domain.RequestStatus, at time.Time) error
}

// EventBus fans committed team events out to subscribers.
type EventBus interface {
	Publish(ctx context.Context, event domain.TeamEvent) error
	Subscribe(ctx context.Context, teamID string) (<-chan domain.TeamEvent, func(), error)
}

// NewTeam holds the fields a leader supplies when creating a team.
type NewTeam struct {
	Name        string
	Description string
	Capacity    int
}

// TeamService implements the team capacity state machine.
type TeamService struct {
	store  TeamStore
	events EventBus
	log    zerolog.Logger
	now    func() time.Time
}

func NewTeamService(store TeamStore, events EventBus, log zerolog.Logger) *TeamService {
	return &TeamService{
		store:  store,
		events: events,
		log:    log.With().Str("component", "team_service").Logger(),
		now:    time.Now,
	}
}

// CreateTeam creates an OPEN team with the creator as its only member and leader.
func (s *TeamService) CreateTeam(ctx context.Context, leaderID string, input NewTeam) (domain.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return domain.Team{}, domain.Invalid("name", "must not be empty")
	}
	if input.Capacity < 2 || input.Capacity > MaxTeamCapacity {
		return domain.Team{}, domain.Invalid("capacity", "must be between 2 and %d", MaxTeamCapacity)
	}

	now := s.now().UTC()
	team := domain.Team{
		ID:             uuid.NewString(),
		Name:           name,
		Description:    strings.TrimSpace(input.Description),
		LeaderID:       leaderID,
		Capacity:       input.Capacity,
		CurrentMembers: 1,
		Status:         domain.TeamStatusOpen,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err := s.store.InTx(ctx, func(tx TeamTx) error {
		if err := tx.InsertTeam(ctx, team); err != nil {
			return err
		}
		return tx.InsertMember(ctx, domain.TeamMember{
			TeamID:   team.ID,
			UserID:   leaderID,
			Role:     domain.RoleLeader,
			JoinedAt: now,
		})
	})
	if err != nil {
		return domain.Team{}, err
	}
	s.log.Info().Str("team_id", team.ID).Str("leader_id", leaderID).Int("capacity", team.Capacity).Msg("team created")
	return team, nil
}

func (s *TeamService) GetTeam(ctx context.Context, teamID string) (domain.Team, error) {
	return s.store.GetTeam(ctx, teamID)
}

// ListTeams lists teams, optionally filtered by status ("" for all).
func (s *TeamService) ListTeams(ctx context.Context, status domain.TeamStatus) ([]domain.Team, error) {
	if status != "" && !status.Valid() {
		return nil, domain.Invalid("status", "unknown status %q", status)
	}
	return s.store.ListTeams(ctx, status)
}

func (s *TeamService) ListMembers(ctx context.Context, teamID string) ([]domain.TeamMember, error) {
	if _, err := s.store.GetTeam(ctx, teamID); err != nil {
		return nil, err
	}
	return s.store.ListMembers(ctx, teamID)
}

// ListJoinRequests is restricted to the team leader.
func (s *TeamService) ListJoinRequests(ctx context.Context, actorID, teamID string, status domain.RequestStatus) ([]domain.JoinRequest, error) {
	team, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team.LeaderID != actorID {
		return nil, domain.ErrForbidden
	}
	return s.store.ListJoinRequests(ctx, teamID, status)
}

// CreateJoinRequest files a pending request for userID to join the team.
func (s *TeamService) CreateJoinRequest(ctx context.Context, teamID, userID, message string) (domain.JoinRequest, error) {
	req := domain.JoinRequest{
		ID:        uuid.NewString(),
		TeamID:    teamID,
		UserID:    userID,
		Message:   strings.TrimSpace(message),
		Status:    domain.RequestPending,
		CreatedAt: s.now().UTC(),
	}
	var team domain.Team
	err := s.store.InTx(ctx, func(tx TeamTx) error {
		var err error
		team, err = tx.LockTeam(ctx, teamID)
		if err != nil {
			return err
		}
		if _, pending, err := tx.FindPendingRequest(ctx, teamID, userID); err != nil {
			return err
		} else if pending {
			return domain.ErrDuplicatePendingRequest
		}
		if _, err := tx.GetMember(ctx, teamID, userID); err == nil {
			return domain.ErrAlreadyMember
		} else if !isNotFound(err) {
			return err
		}
		if team.Status != domain.TeamStatusOpen {
			return domain.ErrTeamUnavailable
		}
		return tx.InsertJoinRequest(ctx, req)
	})
	if err != nil {
		return domain.JoinRequest{}, err
	}
	s.publish(ctx, domain.EventJoinRequested, team, userID, req.ID)
	return req, nil
}

// Accept approves a pending request: the requester becomes a member and the
// team flips to FULL when the last slot is taken.
func (s *TeamService) Accept(ctx context.Context, actorID, requestID string) (domain.Team, error) {
	var (
		req  domain.JoinRequest
		next domain.Team
	)
	err := s.store.InTx(ctx, func(tx TeamTx) error {
		var err error
		req, err = tx.GetJoinRequest(ctx, requestID)
		if err != nil {
			return err
		}
		team, err := tx.LockTeam(ctx, req.TeamID)
		if err != nil {
			return err
		}
		if team.LeaderID != actorID {
			return domain.ErrForbidden
		}
		if req.Status != domain.RequestPending {
			return domain.ErrAlreadyProcessed
		}
		if team.Status == domain.TeamStatusClosed {
			return domain.ErrInvalidState
		}
		if team.CurrentMembers >= team.Capacity {
			return domain.ErrCapacityExceeded
		}

		now := s.now().UTC()
		if err := tx.ResolveJoinRequest(ctx, req.ID, domain.RequestAccepted, now); err != nil {
			return err
		}
		if err := tx.InsertMember(ctx, domain.TeamMember{
			TeamID:   team.ID,
			UserID:   req.UserID,
			Role:     domain.RoleMember,
			JoinedAt: now,
		}); err != nil {
			return err
		}

		next = team
		next.CurrentMembers++
		next.Status = next.DerivedStatus()
		next.UpdatedAt = now
		swapped, err := tx.CompareAndSetMembers(ctx, team.ID, team.CurrentMembers, next.CurrentMembers, next.Status)
		if err != nil {
			return err
		}
		if !swapped {
			return domain.ErrCapacityExceeded
		}
		return nil
	})
	if err != nil {
		return domain.Team{}, err
	}
	s.log.Info().Str("team_id", next.ID).Str("user_id", req.UserID).Int("members", next.CurrentMembers).Msg("join request accepted")
	s.publish(ctx, domain.EventRequestAccepted, next, req.UserID, req.ID)
	return next, nil
}

// Reject declines a pending request without touching membership.
func (s *TeamService) Reject(ctx context.Context, actorID, requestID string) (domain.JoinRequest, error) {
	var (
		req  domain.JoinRequest
		team domain.Team
	)
	err := s.store.InTx(ctx, func(tx TeamTx) error {
		var err error
		req, err = tx.GetJoinRequest(ctx, requestID)
		if err != nil {
			return err
		}
		team, err = tx.LockTeam(ctx, req.TeamID)
		if err != nil {
			return err
		}
		if team.LeaderID != actorID {
			return domain.ErrForbidden
		}
		if req.Status != domain.RequestPending {
			return domain.ErrAlreadyProcessed
		}
		now := s.now().UTC()
		if err := tx.ResolveJoinRequest(ctx, req.ID, domain.RequestRejected, now); err != nil {
			return err
		}
		req.Status = domain.RequestRejected
		req.ResolvedAt = &now
		return nil
	})
	if err != nil {
		return domain.JoinRequest{}, err
	}
	s.publish(ctx, domain.EventRequestRejected, team, req.UserID, req.ID)
	return req, nil
}

// CancelJoinRequest lets the requester withdraw a pending request.
func (s *TeamService) CancelJoinRequest(ctx context.Context, actorID, requestID string) (domain.JoinRequest, error) {
	var (
		req  domain.JoinRequest
		team domain.Team
	)
	err := s.store.InTx(ctx, func(tx TeamTx) error {
		var err error
		req, err = tx.GetJoinRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if req.UserID != actorID {
			return domain.ErrForbidden
		}
		if req.Status != domain.RequestPending {
			return domain.ErrAlreadyProcessed
		}
		team, err = tx.LockTeam(ctx, req.TeamID)
		if err != nil {
			return err
		}
		now := s.now().UTC()
		if err := tx.ResolveJoinRequest(ctx, req.ID, domain.RequestCancelled, now); err != nil {
			return err
		}
		req.Status = domain.RequestCancelled
		req.ResolvedAt = &now
		return nil
	})
	if err != nil {
		return domain.JoinRequest{}, err
	}
	s.publish(ctx, domain.EventRequestCancelled, team, req.UserID, req.ID)
	return req, nil
}

// RemoveMember removes userID from the team. The leader may remove anyone but
// themselves; members may remove only themselves.
func (s *TeamService) RemoveMember(ctx context.Context, actorID, teamID, userID string) (domain.Team, error) {
	var next domain.Team
	err := s.store.InTx(ctx, func(tx TeamTx) error {
		team, err := tx.LockTeam(ctx, teamID)
		if err != nil {
			return err
		}
		if userID == team.LeaderID {
			return domain.ErrForbidden
		}
		if actorID != team.LeaderID && actorID != userID {
			return domain.ErrForbidden
		}
		if err := tx.DeleteMember(ctx, teamID, userID); err != nil {
			return err
		}

		next = team
		next.CurrentMembers--
		next.Status = next.DerivedStatus()
		next.UpdatedAt = s.now().UTC()
		swapped, err := tx.CompareAndSetMembers(ctx, team.ID, team.CurrentMembers, next.CurrentMembers, next.Status)
		if err != nil {
			return err
		}
		if !swapped {
			return domain.ErrInvalidState
		}
		return nil
	})
	if err != nil {
		return domain.Team{}, err
	}
	s.log.Info().Str("team_id", teamID).Str("user_id", userID).Str("actor_id", actorID).Msg("member removed")
	s.publish(ctx, domain.EventMemberRemoved, next, userID, "")
	return next, nil
}

// SetStatus applies a manual status change. CLOSED is always allowed for the
// leader; OPEN only while a slot is free; FULL is never set by hand.
func (s *TeamService) SetStatus(ctx context.Context, actorID, teamID string, status domain.TeamStatus) (domain.Team, error) {
	if !status.Valid() {
		return domain.Team{}, domain.Invalid("status", "unknown status %q", status)
	}
	var (
		next    domain.Team
		changed bool
	)
	err := s.store.InTx(ctx, func(tx TeamTx) error {
		team, err := tx.LockTeam(ctx, teamID)
		if err != nil {
			return err
		}
		if team.LeaderID != actorID {
			return domain.ErrForbidden
		}
		switch status {
		case domain.TeamStatusClosed:
		case domain.TeamStatusOpen:
			if team.CurrentMembers >= team.Capacity {
				return domain.ErrInvalidState
			}
		default:
			return domain.ErrInvalidState
		}

		next = team
		if team.Status == status {
			return nil
		}
		changed = true
		next.Status = status
		next.UpdatedAt = s.now().UTC()
		return tx.SetTeamStatus(ctx, teamID, status)
	})
	if err != nil {
		return domain.Team{}, err
	}
	if changed {
		s.log.Info().Str("team_id", teamID).Str("status", string(status)).Msg("team status changed")
		s.publish(ctx, domain.EventStatusChanged, next, actorID, "")
	}
	return next, nil
}

// Subscribe streams committed events for one team.
func (s *TeamService) Subscribe(ctx context.Context, teamID string) (<-chan domain.TeamEvent, func(), error) {
	if _, err := s.store.GetTeam(ctx, teamID); err != nil {
		return nil, nil, err
	}
	return s.events.Subscribe(ctx, teamID)
}

func (s *TeamService) publish(ctx context.Context, typ domain.TeamEventType, team domain.Team, userID, requestID string) {
	if s.events == nil {
		return
	}
	event := domain.TeamEvent{
		Type:       typ,
		TeamID:     team.ID,
		UserID:     userID,
		RequestID:  requestID,
		Team:       team,
		OccurredAt: s.now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("team_id", team.ID).Str("event", string(typ)).Msg("publish team event failed")
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
