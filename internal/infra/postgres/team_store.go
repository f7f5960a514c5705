package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"careerpath-service/internal/app"
	"careerpath-service/internal/domain"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const uniqueViolation = "23505"

// TeamStore persists teams, members and join requests with pgx. The team row
// lock taken by LockTeam serializes every mutation of one team.
type TeamStore struct {
	pool *pgxpool.Pool
}

func NewTeamStore(pool *pgxpool.Pool) *TeamStore {
	return &TeamStore{pool: pool}
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func (s *TeamStore) InTx(ctx context.Context, fn func(tx app.TeamTx) error) error {
	return s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		return fn(&teamTx{q: tx})
	})
}

const teamColumns = `id, name, description, leader_id, capacity, current_members, status, created_at, updated_at`

func (s *TeamStore) GetTeam(ctx context.Context, teamID string) (domain.Team, error) {
	return getTeam(ctx, s.pool, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, teamID)
}

func (s *TeamStore) ListTeams(ctx context.Context, status domain.TeamStatus) ([]domain.Team, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+teamColumns+` FROM teams
		WHERE $1::text = '' OR status = $1::text
		ORDER BY created_at DESC, id`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	var out []domain.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, team)
	}
	return out, rows.Err()
}

func (s *TeamStore) ListMembers(ctx context.Context, teamID string) ([]domain.TeamMember, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT team_id, user_id, role, joined_at FROM team_members
		WHERE team_id = $1 ORDER BY joined_at, user_id`, teamID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var out []domain.TeamMember
	for rows.Next() {
		var m domain.TeamMember
		var role string
		if err := rows.Scan(&m.TeamID, &m.UserID, &role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		m.Role = domain.MemberRole(role)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *TeamStore) ListJoinRequests(ctx context.Context, teamID string, status domain.RequestStatus) ([]domain.JoinRequest, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+requestColumns+` FROM join_requests
		WHERE team_id = $1 AND ($2::text = '' OR status = $2::text)
		ORDER BY created_at, id`, teamID, string(status))
	if err != nil {
		return nil, fmt.Errorf("list join requests: %w", err)
	}
	defer rows.Close()

	var out []domain.JoinRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

type teamTx struct {
	q querier
}

func (tx *teamTx) InsertTeam(ctx context.Context, t domain.Team) error {
	_, err := tx.q.Exec(ctx, `
		INSERT INTO teams (`+teamColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.Name, t.Description, t.LeaderID, t.Capacity, t.CurrentMembers, string(t.Status), t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert team: %w", err)
	}
	return nil
}

func (tx *teamTx) LockTeam(ctx context.Context, teamID string) (domain.Team, error) {
	return getTeam(ctx, tx.q, `SELECT `+teamColumns+` FROM teams WHERE id = $1 FOR UPDATE`, teamID)
}

// CompareAndSetMembers only swaps while the stored count matches and the new
// count fits the capacity, so a stale writer loses even without the row lock.
func (tx *teamTx) CompareAndSetMembers(ctx context.Context, teamID string, expected, next int, status domain.TeamStatus) (bool, error) {
	tag, err := tx.q.Exec(ctx, `
		UPDATE teams SET current_members = $3, status = $4, updated_at = now()
		WHERE id = $1 AND current_members = $2 AND $3 <= capacity`,
		teamID, expected, next, string(status))
	if err != nil {
		return false, fmt.Errorf("update member count: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (tx *teamTx) SetTeamStatus(ctx context.Context, teamID string, status domain.TeamStatus) error {
	tag, err := tx.q.Exec(ctx, `UPDATE teams SET status = $2, updated_at = now() WHERE id = $1`, teamID, string(status))
	if err != nil {
		return fmt.Errorf("update team status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTeamNotFound
	}
	return nil
}

func (tx *teamTx) InsertMember(ctx context.Context, m domain.TeamMember) error {
	_, err := tx.q.Exec(ctx, `
		INSERT INTO team_members (team_id, user_id, role, joined_at) VALUES ($1, $2, $3, $4)`,
		m.TeamID, m.UserID, string(m.Role), m.JoinedAt)
	if err != nil {
		return translate(err, "insert member")
	}
	return nil
}

func (tx *teamTx) GetMember(ctx context.Context, teamID, userID string) (domain.TeamMember, error) {
	m := domain.TeamMember{TeamID: teamID, UserID: userID}
	var role string
	err := tx.q.QueryRow(ctx, `
		SELECT role, joined_at FROM team_members WHERE team_id = $1 AND user_id = $2`,
		teamID, userID).Scan(&role, &m.JoinedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TeamMember{}, domain.ErrMemberNotFound
		}
		return domain.TeamMember{}, fmt.Errorf("get member: %w", err)
	}
	m.Role = domain.MemberRole(role)
	return m, nil
}

func (tx *teamTx) DeleteMember(ctx context.Context, teamID, userID string) error {
	tag, err := tx.q.Exec(ctx, `DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`, teamID, userID)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMemberNotFound
	}
	return nil
}

const requestColumns = `id, team_id, user_id, message, status, created_at, resolved_at`

func (tx *teamTx) InsertJoinRequest(ctx context.Context, r domain.JoinRequest) error {
	_, err := tx.q.Exec(ctx, `
		INSERT INTO join_requests (`+requestColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.TeamID, r.UserID, r.Message, string(r.Status), r.CreatedAt, r.ResolvedAt)
	if err != nil {
		return translate(err, "insert join request")
	}
	return nil
}

func (tx *teamTx) GetJoinRequest(ctx context.Context, requestID string) (domain.JoinRequest, error) {
	req, err := scanRequest(tx.q.QueryRow(ctx, `SELECT `+requestColumns+` FROM join_requests WHERE id = $1`, requestID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.JoinRequest{}, domain.ErrJoinRequestNotFound
	}
	return req, err
}

func (tx *teamTx) FindPendingRequest(ctx context.Context, teamID, userID string) (domain.JoinRequest, bool, error) {
	req, err := scanRequest(tx.q.QueryRow(ctx, `
		SELECT `+requestColumns+` FROM join_requests
		WHERE team_id = $1 AND user_id = $2 AND status = 'pending'`, teamID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.JoinRequest{}, false, nil
	}
	if err != nil {
		return domain.JoinRequest{}, false, err
	}
	return req, true, nil
}

func (tx *teamTx) ResolveJoinRequest(ctx context.Context, requestID string, status domain.RequestStatus, at time.Time) error {
	tag, err := tx.q.Exec(ctx, `
		UPDATE join_requests SET status = $2, resolved_at = $3
		WHERE id = $1 AND status = 'pending'`, requestID, string(status), at)
	if err != nil {
		return fmt.Errorf("resolve join request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyProcessed
	}
	return nil
}

func getTeam(ctx context.Context, q querier, sql, teamID string) (domain.Team, error) {
	team, err := scanTeam(q.QueryRow(ctx, sql, teamID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Team{}, domain.ErrTeamNotFound
	}
	return team, err
}

func scanTeam(row pgx.Row) (domain.Team, error) {
	var t domain.Team
	var status string
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.LeaderID, &t.Capacity, &t.CurrentMembers, &status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Team{}, err
		}
		return domain.Team{}, fmt.Errorf("scan team: %w", err)
	}
	t.Status = domain.TeamStatus(status)
	return t, nil
}

func scanRequest(row pgx.Row) (domain.JoinRequest, error) {
	var r domain.JoinRequest
	var status string
	err := row.Scan(&r.ID, &r.TeamID, &r.UserID, &r.Message, &status, &r.CreatedAt, &r.ResolvedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.JoinRequest{}, err
		}
		return domain.JoinRequest{}, fmt.Errorf("scan join request: %w", err)
	}
	r.Status = domain.RequestStatus(status)
	return r, nil
}

// translate maps unique violations onto the domain errors they stand for.
func translate(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case "team_members_pkey":
			return domain.ErrAlreadyMember
		case "join_requests_one_pending":
			return domain.ErrDuplicatePendingRequest
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
