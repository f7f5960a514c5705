package domain

import "time"

// Option is one selectable answer. Weighted quizzes annotate it with a target
// category and weight; simple quizzes map it to a category by position.
type Option struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Category string `json:"category,omitempty"`
	Weight   int    `json:"weight,omitempty"`
}

// Question is immutable once a quiz is defined.
type Question struct {
	ID       string   `json:"id"`
	Position int      `json:"position"`
	Prompt   string   `json:"prompt"`
	Category string   `json:"category,omitempty"`
	Options  []Option `json:"options"`
}

// Quiz is a question set bound to a quiz type (category set and scoring policy).
type Quiz struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// Answer pairs a question with the chosen option. Category may be used instead
// of Option on simple quizzes to name the chosen category directly.
type Answer struct {
	QuestionID string `json:"questionId"`
	Option     int    `json:"option"`
	Category   string `json:"category,omitempty"`
}

// CategoryScoreVector maps category name to score.
type CategoryScoreVector map[string]int

// Clone returns an independent copy.
func (v CategoryScoreVector) Clone() CategoryScoreVector {
	out := make(CategoryScoreVector, len(v))
	for k, s := range v {
		out[k] = s
	}
	return out
}

// Details is the descriptive metadata attached to a recommendation.
type Details struct {
	Description     string `json:"description"`
	SalaryBand      string `json:"salaryBand,omitempty"`
	Demand          string `json:"demand,omitempty"`
	WorkLifeBalance string `json:"workLifeBalance,omitempty"`
	JobSecurity     string `json:"jobSecurity,omitempty"`
}

// Recommendation is a ranked, metadata-enriched match.
type Recommendation struct {
	Key        string  `json:"key"`
	Label      string  `json:"label"`
	MatchScore int     `json:"matchScore"`
	Details    Details `json:"details"`
}

// Result is a stored snapshot of one evaluated quiz attempt.
type Result struct {
	ID              string              `json:"id"`
	UserID          string              `json:"userId"`
	QuizID          string              `json:"quizId"`
	QuizType        string              `json:"quizType"`
	Answers         []Answer            `json:"answers"`
	Scores          CategoryScoreVector `json:"scores"`
	Recommendations []Recommendation    `json:"recommendations"`
	CreatedAt       time.Time           `json:"createdAt"`
}

// TeamStatus is the membership lifecycle state of a team.
type TeamStatus string

const (
	TeamStatusOpen   TeamStatus = "OPEN"
	TeamStatusFull   TeamStatus = "FULL"
	TeamStatusClosed TeamStatus = "CLOSED"
)

// Valid reports whether s is a known status.
func (s TeamStatus) Valid() bool {
	switch s {
	case TeamStatusOpen, TeamStatusFull, TeamStatusClosed:
		return true
	}
	return false
}

// Team is a collaboration group with a hard member capacity.
type Team struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	LeaderID       string     `json:"leaderId"`
	Capacity       int        `json:"capacity"`
	CurrentMembers int        `json:"currentMembers"`
	Status         TeamStatus `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// DerivedStatus recomputes OPEN/FULL from the member count. A CLOSED team stays CLOSED.
func (t Team) DerivedStatus() TeamStatus {
	if t.Status == TeamStatusClosed {
		return TeamStatusClosed
	}
	if t.CurrentMembers >= t.Capacity {
		return TeamStatusFull
	}
	return TeamStatusOpen
}

// MemberRole distinguishes the team leader from regular members.
type MemberRole string

const (
	RoleLeader MemberRole = "leader"
	RoleMember MemberRole = "member"
)

// TeamMember links a user to a team. (TeamID, UserID) is unique.
type TeamMember struct {
	TeamID   string     `json:"teamId"`
	UserID   string     `json:"userId"`
	Role     MemberRole `json:"role"`
	JoinedAt time.Time  `json:"joinedAt"`
}

// RequestStatus is the state of a join request; every status but pending is terminal.
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestAccepted  RequestStatus = "accepted"
	RequestRejected  RequestStatus = "rejected"
	RequestCancelled RequestStatus = "cancelled"
)

// JoinRequest is a user's request to become a member of a team.
type JoinRequest struct {
	ID         string        `json:"id"`
	TeamID     string        `json:"teamId"`
	UserID     string        `json:"userId"`
	Message    string        `json:"message,omitempty"`
	Status     RequestStatus `json:"status"`
	CreatedAt  time.Time     `json:"createdAt"`
	ResolvedAt *time.Time    `json:"resolvedAt,omitempty"`
}

// TeamEventType names a membership change published after commit.
type TeamEventType string

const (
	EventJoinRequested    TeamEventType = "join_requested"
	EventRequestAccepted  TeamEventType = "request_accepted"
	EventRequestRejected  TeamEventType = "request_rejected"
	EventRequestCancelled TeamEventType = "request_cancelled"
	EventMemberRemoved    TeamEventType = "member_removed"
	EventStatusChanged    TeamEventType = "status_changed"
)

// TeamEvent notifies subscribers of a committed team change.
type TeamEvent struct {
	Type       TeamEventType `json:"type"`
	TeamID     string        `json:"teamId"`
	UserID     string        `json:"userId,omitempty"`
	RequestID  string        `json:"requestId,omitempty"`
	Team       Team          `json:"team"`
	OccurredAt time.Time     `json:"occurredAt"`
}
