package http

import (
	"net/http"

	"careerpath-service/internal/app"
	"careerpath-service/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// TeamHandler exposes the team state machine.
type TeamHandler struct {
	service *app.TeamService
	log     zerolog.Logger
}

func NewTeamHandler(service *app.TeamService, log zerolog.Logger) *TeamHandler {
	return &TeamHandler{service: service, log: log}
}

type createTeamBody struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=1000"`
	Capacity    int    `json:"capacity" binding:"required,min=2,max=100"`
}

type joinBody struct {
	Message string `json:"message" binding:"max=500"`
}

type statusBody struct {
	Status domain.TeamStatus `json:"status" binding:"required,oneof=OPEN FULL CLOSED"`
}

type teamListQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=OPEN FULL CLOSED"`
}

type requestListQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending accepted rejected cancelled"`
}

func (h *TeamHandler) Create(c *gin.Context) {
	var body createTeamBody
	if fields := bindJSON(c, &body); fields != nil {
		fail(c, http.StatusBadRequest, ErrCodeValidation, fields)
		return
	}
	team, err := h.service.CreateTeam(c.Request.Context(), currentUser(c), app.NewTeam{
		Name:        body.Name,
		Description: body.Description,
		Capacity:    body.Capacity,
	})
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	success(c, http.StatusCreated, team)
}

func (h *TeamHandler) List(c *gin.Context) {
	var q teamListQuery
	if fields := bindQuery(c, &q); fields != nil {
		fail(c, http.StatusBadRequest, ErrCodeValidation, fields)
		return
	}
	teams, err := h.service.ListTeams(c.Request.Context(), domain.TeamStatus(q.Status))
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	if teams == nil {
		teams = []domain.Team{}
	}
	success(c, http.StatusOK, teams)
}

func (h *TeamHandler) Get(c *gin.Context) {
	team, err := h.service.GetTeam(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	success(c, http.StatusOK, team)
}

func (h *TeamHandler) Members(c *gin.Context) {
	members, err := h.service.ListMembers(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	success(c, http.StatusOK, members)
}

func (h *TeamHandler) RequestToJoin(c *gin.Context) {
	var body joinBody
	if c.Request.ContentLength != 0 {
		if fields := bindJSON(c, &body); fields != nil {
			fail(c, http.StatusBadRequest, ErrCodeValidation, fields)
			return
		}
	}
	req, err := h.service.CreateJoinRequest(c.Request.Context(), c.Param("id"), currentUser(c), body.Message)
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	success(c, http.StatusCreated, req)
}

func (h *TeamHandler) JoinRequests(c *gin.Context) {
	var q requestListQuery
	if fields := bindQuery(c, &q); fields != nil {
		fail(c, http.StatusBadRequest, ErrCodeValidation, fields)
		return
	}
	reqs, err := h.service.ListJoinRequests(c.Request.Context(), currentUser(c), c.Param("id"), domain.RequestStatus(q.Status))
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	if reqs == nil {
		reqs = []domain.JoinRequest{}
	}
	success(c, http.StatusOK, reqs)
}

func (h *TeamHandler) Accept(c *gin.Context) {
	team, err := h.service.Accept(c.Request.Context(), currentUser(c), c.Param("requestId"))
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	success(c, http.StatusOK, team)
}

func (h *TeamHandler) Reject(c *gin.Context) {
	req, err := h.service.Reject(c.Request.Context(), currentUser(c), c.Param("requestId"))
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	success(c, http.StatusOK, req)
}

func (h *TeamHandler) Cancel(c *gin.Context) {
	req, err := h.service.CancelJoinRequest(c.Request.Context(), currentUser(c), c.Param("requestId"))
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	success(c, http.StatusOK, req)
}

func (h *TeamHandler) RemoveMember(c *gin.Context) {
	team, err := h.service.RemoveMember(c.Request.Context(), currentUser(c), c.Param("id"), c.Param("userId"))
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	success(c, http.StatusOK, team)
}

func (h *TeamHandler) SetStatus(c *gin.Context) {
	var body statusBody
	if fields := bindJSON(c, &body); fields != nil {
		fail(c, http.StatusBadRequest, ErrCodeValidation, fields)
		return
	}
	team, err := h.service.SetStatus(c.Request.Context(), currentUser(c), c.Param("id"), body.Status)
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	success(c, http.StatusOK, team)
}
