package http

import (
	"net/http"

	"careerpath-service/internal/app"
	"careerpath-service/internal/domain"
	"careerpath-service/internal/scoring"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// QuizHandler serves quiz types, quizzes, scoring and result history.
type QuizHandler struct {
	service *app.QuizService
	topN    int
	log     zerolog.Logger
}

func NewQuizHandler(service *app.QuizService, defaultTopN int, log zerolog.Logger) *QuizHandler {
	if defaultTopN <= 0 {
		defaultTopN = app.DefaultTopN
	}
	return &QuizHandler{service: service, topN: defaultTopN, log: log}
}

type quizTypeView struct {
	ID            string                `json:"id"`
	Title         string                `json:"title"`
	Categories    []string              `json:"categories"`
	Weighting     scoring.Weighting     `json:"weighting"`
	Normalization scoring.Normalization `json:"normalization"`
	Ranking       scoring.RankingMode   `json:"ranking"`
}

type evaluateBody struct {
	Answers        []domain.Answer `json:"answers" binding:"max=200"`
	TopN           int             `json:"topN" binding:"omitempty,min=1,max=20"`
	UseMentor      bool            `json:"useMentor"`
	ProfileSummary string          `json:"profileSummary" binding:"max=2000"`
}

type answerBody struct {
	QuestionID string `json:"questionId" binding:"required,max=64"`
	Option     int    `json:"option" binding:"min=0"`
	Category   string `json:"category" binding:"max=64"`
}

type submitBody struct {
	TopN           int    `json:"topN" binding:"omitempty,min=1,max=20"`
	UseMentor      bool   `json:"useMentor"`
	ProfileSummary string `json:"profileSummary" binding:"max=2000"`
}

type historyQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

func (h *QuizHandler) ListQuizTypes(c *gin.Context) {
	types := h.service.QuizTypes()
	out := make([]quizTypeView, 0, len(types))
	for _, qt := range types {
		out = append(out, quizTypeView{
			ID:            qt.ID,
			Title:         qt.Title,
			Categories:    qt.Categories,
			Weighting:     qt.Weighting,
			Normalization: qt.Normalization,
			Ranking:       qt.Ranking,
		})
	}
	success(c, http.StatusOK, out)
}

func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quiz, err := h.service.GetQuiz(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	success(c, http.StatusOK, quiz)
}

// Score evaluates a complete answer set without storing it.
func (h *QuizHandler) Score(c *gin.Context) {
	var body evaluateBody
	if fields := bindJSON(c, &body); fields != nil {
		fail(c, http.StatusBadRequest, ErrCodeValidation, fields)
		return
	}
	eval, err := h.service.Evaluate(c.Request.Context(), h.request(c.Param("id"), body))
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	success(c, http.StatusOK, eval)
}

// Submit evaluates a complete answer set and stores it in the caller's history.
func (h *QuizHandler) Submit(c *gin.Context) {
	var body evaluateBody
	if fields := bindJSON(c, &body); fields != nil {
		fail(c, http.StatusBadRequest, ErrCodeValidation, fields)
		return
	}
	result, err := h.service.Submit(c.Request.Context(), currentUser(c), h.request(c.Param("id"), body))
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	success(c, http.StatusCreated, result)
}

// RecordAnswer stores one answer of the caller's in-progress attempt.
func (h *QuizHandler) RecordAnswer(c *gin.Context) {
	var body answerBody
	if fields := bindJSON(c, &body); fields != nil {
		fail(c, http.StatusBadRequest, ErrCodeValidation, fields)
		return
	}
	answered, err := h.service.RecordAnswer(c.Request.Context(), currentUser(c), c.Param("id"), domain.Answer{
		QuestionID: body.QuestionID,
		Option:     body.Option,
		Category:   body.Category,
	})
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	success(c, http.StatusOK, gin.H{"answered": answered})
}

// SubmitAttempt evaluates the recorded answers of the caller's attempt.
func (h *QuizHandler) SubmitAttempt(c *gin.Context) {
	var body submitBody
	if c.Request.ContentLength != 0 {
		if fields := bindJSON(c, &body); fields != nil {
			fail(c, http.StatusBadRequest, ErrCodeValidation, fields)
			return
		}
	}
	req := h.request(c.Param("id"), evaluateBody{TopN: body.TopN, UseMentor: body.UseMentor, ProfileSummary: body.ProfileSummary})
	result, err := h.service.SubmitAttempt(c.Request.Context(), currentUser(c), req.QuizID, req)
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	success(c, http.StatusCreated, result)
}

func (h *QuizHandler) History(c *gin.Context) {
	var q historyQuery
	if fields := bindQuery(c, &q); fields != nil {
		fail(c, http.StatusBadRequest, ErrCodeValidation, fields)
		return
	}
	results, err := h.service.History(c.Request.Context(), currentUser(c), q.Limit)
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	if results == nil {
		results = []domain.Result{}
	}
	success(c, http.StatusOK, results)
}

func (h *QuizHandler) request(quizID string, body evaluateBody) app.EvaluateRequest {
	topN := body.TopN
	if topN == 0 {
		topN = h.topN
	}
	return app.EvaluateRequest{
		QuizID:         quizID,
		Answers:        body.Answers,
		TopN:           topN,
		UseMentor:      body.UseMentor,
		ProfileSummary: body.ProfileSummary,
	}
}
