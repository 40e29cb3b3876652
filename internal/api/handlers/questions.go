package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Ayash-Bera/campusqa/internal/models"
	"github.com/Ayash-Bera/campusqa/internal/services"
	"github.com/Ayash-Bera/campusqa/pkg/utils"
)

type QuestionHandler struct {
	questions *services.QuestionService
	logger    *logrus.Logger
}

func NewQuestionHandler(questions *services.QuestionService, logger *logrus.Logger) *QuestionHandler {
	return &QuestionHandler{questions: questions, logger: logger}
}

// List handles GET /questions with optional answered, author, answer_author
// and category filters.
func (h *QuestionHandler) List(c *gin.Context) {
	filter := models.QuestionFilter{
		AuthorID:       c.Query("author"),
		AnswerAuthorID: c.Query("answer_author"),
		Category:       c.Query("category"),
	}
	if raw := c.Query("answered"); raw != "" {
		answered, err := strconv.ParseBool(raw)
		if err != nil {
			utils.CodedErrorResponse(c, http.StatusBadRequest, services.CodeValidation, "answered must be true or false.")
			return
		}
		filter.Answered = &answered
	}
	filter.Page, filter.PageSize = pageParams(c)

	items, total, err := h.questions.List(c.Request.Context(), principal(c), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.PagedResponse(c, http.StatusOK, items, pageMeta(filter.Page, filter.PageSize, total))
}

func (h *QuestionHandler) Create(c *gin.Context) {
	var req models.CreateQuestionRequest
	if !bindJSON(c, &req) {
		return
	}

	question, err := h.questions.Create(c.Request.Context(), principal(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Question created", question)
}

// Get returns the question with its answers. Every call counts as a view.
func (h *QuestionHandler) Get(c *gin.Context) {
	detail, err := h.questions.Get(c.Request.Context(), principal(c), c.Param("slug"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", detail)
}

func (h *QuestionHandler) Update(c *gin.Context) {
	var req models.UpdateQuestionRequest
	if !bindJSON(c, &req) {
		return
	}

	question, err := h.questions.Update(c.Request.Context(), principal(c), c.Param("slug"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Question updated", question)
}

func (h *QuestionHandler) Delete(c *gin.Context) {
	if err := h.questions.Delete(c.Request.Context(), principal(c), c.Param("slug")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *QuestionHandler) Upvote(c *gin.Context)   { h.vote(c, 1) }
func (h *QuestionHandler) Downvote(c *gin.Context) { h.vote(c, -1) }

func (h *QuestionHandler) vote(c *gin.Context, value int) {
	result, err := h.questions.Vote(c.Request.Context(), principal(c), c.Param("slug"), value)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// Unvote backs both DELETE .../upvote and DELETE .../downvote.
func (h *QuestionHandler) Unvote(c *gin.Context) {
	result, err := h.questions.Unvote(c.Request.Context(), principal(c), c.Param("slug"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *QuestionHandler) SetFAQ(c *gin.Context) {
	var req models.FAQRequest
	if !bindJSON(c, &req) {
		return
	}

	question, err := h.questions.SetFAQ(c.Request.Context(), principal(c), c.Param("slug"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "FAQ updated", question)
}

func (h *QuestionHandler) FAQs(c *gin.Context) {
	questions, err := h.questions.FAQs(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", questions)
}

func (h *QuestionHandler) Categories(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "", h.questions.Categories())
}
