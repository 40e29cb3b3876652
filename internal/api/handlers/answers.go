package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Ayash-Bera/campusqa/internal/models"
	"github.com/Ayash-Bera/campusqa/internal/services"
	"github.com/Ayash-Bera/campusqa/pkg/utils"
)

type AnswerHandler struct {
	answers *services.AnswerService
	logger  *logrus.Logger
}

func NewAnswerHandler(answers *services.AnswerService, logger *logrus.Logger) *AnswerHandler {
	return &AnswerHandler{answers: answers, logger: logger}
}

func (h *AnswerHandler) List(c *gin.Context) {
	answers, err := h.answers.List(c.Request.Context(), principal(c), c.Param("slug"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", answers)
}

func (h *AnswerHandler) Get(c *gin.Context) {
	answer, err := h.answers.Get(c.Request.Context(), principal(c), c.Param("slug"), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", answer)
}

func (h *AnswerHandler) Create(c *gin.Context) {
	var req models.AnswerRequest
	if !bindJSON(c, &req) {
		return
	}

	answer, err := h.answers.Create(c.Request.Context(), principal(c), c.Param("slug"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Answer created", answer)
}

func (h *AnswerHandler) Update(c *gin.Context) {
	var req models.AnswerRequest
	if !bindJSON(c, &req) {
		return
	}

	answer, err := h.answers.Update(c.Request.Context(), principal(c), c.Param("slug"), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Answer updated", answer)
}

func (h *AnswerHandler) Delete(c *gin.Context) {
	if err := h.answers.Delete(c.Request.Context(), principal(c), c.Param("slug"), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AnswerHandler) Upvote(c *gin.Context)   { h.vote(c, 1) }
func (h *AnswerHandler) Downvote(c *gin.Context) { h.vote(c, -1) }

func (h *AnswerHandler) vote(c *gin.Context, value int) {
	answer, err := h.answers.Vote(c.Request.Context(), principal(c), c.Param("slug"), c.Param("id"), value)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", answer)
}

func (h *AnswerHandler) Unvote(c *gin.Context) {
	answer, err := h.answers.Unvote(c.Request.Context(), principal(c), c.Param("slug"), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", answer)
}
