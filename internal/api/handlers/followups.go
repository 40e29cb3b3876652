package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Ayash-Bera/campusqa/internal/models"
	"github.com/Ayash-Bera/campusqa/internal/services"
	"github.com/Ayash-Bera/campusqa/pkg/utils"
)

type FollowUpHandler struct {
	followUps *services.FollowUpService
	logger    *logrus.Logger
}

func NewFollowUpHandler(followUps *services.FollowUpService, logger *logrus.Logger) *FollowUpHandler {
	return &FollowUpHandler{followUps: followUps, logger: logger}
}

func (h *FollowUpHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	items, total, err := h.followUps.List(c.Request.Context(), c.Param("slug"), page, size)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.PagedResponse(c, http.StatusOK, items, pageMeta(page, size, total))
}

func (h *FollowUpHandler) Get(c *gin.Context) {
	followUp, err := h.followUps.Get(c.Request.Context(), c.Param("slug"), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", followUp)
}

func (h *FollowUpHandler) Create(c *gin.Context) {
	var req models.FollowUpRequest
	if !bindJSON(c, &req) {
		return
	}

	followUp, err := h.followUps.Create(c.Request.Context(), principal(c), c.Param("slug"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Follow-up created", followUp)
}

func (h *FollowUpHandler) Update(c *gin.Context) {
	var req models.FollowUpRequest
	if !bindJSON(c, &req) {
		return
	}

	followUp, err := h.followUps.Update(c.Request.Context(), principal(c), c.Param("slug"), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Follow-up updated", followUp)
}

func (h *FollowUpHandler) Delete(c *gin.Context) {
	if err := h.followUps.Delete(c.Request.Context(), principal(c), c.Param("slug"), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
