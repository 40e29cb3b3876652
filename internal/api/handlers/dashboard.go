package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Ayash-Bera/campusqa/internal/services"
	"github.com/Ayash-Bera/campusqa/pkg/utils"
)

type DashboardHandler struct {
	dashboard *services.DashboardService
	logger    *logrus.Logger
}

func NewDashboardHandler(dashboard *services.DashboardService, logger *logrus.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, logger: logger}
}

func (h *DashboardHandler) Senior(c *gin.Context) {
	dashboard, err := h.dashboard.Senior(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", dashboard)
}
