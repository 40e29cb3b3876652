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

type NotificationHandler struct {
	notifications *services.NotificationService
	logger        *logrus.Logger
}

func NewNotificationHandler(notifications *services.NotificationService, logger *logrus.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, logger: logger}
}

func (h *NotificationHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	items, total, err := h.notifications.List(c.Request.Context(), principal(c), page, size)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.PagedResponse(c, http.StatusOK, items, pageMeta(page, size, total))
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.notifications.UnreadCount(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", models.UnreadCountResponse{Unread: count})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.CodedErrorResponse(c, http.StatusNotFound, services.CodeNotFound, "Notification not found.")
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), principal(c), uint(id)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Notification marked as read", nil)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	updated, err := h.notifications.MarkAllRead(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Notifications marked as read", gin.H{"updated": updated})
}
