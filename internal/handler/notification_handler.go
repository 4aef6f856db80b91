package handler

import (
	"net/http"
	"strconv"

	"github.com/autohive/automarket-backend/internal/model"
	"github.com/autohive/automarket-backend/internal/repository"
	"github.com/autohive/automarket-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type NotificationHandler struct {
	svc service.NotificationService
}

func NewNotificationHandler(svc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func (h *NotificationHandler) List(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	opts := repository.ListOptions{
		UnreadOnly: c.QueryParam("unread_only") == "true",
		Type:       model.NotificationType(c.QueryParam("type")),
		Priority:   model.NotificationPriority(c.QueryParam("priority")),
	}
	if s := c.QueryParam("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			opts.Limit = v
		}
	}
	if s := c.QueryParam("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			opts.Offset = v
		}
	}
	list, unreadCount, err := h.svc.List(c.Request().Context(), uid, opts)
	if err != nil {
		return c.JSON(errorStatus(err, "failed to fetch notifications"))
	}
	if list == nil {
		list = []model.Notification{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"notifications": list,
		"unreadCount":   unreadCount,
	})
}

func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	cnt, err := h.svc.GetUnreadCount(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(errorStatus(err, "failed to count notifications"))
	}
	return c.JSON(http.StatusOK, map[string]int64{"unreadCount": cnt})
}

type markReadRequest struct {
	IDs []string `json:"ids"`
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req markReadRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	if err := h.svc.MarkRead(c.Request().Context(), uid, req.IDs); err != nil {
		return c.JSON(errorStatus(err, "failed to mark read"))
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	if err := h.svc.MarkAllRead(c.Request().Context(), uid); err != nil {
		return c.JSON(errorStatus(err, "failed to mark read"))
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *NotificationHandler) Delete(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	if err := h.svc.Delete(c.Request().Context(), uid, c.Param("id")); err != nil {
		return c.JSON(errorStatus(err, "failed to delete notification"))
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
