package chat

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/telecare/telecare/internal/platform/auth"
	"github.com/telecare/telecare/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/conversations", h.ListConversations)
	g.POST("/conversations", h.OpenConversation)
	g.GET("/conversations/:id/messages", h.MessageHistory)
	g.PUT("/conversations/:id/ai", h.SetAIOverride)
}

func callerID(c echo.Context) (uuid.UUID, error) {
	return uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
}

func (h *Handler) ListConversations(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid caller identity")
	}
	p := pagination.FromContext(c)
	items, total, err := h.svc.ListConversations(c.Request().Context(), caller, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list conversations")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, p.Limit, p.Offset))
}

type openConversationRequest struct {
	With uuid.UUID `json:"with"`
}

func (h *Handler) OpenConversation(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid caller identity")
	}
	var req openConversationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	conv, err := h.svc.FindOrCreateConversation(c.Request().Context(), caller, req.With)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, conv)
}

func (h *Handler) MessageHistory(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid caller identity")
	}
	convID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid conversation id")
	}
	p := pagination.FromContext(c)
	items, total, err := h.svc.MessageHistory(c.Request().Context(), convID, caller, p.Limit, p.Offset)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "conversation not found")
	}
	if errors.Is(err, ErrUnauthorized) {
		return echo.NewHTTPError(http.StatusForbidden, "not a participant of this conversation")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load messages")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, p.Limit, p.Offset))
}

type aiOverrideRequest struct {
	// Enabled is tri-state: true/false set the conversation override, null
	// clears it so the doctor's account settings apply again.
	Enabled *bool `json:"enabled"`
}

func (h *Handler) SetAIOverride(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid caller identity")
	}
	convID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid conversation id")
	}
	var req aiOverrideRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	role := auth.RoleFromContext(c.Request().Context())
	conv, err := h.svc.SetAIOverride(c.Request().Context(), convID, caller, role, req.Enabled)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "conversation not found")
	}
	if errors.Is(err, ErrUnauthorized) {
		return echo.NewHTTPError(http.StatusForbidden, "only the doctor participant may change auto-reply")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update auto-reply")
	}
	return c.JSON(http.StatusOK, conv)
}
