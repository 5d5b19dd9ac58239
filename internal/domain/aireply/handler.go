package aireply

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/telecare/telecare/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/ai/:doctorId", h.GetStatus)
	g.POST("/ai/toggle", h.Toggle, auth.RequireRole("doctor", "admin"))
	g.PUT("/ai/instructions", h.SetInstructions, auth.RequireRole("doctor", "admin"))
}

func (h *Handler) GetStatus(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("doctorId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	s, err := h.svc.Status(c.Request().Context(), doctorID)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "AI settings not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load AI settings")
	}
	return c.JSON(http.StatusOK, s)
}

type toggleRequest struct {
	DoctorID    uuid.UUID `json:"doctorId"`
	IsAIEnabled bool      `json:"isAIEnabled"`
}

// Toggle flips the doctor's account-level enablement. Doctors may only
// toggle their own record; admins may toggle any.
func (h *Handler) Toggle(c echo.Context) error {
	var req toggleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.authorize(c, req.DoctorID); err != nil {
		return err
	}
	s, err := h.svc.Toggle(c.Request().Context(), req.DoctorID, req.IsAIEnabled)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, s)
}

type instructionsRequest struct {
	DoctorID     uuid.UUID `json:"doctorId"`
	Instructions string    `json:"instructions"`
}

func (h *Handler) SetInstructions(c echo.Context) error {
	var req instructionsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.authorize(c, req.DoctorID); err != nil {
		return err
	}
	s, err := h.svc.SetInstructions(c.Request().Context(), req.DoctorID, req.Instructions)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) authorize(c echo.Context, doctorID uuid.UUID) error {
	ctx := c.Request().Context()
	if auth.RoleFromContext(ctx) == "admin" {
		return nil
	}
	if auth.UserIDFromContext(ctx) != doctorID.String() {
		return echo.NewHTTPError(http.StatusForbidden, "cannot change another doctor's AI settings")
	}
	return nil
}
