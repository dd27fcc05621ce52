package analytics

import (
	"log/slog"
	"net/http"

	as "librarydesk/service/analytics"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc as.Service
	Log *slog.Logger
}

// GET /v1/analytics/books
func (h *Controller) Books(c echo.Context) error {
	stats, err := h.Svc.BookStats(c.Request().Context())
	if err != nil {
		h.Log.Error("book analytics", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": stats})
}

// GET /v1/analytics/fines
func (h *Controller) Fines(c echo.Context) error {
	stats, err := h.Svc.FineStats(c.Request().Context())
	if err != nil {
		h.Log.Error("fine analytics", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, stats)
}

// GET /v1/analytics/activity
func (h *Controller) Activity(c echo.Context) error {
	stats, err := h.Svc.ActivityStats(c.Request().Context())
	if err != nil {
		h.Log.Error("activity analytics", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"daily_activity": stats})
}
