package reservation

import (
	"log/slog"
	"net/http"
	"strconv"

	rs "librarydesk/service/reservation"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc rs.Service
	Log *slog.Logger
}

// POST /v1/books/:id/reserve
// @Summary Place a hold on a book
// @Tags reservations
// @Success 201 {object} map[string]any
// @Failure 404 {object} map[string]any "book not found"
// @Failure 409 {object} map[string]any "pending reservation already exists"
func (h *Controller) Reserve(c echo.Context) error {
	bookID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || bookID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	res, err := h.Svc.Reserve(c.Request().Context(), uid, bookID)
	if err != nil {
		switch rs.Code(err) {
		case rs.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case rs.ErrDuplicateRes:
			return c.JSON(http.StatusConflict, echo.Map{"message": "you already have a pending reservation for this book"})
		default:
			h.Log.Error("reserve", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, res)
}

// POST /v1/reservations/:id/cancel
// @Summary Cancel a pending reservation
// @Tags reservations
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any "not found / not yours"
// @Failure 409 {object} map[string]any "not pending"
func (h *Controller) Cancel(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	if err := h.Svc.Cancel(c.Request().Context(), uid, id); err != nil {
		switch rs.Code(err) {
		case rs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "reservation not found"})
		case rs.ErrInvalidState:
			return c.JSON(http.StatusConflict, echo.Map{"message": "reservation is not pending"})
		default:
			h.Log.Error("cancel reservation", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "reservation cancelled"})
}

// GET /v1/reservations/my
func (h *Controller) Mine(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.MyReservations(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("reservation list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
