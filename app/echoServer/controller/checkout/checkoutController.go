package checkout

import (
	"log/slog"
	"net/http"
	"strconv"

	cs "librarydesk/service/checkout"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc cs.Service
	Log *slog.Logger
}

// POST /v1/books/:id/checkout
// @Summary Check out a book
// @Tags checkouts
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any "book not found"
// @Failure 409 {object} map[string]any "no copies / already checked out"
func (h *Controller) Checkout(c echo.Context) error {
	bookID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || bookID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	out, err := h.Svc.Checkout(c.Request().Context(), uid, bookID)
	if err != nil {
		switch cs.Code(err) {
		case cs.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case cs.ErrUnavailable:
			return c.JSON(http.StatusConflict, echo.Map{"message": "book not available"})
		case cs.ErrAlreadyCheckedOut:
			return c.JSON(http.StatusConflict, echo.Map{"message": "book already checked out by you"})
		default:
			h.Log.Error("checkout", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":     "book checked out successfully",
		"checkout_id": out.CheckoutID,
		"due_date":    out.DueDate,
	})
}

// POST /v1/books/:id/return
// @Summary Return a book
// @Tags checkouts
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any "book not found"
// @Failure 409 {object} map[string]any "no open checkout"
func (h *Controller) Return(c echo.Context) error {
	bookID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || bookID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	out, err := h.Svc.Return(c.Request().Context(), uid, bookID)
	if err != nil {
		switch cs.Code(err) {
		case cs.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case cs.ErrNoActiveCheckout:
			return c.JSON(http.StatusConflict, echo.Map{"message": "no active checkout found"})
		default:
			h.Log.Error("return", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":     "book returned successfully",
		"fine_amount": out.FineAmount,
	})
}

// GET /v1/checkouts/my
func (h *Controller) Mine(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.MyCheckouts(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("checkout history", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
