package fine

import (
	"log/slog"
	"net/http"
	"strconv"

	fs "librarydesk/service/fine"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc fs.Service
	Log *slog.Logger
}

// POST /v1/fines/:id/pay
// @Summary Pay a pending fine
// @Tags fines
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any "not found / not pending"
func (h *Controller) Pay(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	if err := h.Svc.Pay(c.Request().Context(), uid, id); err != nil {
		switch fs.Code(err) {
		case fs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "fine not found"})
		default:
			h.Log.Error("pay fine", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "fine paid"})
}

// GET /v1/fines/my
func (h *Controller) Mine(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.MyFines(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("fine list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
