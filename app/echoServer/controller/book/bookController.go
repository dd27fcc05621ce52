package book

import (
	"log/slog"
	"net/http"

	"librarydesk/model"
	booksvc "librarydesk/service/book"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc booksvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// GET /v1/books?query=&genre=&available=true
// @Summary List and search the catalog
// @Tags books
// @Success 200 {object} map[string]any
func (h *Controller) List(c echo.Context) error {
	p := model.SearchParams{
		Query:         c.QueryParam("query"),
		Genre:         c.QueryParam("genre"),
		AvailableOnly: c.QueryParam("available") == "true",
	}
	uid, _ := c.Get("user_id").(int64)

	rows, err := h.Svc.Search(c.Request().Context(), p, uid)
	if err != nil {
		h.Log.Error("book list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// POST /v1/books (staff)
// @Summary Add a book to the catalog
// @Tags books
// @Success 201 {object} map[string]any
func (h *Controller) Create(c echo.Context) error {
	var req CreateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	id, err := h.Svc.CreateBook(c.Request().Context(), req.Title, req.AuthorID, req.ISBN, req.Genre, req.Quantity)
	if err != nil {
		h.Log.Error("book create", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"book_id": id})
}

// POST /v1/authors (staff)
// @Summary Add an author
// @Tags authors
// @Success 201 {object} map[string]any
func (h *Controller) CreateAuthor(c echo.Context) error {
	var req CreateAuthorReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}

	id, err := h.Svc.CreateAuthor(c.Request().Context(), req.Name, req.Bio)
	if err != nil {
		h.Log.Error("author create", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"author_id": id})
}

// GET /v1/authors
func (h *Controller) ListAuthors(c echo.Context) error {
	rows, err := h.Svc.ListAuthors(c.Request().Context())
	if err != nil {
		h.Log.Error("author list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
