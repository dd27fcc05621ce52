package echoServer

import (
	"librarydesk/app/echoServer/controller/analytics"
	"librarydesk/app/echoServer/controller/auth"
	"librarydesk/app/echoServer/controller/book"
	"librarydesk/app/echoServer/controller/checkout"
	"librarydesk/app/echoServer/controller/fine"
	"librarydesk/app/echoServer/controller/reservation"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Auth        *auth.Controller
	Book        *book.Controller
	Checkout    *checkout.Controller
	Reservation *reservation.Controller
	Fine        *fine.Controller
	Analytics   *analytics.Controller

	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)

	// Catalog browsing needs no account; a token, when sent, still
	// personalizes the listing.
	pub.GET("/books", c.Book.List, OptionalIdentity(c.JWTSecret))
	pub.GET("/authors", c.Book.ListAuthors)

	// Auth
	auth := e.Group("/v1")
	auth.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(c.JWTSecret),

		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	auth.Use(ExtractIdentity())

	// Catalog management (staff)
	auth.POST("/books", c.Book.Create, RequireStaff())
	auth.POST("/authors", c.Book.CreateAuthor, RequireStaff())

	// Lending
	auth.POST("/books/:id/checkout", c.Checkout.Checkout)
	auth.POST("/books/:id/return", c.Checkout.Return)
	auth.GET("/checkouts/my", c.Checkout.Mine)

	// Reservations
	auth.POST("/books/:id/reserve", c.Reservation.Reserve)
	auth.POST("/reservations/:id/cancel", c.Reservation.Cancel)
	auth.GET("/reservations/my", c.Reservation.Mine)

	// Fines
	auth.POST("/fines/:id/pay", c.Fine.Pay)
	auth.GET("/fines/my", c.Fine.Mine)

	// Analytics
	auth.GET("/analytics/books", c.Analytics.Books)
	auth.GET("/analytics/fines", c.Analytics.Fines)
	auth.GET("/analytics/activity", c.Analytics.Activity)
}
