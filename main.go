// Package main librarydesk API.
//
// @title           Librarydesk API
// @version         1.0
// @description     Library management service (catalog, checkouts, reservations, fines, analytics).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"librarydesk/app/echoServer"
	analyticsctrl "librarydesk/app/echoServer/controller/analytics"
	authctrl "librarydesk/app/echoServer/controller/auth"
	bookctrl "librarydesk/app/echoServer/controller/book"
	checkoutctrl "librarydesk/app/echoServer/controller/checkout"
	finectrl "librarydesk/app/echoServer/controller/fine"
	reservationctrl "librarydesk/app/echoServer/controller/reservation"
	"librarydesk/app/echoServer/validation"
	"librarydesk/config"
	analyticsrepo "librarydesk/repository/analytics"
	bookrepo "librarydesk/repository/book"
	checkoutrepo "librarydesk/repository/checkout"
	finerepo "librarydesk/repository/fine"
	notifierrepo "librarydesk/repository/notifier"
	reservationrepo "librarydesk/repository/reservation"
	userrepo "librarydesk/repository/user"
	analyticssvc "librarydesk/service/analytics"
	authsvc "librarydesk/service/auth"
	booksvc "librarydesk/service/book"
	checkoutsvc "librarydesk/service/checkout"
	finesvc "librarydesk/service/fine"
	reservationsvc "librarydesk/service/reservation"
	"librarydesk/util/database"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	// DB: *sql.DB over the pgx driver
	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ur := userrepo.New(db)
	br := bookrepo.New(db)
	cr := checkoutrepo.New(db)
	rr := reservationrepo.New(db)
	fr := finerepo.New(db)
	anr := analyticsrepo.New(db)
	nr := notifierrepo.NewWebhook(cfg.ReservationWebhookURL)

	// services
	as := authsvc.New(ur, cfg.JWTSecret)
	bs := booksvc.New(br)
	cs := checkoutsvc.New(db, cr, br, rr, nr, checkoutsvc.Policy{
		LoanPeriod:    cfg.LoanPeriod,
		OverdueUnit:   cfg.OverdueUnit,
		FineRateCents: cfg.FineRateCents,
	}, log)
	rsv := reservationsvc.New(db, rr, br, cfg.HoldWindow)
	fs := finesvc.New(fr)
	ans := analyticssvc.New(anr)

	// reservation expiry sweep
	sweeper := reservationsvc.NewSweeper(rr, log)
	go sweeper.Run(ctx, cfg.SweepInterval)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	checkoutC := &checkoutctrl.Controller{Svc: cs, Log: log}
	reservationC := &reservationctrl.Controller{Svc: rsv, Log: log}
	fineC := &finectrl.Controller{Svc: fs, Log: log}
	analyticsC := &analyticsctrl.Controller{Svc: ans, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		if err := db.PingContext(c.Request().Context()); err != nil {
			return c.JSON(503, map[string]any{"status": "down", "message": err.Error()})
		}
		return c.JSON(200, map[string]any{"status": "ok"})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:        authC,
		Book:        bookC,
		Checkout:    checkoutC,
		Reservation: reservationC,
		Fine:        fineC,
		Analytics:   analyticsC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	slog.Info("starting server", "port", port)

	e.Logger.Fatal(e.Start(":" + port))
}
