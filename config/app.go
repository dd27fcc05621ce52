package config

import "time"

type App struct {
	Port        string `env:"APP_PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	Env         string `env:"APP_ENV" default:"dev"`

	// Lending policy. OverdueUnit is the fine granularity: a day in
	// production, compressed in test deployments.
	LoanPeriod    time.Duration `env:"LOAN_PERIOD" default:"336h"`
	OverdueUnit   time.Duration `env:"OVERDUE_UNIT" default:"24h"`
	FineRateCents int64         `env:"FINE_RATE_CENTS" default:"50"`

	// Reservation policy.
	HoldWindow    time.Duration `env:"HOLD_WINDOW" default:"72h"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" default:"1h"`

	// Optional webhook hit when a reservation is fulfilled.
	ReservationWebhookURL string `env:"RESERVATION_WEBHOOK_URL"`
}
