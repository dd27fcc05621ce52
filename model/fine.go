// model/fine.go
package model

import "time"

type FineStatus string

const (
	FinePending FineStatus = "pending"
	FinePaid    FineStatus = "paid"
)

// Fine amounts are integer minor currency units (cents).
type Fine struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	CheckoutID int64      `json:"checkout_id"`
	Amount     int64      `json:"amount"`
	Status     FineStatus `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
}
