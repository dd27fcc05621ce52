// model/reservation.go
package model

import "time"

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationFulfilled ReservationStatus = "fulfilled"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationExpired   ReservationStatus = "expired"
)

type Reservation struct {
	ID               int64             `json:"id"`
	UserID           int64             `json:"user_id"`
	BookID           int64             `json:"book_id"`
	ReservedAt       time.Time         `json:"reserved_at"`
	ExpiresAt        time.Time         `json:"expires_at"`
	Status           ReservationStatus `json:"status"`
	NotificationSent bool              `json:"notification_sent"`
}
