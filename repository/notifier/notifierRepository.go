package notifierrepo

import "context"

// Event is posted when a reservation is fulfilled so an external channel
// (mail, push) can tell the user their copy is back.
type Event struct {
	ReservationID int64  `json:"reservation_id"`
	UserID        int64  `json:"user_id"`
	BookID        int64  `json:"book_id"`
	BookTitle     string `json:"book_title,omitempty"`
}

type Repo interface {
	ReservationFulfilled(ctx context.Context, ev Event) error
}
