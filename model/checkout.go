// model/checkout.go
package model

import "time"

type Checkout struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	BookID       int64      `json:"book_id"`
	CheckedOutAt time.Time  `json:"checked_out_at"`
	DueDate      time.Time  `json:"due_date"`
	ReturnedAt   *time.Time `json:"returned_at,omitempty"`
}

// Open reports whether the book is still out.
func (c Checkout) Open() bool { return c.ReturnedAt == nil }
