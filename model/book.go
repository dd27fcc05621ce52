// model/book.go
package model

import "time"

type Author struct {
	ID   int64   `json:"id"`
	Name string  `json:"name"`
	Bio  *string `json:"bio,omitempty"`
}

type Book struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	AuthorID  *int64    `json:"author_id,omitempty"`
	ISBN      *string   `json:"isbn,omitempty"`
	Genre     *string   `json:"genre,omitempty"`
	Quantity  int       `json:"quantity"`
	Available int       `json:"available"`
	CreatedAt time.Time `json:"created_at"`
}

// BookWithAuthor is the catalog listing shape.
type BookWithAuthor struct {
	Book
	Author         *Author `json:"author,omitempty"`
	CheckedOutByMe bool    `json:"checked_out_by_me"`
}

type SearchParams struct {
	Query         string
	Genre         string
	AvailableOnly bool
}
