package booksvc

import (
	"context"
	"errors"

	"librarydesk/model"
)

type Repo interface {
	CreateAuthor(ctx context.Context, name string, bio *string) (int64, error)
	ListAuthors(ctx context.Context) ([]model.Author, error)
	CreateBook(ctx context.Context, title string, authorID *int64, isbn, genre *string, quantity int) (int64, error)
	Search(ctx context.Context, p model.SearchParams, callerID int64) ([]model.BookWithAuthor, error)
}

type Service interface {
	CreateAuthor(ctx context.Context, name string, bio *string) (int64, error)
	ListAuthors(ctx context.Context) ([]model.Author, error)
	CreateBook(ctx context.Context, title string, authorID *int64, isbn, genre *string, quantity int) (int64, error)
	Search(ctx context.Context, p model.SearchParams, callerID int64) ([]model.BookWithAuthor, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) CreateAuthor(ctx context.Context, name string, bio *string) (int64, error) {
	if name == "" {
		return 0, errors.New("invalid payload")
	}
	return s.r.CreateAuthor(ctx, name, bio)
}

func (s *service) ListAuthors(ctx context.Context) ([]model.Author, error) {
	return s.r.ListAuthors(ctx)
}

func (s *service) CreateBook(ctx context.Context, title string, authorID *int64, isbn, genre *string, quantity int) (int64, error) {
	if title == "" || quantity < 0 {
		return 0, errors.New("invalid payload")
	}
	return s.r.CreateBook(ctx, title, authorID, isbn, genre, quantity)
}

func (s *service) Search(ctx context.Context, p model.SearchParams, callerID int64) ([]model.BookWithAuthor, error) {
	return s.r.Search(ctx, p, callerID)
}
