package book

type CreateBookReq struct {
	Title    string  `json:"title" validate:"required"`
	AuthorID *int64  `json:"author_id" validate:"omitempty,gt=0"`
	ISBN     *string `json:"isbn"`
	Genre    *string `json:"genre"`
	Quantity int     `json:"quantity" validate:"required,gte=0"`
}

type CreateAuthorReq struct {
	Name string  `json:"name" validate:"required"`
	Bio  *string `json:"bio"`
}
