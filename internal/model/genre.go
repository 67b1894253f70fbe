package model

import "time"

// Genre is a named category movies are linked to through GenreMovie.
type Genre struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GenreMovie links one movie to one genre.
type GenreMovie struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MovieID   uint      `gorm:"index;not null" json:"movieId"`
	GenreID   uint      `gorm:"index;not null" json:"genreId"`
	Genre     *Genre    `gorm:"constraint:OnDelete:CASCADE" json:"genre,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// GenreInput is the body of POST /movies/genre and PUT /movies/genre/:id.
type GenreInput struct {
	Name *string `json:"name"`
}

func (in GenreInput) Validate() error {
	return Check(required("genre").with(str(in.Name)))
}
