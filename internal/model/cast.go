package model

import "time"

// MovieCast is one cast member of a movie.
type MovieCast struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	MovieID     uint      `gorm:"index;not null" json:"movieId"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	ProfilePict string    `gorm:"size:512" json:"profilePict"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CastInput struct {
	Name        *string `json:"name"`
	ProfilePict *string `json:"profilePict"`
}

func (c CastInput) field() Field {
	return required("cast name").with(str(c.Name))
}
