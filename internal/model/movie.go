package model

import (
	"time"

	"gorm.io/gorm"

	"github.com/iliyamo/movie-catalog/internal/utils"
)

// Movie is a catalog entry authored by a User.  Slug is derived from Title
// by the create/update hooks and cannot be set by clients.
type Movie struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Title       string       `gorm:"size:255;not null" json:"title"`
	ImgURL      string       `gorm:"size:512;not null" json:"imgUrl"`
	Synopsis    string       `gorm:"type:text;not null" json:"synopsis"`
	TrailerURL  string       `gorm:"type:text;not null" json:"trailerUrl"`
	Slug        string       `gorm:"size:255;index" json:"slug"`
	Rating      int          `gorm:"not null" json:"rating"`
	Popularity  int          `json:"popularity"`
	PosterPath  string       `gorm:"column:poster_path;size:512" json:"poster_path"`
	AuthorID    uint         `gorm:"index" json:"authorId"`
	Author      *User        `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	GenreMovies []GenreMovie `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Casts       []MovieCast  `gorm:"constraint:OnDelete:CASCADE" json:"casts"`
	Genres      []Genre      `gorm:"-" json:"genres"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// BeforeCreate derives the slug from the title.
func (m *Movie) BeforeCreate(tx *gorm.DB) error {
	m.Slug = utils.GenerateSlug(m.Title)
	return nil
}

// BeforeUpdate re-derives the slug so it always follows the current title.
func (m *Movie) BeforeUpdate(tx *gorm.DB) error {
	m.Slug = utils.GenerateSlug(m.Title)
	return nil
}

// AfterFind flattens the join rows into Genres for JSON output.
func (m *Movie) AfterFind(tx *gorm.DB) error {
	m.FlattenGenres()
	return nil
}

// FlattenGenres copies the preloaded genre of every join row into Genres.
func (m *Movie) FlattenGenres() {
	m.Genres = make([]Genre, 0, len(m.GenreMovies))
	for _, gm := range m.GenreMovies {
		if gm.Genre != nil {
			m.Genres = append(m.Genres, *gm.Genre)
		}
	}
}

// MovieInput is the body of POST /movies and PUT /movies/:id.  A client
// sent slug is ignored; authorId is read only on create and only when the
// request carries no token.
type MovieInput struct {
	Title      *string     `json:"title"`
	ImgURL     *string     `json:"imgUrl"`
	Synopsis   *string     `json:"synopsis"`
	TrailerURL *string     `json:"trailerUrl"`
	Rating     *JSONInt    `json:"rating"`
	Popularity *JSONInt    `json:"popularity"`
	PosterPath *string     `json:"poster_path"`
	AuthorID   *JSONInt    `json:"authorId"`
	GenreIDs   []uint      `json:"genreIds"`
	Casts      []CastInput `json:"casts"`
}

// Validate checks the movie fields first and then each cast entry.
func (in MovieInput) Validate() error {
	return Check(in.fields(nil)...)
}

// ValidateCreate is Validate plus authorId.  An explicitly empty authorId
// is always rejected; an absent one only when anonymous is true, since the
// caller's token supplies the author otherwise.
func (in MovieInput) ValidateCreate(anonymous bool) error {
	author := Field{
		Value: numOrBlank(in.AuthorID),
		Rules: []Rule{{Tag: "gt=0", Message: "authorId is required"}},
	}
	if anonymous {
		author.Missing = "authorId is required"
	}
	return Check(in.fields(&author)...)
}

func (in MovieInput) fields(author *Field) []Field {
	fields := []Field{
		required("title").with(str(in.Title)),
		required("imgUrl").with(str(in.ImgURL)),
		required("synopsis").with(str(in.Synopsis)),
		required("trailerUrl").with(str(in.TrailerURL)),
		{
			Value:   num(in.Rating),
			Missing: "rating is required",
			Rules:   []Rule{{Tag: "min=10", Message: "rating minimum 10"}},
		},
	}
	if author != nil {
		fields = append(fields, *author)
	}
	for _, c := range in.Casts {
		fields = append(fields, c.field())
	}
	return fields
}

// Apply copies the input onto m, leaving ID, AuthorID and Slug alone.
func (in MovieInput) Apply(m *Movie) {
	m.Title = deref(in.Title)
	m.ImgURL = deref(in.ImgURL)
	m.Synopsis = deref(in.Synopsis)
	m.TrailerURL = deref(in.TrailerURL)
	m.Rating = derefInt(in.Rating)
	m.Popularity = derefInt(in.Popularity)
	m.PosterPath = deref(in.PosterPath)
}

// CastRows converts the cast inputs into rows ready to attach to a movie.
func (in MovieInput) CastRows() []MovieCast {
	out := make([]MovieCast, 0, len(in.Casts))
	for _, c := range in.Casts {
		out = append(out, MovieCast{Name: deref(c.Name), ProfilePict: deref(c.ProfilePict)})
	}
	return out
}
