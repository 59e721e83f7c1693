package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Image is a file held by the image store. PublicID is the handle used to
// delete it again.
type Image struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

func (i Image) IsZero() bool {
	return i.URL == "" && i.PublicID == ""
}

// Category groups products. Names are unique.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Image     Image     `json:"image"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CategoryRef is the slice of a category embedded in product responses.
type CategoryRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image Image  `json:"image"`
}

func NewCategory(name string, image Image) *Category {
	now := time.Now().UTC()
	return &Category{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		Image:     image,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *Category) Ref() *CategoryRef {
	return &CategoryRef{ID: c.ID, Name: c.Name, Image: c.Image}
}
