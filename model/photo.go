package model

import (
	"errors"
	"time"
)

// Section is one of the two fixed album groupings a photo belongs to.
type Section string

const (
	SectionOne Section = "section1"
	SectionTwo Section = "section2"
)

var ErrInvalidSection = errors.New("invalid section")

func (s Section) Valid() bool {
	return s == SectionOne || s == SectionTwo
}

// Photo is the catalog record for one uploaded image. Records are
// created once at ingestion and never updated in place; the only
// other lifecycle event is deletion, which removes the record and
// its backing bytes together.
type Photo struct {
	ID        string    `json:"id" bson:"id"`
	Name      string    `json:"name" bson:"name"`
	URL       string    `json:"url" bson:"url"`
	Section   Section   `json:"section" bson:"section"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`

	// Set only when the photo was ingested through the external image
	// host; local uploads leave them empty.
	DisplayURL   string `json:"displayUrl,omitempty" bson:"display_url,omitempty"`
	DeleteToken  string `json:"deleteToken,omitempty" bson:"delete_token,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty" bson:"thumbnail_url,omitempty"`
}
