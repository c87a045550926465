package domain

import (
	"errors"
	"time"
)

// AiringStatus represents where a series is in its broadcast lifecycle.
type AiringStatus string

const (
	AiringUpcoming AiringStatus = "upcoming"
	AiringOngoing  AiringStatus = "ongoing"
	AiringFinished AiringStatus = "finished"
)

var ErrAnimeNotFound = errors.New("anime not found")
var ErrEpisodeNotFound = errors.New("episode not found")
var ErrDuplicateAnime = errors.New("anime already exists")
var ErrForbidden = errors.New("access forbidden")

// Anime is the catalog aggregate root. SourceID links the entry back to the
// external metadata provider it was imported from.
type Anime struct {
	ID        string       `json:"id"`
	SourceID  string       `json:"source_id,omitempty"`
	Title     string       `json:"title"`
	AltTitles []string     `json:"alt_titles,omitempty"`
	Synopsis  string       `json:"synopsis,omitempty"`
	CoverURL  string       `json:"cover_url,omitempty"`
	Genres    []string     `json:"genres,omitempty"`
	Year      int          `json:"year,omitempty"`
	Status    AiringStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Episode points at an externally hosted video. The platform never stores or
// serves video itself.
type Episode struct {
	ID              string    `json:"id"`
	AnimeID         string    `json:"anime_id"`
	Number          int       `json:"number"`
	Title           string    `json:"title,omitempty"`
	VideoURL        string    `json:"video_url"`
	DurationSeconds int       `json:"duration_seconds,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
