package handler

import "github.com/aniwa/aniwa-server/internal/core/domain"

type animeRequest struct {
	Title     string   `json:"title"      validate:"required,max=300"`
	AltTitles []string `json:"alt_titles"`
	Synopsis  string   `json:"synopsis"`
	CoverURL  string   `json:"cover_url"  validate:"omitempty,url"`
	Genres    []string `json:"genres"`
	Year      int      `json:"year"       validate:"omitempty,gte=1900"`
	Status    string   `json:"status"     validate:"omitempty,oneof=upcoming ongoing finished"`
	SourceID  string   `json:"source_id"`
}

type episodeRequest struct {
	Number          int    `json:"number"           validate:"required,gt=0"`
	Title           string `json:"title"`
	VideoURL        string `json:"video_url"        validate:"required,url"`
	DurationSeconds int    `json:"duration_seconds" validate:"omitempty,gt=0"`
}

type listAnimeResponse struct {
	Items      []*domain.Anime `json:"items"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}
