package domain

import (
	"errors"
	"time"
)

// WatchStatus represents the lifecycle state of a watchlist entry.
type WatchStatus string

const (
	WatchPlanToWatch WatchStatus = "plan_to_watch"
	WatchWatching    WatchStatus = "watching"
	WatchCompleted   WatchStatus = "completed"
	WatchDropped     WatchStatus = "dropped"
)

// validWatchTransitions defines the allowed watchlist state changes.
// Completed and dropped entries can be picked back up.
var validWatchTransitions = map[WatchStatus][]WatchStatus{
	WatchPlanToWatch: {WatchWatching, WatchDropped},
	WatchWatching:    {WatchCompleted, WatchDropped},
	WatchCompleted:   {WatchWatching},
	WatchDropped:     {WatchPlanToWatch, WatchWatching},
}

var ErrInvalidWatchTransition = errors.New("invalid watch status transition")
var ErrWatchlistEntryNotFound = errors.New("watchlist entry not found")

// CanTransitionTo reports whether a watchlist entry may move from s to next.
func (s WatchStatus) CanTransitionTo(next WatchStatus) bool {
	for _, allowed := range validWatchTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// WatchlistEntry tracks one user's relationship with one series.
type WatchlistEntry struct {
	UserID    string      `json:"user_id"`
	AnimeID   string      `json:"anime_id"`
	Status    WatchStatus `json:"status"`
	Favorite  bool        `json:"favorite"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// WatchProgress records how far a user got into a single episode.
type WatchProgress struct {
	UserID          string    `json:"user_id"`
	AnimeID         string    `json:"anime_id"`
	EpisodeID       string    `json:"episode_id"`
	PositionSeconds int       `json:"position_seconds"`
	Completed       bool      `json:"completed"`
	UpdatedAt       time.Time `json:"updated_at"`
}
