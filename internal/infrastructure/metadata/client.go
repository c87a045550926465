package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/aniwa/aniwa-server/internal/core/domain"
	"github.com/aniwa/aniwa-server/internal/core/ports"
)

const defaultTimeout = 15 * time.Second

// Client talks to the external series metadata API over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		log:     log,
	}
}

var _ ports.MetadataProvider = (*Client)(nil)

type seriesResponse struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	AltTitles []string          `json:"alt_titles"`
	Synopsis  string            `json:"synopsis"`
	CoverURL  string            `json:"cover_url"`
	Genres    []string          `json:"genres"`
	Year      int               `json:"year"`
	Status    string            `json:"status"`
	Episodes  []episodeResponse `json:"episodes"`
}

type episodeResponse struct {
	Number   int    `json:"number"`
	Title    string `json:"title"`
	Duration int    `json:"duration_seconds"`
}

type searchResponse struct {
	Results []seriesResponse `json:"results"`
}

func (c *Client) Search(ctx context.Context, query string) ([]ports.MetadataSeries, error) {
	endpoint := fmt.Sprintf("%s/series?q=%s", c.baseURL, url.QueryEscape(query))

	var body searchResponse
	if err := c.getJSON(ctx, endpoint, &body); err != nil {
		return nil, fmt.Errorf("metadata search: %w", err)
	}

	results := make([]ports.MetadataSeries, 0, len(body.Results))
	for _, s := range body.Results {
		results = append(results, toPortSeries(s))
	}
	return results, nil
}

func (c *Client) GetSeries(ctx context.Context, sourceID string) (*ports.MetadataSeries, error) {
	endpoint := fmt.Sprintf("%s/series/%s", c.baseURL, url.PathEscape(sourceID))

	var body seriesResponse
	if err := c.getJSON(ctx, endpoint, &body); err != nil {
		return nil, fmt.Errorf("metadata get %s: %w", sourceID, err)
	}

	series := toPortSeries(body)
	return &series, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrAnimeNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func toPortSeries(s seriesResponse) ports.MetadataSeries {
	episodes := make([]ports.MetadataEpisode, 0, len(s.Episodes))
	for _, e := range s.Episodes {
		episodes = append(episodes, ports.MetadataEpisode{
			Number:          e.Number,
			Title:           e.Title,
			DurationSeconds: e.Duration,
		})
	}
	return ports.MetadataSeries{
		SourceID:  s.ID,
		Title:     s.Title,
		AltTitles: s.AltTitles,
		Synopsis:  s.Synopsis,
		CoverURL:  s.CoverURL,
		Genres:    s.Genres,
		Year:      s.Year,
		Status:    s.Status,
		Episodes:  episodes,
	}
}
