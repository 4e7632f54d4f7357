package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultOEmbedURL = "https://www.youtube.com/oembed"
	notAvailable     = "N/A"
)

// ErrInvalidVideoLink indicates the video link cannot be inspected.
var ErrInvalidVideoLink = errors.New("invalid video link")

// VideoSummary is the metadata fed to the evaluator.
type VideoSummary struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// VideoConfig configures the oEmbed-based inspector.
type VideoConfig struct {
	OEmbedURL string
	Timeout   time.Duration
}

// VideoInspector resolves title and description of a demo video through an
// oEmbed endpoint without downloading it.
type VideoInspector struct {
	endpoint string
	client   *http.Client
	logger   zerolog.Logger
}

// NewVideoInspector constructs an inspector.
func NewVideoInspector(cfg VideoConfig, logger zerolog.Logger) *VideoInspector {
	if cfg.OEmbedURL == "" {
		cfg.OEmbedURL = defaultOEmbedURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &VideoInspector{
		endpoint: cfg.OEmbedURL,
		client:   &http.Client{Timeout: cfg.Timeout},
		logger:   logger.With().Str("component", "video_inspector").Logger(),
	}
}

// Inspect returns the video's summary. Missing fields are reported as "N/A".
func (v *VideoInspector) Inspect(ctx context.Context, link string) (VideoSummary, error) {
	parsed, err := url.Parse(strings.TrimSpace(link))
	if err != nil || parsed.Host == "" {
		return VideoSummary{}, ErrInvalidVideoLink
	}

	query := url.Values{}
	query.Set("url", parsed.String())
	query.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return VideoSummary{}, fmt.Errorf("build oembed request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return VideoSummary{}, fmt.Errorf("fetch video metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return VideoSummary{}, fmt.Errorf("could not process video link: status %d", resp.StatusCode)
	}

	var payload struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		AuthorName  string `json:"author_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return VideoSummary{}, fmt.Errorf("decode video metadata: %w", err)
	}

	summary := VideoSummary{
		Title:       strings.TrimSpace(payload.Title),
		Description: strings.TrimSpace(payload.Description),
	}
	if summary.Description == "" && payload.AuthorName != "" {
		summary.Description = "Published by " + strings.TrimSpace(payload.AuthorName)
	}
	if summary.Title == "" {
		summary.Title = notAvailable
	}
	if summary.Description == "" {
		summary.Description = notAvailable
	}

	v.logger.Debug().Str("video", parsed.Host).Str("title", summary.Title).Msg("video inspected")
	return summary, nil
}
