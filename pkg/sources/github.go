package sources

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
)

const (
	defaultGitHubAPIURL = "https://api.github.com"
	maxReadmeBytes      = 20000
)

// ErrInvalidRepositoryLink indicates the link does not point at a GitHub repository.
var ErrInvalidRepositoryLink = errors.New("invalid github repository link")

// ErrReadmeNotText indicates the README payload is not a text document.
var ErrReadmeNotText = errors.New("readme is not a text document")

// GitHubConfig configures the README reader.
type GitHubConfig struct {
	APIURL  string
	Token   string
	Timeout time.Duration
}

// GitHubReader fetches README.md from public repositories.
type GitHubReader struct {
	apiURL string
	token  string
	client *http.Client
	logger zerolog.Logger
}

// NewGitHubReader constructs a reader.
func NewGitHubReader(cfg GitHubConfig, logger zerolog.Logger) *GitHubReader {
	if cfg.APIURL == "" {
		cfg.APIURL = defaultGitHubAPIURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &GitHubReader{
		apiURL: strings.TrimRight(cfg.APIURL, "/"),
		token:  cfg.Token,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.With().Str("component", "github_reader").Logger(),
	}
}

// RepositoryPath returns "owner/repo" for a GitHub repository link.
func RepositoryPath(link string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(link))
	if err != nil || parsed.Host == "" {
		return "", ErrInvalidRepositoryLink
	}

	segments := make([]string, 0, 2)
	for _, part := range strings.Split(parsed.Path, "/") {
		if part != "" {
			segments = append(segments, part)
		}
	}
	if len(segments) < 2 {
		return "", ErrInvalidRepositoryLink
	}

	return segments[0] + "/" + strings.TrimSuffix(segments[1], ".git"), nil
}

// ReadREADME returns the decoded README.md of the repository.
func (r *GitHubReader) ReadREADME(ctx context.Context, link string) (string, error) {
	repo, err := RepositoryPath(link)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/repos/%s/contents/README.md", r.apiURL, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build readme request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch readme: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("fetch readme for %s: status %d: %s", repo, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode readme response: %w", err)
	}

	data := []byte(payload.Content)
	if payload.Encoding == "" || payload.Encoding == "base64" {
		cleaned := strings.NewReplacer("\n", "", "\r", "").Replace(payload.Content)
		data, err = base64.StdEncoding.DecodeString(cleaned)
		if err != nil {
			return "", fmt.Errorf("decode readme content: %w", err)
		}
	}

	if mime := mimetype.Detect(data); !strings.HasPrefix(mime.String(), "text/") {
		r.logger.Warn().Str("repo", repo).Str("mime", mime.String()).Msg("readme rejected")
		return "", ErrReadmeNotText
	}

	if len(data) > maxReadmeBytes {
		data = data[:maxReadmeBytes]
	}

	return string(data), nil
}
