// Package remotive implements the primary, high-trust source adapter backed
// by the Remotive public API.
package remotive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/gokulchand98/jobscout/internal/job"
	"github.com/gokulchand98/jobscout/internal/source"
)

const (
	apiURL    = "https://remotive.com/api/remote-jobs"
	userAgent = "jobscout/1.0"
)

type Client struct {
	APIURL     string
	HTTPClient *http.Client
	UserAgent  string

	logger  *zap.Logger
	scoreFn source.ScoreFunc
}

// New creates the Remotive adapter. When scoreFn is non-nil every fetched
// posting is scored immediately and marked, so the merge step skips it.
func New(logger *zap.Logger, scoreFn source.ScoreFunc) *Client {
	return &Client{
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		UserAgent: userAgent,
		logger:    logger,
		scoreFn:   scoreFn,
	}
}

func (c *Client) Name() string { return job.SourceRemotive }

// rawJob mirrors the wire shape of a Remotive listing. Items arrive as loose
// maps and are decoded through mapstructure at the boundary.
type rawJob struct {
	ID          int64  `mapstructure:"id"`
	Title       string `mapstructure:"title"`
	CompanyName string `mapstructure:"company_name"`
	Location    string `mapstructure:"candidate_required_location"`
	URL         string `mapstructure:"url"`
	Description string `mapstructure:"description"`
}

func (c *Client) Fetch(ctx context.Context, query, _ string, limit int) (*job.Postings, error) {
	if limit <= 0 {
		return &job.Postings{}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")

	q := url.Values{}
	q.Set("search", query)
	q.Set("limit", strconv.Itoa(limit))
	req.URL.RawQuery = q.Encode()

	c.logger.Debug("make request", zap.String("url", req.URL.String()))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	var payload struct {
		Jobs []map[string]any `json:"jobs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	var raw []rawJob
	if err := mapstructure.Decode(payload.Jobs, &raw); err != nil {
		return nil, fmt.Errorf("decode remotive items: %w", err)
	}

	postings := &job.Postings{Items: make([]*job.Posting, 0, len(raw))}
	for _, item := range raw {
		p := &job.Posting{
			ID:          strconv.FormatInt(item.ID, 10),
			Source:      c.Name(),
			Title:       source.CleanText(item.Title),
			Company:     source.CleanText(item.CompanyName),
			Location:    source.CleanText(item.Location),
			URL:         item.URL,
			Description: source.CleanText(item.Description),
		}
		p.PrefixID()

		if c.scoreFn != nil {
			p.RelevanceScore = c.scoreFn(p)
			p.MarkScored()
		}

		postings.Items = append(postings.Items, p)
		if postings.Len() >= limit {
			break
		}
	}

	c.logger.Debug("got postings from remotive", zap.Int("count", postings.Len()))
	return postings, nil
}
