// Package dice implements an auxiliary source adapter over the public
// Dice.com search page.
package dice

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/gokulchand98/jobscout/internal/job"
	"github.com/gokulchand98/jobscout/internal/source"
	"github.com/gokulchand98/jobscout/internal/utils"
)

const (
	baseURL = "https://www.dice.com"
	// politeDelay spaces out requests against the public site.
	politeDelay = 2 * time.Second
	userAgent   = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Delay      time.Duration

	logger *zap.Logger
}

func New(logger *zap.Logger) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		Delay:  politeDelay,
		logger: logger,
	}
}

func (c *Client) Name() string { return job.SourceDice }

func (c *Client) Fetch(ctx context.Context, query, location string, limit int) (*job.Postings, error) {
	if limit <= 0 {
		return &job.Postings{}, nil
	}
	if location == "" {
		location = "United States"
	}

	if err := utils.WaitFor(ctx, c.Delay); err != nil {
		return nil, err
	}

	pageSize := limit
	if pageSize > 50 {
		pageSize = 50
	}
	searchURL := fmt.Sprintf("%s/jobs?q=%s&location=%s&radius=30&radiusUnit=mi&page=1&pageSize=%d",
		c.BaseURL, url.QueryEscape(query), url.QueryEscape(location), pageSize)

	doc, err := c.get(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	postings := &job.Postings{}
	doc.Find("div.card").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		title := card.Find(`a[data-cy="card-title-link"]`)
		company := card.Find(`a[data-cy="card-company"]`)
		loc := card.Find(`li[data-cy="card-location"]`)

		if title.Length() == 0 || company.Length() == 0 {
			return true
		}

		href, _ := title.Attr("href")
		p := &job.Posting{
			Source:      c.Name(),
			Title:       source.CleanText(title.Text()),
			Company:     source.CleanText(company.Text()),
			Location:    source.CleanText(loc.Text()),
			URL:         resolveURL(c.BaseURL, href),
			Description: source.CleanText(card.Text()),
		}
		if p.Location == "" {
			p.Location = "Remote"
		}
		p.PrefixID()

		postings.Items = append(postings.Items, p)
		return postings.Len() < limit
	})

	c.logger.Debug("got postings from dice", zap.Int("count", postings.Len()))
	return postings, nil
}

func (c *Client) get(ctx context.Context, rawURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	c.logger.Debug("make request", zap.String("url", req.URL.String()))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}

func resolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return base + "/" + strings.TrimPrefix(href, "/")
}
