// Package indeed implements an auxiliary source adapter over the public
// Indeed.com search page.
package indeed

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
	baseURL = "https://www.indeed.com"
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

func (c *Client) Name() string { return job.SourceIndeed }

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
	searchURL := fmt.Sprintf("%s/jobs?q=%s&l=%s&limit=%d",
		c.BaseURL, url.QueryEscape(query), url.QueryEscape(location), pageSize)

	doc, err := c.get(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	cards := doc.Find("div.job_seen_beacon")
	if cards.Length() == 0 {
		cards = doc.Find("a[data-jk]")
	}

	postings := &job.Postings{}
	cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
		title := card.Find("h2.jobTitle")
		if title.Length() == 0 {
			title = card.Find("span[title]")
		}
		company := card.Find("span.companyName")
		if company.Length() == 0 {
			company = card.Find(`a[data-testid="company-name"]`)
		}
		loc := card.Find(`div[data-testid="job-location"]`)

		if title.Length() == 0 || company.Length() == 0 {
			return true
		}

		link := card.Find("a[data-jk]")
		if link.Length() == 0 {
			link = title.Find("a")
		}
		href, _ := link.Attr("href")

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

	c.logger.Debug("got postings from indeed", zap.Int("count", postings.Len()))
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
