// Package linkedin implements an auxiliary source adapter over the public
// LinkedIn job search page.
package linkedin

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
	baseURL = "https://www.linkedin.com"
	// LinkedIn rate-limits aggressively, so requests are spaced wider than
	// for the other public sites.
	politeDelay = 3 * time.Second
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

func (c *Client) Name() string { return job.SourceLinkedIn }

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

	searchURL := fmt.Sprintf("%s/jobs/search?keywords=%s&location=%s&f_TPR=r86400",
		c.BaseURL, url.QueryEscape(query), url.QueryEscape(location))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
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

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	cards := doc.Find("div.base-card")
	if cards.Length() == 0 {
		cards = doc.Find("li.result-card")
	}

	postings := &job.Postings{}
	cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
		title := firstOf(card, "h3.base-search-card__title", "h4.result-card__title")
		company := firstOf(card, "h4.base-search-card__subtitle", "h3.result-card__subtitle")
		loc := firstOf(card, "span.job-search-card__location", "span.result-card__location")

		if title.Length() == 0 || company.Length() == 0 {
			return true
		}

		link := card.Find("a.base-card__full-link")
		if link.Length() == 0 {
			link = card.Find("a[href]")
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

	c.logger.Debug("got postings from linkedin", zap.Int("count", postings.Len()))
	return postings, nil
}

func firstOf(card *goquery.Selection, selectors ...string) *goquery.Selection {
	found := card.Find(selectors[0])
	for _, sel := range selectors[1:] {
		if found.Length() > 0 {
			return found
		}
		found = card.Find(sel)
	}
	return found
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
