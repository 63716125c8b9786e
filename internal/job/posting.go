package job

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Source tags for the configured adapters. Posting IDs are prefixed with the
// tag so identifiers never collide across sources.
const (
	SourceRemotive = "remotive"
	SourceDice     = "dice"
	SourceIndeed   = "indeed"
	SourceLinkedIn = "linkedin"
)

// Posting is a normalized job listing. Adapters produce conforming records at
// the boundary; after ranking the record is not mutated anymore.
type Posting struct {
	ID               string              `json:"id,omitempty"`
	Source           string              `json:"source,omitempty"`
	Title            string              `json:"title,omitempty"`
	Company          string              `json:"company,omitempty"`
	Location         string              `json:"location,omitempty"`
	URL              string              `json:"url,omitempty"`
	Description      string              `json:"description,omitempty"`
	RelevanceScore   int                 `json:"relevance_score"`
	ResumeMatchScore int                 `json:"resume_match_score,omitempty"`
	Notification     *NotificationResult `json:"notification_sent,omitempty"`

	scored bool
}

// NotificationResult records the outcome of a notification attempt.
type NotificationResult struct {
	SMSSent  bool   `json:"sms_sent"`
	CallMade bool   `json:"call_made"`
	Reason   string `json:"reason,omitempty"`
}

// MarkScored flags the posting as already carrying a relevance score, so the
// merge step does not score it a second time.
func (p *Posting) MarkScored() {
	p.scored = true
}

func (p *Posting) Scored() bool {
	return p.scored
}

// Key returns the dedup identity: lower-cased, trimmed title and company.
// Two postings with the same key are duplicates regardless of source.
func (p *Posting) Key() string {
	title := strings.ToLower(strings.TrimSpace(p.Title))
	company := strings.ToLower(strings.TrimSpace(p.Company))
	return title + "|" + company
}

// StableID derives a deterministic identifier from the normalized URL, falling
// back to the identity key when the posting has no URL.
func (p *Posting) StableID() string {
	seed := strings.ToLower(strings.TrimSpace(p.URL))
	if seed == "" {
		seed = p.Key()
	}
	sum := sha256.Sum256([]byte(seed))
	return fmt.Sprintf("%x", sum[:6])
}

// PrefixID guarantees the ID carries the source tag.
func (p *Posting) PrefixID() {
	if p.ID == "" {
		p.ID = p.StableID()
	}
	prefix := p.Source + "_"
	if p.Source != "" && !strings.HasPrefix(p.ID, prefix) {
		p.ID = prefix + p.ID
	}
}

type Postings struct {
	Items []*Posting `json:"items"`
}

func (p *Postings) Len() int {
	return len(p.Items)
}

func (p *Postings) Append(other *Postings) {
	if other == nil {
		return
	}
	p.Items = append(p.Items, other.Items...)
}

func (p *Postings) FindByID(id string) *Posting {
	for _, posting := range p.Items {
		if posting.ID == id {
			return posting
		}
	}
	return nil
}

// Dedup removes postings sharing an identity key, keeping the first-seen
// instance. Items order is preserved.
func (p *Postings) Dedup() []string {
	seen := make(map[string]struct{}, len(p.Items))
	kept := make([]*Posting, 0, len(p.Items))
	var dropped []string

	for _, posting := range p.Items {
		if strings.TrimSpace(posting.Title) == "" || strings.TrimSpace(posting.Company) == "" {
			dropped = append(dropped, posting.ID)
			continue
		}
		key := posting.Key()
		if _, ok := seen[key]; ok {
			dropped = append(dropped, posting.ID)
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, posting)
	}

	p.Items = kept
	return dropped
}

// SortByRelevance orders postings by relevance score descending. The sort is
// stable: merge order is preserved among equal scores.
func (p *Postings) SortByRelevance() {
	sort.SliceStable(p.Items, func(i, j int) bool {
		return p.Items[i].RelevanceScore > p.Items[j].RelevanceScore
	})
}

// Truncate caps the list at limit items.
func (p *Postings) Truncate(limit int) {
	if limit >= 0 && len(p.Items) > limit {
		p.Items = p.Items[:limit]
	}
}

func (p *Postings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "postings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ReportBySource groups a compact summary of the postings per source tag.
func (p *Postings) ReportBySource() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, posting := range p.Items {
		entry := map[string]string{
			"title":           posting.Title,
			"company":         posting.Company,
			"location":        posting.Location,
			"url":             posting.URL,
			"relevance_score": fmt.Sprintf("%d", posting.RelevanceScore),
		}
		if posting.ResumeMatchScore > 0 {
			entry["resume_match_score"] = fmt.Sprintf("%d", posting.ResumeMatchScore)
		}
		report[posting.Source] = append(report[posting.Source], entry)
	}
	return report
}
