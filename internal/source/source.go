// Package source defines the adapter contract for job posting providers and
// shared boundary normalization helpers.
package source

import (
	"context"
	"strings"
	"unicode"

	"github.com/gokulchand98/jobscout/internal/job"
)

// descriptionCap bounds the free-text description carried through the
// pipeline.
const descriptionCap = 500

// Adapter produces normalized postings for a query. Implementations own their
// HTTP client with a bounded timeout; a failing adapter reports the error and
// the caller treats its contribution as empty.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, query, location string, limit int) (*job.Postings, error)
}

// ScoreFunc lets the primary adapter compute relevance at fetch time.
type ScoreFunc func(p *job.Posting) int

// CleanText collapses whitespace runs and caps the result so scraped blobs do
// not balloon the posting record.
func CleanText(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}

	out := b.String()
	runes := []rune(out)
	if len(runes) > descriptionCap {
		out = string(runes[:descriptionCap])
	}
	return out
}
