// Package policy computes auto-apply eligibility and notification tiers.
// It only produces decisions; delivery side effects belong to the notifier.
package policy

import (
	"strings"

	"github.com/gokulchand98/jobscout/internal/job"
	"github.com/gokulchand98/jobscout/internal/rubric"
)

// Tier is the notification escalation level for a posting.
type Tier string

const (
	TierNone Tier = "none"
	TierSMS  Tier = "sms"
	TierCall Tier = "call"
)

// Default process-wide notification thresholds.
const (
	DefaultSMSThreshold  = 15
	DefaultCallThreshold = 30
)

type Thresholds struct {
	SMS  int
	Call int
}

func DefaultThresholds() Thresholds {
	return Thresholds{SMS: DefaultSMSThreshold, Call: DefaultCallThreshold}
}

type Decision struct {
	AutoApply bool
	Tier      Tier
}

// Decide evaluates a scored posting against the rubric's application settings
// and the notification thresholds. A call always takes precedence over an
// SMS; a posting never gets both.
func Decide(p *job.Posting, score int, r *rubric.Rubric, t Thresholds) Decision {
	return Decision{
		AutoApply: autoApplyEligible(p, score, r),
		Tier:      tier(p, score, t),
	}
}

func autoApplyEligible(p *job.Posting, score int, r *rubric.Rubric) bool {
	app := r.Application
	if score < app.AutoApplyScoreThreshold {
		return false
	}

	text := strings.ToLower(p.Title + " " + p.Description)
	for _, word := range app.BlacklistKeywords {
		if word == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(word)) {
			return false
		}
	}

	company := strings.ToLower(p.Company)
	for _, skip := range app.SkipCompanies {
		if skip == "" {
			continue
		}
		if strings.Contains(company, strings.ToLower(skip)) {
			return false
		}
	}

	if len(app.RequiredKeywords) > 0 {
		found := false
		for _, word := range app.RequiredKeywords {
			if strings.Contains(text, strings.ToLower(word)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

func tier(p *job.Posting, score int, t Thresholds) Tier {
	if p.ResumeMatchScore >= t.Call || score >= t.Call {
		return TierCall
	}
	if score >= t.SMS {
		return TierSMS
	}
	return TierNone
}
