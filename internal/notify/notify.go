// Package notify delivers job match alerts through an external telephony
// provider. Delivery is best-effort: failures are recorded on the posting,
// never surfaced to the search caller.
package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gokulchand98/jobscout/internal/job"
	"github.com/gokulchand98/jobscout/internal/logger"
	"github.com/gokulchand98/jobscout/internal/policy"
)

// Notifier is the external telephony collaborator.
type Notifier interface {
	SendSMS(ctx context.Context, text string) error
	MakeCall(ctx context.Context, text string) error
}

// Manager turns a policy decision into a delivery attempt and records the
// outcome.
type Manager struct {
	notifier Notifier
	logger   *zap.Logger
}

func NewManager(notifier Notifier, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{notifier: notifier, logger: log}
}

// NotifyMatch delivers the alert matching the decided tier. The returned
// result is always non-nil and safe to attach to the posting.
func (m *Manager) NotifyMatch(ctx context.Context, p *job.Posting, tier policy.Tier) *job.NotificationResult {
	result := &job.NotificationResult{Reason: "no notification threshold met"}

	if m.notifier == nil || tier == policy.TierNone {
		return result
	}

	switch tier {
	case policy.TierCall:
		result.Reason = fmt.Sprintf("high match (relevance %d, resume %d)", p.RelevanceScore, p.ResumeMatchScore)
		if err := m.notifier.MakeCall(ctx, callScript(p)); err != nil {
			m.logger.Warn("voice call failed",
				zap.String("posting_id", p.ID),
				zap.Error(err),
			)
			return result
		}
		result.CallMade = true
	case policy.TierSMS:
		result.Reason = fmt.Sprintf("relevance score above sms threshold (%d)", p.RelevanceScore)
		if err := m.notifier.SendSMS(ctx, smsText(p)); err != nil {
			m.logger.Warn("sms failed",
				zap.String("posting_id", p.ID),
				zap.Error(err),
			)
			return result
		}
		result.SMSSent = true
	}

	m.logger.Info("notification sent",
		zap.String("posting_id", p.ID),
		zap.String("tier", string(tier)),
	)
	return result
}

func smsText(p *job.Posting) string {
	return fmt.Sprintf(
		"Job match alert!\n%s\n%s\n%s\nScore: %d\n%s",
		p.Title, p.Company, p.Location, p.RelevanceScore, logger.TruncateForLog(p.URL, 60),
	)
}

func callScript(p *job.Posting) string {
	resume := "not calculated"
	if p.ResumeMatchScore > 0 {
		resume = fmt.Sprintf("%d", p.ResumeMatchScore)
	}
	return fmt.Sprintf(
		"High priority job match found. %s at %s. Job score: %d. Resume match: %s. Check your jobscout report for details.",
		p.Title, p.Company, p.RelevanceScore, resume,
	)
}
