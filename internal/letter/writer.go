// Package letter builds cover letter prompts from the rubric settings and
// generates prose through an external text generator, with a deterministic
// template fallback.
package letter

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/gokulchand98/jobscout/internal/job"
	"github.com/gokulchand98/jobscout/internal/logger"
	"github.com/gokulchand98/jobscout/internal/rubric"
)

//go:embed prompt.md
var promptTemplate string

const (
	descriptionPromptCap = 1500
	resumePromptCap      = 2000
	maxLogPreview        = 200
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Writer generates cover letters. The generator may be nil, in which case
// every letter comes from the built-in template.
type Writer struct {
	generator contentGenerator
	logger    *zap.Logger
}

func NewWriter(generator contentGenerator, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{generator: generator, logger: log}
}

// Generate returns a cover letter for the posting. Any generator failure
// falls back to the deterministic template; the caller never sees an error.
func (w *Writer) Generate(ctx context.Context, p *job.Posting, resumeText string, cl rubric.CoverLetter) string {
	if w.generator == nil {
		w.logger.Debug("text generator not configured, using template")
		return FallbackLetter(p)
	}

	prompt := BuildPrompt(p, resumeText, cl)
	w.logger.Debug("generate cover letter",
		zap.String("posting_id", p.ID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, maxLogPreview)),
	)

	text, err := w.generator.GenerateContent(ctx, prompt)
	if err != nil {
		w.logger.Warn("cover letter generation failed, falling back to template",
			zap.String("posting_id", p.ID),
			zap.Error(err),
		)
		return FallbackLetter(p)
	}

	return strings.TrimSpace(text)
}

// BuildPrompt renders the embedded template with the posting, resume and the
// rubric's cover letter settings.
func BuildPrompt(p *job.Posting, resumeText string, cl rubric.CoverLetter) string {
	replacer := strings.NewReplacer(
		"{{TONE}}", orDefault(cl.Tone, "professional"),
		"{{LENGTH}}", orDefault(cl.Length, "medium"),
		"{{TITLE}}", p.Title,
		"{{COMPANY}}", p.Company,
		"{{LOCATION}}", p.Location,
		"{{DESCRIPTION}}", capRunes(p.Description, descriptionPromptCap),
		"{{RESUME}}", capRunes(resumeText, resumePromptCap),
		"{{FOCUS_AREAS}}", strings.Join(cl.FocusAreas, ", "),
		"{{CUSTOM_INSTRUCTIONS}}", cl.CustomInstructions,
		"{{SIGNATURE_STYLE}}", orDefault(cl.SignatureStyle, "professional"),
	)
	return strings.TrimSpace(replacer.Replace(promptTemplate))
}

// FallbackLetter is the deterministic template used when no generator is
// available. It always embeds the job title and company.
func FallbackLetter(p *job.Posting) string {
	title := orDefault(p.Title, "Unknown Position")
	company := orDefault(p.Company, "the Company")

	return fmt.Sprintf(
		"Dear Hiring Manager at %s,\n\n"+
			"I am excited to apply for the %s position. With extensive experience in data engineering, cloud platforms, and ML operations, "+
			"I am well-positioned to contribute to your team's technical objectives and drive scalable data solutions.\n\n"+
			"In my previous roles, I have successfully:\n"+
			"- Built and optimized data pipelines processing TB-scale datasets using Apache Spark, Kafka, and cloud-native services\n"+
			"- Implemented MLOps workflows with containerization, CI/CD, and monitoring for production ML systems\n"+
			"- Architected cloud infrastructure on AWS/Azure/GCP using Infrastructure as Code\n\n"+
			"I would welcome the opportunity to discuss how my technical expertise aligns with %s's data and infrastructure needs. "+
			"Thank you for considering my application.\n\n"+
			"Best regards,\n[Your Name]",
		company, title, company,
	)
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func capRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
