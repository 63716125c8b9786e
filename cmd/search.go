package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/gokulchand98/jobscout/internal/aggregate"
	"github.com/gokulchand98/jobscout/internal/cache"
	"github.com/gokulchand98/jobscout/internal/job"
	"github.com/gokulchand98/jobscout/internal/letter"
	"github.com/gokulchand98/jobscout/internal/logger"
	"github.com/gokulchand98/jobscout/internal/notify"
	"github.com/gokulchand98/jobscout/internal/policy"
	"github.com/gokulchand98/jobscout/internal/rubric"
	"github.com/gokulchand98/jobscout/internal/scoring"
	"github.com/gokulchand98/jobscout/internal/secrets"
	"github.com/gokulchand98/jobscout/internal/source"
	"github.com/gokulchand98/jobscout/internal/source/dice"
	"github.com/gokulchand98/jobscout/internal/source/indeed"
	"github.com/gokulchand98/jobscout/internal/source/linkedin"
	"github.com/gokulchand98/jobscout/internal/source/remotive"
	"github.com/gokulchand98/jobscout/internal/store"
)

const (
	PromptExit            = "Exit"
	PromptRecordApply     = "Record an application"
	PromptCoverLetter     = "Generate a cover letter"
	PromptReportBySource  = "Report by source"
	PromptPostingsToFile  = "Dump postings to file"
	PromptBack            = "back"

	defaultSearchLimit = 20
)

var errExit = errors.New("exit requested")

var searchPrompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptRecordApply, PromptCoverLetter, PromptReportBySource, PromptPostingsToFile, PromptExit},
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search all sources, rank the postings, and work the results",
	Run: func(cmd *cobra.Command, _ []string) {
		search(cmd)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringP("query", "q", "", "search query; defaults to the built-in priority domains")
	searchCmd.Flags().StringP("location", "l", "", "location filter for sources that support one")
	searchCmd.Flags().IntP("limit", "n", 0, fmt.Sprintf("maximum postings to return (default %d)", defaultSearchLimit))
	searchCmd.Flags().Bool("notify", false, "send sms/call alerts for strong matches")
	searchCmd.Flags().Bool("report-only", false, "print the ranked report and exit without the interactive prompt")

	viper.BindPFlag("search.query", searchCmd.Flags().Lookup("query"))
	viper.BindPFlag("search.location", searchCmd.Flags().Lookup("location"))
	viper.BindPFlag("search.limit", searchCmd.Flags().Lookup("limit"))
	viper.BindPFlag("notify.enabled", searchCmd.Flags().Lookup("notify"))
}

// search is the main command for the cli.
func search(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting jobscout", zap.String("version", version))

	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	rubrics := rubric.NewStore(config.RubricFile, logger)
	rub, err := rubrics.Current()
	if err != nil {
		logger.Warn("rubric unavailable, using built-in defaults", zap.Error(err))
		rub = rubric.Default()
	}

	resumeText := loadResume(config.ResumeFile, logger)

	engine, err := aggregate.New(aggregate.Deps{
		Sources:       buildSources(config, rub, logger),
		Rubrics:       rubrics,
		Notifications: buildNotifications(config, logger),
		Seen:          buildSeenStore(config, logger),
		Thresholds:    policy.DefaultThresholds(),
		Logger:        logger,
	})
	if err != nil {
		logger.Fatal("building the aggregation engine", zap.Error(err))
	}

	limit := config.Search.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	logger.Info("starting the search",
		zap.String("query", config.Search.Query),
		zap.String("location", config.Search.Location),
		zap.Int("limit", limit),
	)

	postings, err := engine.Search(ctx, aggregate.Request{
		Query:      config.Search.Query,
		Location:   config.Search.Location,
		Limit:      limit,
		ResumeText: resumeText,
		Notify:     config.Notify.Enabled,
	})
	if err != nil {
		logger.Fatal("search failed", zap.Error(err))
	}

	if postings.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no postings found"))
		return
	}

	printReport(os.Stdout, postings, rub)

	if cmd.Flag("report-only").Value.String() == "true" {
		return
	}

	deps := &actionDeps{
		config:     config,
		rubric:     rub,
		resumeText: resumeText,
		logger:     logger,
	}

	for {
		_, action, err := searchPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(ctx, action, postings, deps); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

type actionDeps struct {
	config     *Config
	rubric     *rubric.Rubric
	resumeText string
	logger     *zap.Logger
}

func handleAction(ctx context.Context, action string, postings *job.Postings, deps *actionDeps) error {
	switch action {
	case PromptExit:
		deps.logger.Info("exiting", zap.String("reason", "done"))
		return errExit
	case PromptRecordApply:
		return recordApplication(ctx, postings, deps)
	case PromptCoverLetter:
		return coverLetter(ctx, postings, deps)
	case PromptReportBySource:
		pretty, _ := json.MarshalIndent(postings.ReportBySource(), "", "  ")
		fmt.Println(string(pretty))
		return nil
	case PromptPostingsToFile:
		filename, err := postings.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		deps.logger.Info("dumped postings to file", zap.String("filename", filename))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// recordApplication lets the user pick a posting and writes an immutable
// application record.
func recordApplication(ctx context.Context, postings *job.Postings, deps *actionDeps) error {
	p, err := selectPosting(postings)
	if err != nil || p == nil {
		return err
	}

	if deps.config.DatabaseURL == "" {
		return errors.New("database-url is not configured (set DATABASE_URL or the 'database-url' key)")
	}

	applications, err := store.Open(ctx, deps.config.DatabaseURL, deps.logger)
	if err != nil {
		return fmt.Errorf("opening the application store: %w", err)
	}
	defer applications.Close()

	decision := policy.Decide(p, p.RelevanceScore, deps.rubric, policy.DefaultThresholds())
	notes := fmt.Sprintf("relevance=%d resume_match=%d auto_apply_eligible=%t", p.RelevanceScore, p.ResumeMatchScore, decision.AutoApply)

	id, err := applications.Add(ctx, &p.ID, p.Title, p.Company, &notes)
	if err != nil {
		return fmt.Errorf("recording the application: %w", err)
	}

	deps.logger.Info("application recorded",
		zap.String("application_id", id),
		zap.String("posting_id", p.ID),
		zap.String("title", p.Title),
	)
	return nil
}

func coverLetter(ctx context.Context, postings *job.Postings, deps *actionDeps) error {
	p, err := selectPosting(postings)
	if err != nil || p == nil {
		return err
	}

	writer, err := buildLetterWriter(ctx, deps.config, deps.logger)
	if err != nil {
		return err
	}

	text := writer.Generate(ctx, p, deps.resumeText, deps.rubric.CoverLetter)
	fmt.Println(text)
	return nil
}

func selectPosting(postings *job.Postings) (*job.Posting, error) {
	items := make([]string, 0, postings.Len()+1)
	for _, p := range postings.Items {
		items = append(items, fmt.Sprintf("%s %s / %s / score %d", p.ID, p.Title, p.Company, p.RelevanceScore))
	}

	postingPrompt := promptui.Select{
		Label: "Choose a posting and press ENTER",
		Items: append(items, PromptBack),
	}

	_, selected, err := postingPrompt.Run()
	if err != nil {
		return nil, err
	}
	if selected == PromptBack {
		return nil, nil
	}

	id := strings.Split(selected, " ")[0]
	p := postings.FindByID(id)
	if p == nil {
		return nil, fmt.Errorf("there is no such posting id %s", id)
	}
	return p, nil
}

func buildSources(config *Config, rub *rubric.Rubric, logger *zap.Logger) []source.Adapter {
	primary := remotive.New(logger, func(p *job.Posting) int {
		return scoring.Score(p, rub)
	})
	if config.UserAgent != "" {
		primary.UserAgent = config.UserAgent
	}

	return []source.Adapter{
		primary,
		dice.New(logger),
		indeed.New(logger),
		linkedin.New(logger),
	}
}

func buildSeenStore(config *Config, logger *zap.Logger) *cache.SeenStore {
	if config.Redis.Addr == "" {
		return cache.NewSeenStore(nil, logger)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})
	return cache.NewSeenStore(client, logger)
}

func buildNotifications(config *Config, logger *zap.Logger) *notify.Manager {
	if !config.Notify.Enabled {
		return nil
	}

	tw := config.Notify.Twilio
	if tw.AccountSID == "" || tw.From == "" || tw.To == "" {
		logger.Warn("notifications enabled but twilio is not fully configured, alerts disabled",
			zap.String("hint", "set TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN, TWILIO_FROM_NUMBER and TWILIO_TO_NUMBER"),
		)
		return nil
	}

	authToken, err := secrets.Load(secrets.Source{
		Name:  "twilio auth token",
		Value: tw.AuthToken,
		File:  tw.AuthTokenFile,
	})
	if err != nil {
		logger.Warn("loading twilio auth token, alerts disabled", zap.Error(err))
		return nil
	}

	return notify.NewManager(notify.NewTwilio(tw.AccountSID, authToken, tw.From, tw.To, logger), logger)
}

func buildLetterWriter(ctx context.Context, config *Config, logger *zap.Logger) (*letter.Writer, error) {
	if !config.AI.Enabled {
		return letter.NewWriter(nil, logger), nil
	}

	provider := strings.TrimSpace(strings.ToLower(config.AI.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", config.AI.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: config.AI.Gemini.APIKey,
		File:  config.AI.Gemini.APIKeyFile,
	})
	if err != nil {
		logger.Warn("loading gemini api key, falling back to the template letter", zap.Error(err))
		return letter.NewWriter(nil, logger), nil
	}

	generator, err := letter.NewGeminiGenerator(ctx, apiKey, config.AI.Gemini.Model, config.AI.Gemini.MaxRetries, logger)
	if err != nil {
		logger.Warn("building the gemini generator, falling back to the template letter", zap.Error(err))
		return letter.NewWriter(nil, logger), nil
	}

	return letter.NewWriter(generator, logger), nil
}

func loadResume(path string, logger *zap.Logger) string {
	if path == "" {
		return ""
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("reading resume file, resume matching disabled", zap.Error(err))
		return ""
	}
	return string(data)
}

// printReport renders the ranked listing. "*" marks postings at or above the
// auto-apply threshold, "-" marks postings under the rubric's minimum score.
func printReport(w io.Writer, postings *job.Postings, rub *rubric.Rubric) {
	fmt.Fprintf(w, "\n%d postings, ranked by relevance:\n\n", postings.Len())
	for i, p := range postings.Items {
		marker := " "
		switch {
		case p.RelevanceScore >= rub.Application.AutoApplyScoreThreshold:
			marker = "*"
		case p.RelevanceScore < rub.JobScoring.MinScoreThreshold:
			marker = "-"
		}
		fmt.Fprintf(w, "%s %2d. [%3d] %s / %s (%s)\n", marker, i+1, p.RelevanceScore, p.Title, p.Company, p.Source)
		if p.ResumeMatchScore > 0 {
			fmt.Fprintf(w, "         resume match %d\n", p.ResumeMatchScore)
		}
		fmt.Fprintf(w, "         %s\n", p.URL)
	}
	fmt.Fprintln(w)
}
