package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/gokulchand98/jobscout/internal/job"
	"github.com/gokulchand98/jobscout/internal/logger"
	"github.com/gokulchand98/jobscout/internal/rubric"
)

var letterCmd = &cobra.Command{
	Use:   "letter <postings-file> <posting-id>",
	Short: "Generate a cover letter for a posting from a dumped postings file",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		generateLetter(cmd, args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(letterCmd)
}

func generateLetter(_ *cobra.Command, postingsFile, postingID string) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	data, err := os.ReadFile(postingsFile)
	if err != nil {
		logger.Fatal("reading the postings file", zap.Error(err))
	}

	var postings job.Postings
	if err := json.Unmarshal(data, &postings); err != nil {
		logger.Fatal("parsing the postings file", zap.Error(err))
	}

	p := postings.FindByID(postingID)
	if p == nil {
		logger.Fatal("posting not found in file",
			zap.String("posting_id", postingID),
			zap.String("filename", postingsFile),
		)
	}

	rubrics := rubric.NewStore(config.RubricFile, logger)
	rub, err := rubrics.Current()
	if err != nil {
		logger.Warn("rubric unavailable, using built-in defaults", zap.Error(err))
		rub = rubric.Default()
	}

	writer, err := buildLetterWriter(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the letter writer", zap.Error(err))
	}

	fmt.Println(writer.Generate(ctx, p, loadResume(config.ResumeFile, logger), rub.CoverLetter))
}
