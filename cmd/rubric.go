package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/gokulchand98/jobscout/internal/logger"
	"github.com/gokulchand98/jobscout/internal/rubric"
)

var rubricCmd = &cobra.Command{
	Use:   "rubric",
	Short: "Inspect or adjust the scoring rubric",
}

var rubricShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current rubric",
	Run: func(_ *cobra.Command, _ []string) {
		rubricShow()
	},
}

var rubricInstructCmd = &cobra.Command{
	Use:   "instruct <text>...",
	Short: "Record natural-language rubric instructions for manual review",
	Long: "Appends the given text to the instructions audit log next to the rubric file. " +
		"Instructions are never parsed or applied automatically; they are kept verbatim " +
		"for a human to fold into the rubric later.",
	Args: cobra.MinimumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		rubricInstruct(strings.Join(args, " "))
	},
}

func init() {
	rubricCmd.AddCommand(rubricShowCmd)
	rubricCmd.AddCommand(rubricInstructCmd)
	rootCmd.AddCommand(rubricCmd)
}

func rubricShow() {
	logger, config := rubricSetup()

	store := rubric.NewStore(config.RubricFile, logger)
	rub, err := store.Current()
	if err != nil {
		logger.Fatal("loading the rubric", zap.Error(err))
	}

	pretty, err := json.MarshalIndent(rub, "", "  ")
	if err != nil {
		logger.Fatal("rendering the rubric", zap.Error(err))
	}
	fmt.Println(string(pretty))
}

func rubricInstruct(text string) {
	logger, config := rubricSetup()

	store := rubric.NewStore(config.RubricFile, logger)
	if err := store.RecordInstructions(text); err != nil {
		logger.Fatal("recording instructions", zap.Error(err))
	}

	logger.Info("instructions recorded",
		zap.String("path", store.InstructionsPath()),
	)
}

func rubricSetup() (*zap.Logger, *Config) {
	zl, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zl.Fatal("getting a config", zap.Error(err))
	}

	return zl, config
}
