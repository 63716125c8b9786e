package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/gokulchand98/jobscout/internal/logger"
	"github.com/gokulchand98/jobscout/internal/store"
)

var applicationsCmd = &cobra.Command{
	Use:   "applications",
	Short: "List recorded applications, newest first",
	Run: func(_ *cobra.Command, _ []string) {
		listApplications()
	},
}

func init() {
	rootCmd.AddCommand(applicationsCmd)
}

func listApplications() {
	ctx := context.Background()

	zl, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zl.Fatal("getting a config", zap.Error(err))
	}

	if config.DatabaseURL == "" {
		zl.Fatal("database-url is not configured",
			zap.String("hint", "set DATABASE_URL or the 'database-url' key in the configuration file"),
		)
	}

	applications, err := store.Open(ctx, config.DatabaseURL, zl)
	if err != nil {
		zl.Fatal("opening the application store", zap.Error(err))
	}
	defer applications.Close()

	records, err := applications.List(ctx)
	if err != nil {
		zl.Fatal("listing applications", zap.Error(err))
	}

	if len(records) == 0 {
		fmt.Println("no applications recorded yet")
		return
	}

	for _, r := range records {
		line := fmt.Sprintf("%s  %s / %s", r.AppliedAt.Format(time.RFC3339), r.JobTitle, r.Company)
		if r.Notes != nil && *r.Notes != "" {
			line += "  (" + *r.Notes + ")"
		}
		fmt.Println(line)
	}
}
