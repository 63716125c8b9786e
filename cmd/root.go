package cmd

import (
	"errors"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "jobscout"
)

type Config struct {
	Search      *SearchConfig `mapstructure:"search"`
	ResumeFile  string        `mapstructure:"resume-file"`
	RubricFile  string        `mapstructure:"rubric-file"`
	UserAgent   string        `mapstructure:"user-agent"`
	DatabaseURL string        `mapstructure:"database-url"`
	Redis       *RedisConfig  `mapstructure:"redis"`
	Notify      *NotifyConfig `mapstructure:"notify"`
	AI          *AIConfig     `mapstructure:"ai"`
}

type SearchConfig struct {
	Query    string `mapstructure:"query"`
	Location string `mapstructure:"location"`
	Limit    int    `mapstructure:"limit"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type NotifyConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Twilio  *TwilioConfig `mapstructure:"twilio"`
}

type TwilioConfig struct {
	AccountSID    string `mapstructure:"account-sid"`
	AuthToken     string `mapstructure:"auth-token"`
	AuthTokenFile string `mapstructure:"auth-token-file"`
	From          string `mapstructure:"from"`
	To            string `mapstructure:"to"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	MaxRetries int    `mapstructure:"max-retries"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobscout is a cli for aggregating job postings from multiple sources, scoring them against your rubric, and tracking applications",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// A local .env supplies secrets during development. Absence is fine.
	_ = godotenv.Load()

	envBindings := map[string]string{
		"database-url":                  "DATABASE_URL",
		"redis.addr":                    "REDIS_ADDR",
		"notify.twilio.account-sid":     "TWILIO_ACCOUNT_SID",
		"notify.twilio.auth-token":      "TWILIO_AUTH_TOKEN",
		"notify.twilio.auth-token-file": "TWILIO_AUTH_TOKEN_FILE",
		"notify.twilio.from":            "TWILIO_FROM_NUMBER",
		"notify.twilio.to":              "TWILIO_TO_NUMBER",
		"ai.gemini.api-key":             "GEMINI_API_KEY",
		"ai.gemini.api-key-file":        "GEMINI_API_KEY_FILE",
	}
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobscout.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
		viper.SetConfigType("yaml")
	}

	// The config file is optional: every key has a usable default or an env
	// binding. A present-but-broken file is still fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}

	if config.Search == nil {
		config.Search = &SearchConfig{}
	}
	if config.Redis == nil {
		config.Redis = &RedisConfig{}
	}
	if config.Notify == nil {
		config.Notify = &NotifyConfig{}
	}
	if config.Notify.Twilio == nil {
		config.Notify.Twilio = &TwilioConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}

	return config, nil
}
