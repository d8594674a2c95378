package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"taskmind/version"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds taskmind runtime configuration.
type Config struct {
	LogLevel    string `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFilePath string `env:"LOG_FILE" envDefault:"./taskmind.log"`
	LogBackups  int    `env:"LOG_BACKUPS" envDefault:"3"`
	Port        int    `env:"PORT" envDefault:"8000"`
	StaticDir   string `env:"STATIC_DIR"`

	DatabaseURL          string `env:"DATABASE_URL" envDefault:"feedback.db"`
	SQLitePragmasEnabled bool   `env:"SQLITE_PRAGMAS_ENABLED" envDefault:"true"`
	SQLiteBusyTimeoutMS  int    `env:"SQLITE_BUSY_TIMEOUT_MS" envDefault:"5000"`
	SQLiteJournalMode    string `env:"SQLITE_JOURNAL_MODE" envDefault:"WAL"`
	SQLiteSynchronous    string `env:"SQLITE_SYNCHRONOUS" envDefault:"NORMAL"`
	SQLiteMaxOpenConns   int    `env:"SQLITE_MAX_OPEN_CONNS" envDefault:"1"`
	SQLiteMaxIdleConns   int    `env:"SQLITE_MAX_IDLE_CONNS" envDefault:"1"`
	SQLiteConnMaxIdleSec int    `env:"SQLITE_CONN_MAX_IDLE_SECONDS" envDefault:"300"`
	SQLiteConnMaxLifeSec int    `env:"SQLITE_CONN_MAX_LIFETIME_SECONDS" envDefault:"0"`
	SQLiteSlowQueryMS    int    `env:"SQLITE_SLOW_QUERY_MS" envDefault:"500"`

	// Language model
	LLMProvider       string `env:"LLM_PROVIDER" envDefault:"mock"`
	LLMModel          string `env:"LLM_MODEL" envDefault:"google/gemma-2-9b"`
	LLMTimeoutSeconds int    `env:"LLM_TIMEOUT_SECONDS" envDefault:"60"`
	LLMMaxTokens      int    `env:"LLM_MAX_TOKENS" envDefault:"512"`
	OpenAIAPIKey      string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL     string `env:"OPENAI_BASE_URL"`
	AnthropicAPIKey   string `env:"ANTHROPIC_API_KEY"`

	// Vector search
	VectorBackend   string `env:"VECTOR_BACKEND" envDefault:"weaviate"`
	VectorURL       string `env:"VECTOR_URL" envDefault:"http://localhost:8080"`
	VectorClass     string `env:"VECTOR_CLASS" envDefault:"Knowledge"`
	VectorTimeoutMS int    `env:"VECTOR_TIMEOUT_MS" envDefault:"2000"`

	// News crawler
	CrawlSourcesFile  string `env:"CRAWL_SOURCES_FILE"`
	CrawlSchedule     string `env:"CRAWL_SCHEDULE"`
	CrawlUserAgent    string `env:"CRAWL_USER_AGENT"`
	CrawlMaxBodyBytes int    `env:"CRAWL_MAX_BODY_BYTES" envDefault:"2097152"`
	CrawlTimeoutSec   int    `env:"CRAWL_TIMEOUT_SECONDS" envDefault:"20"`

	// Feedback-driven fine-tuning
	FineTuneSchedule    string `env:"FINETUNE_SCHEDULE"`
	FineTuneMinFeedback int    `env:"FINETUNE_MIN_FEEDBACK" envDefault:"10"`
	FineTuneOutputDir   string `env:"FINETUNE_OUTPUT_DIR" envDefault:"./fine_tuned_model"`
	FineTuneBaseModel   string `env:"FINETUNE_BASE_MODEL" envDefault:"google/gemma-2-9b"`
	FineTuneEpochs      int    `env:"FINETUNE_EPOCHS" envDefault:"3"`
	FineTunePollSeconds int    `env:"FINETUNE_POLL_SECONDS" envDefault:"30"`

	ErrorLogCapacity int `env:"ERROR_LOG_CAPACITY" envDefault:"100"`

	// Run modes
	CLIMode      bool   `env:"CLI_MODE" envDefault:"false"`
	CLIServer    string `env:"CLI_SERVER" envDefault:"http://localhost:8000"`
	FineTuneOnce bool
	CrawlOnce    bool
}

// Settings is the global configuration instance populated from environment variables and flags.
var Settings *Config

// init loads an optional .env file and fills Settings from the environment.
// A malformed variable is logged and the remaining fields keep their defaults.
func init() {
	_ = godotenv.Load()

	Settings = Default()
	if err := env.Parse(Settings); err != nil {
		log.Printf("config: %v", err)
	}
}

// Default returns a Config populated only from struct tag defaults.
func Default() *Config {
	cfg := &Config{}
	_ = env.Parse(cfg, env.Options{Environment: map[string]string{}})
	return cfg
}

// ParseFlags parses command-line flags and applies overrides to Settings.
// --help prints usage and exits; --version prints build info and exits.
func ParseFlags() {
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "taskmind - task execution and feedback server\n\n")
		fmt.Fprintf(out, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintln(out, "Options:")
		flag.PrintDefaults()
		fmt.Fprintln(out, "\nEnvironment variables (also read from .env):")
		fmt.Fprintln(out, "  PORT                     HTTP server port (default 8000)")
		fmt.Fprintln(out, "  LOG_LEVEL                Log level (DEBUG, INFO, WARN, ERROR)")
		fmt.Fprintln(out, "  LOG_FILE                 Log file path, '-' for stderr")
		fmt.Fprintln(out, "  LOG_BACKUPS              Rotated log files to keep (default 3)")
		fmt.Fprintln(out, "  SQLITE_SLOW_QUERY_MS     Log statements slower than this, 0 disables (default 500)")
		fmt.Fprintln(out, "  DATABASE_URL             SQLite database path (default feedback.db)")
		fmt.Fprintln(out, "  STATIC_DIR               Serve the front-end from disk instead of the embedded copy")
		fmt.Fprintln(out, "  LLM_PROVIDER             mock, openai or anthropic (default mock)")
		fmt.Fprintln(out, "  LLM_MODEL                Model name passed to the provider")
		fmt.Fprintln(out, "  OPENAI_API_KEY           OpenAI API key")
		fmt.Fprintln(out, "  OPENAI_BASE_URL          OpenAI-compatible base URL")
		fmt.Fprintln(out, "  ANTHROPIC_API_KEY        Anthropic API key")
		fmt.Fprintln(out, "  VECTOR_BACKEND           none, weaviate or local (default weaviate)")
		fmt.Fprintln(out, "  VECTOR_URL               Weaviate base URL (default http://localhost:8080)")
		fmt.Fprintln(out, "  VECTOR_CLASS             Weaviate class name (default Knowledge)")
		fmt.Fprintln(out, "  CRAWL_SOURCES_FILE       YAML file listing news sources")
		fmt.Fprintln(out, "  CRAWL_SCHEDULE           Cron expression for periodic crawls (empty disables)")
		fmt.Fprintln(out, "  FINETUNE_SCHEDULE        Cron expression for periodic fine-tune runs (empty disables)")
		fmt.Fprintln(out, "  FINETUNE_MIN_FEEDBACK    New feedback rows required before a run (default 10)")
		fmt.Fprintln(out, "  FINETUNE_OUTPUT_DIR      Dataset and run output directory (default ./fine_tuned_model)")
		fmt.Fprintln(out, "  FINETUNE_BASE_MODEL      Base model for fine-tuning")
	}

	port := flag.Int("port", Settings.Port, "HTTP server port (overrides PORT)")
	db := flag.String("db", Settings.DatabaseURL, "SQLite database path (overrides DATABASE_URL)")
	logLevel := flag.String("log-level", Settings.LogLevel, "Log level: DEBUG, INFO, WARN, ERROR (overrides LOG_LEVEL)")
	logFile := flag.String("log-file", Settings.LogFilePath, "Log file path, '-' for stderr (overrides LOG_FILE)")
	staticDir := flag.String("static", Settings.StaticDir, "Directory holding index.html (overrides STATIC_DIR)")
	provider := flag.String("llm", Settings.LLMProvider, "LLM provider: mock, openai, anthropic (overrides LLM_PROVIDER)")
	model := flag.String("model", Settings.LLMModel, "LLM model name (overrides LLM_MODEL)")
	vectorBackend := flag.String("vector", Settings.VectorBackend, "Vector backend: none, weaviate, local (overrides VECTOR_BACKEND)")
	vectorURL := flag.String("vector-url", Settings.VectorURL, "Weaviate base URL (overrides VECTOR_URL)")
	sources := flag.String("sources", Settings.CrawlSourcesFile, "YAML news source list (overrides CRAWL_SOURCES_FILE)")
	finetuneOnce := flag.Bool("finetune", false, "Run one fine-tune pass over collected feedback and exit")
	crawlOnce := flag.Bool("crawl", false, "Crawl news sources once, store them in the vector backend and exit")
	cliMode := flag.Bool("cli", Settings.CLIMode, "Run in CLI mode (HTTP client only, no database)")
	cliServer := flag.String("server", Settings.CLIServer, "Server URL for CLI mode")

	showHelp := flag.Bool("help", false, "Show help and exit")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetBuildInfo())
		os.Exit(0)
	}

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	Settings.Port = *port
	Settings.DatabaseURL = *db
	Settings.LogLevel = *logLevel
	Settings.LogFilePath = *logFile
	Settings.StaticDir = *staticDir
	Settings.LLMProvider = *provider
	Settings.LLMModel = *model
	Settings.VectorBackend = *vectorBackend
	Settings.VectorURL = *vectorURL
	Settings.CrawlSourcesFile = *sources
	Settings.FineTuneOnce = *finetuneOnce
	Settings.CrawlOnce = *crawlOnce
	Settings.CLIMode = *cliMode
	Settings.CLIServer = *cliServer
}
