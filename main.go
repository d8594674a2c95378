package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"taskmind/cli"
	"taskmind/config"
	"taskmind/crawler"
	"taskmind/database"
	"taskmind/finetune"
	"taskmind/handlers"
	"taskmind/llm"
	"taskmind/scheduler"
	"taskmind/service"
	"taskmind/state"
	"taskmind/vector"
	"taskmind/version"
	"time"

	"github.com/gin-gonic/gin"
)

//go:embed static/*
var staticFiles embed.FS

func main() {
	// Load environment variables and parse CLI flags
	config.ParseFlags()

	logFile, err := setupLogging(config.Settings.LogFilePath, config.Settings.LogBackups)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	if config.Settings.CLIMode {
		mainCLI()
		return
	}

	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("System starting up...")

	if err := database.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := database.CloseDB(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	initServices(config.Settings)

	// One-shot modes exit without starting the server
	code := -1
	switch {
	case config.Settings.FineTuneOnce:
		code = runFineTuneOnce()
	case config.Settings.CrawlOnce:
		code = runCrawlOnce()
	}
	if code >= 0 {
		_ = database.CloseDB()
		os.Exit(code)
	}

	serve()
}

// initServices builds the model client, vector store and crawler from cfg.
// Backends that fail to initialize are replaced by their offline stand-ins.
func initServices(cfg *config.Config) {
	state.Global.Init(cfg.LLMProvider, cfg.LLMModel)

	client, err := llm.NewFactory(cfg).Create(cfg.LLMProvider, cfg.LLMModel)
	if err != nil {
		log.Printf("Warning: LLM init error, using mock responses: %v", err)
		client = llm.Mock{}
		state.Global.Init(llm.ProviderMock, cfg.LLMModel)
	}
	log.Printf("LLM provider: %s, model: %s", state.Global.Provider(), state.Global.ActiveModel())

	store, err := vector.New(cfg, database.DB)
	if err != nil {
		log.Printf("Warning: vector backend not available: %v", err)
		store = vector.Noop{}
	}
	log.Printf("Vector backend: %s", store.Name())

	userAgent := cfg.CrawlUserAgent
	if userAgent == "" {
		userAgent = version.UserAgent("news-spider")
	}
	spider := crawler.NewSpider(
		&http.Client{Timeout: time.Duration(cfg.CrawlTimeoutSec) * time.Second},
		userAgent,
		int64(cfg.CrawlMaxBodyBytes),
	)

	service.InitServices(service.Deps{
		DB:          database.DB,
		State:       state.Global,
		LLM:         client,
		Vector:      store,
		Spider:      spider,
		SourcesFile: cfg.CrawlSourcesFile,
		Trainer:     finetune.NewTrainer(cfg, client),
		FineTune:    finetune.OptionsFromConfig(cfg),
	})

	service.GlobalServices.FineTune.RestoreActiveModel()
}

func runFineTuneOnce() int {
	run, err := service.GlobalServices.FineTune.Run(context.Background())
	if err != nil {
		log.Printf("Fine-tune failed: %v", err)
		fmt.Fprintf(os.Stderr, "fine-tune failed: %v\n", err)
		return 1
	}
	fmt.Printf("Fine-tuning complete. Model: %s (run %s, %d examples)\n", run.ResultModel, run.ID, run.Examples)
	return 0
}

func runCrawlOnce() int {
	n, err := service.GlobalServices.Knowledge.Crawl(context.Background())
	if err != nil {
		log.Printf("Crawl failed: %v", err)
		fmt.Fprintf(os.Stderr, "crawl failed: %v\n", err)
		return 1
	}
	fmt.Printf("Crawl complete. Ingested %d item(s)\n", n)
	return 0
}

func startScheduler(cfg *config.Config) *scheduler.Scheduler {
	sched := scheduler.New()

	if _, err := sched.Add("finetune", cfg.FineTuneSchedule, func(ctx context.Context) error {
		_, err := service.GlobalServices.FineTune.Run(ctx)
		if errors.Is(err, finetune.ErrNotEnoughFeedback) || errors.Is(err, finetune.ErrRunInProgress) {
			log.Printf("Scheduled fine-tune skipped: %v", err)
			return nil
		}
		return err
	}); err != nil {
		log.Printf("Warning: %v", err)
	}

	if _, err := sched.Add("crawl", cfg.CrawlSchedule, func(ctx context.Context) error {
		_, err := service.GlobalServices.Knowledge.Crawl(ctx)
		return err
	}); err != nil {
		log.Printf("Warning: %v", err)
	}

	sched.Start()
	service.GlobalServices.Schedule = sched
	return sched
}

func serve() {
	if config.Settings.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Direct Gin logs to the configured log file
	gin.DefaultWriter = log.Writer()
	gin.DefaultErrorWriter = log.Writer()
	gin.DisableConsoleColor()

	embedded, err := fs.Sub(staticFiles, "static")
	if err != nil {
		log.Fatalf("Failed to create static file system: %v", err)
	}
	if config.Settings.StaticDir != "" {
		log.Printf("Serving front-end from %s", config.Settings.StaticDir)
	}
	r := handlers.NewRouter(handlers.NewStaticSite(embedded, config.Settings.StaticDir))

	sched := startScheduler(config.Settings)

	port := findAvailablePort(config.Settings.Port)
	if port != config.Settings.Port {
		log.Printf("Default port %d is busy. Switched to %d", config.Settings.Port, port)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", port),
		Handler: r,
	}

	go func() {
		log.Printf("Server starting on http://127.0.0.1:%d", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("System shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	sched.Stop()

	log.Println("Server exited")
}

// findAvailablePort searches for an available port
func findAvailablePort(startPort int) int {
	for port := startPort; port < startPort+100; port++ {
		listener, err := net.Listen("tcp", fmt.Sprintf("0.0.0.0:%d", port))
		if err == nil {
			listener.Close()
			return port
		}
	}
	log.Fatal("No available ports found")
	return startPort
}

// mainCLI entrypoint for CLI (HTTP client mode)
func mainCLI() {
	// CLI mode skips DB load; acts as HTTP client
	log.SetFlags(log.Ldate | log.Ltime)

	serverURL := config.Settings.CLIServer
	fmt.Printf("taskmind CLI - Connecting to %s\n", serverURL)

	if err := cli.Run(serverURL); err != nil {
		fmt.Printf("Error: %v\n", err)
		fmt.Println("\nTips:")
		fmt.Println("  1. Make sure the taskmind server is running:")
		fmt.Println("     ./taskmind")
		fmt.Println("  2. Or specify a different server:")
		fmt.Println("     ./taskmind --cli --server http://your-server:8000")
		os.Exit(1)
	}
}
