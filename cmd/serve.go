package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spigell/ai-interviewer/internal/ai"
	"github.com/spigell/ai-interviewer/internal/ai/gemini"
	"github.com/spigell/ai-interviewer/internal/interview"
	"github.com/spigell/ai-interviewer/internal/logger"
	"github.com/spigell/ai-interviewer/internal/secrets"
	"github.com/spigell/ai-interviewer/internal/server"
	"github.com/spigell/ai-interviewer/internal/tts"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the interview API server",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("port", "p", "", "port to listen on")

	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))

	viper.SetDefault("server.port", "8001")
	viper.SetDefault("server.allowed-origins", []string{"*"})
	viper.SetDefault("ai.gemini.max-retries", 2)
	viper.SetDefault("tts.enabled", true)
	viper.SetDefault("tts.language", "en")
}

// serve is the main command for the server.
func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// No .env file is fine; plain environment variables still apply.
	_ = godotenv.Load()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}
	if config == nil {
		config = &Config{}
	}

	logger.Info("starting the ai-interviewer", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	generator, err := newGenerator(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal(
			"building the generator",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY_FILE / GEMINI_API_KEY or the ai.gemini section in the configuration file"),
		)
	}

	phrases, err := loadPhrases()
	if err != nil {
		logger.Fatal("loading phrase tables", zap.Error(err))
	}

	stages := defaultStages(config.Interview)

	store := interview.NewStore()
	formatter := interview.NewFormatter(phrases, nil)
	engine := interview.NewEngine(store, generator, formatter, stages, logger)

	var synth tts.Synthesizer
	if viper.GetBool("tts.enabled") {
		synth = tts.NewGoogle(logger, viper.GetString("tts.language"))
	}

	hub := server.NewHub(logger)
	notifier := server.NewNotifier(hub, synth, logger)
	handler := server.NewHandler(engine, notifier, logger)

	router := server.NewRouter(handler, hub, notifier, logger, server.Options{
		AllowedOrigins: viper.GetStringSlice("server.allowed-origins"),
	})

	srv := &http.Server{
		Addr:              ":" + viper.GetString("server.port"),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}
}

func newGenerator(ctx context.Context, cfg *AIConfig, baseLogger *zap.Logger) (ai.Generator, error) {
	gcfg := &GeminiConfig{}
	if cfg != nil {
		provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
		if provider != "" && provider != "gemini" {
			return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
		}
		if cfg.Gemini != nil {
			gcfg = cfg.Gemini
		}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: viper.GetString("ai.gemini.api-key"),
		File:  viper.GetString("ai.gemini.api-key-file"),
	})
	if err != nil {
		return nil, err
	}

	genLogger := logger.WithCommonFields(baseLogger, "gemini", gcfg.Model)

	return gemini.NewGenerator(ctx, apiKey, gcfg.Model, viper.GetInt("ai.gemini.max-retries"), gcfg.MaxLogLength, genLogger)
}

// loadPhrases merges configuration overrides into the built-in phrase tables,
// so deployments can localize the interview without replacing everything.
func loadPhrases() (*interview.Phrases, error) {
	phrases := interview.DefaultPhrases()

	raw := viper.Get("interview.phrases")
	if raw == nil {
		return phrases, nil
	}

	if err := mapstructure.Decode(raw, phrases); err != nil {
		return nil, fmt.Errorf("decoding interview.phrases: %w", err)
	}
	return phrases, nil
}

func defaultStages(cfg *InterviewConfig) []interview.StageSpec {
	if cfg == nil || len(cfg.Stages) == 0 {
		return nil
	}

	specs := make([]interview.StageSpec, 0, len(cfg.Stages))
	for _, stage := range cfg.Stages {
		specs = append(specs, interview.StageSpec{
			ID:          stage.ID,
			Name:        stage.Name,
			Description: stage.Description,
		})
	}
	return specs
}
