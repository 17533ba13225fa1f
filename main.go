package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/divymav/portfolio/internal/analytics"
	"github.com/divymav/portfolio/internal/config"
	"github.com/divymav/portfolio/internal/content"
	"github.com/divymav/portfolio/internal/server"
)

var (
	verbose bool
	port    string
)

var rootCmd = &cobra.Command{
	Use:          "portfolio",
	Short:        shortDescription,
	Long:         longDescription,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the portfolio site",
	RunE:  runServe,
}

var validateCmd = &cobra.Command{
	Use:   "validate [content.yaml]",
	Short: "Check a content file without starting the server",
	Long:  validateDescription,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&port, "port", "p", "", "listen port (overrides PORT)")
	rootCmd.AddCommand(serveCmd, validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Mode == gin.DebugMode {
		zc = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func loadContent(path string) (*content.Content, error) {
	if path == "" {
		return content.Default()
	}
	return content.LoadFile(path)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if port != "" {
		cfg.Port = port
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	c, err := loadContent(cfg.ContentPath)
	if err != nil {
		logger.Error("loading content", zap.String("path", cfg.ContentPath), zap.Error(err))
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store *analytics.Store
	if cfg.DBPath != "" {
		store, err = analytics.Open(ctx, cfg.DBPath)
		if err != nil {
			logger.Error("opening analytics", zap.String("path", cfg.DBPath), zap.Error(err))
			return err
		}
		defer store.Close()
		logger.Info("analytics enabled", zap.String("db", cfg.DBPath), zap.Bool("tracking", cfg.TrackVisitors))
	}

	srv, err := server.New(cfg, c, store, logger)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

var errInvalidContent = errors.New("content is invalid")

func runValidate(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 {
		path = args[0]
	} else {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		path = cfg.ContentPath
	}
	source := path
	if source == "" {
		source = "embedded default"
	}

	c, err := loadContent(path)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s:\n%v\n", source, err)
		return errInvalidContent
	}
	fmt.Fprintf(cmd.OutOrStdout(), validateSummary,
		source, len(c.Skills), len(c.Languages), len(c.Projects), len(c.Contact.Links))
	return nil
}
