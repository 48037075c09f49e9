package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/vietddude/eventmailer/internal/control"
	"github.com/vietddude/eventmailer/internal/core/config"
	"github.com/vietddude/eventmailer/internal/core/domain"
)

var (
	cfgPath      string
	isDebug      bool
	customerName string
	customerCity string
	taxonomyPath string
)

var rootCmd = &cobra.Command{
	Use:   "eventmailer",
	Short: "Event recommendation mailer",
	Long: `Eventmailer picks events from a category taxonomy for a customer and mails them:
every event in the customer's city, the closest events, and the cheapest events.`,
	Run: runMailer,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&taxonomyPath, "taxonomy", "", "taxonomy JSON file (default is the embedded sample)")
	rootCmd.Flags().StringVar(&customerName, "customer-name", "", "customer name (overrides config)")
	rootCmd.Flags().StringVar(&customerCity, "customer-city", "", "customer city (overrides config)")
}

// loadConfig reads the config file, falling back to defaults when it does not
// exist, and sets up logging.
func loadConfig() *config.AppConfig {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = config.Default()
	} else if err != nil {
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	slogLevel := slog.LevelInfo
	if isDebug || cfg.Logging.Level == "debug" {
		slogLevel = slog.LevelDebug
	}
	stylelog.InitDefault(&tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	})

	if taxonomyPath != "" {
		cfg.Taxonomy.Path = taxonomyPath
	}
	if customerName != "" {
		cfg.Customer.Name = customerName
	}
	if customerCity != "" {
		cfg.Customer.City = customerCity
	}
	return cfg
}

func newApp(ctx context.Context, cfg *config.AppConfig) *control.App {
	app, err := control.NewApp(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}
	return app
}

func runMailer(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := mail(ctx, cfg, os.Stdout)
	cancel()

	if err != nil {
		slog.Error("Mailing finished with errors", "error", err)
		os.Exit(1)
	}
}

// mail runs every strategy for the configured customer, writing progress and
// console deliveries to out. The app is closed before returning.
func mail(ctx context.Context, cfg *config.AppConfig, out io.Writer) (err error) {
	app, err := control.NewApp(ctx, cfg, control.WithOutput(out))
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer func() {
		err = errors.Join(err, app.Close())
	}()

	events, err := app.Events(ctx)
	if err != nil {
		return fmt.Errorf("failed to load taxonomy: %w", err)
	}
	_, _ = fmt.Fprintf(out, "event count = %d, events = %v\n", len(events), events)

	app.Mailer().OnStrategy(func(s domain.StrategyName, c domain.Customer) {
		switch s {
		case domain.StrategySameCity:
			_, _ = fmt.Fprintf(out, "\nmail all events in customer's city %s\n", c.City)
		case domain.StrategyNearest:
			_, _ = fmt.Fprintf(out, "\nmail %d closest events to customer's city %s\n", cfg.Selection.Count, c.City)
		case domain.StrategyCheapest:
			_, _ = fmt.Fprintf(out, "\nmail %d cheapest events\n", cfg.Selection.Count)
		}
	})

	slog.Debug("Mailing", "session", app.Session(), "customer", cfg.Customer.Name)
	_, err = app.Run(ctx, cfg.Customer)
	return err
}
