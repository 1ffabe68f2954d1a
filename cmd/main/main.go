package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"solidus/sitemap/internal/config"
	"solidus/sitemap/internal/container"
	"solidus/sitemap/internal/domain"
	"solidus/sitemap/internal/domain/task"
	"solidus/sitemap/internal/logging"
	"solidus/sitemap/internal/routes"
)

var (
	configFile string
	logLevel   string
	host       string
	sections   []string

	cfg      *config.Config
	closeLog func() error
)

var rootCmd = &cobra.Command{
	Use:           "sitemap",
	Short:         "Enumerate storefront URLs for a Solidus sitemap",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if logLevel != "" {
			loaded.Log.Level = logLevel
		}

		closeLog, err = logging.Setup(loaded.Log)
		if err != nil {
			return err
		}

		cfg = loaded
		log.Debug("Configuration loaded successfully")
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if closeLog != nil {
			return closeLog()
		}
		return nil
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run one enumeration now and print the entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd.Context(), func(ctx context.Context, app *container.Container) error {
			selected, err := selectedSections()
			if err != nil {
				return err
			}

			t := task.NewGenerateSitemapTask(targetHost(), selected, app.DefaultOptions())
			_, entries, err := app.Service.Generate(ctx, t)
			if err != nil {
				return err
			}

			for _, entry := range entries {
				fmt.Fprintln(cmd.OutOrStdout(), entry.Loc)
			}
			return nil
		})
	},
}

var enqueueCmd = &cobra.Command{
	Use:   "enqueue",
	Short: "Queue an enumeration for the workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd.Context(), func(ctx context.Context, app *container.Container) error {
			selected, err := selectedSections()
			if err != nil {
				return err
			}

			queued, err := app.Service.Enqueue(ctx, targetHost(), selected, app.DefaultOptions())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), queued.RunID)
			return nil
		})
	},
}

var workCmd = &cobra.Command{
	Use:   "work",
	Short: "Queue a run for the configured storefront and process the queue until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd.Context(), func(ctx context.Context, app *container.Container) error {
			return app.Run(ctx)
		})
	},
}

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the storefront routes the sitemap knows about",
	RunE: func(cmd *cobra.Command, args []string) error {
		router := routes.NewRouter(cfg.Storefront.MountPath)
		opts := container.URLOptions(cfg.Storefront)

		for _, route := range router.Routes() {
			path := strings.TrimRight(cfg.Storefront.MountPath, "/") + route.Pattern
			url, err := routes.AbsoluteURL(opts, path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s\n", route.Name, url)
		}
		return nil
	},
}

func targetHost() string {
	if host != "" {
		return host
	}
	return cfg.Storefront.Host
}

func selectedSections() ([]domain.Section, error) {
	if len(sections) > 0 {
		return domain.ParseSections(sections)
	}
	return domain.ParseSections(cfg.Sitemap.Sections)
}

func withContainer(ctx context.Context, fn func(context.Context, *container.Container) error) error {
	app, err := container.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer app.Close()

	return fn(ctx, app)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level")

	for _, cmd := range []*cobra.Command{generateCmd, enqueueCmd} {
		cmd.Flags().StringVar(&host, "host", "", "storefront host (default storefront.host)")
		cmd.Flags().StringSliceVar(&sections, "sections", nil, "sections to enumerate, in order")
	}

	rootCmd.AddCommand(generateCmd, enqueueCmd, workCmd, routesCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Errorf("❌ %v", err)
		os.Exit(1)
	}
}
