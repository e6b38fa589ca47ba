package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sant0-9/policygen/internal/catalog"
	"github.com/sant0-9/policygen/internal/config"
	"github.com/sant0-9/policygen/internal/logger"
	"github.com/sant0-9/policygen/internal/tui"
)

var version = "dev"

var (
	configPath string
	logLevel   string
	serverURL  string

	cfg        *config.Config
	needsSetup bool
	log        *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "policygen",
	Short: "Generate privacy policies with an LLM",
	Long: `policygen drafts a privacy policy from a short questionnaire and
summarizes it in plain language.

Run without arguments to start the interactive wizard.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, needsSetup, err = loadConfig()
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}

		// The TUI owns the terminal, so it always logs to a file.
		file := cfg.Log.File
		if cmd == cmd.Root() && file == "" {
			file = config.DefaultLogFile()
		}
		log, err = logger.New(cfg.Log.Level, cfg.Log.Format, file)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
	RunE: runInteractive,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/policygen/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "use a remote policygen server instead of calling the generator directly")

	rootCmd.AddCommand(generateCmd, summarizeCmd, suggestCmd, serveCmd, templatesCmd, flowsCmd)
}

// loadConfig reads --config or the default file. Without a file the config
// comes from defaults and the environment, and the TUI offers setup unless
// the environment already carries credentials.
func loadConfig() (*config.Config, bool, error) {
	var (
		c   *config.Config
		err error
	)
	if configPath != "" {
		c, err = config.LoadFile(configPath)
	} else {
		c, err = config.Load()
	}
	if err != nil {
		return nil, false, err
	}
	if c != nil {
		return c, false, nil
	}

	c = config.FromEnv()
	return c, !c.HasCredentials(), nil
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cat, err := catalog.Load(cfg.Language, catalog.DefaultDir())
	if err != nil {
		if cat == nil {
			return err
		}
		log.Warn("some user templates were skipped", zap.Error(err))
	}

	app := tui.NewApp(tui.Options{
		Config:     cfg,
		NeedsSetup: needsSetup && serverURL == "",
		Catalog:    cat,
		Connect: func(ctx context.Context, c *config.Config) (tui.Backend, error) {
			return newBackend(ctx, c)
		},
		Logger: log,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
