package cli

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/chantier/internal/config"
	"github.com/existflow/chantier/internal/logger"
	"github.com/existflow/chantier/internal/store"
	"github.com/existflow/chantier/internal/tui"
	"github.com/spf13/cobra"
)

var (
	logLevel   string
	logFile    string
	logConsole bool
	dataMode   string

	// appConfig is loaded before every command
	appConfig = config.DefaultConfig()
)

var rootCmd = &cobra.Command{
	Use:   "chantier",
	Short: "Chantier - construction site financial dashboard",
	Long: `Chantier tracks construction projects with their quotes (devis),
payments and expenses, and computes what is committed, collected, spent
and still owed on each site.

Run 'chantier' without arguments to launch the interactive dashboard.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config from file (or defaults if not exists)
		cfg, err := config.Load()
		if err != nil {
			logger.Warn("Failed to load config, using defaults", logger.F("error", err))
			cfg = config.DefaultConfig()
		}

		// Override with CLI flags if provided
		configChanged := false
		if cmd.Flags().Changed("mode") {
			mode, err := store.ParseMode(dataMode)
			if err != nil {
				return err
			}
			cfg.Mode = string(mode)
			configChanged = true
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
			configChanged = true
		}
		if cmd.Flags().Changed("log-file") {
			cfg.LogFile = logFile
			configChanged = true
		}
		if cmd.Flags().Changed("log-console") {
			cfg.LogConsole = logConsole
			configChanged = true
		}

		// Save config if changed via CLI flags
		if configChanged {
			if err := cfg.Save(); err != nil {
				logger.Warn("Failed to save config", logger.F("error", err))
			}
		}
		appConfig = cfg

		logConfig := logger.Config{
			Level:      logger.ParseLevel(cfg.LogLevel),
			FilePath:   cfg.LogFile,
			MaxSize:    10 * 1024 * 1024, // 10MB
			MaxAge:     7,
			MaxBackups: 5,
			Console:    cfg.LogConsole,
		}

		if err := logger.Init(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.Info("Chantier started", logger.F("command", cmd.Name()), logger.F("mode", cfg.Mode))
		return nil
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			logger.Error("Failed to open store", logger.F("error", err))
			return err
		}
		defer func() {
			_ = st.Close()
			logger.Info("Store closed")
		}()

		logger.Info("Launching TUI")
		m := tui.NewModel(st, tui.Options{
			RefreshInterval: time.Duration(appConfig.RefreshInterval) * time.Second,
			ExportDir:       appConfig.ExportDir,
		})
		p := tea.NewProgram(m, tea.WithAltScreen())

		if _, err := p.Run(); err != nil {
			logger.Error("TUI error", logger.F("error", err))
			return fmt.Errorf("failed to run TUI: %w", err)
		}

		logger.Info("TUI exited normally")
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Info("Chantier exiting", logger.F("command", cmd.Name()))
		logger.Close()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataMode, "mode", "", "Data source (demo, local, remote)")

	// Add logging flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Enable console logging")

	// Add subcommands
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(paymentCmd)
	rootCmd.AddCommand(expenseCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(overviewCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(authCmd)
}
