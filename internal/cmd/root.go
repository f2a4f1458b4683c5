package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/MakeNowJust/heredoc"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/virtua/internal/config"
	"github.com/charmbracelet/virtua/internal/log"
	"github.com/charmbracelet/virtua/internal/tui"
	"github.com/charmbracelet/virtua/internal/version"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the config file (defaults to $VIRTUA_CONFIG or ./virtua.json)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug")
	rootCmd.Flags().BoolP("help", "h", false, "Help")
}

var rootCmd = &cobra.Command{
	Use:   "virtua",
	Short: "Browse huge lists and grids with virtualized rendering",
	Long: heredoc.Doc(`
		Virtua renders only the part of a list or grid that is on screen.
		Item sizes start as estimates and are replaced by measurements as
		items are drawn, so millions of variable height items scroll
		without laying out the whole collection.

		The session is configured by a JSON file that is watched for
		changes; saving it starts a new session with the new settings.
	`),
	Example: heredoc.Doc(`
		# Browse the default list of 10000 items
		virtua

		# Use a specific config file with debug logging
		virtua --config ./grid.json --debug

		# Switch the running session to a grid
		virtua config set mode grid
	`),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup(cmd)
		if err != nil {
			return err
		}

		model, err := tui.New(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		program := tea.NewProgram(
			model,
			tea.WithAltScreen(),
			tea.WithContext(ctx),
			tea.WithMouseCellMotion(),
		)

		path := configPath(cmd)
		go func() {
			err := config.Watch(ctx, path, func(cfg *config.Config, err error) {
				program.Send(tui.ConfigReloadedMsg{Config: cfg, Err: err})
			})
			if err != nil {
				slog.Error("Config watcher stopped", "error", err)
			}
		}()

		if _, err := program.Run(); err != nil {
			slog.Error("TUI run error", "error", err)
			return fmt.Errorf("TUI error: %v", err)
		}
		return nil
	},
}

// setup loads the config and starts logging.
func setup(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath(cmd))
	if err != nil {
		return nil, err
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Options.Debug = true
	}
	if err := config.InitDataDirectory(cfg); err != nil {
		return nil, err
	}
	log.Setup(cfg.LogFile(), cfg.Debug())
	slog.Debug("Config loaded", "path", configPath(cmd), "mode", string(cfg.Mode), "count", cfg.Count)
	return cfg, nil
}

func configPath(cmd *cobra.Command) string {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path
	}
	return config.DefaultPath()
}

func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(version.Version),
	); err != nil {
		os.Exit(1)
	}
}
