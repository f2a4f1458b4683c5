package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/charmbracelet/virtua/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the configuration",
	Long:  `Show the resolved configuration or change single keys of the config file.`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config key",
	Long: heredoc.Doc(`
		Set a single key in the config file, creating the file when it does
		not exist. Nested keys use dots. The file is left untouched when the
		result would be invalid.

		Keys: mode, count, estimate_size, overscan, gap, horizontal, columns,
		column_width, epsilon, options.debug, options.data_directory
	`),
	Example: heredoc.Doc(`
		# Virtualize a million items
		virtua config set count 1000000

		# Lay the items out in a grid of 6 columns
		virtua config set mode grid
		virtua config set columns 6
	`),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath(cmd)
		if err := config.Set(path, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s to %s in %s\n", args[0], args[1], path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration",
	Long:  `Print the configuration as JSON, with defaults filled in for keys the file does not set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath(cmd))
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)
}
