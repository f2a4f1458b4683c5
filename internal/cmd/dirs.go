package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/MakeNowJust/heredoc"
	"github.com/charmbracelet/virtua/internal/config"
	"github.com/spf13/cobra"
)

var dirsCmd = &cobra.Command{
	Use:   "dirs",
	Short: "Print the paths used by virtua",
	Long: heredoc.Doc(`
		Print the config file and the data directory virtua uses.
		The data directory holds the log files.
	`),
	Example: heredoc.Doc(`
		# Print all paths
		virtua dirs

		# Print only the config file
		virtua dirs --config-file

		# Print only the data directory
		virtua dirs --data
	`),
	RunE: func(cmd *cobra.Command, args []string) error {
		configOnly, _ := cmd.Flags().GetBool("config-file")
		dataOnly, _ := cmd.Flags().GetBool("data")

		if configOnly && dataOnly {
			return fmt.Errorf("cannot specify both --config-file and --data flags")
		}

		path := configPath(cmd)
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		dataDir := cfg.DataDirectory()
		if abs, err := filepath.Abs(dataDir); err == nil {
			dataDir = abs
		}
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}

		out := cmd.OutOrStdout()
		if configOnly {
			fmt.Fprintln(out, path)
			return nil
		}

		if dataOnly {
			fmt.Fprintln(out, dataDir)
			return nil
		}

		// Print both by default
		fmt.Fprintf(out, "Config file:    %s\n", path)
		fmt.Fprintf(out, "Data directory: %s\n", dataDir)
		fmt.Fprintf(out, "Log file:       %s\n", filepath.Join(dataDir, "logs", filepath.Base(cfg.LogFile())))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(dirsCmd)
	dirsCmd.Flags().Bool("config-file", false, "Print only the config file")
	dirsCmd.Flags().Bool("data", false, "Print only the data directory")
}
