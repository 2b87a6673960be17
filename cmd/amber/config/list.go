package configcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amberhq/amber/pkg/config"
	"github.com/amberhq/amber/pkg/dotdir"
)

const listLongDesc string = `List all resolved configuration values.

Displays every configuration key and its resolved value after defaults,
config.toml, and AMBER_ environment variables have been applied.

Examples:
  amber config list`

const listShortDesc string = "List all configuration values"

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runList(configDir)
		},
	}

	return cmd
}

func runList(configDir string) error {
	dir, err := dotdir.NewManager().Target(configDir)
	if err != nil {
		return fmt.Errorf("resolving config directory: %w", err)
	}

	v, err := config.InitViper(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if target := v.ConfigFileUsed(); target != "" {
		fmt.Printf("Using config file: %s\n\n", target)
	} else {
		fmt.Print("No config file found. Using default config.\n\n")
	}

	keys := config.ValidConfigKeys()

	// Find the longest key name for alignment.
	maxLen := 0
	for _, k := range keys {
		if len(k) > maxLen {
			maxLen = len(k)
		}
	}

	for _, key := range keys {
		fmt.Printf("%-*s = %v\n", maxLen, key, v.Get(key))
	}

	return nil
}
