package configcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amberhq/amber/pkg/config"
	"github.com/amberhq/amber/pkg/dotdir"
)

const getLongDesc string = `Get a resolved configuration value.

Prints the value for the given dotted key after defaults, config.toml,
and AMBER_ environment variables have been applied.

Examples:
  amber config get storage.provider
  amber config get embedding.model`

const getShortDesc string = "Get a configuration value"

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: getShortDesc,
		Long:  getLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runGet(args[0], configDir)
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	return cmd
}

func runGet(key, configDir string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}

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
		fmt.Print("No config file found. Using defaults.\n\n")
	}

	fmt.Printf("%s = %v\n", key, v.Get(key))

	return nil
}
