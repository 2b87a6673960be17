// Package configcmder provides the config command for inspecting the
// resolved amber configuration.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Inspect the resolved amber configuration.

Configuration is read from config.toml in the config directory (or the
working directory), with AMBER_ environment variables taking precedence
over file values and defaults filling the rest.

Keys use dotted notation matching the TOML section structure:
  storage.provider, storage.sqlite_path, storage.postgres_dsn,
  cache.provider, cache.ttl_hours,
  vector_store.provider, vector_store.target,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions,
  events.provider, events.brokers, events.topic,
  api.listen

Examples:
  amber config get storage.provider
  amber config list`

const configShortDesc string = "Inspect the resolved amber configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
