// Package ambercmder
package ambercmder

import (
	"github.com/spf13/cobra"

	bridgecmder "github.com/amberhq/amber/cmd/amber/bridge"
	configcmder "github.com/amberhq/amber/cmd/amber/config"
	extractcmder "github.com/amberhq/amber/cmd/amber/extract"
	searchcmder "github.com/amberhq/amber/cmd/amber/search"
	servecmder "github.com/amberhq/amber/cmd/amber/serve"
)

const amberLongDesc string = `Amber captures the context around patterns in your text and keeps it
retrievable across sessions.

Common commands:
  amber serve              Run the API server
  amber extract            Capture context records from a file or stdin
  amber search <query>     Search stored context records
  amber bridge             Carry context from one session into another
  amber config list        Show the resolved configuration`

const amberShortDesc string = "Amber - Context Capture & Retrieval"

func NewAmberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "amber",
		Short: amberShortDesc,
		Long:  amberLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Directory containing config.toml (default: working directory)")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(extractcmder.NewExtractCmd())
	cmd.AddCommand(searchcmder.NewSearchCmd())
	cmd.AddCommand(bridgecmder.NewBridgeCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())

	return cmd
}
