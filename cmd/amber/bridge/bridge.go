// Package bridgecmder provides the bridge command for carrying context
// between sessions.
package bridgecmder

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amberhq/amber/cmd/amber/wiring"
	"github.com/amberhq/amber/pkg/bridge"
	"github.com/amberhq/amber/pkg/logger"
)

type BridgeCommander struct {
	asJSON    bool
	configDir string
	debug     bool
	logger    *zap.Logger
}

const bridgeLongDesc string = `Carry context from one session into another.

Collects the context records reachable from the source session, including
records pulled in through earlier bridges, and persists a bridge record
that makes them available to the destination session.

Examples:
  amber bridge s-monday s-tuesday
  amber bridge s-monday s-tuesday --json`

const bridgeShortDesc string = "Carry context from one session into another"

func NewBridgeCmd() *cobra.Command {
	cmder := &BridgeCommander{}

	cmd := &cobra.Command{
		Use:   "bridge <from-session> <to-session>",
		Short: bridgeShortDesc,
		Long:  bridgeLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			return cmder.run(args[0], args[1])
		},
	}

	cmd.Flags().BoolVar(&cmder.asJSON, "json", false, "Print the bridge record as JSON")

	return cmd
}

func (c *BridgeCommander) run(fromSessionID, toSessionID string) error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	cfg, err := wiring.LoadConfig(c.configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx := context.Background()

	store, err := wiring.BuildStore(ctx, cfg, c.logger)
	if err != nil {
		return fmt.Errorf("building storage tiers: %w", err)
	}
	defer store.Close()

	publisher, err := wiring.BuildPublisher(cfg, c.logger)
	if err != nil {
		return fmt.Errorf("building event publisher: %w", err)
	}
	defer publisher.Close()

	builder := bridge.NewBuilder(store, publisher, c.logger)

	bridgeRec, err := builder.Bridge(ctx, fromSessionID, toSessionID)
	if err != nil {
		return fmt.Errorf("bridging sessions: %w", err)
	}

	if c.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(bridgeRec)
	}

	fmt.Printf("Bridge %s created: %s -> %s\n", bridgeRec.ID, fromSessionID, toSessionID)
	fmt.Printf("  %d context record(s), %d message(s)\n", len(bridgeRec.ContextIDs), len(bridgeRec.Messages))
	if bridgeRec.Summary != "" {
		fmt.Printf("  %s\n", bridgeRec.Summary)
	}

	return nil
}
