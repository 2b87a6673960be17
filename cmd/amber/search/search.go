// Package searchcmder provides the search command for querying stored
// context records.
package searchcmder

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amberhq/amber/cmd/amber/wiring"
	"github.com/amberhq/amber/pkg/logger"
)

type SearchCommander struct {
	limit     int
	tags      []string
	asJSON    bool
	configDir string
	debug     bool
	logger    *zap.Logger
}

const searchLongDesc string = `Search stored context records.

Runs a semantic similarity search when a vector store is configured, and
falls back to substring matching against the durable store otherwise.

Examples:
  amber search "database migration"
  amber search "deadline" --tags planning,decision --limit 5`

const searchShortDesc string = "Search stored context records"

func NewSearchCmd() *cobra.Command {
	cmder := &SearchCommander{}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: searchShortDesc,
		Long:  searchLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			return cmder.run(args[0])
		},
	}

	cmd.Flags().IntVarP(&cmder.limit, "limit", "n", 10, "Maximum number of results")
	cmd.Flags().StringSliceVar(&cmder.tags, "tags", nil, "Restrict results to records carrying any of these domain tags")
	cmd.Flags().BoolVar(&cmder.asJSON, "json", false, "Print results as JSON")

	return cmd
}

func (c *SearchCommander) run(query string) error {
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

	records, err := store.Search(ctx, query, c.limit, c.tags)
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}

	if c.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("No matching records.")
		return nil
	}

	for _, rec := range records {
		preview := rec.FullContext
		if runes := []rune(preview); len(runes) > 100 {
			preview = string(runes[:100]) + "..."
		}
		preview = strings.ReplaceAll(preview, "\n", " ")

		fmt.Printf("%s  [%s]", rec.ID, rec.PatternType)
		if len(rec.DomainTags) > 0 {
			fmt.Printf("  (%s)", strings.Join(rec.DomainTags, ", "))
		}
		fmt.Printf("\n  %s\n", preview)
	}

	return nil
}
