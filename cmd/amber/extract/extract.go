// Package extractcmder provides the extract command for capturing context
// records from a file or stdin.
package extractcmder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amberhq/amber/cmd/amber/wiring"
	"github.com/amberhq/amber/pkg/logger"
	"github.com/amberhq/amber/pkg/record"
)

type ExtractCommander struct {
	file       string
	indicators []string
	sessionID  string
	asJSON     bool
	configDir  string
	debug      bool
	logger     *zap.Logger
}

const extractLongDesc string = `Capture context records from text.

Scans the input for each indicator pattern and stores one context record
per occurrence, with the surrounding paragraphs preserved. Input comes
from --file or, when no file is given, from stdin.

Examples:
  amber extract -f notes.txt -i "decided to" -i "remember"
  cat transcript.txt | amber extract -i "I think" --session s-42`

const extractShortDesc string = "Capture context records from a file or stdin"

func NewExtractCmd() *cobra.Command {
	cmder := &ExtractCommander{}

	cmd := &cobra.Command{
		Use:   "extract",
		Short: extractShortDesc,
		Long:  extractLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			return cmder.run()
		},
	}

	cmd.Flags().StringVarP(&cmder.file, "file", "f", "", "File to scan (default: stdin)")
	cmd.Flags().StringArrayVarP(&cmder.indicators, "indicator", "i", nil, "Indicator pattern to anchor on (repeatable)")
	cmd.Flags().StringVar(&cmder.sessionID, "session", "", "Session id to attribute records to")
	cmd.Flags().BoolVar(&cmder.asJSON, "json", false, "Print captured records as JSON")

	cmd.MarkFlagRequired("indicator")

	return cmd
}

func (c *ExtractCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	cfg, err := wiring.LoadConfig(c.configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	text, err := c.readInput()
	if err != nil {
		return err
	}

	ctx := context.Background()

	store, err := wiring.BuildStore(ctx, cfg, c.logger)
	if err != nil {
		return fmt.Errorf("building storage tiers: %w", err)
	}
	defer store.Close()

	extractor := wiring.BuildExtractor(cfg, store, c.logger)

	source := record.SourceInfo{
		File:      c.file,
		SessionID: c.sessionID,
	}

	records, err := extractor.Extract(ctx, text, c.indicators, source)
	if err != nil {
		return fmt.Errorf("capturing context: %w", err)
	}

	if c.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	fmt.Printf("Captured %d context record(s)\n", len(records))
	for _, rec := range records {
		fmt.Printf("  %s  [%s]  %q\n", rec.ID, rec.PatternType, rec.MatchText)
	}

	return nil
}

func (c *ExtractCommander) readInput() (string, error) {
	if c.file == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(c.file)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", c.file, err)
	}

	return string(data), nil
}
