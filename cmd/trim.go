package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/katamari-chat/katamari/internal/config"
	"github.com/katamari-chat/katamari/internal/retention"
	"github.com/katamari-chat/katamari/internal/schema"
	"github.com/katamari-chat/katamari/internal/trim"
)

var (
	trimFile     string
	trimTarget   int
	trimModel    string
	trimMinTurns int
	trimPriority []string
)

var trimCmd = &cobra.Command{
	Use:   "trim",
	Short: "Trim a conversation transcript to a token budget",
	Long: `Reads a JSON array of {"role","content"} messages and prints the
trimmed conversation with compression metrics.`,
	RunE: runTrim,
}

func init() {
	trimCmd.Flags().StringVarP(&trimFile, "file", "f", "-", "Transcript file ('-' for stdin)")
	trimCmd.Flags().IntVarP(&trimTarget, "target", "t", 0, "Token budget (overrides config)")
	trimCmd.Flags().StringVarP(&trimModel, "model", "m", "", "Model name (overrides config)")
	trimCmd.Flags().IntVar(&trimMinTurns, "min-turns", -1, "Minimum recent turns to keep")
	trimCmd.Flags().StringSliceVar(&trimPriority, "priority", nil, "Roles that must never be dropped")
}

func runTrim(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var data []byte
	if trimFile == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(trimFile)
	}
	if err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}

	var wire []schema.WireMessage
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("parse transcript: %w", err)
	}
	messages := make([]schema.Message, 0, len(wire))
	for _, m := range wire {
		messages = append(messages, m.Message())
	}

	opts := trim.Options{
		TargetTokens:  trimTarget,
		Model:         trimModel,
		MinTurns:      cfg.Trim.MinTurns,
		PriorityRoles: trimPriority,
	}
	if opts.TargetTokens <= 0 {
		opts.TargetTokens = cfg.Trim.TargetTokens
	}
	if opts.Model == "" {
		opts.Model = cfg.Trim.Model
	}
	if trimMinTurns >= 0 {
		opts.MinTurns = trimMinTurns
	}
	if opts.PriorityRoles == nil {
		opts.PriorityRoles = cfg.Trim.PriorityRoles
	}

	result := trim.Trim(messages, opts)
	scorer := retention.ForProvider(cfg.Retention.Provider, cfg.Retention.Dimensions)
	result.Metrics.SemanticRetention = scorer.Score(messages, result.Messages)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
