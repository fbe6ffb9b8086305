package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/katamari-chat/katamari/internal/config"
	"github.com/katamari-chat/katamari/internal/usage"
)

var usageDays int

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show recorded token usage",
	RunE:  runUsage,
}

func init() {
	usageCmd.Flags().IntVarP(&usageDays, "days", "d", 7, "Number of days to show")
}

func runUsage(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := usage.Open(cfg.UsageDBPath())
	if err != nil {
		return fmt.Errorf("open usage db: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	days, err := store.Daily(ctx, usageDays)
	if err != nil {
		return err
	}
	if len(days) == 0 {
		fmt.Println("No usage recorded.")
		return nil
	}

	fmt.Printf("%-12s %12s %12s %8s\n", "DATE", "TOKENS IN", "TOKENS OUT", "TRIMS")
	for _, d := range days {
		fmt.Printf("%-12s %12d %12d %8d\n", d.Date, d.InputTokens, d.OutputTokens, d.Trims)
	}

	governor := usage.NewGovernor(store, usage.Thresholds{
		DailyLimit: cfg.Usage.DailyLimit,
		YellowPct:  cfg.Usage.YellowPct,
		OrangePct:  cfg.Usage.OrangePct,
		RedPct:     cfg.Usage.RedPct,
	})
	zone, err := governor.ZoneToday(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("\nToday's zone: %s\n", zone)
	return nil
}
