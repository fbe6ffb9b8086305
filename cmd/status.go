package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/katamari-chat/katamari/internal/config"
	"github.com/katamari-chat/katamari/internal/usage"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show katamari status",
	RunE:  runStatus,
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfgPath := config.ConfigPath()

	fmt.Printf("%s katamari Status\n\n", logo)

	_, statErr := os.Stat(cfgPath)
	cfgMark := "✗"
	if statErr == nil {
		cfgMark = "✓"
	}
	fmt.Printf("Config:    %s %s\n", cfgPath, cfgMark)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  (could not load config: %v)\n", err)
		return nil
	}

	fmt.Printf("Model:     %s\n", cfg.Trim.Model)
	fmt.Printf("Budget:    %d tokens", cfg.Trim.TargetTokens)
	if cfg.Trim.MinTurns > 0 {
		fmt.Printf(" (min %d turns)", cfg.Trim.MinTurns)
	}
	fmt.Println()
	if len(cfg.Trim.PriorityRoles) > 0 {
		fmt.Printf("Priority:  %s\n", strings.Join(cfg.Trim.PriorityRoles, ", "))
	}
	fmt.Printf("Retention: %s\n", cfg.Retention.Provider)
	fmt.Printf("Report:    %s\n", cfg.Report.Cron)
	fmt.Printf("Ops port:  %d\n\n", cfg.Ops.Port)

	dbPath := cfg.UsageDBPath()
	if _, err := os.Stat(dbPath); err != nil {
		fmt.Printf("Usage:     %s ✗ (no usage recorded)\n", dbPath)
		return nil
	}

	store, err := usage.Open(dbPath)
	if err != nil {
		fmt.Printf("Usage:     %s ✗ (%v)\n", dbPath, err)
		return nil
	}
	defer store.Close()

	ctx := context.Background()
	governor := usage.NewGovernor(store, usage.Thresholds{
		DailyLimit: cfg.Usage.DailyLimit,
		YellowPct:  cfg.Usage.YellowPct,
		OrangePct:  cfg.Usage.OrangePct,
		RedPct:     cfg.Usage.RedPct,
	})
	zone, err := governor.ZoneToday(ctx)
	if err != nil {
		fmt.Printf("Usage:     %s ✗ (%v)\n", dbPath, err)
		return nil
	}
	today, err := store.DailyTotal(ctx, time.Now().Format("2006-01-02"))
	if err != nil {
		fmt.Printf("Usage:     %s ✗ (%v)\n", dbPath, err)
		return nil
	}
	fmt.Printf("Usage:     %s ✓\n", dbPath)
	fmt.Printf("Today:     %d tokens (%s)\n", today, zone)
	return nil
}
