package usage

import (
	"context"
	"time"
)

// Zone represents the current daily token usage level.
type Zone int

const (
	ZoneGreen  Zone = iota // under the yellow threshold
	ZoneYellow             // consider compressing context harder
	ZoneOrange             // reduce context heavily
	ZoneRed                // minimum context only
)

// String returns a human-readable label for the zone.
func (z Zone) String() string {
	switch z {
	case ZoneYellow:
		return "YELLOW"
	case ZoneOrange:
		return "ORANGE"
	case ZoneRed:
		return "RED"
	default:
		return "GREEN"
	}
}

// Thresholds configures zone boundaries as percentages of the daily limit.
type Thresholds struct {
	DailyLimit int
	YellowPct  int
	OrangePct  int
	RedPct     int
}

// DefaultThresholds mirrors the service defaults: 1M tokens/day with
// zones at 60/80/90 percent.
func DefaultThresholds() Thresholds {
	return Thresholds{DailyLimit: 1_000_000, YellowPct: 60, OrangePct: 80, RedPct: 90}
}

// Governor maps recorded usage onto budget zones.
type Governor struct {
	store      *Store
	thresholds Thresholds
}

func NewGovernor(store *Store, thresholds Thresholds) *Governor {
	if thresholds.DailyLimit < 0 {
		thresholds.DailyLimit = 0
	}
	return &Governor{store: store, thresholds: thresholds}
}

// ZoneToday computes the zone for today's recorded usage. A zero daily
// limit disables governance and always reports green.
func (g *Governor) ZoneToday(ctx context.Context) (Zone, error) {
	return g.zoneFor(ctx, time.Now().Format("2006-01-02"))
}

func (g *Governor) zoneFor(ctx context.Context, date string) (Zone, error) {
	if g.thresholds.DailyLimit == 0 {
		return ZoneGreen, nil
	}
	used, err := g.store.DailyTotal(ctx, date)
	if err != nil {
		return ZoneGreen, err
	}

	pct := (used * 100) / g.thresholds.DailyLimit
	switch {
	case pct >= g.thresholds.RedPct:
		return ZoneRed, nil
	case pct >= g.thresholds.OrangePct:
		return ZoneOrange, nil
	case pct >= g.thresholds.YellowPct:
		return ZoneYellow, nil
	default:
		return ZoneGreen, nil
	}
}
