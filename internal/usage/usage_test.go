package usage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "usage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndDailyTotal(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	today := time.Now().Format("2006-01-02")

	require.NoError(t, s.Record(ctx, "chat-1", "gpt-5-main", 1000, 400, 0.4))
	require.NoError(t, s.Record(ctx, "chat-2", "gpt-4o", 500, 100, 0.2))

	total, err := s.DailyTotal(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, 2000, total)

	total, err = s.DailyTotal(ctx, "1999-01-01")
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestDaily(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, "chat-1", "gpt-5-main", 100, 50, 0.5))
	require.NoError(t, s.Record(ctx, "chat-1", "gpt-5-main", 200, 80, 0.4))

	days, err := s.Daily(ctx, 7)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, time.Now().Format("2006-01-02"), days[0].Date)
	assert.Equal(t, 300, days[0].InputTokens)
	assert.Equal(t, 130, days[0].OutputTokens)
	assert.Equal(t, 2, days[0].Trims)
}

func TestGovernor_Zones(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	thresholds := Thresholds{DailyLimit: 1000, YellowPct: 60, OrangePct: 80, RedPct: 90}
	g := NewGovernor(s, thresholds)

	zone, err := g.ZoneToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, ZoneGreen, zone)

	require.NoError(t, s.Record(ctx, "", "m", 500, 100, 1))
	zone, _ = g.ZoneToday(ctx)
	assert.Equal(t, ZoneYellow, zone)

	require.NoError(t, s.Record(ctx, "", "m", 200, 0, 1))
	zone, _ = g.ZoneToday(ctx)
	assert.Equal(t, ZoneOrange, zone)

	require.NoError(t, s.Record(ctx, "", "m", 100, 0, 1))
	zone, _ = g.ZoneToday(ctx)
	assert.Equal(t, ZoneRed, zone)
}

func TestGovernor_ZeroLimitAlwaysGreen(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Record(ctx, "", "m", 1_000_000, 0, 1))

	g := NewGovernor(s, Thresholds{})
	zone, err := g.ZoneToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, ZoneGreen, zone)
}

func TestZoneString(t *testing.T) {
	assert.Equal(t, "GREEN", ZoneGreen.String())
	assert.Equal(t, "YELLOW", ZoneYellow.String())
	assert.Equal(t, "ORANGE", ZoneOrange.String())
	assert.Equal(t, "RED", ZoneRed.String())
}
