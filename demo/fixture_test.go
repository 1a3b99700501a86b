package demo_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight/finsight"
	"github.com/finsight/finsight/demo"
)

func TestFixture_Snapshot(t *testing.T) {
	t.Parallel()

	t.Run("generation is deterministic", func(t *testing.T) {
		t.Parallel()

		a := demo.NewFixture(fixtureNow).Snapshot()
		b := demo.NewFixture(fixtureNow).Snapshot()
		assert.Equal(t, a, b)
	})

	t.Run("spending covers the recurring categories", func(t *testing.T) {
		t.Parallel()

		snap := demo.NewFixture(fixtureNow).Snapshot()

		assert.Greater(t, snap.Spending.TotalLast30Days, 0.0)
		assert.Contains(t, snap.Spending.ByCategory, "Bills & Utilities")
		assert.Contains(t, snap.Spending.ByCategory, "Entertainment")

		var sum float64
		for _, v := range snap.Spending.ByCategory {
			sum += v
		}
		assert.InDelta(t, snap.Spending.TotalLast30Days, sum, 0.05)
	})

	t.Run("forecast schedules confirmed bills only", func(t *testing.T) {
		t.Parallel()

		snap := demo.NewFixture(fixtureNow).Snapshot()
		fc := snap.Forecast

		assert.Equal(t, "2026-04-16", fc.Period.Start)
		assert.Equal(t, "2026-05-15", fc.Period.End)

		// Netflix, Gym, Internet and Phone land once each in the window.
		require.Len(t, fc.PaymentSchedule, 4)
		assert.Equal(t, "Phone Bill", fc.PaymentSchedule[0].Name)
		assert.Equal(t, "2026-04-20", fc.PaymentSchedule[0].Date)
		assert.InDelta(t, 190.98, fc.DeterministicSpend, 0.001)
		assert.InDelta(t, fc.DeterministicSpend+fc.ProjectedDiscretionary, fc.TotalForecast, 0.001)
		assert.InDelta(t, fc.AvgDailyDiscretionary*30, fc.ProjectedDiscretionary, 0.05)
	})

	t.Run("anomaly threshold sits two deviations above the mean", func(t *testing.T) {
		t.Parallel()

		snap := demo.NewFixture(fixtureNow).Snapshot()
		th := snap.Anomalies.Threshold

		assert.Greater(t, th.Std, 0.0)
		assert.InDelta(t, th.AvgDailySpending+2*th.Std, th.Threshold, 0.05)
		for _, a := range snap.Anomalies.Recent {
			assert.Greater(t, a.Amount, a.Mean)
			assert.GreaterOrEqual(t, a.ZScore, 2.0)
		}
	})

	t.Run("recent transactions come newest first", func(t *testing.T) {
		t.Parallel()

		snap := demo.NewFixture(fixtureNow).Snapshot()

		require.Len(t, snap.RecentTransactions, 10)
		for i := 1; i < len(snap.RecentTransactions); i++ {
			assert.LessOrEqual(t, snap.RecentTransactions[i].Date, snap.RecentTransactions[i-1].Date)
		}
	})
}

func TestFixture_ResolvePending(t *testing.T) {
	t.Parallel()

	t.Run("confirm adds the bill to the forecast", func(t *testing.T) {
		t.Parallel()

		f := demo.NewFixture(fixtureNow)

		pc, ok := f.ResolvePending(1, true)
		require.True(t, ok)
		assert.Equal(t, "Spotify Premium", pc.Description)

		snap := f.Snapshot()
		assert.Empty(t, snap.PendingConfirmations)
		assert.InDelta(t, 200.97, snap.Forecast.DeterministicSpend, 0.001)
	})

	t.Run("reject drops the confirmation without scheduling", func(t *testing.T) {
		t.Parallel()

		f := demo.NewFixture(fixtureNow)

		_, ok := f.ResolvePending(1, false)
		require.True(t, ok)

		snap := f.Snapshot()
		assert.Empty(t, snap.PendingConfirmations)
		assert.InDelta(t, 190.98, snap.Forecast.DeterministicSpend, 0.001)
	})

	t.Run("unknown id", func(t *testing.T) {
		t.Parallel()

		f := demo.NewFixture(fixtureNow)

		_, ok := f.ResolvePending(42, true)
		assert.False(t, ok)
	})
}

func TestFixture_MarkSynced(t *testing.T) {
	t.Parallel()

	f := demo.NewFixture(fixtureNow)
	syncAt := fixtureNow.Add(time.Hour)

	added, updated := f.MarkSynced(syncAt, false)
	assert.GreaterOrEqual(t, added, 0)
	assert.Zero(t, updated)
	assert.Equal(t, syncAt, f.LastSync())

	// Same day again without force finds nothing new.
	added, _ = f.MarkSynced(syncAt.Add(time.Minute), false)
	assert.Zero(t, added)

	// Force regenerates regardless.
	before := len(f.Snapshot().RecentTransactions)
	require.Equal(t, 10, before)
	f.MarkSynced(syncAt.Add(2*time.Minute), true)
	assert.Equal(t, syncAt.Add(2*time.Minute), f.LastSync())
}

func TestFixture_ContextText(t *testing.T) {
	t.Parallel()

	f := demo.NewFixture(fixtureNow)
	text := f.ContextText()

	assert.Contains(t, text, "Savings goal: $500.00")
	assert.Contains(t, text, "Goal note: ")
	assert.Contains(t, text, "Total spending (period): $")
	assert.Contains(t, text, "Category breakdown:")
	assert.Contains(t, text, " - Netflix Subscription: $15.99 (monthly)")
	assert.NotContains(t, text, "Spotify Premium: $9.99 (monthly)")
	assert.Contains(t, text, "Anomalies detected: ")

	// Confirming the pending bill adds it to the recurring list.
	_, ok := f.ResolvePending(1, true)
	require.True(t, ok)
	assert.Contains(t, f.ContextText(), " - Spotify Premium: $9.99 (monthly)")
}

func TestFixture_SetInsight(t *testing.T) {
	t.Parallel()

	f := demo.NewFixture(fixtureNow)
	at := fixtureNow.Add(time.Hour)

	insight := f.SetInsight("spending looks steady", finsight.InsightSavingsTip, at)
	assert.Equal(t, "spending looks steady", insight.Text)
	assert.Equal(t, finsight.InsightSavingsTip, insight.Type)
	assert.Equal(t, at.Format(time.RFC3339), insight.CreatedAt)

	snap := f.Snapshot()
	require.NotNil(t, snap.LatestInsight)
	assert.Equal(t, insight, *snap.LatestInsight)
}
