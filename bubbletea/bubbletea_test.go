package bubbletea_test

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight/finsight"
	"github.com/finsight/finsight/api"
	bt "github.com/finsight/finsight/bubbletea"
	"github.com/finsight/finsight/demo"
	"github.com/finsight/finsight/mock"
)

// stubData is a DashboardClient double with function fields.
type stubData struct {
	DashboardFn        func(ctx context.Context) (finsight.Snapshot, error)
	SyncTransactionsFn func(ctx context.Context, force bool) (finsight.SyncResult, error)
	ConfirmRecurringFn func(ctx context.Context, id int, action string) (string, error)
	GenerateInsightFn  func(ctx context.Context) (string, error)
}

func (s *stubData) Dashboard(ctx context.Context) (finsight.Snapshot, error) {
	return s.DashboardFn(ctx)
}

func (s *stubData) SyncTransactions(ctx context.Context, force bool) (finsight.SyncResult, error) {
	return s.SyncTransactionsFn(ctx, force)
}

func (s *stubData) ConfirmRecurring(ctx context.Context, id int, action string) (string, error) {
	return s.ConfirmRecurringFn(ctx, id, action)
}

func (s *stubData) GenerateInsight(ctx context.Context) (string, error) {
	return s.GenerateInsightFn(ctx)
}

// nopBackend returns a backend whose calls succeed with minimal results.
func nopBackend() *mock.Backend {
	return &mock.Backend{
		StartChatFn: func(context.Context) (finsight.ChatStart, error) {
			return finsight.ChatStart{SessionID: "sess-1"}, nil
		},
		SendChatFn: func(context.Context, string, string) (string, error) {
			return "", nil
		},
	}
}

// nopData returns a DashboardClient whose calls succeed with fixture data.
func nopData() *stubData {
	return &stubData{
		DashboardFn: func(context.Context) (finsight.Snapshot, error) {
			return testSnapshot(), nil
		},
		SyncTransactionsFn: func(context.Context, bool) (finsight.SyncResult, error) {
			return finsight.SyncResult{}, nil
		},
		ConfirmRecurringFn: func(context.Context, int, string) (string, error) {
			return "", nil
		},
		GenerateInsightFn: func(context.Context) (string, error) {
			return "", nil
		},
	}
}

func testSnapshot() finsight.Snapshot {
	return finsight.Snapshot{
		Profile: finsight.Profile{
			SavingsGoal:     500.00,
			GoalDescription: "Build a three month emergency fund",
			LastSync:        "2026-04-14T12:00:00Z",
		},
		Spending: finsight.Spending{
			TotalLast30Days: 2345.67,
			ByCategory: map[string]float64{
				"Food & Dining": 820.12,
				"Entertainment": 150.55,
			},
		},
		Forecast: finsight.Forecast{
			Period:                 finsight.ForecastPeriod{Start: "2026-04-16", End: "2026-05-15"},
			DeterministicSpend:     190.98,
			ProjectedDiscretionary: 912.30,
			TotalForecast:          1103.28,
			PaymentSchedule: []finsight.ScheduledPayment{
				{Date: "2026-04-20", Name: "Phone Bill", Amount: 45.00, Category: "Bills & Utilities"},
			},
			AvgDailyDiscretionary:    30.41,
			UnusualSpendingThreshold: 89.12,
		},
		Anomalies: finsight.AnomalySummary{Count: 2},
		RecentTransactions: []finsight.Transaction{
			{ID: 1, Description: "Whole Foods Market", Amount: 84.12, Date: "2026-04-15", Category: "Food & Dining"},
		},
		PendingConfirmations: []finsight.PendingConfirmation{
			{ID: 7, Description: "Spotify Premium", Amount: 9.99, Frequency: "monthly", Confidence: 0.92},
		},
		LatestInsight: &finsight.Insight{
			Text:      "You are on track this month.",
			Type:      finsight.InsightMonthlySummary,
			CreatedAt: "2026-04-13T12:00:00Z",
		},
	}
}

// initModel creates a model and sends a WindowSizeMsg to initialize the
// viewports.
func initModel(t *testing.T, backend finsight.Backend, data bt.DashboardClient) bt.Model {
	t.Helper()
	m := bt.New(backend, data, finsight.DefaultTheme())
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTUI_Teatest(t *testing.T) {
	t.Parallel()

	t.Run("overlay chat round trip", func(t *testing.T) {
		t.Parallel()

		backend := &mock.Backend{
			StartChatFn: func(context.Context) (finsight.ChatStart, error) {
				return finsight.ChatStart{
					SessionID: "sess-1",
					Initial:   "Hello! Here's a quick look at your finances.",
				}, nil
			},
			SendChatFn: func(_ context.Context, sessionID, message string) (string, error) {
				return "Your balance is $100", nil
			},
		}
		m := bt.New(backend, nopData(), finsight.DefaultTheme())

		tm := teatest.NewTestModel(t, m,
			teatest.WithInitialTermSize(80, 24),
		)

		// Open the overlay and start a new session explicitly; the
		// backend greeting appears once.
		tm.Send(keyRunes("o"))
		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlN})

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("Hello! Here's a quick look"))
		}, teatest.WithDuration(5*time.Second))

		tm.Type("What's my balance?")
		tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("> What's my balance?")) &&
				bytes.Contains(out, []byte("Your balance is $100"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

		fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
		final, ok := fm.(bt.Model)
		require.True(t, ok)
		assert.False(t, final.Sending())
		assert.NoError(t, final.Err())
	})

	t.Run("dashboard renders live backend data", func(t *testing.T) {
		t.Parallel()

		srv := demo.New(demo.WithFixture(demo.NewFixture(time.Date(2026, 4, 15, 12, 0, 0, 0, time.UTC))))
		ts := httptest.NewServer(srv)
		t.Cleanup(ts.Close)
		t.Cleanup(func() { _ = srv.Close() })

		client := api.New(api.WithBaseURL(ts.URL))
		m := bt.New(client, client, finsight.DefaultTheme())

		tm := teatest.NewTestModel(t, m,
			teatest.WithInitialTermSize(80, 24),
		)

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("$500.00")) &&
				bytes.Contains(out, []byte("Build a three month emergency fund"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(keyRunes("s"))

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("Synced"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
		tm.WaitFinished(t, teatest.WithFinalTimeout(5*time.Second))
	})
}
