package demo

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/finsight/finsight"
)

// recurringBill is a monthly subscription or bill charged on a fixed day.
// Unconfirmed bills were auto-detected and await the user's decision; they
// appear in transaction history but not in the forecast schedule.
type recurringBill struct {
	name      string
	amount    float64
	category  string
	dueDay    int
	confirmed bool
}

// merchantProfile describes an everyday merchant: an amount range and how
// many times per week a purchase typically lands.
type merchantProfile struct {
	name     string
	min, max float64
	category string
	perWeek  float64
}

// outlierProfile is a big-ticket merchant used for the occasional unusual
// purchase.
type outlierProfile struct {
	name     string
	min, max float64
	category string
}

var demoBills = []recurringBill{
	{name: "Netflix Subscription", amount: 15.99, category: "Entertainment", dueDay: 15, confirmed: true},
	{name: "Spotify Premium", amount: 9.99, category: "Entertainment", dueDay: 10, confirmed: false},
	{name: "Gym Membership", amount: 50.00, category: "Fitness", dueDay: 1, confirmed: true},
	{name: "Internet Bill", amount: 79.99, category: "Bills & Utilities", dueDay: 5, confirmed: true},
	{name: "Phone Bill", amount: 45.00, category: "Bills & Utilities", dueDay: 20, confirmed: true},
}

var demoMerchants = []merchantProfile{
	{name: "Whole Foods", min: 30, max: 80, category: "Groceries", perWeek: 3},
	{name: "Starbucks", min: 5, max: 12, category: "Coffee Shops", perWeek: 5},
	{name: "Local Restaurant", min: 20, max: 50, category: "Restaurants", perWeek: 2},
	{name: "Uber", min: 10, max: 30, category: "Transportation", perWeek: 4},
	{name: "Amazon", min: 15, max: 150, category: "Shopping", perWeek: 1},
	{name: "Target", min: 25, max: 100, category: "Shopping", perWeek: 1},
	{name: "Gas Station", min: 40, max: 60, category: "Gas & Fuel", perWeek: 1},
}

var demoOutliers = []outlierProfile{
	{name: "Electronics Store", min: 300, max: 800, category: "Shopping"},
	{name: "Concert Tickets", min: 150, max: 300, category: "Entertainment"},
	{name: "Emergency Repair", min: 200, max: 500, category: "General Services"},
	{name: "Medical Visit", min: 150, max: 400, category: "Healthcare"},
}

const (
	historyDays   = 90
	forecastDays  = 30
	outlierChance = 0.05
	dateLayout    = "2006-01-02"
)

type ledgerEntry struct {
	when time.Time
	tx   finsight.Transaction
}

// Fixture is the demo backend's in-memory financial dataset: ninety days
// of generated transactions plus the derived aggregates the dashboard
// serves. Generation is seeded so every run produces the same ledger.
type Fixture struct {
	mu sync.Mutex

	now         time.Time
	rng         *rand.Rand
	nextID      int
	ledger      []ledgerEntry
	bills       []recurringBill
	pending     []finsight.PendingConfirmation
	insight     *finsight.Insight
	lastSync    time.Time
	savingsGoal float64
	goalNote    string
}

// NewFixture generates a deterministic ledger covering the ninety days up
// to now.
func NewFixture(now time.Time) *Fixture {
	f := &Fixture{
		now:         now,
		rng:         rand.New(rand.NewSource(1)),
		nextID:      1,
		bills:       append([]recurringBill(nil), demoBills...),
		savingsGoal: 500.00,
		goalNote:    "Build a three month emergency fund",
		lastSync:    now.Add(-24 * time.Hour),
	}

	for i := historyDays - 1; i >= 0; i-- {
		f.generateDay(now.AddDate(0, 0, -i))
	}

	f.pending = []finsight.PendingConfirmation{
		{ID: 1, Description: "Spotify Premium", Amount: 9.99, Frequency: "monthly", Confidence: 0.92},
	}
	f.insight = &finsight.Insight{
		Text: "Your recurring bills total about $200 a month. Coffee runs and " +
			"restaurant visits are the biggest discretionary draws; trimming two " +
			"coffee-shop stops a week would free roughly $20 toward your savings goal.",
		Type:      finsight.InsightMonthlySummary,
		CreatedAt: now.AddDate(0, 0, -2).Format(time.RFC3339),
	}
	return f
}

// generateDay appends the day's transactions: any bills due, a draw of
// everyday purchases, and a 5% chance of one big-ticket outlier. Caller
// holds the lock during construction or mutation.
func (f *Fixture) generateDay(day time.Time) int {
	added := 0
	for _, b := range f.bills {
		if day.Day() == b.dueDay {
			f.appendTx(day, b.name, b.amount, b.category, true, false)
			added++
		}
	}
	for _, m := range demoMerchants {
		if f.rng.Float64() < m.perWeek/7 {
			amount := roundCents(m.min + f.rng.Float64()*(m.max-m.min))
			f.appendTx(day, m.name, amount, m.category, false, false)
			added++
		}
	}
	if f.rng.Float64() < outlierChance {
		o := demoOutliers[f.rng.Intn(len(demoOutliers))]
		amount := roundCents(o.min + f.rng.Float64()*(o.max-o.min))
		f.appendTx(day, o.name, amount, o.category, false, true)
		added++
	}
	return added
}

func (f *Fixture) appendTx(day time.Time, name string, amount float64, category string, recurring, anomaly bool) {
	f.ledger = append(f.ledger, ledgerEntry{
		when: day,
		tx: finsight.Transaction{
			ID:          f.nextID,
			Description: name,
			Amount:      amount,
			Date:        day.Format(dateLayout),
			Category:    category,
			IsRecurring: recurring,
			IsAnomaly:   anomaly,
		},
	})
	f.nextID++
}

// Snapshot assembles the dashboard aggregate from the current ledger.
func (f *Fixture) Snapshot() finsight.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	cutoff := f.now.AddDate(0, 0, -30)

	var total float64
	byCategory := make(map[string]float64)
	for _, e := range f.ledger {
		if e.when.Before(cutoff) {
			continue
		}
		total += e.tx.Amount
		byCategory[e.tx.Category] += e.tx.Amount
	}
	for k, v := range byCategory {
		byCategory[k] = roundCents(v)
	}

	stats := f.dailyStats()
	anomalies := f.detectAnomalies(stats)

	recent := make([]finsight.Transaction, 0, 10)
	for i := len(f.ledger) - 1; i >= 0 && len(recent) < 10; i-- {
		recent = append(recent, f.ledger[i].tx)
	}

	snap := finsight.Snapshot{
		Profile: finsight.Profile{
			SavingsGoal:     f.savingsGoal,
			GoalDescription: f.goalNote,
		},
		Spending: finsight.Spending{
			TotalLast30Days: roundCents(total),
			ByCategory:      byCategory,
		},
		Forecast:             f.forecast(stats),
		Anomalies:            anomalies,
		RecentTransactions:   recent,
		PendingConfirmations: append([]finsight.PendingConfirmation(nil), f.pending...),
	}
	if !f.lastSync.IsZero() {
		snap.Profile.LastSync = f.lastSync.Format(time.RFC3339)
	}
	if f.insight != nil {
		insight := *f.insight
		snap.LatestInsight = &insight
	}
	return snap
}

// dailyTotals holds discretionary spend summed per day, with the mean and
// population standard deviation across the ledger's days.
type dailyTotals struct {
	days   []string
	totals map[string]float64
	mean   float64
	std    float64
}

func (f *Fixture) dailyStats() dailyTotals {
	totals := make(map[string]float64)
	var days []string
	for _, e := range f.ledger {
		if e.tx.IsRecurring {
			continue
		}
		key := e.tx.Date
		if _, ok := totals[key]; !ok {
			days = append(days, key)
		}
		totals[key] += e.tx.Amount
	}
	sort.Strings(days)

	var sum float64
	for _, d := range days {
		sum += totals[d]
	}
	mean := 0.0
	if len(days) > 0 {
		mean = sum / float64(len(days))
	}
	var variance float64
	for _, d := range days {
		diff := totals[d] - mean
		variance += diff * diff
	}
	std := 0.0
	if len(days) > 0 {
		std = math.Sqrt(variance / float64(len(days)))
	}
	return dailyTotals{days: days, totals: totals, mean: mean, std: std}
}

// detectAnomalies flags days whose discretionary spend exceeds the mean
// plus two standard deviations.
func (f *Fixture) detectAnomalies(stats dailyTotals) finsight.AnomalySummary {
	threshold := stats.mean + 2*stats.std

	var found []finsight.Anomaly
	for _, day := range stats.days {
		amount := stats.totals[day]
		if amount <= threshold {
			continue
		}
		z := 0.0
		if stats.std > 0 {
			z = (amount - stats.mean) / stats.std
		}
		found = append(found, finsight.Anomaly{
			Date:      day,
			Amount:    roundCents(amount),
			Threshold: roundCents(threshold),
			Mean:      roundCents(stats.mean),
			Std:       roundCents(stats.std),
			ZScore:    math.Round(z*100) / 100,
		})
	}

	// Most recent first, capped at five.
	recent := make([]finsight.Anomaly, 0, 5)
	for i := len(found) - 1; i >= 0 && len(recent) < 5; i-- {
		recent = append(recent, found[i])
	}

	return finsight.AnomalySummary{
		Count: len(found),
		Threshold: finsight.SpendingThreshold{
			AvgDailySpending: roundCents(stats.mean),
			Threshold:        roundCents(threshold),
			Std:              roundCents(stats.std),
		},
		Recent: recent,
	}
}

// forecast projects the next thirty days: confirmed bills land on their
// due days, discretionary spend continues at its recent daily average.
func (f *Fixture) forecast(stats dailyTotals) finsight.Forecast {
	start := f.now.AddDate(0, 0, 1)
	end := f.now.AddDate(0, 0, forecastDays)

	var schedule []finsight.ScheduledPayment
	var deterministic float64
	for _, b := range f.bills {
		if !b.confirmed {
			continue
		}
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			if d.Day() != b.dueDay {
				continue
			}
			schedule = append(schedule, finsight.ScheduledPayment{
				Date:     d.Format(dateLayout),
				Name:     b.name,
				Amount:   b.amount,
				Category: b.category,
			})
			deterministic += b.amount
		}
	}
	sort.Slice(schedule, func(i, j int) bool {
		if schedule[i].Date != schedule[j].Date {
			return schedule[i].Date < schedule[j].Date
		}
		return schedule[i].Name < schedule[j].Name
	})

	avgDaily := roundCents(stats.mean)
	projected := roundCents(avgDaily * forecastDays)

	return finsight.Forecast{
		Period: finsight.ForecastPeriod{
			Start: start.Format(dateLayout),
			End:   end.Format(dateLayout),
		},
		DeterministicSpend:       roundCents(deterministic),
		ProjectedDiscretionary:   projected,
		TotalForecast:            roundCents(deterministic + projected),
		PaymentSchedule:          schedule,
		AvgDailyDiscretionary:    avgDaily,
		UnusualSpendingThreshold: roundCents(stats.mean + 2*stats.std),
	}
}

// ContextText renders the user's financial picture as the plain-text
// context block handed to the responder.
func (f *Fixture) ContextText() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	cutoff := f.now.AddDate(0, 0, -30)
	var total float64
	byCategory := make(map[string]float64)
	for _, e := range f.ledger {
		if e.when.Before(cutoff) {
			continue
		}
		total += e.tx.Amount
		byCategory[e.tx.Category] += e.tx.Amount
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("Savings goal: $%.2f", f.savingsGoal))
	if f.goalNote != "" {
		lines = append(lines, "Goal note: "+f.goalNote)
	}
	lines = append(lines, fmt.Sprintf("Total spending (period): $%.2f", total))

	if len(byCategory) > 0 {
		type catAmount struct {
			name   string
			amount float64
		}
		cats := make([]catAmount, 0, len(byCategory))
		for k, v := range byCategory {
			cats = append(cats, catAmount{name: k, amount: v})
		}
		sort.Slice(cats, func(i, j int) bool {
			if cats[i].amount != cats[j].amount {
				return cats[i].amount > cats[j].amount
			}
			return cats[i].name < cats[j].name
		})
		lines = append(lines, "Category breakdown:")
		for _, c := range cats {
			lines = append(lines, fmt.Sprintf(" - %s: $%.2f", c.name, c.amount))
		}
	}

	confirmed := make([]recurringBill, 0, len(f.bills))
	for _, b := range f.bills {
		if b.confirmed {
			confirmed = append(confirmed, b)
		}
	}
	if len(confirmed) > 0 {
		lines = append(lines, "Recurring payments:")
		for _, b := range confirmed {
			lines = append(lines, fmt.Sprintf(" - %s: $%.2f (monthly)", b.name, b.amount))
		}
	}

	stats := f.dailyStats()
	threshold := stats.mean + 2*stats.std
	count := 0
	for _, day := range stats.days {
		if stats.totals[day] > threshold {
			count++
		}
	}
	lines = append(lines, fmt.Sprintf("Anomalies detected: %d", count))

	return strings.Join(lines, "\n")
}

// MarkSynced records a sync and generates the day's purchases. Without
// force a same-day repeat is a no-op, mirroring an incremental sync that
// finds nothing new.
func (f *Fixture) MarkSynced(t time.Time, force bool) (added, updated int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sameDay := f.lastSync.Format(dateLayout) == t.Format(dateLayout)
	if sameDay && !force {
		f.lastSync = t
		return 0, 0
	}

	added = f.generateDay(t)
	f.lastSync = t
	return added, 0
}

// LastSync reports when the ledger last synced.
func (f *Fixture) LastSync() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastSync
}

// ResolvePending removes a pending recurring payment. Confirming adds the
// bill to the forecast schedule; rejecting leaves it out for good.
func (f *Fixture) ResolvePending(id int, confirm bool) (finsight.PendingConfirmation, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, p := range f.pending {
		if p.ID != id {
			continue
		}
		f.pending = append(f.pending[:i], f.pending[i+1:]...)
		if confirm {
			for j := range f.bills {
				if f.bills[j].name == p.Description {
					f.bills[j].confirmed = true
				}
			}
		}
		return p, true
	}
	return finsight.PendingConfirmation{}, false
}

// SetInsight replaces the latest stored insight.
func (f *Fixture) SetInsight(text, insightType string, t time.Time) finsight.Insight {
	f.mu.Lock()
	defer f.mu.Unlock()

	insight := finsight.Insight{
		Text:      text,
		Type:      insightType,
		CreatedAt: t.Format(time.RFC3339),
	}
	f.insight = &insight
	return insight
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
