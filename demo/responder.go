package demo

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/finsight/finsight"
	"github.com/finsight/finsight/demo/history"
)

// Responder produces the assistant's side of a conversation. The demo
// ships two implementations: a scripted one that answers from the fixture
// dataset and a Gemini-backed one for live replies.
type Responder interface {
	// Opening returns the greeting summary shown when a session starts.
	Opening(ctx context.Context, contextText string) (string, error)

	// Reply answers the latest user message given the conversation window.
	Reply(ctx context.Context, contextText string, window []history.Record) (string, error)

	// Insight writes a short financial insight from the user context.
	Insight(ctx context.Context, contextText string) (string, error)
}

// ScriptResponder answers from the fixture dataset with canned routing on
// the user's wording. It needs no API key, which keeps the demo runnable
// offline.
type ScriptResponder struct {
	fixture *Fixture
}

var _ Responder = (*ScriptResponder)(nil)

// NewScriptResponder returns a ScriptResponder reading from fixture.
func NewScriptResponder(fixture *Fixture) *ScriptResponder {
	return &ScriptResponder{fixture: fixture}
}

// Opening implements Responder.
func (r *ScriptResponder) Opening(ctx context.Context, contextText string) (string, error) {
	snap := r.fixture.Snapshot()

	topCat, topAmount := topCategory(snap.Spending.ByCategory)
	var b strings.Builder
	b.WriteString("Here's a quick look at your finances:\n\n")
	fmt.Fprintf(&b, "- You spent **$%.2f** over the last 30 days.\n", snap.Spending.TotalLast30Days)
	if topCat != "" {
		fmt.Fprintf(&b, "- Your biggest category was **%s** at $%.2f.\n", topCat, topAmount)
	}
	fmt.Fprintf(&b, "- Recurring bills add up to $%.2f next month.\n", snap.Forecast.DeterministicSpend)
	if snap.Anomalies.Count > 0 {
		fmt.Fprintf(&b, "- I spotted %d unusually expensive days recently.\n", snap.Anomalies.Count)
	}
	b.WriteString("\nA couple of suggestions:\n\n")
	fmt.Fprintf(&b, "1. Keep daily spending under $%.2f to stay on your usual pace.\n", snap.Forecast.AvgDailyDiscretionary)
	fmt.Fprintf(&b, "2. Put aside $%.2f this month to hit your savings goal.\n\n", snap.Profile.SavingsGoal)
	b.WriteString("Ask me about your forecast, categories, or anything unusual.")
	return b.String(), nil
}

// Reply implements Responder.
func (r *ScriptResponder) Reply(ctx context.Context, contextText string, window []history.Record) (string, error) {
	question := lastUserText(window)
	lower := strings.ToLower(question)

	switch {
	case containsAny(lower, "forecast", "next month", "upcoming", "project"):
		return r.forecastReply(), nil
	case containsAny(lower, "anomal", "unusual", "weird", "spike"):
		return r.anomalyReply(), nil
	case containsAny(lower, "recurring", "subscription", "bill"):
		return r.recurringReply(), nil
	case containsAny(lower, "categor", "spend", "spent", "where"):
		return r.categoryReply(), nil
	case containsAny(lower, "save", "saving", "goal"):
		return r.savingsReply(), nil
	default:
		return r.summaryReply(), nil
	}
}

// Insight implements Responder.
func (r *ScriptResponder) Insight(ctx context.Context, contextText string) (string, error) {
	snap := r.fixture.Snapshot()
	topCat, topAmount := topCategory(snap.Spending.ByCategory)
	text := fmt.Sprintf(
		"You spent $%.2f over the last 30 days, led by %s at $%.2f. "+
			"With $%.2f in bills already scheduled for next month, keeping "+
			"discretionary spending near $%.2f a day leaves room for your "+
			"$%.2f savings goal.",
		snap.Spending.TotalLast30Days, topCat, topAmount,
		snap.Forecast.DeterministicSpend, snap.Forecast.AvgDailyDiscretionary,
		snap.Profile.SavingsGoal,
	)
	return text, nil
}

func (r *ScriptResponder) forecastReply() string {
	snap := r.fixture.Snapshot()
	fc := snap.Forecast

	var b strings.Builder
	fmt.Fprintf(&b, "For %s through %s I project **$%.2f** in total spending: "+
		"$%.2f in scheduled bills plus about $%.2f of everyday purchases.\n\n",
		fc.Period.Start, fc.Period.End, fc.TotalForecast,
		fc.DeterministicSpend, fc.ProjectedDiscretionary)
	if len(fc.PaymentSchedule) > 0 {
		b.WriteString("| Date | Payment | Amount |\n| --- | --- | --- |\n")
		for _, p := range fc.PaymentSchedule {
			fmt.Fprintf(&b, "| %s | %s | $%.2f |\n", p.Date, p.Name, p.Amount)
		}
	}
	return b.String()
}

func (r *ScriptResponder) anomalyReply() string {
	snap := r.fixture.Snapshot()
	an := snap.Anomalies

	if an.Count == 0 {
		return fmt.Sprintf("Nothing unusual lately. Your daily spending has stayed "+
			"under the $%.2f threshold.", an.Threshold.Threshold)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found **%d** days with unusually high spending. Anything over "+
		"$%.2f a day stands out against your $%.2f average.\n\n",
		an.Count, an.Threshold.Threshold, an.Threshold.AvgDailySpending)
	b.WriteString("| Date | Spent | Z-score |\n| --- | --- | --- |\n")
	for _, a := range an.Recent {
		fmt.Fprintf(&b, "| %s | $%.2f | %.2f |\n", a.Date, a.Amount, a.ZScore)
	}
	return b.String()
}

func (r *ScriptResponder) recurringReply() string {
	snap := r.fixture.Snapshot()

	seen := make(map[string]finsight.ScheduledPayment)
	var names []string
	for _, p := range snap.Forecast.PaymentSchedule {
		if _, ok := seen[p.Name]; !ok {
			names = append(names, p.Name)
		}
		seen[p.Name] = p
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "You have %d recurring payments totaling $%.2f a month:\n\n",
		len(names), snap.Forecast.DeterministicSpend)
	b.WriteString("| Payment | Amount | Next due |\n| --- | --- | --- |\n")
	for _, name := range names {
		p := seen[name]
		fmt.Fprintf(&b, "| %s | $%.2f | %s |\n", p.Name, p.Amount, p.Date)
	}
	if len(snap.PendingConfirmations) > 0 {
		fmt.Fprintf(&b, "\n%d detected subscription is still waiting for your confirmation.",
			len(snap.PendingConfirmations))
	}
	return b.String()
}

func (r *ScriptResponder) categoryReply() string {
	snap := r.fixture.Snapshot()

	type catAmount struct {
		name   string
		amount float64
	}
	cats := make([]catAmount, 0, len(snap.Spending.ByCategory))
	for k, v := range snap.Spending.ByCategory {
		cats = append(cats, catAmount{name: k, amount: v})
	}
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].amount != cats[j].amount {
			return cats[i].amount > cats[j].amount
		}
		return cats[i].name < cats[j].name
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Over the last 30 days you spent **$%.2f**. By category:\n\n",
		snap.Spending.TotalLast30Days)
	b.WriteString("| Category | Amount |\n| --- | --- |\n")
	for _, c := range cats {
		fmt.Fprintf(&b, "| %s | $%.2f |\n", c.name, c.amount)
	}
	return b.String()
}

func (r *ScriptResponder) savingsReply() string {
	snap := r.fixture.Snapshot()
	headroom := snap.Forecast.AvgDailyDiscretionary * 30

	var b strings.Builder
	fmt.Fprintf(&b, "Your goal is **$%.2f** a month", snap.Profile.SavingsGoal)
	if snap.Profile.GoalDescription != "" {
		fmt.Fprintf(&b, " (%s)", strings.ToLower(snap.Profile.GoalDescription[:1])+snap.Profile.GoalDescription[1:])
	}
	b.WriteString(".\n\n")
	fmt.Fprintf(&b, "- Everyday spending runs about $%.2f a month.\n", headroom)
	fmt.Fprintf(&b, "- Cutting it by 10%% frees $%.2f.\n", headroom*0.10)
	if len(snap.PendingConfirmations) > 0 {
		b.WriteString("- Reviewing your pending subscription could trim your bills too.")
	} else {
		fmt.Fprintf(&b, "- Recurring bills sit at $%.2f, so the rest is yours to direct.", snap.Forecast.DeterministicSpend)
	}
	return b.String()
}

func (r *ScriptResponder) summaryReply() string {
	snap := r.fixture.Snapshot()
	topCat, topAmount := topCategory(snap.Spending.ByCategory)

	var b strings.Builder
	fmt.Fprintf(&b, "Over the last 30 days you spent **$%.2f**", snap.Spending.TotalLast30Days)
	if topCat != "" {
		fmt.Fprintf(&b, ", mostly on %s ($%.2f)", topCat, topAmount)
	}
	fmt.Fprintf(&b, ". Next month's forecast is $%.2f.\n\nTry asking about your "+
		"*forecast*, *categories*, *recurring bills*, or *unusual spending*.",
		snap.Forecast.TotalForecast)
	return b.String()
}

func lastUserText(window []history.Record) string {
	for i := len(window) - 1; i >= 0; i-- {
		if window[i].Role == finsight.RoleUser {
			return window[i].Text
		}
	}
	return ""
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func topCategory(byCategory map[string]float64) (string, float64) {
	var name string
	var amount float64
	for k, v := range byCategory {
		if v > amount || (v == amount && (name == "" || k < name)) {
			name, amount = k, v
		}
	}
	return name, amount
}
