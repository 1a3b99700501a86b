package bubbletea

import (
	"fmt"
	"sort"
	"strings"

	rw "github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

func (m Model) overlayView() string {
	return strings.Join([]string{
		m.styles.Title.Render("FinSIGHT Assistant"),
		"",
		m.Viewport.View(),
		m.Input.View(),
		m.statusLine(),
	}, "\n")
}

func (m Model) dashboardView() string {
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		if i == m.tab {
			tabs[i] = m.styles.TabActive.Render(name)
		} else {
			tabs[i] = m.styles.TabInactive.Render(name)
		}
	}

	var body string
	switch m.tab {
	case 1:
		body = m.forecastBody(m.width)
	case 2:
		body = m.transactionsBody()
	default:
		body = m.overviewBody(m.width)
	}

	widgetRows := 0
	if m.showWidget {
		widgetRows = widgetHeight + 2 // separator, viewport, input
	}
	bodyHeight := m.height - 3 - widgetRows
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	sections := []string{
		strings.Join(tabs, "  "),
		"",
		fitHeight(body, bodyHeight),
	}
	if m.showWidget {
		sections = append(sections,
			m.styles.Muted.Render(strings.Repeat("─", max(m.width, 1))),
			m.WidgetViewport.View(),
			m.Input.View(),
		)
	}
	sections = append(sections, m.statusLine())
	return strings.Join(sections, "\n")
}

func (m Model) statusLine() string {
	switch {
	case m.err != nil:
		return m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err))
	case m.syncing:
		return m.styles.Muted.Render("Syncing transactions...")
	case m.generating:
		return m.styles.Muted.Render("Generating insight...")
	case m.sending:
		return m.styles.Muted.Render("Thinking...")
	case m.notice != "":
		return m.styles.Success.Render(m.notice)
	case m.chatVisible():
		return m.styles.Muted.Render("enter: send · ctrl+n: new session · esc: close · ctrl+c: quit")
	default:
		return m.styles.Muted.Render("tab: switch view · c: chat · o: assistant · s: sync · i: insight · r: refresh · q: quit")
	}
}

func (m Model) overviewBody(width int) string {
	snap := m.snapshot
	if snap == nil {
		return m.styles.Muted.Render("Loading dashboard...")
	}

	var b strings.Builder

	goal := fmt.Sprintf("$%.2f a month", snap.Profile.SavingsGoal)
	if snap.Profile.GoalDescription != "" {
		goal += m.styles.Muted.Render("  " + snap.Profile.GoalDescription)
	}
	b.WriteString(row("Savings goal", goal))
	if snap.Profile.LastSync != "" {
		b.WriteString(row("Last sync", snap.Profile.LastSync))
	}
	b.WriteString(row("Spent (30d)", fmt.Sprintf("$%.2f", snap.Spending.TotalLast30Days)))

	cats := topCategories(snap.Spending.ByCategory, 5)
	if len(cats) > 0 {
		b.WriteString("\n" + m.styles.Accent.Render("Top categories") + "\n")
		maxAmount := cats[0].amount
		for _, c := range cats {
			b.WriteString(fmt.Sprintf("  %s %9s  %s\n",
				cell(c.name, 20),
				fmt.Sprintf("$%.2f", c.amount),
				bar(c.amount, maxAmount, 16)))
		}
	}

	if len(snap.PendingConfirmations) > 0 {
		b.WriteString("\n" + m.styles.Warning.Render("Pending confirmations") + "\n")
		for _, p := range snap.PendingConfirmations {
			b.WriteString(fmt.Sprintf("  %s %9s  %s, %.0f%% confidence\n",
				cell(p.Description, 20),
				fmt.Sprintf("$%.2f", p.Amount),
				p.Frequency, p.Confidence*100))
		}
		b.WriteString(m.styles.Muted.Render("  y: confirm · x: reject") + "\n")
	}

	if snap.LatestInsight != nil {
		b.WriteString("\n" + m.styles.Accent.Render("Latest insight") + "\n")
		w := width - 2
		if w > 76 {
			w = 76
		}
		if w < 20 {
			w = 20
		}
		for _, line := range strings.Split(wrapText(snap.LatestInsight.Text, w), "\n") {
			b.WriteString("  " + line + "\n")
		}
	}

	if snap.Anomalies.Count > 0 {
		b.WriteString("\n" + m.styles.Warning.Render(
			fmt.Sprintf("%d unusual spending days in the last month", snap.Anomalies.Count)) + "\n")
	}

	return b.String()
}

func (m Model) forecastBody(width int) string {
	snap := m.snapshot
	if snap == nil {
		return m.styles.Muted.Render("Loading dashboard...")
	}
	f := snap.Forecast

	var b strings.Builder
	b.WriteString(m.styles.Accent.Render(
		fmt.Sprintf("Forecast %s to %s", f.Period.Start, f.Period.End)) + "\n\n")
	b.WriteString(row("Recurring", fmt.Sprintf("$%.2f", f.DeterministicSpend)))
	b.WriteString(row("Discretionary",
		fmt.Sprintf("$%.2f  (avg $%.2f a day)", f.ProjectedDiscretionary, f.AvgDailyDiscretionary)))
	b.WriteString(row("Total", fmt.Sprintf("$%.2f", f.TotalForecast)))

	if len(f.PaymentSchedule) > 0 {
		b.WriteString("\n" + m.styles.Accent.Render("Payment schedule") + "\n")
		for _, p := range f.PaymentSchedule {
			b.WriteString(fmt.Sprintf("  %s  %s %9s  %s\n",
				p.Date,
				cell(p.Name, 24),
				fmt.Sprintf("$%.2f", p.Amount),
				m.styles.Muted.Render(p.Category)))
		}
	}

	b.WriteString("\n" + m.styles.Muted.Render(
		fmt.Sprintf("Days over $%.2f count as unusual.", f.UnusualSpendingThreshold)))
	return b.String()
}

func (m Model) transactionsBody() string {
	snap := m.snapshot
	if snap == nil {
		return m.styles.Muted.Render("Loading dashboard...")
	}

	var b strings.Builder
	b.WriteString(m.styles.Accent.Render("Recent transactions") + "\n")
	for _, tx := range snap.RecentTransactions {
		line := fmt.Sprintf("  %s  %s %s %9s",
			tx.Date,
			cell(tx.Description, 24),
			cell(tx.Category, 18),
			fmt.Sprintf("$%.2f", tx.Amount))
		switch {
		case tx.IsAnomaly:
			line += "  " + m.styles.Warning.Render("unusual")
		case tx.IsRecurring:
			line += "  " + m.styles.Muted.Render("recurring")
		}
		b.WriteString(line + "\n")
	}
	if len(snap.RecentTransactions) == 0 {
		b.WriteString(m.styles.Muted.Render("  No transactions yet. Press s to sync.") + "\n")
	}
	return b.String()
}

func row(label, value string) string {
	return fmt.Sprintf("%s %s\n", rw.FillRight(label, 14), value)
}

type categoryAmount struct {
	name   string
	amount float64
}

// topCategories returns the n largest categories, largest first. Ties
// break by name so the order is stable.
func topCategories(byCategory map[string]float64, n int) []categoryAmount {
	cats := make([]categoryAmount, 0, len(byCategory))
	for name, amount := range byCategory {
		cats = append(cats, categoryAmount{name: name, amount: amount})
	}
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].amount != cats[j].amount {
			return cats[i].amount > cats[j].amount
		}
		return cats[i].name < cats[j].name
	})
	if len(cats) > n {
		cats = cats[:n]
	}
	return cats
}

func bar(amount, maxAmount float64, width int) string {
	if maxAmount <= 0 {
		return ""
	}
	n := int(amount / maxAmount * float64(width))
	if n < 1 {
		n = 1
	}
	return strings.Repeat("█", n)
}

// cell fits s to exactly w display cells, truncating with an ellipsis or
// padding with spaces.
func cell(s string, w int) string {
	if rw.StringWidth(s) > w {
		return rw.Truncate(s, w, "…")
	}
	return rw.FillRight(s, w)
}

// wrapText word-wraps s to at most w display cells per line, keeping
// paragraph breaks.
func wrapText(s string, w int) string {
	if w <= 0 {
		return s
	}
	var out []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := words[0]
		for _, word := range words[1:] {
			if uniseg.StringWidth(line)+1+uniseg.StringWidth(word) > w {
				out = append(out, line)
				line = word
				continue
			}
			line += " " + word
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// fitHeight trims or pads s to exactly h lines.
func fitHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > h {
		lines = lines[:h]
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
