package finsight

// Snapshot is the read-only dashboard aggregate served by the backend's
// dashboard endpoint. Field tags mirror the wire format; dates travel as
// ISO 8601 strings.
type Snapshot struct {
	Profile              Profile               `json:"profile"`
	Spending             Spending              `json:"spending"`
	Forecast             Forecast              `json:"forecast"`
	Anomalies            AnomalySummary        `json:"anomalies"`
	RecentTransactions   []Transaction         `json:"recent_transactions"`
	PendingConfirmations []PendingConfirmation `json:"pending_confirmations"`
	LatestInsight        *Insight              `json:"latest_insight"`
}

// Profile holds the user's savings goal and sync status.
type Profile struct {
	SavingsGoal     float64 `json:"savings_goal"`
	GoalDescription string  `json:"goal_description"`
	LastSync        string  `json:"last_sync,omitempty"`
}

// Spending summarizes the trailing 30 days.
type Spending struct {
	TotalLast30Days float64            `json:"total_last_30_days"`
	ByCategory      map[string]float64 `json:"by_category"`
}

// Forecast projects next month's spending from recurring payments plus
// recent discretionary averages.
type Forecast struct {
	Period                   ForecastPeriod     `json:"forecast_period"`
	DeterministicSpend       float64            `json:"deterministic_spend"`
	ProjectedDiscretionary   float64            `json:"projected_discretionary"`
	TotalForecast            float64            `json:"total_forecast"`
	PaymentSchedule          []ScheduledPayment `json:"payment_schedule"`
	AvgDailyDiscretionary    float64            `json:"avg_daily_discretionary"`
	UnusualSpendingThreshold float64            `json:"unusual_spending_threshold"`
}

// ForecastPeriod is the date range a Forecast covers.
type ForecastPeriod struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ScheduledPayment is one upcoming recurring payment. PaymentSchedule is
// ordered by date.
type ScheduledPayment struct {
	Date     string  `json:"date"`
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
}

// AnomalySummary reports unusual spending activity.
type AnomalySummary struct {
	Count     int               `json:"count"`
	Threshold SpendingThreshold `json:"threshold"`
	Recent    []Anomaly         `json:"recent"`
}

// SpendingThreshold marks the daily-spend level considered unusual
// (average plus two standard deviations).
type SpendingThreshold struct {
	AvgDailySpending float64 `json:"avg_daily_spending"`
	Threshold        float64 `json:"threshold"`
	Std              float64 `json:"std"`
}

// Anomaly is one day whose discretionary spend exceeded the rolling
// threshold.
type Anomaly struct {
	Date      string  `json:"date"`
	Amount    float64 `json:"amount"`
	Threshold float64 `json:"threshold"`
	Mean      float64 `json:"mean"`
	Std       float64 `json:"std"`
	ZScore    float64 `json:"z_score"`
}

// Transaction is one ledger entry.
type Transaction struct {
	ID          int     `json:"id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Category    string  `json:"category"`
	IsRecurring bool    `json:"is_recurring"`
	IsAnomaly   bool    `json:"is_anomaly"`
}

// Actions a user can take on a PendingConfirmation.
const (
	ActionConfirm = "confirm"
	ActionReject  = "reject"
)

// PendingConfirmation is an auto-detected recurring payment awaiting the
// user's confirm or reject decision.
type PendingConfirmation struct {
	ID          int     `json:"id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Frequency   string  `json:"frequency"`
	Confidence  float64 `json:"confidence"`
}

// Insight is an AI-generated note about the user's finances.
type Insight struct {
	Text      string `json:"text"`
	Type      string `json:"type"`
	CreatedAt string `json:"created_at"`
}

// Insight types produced by the backend.
const (
	InsightMonthlySummary = "monthly_summary"
	InsightAnomalyAlert   = "anomaly_alert"
	InsightSavingsTip     = "savings_tip"
	InsightForecast       = "forecast"
)

// SyncResult reports the outcome of a successful transaction sync.
type SyncResult struct {
	TransactionsAdded   int    `json:"transactions_added"`
	TransactionsUpdated int    `json:"transactions_updated"`
	SyncDate            string `json:"sync_date,omitempty"`
}
