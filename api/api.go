// Package api implements [finsight.Backend] for the FinSIGHT dashboard
// HTTP API.
//
// The backend speaks Django-style JSON: successful responses carry the
// payload directly, failures carry an {"error": ...} envelope (or
// {"success": false, "error": ...} for sync-style operations). Mutating
// requests are CSRF-protected; the client reads the csrftoken cookie
// from its jar and echoes it in the X-CSRFToken header the way the
// browser dashboard does.
package api

const (
	defaultBaseURL = "http://localhost:8000"

	chatStartPath   = "/api/chat/start/"
	chatMessagePath = "/api/chat/%s/message/"
	syncPath        = "/api/sync-transactions/"
	dashboardPath   = "/api/dashboard/"
	confirmPath     = "/api/recurring/%d/confirm/"
	insightsPath    = "/api/insights/generate/"

	csrfCookieName = "csrftoken"
	csrfHeaderName = "X-CSRFToken"
)

// chatStartResponse is the body of a successful session start.
type chatStartResponse struct {
	SessionID string `json:"session_id"`
	Initial   string `json:"initial,omitempty"`
}

type chatMessageRequest struct {
	Message string `json:"message"`
}

type chatMessageResponse struct {
	Response string `json:"response"`
}

type syncRequest struct {
	ForceSync bool `json:"force_sync"`
}

type syncResponse struct {
	Success             bool   `json:"success"`
	Error               string `json:"error,omitempty"`
	TransactionsAdded   int    `json:"transactions_added,omitempty"`
	TransactionsUpdated int    `json:"transactions_updated,omitempty"`
	SyncDate            string `json:"sync_date,omitempty"`
}

type confirmRequest struct {
	Action string `json:"action"`
}

type confirmResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type insightResponse struct {
	Success bool   `json:"success"`
	Insight string `json:"insight,omitempty"`
	Error   string `json:"error,omitempty"`
}
