// internal/models/session.go
package models

import "time"

type RunStatus string

const (
	RunStatusCompleted      RunStatus = "completed"
	RunStatusIntentFailed   RunStatus = "intent_failed"
	RunStatusQueryFailed    RunStatus = "query_failed"
	RunStatusAnalysisFailed RunStatus = "analysis_failed"
)

// RunRequest is one user message addressed to the team.
type RunRequest struct {
	Message   string `json:"message"`
	UserID    string `json:"user_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// MemberOutput records what one team member produced during a run.
type MemberOutput struct {
	Member     string `json:"member"`
	Status     string `json:"status"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// RunResponse is the team's answer to a RunRequest.
type RunResponse struct {
	RunID      string         `json:"run_id"`
	UserID     string         `json:"user_id"`
	SessionID  string         `json:"session_id"`
	Status     RunStatus      `json:"status"`
	Response   string         `json:"response"`
	Intent     *IntentResult  `json:"intent,omitempty"`
	Query      *Query         `json:"query,omitempty"`
	Analysis   *Analysis      `json:"analysis,omitempty"`
	Members    []MemberOutput `json:"members"`
	DurationMs int64          `json:"duration_ms"`
	StartedAt  time.Time      `json:"started_at"`
}

// Turn is a run as remembered by the session store.
type Turn struct {
	RunID    string    `json:"run_id"`
	Question string    `json:"question"`
	Response string    `json:"response"`
	Status   RunStatus `json:"status"`
	At       time.Time `json:"at"`
}

// TurnFromResponse condenses a run into a session turn.
func TurnFromResponse(question string, resp *RunResponse) Turn {
	return Turn{
		RunID:    resp.RunID,
		Question: question,
		Response: resp.Response,
		Status:   resp.Status,
		At:       resp.StartedAt.Add(time.Duration(resp.DurationMs) * time.Millisecond),
	}
}
