// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"survey-analyst/internal/common/validation"
	"survey-analyst/internal/intent"
	"survey-analyst/internal/models"
	"survey-analyst/internal/sqlgen"
	"survey-analyst/internal/team"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error   string                       `json:"error"`
	Code    string                       `json:"code,omitempty"`
	Details []validation.ValidationError `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: msg, Code: code})
}

// readValidated reads the body, checks it against schema and decodes it into
// out. It writes the 400 response itself and reports false on failure.
func readValidated(w http.ResponseWriter, r *http.Request, schema *validation.Schema, out interface{}) bool {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return false
	}
	report := schema.ValidateJSON(raw)
	if !report.Valid {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:   strings.Join(report.GetErrorMessages(), "; "),
			Code:    "VALIDATION_FAILED",
			Details: report.Errors,
		})
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return false
	}
	return true
}

func (a *API) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (a *API) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	names := make([]string, 0, len(a.checks))
	for name := range a.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	results := make(map[string]string, len(names))
	for _, name := range names {
		if err := a.checks[name](ctx); err != nil {
			status = http.StatusServiceUnavailable
			results[name] = err.Error()
			a.logger.Warn("readiness check failed", map[string]interface{}{
				"check": name,
				"error": err.Error(),
			})
			continue
		}
		results[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	writeJSON(w, status, map[string]interface{}{
		"status": state,
		"checks": results,
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (a *API) describeTeam(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":        a.team.Name(),
		"description": a.team.Description(),
		"members":     a.team.Members(),
	})
}

func (a *API) runTeam(w http.ResponseWriter, r *http.Request) {
	var req models.RunRequest
	if !readValidated(w, r, runRequestSchema, &req) {
		return
	}

	resp, err := a.team.Run(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, resp)
	case errors.Is(err, team.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "EMPTY_MESSAGE", "message must not be blank")
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, sqlgen.ErrQueryTimeout):
		if resp != nil {
			writeJSON(w, http.StatusGatewayTimeout, resp)
			return
		}
		writeError(w, http.StatusGatewayTimeout, "TIMEOUT", err.Error())
	case errors.Is(err, team.ErrQueryFailed) && resp != nil:
		writeJSON(w, http.StatusBadGateway, resp)
	case errors.Is(err, team.ErrAnalysisFailed) && resp != nil:
		writeJSON(w, http.StatusOK, resp)
	case resp != nil:
		writeJSON(w, http.StatusInternalServerError, resp)
	default:
		a.logger.Error("team run failed", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

func (a *API) resolveIntent(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if !readValidated(w, r, questionRequestSchema, &req) {
		return
	}

	res, err := a.team.ResolveIntent(r.Context(), strings.TrimSpace(req.Question))
	if err != nil || res.Failed() {
		if res == nil || !res.Failed() {
			res = models.ErrorIntent(err.Error())
		}
		writeJSON(w, http.StatusUnprocessableEntity, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// validateIntent checks an arbitrary document against the intent contract.
func (a *API) validateIntent(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	res, report := intent.ValidateContract(raw)
	body := map[string]interface{}{
		"valid":  report.Valid,
		"errors": report.Errors,
	}
	if res != nil {
		body["intent"] = res
	}
	writeJSON(w, http.StatusOK, body)
}

func (a *API) sessionHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	turns, err := a.team.History(r.Context(), sessionID)
	if err != nil {
		a.logger.Error("session history failed", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		writeError(w, http.StatusInternalServerError, "SESSION_STORE_FAILED", err.Error())
		return
	}
	if turns == nil {
		turns = []models.Turn{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"turns":      turns,
	})
}

// startWorkflow hands the question to the BPMN process instead of running
// the team in-process.
func (a *API) startWorkflow(w http.ResponseWriter, r *http.Request) {
	if a.workflow == nil {
		writeError(w, http.StatusServiceUnavailable, "WORKFLOW_DISABLED", "workflow engine is not enabled")
		return
	}
	var req questionRequest
	if !readValidated(w, r, questionRequestSchema, &req) {
		return
	}

	key, err := a.workflow.StartProcess(r.Context(), a.processID, map[string]interface{}{
		"question": strings.TrimSpace(req.Question),
	})
	if err != nil {
		a.logger.Error("failed to start process", map[string]interface{}{
			"processId": a.processID,
			"error":     err.Error(),
		})
		writeError(w, http.StatusBadGateway, "WORKFLOW_START_FAILED", err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"process_id":           a.processID,
		"process_instance_key": key,
	})
}
