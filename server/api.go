package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hupe1980/salesmesh/notify"
	"github.com/hupe1980/salesmesh/runner"
	"github.com/hupe1980/salesmesh/sales"
)

func (s *Server) registerAPI(mux *http.ServeMux) {
	// Health
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)

	// Intake
	mux.HandleFunc("POST /api/research", s.handleResearch)
	mux.HandleFunc("POST /api/proposal", s.handleProposal)

	// Runs
	mux.HandleFunc("GET /api/runs", s.listRuns)
	mux.HandleFunc("GET /api/runs/{id}", s.getRun)
	mux.HandleFunc("GET /api/runs/{id}/report", s.getRunReport)
	mux.HandleFunc("POST /api/runs/{id}/cancel", s.cancelRun)

	// System
	mux.HandleFunc("GET /api/config", s.getConfig)
	mux.HandleFunc("POST /api/integrations/test", s.testIntegrations)
}

func (s *Server) serviceName() string {
	return fmt.Sprintf("%s Intake System", s.cfg.Company.Name)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]any{
		"status":    "healthy",
		"service":   s.serviceName(),
		"version":   s.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"company":   s.cfg.Company.Name,
	})
}

// integrationStatus pairs an integration name with whether it is configured,
// in reporting order.
type integrationStatus struct {
	name       string
	configured bool
}

func (s *Server) integrationStatuses() []integrationStatus {
	modelKey := s.cfg.Model.AnthropicAPIKey
	if s.cfg.Model.Provider == "openai" {
		modelKey = s.cfg.Model.OpenAIAPIKey
	}

	return []integrationStatus{
		{"model_api_key", modelKey != ""},
		{"sendgrid_api_key", s.cfg.Notify.Email.SendGridAPIKey != ""},
		{"slack_webhook", s.cfg.Notify.Slack.WebhookURL != ""},
		{"artifact_store", s.store != nil},
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	configuration := map[string]string{}
	warnings := []string{}

	for _, st := range s.integrationStatuses() {
		if st.configured {
			configuration[st.name] = "configured"
		} else {
			configuration[st.name] = "missing"
			warnings = append(warnings, fmt.Sprintf("%s is missing", st.name))
		}
	}

	status := "healthy"
	if len(warnings) > 0 {
		status = "degraded"
	}

	jsonResponse(w, map[string]any{
		"status":        status,
		"service":       s.serviceName(),
		"version":       s.version,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
		"uptime":        time.Since(s.startedAt).Round(time.Second).String(),
		"configuration": configuration,
		"warnings":      warnings,
	})
}

func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	var lead sales.Lead
	if err := json.NewDecoder(r.Body).Decode(&lead); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	run, err := s.runner.StartResearch(s.baseCtx, lead)
	if err != nil {
		s.startError(w, err)
		return
	}

	s.logger.Info("research run %s accepted company=%s", run.ID, run.Company)
	jsonResponse(w, run)
}

func (s *Server) handleProposal(w http.ResponseWriter, r *http.Request) {
	var req sales.ProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	run, err := s.runner.StartProposal(s.baseCtx, req)
	if err != nil {
		s.startError(w, err)
		return
	}

	s.logger.Info("proposal run %s accepted company=%s", run.ID, run.Company)
	jsonResponse(w, run)
}

// startError maps a StartResearch/StartProposal failure to a status code:
// a closed runner is a service problem, anything else is a bad request.
func (s *Server) startError(w http.ResponseWriter, err error) {
	if errors.Is(err, runner.ErrClosed) {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	jsonError(w, err.Error(), http.StatusBadRequest)
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, s.runner.List())
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.runner.Get(r.PathValue("id"))
	if err != nil {
		jsonError(w, "run not found", http.StatusNotFound)
		return
	}
	jsonResponse(w, run)
}

func (s *Server) getRunReport(w http.ResponseWriter, r *http.Request) {
	run, err := s.runner.Get(r.PathValue("id"))
	if err != nil {
		jsonError(w, "run not found", http.StatusNotFound)
		return
	}
	if !run.Status.Terminal() {
		jsonError(w, "run still in progress", http.StatusConflict)
		return
	}
	if run.Document == "" {
		jsonError(w, "no report available for this run", http.StatusNotFound)
		return
	}

	jsonResponse(w, map[string]string{
		"run_id":  run.ID,
		"kind":    run.Kind,
		"company": run.Company,
		"name":    run.Artifact,
		"content": run.Document,
	})
}

func (s *Server) cancelRun(w http.ResponseWriter, r *http.Request) {
	if err := s.runner.Cancel(r.PathValue("id")); err != nil {
		if errors.Is(err, runner.ErrRunNotFound) {
			jsonError(w, "run not found", http.StatusNotFound)
			return
		}
		jsonError(w, err.Error(), http.StatusConflict)
		return
	}
	jsonResponse(w, map[string]string{"status": "cancelling"})
}

func (s *Server) getConfig(w http.ResponseWriter, r *http.Request) {
	integrations := []string{}
	if s.notifier != nil {
		integrations = s.notifier.Sinks()
	}

	jsonResponse(w, map[string]any{
		"company":      s.cfg.Company,
		"pipelines":    s.runner.Pipelines(),
		"integrations": integrations,
	})
}

func (s *Server) testIntegrations(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()

	deliveries := []notify.Delivery{}
	if s.notifier != nil {
		deliveries = s.notifier.Send(r.Context(), notify.Report{
			RunID:    "integration-test",
			Kind:     "test",
			Company:  s.cfg.Company.Name,
			Subject:  fmt.Sprintf("Test Email - %s API", s.cfg.Company.Name),
			Summary:  "🧪 Test notification from the intake API",
			Document: "# Test Document\n\nGenerated at " + now.Format(time.RFC3339),
		})
	}

	name := fmt.Sprintf("test_%s.md", now.Format("20060102_150405"))
	artifactResult := map[string]any{"name": name, "success": true}
	if err := s.store.Save("integration-test", name, []byte("# Test Document\n\nGenerated at "+now.Format(time.RFC3339))); err != nil {
		artifactResult = map[string]any{"name": name, "success": false, "error": err.Error()}
	}

	jsonResponse(w, map[string]any{
		"test_completed": true,
		"timestamp":      now.Format(time.RFC3339),
		"deliveries":     deliveries,
		"artifact":       artifactResult,
	})
}
