package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PabloGalante/brainbuddy/internal/app/assistant"
	"github.com/PabloGalante/brainbuddy/internal/app/history"
	"github.com/PabloGalante/brainbuddy/internal/domain"
	"github.com/PabloGalante/brainbuddy/internal/observability"
)

type Server struct {
	svc  *assistant.Service
	hist *history.Service
}

func NewServer(svc *assistant.Service, hist *history.Service) http.Handler {
	s := &Server{svc: svc, hist: hist}
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealthz)

	// /interpret → run one cycle for a finalized transcript (POST)
	mux.HandleFunc("/interpret", s.handleInterpret)

	// /tasks → GET: list, POST: add directly
	mux.HandleFunc("/tasks", s.handleTasks)

	mux.HandleFunc("/history", s.handleHistory)

	// /history/{id} → GET: one recorded cycle
	mux.HandleFunc("/history/", s.handleHistoryWithID)

	return chainMiddlewares(mux, withLogging, withRequestID, withCORS)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type interpretRequest struct {
	Text string `json:"text"`
}

type interpretResponse struct {
	CycleID    string              `json:"cycle_id"`
	Intent     string              `json:"intent"`
	Reply      string              `json:"reply"`
	Operations []operationResponse `json:"operations"`
	Added      []taskResponse      `json:"added"`
	Modified   []taskResponse      `json:"modified"`
}

type operationResponse struct {
	Operation       string     `json:"operation"`
	Name            string     `json:"name"`
	Date            *time.Time `json:"date,omitempty"`
	DateType        string     `json:"date_type,omitempty"`
	Priority        int        `json:"priority,omitempty"`
	RequiredStamina int        `json:"required_stamina,omitempty"`
	EstimatedTime   int        `json:"estimated_time,omitempty"`
	Status          string     `json:"status,omitempty"`
}

type taskRequest struct {
	Name            string     `json:"name"`
	Date            *time.Time `json:"date,omitempty"`
	DateType        string     `json:"date_type,omitempty"`
	Priority        int        `json:"priority,omitempty"`
	RequiredStamina int        `json:"required_stamina,omitempty"`
	EstimatedTime   int        `json:"estimated_time,omitempty"`
	Status          string     `json:"status,omitempty"`
}

type taskResponse struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Date            *time.Time `json:"date,omitempty"`
	DateType        string     `json:"date_type"`
	Priority        int        `json:"priority"`
	RequiredStamina int        `json:"required_stamina"`
	EstimatedTime   int        `json:"estimated_time"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
}

type listTasksResponse struct {
	Tasks []taskResponse `json:"tasks"`
}

type cycleResponse struct {
	ID         string              `json:"id"`
	Transcript string              `json:"transcript"`
	Intent     string              `json:"intent"`
	Operations []operationResponse `json:"operations"`
	Reply      string              `json:"reply"`
	CreatedAt  time.Time           `json:"created_at"`
}

type historyResponse struct {
	Cycles []cycleResponse `json:"cycles"`
}

// ─────────────────────────────────────────────
// Basic routing
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// /interpret
func (s *Server) handleInterpret(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleRunCycle(w, r)
	default:
		methodNotAllowed(w)
	}
}

// /tasks
func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListTasks(w, r)
	case http.MethodPost:
		s.handleAddTask(w, r)
	default:
		methodNotAllowed(w)
	}
}

// /history
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListHistory(w, r)
	default:
		methodNotAllowed(w)
	}
}

// /history/{id}
func (s *Server) handleHistoryWithID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/history/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetCycle(w, r, domain.CycleID(id))
	default:
		methodNotAllowed(w)
	}
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleRunCycle(w http.ResponseWriter, r *http.Request) {
	var req interpretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	res, err := s.svc.Handle(r.Context(), req.Text)
	switch {
	case errors.Is(err, domain.ErrEmptyTranscript):
		badRequest(w, "text is required")
		return
	case errors.Is(err, domain.ErrBusy):
		writeJSON(w, http.StatusConflict, map[string]string{
			"error": "an interpretation is already running",
		})
		return
	case err != nil:
		internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, interpretResponse{
		CycleID:    string(res.CycleID),
		Intent:     string(res.Intent),
		Reply:      res.Reply,
		Operations: toOperationsResponse(res.Operations),
		Added:      toTasksResponse(res.Added),
		Modified:   toTasksResponse(res.Modified),
	})
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	activeOnly, _ := strconv.ParseBool(r.URL.Query().Get("active"))

	tasks, err := s.svc.ListTasks(r.Context(), activeOnly)
	if err != nil {
		internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listTasksResponse{Tasks: toTasksResponse(tasks)})
}

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		badRequest(w, "name is required")
		return
	}
	if req.DateType != "" {
		if _, ok := domain.ParseDateType(req.DateType); !ok {
			badRequest(w, "date_type must be deadline or date")
			return
		}
	}

	task, err := s.svc.AddTask(r.Context(), domain.TaskFields{
		Name:            req.Name,
		Date:            req.Date,
		DateType:        domain.DateType(req.DateType),
		Priority:        req.Priority,
		RequiredStamina: req.RequiredStamina,
		EstimatedTime:   req.EstimatedTime,
		Status:          domain.TaskStatus(req.Status),
	})
	if err != nil {
		internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTaskResponse(task))
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	cycles, err := s.hist.Recent(r.Context(), limit)
	if err != nil {
		internalError(w, r, err)
		return
	}

	out := make([]cycleResponse, 0, len(cycles))
	for _, c := range cycles {
		out = append(out, toCycleResponse(c))
	}

	writeJSON(w, http.StatusOK, historyResponse{Cycles: out})
}

func (s *Server) handleGetCycle(w http.ResponseWriter, r *http.Request, id domain.CycleID) {
	cycle, err := s.hist.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrCycleNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "cycle not found",
			})
			return
		}
		internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCycleResponse(cycle))
}

// ─────────────────────────────────────────────
// Task Helpers
// ─────────────────────────────────────────────

func toTaskResponse(t domain.Task) taskResponse {
	return taskResponse{
		ID:              string(t.ID),
		Name:            t.Name,
		Date:            t.Date,
		DateType:        string(t.DateType),
		Priority:        t.Priority,
		RequiredStamina: t.RequiredStamina,
		EstimatedTime:   t.EstimatedTime,
		Status:          string(t.Status),
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
		StartedAt:       t.StartedAt,
		FinishedAt:      t.FinishedAt,
	}
}

func toTasksResponse(tasks []domain.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	return out
}

func toCycleResponse(c *domain.Cycle) cycleResponse {
	return cycleResponse{
		ID:         string(c.ID),
		Transcript: c.Transcript,
		Intent:     string(c.Intent),
		Operations: toOperationsResponse(c.Operations),
		Reply:      c.Reply,
		CreatedAt:  c.CreatedAt,
	}
}

func toOperationsResponse(ops []domain.TaskOperation) []operationResponse {
	out := make([]operationResponse, 0, len(ops))
	for _, op := range ops {
		out = append(out, operationResponse{
			Operation:       string(op.Operation),
			Name:            op.Name,
			Date:            op.Date,
			DateType:        string(op.DateType),
			Priority:        op.Priority,
			RequiredStamina: op.RequiredStamina,
			EstimatedTime:   op.EstimatedTime,
			Status:          string(op.Status),
		})
	}
	return out
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	observability.LoggerFromContext(r.Context()).Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
