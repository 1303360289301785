package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/avivlab/stressexp/internal/middleware"
	"github.com/avivlab/stressexp/internal/services"
)

// Config selects the deployment flavor carried by the router.
type Config struct {
	// Freeform enables POST /save/{stage} for opaque payloads; only the
	// journaled schema can persist them.
	Freeform bool
	// ExtendedDemographics switches /save/demo to the long schema.
	ExtendedDemographics bool
}

type Router struct {
	store     Store
	lifecycle *services.LifecycleService
	results   *services.ResultsService
	auth      *services.AuthService
	freeform  bool
}

func NewRouter(store Store, cfg Config) *Router {
	demographics := services.DemographicsBasic
	if cfg.ExtendedDemographics {
		demographics = services.DemographicsExtended
	}
	return &Router{
		store:     store,
		lifecycle: services.NewLifecycleService(newLifecycleStoreAdapter(store), demographics),
		results:   services.NewResultsService(newResultsStoreAdapter(store)),
		auth:      services.NewAuthService(newAuthStoreAdapter(store), middleware.SignToken),
		freeform:  cfg.Freeform,
	}
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/start", rt.handleStart)   // POST
	mux.HandleFunc("/save/", rt.handleSave)    // POST /save/{stage}
	mux.HandleFunc("/finish", rt.handleFinish) // POST
	mux.HandleFunc("/api/auth/register", rt.handleRegister)
	mux.HandleFunc("/api/auth/login", rt.handleLogin)
	mux.Handle("/api/export", middleware.RequireAuth(http.HandlerFunc(rt.handleExport)))
	mux.Handle("/api/summary", middleware.RequireAuth(http.HandlerFunc(rt.handleSummary)))
}

type saveRequest struct {
	ParticipantID string          `json:"participant_id"`
	Data          json.RawMessage `json:"data"`
}

// POST /start — create a participant and assign a condition.
func (rt *Router) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	p, err := rt.lifecycle.Start()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"participant_id": p.ID, "stress_condition": p.Condition})
}

// POST /save/{stage} — validate and persist one stage submission.
func (rt *Router) handleSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	stage := strings.TrimPrefix(r.URL.Path, "/save/")
	if stage == "" || strings.Contains(stage, "/") {
		http.NotFound(w, r)
		return
	}
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, services.NewInvalidValueError("invalid request body"))
		return
	}
	if strings.TrimSpace(req.ParticipantID) == "" {
		writeError(w, services.NewMissingFieldError("participant_id is required"))
		return
	}
	if err := rt.submitStage(req.ParticipantID, stage, req.Data); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}

func (rt *Router) submitStage(participantID, stage string, data json.RawMessage) error {
	switch stage {
	case services.StageConsent:
		var in services.ConsentInput
		if err := decodeData(data, &in); err != nil {
			return err
		}
		return rt.lifecycle.SubmitConsent(participantID, in)
	case services.StageDemographics:
		var in services.DemographicsInput
		if err := decodeData(data, &in); err != nil {
			return err
		}
		return rt.lifecycle.SubmitDemographics(participantID, in)
	case services.StageRepression:
		if isEmptyJSON(data) {
			return services.NewInvalidValueError("repression data must be a list")
		}
		var items []services.RepressionItemInput
		if err := json.Unmarshal(data, &items); err != nil {
			return services.NewInvalidValueError("repression data must be a list")
		}
		return rt.lifecycle.SubmitRepression(participantID, items)
	case services.StageRating:
		var in services.RatingInput
		if err := decodeData(data, &in); err != nil {
			return err
		}
		return rt.lifecycle.SubmitRating(participantID, in)
	default:
		if !rt.freeform {
			return services.NewInvalidValueError(fmt.Sprintf("invalid stage %q", stage))
		}
		return rt.lifecycle.SubmitFreeform(participantID, stage, data)
	}
}

// POST /finish — stamp completion.
func (rt *Router) handleFinish(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, services.NewInvalidValueError("invalid request body"))
		return
	}
	if strings.TrimSpace(req.ParticipantID) == "" {
		writeError(w, services.NewMissingFieldError("participant_id is required"))
		return
	}
	if err := rt.lifecycle.Finish(req.ParticipantID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"done": true})
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/register — create a researcher account.
func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, services.NewInvalidValueError("invalid request body"))
		return
	}
	res, err := rt.auth.Register(req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"token": res.Token, "user_id": res.UserID})
}

// POST /api/auth/login
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, services.NewInvalidValueError("invalid request body"))
		return
	}
	res, err := rt.auth.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"token": res.Token, "user_id": res.UserID})
}

// GET /api/export?format=wide|long — authenticated CSV download.
func (rt *Router) handleExport(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())
	data, name, err := rt.results.ExportCSV(r.URL.Query().Get("format"), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+name)
	_, _ = w.Write(data)
}

// GET /api/summary — authenticated enrollment counts.
func (rt *Router) handleSummary(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())
	sum, err := rt.results.Summary(actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, sum)
}

func decodeData(data json.RawMessage, out any) error {
	if isEmptyJSON(data) {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return services.NewInvalidValueError("invalid data payload")
	}
	return nil
}

func isEmptyJSON(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	se, ok := services.AsServiceError(err)
	if !ok {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	status := http.StatusInternalServerError
	switch se.Code {
	case services.ErrorMissingField, services.ErrorInvalidValue:
		status = http.StatusBadRequest
	case services.ErrorNotFound:
		status = http.StatusNotFound
	case services.ErrorDuplicateID, services.ErrorConflict:
		status = http.StatusConflict
	case services.ErrorUnauthorized:
		status = http.StatusUnauthorized
	case services.ErrorStorageUnavailable:
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": string(se.Code), "message": se.Message})
}
