package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/propeval/propeval/internal/middleware"
	"github.com/propeval/propeval/internal/services"
)

type Router struct {
	store         Store
	auth          *services.AuthService
	properties    *services.PropertyService
	questions     *services.QuestionService
	evaluations   *services.EvaluationService
	analytics     *services.AnalyticsService
	notifications *services.NotificationService
	exports       *services.ExportService
}

func NewRouter(store Store) *Router {
	return &Router{
		store:         store,
		auth:          services.NewAuthService(&authAdapter{store: store}, middleware.SignToken),
		properties:    services.NewPropertyService(&propertyAdapter{store: store}),
		questions:     services.NewQuestionService(&questionAdapter{store: store}),
		evaluations:   services.NewEvaluationService(&evaluationAdapter{store: store}),
		analytics:     services.NewAnalyticsService(&analyticsAdapter{store: store}),
		notifications: services.NewNotificationService(&notificationAdapter{store: store}),
		exports:       services.NewExportService(&exportAdapter{store: store}),
	}
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/auth/register", rt.handleRegister)        // POST
	mux.HandleFunc("/api/auth/login", rt.handleLogin)              // POST
	mux.HandleFunc("/api/evaluation/submit", rt.handleSubmit)      // POST (public)
	mux.HandleFunc("/api/properties", rt.handleProperties)         // GET, POST
	mux.HandleFunc("/api/properties/", rt.handlePropertyScoped)    // GET/PATCH/DELETE /{id}, GET /{id}/evaluation
	mux.HandleFunc("/api/questions", rt.handleQuestions)           // GET, POST
	mux.HandleFunc("/api/questions/", rt.handleQuestionScoped)     // GET/PATCH/DELETE /{id}, GET/POST /{id}/choices
	mux.HandleFunc("/api/choices/", rt.handleChoiceScoped)         // PATCH/DELETE /{id}
	mux.HandleFunc("/api/analytics/summary", rt.handleAnalytics)   // GET
	mux.HandleFunc("/api/export", rt.handleExport)                 // GET ?format=evaluations|categories
	mux.HandleFunc("/api/notifications", rt.handleNotifications)   // GET
	mux.HandleFunc("/api/notifications/", rt.handleNotifyScoped)   // POST /{id}/read
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps service failures to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, services.ErrPropertyNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if errors.Is(err, services.ErrNoActiveQuestions) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if se, ok := services.AsServiceError(err); ok {
		status := http.StatusInternalServerError
		switch se.Code {
		case services.ErrorInvalid:
			status = http.StatusBadRequest
		case services.ErrorUnauthorized:
			status = http.StatusUnauthorized
		case services.ErrorForbidden:
			status = http.StatusForbidden
		case services.ErrorNotFound:
			status = http.StatusNotFound
		case services.ErrorConflict:
			status = http.StatusConflict
		}
		http.Error(w, se.Message, status)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func teamID(w http.ResponseWriter, r *http.Request) (string, bool) {
	tid, ok := middleware.TeamIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return tid, true
}

func actor(r *http.Request) string {
	if c, ok := middleware.ClaimsFromContext(r.Context()); ok {
		return c.Email
	}
	return ""
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	return id, err == nil && id > 0
}

// POST /api/auth/register {email,password,team_name}
func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		TeamName string `json:"team_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := rt.auth.Register(req.Email, req.Password, req.TeamName)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": res.Token, "team_id": res.TeamID, "user_id": res.UserID})
}

// POST /api/auth/login {email,password}
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := rt.auth.Login(req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": res.Token, "team_id": res.TeamID, "user_id": res.UserID})
}

// POST /api/evaluation/submit {property_id, answers:[{question_id, answer_choice_id?, custom_answer?}]}
func (rt *Router) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		PropertyID int64                               `json:"property_id"`
		Answers    []services.PropertyEvaluationAnswer `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ev, err := rt.evaluations.Submit(services.SubmitEvaluationRequest{PropertyID: req.PropertyID, Answers: req.Answers})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// GET|POST /api/properties
func (rt *Router) handleProperties(w http.ResponseWriter, r *http.Request) {
	tid, ok := teamID(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		rows, err := rt.properties.List(tid)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"properties": rows})
	case http.MethodPost:
		var p services.Property
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		created, err := rt.properties.Create(tid, &p)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, created)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// /api/properties/{id} and /api/properties/{id}/evaluation
func (rt *Router) handlePropertyScoped(w http.ResponseWriter, r *http.Request) {
	tid, ok := teamID(w, r)
	if !ok {
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/properties/")
	parts := strings.Split(rest, "/")
	id, ok := parseID(parts[0])
	if !ok {
		http.NotFound(w, r)
		return
	}
	if len(parts) == 2 && parts[1] == "evaluation" {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		ev, err := rt.evaluations.Get(tid, id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ev)
		return
	}
	if len(parts) != 1 {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		p, err := rt.properties.Get(tid, id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	case http.MethodPatch:
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		p, err := rt.properties.Update(tid, id, raw)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	case http.MethodDelete:
		if err := rt.properties.Delete(tid, id, actor(r)); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// GET|POST /api/questions
func (rt *Router) handleQuestions(w http.ResponseWriter, r *http.Request) {
	tid, ok := teamID(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		rows, err := rt.questions.ListQuestions(tid)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"questions": rows})
	case http.MethodPost:
		var q services.EvaluationQuestion
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		created, err := rt.questions.CreateQuestion(tid, &q)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, created)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// /api/questions/{id} and /api/questions/{id}/choices
func (rt *Router) handleQuestionScoped(w http.ResponseWriter, r *http.Request) {
	tid, ok := teamID(w, r)
	if !ok {
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/questions/")
	parts := strings.Split(rest, "/")
	id, ok := parseID(parts[0])
	if !ok {
		http.NotFound(w, r)
		return
	}
	if len(parts) == 2 && parts[1] == "choices" {
		switch r.Method {
		case http.MethodGet:
			rows, err := rt.questions.ListChoices(tid, id)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"choices": rows})
		case http.MethodPost:
			var c services.EvaluationAnswerChoice
			if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			created, err := rt.questions.CreateChoice(tid, id, &c)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, created)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}
	if len(parts) != 1 {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		q, err := rt.questions.GetQuestion(tid, id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	case http.MethodPatch:
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		q, err := rt.questions.UpdateQuestion(tid, id, raw)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	case http.MethodDelete:
		if err := rt.questions.DeleteQuestion(tid, id, actor(r)); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// PATCH|DELETE /api/choices/{id}
func (rt *Router) handleChoiceScoped(w http.ResponseWriter, r *http.Request) {
	tid, ok := teamID(w, r)
	if !ok {
		return
	}
	id, ok := parseID(strings.TrimPrefix(r.URL.Path, "/api/choices/"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodPatch:
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		c, err := rt.questions.UpdateChoice(tid, id, raw)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	case http.MethodDelete:
		if err := rt.questions.DeleteChoice(tid, id); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// GET /api/analytics/summary
func (rt *Router) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	tid, ok := teamID(w, r)
	if !ok {
		return
	}
	summary, err := rt.analytics.Summary(tid)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// GET /api/export?format=evaluations|categories
func (rt *Router) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	tid, ok := teamID(w, r)
	if !ok {
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "evaluations"
	}
	var (
		data []byte
		err  error
		name string
	)
	switch format {
	case "evaluations":
		data, err = rt.exports.EvaluationsCSV(tid)
		name = "evaluations.csv"
	case "categories":
		data, err = rt.exports.CategoriesCSV(tid)
		name = "categories.csv"
	default:
		http.Error(w, "unknown format", http.StatusBadRequest)
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+name)
	_, _ = w.Write(data)
}

// GET /api/notifications
func (rt *Router) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	tid, ok := teamID(w, r)
	if !ok {
		return
	}
	rows, err := rt.notifications.List(tid)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": rows})
}

// POST /api/notifications/{id}/read
func (rt *Router) handleNotifyScoped(w http.ResponseWriter, r *http.Request) {
	tid, ok := teamID(w, r)
	if !ok {
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/notifications/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[1] != "read" || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := rt.notifications.MarkRead(tid, parts[0]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
