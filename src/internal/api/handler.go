package api

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/ce-fello/synergy-crm/src/internal/api/apiErrors"
	"github.com/ce-fello/synergy-crm/src/internal/model"
	"github.com/ce-fello/synergy-crm/src/internal/query"
	"github.com/ce-fello/synergy-crm/src/internal/service"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	svc         *service.Service
	log         *zap.Logger
	defaultRows int
}

func NewHandler(svc *service.Service, logger *zap.Logger, defaultRows int) *Handler {
	return &Handler{svc: svc, log: logger, defaultRows: defaultRows}
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})
	r.Post("/auth/login", withTimeout(h.login))
	r.Get("/stats", withTimeout(h.getStats))
	r.Post("/admin/reset", withTimeout(h.reset))

	r.Route("/users", func(r chi.Router) {
		r.Get("/", withTimeout(h.listUsers))
		r.Post("/", withTimeout(h.createUser))
		r.Get("/{id}", withTimeout(h.getUser))
		r.Patch("/{id}", withTimeout(h.updateUser))
		r.Delete("/{id}", withTimeout(h.deleteUser))
		r.Post("/{id}/active", withTimeout(h.setIsActive))
	})
	r.Route("/leads", func(r chi.Router) {
		r.Get("/", withTimeout(h.listLeads))
		r.Post("/", withTimeout(h.createLead))
		r.Get("/{id}", withTimeout(h.getLead))
		r.Patch("/{id}", withTimeout(h.updateLead))
		r.Delete("/{id}", withTimeout(h.deleteLead))
		r.Post("/{id}/claim", withTimeout(h.claimLead))
		r.Post("/{id}/release", withTimeout(h.releaseLead))
	})
	r.Route("/students", func(r chi.Router) {
		r.Get("/", withTimeout(h.listStudents))
		r.Post("/", withTimeout(h.createStudent))
		r.Get("/{id}", withTimeout(h.getStudent))
		r.Patch("/{id}", withTimeout(h.updateStudent))
		r.Delete("/{id}", withTimeout(h.deleteStudent))
		r.Put("/{id}/skills", withTimeout(h.updateStudentSkills))
		r.Get("/{id}/skill-map", withTimeout(h.getStudentSkillMap))
		r.Get("/{id}/tasks", withTimeout(h.listStudentTasks))
		r.Get("/{id}/interviews", withTimeout(h.listCandidateInterviews))
	})
	r.Route("/teams", func(r chi.Router) {
		r.Get("/", withTimeout(h.listTeams))
		r.Post("/", withTimeout(h.createTeam))
		r.Get("/{id}", withTimeout(h.getTeam))
		r.Patch("/{id}", withTimeout(h.updateTeam))
		r.Delete("/{id}", withTimeout(h.deleteTeam))
	})
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", withTimeout(h.listTasks))
		r.Post("/", withTimeout(h.createTask))
		r.Get("/{id}", withTimeout(h.getTask))
		r.Patch("/{id}", withTimeout(h.updateTask))
		r.Delete("/{id}", withTimeout(h.deleteTask))
	})
	r.Route("/jobs", func(r chi.Router) {
		r.Get("/", withTimeout(h.listJobs))
		r.Post("/", withTimeout(h.createJob))
		r.Get("/{id}", withTimeout(h.getJob))
		r.Patch("/{id}", withTimeout(h.updateJob))
		r.Delete("/{id}", withTimeout(h.deleteJob))
		r.Get("/{id}/interviews", withTimeout(h.listJobInterviews))
	})
	r.Route("/interviews", func(r chi.Router) {
		r.Get("/", withTimeout(h.listInterviews))
		r.Post("/", withTimeout(h.scheduleInterview))
		r.Get("/{id}", withTimeout(h.getInterview))
		r.Delete("/{id}", withTimeout(h.deleteInterview))
		r.Post("/{id}/respond", withTimeout(h.respondToInterview))
		r.Post("/{id}/complete", withTimeout(h.completeInterview))
	})
	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", withTimeout(h.listNotifications))
		r.Post("/read-all", withTimeout(h.markAllRead))
		r.Post("/{id}/read", withTimeout(h.markRead))
	})
	r.Route("/companies", func(r chi.Router) {
		r.Get("/", withTimeout(h.listCompanies))
		r.Post("/", withTimeout(h.createCompany))
		r.Get("/{id}", withTimeout(h.getCompany))
		r.Patch("/{id}", withTimeout(h.updateCompany))
		r.Delete("/{id}", withTimeout(h.deleteCompany))
		r.Post("/{id}/users", withTimeout(h.createCompanyUser))
	})
}

func withTimeout(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, apiErrors.ValidationFailed, "email required")
		return
	}
	user, err := h.svc.Login(r.Context(), req.Email)
	h.respond(w, http.StatusOK, "user", user, err)
}

func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.GetStats(r.Context())
	if err != nil {
		h.handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Reset(r.Context()); err != nil {
		h.handleSvcError(w, err)
		return
	}
	h.log.Info("storage reset over http")
	writeJSON(w, http.StatusOK, map[string]any{"status": "reset"})
}

// list parses query parameters, runs fn and writes the page.
func list[T any](h *Handler, w http.ResponseWriter, r *http.Request, fn func(context.Context, query.Params) (query.Result[T], error)) {
	p, err := query.ParseParams(r.URL.Query(), h.defaultRows)
	if err != nil {
		writeError(w, http.StatusBadRequest, apiErrors.ValidationFailed, err.Error())
		return
	}
	res, err := fn(r.Context(), p)
	if err != nil {
		h.handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, apiErrors.ValidationFailed, "invalid body")
		return false
	}
	return true
}

func (h *Handler) writeDeleted(w http.ResponseWriter, deleted bool, err error) {
	h.respond(w, http.StatusOK, "deleted", deleted, err)
}

// respond writes {key: value} or the error. A persist failure leaves the
// change applied in memory, so its 503 body still carries value under key.
func (h *Handler) respond(w http.ResponseWriter, status int, key string, value any, err error) {
	if err == nil {
		writeJSON(w, status, map[string]any{key: value})
		return
	}
	var e apiErrors.APIError
	if errors.As(err, &e) && e.Code == apiErrors.PersistFailed {
		h.log.Warn("responding with unpersisted change", zap.String("key", key), zap.String("message", e.Message))
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error": map[string]any{"code": e.Code, "message": e.Message},
			key:     value,
		})
		return
	}
	h.handleSvcError(w, err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, code int, errCode apiErrors.ErrorCode, message string) {
	writeJSON(w, code, map[string]any{
		"error": map[string]any{"code": errCode, "message": message},
	})
}

func (h *Handler) handleSvcError(w http.ResponseWriter, err error) {
	var e apiErrors.APIError
	switch {
	case errors.As(err, &e):
		switch e.Code {
		case apiErrors.NotFound:
			writeError(w, http.StatusNotFound, e.Code, e.Message)
		case apiErrors.Conflict:
			writeError(w, http.StatusConflict, e.Code, e.Message)
		case apiErrors.ValidationFailed:
			writeError(w, http.StatusBadRequest, e.Code, e.Message)
		case apiErrors.PersistFailed:
			writeError(w, http.StatusServiceUnavailable, e.Code, e.Message)
		default:
			writeError(w, http.StatusInternalServerError, apiErrors.InternalError, e.Message)
		}
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, apiErrors.InternalError, "request timed out")
	default:
		h.log.Error("unhandled service error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, apiErrors.InternalError, err.Error())
	}
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	list(h, w, r, h.svc.QueryUsers)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var u model.User
	if !decode(w, r, &u) {
		return
	}
	user, err := h.svc.CreateUser(r.Context(), u)
	h.respond(w, http.StatusCreated, "user", user, err)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.GetUser(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, http.StatusOK, "user", user, err)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	var p model.Patch
	if !decode(w, r, &p) {
		return
	}
	user, err := h.svc.UpdateUser(r.Context(), chi.URLParam(r, "id"), p)
	h.respond(w, http.StatusOK, "user", user, err)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	ok, err := h.svc.DeleteUser(r.Context(), chi.URLParam(r, "id"))
	h.writeDeleted(w, ok, err)
}

func (h *Handler) setIsActive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IsActive *bool `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsActive == nil {
		writeError(w, http.StatusBadRequest, apiErrors.ValidationFailed, "isActive required")
		return
	}
	user, err := h.svc.SetUserIsActive(r.Context(), chi.URLParam(r, "id"), *req.IsActive)
	h.respond(w, http.StatusOK, "user", user, err)
}

func (h *Handler) listLeads(w http.ResponseWriter, r *http.Request) {
	list(h, w, r, h.svc.QueryLeads)
}

func (h *Handler) createLead(w http.ResponseWriter, r *http.Request) {
	var l model.Lead
	if !decode(w, r, &l) {
		return
	}
	lead, err := h.svc.CreateLead(r.Context(), l)
	h.respond(w, http.StatusCreated, "lead", lead, err)
}

func (h *Handler) getLead(w http.ResponseWriter, r *http.Request) {
	lead, err := h.svc.GetLead(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, http.StatusOK, "lead", lead, err)
}

func (h *Handler) updateLead(w http.ResponseWriter, r *http.Request) {
	var p model.Patch
	if !decode(w, r, &p) {
		return
	}
	lead, err := h.svc.UpdateLead(r.Context(), chi.URLParam(r, "id"), p)
	h.respond(w, http.StatusOK, "lead", lead, err)
}

func (h *Handler) deleteLead(w http.ResponseWriter, r *http.Request) {
	ok, err := h.svc.DeleteLead(r.Context(), chi.URLParam(r, "id"))
	h.writeDeleted(w, ok, err)
}

func (h *Handler) claimLead(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AgentID string `json:"agentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AgentID == "" {
		writeError(w, http.StatusBadRequest, apiErrors.ValidationFailed, "agentId required")
		return
	}
	lead, err := h.svc.ClaimLead(r.Context(), chi.URLParam(r, "id"), req.AgentID)
	h.respond(w, http.StatusOK, "lead", lead, err)
}

func (h *Handler) releaseLead(w http.ResponseWriter, r *http.Request) {
	lead, err := h.svc.ReleaseLead(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, http.StatusOK, "lead", lead, err)
}
