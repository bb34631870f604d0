package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ce-fello/synergy-crm/src/internal/api/apiErrors"
	"github.com/ce-fello/synergy-crm/src/internal/model"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) listStudents(w http.ResponseWriter, r *http.Request) {
	list(h, w, r, h.svc.QueryStudents)
}

func (h *Handler) createStudent(w http.ResponseWriter, r *http.Request) {
	var s model.Student
	if !decode(w, r, &s) {
		return
	}
	student, err := h.svc.CreateStudent(r.Context(), s)
	h.respond(w, http.StatusCreated, "student", student, err)
}

func (h *Handler) getStudent(w http.ResponseWriter, r *http.Request) {
	student, err := h.svc.GetStudent(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, http.StatusOK, "student", student, err)
}

func (h *Handler) updateStudent(w http.ResponseWriter, r *http.Request) {
	var p model.Patch
	if !decode(w, r, &p) {
		return
	}
	student, err := h.svc.UpdateStudent(r.Context(), chi.URLParam(r, "id"), p)
	h.respond(w, http.StatusOK, "student", student, err)
}

func (h *Handler) deleteStudent(w http.ResponseWriter, r *http.Request) {
	ok, err := h.svc.DeleteStudent(r.Context(), chi.URLParam(r, "id"))
	h.writeDeleted(w, ok, err)
}

func (h *Handler) updateStudentSkills(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Skills []model.SkillScore `json:"skills"`
	}
	if !decode(w, r, &req) {
		return
	}
	student, err := h.svc.UpdateStudentSkills(r.Context(), chi.URLParam(r, "id"), req.Skills)
	h.respond(w, http.StatusOK, "student", student, err)
}

func (h *Handler) getStudentSkillMap(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	skills, err := h.svc.GetStudentSkillMap(r.Context(), id)
	if err != nil {
		h.handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"studentId": id, "skillMap": skills})
}

func (h *Handler) listStudentTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.ListStudentTasks(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleSvcError(w, err)
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (h *Handler) listTeams(w http.ResponseWriter, r *http.Request) {
	list(h, w, r, h.svc.QueryTeams)
}

func (h *Handler) createTeam(w http.ResponseWriter, r *http.Request) {
	var t model.Team
	if !decode(w, r, &t) {
		return
	}
	if t.Name == "" {
		writeError(w, http.StatusBadRequest, apiErrors.ValidationFailed, "name required")
		return
	}
	team, err := h.svc.CreateTeam(r.Context(), t)
	h.respond(w, http.StatusCreated, "team", team, err)
}

func (h *Handler) getTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.svc.GetTeam(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, http.StatusOK, "team", team, err)
}

func (h *Handler) updateTeam(w http.ResponseWriter, r *http.Request) {
	var p model.Patch
	if !decode(w, r, &p) {
		return
	}
	team, err := h.svc.UpdateTeam(r.Context(), chi.URLParam(r, "id"), p)
	h.respond(w, http.StatusOK, "team", team, err)
}

func (h *Handler) deleteTeam(w http.ResponseWriter, r *http.Request) {
	ok, err := h.svc.DeleteTeam(r.Context(), chi.URLParam(r, "id"))
	h.writeDeleted(w, ok, err)
}

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	list(h, w, r, h.svc.QueryTasks)
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	var t model.Task
	if !decode(w, r, &t) {
		return
	}
	task, err := h.svc.CreateTask(r.Context(), t)
	h.respond(w, http.StatusCreated, "task", task, err)
}

func (h *Handler) getTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.svc.GetTask(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, http.StatusOK, "task", task, err)
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request) {
	var p model.Patch
	if !decode(w, r, &p) {
		return
	}
	task, err := h.svc.UpdateTask(r.Context(), chi.URLParam(r, "id"), p)
	h.respond(w, http.StatusOK, "task", task, err)
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	ok, err := h.svc.DeleteTask(r.Context(), chi.URLParam(r, "id"))
	h.writeDeleted(w, ok, err)
}

func (h *Handler) listJobs(w http.ResponseWriter, r *http.Request) {
	list(h, w, r, h.svc.QueryJobs)
}

func (h *Handler) createJob(w http.ResponseWriter, r *http.Request) {
	var j model.JobPosting
	if !decode(w, r, &j) {
		return
	}
	job, err := h.svc.CreateJob(r.Context(), j)
	h.respond(w, http.StatusCreated, "job", job, err)
}

func (h *Handler) getJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.svc.GetJob(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, http.StatusOK, "job", job, err)
}

func (h *Handler) updateJob(w http.ResponseWriter, r *http.Request) {
	var p model.Patch
	if !decode(w, r, &p) {
		return
	}
	job, err := h.svc.UpdateJob(r.Context(), chi.URLParam(r, "id"), p)
	h.respond(w, http.StatusOK, "job", job, err)
}

func (h *Handler) deleteJob(w http.ResponseWriter, r *http.Request) {
	ok, err := h.svc.DeleteJob(r.Context(), chi.URLParam(r, "id"))
	h.writeDeleted(w, ok, err)
}

func (h *Handler) listInterviews(w http.ResponseWriter, r *http.Request) {
	list(h, w, r, h.svc.QueryInterviews)
}

func (h *Handler) scheduleInterview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		JobID         string    `json:"jobId"`
		CandidateID   string    `json:"candidateId"`
		ScheduledTime time.Time `json:"scheduledTime"`
		Location      string    `json:"location"`
	}
	if !decode(w, r, &req) {
		return
	}
	interview, err := h.svc.ScheduleInterview(r.Context(), req.JobID, req.CandidateID, req.ScheduledTime, req.Location)
	h.respond(w, http.StatusCreated, "interview", interview, err)
}

func (h *Handler) getInterview(w http.ResponseWriter, r *http.Request) {
	interview, err := h.svc.GetInterview(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, http.StatusOK, "interview", interview, err)
}

func (h *Handler) deleteInterview(w http.ResponseWriter, r *http.Request) {
	ok, err := h.svc.DeleteInterview(r.Context(), chi.URLParam(r, "id"))
	h.writeDeleted(w, ok, err)
}

func (h *Handler) respondToInterview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status model.InterviewStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		writeError(w, http.StatusBadRequest, apiErrors.ValidationFailed, "status required")
		return
	}
	interview, err := h.svc.RespondToInterview(r.Context(), chi.URLParam(r, "id"), req.Status)
	h.respond(w, http.StatusOK, "interview", interview, err)
}

func (h *Handler) completeInterview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Evaluation *model.Evaluation `json:"evaluation"`
	}
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}
	interview, err := h.svc.CompleteInterview(r.Context(), chi.URLParam(r, "id"), req.Evaluation)
	h.respond(w, http.StatusOK, "interview", interview, err)
}

func (h *Handler) listJobInterviews(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListInterviewsByJob(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, http.StatusOK, "interviews", nonNil(items), err)
}

func (h *Handler) listCandidateInterviews(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListInterviewsByCandidate(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, http.StatusOK, "interviews", nonNil(items), err)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, apiErrors.ValidationFailed, "userId required")
		return
	}
	items, err := h.svc.ListNotifications(r.Context(), userID)
	if err != nil {
		h.handleSvcError(w, err)
		return
	}
	unread, err := h.svc.UnreadCount(r.Context(), userID)
	if err != nil {
		h.handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"userId": userID, "notifications": items, "unread": unread})
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.MarkNotificationRead(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, http.StatusOK, "notification", n, err)
}

func (h *Handler) markAllRead(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		writeError(w, http.StatusBadRequest, apiErrors.ValidationFailed, "userId required")
		return
	}
	n, err := h.svc.MarkAllNotificationsRead(r.Context(), req.UserID)
	if err != nil {
		h.handleSvcError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"userId": req.UserID, "updated": n})
}

func (h *Handler) listCompanies(w http.ResponseWriter, r *http.Request) {
	list(h, w, r, h.svc.QueryCompanies)
}

func (h *Handler) createCompany(w http.ResponseWriter, r *http.Request) {
	var c model.Company
	if !decode(w, r, &c) {
		return
	}
	company, err := h.svc.CreateCompany(r.Context(), c)
	h.respond(w, http.StatusCreated, "company", company, err)
}

func (h *Handler) getCompany(w http.ResponseWriter, r *http.Request) {
	company, err := h.svc.GetCompany(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, http.StatusOK, "company", company, err)
}

func (h *Handler) updateCompany(w http.ResponseWriter, r *http.Request) {
	var p model.Patch
	if !decode(w, r, &p) {
		return
	}
	company, err := h.svc.UpdateCompany(r.Context(), chi.URLParam(r, "id"), p)
	h.respond(w, http.StatusOK, "company", company, err)
}

func (h *Handler) deleteCompany(w http.ResponseWriter, r *http.Request) {
	ok, err := h.svc.DeleteCompany(r.Context(), chi.URLParam(r, "id"))
	h.writeDeleted(w, ok, err)
}

func (h *Handler) createCompanyUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, apiErrors.ValidationFailed, "name and email required")
		return
	}
	user, err := h.svc.CreateCompanyUser(r.Context(), chi.URLParam(r, "id"), req.Name, req.Email)
	h.respond(w, http.StatusCreated, "user", user, err)
}
