package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ce-fello/synergy-crm/src/internal/kv"
	"github.com/ce-fello/synergy-crm/src/internal/metrics"
	"github.com/ce-fello/synergy-crm/src/internal/model"

	"go.uber.org/zap"
)

type Repository interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id string) (model.User, error)
	FindUserByEmail(ctx context.Context, email string) (model.User, bool, error)
	FindAnyUserByEmail(ctx context.Context, email string) (model.User, bool, error)
	FindCompanyUser(ctx context.Context, companyName string) (model.User, bool, error)
	CreateUser(ctx context.Context, u model.User) (model.User, error)
	UpdateUser(ctx context.Context, id string, patch model.Patch) (model.User, error)
	SetUserIsActive(ctx context.Context, id string, isActive bool) (model.User, error)
	DeleteUser(ctx context.Context, id string) (bool, error)

	ListLeads(ctx context.Context) ([]model.Lead, error)
	GetLead(ctx context.Context, id string) (model.Lead, error)
	CreateLead(ctx context.Context, l model.Lead) (model.Lead, error)
	UpdateLead(ctx context.Context, id string, patch model.Patch) (model.Lead, error)
	SaveLead(ctx context.Context, l model.Lead) (model.Lead, error)
	DeleteLead(ctx context.Context, id string) (bool, error)

	ListStudents(ctx context.Context) ([]model.Student, error)
	GetStudent(ctx context.Context, id string) (model.Student, error)
	CreateStudent(ctx context.Context, s model.Student) (model.Student, error)
	UpdateStudent(ctx context.Context, id string, patch model.Patch) (model.Student, error)
	SaveStudent(ctx context.Context, s model.Student) (model.Student, error)
	SetStudentTeam(ctx context.Context, teamID string, add, remove []string) error
	DeleteStudent(ctx context.Context, id string) (bool, error)

	ListTeams(ctx context.Context) ([]model.Team, error)
	GetTeam(ctx context.Context, id string) (model.Team, error)
	CreateTeam(ctx context.Context, t model.Team) (model.Team, error)
	SaveTeam(ctx context.Context, t model.Team) (model.Team, error)
	DeleteTeam(ctx context.Context, id string) (bool, error)

	ListTasks(ctx context.Context) ([]model.Task, error)
	ListTasksByStudent(ctx context.Context, studentID string) ([]model.Task, error)
	GetTask(ctx context.Context, id string) (model.Task, error)
	CreateTask(ctx context.Context, t model.Task) (model.Task, error)
	UpdateTask(ctx context.Context, id string, patch model.Patch) (model.Task, error)
	DeleteTask(ctx context.Context, id string) (bool, error)

	ListJobs(ctx context.Context) ([]model.JobPosting, error)
	GetJob(ctx context.Context, id string) (model.JobPosting, error)
	CreateJob(ctx context.Context, j model.JobPosting) (model.JobPosting, error)
	UpdateJob(ctx context.Context, id string, patch model.Patch) (model.JobPosting, error)
	DeleteJob(ctx context.Context, id string) (bool, error)

	ListInterviews(ctx context.Context) ([]model.Interview, error)
	ListInterviewsByJob(ctx context.Context, jobID string) ([]model.Interview, error)
	ListInterviewsByCandidate(ctx context.Context, studentID string) ([]model.Interview, error)
	GetInterview(ctx context.Context, id string) (model.Interview, error)
	CreateInterview(ctx context.Context, i model.Interview) (model.Interview, error)
	UpdateInterview(ctx context.Context, id string, fn func(model.Interview) (model.Interview, error)) (model.Interview, error)
	DeleteInterview(ctx context.Context, id string) (bool, error)

	ListNotificationsByUser(ctx context.Context, userID string) ([]model.Notification, error)
	CreateNotification(ctx context.Context, n model.Notification) (model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) (model.Notification, error)
	MarkAllNotificationsRead(ctx context.Context, userID string) (int, error)

	ListCompanies(ctx context.Context) ([]model.Company, error)
	GetCompany(ctx context.Context, id string) (model.Company, error)
	FindCompanyByName(ctx context.Context, name string) (model.Company, bool, error)
	CreateCompany(ctx context.Context, c model.Company) (model.Company, error)
	UpdateCompany(ctx context.Context, id string, patch model.Patch) (model.Company, error)
	DeleteCompany(ctx context.Context, id string) (bool, error)

	GetStats(ctx context.Context) (Stats, error)
	Reset(ctx context.Context) error
}

type Options struct {
	// Latency is waited before every operation to emulate a remote API.
	Latency time.Duration
	Now     func() time.Time
}

type Repositories struct {
	KV      *kv.Store
	Log     *zap.Logger
	metrics *metrics.Metrics
	latency time.Duration
	now     func() time.Time
	ids     *idGenerator

	Users         *Collection[model.User]
	Leads         *Collection[model.Lead]
	Students      *Collection[model.Student]
	Teams         *Collection[model.Team]
	Tasks         *Collection[model.Task]
	Jobs          *Collection[model.JobPosting]
	Interviews    *Collection[model.Interview]
	Notifications *Collection[model.Notification]
	Companies     *Collection[model.Company]
}

func NewRepositories(store *kv.Store, logger *zap.Logger, m *metrics.Metrics, opts Options) *Repositories {
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	seed := newSeed(now())

	return &Repositories{
		KV:      store,
		Log:     logger,
		metrics: m,
		latency: opts.Latency,
		now:     now,
		ids:     &idGenerator{now: now},

		Users:         newCollection("users", store, logger, seed.users, nil),
		Leads:         newCollection("leads", store, logger, seed.leads, model.Lead.Clone),
		Students:      newCollection("students", store, logger, seed.students, model.Student.Clone),
		Teams:         newCollection("teams", store, logger, seed.teams, model.Team.Clone),
		Tasks:         newCollection("tasks", store, logger, seed.tasks, model.Task.Clone),
		Jobs:          newCollection("jobs", store, logger, seed.jobs, nil),
		Interviews:    newCollection("interviews", store, logger, seed.interviews, model.Interview.Clone),
		Notifications: newCollection("notifications", store, logger, seed.notifications, model.Notification.Clone),
		Companies:     newCollection("companies", store, logger, seed.companies, nil),
	}
}

func (r *Repositories) Now() time.Time { return r.now() }

// Reset wipes durable storage and forgets every loaded collection; the next
// access reseeds from the defaults.
func (r *Repositories) Reset(ctx context.Context) error {
	r.Log.Info("Reset: start")
	if err := r.KV.Reset(ctx); err != nil {
		return err
	}
	r.Users.unload()
	r.Leads.unload()
	r.Students.unload()
	r.Teams.unload()
	r.Tasks.unload()
	r.Jobs.unload()
	r.Interviews.unload()
	r.Notifications.unload()
	r.Companies.unload()
	r.Log.Info("Reset: success")
	return nil
}

func (r *Repositories) wait(ctx context.Context) error {
	if r.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(r.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// do waits the simulated latency, runs fn and records the outcome.
func do[T any](ctx context.Context, r *Repositories, collection, op string, fn func() (T, error)) (T, error) {
	var zero T
	if err := r.wait(ctx); err != nil {
		return zero, err
	}
	v, err := fn()
	r.metrics.StoreOp(collection, op, err)
	if err != nil {
		r.Log.Debug(collection+"."+op+": failed", zap.Error(err))
	}
	return v, err
}

// idGenerator hands out "<prefix>_<unix nanos>" ids, bumping the timestamp
// when two ids would otherwise collide.
type idGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

func (g *idGenerator) next(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ts := g.now().UnixNano()
	if ts <= g.last {
		ts = g.last + 1
	}
	g.last = ts
	return fmt.Sprintf("%s_%d", prefix, ts)
}

func (r *Repositories) newID(prefix string) string {
	return r.ids.next(prefix)
}
