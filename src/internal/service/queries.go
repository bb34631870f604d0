package service

import (
	"context"
	"strings"

	"github.com/ce-fello/synergy-crm/src/internal/model"
	"github.com/ce-fello/synergy-crm/src/internal/query"
)

func text[T any](searchable bool, v func(T) any) query.Field[T] {
	return query.Field[T]{Kind: query.Text, Searchable: searchable, Value: v}
}

func enum[T any](v func(T) any) query.Field[T] {
	return query.Field[T]{Kind: query.Enum, Value: v}
}

func number[T any](v func(T) any) query.Field[T] {
	return query.Field[T]{Kind: query.Number, Value: v}
}

var UserSchema = query.Schema[model.User]{
	"name":        text(true, func(u model.User) any { return u.Name }),
	"email":       text(true, func(u model.User) any { return u.Email }),
	"role":        enum(func(u model.User) any { return string(u.Role) }),
	"companyName": text(true, func(u model.User) any { return u.CompanyName }),
	"isActive":    enum(func(u model.User) any { return u.IsActive }),
	"createdAt":   text(false, func(u model.User) any { return u.CreatedAt }),
}

var LeadSchema = query.Schema[model.Lead]{
	"name":           text(true, func(l model.Lead) any { return l.Name }),
	"email":          text(true, func(l model.Lead) any { return l.Email }),
	"score":          number(func(l model.Lead) any { return l.Score }),
	"tier":           enum(func(l model.Lead) any { return string(l.Tier) }),
	"status":         enum(func(l model.Lead) any { return l.Status }),
	"classification": enum(func(l model.Lead) any { return l.Classification }),
	"source":         enum(func(l model.Lead) any { return l.Source }),
	"assignee.name": text(true, func(l model.Lead) any {
		if l.Assignee == nil {
			return nil
		}
		return l.Assignee.Name
	}),
	"createdAt": text(false, func(l model.Lead) any { return l.CreatedAt }),
}

var StudentSchema = query.Schema[model.Student]{
	"name":       text(true, func(s model.Student) any { return s.Name }),
	"email":      text(true, func(s model.Student) any { return s.Email }),
	"course":     enum(func(s model.Student) any { return s.Course }),
	"status":     enum(func(s model.Student) any { return s.Status }),
	"skills":     text(true, func(s model.Student) any { return strings.Join(s.Skills, ", ") }),
	"teamCount":  number(func(s model.Student) any { return len(s.TeamIDs) }),
	"skillCount": number(func(s model.Student) any { return len(s.Skills) }),
	"createdAt":  text(false, func(s model.Student) any { return s.CreatedAt }),
}

var TeamSchema = query.Schema[model.TeamDetail]{
	"name":    text(true, func(t model.TeamDetail) any { return t.Name }),
	"project": text(true, func(t model.TeamDetail) any { return t.Project }),
	"mentor":  text(true, func(t model.TeamDetail) any { return t.Mentor }),
	"status":  enum(func(t model.TeamDetail) any { return t.Status }),
	"leader.name": text(true, func(t model.TeamDetail) any {
		if t.Leader == nil {
			return nil
		}
		return t.Leader.Name
	}),
	"memberCount": number(func(t model.TeamDetail) any { return len(t.MemberIDs) }),
	"createdAt":   text(false, func(t model.TeamDetail) any { return t.CreatedAt }),
}

var TaskSchema = query.Schema[model.Task]{
	"title":     text(true, func(t model.Task) any { return t.Title }),
	"studentId": enum(func(t model.Task) any { return t.StudentID }),
	"teamId":    enum(func(t model.Task) any { return t.TeamID }),
	"status":    enum(func(t model.Task) any { return t.Status }),
	"dueDate":   text(false, func(t model.Task) any { return t.DueDate }),
	"score":     number(func(t model.Task) any { return t.Score }),
}

var JobSchema = query.Schema[model.JobPosting]{
	"title":       text(true, func(j model.JobPosting) any { return j.Title }),
	"companyName": text(true, func(j model.JobPosting) any { return j.CompanyName }),
	"location":    text(true, func(j model.JobPosting) any { return j.Location }),
	"status":      enum(func(j model.JobPosting) any { return j.Status }),
	"matchCount":  number(func(j model.JobPosting) any { return j.MatchCount }),
	"createdAt":   text(false, func(j model.JobPosting) any { return j.CreatedAt }),
}

var InterviewSchema = query.Schema[model.Interview]{
	"companyName":   text(true, func(i model.Interview) any { return i.CompanyName }),
	"location":      text(true, func(i model.Interview) any { return i.Location }),
	"jobId":         enum(func(i model.Interview) any { return i.JobID }),
	"candidateId":   enum(func(i model.Interview) any { return i.CandidateID }),
	"status":        enum(func(i model.Interview) any { return string(i.Status) }),
	"scheduledTime": text(false, func(i model.Interview) any { return i.ScheduledTime }),
	"evaluation.score": number(func(i model.Interview) any {
		if i.Evaluation == nil {
			return nil
		}
		return i.Evaluation.Score
	}),
}

var CompanySchema = query.Schema[model.Company]{
	"name":         text(true, func(c model.Company) any { return c.Name }),
	"industry":     enum(func(c model.Company) any { return c.Industry }),
	"contactEmail": text(true, func(c model.Company) any { return c.ContactEmail }),
	"createdAt":    text(false, func(c model.Company) any { return c.CreatedAt }),
}

func run[T any](s *Service, items []T, err error, schema query.Schema[T], p query.Params, what string) (query.Result[T], error) {
	if err != nil {
		return query.Result[T]{}, err
	}
	res, err := query.Apply(items, schema, p)
	if err != nil {
		return query.Result[T]{}, s.fail(err, what)
	}
	return res, nil
}

func (s *Service) QueryUsers(ctx context.Context, p query.Params) (query.Result[model.User], error) {
	items, err := s.ListUsers(ctx)
	return run(s, items, err, UserSchema, p, "users")
}

func (s *Service) QueryLeads(ctx context.Context, p query.Params) (query.Result[model.Lead], error) {
	items, err := s.ListLeads(ctx)
	return run(s, items, err, LeadSchema, p, "leads")
}

func (s *Service) QueryStudents(ctx context.Context, p query.Params) (query.Result[model.Student], error) {
	items, err := s.ListStudents(ctx)
	return run(s, items, err, StudentSchema, p, "students")
}

func (s *Service) QueryTeams(ctx context.Context, p query.Params) (query.Result[model.TeamDetail], error) {
	items, err := s.ListTeams(ctx)
	return run(s, items, err, TeamSchema, p, "teams")
}

func (s *Service) QueryTasks(ctx context.Context, p query.Params) (query.Result[model.Task], error) {
	items, err := s.ListTasks(ctx)
	return run(s, items, err, TaskSchema, p, "tasks")
}

func (s *Service) QueryJobs(ctx context.Context, p query.Params) (query.Result[model.JobPosting], error) {
	items, err := s.ListJobs(ctx)
	return run(s, items, err, JobSchema, p, "jobs")
}

func (s *Service) QueryInterviews(ctx context.Context, p query.Params) (query.Result[model.Interview], error) {
	items, err := s.ListInterviews(ctx)
	return run(s, items, err, InterviewSchema, p, "interviews")
}

func (s *Service) QueryCompanies(ctx context.Context, p query.Params) (query.Result[model.Company], error) {
	items, err := s.ListCompanies(ctx)
	return run(s, items, err, CompanySchema, p, "companies")
}
