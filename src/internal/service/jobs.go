package service

import (
	"context"
	"strings"

	"github.com/ce-fello/synergy-crm/src/internal/model"
)

func (s *Service) ListJobs(ctx context.Context) ([]model.JobPosting, error) {
	jobs, err := s.repo.ListJobs(ctx)
	return jobs, s.fail(err, "jobs")
}

func (s *Service) GetJob(ctx context.Context, id string) (model.JobPosting, error) {
	j, err := s.repo.GetJob(ctx, id)
	if err != nil {
		return model.JobPosting{}, s.fail(err, "job")
	}
	return j, nil
}

func (s *Service) CreateJob(ctx context.Context, j model.JobPosting) (model.JobPosting, error) {
	if strings.TrimSpace(j.Title) == "" || strings.TrimSpace(j.CompanyName) == "" {
		return model.JobPosting{}, invalid("title and companyName required")
	}
	if !validJobStatus(j.Status) {
		return model.JobPosting{}, invalid("unknown job status " + j.Status)
	}
	created, err := s.repo.CreateJob(ctx, j)
	if err != nil {
		return created, s.fail(err, "job")
	}
	return created, nil
}

// UpdateJob merges patch onto the job. Status is set by the user and never
// derived from interview outcomes.
func (s *Service) UpdateJob(ctx context.Context, id string, patch model.Patch) (model.JobPosting, error) {
	if v, ok := patch["status"].(string); ok && (v == "" || !validJobStatus(v)) {
		return model.JobPosting{}, invalid("unknown job status " + v)
	}
	j, err := s.repo.UpdateJob(ctx, id, patch)
	if err != nil {
		return j, s.fail(err, "job")
	}
	return j, nil
}

func (s *Service) DeleteJob(ctx context.Context, id string) (bool, error) {
	ok, err := s.repo.DeleteJob(ctx, id)
	return ok, s.fail(err, "job")
}

func validJobStatus(status string) bool {
	switch status {
	case "", model.JobOpen, model.JobInterviewing, model.JobClosed:
		return true
	}
	return false
}
