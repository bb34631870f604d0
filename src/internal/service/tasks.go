package service

import (
	"context"
	"strings"

	"github.com/ce-fello/synergy-crm/src/internal/model"
)

func (s *Service) ListTasks(ctx context.Context) ([]model.Task, error) {
	tasks, err := s.repo.ListTasks(ctx)
	return tasks, s.fail(err, "tasks")
}

func (s *Service) ListStudentTasks(ctx context.Context, studentID string) ([]model.Task, error) {
	if _, err := s.repo.GetStudent(ctx, studentID); err != nil {
		return nil, s.fail(err, "student")
	}
	tasks, err := s.repo.ListTasksByStudent(ctx, studentID)
	return tasks, s.fail(err, "tasks")
}

func (s *Service) GetTask(ctx context.Context, id string) (model.Task, error) {
	t, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return model.Task{}, s.fail(err, "task")
	}
	return t, nil
}

// CreateTask requires an existing student and, when set, an existing team.
func (s *Service) CreateTask(ctx context.Context, t model.Task) (model.Task, error) {
	if strings.TrimSpace(t.Title) == "" || t.StudentID == "" {
		return model.Task{}, invalid("title and studentId required")
	}
	if err := validScore(t.Score); err != nil {
		return model.Task{}, err
	}
	if _, err := s.repo.GetStudent(ctx, t.StudentID); err != nil {
		return model.Task{}, s.fail(err, "student")
	}
	if t.TeamID != "" {
		if _, err := s.repo.GetTeam(ctx, t.TeamID); err != nil {
			return model.Task{}, s.fail(err, "team")
		}
	}
	created, err := s.repo.CreateTask(ctx, t)
	if err != nil {
		return created, s.fail(err, "task")
	}
	return created, nil
}

// UpdateTask merges patch onto the task. Status changes are free-form.
func (s *Service) UpdateTask(ctx context.Context, id string, patch model.Patch) (model.Task, error) {
	cur, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return model.Task{}, s.fail(err, "task")
	}
	next, err := model.Merge(cur, patch)
	if err != nil {
		return model.Task{}, s.fail(err, "task")
	}
	if err := validScore(next.Score); err != nil {
		return model.Task{}, err
	}
	t, err := s.repo.UpdateTask(ctx, id, patch)
	if err != nil {
		return t, s.fail(err, "task")
	}
	return t, nil
}

func (s *Service) DeleteTask(ctx context.Context, id string) (bool, error) {
	ok, err := s.repo.DeleteTask(ctx, id)
	return ok, s.fail(err, "task")
}

func validScore(score *int) error {
	if score != nil && (*score < 0 || *score > 100) {
		return invalid("score must be between 0 and 100")
	}
	return nil
}
