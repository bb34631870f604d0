package store

import (
	"context"

	"github.com/ce-fello/synergy-crm/src/internal/model"
)

func (r *Repositories) ListTasks(ctx context.Context) ([]model.Task, error) {
	return do(ctx, r, "tasks", "list", func() ([]model.Task, error) {
		return r.Tasks.List(ctx)
	})
}

func (r *Repositories) ListTasksByStudent(ctx context.Context, studentID string) ([]model.Task, error) {
	return do(ctx, r, "tasks", "list", func() ([]model.Task, error) {
		return r.Tasks.Where(ctx, func(t model.Task) bool { return t.StudentID == studentID })
	})
}

func (r *Repositories) GetTask(ctx context.Context, id string) (model.Task, error) {
	return do(ctx, r, "tasks", "get", func() (model.Task, error) {
		return r.Tasks.Get(ctx, id)
	})
}

func (r *Repositories) CreateTask(ctx context.Context, t model.Task) (model.Task, error) {
	return do(ctx, r, "tasks", "create", func() (model.Task, error) {
		t.ID = r.newID("task")
		t.CreatedAt = r.now()
		if t.Status == "" {
			t.Status = model.TaskToDo
		}
		return r.Tasks.Insert(ctx, t, true)
	})
}

func (r *Repositories) UpdateTask(ctx context.Context, id string, patch model.Patch) (model.Task, error) {
	return do(ctx, r, "tasks", "update", func() (model.Task, error) {
		return r.Tasks.Update(ctx, id, merge[model.Task](patch))
	})
}

func (r *Repositories) DeleteTask(ctx context.Context, id string) (bool, error) {
	return do(ctx, r, "tasks", "delete", func() (bool, error) {
		return r.Tasks.Delete(ctx, id)
	})
}
