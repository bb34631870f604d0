package store

import (
	"context"

	"github.com/ce-fello/synergy-crm/src/internal/model"
)

func (r *Repositories) ListJobs(ctx context.Context) ([]model.JobPosting, error) {
	return do(ctx, r, "jobs", "list", func() ([]model.JobPosting, error) {
		return r.Jobs.List(ctx)
	})
}

func (r *Repositories) GetJob(ctx context.Context, id string) (model.JobPosting, error) {
	return do(ctx, r, "jobs", "get", func() (model.JobPosting, error) {
		return r.Jobs.Get(ctx, id)
	})
}

func (r *Repositories) CreateJob(ctx context.Context, j model.JobPosting) (model.JobPosting, error) {
	return do(ctx, r, "jobs", "create", func() (model.JobPosting, error) {
		j.ID = r.newID("job")
		j.CreatedAt = r.now()
		if j.Status == "" {
			j.Status = model.JobOpen
		}
		return r.Jobs.Insert(ctx, j, true)
	})
}

func (r *Repositories) UpdateJob(ctx context.Context, id string, patch model.Patch) (model.JobPosting, error) {
	return do(ctx, r, "jobs", "update", func() (model.JobPosting, error) {
		return r.Jobs.Update(ctx, id, merge[model.JobPosting](patch))
	})
}

func (r *Repositories) DeleteJob(ctx context.Context, id string) (bool, error) {
	return do(ctx, r, "jobs", "delete", func() (bool, error) {
		return r.Jobs.Delete(ctx, id)
	})
}
