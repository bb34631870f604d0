package store

import (
	"context"

	"github.com/ce-fello/synergy-crm/src/internal/model"

	"go.uber.org/zap"
)

func (r *Repositories) ListInterviews(ctx context.Context) ([]model.Interview, error) {
	return do(ctx, r, "interviews", "list", func() ([]model.Interview, error) {
		return r.Interviews.List(ctx)
	})
}

func (r *Repositories) ListInterviewsByCandidate(ctx context.Context, studentID string) ([]model.Interview, error) {
	return do(ctx, r, "interviews", "list", func() ([]model.Interview, error) {
		return r.Interviews.Where(ctx, func(i model.Interview) bool { return i.CandidateID == studentID })
	})
}

func (r *Repositories) ListInterviewsByJob(ctx context.Context, jobID string) ([]model.Interview, error) {
	return do(ctx, r, "interviews", "list", func() ([]model.Interview, error) {
		return r.Interviews.Where(ctx, func(i model.Interview) bool { return i.JobID == jobID })
	})
}

func (r *Repositories) GetInterview(ctx context.Context, id string) (model.Interview, error) {
	return do(ctx, r, "interviews", "get", func() (model.Interview, error) {
		return r.Interviews.Get(ctx, id)
	})
}

func (r *Repositories) CreateInterview(ctx context.Context, i model.Interview) (model.Interview, error) {
	r.Log.Debug("CreateInterview: start", zap.String("job", i.JobID), zap.String("candidate", i.CandidateID))
	return do(ctx, r, "interviews", "create", func() (model.Interview, error) {
		i.ID = r.newID("interview")
		i.CreatedAt = r.now()
		if i.Status == "" {
			i.Status = model.InterviewPending
		}
		return r.Interviews.Insert(ctx, i, true)
	})
}

// UpdateInterview runs fn against the current record under the collection
// lock, so a status check inside fn cannot race another update.
func (r *Repositories) UpdateInterview(ctx context.Context, id string, fn func(model.Interview) (model.Interview, error)) (model.Interview, error) {
	return do(ctx, r, "interviews", "update", func() (model.Interview, error) {
		return r.Interviews.Update(ctx, id, fn)
	})
}

func (r *Repositories) DeleteInterview(ctx context.Context, id string) (bool, error) {
	return do(ctx, r, "interviews", "delete", func() (bool, error) {
		return r.Interviews.Delete(ctx, id)
	})
}
