package store

import (
	"context"

	"github.com/ce-fello/synergy-crm/src/internal/model"
)

func (r *Repositories) ListLeads(ctx context.Context) ([]model.Lead, error) {
	return do(ctx, r, "leads", "list", func() ([]model.Lead, error) {
		return r.Leads.List(ctx)
	})
}

func (r *Repositories) GetLead(ctx context.Context, id string) (model.Lead, error) {
	return do(ctx, r, "leads", "get", func() (model.Lead, error) {
		return r.Leads.Get(ctx, id)
	})
}

// CreateLead inserts a lead at the head of the list. Status defaults to New
// and an empty tier is derived from the score.
func (r *Repositories) CreateLead(ctx context.Context, l model.Lead) (model.Lead, error) {
	return do(ctx, r, "leads", "create", func() (model.Lead, error) {
		l.ID = r.newID("lead")
		l.CreatedAt = r.now()
		if l.Status == "" {
			l.Status = model.LeadNew
		}
		if l.Tier == "" {
			l.Tier = TierForScore(l.Score)
		}
		return r.Leads.Insert(ctx, l, true)
	})
}

func (r *Repositories) UpdateLead(ctx context.Context, id string, patch model.Patch) (model.Lead, error) {
	return do(ctx, r, "leads", "update", func() (model.Lead, error) {
		return r.Leads.Update(ctx, id, merge[model.Lead](patch))
	})
}

func (r *Repositories) SaveLead(ctx context.Context, l model.Lead) (model.Lead, error) {
	return do(ctx, r, "leads", "update", func() (model.Lead, error) {
		return r.Leads.Update(ctx, l.ID, replaceWith(l))
	})
}

func (r *Repositories) DeleteLead(ctx context.Context, id string) (bool, error) {
	return do(ctx, r, "leads", "delete", func() (bool, error) {
		return r.Leads.Delete(ctx, id)
	})
}

func TierForScore(score int) model.Tier {
	switch {
	case score >= 80:
		return model.TierHot
	case score >= 50:
		return model.TierWarm
	default:
		return model.TierCold
	}
}
