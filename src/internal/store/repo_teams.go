package store

import (
	"context"

	"github.com/ce-fello/synergy-crm/src/internal/model"

	"go.uber.org/zap"
)

func (r *Repositories) ListTeams(ctx context.Context) ([]model.Team, error) {
	return do(ctx, r, "teams", "list", func() ([]model.Team, error) {
		return r.Teams.List(ctx)
	})
}

func (r *Repositories) GetTeam(ctx context.Context, id string) (model.Team, error) {
	r.Log.Debug("GetTeam: start", zap.String("team", id))
	return do(ctx, r, "teams", "get", func() (model.Team, error) {
		return r.Teams.Get(ctx, id)
	})
}

// CreateTeam stores t as given. Membership and leader are expected to be
// settled by the caller; the matching Student.teamIds are written separately.
func (r *Repositories) CreateTeam(ctx context.Context, t model.Team) (model.Team, error) {
	r.Log.Debug("CreateTeam: start", zap.String("name", t.Name), zap.Int("members", len(t.MemberIDs)))
	return do(ctx, r, "teams", "create", func() (model.Team, error) {
		t.ID = r.newID("team")
		t.CreatedAt = r.now()
		if t.Status == "" {
			t.Status = model.TeamActive
		}
		if t.MemberIDs == nil {
			t.MemberIDs = []string{}
		}
		return r.Teams.Insert(ctx, t, true)
	})
}

func (r *Repositories) SaveTeam(ctx context.Context, t model.Team) (model.Team, error) {
	return do(ctx, r, "teams", "update", func() (model.Team, error) {
		return r.Teams.Update(ctx, t.ID, replaceWith(t))
	})
}

func (r *Repositories) DeleteTeam(ctx context.Context, id string) (bool, error) {
	return do(ctx, r, "teams", "delete", func() (bool, error) {
		return r.Teams.Delete(ctx, id)
	})
}
