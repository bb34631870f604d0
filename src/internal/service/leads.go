package service

import (
	"context"
	"strings"

	"github.com/ce-fello/synergy-crm/src/internal/model"
	"github.com/ce-fello/synergy-crm/src/internal/store"

	"go.uber.org/zap"
)

func (s *Service) ListLeads(ctx context.Context) ([]model.Lead, error) {
	leads, err := s.repo.ListLeads(ctx)
	return leads, s.fail(err, "leads")
}

func (s *Service) GetLead(ctx context.Context, id string) (model.Lead, error) {
	l, err := s.repo.GetLead(ctx, id)
	if err != nil {
		return model.Lead{}, s.fail(err, "lead")
	}
	return l, nil
}

func (s *Service) CreateLead(ctx context.Context, l model.Lead) (model.Lead, error) {
	if strings.TrimSpace(l.Name) == "" {
		return model.Lead{}, invalid("name required")
	}
	if l.Score < 0 || l.Score > 100 {
		return model.Lead{}, invalid("score must be between 0 and 100")
	}
	// a lead only gets an assignee by being claimed
	l.Assignee = nil
	created, err := s.repo.CreateLead(ctx, l)
	if err != nil {
		return created, s.fail(err, "lead")
	}
	return created, nil
}

// UpdateLead merges patch onto the lead. The assignee is owned by
// ClaimLead/ReleaseLead; a new score without an explicit tier re-derives it.
func (s *Service) UpdateLead(ctx context.Context, id string, patch model.Patch) (model.Lead, error) {
	patch = patch.Without("assignee")
	if patch.Has("score") && !patch.Has("tier") {
		cur, err := s.repo.GetLead(ctx, id)
		if err != nil {
			return model.Lead{}, s.fail(err, "lead")
		}
		next, err := model.Merge(cur, patch)
		if err != nil {
			return model.Lead{}, s.fail(err, "lead")
		}
		if next.Score < 0 || next.Score > 100 {
			return model.Lead{}, invalid("score must be between 0 and 100")
		}
		patch["tier"] = store.TierForScore(next.Score)
	}
	l, err := s.repo.UpdateLead(ctx, id, patch)
	if err != nil {
		return l, s.fail(err, "lead")
	}
	return l, nil
}

func (s *Service) DeleteLead(ctx context.Context, id string) (bool, error) {
	ok, err := s.repo.DeleteLead(ctx, id)
	return ok, s.fail(err, "lead")
}

// ClaimLead assigns an unassigned lead to an agent. A New lead moves to
// Contacted.
func (s *Service) ClaimLead(ctx context.Context, leadID, agentID string) (model.Lead, error) {
	s.log.Debug("ClaimLead: start", zap.String("lead", leadID), zap.String("agent", agentID))
	s.mu.Lock()
	defer s.mu.Unlock()

	agent, err := s.repo.GetUser(ctx, agentID)
	if err != nil {
		return model.Lead{}, s.fail(err, "agent")
	}
	if !agent.IsActive || (agent.Role != model.RoleAgent && agent.Role != model.RoleAdmin) {
		return model.Lead{}, invalid("user " + agentID + " cannot claim leads")
	}

	lead, err := s.repo.GetLead(ctx, leadID)
	if err != nil {
		return model.Lead{}, s.fail(err, "lead")
	}
	if !lead.Unassigned() {
		return model.Lead{}, conflict("lead already assigned to " + lead.Assignee.Name)
	}

	lead.Assignee = &model.Assignee{Name: agent.Name, AvatarURL: agent.AvatarURL}
	if lead.Status == model.LeadNew {
		lead.Status = model.LeadContacted
	}
	saved, err := s.repo.SaveLead(ctx, lead)
	if err != nil {
		return saved, s.fail(err, "lead")
	}
	s.log.Info("ClaimLead: success", zap.String("lead", leadID), zap.String("agent", agentID))
	return saved, nil
}

// ReleaseLead makes a lead claimable again. Its status is left alone.
func (s *Service) ReleaseLead(ctx context.Context, leadID string) (model.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, err := s.repo.GetLead(ctx, leadID)
	if err != nil {
		return model.Lead{}, s.fail(err, "lead")
	}
	if lead.Unassigned() {
		return lead, nil
	}
	lead.Assignee = nil
	saved, err := s.repo.SaveLead(ctx, lead)
	if err != nil {
		return saved, s.fail(err, "lead")
	}
	return saved, nil
}
