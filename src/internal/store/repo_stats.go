package store

import (
	"context"

	"github.com/ce-fello/synergy-crm/src/internal/model"

	"go.uber.org/zap"
)

type Stats struct {
	LeadsByTier       map[string]int `json:"leads_by_tier"`
	LeadsByStatus     map[string]int `json:"leads_by_status"`
	UnassignedLeads   int            `json:"unassigned_leads"`
	StudentsByStatus  map[string]int `json:"students_by_status"`
	TeamsByStatus     map[string]int `json:"teams_by_status"`
	JobsByStatus      map[string]int `json:"jobs_by_status"`
	InterviewsByState map[string]int `json:"interviews_by_status"`
	UsersByRole       map[string]int `json:"users_by_role"`
}

func countBy[T any](items []T, key func(T) string) map[string]int {
	result := make(map[string]int)
	for _, it := range items {
		result[key(it)]++
	}
	return result
}

func (r *Repositories) GetStats(ctx context.Context) (Stats, error) {
	r.Log.Debug("GetStats: start")
	return do(ctx, r, "stats", "get", func() (Stats, error) {
		var s Stats

		leads, err := r.Leads.List(ctx)
		if err != nil {
			return Stats{}, err
		}
		s.LeadsByTier = countBy(leads, func(l model.Lead) string { return string(l.Tier) })
		s.LeadsByStatus = countBy(leads, func(l model.Lead) string { return l.Status })
		for _, l := range leads {
			if l.Unassigned() {
				s.UnassignedLeads++
			}
		}

		students, err := r.Students.List(ctx)
		if err != nil {
			return Stats{}, err
		}
		s.StudentsByStatus = countBy(students, func(st model.Student) string { return st.Status })

		teams, err := r.Teams.List(ctx)
		if err != nil {
			return Stats{}, err
		}
		s.TeamsByStatus = countBy(teams, func(t model.Team) string { return t.Status })

		jobs, err := r.Jobs.List(ctx)
		if err != nil {
			return Stats{}, err
		}
		s.JobsByStatus = countBy(jobs, func(j model.JobPosting) string { return j.Status })

		interviews, err := r.Interviews.List(ctx)
		if err != nil {
			return Stats{}, err
		}
		s.InterviewsByState = countBy(interviews, func(i model.Interview) string { return string(i.Status) })

		users, err := r.Users.List(ctx)
		if err != nil {
			return Stats{}, err
		}
		s.UsersByRole = countBy(users, func(u model.User) string { return string(u.Role) })

		r.Log.Debug("GetStats: success", zap.Int("leads", len(leads)), zap.Int("students", len(students)))
		return s, nil
	})
}
