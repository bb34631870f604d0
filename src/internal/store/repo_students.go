package store

import (
	"context"

	"github.com/ce-fello/synergy-crm/src/internal/model"

	"go.uber.org/zap"
)

func (r *Repositories) ListStudents(ctx context.Context) ([]model.Student, error) {
	return do(ctx, r, "students", "list", func() ([]model.Student, error) {
		return r.Students.List(ctx)
	})
}

func (r *Repositories) GetStudent(ctx context.Context, id string) (model.Student, error) {
	return do(ctx, r, "students", "get", func() (model.Student, error) {
		return r.Students.Get(ctx, id)
	})
}

func (r *Repositories) CreateStudent(ctx context.Context, s model.Student) (model.Student, error) {
	return do(ctx, r, "students", "create", func() (model.Student, error) {
		s.ID = r.newID("student")
		s.CreatedAt = r.now()
		if s.Status == "" {
			s.Status = model.StudentActive
		}
		if s.Skills == nil {
			s.Skills = []string{}
		}
		// membership is only ever written through SetStudentTeam
		s.TeamIDs = []string{}
		return r.Students.Insert(ctx, s, true)
	})
}

// UpdateStudent merges patch onto the student. teamIds is owned by team
// membership and cannot be patched.
func (r *Repositories) UpdateStudent(ctx context.Context, id string, patch model.Patch) (model.Student, error) {
	return do(ctx, r, "students", "update", func() (model.Student, error) {
		return r.Students.Update(ctx, id, merge[model.Student](patch, "teamIds"))
	})
}

func (r *Repositories) SaveStudent(ctx context.Context, s model.Student) (model.Student, error) {
	return do(ctx, r, "students", "update", func() (model.Student, error) {
		return r.Students.Update(ctx, s.ID, replaceWith(s))
	})
}

// SetStudentTeam adds teamID to the students in add and removes it from the
// students in remove, in a single write of the students collection.
func (r *Repositories) SetStudentTeam(ctx context.Context, teamID string, add, remove []string) error {
	r.Log.Debug("SetStudentTeam: start", zap.String("team", teamID), zap.Int("add", len(add)), zap.Int("remove", len(remove)))
	addSet := toSet(add)
	removeSet := toSet(remove)
	_, err := do(ctx, r, "students", "membership", func() (int, error) {
		return r.Students.UpdateWhere(ctx,
			func(s model.Student) bool {
				in := s.InTeam(teamID)
				return (addSet[s.ID] && !in) || (removeSet[s.ID] && in)
			},
			func(s model.Student) model.Student {
				if addSet[s.ID] {
					s.TeamIDs = append(s.TeamIDs, teamID)
					return s
				}
				kept := s.TeamIDs[:0]
				for _, id := range s.TeamIDs {
					if id != teamID {
						kept = append(kept, id)
					}
				}
				s.TeamIDs = kept
				return s
			})
	})
	return err
}

func (r *Repositories) DeleteStudent(ctx context.Context, id string) (bool, error) {
	return do(ctx, r, "students", "delete", func() (bool, error) {
		return r.Students.Delete(ctx, id)
	})
}

func toSet(ids []string) map[string]bool {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}
