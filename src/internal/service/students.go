package service

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/ce-fello/synergy-crm/src/internal/model"

	"go.uber.org/zap"
)

// Weights used when a completed task is blended into an existing skill score.
const (
	skillHistoryWeight = 0.8
	skillTaskWeight    = 0.2
)

func (s *Service) ListStudents(ctx context.Context) ([]model.Student, error) {
	students, err := s.repo.ListStudents(ctx)
	return students, s.fail(err, "students")
}

func (s *Service) GetStudent(ctx context.Context, id string) (model.Student, error) {
	st, err := s.repo.GetStudent(ctx, id)
	if err != nil {
		return model.Student{}, s.fail(err, "student")
	}
	return st, nil
}

// CreateStudent stores the student and provisions a STUDENT account for its
// email unless an active user already holds it.
func (s *Service) CreateStudent(ctx context.Context, st model.Student) (model.Student, error) {
	if strings.TrimSpace(st.Name) == "" || strings.TrimSpace(st.Email) == "" {
		return model.Student{}, invalid("name and email required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var persistErr error
	created, err := s.repo.CreateStudent(ctx, st)
	if err := keepPersist(&persistErr, err); err != nil {
		return model.Student{}, s.fail(err, "student")
	}

	_, exists, err := s.repo.FindAnyUserByEmail(ctx, created.Email)
	if err != nil {
		return created, s.fail(err, "user")
	}
	if !exists {
		u, err := s.repo.CreateUser(ctx, model.User{Email: created.Email, Name: created.Name, Role: model.RoleStudent})
		if err := keepPersist(&persistErr, err); err != nil {
			return created, s.fail(err, "user")
		}
		s.log.Info("CreateStudent: provisioned user", zap.String("student", created.ID), zap.String("user", u.ID))
	}
	return created, s.fail(persistErr, "student")
}

func (s *Service) UpdateStudent(ctx context.Context, id string, patch model.Patch) (model.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.repo.UpdateStudent(ctx, id, patch.Without("teamIds"))
	if err != nil {
		return st, s.fail(err, "student")
	}
	return st, nil
}

// DeleteStudent removes the student from every team it belongs to before
// deleting it. A team that loses its leader gets its first remaining member.
// The student's user account, tasks and interviews are kept.
func (s *Service) DeleteStudent(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.repo.GetStudent(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, s.fail(err, "student")
	}

	var persistErr error
	for _, teamID := range st.TeamIDs {
		team, err := s.repo.GetTeam(ctx, teamID)
		if isNotFound(err) {
			continue
		}
		if err != nil {
			return false, s.fail(err, "team")
		}
		team.MemberIDs = without(team.MemberIDs, id)
		team.LeaderID = electLeader(team.LeaderID, team.MemberIDs)
		_, err = s.repo.SaveTeam(ctx, team)
		if err := keepPersist(&persistErr, err); err != nil {
			return false, s.fail(err, "team")
		}
	}

	ok, err := s.repo.DeleteStudent(ctx, id)
	if err := keepPersist(&persistErr, err); err != nil {
		return false, s.fail(err, "student")
	}
	s.log.Info("DeleteStudent: success", zap.String("student", id), zap.Int("teams", len(st.TeamIDs)))
	return ok, s.fail(persistErr, "student")
}

// UpdateStudentSkills replaces the skill map with exactly the given scores
// and resets the skill list to the map's sorted keys.
func (s *Service) UpdateStudentSkills(ctx context.Context, id string, scores []model.SkillScore) (model.Student, error) {
	skillMap := make(map[string]int, len(scores))
	for _, sc := range scores {
		name := strings.TrimSpace(sc.Skill)
		if name == "" {
			return model.Student{}, invalid("skill name required")
		}
		if sc.Score < 0 || sc.Score > 100 {
			return model.Student{}, invalid("skill score must be between 0 and 100")
		}
		skillMap[name] = sc.Score
	}
	skills := make([]string, 0, len(skillMap))
	for k := range skillMap {
		skills = append(skills, k)
	}
	sort.Strings(skills)

	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.repo.GetStudent(ctx, id)
	if err != nil {
		return model.Student{}, s.fail(err, "student")
	}
	st.SkillMap = skillMap
	st.Skills = skills
	saved, err := s.repo.SaveStudent(ctx, st)
	if err != nil {
		return saved, s.fail(err, "student")
	}
	s.log.Info("UpdateStudentSkills: success", zap.String("student", id), zap.Int("skills", len(skills)))
	return saved, nil
}

// GetStudentSkillMap blends the stored skill map with the student's scored,
// completed tasks, oldest due date first. Nothing is written back.
func (s *Service) GetStudentSkillMap(ctx context.Context, id string) (map[string]int, error) {
	st, err := s.repo.GetStudent(ctx, id)
	if err != nil {
		return nil, s.fail(err, "student")
	}
	tasks, err := s.repo.ListTasksByStudent(ctx, id)
	if err != nil {
		return nil, s.fail(err, "tasks")
	}
	return blendSkills(st.SkillMap, tasks), nil
}

func blendSkills(stored map[string]int, tasks []model.Task) map[string]int {
	out := make(map[string]int, len(stored))
	for k, v := range stored {
		out[k] = v
	}

	var done []model.Task
	for _, t := range tasks {
		if t.Status == model.TaskCompleted && t.Score != nil {
			done = append(done, t)
		}
	}
	sort.SliceStable(done, func(i, j int) bool { return done[i].DueDate.Before(done[j].DueDate) })

	for _, t := range done {
		score := *t.Score
		for _, skill := range t.RelatedSkills {
			old, ok := out[skill]
			if !ok {
				out[skill] = score
				continue
			}
			out[skill] = int(math.Round(float64(old)*skillHistoryWeight + float64(score)*skillTaskWeight))
		}
	}
	return out
}
