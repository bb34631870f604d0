package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ce-fello/synergy-crm/src/internal/model"

	"go.uber.org/zap"
)

func isNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound)
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// dedupe drops blank and repeated ids, keeping first occurrences in order.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// electLeader keeps leader when still a member, else promotes the first
// member. A team without members has no leader.
func electLeader(leader string, members []string) string {
	if len(members) == 0 {
		return ""
	}
	if contains(members, leader) {
		return leader
	}
	return members[0]
}

// diff returns the ids of next missing from prev, and of prev missing from next.
func diff(prev, next []string) (added, removed []string) {
	for _, id := range next {
		if !contains(prev, id) {
			added = append(added, id)
		}
	}
	for _, id := range prev {
		if !contains(next, id) {
			removed = append(removed, id)
		}
	}
	return added, removed
}

func (s *Service) ListTeams(ctx context.Context) ([]model.TeamDetail, error) {
	teams, err := s.repo.ListTeams(ctx)
	if err != nil {
		return nil, s.fail(err, "teams")
	}
	students, err := s.studentIndex(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.TeamDetail, len(teams))
	for i, t := range teams {
		out[i] = s.detail(t, students)
	}
	return out, nil
}

func (s *Service) GetTeam(ctx context.Context, id string) (model.TeamDetail, error) {
	t, err := s.repo.GetTeam(ctx, id)
	if err != nil {
		return model.TeamDetail{}, s.fail(err, "team")
	}
	students, err := s.studentIndex(ctx)
	if err != nil {
		return model.TeamDetail{}, err
	}
	return s.detail(t, students), nil
}

func (s *Service) studentIndex(ctx context.Context) (map[string]model.Student, error) {
	students, err := s.repo.ListStudents(ctx)
	if err != nil {
		return nil, s.fail(err, "students")
	}
	idx := make(map[string]model.Student, len(students))
	for _, st := range students {
		idx[st.ID] = st
	}
	return idx, nil
}

// detail resolves member ids into student records. Ids with no student
// behind them are skipped.
func (s *Service) detail(t model.Team, students map[string]model.Student) model.TeamDetail {
	d := model.TeamDetail{Team: t, Members: make([]model.Student, 0, len(t.MemberIDs))}
	for _, id := range t.MemberIDs {
		st, ok := students[id]
		if !ok {
			s.log.Warn("team references missing student", zap.String("team", t.ID), zap.String("student", id))
			continue
		}
		d.Members = append(d.Members, st)
		if id == t.LeaderID {
			leader := st
			d.Leader = &leader
		}
	}
	return d
}

// CreateTeam stores a team whose members are t.MemberIDs and adds the team
// to each member's teamIds.
func (s *Service) CreateTeam(ctx context.Context, t model.Team) (model.TeamDetail, error) {
	if strings.TrimSpace(t.Name) == "" {
		return model.TeamDetail{}, invalid("name required")
	}
	s.log.Debug("CreateTeam: start", zap.String("name", t.Name), zap.Int("members", len(t.MemberIDs)))
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveTeam(ctx, model.Team{}, t, true)
}

// UpdateTeam merges patch onto the team. When the patch carries memberIds the
// membership is replaced and every added or removed student is updated.
func (s *Service) UpdateTeam(ctx context.Context, id string, patch model.Patch) (model.TeamDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.repo.GetTeam(ctx, id)
	if err != nil {
		return model.TeamDetail{}, s.fail(err, "team")
	}
	next, err := model.Merge(cur, patch.Without("id", "createdAt"))
	if err != nil {
		return model.TeamDetail{}, s.fail(err, "team")
	}
	if strings.TrimSpace(next.Name) == "" {
		return model.TeamDetail{}, invalid("name required")
	}
	return s.saveTeam(ctx, cur, next, false)
}

// saveTeam must be called with s.mu held.
func (s *Service) saveTeam(ctx context.Context, prev, next model.Team, create bool) (model.TeamDetail, error) {
	next.MemberIDs = dedupe(next.MemberIDs)

	students, err := s.studentIndex(ctx)
	if err != nil {
		return model.TeamDetail{}, err
	}
	for _, id := range next.MemberIDs {
		if _, ok := students[id]; !ok {
			return model.TeamDetail{}, notFound("student " + id + " not found")
		}
	}
	next.LeaderID = electLeader(next.LeaderID, next.MemberIDs)

	var persistErr error
	var saved model.Team
	if create {
		saved, err = s.repo.CreateTeam(ctx, next)
	} else {
		saved, err = s.repo.SaveTeam(ctx, next)
	}
	if err := keepPersist(&persistErr, err); err != nil {
		return model.TeamDetail{}, s.fail(err, "team")
	}

	added, removed := diff(prev.MemberIDs, saved.MemberIDs)
	if len(added) > 0 || len(removed) > 0 {
		err = s.repo.SetStudentTeam(ctx, saved.ID, added, removed)
		if err := keepPersist(&persistErr, err); err != nil {
			return model.TeamDetail{}, s.fail(err, "students")
		}
		students, err = s.studentIndex(ctx)
		if err != nil {
			return model.TeamDetail{}, err
		}
	}
	s.log.Info("saveTeam: success", zap.String("team", saved.ID),
		zap.Int("added", len(added)), zap.Int("removed", len(removed)))
	return s.detail(saved, students), s.fail(persistErr, "team")
}

// DeleteTeam removes the team and strips its id from every student that
// still lists it.
func (s *Service) DeleteTeam(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.repo.GetTeam(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, s.fail(err, "team")
	}

	var persistErr error
	students, err := s.repo.ListStudents(ctx)
	if err != nil {
		return false, s.fail(err, "students")
	}
	var members []string
	for _, st := range students {
		if st.InTeam(id) {
			members = append(members, st.ID)
		}
	}
	if len(members) > 0 {
		err = s.repo.SetStudentTeam(ctx, id, nil, members)
		if err := keepPersist(&persistErr, err); err != nil {
			return false, s.fail(err, "students")
		}
	}

	ok, err := s.repo.DeleteTeam(ctx, id)
	if err := keepPersist(&persistErr, err); err != nil {
		return false, s.fail(err, "team")
	}
	s.log.Info("DeleteTeam: success", zap.String("team", t.ID), zap.Int("members", len(members)))
	return ok, s.fail(persistErr, "team")
}
