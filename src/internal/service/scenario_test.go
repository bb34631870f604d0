package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ce-fello/synergy-crm/src/internal/api/apiErrors"
	"github.com/ce-fello/synergy-crm/src/internal/kv"
	"github.com/ce-fello/synergy-crm/src/internal/model"
	"github.com/ce-fello/synergy-crm/src/internal/query"
	"github.com/ce-fello/synergy-crm/src/internal/store"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type ScenarioTestSuite struct {
	suite.Suite
	ctx   context.Context
	repos *store.Repositories
	svc   *Service
}

func (s *ScenarioTestSuite) SetupTest() {
	s.ctx = context.Background()
	kvStore := kv.NewStore(kv.NewMemoryBackend(), zap.NewNop(), nil)
	s.repos = store.NewRepositories(kvStore, zap.NewNop(), nil, store.Options{})
	s.svc = NewService(s.repos, zap.NewNop())
}

func (s *ScenarioTestSuite) requireCode(err error, code apiErrors.ErrorCode) {
	var apiErr apiErrors.APIError
	s.Require().ErrorAs(err, &apiErr)
	s.Equal(code, apiErr.Code)
}

func (s *ScenarioTestSuite) teamIDs(studentID string) []string {
	st, err := s.svc.GetStudent(s.ctx, studentID)
	s.Require().NoError(err)
	return st.TeamIDs
}

func (s *ScenarioTestSuite) TestZed_StudentProvisionsUserAndDeleteKeepsIt() {
	zed, err := s.svc.CreateStudent(s.ctx, model.Student{
		Name: "Zed", Email: "z@x.com", Course: "DS", Status: model.StudentActive, Skills: []string{"SQL"},
	})
	s.Require().NoError(err)

	u, err := s.svc.Login(s.ctx, "z@x.com")
	s.Require().NoError(err)
	s.Equal(model.RoleStudent, u.Role)

	usersBefore, err := s.svc.ListUsers(s.ctx)
	s.Require().NoError(err)

	ok, err := s.svc.DeleteStudent(s.ctx, zed.ID)
	s.Require().NoError(err)
	s.True(ok)

	students, err := s.svc.ListStudents(s.ctx)
	s.Require().NoError(err)
	for _, st := range students {
		s.NotEqual(zed.ID, st.ID)
	}

	usersAfter, err := s.svc.ListUsers(s.ctx)
	s.Require().NoError(err)
	s.Equal(usersBefore, usersAfter)

	ok, err = s.svc.DeleteStudent(s.ctx, zed.ID)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *ScenarioTestSuite) TestTeamMembershipIsSymmetric() {
	team, err := s.svc.CreateTeam(s.ctx, model.Team{
		Name: "Night Owls", Project: "Search", Mentor: "Maria Lopez",
		MemberIDs: []string{"student_2", "student_3", "student_2"},
	})
	s.Require().NoError(err)
	s.Equal([]string{"student_2", "student_3"}, team.MemberIDs)
	s.Equal("student_2", team.LeaderID)
	s.Require().NotNil(team.Leader)
	s.Equal("Omar Haddad", team.Leader.Name)
	s.Len(team.Members, 2)

	s.Contains(s.teamIDs("student_2"), team.ID)
	s.Contains(s.teamIDs("student_3"), team.ID)

	updated, err := s.svc.UpdateTeam(s.ctx, team.ID, model.Patch{"memberIds": []string{"student_3", "student_1"}})
	s.Require().NoError(err)
	s.Equal("student_3", updated.LeaderID, "leader left, first member takes over")

	s.NotContains(s.teamIDs("student_2"), team.ID)
	s.Contains(s.teamIDs("student_3"), team.ID)
	s.Contains(s.teamIDs("student_1"), team.ID)
	s.Contains(s.teamIDs("student_2"), "team_1", "other memberships are untouched")
}

func (s *ScenarioTestSuite) TestUpdateTeam_KeepsLeaderStillInTeam() {
	updated, err := s.svc.UpdateTeam(s.ctx, "team_1", model.Patch{"memberIds": []string{"student_2", "student_1"}, "status": model.TeamOnHold})
	s.Require().NoError(err)
	s.Equal("student_1", updated.LeaderID)
	s.Equal(model.TeamOnHold, updated.Status)
}

func (s *ScenarioTestSuite) TestUpdateTeam_EmptyMembersClearsLeader() {
	updated, err := s.svc.UpdateTeam(s.ctx, "team_1", model.Patch{"memberIds": []string{}})
	s.Require().NoError(err)
	s.Empty(updated.LeaderID)
	s.Nil(updated.Leader)
	s.Empty(s.teamIDs("student_1"))
	s.Empty(s.teamIDs("student_2"))
}

func (s *ScenarioTestSuite) TestCreateTeam_UnknownStudent() {
	_, err := s.svc.CreateTeam(s.ctx, model.Team{Name: "Ghosts", MemberIDs: []string{"student_1", "student_404"}})
	s.requireCode(err, apiErrors.NotFound)

	teams, err := s.svc.ListTeams(s.ctx)
	s.Require().NoError(err)
	s.Len(teams, 1)
	s.Equal([]string{"team_1"}, s.teamIDs("student_1"))
}

func (s *ScenarioTestSuite) TestDeleteTeam_StripsMembership() {
	ok, err := s.svc.DeleteTeam(s.ctx, "team_1")
	s.Require().NoError(err)
	s.True(ok)
	s.Empty(s.teamIDs("student_1"))
	s.Empty(s.teamIDs("student_2"))

	ok, err = s.svc.DeleteTeam(s.ctx, "team_1")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *ScenarioTestSuite) TestDeleteStudent_ReelectsLeader() {
	_, err := s.svc.DeleteStudent(s.ctx, "student_1")
	s.Require().NoError(err)

	team, err := s.svc.GetTeam(s.ctx, "team_1")
	s.Require().NoError(err)
	s.Equal([]string{"student_2"}, team.MemberIDs)
	s.Equal("student_2", team.LeaderID)

	_, err = s.svc.GetUser(s.ctx, "user_student_1")
	s.NoError(err, "the account outlives the student")
}

func (s *ScenarioTestSuite) TestSkillMapConverges() {
	st, err := s.svc.UpdateStudentSkills(s.ctx, "student_1", []model.SkillScore{{Skill: "X", Score: 70}})
	s.Require().NoError(err)
	s.Equal(map[string]int{"X": 70}, st.SkillMap)
	s.Equal([]string{"X"}, st.Skills)

	again, err := s.svc.GetStudent(s.ctx, "student_1")
	s.Require().NoError(err)
	s.Equal(70, again.SkillMap["X"])
	s.Equal([]string{"X"}, again.Skills)
	s.Equal([]string{"team_1"}, again.TeamIDs)
}

func (s *ScenarioTestSuite) TestSkillMapBlendsCompletedTasks() {
	got, err := s.svc.GetStudentSkillMap(s.ctx, "student_1")
	s.Require().NoError(err)
	// task_1 scored 88 on Python and SQL
	s.Equal(map[string]int{"Python": 80, "SQL": 69}, got)

	st, err := s.svc.GetStudent(s.ctx, "student_1")
	s.Require().NoError(err)
	s.Equal(78, st.SkillMap["Python"], "projection is not persisted")
}

func (s *ScenarioTestSuite) TestRespondToInterview_NotifiesCompany() {
	i, err := s.svc.RespondToInterview(s.ctx, "interview_1", model.InterviewAccepted)
	s.Require().NoError(err)
	s.Equal(model.InterviewAccepted, i.Status)

	list, err := s.svc.ListNotifications(s.ctx, "user_company_1")
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	n := list[0]
	s.Equal("notifications.interviewAccepted.title", n.TitleKey)
	s.Equal("notifications.interviewAccepted.message", n.MessageKey)
	s.Equal("Omar Haddad", n.MessageParams["candidateName"])
	s.Equal("Frontend Intern", n.MessageParams["jobTitle"])
	s.NotEmpty(n.MessageParams["scheduledTime"])
	s.Equal("interview_1", n.InterviewID)
	s.False(n.IsRead)

	_, err = s.svc.RespondToInterview(s.ctx, "interview_1", model.InterviewDeclined)
	s.requireCode(err, apiErrors.Conflict)
}

func (s *ScenarioTestSuite) TestRespondToInterview_RejectsOtherStatuses() {
	_, err := s.svc.RespondToInterview(s.ctx, "interview_1", model.InterviewCompleted)
	s.requireCode(err, apiErrors.ValidationFailed)
}

func (s *ScenarioTestSuite) TestCompleteInterview_IsTerminal() {
	i, err := s.svc.CompleteInterview(s.ctx, "interview_1", &model.Evaluation{Score: 81, Notes: "solid"})
	s.Require().NoError(err)
	s.Equal(model.InterviewCompleted, i.Status)
	s.Equal(81, i.Evaluation.Score)

	_, err = s.svc.CompleteInterview(s.ctx, "interview_1", nil)
	s.requireCode(err, apiErrors.Conflict)

	_, err = s.svc.RespondToInterview(s.ctx, "interview_1", model.InterviewAccepted)
	s.requireCode(err, apiErrors.Conflict)
}

func (s *ScenarioTestSuite) TestScheduleInterview_InvitesCandidate() {
	at := time.Date(2030, 5, 1, 10, 0, 0, 0, time.UTC)
	i, err := s.svc.ScheduleInterview(s.ctx, "job_1", "student_1", at, "On site")
	s.Require().NoError(err)
	s.Equal(model.InterviewPending, i.Status)
	s.Equal("Acme Labs", i.CompanyName)

	count, err := s.svc.UnreadCount(s.ctx, "user_student_1")
	s.Require().NoError(err)
	s.Equal(1, count)

	list, err := s.svc.ListNotifications(s.ctx, "user_student_1")
	s.Require().NoError(err)
	s.Equal("notifications.interviewInvitation.title", list[0].TitleKey)
	s.Equal("2030-05-01T10:00:00Z", list[0].MessageParams["scheduledTime"])

	_, err = s.svc.ScheduleInterview(s.ctx, "job_404", "student_1", at, "")
	s.requireCode(err, apiErrors.NotFound)
}

func (s *ScenarioTestSuite) TestMarkAllNotificationsRead() {
	n, err := s.svc.MarkAllNotificationsRead(s.ctx, "user_student_2")
	s.Require().NoError(err)
	s.Equal(1, n)

	count, err := s.svc.UnreadCount(s.ctx, "user_student_2")
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *ScenarioTestSuite) TestClaimAndReleaseLead() {
	l, err := s.svc.ClaimLead(s.ctx, "lead_2", "user_agent_2")
	s.Require().NoError(err)
	s.Equal(model.LeadContacted, l.Status)
	s.Equal("Lee Park", l.Assignee.Name)

	_, err = s.svc.ClaimLead(s.ctx, "lead_2", "user_agent_1")
	s.requireCode(err, apiErrors.Conflict)

	l, err = s.svc.ReleaseLead(s.ctx, "lead_2")
	s.Require().NoError(err)
	s.Nil(l.Assignee)

	_, err = s.svc.ClaimLead(s.ctx, "lead_2", "user_agent_1")
	s.NoError(err)
}

func (s *ScenarioTestSuite) TestUpdateLead_RederivesTier() {
	l, err := s.svc.UpdateLead(s.ctx, "lead_3", model.Patch{"score": 90, "assignee": nil})
	s.Require().NoError(err)
	s.Equal(model.TierHot, l.Tier)
	s.Require().NotNil(l.Assignee, "assignee is only changed by claim and release")
}

func (s *ScenarioTestSuite) TestCreateUser_DuplicateEmail() {
	_, err := s.svc.CreateUser(s.ctx, model.User{Name: "Dup", Email: " ADMIN@synergy.io", Role: model.RoleAdmin})
	s.requireCode(err, apiErrors.Conflict)

	_, err = s.svc.CreateUser(s.ctx, model.User{Name: "Bad", Email: "bad@synergy.io", Role: "OWNER"})
	s.requireCode(err, apiErrors.ValidationFailed)
}

func (s *ScenarioTestSuite) countUsersWithEmail(email string, activeOnly bool) int {
	users, err := s.svc.ListUsers(s.ctx)
	s.Require().NoError(err)
	n := 0
	for _, u := range users {
		if strings.EqualFold(u.Email, email) && (u.IsActive || !activeOnly) {
			n++
		}
	}
	return n
}

func (s *ScenarioTestSuite) TestUpdateUser_ReactivationCannotDuplicateEmail() {
	a, err := s.svc.CreateUser(s.ctx, model.User{Name: "A", Email: "dup@x.com", Role: model.RoleAgent})
	s.Require().NoError(err)
	_, err = s.svc.SetUserIsActive(s.ctx, a.ID, false)
	s.Require().NoError(err)
	_, err = s.svc.CreateUser(s.ctx, model.User{Name: "B", Email: "dup@x.com", Role: model.RoleAgent})
	s.Require().NoError(err)

	_, err = s.svc.SetUserIsActive(s.ctx, a.ID, true)
	s.requireCode(err, apiErrors.Conflict)

	_, err = s.svc.UpdateUser(s.ctx, a.ID, model.Patch{"isActive": true})
	s.requireCode(err, apiErrors.Conflict)

	s.Equal(1, s.countUsersWithEmail("dup@x.com", true))

	renamed, err := s.svc.UpdateUser(s.ctx, a.ID, model.Patch{"isActive": true, "email": "fresh@x.com"})
	s.Require().NoError(err)
	s.True(renamed.IsActive)
}

func (s *ScenarioTestSuite) TestProvisioning_ReusesInactiveUser() {
	old, err := s.svc.CreateUser(s.ctx, model.User{Name: "Old", Email: "old@x.com", Role: model.RoleMentor})
	s.Require().NoError(err)
	_, err = s.svc.SetUserIsActive(s.ctx, old.ID, false)
	s.Require().NoError(err)

	_, err = s.svc.CreateStudent(s.ctx, model.Student{Name: "Old", Email: "old@x.com"})
	s.Require().NoError(err)
	s.Equal(1, s.countUsersWithEmail("old@x.com", false))

	_, err = s.svc.SetUserIsActive(s.ctx, "user_company_1", false)
	s.Require().NoError(err)
	_, err = s.svc.CreateCompany(s.ctx, model.Company{Name: "Acme Two", ContactEmail: "hr@acme.dev"})
	s.Require().NoError(err)
	s.Equal(1, s.countUsersWithEmail("hr@acme.dev", false))
}

func (s *ScenarioTestSuite) TestQueryUsers_MissingCompanySortsLast() {
	_, err := s.svc.CreateUser(s.ctx, model.User{Name: "Beta HR", Email: "hr@beta.io", Role: model.RoleCompanyUser, CompanyName: "Beta"})
	s.Require().NoError(err)

	companies := func(dir query.Direction) []string {
		res, err := s.svc.QueryUsers(s.ctx, query.Params{Sort: query.Sort{Key: "companyName", Direction: dir}})
		s.Require().NoError(err)
		out := make([]string, len(res.Items))
		for i, u := range res.Items {
			out[i] = u.CompanyName
		}
		return out
	}

	asc := companies(query.Asc)
	s.Equal([]string{"Acme Labs", "Beta"}, asc[:2])
	for _, c := range asc[2:] {
		s.Empty(c)
	}

	desc := companies(query.Desc)
	s.Equal([]string{"Beta", "Acme Labs"}, desc[:2])
}

func (s *ScenarioTestSuite) TestCreateCompany_ProvisionsCompanyUser() {
	c, err := s.svc.CreateCompany(s.ctx, model.Company{Name: "Initech", Industry: "Software", ContactEmail: "jobs@initech.io"})
	s.Require().NoError(err)

	u, err := s.svc.Login(s.ctx, "jobs@initech.io")
	s.Require().NoError(err)
	s.Equal(model.RoleCompanyUser, u.Role)
	s.Equal("Initech", u.CompanyName)

	extra, err := s.svc.CreateCompanyUser(s.ctx, c.ID, "Peter", "peter@initech.io")
	s.Require().NoError(err)
	s.Equal("Initech", extra.CompanyName)

	_, err = s.svc.CreateCompanyUser(s.ctx, c.ID, "Peter again", "PETER@initech.io")
	s.requireCode(err, apiErrors.Conflict)

	_, err = s.svc.CreateCompanyUser(s.ctx, "company_404", "Nobody", "nobody@initech.io")
	s.requireCode(err, apiErrors.NotFound)

	_, err = s.svc.CreateCompany(s.ctx, model.Company{Name: "initech"})
	s.requireCode(err, apiErrors.Conflict)
}

func (s *ScenarioTestSuite) TestCreateTask_RequiresStudent() {
	_, err := s.svc.CreateTask(s.ctx, model.Task{Title: "Ship it", StudentID: "student_404"})
	s.requireCode(err, apiErrors.NotFound)

	task, err := s.svc.CreateTask(s.ctx, model.Task{Title: "Ship it", StudentID: "student_3"})
	s.Require().NoError(err)
	s.Equal(model.TaskToDo, task.Status)

	tasks, err := s.svc.ListStudentTasks(s.ctx, "student_3")
	s.Require().NoError(err)
	s.Len(tasks, 1)
}

func (s *ScenarioTestSuite) TestQueryTeams_SortByMemberCount() {
	_, err := s.svc.CreateTeam(s.ctx, model.Team{Name: "Solo", MemberIDs: []string{"student_3"}})
	s.Require().NoError(err)
	_, err = s.svc.CreateTeam(s.ctx, model.Team{Name: "Empty"})
	s.Require().NoError(err)

	res, err := s.svc.QueryTeams(s.ctx, query.Params{Sort: query.Sort{Key: "memberCount", Direction: query.Desc}})
	s.Require().NoError(err)
	s.Require().Len(res.Items, 3)
	s.Equal("Insight Squad", res.Items[0].Name)
	s.Equal("Solo", res.Items[1].Name)
	s.Equal("Empty", res.Items[2].Name)
}

func (s *ScenarioTestSuite) TestQueryLeads_FilterAndPaginate() {
	res, err := s.svc.QueryLeads(s.ctx, query.Params{
		Filter: query.Filter{"tier": "HOT", "status": query.MatchAll},
		Sort:   query.Sort{Key: "score", Direction: query.Asc},
		Page:   query.Page{Page: 0, RowsPerPage: 1},
	})
	s.Require().NoError(err)
	s.Equal(2, res.TotalCount)
	s.Equal(2, res.PageCount)
	s.Require().Len(res.Items, 1)
	s.Equal("lead_4", res.Items[0].ID)

	_, err = s.svc.QueryLeads(s.ctx, query.Params{Filter: query.Filter{"nope": "x"}})
	s.requireCode(err, apiErrors.ValidationFailed)
}

func (s *ScenarioTestSuite) TestQueryLeads_UnassignedSortLast() {
	res, err := s.svc.QueryLeads(s.ctx, query.Params{Sort: query.Sort{Key: "assignee.name", Direction: query.Desc}})
	s.Require().NoError(err)
	s.Require().Len(res.Items, 4)
	s.Equal("Sam Okafor", res.Items[0].Assignee.Name)
	s.Equal("Lee Park", res.Items[1].Assignee.Name)
	s.Nil(res.Items[2].Assignee)
	s.Nil(res.Items[3].Assignee)
}

func (s *ScenarioTestSuite) TestReset_RestoresSeed() {
	_, err := s.svc.DeleteTeam(s.ctx, "team_1")
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Reset(s.ctx))

	team, err := s.svc.GetTeam(s.ctx, "team_1")
	s.Require().NoError(err)
	s.Len(team.Members, 2)
	s.Equal([]string{"team_1"}, s.teamIDs("student_1"))
}

func TestScenarioTestSuite(t *testing.T) {
	suite.Run(t, new(ScenarioTestSuite))
}
