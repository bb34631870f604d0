package store

import (
	"time"

	"github.com/ce-fello/synergy-crm/src/internal/model"
)

// seedData produces the default dataset. Every call returns fresh slices so a
// reseed never shares memory with a previous load.
type seedData struct {
	now time.Time
}

func newSeed(now time.Time) seedData {
	return seedData{now: now.Truncate(time.Second)}
}

func (s seedData) ago(d time.Duration) time.Time { return s.now.Add(-d) }

func score(v int) *int { return &v }

func (s seedData) users() []model.User {
	return []model.User{
		{ID: "user_admin", Email: "admin@synergy.io", Name: "Ava Admin", Role: model.RoleAdmin, IsActive: true, CreatedAt: s.ago(90 * 24 * time.Hour)},
		{ID: "user_agent_1", Email: "sam.agent@synergy.io", Name: "Sam Okafor", Role: model.RoleAgent, AvatarURL: "/avatars/sam.png", IsActive: true, CreatedAt: s.ago(80 * 24 * time.Hour)},
		{ID: "user_agent_2", Email: "lee.agent@synergy.io", Name: "Lee Park", Role: model.RoleAgent, AvatarURL: "/avatars/lee.png", IsActive: true, CreatedAt: s.ago(75 * 24 * time.Hour)},
		{ID: "user_mentor_1", Email: "maria.mentor@synergy.io", Name: "Maria Lopez", Role: model.RoleMentor, IsActive: true, CreatedAt: s.ago(70 * 24 * time.Hour)},
		{ID: "user_student_1", Email: "nina@students.io", Name: "Nina Petrova", Role: model.RoleStudent, IsActive: true, CreatedAt: s.ago(60 * 24 * time.Hour)},
		{ID: "user_student_2", Email: "omar@students.io", Name: "Omar Haddad", Role: model.RoleStudent, IsActive: true, CreatedAt: s.ago(60 * 24 * time.Hour)},
		{ID: "user_company_1", Email: "hr@acme.dev", Name: "Acme Recruiting", Role: model.RoleCompanyUser, CompanyName: "Acme Labs", IsActive: true, CreatedAt: s.ago(50 * 24 * time.Hour)},
	}
}

func (s seedData) leads() []model.Lead {
	return []model.Lead{
		{ID: "lead_1", Name: "Jordan Blake", Email: "jordan@mail.com", Score: 92, Tier: model.TierHot, Status: model.LeadQualified,
			Assignee: &model.Assignee{Name: "Sam Okafor", AvatarURL: "/avatars/sam.png"}, Classification: "Individual", Source: "Webinar", CreatedAt: s.ago(10 * 24 * time.Hour)},
		{ID: "lead_2", Name: "Priya Nair", Email: "priya@mail.com", Score: 67, Tier: model.TierWarm, Status: model.LeadNew,
			Classification: "Individual", Source: "Website", CreatedAt: s.ago(7 * 24 * time.Hour)},
		{ID: "lead_3", Name: "Globex Corp", Email: "talent@globex.com", Score: 41, Tier: model.TierCold, Status: model.LeadContacted,
			Assignee: &model.Assignee{Name: "Lee Park", AvatarURL: "/avatars/lee.png"}, Classification: "Corporate", Source: "Referral", CreatedAt: s.ago(5 * 24 * time.Hour)},
		{ID: "lead_4", Name: "Tomás Silva", Email: "tomas@mail.com", Score: 85, Tier: model.TierHot, Status: model.LeadNew,
			Classification: "Individual", Source: "Website", CreatedAt: s.ago(2 * 24 * time.Hour)},
	}
}

func (s seedData) students() []model.Student {
	return []model.Student{
		{ID: "student_1", Name: "Nina Petrova", Email: "nina@students.io", Course: "Data Science", Status: model.StudentActive,
			Skills: []string{"Python", "SQL"}, SkillMap: map[string]int{"Python": 78, "SQL": 64}, TeamIDs: []string{"team_1"}, CreatedAt: s.ago(60 * 24 * time.Hour)},
		{ID: "student_2", Name: "Omar Haddad", Email: "omar@students.io", Course: "Web Development", Status: model.StudentActive,
			Skills: []string{"JavaScript", "React"}, SkillMap: map[string]int{"JavaScript": 70, "React": 58}, TeamIDs: []string{"team_1"}, CreatedAt: s.ago(60 * 24 * time.Hour)},
		{ID: "student_3", Name: "Chen Wei", Email: "chen@students.io", Course: "Data Science", Status: model.StudentGraduated,
			Skills: []string{"R"}, TeamIDs: []string{}, CreatedAt: s.ago(200 * 24 * time.Hour)},
	}
}

func (s seedData) teams() []model.Team {
	return []model.Team{
		{ID: "team_1", Name: "Insight Squad", Project: "Churn dashboard", Status: model.TeamActive, Mentor: "Maria Lopez",
			LeaderID: "student_1", MemberIDs: []string{"student_1", "student_2"}, CreatedAt: s.ago(30 * 24 * time.Hour)},
	}
}

func (s seedData) tasks() []model.Task {
	return []model.Task{
		{ID: "task_1", StudentID: "student_1", TeamID: "team_1", Title: "Clean event data", Status: model.TaskCompleted,
			DueDate: s.ago(14 * 24 * time.Hour), Score: score(88), RelatedSkills: []string{"Python", "SQL"}, CreatedAt: s.ago(20 * 24 * time.Hour)},
		{ID: "task_2", StudentID: "student_2", TeamID: "team_1", Title: "Build chart components", Status: model.TaskInProgress,
			DueDate: s.now.Add(3 * 24 * time.Hour), RelatedSkills: []string{"React"}, CreatedAt: s.ago(6 * 24 * time.Hour)},
	}
}

func (s seedData) jobs() []model.JobPosting {
	return []model.JobPosting{
		{ID: "job_1", Title: "Junior Data Analyst", CompanyName: "Acme Labs", Status: model.JobOpen, MatchCount: 4,
			Description: "SQL and Python for product analytics.", Location: "Remote", CreatedAt: s.ago(12 * 24 * time.Hour)},
		{ID: "job_2", Title: "Frontend Intern", CompanyName: "Acme Labs", Status: model.JobInterviewing, MatchCount: 2,
			Description: "React internship.", Location: "Berlin", CreatedAt: s.ago(9 * 24 * time.Hour)},
	}
}

func (s seedData) interviews() []model.Interview {
	return []model.Interview{
		{ID: "interview_1", JobID: "job_2", CandidateID: "student_2", CompanyName: "Acme Labs",
			ScheduledTime: s.now.Add(48 * time.Hour), Location: "Video call", Status: model.InterviewPending, CreatedAt: s.ago(24 * time.Hour)},
	}
}

func (s seedData) notifications() []model.Notification {
	return []model.Notification{
		{ID: "notif_1", UserID: "user_student_2", TitleKey: "notifications.interviewInvitation.title",
			MessageKey: "notifications.interviewInvitation.message",
			MessageParams: map[string]string{"companyName": "Acme Labs", "jobTitle": "Frontend Intern"},
			InterviewID: "interview_1", CreatedAt: s.ago(24 * time.Hour)},
	}
}

func (s seedData) companies() []model.Company {
	return []model.Company{
		{ID: "company_1", Name: "Acme Labs", Industry: "Software", ContactEmail: "hr@acme.dev", CreatedAt: s.ago(50 * 24 * time.Hour)},
	}
}
