package model

import "time"

type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleAgent       Role = "AGENT"
	RoleMentor      Role = "MENTOR"
	RoleStudent     Role = "STUDENT"
	RoleCompanyUser Role = "COMPANY_USER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAgent, RoleMentor, RoleStudent, RoleCompanyUser:
		return true
	}
	return false
}

type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Role        Role      `json:"role"`
	CompanyName string    `json:"companyName,omitempty"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (u User) EntityID() string { return u.ID }

type Tier string

const (
	TierHot  Tier = "HOT"
	TierWarm Tier = "WARM"
	TierCold Tier = "COLD"
)

const (
	LeadNew       = "New"
	LeadContacted = "Contacted"
	LeadQualified = "Qualified"
	LeadConverted = "Converted"
	LeadLost      = "Lost"
)

// Assignee is a snapshot of the claiming user taken at claim time.
// It is not refreshed when the user changes.
type Assignee struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

type Lead struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	Score          int       `json:"score"`
	Tier           Tier      `json:"tier"`
	Status         string    `json:"status"`
	Assignee       *Assignee `json:"assignee,omitempty"`
	Classification string    `json:"classification"`
	Source         string    `json:"source,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (l Lead) EntityID() string { return l.ID }

func (l Lead) Unassigned() bool { return l.Assignee == nil }

func (l Lead) Clone() Lead {
	if l.Assignee != nil {
		a := *l.Assignee
		l.Assignee = &a
	}
	return l
}

const (
	StudentActive    = "Active"
	StudentInactive  = "Inactive"
	StudentGraduated = "Graduated"
)

type Student struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Course    string         `json:"course"`
	Status    string         `json:"status"`
	Skills    []string       `json:"skills"`
	SkillMap  map[string]int `json:"skillMap,omitempty"`
	TeamIDs   []string       `json:"teamIds"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (s Student) EntityID() string { return s.ID }

func (s Student) Clone() Student {
	s.Skills = append([]string(nil), s.Skills...)
	s.TeamIDs = append([]string(nil), s.TeamIDs...)
	if s.SkillMap != nil {
		m := make(map[string]int, len(s.SkillMap))
		for k, v := range s.SkillMap {
			m[k] = v
		}
		s.SkillMap = m
	}
	return s
}

func (s Student) InTeam(teamID string) bool {
	for _, id := range s.TeamIDs {
		if id == teamID {
			return true
		}
	}
	return false
}

type SkillScore struct {
	Skill string `json:"skill"`
	Score int    `json:"score"`
}

const (
	TeamActive    = "Active"
	TeamCompleted = "Completed"
	TeamOnHold    = "On Hold"
)

// Team stores membership by student id. Full student records are resolved
// at read time into a TeamDetail.
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Project   string    `json:"project"`
	Status    string    `json:"status"`
	Mentor    string    `json:"mentor"`
	LeaderID  string    `json:"leaderId"`
	MemberIDs []string  `json:"memberIds"`
	CreatedAt time.Time `json:"createdAt"`
}

func (t Team) EntityID() string { return t.ID }

func (t Team) Clone() Team {
	t.MemberIDs = append([]string(nil), t.MemberIDs...)
	return t
}

type TeamDetail struct {
	Team
	Leader  *Student  `json:"leader,omitempty"`
	Members []Student `json:"members"`
}

const (
	TaskToDo       = "To Do"
	TaskInProgress = "In Progress"
	TaskCompleted  = "Completed"
)

type Task struct {
	ID            string    `json:"id"`
	StudentID     string    `json:"studentId"`
	TeamID        string    `json:"teamId,omitempty"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Status        string    `json:"status"`
	DueDate       time.Time `json:"dueDate"`
	Score         *int      `json:"score,omitempty"`
	RelatedSkills []string  `json:"relatedSkills,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (t Task) EntityID() string { return t.ID }

func (t Task) Clone() Task {
	t.RelatedSkills = append([]string(nil), t.RelatedSkills...)
	if t.Score != nil {
		v := *t.Score
		t.Score = &v
	}
	return t
}

const (
	JobOpen         = "Open"
	JobInterviewing = "Interviewing"
	JobClosed       = "Closed"
)

type JobPosting struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	CompanyName string    `json:"companyName"`
	Status      string    `json:"status"`
	MatchCount  int       `json:"matchCount"`
	Description string    `json:"description"`
	Location    string    `json:"location,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (j JobPosting) EntityID() string { return j.ID }

type InterviewStatus string

const (
	InterviewPending   InterviewStatus = "Pending"
	InterviewAccepted  InterviewStatus = "Accepted"
	InterviewDeclined  InterviewStatus = "Declined"
	InterviewCompleted InterviewStatus = "Completed"
)

type Evaluation struct {
	Score int    `json:"score"`
	Notes string `json:"notes,omitempty"`
}

type Interview struct {
	ID            string          `json:"id"`
	JobID         string          `json:"jobId"`
	CandidateID   string          `json:"candidateId"`
	CompanyName   string          `json:"companyName"`
	ScheduledTime time.Time       `json:"scheduledTime"`
	Location      string          `json:"location"`
	Status        InterviewStatus `json:"status"`
	Evaluation    *Evaluation     `json:"evaluation,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func (i Interview) EntityID() string { return i.ID }

func (i Interview) Clone() Interview {
	if i.Evaluation != nil {
		e := *i.Evaluation
		i.Evaluation = &e
	}
	return i
}

type Notification struct {
	ID            string            `json:"id"`
	UserID        string            `json:"userId"`
	TitleKey      string            `json:"titleKey"`
	MessageKey    string            `json:"messageKey"`
	MessageParams map[string]string `json:"messageParams,omitempty"`
	IsRead        bool              `json:"isRead"`
	InterviewID   string            `json:"interviewId,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
}

func (n Notification) EntityID() string { return n.ID }

func (n Notification) Clone() Notification {
	if n.MessageParams != nil {
		m := make(map[string]string, len(n.MessageParams))
		for k, v := range n.MessageParams {
			m[k] = v
		}
		n.MessageParams = m
	}
	return n
}

type Company struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Industry     string    `json:"industry"`
	ContactEmail string    `json:"contactEmail"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (c Company) EntityID() string { return c.ID }

type AppError string

func (e AppError) Error() string { return string(e) }

const (
	ErrNotFound   = AppError("NOT_FOUND")
	ErrConflict   = AppError("CONFLICT")
	ErrValidation = AppError("VALIDATION_FAILED")
	ErrPersist    = AppError("PERSIST_FAILED")
)
