package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ce-fello/synergy-crm/src/internal/kv"
	"github.com/ce-fello/synergy-crm/src/internal/metrics"
	"github.com/ce-fello/synergy-crm/src/internal/service"
	"github.com/ce-fello/synergy-crm/src/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type HandlerTestSuite struct {
	suite.Suite
	server *httptest.Server
	client *http.Client
}

func (suite *HandlerTestSuite) SetupTest() {
	logger := zap.NewNop()
	m := metrics.New(prometheus.NewRegistry())
	kvStore := kv.NewStore(kv.NewMemoryBackend(), logger, m)
	repos := store.NewRepositories(kvStore, logger, m, store.Options{})
	svc := service.NewService(repos, logger)

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware, LoggerMiddleware(logger), Recoverer(logger), m.Middleware)
	r.Handle("/metrics", m.Handler())
	RegisterRoutes(r, NewHandler(svc, logger, 10))

	suite.server = httptest.NewServer(r)
	suite.client = &http.Client{Timeout: 10 * time.Second}
}

func (suite *HandlerTestSuite) TearDownTest() {
	suite.server.Close()
}

func (suite *HandlerTestSuite) do(method, path string, body any) (*http.Response, []byte) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, suite.server.URL+path, reader)
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := suite.client.Do(req)
	suite.Require().NoError(err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	suite.Require().NoError(err)
	return resp, data
}

func (suite *HandlerTestSuite) decode(data []byte, v any) {
	suite.Require().NoError(json.Unmarshal(data, v), string(data))
}

func (suite *HandlerTestSuite) assertError(resp *http.Response, data []byte, status int, code string) {
	suite.Equal(status, resp.StatusCode, string(data))
	var body errorBody
	suite.decode(data, &body)
	suite.Equal(code, body.Error.Code)
}

func (suite *HandlerTestSuite) TestHealth() {
	resp, data := suite.do(http.MethodGet, "/health", nil)
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.JSONEq(`{"status":"ok"}`, string(data))
	suite.NotEmpty(resp.Header.Get("X-Request-Id"))
}

func (suite *HandlerTestSuite) TestRequestIDIsEchoed() {
	req, _ := http.NewRequest(http.MethodGet, suite.server.URL+"/health", nil)
	req.Header.Set("X-Request-Id", "req-42")
	resp, err := suite.client.Do(req)
	suite.Require().NoError(err)
	resp.Body.Close()
	suite.Equal("req-42", resp.Header.Get("X-Request-Id"))
}

func (suite *HandlerTestSuite) TestLogin() {
	resp, data := suite.do(http.MethodPost, "/auth/login", map[string]string{"email": "sam.agent@synergy.io"})
	suite.Equal(http.StatusOK, resp.StatusCode)

	var out struct {
		User struct {
			ID   string `json:"id"`
			Role string `json:"role"`
		} `json:"user"`
	}
	suite.decode(data, &out)
	suite.Equal("user_agent_1", out.User.ID)
	suite.Equal("AGENT", out.User.Role)

	resp, data = suite.do(http.MethodPost, "/auth/login", map[string]string{"email": "nobody@x.com"})
	suite.assertError(resp, data, http.StatusNotFound, "NOT_FOUND")

	resp, data = suite.do(http.MethodPost, "/auth/login", map[string]string{})
	suite.assertError(resp, data, http.StatusBadRequest, "VALIDATION_FAILED")
}

func (suite *HandlerTestSuite) TestFullFlow() {
	t := suite.T()

	// student with provisioned login
	resp, data := suite.do(http.MethodPost, "/students", map[string]any{
		"name": "Zed", "email": "zed@students.io", "course": "Data Science", "status": "Active", "skills": []string{"SQL"},
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	var created struct {
		Student struct {
			ID      string   `json:"id"`
			TeamIDs []string `json:"teamIds"`
		} `json:"student"`
	}
	suite.decode(data, &created)
	zedID := created.Student.ID
	assert.NotEmpty(t, zedID)

	resp, _ = suite.do(http.MethodPost, "/auth/login", map[string]string{"email": "zed@students.io"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// team with Zed and Nina
	resp, data = suite.do(http.MethodPost, "/teams", map[string]any{
		"name": "Night Owls", "project": "Forecasting", "status": "Active", "mentor": "Maria Lopez",
		"memberIds": []string{zedID, "student_1"},
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	var team struct {
		Team struct {
			ID       string `json:"id"`
			LeaderID string `json:"leaderId"`
			Members  []struct {
				ID string `json:"id"`
			} `json:"members"`
		} `json:"team"`
	}
	suite.decode(data, &team)
	teamID := team.Team.ID
	assert.Equal(t, zedID, team.Team.LeaderID)
	assert.Len(t, team.Team.Members, 2)

	resp, data = suite.do(http.MethodGet, "/students/"+zedID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	suite.decode(data, &created)
	assert.Equal(t, []string{teamID}, created.Student.TeamIDs)

	// task and skill map
	resp, data = suite.do(http.MethodPost, "/tasks", map[string]any{
		"studentId": zedID, "teamId": teamID, "title": "Model baseline", "status": "Completed",
		"score": 90, "dueDate": time.Now().UTC().Format(time.RFC3339), "relatedSkills": []string{"SQL"},
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode, string(data))

	resp, data = suite.do(http.MethodGet, "/students/"+zedID+"/tasks", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var tasks struct {
		Tasks []struct {
			Title string `json:"title"`
		} `json:"tasks"`
	}
	suite.decode(data, &tasks)
	assert.Len(t, tasks.Tasks, 1)

	resp, data = suite.do(http.MethodGet, "/students/"+zedID+"/skill-map", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var skillMap struct {
		SkillMap map[string]int `json:"skillMap"`
	}
	suite.decode(data, &skillMap)
	assert.Equal(t, 90, skillMap.SkillMap["SQL"])

	// delete team strips membership
	resp, data = suite.do(http.MethodDelete, "/teams/"+teamID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"deleted":true}`, string(data))

	resp, data = suite.do(http.MethodGet, "/students/"+zedID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	suite.decode(data, &created)
	assert.Empty(t, created.Student.TeamIDs)

	resp, data = suite.do(http.MethodDelete, "/teams/"+teamID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"deleted":false}`, string(data))
}

func (suite *HandlerTestSuite) TestClaimAndReleaseLead() {
	resp, data := suite.do(http.MethodPost, "/leads/lead_2/claim", map[string]string{"agentId": "user_agent_2"})
	suite.Equal(http.StatusOK, resp.StatusCode, string(data))

	var out struct {
		Lead struct {
			Status   string `json:"status"`
			Assignee *struct {
				Name string `json:"name"`
			} `json:"assignee"`
		} `json:"lead"`
	}
	suite.decode(data, &out)
	suite.Equal("Contacted", out.Lead.Status)
	suite.Require().NotNil(out.Lead.Assignee)
	suite.Equal("Lee Park", out.Lead.Assignee.Name)

	resp, data = suite.do(http.MethodPost, "/leads/lead_2/claim", map[string]string{"agentId": "user_agent_1"})
	suite.assertError(resp, data, http.StatusConflict, "CONFLICT")

	resp, data = suite.do(http.MethodPost, "/leads/lead_2/release", nil)
	suite.Equal(http.StatusOK, resp.StatusCode)
	out.Lead.Assignee = nil
	suite.decode(data, &out)
	suite.Nil(out.Lead.Assignee)

	resp, data = suite.do(http.MethodPost, "/leads/lead_2/claim", map[string]string{})
	suite.assertError(resp, data, http.StatusBadRequest, "VALIDATION_FAILED")
}

func (suite *HandlerTestSuite) TestListLeads_FilterSortPaginate() {
	resp, data := suite.do(http.MethodGet, "/leads?tier=HOT&sort=score&dir=desc&rowsPerPage=1", nil)
	suite.Equal(http.StatusOK, resp.StatusCode, string(data))

	var page struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
		TotalCount int `json:"totalCount"`
		PageCount  int `json:"pageCount"`
	}
	suite.decode(data, &page)
	suite.Equal(2, page.TotalCount)
	suite.Equal(2, page.PageCount)
	suite.Require().Len(page.Items, 1)
	suite.Equal("lead_1", page.Items[0].ID)

	resp, data = suite.do(http.MethodGet, "/leads?tier=HOT&sort=score&dir=desc&rowsPerPage=1&page=1", nil)
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.decode(data, &page)
	suite.Require().Len(page.Items, 1)
	suite.Equal("lead_4", page.Items[0].ID)
}

func (suite *HandlerTestSuite) TestListRejectsBadParams() {
	resp, data := suite.do(http.MethodGet, "/leads?dir=sideways", nil)
	suite.assertError(resp, data, http.StatusBadRequest, "VALIDATION_FAILED")

	resp, data = suite.do(http.MethodGet, "/leads?sort=favouriteColour", nil)
	suite.assertError(resp, data, http.StatusBadRequest, "VALIDATION_FAILED")
}

func (suite *HandlerTestSuite) TestNotFoundAndBadBody() {
	resp, data := suite.do(http.MethodGet, "/jobs/job_404", nil)
	suite.assertError(resp, data, http.StatusNotFound, "NOT_FOUND")

	req, _ := http.NewRequest(http.MethodPost, suite.server.URL+"/jobs", bytes.NewBufferString("{not json"))
	r, err := suite.client.Do(req)
	suite.Require().NoError(err)
	body, _ := io.ReadAll(r.Body)
	r.Body.Close()
	suite.assertError(r, body, http.StatusBadRequest, "VALIDATION_FAILED")
}

func (suite *HandlerTestSuite) TestInterviewLifecycle() {
	resp, data := suite.do(http.MethodPost, "/interviews", map[string]any{
		"jobId": "job_1", "candidateId": "student_1",
		"scheduledTime": time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339), "location": "Office",
	})
	suite.Equal(http.StatusCreated, resp.StatusCode, string(data))
	var out struct {
		Interview struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"interview"`
	}
	suite.decode(data, &out)
	id := out.Interview.ID
	suite.Equal("Pending", out.Interview.Status)

	resp, data = suite.do(http.MethodGet, "/notifications?userId=user_student_1", nil)
	suite.Equal(http.StatusOK, resp.StatusCode)
	var inbox struct {
		Notifications []struct {
			ID          string `json:"id"`
			InterviewID string `json:"interviewId"`
		} `json:"notifications"`
		Unread int `json:"unread"`
	}
	suite.decode(data, &inbox)
	suite.Require().Len(inbox.Notifications, 1)
	suite.Equal(id, inbox.Notifications[0].InterviewID)
	suite.Equal(1, inbox.Unread)

	resp, data = suite.do(http.MethodPost, "/interviews/"+id+"/respond", map[string]string{"status": "Cancelled"})
	suite.assertError(resp, data, http.StatusBadRequest, "VALIDATION_FAILED")

	resp, _ = suite.do(http.MethodPost, "/interviews/"+id+"/respond", map[string]string{"status": "Accepted"})
	suite.Equal(http.StatusOK, resp.StatusCode)

	resp, data = suite.do(http.MethodPost, "/interviews/"+id+"/respond", map[string]string{"status": "Declined"})
	suite.assertError(resp, data, http.StatusConflict, "CONFLICT")

	resp, data = suite.do(http.MethodPost, "/interviews/"+id+"/complete", map[string]any{
		"evaluation": map[string]any{"score": 4, "notes": "solid"},
	})
	suite.Equal(http.StatusOK, resp.StatusCode, string(data))
	suite.decode(data, &out)
	suite.Equal("Completed", out.Interview.Status)

	resp, data = suite.do(http.MethodPost, "/notifications/read-all", map[string]string{"userId": "user_student_1"})
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.JSONEq(`{"userId":"user_student_1","updated":1}`, string(data))
}

func (suite *HandlerTestSuite) TestInterviewsByJobAndCandidate() {
	var out struct {
		Interviews []struct {
			ID string `json:"id"`
		} `json:"interviews"`
	}

	resp, data := suite.do(http.MethodGet, "/jobs/job_2/interviews", nil)
	suite.Equal(http.StatusOK, resp.StatusCode, string(data))
	suite.decode(data, &out)
	suite.Require().Len(out.Interviews, 1)
	suite.Equal("interview_1", out.Interviews[0].ID)

	resp, data = suite.do(http.MethodGet, "/students/student_2/interviews", nil)
	suite.Equal(http.StatusOK, resp.StatusCode, string(data))
	suite.decode(data, &out)
	suite.Require().Len(out.Interviews, 1)
	suite.Equal("interview_1", out.Interviews[0].ID)

	resp, data = suite.do(http.MethodGet, "/jobs/job_1/interviews", nil)
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.JSONEq(`{"interviews":[]}`, string(data))
}

func (suite *HandlerTestSuite) TestNotificationsRequireUser() {
	resp, data := suite.do(http.MethodGet, "/notifications", nil)
	suite.assertError(resp, data, http.StatusBadRequest, "VALIDATION_FAILED")
}

func (suite *HandlerTestSuite) TestCompanyUsers() {
	resp, data := suite.do(http.MethodPost, "/companies/company_1/users", map[string]string{"name": "Bea", "email": "bea@acme.dev"})
	suite.Equal(http.StatusCreated, resp.StatusCode, string(data))

	resp, data = suite.do(http.MethodPost, "/companies/company_1/users", map[string]string{"name": "Bea", "email": "bea@acme.dev"})
	suite.assertError(resp, data, http.StatusConflict, "CONFLICT")

	resp, data = suite.do(http.MethodPost, "/companies/company_404/users", map[string]string{"name": "X", "email": "x@x.dev"})
	suite.assertError(resp, data, http.StatusNotFound, "NOT_FOUND")
}

func (suite *HandlerTestSuite) TestUserActivation() {
	resp, data := suite.do(http.MethodPost, "/users/user_agent_2/active", map[string]bool{"isActive": false})
	suite.Equal(http.StatusOK, resp.StatusCode, string(data))

	resp, data = suite.do(http.MethodPost, "/auth/login", map[string]string{"email": "lee.agent@synergy.io"})
	suite.assertError(resp, data, http.StatusNotFound, "NOT_FOUND")

	resp, data = suite.do(http.MethodPost, "/users/user_agent_2/active", map[string]string{})
	suite.assertError(resp, data, http.StatusBadRequest, "VALIDATION_FAILED")
}

func (suite *HandlerTestSuite) TestStatsAndReset() {
	resp, _ := suite.do(http.MethodDelete, "/leads/lead_1", nil)
	suite.Equal(http.StatusOK, resp.StatusCode)

	resp, data := suite.do(http.MethodGet, "/leads", nil)
	var page struct {
		TotalCount int `json:"totalCount"`
	}
	suite.decode(data, &page)
	suite.Equal(3, page.TotalCount)

	resp, _ = suite.do(http.MethodPost, "/admin/reset", nil)
	suite.Equal(http.StatusOK, resp.StatusCode)

	resp, data = suite.do(http.MethodGet, "/leads", nil)
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.decode(data, &page)
	suite.Equal(4, page.TotalCount)

	resp, _ = suite.do(http.MethodGet, "/stats", nil)
	suite.Equal(http.StatusOK, resp.StatusCode)
}

func (suite *HandlerTestSuite) TestMetricsExposeRoutePatterns() {
	suite.do(http.MethodGet, "/leads/lead_1", nil)

	resp, data := suite.do(http.MethodGet, "/metrics", nil)
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Contains(string(data), fmt.Sprintf("%q", "/leads/{id}"))
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func TestRecoverer_WritesInternalError(t *testing.T) {
	h := Recoverer(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
}

type failingPutBackend struct {
	*kv.MemoryBackend
}

func (b failingPutBackend) Put(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestPersistFailure_ResponseCarriesRecord(t *testing.T) {
	logger := zap.NewNop()
	kvStore := kv.NewStore(failingPutBackend{kv.NewMemoryBackend()}, logger, nil)
	svc := service.NewService(store.NewRepositories(kvStore, logger, nil, store.Options{}), logger)
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(svc, logger, 10))

	body := bytes.NewBufferString(`{"name":"Unsaved Co","score":40}`)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/leads", body))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code, rec.Body.String())
	var out struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
		Lead struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"lead"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "PERSIST_FAILED", out.Error.Code)
	assert.NotEmpty(t, out.Lead.ID)
	assert.Equal(t, "Unsaved Co", out.Lead.Name)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leads/"+out.Lead.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
