package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ayash-Bera/campusqa/internal/classifier"
	"github.com/Ayash-Bera/campusqa/internal/database"
	"github.com/Ayash-Bera/campusqa/internal/health"
	"github.com/Ayash-Bera/campusqa/internal/middleware"
	"github.com/Ayash-Bera/campusqa/internal/migration"
	"github.com/Ayash-Bera/campusqa/internal/models"
	"github.com/Ayash-Bera/campusqa/internal/repository"
	"github.com/Ayash-Bera/campusqa/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type user struct {
	id     string
	senior bool
	staff  bool
}

var (
	nobody  = user{}
	student = user{id: "student-1"}
	other   = user{id: "student-2"}
	senior  = user{id: "senior-1", senior: true}
	staff   = user{id: "staff-1", staff: true}
)

type envelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T, limiter *middleware.RateLimiter) *testServer {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	manager, err := database.NewManager(&database.Config{
		Driver:      database.DriverSQLite,
		DatabaseURL: filepath.Join(t.TempDir(), "api.db"),
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })
	require.NoError(t, migration.NewRunner(manager, logger).RunMigrations(""))

	repos := repository.NewRepositoryManager(manager.DB)
	counters := services.NewCounters(repos.Counter, logger)
	notifications := services.NewNotificationService(repos.Notification, 0, logger)
	questions := services.NewQuestionService(repos, classifier.New(nil, nil, classifier.Options{}, logger), counters, notifications, logger)
	community := services.NewCommunityService(repos, counters, notifications, logger)

	router := NewRouter(RouterConfig{
		Questions:     questions,
		Answers:       services.NewAnswerService(repos, counters, notifications, questions, logger),
		FollowUps:     services.NewFollowUpService(repos, logger),
		Search:        services.NewSearchService(manager.DB, manager.Driver(), questions, community, logger),
		Community:     community,
		Notifications: notifications,
		Dashboard:     services.NewDashboardService(repos, logger),
		Health: health.NewHealthChecker(logger,
			health.Check{Name: "database", Pinger: health.PingFunc(manager.PingDatabase)},
			health.Check{Name: "llm", Optional: true},
		),
		RateLimiter: limiter,
		DemoMode:    true,
		Logger:      logger,
	})
	return &testServer{t: t, router: router}
}

func (s *testServer) do(u user, method, path string, body interface{}) (int, envelope) {
	s.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if u.id != "" {
		req.Header.Set(middleware.DemoUserHeader, u.id)
		req.Header.Set(middleware.DemoSeniorHeader, strconv.FormatBool(u.senior))
		req.Header.Set(middleware.DemoStaffHeader, strconv.FormatBool(u.staff))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func decode(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst), string(env.Data))
}

func (s *testServer) ask(u user, title string) models.Question {
	s.t.Helper()
	status, env := s.do(u, http.MethodPost, "/api/questions", gin.H{"title": title, "body": "details"})
	require.Equal(s.t, http.StatusCreated, status, env.Message)
	var q models.Question
	decode(s.t, env, &q)
	return q
}

func TestAskQuestion(t *testing.T) {
	s := newTestServer(t, nil)

	status, env := s.do(nobody, http.MethodPost, "/api/questions", gin.H{"title": "Hi"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, services.CodeUnauthorized, env.Code)

	status, env = s.do(senior, http.MethodPost, "/api/questions", gin.H{"title": "Hi"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, services.CodeForbidden, env.Code)

	status, env = s.do(student, http.MethodPost, "/api/questions", gin.H{"title": "   "})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, services.CodeValidation, env.Code)

	status, env = s.do(student, http.MethodPost, "/api/questions", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, services.CodeValidation, env.Code)

	q := s.ask(student, "What is the hostel fee?")
	assert.Equal(t, "what-is-the-hostel-fee", q.Slug)
	assert.NotEmpty(t, q.ID)
}

func TestQuestionDetailCountsViews(t *testing.T) {
	s := newTestServer(t, nil)
	q := s.ask(student, "Is the library open on Sundays?")

	for i := 0; i < 2; i++ {
		status, _ := s.do(nobody, http.MethodGet, "/api/questions/"+q.Slug, nil)
		require.Equal(t, http.StatusOK, status)
	}
	_, env := s.do(nobody, http.MethodGet, "/api/questions/"+q.Slug, nil)
	var detail models.QuestionDetailResponse
	decode(t, env, &detail)
	assert.Equal(t, 3, detail.ViewCount)
	assert.Empty(t, detail.Answers)

	status, env := s.do(nobody, http.MethodGet, "/api/questions/no-such-question", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, services.CodeNotFound, env.Code)
}

func TestAnswerLocksQuestionAndGatesFollowUps(t *testing.T) {
	s := newTestServer(t, nil)
	q := s.ask(student, "How are exams graded?")
	base := "/api/questions/" + q.Slug

	status, env := s.do(student, http.MethodPost, base+"/followups", gin.H{"body": "any update?"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, services.CodeNoAnswerYet, env.Code)

	status, env = s.do(student, http.MethodPost, base+"/answers", gin.H{"body": "Relative grading."})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(senior, http.MethodPost, base+"/answers", gin.H{"body": "Relative grading."})
	require.Equal(t, http.StatusCreated, status)

	status, env = s.do(senior, http.MethodPost, base+"/answers", gin.H{"body": "Again."})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, services.CodeDuplicateAnswer, env.Code)

	status, env = s.do(student, http.MethodPatch, base, gin.H{"title": "Changed"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Cannot edit or delete this question after a senior has answered.", env.Message)

	status, env = s.do(other, http.MethodPost, base+"/followups", gin.H{"body": "me too"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, services.CodeForbidden, env.Code)

	status, env = s.do(student, http.MethodPost, base+"/followups", gin.H{"body": "  "})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, services.CodeValidation, env.Code)

	status, _ = s.do(student, http.MethodPost, base+"/followups", gin.H{"body": "Is there a curve?"})
	assert.Equal(t, http.StatusCreated, status)

	status, env = s.do(nobody, http.MethodGet, base+"/followups", nil)
	require.Equal(t, http.StatusOK, status)
	var page struct {
		Items []models.FollowUp `json:"items"`
		Meta  struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	decode(t, env, &page)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, int64(1), page.Meta.Total)

	status, env = s.do(senior, http.MethodGet, "/api/dashboard/senior", nil)
	require.Equal(t, http.StatusOK, status)
	var dashboard models.SeniorDashboard
	decode(t, env, &dashboard)
	assert.Equal(t, int64(1), dashboard.TotalAnswers)
	assert.Len(t, dashboard.RecentFollowUps, 1)

	status, _ = s.do(student, http.MethodGet, "/api/dashboard/senior", nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestVotingAndNotifications(t *testing.T) {
	s := newTestServer(t, nil)
	q := s.ask(student, "Is the mess food good?")
	path := "/api/questions/" + q.Slug + "/upvote"

	status, env := s.do(nobody, http.MethodPost, path, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, services.CodeUnauthorized, env.Code)

	status, env = s.do(other, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, status)
	var vote models.VoteResponse
	decode(t, env, &vote)
	assert.Equal(t, 1, vote.UpvoteCount)
	require.NotNil(t, vote.UserVote)
	assert.Equal(t, 1, *vote.UserVote)

	status, env = s.do(other, http.MethodPost, "/api/questions/"+q.Slug+"/downvote", nil)
	require.Equal(t, http.StatusOK, status)
	vote = models.VoteResponse{}
	decode(t, env, &vote)
	assert.Equal(t, 0, vote.UpvoteCount)
	assert.Equal(t, 1, vote.DownvoteCount)

	status, env = s.do(other, http.MethodDelete, "/api/questions/"+q.Slug+"/downvote", nil)
	require.Equal(t, http.StatusOK, status)
	vote = models.VoteResponse{}
	decode(t, env, &vote)
	assert.Zero(t, vote.DownvoteCount)
	assert.Nil(t, vote.UserVote)

	status, env = s.do(student, http.MethodGet, "/api/notifications/unread-count", nil)
	require.Equal(t, http.StatusOK, status)
	var unread models.UnreadCountResponse
	decode(t, env, &unread)
	assert.Equal(t, int64(1), unread.Unread)

	status, _ = s.do(student, http.MethodPost, "/api/notifications/read-all", nil)
	require.Equal(t, http.StatusOK, status)
	_, env = s.do(student, http.MethodGet, "/api/notifications/unread-count", nil)
	decode(t, env, &unread)
	assert.Zero(t, unread.Unread)

	status, _ = s.do(student, http.MethodPost, "/api/notifications/abc/read", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSearchAndCatalogue(t *testing.T) {
	s := newTestServer(t, nil)
	s.ask(student, "How's the placement at NIAT?")
	s.ask(student, "Hostel curfew timings")

	status, env := s.do(nobody, http.MethodGet, "/api/questions/search?q=placement", nil)
	require.Equal(t, http.StatusOK, status)
	var result models.SearchResponse
	decode(t, env, &result)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "How's the placement at NIAT?", result.Results[0].Title)

	status, env = s.do(nobody, http.MethodGet, "/api/questions/search?q=", nil)
	require.Equal(t, http.StatusOK, status)
	result = models.SearchResponse{}
	decode(t, env, &result)
	assert.Empty(t, result.Results)

	status, env = s.do(nobody, http.MethodGet, "/api/questions/search/suggestions?q=hostel&limit=50", nil)
	require.Equal(t, http.StatusOK, status)
	var suggestions []models.Suggestion
	decode(t, env, &suggestions)
	assert.Len(t, suggestions, 1)

	status, env = s.do(nobody, http.MethodGet, "/api/questions/categories", nil)
	require.Equal(t, http.StatusOK, status)
	var categories []string
	decode(t, env, &categories)
	assert.Equal(t, models.Categories, categories)

	status, env = s.do(nobody, http.MethodGet, "/api/questions?answered=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, services.CodeValidation, env.Code)

	status, env = s.do(nobody, http.MethodGet, "/api/questions?answered=false&page_size=1", nil)
	require.Equal(t, http.StatusOK, status)
	var page struct {
		Items []models.QuestionResponse `json:"items"`
		Meta  struct {
			PageSize int   `json:"page_size"`
			Total    int64 `json:"total"`
		} `json:"meta"`
	}
	decode(t, env, &page)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 1, page.Meta.PageSize)
	assert.Equal(t, int64(2), page.Meta.Total)
}

func TestFAQManagement(t *testing.T) {
	s := newTestServer(t, nil)
	q := s.ask(student, "What documents are needed for admission?")
	path := "/api/questions/" + q.Slug + "/faq"

	status, _ := s.do(student, http.MethodPut, path, gin.H{"is_faq": true, "faq_order": 1})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(staff, http.MethodPut, path, gin.H{"is_faq": true, "faq_order": 1})
	require.Equal(t, http.StatusOK, status)

	status, env := s.do(nobody, http.MethodGet, "/api/faqs", nil)
	require.Equal(t, http.StatusOK, status)
	var faqs []models.Question
	decode(t, env, &faqs)
	require.Len(t, faqs, 1)
	assert.Equal(t, q.ID, faqs[0].ID)
}

func TestCommunityThread(t *testing.T) {
	s := newTestServer(t, nil)

	status, env := s.do(student, http.MethodPost, "/api/posts", gin.H{"title": "Sports fest", "description": "Who is going?"})
	require.Equal(t, http.StatusCreated, status)
	var post models.Post
	decode(t, env, &post)

	status, env = s.do(other, http.MethodPost, "/api/posts/"+post.Slug+"/comments", gin.H{"body": "Me!"})
	require.Equal(t, http.StatusCreated, status)
	var comment models.Comment
	decode(t, env, &comment)

	status, _ = s.do(student, http.MethodPost, "/api/comments/"+comment.ID+"/upvote", nil)
	assert.Equal(t, http.StatusCreated, status)
	status, env = s.do(student, http.MethodPost, "/api/comments/"+comment.ID+"/upvote", nil)
	assert.Equal(t, http.StatusOK, status)
	var upvote models.CommentUpvoteResponse
	decode(t, env, &upvote)
	assert.True(t, upvote.Upvoted)
	assert.Equal(t, 1, upvote.UpvoteCount)

	status, env = s.do(nobody, http.MethodGet, "/api/posts/"+post.Slug, nil)
	require.Equal(t, http.StatusOK, status)
	var detail models.PostResponse
	decode(t, env, &detail)
	assert.Equal(t, 1, detail.CommentCount)

	status, _ = s.do(student, http.MethodDelete, "/api/comments/"+comment.ID, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = s.do(staff, http.MethodDelete, "/api/comments/"+comment.ID, nil)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestRouteNamedQuestionsStayReachable(t *testing.T) {
	s := newTestServer(t, nil)

	for _, title := range []string{"Search", "Categories"} {
		q := s.ask(student, title)
		require.NotEqual(t, strings.ToLower(title), q.Slug)

		status, env := s.do(nobody, http.MethodGet, "/api/questions/"+q.Slug, nil)
		require.Equal(t, http.StatusOK, status)
		var detail models.QuestionDetailResponse
		decode(t, env, &detail)
		assert.Equal(t, q.ID, detail.ID)
		assert.Equal(t, 1, detail.ViewCount)
	}
}

func TestPostEditingFiltersAndSearch(t *testing.T) {
	s := newTestServer(t, nil)

	status, env := s.do(student, http.MethodPost, "/api/posts", gin.H{"title": "Search", "description": "Looking for a roommate"})
	require.Equal(t, http.StatusCreated, status)
	var post models.Post
	decode(t, env, &post)
	require.NotEqual(t, "search", post.Slug)

	status, _ = s.do(other, http.MethodPatch, "/api/posts/"+post.Slug, gin.H{"title": "Mine now"})
	assert.Equal(t, http.StatusForbidden, status)
	status, env = s.do(student, http.MethodPatch, "/api/posts/"+post.Slug, gin.H{"title": "Roommate wanted"})
	require.Equal(t, http.StatusOK, status)
	var updated models.PostResponse
	decode(t, env, &updated)
	assert.Equal(t, "Roommate wanted", updated.Title)

	status, env = s.do(other, http.MethodPost, "/api/posts/"+post.Slug+"/comments", gin.H{"body": "Interested"})
	require.Equal(t, http.StatusCreated, status)
	var comment models.Comment
	decode(t, env, &comment)
	status, env = s.do(other, http.MethodPatch, "/api/comments/"+comment.ID, gin.H{"body": "Interested, DM me"})
	require.Equal(t, http.StatusOK, status)
	decode(t, env, &comment)
	assert.Equal(t, "Interested, DM me", comment.Body)

	status, _ = s.do(other, http.MethodPost, "/api/posts/"+post.Slug+"/upvote", nil)
	require.Equal(t, http.StatusOK, status)

	var page struct {
		Items []models.PostResponse `json:"items"`
	}
	status, env = s.do(other, http.MethodGet, "/api/posts?upvoted_by=me", nil)
	require.Equal(t, http.StatusOK, status)
	decode(t, env, &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, post.ID, page.Items[0].ID)

	status, env = s.do(student, http.MethodGet, "/api/posts?upvoted_by=me", nil)
	require.Equal(t, http.StatusOK, status)
	decode(t, env, &page)
	assert.Empty(t, page.Items)

	status, env = s.do(nobody, http.MethodGet, "/api/posts/search?q=roommate", nil)
	require.Equal(t, http.StatusOK, status)
	var found models.PostSearchResponse
	decode(t, env, &found)
	require.Equal(t, 1, found.Total)
	assert.Equal(t, post.ID, found.Results[0].ID)
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var result health.OverallHealth
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, health.StatusHealthy, result.Status)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	status, env := s.do(nobody, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, services.CodeNotFound, env.Code)
}

func TestRateLimitAppliesToWritesOnly(t *testing.T) {
	s := newTestServer(t, middleware.NewRateLimiter(1))

	s.ask(student, "First question")
	status, env := s.do(student, http.MethodPost, "/api/questions", gin.H{"title": "Second question"})
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, middleware.CodeRateLimited, env.Code)

	for i := 0; i < 3; i++ {
		status, _ = s.do(nobody, http.MethodGet, "/api/questions", nil)
		assert.Equal(t, http.StatusOK, status)
	}
}
