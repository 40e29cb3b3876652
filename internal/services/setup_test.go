package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ayash-Bera/campusqa/internal/auth"
	"github.com/Ayash-Bera/campusqa/internal/classifier"
	"github.com/Ayash-Bera/campusqa/internal/database"
	"github.com/Ayash-Bera/campusqa/internal/migration"
	"github.com/Ayash-Bera/campusqa/internal/models"
	"github.com/Ayash-Bera/campusqa/internal/repository"
)

var (
	student   = &auth.Principal{ID: "student-1"}
	student2  = &auth.Principal{ID: "student-2"}
	student3  = &auth.Principal{ID: "student-3"}
	senior    = &auth.Principal{ID: "senior-1", IsSenior: true}
	senior2   = &auth.Principal{ID: "senior-2", IsSenior: true}
	staff     = &auth.Principal{ID: "staff-1", IsStaff: true}
	alice     = &auth.Principal{ID: "alice"}
	anonymous *auth.Principal
)

type testEnv struct {
	db            *database.Manager
	repos         *repository.RepositoryManager
	notifications *NotificationService
	questions     *QuestionService
	answers       *AnswerService
	followUps     *FollowUpService
	community     *CommunityService
	search        *SearchService
	dashboard     *DashboardService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	manager, err := database.NewManager(&database.Config{
		Driver:      database.DriverSQLite,
		DatabaseURL: filepath.Join(t.TempDir(), "campusqa.db"),
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })

	require.NoError(t, migration.NewRunner(manager, logger).RunMigrations(""))

	repos := repository.NewRepositoryManager(manager.DB)
	counters := NewCounters(repos.Counter, logger)
	notifications := NewNotificationService(repos.Notification, DefaultDedupWindow, logger)
	categorizer := classifier.New(nil, nil, classifier.Options{}, logger)
	questions := NewQuestionService(repos, categorizer, counters, notifications, logger)
	community := NewCommunityService(repos, counters, notifications, logger)

	return &testEnv{
		db:            manager,
		repos:         repos,
		notifications: notifications,
		questions:     questions,
		answers:       NewAnswerService(repos, counters, notifications, questions, logger),
		followUps:     NewFollowUpService(repos, logger),
		community:     community,
		search:        NewSearchService(manager.DB, manager.Driver(), questions, community, logger),
		dashboard:     NewDashboardService(repos, logger),
	}
}

func (e *testEnv) ask(t *testing.T, principal *auth.Principal, title, body string) *models.Question {
	t.Helper()
	question, err := e.questions.Create(context.Background(), principal, models.CreateQuestionRequest{Title: title, Body: body})
	require.NoError(t, err)
	return question
}

func (e *testEnv) answer(t *testing.T, principal *auth.Principal, slug, body string) *models.Answer {
	t.Helper()
	answer, err := e.answers.Create(context.Background(), principal, slug, models.AnswerRequest{Body: body})
	require.NoError(t, err)
	return answer
}

func (e *testEnv) reloadQuestion(t *testing.T, id string) *models.Question {
	t.Helper()
	question, err := e.repos.Question.GetByID(context.Background(), id)
	require.NoError(t, err)
	return question
}

func requireCode(t *testing.T, err error, status int, code string) *Error {
	t.Helper()
	require.Error(t, err)
	domainErr, ok := AsError(err)
	require.True(t, ok, "expected a domain error, got %v", err)
	assert.Equal(t, status, domainErr.Status)
	assert.Equal(t, code, domainErr.Code)
	return domainErr
}

func intPtr(v int) *int { return &v }
