package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ayash-Bera/campusqa/internal/auth"
	"github.com/Ayash-Bera/campusqa/internal/classifier"
	"github.com/Ayash-Bera/campusqa/internal/models"
)

var errStorageDown = errors.New("storage down")

type brokenCounters struct{}

func (brokenCounters) RecountQuestionVotes(ctx context.Context, questionID string) (models.VoteTally, error) {
	return models.VoteTally{}, errStorageDown
}

func (brokenCounters) RecountAnswerVotes(ctx context.Context, answerID string) (models.VoteTally, error) {
	return models.VoteTally{}, errStorageDown
}

func (brokenCounters) RecountPostVotes(ctx context.Context, postID string) (models.VoteTally, error) {
	return models.VoteTally{}, errStorageDown
}

func (brokenCounters) RecountCommentUpvotes(ctx context.Context, commentID string) (int, error) {
	return 0, errStorageDown
}

func (brokenCounters) Adjust(ctx context.Context, table, column, id string, delta int) error {
	return errStorageDown
}

// brokenNotifications fails every write path Notify touches.
type brokenNotifications struct {
	models.NotificationRepository
}

func (brokenNotifications) ExistsSince(ctx context.Context, n models.Notification, since time.Time) (bool, error) {
	return false, errStorageDown
}

func (brokenNotifications) Create(ctx context.Context, notification *models.Notification) error {
	return errStorageDown
}

func TestConcurrentVotesConverge(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	question := env.ask(t, student, "Is the library open on Sundays?", "")

	const voters, upvoters = 20, 13
	var wg sync.WaitGroup
	errs := make(chan error, voters)
	for i := 0; i < voters; i++ {
		value := 1
		if i >= upvoters {
			value = -1
		}
		voter := &auth.Principal{ID: fmt.Sprintf("voter-%d", i)}

		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.questions.Vote(ctx, voter, question.Slug, value)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	reloaded := env.reloadQuestion(t, question.ID)
	assert.Equal(t, upvoters, reloaded.UpvoteCount)
	assert.Equal(t, voters-upvoters, reloaded.DownvoteCount)

	tally, err := env.repos.Counter.RecountQuestionVotes(ctx, question.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VoteTally{Up: upvoters, Down: voters - upvoters}, tally)
}

func TestSideEffectFailuresKeepTheWrite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	repos := *env.repos
	repos.Counter = brokenCounters{}
	counters := NewCounters(repos.Counter, logger)
	notifier := NewNotificationService(brokenNotifications{}, 0, logger)
	questions := NewQuestionService(&repos, classifier.New(nil, nil, classifier.Options{}, logger), counters, notifier, logger)
	answers := NewAnswerService(&repos, counters, notifier, questions, logger)
	community := NewCommunityService(&repos, counters, notifier, logger)

	question, err := questions.Create(ctx, student, models.CreateQuestionRequest{Title: "Are there night classes?"})
	require.NoError(t, err)

	t.Run("question vote", func(t *testing.T) {
		_, err := questions.Vote(ctx, student2, question.Slug, 1)
		require.NoError(t, err)
		votes, err := env.repos.Vote.UserQuestionVotes(ctx, student2.ID, []string{question.ID})
		require.NoError(t, err)
		assert.Equal(t, 1, votes[question.ID])
	})

	t.Run("answer", func(t *testing.T) {
		answer, err := answers.Create(ctx, senior, question.Slug, models.AnswerRequest{Body: "No, classes end at 5pm."})
		require.NoError(t, err)
		assert.NotEmpty(t, answer.ID)
		assert.True(t, env.reloadQuestion(t, question.ID).IsAnswered)
	})

	t.Run("comment", func(t *testing.T) {
		post, err := community.CreatePost(ctx, student, models.PostRequest{Title: "Night canteen"})
		require.NoError(t, err)
		comment, err := community.CreateComment(ctx, student2, post.Slug, models.CommentRequest{Body: "Open till 11."})
		require.NoError(t, err)

		stored, err := env.repos.Comment.GetByID(ctx, comment.ID)
		require.NoError(t, err)
		assert.Equal(t, "Open till 11.", stored.Body)

		_, created, err := community.UpvoteComment(ctx, student, comment.ID)
		require.NoError(t, err)
		assert.True(t, created)
	})

	unread, err := env.notifications.UnreadCount(ctx, student)
	require.NoError(t, err)
	assert.Zero(t, unread)
}
