package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/Ayash-Bera/campusqa/internal/models"
)

// Counters keeps denormalized counters in step with their source rows. Vote
// counters are recounted from scratch so repeated calls converge; child
// counters move by one. Failures are logged and never returned: the write
// that triggered them has already happened.
type Counters struct {
	repo   models.CounterRepository
	logger *logrus.Logger
}

func NewCounters(repo models.CounterRepository, logger *logrus.Logger) *Counters {
	return &Counters{repo: repo, logger: logger}
}

func (c *Counters) QuestionVotesChanged(ctx context.Context, questionID string) (models.VoteTally, bool) {
	tally, err := c.repo.RecountQuestionVotes(ctx, questionID)
	return tally, c.check(err, "question", questionID)
}

func (c *Counters) AnswerVotesChanged(ctx context.Context, answerID string) (models.VoteTally, bool) {
	tally, err := c.repo.RecountAnswerVotes(ctx, answerID)
	return tally, c.check(err, "answer", answerID)
}

func (c *Counters) PostVotesChanged(ctx context.Context, postID string) (models.VoteTally, bool) {
	tally, err := c.repo.RecountPostVotes(ctx, postID)
	return tally, c.check(err, "post", postID)
}

// CommentUpvotesChanged recounts one comment only; its parent and replies are untouched.
func (c *Counters) CommentUpvotesChanged(ctx context.Context, commentID string) (int, bool) {
	count, err := c.repo.RecountCommentUpvotes(ctx, commentID)
	return count, c.check(err, "comment", commentID)
}

func (c *Counters) AnswerAdded(ctx context.Context, questionID string) {
	c.check(c.repo.Adjust(ctx, "questions", "answer_count", questionID, 1), "question", questionID)
}

func (c *Counters) AnswerRemoved(ctx context.Context, questionID string) {
	c.check(c.repo.Adjust(ctx, "questions", "answer_count", questionID, -1), "question", questionID)
}

func (c *Counters) CommentAdded(ctx context.Context, postID string) {
	c.check(c.repo.Adjust(ctx, "posts", "comment_count", postID, 1), "post", postID)
}

func (c *Counters) CommentRemoved(ctx context.Context, postID string) {
	c.check(c.repo.Adjust(ctx, "posts", "comment_count", postID, -1), "post", postID)
}

func (c *Counters) check(err error, kind, id string) bool {
	if err == nil {
		return true
	}
	c.logger.WithFields(logrus.Fields{
		"target_kind": kind,
		"target_id":   id,
	}).WithError(err).Error("Counter update failed")
	return false
}
