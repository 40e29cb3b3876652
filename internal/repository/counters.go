package repository

import (
	"context"
	"fmt"

	"github.com/Ayash-Bera/campusqa/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// adjustable lists the child counters that move by deltas rather than recounts.
var adjustable = map[string]map[string]bool{
	"questions": {"answer_count": true},
	"posts":     {"comment_count": true},
}

// CounterRepositoryImpl implements CounterRepository
type CounterRepositoryImpl struct {
	db *gorm.DB
}

func NewCounterRepository(db *gorm.DB) models.CounterRepository {
	return &CounterRepositoryImpl{db: db}
}

func (r *CounterRepositoryImpl) RecountQuestionVotes(ctx context.Context, questionID string) (models.VoteTally, error) {
	return r.recount(ctx, "question_votes", "question_id", "questions", questionID)
}

func (r *CounterRepositoryImpl) RecountAnswerVotes(ctx context.Context, answerID string) (models.VoteTally, error) {
	return r.recount(ctx, "answer_votes", "answer_id", "answers", answerID)
}

func (r *CounterRepositoryImpl) RecountPostVotes(ctx context.Context, postID string) (models.VoteTally, error) {
	return r.recount(ctx, "post_votes", "post_id", "posts", postID)
}

func (r *CounterRepositoryImpl) RecountCommentUpvotes(ctx context.Context, commentID string) (int, error) {
	err := r.db.WithContext(ctx).Table("comments").
		Where("id = ?", commentID).
		UpdateColumn("upvote_count", gorm.Expr("(SELECT COUNT(*) FROM comment_upvotes WHERE comment_id = ?)", commentID)).Error
	if err != nil {
		return 0, err
	}

	var count int
	err = r.db.WithContext(ctx).Table("comments").
		Select("upvote_count").
		Where("id = ?", commentID).
		Scan(&count).Error
	return count, err
}

// Adjust moves a child counter by delta, never below zero.
func (r *CounterRepositoryImpl) Adjust(ctx context.Context, table, column, id string, delta int) error {
	if !adjustable[table][column] {
		return fmt.Errorf("counter %s.%s is not adjustable", table, column)
	}
	if delta == 0 {
		return nil
	}

	var expr interface{}
	if delta > 0 {
		expr = gorm.Expr(column+" + ?", delta)
	} else {
		expr = gorm.Expr("CASE WHEN "+column+" > ? THEN "+column+" - ? ELSE 0 END", -delta, -delta)
	}
	return r.db.WithContext(ctx).Table(table).
		Where("id = ?", id).
		UpdateColumn(column, expr).Error
}

// recount rebuilds up/down counters from the vote rows of one target. The
// counts are taken inside the UPDATE so a late writer never stores a stale tally.
func (r *CounterRepositoryImpl) recount(ctx context.Context, voteTable, targetColumn, ownerTable, id string) (models.VoteTally, error) {
	votes := func(value int) clause.Expr {
		return gorm.Expr("(SELECT COUNT(*) FROM "+voteTable+" WHERE "+targetColumn+" = ? AND value = ?)", id, value)
	}
	err := r.db.WithContext(ctx).Table(ownerTable).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"upvote_count":   votes(1),
			"downvote_count": votes(-1),
		}).Error
	if err != nil {
		return models.VoteTally{}, err
	}

	var row struct {
		UpvoteCount   int
		DownvoteCount int
	}
	err = r.db.WithContext(ctx).Table(ownerTable).
		Select("upvote_count, downvote_count").
		Where("id = ?", id).
		Scan(&row).Error
	return models.VoteTally{Up: row.UpvoteCount, Down: row.DownvoteCount}, err
}
