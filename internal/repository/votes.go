package repository

import (
	"context"
	"time"

	"github.com/Ayash-Bera/campusqa/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteRepositoryImpl implements VoteRepository
type VoteRepositoryImpl struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) models.VoteRepository {
	return &VoteRepositoryImpl{db: db}
}

func (r *VoteRepositoryImpl) UpsertQuestionVote(ctx context.Context, questionID, userID string, value int) (bool, error) {
	row := &models.QuestionVote{QuestionID: questionID, UserID: userID, Value: value}
	return r.upsert(ctx, "question_votes", "question_id", questionID, userID, value, row)
}

func (r *VoteRepositoryImpl) DeleteQuestionVote(ctx context.Context, questionID, userID string) (bool, error) {
	return r.remove(ctx, &models.QuestionVote{}, "question_id", questionID, userID)
}

func (r *VoteRepositoryImpl) UserQuestionVotes(ctx context.Context, userID string, questionIDs []string) (map[string]int, error) {
	return r.userVotes(ctx, "question_votes", "question_id", userID, questionIDs)
}

func (r *VoteRepositoryImpl) UpsertAnswerVote(ctx context.Context, answerID, userID string, value int) (bool, error) {
	row := &models.AnswerVote{AnswerID: answerID, UserID: userID, Value: value}
	return r.upsert(ctx, "answer_votes", "answer_id", answerID, userID, value, row)
}

func (r *VoteRepositoryImpl) DeleteAnswerVote(ctx context.Context, answerID, userID string) (bool, error) {
	return r.remove(ctx, &models.AnswerVote{}, "answer_id", answerID, userID)
}

func (r *VoteRepositoryImpl) UserAnswerVotes(ctx context.Context, userID string, answerIDs []string) (map[string]int, error) {
	return r.userVotes(ctx, "answer_votes", "answer_id", userID, answerIDs)
}

func (r *VoteRepositoryImpl) UpsertPostVote(ctx context.Context, postID, userID string, value int) (bool, error) {
	row := &models.PostVote{PostID: postID, UserID: userID, Value: value}
	return r.upsert(ctx, "post_votes", "post_id", postID, userID, value, row)
}

func (r *VoteRepositoryImpl) DeletePostVote(ctx context.Context, postID, userID string) (bool, error) {
	return r.remove(ctx, &models.PostVote{}, "post_id", postID, userID)
}

func (r *VoteRepositoryImpl) UserPostVotes(ctx context.Context, userID string, postIDs []string) (map[string]int, error) {
	return r.userVotes(ctx, "post_votes", "post_id", userID, postIDs)
}

func (r *VoteRepositoryImpl) AddCommentUpvote(ctx context.Context, commentID, userID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "comment_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&models.CommentUpvote{CommentID: commentID, UserID: userID})
	return result.RowsAffected > 0, result.Error
}

func (r *VoteRepositoryImpl) RemoveCommentUpvote(ctx context.Context, commentID, userID string) (bool, error) {
	return r.remove(ctx, &models.CommentUpvote{}, "comment_id", commentID, userID)
}

func (r *VoteRepositoryImpl) UserCommentUpvotes(ctx context.Context, userID string, commentIDs []string) (map[string]bool, error) {
	upvoted := make(map[string]bool)
	if userID == "" || len(commentIDs) == 0 {
		return upvoted, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.CommentUpvote{}).
		Where("user_id = ? AND comment_id IN ?", userID, commentIDs).
		Pluck("comment_id", &ids).Error
	for _, id := range ids {
		upvoted[id] = true
	}
	return upvoted, err
}

// upsert sets the caller's vote on a target, reporting whether the row is new.
func (r *VoteRepositoryImpl) upsert(ctx context.Context, table, targetColumn, targetID, userID string, value int, row interface{}) (bool, error) {
	var existing int64
	err := r.db.WithContext(ctx).Table(table).
		Where(targetColumn+" = ? AND user_id = ?", targetID, userID).
		Count(&existing).Error
	if err != nil {
		return false, err
	}

	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: targetColumn}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"value":      value,
				"updated_at": time.Now(),
			}),
		}).
		Create(row).Error
	return existing == 0, err
}

func (r *VoteRepositoryImpl) remove(ctx context.Context, model interface{}, targetColumn, targetID, userID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where(targetColumn+" = ? AND user_id = ?", targetID, userID).
		Delete(model)
	return result.RowsAffected > 0, result.Error
}

func (r *VoteRepositoryImpl) userVotes(ctx context.Context, table, targetColumn, userID string, targetIDs []string) (map[string]int, error) {
	votes := make(map[string]int)
	if userID == "" || len(targetIDs) == 0 {
		return votes, nil
	}

	var rows []struct {
		TargetID string
		Value    int
	}
	err := r.db.WithContext(ctx).Table(table).
		Select(targetColumn+" AS target_id, value").
		Where("user_id = ? AND "+targetColumn+" IN ?", userID, targetIDs).
		Scan(&rows).Error
	for _, row := range rows {
		votes[row.TargetID] = row.Value
	}
	return votes, err
}
