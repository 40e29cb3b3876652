package repository

import (
	"context"

	"github.com/Ayash-Bera/campusqa/internal/models"
	"gorm.io/gorm"
)

// AnswerRepositoryImpl implements AnswerRepository
type AnswerRepositoryImpl struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) models.AnswerRepository {
	return &AnswerRepositoryImpl{db: db}
}

func (r *AnswerRepositoryImpl) Create(ctx context.Context, answer *models.Answer) error {
	return r.db.WithContext(ctx).Create(answer).Error
}

func (r *AnswerRepositoryImpl) GetByID(ctx context.Context, questionID, id string) (*models.Answer, error) {
	var answer models.Answer
	err := r.db.WithContext(ctx).
		Where("id = ? AND question_id = ?", id, questionID).
		First(&answer).Error
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *AnswerRepositoryImpl) ListByQuestion(ctx context.Context, questionID string) ([]models.Answer, error) {
	var answers []models.Answer
	err := r.db.WithContext(ctx).Where("question_id = ?", questionID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&answers).Error
	return answers, err
}

func (r *AnswerRepositoryImpl) CountByQuestion(ctx context.Context, questionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Answer{}).Where("question_id = ?", questionID).Count(&count).Error
	return count, err
}

func (r *AnswerRepositoryImpl) ExistsForAuthor(ctx context.Context, questionID, authorID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Answer{}).
		Where("question_id = ? AND author_id = ?", questionID, authorID).
		Count(&count).Error
	return count > 0, err
}

func (r *AnswerRepositoryImpl) UpdateBody(ctx context.Context, id, body string) error {
	return r.db.WithContext(ctx).Model(&models.Answer{}).
		Where("id = ?", id).
		Update("body", body).Error
}

func (r *AnswerRepositoryImpl) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("answer_id = ?", id).Delete(&models.AnswerVote{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Answer{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *AnswerRepositoryImpl) CountByAuthor(ctx context.Context, authorID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Answer{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

func (r *AnswerRepositoryImpl) SumUpvotesByAuthor(ctx context.Context, authorID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Answer{}).
		Select("COALESCE(SUM(upvote_count), 0)").
		Where("author_id = ?", authorID).
		Scan(&total).Error
	return total, err
}

func (r *AnswerRepositoryImpl) QuestionIDsByAuthor(ctx context.Context, authorID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Answer{}).
		Where("author_id = ?", authorID).
		Distinct().
		Pluck("question_id", &ids).Error
	return ids, err
}
