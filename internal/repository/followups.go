package repository

import (
	"context"

	"github.com/Ayash-Bera/campusqa/internal/models"
	"gorm.io/gorm"
)

// FollowUpRepositoryImpl implements FollowUpRepository
type FollowUpRepositoryImpl struct {
	db *gorm.DB
}

func NewFollowUpRepository(db *gorm.DB) models.FollowUpRepository {
	return &FollowUpRepositoryImpl{db: db}
}

func (r *FollowUpRepositoryImpl) Create(ctx context.Context, followUp *models.FollowUp) error {
	return r.db.WithContext(ctx).Create(followUp).Error
}

func (r *FollowUpRepositoryImpl) GetByID(ctx context.Context, questionID, id string) (*models.FollowUp, error) {
	var followUp models.FollowUp
	err := r.db.WithContext(ctx).
		Where("id = ? AND question_id = ?", id, questionID).
		First(&followUp).Error
	if err != nil {
		return nil, err
	}
	return &followUp, nil
}

func (r *FollowUpRepositoryImpl) List(ctx context.Context, questionID string, limit, offset int) ([]models.FollowUp, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.FollowUp{}).
		Where("question_id = ?", questionID).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var followUps []models.FollowUp
	err := query.Order("created_at ASC").Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&followUps).Error
	return followUps, total, err
}

func (r *FollowUpRepositoryImpl) UpdateBody(ctx context.Context, id, body string) error {
	return r.db.WithContext(ctx).Model(&models.FollowUp{}).
		Where("id = ?", id).
		Update("body", body).Error
}

func (r *FollowUpRepositoryImpl) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.FollowUp{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *FollowUpRepositoryImpl) RecentOnQuestions(ctx context.Context, questionIDs []string, limit int) ([]models.FollowUpSummary, error) {
	summaries := []models.FollowUpSummary{}
	if len(questionIDs) == 0 {
		return summaries, nil
	}
	err := r.db.WithContext(ctx).Table("followups").
		Select("followups.*, questions.slug AS question_slug, questions.title AS question_title").
		Joins("JOIN questions ON questions.id = followups.question_id").
		Where("followups.question_id IN ?", questionIDs).
		Order("followups.created_at DESC").
		Limit(limit).
		Scan(&summaries).Error
	return summaries, err
}
