package repository

import (
	"context"

	"github.com/Ayash-Bera/campusqa/internal/models"
	"gorm.io/gorm"
)

// QuestionRepositoryImpl implements QuestionRepository
type QuestionRepositoryImpl struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) models.QuestionRepository {
	return &QuestionRepositoryImpl{db: db}
}

func (r *QuestionRepositoryImpl) Create(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Create(question).Error
}

func (r *QuestionRepositoryImpl) GetByID(ctx context.Context, id string) (*models.Question, error) {
	var question models.Question
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&question).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *QuestionRepositoryImpl) GetBySlug(ctx context.Context, slug string) (*models.Question, error) {
	var question models.Question
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&question).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *QuestionRepositoryImpl) GetByTitle(ctx context.Context, title string) (*models.Question, error) {
	var question models.Question
	err := r.db.WithContext(ctx).Where("title = ?", title).First(&question).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *QuestionRepositoryImpl) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Question{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *QuestionRepositoryImpl) List(ctx context.Context, filter models.QuestionFilter) ([]models.Question, int64, error) {
	filter.Normalize()

	query := r.db.WithContext(ctx).Model(&models.Question{})
	if filter.Answered != nil {
		query = query.Where("is_answered = ?", *filter.Answered)
	}
	if filter.AuthorID != "" {
		query = query.Where("author_id = ?", filter.AuthorID)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.AnswerAuthorID != "" {
		var questionIDs []string
		err := r.db.WithContext(ctx).Model(&models.Answer{}).
			Where("author_id = ?", filter.AnswerAuthorID).
			Pluck("question_id", &questionIDs).Error
		if err != nil {
			return nil, 0, err
		}
		if len(questionIDs) == 0 {
			return []models.Question{}, 0, nil
		}
		query = query.Where("id IN ?", questionIDs)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var questions []models.Question
	err := query.Order("created_at DESC").Order("id DESC").
		Limit(filter.PageSize).
		Offset(offset(filter.Page, filter.PageSize)).
		Find(&questions).Error
	return questions, total, err
}

func (r *QuestionRepositoryImpl) ListFAQ(ctx context.Context) ([]models.Question, error) {
	var questions []models.Question
	err := r.db.WithContext(ctx).Where("is_faq = ?", true).
		Order("faq_order ASC").
		Order("created_at DESC").
		Find(&questions).Error
	return questions, err
}

func (r *QuestionRepositoryImpl) ListUnanswered(ctx context.Context, limit int) ([]models.Question, error) {
	var questions []models.Question
	err := r.db.WithContext(ctx).Where("is_answered = ?", false).
		Order("created_at DESC").
		Limit(limit).
		Find(&questions).Error
	return questions, err
}

func (r *QuestionRepositoryImpl) ListForReclassify(ctx context.Context, onlyKeyword bool) ([]models.Question, error) {
	var questions []models.Question
	query := r.db.WithContext(ctx).Select("id", "title", "body", "category", "category_confidence", "category_source")
	if onlyKeyword {
		query = query.Where("category_source = ?", models.SourceKeyword)
	}
	err := query.Order("created_at ASC").Find(&questions).Error
	return questions, err
}

func (r *QuestionRepositoryImpl) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Question{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *QuestionRepositoryImpl) UpdateClassification(ctx context.Context, id, category string, confidence float64, source string) error {
	return r.db.WithContext(ctx).Model(&models.Question{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"category":            category,
			"category_confidence": confidence,
			"category_source":     source,
		}).Error
}

func (r *QuestionRepositoryImpl) SetAnswered(ctx context.Context, id string, answered bool) error {
	return r.db.WithContext(ctx).Model(&models.Question{}).
		Where("id = ?", id).
		UpdateColumn("is_answered", answered).Error
}

func (r *QuestionRepositoryImpl) IncrementViews(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&models.Question{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// Delete removes the question and everything hanging off it.
func (r *QuestionRepositoryImpl) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var answerIDs []string
		if err := tx.Model(&models.Answer{}).Where("question_id = ?", id).Pluck("id", &answerIDs).Error; err != nil {
			return err
		}
		if len(answerIDs) > 0 {
			if err := tx.Where("answer_id IN ?", answerIDs).Delete(&models.AnswerVote{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("question_id = ?", id).Delete(&models.Answer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&models.QuestionVote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&models.FollowUp{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Question{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
