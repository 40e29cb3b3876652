package repository

import (
	"github.com/Ayash-Bera/campusqa/internal/models"
	"gorm.io/gorm"
)

// RepositoryManager bundles all repositories
type RepositoryManager struct {
	Question     models.QuestionRepository
	Answer       models.AnswerRepository
	Vote         models.VoteRepository
	Counter      models.CounterRepository
	FollowUp     models.FollowUpRepository
	Post         models.PostRepository
	Comment      models.CommentRepository
	Notification models.NotificationRepository
}

func NewRepositoryManager(db *gorm.DB) *RepositoryManager {
	return &RepositoryManager{
		Question:     NewQuestionRepository(db),
		Answer:       NewAnswerRepository(db),
		Vote:         NewVoteRepository(db),
		Counter:      NewCounterRepository(db),
		FollowUp:     NewFollowUpRepository(db),
		Post:         NewPostRepository(db),
		Comment:      NewCommentRepository(db),
		Notification: NewNotificationRepository(db),
	}
}

func offset(page, pageSize int) int {
	return (page - 1) * pageSize
}
