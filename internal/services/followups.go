package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Ayash-Bera/campusqa/internal/auth"
	"github.com/Ayash-Bera/campusqa/internal/models"
	"github.com/Ayash-Bera/campusqa/internal/repository"
)

const (
	msgFollowUpNotFound     = "Follow-up not found."
	msgFollowUpAuthorOnly   = "Only the question author can post follow-ups."
	msgFollowUpBlank        = "Body may not be blank."
	msgFollowUpEditOwn      = "Only the follow-up author can edit it."
	msgFollowUpCannotDelete = "You cannot delete this follow-up."
)

// FollowUpService runs the clarification thread under a question. The
// thread opens once the question has at least one answer.
type FollowUpService struct {
	repos  *repository.RepositoryManager
	logger *logrus.Logger
}

func NewFollowUpService(repos *repository.RepositoryManager, logger *logrus.Logger) *FollowUpService {
	return &FollowUpService{repos: repos, logger: logger}
}

func (s *FollowUpService) question(ctx context.Context, slug string) (*models.Question, error) {
	question, err := s.repos.Question.GetBySlug(ctx, slug)
	if err != nil {
		return nil, notFoundOr(err, msgQuestionNotFound, "get question")
	}
	return question, nil
}

func (s *FollowUpService) followUp(ctx context.Context, question *models.Question, id string) (*models.FollowUp, error) {
	followUp, err := s.repos.FollowUp.GetByID(ctx, question.ID, id)
	if err != nil {
		return nil, notFoundOr(err, msgFollowUpNotFound, "get follow-up")
	}
	return followUp, nil
}

// List pages through a question's follow-ups, oldest first.
func (s *FollowUpService) List(ctx context.Context, slug string, page, pageSize int) ([]models.FollowUp, int64, error) {
	question, err := s.question(ctx, slug)
	if err != nil {
		return nil, 0, err
	}
	page, pageSize = models.NormalizePage(page, pageSize)
	followUps, total, err := s.repos.FollowUp.List(ctx, question.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list follow-ups: %w", err)
	}
	return followUps, total, nil
}

func (s *FollowUpService) Get(ctx context.Context, slug, id string) (*models.FollowUp, error) {
	question, err := s.question(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.followUp(ctx, question, id)
}

// Create posts a follow-up. The checks run in a fixed order so clients see
// the most specific reason first.
func (s *FollowUpService) Create(ctx context.Context, principal *auth.Principal, slug string, req models.FollowUpRequest) (*models.FollowUp, error) {
	if principal == nil {
		return nil, Unauthorized()
	}
	question, err := s.question(ctx, slug)
	if err != nil {
		return nil, err
	}

	count, err := s.repos.Answer.CountByQuestion(ctx, question.ID)
	if err != nil {
		return nil, fmt.Errorf("count answers: %w", err)
	}
	if count == 0 {
		return nil, NoAnswerYet()
	}
	if question.AuthorID != principal.ID {
		return nil, Forbidden(msgFollowUpAuthorOnly)
	}

	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, Validation(msgFollowUpBlank)
	}

	followUp := &models.FollowUp{
		QuestionID: question.ID,
		AuthorID:   principal.ID,
		Body:       body,
	}
	if err := s.repos.FollowUp.Create(ctx, followUp); err != nil {
		return nil, fmt.Errorf("create follow-up: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"question_id": question.ID,
		"followup_id": followUp.ID,
	}).Info("Follow-up created")
	return followUp, nil
}

func (s *FollowUpService) Update(ctx context.Context, principal *auth.Principal, slug, id string, req models.FollowUpRequest) (*models.FollowUp, error) {
	if principal == nil {
		return nil, Unauthorized()
	}
	question, err := s.question(ctx, slug)
	if err != nil {
		return nil, err
	}
	followUp, err := s.followUp(ctx, question, id)
	if err != nil {
		return nil, err
	}
	if followUp.AuthorID != principal.ID {
		return nil, Forbidden(msgFollowUpEditOwn)
	}

	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, Validation(msgFollowUpBlank)
	}
	if err := s.repos.FollowUp.UpdateBody(ctx, followUp.ID, body); err != nil {
		return nil, fmt.Errorf("update follow-up: %w", err)
	}
	return s.followUp(ctx, question, followUp.ID)
}

// Delete removes a follow-up. Its author, any senior who answered the
// question, or staff may delete.
func (s *FollowUpService) Delete(ctx context.Context, principal *auth.Principal, slug, id string) error {
	if principal == nil {
		return Unauthorized()
	}
	question, err := s.question(ctx, slug)
	if err != nil {
		return err
	}
	followUp, err := s.followUp(ctx, question, id)
	if err != nil {
		return err
	}

	allowed := followUp.AuthorID == principal.ID || principal.IsStaff
	if !allowed {
		allowed, err = s.repos.Answer.ExistsForAuthor(ctx, question.ID, principal.ID)
		if err != nil {
			return fmt.Errorf("check answer author: %w", err)
		}
	}
	if !allowed {
		return Forbidden(msgFollowUpCannotDelete)
	}

	if err := s.repos.FollowUp.Delete(ctx, followUp.ID); err != nil {
		return notFoundOr(err, msgFollowUpNotFound, "delete follow-up")
	}

	s.logger.WithFields(logrus.Fields{
		"question_id": question.ID,
		"followup_id": followUp.ID,
	}).Info("Follow-up deleted")
	return nil
}
