package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Ayash-Bera/campusqa/internal/auth"
	"github.com/Ayash-Bera/campusqa/internal/models"
	"github.com/Ayash-Bera/campusqa/internal/repository"
)

const (
	msgAnswerNotFound  = "Answer not found."
	msgSeniorsOnly     = "Only verified NIAT seniors can answer questions."
	msgEditOwnAnswer   = "You can only edit your own answer."
	msgDeleteOwnAnswer = "You can only delete your own answer."
)

type AnswerService struct {
	repos     *repository.RepositoryManager
	counters  *Counters
	notifier  Notifier
	questions *QuestionService
	logger    *logrus.Logger
}

func NewAnswerService(
	repos *repository.RepositoryManager,
	counters *Counters,
	notifier Notifier,
	questions *QuestionService,
	logger *logrus.Logger,
) *AnswerService {
	return &AnswerService{
		repos:     repos,
		counters:  counters,
		notifier:  notifier,
		questions: questions,
		logger:    logger,
	}
}

func (s *AnswerService) question(ctx context.Context, slug string) (*models.Question, error) {
	question, err := s.repos.Question.GetBySlug(ctx, slug)
	if err != nil {
		return nil, notFoundOr(err, msgQuestionNotFound, "get question")
	}
	return question, nil
}

func (s *AnswerService) answer(ctx context.Context, question *models.Question, id string) (*models.Answer, error) {
	answer, err := s.repos.Answer.GetByID(ctx, question.ID, id)
	if err != nil {
		return nil, notFoundOr(err, msgAnswerNotFound, "get answer")
	}
	return answer, nil
}

// List returns a question's answers, oldest first.
func (s *AnswerService) List(ctx context.Context, principal *auth.Principal, slug string) ([]models.AnswerResponse, error) {
	question, err := s.question(ctx, slug)
	if err != nil {
		return nil, err
	}
	answers, err := s.repos.Answer.ListByQuestion(ctx, question.ID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	return s.questions.answerResponses(ctx, principal.UserID(), answers)
}

func (s *AnswerService) Get(ctx context.Context, principal *auth.Principal, slug, id string) (*models.AnswerResponse, error) {
	question, err := s.question(ctx, slug)
	if err != nil {
		return nil, err
	}
	answer, err := s.answer(ctx, question, id)
	if err != nil {
		return nil, err
	}
	responses, err := s.questions.answerResponses(ctx, principal.UserID(), []models.Answer{*answer})
	if err != nil {
		return nil, err
	}
	return &responses[0], nil
}

// Create posts the caller's answer. Verified seniors only, one per question.
func (s *AnswerService) Create(ctx context.Context, principal *auth.Principal, slug string, req models.AnswerRequest) (*models.Answer, error) {
	if principal == nil {
		return nil, Unauthorized()
	}
	question, err := s.question(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !principal.IsSenior {
		return nil, Forbidden(msgSeniorsOnly)
	}

	exists, err := s.repos.Answer.ExistsForAuthor(ctx, question.ID, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("check answer: %w", err)
	}
	if exists {
		return nil, DuplicateAnswer()
	}

	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, Validation(msgBlankField)
	}

	answer := &models.Answer{
		QuestionID: question.ID,
		AuthorID:   principal.ID,
		Body:       body,
	}
	if err := s.repos.Answer.Create(ctx, answer); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, DuplicateAnswer()
		}
		return nil, fmt.Errorf("create answer: %w", err)
	}

	s.counters.AnswerAdded(ctx, question.ID)
	s.syncAnswered(ctx, question)

	s.notifier.Notify(ctx, Event{
		Recipient: question.AuthorID,
		Actor:     principal.ID,
		Verb:      VerbAnsweredQuestion,
		Target:    QuestionTarget(question.ID),
	})

	s.logger.WithFields(logrus.Fields{
		"question_id": question.ID,
		"answer_id":   answer.ID,
	}).Info("Answer created")

	return answer, nil
}

func (s *AnswerService) Update(ctx context.Context, principal *auth.Principal, slug, id string, req models.AnswerRequest) (*models.Answer, error) {
	if principal == nil {
		return nil, Unauthorized()
	}
	question, err := s.question(ctx, slug)
	if err != nil {
		return nil, err
	}
	answer, err := s.answer(ctx, question, id)
	if err != nil {
		return nil, err
	}
	if answer.AuthorID != principal.ID {
		return nil, Forbidden(msgEditOwnAnswer)
	}

	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, Validation(msgBlankField)
	}
	if err := s.repos.Answer.UpdateBody(ctx, answer.ID, body); err != nil {
		return nil, fmt.Errorf("update answer: %w", err)
	}
	return s.answer(ctx, question, answer.ID)
}

// Delete removes an answer. The author or staff may delete.
func (s *AnswerService) Delete(ctx context.Context, principal *auth.Principal, slug, id string) error {
	if principal == nil {
		return Unauthorized()
	}
	question, err := s.question(ctx, slug)
	if err != nil {
		return err
	}
	answer, err := s.answer(ctx, question, id)
	if err != nil {
		return err
	}
	if answer.AuthorID != principal.ID && !principal.IsStaff {
		return Forbidden(msgDeleteOwnAnswer)
	}

	if err := s.repos.Answer.Delete(ctx, answer.ID); err != nil {
		return notFoundOr(err, msgAnswerNotFound, "delete answer")
	}

	s.counters.AnswerRemoved(ctx, question.ID)
	s.syncAnswered(ctx, question)

	s.logger.WithFields(logrus.Fields{
		"question_id": question.ID,
		"answer_id":   answer.ID,
	}).Info("Answer deleted")
	return nil
}

// syncAnswered applies the answered transition after the answer set changed.
func (s *AnswerService) syncAnswered(ctx context.Context, question *models.Question) {
	count, err := s.repos.Answer.CountByQuestion(ctx, question.ID)
	if err != nil {
		s.logger.WithError(err).WithField("question_id", question.ID).Error("Failed to count answers")
		return
	}

	var answered bool
	switch answeredTransition(question.IsAnswered, count) {
	case markAnswered:
		answered = true
	case markUnanswered:
		answered = false
	default:
		return
	}

	if err := s.repos.Question.SetAnswered(ctx, question.ID, answered); err != nil {
		s.logger.WithError(err).WithField("question_id", question.ID).Error("Failed to update answered flag")
		return
	}
	question.IsAnswered = answered
}

func (s *AnswerService) Vote(ctx context.Context, principal *auth.Principal, slug, id string, value int) (*models.AnswerResponse, error) {
	if principal == nil {
		return nil, Unauthorized()
	}
	question, err := s.question(ctx, slug)
	if err != nil {
		return nil, err
	}
	answer, err := s.answer(ctx, question, id)
	if err != nil {
		return nil, err
	}

	created, err := s.repos.Vote.UpsertAnswerVote(ctx, answer.ID, principal.ID, value)
	if err != nil {
		return nil, fmt.Errorf("save vote: %w", err)
	}
	s.counters.AnswerVotesChanged(ctx, answer.ID)

	if created {
		verb := VerbUpvotedAnswer
		if value < 0 {
			verb = VerbDownvotedAnswer
		}
		s.notifier.Notify(ctx, Event{
			Recipient: answer.AuthorID,
			Actor:     principal.ID,
			Verb:      verb,
			Target:    AnswerTarget(answer.ID),
		})
	}

	return s.Get(ctx, principal, slug, answer.ID)
}

func (s *AnswerService) Unvote(ctx context.Context, principal *auth.Principal, slug, id string) (*models.AnswerResponse, error) {
	if principal == nil {
		return nil, Unauthorized()
	}
	question, err := s.question(ctx, slug)
	if err != nil {
		return nil, err
	}
	answer, err := s.answer(ctx, question, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.repos.Vote.DeleteAnswerVote(ctx, answer.ID, principal.ID); err != nil {
		return nil, fmt.Errorf("delete vote: %w", err)
	}
	s.counters.AnswerVotesChanged(ctx, answer.ID)

	return s.Get(ctx, principal, slug, answer.ID)
}
