package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Ayash-Bera/campusqa/internal/auth"
	"github.com/Ayash-Bera/campusqa/internal/classifier"
	"github.com/Ayash-Bera/campusqa/internal/models"
	"github.com/Ayash-Bera/campusqa/internal/repository"
	"github.com/Ayash-Bera/campusqa/pkg/utils"
)

const (
	maxTitleLength = 300
	slugAttempts   = 5

	msgQuestionNotFound = "Question not found."
	msgBlankField       = "This field may not be blank."
	msgNoPermission     = "You do not have permission to perform this action."
	msgSeniorsCannotAsk = "Only prospective students can ask questions. Verified seniors answer questions."
	msgQuestionLocked   = "Cannot edit or delete this question after a senior has answered."
	msgStaffOnly        = "Only staff can manage FAQs."
)

// reservedQuestionSlugs are path segments routed ahead of /questions/:slug.
var reservedQuestionSlugs = map[string]bool{
	"search":     true,
	"categories": true,
}

func validateTitle(title string) error {
	if title == "" {
		return Validation(msgBlankField)
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return Validation(fmt.Sprintf("Ensure the title has no more than %d characters.", maxTitleLength))
	}
	return nil
}

// Categorizer assigns a category to question text.
type Categorizer interface {
	Classify(ctx context.Context, text string) classifier.Result
}

type QuestionService struct {
	repos      *repository.RepositoryManager
	classifier Categorizer
	counters   *Counters
	notifier   Notifier
	logger     *logrus.Logger
}

func NewQuestionService(
	repos *repository.RepositoryManager,
	categorizer Categorizer,
	counters *Counters,
	notifier Notifier,
	logger *logrus.Logger,
) *QuestionService {
	return &QuestionService{
		repos:      repos,
		classifier: categorizer,
		counters:   counters,
		notifier:   notifier,
		logger:     logger,
	}
}

// ClassificationText is what the classifier sees for a question.
func ClassificationText(title, body string) string {
	return strings.TrimSpace(title + "\n" + body)
}

// Create asks a new question. Seniors answer rather than ask.
func (s *QuestionService) Create(ctx context.Context, principal *auth.Principal, req models.CreateQuestionRequest) (*models.Question, error) {
	if principal == nil {
		return nil, Unauthorized()
	}
	if principal.IsSenior {
		return nil, Forbidden(msgSeniorsCannotAsk)
	}

	title := strings.TrimSpace(req.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	body := strings.TrimSpace(req.Body)

	result := s.classifier.Classify(ctx, ClassificationText(title, body))
	question := &models.Question{
		AuthorID:           principal.ID,
		Title:              title,
		Body:               body,
		Category:           result.Category,
		CategoryConfidence: result.Confidence,
		CategorySource:     result.Source,
	}

	if err := s.insertWithSlug(ctx, question); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"question_id": question.ID,
		"slug":        question.Slug,
		"category":    question.Category,
		"source":      question.CategorySource,
	}).Info("Question created")

	return question, nil
}

// insertWithSlug picks a free slug for the question title and inserts it,
// retrying with a random suffix if another writer takes the slug first.
// Reserved route segments always get a suffix.
func (s *QuestionService) insertWithSlug(ctx context.Context, question *models.Question) error {
	base := utils.BaseSlug(question.Title, maxTitleLength, "question")
	slug := base

	for attempt := 0; attempt < slugAttempts; attempt++ {
		taken := reservedQuestionSlugs[slug]
		if !taken {
			exists, err := s.repos.Question.SlugExists(ctx, slug)
			if err != nil {
				return fmt.Errorf("check slug: %w", err)
			}
			taken = exists
		}
		if taken {
			slug = utils.CollisionSlug(base)
			continue
		}

		question.ID = ""
		question.Slug = slug
		err := s.repos.Question.Create(ctx, question)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("create question: %w", err)
		}
		slug = utils.CollisionSlug(base)
	}
	return fmt.Errorf("create question: no free slug for %q", base)
}

// Get returns a question with its answers and counts the view.
func (s *QuestionService) Get(ctx context.Context, principal *auth.Principal, slug string) (*models.QuestionDetailResponse, error) {
	question, err := s.repos.Question.GetBySlug(ctx, slug)
	if err != nil {
		return nil, notFoundOr(err, msgQuestionNotFound, "get question")
	}

	if err := s.repos.Question.IncrementViews(ctx, question.ID); err != nil {
		return nil, fmt.Errorf("count view: %w", err)
	}
	question.ViewCount++

	answers, err := s.repos.Answer.ListByQuestion(ctx, question.ID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	detail := &models.QuestionDetailResponse{
		QuestionResponse: models.QuestionResponse{Question: *question},
	}

	userID := principal.UserID()
	if userID != "" {
		votes, err := s.repos.Vote.UserQuestionVotes(ctx, userID, []string{question.ID})
		if err != nil {
			return nil, fmt.Errorf("load votes: %w", err)
		}
		detail.UserVote = voteOf(votes, question.ID)
	}

	detail.Answers, err = s.answerResponses(ctx, userID, answers)
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// List pages through questions newest first. Views are not counted.
func (s *QuestionService) List(ctx context.Context, principal *auth.Principal, filter models.QuestionFilter) ([]models.QuestionResponse, int64, error) {
	questions, total, err := s.repos.Question.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list questions: %w", err)
	}

	responses, err := s.questionResponses(ctx, principal.UserID(), questions)
	return responses, total, err
}

// Update edits title or body. Only the author may, and only while unanswered.
func (s *QuestionService) Update(ctx context.Context, principal *auth.Principal, slug string, req models.UpdateQuestionRequest) (*models.Question, error) {
	question, err := s.editable(ctx, principal, slug)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		fields["title"] = title
		question.Title = title
	}
	if req.Body != nil {
		body := strings.TrimSpace(*req.Body)
		fields["body"] = body
		question.Body = body
	}
	if len(fields) == 0 {
		return question, nil
	}

	if err := s.repos.Question.Update(ctx, question.ID, fields); err != nil {
		return nil, fmt.Errorf("update question: %w", err)
	}
	return s.repos.Question.GetByID(ctx, question.ID)
}

func (s *QuestionService) Delete(ctx context.Context, principal *auth.Principal, slug string) error {
	question, err := s.editable(ctx, principal, slug)
	if err != nil {
		return err
	}
	if err := s.repos.Question.Delete(ctx, question.ID); err != nil {
		return notFoundOr(err, msgQuestionNotFound, "delete question")
	}

	s.logger.WithField("question_id", question.ID).Info("Question deleted")
	return nil
}

func (s *QuestionService) editable(ctx context.Context, principal *auth.Principal, slug string) (*models.Question, error) {
	if principal == nil {
		return nil, Unauthorized()
	}
	question, err := s.repos.Question.GetBySlug(ctx, slug)
	if err != nil {
		return nil, notFoundOr(err, msgQuestionNotFound, "get question")
	}
	if question.AuthorID != principal.ID {
		return nil, Forbidden(msgNoPermission)
	}
	if question.IsAnswered {
		return nil, Forbidden(msgQuestionLocked)
	}
	// the flag can lag behind the answer rows if a sync failed
	answers, err := s.repos.Answer.CountByQuestion(ctx, question.ID)
	if err != nil {
		return nil, fmt.Errorf("count answers: %w", err)
	}
	if answers > 0 {
		return nil, Forbidden(msgQuestionLocked)
	}
	return question, nil
}

// Vote sets the caller's vote (+1 or -1) on a question.
func (s *QuestionService) Vote(ctx context.Context, principal *auth.Principal, slug string, value int) (*models.VoteResponse, error) {
	if principal == nil {
		return nil, Unauthorized()
	}
	question, err := s.repos.Question.GetBySlug(ctx, slug)
	if err != nil {
		return nil, notFoundOr(err, msgQuestionNotFound, "get question")
	}

	created, err := s.repos.Vote.UpsertQuestionVote(ctx, question.ID, principal.ID, value)
	if err != nil {
		return nil, fmt.Errorf("save vote: %w", err)
	}
	s.counters.QuestionVotesChanged(ctx, question.ID)

	if created {
		verb := VerbUpvotedQuestion
		if value < 0 {
			verb = VerbDownvotedQuestion
		}
		s.notifier.Notify(ctx, Event{
			Recipient: question.AuthorID,
			Actor:     principal.ID,
			Verb:      verb,
			Target:    QuestionTarget(question.ID),
		})
	}

	return s.voteResponse(ctx, question.ID, principal.ID)
}

// Unvote retracts the caller's vote, whatever its direction.
func (s *QuestionService) Unvote(ctx context.Context, principal *auth.Principal, slug string) (*models.VoteResponse, error) {
	if principal == nil {
		return nil, Unauthorized()
	}
	question, err := s.repos.Question.GetBySlug(ctx, slug)
	if err != nil {
		return nil, notFoundOr(err, msgQuestionNotFound, "get question")
	}

	if _, err := s.repos.Vote.DeleteQuestionVote(ctx, question.ID, principal.ID); err != nil {
		return nil, fmt.Errorf("delete vote: %w", err)
	}
	s.counters.QuestionVotesChanged(ctx, question.ID)

	return s.voteResponse(ctx, question.ID, principal.ID)
}

func (s *QuestionService) voteResponse(ctx context.Context, questionID, userID string) (*models.VoteResponse, error) {
	question, err := s.repos.Question.GetByID(ctx, questionID)
	if err != nil {
		return nil, notFoundOr(err, msgQuestionNotFound, "reload question")
	}
	votes, err := s.repos.Vote.UserQuestionVotes(ctx, userID, []string{questionID})
	if err != nil {
		return nil, fmt.Errorf("load votes: %w", err)
	}
	return &models.VoteResponse{
		UpvoteCount:   question.UpvoteCount,
		DownvoteCount: question.DownvoteCount,
		UserVote:      voteOf(votes, questionID),
	}, nil
}

// FAQs lists curated questions by faq_order, newest first within an order.
func (s *QuestionService) FAQs(ctx context.Context) ([]models.Question, error) {
	questions, err := s.repos.Question.ListFAQ(ctx)
	if err != nil {
		return nil, fmt.Errorf("list faqs: %w", err)
	}
	return questions, nil
}

// SetFAQ marks or unmarks a question as an FAQ. Staff only.
func (s *QuestionService) SetFAQ(ctx context.Context, principal *auth.Principal, slug string, req models.FAQRequest) (*models.Question, error) {
	if principal == nil {
		return nil, Unauthorized()
	}
	if !principal.IsStaff {
		return nil, Forbidden(msgStaffOnly)
	}
	if req.IsFAQ == nil {
		return nil, Validation("is_faq is required.")
	}
	question, err := s.repos.Question.GetBySlug(ctx, slug)
	if err != nil {
		return nil, notFoundOr(err, msgQuestionNotFound, "get question")
	}

	err = s.repos.Question.Update(ctx, question.ID, map[string]interface{}{
		"is_faq":    *req.IsFAQ,
		"faq_order": req.FAQOrder,
	})
	if err != nil {
		return nil, fmt.Errorf("update faq: %w", err)
	}
	return s.repos.Question.GetByID(ctx, question.ID)
}

// Categories returns the fixed category labels.
func (s *QuestionService) Categories() []string {
	out := make([]string, len(models.Categories))
	copy(out, models.Categories)
	return out
}

func (s *QuestionService) questionResponses(ctx context.Context, userID string, questions []models.Question) ([]models.QuestionResponse, error) {
	responses := make([]models.QuestionResponse, len(questions))
	ids := make([]string, len(questions))
	for i, q := range questions {
		responses[i].Question = q
		ids[i] = q.ID
	}
	if userID == "" {
		return responses, nil
	}

	votes, err := s.repos.Vote.UserQuestionVotes(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("load votes: %w", err)
	}
	for i := range responses {
		responses[i].UserVote = voteOf(votes, responses[i].ID)
	}
	return responses, nil
}

func (s *QuestionService) answerResponses(ctx context.Context, userID string, answers []models.Answer) ([]models.AnswerResponse, error) {
	responses := make([]models.AnswerResponse, len(answers))
	ids := make([]string, len(answers))
	for i, a := range answers {
		responses[i].Answer = a
		ids[i] = a.ID
	}
	if userID == "" {
		return responses, nil
	}

	votes, err := s.repos.Vote.UserAnswerVotes(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("load votes: %w", err)
	}
	for i := range responses {
		responses[i].UserVote = voteOf(votes, responses[i].ID)
	}
	return responses, nil
}

func voteOf(votes map[string]int, id string) *int {
	if v, ok := votes[id]; ok {
		return &v
	}
	return nil
}
