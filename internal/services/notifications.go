package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Ayash-Bera/campusqa/internal/auth"
	"github.com/Ayash-Bera/campusqa/internal/models"
)

// TargetKind names the kind of content a notification points at.
type TargetKind string

const (
	TargetQuestion TargetKind = "question"
	TargetAnswer   TargetKind = "answer"
	TargetPost     TargetKind = "post"
	TargetComment  TargetKind = "comment"
)

// Target identifies the content an event happened to.
type Target struct {
	Kind TargetKind
	ID   string
}

func QuestionTarget(id string) Target { return Target{Kind: TargetQuestion, ID: id} }
func AnswerTarget(id string) Target   { return Target{Kind: TargetAnswer, ID: id} }
func PostTarget(id string) Target     { return Target{Kind: TargetPost, ID: id} }
func CommentTarget(id string) Target  { return Target{Kind: TargetComment, ID: id} }

const (
	VerbUpvotedQuestion   = "upvoted your question"
	VerbDownvotedQuestion = "downvoted your question"
	VerbAnsweredQuestion  = "answered your question"
	VerbUpvotedAnswer     = "upvoted your answer"
	VerbDownvotedAnswer   = "downvoted your answer"
	VerbUpvotedPost       = "upvoted your post"
	VerbDownvotedPost     = "downvoted your post"
	VerbCommentedOnPost   = "commented on your post"
	VerbRepliedToComment  = "replied to your comment"
	VerbUpvotedComment    = "upvoted your comment"
)

const (
	DefaultDedupWindow = 5 * time.Minute
	DefaultRetention   = 90 * 24 * time.Hour
)

// Event is something an actor did to content owned by the recipient.
type Event struct {
	Recipient string
	Actor     string
	Verb      string
	Target    Target
}

// Notifier is what write paths call after a successful create.
type Notifier interface {
	Notify(ctx context.Context, event Event) bool
}

// NotificationService records notifications and serves a recipient's inbox.
type NotificationService struct {
	repo   models.NotificationRepository
	window time.Duration
	now    func() time.Time
	logger *logrus.Logger
}

func NewNotificationService(repo models.NotificationRepository, window time.Duration, logger *logrus.Logger) *NotificationService {
	if window <= 0 {
		window = DefaultDedupWindow
	}
	return &NotificationService{
		repo:   repo,
		window: window,
		now:    time.Now,
		logger: logger,
	}
}

// Notify records event unless the actor is the recipient or the same
// notification was recorded within the dedup window. It reports whether a
// row was written; failures are logged only.
func (s *NotificationService) Notify(ctx context.Context, event Event) bool {
	fields := logrus.Fields{
		"recipient": event.Recipient,
		"actor":     event.Actor,
		"verb":      event.Verb,
		"target":    string(event.Target.Kind) + ":" + event.Target.ID,
	}

	if event.Recipient == "" || event.Recipient == event.Actor {
		s.logger.WithFields(fields).Debug("Skipping self notification")
		return false
	}

	notification := models.Notification{
		RecipientID: event.Recipient,
		ActorID:     event.Actor,
		Verb:        event.Verb,
		TargetKind:  string(event.Target.Kind),
		TargetID:    event.Target.ID,
	}

	duplicate, err := s.repo.ExistsSince(ctx, notification, s.now().Add(-s.window))
	if err != nil {
		s.logger.WithFields(fields).WithError(err).Error("Notification dedup check failed")
		return false
	}
	if duplicate {
		s.logger.WithFields(fields).Debug("Skipping duplicate notification")
		return false
	}

	notification.CreatedAt = s.now()
	if err := s.repo.Create(ctx, &notification); err != nil {
		s.logger.WithFields(fields).WithError(err).Error("Failed to create notification")
		return false
	}

	s.logger.WithFields(fields).Info("Created notification")
	return true
}

func (s *NotificationService) List(ctx context.Context, principal *auth.Principal, page, pageSize int) ([]models.Notification, int64, error) {
	if principal == nil {
		return nil, 0, Unauthorized()
	}
	page, pageSize = models.NormalizePage(page, pageSize)
	return s.repo.ListForRecipient(ctx, principal.ID, pageSize, (page-1)*pageSize)
}

func (s *NotificationService) UnreadCount(ctx context.Context, principal *auth.Principal) (int64, error) {
	if principal == nil {
		return 0, Unauthorized()
	}
	return s.repo.UnreadCount(ctx, principal.ID)
}

func (s *NotificationService) MarkRead(ctx context.Context, principal *auth.Principal, id uint) error {
	if principal == nil {
		return Unauthorized()
	}
	found, err := s.repo.MarkRead(ctx, principal.ID, id)
	if err != nil {
		return err
	}
	if !found {
		return NotFound("Notification not found.")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, principal *auth.Principal) (int64, error) {
	if principal == nil {
		return 0, Unauthorized()
	}
	return s.repo.MarkAllRead(ctx, principal.ID)
}

// Prune deletes notifications older than olderThan.
func (s *NotificationService) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		olderThan = DefaultRetention
	}
	count, err := s.repo.DeleteOlderThan(ctx, s.now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	s.logger.WithFields(logrus.Fields{
		"deleted":    count,
		"older_than": olderThan.String(),
	}).Info("Pruned old notifications")
	return count, nil
}
