package models

import (
	"context"
	"time"
)

// Database interfaces for repository pattern
type QuestionRepository interface {
	Create(ctx context.Context, question *Question) error
	GetByID(ctx context.Context, id string) (*Question, error)
	GetBySlug(ctx context.Context, slug string) (*Question, error)
	GetByTitle(ctx context.Context, title string) (*Question, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, filter QuestionFilter) ([]Question, int64, error)
	ListFAQ(ctx context.Context) ([]Question, error)
	ListUnanswered(ctx context.Context, limit int) ([]Question, error)
	ListForReclassify(ctx context.Context, onlyKeyword bool) ([]Question, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	UpdateClassification(ctx context.Context, id, category string, confidence float64, source string) error
	SetAnswered(ctx context.Context, id string, answered bool) error
	IncrementViews(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type AnswerRepository interface {
	Create(ctx context.Context, answer *Answer) error
	GetByID(ctx context.Context, questionID, id string) (*Answer, error)
	ListByQuestion(ctx context.Context, questionID string) ([]Answer, error)
	CountByQuestion(ctx context.Context, questionID string) (int64, error)
	ExistsForAuthor(ctx context.Context, questionID, authorID string) (bool, error)
	UpdateBody(ctx context.Context, id, body string) error
	Delete(ctx context.Context, id string) error
	CountByAuthor(ctx context.Context, authorID string) (int64, error)
	SumUpvotesByAuthor(ctx context.Context, authorID string) (int64, error)
	QuestionIDsByAuthor(ctx context.Context, authorID string) ([]string, error)
}

// VoteRepository writes vote rows. Upserts report whether a new row was
// created, deletes whether a row existed.
type VoteRepository interface {
	UpsertQuestionVote(ctx context.Context, questionID, userID string, value int) (bool, error)
	DeleteQuestionVote(ctx context.Context, questionID, userID string) (bool, error)
	UserQuestionVotes(ctx context.Context, userID string, questionIDs []string) (map[string]int, error)

	UpsertAnswerVote(ctx context.Context, answerID, userID string, value int) (bool, error)
	DeleteAnswerVote(ctx context.Context, answerID, userID string) (bool, error)
	UserAnswerVotes(ctx context.Context, userID string, answerIDs []string) (map[string]int, error)

	UpsertPostVote(ctx context.Context, postID, userID string, value int) (bool, error)
	DeletePostVote(ctx context.Context, postID, userID string) (bool, error)
	UserPostVotes(ctx context.Context, userID string, postIDs []string) (map[string]int, error)

	AddCommentUpvote(ctx context.Context, commentID, userID string) (bool, error)
	RemoveCommentUpvote(ctx context.Context, commentID, userID string) (bool, error)
	UserCommentUpvotes(ctx context.Context, userID string, commentIDs []string) (map[string]bool, error)
}

// VoteTally is the number of up and down votes recorded for one target.
type VoteTally struct {
	Up   int
	Down int
}

// CounterRepository maintains denormalized counters.
type CounterRepository interface {
	RecountQuestionVotes(ctx context.Context, questionID string) (VoteTally, error)
	RecountAnswerVotes(ctx context.Context, answerID string) (VoteTally, error)
	RecountPostVotes(ctx context.Context, postID string) (VoteTally, error)
	RecountCommentUpvotes(ctx context.Context, commentID string) (int, error)
	Adjust(ctx context.Context, table, column, id string, delta int) error
}

type FollowUpRepository interface {
	Create(ctx context.Context, followUp *FollowUp) error
	GetByID(ctx context.Context, questionID, id string) (*FollowUp, error)
	List(ctx context.Context, questionID string, limit, offset int) ([]FollowUp, int64, error)
	UpdateBody(ctx context.Context, id, body string) error
	Delete(ctx context.Context, id string) error
	RecentOnQuestions(ctx context.Context, questionIDs []string, limit int) ([]FollowUpSummary, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *Post) error
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, filter PostFilter) ([]Post, int64, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *Comment) error
	GetByID(ctx context.Context, id string) (*Comment, error)
	ListByPost(ctx context.Context, postID string) ([]Comment, error)
	UpdateBody(ctx context.Context, id, body string) error
	Delete(ctx context.Context, id string) error
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *Notification) error
	ExistsSince(ctx context.Context, n Notification, since time.Time) (bool, error)
	ListForRecipient(ctx context.Context, recipientID string, limit, offset int) ([]Notification, int64, error)
	UnreadCount(ctx context.Context, recipientID string) (int64, error)
	MarkRead(ctx context.Context, recipientID string, id uint) (bool, error)
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
