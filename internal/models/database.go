package models

// GORM models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category labels the classifier may assign. Order matters: keyword ties
// resolve to the earliest label.
const (
	CategoryScholarships = "Scholarships & Fee"
	CategoryHostel       = "Hostel & Accommodation"
	CategoryAdmissions   = "Admissions & Eligibility"
	CategoryExams        = "Exam & Syllabus"
	CategoryCampusLife   = "Campus Life"
	CategoryPlacements   = "Placements & Career"
	CategoryRules        = "Rules & Regulations"
	CategoryAcademics    = "Faculty & Academics"
	CategoryGeneral      = "General"
)

var Categories = []string{
	CategoryScholarships,
	CategoryHostel,
	CategoryAdmissions,
	CategoryExams,
	CategoryCampusLife,
	CategoryPlacements,
	CategoryRules,
	CategoryAcademics,
	CategoryGeneral,
}

// IsCategory reports whether label is one of the fixed categories.
func IsCategory(label string) bool {
	for _, c := range Categories {
		if c == label {
			return true
		}
	}
	return false
}

const (
	SourceLLM     = "llm"
	SourceKeyword = "keyword"
)

// Base model with common fields
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *BaseModel) assignID() {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
}

// Question is asked by a prospective student and answered by seniors.
type Question struct {
	BaseModel
	AuthorID           string  `json:"author_id" gorm:"type:varchar(64);not null;index"`
	Title              string  `json:"title" gorm:"size:300;not null"`
	Slug               string  `json:"slug" gorm:"size:320;not null;uniqueIndex"`
	Body               string  `json:"body" gorm:"type:text;not null"`
	Category           string  `json:"category" gorm:"size:64;not null;index"`
	CategoryConfidence float64 `json:"category_confidence" gorm:"not null;default:0"`
	CategorySource     string  `json:"category_source" gorm:"size:16;not null;check:category_source IN ('llm','keyword')"`
	IsAnswered         bool    `json:"is_answered" gorm:"not null;default:false;index"`
	AnswerCount        int     `json:"answer_count" gorm:"not null;default:0"`
	UpvoteCount        int     `json:"upvote_count" gorm:"not null;default:0"`
	DownvoteCount      int     `json:"downvote_count" gorm:"not null;default:0"`
	ViewCount          int     `json:"view_count" gorm:"not null;default:0"`
	IsFAQ              bool    `json:"is_faq" gorm:"column:is_faq;not null;default:false;index"`
	FAQOrder           int     `json:"faq_order" gorm:"column:faq_order;not null;default:0"`

	// Associations
	Answers   []Answer       `json:"-" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
	FollowUps []FollowUp     `json:"-" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
	Votes     []QuestionVote `json:"-" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}

// Answer is written by a verified senior; one per (question, author).
type Answer struct {
	BaseModel
	QuestionID    string `json:"question_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_answer_question_author"`
	AuthorID      string `json:"author_id" gorm:"type:varchar(64);not null;uniqueIndex:idx_answer_question_author;index"`
	Body          string `json:"body" gorm:"type:text;not null"`
	UpvoteCount   int    `json:"upvote_count" gorm:"not null;default:0"`
	DownvoteCount int    `json:"downvote_count" gorm:"not null;default:0"`

	Votes []AnswerVote `json:"-" gorm:"foreignKey:AnswerID;constraint:OnDelete:CASCADE"`
}

type QuestionVote struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	QuestionID string    `json:"question_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_question_vote_user"`
	UserID     string    `json:"user_id" gorm:"type:varchar(64);not null;uniqueIndex:idx_question_vote_user"`
	Value      int       `json:"value" gorm:"not null;check:value IN (1,-1)"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type AnswerVote struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	AnswerID  string    `json:"answer_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_answer_vote_user"`
	UserID    string    `json:"user_id" gorm:"type:varchar(64);not null;uniqueIndex:idx_answer_vote_user"`
	Value     int       `json:"value" gorm:"not null;check:value IN (1,-1)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FollowUp is a clarifying message on an answered question.
type FollowUp struct {
	BaseModel
	QuestionID string `json:"question_id" gorm:"type:varchar(36);not null;index"`
	AuthorID   string `json:"author_id" gorm:"type:varchar(64);not null"`
	Body       string `json:"body" gorm:"type:text;not null"`
}

// Post is a free-form community thread.
type Post struct {
	BaseModel
	AuthorID      string `json:"author_id" gorm:"type:varchar(64);not null;index"`
	Title         string `json:"title" gorm:"size:300;not null"`
	Slug          string `json:"slug" gorm:"size:320;not null;uniqueIndex"`
	Description   string `json:"description" gorm:"type:text;not null"`
	UpvoteCount   int    `json:"upvote_count" gorm:"not null;default:0"`
	DownvoteCount int    `json:"downvote_count" gorm:"not null;default:0"`
	CommentCount  int    `json:"comment_count" gorm:"not null;default:0"`

	Comments []Comment  `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Votes    []PostVote `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

// Comment belongs to a post; ParentID is set for replies.
type Comment struct {
	BaseModel
	PostID      string  `json:"post_id" gorm:"type:varchar(36);not null;index"`
	AuthorID    string  `json:"author_id" gorm:"type:varchar(64);not null"`
	ParentID    *string `json:"parent_id" gorm:"type:varchar(36);index"`
	Body        string  `json:"body" gorm:"type:text;not null"`
	UpvoteCount int     `json:"upvote_count" gorm:"not null;default:0"`

	Replies []Comment       `json:"-" gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
	Upvotes []CommentUpvote `json:"-" gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE"`
}

type PostVote struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"post_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_post_vote_user"`
	UserID    string    `json:"user_id" gorm:"type:varchar(64);not null;uniqueIndex:idx_post_vote_user"`
	Value     int       `json:"value" gorm:"not null;check:value IN (1,-1)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CommentUpvote struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CommentID string    `json:"comment_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_comment_upvote_user"`
	UserID    string    `json:"user_id" gorm:"type:varchar(64);not null;uniqueIndex:idx_comment_upvote_user"`
	CreatedAt time.Time `json:"created_at"`
}

// Notification records that an actor did something to a recipient's content.
type Notification struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	RecipientID string     `json:"recipient_id" gorm:"type:varchar(64);not null;index:idx_notification_recipient"`
	ActorID     string     `json:"actor_id" gorm:"type:varchar(64);not null"`
	Verb        string     `json:"verb" gorm:"size:64;not null"`
	TargetKind  string     `json:"target_kind" gorm:"size:16;not null;check:target_kind IN ('question','answer','post','comment')"`
	TargetID    string     `json:"target_id" gorm:"type:varchar(36);not null"`
	ReadAt      *time.Time `json:"read_at"`
	CreatedAt   time.Time  `json:"created_at" gorm:"index:idx_notification_recipient"`
}

// TableName methods for custom table names
func (Question) TableName() string      { return "questions" }
func (Answer) TableName() string        { return "answers" }
func (QuestionVote) TableName() string  { return "question_votes" }
func (AnswerVote) TableName() string    { return "answer_votes" }
func (FollowUp) TableName() string      { return "followups" }
func (Post) TableName() string          { return "posts" }
func (Comment) TableName() string       { return "comments" }
func (PostVote) TableName() string      { return "post_votes" }
func (CommentUpvote) TableName() string { return "comment_upvotes" }
func (Notification) TableName() string  { return "notifications" }

// AllModels lists every table in dependency order for migrations.
func AllModels() []interface{} {
	return []interface{}{
		&Question{},
		&Answer{},
		&QuestionVote{},
		&AnswerVote{},
		&FollowUp{},
		&Post{},
		&Comment{},
		&PostVote{},
		&CommentUpvote{},
		&Notification{},
	}
}

// Model validation methods
func (q *Question) Validate() error {
	if strings.TrimSpace(q.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if q.AuthorID == "" {
		return fmt.Errorf("author is required")
	}
	if q.CategoryConfidence < 0 || q.CategoryConfidence > 1 {
		return fmt.Errorf("category confidence out of range: %f", q.CategoryConfidence)
	}
	if q.CategorySource != SourceLLM && q.CategorySource != SourceKeyword {
		return fmt.Errorf("invalid category source: %s", q.CategorySource)
	}
	return nil
}

func validVote(value int) error {
	if value != 1 && value != -1 {
		return fmt.Errorf("invalid vote value: %d", value)
	}
	return nil
}

// GORM hooks
func (q *Question) BeforeCreate(tx *gorm.DB) error {
	q.assignID()
	return q.Validate()
}

func (a *Answer) BeforeCreate(tx *gorm.DB) error {
	a.assignID()
	if strings.TrimSpace(a.Body) == "" {
		return fmt.Errorf("answer body is required")
	}
	return nil
}

func (f *FollowUp) BeforeCreate(tx *gorm.DB) error {
	f.assignID()
	return nil
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	p.assignID()
	return nil
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	c.assignID()
	return nil
}

func (v *QuestionVote) BeforeSave(tx *gorm.DB) error { return validVote(v.Value) }
func (v *AnswerVote) BeforeSave(tx *gorm.DB) error   { return validVote(v.Value) }
func (v *PostVote) BeforeSave(tx *gorm.DB) error     { return validVote(v.Value) }
