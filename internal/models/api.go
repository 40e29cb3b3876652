package models

type CreateQuestionRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type UpdateQuestionRequest struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

type AnswerRequest struct {
	Body string `json:"body"`
}

type FollowUpRequest struct {
	Body string `json:"body"`
}

type FAQRequest struct {
	IsFAQ    *bool `json:"is_faq" binding:"required"`
	FAQOrder int   `json:"faq_order"`
}

type PostRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type UpdatePostRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type CommentRequest struct {
	Body     string  `json:"body"`
	ParentID *string `json:"parent_id"`
}

type UpdateCommentRequest struct {
	Body *string `json:"body"`
}

// QuestionFilter narrows question listings. Zero values mean "any".
type QuestionFilter struct {
	Answered       *bool
	AuthorID       string
	AnswerAuthorID string
	Category       string
	Page           int
	PageSize       int
}

// PostFilter narrows post listings. UpvotedBy and DownvotedBy hold a user
// id whose vote in that direction the post must carry.
type PostFilter struct {
	AuthorID    string
	UpvotedBy   string
	DownvotedBy string
	Page        int
	PageSize    int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize clamps paging to sane bounds.
func (f *QuestionFilter) Normalize() {
	f.Page, f.PageSize = NormalizePage(f.Page, f.PageSize)
}

func NormalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

type QuestionResponse struct {
	Question
	UserVote *int `json:"user_vote,omitempty"`
}

type AnswerResponse struct {
	Answer
	UserVote *int `json:"user_vote,omitempty"`
}

type QuestionDetailResponse struct {
	QuestionResponse
	Answers []AnswerResponse `json:"answers"`
}

type VoteResponse struct {
	UpvoteCount   int  `json:"upvote_count"`
	DownvoteCount int  `json:"downvote_count"`
	UserVote      *int `json:"user_vote"`
}

type CommentResponse struct {
	Comment
	UserUpvoted bool `json:"user_upvoted"`
}

type CommentUpvoteResponse struct {
	Upvoted     bool `json:"upvoted"`
	UpvoteCount int  `json:"upvote_count"`
}

type PostResponse struct {
	Post
	UserVote *int `json:"user_vote,omitempty"`
}

// FollowUpSummary is a follow-up annotated with its question, for dashboards.
type FollowUpSummary struct {
	FollowUp
	QuestionSlug  string `json:"question_slug"`
	QuestionTitle string `json:"question_title"`
}

type SeniorDashboard struct {
	TotalAnswers        int64             `json:"total_answers"`
	TotalUpvotes        int64             `json:"total_upvotes"`
	UnansweredQuestions []Question        `json:"unanswered_questions"`
	RecentFollowUps     []FollowUpSummary `json:"recent_followups"`
}

type SearchResponse struct {
	Query   string             `json:"query"`
	OrderBy string             `json:"order_by"`
	Results []QuestionResponse `json:"results"`
	Total   int                `json:"total"`
}

type PostSearchResponse struct {
	Query   string         `json:"query"`
	OrderBy string         `json:"order_by"`
	Results []PostResponse `json:"results"`
	Total   int            `json:"total"`
}

type Suggestion struct {
	ID       string `json:"id"`
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}
