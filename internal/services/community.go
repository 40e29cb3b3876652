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
	"github.com/Ayash-Bera/campusqa/pkg/utils"
)

const (
	msgPostNotFound    = "Post not found."
	msgCommentNotFound = "Comment not found."
	msgParentMismatch  = "Parent comment must belong to the same post."
	msgDeleteOwnPost   = "You can only delete your own post."
	msgDeleteComment   = "You can only delete your own comment."
	msgEditOwnPost     = "You can only edit your own post."
	msgEditComment     = "You can only edit your own comment."
)

// reservedPostSlugs are path segments routed ahead of /posts/:slug.
var reservedPostSlugs = map[string]bool{
	"search": true,
}

// PostQuery is a caller's post listing request.
type PostQuery struct {
	AuthorID      string
	UpvotedByMe   bool
	DownvotedByMe bool
	Page          int
	PageSize      int
}

// CommunityService serves posts and their threaded comments.
type CommunityService struct {
	repos    *repository.RepositoryManager
	counters *Counters
	notifier Notifier
	logger   *logrus.Logger
}

func NewCommunityService(
	repos *repository.RepositoryManager,
	counters *Counters,
	notifier Notifier,
	logger *logrus.Logger,
) *CommunityService {
	return &CommunityService{
		repos:    repos,
		counters: counters,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *CommunityService) post(ctx context.Context, slug string) (*models.Post, error) {
	post, err := s.repos.Post.GetBySlug(ctx, slug)
	if err != nil {
		return nil, notFoundOr(err, msgPostNotFound, "get post")
	}
	return post, nil
}

func (s *CommunityService) comment(ctx context.Context, id string) (*models.Comment, error) {
	comment, err := s.repos.Comment.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgCommentNotFound, "get comment")
	}
	return comment, nil
}

func (s *CommunityService) CreatePost(ctx context.Context, principal *auth.Principal, req models.PostRequest) (*models.Post, error) {
	if principal == nil {
		return nil, Unauthorized()
	}
	title := strings.TrimSpace(req.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}

	post := &models.Post{
		AuthorID:    principal.ID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
	}

	base := utils.BaseSlug(title, maxTitleLength, "post")
	slug := base
	for attempt := 0; attempt < slugAttempts; attempt++ {
		taken := reservedPostSlugs[slug]
		if !taken {
			exists, err := s.repos.Post.SlugExists(ctx, slug)
			if err != nil {
				return nil, fmt.Errorf("check slug: %w", err)
			}
			taken = exists
		}
		if taken {
			slug = utils.CollisionSlug(base)
			continue
		}

		post.ID = ""
		post.Slug = slug
		err := s.repos.Post.Create(ctx, post)
		if err == nil {
			s.logger.WithFields(logrus.Fields{
				"post_id": post.ID,
				"slug":    post.Slug,
			}).Info("Post created")
			return post, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("create post: %w", err)
		}
		slug = utils.CollisionSlug(base)
	}
	return nil, fmt.Errorf("create post: no free slug for %q", base)
}

// ListPosts pages through posts newest first. The "me" vote filters only
// apply to a signed-in caller and are ignored otherwise.
func (s *CommunityService) ListPosts(ctx context.Context, principal *auth.Principal, query PostQuery) ([]models.PostResponse, int64, error) {
	filter := models.PostFilter{
		AuthorID: query.AuthorID,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if userID := principal.UserID(); userID != "" {
		if query.UpvotedByMe {
			filter.UpvotedBy = userID
		}
		if query.DownvotedByMe {
			filter.DownvotedBy = userID
		}
	}

	posts, total, err := s.repos.Post.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	responses, err := s.postResponses(ctx, principal.UserID(), posts)
	return responses, total, err
}

func (s *CommunityService) GetPost(ctx context.Context, principal *auth.Principal, slug string) (*models.PostResponse, error) {
	post, err := s.post(ctx, slug)
	if err != nil {
		return nil, err
	}
	responses, err := s.postResponses(ctx, principal.UserID(), []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &responses[0], nil
}

// UpdatePost edits title or description. Only the author may; the slug is kept.
func (s *CommunityService) UpdatePost(ctx context.Context, principal *auth.Principal, slug string, req models.UpdatePostRequest) (*models.PostResponse, error) {
	if principal == nil {
		return nil, Unauthorized()
	}
	post, err := s.post(ctx, slug)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != principal.ID {
		return nil, Forbidden(msgEditOwnPost)
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		fields["title"] = title
	}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
	}
	if len(fields) > 0 {
		if err := s.repos.Post.Update(ctx, post.ID, fields); err != nil {
			return nil, notFoundOr(err, msgPostNotFound, "update post")
		}
		s.logger.WithField("post_id", post.ID).Info("Post updated")
	}
	return s.GetPost(ctx, principal, slug)
}

func (s *CommunityService) DeletePost(ctx context.Context, principal *auth.Principal, slug string) error {
	if principal == nil {
		return Unauthorized()
	}
	post, err := s.post(ctx, slug)
	if err != nil {
		return err
	}
	if post.AuthorID != principal.ID {
		return Forbidden(msgDeleteOwnPost)
	}
	if err := s.repos.Post.Delete(ctx, post.ID); err != nil {
		return notFoundOr(err, msgPostNotFound, "delete post")
	}
	s.logger.WithField("post_id", post.ID).Info("Post deleted")
	return nil
}

func (s *CommunityService) VotePost(ctx context.Context, principal *auth.Principal, slug string, value int) (*models.VoteResponse, error) {
	if principal == nil {
		return nil, Unauthorized()
	}
	post, err := s.post(ctx, slug)
	if err != nil {
		return nil, err
	}

	created, err := s.repos.Vote.UpsertPostVote(ctx, post.ID, principal.ID, value)
	if err != nil {
		return nil, fmt.Errorf("save vote: %w", err)
	}
	s.counters.PostVotesChanged(ctx, post.ID)

	if created {
		verb := VerbUpvotedPost
		if value < 0 {
			verb = VerbDownvotedPost
		}
		s.notifier.Notify(ctx, Event{
			Recipient: post.AuthorID,
			Actor:     principal.ID,
			Verb:      verb,
			Target:    PostTarget(post.ID),
		})
	}
	return s.postVoteResponse(ctx, slug, principal.ID)
}

func (s *CommunityService) UnvotePost(ctx context.Context, principal *auth.Principal, slug string) (*models.VoteResponse, error) {
	if principal == nil {
		return nil, Unauthorized()
	}
	post, err := s.post(ctx, slug)
	if err != nil {
		return nil, err
	}
	if _, err := s.repos.Vote.DeletePostVote(ctx, post.ID, principal.ID); err != nil {
		return nil, fmt.Errorf("delete vote: %w", err)
	}
	s.counters.PostVotesChanged(ctx, post.ID)
	return s.postVoteResponse(ctx, slug, principal.ID)
}

func (s *CommunityService) postVoteResponse(ctx context.Context, slug, userID string) (*models.VoteResponse, error) {
	post, err := s.post(ctx, slug)
	if err != nil {
		return nil, err
	}
	votes, err := s.repos.Vote.UserPostVotes(ctx, userID, []string{post.ID})
	if err != nil {
		return nil, fmt.Errorf("load votes: %w", err)
	}
	return &models.VoteResponse{
		UpvoteCount:   post.UpvoteCount,
		DownvoteCount: post.DownvoteCount,
		UserVote:      voteOf(votes, post.ID),
	}, nil
}

// ListComments returns every comment on a post, oldest first. Replies carry
// their parent id; clients build the tree.
func (s *CommunityService) ListComments(ctx context.Context, principal *auth.Principal, slug string) ([]models.CommentResponse, error) {
	post, err := s.post(ctx, slug)
	if err != nil {
		return nil, err
	}
	comments, err := s.repos.Comment.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	responses := make([]models.CommentResponse, len(comments))
	ids := make([]string, len(comments))
	for i, c := range comments {
		responses[i].Comment = c
		ids[i] = c.ID
	}
	userID := principal.UserID()
	if userID == "" {
		return responses, nil
	}
	upvoted, err := s.repos.Vote.UserCommentUpvotes(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("load upvotes: %w", err)
	}
	for i := range responses {
		responses[i].UserUpvoted = upvoted[responses[i].ID]
	}
	return responses, nil
}

// CreateComment adds a comment or, with a parent id, a reply. Only
// top-level comments count toward the post's comment_count.
func (s *CommunityService) CreateComment(ctx context.Context, principal *auth.Principal, slug string, req models.CommentRequest) (*models.Comment, error) {
	if principal == nil {
		return nil, Unauthorized()
	}
	post, err := s.post(ctx, slug)
	if err != nil {
		return nil, err
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, Validation(msgBlankField)
	}

	var parent *models.Comment
	if req.ParentID != nil && *req.ParentID != "" {
		parent, err = s.repos.Comment.GetByID(ctx, *req.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, Validation(msgParentMismatch)
			}
			return nil, fmt.Errorf("get parent comment: %w", err)
		}
		if parent.PostID != post.ID {
			return nil, Validation(msgParentMismatch)
		}
	}

	comment := &models.Comment{
		PostID:   post.ID,
		AuthorID: principal.ID,
		Body:     body,
	}
	if parent != nil {
		comment.ParentID = &parent.ID
	}
	if err := s.repos.Comment.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	event := Event{Actor: principal.ID}
	if parent == nil {
		s.counters.CommentAdded(ctx, post.ID)
		event.Recipient = post.AuthorID
		event.Verb = VerbCommentedOnPost
		event.Target = PostTarget(post.ID)
	} else {
		event.Recipient = parent.AuthorID
		event.Verb = VerbRepliedToComment
		event.Target = CommentTarget(parent.ID)
	}
	s.notifier.Notify(ctx, event)

	s.logger.WithFields(logrus.Fields{
		"post_id":    post.ID,
		"comment_id": comment.ID,
		"reply":      parent != nil,
	}).Info("Comment created")
	return comment, nil
}

// UpdateComment edits a comment body. Only the author may.
func (s *CommunityService) UpdateComment(ctx context.Context, principal *auth.Principal, id string, req models.UpdateCommentRequest) (*models.Comment, error) {
	if principal == nil {
		return nil, Unauthorized()
	}
	comment, err := s.comment(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != principal.ID {
		return nil, Forbidden(msgEditComment)
	}
	if req.Body == nil {
		return comment, nil
	}
	body := strings.TrimSpace(*req.Body)
	if body == "" {
		return nil, Validation(msgBlankField)
	}

	if err := s.repos.Comment.UpdateBody(ctx, comment.ID, body); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return s.comment(ctx, comment.ID)
}

// DeleteComment removes a comment and its replies. The author or staff may delete.
func (s *CommunityService) DeleteComment(ctx context.Context, principal *auth.Principal, id string) error {
	if principal == nil {
		return Unauthorized()
	}
	comment, err := s.comment(ctx, id)
	if err != nil {
		return err
	}
	if comment.AuthorID != principal.ID && !principal.IsStaff {
		return Forbidden(msgDeleteComment)
	}

	if err := s.repos.Comment.Delete(ctx, comment.ID); err != nil {
		return notFoundOr(err, msgCommentNotFound, "delete comment")
	}
	if comment.ParentID == nil {
		s.counters.CommentRemoved(ctx, comment.PostID)
	}

	s.logger.WithFields(logrus.Fields{
		"post_id":    comment.PostID,
		"comment_id": comment.ID,
	}).Info("Comment deleted")
	return nil
}

// UpvoteComment records the caller's upvote on exactly this comment. It
// reports whether a new upvote was created.
func (s *CommunityService) UpvoteComment(ctx context.Context, principal *auth.Principal, id string) (*models.CommentUpvoteResponse, bool, error) {
	if principal == nil {
		return nil, false, Unauthorized()
	}
	comment, err := s.comment(ctx, id)
	if err != nil {
		return nil, false, err
	}

	created, err := s.repos.Vote.AddCommentUpvote(ctx, comment.ID, principal.ID)
	if err != nil {
		return nil, false, fmt.Errorf("save upvote: %w", err)
	}
	count, ok := s.counters.CommentUpvotesChanged(ctx, comment.ID)
	if !ok {
		count = comment.UpvoteCount
	}

	if created {
		s.notifier.Notify(ctx, Event{
			Recipient: comment.AuthorID,
			Actor:     principal.ID,
			Verb:      VerbUpvotedComment,
			Target:    CommentTarget(comment.ID),
		})
	}
	return &models.CommentUpvoteResponse{Upvoted: true, UpvoteCount: count}, created, nil
}

func (s *CommunityService) RemoveCommentUpvote(ctx context.Context, principal *auth.Principal, id string) (*models.CommentUpvoteResponse, error) {
	if principal == nil {
		return nil, Unauthorized()
	}
	comment, err := s.comment(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.repos.Vote.RemoveCommentUpvote(ctx, comment.ID, principal.ID); err != nil {
		return nil, fmt.Errorf("remove upvote: %w", err)
	}
	count, ok := s.counters.CommentUpvotesChanged(ctx, comment.ID)
	if !ok {
		count = comment.UpvoteCount
	}
	return &models.CommentUpvoteResponse{Upvoted: false, UpvoteCount: count}, nil
}

func (s *CommunityService) postResponses(ctx context.Context, userID string, posts []models.Post) ([]models.PostResponse, error) {
	responses := make([]models.PostResponse, len(posts))
	ids := make([]string, len(posts))
	for i, p := range posts {
		responses[i].Post = p
		ids[i] = p.ID
	}
	if userID == "" {
		return responses, nil
	}
	votes, err := s.repos.Vote.UserPostVotes(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("load votes: %w", err)
	}
	for i := range responses {
		responses[i].UserVote = voteOf(votes, responses[i].ID)
	}
	return responses, nil
}
