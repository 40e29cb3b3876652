package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Ayash-Bera/campusqa/internal/models"
	"github.com/Ayash-Bera/campusqa/internal/services"
	"github.com/Ayash-Bera/campusqa/pkg/utils"
)

// CommunityHandler serves posts, their threaded comments and comment upvotes.
type CommunityHandler struct {
	community *services.CommunityService
	logger    *logrus.Logger
}

func NewCommunityHandler(community *services.CommunityService, logger *logrus.Logger) *CommunityHandler {
	return &CommunityHandler{community: community, logger: logger}
}

// ListPosts handles GET /posts?author=&upvoted_by=me&downvoted_by=me&page=&page_size=
func (h *CommunityHandler) ListPosts(c *gin.Context) {
	page, size := pageParams(c)
	query := services.PostQuery{
		AuthorID:      c.Query("author"),
		UpvotedByMe:   c.Query("upvoted_by") == "me",
		DownvotedByMe: c.Query("downvoted_by") == "me",
		Page:          page,
		PageSize:      size,
	}
	posts, total, err := h.community.ListPosts(c.Request.Context(), principal(c), query)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.PagedResponse(c, http.StatusOK, posts, pageMeta(page, size, total))
}

func (h *CommunityHandler) CreatePost(c *gin.Context) {
	var req models.PostRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.community.CreatePost(c.Request.Context(), principal(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Post created", post)
}

func (h *CommunityHandler) GetPost(c *gin.Context) {
	post, err := h.community.GetPost(c.Request.Context(), principal(c), c.Param("slug"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", post)
}

func (h *CommunityHandler) UpdatePost(c *gin.Context) {
	var req models.UpdatePostRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.community.UpdatePost(c.Request.Context(), principal(c), c.Param("slug"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Post updated", post)
}

func (h *CommunityHandler) DeletePost(c *gin.Context) {
	if err := h.community.DeletePost(c.Request.Context(), principal(c), c.Param("slug")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CommunityHandler) UpvotePost(c *gin.Context)   { h.votePost(c, 1) }
func (h *CommunityHandler) DownvotePost(c *gin.Context) { h.votePost(c, -1) }

func (h *CommunityHandler) votePost(c *gin.Context, value int) {
	result, err := h.community.VotePost(c.Request.Context(), principal(c), c.Param("slug"), value)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *CommunityHandler) UnvotePost(c *gin.Context) {
	result, err := h.community.UnvotePost(c.Request.Context(), principal(c), c.Param("slug"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *CommunityHandler) ListComments(c *gin.Context) {
	comments, err := h.community.ListComments(c.Request.Context(), principal(c), c.Param("slug"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", comments)
}

func (h *CommunityHandler) CreateComment(c *gin.Context) {
	var req models.CommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.community.CreateComment(c.Request.Context(), principal(c), c.Param("slug"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Comment created", comment)
}

func (h *CommunityHandler) UpdateComment(c *gin.Context) {
	var req models.UpdateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.community.UpdateComment(c.Request.Context(), principal(c), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Comment updated", comment)
}

func (h *CommunityHandler) DeleteComment(c *gin.Context) {
	if err := h.community.DeleteComment(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpvoteComment answers 201 for a new upvote and 200 when it already existed.
func (h *CommunityHandler) UpvoteComment(c *gin.Context) {
	result, created, err := h.community.UpvoteComment(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	utils.SuccessResponse(c, status, "", result)
}

func (h *CommunityHandler) RemoveCommentUpvote(c *gin.Context) {
	result, err := h.community.RemoveCommentUpvote(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}
