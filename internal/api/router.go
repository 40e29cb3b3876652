package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Ayash-Bera/campusqa/internal/api/handlers"
	"github.com/Ayash-Bera/campusqa/internal/health"
	"github.com/Ayash-Bera/campusqa/internal/middleware"
	"github.com/Ayash-Bera/campusqa/internal/services"
	"github.com/Ayash-Bera/campusqa/pkg/utils"
)

type RouterConfig struct {
	Questions     *services.QuestionService
	Answers       *services.AnswerService
	FollowUps     *services.FollowUpService
	Search        *services.SearchService
	Community     *services.CommunityService
	Notifications *services.NotificationService
	Dashboard     *services.DashboardService
	Health        *health.HealthChecker

	Verifier       middleware.TokenVerifier
	RateLimiter    *middleware.RateLimiter
	AllowedOrigins []string
	DemoMode       bool
	Logger         *logrus.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(cfg.Logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.AllowedOrigins),
		middleware.Authenticate(cfg.Verifier, cfg.DemoMode, cfg.Logger),
	)
	router.NoRoute(func(c *gin.Context) {
		utils.CodedErrorResponse(c, http.StatusNotFound, services.CodeNotFound, "Not found.")
	})

	// rate limiting applies to writes only
	var write gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if cfg.RateLimiter != nil {
		write = cfg.RateLimiter.RateLimit()
	}

	questions := handlers.NewQuestionHandler(cfg.Questions, cfg.Logger)
	answers := handlers.NewAnswerHandler(cfg.Answers, cfg.Logger)
	followUps := handlers.NewFollowUpHandler(cfg.FollowUps, cfg.Logger)
	search := handlers.NewSearchHandler(cfg.Search, cfg.Logger)
	community := handlers.NewCommunityHandler(cfg.Community, cfg.Logger)
	notifications := handlers.NewNotificationHandler(cfg.Notifications, cfg.Logger)
	dashboard := handlers.NewDashboardHandler(cfg.Dashboard, cfg.Logger)

	if cfg.Health != nil {
		router.GET("/health", handlers.NewHealthHandler(cfg.Health).Health)
	}

	api := router.Group("/api")

	api.GET("/faqs", questions.FAQs)
	api.GET("/dashboard/senior", dashboard.Senior)

	q := api.Group("/questions")
	{
		q.GET("", questions.List)
		q.POST("", write, questions.Create)
		q.GET("/categories", questions.Categories)
		q.GET("/search", search.HandleSearch)
		q.GET("/search/suggestions", search.HandleSuggestions)

		q.GET("/:slug", questions.Get)
		q.PATCH("/:slug", write, questions.Update)
		q.DELETE("/:slug", write, questions.Delete)
		q.PUT("/:slug/faq", write, questions.SetFAQ)
		q.POST("/:slug/upvote", write, questions.Upvote)
		q.DELETE("/:slug/upvote", write, questions.Unvote)
		q.POST("/:slug/downvote", write, questions.Downvote)
		q.DELETE("/:slug/downvote", write, questions.Unvote)

		q.GET("/:slug/answers", answers.List)
		q.POST("/:slug/answers", write, answers.Create)
		q.GET("/:slug/answers/:id", answers.Get)
		q.PATCH("/:slug/answers/:id", write, answers.Update)
		q.DELETE("/:slug/answers/:id", write, answers.Delete)
		q.POST("/:slug/answers/:id/upvote", write, answers.Upvote)
		q.DELETE("/:slug/answers/:id/upvote", write, answers.Unvote)
		q.POST("/:slug/answers/:id/downvote", write, answers.Downvote)
		q.DELETE("/:slug/answers/:id/downvote", write, answers.Unvote)

		q.GET("/:slug/followups", followUps.List)
		q.POST("/:slug/followups", write, followUps.Create)
		q.GET("/:slug/followups/:id", followUps.Get)
		q.PATCH("/:slug/followups/:id", write, followUps.Update)
		q.DELETE("/:slug/followups/:id", write, followUps.Delete)
	}

	p := api.Group("/posts")
	{
		p.GET("", community.ListPosts)
		p.POST("", write, community.CreatePost)
		p.GET("/search", search.HandlePostSearch)
		p.GET("/:slug", community.GetPost)
		p.PATCH("/:slug", write, community.UpdatePost)
		p.DELETE("/:slug", write, community.DeletePost)
		p.POST("/:slug/upvote", write, community.UpvotePost)
		p.DELETE("/:slug/upvote", write, community.UnvotePost)
		p.POST("/:slug/downvote", write, community.DownvotePost)
		p.DELETE("/:slug/downvote", write, community.UnvotePost)
		p.GET("/:slug/comments", community.ListComments)
		p.POST("/:slug/comments", write, community.CreateComment)
	}

	api.PATCH("/comments/:id", write, community.UpdateComment)
	api.DELETE("/comments/:id", write, community.DeleteComment)
	api.POST("/comments/:id/upvote", write, community.UpvoteComment)
	api.DELETE("/comments/:id/upvote", write, community.RemoveCommentUpvote)

	n := api.Group("/notifications")
	{
		n.GET("", notifications.List)
		n.GET("/unread-count", notifications.UnreadCount)
		n.POST("/read-all", write, notifications.MarkAllRead)
		n.POST("/:id/read", write, notifications.MarkRead)
	}

	return router
}
