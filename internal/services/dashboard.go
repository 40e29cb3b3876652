package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Ayash-Bera/campusqa/internal/auth"
	"github.com/Ayash-Bera/campusqa/internal/models"
	"github.com/Ayash-Bera/campusqa/internal/repository"
)

const dashboardListSize = 10

type DashboardService struct {
	repos  *repository.RepositoryManager
	logger *logrus.Logger
}

func NewDashboardService(repos *repository.RepositoryManager, logger *logrus.Logger) *DashboardService {
	return &DashboardService{repos: repos, logger: logger}
}

// Senior summarizes a verified senior's activity and what is waiting for them.
func (s *DashboardService) Senior(ctx context.Context, principal *auth.Principal) (*models.SeniorDashboard, error) {
	if principal == nil {
		return nil, Unauthorized()
	}
	if !principal.IsSenior {
		return nil, Forbidden("Only verified seniors can view this dashboard.")
	}

	dashboard := &models.SeniorDashboard{}
	var err error

	if dashboard.TotalAnswers, err = s.repos.Answer.CountByAuthor(ctx, principal.ID); err != nil {
		return nil, fmt.Errorf("count answers: %w", err)
	}
	if dashboard.TotalUpvotes, err = s.repos.Answer.SumUpvotesByAuthor(ctx, principal.ID); err != nil {
		return nil, fmt.Errorf("sum upvotes: %w", err)
	}
	if dashboard.UnansweredQuestions, err = s.repos.Question.ListUnanswered(ctx, dashboardListSize); err != nil {
		return nil, fmt.Errorf("list unanswered: %w", err)
	}
	if dashboard.UnansweredQuestions == nil {
		dashboard.UnansweredQuestions = []models.Question{}
	}

	questionIDs, err := s.repos.Answer.QuestionIDsByAuthor(ctx, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("list answered questions: %w", err)
	}
	if dashboard.RecentFollowUps, err = s.repos.FollowUp.RecentOnQuestions(ctx, questionIDs, dashboardListSize); err != nil {
		return nil, fmt.Errorf("list follow-ups: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":       principal.ID,
		"total_answers": dashboard.TotalAnswers,
	}).Debug("Senior dashboard built")
	return dashboard, nil
}
