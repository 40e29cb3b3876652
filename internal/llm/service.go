package llm

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Ayash-Bera/campusqa/internal/models"
)

// Service classifies question text into the fixed category labels.
type Service struct {
	client *Client
	logger *logrus.Logger
}

func NewService(client *Client, logger *logrus.Logger) *Service {
	return &Service{
		client: client,
		logger: logger,
	}
}

func (s *Service) Classify(ctx context.Context, text string) (string, float64, error) {
	prompt := BuildClassificationPrompt(text, models.Categories)

	reply, err := s.client.Complete(ctx, prompt, 60)
	if err != nil {
		return "", 0, err
	}

	result, err := ParseClassification(reply, models.Categories, models.CategoryGeneral)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"reply": reply,
		}).WithError(err).Warn("Unparseable classification reply")
		return "", 0, fmt.Errorf("parse classification: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"category":   result.Category,
		"confidence": result.Confidence,
	}).Debug("LLM classification")

	return result.Category, result.Confidence, nil
}

// Ping checks the upstream endpoint.
func (s *Service) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}
