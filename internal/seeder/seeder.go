// Package seeder loads curated FAQ content and runs maintenance passes over
// stored questions.
package seeder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/Ayash-Bera/campusqa/internal/auth"
	"github.com/Ayash-Bera/campusqa/internal/classifier"
	"github.com/Ayash-Bera/campusqa/internal/models"
	"github.com/Ayash-Bera/campusqa/internal/repository"
	"github.com/Ayash-Bera/campusqa/internal/services"
	"github.com/Ayash-Bera/campusqa/pkg/utils"
)

const DefaultAuthor = "campusqa-staff"

// FAQEntry is one curated question in a seed file.
type FAQEntry struct {
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
	Order int    `yaml:"order"`
}

// FAQFile is the YAML seed format:
//
//	author: campusqa-staff
//	faqs:
//	  - title: What is the hostel fee?
//	    body: ...
//	    order: 1
type FAQFile struct {
	Author string     `yaml:"author"`
	FAQs   []FAQEntry `yaml:"faqs"`
}

func ParseFAQs(data []byte) (*FAQFile, error) {
	var file FAQFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse faq file: %w", err)
	}
	if file.Author == "" {
		file.Author = DefaultAuthor
	}
	return &file, nil
}

func LoadFAQFile(path string) (*FAQFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read faq file: %w", err)
	}
	return ParseFAQs(data)
}

// Reclassifier classifies text without consulting the cache.
type Reclassifier interface {
	Reclassify(ctx context.Context, text string) classifier.Result
}

// Stats summarizes one seeding or maintenance pass.
type Stats struct {
	Scanned int
	Created int
	Updated int
	Skipped int
}

type Seeder struct {
	repos         *repository.RepositoryManager
	questions     *services.QuestionService
	classifier    Reclassifier
	notifications *services.NotificationService
	processor     *ContentProcessor
	logger        *logrus.Logger
	dryRun        bool
}

func New(
	repos *repository.RepositoryManager,
	questions *services.QuestionService,
	reclassifier Reclassifier,
	notifications *services.NotificationService,
	logger *logrus.Logger,
	dryRun bool,
) *Seeder {
	return &Seeder{
		repos:         repos,
		questions:     questions,
		classifier:    reclassifier,
		notifications: notifications,
		processor:     NewContentProcessor(),
		logger:        logger,
		dryRun:        dryRun,
	}
}

// SeedFAQs creates the file's questions as FAQs. Questions are matched by
// title, so running the same file again only fixes up FAQ flags and order.
func (s *Seeder) SeedFAQs(ctx context.Context, file *FAQFile) (Stats, error) {
	var stats Stats
	seen := make(map[string]bool)
	author := &auth.Principal{ID: file.Author}

	for i, entry := range file.FAQs {
		stats.Scanned++
		title := s.processor.CleanTitle(entry.Title)
		body := s.processor.CleanContent(entry.Body)
		order := entry.Order
		if order == 0 {
			order = i + 1
		}

		key := utils.NormalizedHash(title)
		if title == "" || seen[key] {
			s.logger.WithField("index", i).Warn("Skipping blank or repeated FAQ entry")
			stats.Skipped++
			continue
		}
		seen[key] = true

		entryLog := s.logger.WithFields(logrus.Fields{
			"title": title,
			"order": order,
			"words": s.processor.CountWords(body),
		})

		existing, err := s.repos.Question.GetByTitle(ctx, title)
		switch {
		case err == nil:
			if existing.IsFAQ && existing.FAQOrder == order {
				stats.Skipped++
				continue
			}
			if !s.dryRun {
				if err := s.repos.Question.Update(ctx, existing.ID, map[string]interface{}{
					"is_faq":    true,
					"faq_order": order,
				}); err != nil {
					return stats, fmt.Errorf("update faq %q: %w", title, err)
				}
			}
			stats.Updated++
			entryLog.Info("FAQ updated")

		case errors.Is(err, gorm.ErrRecordNotFound):
			if !s.dryRun {
				question, err := s.questions.Create(ctx, author, models.CreateQuestionRequest{Title: title, Body: body})
				if err != nil {
					return stats, fmt.Errorf("create faq %q: %w", title, err)
				}
				if err := s.repos.Question.Update(ctx, question.ID, map[string]interface{}{
					"is_faq":    true,
					"faq_order": order,
				}); err != nil {
					return stats, fmt.Errorf("mark faq %q: %w", title, err)
				}
			}
			stats.Created++
			entryLog.Info("FAQ created")

		default:
			return stats, fmt.Errorf("look up faq %q: %w", title, err)
		}
	}

	return stats, nil
}

// Reclassify runs every stored question (or only keyword-sourced ones)
// through the classifier again, bypassing the cache. Updated counts the
// questions whose category or source changed.
func (s *Seeder) Reclassify(ctx context.Context, onlyKeyword bool) (Stats, error) {
	var stats Stats

	questions, err := s.repos.Question.ListForReclassify(ctx, onlyKeyword)
	if err != nil {
		return stats, fmt.Errorf("list questions: %w", err)
	}

	for _, q := range questions {
		stats.Scanned++
		result := s.classifier.Reclassify(ctx, services.ClassificationText(q.Title, q.Body))
		if result.Category == q.Category && result.Source == q.CategorySource {
			stats.Skipped++
			continue
		}

		s.logger.WithFields(logrus.Fields{
			"question_id": q.ID,
			"from":        q.Category,
			"to":          result.Category,
			"source":      result.Source,
		}).Info("Reclassified question")

		if !s.dryRun {
			if err := s.repos.Question.UpdateClassification(ctx, q.ID, result.Category, result.Confidence, result.Source); err != nil {
				return stats, fmt.Errorf("update classification %s: %w", q.ID, err)
			}
		}
		stats.Updated++
	}

	return stats, nil
}

// PruneNotifications deletes notifications older than retention. A dry run
// deletes nothing.
func (s *Seeder) PruneNotifications(ctx context.Context, retention time.Duration) (int64, error) {
	if s.dryRun {
		s.logger.WithField("older_than", retention.String()).Info("Dry run, not pruning notifications")
		return 0, nil
	}
	return s.notifications.Prune(ctx, retention)
}
