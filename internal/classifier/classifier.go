// Package classifier assigns one of the fixed question categories to free
// text. Results come from the cache, then the remote model, then keyword
// scoring, and are memoized for a week.
package classifier

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/Ayash-Bera/campusqa/internal/models"
	"github.com/Ayash-Bera/campusqa/pkg/utils"
)

const (
	DefaultTTL           = 7 * 24 * time.Hour
	DefaultMinConfidence = 0.35
)

// Result is a classification outcome.
type Result struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

// Remote is an upstream model that picks a category with a confidence.
type Remote interface {
	Classify(ctx context.Context, text string) (string, float64, error)
}

// Cache memoizes results by normalized-text hash.
type Cache interface {
	Get(ctx context.Context, hash string) (Result, bool, error)
	Set(ctx context.Context, hash string, result Result, expiration time.Duration) error
}

type Options struct {
	TTL           time.Duration
	MinConfidence float64
}

type Classifier struct {
	remote        Remote
	cache         Cache
	ttl           time.Duration
	minConfidence float64
	flight        singleflight.Group
	logger        *logrus.Logger
}

// New builds a classifier. A nil remote means keyword scoring only; a nil
// cache gets an in-process one.
func New(remote Remote, cache Cache, opts Options, logger *logrus.Logger) *Classifier {
	if cache == nil {
		cache = NewMemoryCache()
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MinConfidence <= 0 {
		opts.MinConfidence = DefaultMinConfidence
	}
	return &Classifier{
		remote:        remote,
		cache:         cache,
		ttl:           opts.TTL,
		minConfidence: opts.MinConfidence,
		logger:        logger,
	}
}

// Classify never fails: upstream problems degrade to keyword scoring.
func (c *Classifier) Classify(ctx context.Context, text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Category: models.CategoryGeneral, Confidence: 0, Source: models.SourceKeyword}
	}

	hash := utils.NormalizedHash(text)
	if result, ok := c.lookup(ctx, hash); ok {
		return result
	}

	value, _, _ := c.flight.Do(hash, func() (interface{}, error) {
		if result, ok := c.lookup(ctx, hash); ok {
			return result, nil
		}
		result := c.compute(ctx, text)
		if err := c.cache.Set(ctx, hash, result, c.ttl); err != nil {
			c.logger.WithError(err).Warn("Failed to cache classification")
		}
		return result, nil
	})
	return value.(Result)
}

// Reclassify skips the cache read but refreshes the cached value.
func (c *Classifier) Reclassify(ctx context.Context, text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Category: models.CategoryGeneral, Confidence: 0, Source: models.SourceKeyword}
	}
	result := c.compute(ctx, text)
	if err := c.cache.Set(ctx, utils.NormalizedHash(text), result, c.ttl); err != nil {
		c.logger.WithError(err).Warn("Failed to cache classification")
	}
	return result
}

// RemoteEnabled reports whether an upstream model is configured.
func (c *Classifier) RemoteEnabled() bool {
	return c.remote != nil
}

func (c *Classifier) lookup(ctx context.Context, hash string) (Result, bool) {
	result, ok, err := c.cache.Get(ctx, hash)
	if err != nil {
		c.logger.WithError(err).Warn("Classification cache lookup failed")
		return Result{}, false
	}
	if ok {
		c.logger.WithFields(logrus.Fields{
			"category": result.Category,
			"source":   result.Source,
		}).Debug("Classification cache hit")
	}
	return result, ok
}

func (c *Classifier) compute(ctx context.Context, text string) Result {
	category, confidence := models.CategoryGeneral, 0.0
	if c.remote != nil {
		var err error
		category, confidence, err = c.remote.Classify(ctx, text)
		if err != nil {
			c.logger.WithError(err).Warn("Remote classification failed, using keywords")
			category, confidence = models.CategoryGeneral, 0.0
		}
		if !models.IsCategory(category) {
			category = models.CategoryGeneral
		}
	}

	if confidence >= c.minConfidence {
		return Result{Category: category, Confidence: clampConfidence(confidence), Source: models.SourceLLM}
	}

	keyword := ClassifyKeywords(text)
	c.logger.WithFields(logrus.Fields{
		"category":          keyword,
		"remote_confidence": confidence,
	}).Debug("Keyword classification")
	return Result{Category: keyword, Confidence: 0, Source: models.SourceKeyword}
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
