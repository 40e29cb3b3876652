package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Ayash-Bera/campusqa/internal/auth"
	"github.com/Ayash-Bera/campusqa/internal/database"
	"github.com/Ayash-Bera/campusqa/internal/models"
)

// Ordering options accepted by Search.
const (
	OrderByRank      = "-rank"
	OrderByCreatedAt = "-created_at"
	OrderByUpvotes   = "-upvote_count"
)

// SearchTier is the strategy a storage backend supports.
type SearchTier int

const (
	TierNative    SearchTier = iota // weighted tsvector with websearch_to_tsquery
	TierFTS5                        // question_search and post_search virtual tables
	TierSubstring                   // LIKE over title and body text
)

func (t SearchTier) String() string {
	switch t {
	case TierNative:
		return "native"
	case TierFTS5:
		return "fts5"
	default:
		return "substring"
	}
}

const (
	maxQueryLength     = 500
	maxMatchTerms      = 6
	searchPageSize     = 20
	defaultSuggestions = 10
	maxSuggestions     = 20
)

// searchTarget is a searchable table: title weighted A, one text column
// weighted B, mirrored into an FTS5 table keyed by the row id.
type searchTarget struct {
	table    string
	text     string
	ftsTable string
	ftsKey   string
}

var (
	questionSearch = searchTarget{table: "questions", text: "body", ftsTable: "question_search", ftsKey: "question_id"}
	postSearch     = searchTarget{table: "posts", text: "description", ftsTable: "post_search", ftsKey: "post_id"}
)

func (t searchTarget) col(name string) string {
	return t.table + "." + name
}

func (t searchTarget) rank() string {
	vector := "setweight(to_tsvector('english', coalesce(" + t.col("title") + ", '')), 'A') || " +
		"setweight(to_tsvector('english', coalesce(" + t.col(t.text) + ", '')), 'B')"
	return "ts_rank(" + vector + ", websearch_to_tsquery('english', ?))"
}

// Function words and the question-style verbs that rarely appear in stored
// titles ("Does NIAT provide X?" against "Are there X at NIAT?").
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		a an the is are was were be been being
		have has had do does did will would can could
		me my i you we they it its this that
		to into for of in on at by with out from
		how what when where why which who and or but
		get got if so as than then just really
		provide provides provided providing offer offers offered offering
		give gives gave given giving help helps helped helping`) {
		stopwords[w] = struct{}{}
	}
}

var punctPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s]+`)

// BuildFTSQuery turns free text into an FTS5 MATCH expression: every
// substantive token becomes a quoted prefix term and the terms are ANDed.
// It returns "" when the input has no tokens.
func BuildFTSQuery(query string) string {
	q := strings.TrimSpace(query)
	if runes := []rune(q); len(runes) > maxQueryLength {
		q = string(runes[:maxQueryLength])
	}
	q = punctPattern.ReplaceAllString(strings.ToLower(q), " ")

	tokens := strings.Fields(q)
	if len(tokens) == 0 {
		return ""
	}

	terms := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, skip := stopwords[token]; !skip {
			terms = append(terms, token)
		}
	}
	if len(terms) == 0 {
		terms = tokens
	}
	if len(terms) > maxMatchTerms {
		terms = terms[:maxMatchTerms]
	}

	quoted := make([]string, len(terms))
	for i, term := range terms {
		quoted[i] = `"` + strings.ReplaceAll(term, `"`, `""`) + `"*`
	}
	return strings.Join(quoted, " AND ")
}

// NormalizeOrderBy maps unknown orderings to rank.
func NormalizeOrderBy(orderBy string) string {
	switch orderBy {
	case OrderByCreatedAt, OrderByUpvotes:
		return orderBy
	default:
		return OrderByRank
	}
}

type SearchService struct {
	db        *gorm.DB
	driver    string
	questions *QuestionService
	community *CommunityService
	logger    *logrus.Logger

	once sync.Once
	tier SearchTier
}

func NewSearchService(db *gorm.DB, driver string, questions *QuestionService, community *CommunityService, logger *logrus.Logger) *SearchService {
	return &SearchService{
		db:        db,
		driver:    driver,
		questions: questions,
		community: community,
		logger:    logger,
	}
}

// Tier reports the strategy in use. It is probed on first use and fixed
// for the life of the service.
func (s *SearchService) Tier(ctx context.Context) SearchTier {
	s.once.Do(func() {
		s.tier = s.detectTier(ctx)
		s.logger.WithFields(logrus.Fields{
			"driver": s.driver,
			"tier":   s.tier.String(),
		}).Info("Search tier selected")
	})
	return s.tier
}

func (s *SearchService) detectTier(ctx context.Context) SearchTier {
	switch s.driver {
	case database.DriverPostgres:
		return TierNative
	case database.DriverSQLite:
		var count int64
		err := s.db.WithContext(ctx).
			Raw("SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", questionSearch.ftsTable).
			Scan(&count).Error
		if err != nil {
			s.logger.WithError(err).Warn("FTS5 probe failed")
			return TierSubstring
		}
		if count > 0 {
			return TierFTS5
		}
	}
	return TierSubstring
}

// Search returns one page of questions matching query. Blank queries return
// nothing without touching storage.
func (s *SearchService) Search(ctx context.Context, principal *auth.Principal, query, orderBy string, page int) (*models.SearchResponse, error) {
	query = strings.TrimSpace(query)
	orderBy = NormalizeOrderBy(orderBy)
	response := &models.SearchResponse{
		Query:   query,
		OrderBy: orderBy,
		Results: []models.QuestionResponse{},
	}
	if query == "" {
		return response, nil
	}
	if page < 1 {
		page = 1
	}

	var questions []models.Question
	total, err := s.find(ctx, questionSearch, &questions, query, orderBy, searchPageSize, (page-1)*searchPageSize)
	if err != nil {
		return nil, err
	}

	results, err := s.questions.questionResponses(ctx, principal.UserID(), questions)
	if err != nil {
		return nil, err
	}
	response.Results = results
	response.Total = int(total)

	s.logger.WithFields(logrus.Fields{
		"query":    query,
		"order_by": orderBy,
		"results":  len(results),
		"total":    total,
	}).Debug("Search completed")
	return response, nil
}

// SearchPosts returns one page of community posts matching query, with the
// same tiers and orderings as question search.
func (s *SearchService) SearchPosts(ctx context.Context, principal *auth.Principal, query, orderBy string, page int) (*models.PostSearchResponse, error) {
	query = strings.TrimSpace(query)
	orderBy = NormalizeOrderBy(orderBy)
	response := &models.PostSearchResponse{
		Query:   query,
		OrderBy: orderBy,
		Results: []models.PostResponse{},
	}
	if query == "" {
		return response, nil
	}
	if page < 1 {
		page = 1
	}

	var posts []models.Post
	total, err := s.find(ctx, postSearch, &posts, query, orderBy, searchPageSize, (page-1)*searchPageSize)
	if err != nil {
		return nil, err
	}

	results, err := s.community.postResponses(ctx, principal.UserID(), posts)
	if err != nil {
		return nil, err
	}
	response.Results = results
	response.Total = int(total)
	return response, nil
}

// Suggest returns up to limit titles matching query, newest first.
func (s *SearchService) Suggest(ctx context.Context, query string, limit int) ([]models.Suggestion, error) {
	query = strings.TrimSpace(query)
	suggestions := []models.Suggestion{}
	if query == "" {
		return suggestions, nil
	}
	limit = ClampSuggestionLimit(limit)

	var questions []models.Question
	if _, err := s.find(ctx, questionSearch, &questions, query, OrderByCreatedAt, limit, 0); err != nil {
		return nil, err
	}
	for _, q := range questions {
		suggestions = append(suggestions, models.Suggestion{
			ID:       q.ID,
			Slug:     q.Slug,
			Title:    q.Title,
			Category: q.Category,
		})
	}
	return suggestions, nil
}

func ClampSuggestionLimit(limit int) int {
	switch {
	case limit == 0:
		return defaultSuggestions
	case limit < 1:
		return 1
	case limit > maxSuggestions:
		return maxSuggestions
	}
	return limit
}

// find fills dest, a pointer to a slice of the target's model, with one
// page of matches and reports the total.
func (s *SearchService) find(ctx context.Context, t searchTarget, dest interface{}, query, orderBy string, limit, offset int) (int64, error) {
	switch s.Tier(ctx) {
	case TierNative:
		total, err := s.findNative(ctx, t, dest, query, orderBy, limit, offset)
		if err == nil {
			return total, nil
		}
		s.logger.WithError(err).WithFields(logrus.Fields{
			"query": query,
			"table": t.table,
		}).Warn("Full-text search failed, using substring match")
	case TierFTS5:
		total, err := s.findFTS(ctx, t, dest, query, orderBy, limit, offset)
		if err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"query": query,
				"table": t.table,
			}).Warn("FTS5 search failed, using substring match")
		} else if total > 0 {
			return total, nil
		}
	}
	return s.findSubstring(ctx, t, dest, query, orderBy, limit, offset)
}

func (s *SearchService) findNative(ctx context.Context, t searchTarget, dest interface{}, query, orderBy string, limit, offset int) (int64, error) {
	rank := t.rank()
	base := s.db.WithContext(ctx).Table(t.table).
		Where(rank+" > 0", query).
		Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count matches: %w", err)
	}

	find := base.Select(t.table+".*, "+rank+" AS search_rank", query)
	switch orderBy {
	case OrderByCreatedAt:
		find = find.Order(t.col("created_at") + " DESC")
	case OrderByUpvotes:
		find = find.Order(t.col("upvote_count") + " DESC").Order(t.col("created_at") + " DESC")
	default:
		find = find.Order("search_rank DESC").Order(t.col("created_at") + " DESC")
	}

	if err := find.Limit(limit).Offset(offset).Find(dest).Error; err != nil {
		return 0, fmt.Errorf("search %s: %w", t.table, err)
	}
	return total, nil
}

func (s *SearchService) findFTS(ctx context.Context, t searchTarget, dest interface{}, query, orderBy string, limit, offset int) (int64, error) {
	match := BuildFTSQuery(query)
	if match == "" {
		return 0, nil
	}

	base := s.db.WithContext(ctx).Table(t.table).
		Joins("JOIN "+t.ftsTable+" ON "+t.ftsTable+"."+t.ftsKey+" = "+t.col("id")).
		Where(t.ftsTable+" MATCH ?", match).
		Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count matches: %w", err)
	}
	if total == 0 {
		return 0, nil
	}

	find := base.Select(t.table + ".*")
	switch orderBy {
	case OrderByCreatedAt:
		find = find.Order(t.col("created_at") + " DESC")
	case OrderByUpvotes:
		find = find.Order(t.col("upvote_count") + " DESC").Order(t.col("created_at") + " DESC")
	default:
		// key column unweighted, then title and text at tsvector's A and B weights
		find = find.Order("bm25(" + t.ftsTable + ", 0.0, 1.0, 0.4)").Order(t.col("created_at") + " DESC")
	}

	if err := find.Limit(limit).Offset(offset).Find(dest).Error; err != nil {
		return 0, fmt.Errorf("search %s: %w", t.table, err)
	}
	return total, nil
}

func (s *SearchService) findSubstring(ctx context.Context, t searchTarget, dest interface{}, query, orderBy string, limit, offset int) (int64, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	base := s.db.WithContext(ctx).Table(t.table).
		Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(`+t.text+`) LIKE ? ESCAPE '\'`, pattern, pattern).
		Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count matches: %w", err)
	}

	find := base
	if orderBy == OrderByUpvotes {
		find = find.Order("upvote_count DESC")
	}

	err := find.Order("created_at DESC").Limit(limit).Offset(offset).Find(dest).Error
	if err != nil {
		return 0, fmt.Errorf("search %s: %w", t.table, err)
	}
	return total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
