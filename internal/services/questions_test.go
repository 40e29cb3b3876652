package services

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ayash-Bera/campusqa/internal/models"
)

func TestCreateQuestion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	question := env.ask(t, student, "  How are placements at NIAT?  ", "Which companies visit?")
	assert.NotEmpty(t, question.ID)
	assert.Equal(t, "How are placements at NIAT?", question.Title)
	assert.Equal(t, "how-are-placements-at-niat", question.Slug)
	assert.Equal(t, models.CategoryPlacements, question.Category)
	assert.Equal(t, models.SourceKeyword, question.CategorySource)
	assert.False(t, question.IsAnswered)

	t.Run("anonymous", func(t *testing.T) {
		_, err := env.questions.Create(ctx, anonymous, models.CreateQuestionRequest{Title: "Hi"})
		requireCode(t, err, http.StatusUnauthorized, CodeUnauthorized)
	})

	t.Run("seniors cannot ask", func(t *testing.T) {
		_, err := env.questions.Create(ctx, senior, models.CreateQuestionRequest{Title: "Hi"})
		domainErr := requireCode(t, err, http.StatusForbidden, CodeForbidden)
		assert.Equal(t, msgSeniorsCannotAsk, domainErr.Message)
	})

	t.Run("blank title", func(t *testing.T) {
		_, err := env.questions.Create(ctx, student, models.CreateQuestionRequest{Title: "   "})
		requireCode(t, err, http.StatusBadRequest, CodeValidation)
	})

	t.Run("title too long", func(t *testing.T) {
		_, err := env.questions.Create(ctx, student, models.CreateQuestionRequest{Title: strings.Repeat("a", maxTitleLength+1)})
		requireCode(t, err, http.StatusBadRequest, CodeValidation)
	})
}

func TestSlugCollision(t *testing.T) {
	env := newTestEnv(t)

	first := env.ask(t, student, "Is there a gym on campus?", "")
	second := env.ask(t, student2, "Is there a gym on campus?", "")
	third := env.ask(t, student3, "Is there a gym on campus?", "")

	assert.Equal(t, "is-there-a-gym-on-campus", first.Slug)
	assert.NotEqual(t, first.Slug, second.Slug)
	assert.NotEqual(t, second.Slug, third.Slug)
	assert.True(t, strings.HasPrefix(second.Slug, first.Slug+"-"))
	assert.True(t, strings.HasPrefix(third.Slug, first.Slug+"-"))
	assert.Len(t, second.Slug, len(first.Slug)+9)
}

func TestGetQuestionCountsViews(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	question := env.ask(t, student, "Hostel room sharing", "How many per room?")

	detail, err := env.questions.Get(ctx, anonymous, question.Slug)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.ViewCount)
	assert.Nil(t, detail.UserVote)
	assert.Empty(t, detail.Answers)

	_, err = env.questions.Get(ctx, student2, question.Slug)
	require.NoError(t, err)
	assert.Equal(t, 2, env.reloadQuestion(t, question.ID).ViewCount)

	_, _, err = env.questions.List(ctx, anonymous, models.QuestionFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, env.reloadQuestion(t, question.ID).ViewCount)

	_, err = env.questions.Get(ctx, anonymous, "missing")
	requireCode(t, err, http.StatusNotFound, CodeNotFound)
}

func TestListQuestionFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	answered := env.ask(t, student, "Mess food quality", "")
	env.ask(t, student, "Library timings", "")
	env.ask(t, student2, "Exam pattern for NAT", "")
	env.answer(t, senior, answered.Slug, "Food is decent.")

	items, total, err := env.questions.List(ctx, anonymous, models.QuestionFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, items, 3)

	yes := true
	items, total, err = env.questions.List(ctx, anonymous, models.QuestionFilter{Answered: &yes})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, answered.ID, items[0].ID)

	_, total, err = env.questions.List(ctx, anonymous, models.QuestionFilter{AuthorID: student.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	items, total, err = env.questions.List(ctx, anonymous, models.QuestionFilter{AnswerAuthorID: senior.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, answered.ID, items[0].ID)

	items, total, err = env.questions.List(ctx, anonymous, models.QuestionFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, items, 1)
}

func TestEditLock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	question := env.ask(t, student, "Original title", "Original body")

	newTitle := "Edited title"
	updated, err := env.questions.Update(ctx, student, question.Slug, models.UpdateQuestionRequest{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, newTitle, updated.Title)
	assert.Equal(t, question.Slug, updated.Slug)

	_, err = env.questions.Update(ctx, student2, question.Slug, models.UpdateQuestionRequest{Title: &newTitle})
	domainErr := requireCode(t, err, http.StatusForbidden, CodeForbidden)
	assert.Equal(t, msgNoPermission, domainErr.Message)

	env.answer(t, senior, question.Slug, "An answer")

	_, err = env.questions.Update(ctx, student, question.Slug, models.UpdateQuestionRequest{Title: &newTitle})
	domainErr = requireCode(t, err, http.StatusForbidden, CodeForbidden)
	assert.Equal(t, msgQuestionLocked, domainErr.Message)

	err = env.questions.Delete(ctx, student, question.Slug)
	domainErr = requireCode(t, err, http.StatusForbidden, CodeForbidden)
	assert.Equal(t, "Cannot edit or delete this question after a senior has answered.", domainErr.Message)
}

func TestDeleteUnansweredQuestion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	question := env.ask(t, student, "Delete me", "")

	_, err := env.questions.Vote(ctx, student2, question.Slug, 1)
	require.NoError(t, err)

	require.NoError(t, env.questions.Delete(ctx, student, question.Slug))

	_, err = env.questions.Get(ctx, anonymous, question.Slug)
	requireCode(t, err, http.StatusNotFound, CodeNotFound)

	var votes int64
	require.NoError(t, env.db.DB.Model(&models.QuestionVote{}).Count(&votes).Error)
	assert.Zero(t, votes)
}

func TestQuestionVoteFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	question := env.ask(t, student, "Are laptops provided?", "")

	res, err := env.questions.Vote(ctx, student2, question.Slug, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.UpvoteCount)
	assert.Equal(t, 0, res.DownvoteCount)
	assert.Equal(t, intPtr(1), res.UserVote)

	// switching direction updates the same row
	res, err = env.questions.Vote(ctx, student2, question.Slug, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, res.UpvoteCount)
	assert.Equal(t, 1, res.DownvoteCount)
	assert.Equal(t, intPtr(-1), res.UserVote)

	res, err = env.questions.Unvote(ctx, student2, question.Slug)
	require.NoError(t, err)
	assert.Equal(t, 0, res.UpvoteCount)
	assert.Equal(t, 0, res.DownvoteCount)
	assert.Nil(t, res.UserVote)

	reloaded := env.reloadQuestion(t, question.ID)
	assert.Equal(t, 0, reloaded.UpvoteCount)
	assert.Equal(t, 0, reloaded.DownvoteCount)

	// only the first vote created a row, so only one notification
	items, total, err := env.notifications.List(ctx, student, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, VerbUpvotedQuestion, items[0].Verb)
	assert.Equal(t, string(TargetQuestion), items[0].TargetKind)

	_, err = env.questions.Vote(ctx, anonymous, question.Slug, 1)
	requireCode(t, err, http.StatusUnauthorized, CodeUnauthorized)
	_, err = env.questions.Unvote(ctx, anonymous, question.Slug)
	requireCode(t, err, http.StatusUnauthorized, CodeUnauthorized)
}

func TestQuestionCounterIntegrity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	question := env.ask(t, student, "Is attendance mandatory?", "")

	for _, voter := range []struct {
		id    string
		value int
	}{
		{"u1", 1}, {"u2", 1}, {"u3", -1}, {"u4", 1}, {"u2", -1}, {"u5", -1},
	} {
		principal := *student2
		principal.ID = voter.id
		_, err := env.questions.Vote(ctx, &principal, question.Slug, voter.value)
		require.NoError(t, err)
	}

	var up, down int64
	require.NoError(t, env.db.DB.Model(&models.QuestionVote{}).Where("question_id = ? AND value = 1", question.ID).Count(&up).Error)
	require.NoError(t, env.db.DB.Model(&models.QuestionVote{}).Where("question_id = ? AND value = -1", question.ID).Count(&down).Error)

	reloaded := env.reloadQuestion(t, question.ID)
	assert.Equal(t, int(up), reloaded.UpvoteCount)
	assert.Equal(t, int(down), reloaded.DownvoteCount)
	assert.Equal(t, 2, reloaded.UpvoteCount)
	assert.Equal(t, 3, reloaded.DownvoteCount)
}

func TestUserVoteOnDetail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	question := env.ask(t, student, "Scholarship renewal", "")
	answer := env.answer(t, senior, question.Slug, "Maintain 7.5 CGPA.")

	_, err := env.questions.Vote(ctx, student2, question.Slug, 1)
	require.NoError(t, err)
	_, err = env.answers.Vote(ctx, student2, question.Slug, answer.ID, -1)
	require.NoError(t, err)

	detail, err := env.questions.Get(ctx, student2, question.Slug)
	require.NoError(t, err)
	assert.Equal(t, intPtr(1), detail.UserVote)
	require.Len(t, detail.Answers, 1)
	assert.Equal(t, intPtr(-1), detail.Answers[0].UserVote)
	assert.Equal(t, 1, detail.Answers[0].DownvoteCount)

	detail, err = env.questions.Get(ctx, anonymous, question.Slug)
	require.NoError(t, err)
	assert.Nil(t, detail.UserVote)
	assert.Nil(t, detail.Answers[0].UserVote)
}

func TestFAQs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	first := env.ask(t, student, "What is NIAT?", "")
	second := env.ask(t, student, "Is the degree valid?", "")
	env.ask(t, student, "Not an FAQ", "")

	yes := true
	_, err := env.questions.SetFAQ(ctx, student, first.Slug, models.FAQRequest{IsFAQ: &yes, FAQOrder: 1})
	requireCode(t, err, http.StatusForbidden, CodeForbidden)

	_, err = env.questions.SetFAQ(ctx, staff, first.Slug, models.FAQRequest{IsFAQ: &yes, FAQOrder: 2})
	require.NoError(t, err)
	updated, err := env.questions.SetFAQ(ctx, staff, second.Slug, models.FAQRequest{IsFAQ: &yes, FAQOrder: 1})
	require.NoError(t, err)
	assert.True(t, updated.IsFAQ)

	faqs, err := env.questions.FAQs(ctx)
	require.NoError(t, err)
	require.Len(t, faqs, 2)
	assert.Equal(t, second.ID, faqs[0].ID)
	assert.Equal(t, first.ID, faqs[1].ID)
}

func TestCategories(t *testing.T) {
	env := newTestEnv(t)
	categories := env.questions.Categories()
	assert.Len(t, categories, 9)
	assert.Equal(t, models.CategoryGeneral, categories[8])

	categories[0] = "mutated"
	assert.Equal(t, models.CategoryScholarships, env.questions.Categories()[0])
}

func TestRouteSegmentsAreNeverSlugs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, title := range []string{"Search", "Categories"} {
		question := env.ask(t, student, title, "")
		base := strings.ToLower(title)
		assert.NotEqual(t, base, question.Slug)
		assert.True(t, strings.HasPrefix(question.Slug, base+"-"), question.Slug)

		detail, err := env.questions.Get(ctx, anonymous, question.Slug)
		require.NoError(t, err)
		assert.Equal(t, question.ID, detail.ID)
	}

	post, err := env.community.CreatePost(ctx, student, models.PostRequest{Title: "Search"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(post.Slug, "search-"), post.Slug)
}

func TestTitleLengthCountsCharacters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	hindi := strings.Repeat("क", 180)
	question, err := env.questions.Create(ctx, student, models.CreateQuestionRequest{Title: hindi})
	require.NoError(t, err)
	assert.Equal(t, hindi, question.Title)

	_, err = env.questions.Create(ctx, student, models.CreateQuestionRequest{Title: strings.Repeat("क", maxTitleLength+1)})
	requireCode(t, err, http.StatusBadRequest, CodeValidation)

	_, err = env.community.CreatePost(ctx, student, models.PostRequest{Title: hindi})
	require.NoError(t, err)
}

func TestEditLockFollowsAnswerRows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	question := env.ask(t, student, "Is attendance mandatory?", "")

	// an answer row whose answered flag was never synced
	require.NoError(t, env.repos.Answer.Create(ctx, &models.Answer{
		QuestionID: question.ID,
		AuthorID:   senior.ID,
		Body:       "Yes, 75%.",
	}))
	require.False(t, env.reloadQuestion(t, question.ID).IsAnswered)

	title := "Is attendance mandatory in first year?"
	_, err := env.questions.Update(ctx, student, question.Slug, models.UpdateQuestionRequest{Title: &title})
	domainErr := requireCode(t, err, http.StatusForbidden, CodeForbidden)
	assert.Equal(t, msgQuestionLocked, domainErr.Message)

	err = env.questions.Delete(ctx, student, question.Slug)
	requireCode(t, err, http.StatusForbidden, CodeForbidden)
}
