package service_test

import (
	"context"
	"testing"

	"anoa.com/careerhub/internal/entity"
	pointsRepo "anoa.com/careerhub/internal/modules/points/repository"
	pointsService "anoa.com/careerhub/internal/modules/points/service"
	questionDto "anoa.com/careerhub/internal/modules/question/dto"
	questionRepo "anoa.com/careerhub/internal/modules/question/repository"
	questionService "anoa.com/careerhub/internal/modules/question/service"
	userRepo "anoa.com/careerhub/internal/modules/user/repository"
	voteRepo "anoa.com/careerhub/internal/modules/vote/repository"
	"anoa.com/careerhub/internal/scoring"
	"anoa.com/careerhub/internal/testutil"
	"anoa.com/careerhub/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (questionService.QuestionService, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	rules := scoring.DefaultRules()
	points := pointsService.NewPointsService(pointsRepo.NewPointsRepository(db), nil, rules)
	svc := questionService.NewQuestionService(questionRepo.NewQuestionRepository(db), userRepo.NewUserRepository(db), points, rules)
	return svc, db
}

func userPoints(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()
	var u entity.User
	require.NoError(t, db.First(&u, "id = ?", id).Error)
	return u.Points
}

func TestCreateQuestion_PublishedAwardsPoints(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, db, "Sinta", 0)

	q, err := svc.CreateQuestion(ctx, questionDto.CreateQuestionRequest{
		AuthorID:   author.ID,
		Title:      "<b>Index</b> vs scan?",
		Content:    "When does postgres pick a seq scan?",
		Tags:       []string{"SQL", "postgres", "sql", " "},
		Difficulty: entity.DifficultyMid,
		Status:     entity.QuestionStatusPublished,
	})
	require.NoError(t, err)

	assert.Equal(t, "Index vs scan?", q.Title)
	assert.Equal(t, []string{"sql", "postgres"}, q.Tags)
	assert.Equal(t, 5, userPoints(t, db, author.ID))

	got, err := svc.GetQuestion(ctx, q.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"sql", "postgres"}, got.Tags)
	assert.Equal(t, entity.QuestionStatusPublished, got.Status)
}

func TestCreateQuestion_DraftThenPublishOnce(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, db, "Sinta", 0)

	q, err := svc.CreateQuestion(ctx, questionDto.CreateQuestionRequest{
		AuthorID:   author.ID,
		Title:      "Goroutine leaks",
		Content:    "How do I find them?",
		Tags:       []string{"go"},
		Difficulty: entity.DifficultySenior,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.QuestionStatusDraft, q.Status)
	assert.Zero(t, userPoints(t, db, author.ID))

	published, err := svc.PublishQuestion(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.QuestionStatusPublished, published.Status)
	assert.Equal(t, 5, userPoints(t, db, author.ID))

	_, err = svc.PublishQuestion(ctx, q.ID)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, 5, userPoints(t, db, author.ID))
}

func TestPublishQuestion_IncompleteDraft(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, db, "Sinta", 0)

	q, err := svc.CreateQuestion(ctx, questionDto.CreateQuestionRequest{AuthorID: author.ID, Title: "Half written"})
	require.NoError(t, err)

	_, err = svc.PublishQuestion(ctx, q.ID)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	assert.Zero(t, userPoints(t, db, author.ID))

	_, err = svc.PublishQuestion(ctx, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCreateQuestion_Validation(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, db, "Sinta", 0)

	_, err := svc.CreateQuestion(ctx, questionDto.CreateQuestionRequest{
		AuthorID:   author.ID,
		Title:      "t",
		Content:    "c",
		Tags:       []string{"go"},
		Difficulty: "Principal",
		Status:     entity.QuestionStatusPublished,
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = svc.CreateQuestion(ctx, questionDto.CreateQuestionRequest{
		AuthorID: author.ID,
		Title:    "t",
		Content:  "c",
		Status:   entity.QuestionStatusPublished,
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = svc.CreateQuestion(ctx, questionDto.CreateQuestionRequest{AuthorID: author.ID, Title: "t", Status: "archived"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = svc.CreateQuestion(ctx, questionDto.CreateQuestionRequest{AuthorID: uuid.New(), Title: "t"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&entity.Question{}).Count(&count).Error)
	assert.Zero(t, count)
}

func strPtr(s string) *string { return &s }

func tagRows(t *testing.T, db *gorm.DB, questionID uuid.UUID) []string {
	t.Helper()
	var tags []string
	require.NoError(t, db.Model(&entity.QuestionTag{}).
		Where("question_id = ?", questionID).
		Order("tag").
		Pluck("tag", &tags).Error)
	return tags
}

func TestUpdateQuestion(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, db, "Sinta", 0)
	q := testutil.CreateQuestion(t, db, author.ID, entity.DifficultyJunior, "go", "sql")

	got, err := svc.UpdateQuestion(ctx, q.ID, questionDto.UpdateQuestionRequest{
		AuthorID:   author.ID,
		Title:      strPtr("  <i>Channels</i> or mutexes "),
		Tags:       []string{"Go", "concurrency"},
		Difficulty: strPtr(entity.DifficultySenior),
	})
	require.NoError(t, err)
	assert.Equal(t, "Channels or mutexes", got.Title)
	assert.Equal(t, entity.DifficultySenior, got.Difficulty)
	assert.Equal(t, []string{"concurrency", "go"}, tagRows(t, db, q.ID))

	stored, err := svc.GetQuestion(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "Channels or mutexes", stored.Title)
	assert.Equal(t, q.Content, stored.Content)
	assert.Equal(t, entity.DifficultySenior, stored.Difficulty)
	assert.Equal(t, entity.QuestionStatusPublished, stored.Status)

	// nil tags keep the current set
	_, err = svc.UpdateQuestion(ctx, q.ID, questionDto.UpdateQuestionRequest{AuthorID: author.ID, Content: strPtr("more detail")})
	require.NoError(t, err)
	assert.Equal(t, []string{"concurrency", "go"}, tagRows(t, db, q.ID))
}

func TestUpdateQuestion_Rejected(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, db, "Sinta", 0)
	other := testutil.CreateUser(t, db, "Raka", 0)
	q := testutil.CreateQuestion(t, db, author.ID, entity.DifficultyJunior, "go")

	_, err := svc.UpdateQuestion(ctx, q.ID, questionDto.UpdateQuestionRequest{AuthorID: other.ID, Title: strPtr("mine now")})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	// a published question cannot lose its tags
	_, err = svc.UpdateQuestion(ctx, q.ID, questionDto.UpdateQuestionRequest{AuthorID: author.ID, Tags: []string{}})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = svc.UpdateQuestion(ctx, q.ID, questionDto.UpdateQuestionRequest{AuthorID: author.ID, Difficulty: strPtr("Principal")})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = svc.UpdateQuestion(ctx, uuid.New(), questionDto.UpdateQuestionRequest{AuthorID: author.ID})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	assert.Equal(t, []string{"go"}, tagRows(t, db, q.ID))
}

func TestDeleteQuestion_RemovesAnswersVotesAndTags(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	votes := voteRepo.NewVoteRepository(db)

	author := testutil.CreateUser(t, db, "Sinta", 40)
	answerer := testutil.CreateUser(t, db, "Raka", 0)
	voter := testutil.CreateUser(t, db, "Dewi", 0)

	q := testutil.CreateQuestion(t, db, author.ID, entity.DifficultyMid, "go", "sql")
	a := testutil.CreateAnswer(t, db, q.ID, answerer.ID, nil)
	kept := testutil.CreateQuestion(t, db, author.ID, entity.DifficultyMid, "go")
	keptAnswer := testutil.CreateAnswer(t, db, kept.ID, answerer.ID, nil)

	for _, v := range []entity.Vote{
		{VoterID: voter.ID, ItemID: q.ID, ItemType: entity.ItemTypeQuestion, VoteType: entity.VoteTypeUp},
		{VoterID: voter.ID, ItemID: a.ID, ItemType: entity.ItemTypeAnswer, VoteType: entity.VoteTypeUp},
		{VoterID: author.ID, ItemID: a.ID, ItemType: entity.ItemTypeAnswer, VoteType: entity.VoteTypeDown},
		{VoterID: voter.ID, ItemID: keptAnswer.ID, ItemType: entity.ItemTypeAnswer, VoteType: entity.VoteTypeUp},
	} {
		v := v
		_, err := votes.Cast(ctx, &v)
		require.NoError(t, err)
	}

	err := svc.DeleteQuestion(ctx, q.ID, answerer.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	require.NoError(t, svc.DeleteQuestion(ctx, q.ID, author.ID))

	_, err = svc.GetQuestion(ctx, q.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Empty(t, tagRows(t, db, q.ID))

	var answers int64
	require.NoError(t, db.Model(&entity.Answer{}).Where("question_id = ?", q.ID).Count(&answers).Error)
	assert.Zero(t, answers)

	var remaining []entity.Vote
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, keptAnswer.ID, remaining[0].ItemID)

	drift, err := votes.FindDrift(ctx)
	require.NoError(t, err)
	assert.Empty(t, drift)

	counts, err := votes.Counts(ctx, keptAnswer.ID, entity.ItemTypeAnswer)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Upvotes)

	assert.Equal(t, 40, userPoints(t, db, author.ID))
	assert.Equal(t, []string{"go"}, tagRows(t, db, kept.ID))

	err = svc.DeleteQuestion(ctx, q.ID, author.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestListByAuthor(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, db, "Sinta", 0)
	other := testutil.CreateUser(t, db, "Raka", 0)

	published := testutil.CreateQuestion(t, db, author.ID, entity.DifficultyMid, "go")
	testutil.CreateQuestion(t, db, other.ID, entity.DifficultyMid, "go")
	draft, err := svc.CreateQuestion(ctx, questionDto.CreateQuestionRequest{AuthorID: author.ID, Title: "Later"})
	require.NoError(t, err)

	got, err := svc.ListByAuthor(ctx, author.ID, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, published.ID, got[0].ID)
	assert.Equal(t, []string{"go"}, got[0].Tags)

	got, err = svc.ListByAuthor(ctx, author.ID, entity.QuestionStatusDraft)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, draft.ID, got[0].ID)

	_, err = svc.ListByAuthor(ctx, author.ID, "archived")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = svc.ListByAuthor(ctx, uuid.New(), "")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
