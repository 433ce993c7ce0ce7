package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"anoa.com/careerhub/internal/entity"
	answerDto "anoa.com/careerhub/internal/modules/answer/dto"
	answerRepo "anoa.com/careerhub/internal/modules/answer/repository"
	answerService "anoa.com/careerhub/internal/modules/answer/service"
	badgeRepo "anoa.com/careerhub/internal/modules/badge/repository"
	badgeService "anoa.com/careerhub/internal/modules/badge/service"
	pointsRepo "anoa.com/careerhub/internal/modules/points/repository"
	pointsService "anoa.com/careerhub/internal/modules/points/service"
	questionRepo "anoa.com/careerhub/internal/modules/question/repository"
	skillRepo "anoa.com/careerhub/internal/modules/skill/repository"
	skillService "anoa.com/careerhub/internal/modules/skill/service"
	roleDto "anoa.com/careerhub/internal/modules/targetrole/dto"
	roleRepo "anoa.com/careerhub/internal/modules/targetrole/repository"
	roleService "anoa.com/careerhub/internal/modules/targetrole/service"
	userRepo "anoa.com/careerhub/internal/modules/user/repository"
	voteDto "anoa.com/careerhub/internal/modules/vote/dto"
	voteRepo "anoa.com/careerhub/internal/modules/vote/repository"
	voteService "anoa.com/careerhub/internal/modules/vote/service"
	"anoa.com/careerhub/internal/scoring"
	"anoa.com/careerhub/internal/testutil"
	"anoa.com/careerhub/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	answers answerService.AnswerService
	votes   voteService.VoteService
	roles   roleService.TargetRoleService
	db      *gorm.DB
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := testutil.NewDB(t)
	rules := scoring.DefaultRules()

	users := userRepo.NewUserRepository(db)
	roleRepository := roleRepo.NewTargetRoleRepository(db)
	roles := roleService.NewTargetRoleService(roleRepository, users)
	badges := badgeService.NewBadgeService(db, badgeRepo.NewBadgeRepository(db), users, nil, nil, rules)
	require.NoError(t, badges.SeedCatalog(context.Background()))
	points := pointsService.NewPointsService(pointsRepo.NewPointsRepository(db), badges, rules)
	skills := skillService.NewSkillService(skillRepo.NewSkillRepository(db), users, roleRepository)
	answers := answerRepo.NewAnswerRepository(db)

	return fixture{
		answers: answerService.NewAnswerService(db, answers, questionRepo.NewQuestionRepository(db), users, roles, points, skills),
		votes:   voteService.NewVoteService(voteRepo.NewVoteRepository(db), answers, users, points, skills, nil, time.Hour),
		roles:   roles,
		db:      db,
	}
}

func (f fixture) points(t *testing.T, id uuid.UUID) int {
	t.Helper()
	var u entity.User
	require.NoError(t, f.db.First(&u, "id = ?", id).Error)
	return u.Points
}

func (f fixture) skill(t *testing.T, authorID uuid.UUID, name string, roleID uuid.UUID) entity.UserSkill {
	t.Helper()
	var s entity.UserSkill
	require.NoError(t, f.db.First(&s, "author_id = ? AND skill_name = ? AND target_role_id = ?", authorID, name, roleID).Error)
	return s
}

func (f fixture) badgeNames(t *testing.T, userID uuid.UUID) []string {
	t.Helper()
	var names []string
	require.NoError(t, f.db.Table("user_badges").
		Joins("JOIN badges ON badges.id = user_badges.badge_id").
		Where("user_badges.user_id = ?", userID).
		Order("badges.threshold asc").
		Pluck("badges.name", &names).Error)
	return names
}

func TestScenario_AnswerVoteSwitch(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	asker := testutil.CreateUser(t, f.db, "Asker", 0)
	u := testutil.CreateUser(t, f.db, "U", 0)
	v := testutil.CreateUser(t, f.db, "V", 0)
	q := testutil.CreateQuestion(t, f.db, asker.ID, entity.DifficultySenior, "sql")

	role, err := f.roles.AddRole(ctx, roleDto.AddTargetRoleRequest{UserID: u.ID, RoleName: "Data Engineer"})
	require.NoError(t, err)

	// U answers a Senior sql question for the first time.
	answer, err := f.answers.CreateAnswer(ctx, answerDto.CreateAnswerRequest{
		QuestionID:   q.ID,
		AuthorID:     u.ID,
		Content:      "Use a covering index.",
		TargetRoleID: &role.ID,
	})
	require.NoError(t, err)

	sql := f.skill(t, u.ID, "sql", role.ID)
	assert.Equal(t, 1, sql.Level)
	assert.Equal(t, 1, sql.QuestionsAnswered)
	assert.Zero(t, sql.VotesReceived)
	assert.Equal(t, 30, f.points(t, u.ID))

	// V upvotes it.
	resp, err := f.votes.CastVote(ctx, voteDto.CastVoteRequest{
		VoterID: v.ID, ItemID: answer.ID, ItemType: entity.ItemTypeAnswer, VoteType: entity.VoteTypeUp,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.NewVoteCount)
	assert.Equal(t, 32, f.points(t, u.ID))
	sql = f.skill(t, u.ID, "sql", role.ID)
	assert.Equal(t, 1, sql.VotesReceived)
	assert.Equal(t, 1, sql.Level)

	// V switches to a downvote; the earlier reward stays.
	resp, err = f.votes.CastVote(ctx, voteDto.CastVoteRequest{
		VoterID: v.ID, ItemID: answer.ID, ItemType: entity.ItemTypeAnswer, VoteType: entity.VoteTypeDown,
	})
	require.NoError(t, err)
	assert.Equal(t, -1, resp.NewVoteCount)
	assert.Equal(t, 32, f.points(t, u.ID))
	assert.Equal(t, 1, f.skill(t, u.ID, "sql", role.ID).VotesReceived)
}

func TestCreateAnswer_WithoutRoleIsUnscoped(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	asker := testutil.CreateUser(t, f.db, "Asker", 0)
	u := testutil.CreateUser(t, f.db, "U", 0)
	q := testutil.CreateQuestion(t, f.db, asker.ID, entity.DifficultyMid, "Go", "testing")

	nilRole := uuid.Nil
	_, err := f.answers.CreateAnswer(ctx, answerDto.CreateAnswerRequest{
		QuestionID: q.ID, AuthorID: u.ID, Content: "table tests", TargetRoleID: &nilRole,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, f.skill(t, u.ID, "go", uuid.Nil).QuestionsAnswered)
	assert.Equal(t, 1, f.skill(t, u.ID, "testing", uuid.Nil).QuestionsAnswered)
	assert.Equal(t, 20, f.points(t, u.ID))
}

func TestCreateAnswer_Rejections(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	asker := testutil.CreateUser(t, f.db, "Asker", 0)
	u := testutil.CreateUser(t, f.db, "U", 0)
	q := testutil.CreateQuestion(t, f.db, asker.ID, entity.DifficultyJunior, "go")

	draft := &entity.Question{AuthorID: asker.ID, Title: "draft", Status: entity.QuestionStatusDraft}
	require.NoError(t, f.db.Create(draft).Error)

	othersRole, err := f.roles.AddRole(ctx, roleDto.AddTargetRoleRequest{UserID: asker.ID, RoleName: "SRE"})
	require.NoError(t, err)

	cases := []struct {
		name string
		req  answerDto.CreateAnswerRequest
		want error
	}{
		{"empty content", answerDto.CreateAnswerRequest{QuestionID: q.ID, AuthorID: u.ID, Content: "<p> </p>"}, apperror.ErrInvalidInput},
		{"unknown author", answerDto.CreateAnswerRequest{QuestionID: q.ID, AuthorID: uuid.New(), Content: "hi"}, apperror.ErrNotFound},
		{"unknown question", answerDto.CreateAnswerRequest{QuestionID: uuid.New(), AuthorID: u.ID, Content: "hi"}, apperror.ErrNotFound},
		{"draft question", answerDto.CreateAnswerRequest{QuestionID: draft.ID, AuthorID: u.ID, Content: "hi"}, apperror.ErrBadRequest},
		{"foreign role", answerDto.CreateAnswerRequest{QuestionID: q.ID, AuthorID: u.ID, Content: "hi", TargetRoleID: &othersRole.ID}, apperror.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.answers.CreateAnswer(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	var count int64
	require.NoError(t, f.db.Model(&entity.Answer{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Zero(t, f.points(t, u.ID))
}

func TestAcceptAnswer_ExactlyOneAccepted(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	asker := testutil.CreateUser(t, f.db, "Asker", 0)
	first := testutil.CreateUser(t, f.db, "First", 0)
	second := testutil.CreateUser(t, f.db, "Second", 0)
	q := testutil.CreateQuestion(t, f.db, asker.ID, entity.DifficultyJunior, "go")
	a := testutil.CreateAnswer(t, f.db, q.ID, first.ID, nil)
	b := testutil.CreateAnswer(t, f.db, q.ID, second.ID, nil)

	accepted, err := f.answers.AcceptAnswer(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, accepted.IsAccepted)
	assert.Equal(t, 25, f.points(t, first.ID))

	_, err = f.answers.AcceptAnswer(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, f.points(t, second.ID))

	// Re-accepting the current answer is a no-op.
	_, err = f.answers.AcceptAnswer(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, f.points(t, second.ID))

	list, err := f.answers.ListByQuestion(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
	assert.True(t, list[0].IsAccepted)
	assert.False(t, list[1].IsAccepted)

	var solved entity.Question
	require.NoError(t, f.db.First(&solved, "id = ?", q.ID).Error)
	assert.True(t, solved.IsSolved)

	_, err = f.answers.AcceptAnswer(ctx, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = f.answers.ListByQuestion(ctx, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestAcceptAnswer_CrossingThresholdsAwardsOnce(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	asker := testutil.CreateUser(t, f.db, "Asker", 0)
	u := testutil.CreateUser(t, f.db, "U", 90)

	q1 := testutil.CreateQuestion(t, f.db, asker.ID, entity.DifficultyJunior, "go")
	a1 := testutil.CreateAnswer(t, f.db, q1.ID, u.ID, nil)
	_, err := f.answers.AcceptAnswer(ctx, a1.ID)
	require.NoError(t, err)
	assert.Equal(t, 115, f.points(t, u.ID))
	assert.Equal(t, []string{"Achiever I"}, f.badgeNames(t, u.ID))

	require.NoError(t, f.db.Model(&entity.User{}).Where("id = ?", u.ID).Update("points", 235).Error)

	q2 := testutil.CreateQuestion(t, f.db, asker.ID, entity.DifficultyJunior, "go")
	a2 := testutil.CreateAnswer(t, f.db, q2.ID, u.ID, nil)
	_, err = f.answers.AcceptAnswer(ctx, a2.ID)
	require.NoError(t, err)
	assert.Equal(t, 260, f.points(t, u.ID))
	assert.Equal(t, []string{"Achiever I", "Achiever II"}, f.badgeNames(t, u.ID))
}

func TestUpdateAnswer(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	asker := testutil.CreateUser(t, f.db, "Asker", 0)
	u := testutil.CreateUser(t, f.db, "U", 0)
	q := testutil.CreateQuestion(t, f.db, asker.ID, entity.DifficultyJunior, "go")
	a := testutil.CreateAnswer(t, f.db, q.ID, u.ID, nil)

	_, err := f.answers.UpdateAnswer(ctx, a.ID, answerDto.UpdateAnswerRequest{AuthorID: asker.ID, Content: "hijacked content"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.answers.UpdateAnswer(ctx, a.ID, answerDto.UpdateAnswerRequest{AuthorID: u.ID, Content: "<b>short</b>"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = f.answers.UpdateAnswer(ctx, a.ID, answerDto.UpdateAnswerRequest{AuthorID: u.ID, Content: strings.Repeat("x", 3001)})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	updated, err := f.answers.UpdateAnswer(ctx, a.ID, answerDto.UpdateAnswerRequest{AuthorID: u.ID, Content: "<p>Use errgroup instead.</p>"})
	require.NoError(t, err)
	assert.Equal(t, "<p>Use errgroup instead.</p>", updated.Content)

	require.NoError(t, f.db.Model(&entity.Answer{}).Where("id = ?", a.ID).
		UpdateColumn("created_at", time.Now().Add(-answerService.EditWindow-time.Minute)).Error)
	_, err = f.answers.UpdateAnswer(ctx, a.ID, answerDto.UpdateAnswerRequest{AuthorID: u.ID, Content: "too late to change this"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}
