package service_test

import (
	"context"
	"testing"
	"time"

	"anoa.com/careerhub/internal/entity"
	answerRepo "anoa.com/careerhub/internal/modules/answer/repository"
	auditService "anoa.com/careerhub/internal/modules/audit/service"
	pointsRepo "anoa.com/careerhub/internal/modules/points/repository"
	pointsService "anoa.com/careerhub/internal/modules/points/service"
	skillRepo "anoa.com/careerhub/internal/modules/skill/repository"
	skillService "anoa.com/careerhub/internal/modules/skill/service"
	roleRepo "anoa.com/careerhub/internal/modules/targetrole/repository"
	userRepo "anoa.com/careerhub/internal/modules/user/repository"
	voteDto "anoa.com/careerhub/internal/modules/vote/dto"
	voteRepo "anoa.com/careerhub/internal/modules/vote/repository"
	voteService "anoa.com/careerhub/internal/modules/vote/service"
	"anoa.com/careerhub/internal/scheduler"
	"anoa.com/careerhub/internal/scoring"
	"anoa.com/careerhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newServices(t *testing.T) (voteService.VoteService, pointsService.PointsService, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	users := userRepo.NewUserRepository(db)
	points := pointsService.NewPointsService(pointsRepo.NewPointsRepository(db), nil, scoring.DefaultRules())
	skills := skillService.NewSkillService(skillRepo.NewSkillRepository(db), users, roleRepo.NewTargetRoleRepository(db))
	votes := voteService.NewVoteService(voteRepo.NewVoteRepository(db), answerRepo.NewAnswerRepository(db), users, points, skills, nil, time.Hour)
	return votes, points, db
}

func TestRun_ReportsAndRepairs(t *testing.T) {
	votes, points, db := newServices(t)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "Author", 0)
	voter := testutil.CreateUser(t, db, "Voter", 0)
	q := testutil.CreateQuestion(t, db, author.ID, entity.DifficultyJunior, "go")
	_, err := votes.CastVote(ctx, voteDto.CastVoteRequest{VoterID: voter.ID, ItemID: q.ID, ItemType: entity.ItemTypeQuestion, VoteType: entity.VoteTypeUp})
	require.NoError(t, err)

	clean, err := auditService.NewAuditService(votes, points, false).Run(ctx)
	require.NoError(t, err)
	assert.True(t, clean.Clean())

	require.NoError(t, db.Model(&entity.Question{}).Where("id = ?", q.ID).Update("votes", 5).Error)
	require.NoError(t, db.Model(&entity.User{}).Where("id = ?", author.ID).Update("points", 40).Error)

	report, err := auditService.NewAuditService(votes, points, false).Run(ctx)
	require.NoError(t, err)
	require.Len(t, report.VoteDrift, 1)
	assert.Equal(t, q.ID, report.VoteDrift[0].ItemID)
	require.Len(t, report.PointsDrift, 1)
	assert.Equal(t, author.ID, report.PointsDrift[0].UserID)
	assert.Zero(t, report.Repaired)

	fixing := auditService.NewAuditService(votes, points, true)
	report, err = fixing.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Repaired)
	assert.Same(t, report, fixing.LastReport())

	report, err = fixing.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.VoteDrift)
	assert.Len(t, report.PointsDrift, 1, "points drift is never rewritten")
}

func TestJob_RunsThroughScheduler(t *testing.T) {
	votes, points, _ := newServices(t)
	svc := auditService.NewAuditService(votes, points, false)

	s := scheduler.New()
	require.NoError(t, s.Register(auditService.NewJob(svc, "")))
	assert.Nil(t, svc.LastReport())

	require.NoError(t, s.RunNow(context.Background(), auditService.JobName))
	require.NotNil(t, svc.LastReport())
	assert.True(t, svc.LastReport().Clean())
}
