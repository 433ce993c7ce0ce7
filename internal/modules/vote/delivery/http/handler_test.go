package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/careerhub/internal/entity"
	answerRepo "anoa.com/careerhub/internal/modules/answer/repository"
	pointsRepo "anoa.com/careerhub/internal/modules/points/repository"
	pointsService "anoa.com/careerhub/internal/modules/points/service"
	skillRepo "anoa.com/careerhub/internal/modules/skill/repository"
	skillService "anoa.com/careerhub/internal/modules/skill/service"
	roleRepo "anoa.com/careerhub/internal/modules/targetrole/repository"
	userRepo "anoa.com/careerhub/internal/modules/user/repository"
	voteHandler "anoa.com/careerhub/internal/modules/vote/delivery/http"
	voteRepo "anoa.com/careerhub/internal/modules/vote/repository"
	voteService "anoa.com/careerhub/internal/modules/vote/service"
	"anoa.com/careerhub/internal/scoring"
	"anoa.com/careerhub/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	users := userRepo.NewUserRepository(db)
	points := pointsService.NewPointsService(pointsRepo.NewPointsRepository(db), nil, scoring.DefaultRules())
	skills := skillService.NewSkillService(skillRepo.NewSkillRepository(db), users, roleRepo.NewTargetRoleRepository(db))
	svc := voteService.NewVoteService(voteRepo.NewVoteRepository(db), answerRepo.NewAnswerRepository(db), users, points, skills, nil, time.Hour)
	h := voteHandler.NewVoteHandler(svc)

	r := gin.New()
	r.POST("/api/votes", h.CastVote)
	r.GET("/api/votes/count", h.GetVoteCount)
	r.GET("/api/votes/me", h.GetVoterVote)
	return r, db
}

func do(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestVoteRoutes(t *testing.T) {
	r, db := newRouter(t)
	author := testutil.CreateUser(t, db, "Author", 0)
	voter := testutil.CreateUser(t, db, "Voter", 0)
	q := testutil.CreateQuestion(t, db, author.ID, entity.DifficultyJunior, "go")

	body := gin.H{"voterId": voter.ID, "itemId": q.ID, "itemType": "question", "voteType": "upvote"}

	w := do(r, http.MethodPost, "/api/votes", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var cast struct {
		Message      string  `json:"message"`
		VoterVote    *string `json:"voterVote"`
		NewVoteCount int     `json:"newVoteCount"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cast))
	assert.Equal(t, "Vote recorded", cast.Message)
	assert.Equal(t, 1, cast.NewVoteCount)

	w = do(r, http.MethodGet, "/api/votes/count?itemType=question&itemId="+q.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"upvotes":1,"downvotes":0,"total":1}`, w.Body.String())

	w = do(r, http.MethodGet, "/api/votes/me?itemType=question&itemId="+q.ID.String()+"&voterId="+voter.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"voterVote":"upvote"}}`, w.Body.String())

	w = do(r, http.MethodPost, "/api/votes", body)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cast))
	assert.Equal(t, "Vote removed", cast.Message)
	assert.Nil(t, cast.VoterVote)
	assert.Zero(t, cast.NewVoteCount)
}

func TestVoteRoutes_BadRequests(t *testing.T) {
	r, db := newRouter(t)
	voter := testutil.CreateUser(t, db, "Voter", 0)

	w := do(r, http.MethodPost, "/api/votes", gin.H{"voterId": voter.ID, "itemId": voter.ID, "itemType": "thread", "voteType": "upvote"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/votes", gin.H{"voterId": voter.ID, "itemId": voter.ID, "itemType": "answer", "voteType": "upvote"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/api/votes/count?itemType=question&itemId=nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
