// Package testutil builds throwaway databases and Redis servers for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"anoa.com/careerhub/internal/bootstrap"
	"anoa.com/careerhub/internal/entity"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory SQLite database private to t. The pool is
// limited to one connection, so code running inside a transaction must use tx.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, bootstrap.Migrate(db))
	return db
}

// NewRedis starts a miniredis server and returns a client bound to it.
func NewRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

// CreateUser inserts a user with the given starting points.
func CreateUser(t *testing.T, db *gorm.DB, name string, points int) *entity.User {
	t.Helper()

	u := &entity.User{
		Email:       fmt.Sprintf("%s-%s@example.com", strings.ToLower(name), uuid.NewString()[:8]),
		Name:        name,
		AccountType: entity.AccountTypeUser,
		Points:      points,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateQuestion inserts a published question with tags.
func CreateQuestion(t *testing.T, db *gorm.DB, authorID uuid.UUID, difficulty string, tags ...string) *entity.Question {
	t.Helper()

	q := &entity.Question{
		AuthorID:   authorID,
		Title:      "How do I " + strings.Join(tags, " and ") + "?",
		Content:    "details",
		Difficulty: difficulty,
		Status:     entity.QuestionStatusPublished,
	}
	for _, tag := range tags {
		q.Tags = append(q.Tags, entity.QuestionTag{Tag: tag})
	}
	require.NoError(t, db.Create(q).Error)
	return q
}

// CreateAnswer inserts an answer without running any scoring side effects.
func CreateAnswer(t *testing.T, db *gorm.DB, questionID, authorID uuid.UUID, roleID *uuid.UUID) *entity.Answer {
	t.Helper()

	a := &entity.Answer{
		QuestionID:   questionID,
		AuthorID:     authorID,
		Content:      "answer body",
		TargetRoleID: roleID,
	}
	require.NoError(t, db.Create(a).Error)
	return a
}
