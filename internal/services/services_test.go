package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/docvault/docvault/internal/auth"
	"github.com/docvault/docvault/internal/logger"
	"github.com/docvault/docvault/internal/models"
	pgrepo "github.com/docvault/docvault/internal/repositories/postgres"
	"github.com/docvault/docvault/internal/storage"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Document{}, &models.DocumentVersion{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func quietLogger() *logrus.Logger { return logger.New("error") }

type testEnv struct {
	db    *gorm.DB
	dir   string
	store *storage.LocalStore
	users pgrepo.UserRepository
	docs  pgrepo.DocumentRepository
	svc   DocumentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir)
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	users := pgrepo.NewUserRepo(db)
	docs := pgrepo.NewDocumentRepo(db)
	return &testEnv{
		db:    db,
		dir:   dir,
		store: store,
		users: users,
		docs:  docs,
		svc:   NewDocumentService(docs, users, store, quietLogger()),
	}
}

func (e *testEnv) createUser(t *testing.T, username string, role models.Role) *models.User {
	t.Helper()
	hash, err := auth.HashPassword("pass-" + username)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	u := &models.User{Username: username, PasswordHash: hash, Role: role}
	if err := e.users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}
