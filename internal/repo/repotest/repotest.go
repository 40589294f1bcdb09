// Package repotest boots an in-memory SQLite database migrated with the
// shipped sqlite goose migrations for repository and service tests.
package repotest

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/config"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/db/models"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/enums"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/migrate"
)

// Open returns an isolated in-memory database named after the test.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8])
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := migrate.Run(context.Background(), sqlDB, config.DriverSQLite, MigrationsDir(), "up"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func init() {
	goose.SetLogger(goose.NopLogger())
}

// MigrationsDir locates the sqlite migrations from this file, so tests in any
// package directory resolve the same tree.
func MigrationsDir() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return migrate.DirFor("", "sqlite")
	}
	root := filepath.Join(filepath.Dir(file), "..", "..", "..")
	return migrate.DirFor(filepath.Join(root, migrate.DefaultDir), "sqlite")
}

// User inserts a user with a unique username/email derived from name.
func User(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		Username: name,
		Email:    name + "@example.com",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return user
}

// Group inserts a group owned by creator along with the creator's active membership.
func Group(t *testing.T, db *gorm.DB, creator *models.User, name string, target string) *models.Group {
	t.Helper()
	group := &models.Group{
		Name:         name,
		TargetAmount: decimal.RequireFromString(target),
		CreatedBy:    creator.ID,
		InviteCode:   uuid.NewString()[:8],
	}
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("create group %s: %v", name, err)
	}
	Member(t, db, group, creator, enums.MembershipStatusActive)
	return group
}

// Member inserts a membership row in the given status.
func Member(t *testing.T, db *gorm.DB, group *models.Group, user *models.User, status enums.MembershipStatus) *models.GroupMember {
	t.Helper()
	member := &models.GroupMember{GroupID: group.ID, UserID: user.ID, Status: status}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("create membership: %v", err)
	}
	return member
}

// Contribution inserts a contribution dated at when.
func Contribution(t *testing.T, db *gorm.DB, group *models.Group, user *models.User, amount string, status enums.ContributionStatus, when time.Time) *models.Contribution {
	t.Helper()
	row := &models.Contribution{
		GroupID:          group.ID,
		UserID:           user.ID,
		Amount:           decimal.RequireFromString(amount),
		Status:           status,
		ContributionDate: when,
	}
	if err := db.Create(row).Error; err != nil {
		t.Fatalf("create contribution: %v", err)
	}
	return row
}
