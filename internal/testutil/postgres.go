package testutil

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/emilythestrangee/dealdrop/backend/internal/database"
)

const (
	dbName = "dealdrop_test"
	dbUser = "user"
	dbPwd  = "password"
)

// Postgres is a throwaway postgres container shared by one test package.
type Postgres struct {
	DSN       string
	container *postgres.PostgresContainer
	db        database.Service
}

// StartPostgres boots a container. Callers run it from TestMain and treat an
// error as "no docker here" rather than a failure.
func StartPostgres(ctx context.Context) (*Postgres, error) {
	container, err := postgres.Run(
		ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres container: %w", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("postgres connection string: %w", err)
	}

	db, err := database.New(dsn, database.Options{LogLevel: logger.Silent})
	if err != nil {
		container.Terminate(ctx)
		return nil, err
	}

	return &Postgres{DSN: dsn, container: container, db: db}, nil
}

// Service returns the migrated database service.
func (p *Postgres) Service() database.Service {
	return p.db
}

// Terminate closes the pool and removes the container.
func (p *Postgres) Terminate() {
	if p == nil {
		return
	}
	p.db.Close()
	if err := p.container.Terminate(context.Background()); err != nil {
		slog.Warn("Failed to terminate postgres container", "error", err)
	}
}

// Fresh returns a handle on the shared database with every table emptied.
// It skips the test when p is nil (docker unavailable or -short).
func Fresh(t *testing.T, p *Postgres) *gorm.DB {
	t.Helper()
	if p == nil {
		t.Skip("postgres container unavailable")
	}

	db := p.db.GetDB()
	err := db.Exec(`TRUNCATE votes, comments, deals, coupons, discussions, merchants, users RESTART IDENTITY CASCADE`).Error
	if err != nil {
		t.Fatalf("failed to reset database: %v", err)
	}
	return db
}
