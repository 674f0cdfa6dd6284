package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/maxviazov/taskboard-service/internal/config"
	"github.com/maxviazov/taskboard-service/internal/repository"
	"github.com/maxviazov/taskboard-service/internal/repository/contract"
	"github.com/maxviazov/taskboard-service/migrations"
)

var (
	db     *sql.DB
	pool   *pgxpool.Pool
	skippy bool
)

func TestMain(m *testing.M) {
	if os.Getenv("CONTRACT_TESTS") != "1" {
		skippy = true
		os.Exit(m.Run())
	}

	dsn := buildDSNFromEnv()
	if dsn == "" {
		fmt.Println("[contract] DATABASE_URL or APP_POSTGRES_* env not set; skipping")
		skippy = true
		os.Exit(m.Run())
	}

	var err error
	db, err = sql.Open("pgx", dsn)
	if err != nil {
		fmt.Println("[contract] sql open error:", err)
		os.Exit(1)
	}
	if err := db.Ping(); err != nil {
		fmt.Println("[contract] db ping error:", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := migrations.Up(ctx, db); err != nil {
		fmt.Println("[contract] goose up error:", err)
		os.Exit(1)
	}

	pool, err = pgxpool.New(ctx, dsn)
	if err != nil {
		fmt.Println("[contract] pgxpool new error:", err)
		os.Exit(1)
	}

	code := m.Run()
	pool.Close()
	db.Close()
	os.Exit(code)
}

func skipIfNeeded(t *testing.T) {
	if skippy {
		t.Skip("contract tests skipped; set CONTRACT_TESTS=1 and provide DB env")
	}
}

func buildDSNFromEnv() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}
	cfg := config.PostgresConfig{
		Host:     firstNonEmpty(os.Getenv("APP_POSTGRES_HOST"), os.Getenv("POSTGRES_HOST"), "localhost"),
		User:     firstNonEmpty(os.Getenv("APP_POSTGRES_USER"), os.Getenv("POSTGRES_USER")),
		Password: firstNonEmpty(os.Getenv("APP_POSTGRES_PASSWORD"), os.Getenv("POSTGRES_PASSWORD")),
		DBName:   firstNonEmpty(os.Getenv("APP_POSTGRES_DB"), os.Getenv("POSTGRES_DB")),
		SSLMode:  firstNonEmpty(os.Getenv("APP_POSTGRES_SSLMODE"), "disable"),
		Port:     5432,
	}
	if p := firstNonEmpty(os.Getenv("APP_POSTGRES_PORT"), os.Getenv("POSTGRES_PORT")); p != "" {
		if _, err := fmt.Sscanf(p, "%d", &cfg.Port); err != nil {
			return ""
		}
	}
	if cfg.User == "" || cfg.Password == "" || cfg.DBName == "" {
		return ""
	}
	return repository.DSN(cfg)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncateAll(t *testing.T) {
	t.Helper()
	if _, err := db.Exec("TRUNCATE TABLE tasks, project_members, projects, users RESTART IDENTITY CASCADE"); err != nil {
		t.Fatalf("truncate failed: %v", err)
	}
}

func makeRepos(t *testing.T) (contract.Repos, func()) {
	skipIfNeeded(t)
	truncateAll(t)
	return contract.Repos{
		Users:     NewUserRepository(pool),
		Projects:  NewProjectRepository(pool),
		Tasks:     NewTaskRepository(pool),
		Dashboard: NewDashboardRepository(pool),
		Tx:        NewTxManager(pool),
	}, func() { truncateAll(t) }
}

func makePinger(t *testing.T) (repository.Pinger, func()) {
	skipIfNeeded(t)
	return NewPinger(pool), func() {}
}

func TestUserRepository_PostgresContract(t *testing.T) {
	contract.RunUserRepositoryContract(t, makeRepos)
}

func TestProjectRepository_PostgresContract(t *testing.T) {
	contract.RunProjectRepositoryContract(t, makeRepos)
}

func TestTaskRepository_PostgresContract(t *testing.T) {
	contract.RunTaskRepositoryContract(t, makeRepos)
}

func TestDashboardRepository_PostgresContract(t *testing.T) {
	contract.RunDashboardRepositoryContract(t, makeRepos)
}

func TestTxManager_PostgresContract(t *testing.T) {
	contract.RunTxManagerContract(t, makeRepos)
}

func TestPinger_PostgresContract(t *testing.T) {
	contract.RunPingerContract(t, makePinger)
}

func TestNilPool(t *testing.T) {
	if err := NewPinger(nil).Ping(context.Background()); err == nil {
		t.Fatal("expected error for nil pool")
	}
	if _, err := NewUserRepository(nil).Count(context.Background()); err == nil {
		t.Fatal("expected error for nil pool")
	}
}
