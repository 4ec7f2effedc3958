package integration

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"coupon-day/internal/discount"
	"coupon-day/internal/model"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, applies the schema
// migrations and returns a connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	// Create connection pool
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	// Apply the real schema migrations
	migrateSchema(t, connStr)

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// migrateSchema applies the project migrations to the test database.
func migrateSchema(t *testing.T, connStr string) {
	t.Helper()

	migrationsPath, err := filepath.Abs("../../migrations")
	if err != nil {
		t.Fatalf("failed to resolve migrations path: %v", err)
	}

	m, err := migrate.New("file://"+migrationsPath, connStr)
	if err != nil {
		t.Fatalf("failed to initialise migrations: %v", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("failed to apply migrations: %v", err)
	}
}

// SeedStore inserts one store and returns it.
func SeedStore(t *testing.T, pool *pgxpool.Pool, name, category string) *model.Store {
	t.Helper()

	store := &model.Store{
		ID:       uuid.New(),
		Name:     name,
		Category: category,
		Status:   model.StoreActive,
	}

	_, err := pool.Exec(context.Background(),
		"INSERT INTO stores (id, name, category, status) VALUES ($1, $2, $3, $4)",
		store.ID, store.Name, store.Category, store.Status,
	)
	if err != nil {
		t.Fatalf("failed to seed store %s: %v", name, err)
	}
	return store
}

// SeedCustomer inserts one customer and returns it.
func SeedCustomer(t *testing.T, pool *pgxpool.Pool, nickname string) *model.Customer {
	t.Helper()

	customer := &model.Customer{ID: uuid.New(), Nickname: nickname}
	_, err := pool.Exec(context.Background(),
		"INSERT INTO customers (id, nickname) VALUES ($1, $2)",
		customer.ID, customer.Nickname,
	)
	if err != nil {
		t.Fatalf("failed to seed customer %s: %v", nickname, err)
	}
	return customer
}

// ActiveFixedCoupon builds an active fixed-amount coupon valid for the
// next week, without persisting it.
func ActiveFixedCoupon(storeID uuid.UUID, value int64) *model.Coupon {
	now := time.Now()
	return &model.Coupon{
		ID:            uuid.New(),
		StoreID:       storeID,
		Name:          fmt.Sprintf("%d won off", value),
		DiscountType:  discount.TypeFixed,
		DiscountValue: value,
		ValidFrom:     now.AddDate(0, 0, -1),
		ValidUntil:    now.AddDate(0, 0, 7),
		Status:        model.CouponActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// CleanupDB removes all rows between test cases, children first.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{
		"cross_coupon_settlements", "meal_tokens", "cross_coupons", "partnerships",
		"coupon_daily_stats", "redemptions", "saved_coupons", "coupons",
		"customers", "stores",
	}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
