//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_api/internal/domain"
	mysqlrepo "hotel_api/internal/storage/mysql"
)

// startMySQL runs an isolated MySQL and returns a connected handle.
// Docker picks a free host port.
func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=hotels",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/hotels?parseTime=true&charset=utf8mb4&loc=UTC",
		resource.GetPort("3306/tcp"))

	pool.MaxWait = 2 * time.Minute
	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRepo_MySQL_LoadSaveCollection(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	require.NoError(t, repo.EnsureSchema(ctx))
	// idempotent
	require.NoError(t, repo.EnsureSchema(ctx))

	// Nothing saved yet
	hotels, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, hotels)

	ts := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	lat, lon := 41.02, 29.01
	first := []domain.Hotel{{
		ID: "a1", HotelID: 1, Slug: "hotel-e2e", Title: "Hôtel E2E",
		Location:  domain.Location{Latitude: &lat, Longitude: &lon},
		Images:    []string{}, Rooms: []domain.Room{},
		CreatedAt: ts, UpdatedAt: ts,
	}}
	require.NoError(t, repo.Save(ctx, first))

	// Whole-collection replace: the second save overwrites the first
	second := append(first, domain.Hotel{
		ID: "b2", HotelID: 2, Slug: "annex", Title: "Annex",
		Images: []string{"/uploads/x.jpg"}, Rooms: []domain.Room{},
		CreatedAt: ts, UpdatedAt: ts.Add(time.Minute),
	})
	require.NoError(t, repo.Save(ctx, second))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Hôtel E2E", got[0].Title)
	assert.Equal(t, []string{"/uploads/x.jpg"}, got[1].Images)
	assert.True(t, got[1].UpdatedAt.Equal(ts.Add(time.Minute)))

	var rows int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM hotel_collections").Scan(&rows))
	assert.Equal(t, 1, rows)
}
