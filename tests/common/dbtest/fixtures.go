//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desidobreva/CinemaReservations/internal/domain/user"
	"github.com/desidobreva/CinemaReservations/internal/pkg/password"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// DefaultPassword is the plain password behind every seeded account.
const DefaultPassword = "password123"

var (
	hashOnce    sync.Once
	defaultHash string
	hashErr     error
)

func defaultPasswordHash(t *testing.T) string {
	t.Helper()
	hashOnce.Do(func() {
		defaultHash, hashErr = password.HashPassword(DefaultPassword)
	})
	require.NoError(t, hashErr)
	return defaultHash
}

func CreateTestUser(t *testing.T, db DBLike, email string, role user.Role) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	ctx := context.Background()

	tag, err := db.Exec(ctx, "INSERT INTO users (id, email, password_hash, role, is_active) VALUES ($1, $2, $3, $4, true) ON CONFLICT (email) DO NOTHING",
		userID, strings.ToLower(email), defaultPasswordHash(t), role.String())
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		err = db.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", strings.ToLower(email)).Scan(&userID)
		require.NoError(t, err)
	}

	return userID
}

type ScreeningFixture struct {
	ScreeningID uuid.UUID
	HallID      uuid.UUID
	MovieID     uuid.UUID
	Rows        int
	Cols        int
	StartsAt    time.Time
}

// CreateTestScreening seeds a movie, a rows x cols hall and one screening of
// it starting at startsAt.
func CreateTestScreening(t *testing.T, db DBLike, providerID uuid.UUID, rows, cols int, startsAt time.Time) ScreeningFixture {
	t.Helper()

	ctx := context.Background()
	f := ScreeningFixture{
		ScreeningID: uuid.New(),
		HallID:      uuid.New(),
		MovieID:     uuid.New(),
		Rows:        rows,
		Cols:        cols,
		StartsAt:    startsAt.UTC(),
	}

	_, err := db.Exec(ctx, "INSERT INTO movies (id, title, category) VALUES ($1, $2, $3)",
		f.MovieID, "Test Movie "+f.MovieID.String()[:8], "drama")
	require.NoError(t, err)

	_, err = db.Exec(ctx, "INSERT INTO halls (id, name, rows, cols) VALUES ($1, $2, $3, $4)",
		f.HallID, "Hall "+f.HallID.String()[:8], rows, cols)
	require.NoError(t, err)

	var provider any
	if providerID != uuid.Nil {
		provider = providerID
	}
	_, err = db.Exec(ctx, "INSERT INTO screenings (id, movie_id, hall_id, provider_id, starts_at) VALUES ($1, $2, $3, $4, $5)",
		f.ScreeningID, f.MovieID, f.HallID, provider, f.StartsAt)
	require.NoError(t, err)

	return f
}

// MoveScreening rewrites starts_at, e.g. to put a screening in the past.
func MoveScreening(t *testing.T, db DBLike, screeningID uuid.UUID, startsAt time.Time) {
	t.Helper()
	_, err := db.Exec(context.Background(), "UPDATE screenings SET starts_at = $2 WHERE id = $1", screeningID, startsAt.UTC())
	require.NoError(t, err)
}

func CountTickets(t *testing.T, db DBLike, screeningID uuid.UUID) int {
	t.Helper()
	var n int
	err := db.QueryRow(context.Background(), "SELECT count(*) FROM reservation_tickets WHERE screening_id = $1", screeningID).Scan(&n)
	require.NoError(t, err)
	return n
}

func CountQueuedJobs(t *testing.T, db DBLike, topic string) int {
	t.Helper()
	var n int
	err := db.QueryRow(context.Background(), "SELECT count(*) FROM notification_jobs WHERE topic = $1", topic).Scan(&n)
	require.NoError(t, err)
	return n
}

// SeedReferenceData is a hook for rows every test expects; the schema needs none today.
func SeedReferenceData(_ *pgxpool.Pool) error {
	return nil
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables and reseeds reference data
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations', 'atlas_schema_revisions')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return SeedReferenceData(pool)
}
