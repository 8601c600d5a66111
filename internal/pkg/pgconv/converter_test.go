//go:build unit

package pgconv_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/desidobreva/CinemaReservations/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
)

func TestTimeFromPgtype_NormalizesToUTC(t *testing.T) {
	sofia := time.FixedZone("EET", 2*60*60)
	local := time.Date(2030, 5, 1, 20, 0, 0, 0, sofia)

	got := pgconv.TimeFromPgtype(pgtype.Timestamptz{Time: local, Valid: true})
	assert.Equal(t, time.UTC, got.Location())
	assert.True(t, got.Equal(local))

	assert.True(t, pgconv.TimeFromPgtype(pgtype.Timestamptz{}).IsZero())
	assert.Nil(t, pgconv.TimePtrFromPgtype(pgtype.Timestamptz{}))
}

func TestUUIDConversions(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, &id, pgconv.UUIDPtrFromPgtype(pgconv.UUIDToPgtype(id)))
	assert.Nil(t, pgconv.UUIDPtrFromPgtype(pgconv.UUIDPtrToPgtype(nil)))
}

func TestIsNoRows(t *testing.T) {
	assert.True(t, pgconv.IsNoRows(pgx.ErrNoRows))
	assert.False(t, pgconv.IsNoRows(errors.New("boom")))
}

func TestIntToInt32(t *testing.T) {
	assert.Equal(t, int32(7), pgconv.IntToInt32(7))
	assert.Equal(t, int32(math.MaxInt32), pgconv.IntToInt32(math.MaxInt32+1))
	assert.Equal(t, int32(math.MinInt32), pgconv.IntToInt32(math.MinInt32-1))
}
