//go:build unit

package patch_test

import (
	"testing"

	"github.com/desidobreva/CinemaReservations/internal/pkg/patch"

	"github.com/stretchr/testify/assert"
)

func TestCoalesce(t *testing.T) {
	notes := "aisle please"
	empty := ""

	assert.Equal(t, "aisle please", patch.Coalesce(&notes, ""))
	assert.Equal(t, "", patch.Coalesce(&empty, "fallback"))
	assert.Equal(t, "fallback", patch.Coalesce[string](nil, "fallback"))
}

func TestCoalesceNonZero(t *testing.T) {
	method := "card"
	empty := ""

	assert.Equal(t, "card", patch.CoalesceNonZero(&method, "stripe_mock"))
	assert.Equal(t, "stripe_mock", patch.CoalesceNonZero(&empty, "stripe_mock"))
	assert.Equal(t, "stripe_mock", patch.CoalesceNonZero[string](nil, "stripe_mock"))
}
