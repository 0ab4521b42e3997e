package seats

import (
	"errors"
	"testing"

	"github.com/JasonDebnath001/QuickTix-server/internal/shared/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailable(t *testing.T) {
	m := SeatMap{"A1": "u1"}

	assert.True(t, m.Available([]string{"A2", "A3"}))
	assert.False(t, m.Available([]string{"A2", "A1"}))
	assert.True(t, SeatMap{}.Available([]string{"A1"}))
}

func TestClaim(t *testing.T) {
	t.Run("all free", func(t *testing.T) {
		m := SeatMap{}
		require.NoError(t, m.Claim([]string{"A1", "A2"}, "u1"))
		assert.Equal(t, SeatMap{"A1": "u1", "A2": "u1"}, m)
	})

	t.Run("partial conflict writes nothing", func(t *testing.T) {
		m := SeatMap{"A2": "v"}
		err := m.Claim([]string{"A1", "A2", "A3"}, "u")

		var seatErr *apperr.SeatUnavailableError
		require.True(t, errors.As(err, &seatErr))
		assert.Equal(t, []string{"A2"}, seatErr.Seats)
		assert.ErrorIs(t, err, apperr.ErrSeatUnavailable)
		assert.Equal(t, SeatMap{"A2": "v"}, m)
	})
}

func TestReleaseOnlyRemovesHoldersEntries(t *testing.T) {
	m := SeatMap{"A1": "u", "A2": "v", "A3": "u"}

	freed := m.Release([]string{"A1", "A2", "A4"}, "u")

	assert.Equal(t, []string{"A1"}, freed)
	assert.Equal(t, SeatMap{"A2": "v", "A3": "u"}, m)
}

func TestOccupiedAndHeldBy(t *testing.T) {
	m := SeatMap{"B2": "u", "A1": "v", "A3": "u"}

	assert.Equal(t, []string{"A1", "A3", "B2"}, m.Occupied())
	assert.Equal(t, []string{"A3", "B2"}, m.HeldBy("u"))
	assert.Empty(t, SeatMap{}.Occupied())
}

func TestSeatMapJSONColumn(t *testing.T) {
	v, err := SeatMap{"A1": "u"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"A1":"u"}`, v)

	var m SeatMap
	require.NoError(t, m.Scan([]byte(`{"A1":"u","B1":"v"}`)))
	assert.Equal(t, SeatMap{"A1": "u", "B1": "v"}, m)

	require.NoError(t, m.Scan(nil))
	assert.Equal(t, SeatMap{}, m)

	assert.Error(t, m.Scan(42))

	nilValue, err := SeatMap(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", nilValue)
}

func TestSeatListJSONColumn(t *testing.T) {
	v, err := SeatList{"A2", "A1"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["A2","A1"]`, v)

	var l SeatList
	require.NoError(t, l.Scan(`["A2","A1"]`))
	assert.Equal(t, SeatList{"A2", "A1"}, l)
}

func TestValidateSelection(t *testing.T) {
	tests := []struct {
		name    string
		seats   []string
		wantErr bool
	}{
		{"single", []string{"A1"}, false},
		{"several", []string{"A1", "B4", "C10"}, false},
		{"empty", nil, true},
		{"blank", []string{"A1", " "}, true},
		{"duplicate", []string{"A1", "A2", "A1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSelection(tt.seats)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrInvalidSeatSelection)
				return
			}
			assert.NoError(t, err)
		})
	}
}
