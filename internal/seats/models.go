// Package seats holds the per-show seat map and the checks every claim and
// release goes through.
package seats

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/JasonDebnath001/QuickTix-server/internal/shared/apperr"
)

// SeatMap maps a claimed seat id to the id of the user holding it. A seat
// that is not a key is free.
type SeatMap map[string]string

// SeatList is an ordered list of seat ids stored as a JSON array.
type SeatList []string

// Available reports whether none of seats is claimed.
func (m SeatMap) Available(seats []string) bool {
	for _, s := range seats {
		if _, taken := m[s]; taken {
			return false
		}
	}
	return true
}

// Conflicts returns the requested seats that are already claimed, in request order.
func (m SeatMap) Conflicts(seats []string) []string {
	var taken []string
	for _, s := range seats {
		if _, ok := m[s]; ok {
			taken = append(taken, s)
		}
	}
	return taken
}

// Claim maps every seat to holder. Nothing is written unless all seats are free.
func (m SeatMap) Claim(seats []string, holder string) error {
	if conflicts := m.Conflicts(seats); len(conflicts) > 0 {
		return &apperr.SeatUnavailableError{Seats: conflicts}
	}
	for _, s := range seats {
		m[s] = holder
	}
	return nil
}

// Release frees the seats still held by holder and returns the ones it freed.
// Entries that now belong to someone else are left alone.
func (m SeatMap) Release(seats []string, holder string) []string {
	var freed []string
	for _, s := range seats {
		if m[s] == holder {
			delete(m, s)
			freed = append(freed, s)
		}
	}
	return freed
}

// Occupied returns the claimed seat ids sorted.
func (m SeatMap) Occupied() []string {
	out := make([]string, 0, len(m))
	for s := range m {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// HeldBy returns the sorted seats held by holder.
func (m SeatMap) HeldBy(holder string) []string {
	var out []string
	for s, h := range m {
		if h == holder {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func (m SeatMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]string(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *SeatMap) Scan(value interface{}) error {
	raw, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("scan seat map: %w", err)
	}
	out := SeatMap{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, (*map[string]string)(&out)); err != nil {
			return fmt.Errorf("scan seat map: %w", err)
		}
	}
	*m = out
	return nil
}

func (SeatMap) GormDataType() string { return "jsonb" }

func (l SeatList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *SeatList) Scan(value interface{}) error {
	raw, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("scan seat list: %w", err)
	}
	out := SeatList{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, (*[]string)(&out)); err != nil {
			return fmt.Errorf("scan seat list: %w", err)
		}
	}
	*l = out
	return nil
}

func (SeatList) GormDataType() string { return "jsonb" }

func jsonBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported type %T", value)
	}
}

// ValidateSelection rejects an empty selection, blank ids and duplicates.
// The returned error wraps apperr.ErrInvalidSeatSelection.
func ValidateSelection(seats []string) error {
	if len(seats) == 0 {
		return fmt.Errorf("%w: at least one seat is required", apperr.ErrInvalidSeatSelection)
	}
	seen := make(map[string]struct{}, len(seats))
	for i, s := range seats {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: seat %d is blank", apperr.ErrInvalidSeatSelection, i)
		}
		if _, dup := seen[s]; dup {
			return fmt.Errorf("%w: seat %s requested twice", apperr.ErrInvalidSeatSelection, s)
		}
		seen[s] = struct{}{}
	}
	return nil
}
