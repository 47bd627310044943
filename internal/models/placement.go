package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Placement is an optional competition position. The zero value means "not entered",
// which is distinct from an explicit 0.
type Placement struct {
	Value int
	Set   bool
}

// PlacementOf returns an entered placement.
func PlacementOf(v int) Placement {
	return Placement{Value: v, Set: true}
}

// ParsePlacement converts raw form input; blank input yields an empty placement.
func ParsePlacement(raw string) (Placement, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Placement{}, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return Placement{}, fmt.Errorf("placement %q is not an integer", raw)
	}
	return PlacementOf(v), nil
}

// Ptr returns nil for an empty placement so it is omitted from payloads.
func (p Placement) Ptr() *int {
	if !p.Set {
		return nil
	}
	v := p.Value
	return &v
}

// String renders the placement for display; empty placements render as "".
func (p Placement) String() string {
	if !p.Set {
		return ""
	}
	return strconv.Itoa(p.Value)
}

// MarshalJSON encodes an empty placement as "" (the not-yet-entered form state).
func (p Placement) MarshalJSON() ([]byte, error) {
	if !p.Set {
		return []byte(`""`), nil
	}
	return []byte(strconv.Itoa(p.Value)), nil
}

// UnmarshalJSON accepts null, "", a number or a numeric string.
func (p *Placement) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = Placement{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		parsed, err := ParsePlacement(raw)
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("placement must be an integer: %w", err)
	}
	*p = PlacementOf(v)
	return nil
}
