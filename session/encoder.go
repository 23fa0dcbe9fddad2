package session

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCorrupt is returned by [Decode] when a persisted record cannot be
// turned back into a usable [Session].
var ErrCorrupt = errors.New("session record corrupt")

// Encode serializes s into the persisted record layout.
func Encode(s *Session) ([]byte, error) {
	if s == nil {
		return nil, errors.New("nil session")
	}
	if s.ID == "" {
		return nil, errors.New("session id required")
	}
	if !s.Role.Valid() {
		return nil, &InvalidValueError{Field: "role", Value: string(s.Role)}
	}
	if !s.Plan.Valid() {
		return nil, &InvalidValueError{Field: "plan", Value: string(s.Plan)}
	}

	return json.Marshal(s)
}

// Decode parses a persisted record. Any failure is reported as [ErrCorrupt]:
// unparseable JSON, a missing identifier, or a role or plan outside the
// canonical sets.
func Decode(data []byte) (*Session, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty record", ErrCorrupt)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if s.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrCorrupt)
	}
	if !s.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrCorrupt, s.Role)
	}
	if !s.Plan.Valid() {
		return nil, fmt.Errorf("%w: unknown plan %q", ErrCorrupt, s.Plan)
	}

	return &s, nil
}
