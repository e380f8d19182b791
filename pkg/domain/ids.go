// Package domain provides type-safe identifiers shared across layers.
package domain

import (
	"github.com/google/uuid"

	dErrors "regdesk/pkg/domain-errors"
)

// RegistrantID identifies a stored registration. It is assigned once at
// creation and never changes.
type RegistrantID uuid.UUID

// NewRegistrantID generates a fresh random identifier.
func NewRegistrantID() RegistrantID {
	return RegistrantID(uuid.New())
}

// ParseRegistrantID is used at trust boundaries (path params, CLI flags).
// Malformed and nil values are rejected with CodeInvalidInput so callers
// answer 400 instead of querying the store.
func ParseRegistrantID(s string) (RegistrantID, error) {
	id, err := parseUUID(s, "registrant ID")
	return RegistrantID(id), err
}

func (id RegistrantID) String() string { return uuid.UUID(id).String() }

func (id RegistrantID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// MarshalText lets RegistrantID serialize as its canonical string form in JSON.
func (id RegistrantID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText parses the canonical string form.
func (id *RegistrantID) UnmarshalText(text []byte) error {
	parsed, err := ParseRegistrantID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	if id == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	return id, nil
}
