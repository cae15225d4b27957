package board

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IDWidth is the number of decimal digits in every generated id.
const IDWidth = 16

const idSpace = 10_000_000_000_000_000 // 10^IDWidth

// Record carries identity and timestamps shared by lists and cards.
type Record struct {
	ID        string    `json:"id" yaml:"id"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// NewID returns a fixed-width numeric id drawn from a random UUID. Ids are
// not checked against existing records.
func NewID() string {
	u := uuid.New()
	n := binary.BigEndian.Uint64(u[:8]) % idSpace
	return fmt.Sprintf("%0*d", IDWidth, n)
}

// Now returns the current UTC time at millisecond precision, matching the
// resolution of the persisted ISO-8601 timestamps.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// Factory stamps new and updated records. The zero value uses NewID and Now.
type Factory struct {
	NewID func() string
	Now   func() time.Time
}

func (f Factory) id() string {
	if f.NewID != nil {
		return f.NewID()
	}
	return NewID()
}

func (f Factory) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return Now()
}

// CreateRecord returns a record with a fresh id and CreatedAt == UpdatedAt.
func (f Factory) CreateRecord() Record {
	now := f.now()
	return Record{ID: f.id(), CreatedAt: now, UpdatedAt: now}
}

// Touch re-stamps the modification time of r.
func (f Factory) Touch(r *Record) {
	r.UpdatedAt = f.now()
}
