package lb

import (
	"time"

	"github.com/google/uuid"
)

// Clock is the single source of "now" for the open gate, device timestamps
// and notification bodies.
type Clock interface {
	Now() time.Time
}

// RealClock reads the wall clock in UTC at millisecond precision, the
// resolution clients send and receive openAt with.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

// IDGenerator hands out capsule and attachment IDs.
type IDGenerator interface {
	New() string
}

// UUIDGenerator issues version 7 UUIDs, so IDs sort roughly by creation time.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.Must(uuid.NewV7()).String() }
