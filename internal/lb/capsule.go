package lb

import "time"

// MaxAttachments is the number of photos a single letter may carry.
const MaxAttachments = 5

// Capsule is a letter gated by a future unlock time.
// Message is ciphertext while persisted and plaintext once decoded by
// CapsuleRepository; callers of LBService only ever see the decoded form.
type Capsule struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Message     string       `json:"message"`
	Attachments []Attachment `json:"attachments"`
	OpenAt      time.Time    `json:"openAt"`
	Opened      bool         `json:"opened"`
	OpenedAt    *time.Time   `json:"openedAt"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// Attachment is a photo uploaded alongside a letter.
type Attachment struct {
	RemoteURL  string `json:"remoteUrl"`
	StorageKey string `json:"storageKey"`
}

// State is the position of a capsule in the open-gate state machine.
type State string

const (
	// StateLocked means OpenAt is still in the future.
	StateLocked State = "locked"
	// StateUnlockedUnread means OpenAt has passed but nobody opened the letter yet.
	StateUnlockedUnread State = "unlocked"
	// StateUnlockedRead means the one-way open transition has happened.
	StateUnlockedRead State = "opened"
)

// StateAt reports the gate state of c at the given instant. It never
// mutates c: availability is a pure time comparison, while "read" comes
// only from the persisted Opened flag.
func StateAt(c *Capsule, now time.Time) State {
	switch {
	case c.Opened:
		return StateUnlockedRead
	case now.Before(c.OpenAt):
		return StateLocked
	default:
		return StateUnlockedUnread
	}
}

// clone returns a deep copy so codec steps never alias a caller's value.
func (c *Capsule) clone() *Capsule {
	cp := *c
	if c.Attachments != nil {
		cp.Attachments = append([]Attachment(nil), c.Attachments...)
	}
	if c.OpenedAt != nil {
		t := *c.OpenedAt
		cp.OpenedAt = &t
	}
	return &cp
}
