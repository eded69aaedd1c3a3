package lb

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// maxOpenAtSkew is how far in the past an unlock time may be on create.
// Phones with drifting clocks routinely send "now" a little behind the server.
const maxOpenAtSkew = 5 * time.Minute

// allowedPhotoTypes maps accepted attachment content types to file extensions.
var allowedPhotoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// LBService is the orchestration layer behind the HTTP API and the CLI.
// It owns the letter lifecycle, device registry, notification fan-out and
// the remediation pass.
type LBService struct {
	database Database
	capsules *CapsuleRepository
	store    AttachmentStore
	notifier Notifier
	logger   Logger
	clock    Clock
	idgen    IDGenerator

	inflight sync.WaitGroup
}

// NewLBService creates a new LBService with the provided dependencies.
func NewLBService(database Database, cipher FieldCipher, store AttachmentStore, notifier Notifier, logger Logger, clock Clock, idgen IDGenerator) *LBService {
	logger = orNop(logger)
	return &LBService{
		database: database,
		capsules: NewCapsuleRepository(database, cipher, logger),
		store:    store,
		notifier: notifier,
		logger:   logger,
		clock:    clock,
		idgen:    idgen,
	}
}

// AttachmentUpload is a photo supplied on create.
type AttachmentUpload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

// CreateCapsuleParams holds the input for CreateCapsule.
type CreateCapsuleParams struct {
	Title       string
	Message     string
	OpenAt      time.Time
	Attachments []AttachmentUpload
	// SenderDeviceID is the external id of the device that wrote the letter.
	// When set, the other devices are notified after the letter is stored.
	SenderDeviceID string
}

func (p *CreateCapsuleParams) validate(now time.Time) error {
	if strings.TrimSpace(p.Title) == "" {
		return invalid("title", "is required")
	}
	if strings.TrimSpace(p.Message) == "" {
		return invalid("message", "is required")
	}
	if p.OpenAt.IsZero() {
		return invalid("openAt", "is required")
	}
	if p.OpenAt.Before(now.Add(-maxOpenAtSkew)) {
		return invalid("openAt", "must not be in the past")
	}
	if len(p.Attachments) > MaxAttachments {
		return invalid("photos", fmt.Sprintf("at most %d photos are allowed", MaxAttachments))
	}
	return nil
}

// CreateCapsule stores a new letter and returns its decoded view.
// Attachments are uploaded first; a failed upload fails the whole create.
func (s *LBService) CreateCapsule(ctx context.Context, params CreateCapsuleParams) (*Capsule, error) {
	now := s.clock.Now()
	if err := params.validate(now); err != nil {
		return nil, err
	}

	capsule := &Capsule{
		ID:        s.idgen.New(),
		Title:     strings.TrimSpace(params.Title),
		Message:   params.Message,
		OpenAt:    params.OpenAt.UTC(),
		CreatedAt: now,
	}

	attachments, err := s.uploadAttachments(ctx, capsule.ID, params.Attachments)
	if err != nil {
		return nil, err
	}
	capsule.Attachments = attachments

	created, err := s.capsules.Create(ctx, capsule)
	if err != nil {
		s.discardAttachments(attachments)
		return nil, err
	}

	s.logger.Info("letter created", "id", created.ID, "open_at", created.OpenAt.Format(time.RFC3339), "photos", len(created.Attachments))

	if params.SenderDeviceID != "" {
		s.dispatch(params.SenderDeviceID, letterNotification(created))
	}

	return created, nil
}

// uploadAttachments pushes each photo to the store in order.
func (s *LBService) uploadAttachments(ctx context.Context, capsuleID string, uploads []AttachmentUpload) ([]Attachment, error) {
	if len(uploads) == 0 {
		return []Attachment{}, nil
	}

	attachments := make([]Attachment, 0, len(uploads))
	for i, up := range uploads {
		body, contentType, err := sniffPhoto(up)
		if err != nil {
			s.discardAttachments(attachments)
			return nil, err
		}

		key := fmt.Sprintf("letters/%s/%d-%s%s", capsuleID, i, s.idgen.New(), allowedPhotoTypes[contentType])
		url, err := s.store.Put(ctx, key, body, up.Size, contentType)
		if err != nil {
			s.discardAttachments(attachments)
			return nil, fmt.Errorf("uploading photo %d: %w", i+1, err)
		}
		attachments = append(attachments, Attachment{RemoteURL: url, StorageKey: key})
		s.logger.Debug("photo uploaded", "key", key, "size", up.Size)
	}
	return attachments, nil
}

// sniffPhoto checks the upload is one of the accepted image types.
// The returned reader replays the sniffed prefix.
func sniffPhoto(up AttachmentUpload) (io.Reader, string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(up.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, "", fmt.Errorf("reading photo %q: %w", up.Filename, err)
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	if _, ok := allowedPhotoTypes[contentType]; !ok {
		return nil, "", invalid("photos", fmt.Sprintf("%q is not a jpg, png, gif or webp image", up.Filename))
	}
	return io.MultiReader(bytes.NewReader(head), up.Body), contentType, nil
}

// discardAttachments deletes uploaded objects after a failed create. Best effort.
func (s *LBService) discardAttachments(attachments []Attachment) {
	for _, a := range attachments {
		if err := s.store.Delete(context.Background(), a.StorageKey); err != nil {
			s.logger.Warn("failed to delete orphaned photo", "key", a.StorageKey, "error", err)
		}
	}
}

// GetCapsule returns the decoded capsule with the given ID.
func (s *LBService) GetCapsule(ctx context.Context, id string) (*Capsule, error) {
	capsule, err := s.capsules.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if capsule == nil {
		return nil, fmt.Errorf("letter %s: %w", id, ErrNotFound)
	}
	return capsule, nil
}

// ListCapsules returns every letter, soonest-unlockable first. Listing never opens anything.
func (s *LBService) ListCapsules(ctx context.Context) ([]*Capsule, error) {
	return s.capsules.List(ctx)
}

// DeleteCapsule removes a letter regardless of its state.
// Its photos are removed from the store afterwards; failures there are only logged.
func (s *LBService) DeleteCapsule(ctx context.Context, id string) error {
	existing, err := s.database.FindCapsuleByID(ctx, id)
	if err != nil {
		return fmt.Errorf("finding letter: %w", err)
	}
	if existing == nil {
		return fmt.Errorf("letter %s: %w", id, ErrNotFound)
	}

	deleted, err := s.database.DeleteCapsule(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting letter: %w", err)
	}
	if !deleted {
		return fmt.Errorf("letter %s: %w", id, ErrNotFound)
	}

	for _, a := range existing.Attachments {
		if err := s.store.Delete(ctx, a.StorageKey); err != nil {
			s.logger.Warn("failed to delete photo", "id", id, "key", a.StorageKey, "error", err)
		}
	}

	s.logger.Info("letter deleted", "id", id)
	return nil
}

// Wait blocks until all in-flight notification dispatches have finished.
func (s *LBService) Wait() {
	s.inflight.Wait()
}
