package lb_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"letterbox/internal/encryption"
	"letterbox/internal/lb"
	"letterbox/internal/testutil"
)

// brokenCipher fails every encryption.
type brokenCipher struct{ lb.FieldCipher }

func (brokenCipher) Encrypt(string) (string, error) {
	return "", errors.New("entropy source unavailable")
}

func TestCapsuleRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	newCapsule := func(id, message string) *lb.Capsule {
		return &lb.Capsule{ID: id, Title: "t", Message: message, OpenAt: now.Add(time.Hour), CreatedAt: now}
	}

	t.Run("envelope-shaped message is not encrypted again", func(t *testing.T) {
		db := testutil.NewTestDatabase(t)
		cipher := testutil.NewTestCipher(t, nil)
		repo := lb.NewCapsuleRepository(db, cipher, lb.NewNopLogger())

		envelope, _ := cipher.Encrypt("already sealed")
		created, err := repo.Create(ctx, newCapsule("c-1", envelope))
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		stored, _ := db.FindCapsuleByID(ctx, "c-1")
		if stored.Message != envelope {
			t.Errorf("stored message = %q, want the original envelope %q", stored.Message, envelope)
		}
		if created.Message != "already sealed" {
			t.Errorf("returned message = %q, want one layer of decryption", created.Message)
		}
	})

	t.Run("does not modify the caller's capsule", func(t *testing.T) {
		db := testutil.NewTestDatabase(t)
		// A nil logger is allowed.
		repo := lb.NewCapsuleRepository(db, testutil.NewTestCipher(t, nil), nil)

		c := newCapsule("c-1", "secret")
		if _, err := repo.Create(ctx, c); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if c.Message != "secret" {
			t.Errorf("caller's Message = %q, want it unchanged", c.Message)
		}
	})

	t.Run("encryption failure fails the write", func(t *testing.T) {
		db := testutil.NewTestDatabase(t)
		logger := testutil.NewRecordingLogger()
		repo := lb.NewCapsuleRepository(db, brokenCipher{testutil.NewTestCipher(t, nil)}, logger)

		_, err := repo.Create(ctx, newCapsule("c-1", "secret"))
		if err == nil || !strings.Contains(err.Error(), "entropy source unavailable") {
			t.Fatalf("Create() error = %v, want encryption error", err)
		}

		stored, _ := db.FindCapsuleByID(ctx, "c-1")
		if stored != nil {
			t.Errorf("plaintext record persisted despite encryption failure: %+v", stored)
		}
		if len(logger.Entries("ERROR")) != 1 {
			t.Errorf("logged %d errors, want 1", len(logger.Entries("ERROR")))
		}
	})
}

func TestCapsuleRepository_DecodesEveryReadPath(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDatabase(t)
	cipher := testutil.NewTestCipher(t, nil)
	repo := lb.NewCapsuleRepository(db, cipher, lb.NewNopLogger())
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	if _, err := repo.Create(ctx, &lb.Capsule{ID: "c-1", Title: "t", Message: "hello", OpenAt: now, CreatedAt: now}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	one, err := repo.Get(ctx, "c-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if one.Message != "hello" {
		t.Errorf("Get().Message = %q, want %q", one.Message, "hello")
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if all[0].Message != "hello" {
		t.Errorf("List()[0].Message = %q, want %q", all[0].Message, "hello")
	}

	raw, err := repo.RawCapsules(ctx)
	if err != nil {
		t.Fatalf("RawCapsules() error = %v", err)
	}
	if !encryption.LooksLikeEnvelope(raw[0].Message) {
		t.Errorf("RawCapsules()[0].Message = %q, want stored envelope", raw[0].Message)
	}

	missing, err := repo.Get(ctx, "missing")
	if err != nil || missing != nil {
		t.Errorf("Get(missing) = %v, %v; want nil, nil", missing, err)
	}
}

func TestCapsuleRepository_UndecryptableMessagePassesThrough(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDatabase(t)
	logger := testutil.NewRecordingLogger()
	cipher := testutil.NewTestCipher(t, logger)
	repo := lb.NewCapsuleRepository(db, cipher, logger)
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	foreign, _ := testutil.NewTestCipherWithKey(t, 0x07, nil).Encrypt("other key")
	if err := db.CreateCapsule(ctx, &lb.Capsule{ID: "c-1", Title: "t", Message: foreign, OpenAt: now, CreatedAt: now}); err != nil {
		t.Fatalf("CreateCapsule() error = %v", err)
	}

	got, err := repo.Get(ctx, "c-1")
	if err != nil {
		t.Fatalf("Get() must not fail on undecryptable data: %v", err)
	}
	if got.Message != foreign {
		t.Errorf("Message = %q, want raw stored value", got.Message)
	}
	if len(logger.Entries("WARN")) == 0 {
		t.Error("decryption failure was not logged")
	}
}
