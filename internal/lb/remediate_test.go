package lb_test

import (
	"context"
	"testing"
	"time"

	"letterbox/internal/encryption"
	"letterbox/internal/lb"
	"letterbox/internal/testutil"
)

// seedRaw inserts a capsule exactly as given, bypassing the repository codec.
func seedRaw(t *testing.T, env *testutil.ServiceEnv, id, title, message string) {
	t.Helper()
	now := env.Clock.Now()
	err := env.DB.CreateCapsule(context.Background(), &lb.Capsule{
		ID:        id,
		Title:     title,
		Message:   message,
		OpenAt:    now.Add(time.Hour),
		CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("seeding %s: %v", id, err)
	}
}

func mustEncrypt(t *testing.T, c lb.FieldCipher, s string) string {
	t.Helper()
	out, err := c.Encrypt(s)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	return out
}

func TestLBService_Remediate(t *testing.T) {
	ctx := context.Background()

	t.Run("three record scenario", func(t *testing.T) {
		env := testutil.NewServiceEnv(t)
		foreign := testutil.NewTestCipherWithKey(t, 0x07, nil)

		seedRaw(t, env, "plain", "Plain title", mustEncrypt(t, env.Cipher, "body one"))
		seedRaw(t, env, "ours", mustEncrypt(t, env.Cipher, "Our title"), mustEncrypt(t, env.Cipher, "body two"))
		seedRaw(t, env, "theirs", mustEncrypt(t, foreign, "Lost title"), mustEncrypt(t, env.Cipher, "body three"))

		report, err := env.Service.Remediate(ctx, lb.RemediateOptions{})
		if err != nil {
			t.Fatalf("Remediate() error = %v", err)
		}

		if report.Total != 3 || report.AlreadyClean != 1 || report.Fixed != 1 || report.Failed != 1 {
			t.Errorf("report = %+v, want total 3, clean 1, fixed 1, failed 1", report)
		}
		if len(report.FailedIDs) != 1 || report.FailedIDs[0] != "theirs" {
			t.Errorf("FailedIDs = %v, want [theirs]", report.FailedIDs)
		}
		if len(report.Guidance) == 0 {
			t.Error("Guidance is empty although records failed")
		}

		ours, _ := env.DB.FindCapsuleByID(ctx, "ours")
		if ours.Title != "Our title" {
			t.Errorf("fixed title = %q, want %q", ours.Title, "Our title")
		}
		theirs, _ := env.DB.FindCapsuleByID(ctx, "theirs")
		if theirs.Title != lb.UntitledLetter {
			t.Errorf("failed title = %q, want %q", theirs.Title, lb.UntitledLetter)
		}
		if got := env.Cipher.Decrypt(theirs.Message); got != "body three" {
			t.Errorf("message of failed-title record = %q, want it untouched", got)
		}
	})

	t.Run("messages are brought under the current key", func(t *testing.T) {
		env := testutil.NewServiceEnv(t)
		foreign := testutil.NewTestCipherWithKey(t, 0x07, nil)

		seedRaw(t, env, "plaintext-message", "t", "written before encryption existed")
		seedRaw(t, env, "foreign-message", "t", mustEncrypt(t, foreign, "unrecoverable"))

		report, err := env.Service.Remediate(ctx, lb.RemediateOptions{})
		if err != nil {
			t.Fatalf("Remediate() error = %v", err)
		}
		if report.Fixed != 1 || report.Failed != 1 {
			t.Errorf("report = %+v, want fixed 1, failed 1", report)
		}

		plain, _ := env.DB.FindCapsuleByID(ctx, "plaintext-message")
		if !encryption.LooksLikeEnvelope(plain.Message) {
			t.Errorf("plaintext message not encrypted: %q", plain.Message)
		}
		if got := env.Cipher.Decrypt(plain.Message); got != "written before encryption existed" {
			t.Errorf("encrypted message decrypts to %q", got)
		}

		lost, _ := env.DB.FindCapsuleByID(ctx, "foreign-message")
		if got := env.Cipher.Decrypt(lost.Message); got != lb.UnreadableMessage {
			t.Errorf("unrecoverable message = %q, want %q", got, lb.UnreadableMessage)
		}
	})

	t.Run("message under the active key is left as stored", func(t *testing.T) {
		env := testutil.NewServiceEnv(t)
		envelope := mustEncrypt(t, env.Cipher, "still readable")
		seedRaw(t, env, "current", "Plain title", envelope)

		report, err := env.Service.Remediate(ctx, lb.RemediateOptions{})
		if err != nil {
			t.Fatalf("Remediate() error = %v", err)
		}
		if report.AlreadyClean != 1 || report.Fixed != 0 {
			t.Errorf("report = %+v, want already clean 1, fixed 0", report)
		}

		stored, _ := env.DB.FindCapsuleByID(ctx, "current")
		if stored.Message != envelope {
			t.Errorf("stored message = %q, want the original envelope %q", stored.Message, envelope)
		}
	})

	t.Run("second pass is a no-op", func(t *testing.T) {
		env := testutil.NewServiceEnv(t)
		foreign := testutil.NewTestCipherWithKey(t, 0x07, nil)

		seedRaw(t, env, "a", "Plain", "plaintext body")
		seedRaw(t, env, "b", mustEncrypt(t, env.Cipher, "Ours"), mustEncrypt(t, env.Cipher, "body"))
		seedRaw(t, env, "c", mustEncrypt(t, foreign, "Theirs"), mustEncrypt(t, foreign, "body"))
		seedRaw(t, env, "d", "Empty message", "")

		if _, err := env.Service.Remediate(ctx, lb.RemediateOptions{}); err != nil {
			t.Fatalf("first Remediate() error = %v", err)
		}
		second, err := env.Service.Remediate(ctx, lb.RemediateOptions{})
		if err != nil {
			t.Fatalf("second Remediate() error = %v", err)
		}

		if second.Fixed != 0 || second.Failed != 0 || second.AlreadyClean != second.Total || second.Total != 4 {
			t.Errorf("second pass report = %+v, want everything already clean", second)
		}
		if second.Guidance != nil {
			t.Errorf("Guidance = %v, want none on a clean pass", second.Guidance)
		}
	})

	t.Run("dry run writes nothing", func(t *testing.T) {
		env := testutil.NewServiceEnv(t)
		encryptedTitle := mustEncrypt(t, env.Cipher, "Ours")
		seedRaw(t, env, "a", encryptedTitle, "plaintext body")

		var progress []int
		report, err := env.Service.Remediate(ctx, lb.RemediateOptions{
			DryRun:   true,
			Progress: func(done, total int) { progress = append(progress, done) },
		})
		if err != nil {
			t.Fatalf("Remediate() error = %v", err)
		}
		if !report.DryRun || report.Fixed != 1 {
			t.Errorf("report = %+v, want dry run with fixed 1", report)
		}
		if len(progress) != 1 || progress[0] != 1 {
			t.Errorf("progress calls = %v, want [1]", progress)
		}

		stored, _ := env.DB.FindCapsuleByID(ctx, "a")
		if stored.Title != encryptedTitle || stored.Message != "plaintext body" {
			t.Error("dry run modified the stored record")
		}
	})

	t.Run("cancelled context stops the pass", func(t *testing.T) {
		env := testutil.NewServiceEnv(t)
		seedRaw(t, env, "a", "t", "plaintext body")

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		if _, err := env.Service.Remediate(cancelled, lb.RemediateOptions{}); err == nil {
			t.Fatal("Remediate() expected error for cancelled context")
		}

		stored, _ := env.DB.FindCapsuleByID(ctx, "a")
		if stored.Message != "plaintext body" {
			t.Error("cancelled pass modified a record")
		}
	})
}
