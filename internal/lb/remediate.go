package lb

import (
	"context"
	"fmt"
)

const (
	// UntitledLetter replaces titles that cannot be decrypted with the current key.
	UntitledLetter = "Untitled Letter"

	// UnreadableMessage replaces message bodies that cannot be decrypted with the current key.
	UnreadableMessage = "This letter could not be recovered."
)

// remediationGuidance lists the usual reasons a field fails to decrypt.
var remediationGuidance = []string{
	"the encryption key changed since the letter was written",
	"the data was encrypted under a different key (for example an ephemeral key of an earlier process)",
	"the stored ciphertext is corrupted",
}

// RemediationReport summarizes a remediation pass.
type RemediationReport struct {
	Total        int      `json:"total"`
	Fixed        int      `json:"fixed"`
	AlreadyClean int      `json:"alreadyClean"`
	Failed       int      `json:"failed"`
	FailedIDs    []string `json:"failedIds"`
	Guidance     []string `json:"guidance,omitempty"`
	DryRun       bool     `json:"dryRun"`
}

// RemediateOptions controls a remediation pass.
type RemediateOptions struct {
	// DryRun computes the report without writing anything.
	DryRun bool
	// Progress, if set, is called after each record.
	Progress func(done, total int)
}

type fieldOutcome int

const (
	fieldClean fieldOutcome = iota
	fieldFixed
	fieldFailed
)

// Remediate normalizes every stored capsule to the current at-rest scheme:
// plaintext title, message encrypted under the current key.
// A message that already decrypts under the active key is left as stored
// and counted as already clean; only plaintext or undecryptable messages
// are rewritten.
//
// Records are processed one by one with direct field updates and no
// surrounding transaction, so an interrupted pass can simply be run again.
// A second pass over repaired data reports every record as already clean.
func (s *LBService) Remediate(ctx context.Context, opts RemediateOptions) (*RemediationReport, error) {
	capsules, err := s.capsules.RawCapsules(ctx)
	if err != nil {
		return nil, err
	}

	report := &RemediationReport{Total: len(capsules), FailedIDs: []string{}, DryRun: opts.DryRun}
	s.logger.Info("remediation started", "total", report.Total, "dry_run", opts.DryRun)

	for i, c := range capsules {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("remediation interrupted after %d of %d letters: %w", i, report.Total, err)
		}

		titleOutcome, err := s.remediateTitle(ctx, c, opts.DryRun)
		if err != nil {
			return report, err
		}
		messageOutcome, err := s.remediateMessage(ctx, c, opts.DryRun)
		if err != nil {
			return report, err
		}

		switch {
		case titleOutcome == fieldFailed || messageOutcome == fieldFailed:
			report.Failed++
			report.FailedIDs = append(report.FailedIDs, c.ID)
		case titleOutcome == fieldFixed || messageOutcome == fieldFixed:
			report.Fixed++
		default:
			report.AlreadyClean++
		}

		if opts.Progress != nil {
			opts.Progress(i+1, report.Total)
		}
	}

	if report.Failed > 0 {
		report.Guidance = append([]string(nil), remediationGuidance...)
	}

	s.logger.Info("remediation complete",
		"total", report.Total,
		"fixed", report.Fixed,
		"already_clean", report.AlreadyClean,
		"failed", report.Failed,
	)
	return report, nil
}

// remediateTitle brings a title back to plaintext.
func (s *LBService) remediateTitle(ctx context.Context, c *Capsule, dryRun bool) (fieldOutcome, error) {
	if !s.capsules.cipher.IsEnvelope(c.Title) {
		return fieldClean, nil
	}

	value := UntitledLetter
	outcome := fieldFailed
	if plaintext, ok := s.recover(c.Title); ok {
		value = plaintext
		outcome = fieldFixed
	}

	if outcome == fieldFailed {
		s.logger.Warn("title could not be decrypted, replacing with placeholder", "id", c.ID)
	} else {
		s.logger.Info("title decrypted", "id", c.ID)
	}

	if !dryRun {
		if err := s.database.UpdateCapsuleTitleRaw(ctx, c.ID, value); err != nil {
			return outcome, fmt.Errorf("updating title of %s: %w", c.ID, err)
		}
	}
	return outcome, nil
}

// remediateMessage brings a message to "encrypted under the current key".
func (s *LBService) remediateMessage(ctx context.Context, c *Capsule, dryRun bool) (fieldOutcome, error) {
	if c.Message == "" {
		return fieldClean, nil
	}

	var plaintext string
	outcome := fieldFixed
	if s.capsules.cipher.IsEnvelope(c.Message) {
		if _, ok := s.recover(c.Message); ok {
			return fieldClean, nil
		}
		s.logger.Warn("message could not be decrypted, replacing with placeholder", "id", c.ID)
		plaintext = UnreadableMessage
		outcome = fieldFailed
	} else {
		s.logger.Info("plaintext message found, encrypting", "id", c.ID)
		plaintext = c.Message
	}

	if dryRun {
		return outcome, nil
	}

	encrypted, err := s.capsules.cipher.Encrypt(plaintext)
	if err != nil {
		return outcome, fmt.Errorf("encrypting message of %s: %w", c.ID, err)
	}
	if err := s.database.UpdateCapsuleMessageRaw(ctx, c.ID, encrypted); err != nil {
		return outcome, fmt.Errorf("updating message of %s: %w", c.ID, err)
	}
	return outcome, nil
}

// recover decrypts an envelope-shaped value. Success requires a verified
// authentication tag; as a second guard the result must differ from the
// input and must not itself look like another envelope.
func (s *LBService) recover(value string) (string, bool) {
	plaintext, err := s.capsules.cipher.Open(value)
	if err != nil {
		return "", false
	}
	if plaintext == value || s.capsules.cipher.IsEnvelope(plaintext) {
		return "", false
	}
	return plaintext, true
}
