package recordseal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/hengadev/recordseal/internal/crypto"
	"github.com/hengadev/recordseal/internal/monitoring"
	"github.com/hengadev/recordseal/internal/record"
	"github.com/hengadev/recordseal/internal/sealerr"
	"github.com/sirupsen/logrus"
)

// Pipeline seals single-record uploads and checks them later.
//
// Process fingerprints a record, embeds the fingerprint, encrypts the result
// under a fresh key and appends it to the store. Validate recomputes the
// fingerprint of a sealed record with the fingerprint field excluded and
// compares it to the embedded value.
//
// A Pipeline is safe for concurrent use as long as its collaborators are.
type Pipeline struct {
	cfg    Config
	format record.Format
	cipher *crypto.Cipher

	source  Source
	store   RecordStore
	keys    KeyStore
	logger  *logrus.Logger
	metrics monitoring.MetricsCollector
	hook    monitoring.ObservabilityHook
}

// New builds a Pipeline from cfg and explicit collaborators. A source and a
// store are required. When cfg.PersistKey is set and no key store is given,
// the record store is used if it can hold keys.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	suite, err := crypto.ParseSuite(cfg.Suite)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	c, err := crypto.NewCipher(suite)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	format, err := record.ParseTerminator(cfg.LineTerminator)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	p := &Pipeline{
		cfg:     cfg,
		format:  format,
		cipher:  c,
		logger:  logrus.New(),
		metrics: &monitoring.NoOpMetricsCollector{},
		hook:    &monitoring.NoOpObservabilityHook{},
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if p.source == nil {
		return nil, fmt.Errorf("%w: a source is required", ErrInvalidConfiguration)
	}
	if p.store == nil {
		return nil, fmt.Errorf("%w: a record store is required", ErrInvalidConfiguration)
	}
	if cfg.PersistKey && p.keys == nil {
		keys, ok := p.store.(KeyStore)
		if !ok {
			return nil, fmt.Errorf("%w: persist_key is enabled but no key store is configured", ErrInvalidConfiguration)
		}
		p.keys = keys
	}

	return p, nil
}

// Config returns the validated configuration the pipeline runs with.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Process seals the record stored under the original name for identifier.
//
// The original is left untouched. The fingerprinted copy is written under the
// sealed name and, when enabled, the ciphertext under the ciphertext name. The
// store append comes last: an error from Process means nothing was appended.
func (p *Pipeline) Process(ctx context.Context, identifier string) (sealed Sealed, err error) {
	start := time.Now()
	meta := map[string]any{"identifier": identifier}
	p.hook.OnProcessStart(ctx, "process", meta)
	defer func() {
		p.finish(ctx, "process", monitoring.MetricProcessDuration, start, err, meta)
	}()

	if err := validateIdentifier(identifier); err != nil {
		return Sealed{}, err
	}

	raw, err := p.source.Get(ctx, p.cfg.Layout.OriginalName(identifier))
	if err != nil {
		return Sealed{}, err
	}
	original, err := p.parseOne(raw, identifier, sealerr.Process)
	if err != nil {
		return Sealed{}, err
	}

	fingerprint, err := p.fingerprint(original)
	if err != nil {
		return Sealed{}, err
	}
	fingerprinted := original.With(p.cfg.FingerprintField, fingerprint)

	plaintext, err := record.Canonical(fingerprinted, p.format)
	if err != nil {
		return Sealed{}, fmt.Errorf("failed to %s fingerprinted record: %w", sealerr.Canonicalize, err)
	}

	key, err := crypto.GenerateKey()
	if err != nil {
		return Sealed{}, err
	}
	ciphertext, err := p.cipher.Encrypt(plaintext, key)
	if err != nil {
		return Sealed{}, err
	}

	if err := p.source.Put(ctx, p.cfg.Layout.SealedName(identifier), plaintext); err != nil {
		return Sealed{}, sealerr.NewStorageError(sealerr.Process, fmt.Errorf("failed to write sealed record: %w", err))
	}
	if p.cfg.ArchiveCiphertext {
		if err := p.source.Put(ctx, p.cfg.Layout.CiphertextName(identifier), ciphertext); err != nil {
			return Sealed{}, sealerr.NewStorageError(sealerr.Process, fmt.Errorf("failed to write ciphertext: %w", err))
		}
	}

	entryID := uuid.NewString()
	meta["entry_id"] = entryID

	if p.cfg.PersistKey {
		if err := p.keys.PutKey(ctx, entryID, identifier, key); err != nil {
			return Sealed{}, err
		}
	}

	appendedID, err := p.store.Append(ctx, Entry{
		ID:          entryID,
		Identifier:  identifier,
		Fingerprint: fingerprint,
		Ciphertext:  ciphertext,
		Suite:       string(p.cipher.Suite()),
	})
	if err != nil {
		if p.cfg.PersistKey {
			p.discardKey(ctx, entryID, identifier)
		}
		return Sealed{}, err
	}
	entryID = appendedID

	p.logger.WithFields(logrus.Fields{
		"identifier":  identifier,
		"entry_id":    entryID,
		"fingerprint": fingerprint,
		"suite":       p.cipher.Suite(),
	}).Info("record sealed")
	p.metrics.IncrementCounter(monitoring.MetricProcessTotal, nil)

	return Sealed{
		EntryID:       entryID,
		Identifier:    identifier,
		Fingerprint:   fingerprint,
		Key:           key,
		Ciphertext:    ciphertext,
		Suite:         string(p.cipher.Suite()),
		Original:      original,
		Fingerprinted: fingerprinted,
	}, nil
}

// Validate checks the sealed record stored for identifier. A changed record
// yields a Mismatch verdict and a nil error.
func (p *Pipeline) Validate(ctx context.Context, identifier string) (verdict Verdict, err error) {
	start := time.Now()
	meta := map[string]any{"identifier": identifier}
	p.hook.OnProcessStart(ctx, "validate", meta)
	defer func() {
		p.finish(ctx, "validate", monitoring.MetricValidateDuration, start, err, meta)
	}()

	if err := validateIdentifier(identifier); err != nil {
		return Verdict{}, err
	}

	raw, err := p.source.Get(ctx, p.cfg.Layout.SealedName(identifier))
	if err != nil {
		return Verdict{}, err
	}
	return p.verify(raw, identifier)
}

// Verify checks a sealed record supplied by the caller instead of the source.
func (p *Pipeline) Verify(ctx context.Context, raw []byte) (verdict Verdict, err error) {
	start := time.Now()
	meta := map[string]any{}
	p.hook.OnProcessStart(ctx, "verify", meta)
	defer func() {
		p.finish(ctx, "verify", monitoring.MetricValidateDuration, start, err, meta)
	}()

	if err := ctx.Err(); err != nil {
		return Verdict{}, err
	}
	return p.verify(raw, "")
}

func (p *Pipeline) verify(raw []byte, identifier string) (Verdict, error) {
	rec, err := p.parseOne(raw, identifier, sealerr.Validate)
	if err != nil {
		return Verdict{}, err
	}

	stored, ok := rec.Get(p.cfg.FingerprintField)
	if !ok {
		return Verdict{}, sealerr.NewMissingFieldError(identifier, p.cfg.FingerprintField, sealerr.Validate)
	}

	computed, err := p.fingerprint(rec)
	if err != nil {
		return Verdict{}, err
	}

	verdict := Verdict{
		Identifier: identifier,
		Outcome:    Mismatch,
		Stored:     stored,
		Computed:   computed,
	}
	if crypto.FingerprintsEqual(stored, computed) {
		verdict.Outcome = Verified
	}

	entry := p.logger.WithFields(logrus.Fields{
		"identifier":  identifier,
		"fingerprint": stored,
		"outcome":     verdict.Outcome.String(),
	})
	if verdict.OK() {
		entry.Info("record verified")
	} else {
		entry.WithField("computed", computed).Warn("record fingerprint mismatch")
	}
	p.metrics.IncrementCounter(monitoring.MetricValidateTotal, map[string]string{"outcome": verdict.Outcome.String()})

	return verdict, nil
}

// Reveal decrypts the latest entry stored for identifier. With a nil key the
// persisted key is used, which requires persist_key.
func (p *Pipeline) Reveal(ctx context.Context, identifier string, key []byte) (Record, error) {
	if err := validateIdentifier(identifier); err != nil {
		return Record{}, err
	}

	entry, err := p.store.Latest(ctx, identifier)
	if err != nil {
		return Record{}, err
	}

	if key == nil {
		if p.keys == nil {
			return Record{}, fmt.Errorf("%w: no key supplied for '%s' and keys are not persisted", ErrKeyUnavailable, identifier)
		}
		key, err = p.keys.GetKey(ctx, entry.ID)
		if err != nil {
			return Record{}, err
		}
	}

	// Entries keep the suite they were sealed with.
	c := p.cipher
	if entry.Suite != string(c.Suite()) {
		suite, err := crypto.ParseSuite(entry.Suite)
		if err != nil {
			return Record{}, fmt.Errorf("%w: entry '%s': %w", ErrDecryptionFailed, entry.ID, err)
		}
		if c, err = crypto.NewCipher(suite); err != nil {
			return Record{}, err
		}
	}

	plaintext, err := c.Decrypt(entry.Ciphertext, key)
	if err != nil {
		return Record{}, err
	}

	rec, err := record.ParseOne(plaintext)
	if err != nil {
		return Record{}, fmt.Errorf("%w: decrypted entry '%s' is not a record: %w", ErrDecryptionFailed, entry.ID, err)
	}

	p.logger.WithFields(logrus.Fields{
		"identifier": identifier,
		"entry_id":   entry.ID,
	}).Info("record revealed")

	return rec, nil
}

// Count returns how many times identifier has been sealed.
func (p *Pipeline) Count(ctx context.Context, identifier string) (int, error) {
	if err := validateIdentifier(identifier); err != nil {
		return 0, err
	}
	return p.store.Count(ctx, identifier)
}

// Canonical returns the canonical serialization of r in the pipeline's format.
func (p *Pipeline) Canonical(r Record) ([]byte, error) {
	return record.Canonical(r, p.format)
}

// Close flushes metrics and releases the record store.
func (p *Pipeline) Close() error {
	var errs []error
	if err := p.metrics.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("failed to flush metrics: %w", err))
	}
	if err := p.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close record store: %w", err))
	}
	return errors.Join(errs...)
}

// discardKey removes the key stored for an entry whose append failed.
func (p *Pipeline) discardKey(ctx context.Context, entryID, identifier string) {
	if err := p.keys.DeleteKey(context.WithoutCancel(ctx), entryID); err != nil {
		p.logger.WithFields(logrus.Fields{
			"identifier": identifier,
			"entry_id":   entryID,
		}).WithError(err).Warn("failed to remove key of unappended entry")
	}
}

func (p *Pipeline) parseOne(raw []byte, identifier string, action sealerr.Action) (record.Record, error) {
	records, err := record.Parse(raw)
	if err != nil {
		return record.Record{}, err
	}
	if len(records) != 1 {
		return record.Record{}, sealerr.NewRowCountError(identifier, len(records), action)
	}
	if records[0].Without(p.cfg.FingerprintField).Len() == 0 {
		return record.Record{}, sealerr.NewNoDataFieldsError(identifier, p.cfg.FingerprintField, action)
	}
	return records[0], nil
}

func (p *Pipeline) fingerprint(r record.Record) (string, error) {
	canonical, err := record.CanonicalWithout(r, p.cfg.FingerprintField, p.format)
	if err != nil {
		return "", fmt.Errorf("failed to %s record: %w", sealerr.Canonicalize, err)
	}
	return crypto.Fingerprint(canonical), nil
}

func (p *Pipeline) finish(ctx context.Context, operation, timing string, start time.Time, err error, meta map[string]any) {
	duration := time.Since(start)
	p.hook.OnProcessComplete(ctx, operation, duration, err, meta)
	p.metrics.RecordTiming(timing, duration, map[string]string{"operation": operation})
	if err != nil {
		p.metrics.IncrementCounter(monitoring.MetricErrorsTotal, map[string]string{"operation": operation})
	}
}

func validateIdentifier(identifier string) error {
	switch {
	case strings.TrimSpace(identifier) == "":
		return sealerr.NewInvalidIdentifierError(identifier, "is empty")
	case len(identifier) > MaxIdentifierLength:
		return sealerr.NewInvalidIdentifierError(identifier[:32]+"...", fmt.Sprintf("is longer than %d bytes", MaxIdentifierLength))
	case !utf8.ValidString(identifier):
		return sealerr.NewInvalidIdentifierError(identifier, "is not valid UTF-8")
	case strings.ContainsAny(identifier, "/\\\x00") || identifier == "." || identifier == "..":
		return sealerr.NewInvalidIdentifierError(identifier, "must not contain path separators")
	}
	return nil
}
