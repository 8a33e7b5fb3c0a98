// Package recordseal seals single-record uploads for later tamper detection.
//
// A record is one CSV row with its header, stored under an identifier such as
// a hospital number. Processing a record:
//
//  1. computes a SHA-256 fingerprint of its canonical form, without the
//     fingerprint field;
//  2. embeds the fingerprint as a field of the record;
//  3. encrypts the fingerprinted record under a fresh 256-bit key;
//  4. appends {identifier, fingerprint, ciphertext} to an append-only store.
//
// Validation drops the fingerprint field from a sealed record, recomputes the
// fingerprint and compares it to the embedded one.
//
// # Quick Start
//
//	cfg := recordseal.DefaultConfig()
//	cfg.SourceDir = "uploads"
//
//	p, err := recordseal.Open(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	sealed, err := p.Process(ctx, "H001") // reads uploads/H001.csv
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// sealed.Key is the only copy of the key unless persist_key is set.
//
//	verdict, err := p.Validate(ctx, "H001") // reads uploads/sealed/H001.csv
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(verdict.Outcome) // verified
//
// # Canonical Form
//
// Records are serialized as CSV with a header row, fields in source order,
// minimal quoting and "\n" line endings ("\r\n" with line_terminator: crlf).
// Values are kept exactly as decoded, so a record re-read from its sealed copy
// canonicalizes to the same bytes. Input that is not valid UTF-8 is decoded as
// ISO-8859-1.
//
// # Backends
//
// Records are read from a local directory or, through providers/s3, an S3
// bucket. Entries are kept in SQLite or Badger. Keys are persisted only when
// persist_key is set, in the SQLite store or, through providers/hashicorp, in
// Vault KV v2.
//
// Pipeline.Health pings every backend that implements Pinger and reports the
// pipeline unhealthy when the source or entry store is unreachable.
//
// # Errors
//
// Failures wrap the sentinel errors in this package and can be classified
// with errors.Is or the Is*Error helpers. A fingerprint mismatch is reported
// in the Verdict and is never an error.
package recordseal
