package debom

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// Outcome classifies a single strip attempt against one file.
type Outcome int

const (
	// OutcomeStripped means a BOM was found and removed; the file was rewritten.
	OutcomeStripped Outcome = iota

	// OutcomeNoBOM means the file does not start with the encoding's
	// signature; it was left byte-for-byte untouched (no write occurred).
	OutcomeNoBOM

	// OutcomeUnsupportedEncoding means the configured encoding is not in
	// the supported set. This is a configuration error, invariant across
	// all files in a run, and distinct from per-file I/O failures.
	OutcomeUnsupportedEncoding

	// OutcomeIOError means reading or writing the file failed.
	OutcomeIOError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeStripped:
		return "Stripped"
	case OutcomeNoBOM:
		return "NoBOMFound"
	case OutcomeUnsupportedEncoding:
		return "UnsupportedEncoding"
	case OutcomeIOError:
		return "IOError"
	default:
		return "Unknown"
	}
}

// Result is the report for one processed file.
type Result struct {
	Path    string
	Outcome Outcome
	Err     error
}

// Summary aggregates the results of a directory run.
type Summary struct {
	Files       int // regular files processed
	Stripped    int // files rewritten with the BOM removed
	SkippedDirs int // subdirectories not descended into (non-recursive mode)
	Errors      int // per-file and per-directory failures
}

// Processor runs the read → strip → write-back pipeline against files on
// a storage engine. Processing is synchronous and single-threaded; each
// file's content is fully read into memory, exclusively owned for the
// duration of the operation, and released afterwards.
type Processor struct {
	engine  StorageEngine
	enc     Encoding
	log     zerolog.Logger
	backups *BackupStore
}

// Option configures a Processor.
type Option func(*Processor)

// WithBackup archives the original bytes of every rewritten file into the
// given store before the rewrite. A failed backup fails the file: the
// original is never rewritten without its archive copy.
func WithBackup(store *BackupStore) Option {
	return func(p *Processor) { p.backups = store }
}

// NewProcessor creates a Processor for the given engine and encoding.
// The logger is the processor's only output channel for per-file events;
// pass a configured zerolog.Logger rather than relying on global state.
func NewProcessor(engine StorageEngine, enc Encoding, logger zerolog.Logger, opts ...Option) *Processor {
	p := &Processor{engine: engine, enc: enc, log: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// File processes a single file: read it fully, strip the BOM if present,
// and rewrite it only when something was removed. On OutcomeNoBOM no write
// occurs, preserving the file's modification time.
func (p *Processor) File(ctx context.Context, path string) Result {
	data, err := p.engine.ReadFile(ctx, path)
	if err != nil {
		p.log.Error().Err(err).Str("path", path).Msg("failed to read file")
		return Result{Path: path, Outcome: OutcomeIOError, Err: err}
	}

	out, stripped, err := Strip(data, p.enc)
	if err != nil {
		p.log.Error().Err(err).Str("path", path).Msg("cannot strip")
		return Result{Path: path, Outcome: OutcomeUnsupportedEncoding, Err: err}
	}
	if !stripped {
		p.log.Debug().Str("path", path).Str("encoding", string(p.enc)).Msg("no BOM found")
		return Result{Path: path, Outcome: OutcomeNoBOM}
	}

	p.log.Info().Str("path", path).Str("encoding", string(p.enc)).Msg("BOM found")

	if p.backups != nil {
		ref, err := p.backups.Save(ctx, path, data)
		if err != nil {
			p.log.Error().Err(err).Str("path", path).Msg("failed to back up original content")
			return Result{Path: path, Outcome: OutcomeIOError, Err: err}
		}
		p.log.Debug().Str("path", path).Str("backup", ref).Msg("original content archived")
	}

	if err := p.writeBack(ctx, path, out); err != nil {
		p.log.Error().Err(err).Str("path", path).Msg("failed to rewrite file")
		return Result{Path: path, Outcome: OutcomeIOError, Err: err}
	}

	p.log.Info().Str("path", path).Int("removed", len(data)-len(out)).Msg("BOM removed")
	return Result{Path: path, Outcome: OutcomeStripped}
}

// writeBack prefers the engine's atomic rewrite when available, so an
// interruption mid-write cannot leave a truncated file behind.
func (p *Processor) writeBack(ctx context.Context, path string, data []byte) error {
	if aw, ok := p.engine.(AtomicWriter); ok {
		err := aw.WriteFileAtomic(ctx, path, data)
		if !errors.Is(err, ErrNotSupported) {
			return err
		}
	}
	return p.engine.WriteFile(ctx, path, data)
}

// Dir processes every regular file directly inside root, descending into
// subdirectories only when recursive is true. Entries that are neither
// regular files nor directories are skipped. Failures are contained to the
// file or directory they occurred in: they are logged, counted, and the
// run continues. The returned error is non-nil only if the context was
// cancelled.
func (p *Processor) Dir(ctx context.Context, root string, recursive bool) (Summary, error) {
	var sum Summary

	err := Walk(ctx, p.engine, root, recursive, func(path string, info *EntryInfo, err error) error {
		if err != nil {
			p.log.Error().Err(err).Str("path", path).Msg("failed to list directory")
			sum.Errors++
			return nil
		}
		if info.IsDir {
			if !recursive {
				p.log.Info().Str("path", path).Msg("skipping subdirectory (recursion disabled)")
				sum.SkippedDirs++
			}
			return nil
		}
		if !info.IsRegular() {
			p.log.Debug().Str("path", path).Stringer("mode", info.Mode).Msg("skipping non-regular file")
			return nil
		}

		sum.Files++
		switch res := p.File(ctx, path); res.Outcome {
		case OutcomeStripped:
			sum.Stripped++
		case OutcomeIOError, OutcomeUnsupportedEncoding:
			sum.Errors++
		}
		return nil
	})

	return sum, err
}
