// Command debom detects and removes Byte Order Marks from text files,
// either a single file or a directory tree, on any registered storage
// backend.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/rclone/rclone/backend/all" // enable all rclone remote types
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nuln/debom"
	_ "github.com/nuln/debom/drivers"
)

func main() {
	if err := newRootCmd(os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	file      string
	directory string
	encoding  string
	recursive bool
	verbose   bool
	driver    string
	backupDir string
	strict    bool
}

func newRootCmd(stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "debom",
		Short: "Detect and remove Byte Order Marks (BOMs) from text files",
		Long: `debom strips the BOM signature of a chosen encoding from a single file
or from every file in a directory tree. Files without a BOM are left
byte-for-byte untouched.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, stderr)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.file, "file", "f", "", "path to a single file")
	f.StringVarP(&opts.directory, "directory", "d", "", "path to a directory to process")
	f.StringVarP(&opts.encoding, "encoding", "e", "utf-8",
		fmt.Sprintf("encoding to use (one of: %s)", strings.Join(debom.Encodings(), ", ")))
	f.BoolVarP(&opts.recursive, "recursive", "r", false, "recursively process subdirectories (only with --directory)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug-level logging")
	f.StringVar(&opts.driver, "driver", "local",
		fmt.Sprintf("storage driver (one of: %s)", strings.Join(debom.Drivers(), ", ")))
	f.StringVar(&opts.backupDir, "backup-dir", "", "archive original contents of rewritten files under this local directory")
	f.BoolVar(&opts.strict, "strict", false, "exit nonzero if any file or directory failed; by default per-file errors are only logged")

	cmd.MarkFlagsMutuallyExclusive("file", "directory")
	cmd.MarkFlagsOneRequired("file", "directory")

	return cmd
}

func run(ctx context.Context, opts *options, stderr io.Writer) error {
	logger := newLogger(stderr, opts.verbose)

	enc, err := debom.ParseEncoding(opts.encoding)
	if err != nil {
		return err
	}

	procOpts, err := backupOption(opts.backupDir)
	if err != nil {
		return err
	}

	if opts.file != "" {
		return runFile(ctx, opts, enc, logger, procOpts)
	}
	return runDir(ctx, opts, enc, logger, procOpts)
}

func runFile(ctx context.Context, opts *options, enc debom.Encoding, logger zerolog.Logger, procOpts []debom.Option) error {
	root, rel := splitTarget(opts.driver, opts.file)
	engine, err := debom.Open(&debom.Config{Type: opts.driver, BasePath: root})
	if err != nil {
		return err
	}

	info, err := engine.Stat(ctx, rel)
	if err != nil {
		return fmt.Errorf("file not found: %s: %w", opts.file, err)
	}
	if info.IsDir {
		return fmt.Errorf("%s: %w (use --directory)", opts.file, debom.ErrIsDir)
	}
	if !info.IsRegular() {
		return fmt.Errorf("not a regular file: %s", opts.file)
	}

	proc := debom.NewProcessor(engine, enc, logger, procOpts...)
	res := proc.File(ctx, rel)
	if opts.strict && res.Err != nil {
		return fmt.Errorf("processing %s failed: %w", opts.file, res.Err)
	}
	return nil
}

func runDir(ctx context.Context, opts *options, enc debom.Encoding, logger zerolog.Logger, procOpts []debom.Option) error {
	engine, err := debom.Open(&debom.Config{Type: opts.driver, BasePath: opts.directory})
	if err != nil {
		return err
	}

	info, err := engine.Stat(ctx, ".")
	if err != nil {
		return fmt.Errorf("directory not found: %s: %w", opts.directory, err)
	}
	if !info.IsDir {
		return fmt.Errorf("%s: %w", opts.directory, debom.ErrNotDir)
	}

	proc := debom.NewProcessor(engine, enc, logger, procOpts...)
	sum, err := proc.Dir(ctx, ".", opts.recursive)
	if err != nil {
		return err
	}

	logger.Info().
		Int("files", sum.Files).
		Int("stripped", sum.Stripped).
		Int("skippedDirs", sum.SkippedDirs).
		Int("errors", sum.Errors).
		Msg("run complete")

	if opts.strict && sum.Errors > 0 {
		return fmt.Errorf("%d entries failed", sum.Errors)
	}
	return nil
}

// backupOption builds the processor options for --backup-dir. Backups are
// always archived on the local filesystem, even when stripping a remote.
func backupOption(dir string) ([]debom.Option, error) {
	if dir == "" {
		return nil, nil
	}
	engine, err := debom.Open(&debom.Config{Type: "local", BasePath: dir})
	if err != nil {
		return nil, fmt.Errorf("opening backup directory: %w", err)
	}
	return []debom.Option{debom.WithBackup(debom.NewBackupStore(engine))}, nil
}

// splitTarget splits a file target into the engine root and the path
// relative to it. Remote specs keep their "remote:" prefix on the root
// side so the driver can dial the right backend.
func splitTarget(driver, target string) (root, rel string) {
	if driver == "local" {
		return filepath.Dir(target), filepath.Base(target)
	}
	if i := strings.LastIndexByte(target, '/'); i >= 0 {
		return target[:i], target[i+1:]
	}
	if i := strings.IndexByte(target, ':'); i >= 0 {
		return target[:i+1], target[i+1:]
	}
	return ".", target
}

func newLogger(out io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}
