package coverage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/sbfl/pkg/textutil"
)

// DefaultExtension is the record file extension matched by default.
const DefaultExtension = ".txt"

// Sentinel errors for aggregation.
var (
	// ErrNegativeForcedFailures indicates a negative forced-failure count.
	ErrNegativeForcedFailures = errors.New("forced failure count must not be negative")
	// ErrRecordTooLarge indicates a record file above the configured size limit.
	ErrRecordTooLarge = errors.New("record file exceeds size limit")
	// ErrBinaryRecord indicates a matched file that holds binary data.
	ErrBinaryRecord = errors.New("record file is binary")
)

// Aggregator scans a directory of record files and builds a Table.
//
// Files are visited in lexicographic order of their names. That order decides
// which records the forced-failure policy overrides, so it is fixed regardless
// of the worker count.
type Aggregator struct {
	extension     string
	workers       int
	maxRecordSize int64
	logger        *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithExtension sets the file extension filter (compared case-insensitively).
func WithExtension(ext string) Option {
	return func(a *Aggregator) {
		if ext != "" {
			a.extension = ext
		}
	}
}

// WithWorkers sets the number of concurrent file readers. Values below 2 read sequentially.
func WithWorkers(n int) Option {
	return func(a *Aggregator) { a.workers = n }
}

// WithMaxRecordSize skips record files larger than n bytes. Zero disables the limit.
func WithMaxRecordSize(n int64) Option {
	return func(a *Aggregator) { a.maxRecordSize = n }
}

// WithLogger sets the logger. Nil keeps slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAggregator creates an Aggregator with the given options.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{
		extension: DefaultExtension,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

type loadedRecord struct {
	name   string
	record Record
	err    error
}

// Aggregate scans dir and folds every readable record into a new Table.
//
// For the first forcedFailures records processed, the test result is
// overridden to failed. A missing or empty directory yields an empty table
// and no error; unreadable or malformed files are logged and skipped.
func (a *Aggregator) Aggregate(ctx context.Context, dir string, forcedFailures int) (*Table, error) {
	if forcedFailures < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeForcedFailures, forcedFailures)
	}

	table := NewTable()

	names, err := a.listRecords(dir)
	if err != nil {
		a.logger.InfoContext(ctx, "record directory unavailable", "dir", dir, "error", err)

		return table, nil
	}

	if len(names) == 0 {
		a.logger.InfoContext(ctx, "record directory is empty", "dir", dir, "extension", a.extension)

		return table, nil
	}

	loaded, err := a.load(ctx, dir, names)
	if err != nil {
		return nil, err
	}

	processed := 0

	for _, item := range loaded {
		if item.err != nil {
			table.Skipped++

			a.logSkipped(ctx, item)

			continue
		}

		passed := item.record.Passed

		a.logger.DebugContext(ctx, "reading record",
			"file", item.name, "test", item.record.TestID, "passed", passed)

		if processed < forcedFailures {
			a.logger.DebugContext(ctx, "forcing test result to failed",
				"test", item.record.TestID, "recorded", passed)

			passed = false
		}

		processed++

		table.Observe(item.record, passed)
	}

	return table, nil
}

func (a *Aggregator) logSkipped(ctx context.Context, item loadedRecord) {
	switch {
	case errors.Is(item.err, ErrEmptyRecord):
		a.logger.DebugContext(ctx, "skipping empty record", "file", item.name)
	case errors.Is(item.err, ErrMalformedHeader), errors.Is(item.err, ErrBinaryRecord):
		a.logger.DebugContext(ctx, "skipping malformed record", "file", item.name, "error", item.err)
	default:
		a.logger.WarnContext(ctx, "error reading record", "file", item.name, "error", item.err)
	}
}

// listRecords returns matching file names sorted lexicographically.
func (a *Aggregator) listRecords(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	ext := strings.ToLower(a.extension)
	names := make([]string, 0, len(entries))

	// os.ReadDir returns entries sorted by file name.
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if strings.HasSuffix(strings.ToLower(entry.Name()), ext) {
			names = append(names, entry.Name())
		}
	}

	return names, nil
}

// load reads and parses every named file. Results keep the order of names.
func (a *Aggregator) load(ctx context.Context, dir string, names []string) ([]loadedRecord, error) {
	results := make([]loadedRecord, len(names))

	readOne := func(i int) {
		path := filepath.Join(dir, names[i])
		rec, err := a.readRecord(path)
		results[i] = loadedRecord{name: names[i], record: rec, err: err}
	}

	if a.workers < 2 {
		for i := range names {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("aggregate %s: %w", dir, err)
			}

			readOne(i)
		}

		return results, nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for i := range names {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			readOne(i)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", dir, err)
	}

	return results, nil
}

func (a *Aggregator) readRecord(path string) (Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return Record{}, fmt.Errorf("open record: %w", err)
	}
	defer file.Close()

	if a.maxRecordSize > 0 {
		info, statErr := file.Stat()
		if statErr != nil {
			return Record{}, fmt.Errorf("stat record: %w", statErr)
		}

		if info.Size() > a.maxRecordSize {
			return Record{}, fmt.Errorf("%w: %d > %d bytes", ErrRecordTooLarge, info.Size(), a.maxRecordSize)
		}
	}

	reader := bufio.NewReaderSize(file, textutil.BinarySniffLength)

	binary, err := textutil.SniffBinary(reader)
	if err != nil {
		return Record{}, err
	}

	if binary {
		return Record{}, ErrBinaryRecord
	}

	err = textutil.SkipBOM(reader)
	if err != nil {
		return Record{}, err
	}

	return ParseRecord(reader)
}
