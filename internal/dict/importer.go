package dict

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// columnsPerRow is the fixed CSV shape: reading, word, pos_name, attr_name,
// collocation.
const columnsPerRow = 5

// Stats accumulates per-row outcomes of one import run.
type Stats struct {
	Inserted int
	Updated  int
	Skipped  int
	Errors   int
}

func (s Stats) String() string {
	return fmt.Sprintf("inserted=%d, updated=%d, skipped=%d, errors=%d",
		s.Inserted, s.Updated, s.Skipped, s.Errors)
}

// Importer streams CSV rows into a WordStore. A single malformed or failing
// row never aborts the run; it is counted and logged instead.
type Importer struct {
	store  WordStore
	logger *slog.Logger
}

// NewImporter creates an Importer writing through store.
func NewImporter(store WordStore, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{store: store, logger: logger}
}

// Run imports every CSV row from r and returns the accumulated outcome
// counts. The reader is consumed as a stream; a leading UTF-8 BOM is
// skipped. Only a failure of the CSV stream itself is returned as an error;
// per-row failures end up in Stats.
func (im *Importer) Run(ctx context.Context, r io.Reader) (Stats, error) {
	reader := csv.NewReader(newBOMSkippingReader(r))
	reader.FieldsPerRecord = -1 // row arity is checked per row, not fatally

	var stats Stats
	line := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			// The row could not even be parsed. Same treatment as a
			// failing database write: count, log, continue.
			stats.Errors++
			im.logger.Error("unparseable row", "line", line, "error", err)
			continue
		}

		if len(record) != columnsPerRow {
			stats.Skipped++
			im.logger.Warn("row skipped: wrong column count",
				"line", line, "columns", len(record), "row", record)
			continue
		}

		created, err := im.writeRow(ctx, record)
		switch {
		case err == nil:
			if created {
				stats.Inserted++
			} else {
				stats.Updated++
			}
		case isUnknownPOS(err):
			stats.Skipped++
			im.logger.Warn("row skipped", "line", line, "reason", err, "row", record)
		default:
			stats.Errors++
			im.logger.Error("row failed", "line", line, "error", &RowError{Line: line, Err: err})
		}
	}

	im.logger.Info("import finished", "stats", stats.String())
	return stats, nil
}

// writeRow resolves both reference values and upserts one word. The store
// isolates each write in its own transaction, so a failure here has no
// residual effect.
func (im *Importer) writeRow(ctx context.Context, record []string) (created bool, err error) {
	reading, word := record[0], record[1]
	posName, attrName, collocation := record[2], record[3], record[4]

	posCode, err := im.store.ResolvePartOfSpeech(ctx, posName)
	if err != nil {
		return false, err
	}

	attrID, err := im.store.ResolveOrCreateAttribute(ctx, attrName)
	if err != nil {
		return false, err
	}

	return im.store.UpsertWord(ctx, Entry{
		Reading:     reading,
		Word:        word,
		PosCode:     posCode,
		AttrID:      attrID,
		Collocation: collocation,
	})
}

func isUnknownPOS(err error) bool {
	var unknown *UnknownPartOfSpeechError
	return errors.As(err, &unknown)
}
