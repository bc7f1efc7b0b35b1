package dict

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
)

// posCosts is the fixed Mozc cost triple for one part-of-speech class.
// These values come from the consuming dictionary format and never change
// at runtime, which is also why unknown part-of-speech names are skipped
// instead of guessed.
type posCosts struct {
	left, right, cost string
}

var mozcCosts = map[string]posCosts{
	"固有名詞": {"1920", "1920", "4001"},
	"普通名詞": {"1851", "1851", "4000"},
}

// Exporter turns the words table into Mozc dictionary TSV lines.
type Exporter struct {
	source DictionarySource
	logger *slog.Logger
}

// NewExporter creates an Exporter reading from source.
func NewExporter(source DictionarySource, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{source: source, logger: logger}
}

// Export writes the deduplicated dictionary to w and returns the number of
// unique lines written.
//
// Output is a pure function of the table contents: rows with an unmapped
// part of speech are warned about and dropped, exact duplicate lines are
// emitted once, and the surviving lines are sorted by (reading, word) in
// byte order here rather than trusting server collation. Two exports over
// unchanged data are byte-identical.
func (ex *Exporter) Export(ctx context.Context, w io.Writer) (int, error) {
	rows, err := ex.source.FetchWordsWithPos(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch words: %w", err)
	}
	if len(rows) == 0 {
		ex.logger.Warn("no word rows found")
	}

	type tsvLine struct {
		reading, word, line string
	}

	seen := make(map[string]struct{}, len(rows))
	lines := make([]tsvLine, 0, len(rows))

	for _, row := range rows {
		costs, ok := mozcCosts[row.PosName]
		if !ok {
			ex.logger.Warn("unsupported part of speech, row skipped",
				"reading", row.Reading, "word", row.Word, "pos", row.PosName)
			continue
		}

		line := row.Reading + "\t" + costs.left + "\t" + costs.right + "\t" + costs.cost + "\t" + row.Word
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		lines = append(lines, tsvLine{reading: row.Reading, word: row.Word, line: line})
	}

	sort.Slice(lines, func(i, j int) bool {
		if lines[i].reading != lines[j].reading {
			return lines[i].reading < lines[j].reading
		}
		if lines[i].word != lines[j].word {
			return lines[i].word < lines[j].word
		}
		// Same reading and word with different pos still orders
		// deterministically.
		return lines[i].line < lines[j].line
	})

	out := bufio.NewWriter(w)
	for _, l := range lines {
		if _, err := out.WriteString(l.line + "\n"); err != nil {
			return 0, fmt.Errorf("write dictionary line: %w", err)
		}
	}
	if err := out.Flush(); err != nil {
		return 0, fmt.Errorf("flush dictionary output: %w", err)
	}

	ex.logger.Info("dictionary generated", "unique_lines", len(lines))
	return len(lines), nil
}
