package results

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/ajitpratap0/cryptogpt/internal/metrics"
	"github.com/ajitpratap0/cryptogpt/internal/paramfile"
)

// DefaultBatchSize is used when Batches is given a batch size <= 0
const DefaultBatchSize = 10

// Batches reads the result log at path lazily. Every batchSize records are
// yielded as one batch, followed by the remaining records as a final batch
// which may be empty. Blank lines are skipped.
//
// The file is opened on each iteration, so the sequence can be ranged over
// more than once. An open or parse error is yielded once and ends iteration.
func Batches(path string, batchSize int) iter.Seq2[[]Record, error] {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return func(yield func([]Record, error) bool) {
		f, err := os.Open(path) // #nosec G304 -- path is provided by the caller
		if err != nil {
			yield(nil, fmt.Errorf("failed to open result log: %w", err))
			return
		}
		defer f.Close()

		emit := func(batch []Record) bool {
			metrics.RecordResultBatch(len(batch))
			log.Debug().Str("path", path).Int("records", len(batch)).Msg("Read result batch")
			return yield(batch, nil)
		}

		reader := bufio.NewReader(f)
		batch := make([]Record, 0, batchSize)
		lineNo := 0
		for {
			line, readErr := reader.ReadBytes('\n')
			if len(line) > 0 {
				lineNo++
			}
			if len(bytes.TrimSpace(line)) > 0 {
				rec, err := paramfile.UnmarshalMap(line)
				if err != nil {
					yield(nil, fmt.Errorf("failed to parse result log %s line %d: %w", path, lineNo, err))
					return
				}
				batch = append(batch, Record(rec))
				if len(batch) == batchSize {
					if !emit(batch) {
						return
					}
					batch = make([]Record, 0, batchSize)
				}
			}

			if errors.Is(readErr, io.EOF) {
				break
			}
			if readErr != nil {
				yield(nil, fmt.Errorf("failed to read result log: %w", readErr))
				return
			}
		}

		emit(batch)
	}
}

// All collects every record of the result log
func All(path string) ([]Record, error) {
	var out []Record
	for batch, err := range Batches(path, DefaultBatchSize) {
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}
	return out, nil
}
