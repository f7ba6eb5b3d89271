package parquet

import (
	"fmt"
	"os"

	"github.com/xitongsys/parquet-go-source/local"
	pqformat "github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"
)

// parallelism is the number of goroutines parquet-go uses per file.
const parallelism = 4

// ReadUniverse reads every row of a universe snapshot. A missing file is
// reported with an error satisfying errors.Is(err, fs.ErrNotExist).
func ReadUniverse(fn string) ([]UniverseRow, error) {
	return readAll[UniverseRow](fn)
}

// ReadHistory reads every row of a history ledger.
func ReadHistory(fn string) ([]HistoryRow, error) {
	return readAll[HistoryRow](fn)
}

// WriteUniverse writes a snappy-compressed universe snapshot.
func WriteUniverse(fn string, rows []UniverseRow) error {
	return writeAll(fn, rows)
}

// WriteHistory writes a snappy-compressed history ledger.
func WriteHistory(fn string, rows []HistoryRow) error {
	return writeAll(fn, rows)
}

func readAll[T any](fn string) ([]T, error) {
	if _, err := os.Stat(fn); err != nil {
		return nil, err
	}

	fh, err := local.NewLocalFileReader(fn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fn, err)
	}
	defer fh.Close()

	pr, err := reader.NewParquetReader(fh, new(T), parallelism)
	if err != nil {
		return nil, fmt.Errorf("read parquet footer %s: %w", fn, err)
	}
	defer pr.ReadStop()

	rows := make([]T, int(pr.GetNumRows()))
	if len(rows) == 0 {
		return rows, nil
	}
	if err := pr.Read(&rows); err != nil {
		return nil, fmt.Errorf("read parquet rows %s: %w", fn, err)
	}

	return rows, nil
}

func writeAll[T any](fn string, rows []T) error {
	fh, err := local.NewLocalFileWriter(fn)
	if err != nil {
		return fmt.Errorf("create %s: %w", fn, err)
	}
	defer fh.Close()

	pw, err := writer.NewParquetWriter(fh, new(T), parallelism)
	if err != nil {
		return fmt.Errorf("parquet writer %s: %w", fn, err)
	}

	pw.RowGroupSize = 128 * 1024 * 1024 // 128M
	pw.PageSize = 8 * 1024              // 8k
	pw.CompressionType = pqformat.CompressionCodec_SNAPPY

	for i := range rows {
		if err := pw.Write(rows[i]); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finish parquet file %s: %w", fn, err)
	}
	return nil
}
