// Package csvgeneric implements the generic CSV analysis operation (§6):
// unlike the fixed-dialect consolidated dump reader in internal/reader,
// this handles an arbitrary standalone UTF-8 CSV file (e.g. a
// user-supplied port or cable export) by streaming it in bounded chunks
// so a very large file never needs to be held in memory at once.
package csvgeneric

import (
	"encoding/csv"
	"io"
	"os"
)

// Result is the analyze_csv output shape (§6): the column header, the
// total data row count, and a capped preview of the first rows.
type Result struct {
	Columns     []string         `json:"columns"`
	RowCount    int              `json:"row_count"`
	PreviewData []map[string]any `json:"preview_data"`
}

// defaultChunkSize matches the streaming batch size used when the caller
// passes a non-positive chunkSize.
const defaultChunkSize = 1000

// Analyze streams filePath in batches of chunkSize rows, counting every
// data row but only materializing the first previewRows of them.
func Analyze(filePath string, chunkSize, previewRows int) (Result, error) {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	f, err := os.Open(filePath)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate ragged rows rather than failing the whole parse

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return Result{Columns: nil, RowCount: 0}, nil
		}
		return Result{}, err
	}

	result := Result{Columns: header}

	chunk := make([][]string, 0, chunkSize)
	flush := func() {
		for _, record := range chunk {
			if len(result.PreviewData) < previewRows {
				result.PreviewData = append(result.PreviewData, rowToMap(header, record))
			}
		}
		result.RowCount += len(chunk)
		chunk = chunk[:0]
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, err
		}
		chunk = append(chunk, record)
		if len(chunk) >= chunkSize {
			flush()
		}
	}
	if len(chunk) > 0 {
		flush()
	}

	return result, nil
}

// rowToMap zips a header with one record, tolerating a record shorter or
// longer than the header (missing fields map to "", extra fields are
// dropped).
func rowToMap(header, record []string) map[string]any {
	out := make(map[string]any, len(header))
	for i, col := range header {
		if i < len(record) {
			out[col] = record[i]
		} else {
			out[col] = ""
		}
	}
	return out
}
