package imports

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aristath/tradejournal/internal/domain"
)

var (
	// ErrNoHeader is returned when the CSV input has no header line
	ErrNoHeader = errors.New("csv has no header row")
	// ErrMalformedCSV wraps parse errors in the uploaded text
	ErrMalformedCSV = errors.New("malformed csv")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV parses CSV text into rows keyed by the header line.
// Header cells are trimmed and a UTF-8 BOM is dropped. The delimiter is ';'
// when the header line holds more semicolons than commas (European exports),
// ',' otherwise. Short rows simply lack the missing keys; extra cells are ignored.
func ReadCSV(r io.Reader) ([]domain.RawRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrMalformedCSV, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	rows := make([]domain.RawRow, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedCSV, err)
		}

		row := make(domain.RawRow, len(header))
		for i, key := range header {
			if key == "" || i >= len(record) {
				continue
			}
			// Duplicate headers: the first column wins
			if _, exists := row[key]; !exists {
				row[key] = record[i]
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}
