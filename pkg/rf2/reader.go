package rf2

import (
	"encoding/csv"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/agentstation/inferdelta/pkg/constants"
	"github.com/agentstation/inferdelta/pkg/errors"
)

// ReadStats describes what a read kept and skipped.
type ReadStats struct {
	Rows     int // data rows seen
	Active   int // rows kept
	Inactive int // rows skipped because active != "1"
}

// ReadFile reads the active rows of the release file at path.
func ReadFile(path string) ([]Row, ReadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ReadStats{}, errors.WrapIO("open", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	return Read(f, path)
}

// Read reads the active rows from r. The name is used in error messages.
// Inactive rows are skipped entirely.
func Read(r io.Reader, name string) ([]Row, ReadStats, error) {
	var stats ReadStats

	cr := csv.NewReader(r)
	cr.Comma = constants.FieldSeparator
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, stats, errors.NewParseError("rf2", name, "missing header row", err)
	}
	if err != nil {
		return nil, stats, errors.WrapParse("rf2", name, err)
	}
	if !validHeader(header) {
		return nil, stats, &errors.ParseError{
			Format:  "rf2",
			File:    name,
			Line:    1,
			Message: "unexpected header: " + strings.Join(header, ","),
		}
	}

	var rows []Row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stats, errors.WrapParse("rf2", name, err)
		}
		line, _ := cr.FieldPos(0)

		row, err := NewRow(record)
		if err != nil {
			return nil, stats, &errors.ParseError{
				Format:  "rf2",
				File:    name,
				Line:    line,
				Message: err.Error(),
				Err:     err,
			}
		}
		stats.Rows++
		if !row.IsActive() {
			stats.Inactive++
			continue
		}
		stats.Active++
		rows = append(rows, row)
	}

	return rows, stats, nil
}

// validHeader compares column names case-insensitively; a UTF-8 BOM is tolerated.
func validHeader(header []string) bool {
	if len(header) != len(Header) {
		return false
	}
	got := slices.Clone(header)
	got[0] = strings.TrimPrefix(got[0], "\ufeff")
	for i := range Header {
		if !strings.EqualFold(strings.TrimSpace(got[i]), Header[i]) {
			return false
		}
	}
	return true
}
