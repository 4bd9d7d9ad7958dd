package export

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/jszwec/csvutil"
)

// utf8BOM lets spreadsheet tools detect UTF-8 in author and title names.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// formatFloat avoids exponent notation for large revenue figures.
var formatFloat = csvutil.MarshalFunc(func(f float64) ([]byte, error) {
	return strconv.AppendFloat(nil, f, 'f', -1, 64), nil
})

// writeCSV writes rows with a header line and returns the row count. An
// empty slice still produces the header.
func writeCSV[T any](path string, rows []T) (n int, err error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if _, err := f.Write(utf8BOM); err != nil {
		return 0, err
	}

	w := csv.NewWriter(f)
	enc := csvutil.NewEncoder(w)
	enc.WithMarshalers(formatFloat)

	if len(rows) == 0 {
		var zero T
		err = enc.EncodeHeader(zero)
	} else {
		err = enc.Encode(rows)
	}
	if err != nil {
		return 0, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return 0, err
	}
	return len(rows), nil
}
