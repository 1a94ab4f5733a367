package export

import (
	"encoding/csv"
	"io"
)

// BOM is the UTF-8 byte order mark, for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes the sheet as CSV: BOM, header, items, a blank row, then the
// totals block as two-column rows.
func WriteCSV(w io.Writer, s *Sheet) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(s.Header); err != nil {
		return err
	}
	for _, row := range s.Items {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{}); err != nil {
		return err
	}
	for _, kv := range s.Summary {
		if err := cw.Write([]string{kv[0], kv[1]}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
