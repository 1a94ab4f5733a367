// Package export renders a draft's line items and totals as CSV or XLSX.
package export

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"draftly/internal/domain"
	"draftly/internal/loose"
	"draftly/internal/numeric"
	"draftly/internal/totals"
)

// Formats accepted by Render.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// columns defines the line item header row.
var columns = []string{
	"S.No",
	"Description",
	"HSN/SAC",
	"Qty",
	"Unit",
	"Unit Price",
	"Discount",
	"Tax Rate",
	"Line Tax",
	"Line Total",
}

// Sheet is a draft flattened into rows: a header, one row per item and a
// label/value block for the totals.
type Sheet struct {
	Title   string
	DocNo   string
	Header  []string
	Items   [][]string
	Summary [][2]string
}

// Build recomputes the draft's totals and flattens it into a Sheet.
func Build(draft map[string]any) *Sheet {
	d := totals.RecomputeDraft(draft)

	s := &Sheet{
		Title:  numeric.CoerceString(d["doc_type"]),
		DocNo:  numeric.CoerceString(loose.Map(d["doc_meta"])["doc_no"]),
		Header: columns,
	}
	if s.Title == "" {
		s.Title = string(domain.DocTypeQuotation)
	}

	for _, m := range loose.Maps(d["items"]) {
		s.Items = append(s.Items, itemToRow(m))
	}

	t := loose.Map(d["totals"])
	s.Summary = [][2]string{
		{"Subtotal", formatMoney(t["subtotal"])},
		{"Discount", formatMoney(t["discount_total"])},
		{"Tax", formatMoney(t["tax_total"])},
		{"Shipping", formatMoney(t["shipping"])},
		{"Round Off", formatMoney(t["round_off"])},
		{"Grand Total", formatMoney(t["grand_total"])},
		{"Currency", numeric.CoerceString(t["currency"])},
		{"Amount in Words", numeric.CoerceString(t["amount_in_words"])},
	}
	return s
}

// Render writes s in the given format.
func Render(w io.Writer, format string, s *Sheet) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, s)
	case FormatXLSX:
		return WriteXLSX(w, s)
	default:
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedExportFmt, format)
	}
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	if format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// itemToRow converts a single item to a row aligned with columns.
func itemToRow(m map[string]any) []string {
	row := make([]string, len(columns))
	row[0] = strconv.Itoa(numeric.CoerceInt(m["sno"], 0))
	row[1] = numeric.CoerceString(m["description"])
	row[2] = numeric.CoerceString(m["hsn_sac"])
	row[3] = formatNumber(m["qty"])
	row[4] = numeric.CoerceString(m["unit"])
	row[5] = formatMoney(m["unit_price"])
	row[6] = formatMoney(m["discount"])
	row[7] = formatNumber(m["tax_rate"])
	row[8] = formatMoney(m["line_tax"])
	row[9] = formatMoney(m["line_total"])
	return row
}

func formatMoney(v any) string {
	return strconv.FormatFloat(numeric.CoerceNumber(v, 0), 'f', 2, 64)
}

func formatNumber(v any) string {
	return strconv.FormatFloat(numeric.CoerceNumber(v, 0), 'f', -1, 64)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition header.
// Format: {doc_no or doc_type}_{YYYY-MM-DD}.{ext}
func BuildFilename(s *Sheet, ext string, now time.Time) string {
	base := SanitizeFilename(s.DocNo)
	if base == "" {
		base = SanitizeFilename(strings.ToLower(s.Title))
	}
	if base == "" {
		base = "draft"
	}
	return fmt.Sprintf("%s_%s.%s", base, now.Format(domain.DateLayout), ext)
}
