package export

import (
	"bytes"
	"strings"

	"roomdesk/internal/domains/booking/model"
)

const (
	csvDelimiter = ";"
	csvEOL       = "\r\n"
)

// CSV renders bookings as a semicolon-delimited document with CRLF line
// endings. Every field is double-quoted and internal quotes are doubled, so
// free-text fields can carry delimiters and line breaks safely.
func CSV(bookings []model.Booking) []byte {
	var buf bytes.Buffer

	writeCSVRow(&buf, header)

	for _, booking := range bookings {
		writeCSVRow(&buf, record(booking))
	}

	return buf.Bytes()
}

func writeCSVRow(buf *bytes.Buffer, fields []string) {
	for i, field := range fields {
		if i > 0 {
			buf.WriteString(csvDelimiter)
		}

		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(field, `"`, `""`))
		buf.WriteByte('"')
	}

	buf.WriteString(csvEOL)
}
