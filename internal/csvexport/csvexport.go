// Package csvexport writes spectrum records as CSV text.
//
//	Frequency[MHz], Power[dBm]
//	3456.700000, -89.100000
//	  :       :
//
// The output is encoded with Windows-31J and uses CRLF line endings.
package csvexport

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/japanese"

	"github.com/roman-kulish/spectrum-viewer/internal/spectrum"
)

const (
	// Header is the first line of every export.
	Header = "Frequency[MHz], Power[dBm]"

	// Ext is the extension of exported files.
	Ext = ".csv"

	lineEnd = "\r\n"
)

// Format returns the CSV text of r before encoding.
func Format(r *spectrum.Record) string {
	var sb strings.Builder
	sb.Grow(len(Header) + r.Len()*26)

	sb.WriteString(Header)
	sb.WriteString(lineEnd)
	for i := 0; i < r.Len(); i++ {
		fmt.Fprintf(&sb, "%f, %f", r.FrequencyAt(i), r.PowerAt(i))
		sb.WriteString(lineEnd)
	}
	return sb.String()
}

// Write writes the encoded CSV text of r to w.
func Write(w io.Writer, r *spectrum.Record) error {
	enc := japanese.ShiftJIS.NewEncoder().Writer(w)
	if _, err := io.WriteString(enc, Format(r)); err != nil {
		return fmt.Errorf("encoding %s: %w", r.Name(), err)
	}
	return nil
}

// Encode returns the encoded CSV text of r.
func Encode(r *spectrum.Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileName returns the name r is exported under.
func FileName(r *spectrum.Record) string {
	return r.Name() + Ext
}

// WriteFile exports r into dir and returns the path of the written file.
func WriteFile(dir string, r *spectrum.Record) (path string, err error) {
	data, err := Encode(r)
	if err != nil {
		return "", err
	}

	path = filepath.Join(dir, FileName(r))
	if err = os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
