// Package csv is a wrapper around the stdlib csv library that provides a streaming, header-indexed API
// for reading and rewriting GTFS static files.
//
// Because, of course, everything can be solved with another layer of indirection.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/jamespfennell/gtfstools/constants"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type File struct {
	name                   constants.StaticFile
	csvReader              *csv.Reader
	headerMap              map[string]int
	headerContent          []string
	rowNumber              int
	missingRequiredColumns []string
	currentRow             []string
	ioErr                  error
}

func New(name constants.StaticFile, reader io.Reader) (*File, error) {
	csvReader := BOMAwareCSVReader(reader)
	firstRow, err := csvReader.Read()
	// We don't reuse the first/header record as we keep this around
	// for writing the header of the rewritten file.
	csvReader.ReuseRecord = true
	if err == io.EOF {
		return nil, fmt.Errorf("%s: CSV file contains no rows", name)
	} else if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	m := map[string]int{}
	for i, colHeader := range firstRow {
		m[colHeader] = i
	}
	return &File{
		name:          name,
		headerMap:     m,
		headerContent: firstRow,
		csvReader:     csvReader,
	}, nil
}

func (f *File) Name() constants.StaticFile {
	return f.name
}

func (f *File) HeaderContent() []string {
	return f.headerContent
}

type RequiredColumn struct {
	i int
	f *File
}

func (f *File) RequiredColumn(s string) RequiredColumn {
	i, b := f.headerMap[s]
	if !b {
		f.missingRequiredColumns = append(f.missingRequiredColumns, s)
		i = -1
	}
	return RequiredColumn{i, f}
}

func (f *File) MissingRequiredColumns() []string {
	if len(f.missingRequiredColumns) == 0 {
		return nil
	}
	return f.missingRequiredColumns
}

// CheckRequiredColumns returns a *MissingColumnsError if any column bound with RequiredColumn
// is absent from the header. It must be called before the first NextRow.
func (f *File) CheckRequiredColumns() error {
	if missing := f.MissingRequiredColumns(); missing != nil {
		return &MissingColumnsError{File: f.name, Columns: missing}
	}
	return nil
}

// Index returns the position of the column in the header, or -1 if it is missing.
func (c RequiredColumn) Index() int {
	return c.i
}

// Read returns the value of the column in the current row. Empty values are valid.
func (c RequiredColumn) Read() string {
	if c.i < 0 {
		return ""
	}
	return c.f.currentRow[c.i]
}

type OptionalColumn struct {
	i int
	f *File
}

func (f *File) OptionalColumn(s string) OptionalColumn {
	i, b := f.headerMap[s]
	if !b {
		i = -1
	}
	return OptionalColumn{i: i, f: f}
}

func (c OptionalColumn) Read() string {
	return c.ReadOr("")
}

func (c OptionalColumn) ReadOr(s string) string {
	if c.i < 0 {
		return s
	}
	return c.f.currentRow[c.i]
}

func (f *File) NextRow() bool {
	if f.ioErr != nil {
		return false
	}
	cells, err := f.csvReader.Read()
	if err == io.EOF {
		f.currentRow = nil
		return false
	}
	if err != nil {
		f.currentRow = nil
		f.ioErr = fmt.Errorf("%s: %w", f.name, err)
		return false
	}
	f.rowNumber += 1
	if len(cells) > len(f.headerContent) {
		f.currentRow = nil
		f.ioErr = &RowTooLongError{File: f.name, Row: f.rowNumber, Fields: len(cells), HeaderFields: len(f.headerContent)}
		return false
	}
	// Trailing fields left off a row read as empty.
	for len(cells) < len(f.headerContent) {
		cells = append(cells, "")
	}
	f.currentRow = cells
	return true
}

// RowContent returns the cells of the current row.
//
// The slice is reused across rows, so callers must copy it if they need it after the next call to NextRow.
// Modifying it in place before writing it out is fine.
func (f *File) RowContent() []string {
	if f.rowNumber == 0 {
		return f.HeaderContent()
	}
	if f.currentRow == nil {
		return []string{}
	}
	return f.currentRow
}

// RowNumber returns the 1-based number of the current data row; the header is row 0.
func (f *File) RowNumber() int {
	return f.rowNumber
}

// Err returns the first error hit while reading rows, if any.
func (f *File) Err() error {
	return f.ioErr
}

type MissingColumnsError struct {
	File    constants.StaticFile
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: missing required columns %s", e.File, strings.Join(e.Columns, ", "))
}

// RowTooLongError is returned for a data row with more fields than the header.
type RowTooLongError struct {
	File         constants.StaticFile
	Row          int
	Fields       int
	HeaderFields int
}

func (e *RowTooLongError) Error() string {
	return fmt.Sprintf("%s: row %d has %d fields but the header has %d", e.File, e.Row, e.Fields, e.HeaderFields)
}

// Writer writes GTFS CSV files with minimal quoting and \n line endings.
//
// Fields starting with a space are quoted too; encoding/csv does this and readers accept it.
type Writer struct {
	name      constants.StaticFile
	csvWriter *csv.Writer
}

// NewWriter creates a writer and immediately writes the header row.
func NewWriter(name constants.StaticFile, w io.Writer, header []string) (*Writer, error) {
	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(header); err != nil {
		return nil, fmt.Errorf("%s: failed to write header: %w", name, err)
	}
	return &Writer{name: name, csvWriter: csvWriter}, nil
}

func (w *Writer) Write(cells []string) error {
	if err := w.csvWriter.Write(cells); err != nil {
		return fmt.Errorf("%s: %w", w.name, err)
	}
	return nil
}

// Flush writes any buffered data and reports the first write error encountered.
func (w *Writer) Flush() error {
	w.csvWriter.Flush()
	if err := w.csvWriter.Error(); err != nil {
		return fmt.Errorf("%s: %w", w.name, err)
	}
	return nil
}

// From: https://stackoverflow.com/a/76023436
//
// BOMAwareCSVReader will detect a UTF BOM (Byte Order Mark) at the
// start of the data and transform to UTF8 accordingly.
// If there is no BOM, it will read the data without any transformation.
//
// Rows may have any number of fields and bare quotes are kept as text; the header decides what a
// row must contain.
func BOMAwareCSVReader(reader io.Reader) *csv.Reader {
	var transformer = unicode.BOMOverride(encoding.Nop.NewDecoder())
	csvReader := csv.NewReader(transform.NewReader(reader, transformer))
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true
	return csvReader
}
