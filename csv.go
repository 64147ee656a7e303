// Copyright 2020, 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package sheetcursor

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"unicode"

	"github.com/expr-lang/expr"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// EncName is the default CSV charset, taken from $LANG.
var EncName = "utf-8"

func init() {
	EncName = os.Getenv("LANG")
	if i := strings.IndexByte(EncName, '.'); i >= 0 {
		EncName = strings.ToLower(EncName[i+1:])
	} else {
		EncName = ""
	}
	if EncName == "" {
		EncName = "utf-8"
	}
}

// GetEncoding returns the named encoding, nil for UTF-8.
func GetEncoding(encName string) (encoding.Encoding, error) {
	encName = strings.ToLower(encName)
	if encName == "" || encName == "utf-8" || encName == "utf8" {
		return nil, nil
	}
	enc, err := htmlindex.Get(encName)
	if err != nil {
		err = fmt.Errorf("%q: %w", encName, err)
	}
	return enc, err
}

// CsvReader reads CSV records, with the first record used as header
// by ReadEntries.
type CsvReader struct {
	*csv.Reader
	io.Closer
	header []string
}

// OpenCsv opens fn ("" or "-" is stdin) decoding it from encName,
// and guesses the field separator from the first line.
func OpenCsv(fn, encName string) (*CsvReader, error) {
	var enc encoding.Encoding
	if encName != "" {
		var err error
		if enc, err = GetEncoding(encName); err != nil {
			return nil, err
		}
	}
	fh := os.Stdin
	if !(fn == "" || fn == "-") {
		var err error
		if fh, err = os.Open(fn); err != nil {
			return nil, err
		}
	}
	cr, err := NewCsvReader(fh, enc)
	if err != nil {
		fh.Close()
		return nil, fmt.Errorf("%q: %w", fn, err)
	}
	return cr, nil
}

// NewCsvReader wraps r, decoding it with enc if not nil.
func NewCsvReader(r io.Reader, enc encoding.Encoding) (*CsvReader, error) {
	var closer io.Closer = io.NopCloser(nil)
	if c, ok := r.(io.Closer); ok {
		closer = c
	}
	if enc != nil {
		r = enc.NewDecoder().Reader(r)
	}
	br := bufio.NewReaderSize(r, 1<<20)
	b, err := br.Peek(1024)
	if err != nil && len(b) == 0 {
		return nil, err
	}
	cr := csv.NewReader(br)
	cr.Comma = guessSeparator(b)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1
	return &CsvReader{Reader: cr, Closer: closer}, nil
}

func guessSeparator(b []byte) rune {
	for _, r := range string(b) {
		if r == '"' || r == '_' || r == ' ' || unicode.IsLetter(r) || unicode.IsNumber(r) {
			continue
		}
		if r == '\n' || r == '\r' {
			break
		}
		return r
	}
	return ','
}

// Header reads the first record as header, if not read yet.
func (cr *CsvReader) Header() ([]string, error) {
	if cr.header != nil {
		return cr.header, nil
	}
	rec, err := cr.Read()
	if err != nil {
		return nil, err
	}
	cr.header = append(make([]string, 0, len(rec)), rec...)
	return cr.header, nil
}

// ReadEntries reads the next record keyed by the header, in header order.
// Missing trailing fields are empty strings.
func (cr *CsvReader) ReadEntries() ([]Entry, error) {
	header, err := cr.Header()
	if err != nil {
		return nil, err
	}
	rec, err := cr.Read()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, len(header))
	for i, k := range header {
		entries[i].Key = k
		if i < len(rec) {
			entries[i].Value = rec[i]
		} else {
			entries[i].Value = ""
		}
	}
	return entries, nil
}

// CsvFill configures FillCsv.
type CsvFill struct {
	// Title is written above the header, merged over the header's width.
	Title string
	// Exclude lists the header names to skip.
	Exclude []string
	// Header is the formatting of the header row (and the title).
	Header Format
	// Filter, if not nil, decides whether a record is written.
	Filter func([]Entry) (bool, error)
}

// FillCsv writes the CSV (header first) as a table starting at the cursor,
// and returns the rectangle holding the header and the records.
// The cursor is left at the anchor column below the table.
func FillCsv(cur *Cursor, cr *CsvReader, o CsvFill) (first, last Position, err error) {
	header, err := cr.Header()
	if err != nil {
		return first, last, fmt.Errorf("read header: %w", err)
	}
	names := make([]any, 0, len(header))
	for _, h := range header {
		if !slices.Contains(o.Exclude, h) {
			names = append(names, h)
		}
	}
	if len(names) == 0 {
		return first, last, fmt.Errorf("all columns are excluded: %w", ErrInvalidArgument)
	}
	start := cur.Position()
	if o.Title != "" {
		if err = cur.SetAndApplyFormat(o.Title, o.Header.Merge(Format{"alignment": Props{"horizontal": "center"}})); err != nil {
			return first, last, err
		}
		if len(names) > 1 {
			if err = cur.MergeCells(len(names)-1, 0); err != nil {
				return first, last, err
			}
		}
		start.Row++
		if err = cur.SetPosition(start); err != nil {
			return first, last, err
		}
	}
	first = start
	if err = cur.FillRow(names, o.Header); err != nil {
		return first, last, err
	}
	if last.Column, err = cur.IncrementColumnValue(-1, ""); err != nil {
		return first, last, err
	}
	last.Row = start.Row
	if err = cur.NextRow(1); err != nil {
		return first, last, err
	}
	for {
		entries, err := cr.ReadEntries()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return first, last, err
		}
		if o.Filter != nil {
			if ok, err := o.Filter(entries); err != nil {
				return first, last, fmt.Errorf("filter row %d: %w", cur.Position().Row, err)
			} else if !ok {
				continue
			}
		}
		if err = cur.FillRowFromMapping(entries, nil, o.Exclude...); err != nil {
			return first, last, err
		}
		last.Row = cur.Position().Row
		if err = cur.NextRow(1); err != nil {
			return first, last, err
		}
	}
	return first, last, nil
}

// NewFilter compiles a boolean expr-lang expression over the record's
// fields, e.g. `Age > "30" && Name != ""`. Field values are strings.
func NewFilter(code string, header []string) (func([]Entry) (bool, error), error) {
	env := make(map[string]any, len(header))
	for _, h := range header {
		env[h] = ""
	}
	program, err := expr.Compile(code, expr.Env(env), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", code, err)
	}
	return func(entries []Entry) (bool, error) {
		env := make(map[string]any, len(entries))
		for _, e := range entries {
			env[e.Key] = e.Value
		}
		out, err := expr.Run(program, env)
		if err != nil {
			return false, err
		}
		ok, _ := out.(bool)
		return ok, nil
	}, nil
}
