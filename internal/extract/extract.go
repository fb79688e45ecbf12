// Package extract pulls a question out of an uploaded ZIP archive that holds
// exactly one CSV file with an "answer" column.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	ArchiveSuffix = ".zip"
	TableSuffix   = ".csv"
	AnswerColumn  = "answer"

	DefaultMaxArchiveBytes = 10 << 20
	DefaultMaxEntryBytes   = 32 << 20
)

const utf8BOM = "\uFEFF"

// Question is the text taken from row 0 of the answer column.
type Question struct {
	Text  string
	Entry string
	Rows  int
}

type Config struct {
	MaxArchiveBytes int64
	MaxEntryBytes   int64
}

type Extractor struct {
	maxArchive int64
	maxEntry   int64
}

func New(cfg Config) *Extractor {
	if cfg.MaxArchiveBytes <= 0 {
		cfg.MaxArchiveBytes = DefaultMaxArchiveBytes
	}
	if cfg.MaxEntryBytes <= 0 {
		cfg.MaxEntryBytes = DefaultMaxEntryBytes
	}
	return &Extractor{
		maxArchive: cfg.MaxArchiveBytes,
		maxEntry:   cfg.MaxEntryBytes,
	}
}

// Extract runs the archive checks in order and stops at the first failure.
// Every returned error is an *Error.
func (e *Extractor) Extract(data []byte, filename string) (Question, error) {
	if !strings.HasSuffix(filename, ArchiveSuffix) {
		return Question{}, newError(KindUnsupportedFormat, nil)
	}
	if int64(len(data)) > e.maxArchive {
		return Question{}, newError(KindTooLarge, fmt.Errorf("archive is %d bytes, limit %d", len(data), e.maxArchive))
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Question{}, newError(KindCorruptArchive, err)
	}

	entry, err := singleTable(zr.File)
	if err != nil {
		return Question{}, err
	}

	text, rows, err := e.readAnswer(entry)
	if err != nil {
		return Question{}, err
	}
	return Question{Text: text, Entry: entry.Name, Rows: rows}, nil
}

func singleTable(files []*zip.File) (*zip.File, error) {
	var tables []*zip.File
	for _, f := range files {
		if strings.HasSuffix(f.Name, TableSuffix) {
			tables = append(tables, f)
		}
	}
	if len(tables) != 1 {
		return nil, newError(KindAmbiguousOrMissingTable, fmt.Errorf("found %d %s entries", len(tables), TableSuffix))
	}
	return tables[0], nil
}

func (e *Extractor) readAnswer(entry *zip.File) (string, int, error) {
	if entry.UncompressedSize64 > uint64(e.maxEntry) {
		return "", 0, newError(KindTooLarge, fmt.Errorf("entry %s is %d bytes, limit %d", entry.Name, entry.UncompressedSize64, e.maxEntry))
	}

	rc, err := entry.Open()
	if err != nil {
		return "", 0, newError(KindMalformedTable, fmt.Errorf("open %s: %w", entry.Name, err))
	}
	defer rc.Close()

	// The header size field can lie, so the read itself is capped too.
	raw, err := io.ReadAll(io.LimitReader(rc, e.maxEntry+1))
	if err != nil {
		return "", 0, newError(KindMalformedTable, fmt.Errorf("read %s: %w", entry.Name, err))
	}
	if int64(len(raw)) > e.maxEntry {
		return "", 0, newError(KindTooLarge, fmt.Errorf("entry %s exceeds %d bytes", entry.Name, e.maxEntry))
	}

	return answerFromCSV(raw)
}

func answerFromCSV(raw []byte) (string, int, error) {
	raw = bytes.TrimPrefix(raw, []byte(utf8BOM))

	rows, err := parseCSV(raw, false)
	if errors.Is(err, csv.ErrBareQuote) {
		// A quote inside an unquoted field is kept as text. An unterminated
		// quoted field still fails.
		rows, err = parseCSV(raw, true)
	}
	if err != nil {
		return "", 0, newError(KindMalformedTable, err)
	}
	if len(rows) == 0 {
		return "", 0, newError(KindMalformedTable, errors.New("no columns to parse from file"))
	}

	header, records := rows[0], rows[1:]
	col := -1
	for i, name := range header {
		if name == AnswerColumn {
			col = i
			break
		}
	}
	if col < 0 {
		return "", 0, newError(KindMissingColumn, nil)
	}
	if len(records) == 0 {
		return "", 0, newError(KindEmptyTable, nil)
	}

	first := records[0]
	if col >= len(first) {
		return "", len(records), nil
	}
	return first[col], len(records), nil
}

func parseCSV(raw []byte, lazyQuotes bool) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1
	r.LazyQuotes = lazyQuotes
	return r.ReadAll()
}
