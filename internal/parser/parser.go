package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Options selects the sheet or delimiter of a source file.
type Options struct {
	// SheetName wins over SheetIndex when set.
	SheetName string
	// SheetIndex is 1-based; 0 means the first sheet.
	SheetIndex int
	// Delimiter for CSV. If 0, it is sniffed from the file.
	Delimiter rune
}

// Reader loads a rectangular grid of cells from a file.
type Reader interface {
	CanRead(filename string) bool
	Read(path string, opt Options) ([][]string, error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported survey file format")

// ReadFile selects a reader based on filename and returns the cell grid with
// trailing blank rows removed.
func ReadFile(path string, opt Options) ([][]string, error) {
	for _, r := range registry {
		if r.CanRead(path) {
			rows, err := r.Read(path, opt)
			if err != nil {
				return nil, err
			}
			return trimBlankTail(rows), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
}

// Supported reports whether any reader accepts the filename.
func Supported(path string) bool {
	for _, r := range registry {
		if r.CanRead(path) {
			return true
		}
	}
	return false
}

func trimBlankTail(rows [][]string) [][]string {
	for len(rows) > 0 && blank(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func init() {
	Register(csvReader{})
	Register(xlsxReader{})
}
