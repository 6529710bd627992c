package fileio

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Workbook is a read-only view over a spreadsheet: named sheets of string cells.
// The curated rules file is maintained by hand in Excel, so both .xlsx and the
// legacy .xls container have to be accepted.
type Workbook interface {
	SheetNames() []string
	// Rows returns all rows of the named sheet, or nil if the sheet is absent.
	Rows(sheet string) ([][]string, error)
	Close() error
}

// OpenWorkbook picks a parser by extension.
func OpenWorkbook(path string) (Workbook, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return openXLSX(path)
	case ".xls":
		return openXLS(path)
	default:
		return nil, fmt.Errorf("unsupported workbook: %s", path)
	}
}
