// Legacy .xls reader: fixes the sheet width itself and reads every cell up to it.
package fileio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	xls "github.com/extrame/xls"
)

type xlsBook struct {
	wb *xls.WorkBook
}

func openXLS(path string) (Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	// curated files come from Spanish-locale Excel installs; try the usual
	// codepages before giving up
	var wb *xls.WorkBook
	var lastErr error
	for _, ch := range []string{"windows-1252", "utf-8"} {
		wb, err = xls.OpenReader(bytes.NewReader(b), ch)
		if err == nil && wb != nil {
			lastErr = nil
			break
		}
		lastErr = err
	}
	if wb == nil {
		if lastErr == nil {
			lastErr = errors.New("xls: failed to open workbook")
		}
		return nil, fmt.Errorf("open %s: %w", path, lastErr)
	}
	return &xlsBook{wb: wb}, nil
}

func (b *xlsBook) SheetNames() []string {
	names := make([]string, 0, b.wb.NumSheets())
	for i := 0; i < b.wb.NumSheets(); i++ {
		if sh := b.wb.GetSheet(i); sh != nil {
			names = append(names, sh.Name)
		}
	}
	return names
}

func (b *xlsBook) Rows(sheet string) ([][]string, error) {
	var sh *xls.WorkSheet
	for i := 0; i < b.wb.NumSheets(); i++ {
		if s := b.wb.GetSheet(i); s != nil && s.Name == sheet {
			sh = s
			break
		}
	}
	if sh == nil {
		return nil, nil
	}

	// do not trust Row.LastCol(): probe for the real width first
	maxCols := computeMaxCols(sh)
	rows := make([][]string, 0, int(sh.MaxRow)+1)
	for i := 0; i <= int(sh.MaxRow); i++ {
		row := sh.Row(i)
		cols := make([]string, maxCols)
		if row != nil {
			for j := 0; j < maxCols; j++ {
				cols[j] = cleanCell(row.Col(j))
			}
		}
		rows = append(rows, cols)
	}
	return rows, nil
}

func (b *xlsBook) Close() error { return nil }

func computeMaxCols(sheet *xls.WorkSheet) int {
	const probeMax = 256
	maxCols := 0
	for i := 0; i <= int(sheet.MaxRow); i++ {
		r := sheet.Row(i)
		if r == nil {
			continue
		}
		for j := 0; j < probeMax; j++ {
			if cleanCell(r.Col(j)) != "" && j+1 > maxCols {
				maxCols = j + 1
			}
		}
	}
	if maxCols == 0 {
		maxCols = 1
	}
	return maxCols
}

func cleanCell(v string) string {
	return strings.TrimSpace(strings.ReplaceAll(v, " ", " "))
}
