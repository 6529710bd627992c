package fileio

import (
	excelize "github.com/xuri/excelize/v2"
)

type xlsxBook struct {
	f *excelize.File
}

func openXLSX(path string) (Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return &xlsxBook{f: f}, nil
}

func (b *xlsxBook) SheetNames() []string { return b.f.GetSheetList() }

func (b *xlsxBook) Rows(sheet string) ([][]string, error) {
	if idx, err := b.f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, nil
	}
	return b.f.GetRows(sheet)
}

func (b *xlsxBook) Close() error { return b.f.Close() }
