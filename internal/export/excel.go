package export

import (
	"fmt"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Заказы"

var baseHeaders = []string{"Дата", "Имя", "Фамилия", "Телефон", "Username"}

const (
	itemNameHeader = "Название товара"
	itemQtyHeader  = "Количество товара"
)

// OrderRow is one checkout event to append to the workbook.
type OrderRow struct {
	Date      string
	FirstName string
	LastName  string
	Phone     string
	Username  string
	Items     []Item
}

// Item is a line item cell pair: the product name and its quantity.
type Item struct {
	ProductName string
	Quantity    int
}

// ExcelExporter keeps an append-only workbook with one row per order. The
// header row widens as orders carry more line items than previously seen;
// earlier rows keep blank cells in the new columns.
type ExcelExporter struct {
	path string
	mu   sync.Mutex
}

// NewExcelExporter creates an exporter writing to path.
func NewExcelExporter(path string) *ExcelExporter {
	return &ExcelExporter{path: path}
}

// FilePath ensures the workbook exists (creating an empty templated one if
// absent) and returns its path for download.
func (e *ExcelExporter) FilePath() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureFile(); err != nil {
		return "", err
	}
	return e.path, nil
}

// Append adds one row for a completed order, widening the header row first
// when the order carries more line items than the current header covers.
func (e *ExcelExporter) Append(row OrderRow) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureFile(); err != nil {
		return err
	}

	f, err := excelize.OpenFile(e.path)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return err
	}

	headerWidth := 0
	if len(rows) > 0 {
		headerWidth = len(rows[0])
	}
	needed := len(baseHeaders) + 2*len(row.Items)
	if needed > headerWidth {
		if err := e.extendHeader(f, headerWidth, needed); err != nil {
			return err
		}
	}

	next := len(rows) + 1
	values := []interface{}{row.Date, row.FirstName, row.LastName, row.Phone, row.Username}
	for _, item := range row.Items {
		values = append(values, item.ProductName, fmt.Sprintf("%d шт", item.Quantity))
	}
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, next)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			return err
		}
	}

	return f.Save()
}

// extendHeader labels the columns in (from, to] with alternating item header
// pairs. Columns before from are left alone so earlier labels stay intact.
func (e *ExcelExporter) extendHeader(f *excelize.File, from, to int) error {
	style, err := headerStyle(f)
	if err != nil {
		return err
	}
	for col := from + 1; col <= to; col++ {
		label := itemNameHeader
		if (col-len(baseHeaders))%2 == 0 {
			label = itemQtyHeader
		}
		cell, err := excelize.CoordinatesToCellName(col, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, label); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}

func (e *ExcelExporter) ensureFile() error {
	if _, err := os.Stat(e.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	style, err := headerStyle(f)
	if err != nil {
		return err
	}
	for col, header := range baseHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, style); err != nil {
			return err
		}
	}

	return f.SaveAs(e.path)
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
	})
}
