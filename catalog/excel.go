package catalog

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
	"go.uber.org/zap"
)

var sheetHeaders = []string{
	"ID", "Name", "Description", "Price", "OriginalPrice", "Image",
	"Category", "Rating", "Reviews", "Featured", "InStock", "StockQuantity",
	"CreatedAt", "UpdatedAt",
}

// importColumns is the number of leading columns an import row must carry.
const importColumns = 12

// ImportResult counts what an import did with each data row.
type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// ExportXLSX writes every product as one row of a "Products" sheet.
func (s *Service) ExportXLSX(ctx context.Context, w io.Writer) error {
	products, err := s.ListProducts(ctx, "")
	if err != nil {
		return err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	header := sheet.AddRow()
	for _, h := range sheetHeaders {
		header.AddCell().SetValue(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(int64(p.ID))
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Description)
		row.AddCell().SetString(p.Price.StringFixed(2))
		if p.OriginalPrice.Valid {
			row.AddCell().SetString(p.OriginalPrice.Decimal.StringFixed(2))
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetValue(p.Image)
		row.AddCell().SetValue(p.Category)
		row.AddCell().SetString(strconv.FormatFloat(p.Rating, 'f', -1, 64))
		row.AddCell().SetValue(p.Reviews)
		row.AddCell().SetString(strconv.FormatBool(p.Featured))
		row.AddCell().SetString(strconv.FormatBool(p.InStock))
		row.AddCell().SetValue(p.StockQuantity)
		row.AddCell().SetValue(p.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetValue(p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// ImportXLSX reads the first sheet of a workbook laid out like ExportXLSX's. A row whose
// ID matches an existing product updates it; any other valid row creates a product.
// Rows that do not parse or validate are skipped.
func (s *Service) ImportXLSX(ctx context.Context, r io.ReaderAt, size int64) (ImportResult, error) {
	var res ImportResult

	book, err := xlsx.OpenReaderAt(r, size)
	if err != nil {
		return res, fmt.Errorf("parse workbook: %w", err)
	}
	if len(book.Sheets) == 0 || book.Sheets[0].MaxRow < 2 {
		return res, fmt.Errorf("%w: workbook is empty or missing header row", ErrInvalidProduct)
	}

	sheet := book.Sheets[0]
	for i := 1; i < sheet.MaxRow && i < len(sheet.Rows); i++ {
		row := sheet.Rows[i]
		if row == nil || len(row.Cells) < importColumns {
			res.Skipped++
			continue
		}
		get := func(idx int) string {
			if idx < len(row.Cells) {
				return strings.TrimSpace(row.Cells[idx].String())
			}
			return ""
		}

		in, err := parseImportRow(get)
		if err != nil {
			s.logger.Debug("import row skipped", zap.Int("row", i+1), zap.Error(err))
			res.Skipped++
			continue
		}

		if id, err := strconv.ParseUint(get(0), 10, 64); err == nil && id > 0 {
			if _, err := s.UpdateProduct(ctx, uint(id), in); err == nil {
				res.Updated++
				continue
			}
		}
		if _, err := s.CreateProduct(ctx, in); err != nil {
			s.logger.Debug("import row not created", zap.Int("row", i+1), zap.Error(err))
			res.Skipped++
			continue
		}
		res.Created++
	}
	return res, nil
}

func parseImportRow(get func(int) string) (ProductInput, error) {
	in := ProductInput{
		Name:        get(1),
		Description: get(2),
		Image:       get(5),
		Category:    get(6),
	}
	var err error
	if in.Price, err = decimal.NewFromString(get(3)); err != nil {
		return in, fmt.Errorf("price: %w", err)
	}
	if v := get(4); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return in, fmt.Errorf("original price: %w", err)
		}
		in.OriginalPrice = decimal.NewNullDecimal(d)
	}
	if v := get(7); v != "" {
		if in.Rating, err = strconv.ParseFloat(v, 64); err != nil {
			return in, fmt.Errorf("rating: %w", err)
		}
	}
	if in.Reviews, err = atoiOrZero(get(8)); err != nil {
		return in, fmt.Errorf("reviews: %w", err)
	}
	in.Featured, _ = strconv.ParseBool(get(9))
	in.InStock, _ = strconv.ParseBool(get(10))
	if in.StockQuantity, err = atoiOrZero(get(11)); err != nil {
		return in, fmt.Errorf("stock quantity: %w", err)
	}
	return in, in.Validate()
}

func atoiOrZero(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
