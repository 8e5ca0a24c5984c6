package catalog

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/junaidrashid-git/pawshop-api/internal/testdb"
	"github.com/junaidrashid-git/pawshop-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

type memImages struct {
	mu      sync.Mutex
	n       int
	files   map[string]string
	failPut bool
}

func newMemImages() *memImages { return &memImages{files: map[string]string{}} }

func (m *memImages) Put(_ context.Context, name, _ string, body io.Reader) (string, error) {
	if m.failPut {
		return "", errors.New("bucket unavailable")
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.n++
	url := "/uploads/products/" + strings.Repeat("x", m.n) + "_" + name
	m.files[url] = string(raw)
	return url, nil
}

func (m *memImages) Delete(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, url)
	return nil
}

func input(name, category, price string) ProductInput {
	return ProductInput{
		Name:     name,
		Category: category,
		Price:    decimal.RequireFromString(price),
		InStock:  true,
		Rating:   4.5,
	}
}

func seed(t *testing.T, svc *Service) []*models.Product {
	t.Helper()
	ctx := context.Background()
	var out []*models.Product
	for _, in := range []ProductInput{
		input("Chew Rope", "Dogs", "12.99"),
		input("Feather Wand", "Cats", "7.50"),
		input("Squeaky Bone", "Dogs", "4.00"),
		input("Seed Bell", "Birds", "3.25"),
	} {
		p, err := svc.CreateProduct(ctx, in)
		require.NoError(t, err)
		out = append(out, p)
	}
	return out
}

func TestListProductsByCategory(t *testing.T) {
	svc := NewService(testdb.Open(t), newMemImages(), nil)
	seed(t, svc)
	ctx := context.Background()

	all, err := svc.ListProducts(ctx, AllCategories)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	unfiltered, err := svc.ListProducts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, unfiltered, 4)

	dogs, err := svc.ListProducts(ctx, "Dogs")
	require.NoError(t, err)
	require.Len(t, dogs, 2)
	assert.Equal(t, "Chew Rope", dogs[0].Name)
	assert.Equal(t, "Squeaky Bone", dogs[1].Name)

	fish, err := svc.ListProducts(ctx, "Fish")
	require.NoError(t, err)
	assert.Empty(t, fish)
}

func TestCategories(t *testing.T) {
	svc := NewService(testdb.Open(t), newMemImages(), nil)
	seed(t, svc)

	cats, err := svc.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"All", "Birds", "Cats", "Dogs"}, cats)
}

func TestProductCRUD(t *testing.T) {
	svc := NewService(testdb.Open(t), newMemImages(), nil)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, input("", "Dogs", "1"))
	assert.ErrorIs(t, err, ErrInvalidProduct)
	_, err = svc.CreateProduct(ctx, input("Leash", "Dogs", "-1"))
	assert.ErrorIs(t, err, ErrInvalidProduct)

	in := input("Leash", "Dogs", "19.90")
	in.OriginalPrice = decimal.NewNullDecimal(decimal.RequireFromString("24.90"))
	p, err := svc.CreateProduct(ctx, in)
	require.NoError(t, err)

	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("19.90")))
	assert.True(t, got.OriginalPrice.Valid)

	in.Name = "Retractable Leash"
	updated, err := svc.UpdateProduct(ctx, p.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Retractable Leash", updated.Name)

	_, err = svc.UpdateProduct(ctx, 999, in)
	assert.ErrorIs(t, err, ErrProductNotFound)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	_, err = svc.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.ErrorIs(t, svc.DeleteProduct(ctx, p.ID), ErrProductNotFound)
}

func TestNormalizePrimary(t *testing.T) {
	none := NormalizePrimary([]models.ProductImage{{ID: "a"}, {ID: "b"}})
	assert.True(t, none[0].IsPrimary)
	assert.False(t, none[1].IsPrimary)

	many := NormalizePrimary([]models.ProductImage{{ID: "a"}, {ID: "b", IsPrimary: true}, {ID: "c", IsPrimary: true}})
	assert.False(t, many[0].IsPrimary)
	assert.True(t, many[1].IsPrimary)
	assert.False(t, many[2].IsPrimary)

	assert.Empty(t, NormalizePrimary(nil))
}

func TestImageGallery(t *testing.T) {
	images := newMemImages()
	svc := NewService(testdb.Open(t), images, nil)
	p := seed(t, svc)[0]
	ctx := context.Background()

	first, err := svc.AddImage(ctx, p.ID, "front.jpg", "image/jpeg", strings.NewReader("1"))
	require.NoError(t, err)
	assert.True(t, first.IsPrimary)
	second, err := svc.AddImage(ctx, p.ID, "side.jpg", "image/jpeg", strings.NewReader("2"))
	require.NoError(t, err)
	assert.False(t, second.IsPrimary)
	assert.Equal(t, 1, second.DisplayOrder)

	_, err = svc.AddImage(ctx, 999, "x.jpg", "image/jpeg", strings.NewReader("3"))
	assert.ErrorIs(t, err, ErrProductNotFound)

	require.NoError(t, svc.ReorderImage(ctx, first.ID, 5))
	gallery, err := svc.ListImages(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, gallery, 2)
	assert.Equal(t, second.ID, gallery[0].ID)
	assert.True(t, gallery[1].IsPrimary, "primary flag follows the image, not the position")

	require.NoError(t, svc.DeleteImage(ctx, first.ID))
	gallery, err = svc.ListImages(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, gallery, 1)
	assert.True(t, gallery[0].IsPrimary)
	assert.Len(t, images.files, 1)

	assert.ErrorIs(t, svc.DeleteImage(ctx, first.ID), ErrImageNotFound)
	assert.ErrorIs(t, svc.ReorderImage(ctx, "missing", 1), ErrImageNotFound)
}

func TestAddImageUploadFailure(t *testing.T) {
	images := newMemImages()
	images.failPut = true
	svc := NewService(testdb.Open(t), images, nil)
	p := seed(t, svc)[0]

	_, err := svc.AddImage(context.Background(), p.ID, "a.jpg", "image/jpeg", strings.NewReader("1"))
	require.Error(t, err)
	gallery, err := svc.ListImages(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Empty(t, gallery)
}

func TestWindow(t *testing.T) {
	list := make([]models.Product, 14)
	w := NewWindow(0)
	assert.Equal(t, DefaultPageSize, w.Size())
	assert.Len(t, w.Visible(list), 6)
	assert.True(t, w.HasMore(len(list)))

	w.LoadMore()
	w.LoadMore()
	assert.Len(t, w.Visible(list), 14)
	assert.False(t, w.HasMore(len(list)))

	w.Reset()
	assert.Len(t, w.Visible(list), 6)

	assert.Equal(t, 6, WindowAt(6, 2).Size())
	assert.Equal(t, 12, WindowAt(6, 12).Size())
	assert.Len(t, NewWindow(6).Visible(list[:3]), 3)
}

func TestExcelRoundTrip(t *testing.T) {
	src := NewService(testdb.Open(t), newMemImages(), nil)
	seed(t, src)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, src.ExportXLSX(ctx, &buf))

	dst := NewService(testdb.Open(t), newMemImages(), nil)
	res, err := dst.ImportXLSX(ctx, bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Created: 4}, res)

	products, err := dst.ListProducts(ctx, "Cats")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Feather Wand", products[0].Name)
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("7.50")))
	assert.True(t, products[0].InStock)

	res, err = dst.ImportXLSX(ctx, bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Updated: 4}, res)
}

func TestImportSkipsBadRows(t *testing.T) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	require.NoError(t, err)
	addRow := func(cells ...string) {
		row := sheet.AddRow()
		for _, c := range cells {
			row.AddCell().SetString(c)
		}
	}
	addRow(sheetHeaders...)
	addRow("", "Fish Flakes", "", "2.99", "", "", "Fish", "4", "10", "false", "true", "30")
	addRow("", "", "", "2.99", "", "", "Fish", "4", "10", "false", "true", "30")
	addRow("", "Bad Price", "", "cheap", "", "", "Fish", "4", "10", "false", "true", "30")
	addRow("", "Too Short")

	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))

	svc := NewService(testdb.Open(t), newMemImages(), nil)
	res, err := svc.ImportXLSX(context.Background(), bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Created: 1, Skipped: 3}, res)
}
