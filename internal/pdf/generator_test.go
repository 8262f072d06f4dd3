package pdf

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/haulops-billing/internal/render"
)

type memFiles map[string][]byte

func (m memFiles) Open(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func sampleDocument(images ...render.Image) render.Document {
	row := render.Row{DateText: "2024-03-01", Unit: "Truck 7", Customer: "Granite Aggregates", Quantity: "1", Rate: "$100.00", Amount: "100.00"}
	return render.Document{
		Header: render.Header{
			Company:       render.Company{Name: "Haul Co", Address: "1 Yard Rd", TaxNumber: "123"},
			InvoiceNumber: "INV-AC-7-240301-240301",
			InvoiceDate:   "2024-03-31",
			BilledTo:      "Acme Corp",
		},
		Rows:   []render.Row{row},
		Months: []render.Month{{Label: "March 2024", Rows: []render.Row{row}}},
		Totals: []render.TotalLine{{Label: "Subtotal", Value: "$100.00"}, {Label: "Total", Value: "$124.30"}},
		Images: images,
	}
}

func TestGenerate_WritesPDF(t *testing.T) {
	g := NewGenerator(zerolog.Nop())

	out, err := g.Generate(sampleDocument(), nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerate_SkipsBrokenImages(t *testing.T) {
	g := NewGenerator(zerolog.Nop())
	files := memFiles{
		"tickets/wide.png": pngBytes(t, 400, 200),
		"tickets/tall.png": pngBytes(t, 200, 400),
		"tickets/bad.png":  []byte("not an image"),
	}
	doc := sampleDocument(
		render.Image{JobID: uuid.New(), Path: "tickets/wide.png"},
		render.Image{JobID: uuid.New(), Path: "tickets/missing.png"},
		render.Image{JobID: uuid.New(), Path: "tickets/bad.png"},
		render.Image{JobID: uuid.New(), Path: "tickets/tall.png"},
	)

	withImages, err := g.Generate(doc, files)
	require.NoError(t, err)
	plain, err := g.Generate(sampleDocument(), nil)
	require.NoError(t, err)
	assert.Greater(t, len(withImages), len(plain))
}

func TestPlacement(t *testing.T) {
	w, h := placement(200, 400)
	assert.Equal(t, portraitHeight, h)
	assert.InDelta(t, 60.0, w, 0.001)

	w, h = placement(400, 200)
	assert.Equal(t, landscapeWidth, w)
	assert.InDelta(t, 75.0, h, 0.001)
}

func TestDownscale(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3200, 1600))
	small := downscale(img, 1600)
	assert.Equal(t, 1600, small.Bounds().Dx())
	assert.Equal(t, 800, small.Bounds().Dy())

	same := downscale(img, 4000)
	assert.Equal(t, img, same)
}
