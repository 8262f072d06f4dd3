package pdf

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/hashicorp/go-multierror"
	"github.com/jung-kurt/gofpdf"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/webp"

	"github.com/nurpe/haulops-billing/internal/render"
)

const (
	portraitHeight = 120.0
	landscapeWidth = 150.0
	imageGap       = 6.0
	maxPixels      = 1600
	jpegQuality    = 85
)

type preparedImage struct {
	name   string
	data   []byte
	width  int
	height int
}

// addImages appends the ticket photos after a divider. Photos that cannot be
// read or decoded are left out and reported in one warning.
func (g *Generator) addImages(pdf *gofpdf.Fpdf, files FileSource, images []render.Image) {
	var skipped *multierror.Error
	prepared := make([]preparedImage, 0, len(images))
	for i, img := range images {
		p, err := prepareImage(files, img.Path)
		if err != nil {
			skipped = multierror.Append(skipped, fmt.Errorf("job %s: %w", img.JobID, err))
			continue
		}
		p.name = fmt.Sprintf("ticket-%d", i)
		prepared = append(prepared, p)
	}
	if err := skipped.ErrorOrNil(); err != nil {
		g.log.Warn().Err(err).Int("skipped", len(skipped.Errors)).Msg("ticket images skipped")
	}
	if len(prepared) == 0 {
		return
	}

	pdf.AddPageFormat("P", gofpdf.SizeType{Wd: 210, Ht: 297})
	pdf.SetFont(fontName, "B", 16)
	pdf.CellFormat(0, 12, "Ticket Images", "B", 1, "C", false, 0, "")
	pdf.Ln(imageGap)

	usableWidth := 210 - 2*margin
	bottom := 297 - bottomMargin
	for _, p := range prepared {
		w, h := placement(p.width, p.height)
		if h > bottom-margin {
			h = bottom - margin
			w = h * float64(p.width) / float64(p.height)
		}

		pdf.RegisterImageOptionsReader(p.name, gofpdf.ImageOptions{ImageType: "JPG"}, bytes.NewReader(p.data))
		if !pdf.Ok() {
			g.log.Warn().Err(pdf.Error()).Str("image", p.name).Msg("ticket image rejected")
			pdf.ClearError()
			continue
		}

		if pdf.GetY()+h > bottom {
			pdf.AddPageFormat("P", gofpdf.SizeType{Wd: 210, Ht: 297})
		}
		x := margin + (usableWidth-w)/2
		pdf.ImageOptions(p.name, x, pdf.GetY(), w, h, false, gofpdf.ImageOptions{ImageType: "JPG"}, 0, "")
		pdf.SetY(pdf.GetY() + h + imageGap)
	}
}

// placement scales portrait photos to a fixed height and everything else to
// a fixed width.
func placement(width, height int) (float64, float64) {
	if height > width {
		return portraitHeight * float64(width) / float64(height), portraitHeight
	}
	return landscapeWidth, landscapeWidth * float64(height) / float64(width)
}

func prepareImage(files FileSource, path string) (preparedImage, error) {
	raw, err := files.Open(path)
	if err != nil {
		return preparedImage{}, err
	}
	img, err := decodeImageWithWebPFallback(raw)
	if err != nil {
		return preparedImage{}, fmt.Errorf("decode %s: %w", path, err)
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return preparedImage{}, fmt.Errorf("decode %s: empty image", path)
	}
	img = downscale(img, maxPixels)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return preparedImage{}, fmt.Errorf("encode %s: %w", path, err)
	}
	return preparedImage{data: out.Bytes(), width: img.Bounds().Dx(), height: img.Bounds().Dy()}, nil
}

func decodeImageWithWebPFallback(raw []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err == nil {
		return img, nil
	}
	if decoded, webpErr := webp.Decode(bytes.NewReader(raw)); webpErr == nil {
		return decoded, nil
	}
	return nil, err
}

// downscale shrinks img so its longer side is at most limit pixels.
func downscale(img image.Image, limit int) image.Image {
	b := img.Bounds()
	longest := b.Dx()
	if b.Dy() > longest {
		longest = b.Dy()
	}
	if longest <= limit {
		return img
	}
	w := b.Dx() * limit / longest
	h := b.Dy() * limit / longest
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}
