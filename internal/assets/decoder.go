package assets

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ivlev/slidereel/internal/element"
)

// Decoder is the primitive the loader tries on every candidate file. It only
// has to read enough of the file to know it is usable and how big it is.
type Decoder interface {
	Decode(path string) (*element.Image, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(path string) (*element.Image, error)

func (f DecoderFunc) Decode(path string) (*element.Image, error) { return f(path) }

// ErrUnsupported is returned for a file the decoder does not understand.
var ErrUnsupported = errors.New("unsupported format")

// RasterDecoder reads the header of any registered image format
// (png, jpeg, gif, bmp, tiff, webp) and of .ico files.
type RasterDecoder struct{}

func (RasterDecoder) Decode(path string) (*element.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".ico") {
		w, h, err := icoSize(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return &element.Image{Path: path, Format: "ico", Width: w, Height: h}, nil
	}

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, fmt.Errorf("%s: empty image", path)
	}
	return &element.Image{Path: path, Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// icoSize reads the ICONDIR header and the first directory entry.
// A stored size of 0 means 256 pixels.
func icoSize(r io.Reader) (int, int, error) {
	var hdr struct {
		Reserved, Type, Count uint16
		Width, Height         uint8
	}
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return 0, 0, err
	}
	if hdr.Reserved != 0 || hdr.Type != 1 || hdr.Count == 0 {
		return 0, 0, ErrUnsupported
	}
	w, h := int(hdr.Width), int(hdr.Height)
	if w == 0 {
		w = 256
	}
	if h == 0 {
		h = 256
	}
	return w, h, nil
}

// PDFDecoder opens a PDF with MuPDF and takes the first page's bounds as the
// image size. The page is rasterized later by the engine.
type PDFDecoder struct{}

func (PDFDecoder) Decode(path string) (*element.Image, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, fmt.Errorf("%s: no pages", path)
	}
	rect, err := doc.Bound(0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &element.Image{Path: path, Format: "pdf", Width: rect.Dx(), Height: rect.Dy()}, nil
}
