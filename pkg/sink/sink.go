package sink

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	errs "github.com/matzehuels/mandel/pkg/errors"
)

// Format constants for output formats.
const (
	FormatPNG  = "png"
	FormatTIFF = "tiff"
	FormatBMP  = "bmp"
)

// DefaultFormat is used when neither a flag nor the file extension names one.
const DefaultFormat = FormatPNG

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG:  true,
	FormatTIFF: true,
	FormatBMP:  true,
}

var contentTypes = map[string]string{
	FormatPNG:  "image/png",
	FormatTIFF: "image/tiff",
	FormatBMP:  "image/bmp",
}

// extensions maps file extensions (lower case, without dot) to formats.
var extensions = map[string]string{
	"png":  FormatPNG,
	"tif":  FormatTIFF,
	"tiff": FormatTIFF,
	"bmp":  FormatBMP,
}

// Formats returns the supported formats in sorted order.
func Formats() []string {
	out := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)",
			format, strings.Join(Formats(), ", "))
	}
	return nil
}

// FormatFromPath infers the format from a file extension.
// It reports false when the extension is missing or unknown.
func FormatFromPath(path string) (string, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	f, ok := extensions[ext]
	return f, ok
}

// ContentType returns the MIME type for a format.
func ContentType(format string) string {
	if ct, ok := contentTypes[format]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format string) error {
	if err := ValidateFormat(format); err != nil {
		return err
	}
	if img.Bounds().Empty() {
		return errs.New(errs.ErrCodeEncodeFailed, "cannot encode empty %dx%d image",
			img.Bounds().Dx(), img.Bounds().Dy())
	}

	var err error
	switch format {
	case FormatPNG:
		enc := png.Encoder{CompressionLevel: png.DefaultCompression}
		err = enc.Encode(w, img)
	case FormatTIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case FormatBMP:
		err = bmp.Encode(w, img)
	}
	if err != nil {
		return errs.Wrap(errs.ErrCodeEncodeFailed, err, "encode %s", format)
	}
	return nil
}

// EncodeBytes encodes img into memory.
func EncodeBytes(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes encoded image data to path, creating parent directories
// as needed.
func WriteFile(path string, data []byte) error {
	if err := errs.ValidateOutputPath(path); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errs.Wrap(errs.ErrCodeWriteFailed, err, "create directory %s", dir)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.ErrCodeWriteFailed, err, "create %s", path)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return errs.Wrap(errs.ErrCodeWriteFailed, err, "write %s", path)
	}
	if err := f.Close(); err != nil {
		return errs.Wrap(errs.ErrCodeWriteFailed, err, "close %s", path)
	}
	return nil
}
