// Package sink encodes rendered grids into lossless image files.
//
// Three formats are supported, all of which round-trip the 8-bit RGB pixels
// exactly:
//
//   - png (default): image/png
//   - tiff: golang.org/x/image/tiff with deflate compression
//   - bmp: golang.org/x/image/bmp
//
// # Usage
//
//	data, err := sink.EncodeBytes(grid.Image(), sink.FormatPNG)
//	if err != nil {
//	    return err
//	}
//	return sink.WriteFile("testimage.png", data)
//
// Encoding failures carry the ENCODE_FAILED code and write failures the
// WRITE_FAILED code from the errors package.
package sink
