// Package imaging handles the file side of stylizing: decoding, color-model
// normalization, optional pre-downscaling, encoding and palette reports.
//
// The stylize core only accepts 3-channel rasters. Everything that turns a
// file on disk into such a raster, and a raster back into a file, lives here.
//
// # Decoding
//
// Load decodes PNG, JPEG, GIF, BMP and WEBP. EXIF orientation is applied so
// camera photos are processed upright. ImageCache wraps Load for callers that
// render the same source repeatedly, such as the preview server.
//
// # Conversion
//
// ToRaster normalizes palette, gray, YCbCr and 16-bit images to 8-bit RGB and
// drops alpha. FromRaster produces an opaque *image.NRGBA for encoding.
//
// # Encoding
//
// Encode and Save write PNG, JPEG or BMP. ExportPath applies the interactive
// export naming rule, and SupportedExtension is the batch input filter.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The remaining functions are stateless
// and may be called concurrently on different images.
package imaging
