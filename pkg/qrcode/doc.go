// Package qrcode generates QR code images through a pluggable Renderer.
//
// The default renderer, ChartRenderer, posts the text to a remote chart
// service and returns the response body wrapped in an Image. LocalRenderer
// produces the same kind of Image in-process. Both check the text against
// the QR version 40 capacity table before doing any work:
//
//	               L     M     Q     H
//	numeric       7087  5594  3991  3055
//	alphanumeric  4295  3390  2418  1851
//	byte          2953  2331  1663  1273
//
// Usage:
//
//	code, err := qrcode.New("https://example.com", 300)
//	if err != nil { /* width or height not positive */ }
//	img, err := code.Generate(ctx)
//	if err != nil { /* *ValidationError or *RenderError */ }
//	info, err := img.Info() // width, height, format
//
// Errors are typed (*InvalidArgumentError, *ValidationError, *RenderError,
// *DecodeError) and each also matches a sentinel via errors.Is.
package qrcode
