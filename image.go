package jpegbase

// RGB is one fully composited output pixel.
type RGB struct {
	R, G, B uint8
}

// ImageSink is the external pixel-store collaborator the decoder writes
// into. It owns its own storage; the decoder only ever calls SetPixel in
// raster order and SetComment at most once. A caller typically sizes its
// sink using the (Width, Height) from DecodeConfig before calling Decode.
type ImageSink interface {
	SetPixel(y, x int, c RGB)
	SetComment(s string)
}
