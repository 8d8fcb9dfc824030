package jpegbase

// Reconstruction: dequantization, inverse DCT, level shift/clamp, MCU-local
// chroma upsampling by integer replication, and YCbCr->RGB conversion.
// Grounded on gen2brain-jpegn/rgba.go and upsample.go, whose scalar paths
// this module generalizes: the teacher fuses dequant+IDCT+clamp+color
// convert into tight SIMD-friendly loops over whole-image component
// buffers; this module keeps the same stage order but operates MCU-local,
// per spec.md §4.E/§6's channel-plane model, since the coefficient store
// here is a per-MCU block sequence rather than a pre-allocated image-sized
// component buffer.

// dequantize multiplies a block's raw coefficients by the corresponding
// quantization table entries, in the same (raster, post-inverse-zigzag)
// order the coefficients are already stored in.
func dequantize(b Block, qt *QuantTable) [64]int32 {
	var out [64]int32
	for i := 0; i < 64; i++ {
		out[i] = int32(b[i]) * int32(qt.Values[i])
	}

	return out
}

// channelPlane holds one scan channel's fully reconstructed samples, padded
// out to a whole number of MCUs (mcuW*h blocks wide, mcuH*v blocks high).
type channelPlane struct {
	h, v                   int
	blocksWide, blocksHigh int
	stride                 int
	samples                []uint8
}

// reconstructChannel dequantizes and inverse-transforms every block of one
// channel's coefficient store, laying the resulting samples out in the same
// MCU-row, MCU-col, block-v, block-h order decodeEntropyData produced them
// in, which is also the order spec.md §4.E's reconstruction stage consumes
// them in.
func reconstructChannel(blocks []Block, qt *QuantTable, mcuW, mcuH, h, v int) channelPlane {
	blocksWide := mcuW * h
	blocksHigh := mcuH * v
	stride := blocksWide * 8

	plane := channelPlane{
		h:          h,
		v:          v,
		blocksWide: blocksWide,
		blocksHigh: blocksHigh,
		stride:     stride,
		samples:    make([]uint8, stride*blocksHigh*8),
	}

	idx := 0
	for mcuRow := 0; mcuRow < mcuH; mcuRow++ {
		for mcuCol := 0; mcuCol < mcuW; mcuCol++ {
			for bv := 0; bv < v; bv++ {
				for bh := 0; bh < h; bh++ {
					deq := dequantize(blocks[idx], qt)
					idx++

					raw := inverseDCT(&deq)

					originY := (mcuRow*v + bv) * 8
					originX := (mcuCol*h + bh) * 8

					for ly := 0; ly < 8; ly++ {
						rowOff := (originY + ly) * stride
						for lx := 0; lx < 8; lx++ {
							plane.samples[rowOff+originX+lx] = levelShiftClamp(raw[ly*8+lx])
						}
					}
				}
			}
		}
	}

	return plane
}

// sampleChannel returns channel plane's sample for absolute output pixel
// (x, y), upsampling by integer replication when the channel's sampling
// factors are below the frame's maximum (H, V). This is the MCU-local
// replication spec.md §4.E and §6 describe: within MCU (mcuRow, mcuCol),
// an output pixel at MCU-local offset (mx, my) maps to the channel-local
// sample at (mx/hScale, my/vScale), and the channel plane already stores
// its own blocks at the matching MCU-local block offsets.
func sampleChannel(plane channelPlane, maxH, maxV, x, y int) uint8 {
	vScale := maxV / plane.v
	hScale := maxH / plane.h

	mcuHeightPx := 8 * maxV
	mcuWidthPx := 8 * maxH

	mcuRow := y / mcuHeightPx
	mcuCol := x / mcuWidthPx

	my := y % mcuHeightPx
	mx := x % mcuWidthPx

	cy := mcuRow*8*plane.v + my/vScale
	cx := mcuCol*8*plane.h + mx/hScale

	return plane.samples[cy*plane.stride+cx]
}

// YCbCr -> RGB fixed-point conversion coefficients, scaled by 2^10 (not
// 2^10 applied to the textbook *1000 constants, which undershoots the
// reference conversion by several levels and breaks the one-unit tolerance
// spec.md §8 requires — see the Open Question resolution in DESIGN.md).
const (
	rgbShift  = 10
	rgbRound  = 1 << (rgbShift - 1)
	crToR     = 1436 // round(1.402 * 1024)
	cbToG     = 352  // round(0.344136 * 1024)
	crToG     = 731  // round(0.714136 * 1024)
	cbToB     = 1815 // round(1.772 * 1024)
)

// ycbcrToRGB converts one YCbCr sample to RGB using fixed-point arithmetic.
func ycbcrToRGB(y, cb, cr uint8) RGB {
	y10 := int32(y) << rgbShift
	cb1 := int32(cb) - 128
	cr1 := int32(cr) - 128

	r := (y10 + crToR*cr1 + rgbRound) >> rgbShift
	g := (y10 - cbToG*cb1 - crToG*cr1 + rgbRound) >> rgbShift
	b := (y10 + cbToB*cb1 + rgbRound) >> rgbShift

	return RGB{R: clampByte(r), G: clampByte(g), B: clampByte(b)}
}

// ycbcrToRGBFloat is the floating-point reference conversion, used by tests
// to bound the fixed-point path's error against the textbook definition.
func ycbcrToRGBFloat(y, cb, cr uint8) RGB {
	yf := float64(y)
	cbf := float64(cb) - 128
	crf := float64(cr) - 128

	r := yf + 1.402*crf
	g := yf - 0.344136*cbf - 0.714136*crf
	b := yf + 1.772*cbf

	return RGB{R: clampFloat(r), G: clampFloat(g), B: clampFloat(b)}
}

func clampFloat(v float64) uint8 {
	if v < 0 {
		return 0
	}

	if v > 255 {
		return 255
	}

	return uint8(v + 0.5)
}

// composeImage walks every pixel of the output image in raster order,
// sampling (and upsampling) each channel plane and converting to RGB, then
// writes the result into sink. channels must be in frame declaration order;
// a 1-channel frame is treated as grayscale (Cb = Cr = 128), and a
// 3-or-4-channel frame uses channels[1]/channels[2] as Cb/Cr (a 4th channel,
// e.g. an alpha-carrying CMYK remainder, is accepted but unused, matching
// spec.md §10's non-goal of interpreting channel semantics beyond YCbCr).
func composeImage(width, height, maxH, maxV int, planes []channelPlane, sink ImageSink) {
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			yVal := sampleChannel(planes[0], maxH, maxV, x, y)

			var cb, cr uint8 = 128, 128
			if len(planes) >= 3 {
				cb = sampleChannel(planes[1], maxH, maxV, x, y)
				cr = sampleChannel(planes[2], maxH, maxV, x, y)
			}

			sink.SetPixel(y, x, ycbcrToRGB(yVal, cb, cr))
		}
	}
}
