package jpegbase

// Inverse Discrete Cosine Transform.
//
// inverseDCT implements the separable AAN (Arai-Agui-Nakajima) fast
// integer IDCT, grounded on gen2brain-jpegn/idct_noasm.go's rowIdct/colIdct.
// Unlike the teacher, which fuses the level shift and 8-bit clamp into the
// column pass (because it writes straight into a byte-stride output
// buffer), this module keeps dequantization, the IDCT itself, and the
// level-shift/clamp as three separately testable stages, matching
// spec.md §4.E's three distinct contracts. The constants below are scaled
// by 2^11 (2048*sqrt(2)*cos(k*pi/16)).
const (
	w1 = 2841
	w2 = 2676
	w3 = 2408
	w5 = 1609
	w6 = 1108
	w7 = 565
)

// idctRow applies a 1D inverse DCT to the 8-element row of blk starting at
// offset, in place.
func idctRow(blk *[64]int32, offset int) {
	b := blk[offset : offset+8]

	x1 := b[4] << 11
	x2 := b[6]
	x3 := b[2]
	x4 := b[1]
	x5 := b[7]
	x6 := b[5]
	x7 := b[3]

	if (x1 | x2 | x3 | x4 | x5 | x6 | x7) == 0 {
		val := b[0] << 3
		for i := range b {
			b[i] = val
		}

		return
	}

	x0 := (b[0] << 11) + 128

	x8 := w7 * (x4 + x5)
	x4 = x8 + (w1-w7)*x4
	x5 = x8 - (w1+w7)*x5
	x8 = w3 * (x6 + x7)
	x6 = x8 - (w3-w5)*x6
	x7 = x8 - (w3+w5)*x7

	x8 = x0 + x1
	x0 -= x1
	x1 = w6 * (x3 + x2)
	x2 = x1 - (w2+w6)*x2
	x3 = x1 + (w2-w6)*x3

	x1 = x4 + x6
	x4 -= x6
	x6 = x5 + x7
	x5 -= x7

	x7 = x8 + x3
	x8 -= x3
	x3 = x0 + x2
	x0 -= x2

	x2 = (181*(x4+x5) + 128) >> 8
	x4 = (181*(x4-x5) + 128) >> 8

	b[0] = (x7 + x1) >> 8
	b[1] = (x3 + x2) >> 8
	b[2] = (x0 + x4) >> 8
	b[3] = (x8 + x6) >> 8
	b[4] = (x8 - x6) >> 8
	b[5] = (x0 - x4) >> 8
	b[6] = (x3 - x2) >> 8
	b[7] = (x7 - x1) >> 8
}

// idctCol applies a 1D inverse DCT to column offset of blk (post idctRow),
// writing the 8 raw (not level-shifted, not clamped) raster-order samples
// into out.
func idctCol(blk *[64]int32, offset int, out *[64]int32) {
	x1 := blk[offset+8*4] << 8
	x2 := blk[offset+8*6]
	x3 := blk[offset+8*2]
	x4 := blk[offset+8*1]
	x5 := blk[offset+8*7]
	x6 := blk[offset+8*5]
	x7 := blk[offset+8*3]

	if (x1 | x2 | x3 | x4 | x5 | x6 | x7) == 0 {
		val := (blk[offset] + 32) >> 6
		for row := 0; row < 8; row++ {
			out[row*8+offset] = val
		}

		return
	}

	x0 := (blk[offset] << 8) + 8192

	x8 := w7*(x4+x5) + 4
	x4 = (x8 + (w1-w7)*x4) >> 3
	x5 = (x8 - (w1+w7)*x5) >> 3
	x8 = w3*(x6+x7) + 4
	x6 = (x8 - (w3-w5)*x6) >> 3
	x7 = (x8 - (w3+w5)*x7) >> 3

	x8 = x0 + x1
	x0 -= x1
	x1 = w6*(x3+x2) + 4
	x2 = (x1 - (w2+w6)*x2) >> 3
	x3 = (x1 + (w2-w6)*x3) >> 3

	x1 = x4 + x6
	x4 -= x6
	x6 = x5 + x7
	x5 -= x7

	x7 = x8 + x3
	x8 -= x3
	x3 = x0 + x2
	x0 -= x2

	x2 = (181*(x4+x5) + 128) >> 8
	x4 = (181*(x4-x5) + 128) >> 8

	out[0*8+offset] = (x7 + x1) >> 14
	out[1*8+offset] = (x3 + x2) >> 14
	out[2*8+offset] = (x0 + x4) >> 14
	out[3*8+offset] = (x8 + x6) >> 14
	out[4*8+offset] = (x8 - x6) >> 14
	out[5*8+offset] = (x0 - x4) >> 14
	out[6*8+offset] = (x3 - x2) >> 14
	out[7*8+offset] = (x7 - x1) >> 14
}

// inverseDCT applies the separable 2D inverse DCT to a dequantized block,
// returning the 64 raw (centered on 0, not yet level-shifted or clamped)
// samples in raster order. blk is mutated by the row pass.
func inverseDCT(blk *[64]int32) [64]int32 {
	for row := 0; row < 64; row += 8 {
		idctRow(blk, row)
	}

	var out [64]int32
	for col := 0; col < 8; col++ {
		idctCol(blk, col, &out)
	}

	return out
}

// levelShiftClamp adds the 128 level shift and clamps to [0, 255].
func levelShiftClamp(v int32) uint8 {
	return clampByte(v + 128)
}
