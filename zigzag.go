package jpegbase

// zigzag maps a coefficient's position in the entropy-coded (zig-zag)
// scan order to its position in natural raster order within an 8x8 block.
// Grounded on gen2brain-jpegn/decoder.go's zz table (the canonical JPEG
// zig-zag permutation); implementations may synthesize this traversal at
// run time or use a precomputed table, and both yield identical results.
var zigzag = [64]int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// inverseZigzag rewrites a length-64 vector from zig-zag scan order into
// natural raster order.
func inverseZigzag(scan *[64]int32) (raster [64]int32) {
	for i, pos := range zigzag {
		raster[pos] = scan[i]
	}

	return raster
}
