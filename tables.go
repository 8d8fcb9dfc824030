package jpegbase

// QuantTable is one DQT-defined quantization table, stored already in
// natural raster (un-zig-zagged) order and indexed 0..15. Read-only once
// the DQT segment that defined it has been parsed.
type QuantTable struct {
	// Values holds the 64 quantizer entries in raster order.
	Values [64]uint16
}

// maxQuantTables is the number of quantization table ids a stream may
// reference (0..15).
const maxQuantTables = 16

// maxHuffTables is the number of Huffman table ids per class a stream may
// reference (0..3), per spec.md's ScanHeader/DHT id range.
const maxHuffTables = 4
