package jpegbase

import "testing"

// a minimal canonical table: one 1-bit code, one 2-bit code, one 3-bit code.
// lengths: {1:1, 2:1, 3:1}, values in order {0xA, 0xB, 0xC}.
// Canonical assignment: 0xA -> "0", 0xB -> "10", 0xC -> "110".
func minimalCounts() [16]byte {
	var c [16]byte
	c[0] = 1
	c[1] = 1
	c[2] = 1

	return c
}

func TestBuildHuffmanCodebookAndDecode(t *testing.T) {
	hc, err := BuildHuffmanCodebook(minimalCounts(), []byte{0xA, 0xB, 0xC})
	if err != nil {
		t.Fatalf("BuildHuffmanCodebook returned error: %v", err)
	}

	tests := []struct {
		name string
		bits []byte
		want byte
	}{
		{"1-bit code", []byte{0b0_0000000}, 0xA},
		{"2-bit code", []byte{0b10_000000}, 0xB},
		{"3-bit code", []byte{0b110_00000}, 0xC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			br := NewBitReader(tt.bits)

			got, err := hc.Decode(br)
			if err != nil {
				t.Fatalf("Decode returned error: %v", err)
			}

			if got != tt.want {
				t.Errorf("Decode = %#x, want %#x", got, tt.want)
			}
		})
	}
}

func TestBuildHuffmanCodebookUnderfull(t *testing.T) {
	counts := minimalCounts()
	counts[3] = 1 // claim a 4-bit code that has no matching value

	if _, err := BuildHuffmanCodebook(counts, []byte{0xA, 0xB, 0xC}); err == nil {
		t.Fatal("expected an error for an underfull table")
	}
}

func TestBuildHuffmanCodebookCountMismatch(t *testing.T) {
	if _, err := BuildHuffmanCodebook(minimalCounts(), []byte{0xA, 0xB}); err == nil {
		t.Fatal("expected an error when fewer values than counts declare are supplied")
	}
}

func TestBuildHuffmanCodebookTooManySymbols(t *testing.T) {
	var counts [16]byte
	for i := range counts {
		counts[i] = 255
	}

	values := make([]byte, 255*16)

	if _, err := BuildHuffmanCodebook(counts, values); err == nil {
		t.Fatal("expected an error when more than 256 symbols are declared")
	}
}

func TestHuffmanCodebookDecodeAbsentChild(t *testing.T) {
	// Single 1-bit code "0" -> 0xA; a "1" bit has no right child.
	var counts [16]byte
	counts[0] = 1

	hc, err := BuildHuffmanCodebook(counts, []byte{0xA})
	if err != nil {
		t.Fatalf("BuildHuffmanCodebook returned error: %v", err)
	}

	br := NewBitReader([]byte{0b1_0000000})

	if _, err := hc.Decode(br); err == nil {
		t.Fatal("expected an error decoding a bit pattern with no matching code")
	}
}
