package jpegbase

import "testing"

func TestDequantize(t *testing.T) {
	var b Block
	b[0] = 4
	b[1] = -2

	var qt QuantTable
	qt.Values[0] = 16
	qt.Values[1] = 10

	out := dequantize(b, &qt)

	if out[0] != 64 {
		t.Errorf("out[0] = %d, want 64", out[0])
	}

	if out[1] != -20 {
		t.Errorf("out[1] = %d, want -20", out[1])
	}
}

// reconstructChannel on a single 1x1-MCU, no-subsampling channel whose
// single block is DC-only must produce a uniform 8x8 plane.
func TestReconstructChannelSingleBlock(t *testing.T) {
	var block Block
	block[0] = 64 // raw coefficient; multiplied by a quant value of 1 below

	var qt QuantTable
	for i := range qt.Values {
		qt.Values[i] = 1
	}

	plane := reconstructChannel([]Block{block}, &qt, 1, 1, 1, 1)

	if plane.stride != 8 || plane.blocksHigh != 1 {
		t.Fatalf("unexpected plane geometry: stride=%d blocksHigh=%d", plane.stride, plane.blocksHigh)
	}

	for i, v := range plane.samples {
		if v != 136 {
			t.Fatalf("samples[%d] = %d, want 136", i, v)
		}
	}
}

// sampleChannel must replicate a 4:2:0 chroma plane across a 2x2 luma block
// of MCU-local pixels: each 2x2 luma block maps to a single chroma sample.
func TestSampleChannel420Replication(t *testing.T) {
	// one MCU, chroma channel sampled 1:1 (h=1, v=1) against a 2:2 luma.
	plane := channelPlane{
		h: 1, v: 1,
		blocksWide: 1, blocksHigh: 1,
		stride:  8,
		samples: make([]uint8, 64),
	}
	plane.samples[0] = 200 // top-left chroma sample of the single block

	maxH, maxV := 2, 2

	got := sampleChannel(plane, maxH, maxV, 0, 0)
	if got != 200 {
		t.Errorf("sampleChannel(0,0) = %d, want 200", got)
	}

	// (1,1) in luma space should still land on the same chroma sample
	// (0,0), since 2/1 replication covers a 2x2 luma footprint.
	got = sampleChannel(plane, maxH, maxV, 1, 1)
	if got != 200 {
		t.Errorf("sampleChannel(1,1) = %d, want 200 (replicated)", got)
	}
}

func TestYCbCrToRGBMatchesFloatReferenceWithinTolerance(t *testing.T) {
	tests := []struct {
		name         string
		y, cb, cr    uint8
	}{
		{"red-ish", 76, 85, 255},
		{"mid-gray", 128, 128, 128},
		{"green-ish", 150, 44, 21},
		{"blue-ish", 29, 255, 107},
		{"black", 0, 128, 128},
		{"white", 255, 128, 128},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ycbcrToRGB(tt.y, tt.cb, tt.cr)
			want := ycbcrToRGBFloat(tt.y, tt.cb, tt.cr)

			if diff := absInt(int(got.R) - int(want.R)); diff > 1 {
				t.Errorf("R = %d, float reference = %d (diff %d > 1)", got.R, want.R, diff)
			}

			if diff := absInt(int(got.G) - int(want.G)); diff > 1 {
				t.Errorf("G = %d, float reference = %d (diff %d > 1)", got.G, want.G, diff)
			}

			if diff := absInt(int(got.B) - int(want.B)); diff > 1 {
				t.Errorf("B = %d, float reference = %d (diff %d > 1)", got.B, want.B, diff)
			}
		})
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}

	return v
}

// fakeSink records every SetPixel/SetComment call for assertions.
type fakeSink struct {
	pixels  map[[2]int]RGB
	comment string
}

func newFakeSink() *fakeSink {
	return &fakeSink{pixels: make(map[[2]int]RGB)}
}

func (s *fakeSink) SetPixel(y, x int, c RGB) { s.pixels[[2]int{y, x}] = c }
func (s *fakeSink) SetComment(c string)      { s.comment = c }

func TestComposeImageGrayscaleDefaultsChroma(t *testing.T) {
	plane := channelPlane{
		h: 1, v: 1,
		blocksWide: 1, blocksHigh: 1,
		stride:  8,
		samples: make([]uint8, 64),
	}
	for i := range plane.samples {
		plane.samples[i] = 200
	}

	sink := newFakeSink()
	composeImage(2, 2, 1, 1, []channelPlane{plane}, sink)

	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			got := sink.pixels[[2]int{y, x}]
			want := ycbcrToRGB(200, 128, 128)
			if got != want {
				t.Errorf("pixel(%d,%d) = %+v, want %+v", y, x, got, want)
			}
		}
	}
}
