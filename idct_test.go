package jpegbase

import "testing"

func TestInverseDCTZeroBlockIsFlat(t *testing.T) {
	var blk [64]int32

	out := inverseDCT(&blk)

	for i, v := range out {
		if v != 0 {
			t.Fatalf("out[%d] = %d, want 0 for an all-zero block", i, v)
		}
	}
}

// A DC-only block of value 64 (quantized value already applied) reconstructs
// to a uniform block whose pre-level-shift sample value is DC/8, per the
// IDCT's normalization: a block with only S(0,0) nonzero has s(y,x) =
// S(0,0)/8 everywhere.
func TestInverseDCTDCOnlyBlock(t *testing.T) {
	var blk [64]int32
	blk[0] = 64

	out := inverseDCT(&blk)

	for i, v := range out {
		if v != 8 {
			t.Fatalf("out[%d] = %d, want 8 (64/8) for a DC-only block", i, v)
		}
	}
}

func TestLevelShiftClampDCOnlyBlock(t *testing.T) {
	var blk [64]int32
	blk[0] = 64

	out := inverseDCT(&blk)

	for i, v := range out {
		got := levelShiftClamp(v)
		if got != 136 {
			t.Fatalf("levelShiftClamp(out[%d])= %d, want 136", i, got)
		}
	}
}

func TestLevelShiftClampSaturates(t *testing.T) {
	tests := []struct {
		name string
		v    int32
		want uint8
	}{
		{"large negative clamps to 0", -500, 0},
		{"large positive clamps to 255", 500, 255},
		{"mid-range passes through", 0, 128},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := levelShiftClamp(tt.v); got != tt.want {
				t.Errorf("levelShiftClamp(%d) = %d, want %d", tt.v, got, tt.want)
			}
		})
	}
}
