package jpegbase

// Block is a length-64 vector of signed DCT coefficients in natural raster
// order within an 8x8 block, as produced by entropy decode + inverse
// zig-zag. Values are not yet dequantized.
type Block [64]int32

// decodeBlock decodes one 8x8 block: one DC symbol (differential, added to
// *prevDC) followed by a run of AC symbols terminated by EOB, then applies
// the inverse zig-zag to put coefficients into natural raster order.
// Grounded on gen2brain-jpegn/decoder.go's decodeBlock (the panic-based hot
// path is reworked into explicit error returns, per spec.md §7's
// every-stage-returns-on-first-error propagation model).
func decodeBlock(br *BitReader, dcTable, acTable *HuffmanCodebook, prevDC *int32) (Block, error) {
	var scan [64]int32

	dcSize, err := dcTable.Decode(br)
	if err != nil {
		return Block{}, err
	}

	if dcSize > 11 {
		return Block{}, errEntropy("dc size %d exceeds maximum of 11", dcSize)
	}

	diff := 0
	if dcSize > 0 {
		diff, err = br.ReadBitsSigned(int(dcSize))
		if err != nil {
			return Block{}, err
		}
	}

	*prevDC += int32(diff)
	scan[0] = *prevDC

	coef := 1
	for coef <= 63 {
		m, err := acTable.Decode(br)
		if err != nil {
			return Block{}, err
		}

		if m == 0x00 { // EOB: remaining coefficients stay zero.
			break
		}

		run := int(m >> 4)
		size := int(m & 0x0F)

		if size == 0 {
			if m != 0xF0 {
				return Block{}, errEntropy("illegal AC run/size combination 0x%02X", m)
			}

			coef += 16 // ZRL: 16 zeros, no coefficient.
			if coef > 64 {
				// Unlike the run+value branch below, ZRL places no
				// coefficient at coef itself, so landing exactly on 64
				// (a full block) is valid; only stepping past it isn't.
				return Block{}, errEntropy("ac run overruns block at coefficient index %d", coef)
			}

			continue
		}

		if size > 10 {
			return Block{}, errEntropy("ac size %d exceeds maximum of 10", size)
		}

		coef += run
		if coef > 63 {
			return Block{}, errEntropy("ac run overruns block at coefficient index %d", coef)
		}

		val, err := br.ReadBitsSigned(size)
		if err != nil {
			return Block{}, err
		}

		scan[coef] = int32(val)
		coef++
	}

	return Block(inverseZigzag(&scan)), nil
}

// scanChannelInfo pairs a scan channel's Huffman table selectors with its
// frame-declared sampling factors, resolved once at the start of a scan.
type scanChannelInfo struct {
	frame   FrameChannel
	dcTable *HuffmanCodebook
	acTable *HuffmanCodebook
}

// decodeEntropyData decodes an entire scan's entropy-coded data into a
// coefficient store: one block slice per scan channel, in MCU-raster,
// then channel-major, then block-raster-within-MCU order, exactly the
// order spec.md §3/§4.D defines. per-channel DC prediction persists across
// MCUs and is reset to 0 only at the start of this call. A restart marker
// encountered mid-scan is not specially recognized here: restart-interval
// resynchronization is out of scope (spec.md §1/§10), so an RSTn marker
// inside entropy-coded data falls through to BitReader's ordinary
// marker-in-entropy-data fatal case, same as any other marker.
func decodeEntropyData(br *BitReader, mcuW, mcuH int, channels []scanChannelInfo) ([][]Block, error) {
	blocks := make([][]Block, len(channels))
	prevDC := make([]int32, len(channels))

	for i, ch := range channels {
		blocks[i] = make([]Block, 0, mcuW*mcuH*ch.frame.H*ch.frame.V)
	}

	for mcuRow := 0; mcuRow < mcuH; mcuRow++ {
		for mcuCol := 0; mcuCol < mcuW; mcuCol++ {
			for i, ch := range channels {
				for bv := 0; bv < ch.frame.V; bv++ {
					for bh := 0; bh < ch.frame.H; bh++ {
						block, err := decodeBlock(br, ch.dcTable, ch.acTable, &prevDC[i])
						if err != nil {
							return nil, err
						}

						blocks[i] = append(blocks[i], block)
					}
				}
			}
		}
	}

	return blocks, nil
}
