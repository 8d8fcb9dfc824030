package jpegbase

// Marker-segment parsing: the state machine that walks a JPEG byte stream
// from SOI to the start of entropy-coded scan data, collecting quantization
// tables, Huffman tables, the frame header, the scan header, the restart
// interval, and any comment along the way. Grounded on
// gen2brain-jpegn/decoder.go's decode/decodeSOF/decodeDHT/decodeDQT/
// decodeDRI/decodeScan marker dispatch, reworked from panic/recover and a
// fixed 3-component array into explicit errors and a frame of 1-4 channels
// per spec.md §4.C/§6.

const (
	markerSOI = 0xD8
	markerEOI = 0xD9
	markerSOF0 = 0xC0
	markerDHT  = 0xC4
	markerDQT  = 0xDB
	markerDRI  = 0xDD
	markerSOS  = 0xDA
	markerCOM  = 0xFE
)

func isRSTMarker(m byte) bool  { return m >= 0xD0 && m <= 0xD7 }
func isAPPnMarker(m byte) bool { return m >= 0xE0 && m <= 0xEF }

// Parser walks a JPEG byte stream's marker segments, accumulating decoder
// state. It does not itself decode entropy-coded data; ParseHeaders returns
// the byte offset at which the scan's entropy-coded data begins so the
// caller can hand that off to a BitReader.
type Parser struct {
	data []byte
	pos  int
	opts Options

	sofSeen bool
	frame   FrameHeader

	quant [maxQuantTables]*QuantTable

	dcTables [maxHuffTables]*HuffmanCodebook
	acTables [maxHuffTables]*HuffmanCodebook

	restartInterval int
	comment         string
}

// NewParser returns a Parser positioned at the start of data.
func NewParser(data []byte, opts Options) *Parser {
	return &Parser{data: data, opts: opts}
}

func (p *Parser) remaining() int { return len(p.data) - p.pos }

func (p *Parser) byteAt(off int) (byte, error) {
	if p.pos+off >= len(p.data) {
		return 0, errIO("unexpected end of input")
	}

	return p.data[p.pos+off], nil
}

func (p *Parser) word16(off int) (int, error) {
	hi, err := p.byteAt(off)
	if err != nil {
		return 0, err
	}

	lo, err := p.byteAt(off + 1)
	if err != nil {
		return 0, err
	}

	return int(hi)<<8 | int(lo), nil
}

func (p *Parser) advance(n int) error {
	if p.remaining() < n {
		return errIO("unexpected end of input")
	}

	p.pos += n

	return nil
}

// readMarker expects and consumes a two-byte 0xFF marker code, returning the
// code's second byte.
func (p *Parser) readMarker() (byte, error) {
	b0, err := p.byteAt(0)
	if err != nil {
		return 0, err
	}

	if b0 != 0xFF {
		return 0, errStructural("expected marker, found byte 0x%02X", b0)
	}

	b1, err := p.byteAt(1)
	if err != nil {
		return 0, err
	}

	return b1, p.advance(2)
}

// segmentLength reads a marker segment's 2-byte length field (inclusive of
// itself) and returns the length of the payload that follows it.
func (p *Parser) segmentLength() (int, error) {
	l, err := p.word16(0)
	if err != nil {
		return 0, err
	}

	if l < 2 {
		return 0, errStructural("segment length %d is smaller than the length field itself", l)
	}

	if err := p.advance(2); err != nil {
		return 0, err
	}

	payload := l - 2
	if p.remaining() < payload {
		return 0, errIO("segment payload truncated")
	}

	return payload, nil
}

func (p *Parser) skipSegment() error {
	n, err := p.segmentLength()
	if err != nil {
		return err
	}

	return p.advance(n)
}

// ParseConfig walks markers only until the frame header (SOF0) is found,
// returning it without requiring Huffman/quantization tables or a scan
// header. Grounded on decodeSOF's configOnly short-circuit.
func (p *Parser) ParseConfig() (*FrameHeader, error) {
	if err := p.expectSOI(); err != nil {
		return nil, err
	}

	for {
		marker, err := p.readMarker()
		if err != nil {
			return nil, err
		}

		if marker == markerSOF0 {
			if err := p.parseSOF0(); err != nil {
				return nil, err
			}

			frame := p.frame

			return &frame, nil
		}

		if marker == markerEOI {
			return nil, errStructural("end of image reached before a frame header was found")
		}

		if err := p.dispatchNonFrameMarker(marker); err != nil {
			return nil, err
		}
	}
}

// ParseHeaders walks markers from SOI up to and including a scan header,
// returning the scan header and the byte offset (into the original data
// slice) at which the scan's entropy-coded data begins.
func (p *Parser) ParseHeaders() (*ScanHeader, int, error) {
	if err := p.expectSOI(); err != nil {
		return nil, 0, err
	}

	for {
		marker, err := p.readMarker()
		if err != nil {
			return nil, 0, err
		}

		switch marker {
		case markerSOF0:
			if err := p.parseSOF0(); err != nil {
				return nil, 0, err
			}
		case markerDHT:
			if err := p.parseDHT(); err != nil {
				return nil, 0, err
			}
		case markerDQT:
			if err := p.parseDQT(); err != nil {
				return nil, 0, err
			}
		case markerDRI:
			if err := p.parseDRI(); err != nil {
				return nil, 0, err
			}
		case markerCOM:
			if err := p.parseCOM(); err != nil {
				return nil, 0, err
			}
		case markerSOS:
			if !p.sofSeen {
				return nil, 0, errStructural("scan header found before any frame header")
			}

			scan, err := p.parseSOS()
			if err != nil {
				return nil, 0, err
			}

			return scan, p.pos, nil
		case markerEOI:
			return nil, 0, errStructural("end of image reached before a scan header was found")
		default:
			if err := p.dispatchNonFrameMarker(marker); err != nil {
				return nil, 0, err
			}
		}
	}
}

func (p *Parser) expectSOI() error {
	marker, err := p.readMarker()
	if err != nil {
		return err
	}

	if marker != markerSOI {
		return errStructural("input does not begin with a start-of-image marker")
	}

	return nil
}

// dispatchNonFrameMarker handles every marker ParseConfig and ParseHeaders
// treat identically: APPn, COM, DQT, DHT, DRI, RSTn. A marker that reaches
// neither caller's switch and isn't recognized here is fatal.
func (p *Parser) dispatchNonFrameMarker(marker byte) error {
	switch {
	case marker == markerDQT:
		return p.parseDQT()
	case marker == markerDHT:
		return p.parseDHT()
	case marker == markerDRI:
		return p.parseDRI()
	case marker == markerCOM:
		return p.parseCOM()
	case isAPPnMarker(marker):
		return p.parseAPPn()
	case isRSTMarker(marker):
		// A restart marker outside scan entropy data is spurious but
		// harmless; no restart interval is in effect between segments.
		return nil
	default:
		return errStructural("unexpected or unsupported marker 0xFF%02X", marker)
	}
}

func (p *Parser) parseCOM() error {
	n, err := p.segmentLength()
	if err != nil {
		return err
	}

	p.comment = string(p.data[p.pos : p.pos+n])

	return p.advance(n)
}

func (p *Parser) parseAPPn() error {
	hi, err := p.byteAt(0)
	if err != nil {
		return err
	}

	lo, err := p.byteAt(1)
	if err != nil {
		return err
	}

	l := int(hi)<<8 | int(lo)
	if l < 2 {
		if p.opts.StrictAPPn {
			return errStructural("APPn segment length %d is smaller than the length field itself", l)
		}

		return p.advance(2)
	}

	return p.skipSegment()
}

func (p *Parser) parseDQT() error {
	n, err := p.segmentLength()
	if err != nil {
		return err
	}

	end := p.pos + n
	for p.pos < end {
		pq, err := p.byteAt(0)
		if err != nil {
			return err
		}

		precision := pq >> 4
		id := int(pq & 0x0F)
		if precision > 1 {
			return errStructural("quantization table precision %d invalid", precision)
		}

		if id >= maxQuantTables {
			return errStructural("quantization table id %d out of range", id)
		}

		entrySize := 1
		if precision != 0 {
			entrySize = 2
		}

		if err := p.advance(1); err != nil {
			return err
		}

		// Quantization table entries are written in zig-zag scan order,
		// same as entropy-coded coefficients; de-zigzag so dequantize can
		// multiply element-wise against a raster-order Block.
		var qt QuantTable
		for i := 0; i < 64; i++ {
			var v int
			if entrySize == 1 {
				b, err := p.byteAt(0)
				if err != nil {
					return err
				}

				v = int(b)

				if err := p.advance(1); err != nil {
					return err
				}
			} else {
				v, err = p.word16(0)
				if err != nil {
					return err
				}

				if err := p.advance(2); err != nil {
					return err
				}
			}

			qt.Values[zigzag[i]] = uint16(v)
		}

		if p.quant[id] != nil {
			return errSemantic("duplicate quantization table id %d", id)
		}

		p.quant[id] = &qt
	}

	if p.pos != end {
		return errStructural("DQT segment length does not match its table contents")
	}

	return nil
}

func (p *Parser) parseDHT() error {
	n, err := p.segmentLength()
	if err != nil {
		return err
	}

	end := p.pos + n
	for p.pos < end {
		tc, err := p.byteAt(0)
		if err != nil {
			return err
		}

		class := tc >> 4 // 0 = DC, 1 = AC
		id := int(tc & 0x0F)
		if class > 1 || id >= maxHuffTables {
			return errStructural("Huffman table class/id 0x%02X invalid", tc)
		}

		if err := p.advance(1); err != nil {
			return err
		}

		var counts [16]byte
		for i := 0; i < 16; i++ {
			b, err := p.byteAt(0)
			if err != nil {
				return err
			}

			counts[i] = b

			if err := p.advance(1); err != nil {
				return err
			}
		}

		total := 0
		for _, c := range counts {
			total += int(c)
		}

		if p.remaining() < total {
			return errIO("Huffman table values truncated")
		}

		values := make([]byte, total)
		copy(values, p.data[p.pos:p.pos+total])

		if err := p.advance(total); err != nil {
			return err
		}

		codebook, err := BuildHuffmanCodebook(counts, values)
		if err != nil {
			return err
		}

		if class == 0 {
			if p.dcTables[id] != nil {
				return errSemantic("duplicate DC Huffman table id %d", id)
			}

			p.dcTables[id] = codebook
		} else {
			if p.acTables[id] != nil {
				return errSemantic("duplicate AC Huffman table id %d", id)
			}

			p.acTables[id] = codebook
		}
	}

	if p.pos != end {
		return errStructural("DHT segment length does not match its table contents")
	}

	return nil
}

func (p *Parser) parseDRI() error {
	n, err := p.segmentLength()
	if err != nil {
		return err
	}

	if n != 2 {
		return errStructural("DRI segment length must be 4, got %d", n+2)
	}

	interval, err := p.word16(0)
	if err != nil {
		return err
	}

	p.restartInterval = interval

	return p.advance(2)
}

func (p *Parser) parseSOF0() error {
	if p.sofSeen {
		return errStructural("two SOF markers present; only a single baseline frame header is supported")
	}

	n, err := p.segmentLength()
	if err != nil {
		return err
	}

	if n < 6 {
		return errStructural("SOF0 segment too short")
	}

	precision, err := p.byteAt(0)
	if err != nil {
		return err
	}

	if precision != 8 {
		return errSemantic("unsupported sample precision %d; only 8-bit baseline frames are supported", precision)
	}

	height, err := p.word16(1)
	if err != nil {
		return err
	}

	width, err := p.word16(3)
	if err != nil {
		return err
	}

	if width == 0 || height == 0 {
		return errSemantic("frame dimensions must be positive, got %dx%d", width, height)
	}

	nc, err := p.byteAt(5)
	if err != nil {
		return err
	}

	numChannels := int(nc)
	if numChannels < 1 || numChannels > 4 {
		return errSemantic("unsupported channel count %d", numChannels)
	}

	if n != 6+3*numChannels {
		return errStructural("SOF0 segment length does not match its channel count")
	}

	if err := p.advance(6); err != nil {
		return err
	}

	channels := make([]FrameChannel, numChannels)
	for i := 0; i < numChannels; i++ {
		id, err := p.byteAt(0)
		if err != nil {
			return err
		}

		hv, err := p.byteAt(1)
		if err != nil {
			return err
		}

		qtID, err := p.byteAt(2)
		if err != nil {
			return err
		}

		h := int(hv >> 4)
		v := int(hv & 0x0F)
		if h < 1 || h > 4 || v < 1 || v > 4 {
			return errSemantic("channel %d has invalid sampling factors %d:%d", id, h, v)
		}

		if int(qtID) >= maxQuantTables {
			return errStructural("channel %d references out-of-range quantization table %d", id, qtID)
		}

		channels[i] = FrameChannel{ID: int(id), H: h, V: v, QuantID: int(qtID)}

		if err := p.advance(3); err != nil {
			return err
		}
	}

	p.sofSeen = true
	p.frame = FrameHeader{Precision: int(precision), Height: height, Width: width, Channels: channels}

	return nil
}

func (p *Parser) parseSOS() (*ScanHeader, error) {
	n, err := p.segmentLength()
	if err != nil {
		return nil, err
	}

	if n < 1 {
		return nil, errStructural("SOS segment too short")
	}

	ns, err := p.byteAt(0)
	if err != nil {
		return nil, err
	}

	numChannels := int(ns)
	if numChannels < 1 || numChannels > len(p.frame.Channels) {
		return nil, errSemantic("scan references %d channels but the frame declares %d", numChannels, len(p.frame.Channels))
	}

	if n != 1+2*numChannels+3 {
		return nil, errStructural("SOS segment length does not match its channel count")
	}

	if err := p.advance(1); err != nil {
		return nil, err
	}

	channels := make([]ScanChannel, numChannels)
	for i := 0; i < numChannels; i++ {
		id, err := p.byteAt(0)
		if err != nil {
			return nil, err
		}

		selectors, err := p.byteAt(1)
		if err != nil {
			return nil, err
		}

		if !p.frameHasChannel(int(id)) {
			return nil, errSemantic("scan channel id %d is not present in the frame header", id)
		}

		dc := int(selectors >> 4)
		ac := int(selectors & 0x0F)
		if p.dcTables[dc] == nil {
			return nil, errSemantic("scan references undefined DC Huffman table %d", dc)
		}

		if p.acTables[ac] == nil {
			return nil, errSemantic("scan references undefined AC Huffman table %d", ac)
		}

		channels[i] = ScanChannel{ID: int(id), DCTable: dc, ACTable: ac}

		if err := p.advance(2); err != nil {
			return nil, err
		}
	}

	ss, err := p.byteAt(0)
	if err != nil {
		return nil, err
	}

	se, err := p.byteAt(1)
	if err != nil {
		return nil, err
	}

	ahal, err := p.byteAt(2)
	if err != nil {
		return nil, err
	}

	if ss != 0 || se != 63 || ahal != 0 {
		return nil, errSemantic("scan is not a single-pass baseline scan (Ss=%d Se=%d Ah/Al=0x%02X)", ss, se, ahal)
	}

	if err := p.advance(3); err != nil {
		return nil, err
	}

	return &ScanHeader{Channels: channels}, nil
}

func (p *Parser) frameHasChannel(id int) bool {
	for _, c := range p.frame.Channels {
		if c.ID == id {
			return true
		}
	}

	return false
}

// Frame returns the parsed frame header. Valid only after ParseHeaders or
// ParseConfig has returned successfully.
func (p *Parser) Frame() FrameHeader { return p.frame }

// Comment returns the most recently parsed COM segment's text, or "" if
// none was present.
func (p *Parser) Comment() string { return p.comment }

// RestartInterval returns the MCU count configured by a DRI segment, or 0
// if none was present.
func (p *Parser) RestartInterval() int { return p.restartInterval }

// QuantTable returns the quantization table registered under id, or nil if
// none was defined.
func (p *Parser) QuantTable(id int) *QuantTable { return p.quant[id] }

// DCTable returns the DC Huffman codebook registered under id, or nil if
// none was defined.
func (p *Parser) DCTable(id int) *HuffmanCodebook { return p.dcTables[id] }

// ACTable returns the AC Huffman codebook registered under id, or nil if
// none was defined.
func (p *Parser) ACTable(id int) *HuffmanCodebook { return p.acTables[id] }
