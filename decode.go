package jpegbase

import (
	"io"
	"sync"
)

// Top-level decoder orchestration: read the input, parse headers, decode
// entropy-coded scan data, reconstruct pixels, and hand them to an
// ImageSink. Grounded on gen2brain-jpegn/jpegn.go's Decode/DecodeConfig
// entry points and readAllData's reader-length fast path, adapted to this
// module's ImageSink collaborator instead of returning an image.Image.

// maxHeaderSize bounds how much of the stream DecodeConfig will read while
// looking for a frame header, mirroring the teacher's header buffer pool
// size: real-world JPEG headers are well under this.
const maxHeaderSize = 65536

var headerBufferPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, maxHeaderSize)
		return &b
	},
}

// Config is a frame's dimensions, as read from its SOF0 marker.
type Config struct {
	Width, Height int
}

// readerWithLen lets readAllData pre-size its buffer for readers that know
// their own remaining length (e.g. *bytes.Reader), avoiding the repeated
// reallocation io.ReadAll does for large inputs.
type readerWithLen interface {
	Len() int
}

func readAllData(r io.Reader) ([]byte, error) {
	if rl, ok := r.(readerWithLen); ok {
		if size := rl.Len(); size > 0 {
			data := make([]byte, size)
			if _, err := io.ReadFull(r, data); err != nil {
				return nil, errIO("failed to read input: %v", err)
			}

			return data, nil
		}
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errIO("failed to read input: %v", err)
	}

	return data, nil
}

// DecodeConfig reads at most maxHeaderSize bytes of r and returns the
// dimensions from the frame header found in them, without decoding any
// scan data. A frame header that does not lie entirely within that prefix
// yields an error.
func DecodeConfig(r io.Reader) (Config, error) {
	bufPtr := headerBufferPool.Get().(*[]byte)
	defer headerBufferPool.Put(bufPtr)

	n, err := io.ReadFull(r, *bufPtr)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return Config{}, errIO("failed to read input: %v", err)
	}

	frame, perr := NewParser((*bufPtr)[:n], DefaultOptions()).ParseConfig()
	if perr != nil {
		return Config{}, perr
	}

	return Config{Width: frame.Width, Height: frame.Height}, nil
}

// Decode reads a complete baseline JPEG stream from r, decodes it, and
// writes every pixel to sink in raster order, then reports any comment
// text found along the way via sink.SetComment.
func Decode(r io.Reader, sink ImageSink, opts Options) error {
	data, err := readAllData(r)
	if err != nil {
		return err
	}

	p := NewParser(data, opts)

	scan, scanOffset, err := p.ParseHeaders()
	if err != nil {
		return err
	}

	frame := p.Frame()

	if len(frame.Channels) == 2 && opts.RequireFullChroma {
		return errSemantic("2-channel frames have no well-defined chroma interpretation")
	}

	maxH, maxV := 1, 1
	for _, c := range frame.Channels {
		if c.H > maxH {
			maxH = c.H
		}

		if c.V > maxV {
			maxV = c.V
		}
	}

	mcuW := ceilDiv(frame.Width, 8*maxH)
	mcuH := ceilDiv(frame.Height, 8*maxV)

	channels := make([]scanChannelInfo, len(scan.Channels))
	quants := make([]*QuantTable, len(scan.Channels))

	for i, sc := range scan.Channels {
		fc, err := findFrameChannel(frame, sc.ID)
		if err != nil {
			return err
		}

		qt := p.QuantTable(fc.QuantID)
		if qt == nil {
			return errSemantic("channel %d references undefined quantization table %d", sc.ID, fc.QuantID)
		}

		channels[i] = scanChannelInfo{
			frame:   fc,
			dcTable: p.DCTable(sc.DCTable),
			acTable: p.ACTable(sc.ACTable),
		}
		quants[i] = qt
	}

	br := NewBitReader(data[scanOffset:])

	blocks, err := decodeEntropyData(br, mcuW, mcuH, channels)
	if err != nil {
		return err
	}

	br.Align()

	eoi, err := br.ReadMarker()
	if err != nil {
		return err
	}

	if eoi != markerEOI {
		return errStructural("expected end-of-image marker after scan data, found 0xFF%02X", eoi)
	}

	planes := make([]channelPlane, len(channels))
	for i, ch := range channels {
		planes[i] = reconstructChannel(blocks[i], quants[i], mcuW, mcuH, ch.frame.H, ch.frame.V)
	}

	composeImage(frame.Width, frame.Height, maxH, maxV, planes, sink)

	sink.SetComment(p.Comment())

	return nil
}

func findFrameChannel(frame FrameHeader, id int) (FrameChannel, error) {
	for _, c := range frame.Channels {
		if c.ID == id {
			return c, nil
		}
	}

	return FrameChannel{}, errSemantic("scan channel id %d not found in frame header", id)
}
