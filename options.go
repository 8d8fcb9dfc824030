package jpegbase

// Options controls a handful of decoder behaviors left as open questions
// by the baseline specification this module implements. The zero value
// (via Options{}) disables both strictness toggles; use DefaultOptions for
// the spec-recommended defaults.
type Options struct {
	// StrictAPPn rejects an APPn segment whose length field is < 2
	// (a length field must cover at least itself). When false, such a
	// segment is tolerated and treated as empty.
	StrictAPPn bool

	// RequireFullChroma rejects a frame that declares exactly two
	// channels, a combination the JFIF profile never produces and for
	// which a Cb/Cr default has no well-defined meaning. When false, a
	// 2-channel frame decodes using only its first channel as luma.
	RequireFullChroma bool
}

// DefaultOptions returns the spec-recommended strictness defaults.
func DefaultOptions() Options {
	return Options{
		StrictAPPn:        true,
		RequireFullChroma: true,
	}
}
