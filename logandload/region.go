package logandload

// regionToken records whether a region was actually opened on the wire
// (Category.Region() may have suppressed it) so End/detach can no-op
// correctly.
type regionToken struct {
	active bool
	depth  int
}

// Region is a movable handle on an open region: it must be closed exactly
// once, either by End or by letting Detach transfer ownership to the
// caller's own bookkeeping. There is no destructor to rely on, so the
// at-most-once guarantee is a boolean guard instead.
type Region struct {
	stream *Stream
	token  regionToken
	closed bool
}

// BeginRegion opens an anonymous region on s.
func (s *Stream) BeginRegion() *Region {
	return &Region{stream: s, token: s.beginRegion("")}
}

// BeginNamedRegion opens a named region on s.
func (s *Stream) BeginNamedRegion(name string) *Region {
	return &Region{stream: s, token: s.beginRegion(name)}
}

// End closes the region, emitting the region-end marker if it was actually
// opened on the wire. Calling End more than once is a no-op.
func (r *Region) End() {
	if r.closed {
		return
	}
	r.closed = true
	r.stream.endRegion(r.token)
}

// Detach marks the receiver closed without emitting the end marker and
// returns a new Region bound to the same open region, transferring
// responsibility for eventually closing it elsewhere. This lets a region
// survive its original lexical scope, e.g. opened in one function and
// closed in another.
func (r *Region) Detach() *Region {
	r.closed = true
	return &Region{stream: r.stream, token: r.token}
}
