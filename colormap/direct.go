package colormap

// Direct answers requests synchronously against a single Model, ignoring
// the colormap argument. It suits decoding in-process where there is no
// server to talk to. It is not safe for concurrent use.
type Direct struct {
	model   Model
	seq     uint32
	replies map[uint32]reply
}

// NewDirect returns a Direct service for m.
func NewDirect(m Model) *Direct {
	return &Direct{
		model:   m,
		replies: make(map[uint32]reply),
	}
}

// AllocColor allocates the color immediately and keeps the reply until it
// is collected.
func (d *Direct) AllocColor(_ uint32, r, g, b uint16) uint32 {
	d.seq++
	pixel, err := d.model.Alloc(r, g, b)
	d.replies[d.seq] = reply{pixel, err}
	return d.seq
}

func (d *Direct) AllocColorReply(sequence uint32) (uint32, error) {
	rep, ok := d.replies[sequence]
	if !ok {
		return 0, ErrUnknownSequence
	}
	delete(d.replies, sequence)
	return rep.pixel, rep.err
}
