package colormap

import (
	"sync"
)

type reply struct {
	pixel uint32
	err   error
}

type request struct {
	colormap uint32
	r, g, b  uint16
	reply    chan<- reply
}

// Server processes allocation requests on a single goroutine in the order
// they were made. It is safe for concurrent use, though a decode expects
// to be the only one collecting the sequences it was handed.
type Server struct {
	mu        sync.Mutex
	cond      *sync.Cond
	queue     []request
	seq       uint32
	pending   map[uint32]<-chan reply
	closed    bool
	nextID    uint32
	colormaps map[uint32]Model

	done chan struct{}
}

// NewServer starts a server with no colormaps.
func NewServer() *Server {
	s := &Server{
		pending:   make(map[uint32]<-chan reply),
		colormaps: make(map[uint32]Model),
		done:      make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	go s.run()
	return s
}

// next blocks until there is a request to process, returning false once
// the server is closed and the queue drained
func (s *Server) next() (request, Model, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.queue) == 0 && !s.closed {
		s.cond.Wait()
	}
	if len(s.queue) == 0 {
		return request{}, nil, false
	}
	req := s.queue[0]
	s.queue[0] = request{}
	s.queue = s.queue[1:]
	return req, s.colormaps[req.colormap], true
}

func (s *Server) run() {
	defer close(s.done)
	for {
		req, m, ok := s.next()
		if !ok {
			return
		}
		if m == nil {
			req.reply <- reply{err: ErrBadColormap}
			continue
		}
		pixel, err := m.Alloc(req.r, req.g, req.b)
		req.reply <- reply{pixel, err}
	}
}

// CreateColormap registers m and returns its id.
func (s *Server) CreateColormap(m Model) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	s.colormaps[s.nextID] = m
	return s.nextID
}

// FreeColormap forgets the colormap. Requests still queued against it
// fail with ErrBadColormap.
func (s *Server) FreeColormap(id uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.colormaps, id)
}

// AllocColor queues an allocation and returns its sequence number without
// waiting for the reply.
func (s *Server) AllocColor(colormap uint32, r, g, b uint16) uint32 {
	ch := make(chan reply, 1)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.pending[s.seq] = ch
	if s.closed {
		ch <- reply{err: ErrClosed}
		return s.seq
	}
	s.queue = append(s.queue, request{colormap, r, g, b, ch})
	s.cond.Signal()
	return s.seq
}

// AllocColorReply blocks until the reply for sequence is available.
func (s *Server) AllocColorReply(sequence uint32) (uint32, error) {
	s.mu.Lock()
	ch, ok := s.pending[sequence]
	delete(s.pending, sequence)
	s.mu.Unlock()

	if !ok {
		return 0, ErrUnknownSequence
	}
	rep := <-ch
	return rep.pixel, rep.err
}

// Close stops the server once every queued request has been answered.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.cond.Broadcast()
	s.mu.Unlock()

	<-s.done
	return nil
}
