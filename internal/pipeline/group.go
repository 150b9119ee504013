package pipeline

import "golang.org/x/sync/errgroup"

// Group supervises the Consolidator and Writer goroutines as a pair,
// collecting the first non-nil error either returns. It does not alter the
// channel/cond-var handoff protocol between them; it only gives the owning
// Log a single handle to wait on at shutdown, the same role errgroup plays
// wherever pebble spawns a small fixed set of cooperating goroutines.
type Group struct {
	eg           *errgroup.Group
	consolidator *Consolidator
	writer       *Writer

	consolidatorDone chan struct{}
	writerDone       chan struct{}
}

// NewGroup starts the Consolidator and Writer goroutines.
func NewGroup(c *Consolidator, w *Writer) *Group {
	eg := &errgroup.Group{}
	g := &Group{
		eg:               eg,
		consolidator:     c,
		writer:           w,
		consolidatorDone: make(chan struct{}),
		writerDone:       make(chan struct{}),
	}
	eg.Go(func() error {
		defer close(g.consolidatorDone)
		return c.Run()
	})
	eg.Go(func() error {
		defer close(g.writerDone)
		return w.Run()
	})
	return g
}

// Stop shuts the pipeline down in the order the handoff protocol requires:
// the Consolidator is stopped and joined first (while the Writer is still
// servicing swaps, since a pending GlobalBuffer.Swap may be blocked
// waiting on the Writer's done channel), and only then is the Writer asked
// to stop.
func (g *Group) Stop() error {
	g.consolidator.RequestStop()
	<-g.consolidatorDone

	g.writer.RequestStop()
	<-g.writerDone

	return g.eg.Wait()
}
