package pipeline

// GlobalBuffer is the Consolidator/Writer double buffer: the Consolidator
// owns front exclusively, the Writer owns back exclusively, and the signal/
// done channels enforce a strict handoff where at most one global back
// buffer is ever in flight to the Writer.
type GlobalBuffer struct {
	front       []byte
	frontOffset int

	back     []byte
	backUsed int

	// signal is released (sent to) by the Consolidator once a back buffer is
	// ready, and acquired (received from) by the Writer. Starts empty.
	signal chan struct{}
	// done is released by the Writer once it has drained the back buffer,
	// and acquired by the Consolidator before it dares swap again. Starts
	// full ("available").
	done chan struct{}
}

// NewGlobalBuffer allocates a global buffer pair of the given capacity.
func NewGlobalBuffer(capacity int) *GlobalBuffer {
	g := &GlobalBuffer{
		front:  alignedBuffer(capacity),
		back:   alignedBuffer(capacity),
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}, 1),
	}
	g.done <- struct{}{}
	return g
}

func (g *GlobalBuffer) Capacity() int { return len(g.front) }

func (g *GlobalBuffer) Remaining() int { return len(g.front) - g.frontOffset }

func (g *GlobalBuffer) FrontOffset() int { return g.frontOffset }

// AppendFront copies p into the front buffer, which must have enough room.
func (g *GlobalBuffer) AppendFront(p []byte) {
	n := copy(g.front[g.frontOffset:], p)
	g.frontOffset += n
}

// FrontBytes returns the valid prefix of the front buffer, used during the
// shutdown drain of whatever the Consolidator packed but never swapped out.
func (g *GlobalBuffer) FrontBytes() []byte { return g.front[:g.frontOffset] }

func (g *GlobalBuffer) Back() []byte { return g.back[:g.backUsed] }

// Swap performs the Consolidator side of a handoff: block until the Writer
// has finished with the previous back buffer, swap front/back, and signal
// the Writer that a new back buffer is ready.
func (g *GlobalBuffer) Swap() {
	<-g.done
	g.front, g.back = g.back, g.front
	g.backUsed = g.frontOffset
	g.frontOffset = 0
	g.signal <- struct{}{}
}

// WaitForWork blocks until the Consolidator has signalled a swap.
func (g *GlobalBuffer) WaitForWork() {
	<-g.signal
}

// TryWaitForWork attempts a non-blocking receive of a pending swap signal,
// used by the Writer's final drain during shutdown.
func (g *GlobalBuffer) TryWaitForWork() bool {
	select {
	case <-g.signal:
		return true
	default:
		return false
	}
}

// FinishBack marks the current back buffer fully drained and lets the
// Consolidator swap again.
func (g *GlobalBuffer) FinishBack() {
	g.backUsed = 0
	g.done <- struct{}{}
}
