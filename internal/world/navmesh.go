package world

// NavMesh simulates the navigation build that follows every terrain change.
// It blocks population while a rebuild is in flight or while any caller
// holds a lock.
type NavMesh struct {
	ticksPerChunk int
	remaining     int
	locks         int
	builds        uint64
}

// navChunk is the number of tiles rebuilt per ticksPerChunk.
const navChunk = 100

func NewNavMesh(ticksPerChunk int) *NavMesh {
	if ticksPerChunk < 0 {
		ticksPerChunk = 0
	}
	return &NavMesh{ticksPerChunk: ticksPerChunk}
}

// Invalidate starts a rebuild sized for tiles.
func (n *NavMesh) Invalidate(tiles int) {
	if tiles <= 0 || n.ticksPerChunk == 0 {
		n.remaining = 0
		return
	}
	chunks := (tiles + navChunk - 1) / navChunk
	n.remaining = chunks * n.ticksPerChunk
	n.builds++
}

// Tick advances an in-flight rebuild by one tick.
func (n *NavMesh) Tick() {
	if n.remaining > 0 {
		n.remaining--
	}
}

func (n *NavMesh) Lock() { n.locks++ }

func (n *NavMesh) Unlock() {
	if n.locks > 0 {
		n.locks--
	}
}

// IsBlocking reports whether navigation is being built or locked.
func (n *NavMesh) IsBlocking() bool { return n.remaining > 0 || n.locks > 0 }

// Remaining returns ticks left on the current rebuild.
func (n *NavMesh) Remaining() int { return n.remaining }

// Builds counts rebuilds started.
func (n *NavMesh) Builds() uint64 { return n.builds }
