// Package gate defers population until an external readiness predicate
// (navigation building) clears. Waiting is cooperative: the gate never
// blocks, it asks a Scheduler to call it back later.
package gate

import (
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// DefaultRetryInterval is the delay between readiness checks.
const DefaultRetryInterval = 250 * time.Millisecond

// State of the gate.
type State uint8

const (
	Idle State = iota
	Polling
	Ready
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Polling:
		return "polling"
	case Ready:
		return "ready"
	}
	return fmt.Sprintf("state(%d)", s)
}

// Predicate reports whether population must keep waiting.
type Predicate interface {
	IsBlocking() bool
}

// PredicateFunc adapts a function to Predicate.
type PredicateFunc func() bool

func (f PredicateFunc) IsBlocking() bool { return f() }

// Token identifies a scheduled callback. Zero is never a valid token.
type Token uint64

// Scheduler runs fn once after delay. Cancel of an unknown or already fired
// token is a no-op.
type Scheduler interface {
	After(delay time.Duration, fn func()) Token
	Cancel(t Token)
}

// Config tunes the poll loop.
type Config struct {
	RetryInterval time.Duration `toml:"retry_interval"`
	// MaxAttempts caps the number of readiness checks per sequence.
	// Zero waits indefinitely.
	MaxAttempts int `toml:"max_attempts"`
}

// Gate is the Idle → Polling → Ready state machine. It holds at most one
// pending scheduler callback at any time.
type Gate struct {
	pred  Predicate
	sched Scheduler
	cfg   Config
	log   *zap.Logger

	state    State
	pending  Token
	seq      uint64
	attempts int
	backoff  retry.Backoff
	onReady  func()
}

func New(pred Predicate, sched Scheduler, cfg Config, log *zap.Logger) *Gate {
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = DefaultRetryInterval
	}
	if cfg.MaxAttempts < 0 {
		cfg.MaxAttempts = 0
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Gate{pred: pred, sched: sched, cfg: cfg, log: log}
}

func (g *Gate) State() State { return g.state }

// Attempts returns how many readiness checks the current sequence has made.
func (g *Gate) Attempts() int { return g.attempts }

// Pending reports whether a poll callback is scheduled.
func (g *Gate) Pending() bool { return g.pending != 0 }

// Begin starts a new poll sequence. Any sequence still polling is cancelled
// first, so its onReady can never fire. The first check runs on the next
// scheduler tick. onReady runs exactly once, when the predicate first
// reports not blocking.
func (g *Gate) Begin(onReady func()) {
	g.Cancel()
	g.seq++
	g.state = Polling
	g.attempts = 0
	g.onReady = onReady

	var b retry.Backoff = retry.NewConstant(g.cfg.RetryInterval)
	if g.cfg.MaxAttempts > 0 {
		b = retry.WithMaxRetries(uint64(g.cfg.MaxAttempts-1), b)
	}
	g.backoff = b

	g.schedule(0)
}

// Cancel drops the pending poll, if any, and returns the gate to Idle.
// A gate that already reached Ready stays Ready.
func (g *Gate) Cancel() {
	if g.pending != 0 {
		g.sched.Cancel(g.pending)
		g.pending = 0
	}
	if g.state == Polling {
		g.state = Idle
	}
	g.onReady = nil
	g.seq++
}

func (g *Gate) schedule(delay time.Duration) {
	seq := g.seq
	g.pending = g.sched.After(delay, func() { g.check(seq) })
}

func (g *Gate) check(seq uint64) {
	if seq != g.seq || g.state != Polling {
		return
	}
	g.pending = 0
	g.attempts++

	if g.pred != nil && g.pred.IsBlocking() {
		next, stop := g.backoff.Next()
		if stop {
			g.state = Idle
			g.onReady = nil
			g.log.Error("gate: readiness never cleared, population abandoned",
				zap.Int("attempts", g.attempts))
			return
		}
		g.log.Debug("gate: world still building, retrying",
			zap.Int("attempt", g.attempts),
			zap.Duration("retry_in", next))
		g.schedule(next)
		return
	}

	g.state = Ready
	fn := g.onReady
	g.onReady = nil
	g.log.Debug("gate: ready", zap.Int("attempts", g.attempts))
	if fn != nil {
		fn()
	}
}
