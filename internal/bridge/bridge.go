// Package bridge pairs an external decision process with a fortress: it sends
// periodic situation reports, accepts batches of commands in reply and feeds
// them through the command funnel at a fixed pace.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Garsondee/Fortress-Command/internal/game"
)

// Decider produces a JSON command batch for a situation report. Decide runs
// on its own goroutine and may take arbitrarily long.
type Decider interface {
	Decide(ctx context.Context, s *Summary) (string, error)
}

// DeciderFunc adapts a function to Decider.
type DeciderFunc func(ctx context.Context, s *Summary) (string, error)

func (f DeciderFunc) Decide(ctx context.Context, s *Summary) (string, error) { return f(ctx, s) }

// Config holds the bridge cadence.
type Config struct {
	ReportInterval  float64 // game seconds between reports
	CommandInterval float64 // game seconds between queued actions
	HistoryRounds   int
}

// DefaultConfig matches the stock game: a report every 20s, one action
// every 0.8s, the last 4 rounds kept.
func DefaultConfig() Config {
	return Config{ReportInterval: 20, CommandInterval: 0.8, HistoryRounds: 4}
}

// timerEpsilon absorbs float drift from summing fixed ticks.
const timerEpsilon = 1e-9

// Round is one request/response cycle with its submitted actions.
type Round struct {
	Index    int
	Thoughts string
	Actions  []*ActionEntry
}

// ActionEntry is a queued action plus the outcome written back after it runs.
type ActionEntry struct {
	Index  int // 1-based within its round
	Action Action
	Result string
}

type pendingRequest struct {
	token  uuid.UUID
	sentAt time.Time
}

type completion struct {
	token   uuid.UUID
	content string
	err     error
}

// Bridge drives one AI fortress. All methods except the decider call run on
// the simulation goroutine.
type Bridge struct {
	world    *game.World
	side     game.Side
	cfg      Config
	decider  Decider
	log      zerolog.Logger
	notifier game.Notifier
	metrics  *bridgeMetrics
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	pending *pendingRequest
	done    chan completion

	reportTimer  float64
	commandTimer float64
	queue        []*ActionEntry
	roundCounter int
	rounds       *Ring[*Round]
	events       *EventLog

	totalResponse float64
	responses     int
	lastSummary   *Summary
}

// Option customises a Bridge.
type Option func(*Bridge)

// WithLogger sets the bridge logger.
func WithLogger(l zerolog.Logger) Option { return func(b *Bridge) { b.log = l } }

// WithNotifier routes user-visible notices.
func WithNotifier(n game.Notifier) Option { return func(b *Bridge) { b.notifier = n } }

// WithClock replaces the wall clock used for response latency.
func WithClock(now func() time.Time) Option { return func(b *Bridge) { b.now = now } }

// New creates a bridge for side in w.
func New(w *game.World, side game.Side, d Decider, cfg Config, opts ...Option) (*Bridge, error) {
	if d == nil {
		return nil, errors.New("bridge: nil decider")
	}
	if cfg.ReportInterval <= 0 || cfg.CommandInterval <= 0 {
		return nil, fmt.Errorf("bridge: intervals must be positive (report=%v command=%v)",
			cfg.ReportInterval, cfg.CommandInterval)
	}
	if cfg.HistoryRounds < 1 {
		cfg.HistoryRounds = DefaultConfig().HistoryRounds
	}
	m, err := newBridgeMetrics(side.String())
	if err != nil {
		return nil, fmt.Errorf("bridge metrics: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	b := &Bridge{
		world:   w,
		side:    side,
		cfg:     cfg,
		decider: d,
		log:     zerolog.Nop(),
		metrics: m,
		now:     time.Now,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan completion, 1),
		rounds:  NewRing[*Round](cfg.HistoryRounds),
		events:  NewEventLog(cfg.HistoryRounds),
	}
	for _, o := range opts {
		o(b)
	}
	w.TrackDamage(side)
	b.log = b.log.With().Str("component", "bridge").Str("side", side.String()).Logger()
	return b, nil
}

// Close cancels the context handed to an outstanding decider call.
func (b *Bridge) Close() {
	b.cancel()
}

// Update advances the bridge by dt game seconds: apply a finished reply,
// ship a report when due, then run at most one queued action.
func (b *Bridge) Update(dt float64) {
	select {
	case c := <-b.done:
		b.complete(c)
	default:
	}

	b.reportTimer += dt
	f := b.world.Fortress(b.side)
	if f.Alive && b.pending == nil && b.reportTimer+timerEpsilon >= b.cfg.ReportInterval {
		b.reportTimer = 0
		b.dispatch()
	}

	b.pace(dt)
}

func (b *Bridge) dispatch() {
	s := b.buildSummary()
	b.lastSummary = s
	p := &pendingRequest{token: uuid.New(), sentAt: b.now()}
	b.pending = p
	b.metrics.request()
	b.log.Info().
		Str("token", p.token.String()).
		Int("round", s.CurrentRoundIndex).
		Int("allies", len(s.Allies)).
		Int("enemies", len(s.Enemies)).
		Msg("report sent")
	b.notify("syncing tactical data...")

	ctx, d, done := b.ctx, b.decider, b.done
	go func() {
		content, err := d.Decide(ctx, s)
		select {
		case done <- completion{token: p.token, content: content, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (b *Bridge) complete(c completion) {
	if b.pending == nil || c.token != b.pending.token {
		b.log.Warn().Str("token", c.token.String()).Msg("discarding stale reply")
		return
	}
	latency := b.now().Sub(b.pending.sentAt).Seconds()
	b.pending = nil

	if c.err != nil {
		b.metrics.failure("transport")
		b.log.Error().Err(c.err).Float64("latency", latency).Msg("decider call failed")
		b.notify("tactical link lost")
		return
	}
	b.totalResponse += latency
	b.responses++
	b.metrics.observeLatency(latency)

	n, err := b.Enqueue(c.content)
	if err != nil {
		b.metrics.failure("parse")
		b.log.Error().Err(err).Msg("reply rejected")
		b.notify("tactical link lost")
		return
	}
	b.log.Info().Int("actions", n).Float64("latency", latency).Msg("reply queued")
}

// Enqueue parses a reply and appends its actions to the queue as a new
// round. On error nothing changes.
func (b *Bridge) Enqueue(content string) (int, error) {
	if !b.world.Fortress(b.side).Alive {
		return 0, fmt.Errorf("enqueue: %w", game.ErrFortressDown)
	}
	resp, err := ParseResponse(content)
	if err != nil {
		return 0, err
	}
	r := &Round{Index: b.roundCounter, Thoughts: resp.Thoughts}
	b.roundCounter++
	for i, a := range resp.Actions {
		e := &ActionEntry{Index: i + 1, Action: a, Result: resultPending}
		r.Actions = append(r.Actions, e)
		b.queue = append(b.queue, e)
	}
	b.rounds.Push(r)
	b.metrics.enqueue(len(resp.Actions))
	return len(resp.Actions), nil
}

func (b *Bridge) pace(dt float64) {
	if !b.world.Fortress(b.side).Alive || len(b.queue) == 0 {
		return
	}
	b.commandTimer += dt
	if b.commandTimer+timerEpsilon < b.cfg.CommandInterval {
		return
	}
	e := b.queue[0]
	b.queue[0] = nil
	b.queue = b.queue[1:]
	b.commandTimer = 0
	b.execute(e)
}

func (b *Bridge) execute(e *ActionEntry) {
	res := b.run(e.Action)
	e.Result = fmt.Sprintf("[#%d] %s %s", e.Index, game.FormatGameTime(b.world.Time), res)
	b.metrics.execute(e.Action.Cmd)
	b.log.Debug().Str("cmd", e.Action.Cmd).Int("index", e.Index).Str("result", res).Msg("action executed")
}

func (b *Bridge) run(a Action) string {
	w := b.world
	switch a.Cmd {
	case CmdDeploy:
		ref, err := DecodeTarget(a.Target)
		if err != nil {
			return "deploy rejected: " + err.Error()
		}
		return w.Deploy(b.side, a.Type, ref)
	case CmdOrder:
		if a.ID == nil {
			return "order rejected: missing unit id"
		}
		ref, err := DecodeTarget(a.Target)
		if err != nil {
			return "order rejected: " + err.Error()
		}
		return w.Order(b.side, game.ActorID(*a.ID), ref)
	case CmdAutoScan:
		if a.ID == nil || a.On == nil {
			return "autoscan rejected: need id and on"
		}
		return w.SetAutoScan(b.side, game.ActorID(*a.ID), *a.On)
	case "":
		return "parse failed: missing cmd"
	default:
		return fmt.Sprintf("execution failed: unknown command %q", a.Cmd)
	}
}

// notify reports to the configured notifier, else to the world's.
func (b *Bridge) notify(msg string) {
	n := b.notifier
	if n == nil {
		n = b.world.Notifier
	}
	if n != nil {
		n.Notify(b.side, msg)
	}
}

func (b *Bridge) avgResponse() float64 {
	if b.responses == 0 {
		return 0
	}
	return b.totalResponse / float64(b.responses)
}

// Waiting reports whether a request is in flight.
func (b *Bridge) Waiting() bool { return b.pending != nil }

// QueueLen is the number of actions not yet executed.
func (b *Bridge) QueueLen() int { return len(b.queue) }

// RoundCounter is the index the next round will get.
func (b *Bridge) RoundCounter() int { return b.roundCounter }

// Rounds returns retained rounds oldest first.
func (b *Bridge) Rounds() []*Round { return b.rounds.Items() }

// Events returns retained event rounds oldest first.
func (b *Bridge) Events() []RoundEvents { return b.events.History() }

// LastSummary is the most recent report sent, or nil.
func (b *Bridge) LastSummary() *Summary { return b.lastSummary }

// AvgResponseTime is the mean decider latency in seconds.
func (b *Bridge) AvgResponseTime() float64 { return b.avgResponse() }

// Await blocks until the in-flight reply arrives and applies it. Headless
// runs call it right after Update to stay deterministic.
func (b *Bridge) Await(ctx context.Context) error {
	if b.pending == nil {
		return nil
	}
	select {
	case c := <-b.done:
		b.complete(c)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
