// Package recognize watches a drawing surface, debounces ink changes and
// turns the active equation into an answer annotation.
package recognize

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"

	"github.com/ddvk/inkcalc/annotate"
	"github.com/ddvk/inkcalc/entitlement"
	"github.com/ddvk/inkcalc/ink"
	"github.com/ddvk/inkcalc/log"
	"github.com/ddvk/inkcalc/store"
	"github.com/ddvk/inkcalc/stroke"
)

const (
	DefaultDebounce    = 1500 * time.Millisecond
	DefaultDedupWindow = 2000 * time.Millisecond
	DefaultCacheTTL    = 10 * time.Minute
	DefaultTimeout     = 30 * time.Second
)

var (
	// ErrStale means the ink changed while the result was computed.
	ErrStale = errors.New("recognize: result superseded")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("recognize: orchestrator closed")
)

// Annotator shows an answer next to its cluster.
type Annotator interface {
	Display(a annotate.Answer, bounds ink.Bounds) *ink.Shape
}

// Saver persists displayed equations.
type Saver interface {
	Save(ctx context.Context, e store.Equation) error
}

type Option func(*Orchestrator)

// WithDebounce sets the quiet period before recognition.
func WithDebounce(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.debounce = d
		}
	}
}

func WithDedupWindow(d time.Duration) Option {
	return func(o *Orchestrator) { o.dedupWindow = d }
}

func WithBandPadding(p float64) Option {
	return func(o *Orchestrator) { o.bandPadding = p }
}

func WithCacheTTL(d time.Duration) Option {
	return func(o *Orchestrator) { o.cache = cache.New(d, 2*d) }
}

// WithTimeout bounds a single backend call.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

func WithEntitlement(c entitlement.Checker) Option {
	return func(o *Orchestrator) { o.checker = c }
}

func WithSaver(s Saver) Option {
	return func(o *Orchestrator) { o.saver = s }
}

// WithClock replaces time.Now for the dedup window.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// Orchestrator drives recognition for one drawing surface. At most one
// recognition runs at a time; results computed for a cluster that is no
// longer current are dropped.
type Orchestrator struct {
	store       *ink.Store
	annotator   Annotator
	recognizers []Recognizer
	checker     entitlement.Checker
	saver       Saver
	cache       *cache.Cache
	now         func() time.Time

	debounce    time.Duration
	dedupWindow time.Duration
	bandPadding float64
	timeout     time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	task   *ScheduledTask

	mu          sync.Mutex
	idle        *sync.Cond
	session     *session
	inFlight    bool
	rerun       bool
	closed      bool
	unsubscribe func()
}

// New builds an orchestrator. Recognizers are tried in order.
func New(s *ink.Store, annotator Annotator, recognizers []Recognizer, opts ...Option) *Orchestrator {
	ctx, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		store:       s,
		annotator:   annotator,
		recognizers: recognizers,
		cache:       cache.New(DefaultCacheTTL, 2*DefaultCacheTTL),
		now:         time.Now,
		debounce:    DefaultDebounce,
		dedupWindow: DefaultDedupWindow,
		bandPadding: stroke.DefaultBandPadding,
		timeout:     DefaultTimeout,
		ctx:         ctx,
		cancel:      cancel,
		session:     newSession(),
	}
	o.idle = sync.NewCond(&o.mu)
	for _, opt := range opts {
		opt(o)
	}
	o.task = NewScheduledTask(o.debounce, o.fire)
	return o
}

// Attach starts watching the store. Detach with Close.
func (o *Orchestrator) Attach() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed || o.unsubscribe != nil {
		return
	}
	o.unsubscribe = o.store.Subscribe(o.onChange)
}

// Detach stops watching the store and drops a pending recognition. The
// orchestrator stays usable for Flush and RecognizeAll.
func (o *Orchestrator) Detach() {
	o.mu.Lock()
	unsubscribe := o.unsubscribe
	o.unsubscribe = nil
	if !o.inFlight {
		o.session.state = Idle
	}
	o.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	o.task.Stop()
}

// Attached reports whether the orchestrator is watching the store.
func (o *Orchestrator) Attached() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.unsubscribe != nil
}

// Close stops the debounce timer, detaches from the store and cancels any
// running backend call.
func (o *Orchestrator) Close() {
	o.task.Cancel()

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	unsubscribe := o.unsubscribe
	o.unsubscribe = nil
	o.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	o.cancel()

	o.mu.Lock()
	for o.inFlight {
		o.idle.Wait()
	}
	o.mu.Unlock()
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session.state
}

// AuthFailed reports whether a backend was disabled by an auth failure.
func (o *Orchestrator) AuthFailed(backend string) bool {
	return o.session.isAuthFailed(backend)
}

func (o *Orchestrator) onChange(c ink.Change) {
	if c.Shape != nil && c.Shape.IsSystem() {
		return
	}

	cluster, ok := stroke.ActiveCluster(o.store.InkShapes(), o.bandPadding)

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	if !ok {
		o.session.target = ""
		if !o.inFlight {
			o.session.state = Idle
		}
		o.mu.Unlock()
		o.task.Stop()
		return
	}

	sig := cluster.Signature()
	if sig == o.session.lastSignature {
		o.session.target = sig
		o.mu.Unlock()
		return
	}
	o.session.target = sig
	if !o.inFlight {
		o.session.state = Debouncing
	}
	o.mu.Unlock()

	log.Trace.Printf("recognize: debouncing %d shapes", len(cluster.Shapes))
	o.task.Reschedule()
}

// fire runs on the timer goroutine when the ink has been quiet.
func (o *Orchestrator) fire() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	if o.inFlight {
		o.rerun = true
		o.mu.Unlock()
		return
	}
	o.inFlight = true
	o.mu.Unlock()

	for {
		if _, err := o.runActive(o.ctx); err != nil && !errors.Is(err, ErrUnrecognizable) {
			log.Trace.Printf("recognize: %v", err)
		}

		o.mu.Lock()
		if !o.rerun || o.closed {
			o.rerun = false
			o.inFlight = false
			o.idle.Broadcast()
			o.mu.Unlock()
			return
		}
		o.rerun = false
		o.mu.Unlock()
	}
}

// Flush skips the debounce and recognizes the active cluster now, waiting
// for a running attempt to finish first.
func (o *Orchestrator) Flush(ctx context.Context) (Result, error) {
	o.task.Stop()

	o.mu.Lock()
	for o.inFlight && !o.closed {
		o.idle.Wait()
	}
	if o.closed {
		o.mu.Unlock()
		return Result{}, ErrClosed
	}
	o.inFlight = true
	o.rerun = false
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		rerun := o.rerun && !o.closed
		o.rerun = false
		o.inFlight = false
		o.idle.Broadcast()
		o.mu.Unlock()

		// the debounce fired while we were busy
		if rerun {
			go o.fire()
		}
	}()
	return o.runActive(ctx)
}

// runActive recognizes the current active cluster unless it was already
// processed. The caller holds the in-flight slot.
func (o *Orchestrator) runActive(ctx context.Context) (Result, error) {
	cluster, ok := stroke.ActiveCluster(o.store.InkShapes(), o.bandPadding)
	if !ok {
		o.setState(Idle)
		return Result{}, ErrUnrecognizable
	}
	sig := cluster.Signature()

	o.mu.Lock()
	if sig == o.session.lastSignature {
		o.session.state = Idle
		o.mu.Unlock()
		return Result{}, nil
	}
	o.session.target = sig
	o.session.state = Recognizing
	o.mu.Unlock()

	res, err := o.recognizeCached(ctx, cluster)

	o.mu.Lock()
	if sig != o.session.target {
		o.session.state = Idle
		if o.task.Pending() {
			o.session.state = Debouncing
		}
		o.mu.Unlock()
		log.Trace.Printf("recognize: dropping result for superseded cluster")
		return res, ErrStale
	}
	o.session.lastSignature = sig
	if err != nil || !res.Usable() {
		o.session.state = Failed
		o.mu.Unlock()
		if err == nil {
			err = ErrUnrecognizable
		}
		log.Trace.Printf("recognize: %s: %v", Failed, err)
		o.settle(Failed)
		return res, err
	}

	now := o.now()
	if o.session.duplicate(res.Value, now, o.dedupWindow) {
		o.session.state = Idle
		o.mu.Unlock()
		log.Trace.Printf("recognize: %q already displayed", res.Value)
		return res, nil
	}
	o.session.displayedValue = res.Value
	o.session.displayedAt = now
	o.session.state = Displayed
	o.mu.Unlock()

	if o.annotator != nil {
		o.annotator.Display(annotate.Answer(res), cluster.Bounds)
	}
	o.save(ctx, sig, res, cluster.Bounds, now)
	o.settle(Displayed)
	return res, nil
}

// settle returns to Idle unless new ink moved the session on from s.
func (o *Orchestrator) settle(s State) {
	o.mu.Lock()
	if o.session.state == s {
		o.session.state = Idle
	}
	o.mu.Unlock()
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.session.state = s
	o.mu.Unlock()
}

func (o *Orchestrator) save(ctx context.Context, sig string, res Result, b ink.Bounds, at time.Time) {
	if o.saver == nil {
		return
	}
	err := o.saver.Save(ctx, store.Equation{
		Signature:  sig,
		Latex:      res.Latex,
		Expression: res.Expression,
		Value:      res.Value,
		Backend:    res.Backend,
		MinX:       b.MinX,
		MinY:       b.MinY,
		MaxX:       b.MaxX,
		MaxY:       b.MaxY,
		CreatedAt:  at,
	})
	if err != nil {
		log.Warning.Printf("recognize: save equation: %v", err)
	}
}

func (o *Orchestrator) recognizeCached(ctx context.Context, cluster stroke.Cluster) (Result, error) {
	sig := cluster.Signature()
	if cached, found := o.cache.Get(sig); found {
		log.Trace.Printf("recognize: cache hit")
		return cached.(Result), nil
	}
	res, err := o.recognize(ctx, cluster)
	if err == nil && res.Usable() {
		o.cache.Set(sig, res, cache.DefaultExpiration)
	}
	return res, err
}

// recognize tries each backend in order until one yields a value.
func (o *Orchestrator) recognize(ctx context.Context, cluster stroke.Cluster) (Result, error) {
	lastErr := ErrUnrecognizable
	for _, r := range o.recognizers {
		name := r.Name()
		if o.session.isAuthFailed(name) {
			continue
		}
		if !r.Available() {
			if o.session.warnOnce(name) {
				log.Warning.Printf("recognize: %s backend is not configured, skipping", name)
			}
			continue
		}
		if o.checker != nil && !o.checker.Allowed(ctx, name) {
			log.Trace.Printf("recognize: %s not entitled", name)
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, o.timeout)
		res, err := r.Recognize(callCtx, cluster)
		cancel()
		if err == nil && res.Usable() {
			log.Trace.Printf("recognize: %s -> %q", name, res.Value)
			return res, nil
		}

		err = classify(err)
		switch {
		case err == nil:
			err = ErrUnrecognizable
		case errors.Is(err, ErrUnauthorized):
			if o.session.markAuthFailed(name) {
				log.Warning.Printf("recognize: %s backend rejected credentials, disabled for this session", name)
			}
		case errors.Is(err, ErrConfigurationMissing):
			if o.session.warnOnce(name) {
				log.Warning.Printf("recognize: %s backend is not configured, skipping", name)
			}
		case errors.Is(err, ErrUnrecognizable):
			log.Trace.Printf("recognize: %s: %v", name, err)
		default:
			log.Info.Printf("recognize: %s: %v", name, err)
		}
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		lastErr = err
	}
	return Result{}, lastErr
}
