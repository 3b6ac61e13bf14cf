package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// ErrStopped is returned by requests made after Run has returned.
var ErrStopped = errors.New("dashboard stopped")

const eventBuffer = 64

// Frame is one rendered state. Seq increases by one per render.
type Frame struct {
	Seq   uint64 `json:"seq"`
	View  View   `json:"view"`
	State State  `json:"-"`
}

// Dashboard owns the ledger and upload state and serialises every change to
// it through a single goroutine started by Run.
//
// Responsibilities:
//   - Holds the LedgerStore and the UploadController and only touches them
//     from the loop goroutine.
//   - Runs network calls on their own goroutines and feeds the results back
//     as events.
//   - Renders a new Frame after every event that changed state and offers it
//     to every subscriber.
type Dashboard struct {
	catalog Catalog
	log     zerolog.Logger

	events chan event
	done   chan struct{}
	once   sync.Once

	ledger *LedgerStore
	upload *UploadController

	seq     uint64
	frame   Frame
	subs    map[int]chan Frame
	nextSub int
}

// Option configures a Dashboard.
type Option func(*Dashboard)

// WithCatalog sets the message catalog. English is the default.
func WithCatalog(c Catalog) Option {
	return func(d *Dashboard) { d.catalog = c }
}

// WithLogger sets the logger used by the dashboard and its components.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Dashboard) { d.log = l }
}

// New builds a Dashboard around api. Nothing is fetched until Run.
//
// Parameters:
//   - api (LedgerAPI): the ledger service, usually a *ledgerclient.Client.
//   - opts (...Option): catalog and logger overrides.
//
// Returns:
//   - *Dashboard: an idle dashboard; call Run on its own goroutine.
func New(api LedgerAPI, opts ...Option) *Dashboard {
	d := &Dashboard{
		catalog: CatalogFor("en"),
		log:     zerolog.Nop(),
		events:  make(chan event, eventBuffer),
		done:    make(chan struct{}),
		subs:    make(map[int]chan Frame),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.ledger = newLedgerStore(api, d, d.log)
	d.upload = newUploadController(api, d, d.ledger, d.catalog, d.log)
	return d
}

// Run mounts the dashboard and processes events until ctx is done.
//
// Responsibilities:
//   - Renders the initial frame with empty trades and stats.
//   - Starts RefreshTrades and RefreshStats without waiting for either.
//   - Applies user actions and fetch results in arrival order.
//   - On return, closes every subscription; later requests get ErrStopped
//     and late fetch results are dropped.
//
// Parameters:
//   - ctx (context.Context): cancelling it unmounts the dashboard.
//
// Returns:
//   - error: nil after ctx is done, or an error when Run was already called.
func (d *Dashboard) Run(ctx context.Context) error {
	started := false
	d.once.Do(func() { started = true })
	if !started {
		return errors.New("dashboard: Run called twice")
	}
	defer d.unmount()

	d.render()
	d.ledger.RefreshTrades()
	d.ledger.RefreshStats()
	d.log.Info().Msg("dashboard mounted")

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-d.events:
			if ev.handle(d) {
				d.render()
			}
		}
	}
}

// Refresh asks the ledger store to reload trades and stats.
func (d *Dashboard) Refresh() {
	d.post(refreshRequested{})
}

// SelectFile records the file to upload on the next SubmitUpload.
func (d *Dashboard) SelectFile(f FileHandle) {
	d.post(fileSelected{file: f})
}

// SubmitUpload uploads the selected file. The result shows up in a later frame.
func (d *Dashboard) SubmitUpload() {
	d.post(uploadSubmitted{})
}

// Current returns the latest frame.
//
// Returns:
//   - Frame: the frame rendered after the last state change.
//   - error: ErrStopped once Run has returned, or ctx.Err().
func (d *Dashboard) Current(ctx context.Context) (Frame, error) {
	reply := make(chan Frame, 1)
	if !d.post(currentRequested{reply: reply}) {
		return Frame{}, ErrStopped
	}
	select {
	case f := <-reply:
		return f, nil
	case <-d.done:
		return Frame{}, ErrStopped
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	}
}

// Subscribe returns a channel that receives the current frame and every frame
// rendered after it. A slow reader only ever misses intermediate frames; the
// newest one is always delivered. The channel is closed by the returned cancel
// func or when the dashboard stops.
//
// Parameters:
//   - ctx (context.Context): bounds only the registration, not the subscription.
//
// Returns:
//   - <-chan Frame: buffered for one frame, starting with the current one.
//   - func(): unsubscribes and closes the channel; safe to call more than once.
//   - error: ErrStopped once Run has returned, or ctx.Err().
func (d *Dashboard) Subscribe(ctx context.Context) (<-chan Frame, func(), error) {
	ch := make(chan Frame, 1)
	reply := make(chan int, 1)
	if !d.post(subscribed{ch: ch, reply: reply}) {
		return nil, nil, ErrStopped
	}
	select {
	case id := <-reply:
		return ch, func() { d.post(unsubscribed{id: id}) }, nil
	case <-d.done:
		return nil, nil, ErrStopped
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
}

// spawn runs call on its own goroutine and feeds its result back to the loop.
// Calls are never cancelled; a result that arrives after unmount is dropped.
func (d *Dashboard) spawn(op string, call func(ctx context.Context) event) {
	go func() {
		ev := call(context.Background())
		if !d.post(ev) {
			d.log.Debug().Str("op", op).Msg("completion dropped after unmount")
		}
	}()
}

func (d *Dashboard) post(ev event) bool {
	select {
	case <-d.done:
		return false
	default:
	}
	select {
	case d.events <- ev:
		return true
	case <-d.done:
		return false
	}
}

func (d *Dashboard) state() State {
	return State{Ledger: d.ledger.State(), Upload: d.upload.State()}
}

func (d *Dashboard) render() {
	d.seq++
	st := d.state()
	d.frame = Frame{Seq: d.seq, View: Render(st, d.catalog), State: st}
	for _, ch := range d.subs {
		offer(ch, d.frame)
	}
}

func (d *Dashboard) unmount() {
	close(d.done)
	for id, ch := range d.subs {
		delete(d.subs, id)
		close(ch)
	}
	d.log.Info().Uint64("frames", d.seq).Msg("dashboard unmounted")
}

// offer replaces whatever frame is waiting in ch with f.
func offer(ch chan Frame, f Frame) {
	select {
	case ch <- f:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- f:
	default:
	}
}
