// Package bot runs the conversation daemon: it pumps inbound events from
// the messaging gateway through the dialogue engine, applies effects to the
// store, and sends prompts back.
package bot

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/spravuz/spravbot/internal/dialog"
	"github.com/spravuz/spravbot/internal/gateway"
	"github.com/spravuz/spravbot/internal/store"
)

// turnQueueSize bounds the per-identity inbox. A full queue drops the turn;
// the user simply re-sends, which the self-looping states tolerate.
const turnQueueSize = 16

// Daemon is the main bot process.
type Daemon struct {
	store   *store.Store
	states  dialog.StateStore
	gateway gateway.Gateway
	digest  DigestOpts
	out     io.Writer

	mu      sync.Mutex
	workers map[int64]chan gateway.InboundEvent
	wg      sync.WaitGroup
}

// DaemonOpts holds parameters for creating a new Daemon.
type DaemonOpts struct {
	Store   *store.Store
	States  dialog.StateStore
	Gateway gateway.Gateway
	Digest  DigestOpts // zero value disables the digest
	Out     io.Writer  // defaults to os.Stdout
}

// NewDaemon creates a Daemon with the given options.
func NewDaemon(opts DaemonOpts) (*Daemon, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("bot: store is required")
	}
	if opts.States == nil {
		return nil, fmt.Errorf("bot: state store is required")
	}
	if opts.Gateway == nil {
		return nil, fmt.Errorf("bot: gateway is required")
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &Daemon{
		store:   opts.Store,
		states:  opts.States,
		gateway: opts.Gateway,
		digest:  opts.Digest,
		out:     out,
		workers: make(map[int64]chan gateway.InboundEvent),
	}, nil
}

// Run starts the daemon. It connects the gateway, starts the digest
// scheduler, and pumps inbound events until the context is cancelled. On
// shutdown it closes the gateway and waits for in-flight turns.
func (d *Daemon) Run(ctx context.Context) error {
	fmt.Fprintf(d.out, "Spravbot connecting...\n")
	if err := d.gateway.Connect(ctx); err != nil {
		return fmt.Errorf("bot: connect: %w", err)
	}

	inbound, err := d.gateway.Listen(ctx)
	if err != nil {
		d.gateway.Close()
		return fmt.Errorf("bot: listen: %w", err)
	}

	if d.digest.Enabled {
		go d.runDigestScheduler(ctx)
	}

	fmt.Fprintf(d.out, "Spravbot online\n")

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintf(d.out, "Spravbot shutting down...\n")
			if err := d.gateway.Close(); err != nil {
				log.Printf("bot: close gateway: %v", err)
			}
			d.closeWorkers()
			d.wg.Wait()
			fmt.Fprintf(d.out, "Spravbot stopped\n")
			return nil

		case ev, ok := <-inbound:
			if !ok {
				fmt.Fprintf(d.out, "Spravbot inbound channel closed\n")
				d.closeWorkers()
				d.wg.Wait()
				return nil
			}
			d.dispatch(ctx, ev)
		}
	}
}

// dispatch hands the event to the identity's worker, creating one if
// needed. One worker per identity keeps turns in arrival order within an
// identity while independent identities run in parallel.
func (d *Daemon) dispatch(ctx context.Context, ev gateway.InboundEvent) {
	d.mu.Lock()
	ch, ok := d.workers[ev.Identity]
	if !ok {
		ch = make(chan gateway.InboundEvent, turnQueueSize)
		d.workers[ev.Identity] = ch
		d.wg.Add(1)
		go d.runWorker(ctx, ch)
	}
	d.mu.Unlock()

	select {
	case ch <- ev:
	default:
		log.Printf("bot: turn queue full for %d, dropping turn", ev.Identity)
	}
}

// runWorker drains one identity's turn queue.
func (d *Daemon) runWorker(ctx context.Context, ch <-chan gateway.InboundEvent) {
	defer d.wg.Done()
	for ev := range ch {
		d.HandleTurn(ctx, ev)
	}
}

// closeWorkers closes all worker queues so runWorker goroutines drain out.
func (d *Daemon) closeWorkers() {
	d.mu.Lock()
	for id, ch := range d.workers {
		close(ch)
		delete(d.workers, id)
	}
	d.mu.Unlock()
}

// HandleTurn processes a single inbound turn: load state, step the engine,
// apply the effect, persist the new state, send the prompts. The effect is
// applied before the state is saved, so a crash in between re-runs the turn
// against the old state instead of losing the effect.
func (d *Daemon) HandleTurn(ctx context.Context, ev gateway.InboundEvent) {
	unlock := d.states.Lock(ev.Identity)
	defer unlock()

	st := d.states.Load(ev.Identity)
	res := dialog.Step(st, ev)
	prompts := res.Prompts

	switch effect := res.Effect.(type) {
	case nil:
	case dialog.EffectUpsertUser:
		if err := d.store.UpsertUser(effect.User); err != nil {
			log.Printf("bot: upsert user %d: %v", effect.User.TelegramID, err)
			return // state not advanced; the turn can be retried
		}
	case dialog.EffectCreateRequest:
		req, err := d.store.CreateRequest(effect.UserID, effect.Payload)
		if err != nil {
			log.Printf("bot: create request for %d: %v", effect.UserID, err)
			return
		}
		ack := dialog.AckPrompt(ev.Identity, res.State.Language, req.ID)
		prompts = append([]gateway.OutboundPrompt{ack}, prompts...)
	default:
		log.Printf("bot: unknown effect %T for %d", res.Effect, ev.Identity)
		return
	}

	d.states.Save(res.State)

	for _, p := range prompts {
		if err := d.gateway.Send(ctx, p); err != nil {
			log.Printf("bot: send prompt to %d: %v", p.Identity, err)
		}
	}
}
