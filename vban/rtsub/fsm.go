// Package rtsub implements the RT subscription FSM (C7): periodic
// re-registration for Voicemeeter real-time state updates. Ground:
// original_source's VBANRTStream.renew_updates (a bare sleep loop);
// reimplemented over a cancellable scheduled job per spec.md §4.7.
package rtsub

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/wmbest2/govban/vban/vbanlog"
)

// State is one of the FSM's four states (spec.md §4.7): Idle, Registered,
// Expired, or the terminal Cancelled.
type State int

const (
	Idle State = iota
	Registered
	Expired
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Registered:
		return "Registered"
	case Expired:
		return "Expired"
	case Cancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Registrar sends the RTPacketRegister request. vban/stream.RTStream.SendRegistration
// satisfies this.
type Registrar interface {
	SendRegistration() error
}

// FSM drives the Idle -> Registered(expires_at) -> Expired -> Registered(...)
// cycle, with a terminal Cancelled state reached only by Cancel. On timer
// fire, if not cancelled and AutomaticRenewal is set, it resends the
// registration and restarts the timer (spec.md §4.7).
type FSM struct {
	ttl       time.Duration
	registrar Registrar
	log       *slog.Logger

	// AutomaticRenewal gates whether onTick resends the registration
	// (spec.md §4.7: "if not cancelled and automatic_renewal=true, resend
	// registration and restart the timer"). Defaults to true.
	AutomaticRenewal bool

	mu        sync.Mutex
	state     State
	expiresAt time.Time

	scheduler gocron.Scheduler
	job       gocron.Job
}

// New creates an FSM that will re-register every ttl once Connect is called.
func New(ttl time.Duration, registrar Registrar, log *slog.Logger) *FSM {
	if log == nil {
		log = vbanlog.Default()
	}
	return &FSM{ttl: ttl, registrar: registrar, log: log, state: Idle, AutomaticRenewal: true}
}

// Connect sends the initial registration and schedules periodic renewal
// every ttl. No outstanding timer survives a later Cancel.
func (f *FSM) Connect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Cancelled {
		return fmt.Errorf("rtsub: FSM already cancelled")
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("rtsub: create scheduler: %w", err)
	}
	f.scheduler = scheduler

	if err := f.registrar.SendRegistration(); err != nil {
		return fmt.Errorf("rtsub: initial registration: %w", err)
	}
	f.transitionToRegisteredLocked()

	job, err := scheduler.NewJob(
		gocron.DurationJob(f.ttl),
		gocron.NewTask(f.onTick),
	)
	if err != nil {
		return fmt.Errorf("rtsub: schedule renewal: %w", err)
	}
	f.job = job
	scheduler.Start()
	return nil
}

func (f *FSM) onTick() {
	f.mu.Lock()
	if f.state == Cancelled {
		f.mu.Unlock()
		return
	}
	f.state = Expired
	automatic := f.AutomaticRenewal
	f.mu.Unlock()

	if !automatic {
		return
	}

	if err := f.registrar.SendRegistration(); err != nil {
		f.log.Debug("rt registration renewal failed", "error", err)
		return
	}

	f.mu.Lock()
	if f.state != Cancelled {
		f.transitionToRegisteredLocked()
	}
	f.mu.Unlock()
}

func (f *FSM) transitionToRegisteredLocked() {
	f.state = Registered
	f.expiresAt = time.Now().Add(f.ttl)
}

// State returns the FSM's current state.
func (f *FSM) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// ExpiresAt returns when the current registration expires, valid only
// while State() == Registered.
func (f *FSM) ExpiresAt() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.expiresAt
}

// Cancel stops the renewal job and moves the FSM to the terminal Cancelled
// state. Safe to call more than once.
func (f *FSM) Cancel(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Cancelled {
		return nil
	}
	f.state = Cancelled
	if f.scheduler != nil {
		if f.job != nil {
			_ = f.scheduler.RemoveJob(f.job.ID())
		}
		return f.scheduler.Shutdown()
	}
	return nil
}
