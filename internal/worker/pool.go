// Package worker runs fire-and-forget playback commands in the background.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/groovi/internal/core/ports"
)

// ErrQueueFull is returned by Submit when the command queue has no room.
var ErrQueueFull = errors.New("worker: playback queue full")

// ErrStopped is returned by Submit after Stop.
var ErrStopped = errors.New("worker: pool stopped")

const defaultCommandTimeout = 10 * time.Second

// Command asks a registered device to play the given track URIs.
type Command struct {
	ID       string
	DeviceID string
	URIs     []string
}

// NewCommand builds a Command with a fresh ID.
func NewCommand(deviceID string, uris ...string) Command {
	return Command{
		ID:       uuid.NewString(),
		DeviceID: deviceID,
		URIs:     uris,
	}
}

// Pool manages background workers that send playback commands.
type Pool struct {
	commander ports.PlaybackCommander
	token     ports.TokenFunc
	log       *zap.Logger
	timeout   time.Duration

	jobs chan Command
	wg   sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// NewPool creates a pool with the given queue size. Workers are launched by Start.
func NewPool(commander ports.PlaybackCommander, token ports.TokenFunc, queueSize int, log *zap.Logger) *Pool {
	if queueSize < 1 {
		queueSize = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pool{
		commander: commander,
		token:     token,
		log:       log,
		timeout:   defaultCommandTimeout,
		jobs:      make(chan Command, queueSize),
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for cmd := range p.jobs {
				p.process(cmd)
			}
		}()
	}
}

// Stop closes the queue and waits for in-flight commands. Safe to call twice.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}

// Submit queues a command without blocking.
func (p *Pool) Submit(cmd Command) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}
	select {
	case p.jobs <- cmd:
		return nil
	default:
		p.log.Warn("worker: dropping playback command",
			zap.String("command_id", cmd.ID),
			zap.String("device_id", cmd.DeviceID),
		)
		return ErrQueueFull
	}
}

func (p *Pool) process(cmd Command) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	token, err := p.token(ctx)
	if err != nil {
		p.log.Warn("worker: failed to obtain playback token",
			zap.String("command_id", cmd.ID),
			zap.Error(err),
		)
		return
	}

	if err := p.commander.Play(ctx, cmd.DeviceID, cmd.URIs, token); err != nil {
		p.log.Warn("worker: playback command failed",
			zap.String("command_id", cmd.ID),
			zap.String("device_id", cmd.DeviceID),
			zap.Error(err),
		)
		return
	}
	p.log.Debug("worker: playback command sent",
		zap.String("command_id", cmd.ID),
		zap.Strings("uris", cmd.URIs),
	)
}
