// Package renderpipeline provides the per-camera render hook the host fires
// immediately before each camera draws. Subscribers register a callback and
// receive a Handle; releasing that handle removes exactly that subscription.
package renderpipeline

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-timewarp/engine/camera"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/logger"
)

// RenderContext describes the frame a camera is about to render.
type RenderContext struct {
	// Frame is the zero-based index of the frame being rendered.
	Frame uint64
	// Time is the simulated time at which the hook fires.
	Time time.Duration
}

// BeginCameraRenderingFunc is invoked once per camera per frame, before that camera renders.
type BeginCameraRenderingFunc func(ctx RenderContext, cam camera.Camera)

// Handle identifies one subscription. The zero Handle is never issued.
type Handle uint64

// Valid reports whether h was issued by a Pipeline.
//
// Returns:
//   - bool: true if h is non-zero
func (h Handle) Valid() bool {
	return h != 0
}

type subscription struct {
	handle   Handle
	callback BeginCameraRenderingFunc
}

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	mu *sync.Mutex

	nextHandle    Handle
	subscriptions []subscription
}

// Pipeline defines the render hook registry owned by the host renderer.
// It replaces a process-wide event with an explicit, injectable object.
type Pipeline interface {
	// SubscribeBeginCameraRendering registers a callback fired before each camera renders.
	// Every call creates a new subscription, even for a callback that is already registered.
	//
	// Parameters:
	//   - cb: the callback to invoke; nil callbacks are rejected
	//
	// Returns:
	//   - Handle: the subscription handle, or the zero Handle when cb is nil
	SubscribeBeginCameraRendering(cb BeginCameraRenderingFunc) Handle

	// Unsubscribe releases the subscription identified by h.
	//
	// Parameters:
	//   - h: a handle returned by SubscribeBeginCameraRendering
	//
	// Returns:
	//   - bool: true if a subscription was removed, false if h was unknown or already released
	Unsubscribe(h Handle) bool

	// BeginCameraRendering is the host entry point. It invokes every live callback in
	// subscription order. Callbacks may subscribe or unsubscribe; such changes take
	// effect from the next invocation.
	//
	// Parameters:
	//   - ctx: the frame being rendered
	//   - cam: the camera about to render
	BeginCameraRendering(ctx RenderContext, cam camera.Camera)

	// SubscriberCount returns the number of live subscriptions.
	//
	// Returns:
	//   - int: the subscription count
	SubscriberCount() int
}

var _ Pipeline = &pipeline{}

// NewPipeline creates an empty render hook registry.
//
// Returns:
//   - Pipeline: the newly created pipeline
func NewPipeline() Pipeline {
	return &pipeline{
		mu: &sync.Mutex{},
	}
}

func (p *pipeline) SubscribeBeginCameraRendering(cb BeginCameraRenderingFunc) Handle {
	if cb == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextHandle++
	h := p.nextHandle
	p.subscriptions = append(p.subscriptions, subscription{handle: h, callback: cb})
	logger.With("renderpipeline").Debug("subscribed", slog.Uint64("handle", uint64(h)))
	return h
}

func (p *pipeline) Unsubscribe(h Handle) bool {
	if !h.Valid() {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, s := range p.subscriptions {
		if s.handle == h {
			// Copy-on-write so an in-flight BeginCameraRendering snapshot is never mutated.
			next := make([]subscription, 0, len(p.subscriptions)-1)
			next = append(next, p.subscriptions[:i]...)
			next = append(next, p.subscriptions[i+1:]...)
			p.subscriptions = next
			logger.With("renderpipeline").Debug("unsubscribed", slog.Uint64("handle", uint64(h)))
			return true
		}
	}
	return false
}

func (p *pipeline) BeginCameraRendering(ctx RenderContext, cam camera.Camera) {
	p.mu.Lock()
	snapshot := p.subscriptions
	p.mu.Unlock()

	for _, s := range snapshot {
		s.callback(ctx, cam)
	}
}

func (p *pipeline) SubscriberCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subscriptions)
}
