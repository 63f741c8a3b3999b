package renderpipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-timewarp/engine/camera"
)

func TestSubscribeIssuesDistinctHandles(t *testing.T) {
	p := NewPipeline()
	cb := func(RenderContext, camera.Camera) {}

	h1 := p.SubscribeBeginCameraRendering(cb)
	h2 := p.SubscribeBeginCameraRendering(cb)
	if !h1.Valid() || !h2.Valid() {
		t.Fatalf("handles %v, %v should be valid", h1, h2)
	}
	if h1 == h2 {
		t.Errorf("duplicate handle %v", h1)
	}
	if got := p.SubscriberCount(); got != 2 {
		t.Errorf("SubscriberCount() = %d, want 2", got)
	}
}

func TestSubscribeNilCallback(t *testing.T) {
	p := NewPipeline()
	if h := p.SubscribeBeginCameraRendering(nil); h.Valid() {
		t.Errorf("nil callback returned valid handle %v", h)
	}
	if got := p.SubscriberCount(); got != 0 {
		t.Errorf("SubscriberCount() = %d, want 0", got)
	}
}

func TestUnsubscribeReleasesOnlyThatHandle(t *testing.T) {
	p := NewPipeline()
	var calls []string
	h1 := p.SubscribeBeginCameraRendering(func(RenderContext, camera.Camera) { calls = append(calls, "first") })
	p.SubscribeBeginCameraRendering(func(RenderContext, camera.Camera) { calls = append(calls, "second") })

	if !p.Unsubscribe(h1) {
		t.Fatal("Unsubscribe(h1) = false, want true")
	}
	if p.Unsubscribe(h1) {
		t.Error("second Unsubscribe(h1) = true, want false")
	}
	if p.Unsubscribe(0) {
		t.Error("Unsubscribe(0) = true, want false")
	}

	p.BeginCameraRendering(RenderContext{}, camera.NewCamera())
	if len(calls) != 1 || calls[0] != "second" {
		t.Errorf("calls = %v, want [second]", calls)
	}
}

func TestBeginCameraRenderingOrderAndArguments(t *testing.T) {
	p := NewPipeline()
	cam := camera.NewCamera()
	ctx := RenderContext{Frame: 7}

	var order []int
	for i := range 3 {
		p.SubscribeBeginCameraRendering(func(got RenderContext, c camera.Camera) {
			if got != ctx {
				t.Errorf("callback %d got context %+v, want %+v", i, got, ctx)
			}
			if c != cam {
				t.Errorf("callback %d got camera %s, want %s", i, c.Name(), cam.Name())
			}
			order = append(order, i)
		})
	}

	p.BeginCameraRendering(ctx, cam)
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Errorf("order = %v, want [0 1 2]", order)
	}
}

func TestUnsubscribeDuringDispatch(t *testing.T) {
	p := NewPipeline()
	var h Handle
	calls := 0
	h = p.SubscribeBeginCameraRendering(func(RenderContext, camera.Camera) {
		calls++
		p.Unsubscribe(h)
	})

	cam := camera.NewCamera()
	p.BeginCameraRendering(RenderContext{}, cam)
	p.BeginCameraRendering(RenderContext{}, cam)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
