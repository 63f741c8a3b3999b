package engine

import (
	"github.com/Carmen-Shannon/oxy-timewarp/engine/postprocess"
)

const (
	defaultWidth  = 1280
	defaultHeight = 720
)

// softwareTarget is the headless FrameTarget: a fixed pair of software images.
type softwareTarget struct {
	src, dst postprocess.SoftwareImage
	frames   uint64
}

var (
	_ FrameTarget = &softwareTarget{}
	_ Resizer     = &softwareTarget{}
)

func newSoftwareTarget(width, height int) *softwareTarget {
	t := &softwareTarget{}
	t.Resize(width, height)
	return t
}

func (t *softwareTarget) BeginFrame() (postprocess.Image, postprocess.Image, error) {
	return t.src, t.dst, nil
}

func (t *softwareTarget) EndFrame() {
	t.frames++
}

func (t *softwareTarget) Resize(width, height int) {
	t.src = postprocess.SoftwareImage{Name: "scene", Width: width, Height: height}
	t.dst = postprocess.SoftwareImage{Name: "display", Width: width, Height: height}
}
