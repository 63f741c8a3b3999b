package renderer

import (
	"github.com/Carmen-Shannon/oxy-timewarp/engine/postprocess"
	"github.com/cogentcore/webgpu/wgpu"
)

// gpuImage is a postprocess.Image backed by a wgpu texture.
type gpuImage struct {
	label   string
	texture *wgpu.Texture
	view    *wgpu.TextureView
	width   int
	height  int
}

var _ postprocess.Image = &gpuImage{}

func (i *gpuImage) Size() (int, int) {
	return i.width, i.height
}
