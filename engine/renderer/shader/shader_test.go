package shader

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-timewarp/engine/postprocess"
)

func TestCompensationShaderDeclarations(t *testing.T) {
	s, err := CompensationShader()
	if err != nil {
		t.Fatalf("CompensationShader() error = %v", err)
	}
	if s.Key() != postprocess.ShaderName {
		t.Errorf("Key() = %q, want %q", s.Key(), postprocess.ShaderName)
	}
	if s.VertexEntryPoint() != "vs_main" || s.FragmentEntryPoint() != "fs_main" {
		t.Errorf("entry points = %q, %q", s.VertexEntryPoint(), s.FragmentEntryPoint())
	}

	want := []Binding{
		{Group: 0, Binding: 0, Name: "params", AddressSpace: "uniform", Type: "TimeWarpParams", Kind: BindingUniform, Size: 192},
		{Group: 0, Binding: 1, Name: "sourceTexture", Type: "texture_2d<f32>", Kind: BindingTexture},
		{Group: 0, Binding: 2, Name: "sourceSampler", Type: "sampler", Kind: BindingSampler},
	}
	got := s.Bindings()
	if len(got) != len(want) {
		t.Fatalf("Bindings() = %+v, want %d entries", got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Bindings()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}

	if b, ok := s.Binding("sourceSampler"); !ok || b.Binding != 2 {
		t.Errorf("Binding(sourceSampler) = %+v, %v", b, ok)
	}
	if _, ok := s.Binding("missing"); ok {
		t.Error("Binding(missing) found")
	}
}

func TestCompensationShaderUniformLayout(t *testing.T) {
	s := MustCompensationShader()
	layout, ok := s.StructLayout(CompensationUniformStruct)
	if !ok {
		t.Fatal("uniform struct not found")
	}
	if layout.Size != 192 || layout.Align != 16 {
		t.Errorf("size/align = %d/%d, want 192/16", layout.Size, layout.Align)
	}
	for i, name := range postprocess.ParamNames {
		f, ok := layout.Field(name)
		if !ok {
			t.Errorf("member %s missing", name)
			continue
		}
		if f.Offset != uint64(i*64) || f.Size != 64 {
			t.Errorf("%s offset/size = %d/%d, want %d/64", name, f.Offset, f.Size, i*64)
		}
	}

	// Builtins are not part of a buffer layout.
	vo, ok := s.StructLayout("VertexOutput")
	if !ok || len(vo.Fields) != 1 || vo.Fields[0].Name != "ndc" {
		t.Errorf("VertexOutput layout = %+v, %v", vo, ok)
	}
}

func TestCompensationShaderValidates(t *testing.T) {
	if err := MustCompensationShader().Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidateRejectsBrokenSource(t *testing.T) {
	src := `
@vertex fn vs_main( {
}
@fragment fn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }
`
	s, err := NewShader("broken", src)
	if err != nil {
		t.Fatalf("NewShader() error = %v", err)
	}
	if err := s.Validate(); !errors.Is(err, ErrInvalidSource) {
		t.Errorf("Validate() error = %v, want ErrInvalidSource", err)
	}
}

func TestNewShaderErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   error
	}{
		{"empty", "  \n", ErrEmptySource},
		{"no fragment", "@vertex fn vs_main() -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }", ErrMissingEntryPoint},
		{"commented fragment", "@vertex fn v() {}\n// @fragment fn f() {}", ErrMissingEntryPoint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewShader(tt.name, tt.source); !errors.Is(err, tt.want) {
				t.Errorf("NewShader() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestUniformLayoutMismatch(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"swapped members", "_Custom_NonJitteredProjection: mat4x4<f32>, _ATW_InverseMatrix: mat4x4<f32>, _Custom_NonJitteredInverseProjection: mat4x4<f32>,"},
		{"missing member", "_ATW_InverseMatrix: mat4x4<f32>, _Custom_NonJitteredProjection: mat4x4<f32>, pad: mat4x4<f32>,"},
		{"wrong size", "_ATW_InverseMatrix: mat4x4<f32>, _Custom_NonJitteredProjection: mat4x4<f32>,"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "struct TimeWarpParams { " + tt.body + " }\n@vertex fn v() {}\n@fragment fn f() {}"
			s, err := NewShader(tt.name, src)
			if err != nil {
				t.Fatalf("NewShader() error = %v", err)
			}
			if err := checkUniformLayout(s); !errors.Is(err, ErrLayoutMismatch) {
				t.Errorf("checkUniformLayout() error = %v, want ErrLayoutMismatch", err)
			}
		})
	}
}

func TestClassifyBinding(t *testing.T) {
	tests := []struct {
		addressSpace string
		typeName     string
		want         BindingKind
	}{
		{"uniform", "Params", BindingUniform},
		{"storage", "Data", BindingReadOnlyStorage},
		{"storage, read", "Data", BindingReadOnlyStorage},
		{"storage, read_write", "Data", BindingStorage},
		{"private", "f32", BindingUnknown},
		{"", "texture_2d<f32>", BindingTexture},
		{"", "texture_depth_2d", BindingTexture},
		{"", "sampler", BindingSampler},
		{"", "sampler_comparison", BindingComparisonSampler},
		{"", "f32", BindingUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.addressSpace+"/"+tt.typeName, func(t *testing.T) {
			if got := classifyBinding(tt.addressSpace, tt.typeName); got != tt.want {
				t.Errorf("classifyBinding() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseBindingsIgnoresComments(t *testing.T) {
	src := `
// @group(0) @binding(7) var ghost: sampler;
/* @group(0) @binding(8) var /* nested */ ghost2: sampler; */
@group(1) @binding(0) var<storage, read> data: array<vec4<f32>, 4>;
@group(0) @binding(3) var<storage, read_write> results: array<f32>;
`
	got := parseBindings(src, nil)
	if len(got) != 2 {
		t.Fatalf("parseBindings() = %+v, want 2 entries", got)
	}
	if got[0].Name != "results" || got[0].Kind != BindingStorage || got[0].Size != 0 {
		t.Errorf("first binding = %+v", got[0])
	}
	if got[1].Name != "data" || got[1].Kind != BindingReadOnlyStorage || got[1].Size != 64 {
		t.Errorf("second binding = %+v", got[1])
	}
}

func TestComputeStructLayouts(t *testing.T) {
	src := `
struct Outer { x: f32, inner: Inner, }
struct Inner { v: vec4<f32> }
struct Packed { a: vec3<f32>, b: f32, c: vec2<f32>, }
struct Broken { z: Unknown }
`
	layouts := computeStructLayouts(parseStructBlocks(stripComments(src)))

	tests := []struct {
		name    string
		size    uint64
		offsets []uint64
	}{
		{"Inner", 16, []uint64{0}},
		{"Outer", 32, []uint64{0, 16}},
		{"Packed", 32, []uint64{0, 12, 16}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, ok := layouts[tt.name]
			if !ok {
				t.Fatal("layout missing")
			}
			if l.Size != tt.size {
				t.Errorf("Size = %d, want %d", l.Size, tt.size)
			}
			if len(l.Fields) != len(tt.offsets) {
				t.Fatalf("Fields = %+v", l.Fields)
			}
			for i, off := range tt.offsets {
				if l.Fields[i].Offset != off {
					t.Errorf("field %s offset = %d, want %d", l.Fields[i].Name, l.Fields[i].Offset, off)
				}
			}
		})
	}

	if _, ok := layouts["Broken"]; ok {
		t.Error("unresolvable struct has a layout")
	}
}

func TestEnvironmentShader(t *testing.T) {
	s, err := EnvironmentShader()
	if err != nil {
		t.Fatalf("EnvironmentShader() error = %v", err)
	}
	bindings := s.Bindings()
	if len(bindings) != 1 {
		t.Fatalf("Bindings() = %+v, want 1 entry", bindings)
	}
	if b := bindings[0]; b.Kind != BindingUniform || b.Size != 64 || b.Name != "scene" {
		t.Errorf("binding = %+v", b)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}
