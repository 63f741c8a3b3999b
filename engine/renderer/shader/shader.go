package shader

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-timewarp/engine/postprocess"
	"github.com/gogpu/naga"
)

//go:embed assets/timewarp.wgsl
var compensationSource string

//go:embed assets/environment.wgsl
var environmentSource string

const (
	// CompensationUniformStruct is the WGSL struct holding the compensation shader's matrix parameters.
	CompensationUniformStruct = "TimeWarpParams"

	// EnvironmentShaderName keys the procedural scene shader.
	EnvironmentShaderName = "Hidden/ATW_Environment"

	// EnvironmentUniformStruct is the WGSL struct holding the scene pass parameters.
	EnvironmentUniformStruct = "SceneParams"
)

var (
	// ErrEmptySource is returned when a shader is constructed without source code.
	ErrEmptySource = errors.New("shader: empty source")

	// ErrMissingEntryPoint is returned when the source lacks a @vertex or @fragment function.
	ErrMissingEntryPoint = errors.New("shader: missing entry point")

	// ErrInvalidSource is returned when the WGSL front end rejects the source.
	ErrInvalidSource = errors.New("shader: invalid source")

	// ErrLayoutMismatch is returned when the uniform struct does not match the host-side upload layout.
	ErrLayoutMismatch = errors.New("shader: uniform layout mismatch")
)

// shader is the implementation of the Shader interface.
// It holds the parsed declarations required for pipeline creation and material binding.
type shader struct {
	key           string
	source        string
	vertexEntry   string
	fragmentEntry string
	bindings      []Binding
	structLayouts map[string]StructLayout
}

// Shader defines the interface for a parsed WGSL render shader. It exposes the shader's
// key, source, entry points, resource bindings and struct layouts so a GPU backend can
// build bind group layouts and pack uniform data without importing a graphics API here.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// VertexEntryPoint returns the name of the @vertex function.
	//
	// Returns:
	//   - string: the vertex entry point name
	VertexEntryPoint() string

	// FragmentEntryPoint returns the name of the @fragment function.
	//
	// Returns:
	//   - string: the fragment entry point name
	FragmentEntryPoint() string

	// Bindings returns every resource declaration sorted by group then binding.
	//
	// Returns:
	//   - []Binding: a copy of the parsed bindings
	Bindings() []Binding

	// Binding looks up a resource declaration by variable name.
	//
	// Parameters:
	//   - name: the WGSL variable name
	//
	// Returns:
	//   - Binding: the declaration
	//   - bool: false if no declaration has that name
	Binding(name string) (Binding, bool)

	// StructLayout returns the computed memory layout of a WGSL struct.
	//
	// Parameters:
	//   - name: the struct name
	//
	// Returns:
	//   - StructLayout: the layout
	//   - bool: false if the struct is unknown or could not be resolved
	StructLayout(name string) (StructLayout, bool)

	// Validate runs the source through the naga WGSL front end and validator.
	//
	// Returns:
	//   - error: ErrInvalidSource wrapping the first failure, or nil
	Validate() error
}

var _ Shader = &shader{}

// NewShader parses a WGSL render shader.
//
// Parameters:
//   - key: a unique identifier for the shader, used for caching and lookups
//   - source: the WGSL source code
//
// Returns:
//   - Shader: the parsed shader
//   - error: ErrEmptySource or ErrMissingEntryPoint
func NewShader(key, source string) (Shader, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptySource, key)
	}

	s := &shader{key: key, source: source}
	s.vertexEntry, s.fragmentEntry = parseEntryPoints(source)
	if s.vertexEntry == "" || s.fragmentEntry == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingEntryPoint, key)
	}

	s.structLayouts = computeStructLayouts(parseStructBlocks(stripComments(source)))
	s.bindings = parseBindings(source, s.structLayouts)
	return s, nil
}

// CompensationShader parses the embedded reprojection shader and checks that its uniform
// struct matches postprocess.GPUTimeWarpUniform member for member.
//
// Returns:
//   - Shader: the compensation shader keyed by postprocess.ShaderName
//   - error: a parse error or ErrLayoutMismatch
func CompensationShader() (Shader, error) {
	s, err := NewShader(postprocess.ShaderName, compensationSource)
	if err != nil {
		return nil, err
	}

	if err := checkUniformLayout(s); err != nil {
		return nil, err
	}
	return s, nil
}

// checkUniformLayout compares the shader's TimeWarpParams struct against the host upload layout.
func checkUniformLayout(s Shader) error {
	layout, ok := s.StructLayout(CompensationUniformStruct)
	if !ok {
		return fmt.Errorf("%w: struct %s not found", ErrLayoutMismatch, CompensationUniformStruct)
	}

	var uniform postprocess.GPUTimeWarpUniform
	if layout.Size != uint64(uniform.Size()) {
		return fmt.Errorf("%w: size %d, host %d", ErrLayoutMismatch, layout.Size, uniform.Size())
	}
	for _, name := range postprocess.ParamNames {
		field, ok := layout.Field(name)
		if !ok {
			return fmt.Errorf("%w: member %s not found", ErrLayoutMismatch, name)
		}
		offset, _ := uniform.Offset(name)
		if field.Offset != offset {
			return fmt.Errorf("%w: %s at %d, host %d", ErrLayoutMismatch, name, field.Offset, offset)
		}
	}
	return nil
}

// EnvironmentShader parses the embedded procedural scene shader. Its single uniform is the
// inverse of the render-time view-projection, 64 bytes.
//
// Returns:
//   - Shader: the environment shader keyed by EnvironmentShaderName
//   - error: a parse error or ErrLayoutMismatch
func EnvironmentShader() (Shader, error) {
	s, err := NewShader(EnvironmentShaderName, environmentSource)
	if err != nil {
		return nil, err
	}
	if l, ok := s.StructLayout(EnvironmentUniformStruct); !ok || l.Size != 64 {
		return nil, fmt.Errorf("%w: struct %s", ErrLayoutMismatch, EnvironmentUniformStruct)
	}
	return s, nil
}

// MustCompensationShader is like CompensationShader but panics on error.
//
// Returns:
//   - Shader: the compensation shader
func MustCompensationShader() Shader {
	s, err := CompensationShader()
	if err != nil {
		panic(err)
	}
	return s
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) VertexEntryPoint() string {
	return s.vertexEntry
}

func (s *shader) FragmentEntryPoint() string {
	return s.fragmentEntry
}

func (s *shader) Bindings() []Binding {
	out := make([]Binding, len(s.bindings))
	copy(out, s.bindings)
	return out
}

func (s *shader) Binding(name string) (Binding, bool) {
	for _, b := range s.bindings {
		if b.Name == name {
			return b, true
		}
	}
	return Binding{}, false
}

func (s *shader) StructLayout(name string) (StructLayout, bool) {
	l, ok := s.structLayouts[name]
	return l, ok
}

func (s *shader) Validate() error {
	ast, err := naga.Parse(s.source)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidSource, s.key, err)
	}
	module, err := naga.LowerWithSource(ast, s.source)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidSource, s.key, err)
	}
	issues, err := naga.Validate(module)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidSource, s.key, err)
	}
	if len(issues) > 0 {
		return fmt.Errorf("%w: %s: %w", ErrInvalidSource, s.key, issues[0])
	}
	return nil
}
