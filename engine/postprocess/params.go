package postprocess

// Shader parameter names shared with the compensation shader. They are the
// wire format between this package and every material backend and must not change.
const (
	// ParamInverseMatrix is the rotation-only correction matrix (inverse of the in-flight delta).
	ParamInverseMatrix = "_ATW_InverseMatrix"

	// ParamProjection is the camera's non-jittered projection matrix.
	ParamProjection = "_Custom_NonJitteredProjection"

	// ParamInverseProjection is the inverse of ParamProjection.
	ParamInverseProjection = "_Custom_NonJitteredInverseProjection"
)

// ParamNames lists every parameter uploaded on each invocation, in upload order.
var ParamNames = [3]string{ParamInverseMatrix, ParamProjection, ParamInverseProjection}

// ShaderName identifies the compensation shader a MaterialFactory must build.
const ShaderName = "Hidden/ATW_Simulation"

// InjectionPoint identifies where in the host's post-processing order a volume runs.
type InjectionPoint int

const (
	// InjectionPointBeforePostProcess runs before the host's standard effects.
	InjectionPointBeforePostProcess InjectionPoint = iota

	// InjectionPointAfterPostProcess runs after every standard effect, as the final image operation.
	InjectionPointAfterPostProcess
)

// String returns the injection point name used in logs.
//
// Returns:
//   - string: the injection point name
func (p InjectionPoint) String() string {
	switch p {
	case InjectionPointBeforePostProcess:
		return "before_post_process"
	case InjectionPointAfterPostProcess:
		return "after_post_process"
	default:
		return "unknown"
	}
}

// DefaultTargetSize is the default width and height of the intermediate render target.
const DefaultTargetSize = 2560
