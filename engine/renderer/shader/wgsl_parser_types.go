package shader

// BindingKind classifies a resource declaration.
type BindingKind int

const (
	// BindingUnknown is a declaration whose type could not be classified.
	BindingUnknown BindingKind = iota
	// BindingUniform is a var<uniform> buffer.
	BindingUniform
	// BindingStorage is a var<storage, read_write> buffer.
	BindingStorage
	// BindingReadOnlyStorage is a var<storage> or var<storage, read> buffer.
	BindingReadOnlyStorage
	// BindingTexture is a sampled texture.
	BindingTexture
	// BindingSampler is a filtering sampler.
	BindingSampler
	// BindingComparisonSampler is a comparison sampler.
	BindingComparisonSampler
)

// String returns the kind name used in logs.
func (k BindingKind) String() string {
	switch k {
	case BindingUniform:
		return "uniform"
	case BindingStorage:
		return "storage"
	case BindingReadOnlyStorage:
		return "read_only_storage"
	case BindingTexture:
		return "texture"
	case BindingSampler:
		return "sampler"
	case BindingComparisonSampler:
		return "comparison_sampler"
	default:
		return "unknown"
	}
}

// Binding is one @group(N) @binding(M) declaration parsed from WGSL source.
type Binding struct {
	Group        int
	Binding      int
	Name         string
	AddressSpace string
	Type         string
	Kind         BindingKind
	// Size is the byte size of a buffer binding's type, 0 if unknown or not a buffer.
	Size uint64
}

// FieldLayout is the position of one struct member in host-shareable memory.
type FieldLayout struct {
	Name   string
	Type   string
	Offset uint64
	Size   uint64
}

// StructLayout is the memory layout of a WGSL struct.
type StructLayout struct {
	Name   string
	Size   uint64
	Align  uint64
	Fields []FieldLayout
}

// Field returns the layout of the named member.
//
// Parameters:
//   - name: the member name
//
// Returns:
//   - FieldLayout: the member layout
//   - bool: false if the struct has no such member
func (s StructLayout) Field(name string) (FieldLayout, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldLayout{}, false
}

// wgslTypeLayout holds the byte size and alignment for a WGSL type per the WGSL specification.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// parsedField represents a single field extracted from a WGSL struct during parsing
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

// parsedStruct represents a WGSL struct block extracted during parsing
type parsedStruct struct {
	name   string
	fields []parsedField
}
