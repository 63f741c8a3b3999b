package postprocess

import "sync"

// profile is the implementation of the Profile interface.
type profile struct {
	mu *sync.Mutex

	timeWarp Volume
}

// Profile is the typed set of post-process volumes attached to a render path.
// Volumes are injected at construction; there is no lookup by type.
type Profile interface {
	// TimeWarp returns the time-warp volume, or nil if the profile has none.
	//
	// Returns:
	//   - Volume: the bound volume or nil
	TimeWarp() Volume

	// SetTimeWarp replaces the time-warp volume. Passing nil removes it.
	//
	// Parameters:
	//   - v: the volume to bind
	SetTimeWarp(v Volume)

	// Volumes returns every bound volume in execution order.
	//
	// Returns:
	//   - []Volume: the bound volumes
	Volumes() []Volume
}

var _ Profile = &profile{}

// NewProfile creates a profile from the given options.
//
// Parameters:
//   - options: functional options to configure the profile
//
// Returns:
//   - Profile: the newly created profile
func NewProfile(options ...ProfileBuilderOption) Profile {
	p := &profile{
		mu: &sync.Mutex{},
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *profile) TimeWarp() Volume {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.timeWarp
}

func (p *profile) SetTimeWarp(v Volume) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timeWarp = v
}

func (p *profile) Volumes() []Volume {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timeWarp == nil {
		return nil
	}
	return []Volume{p.timeWarp}
}

// ProfileBuilderOption is a functional option for configuring a Profile.
type ProfileBuilderOption func(*profile)

// WithTimeWarp binds the time-warp volume.
//
// Parameters:
//   - v: the volume to bind
//
// Returns:
//   - ProfileBuilderOption: option function to apply
func WithTimeWarp(v Volume) ProfileBuilderOption {
	return func(p *profile) {
		p.timeWarp = v
	}
}
