// Package rlimits applies resource limits to the calling process from a
// fixed, ordered vector of nine values.
//
// Position i of the vector always refers to Kinds()[i]:
//
//	0 as  1 core  2 cpu  3 data  4 fsize  5 memlock  6 nofile  7 nproc  8 stack
//
// A value of 0 or NaN leaves the limit untouched, ±Inf means unlimited and
// any other value sets both the soft and the hard limit.
package rlimits

import (
	"fmt"
	"math"

	"github.com/core-tools/hsu-sys/pkg/errors"
)

// Count is the length of the limit vector
const Count = 9

const labelSetrlimit = "setrlimit()"

// Kind is one entry of the limit table. Resource is meaningless when
// Supported is false.
type Kind struct {
	Name      string
	Resource  int
	Supported bool
}

// Limit is a read-back entry
type Limit struct {
	Kind
	Soft uint64
	Hard uint64
}

// Syscaller issues the raw rlimit calls. Values are already converted to
// the platform representation of unlimited.
type Syscaller interface {
	Setrlimit(resource int, soft, hard uint64) error
	Getrlimit(resource int) (soft, hard uint64, err error)
}

var kinds = buildKinds()

func buildKinds() [Count]Kind {
	entries := [Count]struct {
		name     string
		resource int
	}{
		{"as", resourceAS},
		{"core", resourceCore},
		{"cpu", resourceCPU},
		{"data", resourceData},
		{"fsize", resourceFSize},
		{"memlock", resourceMemlock},
		{"nofile", resourceNoFile},
		{"nproc", resourceNProc},
		{"stack", resourceStack},
	}

	var table [Count]Kind
	for i, e := range entries {
		table[i] = Kind{Name: e.name, Resource: e.resource, Supported: e.resource >= 0}
	}
	return table
}

// Kinds returns a copy of the limit table in vector order
func Kinds() []Kind {
	out := make([]Kind, Count)
	copy(out, kinds[:])
	return out
}

// Index returns the vector position of the named kind
func Index(name string) (int, bool) {
	for i, k := range kinds {
		if k.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Missing returns a vector with every entry missing
func Missing() []float64 {
	values := make([]float64, Count)
	for i := range values {
		values[i] = math.NaN()
	}
	return values
}

// FromMap builds a vector from kind names; absent kinds are missing
func FromMap(m map[string]float64) ([]float64, error) {
	values := Missing()
	for name, v := range m {
		i, ok := Index(name)
		if !ok {
			return nil, errors.NewValidationError(fmt.Sprintf("unknown rlimit kind %q", name), nil)
		}
		values[i] = v
	}
	return values, nil
}

// Applier applies limit vectors through a Syscaller
type Applier struct {
	sys Syscaller
}

// NewApplier returns an Applier; a nil sys issues real system calls
func NewApplier(sys Syscaller) *Applier {
	if sys == nil {
		sys = osSyscaller{}
	}
	return &Applier{sys: sys}
}

var defaultApplier = NewApplier(nil)

// SetRlimits applies values to the calling process
func SetRlimits(values []float64) error {
	return defaultApplier.Set(values)
}

// GetRlimits reads the current limits of the calling process
func GetRlimits() ([]Limit, error) {
	return defaultApplier.Get()
}

// Set applies values in table order and stops at the first rejected kind.
// Kinds applied before the failure stay applied.
func (a *Applier) Set(values []float64) error {
	if err := Validate(values); err != nil {
		return err
	}

	for i, kind := range kinds {
		v := values[i]
		if !kind.Supported || v == 0 || math.IsNaN(v) {
			continue
		}
		lim := toRlim(v)
		if err := a.sys.Setrlimit(kind.Resource, lim, lim); err != nil {
			return errors.NewSyscallError(labelSetrlimit, err).
				WithContext("kind", kind.Name).
				WithContext("value", v)
		}
	}
	return nil
}

// Get returns the soft and hard limit of every kind. Unsupported kinds are
// reported with zero values.
func (a *Applier) Get() ([]Limit, error) {
	out := make([]Limit, 0, Count)
	for _, kind := range kinds {
		l := Limit{Kind: kind}
		if kind.Supported {
			soft, hard, err := a.sys.Getrlimit(kind.Resource)
			if err != nil {
				return nil, errors.NewSyscallError("getrlimit()", err).WithContext("kind", kind.Name)
			}
			l.Soft, l.Hard = soft, hard
		}
		out = append(out, l)
	}
	return out, nil
}

// Validate checks the shape of a limit vector without touching the OS
func Validate(values []float64) error {
	if len(values) != Count {
		return errors.NewValidationError(
			fmt.Sprintf("limit vector has wrong size: got %d, want %d", len(values), Count), nil)
	}
	for i, v := range values {
		if v < 0 && !math.IsInf(v, -1) {
			return errors.NewValidationError("limit values must not be negative", nil).
				WithContext("kind", kinds[i].Name).
				WithContext("value", v)
		}
	}
	return nil
}

func toRlim(v float64) uint64 {
	if math.IsInf(v, 0) || v >= float64(Unlimited) {
		return Unlimited
	}
	return uint64(v)
}

// IsUnlimited reports whether a read-back value means no limit
func IsUnlimited(v uint64) bool {
	return v == Unlimited
}
