package models

import "fmt"

// MemberKind describes how a factory produces its value
type MemberKind int

const (
	MemberMethod MemberKind = iota
	MemberProperty
	MemberReferenceDelegate
	MemberConstructor
)

// String returns the string representation of the member kind
func (m MemberKind) String() string {
	switch m {
	case MemberMethod:
		return "method"
	case MemberProperty:
		return "property"
	case MemberReferenceDelegate:
		return "reference"
	case MemberConstructor:
		return "constructor"
	default:
		return "unknown"
	}
}

// ParseMemberKind converts string to MemberKind
func ParseMemberKind(s string) (MemberKind, error) {
	switch s {
	case "", "method":
		return MemberMethod, nil
	case "property":
		return MemberProperty, nil
	case "reference":
		return MemberReferenceDelegate, nil
	case "constructor":
		return MemberConstructor, nil
	default:
		return 0, fmt.Errorf("unknown member kind: %s", s)
	}
}

// BuilderKind describes how a builder populates an existing instance
type BuilderKind int

const (
	BuilderMethod BuilderKind = iota
	BuilderReferenceDelegate
	BuilderDirect
)

// String returns the string representation of the builder kind
func (b BuilderKind) String() string {
	switch b {
	case BuilderMethod:
		return "method"
	case BuilderReferenceDelegate:
		return "reference"
	case BuilderDirect:
		return "direct"
	default:
		return "unknown"
	}
}

// ParseBuilderKind converts string to BuilderKind
func ParseBuilderKind(s string) (BuilderKind, error) {
	switch s {
	case "", "method":
		return BuilderMethod, nil
	case "reference":
		return BuilderReferenceDelegate, nil
	case "direct":
		return BuilderDirect, nil
	default:
		return 0, fmt.Errorf("unknown builder kind: %s", s)
	}
}

// FabricationMode is the caching and lifetime policy of a factory's output
type FabricationMode int

const (
	// Recurrent re-invokes the member on every resolution
	Recurrent FabricationMode = iota
	// Scoped caches the value in the current frame
	Scoped
	// Container opens a new frame chained to the current one
	Container
	// ContainerScoped caches the value along the frame chain
	ContainerScoped
)

// String returns the string representation of the fabrication mode
func (f FabricationMode) String() string {
	switch f {
	case Recurrent:
		return "recurrent"
	case Scoped:
		return "scoped"
	case Container:
		return "container"
	case ContainerScoped:
		return "container_scoped"
	default:
		return "unknown"
	}
}

// ParseFabricationMode converts string to FabricationMode
func ParseFabricationMode(s string) (FabricationMode, error) {
	switch s {
	case "", "recurrent":
		return Recurrent, nil
	case "scoped":
		return Scoped, nil
	case "container":
		return Container, nil
	case "container_scoped":
		return ContainerScoped, nil
	default:
		return 0, fmt.Errorf("unknown fabrication mode: %s", s)
	}
}

// InstantiationMode tells whether a specification instance is needed to call its members
type InstantiationMode int

const (
	Static InstantiationMode = iota
	Instantiated
)

// String returns the string representation of the instantiation mode
func (i InstantiationMode) String() string {
	switch i {
	case Static:
		return "static"
	case Instantiated:
		return "instantiated"
	default:
		return "unknown"
	}
}

// ParseInstantiationMode converts string to InstantiationMode
func ParseInstantiationMode(s string) (InstantiationMode, error) {
	switch s {
	case "", "static":
		return Static, nil
	case "instantiated":
		return Instantiated, nil
	default:
		return 0, fmt.Errorf("unknown instantiation mode: %s", s)
	}
}
