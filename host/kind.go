package host

// how a value gets activated and reparented
type Kind uint8

const (
	KindUnset Kind = iota
	KindComponent
	KindContainer
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindUnset:
		return "unset"
	case KindComponent:
		return "component"
	case KindContainer:
		return "container"
	default:
		return "unknown"
	}
}

// Classify returns the kind of v. Components win over nodes, so a value that
// is both gets handled through its container.
func Classify(v any) Kind {
	switch v.(type) {
	case Component:
		return KindComponent
	case Node:
		return KindContainer
	default:
		return KindUnknown
	}
}
