package field

// Kind is the decoded type of a header field.
type Kind int

const (
	// KindAuto tries a float conversion and falls back to the trimmed text.
	// Only meaningful for text and key-value buffers.
	KindAuto Kind = iota
	KindInt
	KindFloat
	KindText
	KindBool
	KindEnum
	KindTimestamp
)

func (k Kind) String() string {
	switch k {
	case KindAuto:
		return "auto"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	case KindEnum:
		return "enum"
	case KindTimestamp:
		return "timestamp"
	}
	return "invalid"
}

// Spec describes one field of a header layout. Binary layouts locate a
// field by Offset (relative to the header base), sequential text layouts
// by the running cursor, and key-value layouts by Key.
//
// Specs are declared once per format as package-level tables and never
// modified.
type Spec struct {
	Name   string
	Offset int
	Key    string
	Length int
	Kind   Kind
	Enum   []string
}

// TimestampLength is the size of the binary trigger-time record:
// float64 seconds, four bytes minute/hour/day/month and an int16 year,
// padded to 16 bytes.
const TimestampLength = 16
