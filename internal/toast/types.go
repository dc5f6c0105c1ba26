package toast

import (
	"errors"
	"strings"
)

// Topic is the only event name the Notifier publishes on.
const Topic = "toast-message"

var ErrUnknownVerb = errors.New("unknown toast verb")

// Type is the wire value renderers style on. Send accepts any string;
// the typed verbs only ever produce the four constants below.
type Type string

const (
	Success Type = "success"
	Warning Type = "warning"
	Info    Type = "info"
	Danger  Type = "danger"
)

// Known reports whether t is one of the four built-in types.
func (t Type) Known() bool {
	switch t {
	case Success, Warning, Info, Danger:
		return true
	default:
		return false
	}
}

// Label is a human title for t. Unknown types get a neutral one.
func (t Type) Label() string {
	switch t {
	case Success:
		return "Success"
	case Warning:
		return "Warning"
	case Info:
		return "Info"
	case Danger:
		return "Error"
	default:
		return "Notice"
	}
}

// Verb names a typed Notifier method.
type Verb string

const (
	VerbSuccess Verb = "success"
	VerbWarning Verb = "warning"
	VerbInfo    Verb = "info"
	VerbError   Verb = "error"
)

var verbTypes = map[Verb]Type{
	VerbSuccess: Success,
	VerbWarning: Warning,
	VerbInfo:    Info,
	VerbError:   Danger,
}

// Verbs returns the typed verbs in a stable order.
func Verbs() []Verb {
	return []Verb{VerbSuccess, VerbWarning, VerbInfo, VerbError}
}

// TypeFor maps a verb name (case-insensitive) to its wire type.
func TypeFor(verb string) (Type, bool) {
	t, ok := verbTypes[Verb(strings.ToLower(strings.TrimSpace(verb)))]
	return t, ok
}

// Message is the payload delivered on Topic. It is a value; subscribers get
// their own copy.
type Message struct {
	Message string  `json:"message"`
	Type    Type    `json:"type"`
	Options Options `json:"options"`
}
