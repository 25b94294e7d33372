package idle

// Signal is a DOM event name that counts as user activity.
type Signal string

const (
	PointerMove Signal = "mousemove"
	KeyPress    Signal = "keypress"
	Click       Signal = "click"
	Scroll      Signal = "scroll"
	TouchStart  Signal = "touchstart"
)

// Signals returns the activity events the browser listens for, in the order
// the listeners are attached.
func Signals() []Signal {
	return []Signal{PointerMove, KeyPress, Click, Scroll, TouchStart}
}

// EventNames returns Signals as plain strings for templates.
func EventNames() []string {
	sigs := Signals()
	out := make([]string, len(sigs))
	for i, s := range sigs {
		out[i] = string(s)
	}
	return out
}
