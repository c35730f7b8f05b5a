package chat

// Button is one inline keyboard entry: a label and an opaque callback payload.
type Button struct {
	Label string
	Data  string
}

// Reply is the transport-agnostic outcome of handling one inbound event.
// A nil *Reply means the event was consumed silently.
type Reply struct {
	Text         string
	PhotoURL     string
	PhotoCaption string
	Buttons      [][]Button

	// Edit requests replacing the message that carried the pressed button
	// instead of sending a new one.
	Edit bool
}

func textReply(text string) *Reply { return &Reply{Text: text} }

func editReply(text string) *Reply { return &Reply{Text: text, Edit: true} }
