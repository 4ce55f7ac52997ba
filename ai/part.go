package ai

// Part is one unit of multimodal prompt input: either plain text or inline
// binary data with its media type.
type Part struct {
	Text     string
	MIMEType string
	Data     []byte
}

// TextPart builds a text-only part
func TextPart(text string) Part {
	return Part{Text: text}
}

// DataPart builds an inline binary part
func DataPart(mimeType string, data []byte) Part {
	return Part{MIMEType: mimeType, Data: data}
}

// IsText reports whether the part carries text rather than inline bytes
func (p Part) IsText() bool {
	return len(p.Data) == 0
}

// Turn is one message of a chat exchange passed to the text-generation
// capability.
type Turn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}
