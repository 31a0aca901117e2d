package definitions

type ContentType string

const (
	TextContent  ContentType = "text"
	ImageContent ContentType = "image"
)

const MIMETypePNG = "image/png"

// ContentPart is one typed part of an Envelope.
type ContentPart struct {
	Type     ContentType `json:"type"`
	Text     string      `json:"text,omitempty"`
	Data     string      `json:"data,omitempty"`
	MIMEType string      `json:"mimeType,omitempty"`
}

// Envelope wraps the outcome of every action, success or failure.
// Failed is informational only; failures are still delivered as content.
type Envelope struct {
	Content []ContentPart `json:"content"`
	Failed  bool          `json:"-"`
}
