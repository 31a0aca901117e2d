package helper

import (
	"github.com/spance/iphone-use-mcp/phoneagent/definitions"
	"github.com/spance/iphone-use-mcp/utils"
)

func TextPart(text string) definitions.ContentPart {
	return definitions.ContentPart{
		Type: definitions.TextContent,
		Text: text,
	}
}

func ImagePart(base64Data, mimeType string) definitions.ContentPart {
	return definitions.ContentPart{
		Type:     definitions.ImageContent,
		Data:     base64Data,
		MIMEType: mimeType,
	}
}

// CreateTextEnvelope wraps a successful single-text result.
func CreateTextEnvelope(text string) *definitions.Envelope {
	return &definitions.Envelope{
		Content: []definitions.ContentPart{TextPart(text)},
	}
}

// CreateFailureEnvelope wraps a failure description. It is still a normal
// result as far as the protocol is concerned.
func CreateFailureEnvelope(text string) *definitions.Envelope {
	return &definitions.Envelope{
		Content: []definitions.ContentPart{TextPart(text)},
		Failed:  true,
	}
}

// CreateSnapshotEnvelope orders the parts as image, UI elements, screen size.
func CreateSnapshotEnvelope(snapshot *definitions.ScreenSnapshot) (*definitions.Envelope, error) {
	size, err := utils.ToJSON(snapshot.Size)
	if err != nil {
		return nil, err
	}
	return &definitions.Envelope{
		Content: []definitions.ContentPart{
			ImagePart(snapshot.Base64PNG, definitions.MIMETypePNG), // screen snapshot
			TextPart(snapshot.UIElements),                           // ui elements
			TextPart(size),                                          // screen size
		},
	}, nil
}

// EnvelopeText joins the text parts, for logging.
func EnvelopeText(env *definitions.Envelope) string {
	var text string
	for _, part := range env.Content {
		if part.Type != definitions.TextContent {
			continue
		}
		if text != "" {
			text += "\n"
		}
		text += part.Text
	}
	return text
}
