// Package wa — inbound webhook envelope.
//
// The Graph API delivers inbound events as a deeply nested envelope
// (object → entry → changes → value → messages). Envelope decodes the parts
// the bot consumes and flattens them into InboundEvents; everything else in
// the payload is ignored.
package wa

import "strings"

// Event types carried by InboundEvent.
const (
	EventText        = "text"
	EventInteractive = "interactive"
)

// InboundEvent is one user turn: a free-text message or a button/list
// selection, tagged with the conversant's stable address and the gateway
// message id used for redelivery suppression.
type InboundEvent struct {
	ConversantID string
	MessageID    string
	Type         string // EventText or EventInteractive
	Body         string // text body (EventText)
	SelectionID  string // button/list reply id (EventInteractive)
}

// Input returns the dialogue input for the event: the selection id for
// interactive events, the trimmed text body otherwise.
func (e InboundEvent) Input() string {
	if e.Type == EventInteractive {
		return e.SelectionID
	}
	return strings.TrimSpace(e.Body)
}

// Envelope is the webhook request body.
type Envelope struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry is one account-level entry in the envelope.
type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

// Change is one field change within an entry.
type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

// ChangeValue carries inbound messages for "messages" field changes.
type ChangeValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Messages         []InboundMessage `json:"messages"`
}

// InboundMessage is one raw inbound message.
type InboundMessage struct {
	From        string       `json:"from"`
	ID          string       `json:"id"`
	Timestamp   string       `json:"timestamp"`
	Type        string       `json:"type"`
	Text        *TextBody    `json:"text,omitempty"`
	Interactive *Interactive `json:"interactive,omitempty"`
}

// TextBody is the body of a text message.
type TextBody struct {
	Body string `json:"body"`
}

// Interactive is a button or list reply.
type Interactive struct {
	Type        string `json:"type"`
	ButtonReply *Reply `json:"button_reply,omitempty"`
	ListReply   *Reply `json:"list_reply,omitempty"`
}

// Reply is the selected button or list row.
type Reply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// IsMessaging reports whether the envelope is a WhatsApp business account
// event; anything else is acknowledged and dropped.
func (e *Envelope) IsMessaging() bool {
	return e.Object == "whatsapp_business_account"
}

// Events flattens the envelope into the inbound events the engine consumes.
// Messages of unsupported types (media, reactions, …) are skipped.
func (e *Envelope) Events() []InboundEvent {
	var events []InboundEvent
	for _, entry := range e.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			for _, msg := range change.Value.Messages {
				switch msg.Type {
				case "text":
					if msg.Text == nil {
						continue
					}
					events = append(events, InboundEvent{
						ConversantID: msg.From,
						MessageID:    msg.ID,
						Type:         EventText,
						Body:         msg.Text.Body,
					})
				case "interactive":
					if msg.Interactive == nil {
						continue
					}
					reply := msg.Interactive.ButtonReply
					if reply == nil {
						reply = msg.Interactive.ListReply
					}
					if reply == nil {
						continue
					}
					events = append(events, InboundEvent{
						ConversantID: msg.From,
						MessageID:    msg.ID,
						Type:         EventInteractive,
						SelectionID:  reply.ID,
					})
				}
			}
		}
	}
	return events
}
