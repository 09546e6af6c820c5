// Package wa implements the Meta WhatsApp Business API surface of the bot:
// outbound message composition, the resilient delivery client, and the
// inbound webhook envelope types.
package wa

import "unicode/utf8"

// maxButtonLabelRunes is the gateway limit for reply-button labels.
const maxButtonLabelRunes = 20

// Message is an outbound message body. Implementations know how to render
// themselves into the Graph API payload for a recipient.
type Message interface {
	payload(to string) map[string]any
}

// Text is a plain text message.
type Text struct {
	Body string
}

func (t Text) payload(to string) map[string]any {
	return map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text":              map[string]any{"body": t.Body},
	}
}

// Button is one interactive reply button.
type Button struct {
	ID    string
	Label string
}

// Buttons is an interactive message with up to three reply buttons.
// Labels longer than the gateway limit are clipped by rune.
type Buttons struct {
	Body    string
	Buttons []Button
}

func (b Buttons) payload(to string) map[string]any {
	btns := b.Buttons
	if len(btns) > 3 {
		btns = btns[:3]
	}
	rendered := make([]map[string]any, 0, len(btns))
	for _, btn := range btns {
		rendered = append(rendered, map[string]any{
			"type": "reply",
			"reply": map[string]any{
				"id":    btn.ID,
				"title": clipRunes(btn.Label, maxButtonLabelRunes),
			},
		})
	}
	return map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "interactive",
		"interactive": map[string]any{
			"type":   "button",
			"body":   map[string]any{"text": b.Body},
			"action": map[string]any{"buttons": rendered},
		},
	}
}

// ListRow is one selectable row in a list message.
type ListRow struct {
	ID          string
	Title       string
	Description string
}

// ListSection groups rows under an optional title.
type ListSection struct {
	Title string
	Rows  []ListRow
}

// List is an interactive sectioned list message.
type List struct {
	Body        string
	ButtonLabel string
	Sections    []ListSection
}

func (l List) payload(to string) map[string]any {
	sections := make([]map[string]any, 0, len(l.Sections))
	for _, sec := range l.Sections {
		rows := make([]map[string]any, 0, len(sec.Rows))
		for _, row := range sec.Rows {
			r := map[string]any{"id": row.ID, "title": row.Title}
			if row.Description != "" {
				r["description"] = row.Description
			}
			rows = append(rows, r)
		}
		sections = append(sections, map[string]any{
			"title": sec.Title,
			"rows":  rows,
		})
	}
	return map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "interactive",
		"interactive": map[string]any{
			"type": "list",
			"body": map[string]any{"text": l.Body},
			"action": map[string]any{
				"button":   l.ButtonLabel,
				"sections": sections,
			},
		},
	}
}

// clipRunes truncates s to at most max runes.
func clipRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
