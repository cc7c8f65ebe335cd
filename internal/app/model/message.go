package model

import "strings"

const dmPrefix = "dm_"

// Message is an immutable entry of a channel's log. The author's display fields are
// captured when the message is sent.
type Message struct {
	ID         string      `json:"id"`
	Content    string      `json:"content"`
	UserID     string      `json:"userId"`
	UserName   string      `json:"userName"`
	UserAvatar *string     `json:"userAvatar"`
	Timestamp  int64       `json:"timestamp"`
	File       *Attachment `json:"file,omitempty"`
}

// DMChannelID derives the direct-message channel id shared by two users.
// The result does not depend on argument order.
func DMChannelID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return dmPrefix + a + "_" + b
}

// ParseDMChannelID returns the two participants of a direct-message channel id.
func ParseDMChannelID(channelID string) (string, string, bool) {
	rest, ok := strings.CutPrefix(channelID, dmPrefix)
	if !ok {
		return "", "", false
	}

	a, b, ok := strings.Cut(rest, "_")
	if !ok || a == "" || b == "" || strings.Contains(b, "_") {
		return "", "", false
	}

	return a, b, true
}

// IsDMChannel reports whether channelID has the direct-message form.
func IsDMChannel(channelID string) bool {
	_, _, ok := ParseDMChannelID(channelID)
	return ok
}
