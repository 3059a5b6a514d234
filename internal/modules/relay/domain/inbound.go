package domain

import (
	"fmt"
	"html"
	"strconv"
)

// Inbound is a private message that matched no command.
type Inbound struct {
	ChatID    int64
	MessageID int
	FromID    int64
	Username  string
	HasSender bool
	Text      string
	HasMedia  bool
}

// Attribution returns the HTML caption naming the sender.
func (m Inbound) Attribution() string {
	user, id := "Unknown User", "N/A"
	if m.HasSender {
		if m.Username != "" {
			user = "@" + m.Username
		}
		id = strconv.FormatInt(m.FromID, 10)
	}
	return fmt.Sprintf("📩 <b>Message from</b> %s <b>(ID:</b> <code>%s</code><b>)</b>", html.EscapeString(user), id)
}
