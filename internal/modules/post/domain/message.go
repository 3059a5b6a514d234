package domain

// EntityType mirrors the Bot API message entity type names.
type EntityType string

const (
	EntityBold          EntityType = "bold"
	EntityItalic        EntityType = "italic"
	EntityUnderline     EntityType = "underline"
	EntityStrikethrough EntityType = "strikethrough"
	EntitySpoiler       EntityType = "spoiler"
	EntityCode          EntityType = "code"
	EntityPre           EntityType = "pre"
	EntityTextLink      EntityType = "text_link"
	EntityMention       EntityType = "mention"
	EntityHashtag       EntityType = "hashtag"
	EntityCashtag       EntityType = "cashtag"
	EntityBotCommand    EntityType = "bot_command"
	EntityURL           EntityType = "url"
	EntityEmail         EntityType = "email"
	EntityPhoneNumber   EntityType = "phone_number"
	EntityBlockquote    EntityType = "blockquote"
	EntityCustomEmoji   EntityType = "custom_emoji"
)

// Entity is a formatting span. Offset and Length count UTF-16 code units.
type Entity struct {
	Type          EntityType `json:"type"`
	Offset        int        `json:"offset"`
	Length        int        `json:"length"`
	URL           string     `json:"url,omitempty"`
	Language      string     `json:"language,omitempty"`
	CustomEmojiID string     `json:"custom_emoji_id,omitempty"`
}

// Text is a message body or caption together with its formatting.
type Text struct {
	Body     string   `json:"body"`
	Entities []Entity `json:"entities,omitempty"`
}

func (t Text) IsEmpty() bool {
	return t.Body == ""
}

// Media describes the downloadable payload of a message.
type Media struct {
	Type     MediaType `json:"type"`
	FileName string    `json:"file_name,omitempty"`
	MimeType string    `json:"mime_type,omitempty"`
	Size     int64     `json:"size"`
	// Location is the repository specific handle used to download the file.
	Location any `json:"-"`
}

// Message is a read-only view of a message fetched by the user session.
type Message struct {
	ID      int    `json:"id"`
	Channel string `json:"channel"`
	Text    Text   `json:"text"`
	Caption Text   `json:"caption"`
	GroupID int64  `json:"group_id,omitempty"`
	Media   *Media `json:"media,omitempty"`
	// Service marks join/leave/pin style messages.
	Service bool `json:"service,omitempty"`
}

// Reference returns the reference this message was fetched from.
func (m *Message) Reference() PostReference {
	return PostReference{Channel: m.Channel, MessageID: m.ID}
}

// Kind classifies the payload: grouped media, single media, text or
// caption, nothing.
func (m *Message) Kind() PayloadKind {
	switch {
	case m == nil:
		return PayloadKindNone
	case m.GroupID != 0:
		return PayloadKindGroupedMedia
	case m.Media != nil:
		return PayloadKindSingleMedia
	case !m.Text.IsEmpty() || !m.Caption.IsEmpty():
		return PayloadKindText
	default:
		return PayloadKindNone
	}
}

// HasContent reports whether the message carries anything worth relaying.
func (m *Message) HasContent() bool {
	return m.Kind() != PayloadKindNone
}

// Body returns the text, falling back to the caption.
func (m *Message) Body() Text {
	if !m.Text.IsEmpty() {
		return m.Text
	}
	return m.Caption
}

// ReportedSize returns the media size when the platform reported one.
func (m *Message) ReportedSize() (int64, bool) {
	if m == nil || m.Media == nil || m.Media.Size <= 0 {
		return 0, false
	}
	return m.Media.Size, true
}
