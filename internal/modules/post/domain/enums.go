//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// MediaType represents the type of media content
// ENUM(photo,video,audio,voice,animation,document)
type MediaType string

// PayloadKind is the relay path a message takes, in priority order
// ENUM(none,text,single_media,grouped_media)
type PayloadKind string
