//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// State is the lifecycle state of a tracked task
// ENUM(running,done,cancelled,failed)
type State string
