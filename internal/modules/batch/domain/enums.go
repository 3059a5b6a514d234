//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// Result is what happened to one id of a batch range
// ENUM(downloaded,skipped,failed)
type Result string
