//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package errors

// Kind is the user-facing error category of a failed operation
// ENUM(generic,parse,access,size_limit,cancelled)
type Kind string
