//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package config

// AppEnv represents the application environment
// ENUM(local,production,development,testing)
type AppEnv string

// Verbose reports whether debug logging should be enabled.
func (x AppEnv) Verbose() bool {
	return x == AppEnvLocal || x == AppEnvDevelopment
}
