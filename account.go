package geminiproxy

import (
	"context"
	"os"

	"github.com/maximhq/geminiproxy/schemas"
)

// EnvAccount reads the upstream credential from an environment variable.
// The variable is read on every call, never cached.
type EnvAccount struct {
	envVar string
}

// NewEnvAccount returns an account backed by envVar, or GEMINI_API_KEY when envVar is empty.
func NewEnvAccount(envVar string) *EnvAccount {
	if envVar == "" {
		envVar = schemas.DefaultAPIKeyEnv
	}
	return &EnvAccount{envVar: envVar}
}

// GetKey returns the current value of the variable, or "" when it is unset.
func (account *EnvAccount) GetKey(ctx context.Context) (string, error) {
	value, _ := os.LookupEnv(account.envVar)
	return value, nil
}

// KeyName returns the variable name.
func (account *EnvAccount) KeyName() string {
	return account.envVar
}
