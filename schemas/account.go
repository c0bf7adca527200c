package schemas

import "context"

// Account supplies the upstream credential.
// GetKey is called once per invocation, so implementations may read live configuration.
// An empty key with a nil error means the credential is not configured.
type Account interface {
	GetKey(ctx context.Context) (string, error)
	// KeyName identifies where the key comes from, for diagnostics only.
	KeyName() string
}
