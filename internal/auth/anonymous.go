package auth

import "context"

// Anonymous accepts any username/password pair, the classic anonymous FTP
// behavior and the default when nothing else is configured.
type Anonymous struct{}

var _ Authenticator = (*Anonymous)(nil)

// Authenticate always succeeds.
func (Anonymous) Authenticate(ctx context.Context, username, password string) (*User, error) {
	if username == "" {
		username = "anonymous"
	}
	return &User{Name: username, Anonymous: true}, nil
}
