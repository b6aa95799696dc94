// Package session models the narrow session boundary: the engine receives a
// session and a signal when its token changes; login/logout live upstream.
package session

// Session identifies the current user and carries the bearer token used to
// authenticate the remote store and the push channel.
type Session struct {
	UserID string
	Email  *string
	Token  string
}
