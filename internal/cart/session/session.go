// Package session models the visitor identity the cart store operates
// under. Identity is explicit state passed into the store, never ambient.
package session

// Session describes the current visitor. The zero value is an anonymous
// visitor.
type Session struct {
	// VisitorID identifies the visitor for logging. For authenticated
	// sessions this is the account's user ID; for anonymous sessions it
	// is a locally generated ID.
	VisitorID string

	// Token is the bearer token for remote cart calls. Empty for
	// anonymous visitors.
	Token string
}

// Authenticated reports whether the session carries a bearer token.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Anonymous returns a session with no credentials.
func Anonymous(visitorID string) Session {
	return Session{VisitorID: visitorID}
}

// AuthenticatedSession builds a session for a logged-in user.
func AuthenticatedSession(userID, token string) Session {
	return Session{VisitorID: userID, Token: token}
}
