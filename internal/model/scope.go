package model

// Scope identifies who a request acts for.
type Scope struct {
	UserID string
}
