package models

// Identity is the resolved actor of an authenticated request.
// A nil *Identity means the request is anonymous.
type Identity struct {
	AccountID   int64
	IsStaff     bool
	IsSuperuser bool
}
