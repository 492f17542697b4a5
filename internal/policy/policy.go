package policy

import "errors"

// Role is the single role carried by every user record. A superuser is
// treated as admin no matter what the role field says.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ErrMethodNotAllowed is raised when the self-alias path is addressed with a
// verb other than GET or PATCH. Handlers map it to 405, never to a plain 403.
var ErrMethodNotAllowed = errors.New("method not allowed on the self alias")

// ResourceKind groups resources that share the same first-stage access rule.
type ResourceKind int

const (
	KindContent  ResourceKind = iota // categories, genres, titles: writes are admin-only
	KindFeedback                     // reviews, comments: writes need authentication
)

// Actor is the explicit request identity passed into every decision.
// Zero value means anonymous.
type Actor struct {
	ID            string
	Username      string
	Role          Role
	Superuser     bool
	Authenticated bool
}

func (a Actor) IsAdmin() bool {
	return a.Superuser || (a.Authenticated && a.Role == RoleAdmin)
}

func (a Actor) IsModerator() bool {
	return a.Authenticated && a.Role == RoleModerator
}

// safeMethod reports whether the HTTP method is read-only.
func safeMethod(method string) bool {
	switch method {
	case "GET", "HEAD", "OPTIONS":
		return true
	}
	return false
}

// CanAccess is the first authorization stage: may this actor perform this
// method on this kind of resource at all. Object ownership is not considered
// here, that is CanMutate's job.
func CanAccess(a Actor, method string, kind ResourceKind) bool {
	if safeMethod(method) {
		return true
	}
	switch kind {
	case KindContent:
		return a.IsAdmin()
	case KindFeedback:
		return a.Authenticated
	}
	return false
}

// CanMutate is the second stage for reviews and comments: the author may
// change their own record, moderators and admins may change anyone's.
func CanMutate(a Actor, authorID string) bool {
	if !a.Authenticated {
		return false
	}
	return a.ID == authorID || a.IsModerator() || a.IsAdmin()
}

// CheckUserAccess decides requests addressed at /users/:username.
// The configured alias always resolves to the caller's own record but only
// for GET and PATCH; every other verb on the alias is rejected with
// ErrMethodNotAllowed regardless of role. Any real username requires admin.
// The returned bool is true when the request targets the caller itself.
func CheckUserAccess(a Actor, method, username, alias string) (bool, error) {
	if username == alias {
		if method != "GET" && method != "PATCH" {
			return false, ErrMethodNotAllowed
		}
		return true, nil
	}
	if !a.IsAdmin() {
		return false, errors.New("admin role required")
	}
	return false, nil
}

// SanitizeSelfUpdate guards against self-promotion: a non-admin editing their
// own record keeps role "user" no matter what the payload asked for.
func SanitizeSelfUpdate(a Actor, requested Role) Role {
	if a.IsAdmin() {
		return requested
	}
	return RoleUser
}
