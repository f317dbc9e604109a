package google

// DefaultOAuthScopes are the Google OAuth scopes requested during
// authentication. They cover identity plus calendar access, which is the
// only Google surface the assistant talks to.
var DefaultOAuthScopes = []string{
	// OpenID Connect scopes (required for user info)
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	// Google Calendar scopes
	"https://www.googleapis.com/auth/calendar",
	"https://www.googleapis.com/auth/calendar.events",
	"https://www.googleapis.com/auth/calendar.readonly",
}
