package types

type AuthProvider string

const (
	AuthProviderLocal    AuthProvider = "local"
	AuthProviderSupabase AuthProvider = "supabase"
)

// SessionEvent is what session-change listeners receive
type SessionEvent string

const (
	SessionEventSignedIn  SessionEvent = "signed_in"
	SessionEventSignedOut SessionEvent = "signed_out"
)
