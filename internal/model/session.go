package model

// Persisted key names. These match the keys the web dashboard used, so a
// shared store reads the same way from either client.
const (
	KeyToken     = "token"
	KeyUsername  = "username"
	KeyRole      = "role"
	KeyThemeMode = "themeMode"

	// KeyMailboxPassword holds the IMAP password for mailbox exports.
	KeyMailboxPassword = "mailboxPassword"
)

// DefaultRole is assumed when the server does not report one.
const DefaultRole = "USER"

// SystemUser is the acting identity when no username is stored.
const SystemUser = "SYSTEM"

// Session is the authenticated identity of the local user.
type Session struct {
	Token    string
	Username string
	Role     string
}

// ThemeMode selects the light or dark palette.
type ThemeMode string

const (
	ThemeLight ThemeMode = "light"
	ThemeDark  ThemeMode = "dark"
)

// Toggle returns the opposite mode.
func (m ThemeMode) Toggle() ThemeMode {
	if m == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// OrDefault returns m, or light when m is not a known mode.
func (m ThemeMode) OrDefault() ThemeMode {
	if m == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}
