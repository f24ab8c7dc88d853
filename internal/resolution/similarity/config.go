package similarity

// Config carries the static lookup tables the name matcher depends on. It is
// loaded once at startup and treated as immutable; inject a custom table in
// tests instead of mutating the default.
type Config struct {
	// Nicknames maps an uppercased canonical first name to its accepted
	// nickname forms, also uppercased.
	Nicknames map[string][]string
}

// DefaultConfig returns the built-in nickname equivalence table.
func DefaultConfig() Config {
	return Config{
		Nicknames: map[string][]string{
			"ROBERT":    {"BOB", "ROB", "BOBBY", "ROBBIE"},
			"WILLIAM":   {"WILL", "BILL", "BILLY", "WILLY"},
			"RICHARD":   {"RICK", "DICK", "RICH"},
			"MICHAEL":   {"MIKE", "MIKEY"},
			"JAMES":     {"JIM", "JIMMY", "JAMIE"},
			"JOHN":      {"JACK", "JOHNNY", "JON", "JONATHAN"},
			"JONATHAN":  {"JOHN", "JON", "JACK"},
			"ELIZABETH": {"LIZ", "BETH", "LIZZY", "BETTY"},
			"MARGARET":  {"MAGGIE", "MEG", "PEGGY"},
			"KATHERINE": {"KATE", "KATHY", "KATIE", "KAT"},
			"SARAH":     {"SARA"},
			"MARIA":     {"MARIE"},
		},
	}
}
