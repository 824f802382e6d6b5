package errors

// Template defines a registered error type.
type Template struct {
	Category   Category
	Message    string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// Backend calls (E100-E119)
	"E101": {
		Category:   CategoryTransport,
		Message:    "Backend request failed",
		Suggestion: "Check that the backend URL is reachable from this host.",
	},
	"E102": {
		Category: CategoryStatus,
		Message:  "Backend responded with an error status",
	},
	"E103": {
		Category: CategoryPayload,
		Message:  "Backend did not report success",
	},
	"E104": {
		Category: CategoryPayload,
		Message:  "Backend response could not be decoded",
	},

	// Configuration (E120-E139)
	"E120": {
		Category:   CategoryConfig,
		Message:    "Configuration file could not be read",
		Suggestion: "Run from the project directory or pass --config.",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Configuration file is malformed",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},

	// Database provisioning (E140-E159)
	"E140": {
		Category:   CategoryDatabase,
		Message:    "Database connection failed",
		Suggestion: "Check MONGODB_URI and that the server is running.",
	},
	"E141": {
		Category: CategoryDatabase,
		Message:  "Collection could not be created",
	},
	"E142": {
		Category: CategoryDatabase,
		Message:  "Index could not be created",
	},

	// Live session protocol (E160-E179)
	"E160": {
		Category: CategoryProtocol,
		Message:  "Invalid client frame",
	},
	"E161": {
		Category: CategoryProtocol,
		Message:  "WebSocket write failed",
	},

	// CLI (E180-E199)
	"E180": {
		Category:   CategoryCLI,
		Message:    "Invalid command usage",
		Suggestion: "Run 'recipebox --help' for the available commands and flags.",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
