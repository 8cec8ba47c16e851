package commands

type contextKey string

// ClientContextKey is used for storing the client in context for commands.
// When a client is already present the root command does not create one,
// which lets tests inject a mock.
const ClientContextKey contextKey = "client"

// LoggerContextKey holds the *slog.Logger built from the client config.
const LoggerContextKey contextKey = "logger"
