package ports

import "github.com/bft-labs/bulk/pkg/log"

// Logger is the logging sink shared by every session.
// Implementations must accept concurrent calls without interleaving messages.
type Logger = log.Logger

// Field is a structured log field.
type Field = log.Field
