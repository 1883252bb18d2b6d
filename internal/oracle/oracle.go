// Package oracle abstracts the text-completion service the scan engine
// consults once per turn. Providers are stateless request/response clients;
// transport failures are fatal to the caller and never retried here.
package oracle

import (
	"context"
	"errors"
)

// ErrTransport marks completion failures caused by the provider or the
// network. The engine treats these as fatal.
var ErrTransport = errors.New("oracle transport failure")

// Oracle submits one prompt and returns the raw completion text.
type Oracle interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
