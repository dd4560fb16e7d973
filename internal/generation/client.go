package generation

import "context"

// Completer performs chat completion calls for a single task. Implementations
// are not shared between tasks; the generator closes its client when it exits.
type Completer interface {
	// Complete returns the text of the first choice, or an empty string when
	// the model returned no content.
	Complete(ctx context.Context, prompt Prompt) (string, error)

	// Close releases the client's connections.
	Close() error
}

// ClientFactory opens a fresh Completer configured from the request's
// provider, credentials and endpoint.
type ClientFactory interface {
	Open(ctx context.Context, req Request) (Completer, error)
}

// Archive keeps final task records after the registry forgets them.
type Archive interface {
	Save(ctx context.Context, record ArchivedTask) error
	// Load returns ErrTaskNotFound when nothing is stored for id.
	Load(ctx context.Context, id string) (*ArchivedTask, error)
}
