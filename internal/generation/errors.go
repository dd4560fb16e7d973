package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrTaskNotFound is returned when no live or archived task has the requested id
	ErrTaskNotFound = errors.New("generation task not found")

	// ErrAlreadyStarted is returned when a second generator tries to claim a task
	ErrAlreadyStarted = errors.New("generation task already started")

	// ErrInvalidRequest is returned when a generation request fails validation
	ErrInvalidRequest = errors.New("invalid generation request")

	// ErrGenerationFailed is returned when a completion call fails for any general reason
	ErrGenerationFailed = errors.New("failed to generate text")

	// ErrInvalidResponse is returned when the model response is empty or malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the model blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrInvalidConfig is returned when a client cannot be built from the request settings
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrUnknownProvider is returned when the request names a provider no factory serves
	ErrUnknownProvider = errors.New("unknown generation provider")
)
