// Package gemini implements generation.Completer using Google's Gemini API
// through the google.golang.org/genai SDK.
//
// The system prompt is sent as the system instruction and the user prompt as
// the single content turn. Responses whose prompt or candidate is stopped by
// safety filters surface as generation.ErrContentBlocked.
package gemini
