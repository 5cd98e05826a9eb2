package request

import "github.com/google/uuid"

// newUUID is the single call site funneling every random-token need in the
// builder (multipart boundaries, padding tokens, mangled method names)
// through one RNG source.
func newUUID() string {
	return uuid.NewString()
}
