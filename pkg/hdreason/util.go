package hdreason

import (
	"os"

	"github.com/google/uuid"
)

// newFactID mints a fact/rule/session identifier. Using a UUID here (rather
// than the teacher's timestamp+atomic-counter scheme) avoids any shared
// process-global counter between sessions, matching spec.md §5's
// session-isolation requirement.
func newFactID() string {
	return uuid.NewString()
}

// readFileIfExists returns (nil, nil) for a missing file instead of an
// error, for optional companion files like theory.json.
func readFileIfExists(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}
