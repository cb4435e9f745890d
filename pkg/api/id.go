package api

import (
	"fmt"

	"github.com/google/uuid"
)

const responseIDPrefix = "resp_bridge_"

// NewResponseID generates a fresh response identifier of the form
// "resp_bridge_<uuidv7>". Time-ordered UUIDs keep identifiers monotonic
// and unique across concurrent requests.
func NewResponseID() string {
	return responseIDPrefix + newUUID()
}

// NewCallID generates a fresh tool-call identifier of the form
// "call_<uuidv7>", used when the source omitted one.
func NewCallID() string {
	return "call_" + newUUID()
}

// NewIndexedCallID generates a tool-call identifier carrying the call's
// stream index, of the form "call_<uuidv7>_<index>".
func NewIndexedCallID(index int) string {
	return fmt.Sprintf("call_%s_%d", newUUID(), index)
}

func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 fails only when the random source does; a random UUID
		// still satisfies uniqueness.
		return uuid.NewString()
	}
	return id.String()
}
