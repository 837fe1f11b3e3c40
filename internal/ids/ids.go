package ids

import "github.com/segmentio/ksuid"

// New returns a sortable unique identifier for entities and devices.
func New() string {
	return ksuid.New().String()
}
