package core

import "github.com/google/uuid"

// newID mints a record id with a kind prefix, matching the id format of
// existing documents ("animal_<uuid>", "evt_<uuid>", ...).
func newID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}
