package models

import "github.com/google/uuid"

// ensureID assigns a v4 UUID to an unset primary key. Postgres also defaults
// ids server-side; SQLite does not.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
