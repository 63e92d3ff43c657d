package models

import "github.com/google/uuid"

// ensureID assigns a new UUID when the primary key is still zero. Models call
// it from BeforeCreate so inserts do not depend on database-side defaults.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
