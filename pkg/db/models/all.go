package models

// All lists every persisted model in dependency order. Used for sqlite
// auto-migration in development and tests.
func All() []any {
	return []any{
		&User{},
		&VerificationToken{},
		&Pet{},
		&ScreeningResult{},
		&GuestCart{},
		&UserCart{},
		&Adoption{},
		&Event{},
		&CollaborationRequest{},
		&Donation{},
		&Notification{},
	}
}
