package model

// User is a whitelisted board member, keyed by lower-cased email (also the
// document id). Name and picture are refreshed from the identity provider
// claims on every login.
type User struct {
	Email   string `json:"email" firestore:"email"`
	Name    string `json:"name" firestore:"name"`
	Picture string `json:"picture" firestore:"picture"`
	IsAdmin bool   `json:"isAdmin" firestore:"isAdmin"`
}

// PlaceholderName is the synthetic "unassigned" entry appended to user
// listings so tasks can be created without a real responsible party.
const PlaceholderName = "DEFINIR"

// PlaceholderUser returns the synthetic unassigned user.
func PlaceholderUser() User {
	return User{Name: PlaceholderName}
}
