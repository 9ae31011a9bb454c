package models

// User is a member of the fixed group sharing the car. The roster is
// static configuration, not runtime data.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// DefaultUsers returns the built-in roster.
func DefaultUsers() []User {
	return []User{
		{ID: "jeroen", Name: "Jeroen", Color: "#2563eb"},
		{ID: "stijn", Name: "Stijn", Color: "#16a34a"},
		{ID: "silke", Name: "Silke", Color: "#db2777"},
		{ID: "hanne", Name: "Hanne", Color: "#d97706"},
		{ID: "hella", Name: "Hella", Color: "#7c3aed"},
	}
}

// FindUser looks up a user by id, returning nil when unknown.
func FindUser(users []User, id string) *User {
	for i := range users {
		if users[i].ID == id {
			return &users[i]
		}
	}
	return nil
}

// UserIDs returns the roster's ids in roster order.
func UserIDs(users []User) []string {
	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids
}
