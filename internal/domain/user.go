package domain

// User is the authenticated caller as known to the identity directory.
type User struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	PhoneVerified bool   `json:"phoneVerified"`
	AddressLine1  string `json:"addressLine1,omitempty"`
	AddressCity   string `json:"addressCity,omitempty"`
}

// SavedAddress returns the user's stored delivery address, or nil when none is on file.
func (u *User) SavedAddress() *Address {
	if u == nil {
		return nil
	}
	addr := &Address{Line1: u.AddressLine1, City: u.AddressCity}
	if !addr.Deliverable() {
		return nil
	}
	return addr
}
