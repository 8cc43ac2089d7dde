package user

import "time"

// User is the signed-in identity. IsAdmin is decided once when the session is
// established and is stored with the record from then on.
type User struct {
	ID        string
	Email     string
	FullName  string
	AvatarURL string
	Phone     string
	Address   string
	IsAdmin   bool
	CreatedAt time.Time
}

// Session pairs the identity with its bearer token.
type Session struct {
	User  User
	Token string
}

// Valid reports whether both halves of the session are present.
func (s *Session) Valid() bool {
	return s != nil && s.User.ID != "" && s.Token != ""
}

// ProfileUpdate holds the locally editable profile fields; nil means keep.
type ProfileUpdate struct {
	FullName  *string
	AvatarURL *string
	Phone     *string
	Address   *string
}

// Apply returns a copy of u with the non-nil fields of p merged in.
func (p ProfileUpdate) Apply(u User) User {
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.AvatarURL != nil {
		u.AvatarURL = *p.AvatarURL
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
	return u
}
