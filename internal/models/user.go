package models

// User is the single persisted entity: one record per registered email.
// Password holds the bcrypt hash, never the plaintext. RefreshToken holds
// the most recently issued refresh token, or "" after logout; overwriting it
// on login is what makes sessions effectively single-per-user.
type User struct {
	ID           string `bson:"_id,omitempty" json:"-"`
	Email        string `bson:"email" json:"email"`
	Password     string `bson:"password" json:"-"`
	RefreshToken string `bson:"refreshToken,omitempty" json:"-"`
}
