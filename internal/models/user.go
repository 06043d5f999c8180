package models

// DefaultAvatar is assigned to users provisioned on first contact.
const DefaultAvatar = "avatar1.png"

// User represents a profile stored for an externally-identified user.
// The ID is the opaque principal ID issued by the identity provider;
// a row is created on the user's first authenticated contact and never
// hard-deleted.
type User struct {
	// ID is the external principal identifier.
	ID string `json:"user_id"`

	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`

	// Bank and BankAcc hold the payout details shown to payers.
	Bank    string `json:"bank"`
	BankAcc string `json:"bank_acc"`

	// AvatarURL is an avatar filename, not a full URL.
	AvatarURL string `json:"avatar_url"`

	// QRBank is a base64-encoded bank QR image, empty when unset.
	QRBank string `json:"-"`

	PushNotify bool `json:"push_enabled"`

	// PINHash is the bcrypt hash of the 6-digit payment PIN.
	// Empty until the user sets a PIN. Never serialized.
	PINHash string `json:"-"`

	CreatedAt int64 `json:"-"`
	UpdatedAt int64 `json:"-"`
}

// ProfileUpdate carries a partial profile mutation. Nil fields keep the
// stored value, matching COALESCE semantics in the update statement.
type ProfileUpdate struct {
	Username   *string
	Phone      *string
	Bank       *string
	BankAcc    *string
	AvatarURL  *string
	QRBank     *string
	PushNotify *bool
}
