package model

// User is the signed-in patient's profile as returned by get-profile. Email is
// immutable from this client.
type User struct {
	ID      string  `json:"_id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Image   string  `json:"image"`
	Phone   string  `json:"phone"`
	Address Address `json:"address"`
	Gender  string  `json:"gender"`
	DOB     string  `json:"dob"`
}

// ProfileUpdate carries the editable profile fields. Address is serialized to
// a JSON string inside the multipart body, matching the backend contract.
type ProfileUpdate struct {
	Name    string
	Phone   string
	Address Address
	Gender  string
	DOB     string

	// Optional replacement avatar.
	ImageName string
	Image     []byte
}
