package domain

// Name holds the split display name carried inside token payloads.
type Name struct {
	First string `json:"first"`
	Last  string `json:"last"`
}

// Full returns the display form.
func (n Name) Full() string {
	return n.First + " " + n.Last
}
