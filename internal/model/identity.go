package model

// Identity is the authenticated principal attached to a session by the identity provider.
// It is owned by the session layer; requests only keep a Requester snapshot of it.
type Identity struct {
	ExternalID  string   `json:"external_id"`
	DisplayName string   `json:"display_name"`
	Emails      []string `json:"emails"`
}

// PrimaryEmail returns the first email address, or "" when none is known.
func (i *Identity) PrimaryEmail() string {
	if len(i.Emails) == 0 {
		return ""
	}
	return i.Emails[0]
}

// Snapshot captures the requester fields stored alongside a request.
// Missing name or email stay empty; fallbacks are applied only when talking to the helpdesk.
func (i *Identity) Snapshot() Requester {
	return Requester{
		ExternalID:  i.ExternalID,
		DisplayName: i.DisplayName,
		Email:       i.PrimaryEmail(),
	}
}
