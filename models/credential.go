package models

// Credential is one record of the user store consulted during Digest
// authentication. The password must be recoverable in clear text (or as a
// precomputed HA1) because RFC 2617 requires the server to reproduce
// MD5(username:realm:password).
type Credential struct {
	// Username is the lookup key, without any "domain\" prefix.
	Username string `json:"username"`

	// Password is the shared secret used to recompute the digest.
	Password string `json:"-"`

	// Roles are the authorization roles granted to the account.
	Roles []string `json:"roles"`
}

// Principal is the authenticated identity attached to a request after a
// successful Digest or bearer-token handshake.
type Principal struct {
	// Name is the full username exactly as the client presented it,
	// including any "domain\" prefix.
	Name string `json:"name"`

	// Roles are copied from the matched credential record.
	Roles []string `json:"roles"`
}
