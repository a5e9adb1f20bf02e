package cache

// The two user keyspaces are deliberately denormalized: user:<id> carries the
// public projection served to clients, user:email:<email> carries the full
// projection (password hash included) so the login path can verify
// credentials without touching the store. Whenever the store is consulted,
// both are refreshed together.

func UserKey(id string) string {
	return "user:" + id
}

func UserEmailKey(email string) string {
	return "user:email:" + email
}
