// Package profiles persists user profiles and the profile sharing
// whitelist. The local account's own profile is stored like any other,
// under models.LocalProfileRecipientID.
package profiles
