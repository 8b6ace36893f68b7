// Package stellar is the binding to the external payment network: address
// grammar, amount unit conversion, memo limits and result-code mapping.
// It performs no network I/O itself.
package stellar

import "regexp"

// Ed25519 public keys are strkey-encoded: a leading 'G' followed by 55
// base32 characters.
var accountPattern = regexp.MustCompile(`^G[A-Z2-7]{55}$`)

// IsValidPaymentAddress reports whether address is a well-formed account
// address on the network. It checks the grammar only, not whether the
// account exists or is funded.
func IsValidPaymentAddress(address string) bool {
	return accountPattern.MatchString(address)
}
