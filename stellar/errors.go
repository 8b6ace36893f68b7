package stellar

import "fmt"

// Horizon reports failures as short result codes. The maps below translate
// the codes a payment can realistically hit into messages safe to show a
// user directly.

var opResultMessages = map[string]string{
	"op_underfunded":          "Insufficient XLM balance to complete this payment.",
	"op_insufficient_balance": "Insufficient XLM balance to complete this payment.",
	"op_no_destination":       "The recipient account doesn't exist on the Stellar network.",
	"op_no_trust":             "The recipient hasn't set up a trustline for this asset.",
	"op_line_full":            "The recipient's account cannot receive more of this asset.",
	"op_not_authorized":       "You are not authorised to send to this account.",
	"op_malformed":            "Transaction is malformed. Check the amount and addresses.",
}

var txResultMessages = map[string]string{
	"tx_bad_seq":          "Transaction sequence mismatch. Please try again.",
	"tx_insufficient_fee": "Transaction fee too low. Please try again.",
}

// FriendlyOpError maps an operation-level result code to a human-readable
// message. Unmapped codes fall back to a generic message carrying the code.
func FriendlyOpError(code string) string {
	if msg, ok := opResultMessages[code]; ok {
		return msg
	}
	return fmt.Sprintf("Operation failed: %s", code)
}

// FriendlyTxError maps a transaction-level result code the same way.
func FriendlyTxError(code string) string {
	if msg, ok := txResultMessages[code]; ok {
		return msg
	}
	return fmt.Sprintf("Transaction failed: %s", code)
}

// ClassifySubmitError picks the most specific message from a Horizon result:
// the first non-success operation code wins over the transaction code.
func ClassifySubmitError(txCode string, opCodes []string) string {
	for _, op := range opCodes {
		if op != "" && op != "op_success" {
			return FriendlyOpError(op)
		}
	}
	if txCode != "" && txCode != "tx_success" {
		return FriendlyTxError(txCode)
	}
	return "Transaction submission failed."
}
