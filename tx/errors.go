package tx

import "fmt"

// ErrorCode is a short stable code plus a free-form message, split across
// the three propagation tiers of CANONICAL §7.
type ErrorCode string

// Rejected tier (never admitted; surfaced to the submitter, not persisted).
const (
	ErrInvalidCBOR      ErrorCode = "InvalidCBOR"
	ErrUnknownTag       ErrorCode = "UnknownTag"
	ErrNonCanonical     ErrorCode = "NonCanonical"
	ErrChainIDMismatch  ErrorCode = "ChainIdMismatch"
	ErrSignatureInvalid ErrorCode = "SignatureInvalid"
	ErrUnknownScheme    ErrorCode = "UnknownScheme"
	ErrPubkeyMismatch   ErrorCode = "PubkeyMismatch"
	ErrOversize         ErrorCode = "Oversize"
	ErrNonceGap         ErrorCode = "NonceGap"
	ErrFeeTooLow        ErrorCode = "FeeTooLow"
	ErrDuplicate        ErrorCode = "Duplicate"
	ErrLimitExceeded    ErrorCode = "LimitExceeded"
	ErrInvalidTx        ErrorCode = "InvalidTx"
)

type TxError struct {
	Code ErrorCode
	Msg  string
}

func (e *TxError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func txerr(code ErrorCode, msg string) error {
	return &TxError{Code: code, Msg: msg}
}

// CodeOf extracts the ErrorCode from err if it is a *TxError, else "".
func CodeOf(err error) ErrorCode {
	if te, ok := err.(*TxError); ok {
		return te.Code
	}
	return ""
}
