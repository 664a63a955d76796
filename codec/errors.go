package codec

import "fmt"

// ErrorCode tags decode/verify failures the way consensus packages in the
// wider Animica tree do: a short stable string plus a free-form message.
type ErrorCode string

const (
	ErrInvalidCBOR   ErrorCode = "InvalidCBOR"
	ErrUnknownTag    ErrorCode = "UnknownTag"
	ErrNonCanonical  ErrorCode = "NonCanonical"
	ErrUnknownScheme ErrorCode = "UnknownScheme"
)

type CodecError struct {
	Code ErrorCode
	Msg  string
}

func (e *CodecError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func newErr(code ErrorCode, msg string) error {
	return &CodecError{Code: code, Msg: msg}
}
