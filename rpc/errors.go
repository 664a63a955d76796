// Package rpc implements the JSON-RPC 2.0 / WebSocket surface of
// CANONICAL §4.6: a uniform envelope over HTTP (POST /rpc) and WS (/ws),
// backed by the node through the Backend seam.
package rpc

import (
	"errors"
	"fmt"

	"github.com/animicaorg/animica-node/aicf"
	"github.com/animicaorg/animica-node/beacon"
	"github.com/animicaorg/animica-node/tx"
)

// ErrUnknownBlob is returned by a Backend when a DA commitment has no
// matching stored blob; it is the one DA-layer sentinel rpc itself needs to
// distinguish, since the da package's own errors are encoding-level, not
// store-level.
var ErrUnknownBlob = errors.New("rpc: unknown blob commitment")

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string { return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message) }

func newError(code int, message string) *Error { return &Error{Code: code, Message: message} }

// Generic JSON-RPC 2.0 codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternal       = -32603
	CodeGeneric        = -32000
	CodeRateLimited    = -32001
)

// Tx/block codes (-32010..-32020), per CANONICAL §4.6/§6.
const (
	CodeInvalidTx          = -32010
	CodeChainIDMismatch    = -32011
	CodeSignatureInvalid   = -32012
	CodeFeeTooLow          = -32013
	CodeNonceGap           = -32014
	CodeOversize           = -32015
	CodeDuplicate          = -32016
	CodeLimitExceeded      = -32017
	CodeUnknownTransaction = -32018
	CodeUnknownBlock       = -32019
)

// DA codes (-32030/-32031).
const (
	CodeUnknownBlob    = -32030
	CodeDAProofInvalid = -32031
)

// AICF codes (-32041/-32042).
const (
	CodeUnknownTask    = -32041
	CodeNoResultYetRPC = -32042
)

// Randomness codes (-32051..-32053).
const (
	CodeCommitTooLate  = -32051
	CodeRevealTooEarly = -32052
	CodeUnknownRound   = -32053
)

// Capability codes (-32061..-32063).
const (
	CodeUnknownProvider    = -32061
	CodeProviderNotEligible = -32062
	CodeUnknownJob          = -32063
)

// mapTxError maps a submission-path error from the tx/mempool packages
// onto the wire codes CANONICAL §6 pins for tx.sendRawTransaction.
func mapTxError(err error) *Error {
	switch tx.CodeOf(err) {
	case tx.ErrChainIDMismatch:
		return newError(CodeChainIDMismatch, err.Error())
	case tx.ErrSignatureInvalid, tx.ErrUnknownScheme, tx.ErrPubkeyMismatch:
		return newError(CodeSignatureInvalid, err.Error())
	case tx.ErrFeeTooLow:
		return newError(CodeFeeTooLow, err.Error())
	case tx.ErrNonceGap:
		return newError(CodeNonceGap, err.Error())
	case tx.ErrOversize:
		return newError(CodeOversize, err.Error())
	case tx.ErrDuplicate:
		return newError(CodeDuplicate, err.Error())
	case tx.ErrLimitExceeded:
		return newError(CodeLimitExceeded, err.Error())
	case tx.ErrInvalidCBOR, tx.ErrUnknownTag, tx.ErrNonCanonical, tx.ErrInvalidTx:
		return newError(CodeInvalidTx, err.Error())
	default:
		return newError(CodeGeneric, err.Error())
	}
}

// mapDAError maps a DA-path error onto the DA wire codes.
func mapDAError(err error) *Error {
	if errors.Is(err, ErrUnknownBlob) {
		return newError(CodeUnknownBlob, err.Error())
	}
	return newError(CodeDAProofInvalid, err.Error())
}

// mapAICFError maps an aicf-package error onto the AICF/capability codes.
func mapAICFError(err error) *Error {
	switch aicf.CodeOf(err) {
	case aicf.ErrUnknownJob:
		return newError(CodeUnknownJob, err.Error())
	case aicf.ErrUnknownProvider:
		return newError(CodeUnknownProvider, err.Error())
	case aicf.ErrNotEligible:
		return newError(CodeProviderNotEligible, err.Error())
	case aicf.ErrNoResultYet:
		return newError(CodeNoResultYetRPC, err.Error())
	default:
		return newError(CodeGeneric, err.Error())
	}
}

// mapBeaconError maps a beacon-package error onto the randomness codes.
func mapBeaconError(err error) *Error {
	switch beacon.CodeOf(err) {
	case beacon.ErrLateCommit, beacon.ErrDuplicateCommit:
		return newError(CodeCommitTooLate, err.Error())
	case beacon.ErrEarlyReveal:
		return newError(CodeRevealTooEarly, err.Error())
	default:
		return newError(CodeGeneric, err.Error())
	}
}
