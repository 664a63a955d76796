// Package aicf implements the AI Compute Fund job pipeline of CANONICAL
// §4.4: deterministic task ids, a provider registry with attestation,
// staking and slashing, a beacon-seeded lease matcher, proof-bound result
// resolution, and epoch settlement.
package aicf

import (
	"encoding/binary"

	"github.com/animicaorg/animica-node/address"
	"github.com/animicaorg/animica-node/codec"
)

// TaskID derives the deterministic task identifier for one AICF job
// (CANONICAL §4.4):
//
//	task_id := SHA3-256("AICF_TASK_ID" || uvarint(chainId) ||
//	           uvarint(enqueue_height) || tx_hash || caller ||
//	           CBOR_canonical(payload))
func TaskID(chainID, enqueueHeight uint64, txHash [32]byte, caller address.Address, payload any) ([32]byte, error) {
	encodedPayload, err := codec.Marshal(payload)
	if err != nil {
		return [32]byte{}, err
	}

	buf := make([]byte, 0, 12+10+10+32+address.Size+len(encodedPayload))
	buf = append(buf, []byte("AICF_TASK_ID")...)
	buf = appendUvarint(buf, chainID)
	buf = appendUvarint(buf, enqueueHeight)
	buf = append(buf, txHash[:]...)
	buf = append(buf, caller.Bytes()...)
	buf = append(buf, encodedPayload...)

	return codec.SHA3_256(buf), nil
}

func appendUvarint(buf []byte, v uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	return append(buf, tmp[:n]...)
}
