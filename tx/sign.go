package tx

import "github.com/animicaorg/animica-node/codec"

// SignBytes computes CBOR_canonical(["animica:tx:sign/v1", signable(body)]).
func SignBytes(body TxBody) ([]byte, error) {
	return codec.DomainSeparated(codec.TagTxSignV1, body.Signable())
}

// Hash computes txHash := SHA3-256(SignBytes(body)). It is a pure function
// of SignBytes: changing the signature bytes never changes the hash.
func Hash(body TxBody) ([32]byte, error) {
	sb, err := SignBytes(body)
	if err != nil {
		return [32]byte{}, err
	}
	return codec.SHA3_256(sb), nil
}
