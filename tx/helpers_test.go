package tx

import "github.com/animicaorg/animica-node/codec"

func marshalBadEnvelope() ([]byte, error) {
	return codec.Marshal([]any{
		"animica:tx:bogus/v1",
		map[string]any{"chain_id": uint64(1)},
		map[string]any{"scheme": "dilithium3", "pubkey": []byte{}, "sig": []byte{}},
	})
}
