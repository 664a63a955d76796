package rpc

import (
	"encoding/hex"
	"encoding/json"
)

// RegisterRandMethods wires rand.getParams/getRound/commit/reveal/
// getBeacon (CANONICAL §6 "Wire: randomness").
func RegisterRandMethods(reg *Registry, backend Backend) {
	reg.Register("rand.getParams", func(json.RawMessage) (any, error) {
		return backend.RandParams(), nil
	})

	reg.Register("rand.getRound", func(json.RawMessage) (any, error) {
		return backend.RandRound(), nil
	})

	reg.Register("rand.commit", func(raw json.RawMessage) (any, error) {
		var p struct {
			SaltHex    string `json:"saltHex"`
			PayloadHex string `json:"payloadHex"`
		}
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		saltHash, payloadHash, err := decodeTwoHashes(p.SaltHex, p.PayloadHex)
		if err != nil {
			return nil, err
		}
		if err := backend.RandCommit(saltHash, payloadHash); err != nil {
			return nil, mapBeaconError(err)
		}
		return map[string]bool{"accepted": true}, nil
	})

	reg.Register("rand.reveal", func(raw json.RawMessage) (any, error) {
		var p struct {
			SaltHex    string `json:"saltHex"`
			PayloadHex string `json:"payloadHex"`
		}
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		salt, err := hex.DecodeString(p.SaltHex)
		if err != nil {
			return nil, newError(CodeInvalidParams, "saltHex is not valid hex")
		}
		payload, err := hex.DecodeString(p.PayloadHex)
		if err != nil {
			return nil, newError(CodeInvalidParams, "payloadHex is not valid hex")
		}
		if err := backend.RandReveal(salt, payload); err != nil {
			return nil, mapBeaconError(err)
		}
		return map[string]bool{"accepted": true}, nil
	})

	reg.Register("rand.getBeacon", func(raw json.RawMessage) (any, error) {
		var p struct {
			RoundID string `json:"roundId"`
		}
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		if p.RoundID == "" {
			p.RoundID = "latest"
		}
		out, ok := backend.Beacon(p.RoundID)
		if !ok {
			return nil, newError(CodeUnknownRound, "unknown beacon round")
		}
		return map[string]any{
			"epoch": out.Epoch,
			"seed":  hex.EncodeToString(func() []byte { s := out.Seed(); return s[:] }()),
		}, nil
	})
}

func decodeTwoHashes(aHex, bHex string) (a, b [32]byte, err error) {
	ab, e := hex.DecodeString(aHex)
	if e != nil || len(ab) != 32 {
		return a, b, newError(CodeInvalidParams, "hash must be 32 bytes hex")
	}
	bb, e := hex.DecodeString(bHex)
	if e != nil || len(bb) != 32 {
		return a, b, newError(CodeInvalidParams, "hash must be 32 bytes hex")
	}
	copy(a[:], ab)
	copy(b[:], bb)
	return a, b, nil
}
