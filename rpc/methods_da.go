package rpc

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"

	"github.com/animicaorg/animica-node/da"
)

// RegisterDAMethods wires da.putBlob/getBlob/getProof (CANONICAL §6 "Wire:
// DA").
func RegisterDAMethods(reg *Registry, backend Backend) {
	reg.Register("da.putBlob", func(raw json.RawMessage) (any, error) {
		var p struct {
			NS      string `json:"ns"`
			DataB64 string `json:"dataB64"`
		}
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		nsBytes, err := hex.DecodeString(p.NS)
		if err != nil || len(nsBytes) != len(da.Namespace{}) {
			return nil, newError(CodeInvalidParams, "ns must be nsSize bytes hex")
		}
		var ns da.Namespace
		copy(ns[:], nsBytes)
		data, err := base64.StdEncoding.DecodeString(p.DataB64)
		if err != nil {
			return nil, newError(CodeInvalidParams, "dataB64 is not valid base64")
		}
		commitment, size, err := backend.PutBlob(ns, data)
		if err != nil {
			return nil, mapDAError(err)
		}
		return map[string]any{
			"commitment": hexHash(commitment),
			"size":       size,
			"namespace":  p.NS,
		}, nil
	})

	reg.Register("da.getBlob", func(raw json.RawMessage) (any, error) {
		commitment, err := decodeHash32(raw)
		if err != nil {
			return nil, err
		}
		blob, ok := backend.GetBlob(commitment)
		if !ok {
			return nil, mapDAError(ErrUnknownBlob)
		}
		return map[string]any{
			"namespace":      hex.EncodeToString(blob.Namespace[:]),
			"dataB64":        base64.StdEncoding.EncodeToString(blob.Bytes),
			"originalLength": blob.OriginalLength,
		}, nil
	})

	reg.Register("da.getProof", func(raw json.RawMessage) (any, error) {
		var p struct {
			Commitment string `json:"commitment"`
			Samples    int    `json:"samples"`
		}
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		b, err := hex.DecodeString(p.Commitment)
		if err != nil || len(b) != 32 {
			return nil, newError(CodeInvalidParams, "commitment must be 32 bytes hex")
		}
		var commitment [32]byte
		copy(commitment[:], b)
		proof, err := backend.GetProof(commitment, p.Samples)
		if err != nil {
			return nil, mapDAError(err)
		}
		return proof, nil
	})
}
