package vm

import "github.com/animicaorg/animica-node/codec"

func hashBytes(op Opcode, v []byte) []byte {
	switch op {
	case OpSHA3_256:
		d := codec.SHA3_256(v)
		return d[:]
	case OpSHA3_512:
		d := codec.SHA3_512(v)
		return d[:]
	case OpKeccak256:
		d := codec.Keccak256(v)
		return d[:]
	default:
		return nil
	}
}
