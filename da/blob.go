package da

// Blob is the DA-layer unit of storage: a namespace-tagged byte payload
// (CANONICAL §4.3 "Blob (DA)").
type Blob struct {
	Namespace      Namespace
	Bytes          []byte
	OriginalLength int
}

// NewBlob wraps raw bytes under a namespace.
func NewBlob(ns Namespace, data []byte) Blob {
	return Blob{Namespace: ns, Bytes: data, OriginalLength: len(data)}
}

// Commit partitions the blob into shares, RS-encodes each stripe, and
// returns the resulting NMT leaves in row-major (stripe, column) order:
// linear(r,c) = r*N + c (CANONICAL §4.3 "Leaves").
func (b Blob) Commit() ([]Node, error) {
	dataShares, _ := Partition(b.Bytes)
	stripes := Stripes(dataShares)

	leaves := make([]Node, 0, len(stripes)*N)
	for _, stripe := range stripes {
		coded, err := EncodeStripe(stripe)
		if err != nil {
			return nil, err
		}
		for _, share := range coded {
			leaves = append(leaves, Leaf(b.Namespace, share))
		}
	}
	return leaves, nil
}

// Decode reassembles the original blob bytes from a set of retrieved coded
// shares across all of a blob's stripes. present[r][c] reports whether
// stripe r's column c share was retrieved; shares[r][c] holds its bytes (or
// nil if absent).
func Decode(shares [][][]byte, present [][]bool, originalLen int) ([]byte, error) {
	var out []byte
	for r := range shares {
		dataShares, err := DecodeStripe(shares[r], present[r])
		if err != nil {
			return nil, err
		}
		for _, s := range dataShares {
			out = append(out, s...)
		}
	}
	return Trim(out, originalLen), nil
}
