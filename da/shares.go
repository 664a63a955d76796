package da

// Partition slices data into ShareSize chunks, zero-padding the final chunk
// to a full share, then pads the share count up to a multiple of K with
// all-zero shares (CANONICAL §4.3 "Partition"). It returns the data shares
// and the original byte length for exact trimming on decode.
func Partition(data []byte) (shares [][]byte, originalLen int) {
	originalLen = len(data)
	n := (len(data) + ShareSize - 1) / ShareSize
	if n == 0 {
		n = 1
	}
	shares = make([][]byte, n)
	for i := 0; i < n; i++ {
		s := make([]byte, ShareSize)
		start := i * ShareSize
		end := start + ShareSize
		if end > len(data) {
			end = len(data)
		}
		copy(s, data[start:end])
		shares[i] = s
	}
	if rem := len(shares) % K; rem != 0 {
		for i := 0; i < K-rem; i++ {
			shares = append(shares, make([]byte, ShareSize))
		}
	}
	return shares, originalLen
}

// Stripes groups data shares (already padded to a multiple of K) into
// row-major stripes of K shares each.
func Stripes(shares [][]byte) [][][]byte {
	var stripes [][][]byte
	for i := 0; i < len(shares); i += K {
		stripes = append(stripes, shares[i:i+K])
	}
	return stripes
}

// Trim cuts a reassembled byte stream back to its recorded original length.
func Trim(data []byte, originalLen int) []byte {
	if originalLen > len(data) {
		originalLen = len(data)
	}
	return data[:originalLen]
}
