package da

import (
	"github.com/klauspost/reedsolomon"
)

// EncodeStripe applies systematic RS(K,N) over GF(2^8) to one stripe of K
// data shares, returning all N coded shares: the first K equal the inputs,
// the remaining N-K are parity (CANONICAL §4.3 "Encode").
func EncodeStripe(dataShares [][]byte) ([][]byte, error) {
	if len(dataShares) != K {
		return nil, errDA("stripe does not contain exactly K shares")
	}
	enc, err := reedsolomon.New(K, N-K)
	if err != nil {
		return nil, err
	}
	shares := make([][]byte, N)
	for i, s := range dataShares {
		shares[i] = append([]byte(nil), s...)
	}
	for i := K; i < N; i++ {
		shares[i] = make([]byte, ShareSize)
	}
	if err := enc.Encode(shares); err != nil {
		return nil, err
	}
	return shares, nil
}

// DecodeStripe reconstructs the K data shares of a stripe from any K of its
// N coded shares. present[i] is false for shares not retrieved; those
// entries of shares are ignored and may be nil.
func DecodeStripe(shares [][]byte, present []bool) ([][]byte, error) {
	if len(shares) != N || len(present) != N {
		return nil, errDA("stripe must carry exactly N share slots")
	}
	count := 0
	for _, ok := range present {
		if ok {
			count++
		}
	}
	if count < K {
		return nil, errDA("fewer than K shares available, cannot reconstruct")
	}

	enc, err := reedsolomon.New(K, N-K)
	if err != nil {
		return nil, err
	}
	work := make([][]byte, N)
	for i, ok := range present {
		if ok {
			work[i] = append([]byte(nil), shares[i]...)
		}
	}
	if err := enc.Reconstruct(work); err != nil {
		return nil, err
	}
	return work[:K], nil
}

type daError string

func (e daError) Error() string { return string(e) }

func errDA(msg string) error { return daError(msg) }
