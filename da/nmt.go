package da

import (
	"encoding/binary"
	"sort"

	"github.com/animicaorg/animica-node/codec"
)

// Namespace is the fixed-width namespace tag carried by every NMT leaf.
type Namespace [NSSize]byte

func (ns Namespace) less(other Namespace) bool {
	for i := range ns {
		if ns[i] != other[i] {
			return ns[i] < other[i]
		}
	}
	return false
}

// Node is one node of the Namespaced Merkle Tree: a digest plus the
// namespace range it summarizes. For a leaf, MinNS == MaxNS == the leaf's
// own namespace.
type Node struct {
	Digest [32]byte
	MinNS  Namespace
	MaxNS  Namespace
}

// varlen encodes n as a canonical minimal-width unsigned varint.
func varlen(n int) []byte {
	var buf [10]byte
	k := binary.PutUvarint(buf[:], uint64(n))
	return buf[:k]
}

// Leaf builds the NMT leaf node for one coded share: digest :=
// SHA3-256(ns || varlen(len(shareBytes)) || shareBytes) (CANONICAL §4.3
// "Leaves").
func Leaf(ns Namespace, shareBytes []byte) Node {
	buf := make([]byte, 0, NSSize+10+len(shareBytes))
	buf = append(buf, ns[:]...)
	buf = append(buf, varlen(len(shareBytes))...)
	buf = append(buf, shareBytes...)
	return Node{Digest: codec.SHA3_256(buf), MinNS: ns, MaxNS: ns}
}

// internalNode combines two adjacent nodes: digest :=
// SHA3-256(left.digest || right.digest || left.min_ns || right.max_ns)
// (CANONICAL §4.3 "NMT Leaf" / internal node hash).
func internalNode(left, right Node) Node {
	buf := make([]byte, 0, 32+32+NSSize+NSSize)
	buf = append(buf, left.Digest[:]...)
	buf = append(buf, right.Digest[:]...)
	buf = append(buf, left.MinNS[:]...)
	buf = append(buf, right.MaxNS[:]...)
	return Node{
		Digest: codec.SHA3_256(buf),
		MinNS:  left.MinNS,
		MaxNS:  right.MaxNS,
	}
}

// Tree is a built Namespaced Merkle Tree: the leaf row plus every level
// above it, retained so inclusion and range proofs can be produced.
type Tree struct {
	levels [][]Node // levels[0] = leaves
}

// SortLeaves orders leaves by (namespace, original index) — the "global
// order" CANONICAL §4.3 requires: concatenated per-blob leaf sequences
// sorted by (namespace, blob_local_index). Leaves within the same namespace
// keep their relative (stable) order, i.e. their blob_local_index ordering.
func SortLeaves(leaves []Node) []Node {
	out := append([]Node(nil), leaves...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MinNS.less(out[j].MinNS)
	})
	return out
}

// BuildTree constructs the tree over leaves, which MUST already be in the
// required global sort order — BuildTree does not sort, since a correct
// verifier must be able to detect (and reject) a tree built over an
// unsorted leaf sequence by recomputing it.
func BuildTree(leaves []Node) *Tree {
	if len(leaves) == 0 {
		return &Tree{levels: [][]Node{{}}}
	}
	t := &Tree{levels: [][]Node{leaves}}
	level := leaves
	for len(level) > 1 {
		var next []Node
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, internalNode(level[i], level[i+1]))
			} else {
				next = append(next, internalNode(level[i], level[i]))
			}
		}
		t.levels = append(t.levels, next)
		level = next
	}
	return t
}

// Root returns the tree's da_root node.
func (t *Tree) Root() Node {
	top := t.levels[len(t.levels)-1]
	if len(top) == 0 {
		return Node{}
	}
	return top[0]
}

// IsSorted reports whether leaves are already in the required global order,
// used by verifiers to reject a tree built over a shuffled leaf sequence
// (CANONICAL §4.3 "verifiers MUST reject trees violating the sort").
func IsSorted(leaves []Node) bool {
	for i := 1; i < len(leaves); i++ {
		if leaves[i].MinNS.less(leaves[i-1].MinNS) {
			return false
		}
	}
	return true
}

// InclusionProof is a sibling path from one leaf up to the root.
type InclusionProof struct {
	LeafIndex int
	Leaf      Node
	Siblings  []Node // level 0 first
}

// Prove builds an inclusion proof for the leaf at index.
func (t *Tree) Prove(index int) (InclusionProof, bool) {
	if index < 0 || index >= len(t.levels[0]) {
		return InclusionProof{}, false
	}
	proof := InclusionProof{LeafIndex: index, Leaf: t.levels[0][index]}
	idx := index
	for lvl := 0; lvl < len(t.levels)-1; lvl++ {
		level := t.levels[lvl]
		var sibling Node
		if idx%2 == 0 {
			if idx+1 < len(level) {
				sibling = level[idx+1]
			} else {
				sibling = level[idx] // self-paired odd tail
			}
		} else {
			sibling = level[idx-1]
		}
		proof.Siblings = append(proof.Siblings, sibling)
		idx /= 2
	}
	return proof, true
}

// VerifyInclusion recomputes the root from a leaf and its sibling path and
// compares it against root.
func VerifyInclusion(root Node, proof InclusionProof) bool {
	node := proof.Leaf
	idx := proof.LeafIndex
	for _, sibling := range proof.Siblings {
		if idx%2 == 0 {
			node = internalNode(node, sibling)
		} else {
			node = internalNode(sibling, node)
		}
		idx /= 2
	}
	return node.Digest == root.Digest && node.MinNS == root.MinNS && node.MaxNS == root.MaxNS
}

// RangeProof demonstrates that every leaf with namespace == ns in the tree
// is included in Leaves, and that no leaf of that namespace was omitted, by
// combining each member leaf's inclusion proof with inclusion proofs for
// the immediate left/right neighbors outside the namespace (if any).
type RangeProof struct {
	Namespace    Namespace
	Leaves       []InclusionProof
	LeftBorder   *InclusionProof // nearest leaf with namespace < ns, if any
	RightBorder  *InclusionProof // nearest leaf with namespace > ns, if any
}

// ProveNamespace builds a RangeProof for every leaf carrying ns.
func (t *Tree) ProveNamespace(ns Namespace) RangeProof {
	leaves := t.levels[0]
	rp := RangeProof{Namespace: ns}
	firstIdx, lastIdx := -1, -1
	for i, lf := range leaves {
		if lf.MinNS == ns {
			if firstIdx == -1 {
				firstIdx = i
			}
			lastIdx = i
			p, _ := t.Prove(i)
			rp.Leaves = append(rp.Leaves, p)
		}
	}
	if firstIdx > 0 {
		p, _ := t.Prove(firstIdx - 1)
		rp.LeftBorder = &p
	}
	if lastIdx != -1 && lastIdx+1 < len(leaves) {
		p, _ := t.Prove(lastIdx + 1)
		rp.RightBorder = &p
	}
	return rp
}

// VerifyNamespaceRange checks that every member leaf matches ns, verifies
// against root, that member leaves sit at consecutive indices, and that any
// border leaf lies strictly outside ns and directly beside the member run
// (with no left border, the run must start at leaf 0) — together proving
// that no leaf of the namespace was omitted. With no right border, the
// proof does not show that the run ends at the tree's last leaf.
func VerifyNamespaceRange(root Node, rp RangeProof) bool {
	for i, p := range rp.Leaves {
		if p.Leaf.MinNS != rp.Namespace {
			return false
		}
		if i > 0 && p.LeafIndex != rp.Leaves[i-1].LeafIndex+1 {
			return false
		}
		if !VerifyInclusion(root, p) {
			return false
		}
	}
	if rp.LeftBorder != nil {
		if !VerifyInclusion(root, *rp.LeftBorder) {
			return false
		}
		if !rp.LeftBorder.Leaf.MinNS.less(rp.Namespace) {
			return false
		}
		if len(rp.Leaves) > 0 && rp.LeftBorder.LeafIndex+1 != rp.Leaves[0].LeafIndex {
			return false
		}
	} else if len(rp.Leaves) > 0 && rp.Leaves[0].LeafIndex != 0 {
		return false
	}
	if rp.RightBorder != nil {
		if !VerifyInclusion(root, *rp.RightBorder) {
			return false
		}
		if !rp.Namespace.less(rp.RightBorder.Leaf.MinNS) {
			return false
		}
		if len(rp.Leaves) > 0 && rp.RightBorder.LeafIndex != rp.Leaves[len(rp.Leaves)-1].LeafIndex+1 {
			return false
		}
	}
	return true
}
