// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package memtree

import (
	"maps"
	"math/bits"

	"github.com/tiny-spl/tinyspl/compression"
	"github.com/tiny-spl/tinyspl/leaf"
	"github.com/tiny-spl/tinyspl/pubkey"
)

const maxSupportedDepth = 30

// emptyNodes[i] is the root of an empty subtree of height i
var emptyNodes = func() [maxSupportedDepth + 1]leaf.Hash {
	var ret [maxSupportedDepth + 1]leaf.Hash
	for i := 1; i <= maxSupportedDepth; i++ {
		ret[i] = leaf.Keccak256(ret[i-1][:], ret[i-1][:])
	}
	return ret
}()

// changeLog records the nodes along the path of a single leaf update
type changeLog struct {
	// path[0] is the new leaf and path[depth-1] the node just below the root
	path  []leaf.Hash
	root  leaf.Hash
	index uint32
}

type tree struct {
	// nodes[level] holds non-empty nodes keyed by position. Level 0 is the
	// leaves and level maxDepth the root.
	nodes         []map[uint64]leaf.Hash
	changeLogs    []changeLog
	address       pubkey.Pubkey
	numMinted     uint64
	maxDepth      int
	maxBufferSize int
}

func newTree(address pubkey.Pubkey, maxDepth int, maxBufferSize int) *tree {
	t := &tree{
		address:       address,
		maxDepth:      maxDepth,
		maxBufferSize: maxBufferSize,
		nodes:         make([]map[uint64]leaf.Hash, maxDepth+1),
	}
	for i := range t.nodes {
		t.nodes[i] = make(map[uint64]leaf.Hash)
	}
	initialPath := make([]leaf.Hash, maxDepth)
	copy(initialPath, emptyNodes[:maxDepth])
	t.changeLogs = []changeLog{
		{
			root: emptyNodes[maxDepth],
			path: initialPath,
		},
	}
	return t
}

func (t *tree) clone() *tree {
	ret := &tree{
		address:       t.address,
		maxDepth:      t.maxDepth,
		maxBufferSize: t.maxBufferSize,
		numMinted:     t.numMinted,
		nodes:         make([]map[uint64]leaf.Hash, len(t.nodes)),
		changeLogs:    make([]changeLog, len(t.changeLogs)),
	}
	for i, level := range t.nodes {
		ret.nodes[i] = maps.Clone(level)
	}
	// Change log paths are never modified after creation
	copy(ret.changeLogs, t.changeLogs)
	return ret
}

func (t *tree) capacity() uint64 {
	return uint64(1) << t.maxDepth
}

func (t *tree) node(level int, pos uint64) leaf.Hash {
	if v, ok := t.nodes[level][pos]; ok {
		return v
	}
	return emptyNodes[level]
}

func (t *tree) setNode(level int, pos uint64, value leaf.Hash) {
	if value == emptyNodes[level] {
		delete(t.nodes[level], pos)
		return
	}
	t.nodes[level][pos] = value
}

func (t *tree) root() leaf.Hash {
	return t.node(t.maxDepth, 0)
}

func (t *tree) leaf(index uint32) leaf.Hash {
	return t.node(0, uint64(index))
}

func (t *tree) proof(index uint32) []leaf.Hash {
	ret := make([]leaf.Hash, t.maxDepth)
	pos := uint64(index)
	for level := range t.maxDepth {
		ret[level] = t.node(level, pos^1)
		pos >>= 1
	}
	return ret
}

func (t *tree) setLeaf(index uint32, value leaf.Hash) {
	path := make([]leaf.Hash, t.maxDepth)
	cur := value
	pos := uint64(index)
	for level := range t.maxDepth {
		path[level] = cur
		t.setNode(level, pos, cur)
		sibling := t.node(level, pos^1)
		if pos&1 == 0 {
			cur = leaf.Keccak256(cur[:], sibling[:])
		} else {
			cur = leaf.Keccak256(sibling[:], cur[:])
		}
		pos >>= 1
	}
	t.setNode(t.maxDepth, 0, cur)
	t.changeLogs = append(
		t.changeLogs,
		changeLog{
			root:  cur,
			path:  path,
			index: index,
		},
	)
	if len(t.changeLogs) > t.maxBufferSize {
		t.changeLogs = t.changeLogs[len(t.changeLogs)-t.maxBufferSize:]
	}
}

// computeRoot hashes a leaf up through its proof
func computeRoot(leafHash leaf.Hash, index uint32, proof []leaf.Hash) leaf.Hash {
	cur := leafHash
	for level, sibling := range proof {
		if (index>>level)&1 == 0 {
			cur = leaf.Keccak256(cur[:], sibling[:])
		} else {
			cur = leaf.Keccak256(sibling[:], cur[:])
		}
	}
	return cur
}

// verify checks a leaf against a recent root. The proof is fast-forwarded
// through every change made since that root, so it only needs to have been
// valid when the root was current.
func (t *tree) verify(
	root leaf.Hash,
	leafHash leaf.Hash,
	index uint32,
	proof []leaf.Hash,
) error {
	if uint64(index) >= t.capacity() {
		return compression.ErrLeafIndexOutOfBounds
	}
	if len(proof) != t.maxDepth {
		return compression.ErrInvalidProof
	}
	start := -1
	for i := len(t.changeLogs) - 1; i >= 0; i-- {
		if t.changeLogs[i].root == root {
			start = i
			break
		}
	}
	if start < 0 {
		return compression.ErrRootNotFound
	}
	updatedProof := make([]leaf.Hash, len(proof))
	copy(updatedProof, proof)
	for _, cl := range t.changeLogs[start+1:] {
		if cl.index == index {
			return compression.ErrLeafContentsModified
		}
		// The two paths first meet at the level of the highest differing bit
		critical := bits.Len32(cl.index^index) - 1
		updatedProof[critical] = cl.path[critical]
	}
	if computeRoot(leafHash, index, updatedProof) != t.root() {
		return compression.ErrInvalidProof
	}
	return nil
}

func (t *tree) append(leafHash leaf.Hash) (uint32, error) {
	if t.numMinted >= t.capacity() {
		return 0, compression.ErrTreeFull
	}
	// capacity is at most 1<<30
	index := uint32(t.numMinted) //nolint:gosec
	t.setLeaf(index, leafHash)
	t.numMinted++
	return index, nil
}
