// Copyright 2024 The ethashengine Authors
// This file is part of the ethashengine library.
//
// The ethashengine library is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// The ethashengine library is distributed in the hope that it will be
// useful, but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the GNU Lesser
// General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the ethashengine library. If not, see
// <http://www.gnu.org/licenses/>.

// Package ethash implements the Ethash proof-of-work algorithm, revision 23:
// deterministic epoch caches, on-demand dataset items, and the hashimoto
// mixing function used to evaluate a block's proof of work against its
// claimed difficulty.
package ethash

import (
	"encoding/binary"
	"hash"
	"runtime"
	"sync"

	"golang.org/x/crypto/sha3"

	"github.com/ethashcore/ethashengine/internal/bitutil"
)

// Protocol constants, revision 23 of the Ethash specification.
const (
	wordBytes           = 4                 // bytes in a word
	mixBytes            = 128               // width of mix
	hashBytes           = 64                // width of hash
	hashWords           = hashBytes / wordBytes
	datasetParents      = 256               // number of parents of each dataset element
	cacheRounds         = 3                 // number of rounds in cache production
	loopAccesses        = 64                // number of accesses in hashimoto loop
	epochLength         = 30000             // blocks per epoch
	datasetInitBytes    = 1 << 30           // bytes in dataset at genesis
	datasetGrowthBytes  = 1 << 23           // dataset growth per epoch
	cacheInitBytes      = 1 << 24           // bytes in cache at genesis
	cacheGrowthBytes    = 1 << 17           // cache growth per epoch
	fnvPrime            = 0x01000193
)

// fnv is the FNV-1-style combiner used throughout Ethash: fnv(a, b) =
// (a * 0x01000193) XOR b, with all arithmetic wrapping modulo 2^32 — Go's
// native uint32 multiplication already wraps, so no explicit mask is
// needed.
func fnv(a, b uint32) uint32 {
	return (a * fnvPrime) ^ b
}

// fnvHash mixes two arrays of uint32 using fnv, storing the result in mix.
func fnvHash(mix []uint32, data []uint32) {
	for i := 0; i < len(mix); i++ {
		mix[i] = fnv(mix[i], data[i])
	}
}

// remUnsigned computes dividend mod divisor, treating both as unsigned
// 32-bit integers. In Go, uint32's % operator is already unsigned modulo;
// this function exists to name the operation explicitly, since the Ethash
// spec is written against reference implementations whose integers default
// to signed, and to give tests a single place to pin the contract.
func remUnsigned(dividend, divisor uint32) uint32 {
	return dividend % divisor
}

// unsignedBECompare compares a and b as unsigned big-endian integers of
// equal length, returning -1, 0, or 1. Both slices must be the same
// length; callers that hold values of different byte width must pad the
// shorter one with leading zeros first.
func unsignedBECompare(a, b []byte) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	for i := range a {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

// bytesToWordsLE groups buf into little-endian uint32 words. len(buf) must
// be a multiple of 4.
func bytesToWordsLE(buf []byte) []uint32 {
	words := make([]uint32, len(buf)/wordBytes)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(buf[i*wordBytes:])
	}
	return words
}

// wordsToBytesLE is the inverse of bytesToWordsLE.
func wordsToBytesLE(words []uint32) []byte {
	buf := make([]byte, len(words)*wordBytes)
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[i*wordBytes:], w)
	}
	return buf
}

// hasher is a repetitive hash function allowing the same internal state to
// be reused between invocations instead of allocating a new hash.Hash each
// time. The returned function is not safe for concurrent use.
type hasher func(dest []byte, data []byte)

// makeHasher creates a repetitive hasher out of a standard hash.Hash. It
// relies on the Keccak sponge exposing Read (instead of the usual Sum) so
// that repeated digests can be taken without reallocating output buffers.
func makeHasher(h hash.Hash) hasher {
	type readerHash interface {
		hash.Hash
		Read([]byte) (int, error)
	}
	rh, ok := h.(readerHash)
	if !ok {
		panic("hasher: underlying hash.Hash does not support Read")
	}
	outputLen := rh.Size()
	return func(dest []byte, data []byte) {
		rh.Reset()
		rh.Write(data)
		rh.Read(dest[:outputLen])
	}
}

// keccak256 computes the NIST-compatible (not SHA3) Keccak-256 digest of
// the concatenation of data.
func keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// keccak512 computes the NIST-compatible Keccak-512 digest of the
// concatenation of data.
func keccak512(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak512()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// epoch returns the Ethash epoch (a 30000-block window) that block belongs
// to.
func epoch(block uint64) uint64 {
	return block / epochLength
}

// seedHash is the seed used to generate a block's verification cache and
// mining dataset: Keccak-256 applied epoch(block) times to 32 zero bytes.
func seedHash(block uint64) []byte {
	seed := make([]byte, 32)
	e := epoch(block)
	for i := uint64(0); i < e; i++ {
		seed = keccak256(seed)
	}
	return seed
}

// isPrime reports whether n is prime, by trial division up to floor(sqrt(n)).
// The prime search below only ever calls this a handful of times per epoch,
// so clarity wins over speed.
func isPrime(n uint64) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}
	for d := uint64(3); d*d <= n; d += 2 {
		if n%d == 0 {
			return false
		}
	}
	return true
}

// calcSize is the shared refinement step behind calcCacheSize and
// calcDatasetSize: starting from budget, find the largest size s such that
// s is a multiple of unit, s <= budget, and s/unit is prime.
func calcSize(budget, unit uint64) uint64 {
	size := budget
	size -= unit
	for !isPrime(size / unit) {
		size -= 2 * unit
	}
	return size
}

// calcCacheSize returns the size, in bytes, of the Ethash verification
// cache for the epoch containing block.
func calcCacheSize(block uint64) uint64 {
	budget := cacheInitBytes + cacheGrowthBytes*epoch(block)
	return calcSize(budget, hashBytes)
}

// calcDatasetSize returns the size, in bytes, of the Ethash mining dataset
// for the epoch containing block.
func calcDatasetSize(block uint64) uint64 {
	budget := datasetInitBytes + datasetGrowthBytes*epoch(block)
	return calcSize(budget, mixBytes)
}

// generateCache builds the epoch verification cache: a sequence of
// cacheSize/64 pseudo-random 64-byte rows, derived from seed by iterated
// Keccak-512 hashing followed by cacheRounds passes of XOR-and-rehash
// mixing, per the RandMemoHash construction in revision 23 of the Ethash
// spec. The result is returned as little-endian uint32 words.
func generateCache(cacheSize uint64, seed []byte) []uint32 {
	rows := int(cacheSize / hashBytes)
	cache := make([]byte, cacheSize)

	hasher := makeHasher(sha3.NewLegacyKeccak512())
	hasher(cache, seed)
	for offset := uint64(hashBytes); offset < cacheSize; offset += hashBytes {
		hasher(cache[offset:offset+hashBytes], cache[offset-hashBytes:offset])
	}
	temp := make([]byte, hashBytes)
	for round := 0; round < cacheRounds; round++ {
		for i := 0; i < rows; i++ {
			var (
				srcOff = ((i-1+rows)%rows)*hashBytes
				dstOff = i * hashBytes
				xorOff = int(remUnsigned(binary.LittleEndian.Uint32(cache[dstOff:]), uint32(rows))) * hashBytes
			)
			bitutil.XORBytes(temp, cache[srcOff:srcOff+hashBytes], cache[xorOff:xorOff+hashBytes])
			hasher(cache[dstOff:dstOff+hashBytes], temp)
		}
	}
	return bytesToWordsLE(cache)
}

// generateDatasetItem derives the 64-byte dataset item at index i from
// cache: the cache row at i mod n is folded with its own index,
// Keccak-512-mixed, mixed against datasetParents cache rows via fnv, and
// Keccak-512-mixed again.
func generateDatasetItem(cache []uint32, index uint32, keccak512 hasher) []byte {
	rows := uint32(len(cache) / hashWords)

	mix := make([]byte, hashBytes)
	binary.LittleEndian.PutUint32(mix, cache[(index%rows)*hashWords]^index)
	for i := 1; i < hashWords; i++ {
		binary.LittleEndian.PutUint32(mix[i*wordBytes:], cache[(index%rows)*hashWords+uint32(i)])
	}
	keccak512(mix, mix)

	intMix := bytesToWordsLE(mix)
	for i := uint32(0); i < datasetParents; i++ {
		parent := remUnsigned(fnv(index^i, intMix[i%hashWords]), rows)
		fnvHash(intMix, cache[parent*hashWords:parent*hashWords+hashWords])
	}
	for i, val := range intMix {
		binary.LittleEndian.PutUint32(mix[i*wordBytes:], val)
	}
	keccak512(mix, mix)
	return mix
}

// hashimoto aggregates data from a dataset (looked up lazily via lookup,
// either from the cache in the light path or from the materialized
// dataset in the full path) to produce a mix digest and a PoW boundary
// for the given header prehash and nonce.
//
// lookup(i) must return the 16-word dataset item at index i.
func hashimoto(hash []byte, nonce uint64, size uint64, lookup func(index uint32) []uint32) ([]byte, []byte) {
	rows := uint32(size / mixBytes)

	// Reassemble seed = keccak512(hash ++ reverse(nonce)). Writing the
	// nonce in little-endian order is exactly the header's big-endian
	// byte order reversed — Ethash nonces are serialized big-endian in a
	// block header but consumed little-endian by the mixing function.
	seedInput := make([]byte, 40)
	copy(seedInput, hash)
	binary.LittleEndian.PutUint64(seedInput[32:], nonce)
	seed := keccak512(seedInput)
	seedHead := binary.LittleEndian.Uint32(seed)

	const wordsInMix = mixBytes / wordBytes // 32
	const mixHashes = mixBytes / hashBytes  // 2

	mix := make([]uint32, wordsInMix)
	for i := range mix {
		mix[i] = binary.LittleEndian.Uint32(seed[(i%hashWords)*wordBytes:])
	}

	temp := make([]uint32, wordsInMix)
	for i := 0; i < loopAccesses; i++ {
		parent := remUnsigned(fnv(uint32(i)^seedHead, mix[i%wordsInMix]), rows)
		for j := uint32(0); j < mixHashes; j++ {
			copy(temp[j*hashWords:], lookup(mixHashes*parent+j))
		}
		fnvHash(mix, temp)
	}

	// Compress the 32-word mix down to 8 words via 4-way fnv folding.
	cmix := make([]uint32, len(mix)/4)
	for i := 0; i < len(mix); i += 4 {
		cmix[i/4] = fnv(fnv(fnv(mix[i], mix[i+1]), mix[i+2]), mix[i+3])
	}

	digest := wordsToBytesLE(cmix)
	return digest, keccak256(seed, digest)
}

// hashimotoLight evaluates hashimoto by deriving dataset items on demand
// from the verification cache — the light-client path that never
// materializes the multi-gigabyte dataset.
func hashimotoLight(size uint64, cache []uint32, hash []byte, nonce uint64) (digest, result []byte) {
	keccak512 := makeHasher(sha3.NewLegacyKeccak512())
	lookup := func(index uint32) []uint32 {
		item := generateDatasetItem(cache, index, keccak512)
		return bytesToWordsLE(item)
	}
	return hashimoto(hash, nonce, size, lookup)
}

// hashimotoFull evaluates hashimoto against an already-materialized
// dataset, the path a full miner would use. It is provided so a caller can
// build a full DAG on demand, even though full-DAG mining itself is out of
// scope for this package.
func hashimotoFull(dataset []uint32, hash []byte, nonce uint64) (digest, result []byte) {
	lookup := func(index uint32) []uint32 {
		offset := index * hashWords
		return dataset[offset : offset+hashWords]
	}
	size := uint64(len(dataset)) * wordBytes
	return hashimoto(hash, nonce, size, lookup)
}

// generateDataset materializes the full mining dataset for an epoch by
// deriving every item from cache in parallel across the available CPUs.
// It is not on the light-verification hot path; callers that never mine
// never call it.
func generateDataset(size uint64, cache []uint32) []uint32 {
	items := size / hashBytes
	dataset := make([]uint32, size/wordBytes)

	var wg sync.WaitGroup
	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	batch := (items + uint64(workers) - 1) / uint64(workers)

	for w := 0; w < workers; w++ {
		start := uint64(w) * batch
		end := start + batch
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(start, end uint64) {
			defer wg.Done()
			keccak512 := makeHasher(sha3.NewLegacyKeccak512())
			for i := start; i < end; i++ {
				item := generateDatasetItem(cache, uint32(i), keccak512)
				copy(dataset[i*hashWords:], bytesToWordsLE(item))
			}
		}(start, end)
	}
	wg.Wait()
	return dataset
}
