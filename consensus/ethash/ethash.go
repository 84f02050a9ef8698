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

package ethash

import (
	"sync"
	"time"

	"github.com/ethashcore/ethashengine/internal/log"
	"github.com/ethashcore/ethashengine/internal/lru"
)

// maxEpoch bounds the epochs this engine will build a cache for. Mainnet
// Ethereum never reached more than a few hundred; 2048 leaves generous
// headroom while still rejecting obviously bogus block numbers cheaply.
const maxEpoch = 2048

// Mode defines the type and amount of PoW verification an Ethash engine
// performs. ModeNormal and ModeTest compute real proofs of work (ModeTest
// over a shrunk cache and dataset); ModeFake and ModeFullFake exist for
// tests and tools that want to skip proof-of-work entirely.
type Mode uint

const (
	ModeNormal Mode = iota
	ModeTest
	ModeFake
	ModeFullFake
)

// Config carries the tunables of an Ethash engine instance.
type Config struct {
	PowMode Mode

	// CachesInMem bounds how many epoch verification caches are kept
	// live in memory at once; callers typically only ever need the
	// current and previous epoch resident at the same time.
	CachesInMem int

	// CachesOnDisk is retained for shape-parity with upstream Ethash
	// configuration structs; this engine specifies no persistent cache
	// file format, so it is otherwise unused.
	CachesOnDisk int

	Log log.Logger
}

func (c *Config) withDefaults() Config {
	cfg := *c
	if cfg.CachesInMem <= 0 {
		cfg.CachesInMem = 2
	}
	if cfg.Log == nil {
		cfg.Log = log.Root()
	}
	return cfg
}

// cache is one epoch's verification cache: a lazily-built, immutable
// sequence of little-endian uint32 words.
type cache struct {
	epoch uint64
	size  uint64
	cache []uint32
	once  sync.Once
}

func (c *cache) generate(logger log.Logger) {
	c.once.Do(func() {
		start := time.Now()
		c.cache = generateCache(c.size, seedHash(c.epoch*epochLength))
		logger.Debug("generated ethash verification cache", "epoch", c.epoch, "size", c.size, "elapsed", time.Since(start))
	})
}

// Dataset is one epoch's full mining dataset, derived on demand from its
// cache. Light verification never builds one; it exists so a caller that
// wants to mine (or just exercise the full-DAG path) can materialize it.
type Dataset struct {
	epoch   uint64
	size    uint64
	cache   *cache
	dataset []uint32
	once    sync.Once
}

// Generate forces (idempotently) the construction of the full dataset.
func (d *Dataset) Generate(logger log.Logger) {
	d.once.Do(func() {
		d.cache.generate(logger)
		start := time.Now()
		d.dataset = generateDataset(d.size, d.cache.cache)
		logger.Debug("generated ethash mining dataset", "epoch", d.epoch, "size", d.size, "elapsed", time.Since(start))
	})
}

// ProofOfWork is the output of evaluating hashimoto for a header and
// nonce: the mix hash included in the header, and the difficulty
// boundary it must satisfy.
type ProofOfWork struct {
	MixDigest [32]byte
	Boundary  [32]byte
}

// Ethash is a stateless-from-the-caller's-perspective proof-of-work
// engine: every exported method is a pure function of its arguments plus
// the memoized epoch caches it keeps to avoid rebuilding them on every
// call.
type Ethash struct {
	config Config

	lock    sync.Mutex
	caches  lru.BasicLRU[uint64, *cache]
	dlock   sync.Mutex
	dataset lru.BasicLRU[uint64, *Dataset]
}

// New creates an Ethash engine with the given configuration.
func New(config Config) *Ethash {
	cfg := config.withDefaults()
	return &Ethash{
		config:  cfg,
		caches:  lru.NewBasicLRU[uint64, *cache](cfg.CachesInMem),
		dataset: lru.NewBasicLRU[uint64, *Dataset](1),
	}
}

// NewTester creates a Ethash engine configured for fast, small-dataset
// testing: ModeTest runs hashimoto over a 32KB synthetic dataset instead
// of the real gigabyte-scale one.
func NewTester() *Ethash {
	return New(Config{PowMode: ModeTest})
}

// NewFaker creates an Ethash engine that accepts every proof of work
// without computing anything, for use in tests that don't care about PoW.
func NewFaker() *Ethash {
	return New(Config{PowMode: ModeFake})
}

// NewFullFaker is like NewFaker, without even the sanity checks NewFaker
// still performs (difficulty sign, epoch range).
func NewFullFaker() *Ethash {
	return New(Config{PowMode: ModeFullFake})
}

// cache returns the verification cache for the epoch containing block,
// building it on first use and keeping at most config.CachesInMem epochs
// resident.
func (e *Ethash) cache(block uint64) *cache {
	ep := epoch(block)

	e.lock.Lock()
	c, ok := e.caches.Get(ep)
	if !ok {
		c = &cache{epoch: ep, size: e.cacheSizeFor(block)}
		e.caches.Add(ep, c)
	}
	e.lock.Unlock()

	c.generate(e.config.Log)
	return c
}

// cacheSizeFor mirrors datasetSizeFor: ModeTest runs hashimoto over a tiny
// synthetic cache so unit tests build and verify in milliseconds instead of
// requiring a real multi-megabyte verification cache.
func (e *Ethash) cacheSizeFor(block uint64) uint64 {
	if e.config.PowMode == ModeTest {
		return 1024
	}
	return calcCacheSize(block)
}

// Dataset returns the full mining dataset for the epoch containing block,
// building (and its backing cache, if needed) it on first use. It is not
// called anywhere on the light-verification path.
func (e *Ethash) Dataset(block uint64) *Dataset {
	ep := epoch(block)

	e.dlock.Lock()
	d, ok := e.dataset.Get(ep)
	if !ok {
		d = &Dataset{epoch: ep, size: calcDatasetSize(block), cache: e.cache(block)}
		e.dataset.Add(ep, d)
	}
	e.dlock.Unlock()

	d.Generate(e.config.Log)
	return d
}

// datasetSizeFor returns the dataset size hashimotoLight should use for
// block, honoring ModeTest's shrunk synthetic dataset.
func (e *Ethash) datasetSizeFor(block uint64) uint64 {
	if e.config.PowMode == ModeTest {
		return 32 * 1024
	}
	return calcDatasetSize(block)
}

// HashimotoLight evaluates the proof of work for block at nonce against
// headerPrehash (the 32-byte Keccak-256 of the header's RLP encoding with
// the nonce and mix-hash fields stripped), deriving dataset items lazily
// from the epoch cache.
func (e *Ethash) HashimotoLight(block uint64, headerPrehash []byte, nonce uint64) (ProofOfWork, error) {
	if len(headerPrehash) != 32 {
		return ProofOfWork{}, errInvalidHeaderPrehash
	}
	c := e.cache(block)
	digest, result := hashimotoLight(e.datasetSizeFor(block), c.cache, headerPrehash, nonce)

	var pow ProofOfWork
	copy(pow.MixDigest[:], digest)
	copy(pow.Boundary[:], result)
	return pow, nil
}

// Epoch, Seed, CacheSize, and DatasetSize expose Ethash's parameter
// derivation as standalone functions, so chain/miner code can query
// Ethash's parameters without constructing an engine.
func Epoch(block uint64) uint64       { return epoch(block) }
func Seed(block uint64) []byte        { return seedHash(block) }
func CacheSize(block uint64) uint64   { return calcCacheSize(block) }
func DatasetSize(block uint64) uint64 { return calcDatasetSize(block) }

// CacheHead builds the full verification cache for block's epoch and
// returns the Keccak-512 hash of its first 64 bytes, without requiring
// the caller to construct an engine. This rebuilds the cache on every
// call and exists for inspection tooling, not for the verification hot
// path.
func CacheHead(block uint64) ([]byte, error) {
	size := calcCacheSize(block)
	c := generateCache(size, seedHash(block))
	return keccak512(wordsToBytesLE(c[:hashWords])), nil
}
