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
	"math/big"

	"github.com/holiman/uint256"
)

// maxUint256 is 2^256, the numerator of the difficulty-to-target
// conversion. It is one bit wider than uint256.Int can hold, which only
// ever matters at difficulty == 1 — see difficultyTarget below.
var maxUint256 = new(big.Int).Lsh(big.NewInt(1), 256)

// SealedHeader is the minimal view of a block header Ethash needs to
// verify its proof of work. Header parsing, RLP encoding, and storage
// belong to a chain package; this interface is the seam between that
// world and this one.
type SealedHeader interface {
	NumberU64() uint64
	Difficulty() *big.Int
	MixDigest() [32]byte
	Nonce() uint64

	// SealHash is the Keccak-256 digest of the header's RLP encoding
	// with the nonce and mix-digest fields stripped.
	SealHash() [32]byte
}

// difficultyTarget computes floor(2^256 / difficulty), left-padded (by
// construction) to 32 bytes. uint256.Int can represent at most 2^256-1,
// one short of the true numerator; the only difficulty for which that
// matters is 1, where the exact result (2^256) is capped to 2^256-1 —
// matching the documented behavior for the minimum difficulty case.
func difficultyTarget(difficulty *big.Int) [32]byte {
	q := new(big.Int).Div(maxUint256, difficulty)
	target, overflow := uint256.FromBig(q)
	if overflow {
		target = new(uint256.Int).SetAllOne()
	}
	return target.Bytes32()
}

// CheckDifficulty reports whether proof satisfies header's claimed
// difficulty: the difficulty boundary must be no larger than
// 2^256/difficulty, AND the computed mix hash must equal the header's.
// Some Ethash implementations skip the mix-hash comparison and rely on
// the boundary check alone; that omission lets a prover reuse a valid
// boundary under a forged mix hash, so this implementation always
// requires both to match.
func CheckDifficulty(difficulty *big.Int, headerMixDigest [32]byte, proof ProofOfWork) bool {
	if difficulty == nil || difficulty.Sign() <= 0 {
		return false
	}
	if proof.MixDigest != headerMixDigest {
		return false
	}
	target := difficultyTarget(difficulty)
	return unsignedBECompare(target[:], proof.Boundary[:]) >= 0
}

// VerifySeal checks whether header satisfies the Ethash consensus rules:
// a positive difficulty, a block number within the supported epoch
// range, and a proof of work that both matches the header's mix digest
// and meets its claimed difficulty.
func (e *Ethash) VerifySeal(header SealedHeader) error {
	if e.config.PowMode == ModeFullFake {
		return nil
	}
	if header.Difficulty().Sign() <= 0 {
		return errInvalidDifficulty
	}
	number := header.NumberU64()
	if epoch(number) >= maxEpoch {
		return errNonceOutOfRange
	}
	if e.config.PowMode == ModeFake {
		return nil
	}

	sealHash := header.SealHash()
	proof, err := e.HashimotoLight(number, sealHash[:], header.Nonce())
	if err != nil {
		return err
	}
	if proof.MixDigest != header.MixDigest() {
		return errInvalidMixDigest
	}
	target := difficultyTarget(header.Difficulty())
	if unsignedBECompare(target[:], proof.Boundary[:]) < 0 {
		return errInvalidPoW
	}
	return nil
}
