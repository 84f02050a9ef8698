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

import "errors"

// Various error messages to mark blocks invalid. These are kept private to
// the package so the rest of a consuming codebase never switches on a
// specific Ethash error, which would break if the engine were ever
// swapped out.
var (
	errInvalidDifficulty    = errors.New("non-positive difficulty")
	errInvalidMixDigest     = errors.New("invalid mix digest")
	errInvalidPoW           = errors.New("invalid proof-of-work")
	errInvalidHeaderPrehash = errors.New("header prehash must be 32 bytes")
	errNonceOutOfRange      = errors.New("block number epoch exceeds supported range")
)
