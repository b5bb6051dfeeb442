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

package tinyspl

import (
	"errors"
	"fmt"

	"github.com/tiny-spl/tinyspl/pubkey"
)

var (
	ErrAssetIdMismatch = errors.New(
		"passed in asset id does not match the asset id derived from the merkle tree and index",
	)
	ErrUnverifiedMint       = errors.New("collection is not a verified tiny spl mint")
	ErrInvalidMintAuthority = errors.New("signer is not the mint authority")
	ErrCollectionExists     = errors.New("collection mint already registered")
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrNoTreeService        = errors.New("no tree service configured")
)

// OperationError is returned by every failed Program operation. It unwraps
// to the error that aborted the operation
type OperationError struct {
	Err  error
	Op   string
	Tree pubkey.Pubkey
}

func (e *OperationError) Error() string {
	if e.Tree.IsZero() {
		return fmt.Sprintf("%s: %s", e.Op, e.Err)
	}
	return fmt.Sprintf("%s (tree %s): %s", e.Op, e.Tree, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}
