// Copyright (c) 2025 The NFTVault developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
)

// Kind classifies why a program call was rejected.
type Kind uint32

const (
	AlreadyInitialized Kind = iota
	AlreadyExists
	NotAuthorized
	WrongUserType
	AssetMismatch
	LockupNotElapsed
	InsufficientPoolBalance
	RecordNotFound
	DerivationFailed
	NotInitialized
	AlreadyStaked
	InvalidAccount
	Overflow
	InsufficientFunds
)

// CodeOffset is added to a Kind to form the custom error code.
const CodeOffset = 6000

var kindNames = [...]string{
	AlreadyInitialized:      "AlreadyInitialized",
	AlreadyExists:           "AlreadyExists",
	NotAuthorized:           "NotAuthorized",
	WrongUserType:           "WrongUserType",
	AssetMismatch:           "AssetMismatch",
	LockupNotElapsed:        "LockupNotElapsed",
	InsufficientPoolBalance: "InsufficientPoolBalance",
	RecordNotFound:          "RecordNotFound",
	DerivationFailed:        "DerivationFailed",
	NotInitialized:          "NotInitialized",
	AlreadyStaked:           "AlreadyStaked",
	InvalidAccount:          "InvalidAccount",
	Overflow:                "Overflow",
	InsufficientFunds:       "InsufficientFunds",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint32(k))
}

// Code returns the numeric error code of the kind.
func (k Kind) Code() uint32 {
	return CodeOffset + uint32(k)
}

// ErrRevert is a rejection of a program call. No state was changed by the call.
type ErrRevert struct {
	kind    Kind
	message string
}

func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

func Newf(kind Kind, format string, args ...any) *ErrRevert {
	return New(kind, fmt.Sprintf(format, args...))
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

func (e *ErrRevert) Message() string {
	return e.message
}

func (e *ErrRevert) Error() string {
	if e.message == "" {
		return e.kind.String()
	}
	return e.kind.String() + ": " + e.message
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// KindOf extracts the kind of a revert anywhere in the chain of err.
func KindOf(err error) (Kind, bool) {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.kind, true
	}
	return 0, false
}

// Is reports whether err is a revert of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
