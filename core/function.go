package core

import "github.com/holiman/uint256"

// FunctionType enumerates the five executable function kinds. Ported from
// original_source/chain/src/function.rs.
type FunctionType int

const (
	Transfer FunctionType = iota
	CreateCrossTransfer
	ApplyCrossTransfer
	CreateCrossTransferAll
	ApplyCrossTransferAll
)

func (f FunctionType) String() string {
	switch f {
	case Transfer:
		return "Transfer"
	case CreateCrossTransfer:
		return "CreateCrossTransfer"
	case ApplyCrossTransfer:
		return "ApplyCrossTransfer"
	case CreateCrossTransferAll:
		return "CreateCrossTransferAll"
	case ApplyCrossTransferAll:
		return "ApplyCrossTransferAll"
	default:
		return "Unknown"
	}
}

// gasCost holds the fixed per-ftype gas cost (the ..All variants cost the
// same as their non-All counterparts).
var gasCost = map[FunctionType]uint64{
	Transfer:               21_000,
	CreateCrossTransfer:    31_785,
	ApplyCrossTransfer:     52_820,
	CreateCrossTransferAll: 31_785,
	ApplyCrossTransferAll:  52_820,
}

// Function is the smallest executable unit in a transaction.
type Function struct {
	Source   Address
	Target   Address
	FType    FunctionType
	Calldata string
}

// Gas returns this function's fixed gas cost as a Gas (uint256) value.
func (f Function) Gas() *Gas {
	return uint256.NewInt(gasCost[f.FType])
}
