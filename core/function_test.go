package core

import "testing"

func TestFunctionTypeString(t *testing.T) {
	tests := []struct {
		ftype FunctionType
		want  string
	}{
		{Transfer, "Transfer"},
		{CreateCrossTransfer, "CreateCrossTransfer"},
		{ApplyCrossTransfer, "ApplyCrossTransfer"},
		{CreateCrossTransferAll, "CreateCrossTransferAll"},
		{ApplyCrossTransferAll, "ApplyCrossTransferAll"},
		{FunctionType(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.ftype.String(); got != tt.want {
			t.Errorf("FunctionType(%d).String() = %q, want %q", tt.ftype, got, tt.want)
		}
	}
}

func TestFunctionGasMatchesFixedCosts(t *testing.T) {
	tests := []struct {
		ftype FunctionType
		want  uint64
	}{
		{Transfer, 21_000},
		{CreateCrossTransfer, 31_785},
		{ApplyCrossTransfer, 52_820},
		{CreateCrossTransferAll, 31_785},
		{ApplyCrossTransferAll, 52_820},
	}
	for _, tt := range tests {
		f := Function{FType: tt.ftype}
		if got := f.Gas().Uint64(); got != tt.want {
			t.Errorf("Function{FType: %v}.Gas() = %d, want %d", tt.ftype, got, tt.want)
		}
	}
}
