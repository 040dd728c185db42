package core

import "testing"

func TestGenerateTransactionHash(t *testing.T) {
	tests := []struct {
		name    string
		from    Address
		shardID int
		nonce   Nonce
	}{
		{"zero values", 0, 0, 0},
		{"typical values", 42, 3, 7},
		{"large nonce", 1, 0, 1 << 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateTransactionHash(tt.from, tt.shardID, tt.nonce)
			again := GenerateTransactionHash(tt.from, tt.shardID, tt.nonce)
			if got != again {
				t.Errorf("GenerateTransactionHash is not deterministic: %d != %d", got, again)
			}
		})
	}
}

func TestGenerateTransactionHashDistinguishesInputs(t *testing.T) {
	base := GenerateTransactionHash(1, 0, 0)
	if h := GenerateTransactionHash(2, 0, 0); h == base {
		t.Errorf("different from addresses collided: %d", h)
	}
	if h := GenerateTransactionHash(1, 1, 0); h == base {
		t.Errorf("different shard IDs collided: %d", h)
	}
	if h := GenerateTransactionHash(1, 0, 1); h == base {
		t.Errorf("different nonces collided: %d", h)
	}
}

func TestNewTransactionSetsGasLimitToMax(t *testing.T) {
	tx := NewTransaction(0, 1, 0, nil, nil, nil, 0)
	if tx.GasLimit.Sign() == 0 {
		t.Errorf("expected non-zero gas limit")
	}
	if tx.Hash != GenerateTransactionHash(0, 0, 0) {
		t.Errorf("hash mismatch on construction")
	}
}

func TestTransactionEqual(t *testing.T) {
	a := NewTransaction(1, 2, 0, nil, nil, nil, 5)
	b := NewTransaction(1, 2, 0, nil, nil, nil, 5)
	if !a.Equal(b) {
		t.Errorf("transactions with identical (from, shard, nonce) should be equal")
	}
	c := NewTransaction(1, 2, 0, nil, nil, nil, 6)
	if a.Equal(c) {
		t.Errorf("transactions with different nonces should not be equal")
	}
}

func TestEncodeDecodeTxRoundTrip(t *testing.T) {
	tx := NewTransaction(1, 2, 3, []Function{{Source: 1, Target: 2, FType: Transfer}}, nil, nil, 9)
	decoded := DecodeTx(tx.Encode())
	if decoded.Hash != tx.Hash || decoded.From != tx.From || decoded.To != tx.To || decoded.Nonce != tx.Nonce {
		t.Errorf("round trip mismatch: got %+v, want %+v", decoded, tx)
	}
}

func BenchmarkGenerateTransactionHash(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = GenerateTransactionHash(Address(i), i%64, Nonce(i))
	}
}
