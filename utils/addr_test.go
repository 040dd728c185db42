package utils

import "testing"

func TestShardForAddress(t *testing.T) {
	tests := []struct {
		name      string
		addr      Address
		numShards int
		want      int
	}{
		{"zero address", 0, 64, 0},
		{"typical address", 130, 64, 2},
		{"single shard always zero", 999, 1, 0},
		{"zero shards guards against divide by zero", 5, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShardForAddress(tt.addr, tt.numShards)
			if got != tt.want {
				t.Errorf("ShardForAddress(%d, %d) = %d, want %d", tt.addr, tt.numShards, got, tt.want)
			}
		})
	}
}

func TestIsCrossShard(t *testing.T) {
	tests := []struct {
		name      string
		sender    Address
		recipient Address
		numShards int
		want      bool
	}{
		{"same shard", 0, 64, 64, false},
		{"different shards", 0, 1, 64, true},
		{"single shard never cross", 0, 1, 1, false},
		{"same address never cross", 5, 5, 64, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsCrossShard(tt.sender, tt.recipient, tt.numShards)
			if got != tt.want {
				t.Errorf("IsCrossShard(%d, %d, %d) = %v, want %v", tt.sender, tt.recipient, tt.numShards, got, tt.want)
			}
		})
	}
}

func TestFingerprintHexAddressIsDeterministic(t *testing.T) {
	addr := "0x1234567890abcdef1234567890abcdef12345678"
	a := FingerprintHexAddress(addr)
	b := FingerprintHexAddress(addr)
	if a != b {
		t.Errorf("FingerprintHexAddress is not deterministic: %d != %d", a, b)
	}
	if other := FingerprintHexAddress("0xabcdefabcdefabcdefabcdefabcdefabcdefabcd"); other == a {
		t.Errorf("distinct addresses collided: %d", a)
	}
}

func BenchmarkShardForAddress(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ShardForAddress(Address(i), 64)
	}
}
