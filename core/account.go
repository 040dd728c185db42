package core

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

// Account is owned by exactly one shard's accounts table, or one shard's
// moving_accounts table, never both. Ported from
// original_source/chain/src/account.rs.
type Account struct {
	Addr    Address
	ShardID int
	Balance *Wei
}

// InitialBalance returns u128::MAX / 10, the balance every account is
// created with at setup (original_source/chain/src/account.rs).
func InitialBalance() *Wei {
	max := new(uint256.Int).SetAllOne()
	ten := uint256.NewInt(10)
	return new(uint256.Int).Div(max, ten)
}

// NewAccount creates an account with the standard initial balance.
func NewAccount(addr Address, shardID int) *Account {
	return &Account{Addr: addr, ShardID: shardID, Balance: InitialBalance()}
}

// accountWire is the RLP-serializable shadow of Account. RLP has no native
// support for uint256.Int in the released holiman/uint256 module this repo
// targets, so the balance crosses the wire as its big.Endian byte
// representation and is reconstituted on decode — the same "stamp shard_id
// on decode" shape as original_source's serde_json payload, just re-encoded
// through go-ethereum/rlp instead of JSON, per SPEC_FULL.md's DOMAIN STACK.
type accountWire struct {
	Addr        uint64
	ShardID     uint64
	BalanceBE   []byte
}

// Encode serializes the account for use as a cross-shard receipt payload
// (the CreateCrossTransferAll effect in core/shard.go). ShardID is NOT
// re-read on decode by the apply side; the apply side always stamps its own
// shard_id, per §4.2's ApplyCrossTransferAll effect.
func (a *Account) Encode() ([]byte, error) {
	wire := accountWire{
		Addr:      uint64(a.Addr),
		ShardID:   uint64(a.ShardID),
		BalanceBE: a.Balance.Bytes(),
	}
	return rlp.EncodeToBytes(&wire)
}

// DecodeAccount reverses Encode. The caller is responsible for overwriting
// ShardID with the destination shard, per the apply-side effect in §4.2.
func DecodeAccount(data []byte) (*Account, error) {
	var wire accountWire
	if err := rlp.DecodeBytes(data, &wire); err != nil {
		return nil, err
	}
	balance := new(uint256.Int).SetBytes(wire.BalanceBE)
	return &Account{
		Addr:    int(wire.Addr),
		ShardID: int(wire.ShardID),
		Balance: balance,
	}, nil
}
