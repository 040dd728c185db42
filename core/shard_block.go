package core

// ShardBlock is the set of transactions a shard executed during one slot.
// Ported from original_source/chain/src/shard_block.rs.
type ShardBlock struct {
	Number               Slot
	ExecutedTransactions []*Transaction
	GasUsed              *Gas
}
