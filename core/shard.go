package core

import (
	"sync"

	"github.com/holiman/uint256"

	"github.com/shargri-la/shargri-la/params"
)

// ExecutionResult classifies how a transaction's nonce check resolved.
// Ported from original_source/chain/src/shard.rs's
// TransactionExecutionResult.
type ExecutionResult int

const (
	// Success means the nonce matched and every function executed cleanly.
	Success ExecutionResult = iota
	// Fail means the nonce matched but at least one function rejected
	// (illegal transfer, missing receipt, already-used receipt, ...), or the
	// nonce was strictly behind the account's current nonce.
	Fail
	// Skip means the nonce is ahead of the account's current nonce: the
	// transaction stays in the mempool for a future slot.
	Skip
)

// Shard is a single shard's chain state and block-production logic: the
// on-chain accounts, the in-flight moving_accounts (accounts mid cross-shard
// migration), the receipt table, the mempool, and per-address nonces.
// Ported from original_source/chain/src/shard.rs.
type Shard struct {
	ID int

	mu sync.Mutex

	Blocks []*ShardBlock
	States []*ShardState

	accounts      map[Address]*Account
	receipts      map[TxHash]*Receipt
	movingAccounts map[Address]*Account
	usedReceipts   map[TxHash]struct{}
	accountNonce   map[Address]Nonce

	pool *TxPool
}

// NewShard returns a shard seeded with the genesis base fee and no accounts.
func NewShard(id int) *Shard {
	return &Shard{
		ID:             id,
		States:         []*ShardState{NewShardState(uint256.NewInt(uint64(params.InitialBaseFee)))},
		accounts:       make(map[Address]*Account),
		receipts:       make(map[TxHash]*Receipt),
		movingAccounts: make(map[Address]*Account),
		usedReceipts:   make(map[TxHash]struct{}),
		accountNonce:   make(map[Address]Nonce),
		pool:           NewTxPool(),
	}
}

// GetAccount returns the account at addr, if this shard currently owns it.
func (s *Shard) GetAccount(addr Address) (*Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[addr]
	return a, ok
}

// GetMovingAccount returns the account mid-migration out of this shard, if
// any.
func (s *Shard) GetMovingAccount(addr Address) (*Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.movingAccounts[addr]
	return a, ok
}

// RemoveAccount drops addr from both the live and moving account tables.
func (s *Shard) RemoveAccount(addr Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, addr)
	delete(s.movingAccounts, addr)
}

// PutAccount directly installs an account, stamping its shard ID to this
// shard. Used at genesis setup.
func (s *Shard) PutAccount(a *Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertAccount(a)
}

func (s *Shard) insertAccount(a *Account) {
	a.ShardID = s.ID
	s.accounts[a.Addr] = a
}

// moveAccount serializes addr's account, parks it in movingAccounts, and
// removes it from the live table. Panics if the account does not exist — a
// caller is expected to have validated the function's target first, exactly
// as the reference implementation's .expect("the account does not exist").
func (s *Shard) moveAccount(addr Address) string {
	account, ok := s.accounts[addr]
	if !ok {
		panic(ErrAccountNotFound)
	}
	data, err := account.Encode()
	if err != nil {
		panic(err)
	}
	moved := *account
	s.movingAccounts[addr] = &moved
	delete(s.accounts, addr)
	return string(data)
}

// PushTransaction enqueues a transaction (with its optional receipt) into
// this shard's mempool.
func (s *Shard) PushTransaction(tx *Transaction, receipt *Receipt) {
	s.pool.Push(tx, receipt)
}

// AccountsLen reports how many live accounts this shard currently holds.
func (s *Shard) AccountsLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.accounts)
}

// MovingAccountsLen reports how many accounts are currently mid-migration
// out of this shard.
func (s *Shard) MovingAccountsLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.movingAccounts)
}

// MempoolLen reports the number of transactions currently pending in this
// shard's mempool.
func (s *Shard) MempoolLen() int {
	return s.pool.Len()
}

// GetReceipt returns the receipt for txHash, if this shard has ever
// produced one.
func (s *Shard) GetReceipt(txHash TxHash) (*Receipt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.receipts[txHash]
	return r, ok
}

// LastBlock returns the most recently closed block. Panics if called before
// any slot has been processed, mirroring the reference implementation's
// "the genesis block does not exist" expect.
func (s *Shard) LastBlock() *ShardBlock {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Blocks) == 0 {
		panic("core: no block has been produced yet")
	}
	return s.Blocks[len(s.Blocks)-1]
}

// RemoveAccountIfNotOwner drops addr from this shard's tables unless this
// shard is the one designated as its new owner. Used when a
// ApplyCrossTransferAll has executed on shardID and every other shard needs
// to forget any stale copy of the address.
func (s *Shard) RemoveAccountIfNotOwner(addr Address, ownerShardID int) {
	if s.ID == ownerShardID {
		return
	}
	s.RemoveAccount(addr)
}

// GetBaseFee returns the base fee in effect for the current (not-yet-closed)
// slot.
func (s *Shard) GetBaseFee() *GasPrice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentState().BaseFee
}

func (s *Shard) currentState() *ShardState {
	return s.States[len(s.States)-1]
}

// ProcessSlot runs one full slot: sort the mempool by priority, greedily
// pack transactions into a block under the gas limit while fee_cap exceeds
// the base fee, execute each one, then re-sort and truncate the remaining
// mempool and roll the base fee forward. Ported from
// original_source/chain/src/shard.rs::process_slot.
func (s *Shard) ProcessSlot() {
	baseFee := s.GetBaseFee()
	s.pool.SortByPriority(baseFee)

	s.mu.Lock()
	defer s.mu.Unlock()

	block := &ShardBlock{Number: uint64(len(s.Blocks)), GasUsed: new(uint256.Int)}
	slotReceipts := make(map[TxHash]*Receipt)

	pending := s.pool.Snapshot()
	executedNum := 0

	gasLimit := uint256.NewInt(uint64(params.BlockGasLimit))

	for _, item := range pending {
		tx := item.Tx
		estimated := tx.TotalGas()

		projected := new(uint256.Int).Add(block.GasUsed, estimated)
		if projected.Cmp(gasLimit) > 0 {
			break
		}
		if tx.FeeCap.Cmp(baseFee) <= 0 {
			break
		}

		result, data, gasUsed := s.executeTransaction(tx, item.Receipt)

		if result == Skip {
			continue
		}

		block.GasUsed = new(uint256.Int).Add(block.GasUsed, gasUsed)
		block.ExecutedTransactions = append(block.ExecutedTransactions, tx)

		receipt := NewReceipt(block.Number, tx, gasUsed, result == Success, data)
		slotReceipts[tx.Hash] = receipt
		s.receipts[tx.Hash] = receipt

		executedNum++
	}

	s.pool.DropExecutedPrefix(executedNum)
	s.pool.SortByPriority(baseFee)
	s.pool.Truncate(params.MempoolTransactionNum)

	s.Blocks = append(s.Blocks, block)

	nextState := s.generateNextState()
	nextState.Receipts = slotReceipts
	s.States = append(s.States, nextState)
}

func (s *Shard) generateNextState() *ShardState {
	prevBaseFee := s.currentState().BaseFee
	blockGasUsed := s.Blocks[len(s.Blocks)-1].GasUsed
	baseFee := ComputeUpdatedBaseFee(prevBaseFee, blockGasUsed)
	return NewShardState(baseFee)
}

// executeTransaction validates the transaction's nonce against the account's
// current nonce, then executes each function in order if the nonce matches.
// Ported from original_source/chain/src/shard.rs::execute_transaction.
func (s *Shard) executeTransaction(tx *Transaction, receipt *Receipt) (ExecutionResult, string, *Gas) {
	if tx.ShardID != s.ID {
		panic(ErrWrongShard)
	}

	if _, ok := s.accountNonce[tx.From]; !ok {
		s.accountNonce[tx.From] = 0
	}
	current := s.accountNonce[tx.From]

	switch {
	case tx.Nonce > current:
		return Skip, "", new(uint256.Int)
	case tx.Nonce < current:
		return Fail, "", new(uint256.Int)
	}

	s.accountNonce[tx.From] = current + 1

	gasUsed := new(uint256.Int)
	data := ""
	success := true
	for _, fn := range tx.Functions {
		gasUsed = new(uint256.Int).Add(gasUsed, fn.Gas())
		ok, fnData := s.executeFunction(fn, receipt)
		if fnData != nil {
			data = *fnData
		}
		if !ok {
			success = false
		}
	}

	if success {
		return Success, data, gasUsed
	}
	return Fail, data, gasUsed
}

// executeFunction applies a single function's effect. Ported from
// original_source/chain/src/shard.rs::execute_function, with one
// deliberate behavioral fix: ApplyCrossTransferAll now records the receipt
// hash in usedReceipts on success, closing a gap in the reference
// implementation where used_receipts was checked but never populated,
// silently allowing the same receipt to be replayed.
func (s *Shard) executeFunction(fn Function, receipt *Receipt) (bool, *string) {
	switch fn.FType {
	case Transfer:
		_, hasSource := s.accounts[fn.Source]
		_, hasTarget := s.accounts[fn.Target]
		if !hasSource && !hasTarget {
			return false, nil
		}
		return true, nil

	case CreateCrossTransfer:
		if _, ok := s.accounts[fn.Target]; !ok {
			return false, nil
		}
		if fn.Source != fn.Target {
			return false, nil
		}
		return true, nil

	case ApplyCrossTransfer:
		return true, nil

	case CreateCrossTransferAll:
		if _, ok := s.accounts[fn.Target]; !ok {
			return false, nil
		}
		data := s.moveAccount(fn.Target)
		return true, &data

	case ApplyCrossTransferAll:
		if receipt == nil {
			return false, nil
		}
		if _, used := s.usedReceipts[receipt.TransactionHash]; used {
			return false, nil
		}
		account, err := DecodeAccount([]byte(receipt.Data))
		if err != nil {
			panic(err)
		}
		s.insertAccount(account)
		s.usedReceipts[receipt.TransactionHash] = struct{}{}
		return true, nil

	default:
		return false, nil
	}
}
