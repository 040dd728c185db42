package core

// Receipt records the outcome of executing one transaction during a slot.
// Ported from original_source/chain/src/receipt.rs.
type Receipt struct {
	SlotNumber      Slot
	From            Address
	To              Address
	GasUsed         *Gas
	Status          bool
	TransactionHash TxHash
	Data            string
}

// NewReceipt builds a receipt for tx, executed during slotNumber.
func NewReceipt(slotNumber Slot, tx *Transaction, gasUsed *Gas, status bool, data string) *Receipt {
	return &Receipt{
		SlotNumber:      slotNumber,
		From:            tx.From,
		To:              tx.To,
		GasUsed:         gasUsed,
		Status:          status,
		TransactionHash: tx.Hash,
		Data:            data,
	}
}
