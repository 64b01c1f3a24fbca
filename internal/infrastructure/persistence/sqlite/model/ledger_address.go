package model

// LedgerAddress claims an address for exactly one record of any kind.
type LedgerAddress struct {
	Address       string `gorm:"column:address;type:text;primaryKey"`
	Discriminator string `gorm:"column:discriminator;type:text;not null"`
	CreatedAt     string `gorm:"column:created_at;type:text;not null"`
}

func (LedgerAddress) TableName() string {
	return "ledger_addresses"
}
