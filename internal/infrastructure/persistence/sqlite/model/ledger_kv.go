package model

// LedgerKV backs the read-side status cache. ExpiresAt is nil for entries
// that never expire.
type LedgerKV struct {
	Key       string  `gorm:"column:key;type:text;primaryKey"`
	Value     string  `gorm:"column:value;type:text;not null"`
	ExpiresAt *string `gorm:"column:expires_at;type:text"`
	UpdatedAt string  `gorm:"column:updated_at;type:text;not null"`
}

func (LedgerKV) TableName() string {
	return "ledger_kv"
}
