package model

type LedgerEvent struct {
	EventID       uint64  `gorm:"column:event_id;primaryKey;autoIncrement"`
	EventUID      string  `gorm:"column:event_uid;type:text;not null;uniqueIndex"`
	Kind          string  `gorm:"column:kind;type:text;not null"`
	VaultAddress  string  `gorm:"column:vault_address;type:text;not null;index"`
	ReportAddress *string `gorm:"column:report_address;type:text;index"`
	Actor         string  `gorm:"column:actor;type:text;not null"`
	Amount        Amount  `gorm:"column:amount;not null"`
	Detail        string  `gorm:"column:detail;type:text;not null"`
	CreatedAt     string  `gorm:"column:created_at;type:text;not null"`
}

func (LedgerEvent) TableName() string {
	return "ledger_events"
}
