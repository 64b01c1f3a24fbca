package model

type CustodyAccount struct {
	Address    string `gorm:"column:address;type:text;primaryKey"`
	Holder     string `gorm:"column:holder;type:text;not null;index"`
	HolderKind string `gorm:"column:holder_kind;type:text;not null"`
	TokenID    string `gorm:"column:token_id;type:text;not null;default:''"`
	Balance    Amount `gorm:"column:balance;not null"`
	CreatedAt  string `gorm:"column:created_at;type:text;not null"`
	UpdatedAt  string `gorm:"column:updated_at;type:text;not null"`
}

func (CustodyAccount) TableName() string {
	return "custody_accounts"
}

type CustodyTransfer struct {
	TransferID  string `gorm:"column:transfer_id;type:text;primaryKey"`
	FromAccount string `gorm:"column:from_account;type:text;not null;index"`
	ToAccount   string `gorm:"column:to_account;type:text;not null;index"`
	Authority   string `gorm:"column:authority;type:text;not null"`
	Amount      Amount `gorm:"column:amount;not null"`
	CreatedAt   string `gorm:"column:created_at;type:text;not null"`
}

func (CustodyTransfer) TableName() string {
	return "custody_transfers"
}
