package model

type Vault struct {
	Address         string `gorm:"column:address;type:text;primaryKey"`
	Discriminator   string `gorm:"column:discriminator;type:text;not null"`
	Team            string `gorm:"column:team;type:text;not null;index"`
	Governance      string `gorm:"column:governance;type:text;not null"`
	CustodyAccount  string `gorm:"column:custody_account;type:text;not null"`
	TokenID         string `gorm:"column:token_id;type:text;not null;default:''"`
	RewardCritical  Amount `gorm:"column:reward_critical;not null"`
	RewardHigh      Amount `gorm:"column:reward_high;not null"`
	RewardMedium    Amount `gorm:"column:reward_medium;not null"`
	RewardLow       Amount `gorm:"column:reward_low;not null"`
	TotalFunded     Amount `gorm:"column:total_funded;not null"`
	TotalPaidOut    Amount `gorm:"column:total_paid_out;not null"`
	TotalReports    Amount `gorm:"column:total_reports;not null"`
	ApprovedReports Amount `gorm:"column:approved_reports;not null"`
	Active          bool   `gorm:"column:active;not null"`
	CreatedAt       string `gorm:"column:created_at;type:text;not null"`
	UpdatedAt       string `gorm:"column:updated_at;type:text;not null"`
}

func (Vault) TableName() string {
	return "vaults"
}
