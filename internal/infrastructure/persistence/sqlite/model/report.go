package model

type Report struct {
	Address       string  `gorm:"column:address;type:text;primaryKey"`
	Discriminator string  `gorm:"column:discriminator;type:text;not null"`
	VaultAddress  string  `gorm:"column:vault_address;type:text;not null;uniqueIndex:idx_reports_vault_index"`
	ReportIndex   Amount  `gorm:"column:report_index;not null;uniqueIndex:idx_reports_vault_index"`
	Researcher    string  `gorm:"column:researcher;type:text;not null;index"`
	Severity      string  `gorm:"column:severity;type:text;not null"`
	Status        string  `gorm:"column:status;type:text;not null;index"`
	ContentDigest string  `gorm:"column:content_digest;type:text;not null"`
	PayoutAmount  Amount  `gorm:"column:payout_amount;not null"`
	Approver      *string `gorm:"column:approver;type:text"`
	Reason        *string `gorm:"column:reason;type:text"`
	SubmittedAt   string  `gorm:"column:submitted_at;type:text;not null"`
	ApprovedAt    *string `gorm:"column:approved_at;type:text"`
	RejectedAt    *string `gorm:"column:rejected_at;type:text"`
	PaidAt        *string `gorm:"column:paid_at;type:text"`
}

func (Report) TableName() string {
	return "reports"
}
