package model

type Credential struct {
	Address       string `gorm:"column:address;type:text;primaryKey"`
	Discriminator string `gorm:"column:discriminator;type:text;not null"`
	Researcher    string `gorm:"column:researcher;type:text;not null;uniqueIndex:idx_credentials_researcher_report"`
	ReportAddress string `gorm:"column:report_address;type:text;not null;uniqueIndex:idx_credentials_researcher_report"`
	VaultAddress  string `gorm:"column:vault_address;type:text;not null;index"`
	Severity      string `gorm:"column:severity;type:text;not null"`
	ProjectLabel  string `gorm:"column:project_label;type:text;not null"`
	MintedAt      string `gorm:"column:minted_at;type:text;not null"`
}

func (Credential) TableName() string {
	return "credentials"
}
