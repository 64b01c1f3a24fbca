package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bountyvault/internal/domain/bounty"
	"bountyvault/internal/errs"
	"bountyvault/internal/infrastructure/persistence/sqlite/model"
	"bountyvault/internal/ports"
)

type LedgerRepository struct {
	db *gorm.DB
}

var _ ports.LedgerRepository = (*LedgerRepository)(nil)

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

// readerFromContext locks rows for the rest of the transaction when one is
// open. SQLite ignores the clause and serializes writers instead.
func (r *LedgerRepository) readerFromContext(ctx context.Context) (*gorm.DB, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if ports.InTx(ctx) {
		return db.Clauses(clause.Locking{Strength: "UPDATE"}), nil
	}
	return db, nil
}

// withTx runs fn in the caller's transaction, or in a fresh one.
func (r *LedgerRepository) withTx(ctx context.Context, fn func(db *gorm.DB) error) error {
	if ports.InTx(ctx) {
		db, err := r.dbFromContext(ctx)
		if err != nil {
			return err
		}
		return fn(db)
	}
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *LedgerRepository) GetVault(ctx context.Context, address bounty.Address) (ports.VaultRecord, error) {
	db, err := r.readerFromContext(ctx)
	if err != nil {
		return ports.VaultRecord{}, err
	}

	var row model.Vault
	if err := db.Where("address = ?", address.String()).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.VaultRecord{}, r.missing(ctx, address, bounty.DiscriminatorVault)
		}
		return ports.VaultRecord{}, errs.Wrap(err, "query vault")
	}
	return mapVault(row)
}

func (r *LedgerRepository) ListVaults(ctx context.Context, filter ports.VaultFilter) ([]ports.VaultRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Vault{})
	if team := strings.TrimSpace(filter.Team); team != "" {
		query = query.Where("team = ?", team)
	}
	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}

	var rows []model.Vault
	if err := query.Order("created_at asc").Order("address asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query vaults")
	}

	items := make([]ports.VaultRecord, 0, len(rows))
	for _, row := range rows {
		item, err := mapVault(row)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *LedgerRepository) GetReport(ctx context.Context, address bounty.Address) (ports.ReportRecord, error) {
	db, err := r.readerFromContext(ctx)
	if err != nil {
		return ports.ReportRecord{}, err
	}

	var row model.Report
	if err := db.Where("address = ?", address.String()).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.ReportRecord{}, r.missing(ctx, address, bounty.DiscriminatorReport)
		}
		return ports.ReportRecord{}, errs.Wrap(err, "query report")
	}
	return mapReport(row)
}

func (r *LedgerRepository) ListReports(ctx context.Context, filter ports.ReportFilter) ([]ports.ReportRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Report{})
	if filter.Vault != nil {
		query = query.Where("vault_address = ?", filter.Vault.String())
	}
	if researcher := strings.TrimSpace(filter.Researcher); researcher != "" {
		query = query.Where("researcher = ?", researcher)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}

	var rows []model.Report
	if err := query.Order("submitted_at asc").Order("address asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query reports")
	}

	items := make([]ports.ReportRecord, 0, len(rows))
	for _, row := range rows {
		item, err := mapReport(row)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *LedgerRepository) GetCredential(ctx context.Context, address bounty.Address) (ports.CredentialRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.CredentialRecord{}, err
	}

	var row model.Credential
	if err := db.Where("address = ?", address.String()).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.CredentialRecord{}, r.missing(ctx, address, bounty.DiscriminatorCredential)
		}
		return ports.CredentialRecord{}, errs.Wrap(err, "query credential")
	}
	return mapCredential(row)
}

func (r *LedgerRepository) ListCredentials(ctx context.Context, researcher string) ([]ports.CredentialRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Credential{})
	if researcher = strings.TrimSpace(researcher); researcher != "" {
		query = query.Where("researcher = ?", researcher)
	}

	var rows []model.Credential
	if err := query.Order("minted_at asc").Order("address asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query credentials")
	}

	items := make([]ports.CredentialRecord, 0, len(rows))
	for _, row := range rows {
		item, err := mapCredential(row)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *LedgerRepository) ListLedgerEvents(ctx context.Context, filter ports.LedgerEventFilter) ([]ports.LedgerEvent, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.LedgerEvent{}).Where("event_id > ?", filter.AfterID)
	if filter.Vault != nil {
		query = query.Where("vault_address = ?", filter.Vault.String())
	}
	if filter.Report != nil {
		query = query.Where("report_address = ?", filter.Report.String())
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []model.LedgerEvent
	if err := query.Order("event_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query ledger events")
	}

	items := make([]ports.LedgerEvent, 0, len(rows))
	for _, row := range rows {
		item, err := mapLedgerEvent(row)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *LedgerRepository) CreateVault(ctx context.Context, vault ports.VaultRecord) error {
	return r.withTx(ctx, func(db *gorm.DB) error {
		if err := claimAddress(db, vault.Address, bounty.DiscriminatorVault, vault.CreatedAt); err != nil {
			return err
		}

		row := vaultRow(vault)
		row.Discriminator = bounty.DiscriminatorVault
		if err := db.Create(&row).Error; err != nil {
			return errs.Wrap(err, "insert vault")
		}
		return nil
	})
}

func (r *LedgerRepository) SaveVault(ctx context.Context, vault ports.VaultRecord) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := vaultRow(vault)
	result := db.Model(&model.Vault{}).
		Where("address = ? AND discriminator = ?", row.Address, bounty.DiscriminatorVault).
		Updates(map[string]any{
			"reward_critical":  row.RewardCritical,
			"reward_high":      row.RewardHigh,
			"reward_medium":    row.RewardMedium,
			"reward_low":       row.RewardLow,
			"total_funded":     row.TotalFunded,
			"total_paid_out":   row.TotalPaidOut,
			"total_reports":    row.TotalReports,
			"approved_reports": row.ApprovedReports,
			"active":           row.Active,
			"updated_at":       row.UpdatedAt,
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "update vault")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: vault %s", bounty.ErrRecordNotFound, vault.Address)
	}
	return nil
}

func (r *LedgerRepository) CreateReport(ctx context.Context, report ports.ReportRecord) error {
	return r.withTx(ctx, func(db *gorm.DB) error {
		if err := claimAddress(db, report.Address, bounty.DiscriminatorReport, report.SubmittedAt); err != nil {
			return err
		}

		row := reportRow(report)
		row.Discriminator = bounty.DiscriminatorReport
		if err := db.Create(&row).Error; err != nil {
			return errs.Wrap(err, "insert report")
		}
		return nil
	})
}

// SaveReport writes the decision and settlement fields. Identity, severity
// and payout amount are fixed at submission and never rewritten.
func (r *LedgerRepository) SaveReport(ctx context.Context, report ports.ReportRecord) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.Report{}).
		Where("address = ? AND discriminator = ?", report.Address.String(), bounty.DiscriminatorReport).
		Updates(map[string]any{
			"status":      string(report.Status),
			"approver":    report.Approver,
			"reason":      report.Reason,
			"approved_at": report.ApprovedAt,
			"rejected_at": report.RejectedAt,
			"paid_at":     report.PaidAt,
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "update report")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: report %s", bounty.ErrRecordNotFound, report.Address)
	}
	return nil
}

func (r *LedgerRepository) CreateCredential(ctx context.Context, credential ports.CredentialRecord) error {
	return r.withTx(ctx, func(db *gorm.DB) error {
		if err := claimAddress(db, credential.Address, bounty.DiscriminatorCredential, credential.MintedAt); err != nil {
			return err
		}

		row := model.Credential{
			Address:       credential.Address.String(),
			Discriminator: bounty.DiscriminatorCredential,
			Researcher:    credential.Researcher,
			ReportAddress: credential.Report.String(),
			VaultAddress:  credential.Vault.String(),
			Severity:      credential.Severity.String(),
			ProjectLabel:  credential.ProjectLabel,
			MintedAt:      credential.MintedAt,
		}
		if err := db.Create(&row).Error; err != nil {
			return errs.Wrap(err, "insert credential")
		}
		return nil
	})
}

func (r *LedgerRepository) AppendLedgerEvent(ctx context.Context, input ports.LedgerEventCreate) (ports.LedgerEvent, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.LedgerEvent{}, err
	}

	row := model.LedgerEvent{
		EventUID:     newEventUID(),
		Kind:         input.Kind,
		VaultAddress: input.Vault.String(),
		Actor:        input.Actor,
		Amount:       model.Amount(input.Amount),
		Detail:       input.Detail,
		CreatedAt:    input.CreatedAt,
	}
	if input.Report != nil {
		report := input.Report.String()
		row.ReportAddress = &report
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.LedgerEvent{}, errs.Wrap(err, "insert ledger event")
	}
	return mapLedgerEvent(row)
}

func claimAddress(db *gorm.DB, address bounty.Address, discriminator string, createdAt string) error {
	row := model.LedgerAddress{
		Address:       address.String(),
		Discriminator: discriminator,
		CreatedAt:     createdAt,
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return errs.Wrap(result.Error, "claim address")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s %s", bounty.ErrAddressInUse, discriminator, address)
	}
	return nil
}

// missing distinguishes an unused address from one claimed by another kind.
func (r *LedgerRepository) missing(ctx context.Context, address bounty.Address, want string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	var claimed model.LedgerAddress
	if err := db.Where("address = ?", address.String()).Take(&claimed).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s %s", bounty.ErrRecordNotFound, want, address)
		}
		return errs.Wrap(err, "query address claim")
	}
	if claimed.Discriminator != want {
		return fmt.Errorf("%w: %s is a %s, not a %s", bounty.ErrDiscriminatorMismatch, address, claimed.Discriminator, want)
	}
	return fmt.Errorf("%w: %s %s", bounty.ErrRecordNotFound, want, address)
}
