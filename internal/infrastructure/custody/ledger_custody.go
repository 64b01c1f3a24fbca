package custody

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bountyvault/internal/domain/bounty"
	"bountyvault/internal/errs"
	"bountyvault/internal/infrastructure/persistence/sqlite/model"
	"bountyvault/internal/ports"
)

// mintSource is the journal's from-account for locally issued funds.
var mintSource bounty.Address

// LedgerCustody keeps custody balances in the ledger database so transfers
// commit or roll back with the operation that made them.
type LedgerCustody struct {
	db   *gorm.DB
	salt []byte
	now  func() time.Time
}

var _ ports.Custody = (*LedgerCustody)(nil)

func NewLedgerCustody(db *gorm.DB, authoritySalt string) *LedgerCustody {
	return &LedgerCustody{
		db:   db,
		salt: []byte(authoritySalt),
		now:  time.Now,
	}
}

func AccountAddress(kind ports.HolderKind, holder string, tokenID string) bounty.Address {
	return bounty.DeriveAddress(bounty.DiscriminatorCustody, []byte(kind), []byte(holder), []byte(tokenID))
}

func (c *LedgerCustody) AuthorityAddress(vault bounty.Address) bounty.Address {
	return bounty.VaultAuthorityAddress(vault, c.salt)
}

func (c *LedgerCustody) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return c.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (c *LedgerCustody) withTx(ctx context.Context, fn func(db *gorm.DB) error) error {
	if ports.InTx(ctx) {
		db, err := c.dbFromContext(ctx)
		if err != nil {
			return err
		}
		return fn(db)
	}
	return c.db.WithContext(ctx).Transaction(fn)
}

func (c *LedgerCustody) OpenAccount(ctx context.Context, input ports.OpenCustodyAccountInput) (ports.CustodyAccount, error) {
	holder, err := bounty.NormalizeIdentity("holder", input.Holder)
	if err != nil {
		return ports.CustodyAccount{}, err
	}
	switch input.HolderKind {
	case ports.HolderSigner:
	case ports.HolderDerived:
		if _, err := bounty.ParseAddress(holder); err != nil {
			return ports.CustodyAccount{}, fmt.Errorf("%w: derived holder must be an address: %v", bounty.ErrInvalidArgument, err)
		}
	default:
		return ports.CustodyAccount{}, fmt.Errorf("%w: holder kind %q", bounty.ErrInvalidArgument, input.HolderKind)
	}
	tokenID := strings.TrimSpace(input.TokenID)

	db, err := c.dbFromContext(ctx)
	if err != nil {
		return ports.CustodyAccount{}, err
	}

	now := c.timestamp()
	address := AccountAddress(input.HolderKind, holder, tokenID)
	row := model.CustodyAccount{
		Address:    address.String(),
		Holder:     holder,
		HolderKind: string(input.HolderKind),
		TokenID:    tokenID,
		Balance:    0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return ports.CustodyAccount{}, errs.Wrap(result.Error, "insert custody account")
	}
	if result.RowsAffected == 0 {
		return ports.CustodyAccount{}, fmt.Errorf("%w: custody account %s", bounty.ErrAddressInUse, address)
	}
	return mapAccount(row)
}

func (c *LedgerCustody) GetAccount(ctx context.Context, address bounty.Address) (ports.CustodyAccount, error) {
	db, err := c.dbFromContext(ctx)
	if err != nil {
		return ports.CustodyAccount{}, err
	}
	row, err := loadAccount(ctx, db, address)
	if err != nil {
		return ports.CustodyAccount{}, err
	}
	return mapAccount(row)
}

// Mint issues new funds into a signer-held account.
func (c *LedgerCustody) Mint(ctx context.Context, address bounty.Address, amount uint64) (ports.CustodyAccount, error) {
	if amount == 0 {
		return ports.CustodyAccount{}, fmt.Errorf("%w: mint amount must be positive", bounty.ErrInvalidArgument)
	}

	var out ports.CustodyAccount
	err := c.withTx(ctx, func(db *gorm.DB) error {
		row, err := loadAccount(ctx, db, address)
		if err != nil {
			return err
		}
		if row.HolderKind != string(ports.HolderSigner) {
			return fmt.Errorf("%w: cannot mint into derived account %s", bounty.ErrCustodyUnauthorized, address)
		}

		balance, err := bounty.CheckedAdd(uint64(row.Balance), amount)
		if err != nil {
			return err
		}
		now := c.timestamp()
		if err := setBalance(db, row.Address, balance, now); err != nil {
			return err
		}
		row.Balance = model.Amount(balance)
		row.UpdatedAt = now

		if _, err := c.journal(db, mintSource, address, "mint", amount, now); err != nil {
			return err
		}
		out, err = mapAccount(row)
		return err
	})
	return out, err
}

func (c *LedgerCustody) Transfer(ctx context.Context, input ports.TransferInput) (ports.CustodyTransfer, error) {
	if input.Amount == 0 {
		return ports.CustodyTransfer{}, fmt.Errorf("%w: transfer amount must be positive", bounty.ErrInvalidArgument)
	}
	if input.From == input.To {
		return ports.CustodyTransfer{}, fmt.Errorf("%w: transfer to the same account", bounty.ErrInvalidArgument)
	}

	var out ports.CustodyTransfer
	err := c.withTx(ctx, func(db *gorm.DB) error {
		from, err := loadAccount(ctx, db, input.From)
		if err != nil {
			return errs.Wrap(err, "load source account")
		}
		to, err := loadAccount(ctx, db, input.To)
		if err != nil {
			return errs.Wrap(err, "load destination account")
		}
		if from.TokenID != to.TokenID {
			return fmt.Errorf("%w: %q to %q", bounty.ErrTokenMismatch, from.TokenID, to.TokenID)
		}

		authority, err := c.authorize(from, input.Authority)
		if err != nil {
			return err
		}

		if uint64(from.Balance) < input.Amount {
			return fmt.Errorf("%w: balance %d, transfer %d", bounty.ErrInsufficientBalance, uint64(from.Balance), input.Amount)
		}
		credited, err := bounty.CheckedAdd(uint64(to.Balance), input.Amount)
		if err != nil {
			return err
		}

		now := c.timestamp()
		if err := setBalance(db, from.Address, uint64(from.Balance)-input.Amount, now); err != nil {
			return err
		}
		if err := setBalance(db, to.Address, credited, now); err != nil {
			return err
		}

		transferID, err := c.journal(db, input.From, input.To, authority, input.Amount, now)
		if err != nil {
			return err
		}

		out = ports.CustodyTransfer{
			TransferID: transferID,
			From:       input.From,
			To:         input.To,
			Authority:  authority,
			Amount:     input.Amount,
			CreatedAt:  now,
		}
		return nil
	})
	return out, err
}

func (c *LedgerCustody) ListTransfers(ctx context.Context, account bounty.Address, limit int) ([]ports.CustodyTransfer, error) {
	db, err := c.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.CustodyTransfer{}).
		Where("from_account = ? OR to_account = ?", account.String(), account.String()).
		Order("created_at desc").
		Order("transfer_id asc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.CustodyTransfer
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query custody transfers")
	}

	items := make([]ports.CustodyTransfer, 0, len(rows))
	for _, row := range rows {
		from, err := bounty.ParseAddress(row.FromAccount)
		if err != nil {
			return nil, fmt.Errorf("parse transfer %s source: %w", row.TransferID, err)
		}
		to, err := bounty.ParseAddress(row.ToAccount)
		if err != nil {
			return nil, fmt.Errorf("parse transfer %s destination: %w", row.TransferID, err)
		}
		items = append(items, ports.CustodyTransfer{
			TransferID: row.TransferID,
			From:       from,
			To:         to,
			Authority:  row.Authority,
			Amount:     uint64(row.Amount),
			CreatedAt:  row.CreatedAt,
		})
	}
	return items, nil
}

// authorize returns the journal label of the authority allowed to debit
// from. Derived accounts answer only to the seeds of the vault they belong
// to; signer accounts only to their holder.
func (c *LedgerCustody) authorize(from model.CustodyAccount, authority ports.Authority) (string, error) {
	switch ports.HolderKind(from.HolderKind) {
	case ports.HolderDerived:
		if !authority.VaultSeeds.Sealed() {
			return "", fmt.Errorf("%w: %s is held by a vault authority", bounty.ErrCustodyUnauthorized, from.Address)
		}
		vault := authority.VaultSeeds.Vault()
		if c.AuthorityAddress(vault).String() != from.Holder {
			return "", fmt.Errorf("%w: vault %s does not hold %s", bounty.ErrCustodyUnauthorized, vault, from.Address)
		}
		return "vault:" + vault.String(), nil
	case ports.HolderSigner:
		if authority.VaultSeeds != nil || authority.Signer == "" || authority.Signer != from.Holder {
			return "", fmt.Errorf("%w: %s is not held by the signer", bounty.ErrCustodyUnauthorized, from.Address)
		}
		return "signer:" + authority.Signer, nil
	default:
		return "", fmt.Errorf("%w: unknown holder kind %q", bounty.ErrCustodyUnauthorized, from.HolderKind)
	}
}

func (c *LedgerCustody) journal(db *gorm.DB, from, to bounty.Address, authority string, amount uint64, now string) (string, error) {
	transferID := uuid.NewString()
	if err := db.Create(&model.CustodyTransfer{
		TransferID:  transferID,
		FromAccount: from.String(),
		ToAccount:   to.String(),
		Authority:   authority,
		Amount:      model.Amount(amount),
		CreatedAt:   now,
	}).Error; err != nil {
		return "", errs.Wrap(err, "insert custody transfer")
	}
	return transferID, nil
}

func (c *LedgerCustody) timestamp() string {
	return c.now().UTC().Format(time.RFC3339Nano)
}

func loadAccount(ctx context.Context, db *gorm.DB, address bounty.Address) (model.CustodyAccount, error) {
	query := db
	if ports.InTx(ctx) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var row model.CustodyAccount
	if err := query.Where("address = ?", address.String()).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.CustodyAccount{}, fmt.Errorf("%w: custody account %s", bounty.ErrRecordNotFound, address)
		}
		return model.CustodyAccount{}, errs.Wrap(err, "query custody account")
	}
	return row, nil
}

func setBalance(db *gorm.DB, address string, balance uint64, now string) error {
	if err := db.Model(&model.CustodyAccount{}).
		Where("address = ?", address).
		Updates(map[string]any{
			"balance":    model.Amount(balance),
			"updated_at": now,
		}).Error; err != nil {
		return errs.Wrap(err, "update custody balance")
	}
	return nil
}

func mapAccount(row model.CustodyAccount) (ports.CustodyAccount, error) {
	address, err := bounty.ParseAddress(row.Address)
	if err != nil {
		return ports.CustodyAccount{}, fmt.Errorf("parse custody account address: %w", err)
	}
	return ports.CustodyAccount{
		Address:    address,
		Holder:     row.Holder,
		HolderKind: ports.HolderKind(row.HolderKind),
		TokenID:    row.TokenID,
		Balance:    uint64(row.Balance),
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}, nil
}
