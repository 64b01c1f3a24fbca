package repository

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"bountyvault/internal/domain/bounty"
	"bountyvault/internal/infrastructure/persistence/sqlite/model"
	"bountyvault/internal/infrastructure/persistence/sqlite/uow"
	"bountyvault/internal/ports"
)

const testTime = "2026-03-01T12:00:00Z"

func setupRepository(t *testing.T) (*LedgerRepository, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(gormsqlite.Open(filepath.Join(t.TempDir(), "ledger.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewLedgerRepository(db), db
}

func sampleVault(team string) ports.VaultRecord {
	address := bounty.VaultAddress(team)
	return ports.VaultRecord{
		Address:        address,
		Team:           team,
		Governance:     "gov-" + team,
		CustodyAccount: bounty.DeriveAddress(bounty.DiscriminatorCustody, []byte(team)),
		Schedule:       bounty.NewRewardSchedule(1000, 500, 200, 50),
		TotalFunded:    math.MaxUint64,
		Active:         true,
		CreatedAt:      testTime,
		UpdatedAt:      testTime,
	}
}

func sampleReport(vault ports.VaultRecord, researcher string, index uint64) ports.ReportRecord {
	return ports.ReportRecord{
		Address:       bounty.ReportAddress(vault.Address, researcher, index),
		Vault:         vault.Address,
		Researcher:    researcher,
		ReportIndex:   index,
		Severity:      bounty.SeverityHigh,
		Status:        bounty.StatusPending,
		ContentDigest: bounty.DigestOf([]byte("poc")),
		PayoutAmount:  500,
		SubmittedAt:   testTime,
	}
}

func TestCreateAndGetVaultRoundTripsLargeAmounts(t *testing.T) {
	repo, _ := setupRepository(t)
	ctx := context.Background()
	vault := sampleVault("team-a")

	if err := repo.CreateVault(ctx, vault); err != nil {
		t.Fatalf("CreateVault() error = %v", err)
	}

	got, err := repo.GetVault(ctx, vault.Address)
	if err != nil {
		t.Fatalf("GetVault() error = %v", err)
	}
	if got.TotalFunded != math.MaxUint64 {
		t.Fatalf("TotalFunded = %d, want max uint64", got.TotalFunded)
	}
	if got.Schedule != vault.Schedule || got.Team != "team-a" || !got.Active {
		t.Fatalf("GetVault() = %+v", got)
	}
	if got.CustodyAccount != vault.CustodyAccount {
		t.Fatalf("CustodyAccount = %s", got.CustodyAccount)
	}
}

func TestCreateVaultRejectsClaimedAddress(t *testing.T) {
	repo, _ := setupRepository(t)
	ctx := context.Background()
	vault := sampleVault("team-a")

	if err := repo.CreateVault(ctx, vault); err != nil {
		t.Fatalf("CreateVault() error = %v", err)
	}
	if err := repo.CreateVault(ctx, vault); !errors.Is(err, bounty.ErrAddressInUse) {
		t.Fatalf("second CreateVault() error = %v, want ErrAddressInUse", err)
	}

	// A report squatting on the vault's address is refused too.
	report := sampleReport(vault, "alice", 0)
	report.Address = vault.Address
	if err := repo.CreateReport(ctx, report); !errors.Is(err, bounty.ErrAddressInUse) {
		t.Fatalf("CreateReport() on vault address error = %v, want ErrAddressInUse", err)
	}
}

func TestGetFailsClosedOnWrongKind(t *testing.T) {
	repo, _ := setupRepository(t)
	ctx := context.Background()
	vault := sampleVault("team-a")
	if err := repo.CreateVault(ctx, vault); err != nil {
		t.Fatalf("CreateVault() error = %v", err)
	}

	if _, err := repo.GetReport(ctx, vault.Address); !errors.Is(err, bounty.ErrDiscriminatorMismatch) {
		t.Fatalf("GetReport(vault address) error = %v, want ErrDiscriminatorMismatch", err)
	}
	if _, err := repo.GetCredential(ctx, vault.Address); !errors.Is(err, bounty.ErrDiscriminatorMismatch) {
		t.Fatalf("GetCredential(vault address) error = %v, want ErrDiscriminatorMismatch", err)
	}
	if _, err := repo.GetVault(ctx, bounty.VaultAddress("nobody")); !errors.Is(err, bounty.ErrRecordNotFound) {
		t.Fatalf("GetVault(unknown) error = %v, want ErrRecordNotFound", err)
	}
}

func TestSaveReportKeepsSnapshotFields(t *testing.T) {
	repo, _ := setupRepository(t)
	ctx := context.Background()
	vault := sampleVault("team-a")
	if err := repo.CreateVault(ctx, vault); err != nil {
		t.Fatalf("CreateVault() error = %v", err)
	}
	report := sampleReport(vault, "alice", 0)
	if err := repo.CreateReport(ctx, report); err != nil {
		t.Fatalf("CreateReport() error = %v", err)
	}

	approver := "gov-team-a"
	approvedAt := testTime
	report.Status = bounty.StatusApproved
	report.Approver = &approver
	report.ApprovedAt = &approvedAt
	report.PayoutAmount = 1
	report.Severity = bounty.SeverityCritical
	if err := repo.SaveReport(ctx, report); err != nil {
		t.Fatalf("SaveReport() error = %v", err)
	}

	got, err := repo.GetReport(ctx, report.Address)
	if err != nil {
		t.Fatalf("GetReport() error = %v", err)
	}
	if got.Status != bounty.StatusApproved || got.Approver == nil || *got.Approver != approver {
		t.Fatalf("decision not saved: %+v", got)
	}
	if got.PayoutAmount != 500 || got.Severity != bounty.SeverityHigh {
		t.Fatalf("snapshot rewritten: payout=%d severity=%s", got.PayoutAmount, got.Severity)
	}
}

func TestReportIndexIsUniquePerVault(t *testing.T) {
	repo, _ := setupRepository(t)
	ctx := context.Background()
	vault := sampleVault("team-a")
	if err := repo.CreateVault(ctx, vault); err != nil {
		t.Fatalf("CreateVault() error = %v", err)
	}
	if err := repo.CreateReport(ctx, sampleReport(vault, "alice", 0)); err != nil {
		t.Fatalf("CreateReport() error = %v", err)
	}

	clash := sampleReport(vault, "bob", 0)
	if err := repo.CreateReport(ctx, clash); err == nil {
		t.Fatalf("CreateReport() with reused index expected error")
	}
	if _, err := repo.GetReport(ctx, clash.Address); !errors.Is(err, bounty.ErrRecordNotFound) {
		t.Fatalf("failed insert left a claim behind: %v", err)
	}
}

func TestListReportsAndEventsFilter(t *testing.T) {
	repo, db := setupRepository(t)
	ctx := context.Background()
	vault := sampleVault("team-a")
	if err := repo.CreateVault(ctx, vault); err != nil {
		t.Fatalf("CreateVault() error = %v", err)
	}

	unit := uow.NewUnitOfWork(db)
	for i, researcher := range []string{"alice", "bob", "alice"} {
		report := sampleReport(vault, researcher, uint64(i))
		err := unit.WithTx(ctx, func(ctx context.Context) error {
			if err := repo.CreateReport(ctx, report); err != nil {
				return err
			}
			_, err := repo.AppendLedgerEvent(ctx, ports.LedgerEventCreate{
				Kind:      "report_submitted",
				Vault:     vault.Address,
				Report:    &report.Address,
				Actor:     researcher,
				Amount:    report.PayoutAmount,
				CreatedAt: testTime,
			})
			return err
		})
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	reports, err := repo.ListReports(ctx, ports.ReportFilter{Vault: &vault.Address, Researcher: "alice"})
	if err != nil {
		t.Fatalf("ListReports() error = %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("ListReports(alice) len = %d, want 2", len(reports))
	}

	events, err := repo.ListLedgerEvents(ctx, ports.LedgerEventFilter{Vault: &vault.Address})
	if err != nil {
		t.Fatalf("ListLedgerEvents() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("ListLedgerEvents() len = %d, want 3", len(events))
	}
	if events[0].EventUID == "" || events[0].EventUID == events[1].EventUID {
		t.Fatalf("event uids not unique: %q %q", events[0].EventUID, events[1].EventUID)
	}

	after, err := repo.ListLedgerEvents(ctx, ports.LedgerEventFilter{AfterID: events[1].EventID})
	if err != nil {
		t.Fatalf("ListLedgerEvents(after) error = %v", err)
	}
	if len(after) != 1 || after[0].EventID != events[2].EventID {
		t.Fatalf("ListLedgerEvents(after) = %+v", after)
	}
}
