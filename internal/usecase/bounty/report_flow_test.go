package bounty

import (
	"context"
	"errors"
	"math"
	"reflect"
	"sync"
	"testing"

	domainbounty "bountyvault/internal/domain/bounty"
	"bountyvault/internal/ports"
)

var pocDigest = domainbounty.DigestOf([]byte("proof of concept"))

func submit(t *testing.T, env testEnv, vault domainbounty.Address, researcher string, severity domainbounty.Severity) ports.ReportRecord {
	t.Helper()
	report, err := env.svc.SubmitReport(context.Background(), SubmitReportInput{
		Caller:   researcher,
		Vault:    vault,
		Severity: severity,
		Digest:   pocDigest,
	})
	if err != nil {
		t.Fatalf("SubmitReport(%s) error = %v", researcher, err)
	}
	return report
}

func approve(t *testing.T, env testEnv, vault ports.VaultRecord, report domainbounty.Address) {
	t.Helper()
	if _, err := env.svc.ApproveReport(context.Background(), DecideReportInput{
		Caller: vault.Governance,
		Vault:  vault.Address,
		Report: report,
		Reason: "confirmed",
	}); err != nil {
		t.Fatalf("ApproveReport() error = %v", err)
	}
}

func openResearcher(t *testing.T, env testEnv, researcher string) ports.CustodyAccount {
	t.Helper()
	account, err := env.svc.OpenCustodyAccount(context.Background(), researcher, "")
	if err != nil {
		t.Fatalf("OpenCustodyAccount(%s) error = %v", researcher, err)
	}
	return account
}

func reportStatus(t *testing.T, env testEnv, report domainbounty.Address) domainbounty.ReportStatus {
	t.Helper()
	detail, err := env.svc.GetReport(context.Background(), report)
	if err != nil {
		t.Fatalf("GetReport() error = %v", err)
	}
	return detail.Report.Status
}

func TestPayoutUsesSubmissionSnapshot(t *testing.T) {
	env := setupService(t, testOptions())
	ctx := context.Background()
	vault, _ := createFundedVault(t, env, "team-a", 5000)
	wallet := openResearcher(t, env, "alice")

	report := submit(t, env, vault.Address, "alice", domainbounty.SeverityHigh)
	if report.PayoutAmount != 500 {
		t.Fatalf("PayoutAmount = %d, want 500", report.PayoutAmount)
	}
	approve(t, env, vault, report.Address)

	raised := domainbounty.NewRewardSchedule(1000, 900, 200, 50)
	if _, err := env.svc.UpdateRewardSchedule(ctx, UpdateScheduleInput{Caller: "team-a", Vault: vault.Address, Schedule: raised}); err != nil {
		t.Fatalf("UpdateRewardSchedule() error = %v", err)
	}

	result, err := env.svc.ExecutePayout(ctx, ExecutePayoutInput{Caller: "alice", Vault: vault.Address, Report: report.Address, ResearcherAccount: wallet.Address})
	if err != nil {
		t.Fatalf("ExecutePayout() error = %v", err)
	}
	if result.Transfer.Amount != 500 || result.Report.Status != domainbounty.StatusPaid || result.Report.PaidAt == nil {
		t.Fatalf("ExecutePayout() = %+v", result)
	}
	if got := mustBalance(t, env, wallet.Address); got != 500 {
		t.Fatalf("researcher balance = %d, want 500", got)
	}
	if got := mustBalance(t, env, vault.CustodyAccount); got != 4500 {
		t.Fatalf("vault custody balance = %d, want 4500", got)
	}

	stored := mustVault(t, env, vault.Address)
	if stored.TotalPaidOut != 500 || stored.ApprovedReports != 1 || stored.TotalReports != 1 {
		t.Fatalf("vault counters = %+v", stored)
	}

	detail, err := env.svc.GetReport(ctx, report.Address)
	if err != nil {
		t.Fatalf("GetReport() error = %v", err)
	}
	if detail.Report.Reason == nil || *detail.Report.Reason != "confirmed" || *detail.Report.Approver != "gov-team-a" {
		t.Fatalf("decision metadata = %+v", detail.Report)
	}
	if len(detail.Events) != 3 {
		t.Fatalf("report history len = %d, want 3", len(detail.Events))
	}

	wantKinds := []string{EventVaultCreated, EventReportSubmitted, EventReportApproved, EventScheduleUpdated, EventPayoutExecuted}
	if got := env.publisher.kinds(); !reflect.DeepEqual(got, wantKinds) {
		t.Fatalf("published kinds = %v, want %v", got, wantKinds)
	}
	if env.cache.data[cacheReportStatusKey(report.Address)] != string(domainbounty.StatusPaid) {
		t.Fatalf("cached status = %q", env.cache.data[cacheReportStatusKey(report.Address)])
	}
}

func TestPayoutReplayMovesNothing(t *testing.T) {
	env := setupService(t, testOptions())
	ctx := context.Background()
	vault, _ := createFundedVault(t, env, "team-a", 5000)
	wallet := openResearcher(t, env, "alice")
	report := submit(t, env, vault.Address, "alice", domainbounty.SeverityCritical)
	approve(t, env, vault, report.Address)

	input := ExecutePayoutInput{Caller: "alice", Vault: vault.Address, Report: report.Address, ResearcherAccount: wallet.Address}
	if _, err := env.svc.ExecutePayout(ctx, input); err != nil {
		t.Fatalf("first ExecutePayout() error = %v", err)
	}
	before := mustVault(t, env, vault.Address)

	if _, err := env.svc.ExecutePayout(ctx, input); !errors.Is(err, domainbounty.ErrReportNotApproved) {
		t.Fatalf("replay error = %v, want ErrReportNotApproved", err)
	}
	if got := mustBalance(t, env, wallet.Address); got != 1000 {
		t.Fatalf("researcher balance after replay = %d, want 1000", got)
	}
	if after := mustVault(t, env, vault.Address); after != before {
		t.Fatalf("vault changed on replay: %+v -> %+v", before, after)
	}
}

func TestPayoutGuards(t *testing.T) {
	env := setupService(t, testOptions())
	ctx := context.Background()
	vault, _ := createFundedVault(t, env, "team-a", 5000)
	wallet := openResearcher(t, env, "alice")
	mallet := openResearcher(t, env, "mallory")

	pending := submit(t, env, vault.Address, "alice", domainbounty.SeverityLow)
	if _, err := env.svc.ExecutePayout(ctx, ExecutePayoutInput{Caller: "alice", Vault: vault.Address, Report: pending.Address, ResearcherAccount: wallet.Address}); !errors.Is(err, domainbounty.ErrReportNotApproved) {
		t.Fatalf("pending payout error = %v, want ErrReportNotApproved", err)
	}

	approved := submit(t, env, vault.Address, "alice", domainbounty.SeverityLow)
	approve(t, env, vault, approved.Address)
	if _, err := env.svc.ExecutePayout(ctx, ExecutePayoutInput{Caller: "mallory", Vault: vault.Address, Report: approved.Address, ResearcherAccount: mallet.Address}); !errors.Is(err, domainbounty.ErrUnauthorizedResearcher) {
		t.Fatalf("stranger payout error = %v, want ErrUnauthorizedResearcher", err)
	}
	if got := reportStatus(t, env, approved.Address); got != domainbounty.StatusApproved {
		t.Fatalf("status after stranger payout = %s", got)
	}

	rejected := submit(t, env, vault.Address, "alice", domainbounty.SeverityLow)
	if _, err := env.svc.RejectReport(ctx, DecideReportInput{Caller: vault.Governance, Vault: vault.Address, Report: rejected.Address, Reason: "duplicate"}); err != nil {
		t.Fatalf("RejectReport() error = %v", err)
	}
	if _, err := env.svc.ExecutePayout(ctx, ExecutePayoutInput{Caller: "alice", Vault: vault.Address, Report: rejected.Address, ResearcherAccount: wallet.Address}); !errors.Is(err, domainbounty.ErrReportNotApproved) {
		t.Fatalf("rejected payout error = %v, want ErrReportNotApproved", err)
	}
	if got := mustBalance(t, env, mallet.Address); got != 0 {
		t.Fatalf("mallory balance = %d", got)
	}
}

func TestOnlyGovernanceDecides(t *testing.T) {
	env := setupService(t, testOptions())
	ctx := context.Background()
	vault, _ := createFundedVault(t, env, "team-a", 0)
	report := submit(t, env, vault.Address, "alice", domainbounty.SeverityMedium)

	for _, caller := range []string{"team-a", "alice", "mallory"} {
		input := DecideReportInput{Caller: caller, Vault: vault.Address, Report: report.Address, Reason: "x"}
		if _, err := env.svc.ApproveReport(ctx, input); !errors.Is(err, domainbounty.ErrNotGovernanceAuthority) {
			t.Fatalf("ApproveReport(%s) error = %v, want ErrNotGovernanceAuthority", caller, err)
		}
		if _, err := env.svc.RejectReport(ctx, input); !errors.Is(err, domainbounty.ErrNotGovernanceAuthority) {
			t.Fatalf("RejectReport(%s) error = %v, want ErrNotGovernanceAuthority", caller, err)
		}
	}
	if got := reportStatus(t, env, report.Address); got != domainbounty.StatusPending {
		t.Fatalf("status = %s, want pending", got)
	}
	if got := mustVault(t, env, vault.Address).ApprovedReports; got != 0 {
		t.Fatalf("ApprovedReports = %d, want 0", got)
	}
}

func TestDecisionsFireOnce(t *testing.T) {
	env := setupService(t, testOptions())
	ctx := context.Background()
	vault, _ := createFundedVault(t, env, "team-a", 0)

	approved := submit(t, env, vault.Address, "alice", domainbounty.SeverityHigh)
	approve(t, env, vault, approved.Address)
	if _, err := env.svc.ApproveReport(ctx, DecideReportInput{Caller: vault.Governance, Vault: vault.Address, Report: approved.Address}); !errors.Is(err, domainbounty.ErrInvalidReportStatus) {
		t.Fatalf("double approve error = %v, want ErrInvalidReportStatus", err)
	}
	if _, err := env.svc.RejectReport(ctx, DecideReportInput{Caller: vault.Governance, Vault: vault.Address, Report: approved.Address, Reason: "late"}); !errors.Is(err, domainbounty.ErrInvalidReportStatus) {
		t.Fatalf("reject after approve error = %v, want ErrInvalidReportStatus", err)
	}

	rejected := submit(t, env, vault.Address, "alice", domainbounty.SeverityHigh)
	if _, err := env.svc.RejectReport(ctx, DecideReportInput{Caller: vault.Governance, Vault: vault.Address, Report: rejected.Address, Reason: "out of scope"}); err != nil {
		t.Fatalf("RejectReport() error = %v", err)
	}
	if _, err := env.svc.ApproveReport(ctx, DecideReportInput{Caller: vault.Governance, Vault: vault.Address, Report: rejected.Address}); !errors.Is(err, domainbounty.ErrInvalidReportStatus) {
		t.Fatalf("approve after reject error = %v, want ErrInvalidReportStatus", err)
	}

	if got := mustVault(t, env, vault.Address).ApprovedReports; got != 1 {
		t.Fatalf("ApprovedReports = %d, want 1", got)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	env := setupService(t, testOptions())
	ctx := context.Background()
	vault, _ := createFundedVault(t, env, "team-a", 0)
	report := submit(t, env, vault.Address, "alice", domainbounty.SeverityHigh)

	if _, err := env.svc.RejectReport(ctx, DecideReportInput{Caller: "mallory", Vault: vault.Address, Report: report.Address}); !errors.Is(err, domainbounty.ErrNotGovernanceAuthority) {
		t.Fatalf("stranger blank reject error = %v, want ErrNotGovernanceAuthority", err)
	}
	if _, err := env.svc.RejectReport(ctx, DecideReportInput{Caller: vault.Governance, Vault: vault.Address, Report: report.Address, Reason: "  "}); !errors.Is(err, domainbounty.ErrInvalidArgument) {
		t.Fatalf("blank reject error = %v, want ErrInvalidArgument", err)
	}
	if got := reportStatus(t, env, report.Address); got != domainbounty.StatusPending {
		t.Fatalf("status = %s, want pending", got)
	}
}

func TestReportMustBelongToVault(t *testing.T) {
	env := setupService(t, testOptions())
	ctx := context.Background()
	vaultA, _ := createFundedVault(t, env, "team-a", 0)
	vaultB, _ := createFundedVault(t, env, "team-b", 0)
	report := submit(t, env, vaultA.Address, "alice", domainbounty.SeverityHigh)

	_, err := env.svc.ApproveReport(ctx, DecideReportInput{Caller: vaultB.Governance, Vault: vaultB.Address, Report: report.Address})
	if !errors.Is(err, domainbounty.ErrVaultMismatch) {
		t.Fatalf("cross-vault approve error = %v, want ErrVaultMismatch", err)
	}
}

func TestMintCredentialOncePerPaidReport(t *testing.T) {
	env := setupService(t, testOptions())
	ctx := context.Background()
	vault, _ := createFundedVault(t, env, "team-a", 5000)
	wallet := openResearcher(t, env, "alice")
	report := submit(t, env, vault.Address, "alice", domainbounty.SeverityHigh)

	mint := MintCredentialInput{Caller: "alice", Report: report.Address, ProjectLabel: "acme-dex"}
	if _, err := env.svc.MintCredential(ctx, mint); !errors.Is(err, domainbounty.ErrReportNotPaid) {
		t.Fatalf("mint while pending error = %v, want ErrReportNotPaid", err)
	}
	approve(t, env, vault, report.Address)
	if _, err := env.svc.MintCredential(ctx, mint); !errors.Is(err, domainbounty.ErrReportNotPaid) {
		t.Fatalf("mint while approved error = %v, want ErrReportNotPaid", err)
	}
	if _, err := env.svc.ExecutePayout(ctx, ExecutePayoutInput{Caller: "alice", Vault: vault.Address, Report: report.Address, ResearcherAccount: wallet.Address}); err != nil {
		t.Fatalf("ExecutePayout() error = %v", err)
	}

	credential, err := env.svc.MintCredential(ctx, mint)
	if err != nil {
		t.Fatalf("MintCredential() error = %v", err)
	}
	if credential.Address != domainbounty.CredentialAddress("alice", report.Address) {
		t.Fatalf("credential address = %s", credential.Address)
	}
	if credential.Severity != domainbounty.SeverityHigh || credential.Vault != vault.Address || credential.ProjectLabel != "acme-dex" {
		t.Fatalf("credential = %+v", credential)
	}

	if _, err := env.svc.MintCredential(ctx, mint); !errors.Is(err, domainbounty.ErrAddressInUse) {
		t.Fatalf("second mint error = %v, want ErrAddressInUse", err)
	}
	credentials, err := env.svc.ListCredentials(ctx, "alice")
	if err != nil {
		t.Fatalf("ListCredentials() error = %v", err)
	}
	if len(credentials) != 1 {
		t.Fatalf("ListCredentials() len = %d, want 1", len(credentials))
	}
}

func TestInactiveVaultRefusesSubmissions(t *testing.T) {
	env := setupService(t, testOptions())
	ctx := context.Background()
	vault, _ := createFundedVault(t, env, "team-a", 0)

	pending := submit(t, env, vault.Address, "alice", domainbounty.SeverityLow)

	paused, err := env.svc.ToggleActive(ctx, ToggleActiveInput{Caller: "team-a", Vault: vault.Address})
	if err != nil || paused.Active {
		t.Fatalf("ToggleActive() = %+v, %v", paused, err)
	}
	input := SubmitReportInput{Caller: "alice", Vault: vault.Address, Severity: domainbounty.SeverityLow, Digest: pocDigest}
	if _, err := env.svc.SubmitReport(ctx, input); !errors.Is(err, domainbounty.ErrVaultInactive) {
		t.Fatalf("SubmitReport() on paused vault error = %v, want ErrVaultInactive", err)
	}
	if got := mustVault(t, env, vault.Address).TotalReports; got != 1 {
		t.Fatalf("TotalReports = %d, want 1", got)
	}

	// In-flight reports can still be decided while paused.
	approve(t, env, vault, pending.Address)

	if _, err := env.svc.ToggleActive(ctx, ToggleActiveInput{Caller: "team-a", Vault: vault.Address}); err != nil {
		t.Fatalf("ToggleActive() error = %v", err)
	}
	report, err := env.svc.SubmitReport(ctx, input)
	if err != nil {
		t.Fatalf("SubmitReport() after resume error = %v", err)
	}
	if report.ReportIndex != 1 {
		t.Fatalf("ReportIndex = %d, want 1", report.ReportIndex)
	}
}

func TestConcurrentSubmissionsGetDistinctAddresses(t *testing.T) {
	env := setupService(t, testOptions())
	vault, _ := createFundedVault(t, env, "team-a", 0)

	const n = 8
	var wg sync.WaitGroup
	results := make(chan ports.ReportRecord, n)
	failures := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			report, err := env.svc.SubmitReport(context.Background(), SubmitReportInput{
				Caller:   "alice",
				Vault:    vault.Address,
				Severity: domainbounty.SeverityMedium,
				Digest:   pocDigest,
			})
			if err != nil {
				failures <- err
				return
			}
			results <- report
		}()
	}
	wg.Wait()
	close(results)
	close(failures)

	for err := range failures {
		t.Fatalf("concurrent SubmitReport() error = %v", err)
	}
	seen := make(map[domainbounty.Address]bool, n)
	indexes := make(map[uint64]bool, n)
	for report := range results {
		if seen[report.Address] {
			t.Fatalf("address %s assigned twice", report.Address)
		}
		seen[report.Address] = true
		indexes[report.ReportIndex] = true
		if report.Address != domainbounty.ReportAddress(vault.Address, "alice", report.ReportIndex) {
			t.Fatalf("report %s not at its derived slot", report.Address)
		}
	}
	if len(seen) != n || len(indexes) != n {
		t.Fatalf("distinct addresses = %d, indexes = %d, want %d", len(seen), len(indexes), n)
	}
	if got := mustVault(t, env, vault.Address).TotalReports; got != n {
		t.Fatalf("TotalReports = %d, want %d", got, n)
	}
}

func TestCounterOverflowLeavesNoTrace(t *testing.T) {
	env := setupService(t, testOptions())
	ctx := context.Background()
	vault, _ := createFundedVault(t, env, "team-a", 0)
	report := submit(t, env, vault.Address, "alice", domainbounty.SeverityHigh)

	saturated := mustVault(t, env, vault.Address)
	saturated.TotalReports = math.MaxUint64
	saturated.ApprovedReports = math.MaxUint64
	if err := env.repo.SaveVault(ctx, saturated); err != nil {
		t.Fatalf("SaveVault() error = %v", err)
	}

	if _, err := env.svc.SubmitReport(ctx, SubmitReportInput{Caller: "bob", Vault: vault.Address, Severity: domainbounty.SeverityLow, Digest: pocDigest}); !errors.Is(err, domainbounty.ErrArithmeticOverflow) {
		t.Fatalf("SubmitReport() error = %v, want ErrArithmeticOverflow", err)
	}
	reports, err := env.svc.ListReports(ctx, ports.ReportFilter{Researcher: "bob"})
	if err != nil {
		t.Fatalf("ListReports() error = %v", err)
	}
	if len(reports) != 0 {
		t.Fatalf("overflowing submit left %d reports", len(reports))
	}

	if _, err := env.svc.ApproveReport(ctx, DecideReportInput{Caller: vault.Governance, Vault: vault.Address, Report: report.Address}); !errors.Is(err, domainbounty.ErrArithmeticOverflow) {
		t.Fatalf("ApproveReport() error = %v, want ErrArithmeticOverflow", err)
	}
	if got := reportStatus(t, env, report.Address); got != domainbounty.StatusPending {
		t.Fatalf("status after overflow = %s, want pending", got)
	}
	if after := mustVault(t, env, vault.Address); after.TotalReports != math.MaxUint64 || after.ApprovedReports != math.MaxUint64 {
		t.Fatalf("counters moved: %+v", after)
	}
}

func TestSolvencyCheckOnPayout(t *testing.T) {
	cases := []struct {
		name    string
		enforce bool
		want    error
	}{
		{name: "enforced", enforce: true, want: domainbounty.ErrInsufficientVaultFunds},
		{name: "custody still refuses", enforce: false, want: domainbounty.ErrInsufficientBalance},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := setupService(t, Options{EnforceSolvency: tc.enforce, MintIssuer: testIssuer})
			ctx := context.Background()
			vault, _ := createFundedVault(t, env, "team-a", 100)
			wallet := openResearcher(t, env, "alice")
			report := submit(t, env, vault.Address, "alice", domainbounty.SeverityHigh)
			approve(t, env, vault, report.Address)

			_, err := env.svc.ExecutePayout(ctx, ExecutePayoutInput{Caller: "alice", Vault: vault.Address, Report: report.Address, ResearcherAccount: wallet.Address})
			if !errors.Is(err, tc.want) {
				t.Fatalf("ExecutePayout() error = %v, want %v", err, tc.want)
			}
			if got := reportStatus(t, env, report.Address); got != domainbounty.StatusApproved {
				t.Fatalf("status = %s, want approved", got)
			}
			if got := mustVault(t, env, vault.Address).TotalPaidOut; got != 0 {
				t.Fatalf("TotalPaidOut = %d, want 0", got)
			}
		})
	}
}

func TestReportStatusPrefersCache(t *testing.T) {
	env := setupService(t, testOptions())
	ctx := context.Background()
	vault, _ := createFundedVault(t, env, "team-a", 0)
	report := submit(t, env, vault.Address, "alice", domainbounty.SeverityHigh)

	status, err := env.svc.ReportStatus(ctx, report.Address)
	if err != nil || status != domainbounty.StatusPending {
		t.Fatalf("ReportStatus() = %s, %v", status, err)
	}

	_ = env.cache.Delete(ctx, cacheReportStatusKey(report.Address))
	approve(t, env, vault, report.Address)
	_ = env.cache.Delete(ctx, cacheReportStatusKey(report.Address))
	status, err = env.svc.ReportStatus(ctx, report.Address)
	if err != nil || status != domainbounty.StatusApproved {
		t.Fatalf("ReportStatus() without cache = %s, %v", status, err)
	}
}
