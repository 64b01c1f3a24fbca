package bounty

import "bountyvault/internal/errs"

const (
	KindVaultInactive          errs.Kind = "VaultInactive"
	KindNotGovernanceAuthority errs.Kind = "NotGovernanceAuthority"
	KindInvalidReportStatus    errs.Kind = "InvalidReportStatus"
	KindReportNotApproved      errs.Kind = "ReportNotApproved"
	KindReportNotPaid          errs.Kind = "ReportNotPaid"
	KindUnauthorizedResearcher errs.Kind = "UnauthorizedResearcher"
	KindUnauthorizedTeam       errs.Kind = "UnauthorizedTeam"
	KindArithmeticOverflow     errs.Kind = "ArithmeticOverflow"

	KindInsufficientVaultFunds errs.Kind = "InsufficientVaultFunds"
	KindRecordNotFound         errs.Kind = "RecordNotFound"
	KindAddressInUse           errs.Kind = "AddressInUse"
	KindDiscriminatorMismatch  errs.Kind = "DiscriminatorMismatch"
	KindVaultMismatch          errs.Kind = "VaultMismatch"
	KindInvalidArgument        errs.Kind = "InvalidArgument"
	KindCustodyUnauthorized    errs.Kind = "CustodyUnauthorized"
	KindInsufficientBalance    errs.Kind = "InsufficientBalance"
	KindTokenMismatch          errs.Kind = "TokenMismatch"
)

var (
	ErrVaultInactive          = errs.New(KindVaultInactive, "vault is inactive")
	ErrNotGovernanceAuthority = errs.New(KindNotGovernanceAuthority, "not authorized as governance authority")
	ErrInvalidReportStatus    = errs.New(KindInvalidReportStatus, "invalid report status for this operation")
	ErrReportNotApproved      = errs.New(KindReportNotApproved, "report must be approved before payout")
	ErrReportNotPaid          = errs.New(KindReportNotPaid, "report must be paid before credential minting")
	ErrUnauthorizedResearcher = errs.New(KindUnauthorizedResearcher, "unauthorized researcher")
	ErrUnauthorizedTeam       = errs.New(KindUnauthorizedTeam, "only the owning team can perform this action")
	ErrArithmeticOverflow     = errs.New(KindArithmeticOverflow, "arithmetic overflow")

	ErrInsufficientVaultFunds = errs.New(KindInsufficientVaultFunds, "payout exceeds vault funding")
	ErrRecordNotFound         = errs.New(KindRecordNotFound, "record not found")
	ErrAddressInUse           = errs.New(KindAddressInUse, "address already in use")
	ErrDiscriminatorMismatch  = errs.New(KindDiscriminatorMismatch, "record discriminator mismatch")
	ErrVaultMismatch          = errs.New(KindVaultMismatch, "report does not belong to vault")
	ErrInvalidArgument        = errs.New(KindInvalidArgument, "invalid argument")
	ErrCustodyUnauthorized    = errs.New(KindCustodyUnauthorized, "authority cannot move funds from custody account")
	ErrInsufficientBalance    = errs.New(KindInsufficientBalance, "custody account balance too low")
	ErrTokenMismatch          = errs.New(KindTokenMismatch, "custody accounts hold different tokens")
)
