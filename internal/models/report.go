package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportStatus represents the lifecycle state of any report variant.
type ReportStatus string

const (
	StatusDraft    ReportStatus = "DRAFT"
	StatusReview   ReportStatus = "REVIEW"
	StatusApproved ReportStatus = "APPROVED"
	StatusRejected ReportStatus = "REJECTED"
	StatusReceived ReportStatus = "RECEIVED"
	StatusArchived ReportStatus = "ARCHIVED"
)

// Valid reports whether the status is a known lifecycle state.
func (s ReportStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusReview, StatusApproved, StatusRejected, StatusReceived, StatusArchived:
		return true
	default:
		return false
	}
}

// ReportKind identifies a report variant for routing and notifications.
type ReportKind string

const (
	KindMonthly             ReportKind = "monthly"
	KindDailyFinancial      ReportKind = "daily financial"
	KindPayroll             ReportKind = "payroll"
	KindLiquidation         ReportKind = "liquidation"
	KindDisbursementVoucher ReportKind = "disbursement voucher"
)

// LiquidationCategory enumerates the eight fund-specific liquidation reports.
type LiquidationCategory string

const (
	CategoryOperatingExpenses        LiquidationCategory = "operating_expenses"
	CategoryAdministrativeExpenses   LiquidationCategory = "administrative_expenses"
	CategoryClinicFund               LiquidationCategory = "clinic_fund"
	CategorySupplementaryFeedingFund LiquidationCategory = "supplementary_feeding_fund"
	CategoryHEFund                   LiquidationCategory = "he_fund"
	CategoryFacultyStudDevFund       LiquidationCategory = "faculty_stud_dev_fund"
	CategorySchoolOperationsFund     LiquidationCategory = "school_operations_fund"
	CategoryRevolvingFund            LiquidationCategory = "revolving_fund"
)

// LiquidationCategories lists all categories in cascade order.
var LiquidationCategories = []LiquidationCategory{
	CategoryOperatingExpenses,
	CategoryAdministrativeExpenses,
	CategoryClinicFund,
	CategorySupplementaryFeedingFund,
	CategoryHEFund,
	CategoryFacultyStudDevFund,
	CategorySchoolOperationsFund,
	CategoryRevolvingFund,
}

// Valid reports whether the category is one of the eight funds.
func (c LiquidationCategory) Valid() bool {
	for _, known := range LiquidationCategories {
		if c == known {
			return true
		}
	}
	return false
}

var categoryDisplayNames = map[LiquidationCategory]string{
	CategoryOperatingExpenses:        "Operating Expenses",
	CategoryAdministrativeExpenses:   "Administrative Expenses",
	CategoryClinicFund:               "Clinic Fund",
	CategorySupplementaryFeedingFund: "Supplementary Feeding Fund",
	CategoryHEFund:                   "HE Fund",
	CategoryFacultyStudDevFund:       "Faculty & Student Development Fund",
	CategorySchoolOperationsFund:     "School Operations Fund",
	CategoryRevolvingFund:            "Revolving Fund",
}

// DisplayName returns the human readable fund name.
func (c LiquidationCategory) DisplayName() string {
	if name, ok := categoryDisplayNames[c]; ok {
		return name
	}
	return string(c)
}

// PeriodDate normalises a (year, month) pair to the canonical period key,
// the first day of that month in UTC.
func PeriodDate(year, month int) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

// StatusBearing is implemented by every report variant whose lifecycle is
// driven by the status workflow. It replaces runtime field probing with a
// typed capability surface.
type StatusBearing interface {
	Kind() ReportKind
	CurrentStatus() *ReportStatus
	SetStatus(status ReportStatus)
	SetDateApproved(t time.Time)
	SetDateReceived(t time.Time)
	SetLastModified(t time.Time)
	PreparedByID() string
	NotedByID() *string
}

// reportBase carries the lifecycle columns shared by all report variants.
type reportBase struct {
	ReportStatus *ReportStatus `db:"report_status" json:"report_status"`
	PreparedBy   string        `db:"prepared_by" json:"prepared_by"`
	NotedBy      *string       `db:"noted_by" json:"noted_by,omitempty"`
	DateApproved *time.Time    `db:"date_approved" json:"date_approved,omitempty"`
	DateReceived *time.Time    `db:"date_received" json:"date_received,omitempty"`
	LastModified *time.Time    `db:"last_modified" json:"last_modified,omitempty"`
}

// CurrentStatus implements StatusBearing.
func (b *reportBase) CurrentStatus() *ReportStatus { return b.ReportStatus }

// SetStatus implements StatusBearing.
func (b *reportBase) SetStatus(status ReportStatus) { b.ReportStatus = &status }

// SetDateApproved implements StatusBearing.
func (b *reportBase) SetDateApproved(t time.Time) { b.DateApproved = &t }

// SetDateReceived implements StatusBearing.
func (b *reportBase) SetDateReceived(t time.Time) { b.DateReceived = &t }

// SetLastModified implements StatusBearing.
func (b *reportBase) SetLastModified(t time.Time) { b.LastModified = &t }

// PreparedByID implements StatusBearing.
func (b *reportBase) PreparedByID() string { return b.PreparedBy }

// NotedByID implements StatusBearing.
func (b *reportBase) NotedByID() *string { return b.NotedBy }

// MonthlyReport is the aggregate root for one (school, year-month). It owns
// zero-or-one instance of each child report variant; children are sparse and
// loaded by the repository, never created implicitly.
type MonthlyReport struct {
	ID       time.Time `db:"id" json:"id"`
	SchoolID int64     `db:"school_id" json:"school_id"`
	Name     string    `db:"name" json:"name"`
	reportBase

	DailyFinancial      *DailyFinancialReport `db:"-" json:"daily_financial_report,omitempty"`
	Payroll             *PayrollReport        `db:"-" json:"payroll_report,omitempty"`
	Liquidations        []*LiquidationReport  `db:"-" json:"liquidation_reports,omitempty"`
	DisbursementVoucher *DisbursementVoucher  `db:"-" json:"disbursement_voucher,omitempty"`
}

// Kind implements StatusBearing.
func (*MonthlyReport) Kind() ReportKind { return KindMonthly }

// Children returns the currently loaded child reports in cascade order.
// Absent children are skipped; the disbursement voucher has its own approval
// trail and is never cascaded.
func (m *MonthlyReport) Children() []StatusBearing {
	children := make([]StatusBearing, 0, 2+len(m.Liquidations))
	if m.DailyFinancial != nil {
		children = append(children, m.DailyFinancial)
	}
	if m.Payroll != nil {
		children = append(children, m.Payroll)
	}
	for _, lr := range m.Liquidations {
		if lr != nil {
			children = append(children, lr)
		}
	}
	return children
}

// DailyFinancialReport records daily sales and purchases for one month.
type DailyFinancialReport struct {
	Parent   time.Time `db:"parent" json:"parent"`
	SchoolID int64     `db:"school_id" json:"school_id"`
	reportBase

	Entries []DailyFinancialEntry `db:"-" json:"entries,omitempty"`
}

// Kind implements StatusBearing.
func (*DailyFinancialReport) Kind() ReportKind { return KindDailyFinancial }

// DailyFinancialEntry is one day of sales and purchases.
type DailyFinancialEntry struct {
	Parent    time.Time       `db:"parent" json:"-"`
	SchoolID  int64           `db:"school_id" json:"-"`
	Day       int             `db:"day" json:"day"`
	Sales     decimal.Decimal `db:"sales" json:"sales"`
	Purchases decimal.Decimal `db:"purchases" json:"purchases"`
}

// PayrollReport records canteen staff compensation for one month.
type PayrollReport struct {
	Parent   time.Time `db:"parent" json:"parent"`
	SchoolID int64     `db:"school_id" json:"school_id"`
	reportBase

	Entries []PayrollEntry `db:"-" json:"entries,omitempty"`
}

// Kind implements StatusBearing.
func (*PayrollReport) Kind() ReportKind { return KindPayroll }

// PayrollEntry is one employee-week compensation line.
type PayrollEntry struct {
	Parent       time.Time       `db:"parent" json:"-"`
	SchoolID     int64           `db:"school_id" json:"-"`
	WeekNumber   int             `db:"week_number" json:"week_number"`
	EmployeeName string          `db:"employee_name" json:"employee_name"`
	Amount       decimal.Decimal `db:"amount" json:"amount"`
}

// LiquidationReport is one of the eight fund-specific expense reports.
type LiquidationReport struct {
	Parent   time.Time           `db:"parent" json:"parent"`
	SchoolID int64               `db:"school_id" json:"school_id"`
	Category LiquidationCategory `db:"category" json:"category"`
	reportBase

	Entries []LiquidationEntry `db:"-" json:"entries,omitempty"`
}

// Kind implements StatusBearing.
func (*LiquidationReport) Kind() ReportKind { return KindLiquidation }

// LiquidationEntry is a single expense line within a liquidation report.
type LiquidationEntry struct {
	Parent        time.Time           `db:"parent" json:"-"`
	SchoolID      int64               `db:"school_id" json:"-"`
	Category      LiquidationCategory `db:"category" json:"-"`
	EntryDate     time.Time           `db:"entry_date" json:"date"`
	Particulars   string              `db:"particulars" json:"particulars"`
	ReceiptNumber *string             `db:"receipt_number" json:"receipt_number,omitempty"`
	Amount        decimal.Decimal     `db:"amount" json:"amount"`
}

// DisbursementVoucher records fund releases for one month. It shares the
// lifecycle columns but is excluded from monthly cascade.
type DisbursementVoucher struct {
	Parent   time.Time `db:"parent" json:"parent"`
	SchoolID int64     `db:"school_id" json:"school_id"`
	reportBase
}

// Kind implements StatusBearing.
func (*DisbursementVoucher) Kind() ReportKind { return KindDisbursementVoucher }
