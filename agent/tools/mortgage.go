package tools

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// MortgageDetails is the account snapshot for an existing mortgage.
// Values are demo fixtures; only the payment dates move with the clock.
type MortgageDetails struct {
	AccountNumber        string  `json:"account_number"`
	OutstandingPrincipal float64 `json:"outstanding_principal"`
	InterestRate         float64 `json:"interest_rate"`
	MaturityDate         string  `json:"maturity_date"`
	OriginalIssueDate    string  `json:"original_issue_date"`
	PaymentsRemaining    int     `json:"payments_remaining"`
	LastPaymentDate      string  `json:"last_payment_date"`
	NextPaymentDue       string  `json:"next_payment_due"`
	NextPaymentAmount    float64 `json:"next_payment_amount"`
}

func mortgageDetails(customerID string, now time.Time) MortgageDetails {
	return MortgageDetails{
		AccountNumber:        customerID,
		OutstandingPrincipal: 150599.25,
		InterestRate:         8.5,
		MaturityDate:         "2030-06-30",
		OriginalIssueDate:    "2021-05-30",
		PaymentsRemaining:    72,
		LastPaymentDate:      now.AddDate(0, 0, -14).Format(dateLayout),
		NextPaymentDue:       now.AddDate(0, 0, 14).Format(dateLayout),
		NextPaymentAmount:    1579.63,
	}
}

// ApplicationDetails is the snapshot of an in-flight mortgage application.
type ApplicationDetails struct {
	CustomerID               string  `json:"customer_id"`
	ApplicationID            string  `json:"application_id"`
	ApplicationDate          string  `json:"application_date"`
	ApplicationStatus        string  `json:"application_status"`
	ApplicationType          string  `json:"application_type"`
	ApplicationAmount        float64 `json:"application_amount"`
	ApplicationTentativeRate float64 `json:"application_tentative_rate"`
	ApplicationTermYears     int     `json:"application_term_years"`
	ApplicationRateType      string  `json:"application_rate_type"`
}

func applicationDetails(customerID string, now time.Time) ApplicationDetails {
	return ApplicationDetails{
		CustomerID:               customerID,
		ApplicationID:            "998776",
		ApplicationDate:          now.AddDate(0, 0, -35).Format(dateLayout),
		ApplicationStatus:        "IN_PROGRESS",
		ApplicationType:          "NEW_MORTGAGE",
		ApplicationAmount:        750000,
		ApplicationTentativeRate: 5.5,
		ApplicationTermYears:     30,
		ApplicationRateType:      "fixed",
	}
}

const (
	DocStatusCompleted = "COMPLETED"
	DocStatusMissing   = "MISSING"
)

// DocumentStatus is one entry of the required-document checklist.
type DocumentStatus struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

// documentChecklist returns the same four document types on every call,
// in a stable order.
func documentChecklist() []DocumentStatus {
	return []DocumentStatus{
		{Type: "proof_of_income", Status: DocStatusCompleted},
		{Type: "employment_information", Status: DocStatusMissing},
		{Type: "proof_of_assets", Status: DocStatusCompleted},
		{Type: "credit_information", Status: DocStatusCompleted},
	}
}

// LoanApplication is the record returned after creating a new application.
type LoanApplication struct {
	CustomerID      string  `json:"customer_id"`
	CustomerName    string  `json:"customer_name"`
	Age             int     `json:"age"`
	AnnualIncome    float64 `json:"annual_income"`
	AnnualExpense   float64 `json:"annual_expense"`
	ApplicationDate string  `json:"application_date"`
	Message         string  `json:"message"`
}

func createLoanApplication(customerID, name string, age int, income, expense float64, now time.Time) LoanApplication {
	return LoanApplication{
		CustomerID:      strings.TrimSpace(customerID),
		CustomerName:    strings.TrimSpace(name),
		Age:             age,
		AnnualIncome:    income,
		AnnualExpense:   expense,
		ApplicationDate: now.Format(dateLayout),
		Message:         "Loan application successfully created",
	}
}

// createCustomerID hands out the demo customer identifier.
func createCustomerID() string {
	return "123456"
}
