package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type SanitizationMethod string

const (
	SanitizeNISTClear       SanitizationMethod = "NIST_800_88_CLEAR"
	SanitizeNISTPurge       SanitizationMethod = "NIST_800_88_PURGE"
	SanitizePhysicalDestroy SanitizationMethod = "PHYSICAL_DESTROY"
)

var SanitizationMethods = []SanitizationMethod{SanitizeNISTClear, SanitizeNISTPurge, SanitizePhysicalDestroy}

type SanitizationAction struct {
	ID                string             `json:"id" db:"id"`
	AssetID           string             `json:"assetId" db:"asset_id"`
	Method            SanitizationMethod `json:"method" db:"method"`
	ToolName          *string            `json:"toolName" db:"tool_name"`
	ToolVersion       *string            `json:"toolVersion" db:"tool_version"`
	CertificateNumber *string            `json:"certificateNumber" db:"certificate_number"`
	Verifier          *string            `json:"verifier" db:"verifier"`
	StartedAt         time.Time          `json:"startedAt" db:"started_at"`
	EndedAt           *time.Time         `json:"endedAt" db:"ended_at"`
}

type SanitizationResult struct {
	ID                string    `json:"id" db:"id"`
	AssetID           string    `json:"assetId" db:"asset_id"`
	ActionID          string    `json:"actionId" db:"action_id"`
	Passed            bool      `json:"passed" db:"passed"`
	VerifiedAt        time.Time `json:"verifiedAt" db:"verified_at"`
	VerifierID        *string   `json:"verifierId" db:"verifier_id"`
	CertificateNumber string    `json:"certificateNumber" db:"certificate_number"`
	Notes             *string   `json:"notes" db:"notes"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`

	Verifier *UserAccount `json:"verifier,omitempty" db:"-"`
}

const SalesOrderStatusCompleted = "COMPLETED"

type SalesOrder struct {
	ID          string    `json:"id" db:"id"`
	OrderNumber string    `json:"orderNumber" db:"order_number"`
	CustomerID  string    `json:"customerId" db:"customer_id"`
	Status      string    `json:"status" db:"status"`
	Notes       *string   `json:"notes" db:"notes"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`

	Lines []SalesLine `json:"lines,omitempty" db:"-"`
}

type SalesLine struct {
	ID           string              `json:"id" db:"id"`
	SalesOrderID string              `json:"salesOrderId" db:"sales_order_id"`
	AssetID      string              `json:"assetId" db:"asset_id"`
	UnitPrice    decimal.NullDecimal `json:"unitPrice" db:"unit_price"`
	TotalPrice   decimal.NullDecimal `json:"totalPrice" db:"total_price"`
}
