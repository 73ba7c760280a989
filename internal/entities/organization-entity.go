package entities

import (
	"time"

	"github.com/shopspring/decimal"

	"itad-system/pkg/types"
)

type OrgType string

const (
	OrgCustomer   OrgType = "CUSTOMER"
	OrgSupplier   OrgType = "SUPPLIER"
	OrgDownstream OrgType = "DOWNSTREAM"
	OrgInternal   OrgType = "INTERNAL"
)

var OrgTypes = []OrgType{OrgCustomer, OrgSupplier, OrgDownstream, OrgInternal}

var RiskTiers = []string{"LOW", "MEDIUM", "HIGH", "CRITICAL"}

type OrgParty struct {
	ID        string  `json:"id" db:"id"`
	Type      OrgType `json:"type" db:"type"`
	Name      string  `json:"name" db:"name"`
	R2Scope   *string `json:"r2Scope" db:"r2_scope"`
	RiskTier  *string `json:"riskTier" db:"risk_tier"`
	Active    bool    `json:"active" db:"active"`
	Email     *string `json:"email" db:"email"`
	Phone     *string `json:"phone" db:"phone"`
	Address   *string `json:"address" db:"address"`
	City      *string `json:"city" db:"city"`
	State     *string `json:"state" db:"state"`
	ZipCode   *string `json:"zipCode" db:"zip_code"`
	Country   *string `json:"country" db:"country"`
	CreatedBy *string `json:"createdBy" db:"created_by"`

	types.BaseEntity

	Count *OrgPartyCount `json:"_count,omitempty" db:"-"`
}

type OrgPartyCount struct {
	Assets    int `json:"assets"`
	Locations int `json:"locations"`
}

type Location struct {
	ID        string    `json:"id" db:"id"`
	OrgID     string    `json:"orgId" db:"org_id"`
	Name      string    `json:"name" db:"name"`
	Address   *string   `json:"address" db:"address"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type IntakeOrder struct {
	ID             string              `json:"id" db:"id"`
	ClientID       string              `json:"clientId" db:"client_id"`
	OrderNumber    string              `json:"orderNumber" db:"order_number"`
	ReceivedDate   time.Time           `json:"receivedDate" db:"received_date"`
	PackingListNum *string             `json:"packingListNum" db:"packing_list_num"`
	TotalWeightKg  decimal.NullDecimal `json:"totalWeightKg" db:"total_weight_kg"`
	Notes          *string             `json:"notes" db:"notes"`
	CreatedBy      *string             `json:"createdBy" db:"created_by"`
	CreatedAt      time.Time           `json:"createdAt" db:"created_at"`

	Client    *OrgParty    `json:"client,omitempty" db:"-"`
	Lines     []IntakeLine `json:"lines" db:"-"`
	LineCount int          `json:"lineCount" db:"-"`
}

type IntakeLine struct {
	ID            string              `json:"id" db:"id"`
	IntakeOrderID string              `json:"intakeOrderId" db:"intake_order_id"`
	Description   *string             `json:"description" db:"description"`
	Quantity      int                 `json:"quantity" db:"quantity"`
	WeightKg      decimal.NullDecimal `json:"weightKg" db:"weight_kg"`
	AssetID       *string             `json:"assetId" db:"asset_id"`

	// first identifier of the linked asset, if any
	AssetTag *string `json:"assetTag,omitempty" db:"-"`
}
