package entities

import (
	"time"

	"github.com/shopspring/decimal"

	"itad-system/pkg/types"
)

type AssetStatus string

const (
	AssetStatusReceived     AssetStatus = "RECEIVED"
	AssetStatusInProcess    AssetStatus = "IN_PROCESS"
	AssetStatusSanitized    AssetStatus = "SANITIZED"
	AssetStatusReadyForSale AssetStatus = "READY_FOR_SALE"
	AssetStatusScrapped     AssetStatus = "SCRAPPED"
	AssetStatusShipped      AssetStatus = "SHIPPED"
	AssetStatusDestroyed    AssetStatus = "DESTROYED"
)

var AssetStatuses = []AssetStatus{
	AssetStatusReceived,
	AssetStatusInProcess,
	AssetStatusSanitized,
	AssetStatusReadyForSale,
	AssetStatusScrapped,
	AssetStatusShipped,
	AssetStatusDestroyed,
}

func (s AssetStatus) Valid() bool {
	for _, st := range AssetStatuses {
		if st == s {
			return true
		}
	}
	return false
}

type R2v3Compliance string

const (
	R2v3Compliant    R2v3Compliance = "COMPLIANT"
	R2v3Pending      R2v3Compliance = "PENDING"
	R2v3NonCompliant R2v3Compliance = "NONCOMPLIANT"
)

type Asset struct {
	ID                  string              `json:"id" db:"id"`
	ClientID            string              `json:"clientId" db:"client_id"`
	Manufacturer        *string             `json:"manufacturer" db:"manufacturer"`
	Model               *string             `json:"model" db:"model"`
	PurchaseDate        *time.Time          `json:"purchaseDate" db:"purchase_date"`
	Processor           *string             `json:"processor" db:"processor"`
	RamSizeGb           *int                `json:"ramSizeGb" db:"ram_size_gb"`
	StorageType         *string             `json:"storageType" db:"storage_type"`
	StorageCapacityGb   *int                `json:"storageCapacityGb" db:"storage_capacity_gb"`
	ScreenSizeInches    *float64            `json:"screenSizeInches" db:"screen_size_inches"`
	OperatingSystem     *string             `json:"operatingSystem" db:"operating_system"`
	CurrentStatus       AssetStatus         `json:"currentStatus" db:"current_status"`
	CurrentLocationID   *string             `json:"currentLocationId" db:"current_location_id"`
	AssignedToID        *string             `json:"assignedToId" db:"assigned_to_id"`
	DataBearing         bool                `json:"dataBearing" db:"data_bearing"`
	Hazmat              bool                `json:"hazmat" db:"hazmat"`
	ResaleValue         decimal.NullDecimal `json:"resaleValue" db:"resale_value"`
	R2v3Compliance      *string             `json:"r2v3Compliance" db:"r2v3_compliance"`
	ComplianceNotes     *string             `json:"complianceNotes" db:"compliance_notes"`
	ComplianceSummary   *string             `json:"complianceSummary" db:"compliance_summary"`
	SuggestedNextAction *string             `json:"suggestedNextAction" db:"suggested_next_action"`

	types.BaseEntity

	// Relations, loaded on demand (not table columns)
	Client              *OrgParty             `json:"client,omitempty" db:"-"`
	CurrentLocation     *Location             `json:"currentLocation,omitempty" db:"-"`
	AssignedTo          *UserAccount          `json:"assignedTo,omitempty" db:"-"`
	Identifiers         []AssetIdentifier     `json:"identifiers,omitempty" db:"-"`
	HardDrives          []HardDrive           `json:"hardDrives,omitempty" db:"-"`
	StatusHistory       []AssetStatusHistory  `json:"statusHistory,omitempty" db:"-"`
	CocEvents           []ChainOfCustodyEvent `json:"cocEvents,omitempty" db:"-"`
	WorkOrders          []WorkOrder           `json:"workOrders,omitempty" db:"-"`
	SanitizationResults []SanitizationResult  `json:"sanitizationResults,omitempty" db:"-"`
}

// PrimaryTag prefers the client tag, then any identifier; empty when the asset has none loaded.
func (a *Asset) PrimaryTag() string {
	if v := a.IdentifierValue(IdentifierClientTag); v != "" {
		return v
	}
	if len(a.Identifiers) > 0 {
		return a.Identifiers[0].IDValue
	}
	return ""
}

func (a *Asset) IdentifierValue(idType IdentifierType) string {
	for _, id := range a.Identifiers {
		if id.IDType == idType {
			return id.IDValue
		}
	}
	return ""
}

// ShortRef is the label used in exports: first identifier, else the id prefix.
func (a *Asset) ShortRef() string {
	if len(a.Identifiers) > 0 {
		return a.Identifiers[0].IDValue
	}
	return ShortID(a.ID)
}

func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
