package dto

import (
	"github.com/aarondl/null/v8"
	"github.com/shopspring/decimal"
)

type AssetIdentifierDTO struct {
	IDType  string `json:"idType" validate:"required,identifier_type"`
	IDValue string `json:"idValue" validate:"required,max=255"`
}

type HardDriveDTO struct {
	SerialNumber           string              `json:"serialNumber" validate:"required,max=255"`
	CapacityGb             *int                `json:"capacityGb" validate:"omitempty,min=0"`
	ValueUsd               decimal.NullDecimal `json:"valueUsd" validate:"omitempty,gte=0"`
	DestructionStatus      *string             `json:"destructionStatus" validate:"omitempty,max=50"`
	DestructionCertificate *string             `json:"destructionCertificate" validate:"omitempty,max=255"`
}

type CreateAssetDTO struct {
	ClientID          string              `json:"clientId" validate:"required"`
	Manufacturer      *string             `json:"manufacturer" validate:"omitempty,max=255"`
	Model             *string             `json:"model" validate:"omitempty,max=255"`
	PurchaseDate      *string             `json:"purchaseDate" validate:"omitempty,iso_date"`
	DataBearing       bool                `json:"dataBearing"`
	Hazmat            bool                `json:"hazmat"`
	CurrentLocationID *string             `json:"currentLocationId"`
	AssignedToID      *string             `json:"assignedToId"`
	ResaleValue       decimal.NullDecimal `json:"resaleValue" validate:"omitempty,gte=0"`
	Processor         *string             `json:"processor" validate:"omitempty,max=255"`
	RamSizeGb         *int                `json:"ramSizeGb" validate:"omitempty,min=0"`
	StorageType       *string             `json:"storageType" validate:"omitempty,max=50"`
	StorageCapacityGb *int                `json:"storageCapacityGb" validate:"omitempty,min=0"`
	ScreenSizeInches  *float64            `json:"screenSizeInches" validate:"omitempty,gt=0"`
	OperatingSystem   *string             `json:"operatingSystem" validate:"omitempty,max=255"`
	R2v3Compliance    *string             `json:"r2v3Compliance" validate:"omitempty,r2v3"`
	ComplianceNotes   *string             `json:"complianceNotes"`

	Identifiers []AssetIdentifierDTO `json:"identifiers" validate:"required,min=1,dive"`
	HardDrives  []HardDriveDTO       `json:"hardDrives" validate:"omitempty,dive"`
}

// UpdateAssetDTO is a field-level patch; pair it with utils.PatchFields to tell omitted from null.
type UpdateAssetDTO struct {
	Manufacturer        null.String         `json:"manufacturer" validate:"omitempty,max=255"`
	Model               null.String         `json:"model" validate:"omitempty,max=255"`
	PurchaseDate        null.String         `json:"purchaseDate" validate:"omitempty,iso_date"`
	CurrentStatus       null.String         `json:"currentStatus" validate:"omitempty,asset_status"`
	DataBearing         null.Bool           `json:"dataBearing"`
	Hazmat              null.Bool           `json:"hazmat"`
	CurrentLocationID   null.String         `json:"currentLocationId"`
	AssignedToID        null.String         `json:"assignedToId"`
	ResaleValue         decimal.NullDecimal `json:"resaleValue" validate:"omitempty,gte=0"`
	Processor           null.String         `json:"processor" validate:"omitempty,max=255"`
	RamSizeGb           null.Int            `json:"ramSizeGb" validate:"omitempty,min=0"`
	StorageType         null.String         `json:"storageType" validate:"omitempty,max=50"`
	StorageCapacityGb   null.Int            `json:"storageCapacityGb" validate:"omitempty,min=0"`
	ScreenSizeInches    null.Float64        `json:"screenSizeInches" validate:"omitempty,gt=0"`
	OperatingSystem     null.String         `json:"operatingSystem" validate:"omitempty,max=255"`
	R2v3Compliance      null.String         `json:"r2v3Compliance" validate:"omitempty,r2v3"`
	ComplianceNotes     null.String         `json:"complianceNotes"`
	ComplianceSummary   null.String         `json:"complianceSummary"`
	SuggestedNextAction null.String         `json:"suggestedNextAction"`
}

type AssetImageDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	URL        string `json:"url"`
	MimeType   string `json:"mimeType"`
	UploadedAt string `json:"uploadedAt"`
}
