package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type IdentifierType string

const (
	IdentifierSerial    IdentifierType = "SERIAL"
	IdentifierClientTag IdentifierType = "CLIENT_TAG"
	IdentifierIntTag    IdentifierType = "INT_TAG"
	IdentifierIMEI      IdentifierType = "IMEI"
	IdentifierMAC       IdentifierType = "MAC"
	IdentifierUUID      IdentifierType = "UUID"
)

var IdentifierTypes = []IdentifierType{
	IdentifierSerial, IdentifierClientTag, IdentifierIntTag, IdentifierIMEI, IdentifierMAC, IdentifierUUID,
}

type AssetIdentifier struct {
	ID        string         `json:"id" db:"id"`
	AssetID   string         `json:"assetId" db:"asset_id"`
	IDType    IdentifierType `json:"idType" db:"id_type"`
	IDValue   string         `json:"idValue" db:"id_value"`
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
}

const DestructionStatusCompliant = "COMPLIANT"

type HardDrive struct {
	ID                     string              `json:"id" db:"id"`
	AssetID                string              `json:"assetId" db:"asset_id"`
	SerialNumber           string              `json:"serialNumber" db:"serial_number"`
	CapacityGb             *int                `json:"capacityGb" db:"capacity_gb"`
	ValueUsd               decimal.NullDecimal `json:"valueUsd" db:"value_usd"`
	DestructionStatus      *string             `json:"destructionStatus" db:"destruction_status"`
	DestructionCertificate *string             `json:"destructionCertificate" db:"destruction_certificate"`
	VerifiedByID           *string             `json:"verifiedById" db:"verified_by_id"`
	CreatedAt              time.Time           `json:"createdAt" db:"created_at"`

	VerifiedBy *UserAccount `json:"verifiedBy,omitempty" db:"-"`
}

type Document struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Type        string    `json:"type" db:"type"`
	StoragePath string    `json:"storagePath" db:"storage_path"`
	MimeType    string    `json:"mimeType" db:"mime_type"`
	UploadedBy  *string   `json:"uploadedBy" db:"uploaded_by"`
	UploadedAt  time.Time `json:"uploadedAt" db:"uploaded_at"`
}

const (
	DocumentTypePhoto = "photo"
	LinkTypeAsset     = "asset"
)
