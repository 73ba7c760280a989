package entities

import "time"

// AssetStatusHistory and ChainOfCustodyEvent are append-only; the schema rejects UPDATE and DELETE.
type AssetStatusHistory struct {
	ID         string       `json:"id" db:"id"`
	AssetID    string       `json:"assetId" db:"asset_id"`
	FromStatus *AssetStatus `json:"fromStatus" db:"from_status"`
	ToStatus   AssetStatus  `json:"toStatus" db:"to_status"`
	ChangedBy  *string      `json:"changedBy" db:"changed_by"`
	ChangedTs  time.Time    `json:"changedTs" db:"changed_ts"`
	Notes      *string      `json:"notes" db:"notes"`

	Changer *UserAccount `json:"changer,omitempty" db:"-"`
}

type CustodyEventType string

const (
	CustodyReceived  CustodyEventType = "RECEIVED"
	CustodyMoved     CustodyEventType = "MOVED"
	CustodySanitized CustodyEventType = "SANITIZED"
	CustodyShipped   CustodyEventType = "SHIPPED"
	CustodyDestroyed CustodyEventType = "DESTROYED"
	CustodyReturned  CustodyEventType = "RETURNED"
)

type ChainOfCustodyEvent struct {
	ID             string           `json:"id" db:"id"`
	AssetID        string           `json:"assetId" db:"asset_id"`
	EventType      CustodyEventType `json:"eventType" db:"event_type"`
	FromLocationID *string          `json:"fromLocationId" db:"from_location_id"`
	ToLocationID   *string          `json:"toLocationId" db:"to_location_id"`
	PerformedBy    *string          `json:"performedBy" db:"performed_by"`
	EventTs        time.Time        `json:"eventTs" db:"event_ts"`
	Notes          *string          `json:"notes" db:"notes"`

	FromLocation *Location    `json:"fromLocation,omitempty" db:"-"`
	ToLocation   *Location    `json:"toLocation,omitempty" db:"-"`
	Performer    *UserAccount `json:"performer,omitempty" db:"-"`
	Asset        *Asset       `json:"asset,omitempty" db:"-"`
}
