package entities

import "itad-system/pkg/types"

const DefaultUserRole = "TECH"

// UserAccount mirrors an identity owned by the external provider, keyed by ExternalID.
type UserAccount struct {
	ID         string `json:"id" db:"id"`
	ExternalID string `json:"externalId" db:"external_id"`
	Name       string `json:"name" db:"name"`
	Email      string `json:"email" db:"email"`
	Role       string `json:"role" db:"role"`

	types.BaseEntity
}
