package seeders

import "itad-system/internal/entities"

type locationSeed struct {
	Name    string
	Address string
}

var organizationsData = []struct {
	Type      entities.OrgType
	Name      string
	RiskTier  string
	Email     string
	City      string
	Locations []locationSeed
}{
	{
		Type: entities.OrgInternal, Name: "ITAD Processing Center", RiskTier: "LOW", City: "Austin",
		Locations: []locationSeed{
			{Name: "Receiving Dock", Address: "100 Recycle Way, Dock A"},
			{Name: "Sanitization Lab", Address: "100 Recycle Way, Room 12"},
			{Name: "Outbound Warehouse", Address: "100 Recycle Way, Bay 3"},
		},
	},
	{
		Type: entities.OrgCustomer, Name: "Acme Corporation", RiskTier: "MEDIUM", Email: "it@acme.example", City: "Dallas",
		Locations: []locationSeed{{Name: "Acme HQ", Address: "1 Acme Plaza"}},
	},
	{
		Type: entities.OrgCustomer, Name: "Globex Health", RiskTier: "HIGH", Email: "assets@globex.example", City: "Houston",
	},
	{
		Type: entities.OrgDownstream, Name: "GreenCycle Metals", RiskTier: "MEDIUM", Email: "intake@greencycle.example", City: "San Antonio",
	},
	{
		Type: entities.OrgSupplier, Name: "Refurb Parts Supply", RiskTier: "LOW", City: "El Paso",
	},
}

var usersData = []struct {
	ExternalID string
	Name       string
	Email      string
	Role       string
}{
	{ExternalID: "dev-admin", Name: "Dev Admin", Email: "admin@itad.local", Role: "ADMIN"},
	{ExternalID: "dev-tech", Name: "Dev Technician", Email: "tech@itad.local", Role: entities.DefaultUserRole},
}
