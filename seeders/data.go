package seeders

import "gear-guard/internal/entities"

// DefaultPassword — пароль всех демо-пользователей.
const DefaultPassword = "Password123!"

var teamsData = []string{"Mechanics", "IT Support"}

var usersData = []struct {
	Name  string
	Email string
	Role  entities.Role
	Team  string
}{
	{Name: "Maria Manager", Email: "manager@gearguard.com", Role: entities.RoleManager},
	{Name: "Alice Johnson", Email: "alice@gearguard.com", Role: entities.RoleTechnician, Team: "Mechanics"},
	{Name: "Bob Smith", Email: "bob@gearguard.com", Role: entities.RoleTechnician, Team: "Mechanics"},
	{Name: "Eve Operator", Email: "eve@gearguard.com", Role: entities.RoleTechnician, Team: "IT Support"},
	{Name: "Oscar Employee", Email: "oscar@gearguard.com", Role: entities.RoleEmployee},
}

var equipmentData = []struct {
	Name       string
	Serial     string
	Department string
	Location   string
	Team       string
}{
	{Name: "CNC Machine X1", Serial: "CNC-2024-001", Department: "Production", Location: "Floor 1, Zone A", Team: "Mechanics"},
	{Name: "Office Printer P-500", Serial: "PRT-999-X", Department: "HR", Location: "HR Office", Team: "IT Support"},
}

var requestsData = []struct {
	Subject     string
	Description string
	Type        entities.RequestType
	Priority    entities.RequestPriority
	Stage       entities.RequestStage
	Serial      string
	Technician  string
	CreatedBy   string
}{
	{
		Subject:     "Leaking Oil",
		Description: "Oil leak detected near the hydraulic pump.",
		Type:        entities.TypeCorrective,
		Priority:    entities.PriorityHigh,
		Stage:       entities.StageInProgress,
		Serial:      "CNC-2024-001",
		Technician:  "alice@gearguard.com",
		CreatedBy:   "oscar@gearguard.com",
	},
}
