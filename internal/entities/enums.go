package entities

type Role string

const (
	RoleManager    Role = "MANAGER"
	RoleTechnician Role = "TECHNICIAN"
	RoleEmployee   Role = "EMPLOYEE"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleManager, RoleTechnician, RoleEmployee:
		return true
	}
	return false
}

type RequestStage string

const (
	StageNew        RequestStage = "NEW"
	StageInProgress RequestStage = "IN_PROGRESS"
	StageRepaired   RequestStage = "REPAIRED"
	StageScrap      RequestStage = "SCRAP"
)

// AllStages в порядке колонок канбан-доски.
var AllStages = []RequestStage{StageNew, StageInProgress, StageRepaired, StageScrap}

func (s RequestStage) IsValid() bool {
	switch s {
	case StageNew, StageInProgress, StageRepaired, StageScrap:
		return true
	}
	return false
}

// IsClosed: работа по заявке завершена (починено или списано).
func (s RequestStage) IsClosed() bool {
	return s == StageRepaired || s == StageScrap
}

type RequestType string

const (
	TypeCorrective RequestType = "CORRECTIVE"
	TypePreventive RequestType = "PREVENTIVE"
)

var AllRequestTypes = []RequestType{TypeCorrective, TypePreventive}

func (t RequestType) IsValid() bool {
	return t == TypeCorrective || t == TypePreventive
}

type RequestPriority string

const (
	PriorityLow      RequestPriority = "LOW"
	PriorityMedium   RequestPriority = "MEDIUM"
	PriorityHigh     RequestPriority = "HIGH"
	PriorityCritical RequestPriority = "CRITICAL"
)

func (p RequestPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

type EquipmentStatus string

const (
	EquipmentActive           EquipmentStatus = "ACTIVE"
	EquipmentUnderMaintenance EquipmentStatus = "UNDER_MAINTENANCE"
	EquipmentScrapped         EquipmentStatus = "SCRAPPED"
)

func (s EquipmentStatus) IsValid() bool {
	switch s {
	case EquipmentActive, EquipmentUnderMaintenance, EquipmentScrapped:
		return true
	}
	return false
}
