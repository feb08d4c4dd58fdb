package entities

import "gear-guard/pkg/types"

type Team struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`

	types.BaseEntity

	// Связанные данные (не колонки в таблице)
	Members   []User      `json:"members,omitempty" db:"-"`
	Equipment []Equipment `json:"equipment,omitempty" db:"-"`

	MemberCount    int64 `json:"member_count" db:"-"`
	EquipmentCount int64 `json:"equipment_count" db:"-"`
}
