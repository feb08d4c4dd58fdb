package dto

type TeamStatDTO struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type TypeStatDTO struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

type DashboardStatsDTO struct {
	TeamStats []TeamStatDTO `json:"team_stats"`
	TypeStats []TypeStatDTO `json:"type_stats"`
}
