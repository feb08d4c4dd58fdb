// pkg/constants/constants.go
package constants

//============== CACHE KEYS ==============

// Ключи в Redis/кеше.
const (
	// Префикс снимков статистики дашборда; полный ключ — dashboard:stats:<поколение>.
	CacheKeyDashboardStats = "dashboard:stats"
	// Счётчик поколений, увеличивается при каждом requests.stale.
	CacheKeyDashboardGeneration = "dashboard:generation"
)

//============== STALE SIGNALS ==============

// Имена списков, которые клиенты должны перечитать.
const (
	StaleRequests  = "requests"
	StaleEquipment = "equipment"
)

//============== DASHBOARD ==============

// Название группы для заявок без команды.
const UnassignedTeamName = "Unassigned"
