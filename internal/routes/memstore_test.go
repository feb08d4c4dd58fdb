package routes

import (
	"context"
	"strconv"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"

	"gear-guard/internal/entities"
	"gear-guard/internal/repositories"
	apperrors "gear-guard/pkg/errors"
	"gear-guard/pkg/types"
)

// memStore — общее хранилище для репозиториев в памяти. Фильтры и scope не применяются:
// здесь проверяется маршрутизация, а не выборка.
type memStore struct {
	mu        sync.Mutex
	nextID    uint64
	users     map[uint64]entities.User
	teams     map[uint64]entities.Team
	equipment map[uint64]entities.Equipment
	requests  map[uint64]entities.MaintenanceRequest
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[uint64]entities.User{},
		teams:     map[uint64]entities.Team{},
		equipment: map[uint64]entities.Equipment{},
		requests:  map[uint64]entities.MaintenanceRequest{},
	}
}

func (s *memStore) id() uint64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) repos(cache repositories.CacheRepositoryInterface) *Repositories {
	return &Repositories{
		Users:     memUsers{s},
		Teams:     memTeams{s},
		Equipment: memEquipment{s},
		Requests:  memRequests{s},
		Dashboard: memDashboard{s},
		Cache:     cache,
	}
}

type memUsers struct{ s *memStore }

func (r memUsers) FindUserByID(_ context.Context, id uint64) (*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &u, nil
}

func (r memUsers) FindUserByEmail(_ context.Context, email string) (*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r memUsers) FindByTeamID(_ context.Context, teamID uint64) ([]entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entities.User
	for _, u := range r.s.users {
		if u.TeamID != nil && *u.TeamID == teamID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r memUsers) CreateUser(_ context.Context, user *entities.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return apperrors.ErrUserAlreadyExists
		}
	}
	user.ID = r.s.id()
	r.s.users[user.ID] = *user
	return nil
}

type memTeams struct{ s *memStore }

func (r memTeams) GetTeams(context.Context) ([]entities.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entities.Team, 0, len(r.s.teams))
	for _, t := range r.s.teams {
		out = append(out, t)
	}
	return out, nil
}

func (r memTeams) FindTeam(_ context.Context, id uint64) (*entities.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.teams[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &t, nil
}

func (r memTeams) FindNamesByIDs(_ context.Context, ids []uint64) (map[uint64]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[uint64]string{}
	for _, id := range ids {
		if t, ok := r.s.teams[id]; ok {
			out[id] = t.Name
		}
	}
	return out, nil
}

type memEquipment struct{ s *memStore }

func (r memEquipment) GetEquipments(context.Context, types.Filter) ([]entities.Equipment, uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entities.Equipment, 0, len(r.s.equipment))
	for _, e := range r.s.equipment {
		out = append(out, e)
	}
	return out, uint64(len(out)), nil
}

func (r memEquipment) FindEquipment(_ context.Context, id uint64) (*entities.Equipment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.equipment[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &e, nil
}

func (r memEquipment) FindByTeamID(_ context.Context, teamID uint64) ([]entities.Equipment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entities.Equipment
	for _, e := range r.s.equipment {
		if e.MaintenanceTeamID != nil && *e.MaintenanceTeamID == teamID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r memEquipment) CreateEquipment(_ context.Context, eq *entities.Equipment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.equipment {
		if e.SerialNumber == eq.SerialNumber {
			return apperrors.NewValidationError("оборудование с таким серийным номером уже существует")
		}
	}
	eq.ID = r.s.id()
	r.s.equipment[eq.ID] = *eq
	return nil
}

func (r memEquipment) UpdateEquipment(_ context.Context, eq *entities.Equipment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.equipment[eq.ID]; !ok {
		return apperrors.ErrNotFound
	}
	r.s.equipment[eq.ID] = *eq
	return nil
}

func (r memEquipment) UpdateStatus(_ context.Context, id uint64, status entities.EquipmentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.equipment[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	e.Status = status
	r.s.equipment[id] = e
	return nil
}

type memRequests struct{ s *memStore }

func (r memRequests) GetRequests(context.Context, types.Filter, sq.Sqlizer) ([]entities.MaintenanceRequest, uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entities.MaintenanceRequest, 0, len(r.s.requests))
	for _, req := range r.s.requests {
		out = append(out, req)
	}
	return out, uint64(len(out)), nil
}

func (r memRequests) FindRequest(_ context.Context, id uint64) (*entities.MaintenanceRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.requests[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &req, nil
}

func (r memRequests) FindByEquipmentID(_ context.Context, equipmentID uint64) ([]entities.MaintenanceRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entities.MaintenanceRequest
	for _, req := range r.s.requests {
		if req.EquipmentID == equipmentID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r memRequests) CreateRequest(_ context.Context, req *entities.MaintenanceRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req.ID = r.s.id()
	r.s.requests[req.ID] = *req
	return nil
}

func (r memRequests) UpdateStage(_ context.Context, req *entities.MaintenanceRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.requests[req.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	cur.Stage, cur.StartedAt, cur.CompletedAt, cur.UpdatedAt = req.Stage, req.StartedAt, req.CompletedAt, req.UpdatedAt
	r.s.requests[req.ID] = cur
	return nil
}

func (r memRequests) UpdateDuration(_ context.Context, id uint64, hours float64, updatedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.requests[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	cur.DurationHours = &hours
	cur.UpdatedAt = &updatedAt
	r.s.requests[id] = cur
	return nil
}

type memDashboard struct{ s *memStore }

func (r memDashboard) GroupRequestsBy(_ context.Context, field repositories.GroupField, _ sq.Sqlizer) ([]types.GroupCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[string]int64{}
	for _, req := range r.s.requests {
		switch field {
		case repositories.GroupByType:
			counts[string(req.Type)]++
		case repositories.GroupByTeam:
			if req.Stage == entities.StageRepaired || req.TeamID == nil {
				continue
			}
			counts[strconv.FormatUint(*req.TeamID, 10)]++
		}
	}
	out := make([]types.GroupCount, 0, len(counts))
	for k, n := range counts {
		k := k
		out = append(out, types.GroupCount{Key: &k, Count: n})
	}
	return out, nil
}
