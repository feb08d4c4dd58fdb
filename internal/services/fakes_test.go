package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"

	"gear-guard/internal/entities"
	"gear-guard/internal/repositories"
	apperrors "gear-guard/pkg/errors"
	"gear-guard/pkg/eventbus"
	"gear-guard/pkg/types"
)

// fakeRequestRepo хранит заявки в памяти и понимает предикаты squirrel из authz.
type fakeRequestRepo struct {
	mu     sync.Mutex
	rows   map[uint64]entities.MaintenanceRequest
	nextID uint64

	failUpdate error
}

func newFakeRequestRepo(reqs ...entities.MaintenanceRequest) *fakeRequestRepo {
	r := &fakeRequestRepo{rows: map[uint64]entities.MaintenanceRequest{}}
	for _, req := range reqs {
		r.rows[req.ID] = req
		if req.ID > r.nextID {
			r.nextID = req.ID
		}
	}
	return r
}

func (r *fakeRequestRepo) GetRequests(_ context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.MaintenanceRequest, uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]uint64, 0, len(r.rows))
	for id := range r.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []entities.MaintenanceRequest
	for _, id := range ids {
		req := r.rows[id]
		ok, err := matches(scope, &req)
		if err != nil {
			return nil, 0, err
		}
		if !ok || !matchesFilter(filter, &req) {
			continue
		}
		out = append(out, req)
	}
	return out, uint64(len(out)), nil
}

func (r *fakeRequestRepo) FindRequest(_ context.Context, id uint64) (*entities.MaintenanceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.rows[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &req, nil
}

func (r *fakeRequestRepo) FindByEquipmentID(_ context.Context, equipmentID uint64) ([]entities.MaintenanceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entities.MaintenanceRequest
	for _, req := range r.rows {
		if req.EquipmentID == equipmentID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) CreateRequest(_ context.Context, req *entities.MaintenanceRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	now := time.Now()
	req.ID = r.nextID
	req.CreatedAt = &now
	req.UpdatedAt = &now
	r.rows[req.ID] = *req
	return nil
}

func (r *fakeRequestRepo) UpdateStage(_ context.Context, req *entities.MaintenanceRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdate != nil {
		return apperrors.NewPersistenceError("update stage", r.failUpdate)
	}
	stored, ok := r.rows[req.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	stored.Stage = req.Stage
	stored.StartedAt = req.StartedAt
	stored.CompletedAt = req.CompletedAt
	stored.UpdatedAt = req.UpdatedAt
	r.rows[req.ID] = stored
	return nil
}

func (r *fakeRequestRepo) UpdateDuration(_ context.Context, id uint64, hours float64, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.rows[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	stored.DurationHours = &hours
	stored.UpdatedAt = &updatedAt
	r.rows[id] = stored
	return nil
}

func (r *fakeRequestRepo) get(id uint64) entities.MaintenanceRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[id]
}

func requestColumn(req *entities.MaintenanceRequest, col string) (interface{}, error) {
	switch col {
	case "mr.team_id":
		return req.TeamID, nil
	case "mr.technician_id":
		return req.TechnicianID, nil
	case "mr.created_by_id":
		return req.CreatedByID, nil
	case "mr.stage":
		return string(req.Stage), nil
	case "mr.type":
		return string(req.Type), nil
	case "mr.equipment_id":
		return req.EquipmentID, nil
	}
	return nil, fmt.Errorf("fake: неизвестная колонка %s", col)
}

func equalValue(actual, expected interface{}) bool {
	if p, ok := actual.(*uint64); ok {
		if p == nil {
			return false
		}
		actual = *p
	}
	switch exp := expected.(type) {
	case []uint64:
		for _, e := range exp {
			if actual == e {
				return true
			}
		}
		return false
	case []string:
		for _, e := range exp {
			if actual == e {
				return true
			}
		}
		return false
	}
	return actual == expected
}

func matches(pred sq.Sqlizer, req *entities.MaintenanceRequest) (bool, error) {
	switch p := pred.(type) {
	case nil:
		return true, nil
	case sq.And:
		for _, part := range p {
			ok, err := matches(part, req)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case sq.Or:
		for _, part := range p {
			ok, err := matches(part, req)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case sq.Eq:
		for col, v := range p {
			actual, err := requestColumn(req, col)
			if err != nil {
				return false, err
			}
			if !equalValue(actual, v) {
				return false, nil
			}
		}
		return true, nil
	case sq.NotEq:
		for col, v := range p {
			actual, err := requestColumn(req, col)
			if err != nil {
				return false, err
			}
			if equalValue(actual, v) {
				return false, nil
			}
		}
		return true, nil
	}
	return false, fmt.Errorf("fake: предикат %T не поддерживается", pred)
}

var filterColumns = map[string]string{
	"type":          "mr.type",
	"stage":         "mr.stage",
	"team_id":       "mr.team_id",
	"equipment_id":  "mr.equipment_id",
	"technician_id": "mr.technician_id",
}

func matchesFilter(filter types.Filter, req *entities.MaintenanceRequest) bool {
	for key, v := range filter.Filter {
		col, ok := filterColumns[key]
		if !ok {
			continue
		}
		actual, _ := requestColumn(req, col)
		if s, ok := v.(string); ok {
			v = strings.Split(s, ",")
		}
		if !equalValue(actual, v) {
			return false
		}
	}
	if req.ScheduledDate != nil {
		if filter.DateFrom != nil && req.ScheduledDate.Before(*filter.DateFrom) {
			return false
		}
		if filter.DateTo != nil && req.ScheduledDate.After(*filter.DateTo) {
			return false
		}
	} else if filter.DateFrom != nil || filter.DateTo != nil {
		return false
	}
	return true
}

type fakeEquipmentRepo struct {
	mu   sync.Mutex
	rows map[uint64]entities.Equipment

	failStatus error
}

func newFakeEquipmentRepo(items ...entities.Equipment) *fakeEquipmentRepo {
	r := &fakeEquipmentRepo{rows: map[uint64]entities.Equipment{}}
	for _, eq := range items {
		r.rows[eq.ID] = eq
	}
	return r
}

func (r *fakeEquipmentRepo) GetEquipments(_ context.Context, _ types.Filter) ([]entities.Equipment, uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entities.Equipment, 0, len(r.rows))
	for _, eq := range r.rows {
		out = append(out, eq)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, uint64(len(out)), nil
}

func (r *fakeEquipmentRepo) FindEquipment(_ context.Context, id uint64) (*entities.Equipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	eq, ok := r.rows[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &eq, nil
}

func (r *fakeEquipmentRepo) FindByTeamID(_ context.Context, teamID uint64) ([]entities.Equipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entities.Equipment
	for _, eq := range r.rows {
		if eq.MaintenanceTeamID != nil && *eq.MaintenanceTeamID == teamID {
			out = append(out, eq)
		}
	}
	return out, nil
}

func (r *fakeEquipmentRepo) CreateEquipment(_ context.Context, eq *entities.Equipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if existing.SerialNumber == eq.SerialNumber {
			return apperrors.NewValidationError("серийный номер %q уже используется", eq.SerialNumber)
		}
	}
	eq.ID = uint64(len(r.rows) + 1)
	r.rows[eq.ID] = *eq
	return nil
}

func (r *fakeEquipmentRepo) UpdateEquipment(_ context.Context, eq *entities.Equipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[eq.ID]; !ok {
		return apperrors.ErrNotFound
	}
	r.rows[eq.ID] = *eq
	return nil
}

func (r *fakeEquipmentRepo) UpdateStatus(_ context.Context, id uint64, status entities.EquipmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failStatus != nil {
		return apperrors.NewPersistenceError("update equipment status", r.failStatus)
	}
	eq, ok := r.rows[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	eq.Status = status
	r.rows[id] = eq
	return nil
}

func (r *fakeEquipmentRepo) get(id uint64) entities.Equipment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[id]
}

type fakeUserRepo struct {
	mu   sync.Mutex
	rows map[uint64]entities.User
}

func newFakeUserRepo(users ...entities.User) *fakeUserRepo {
	r := &fakeUserRepo{rows: map[uint64]entities.User{}}
	for _, u := range users {
		r.rows[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) FindUserByID(_ context.Context, id uint64) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) FindUserByEmail(_ context.Context, email string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.rows {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeUserRepo) FindByTeamID(_ context.Context, teamID uint64) ([]entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entities.User
	for _, u := range r.rows {
		if u.TeamID != nil && *u.TeamID == teamID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.rows {
		if strings.EqualFold(u.Email, user.Email) {
			return apperrors.ErrUserAlreadyExists
		}
	}
	user.ID = uint64(len(r.rows) + 100)
	r.rows[user.ID] = *user
	return nil
}

type fakeTeamRepo struct {
	teams map[uint64]entities.Team
	err   error
}

func (r *fakeTeamRepo) GetTeams(_ context.Context) ([]entities.Team, error) {
	out := make([]entities.Team, 0, len(r.teams))
	for _, t := range r.teams {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTeamRepo) FindTeam(_ context.Context, id uint64) (*entities.Team, error) {
	t, ok := r.teams[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &t, nil
}

func (r *fakeTeamRepo) FindNamesByIDs(_ context.Context, ids []uint64) (map[uint64]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make(map[uint64]string, len(ids))
	for _, id := range ids {
		if t, ok := r.teams[id]; ok {
			out[id] = t.Name
		}
	}
	return out, nil
}

// fakeDashboardRepo группирует заявки из fakeRequestRepo.
type fakeDashboardRepo struct {
	requests *fakeRequestRepo
}

func (r *fakeDashboardRepo) GroupRequestsBy(ctx context.Context, field repositories.GroupField, condition sq.Sqlizer) ([]types.GroupCount, error) {
	list, _, err := r.requests.GetRequests(ctx, types.Filter{}, condition)
	if err != nil {
		return nil, err
	}

	counts := map[string]int64{}
	var nullCount int64
	for _, req := range list {
		var key *string
		switch field {
		case repositories.GroupByTeam:
			if req.TeamID != nil {
				k := fmt.Sprint(*req.TeamID)
				key = &k
			}
		case repositories.GroupByType:
			k := string(req.Type)
			key = &k
		case repositories.GroupByStage:
			k := string(req.Stage)
			key = &k
		default:
			return nil, errors.New("fake: неизвестное поле")
		}
		if key == nil {
			nullCount++
			continue
		}
		counts[*key]++
	}

	out := make([]types.GroupCount, 0, len(counts)+1)
	for k, c := range counts {
		k := k
		out = append(out, types.GroupCount{Key: &k, Count: c})
	}
	if nullCount > 0 {
		out = append(out, types.GroupCount{Count: nullCount})
	}
	return out, nil
}

// recordingBus запоминает опубликованные события синхронно.
type recordingBus struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (b *recordingBus) Publish(_ context.Context, event eventbus.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.Name())
	}
	return out
}

func u64(v uint64) *uint64 { return &v }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}
