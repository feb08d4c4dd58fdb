package repositories

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gear-guard/internal/authz"
	"gear-guard/internal/entities"
	"gear-guard/internal/migrate"
	apperrors "gear-guard/pkg/errors"
	"gear-guard/pkg/types"
)

// testPool == nil, если TEST_DATABASE_URL не задан; тогда интеграционные тесты пропускаются.
var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn != "" {
		ctx := context.Background()
		runner, err := migrate.New(dsn, zap.NewNop())
		if err == nil {
			err = runner.Up(ctx)
		}
		if err != nil {
			panic("не удалось применить миграции к тестовой БД: " + err.Error())
		}
		testPool, err = pgxpool.New(ctx, dsn)
		if err != nil {
			panic("не удалось подключиться к тестовой БД: " + err.Error())
		}
	}

	code := m.Run()
	if testPool != nil {
		testPool.Close()
	}
	os.Exit(code)
}

func requireDB(t *testing.T) {
	t.Helper()
	if testPool == nil {
		t.Skip("TEST_DATABASE_URL не задан")
	}
	_, err := testPool.Exec(context.Background(),
		`TRUNCATE TABLE maintenance_requests, equipment, users, teams RESTART IDENTITY CASCADE`)
	require.NoError(t, err, "Не удалось очистить таблицы")
}

// fixture: команды A и B, техник в A, два сотрудника, по единице оборудования на команду.
type fixture struct {
	teamA, teamB          uint64
	tech, employee, other uint64
	equipA, equipB        uint64
	users                 UserRepositoryInterface
	equipment             EquipmentRepositoryInterface
	requests              MaintenanceRequestRepositoryInterface
}

func seed(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()
	f := &fixture{
		users:     NewUserRepository(testPool, logger),
		equipment: NewEquipmentRepository(testPool, logger),
		requests:  NewMaintenanceRequestRepository(testPool, logger),
	}

	require.NoError(t, testPool.QueryRow(ctx, "INSERT INTO teams (name) VALUES ('A') RETURNING id").Scan(&f.teamA))
	require.NoError(t, testPool.QueryRow(ctx, "INSERT INTO teams (name) VALUES ('B') RETURNING id").Scan(&f.teamB))

	mkUser := func(email string, role entities.Role, team *uint64) uint64 {
		u := &entities.User{Name: email, Email: email, Password: "x", Role: role, TeamID: team}
		require.NoError(t, f.users.CreateUser(ctx, u))
		return u.ID
	}
	f.tech = mkUser("tech@x.io", entities.RoleTechnician, &f.teamA)
	f.employee = mkUser("emp@x.io", entities.RoleEmployee, nil)
	f.other = mkUser("other@x.io", entities.RoleEmployee, nil)

	mkEquip := func(serial string, team uint64) uint64 {
		eq := &entities.Equipment{Name: serial, SerialNumber: serial, Status: entities.EquipmentActive, MaintenanceTeamID: &team}
		require.NoError(t, f.equipment.CreateEquipment(ctx, eq))
		return eq.ID
	}
	f.equipA = mkEquip("SN-A", f.teamA)
	f.equipB = mkEquip("SN-B", f.teamB)
	return f
}

func (f *fixture) request(t *testing.T, equip, team, createdBy uint64, tech *uint64, typ entities.RequestType) uint64 {
	t.Helper()
	req := &entities.MaintenanceRequest{
		Subject: "r", Type: typ, Priority: entities.PriorityMedium, Stage: entities.StageNew,
		EquipmentID: equip, TeamID: &team, TechnicianID: tech, CreatedByID: createdBy,
	}
	require.NoError(t, f.requests.CreateRequest(context.Background(), req))
	return req.ID
}

func ids(list []entities.MaintenanceRequest) []uint64 {
	out := make([]uint64, 0, len(list))
	for _, r := range list {
		out = append(out, r.ID)
	}
	return out
}

func TestMaintenanceRequestRepository_ScopeFilters(t *testing.T) {
	requireDB(t)
	f := seed(t)
	ctx := context.Background()

	inTeam := f.request(t, f.equipA, f.teamA, f.employee, nil, entities.TypeCorrective)
	assigned := f.request(t, f.equipB, f.teamB, f.other, &f.tech, entities.TypePreventive)
	foreign := f.request(t, f.equipB, f.teamB, f.other, nil, entities.TypeCorrective)

	all, total, err := f.requests.GetRequests(ctx, types.Filter{}, authz.For(authz.Principal{ID: 1, Role: entities.RoleManager}).ScopeReadFilter())
	require.NoError(t, err)
	assert.Equal(t, uint64(3), total)
	assert.ElementsMatch(t, []uint64{inTeam, assigned, foreign}, ids(all))

	techScope := authz.For(authz.Principal{ID: f.tech, Role: entities.RoleTechnician, TeamID: &f.teamA}).ScopeReadFilter()
	list, total, err := f.requests.GetRequests(ctx, types.Filter{}, techScope)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), total)
	assert.ElementsMatch(t, []uint64{inTeam, assigned}, ids(list))

	empScope := authz.For(authz.Principal{ID: f.employee, Role: entities.RoleEmployee}).ScopeReadFilter()
	list, _, err = f.requests.GetRequests(ctx, types.Filter{}, empScope)
	require.NoError(t, err)
	assert.Equal(t, []uint64{inTeam}, ids(list))

	filter := types.Filter{Filter: map[string]interface{}{"type": []string{"PREVENTIVE"}}}
	list, _, err = f.requests.GetRequests(ctx, filter, techScope)
	require.NoError(t, err)
	assert.Equal(t, []uint64{assigned}, ids(list))
}

func TestMaintenanceRequestRepository_FindJoinsNames(t *testing.T) {
	requireDB(t)
	f := seed(t)

	id := f.request(t, f.equipA, f.teamA, f.employee, &f.tech, entities.TypeCorrective)
	req, err := f.requests.FindRequest(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, req.EquipmentName)
	assert.Equal(t, "SN-A", *req.EquipmentName)
	require.NotNil(t, req.TeamName)
	assert.Equal(t, "A", *req.TeamName)
	require.NotNil(t, req.TechnicianName)
	assert.Equal(t, "tech@x.io", *req.TechnicianName)

	_, err = f.requests.FindRequest(context.Background(), 9999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMaintenanceRequestRepository_UpdateStageAndDuration(t *testing.T) {
	requireDB(t)
	f := seed(t)
	ctx := context.Background()

	id := f.request(t, f.equipA, f.teamA, f.employee, nil, entities.TypeCorrective)
	now := time.Now().UTC().Truncate(time.Microsecond)

	req, err := f.requests.FindRequest(ctx, id)
	require.NoError(t, err)
	req.Stage = entities.StageRepaired
	req.StartedAt, req.CompletedAt, req.UpdatedAt = &now, &now, &now
	require.NoError(t, f.requests.UpdateStage(ctx, req))

	require.NoError(t, f.requests.UpdateDuration(ctx, id, 2.5, now))

	got, err := f.requests.FindRequest(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entities.StageRepaired, got.Stage)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, now.Equal(*got.CompletedAt))
	require.NotNil(t, got.DurationHours)
	assert.Equal(t, 2.5, *got.DurationHours)

	err = f.requests.UpdateDuration(ctx, id, -1, now)
	assert.ErrorIs(t, err, apperrors.ErrPersistence, "CHECK (duration_hours >= 0)")

	err = f.requests.UpdateDuration(ctx, 9999, 1, now)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDashboardRepository_GroupRequestsBy(t *testing.T) {
	requireDB(t)
	f := seed(t)
	ctx := context.Background()

	f.request(t, f.equipA, f.teamA, f.employee, nil, entities.TypeCorrective)
	f.request(t, f.equipA, f.teamA, f.employee, nil, entities.TypePreventive)
	repaired := f.request(t, f.equipB, f.teamB, f.employee, nil, entities.TypeCorrective)
	_, err := testPool.Exec(ctx, "UPDATE maintenance_requests SET stage = 'REPAIRED' WHERE id = $1", repaired)
	require.NoError(t, err)

	repo := NewDashboardRepository(testPool, zap.NewNop())

	byTeam, err := repo.GroupRequestsBy(ctx, GroupByTeam, sq.NotEq{"mr.stage": string(entities.StageRepaired)})
	require.NoError(t, err)
	require.Len(t, byTeam, 1)
	require.NotNil(t, byTeam[0].Key)
	assert.Equal(t, int64(2), byTeam[0].Count)

	byType, err := repo.GroupRequestsBy(ctx, GroupByType, nil)
	require.NoError(t, err)
	counts := map[string]int64{}
	for _, g := range byType {
		counts[*g.Key] = g.Count
	}
	assert.Equal(t, map[string]int64{"CORRECTIVE": 2, "PREVENTIVE": 1}, counts)
}

func TestEquipmentRepository_UniqueSerialAndStatus(t *testing.T) {
	requireDB(t)
	f := seed(t)
	ctx := context.Background()

	dup := &entities.Equipment{Name: "dup", SerialNumber: "SN-A", Status: entities.EquipmentActive}
	assert.ErrorIs(t, f.equipment.CreateEquipment(ctx, dup), apperrors.ErrValidation)

	require.NoError(t, f.equipment.UpdateStatus(ctx, f.equipA, entities.EquipmentScrapped))
	eq, err := f.equipment.FindEquipment(ctx, f.equipA)
	require.NoError(t, err)
	assert.Equal(t, entities.EquipmentScrapped, eq.Status)

	assert.ErrorIs(t, f.equipment.UpdateStatus(ctx, 9999, entities.EquipmentScrapped), apperrors.ErrNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	requireDB(t)
	f := seed(t)

	u := &entities.User{Name: "again", Email: "tech@x.io", Password: "x", Role: entities.RoleEmployee}
	assert.ErrorIs(t, f.users.CreateUser(context.Background(), u), apperrors.ErrUserAlreadyExists)

	members, err := f.users.FindByTeamID(context.Background(), f.teamA)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, f.tech, members[0].ID)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := WithTx(ctx, testPool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "INSERT INTO teams (name) VALUES ('rolled back')"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, testPool.QueryRow(ctx, "SELECT COUNT(*) FROM teams WHERE name = 'rolled back'").Scan(&n))
	assert.Zero(t, n)

	require.NoError(t, WithTx(ctx, testPool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, "INSERT INTO teams (name) VALUES ('committed')")
		return err
	}))
	require.NoError(t, testPool.QueryRow(ctx, "SELECT COUNT(*) FROM teams WHERE name = 'committed'").Scan(&n))
	assert.Equal(t, 1, n)
}
