package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"gear-guard/internal/authz"
	"gear-guard/internal/entities"
	"gear-guard/pkg/types"
)

func TestReportService_ExportsVisibleRequests(t *testing.T) {
	hours := 2.5
	yesterday := day(2025, time.March, 9)
	requests := newFakeRequestRepo(
		entities.MaintenanceRequest{ID: 1, Subject: "Leaking Oil", Type: entities.TypeCorrective, Priority: entities.PriorityHigh, Stage: entities.StageNew, TeamID: u64(teamA), ScheduledDate: &yesterday, DurationHours: &hours},
		entities.MaintenanceRequest{ID: 2, Subject: "Paper jam", Type: entities.TypeCorrective, Priority: entities.PriorityLow, Stage: entities.StageNew, TeamID: u64(teamB)},
	)
	reqSvc := NewMaintenanceRequestService(requests, newFakeEquipmentRepo(), newFakeUserRepo(), &recordingBus{}, zap.NewNop())
	reqSvc.now = func() time.Time { return day(2025, time.March, 10) }
	svc := NewReportService(reqSvc, zap.NewNop())

	f, err := svc.ExportRequests(context.Background(), authz.Principal{ID: techID, Role: entities.RoleTechnician, TeamID: u64(teamA)}, types.Filter{WithPagination: true, Limit: 1})
	require.NoError(t, err)

	rows, err := f.GetRows(reportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2, "заголовок и одна видимая заявка")
	assert.Equal(t, reportHeaders, rows[0])
	assert.Equal(t, "Leaking Oil", rows[1][1])
	assert.Equal(t, "да", rows[1][9])
	assert.Equal(t, "2.5", rows[1][10])
}

func TestEquipImportService_Import(t *testing.T) {
	src := excelize.NewFile()
	sheet := "Sheet1"
	require.NoError(t, src.SetSheetRow(sheet, "A1", &[]interface{}{"Реестр оборудования"}))
	require.NoError(t, src.SetSheetRow(sheet, "A2", &[]interface{}{"Name", "Serial Number", "Department", "Location", "Team"}))
	require.NoError(t, src.SetSheetRow(sheet, "A3", &[]interface{}{"CNC Machine", "CNC-2024-001", "Production", "Hall A", "Mechanics"}))
	require.NoError(t, src.SetSheetRow(sheet, "A4", &[]interface{}{"Printer", "PRT-1", "Admin", "Floor 2", "Unknown crew"}))
	require.NoError(t, src.SetSheetRow(sheet, "A5", &[]interface{}{"Broken row", "", "", "", ""}))
	require.NoError(t, src.SetSheetRow(sheet, "A6", &[]interface{}{"Итого", "", "", "", ""}))
	var buf bytes.Buffer
	require.NoError(t, src.Write(&buf))

	equipment := newFakeEquipmentRepo(entities.Equipment{ID: 1, Name: "Old printer", SerialNumber: "PRT-1"})
	teams := &fakeTeamRepo{teams: map[uint64]entities.Team{teamA: {ID: teamA, Name: "Mechanics"}}}
	svc := NewEquipImportService(equipment, teams, zap.NewNop())

	res, err := svc.Import(context.Background(), &buf)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, res.Failed)

	created := equipment.get(2)
	assert.Equal(t, "CNC-2024-001", created.SerialNumber)
	require.NotNil(t, created.MaintenanceTeamID)
	assert.Equal(t, teamA, *created.MaintenanceTeamID)
}

func TestEquipImportService_MissingHeader(t *testing.T) {
	src := excelize.NewFile()
	require.NoError(t, src.SetSheetRow("Sheet1", "A1", &[]interface{}{"foo", "bar"}))
	var buf bytes.Buffer
	require.NoError(t, src.Write(&buf))

	svc := NewEquipImportService(newFakeEquipmentRepo(), &fakeTeamRepo{}, zap.NewNop())
	_, err := svc.Import(context.Background(), &buf)
	assert.Error(t, err)
}
