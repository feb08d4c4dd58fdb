package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gear-guard/internal/entities"
	apperrors "gear-guard/pkg/errors"
)

func TestTeamService_FindTeamWithMembersAndEquipment(t *testing.T) {
	teams := &fakeTeamRepo{teams: map[uint64]entities.Team{teamA: {ID: teamA, Name: "Mechanics"}}}
	users := newFakeUserRepo(
		entities.User{ID: techID, Name: "Bob", Role: entities.RoleTechnician, TeamID: u64(teamA)},
		entities.User{ID: employeeID, Name: "Eve", Role: entities.RoleEmployee},
	)
	equipment := newFakeEquipmentRepo(
		entities.Equipment{ID: pressID, Name: "CNC Press", MaintenanceTeamID: u64(teamA)},
		entities.Equipment{ID: printerID, Name: "Printer", MaintenanceTeamID: u64(teamB)},
	)
	svc := NewTeamService(teams, users, equipment, zap.NewNop())

	team, err := svc.FindTeam(context.Background(), teamA)
	require.NoError(t, err)

	assert.Equal(t, "Mechanics", team.Name)
	require.Len(t, team.Members, 1)
	assert.Equal(t, techID, team.Members[0].ID)
	require.Len(t, team.Equipment, 1)
	assert.Equal(t, pressID, team.Equipment[0].ID)
	assert.Equal(t, int64(1), team.MemberCount)

	_, err = svc.FindTeam(context.Background(), 99)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
