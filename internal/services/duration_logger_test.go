package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gear-guard/internal/authz"
	"gear-guard/internal/entities"
	"gear-guard/internal/events"
	apperrors "gear-guard/pkg/errors"
)

func newDurationFixture() (*DurationLogger, *fakeRequestRepo, *recordingBus) {
	prior := 1.5
	repo := newFakeRequestRepo(entities.MaintenanceRequest{
		ID: 1, Subject: "Leaking Oil", Type: entities.TypeCorrective, Stage: entities.StageInProgress,
		EquipmentID: 100, TeamID: u64(teamA), DurationHours: &prior, CreatedByID: employeeID,
	})
	bus := &recordingBus{}
	svc := NewDurationLogger(repo, bus, zap.NewNop())
	svc.now = func() time.Time { return day(2025, time.March, 10) }
	return svc, repo, bus
}

func TestLogDuration_OverwritesHours(t *testing.T) {
	svc, repo, bus := newDurationFixture()
	tech := authz.Principal{ID: techID, Role: entities.RoleTechnician, TeamID: u64(teamA)}

	_, err := svc.LogDuration(context.Background(), tech, 1, 2)
	require.NoError(t, err)
	req, err := svc.LogDuration(context.Background(), tech, 1, 0.5)
	require.NoError(t, err)

	require.NotNil(t, req.DurationHours)
	assert.Equal(t, 0.5, *req.DurationHours)
	assert.Equal(t, 0.5, *repo.get(1).DurationHours, "значение заменяется, а не суммируется")
	assert.True(t, repo.get(1).UpdatedAt.Equal(day(2025, time.March, 10)))
	assert.Equal(t, []string{events.RequestsStaleName, events.RequestsStaleName}, bus.names())
}

func TestLogDuration_ZeroIsAllowed(t *testing.T) {
	svc, repo, _ := newDurationFixture()

	_, err := svc.LogDuration(context.Background(), authz.Principal{ID: managerID, Role: entities.RoleManager}, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, *repo.get(1).DurationHours)
}

func TestLogDuration_NegativeLeavesStoredValue(t *testing.T) {
	svc, repo, bus := newDurationFixture()

	for _, hours := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := svc.LogDuration(context.Background(), authz.Principal{ID: managerID, Role: entities.RoleManager}, 1, hours)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	}

	assert.Equal(t, 1.5, *repo.get(1).DurationHours)
	assert.Empty(t, bus.names())
}

func TestLogDuration_Authorization(t *testing.T) {
	svc, repo, _ := newDurationFixture()

	_, err := svc.LogDuration(context.Background(), authz.Principal{ID: loneTechID, Role: entities.RoleTechnician}, 1, 4)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.LogDuration(context.Background(), authz.Principal{ID: otherEmplID, Role: entities.RoleEmployee}, 1, 4)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.LogDuration(context.Background(), authz.Principal{ID: managerID, Role: entities.RoleManager}, 42, 4)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.Equal(t, 1.5, *repo.get(1).DurationHours)
}

func TestParseHours(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "2", want: 2},
		{in: " 1.25 ", want: 1.25},
		{in: "2,5", want: 2.5},
		{in: "0", want: 0},
		{in: "-1", wantErr: true},
		{in: "", wantErr: true},
		{in: "two", wantErr: true},
		{in: "NaN", wantErr: true},
		{in: "Inf", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHours(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
