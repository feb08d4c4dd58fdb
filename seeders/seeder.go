package seeders

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"gear-guard/internal/repositories"
	"gear-guard/pkg/utils"
)

// SeedDemoData наполняет базу демонстрационными командами, пользователями, оборудованием и заявкой.
// Повторный запуск ничего не дублирует.
func SeedDemoData(ctx context.Context, db *pgxpool.Pool, logger *zap.Logger) error {
	logger.Info("▶️  Запуск наполнения демо-данными...")

	err := repositories.WithTx(ctx, db, func(tx pgx.Tx) error {
		teamIDs, err := seedTeams(ctx, tx)
		if err != nil {
			return fmt.Errorf("команды: %w", err)
		}
		userIDs, err := seedUsers(ctx, tx, teamIDs)
		if err != nil {
			return fmt.Errorf("пользователи: %w", err)
		}
		equipmentIDs, err := seedEquipment(ctx, tx, teamIDs)
		if err != nil {
			return fmt.Errorf("оборудование: %w", err)
		}
		created, err := seedRequests(ctx, tx, equipmentIDs, userIDs)
		if err != nil {
			return fmt.Errorf("заявки: %w", err)
		}

		logger.Info("Демо-данные записаны",
			zap.Int("teams", len(teamIDs)),
			zap.Int("users", len(userIDs)),
			zap.Int("equipment", len(equipmentIDs)),
			zap.Int("requests_created", created))
		return nil
	})
	if err != nil {
		logger.Error("❌ Ошибка наполнения демо-данными", zap.Error(err))
		return err
	}

	logger.Info("✅ Наполнение демо-данными завершено!")
	return nil
}

func seedTeams(ctx context.Context, tx pgx.Tx) (map[string]uint64, error) {
	ids := make(map[string]uint64, len(teamsData))
	for _, name := range teamsData {
		var id uint64
		err := tx.QueryRow(ctx,
			`INSERT INTO teams (name) VALUES ($1)
			 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			 RETURNING id`, name).Scan(&id)
		if err != nil {
			return nil, err
		}
		ids[name] = id
	}
	return ids, nil
}

func seedUsers(ctx context.Context, tx pgx.Tx, teamIDs map[string]uint64) (map[string]uint64, error) {
	hashed, err := utils.HashPassword(DefaultPassword)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]uint64, len(usersData))
	for _, u := range usersData {
		var teamID *uint64
		if u.Team != "" {
			id, ok := teamIDs[u.Team]
			if !ok {
				return nil, fmt.Errorf("команда %q не найдена", u.Team)
			}
			teamID = &id
		}

		var id uint64
		err := tx.QueryRow(ctx,
			`INSERT INTO users (name, email, password, role, team_id) VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
			 RETURNING id`,
			u.Name, u.Email, hashed, u.Role, teamID).Scan(&id)
		if err != nil {
			return nil, err
		}
		ids[u.Email] = id
	}
	return ids, nil
}

func seedEquipment(ctx context.Context, tx pgx.Tx, teamIDs map[string]uint64) (map[string]uint64, error) {
	ids := make(map[string]uint64, len(equipmentData))
	for _, e := range equipmentData {
		teamID, ok := teamIDs[e.Team]
		if !ok {
			return nil, fmt.Errorf("команда %q не найдена", e.Team)
		}

		var id uint64
		err := tx.QueryRow(ctx,
			`INSERT INTO equipment (name, serial_number, department, location, status, maintenance_team_id)
			 VALUES ($1, $2, $3, $4, 'ACTIVE', $5)
			 ON CONFLICT (serial_number) DO UPDATE SET serial_number = EXCLUDED.serial_number
			 RETURNING id`,
			e.Name, e.Serial, e.Department, e.Location, teamID).Scan(&id)
		if err != nil {
			return nil, err
		}
		ids[e.Serial] = id
	}
	return ids, nil
}

// seedRequests создаёт заявку, только если у оборудования ещё нет заявки с такой темой.
func seedRequests(ctx context.Context, tx pgx.Tx, equipmentIDs, userIDs map[string]uint64) (int, error) {
	created := 0
	for _, r := range requestsData {
		equipmentID := equipmentIDs[r.Serial]

		var exists bool
		err := tx.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM maintenance_requests WHERE equipment_id = $1 AND subject = $2)",
			equipmentID, r.Subject).Scan(&exists)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO maintenance_requests
			   (subject, description, type, priority, stage, equipment_id, team_id, technician_id, created_by_id, started_at)
			 SELECT $1, $2, $3, $4, $5, e.id, e.maintenance_team_id, $6, $7,
			        CASE WHEN $5 = 'IN_PROGRESS' THEN NOW() END
			 FROM equipment e WHERE e.id = $8`,
			r.Subject, r.Description, r.Type, r.Priority, r.Stage,
			userIDs[r.Technician], userIDs[r.CreatedBy], equipmentID)
		if err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
