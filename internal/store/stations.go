package store

import (
	"context"
	"database/sql"
	"fmt"

	"pos-service/internal/models"

	"github.com/google/uuid"
)

// CreateStation creates a new fulfillment station. Set invariants are
// validated by the service layer before this is called.
func (s *Store) CreateStation(ctx context.Context, station *models.Station) error {
	if station.ID == "" {
		station.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stations (id, name, category_ids, input_statuses, output_status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	return s.db.GetContext(ctx, &station.CreatedAt, query,
		station.ID, station.Name, station.CategoryIDs, station.InputStatuses, station.OutputStatus)
}

// GetStationByID retrieves a station by ID
func (s *Store) GetStationByID(ctx context.Context, id string) (*models.Station, error) {
	var station models.Station
	err := s.db.GetContext(ctx, &station, "SELECT * FROM stations WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("station not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &station, nil
}

// GetStations retrieves all stations
func (s *Store) GetStations(ctx context.Context) ([]models.Station, error) {
	var stations []models.Station
	err := s.db.SelectContext(ctx, &stations, "SELECT * FROM stations ORDER BY name")
	return stations, err
}

// UpdateStation updates a station configuration
func (s *Store) UpdateStation(ctx context.Context, station *models.Station) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE stations SET name = $1, category_ids = $2, input_statuses = $3, output_status = $4 WHERE id = $5",
		station.Name, station.CategoryIDs, station.InputStatuses, station.OutputStatus, station.ID)
	return err
}

// DeleteStation deletes a station. In-flight orders referencing its
// categories or statuses are left as they are.
func (s *Store) DeleteStation(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM stations WHERE id = $1", id)
	return err
}

// RecordChange appends one broadcast envelope to the audit change log
func (s *Store) RecordChange(ctx context.Context, resourceType, op, resourceID string, payload []byte) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO change_log (resource_type, op, resource_id, payload) VALUES ($1, $2, $3, $4)",
		resourceType, op, resourceID, payload)
	return err
}
