package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"tripfolio/internal/domain"
	"tripfolio/internal/port"
)

type tripRepo struct {
	db *sqlx.DB
}

// NewTripRepo creates a new PostgreSQL-backed TripRepository. Flight and
// hotel lists are stored as JSONB documents on the trip row; the version
// column guards every write so two concurrent merges cannot silently
// overwrite each other.
func NewTripRepo(db *sqlx.DB) port.TripRepository {
	return &tripRepo{db: db}
}

// tripRow mirrors the trips table, with the record lists still raw JSONB.
type tripRow struct {
	ID         uuid.UUID       `db:"id"`
	Name       string          `db:"name"`
	OwnerEmail string          `db:"owner_email"`
	Flights    json.RawMessage `db:"flights"`
	Hotels     json.RawMessage `db:"hotels"`
	StartDate  string          `db:"start_date"`
	EndDate    string          `db:"end_date"`
	Route      string          `db:"route"`
	Version    int             `db:"version"`
	CreatedAt  time.Time       `db:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at"`
}

func (r *tripRepo) Create(ctx context.Context, trip *domain.Trip) error {
	now := time.Now().UTC()
	trip.CreatedAt = now
	trip.UpdatedAt = now
	trip.Version = 1

	flights, hotels, err := marshalRecords(trip)
	if err != nil {
		return fmt.Errorf("tripRepo.Create: %w", err)
	}

	query := `INSERT INTO trips (id, name, owner_email, flights, hotels, start_date, end_date, route, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = r.db.ExecContext(ctx, query,
		trip.ID, trip.Name, trip.OwnerEmail, flights, hotels,
		trip.StartDate, trip.EndDate, trip.Route, trip.Version,
		trip.CreatedAt, trip.UpdatedAt)
	if err != nil {
		return fmt.Errorf("tripRepo.Create: %w", err)
	}
	return nil
}

func (r *tripRepo) GetByID(ctx context.Context, tripID uuid.UUID) (*domain.Trip, error) {
	var row tripRow
	err := r.db.GetContext(ctx, &row, "SELECT * FROM trips WHERE id = $1", tripID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTripNotFound
		}
		return nil, fmt.Errorf("tripRepo.GetByID: %w", err)
	}
	return rowToTrip(&row)
}

func (r *tripRepo) List(ctx context.Context, offset, limit int) ([]domain.Trip, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM trips"); err != nil {
		return nil, 0, fmt.Errorf("tripRepo.List count: %w", err)
	}

	var rows []tripRow
	err := r.db.SelectContext(ctx, &rows,
		"SELECT * FROM trips ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("tripRepo.List: %w", err)
	}

	trips := make([]domain.Trip, 0, len(rows))
	for i := range rows {
		trip, err := rowToTrip(&rows[i])
		if err != nil {
			return nil, 0, err
		}
		trips = append(trips, *trip)
	}
	return trips, total, nil
}

// Save writes the trip conditioned on the version it was read at. A zero
// rows-affected result with an existing row means another writer advanced the
// version first; the caller's merge must be redone against fresh state.
func (r *tripRepo) Save(ctx context.Context, trip *domain.Trip) error {
	flights, hotels, err := marshalRecords(trip)
	if err != nil {
		return fmt.Errorf("tripRepo.Save: %w", err)
	}

	readVersion := trip.Version
	trip.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx,
		`UPDATE trips SET name = $1, owner_email = $2, flights = $3, hotels = $4,
			start_date = $5, end_date = $6, route = $7, version = version + 1, updated_at = $8
		 WHERE id = $9 AND version = $10`,
		trip.Name, trip.OwnerEmail, flights, hotels,
		trip.StartDate, trip.EndDate, trip.Route, trip.UpdatedAt,
		trip.ID, readVersion)
	if err != nil {
		return fmt.Errorf("tripRepo.Save: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		var exists bool
		if err := r.db.GetContext(ctx, &exists,
			"SELECT EXISTS (SELECT 1 FROM trips WHERE id = $1)", trip.ID); err != nil {
			return fmt.Errorf("tripRepo.Save existence check: %w", err)
		}
		if !exists {
			return domain.ErrTripNotFound
		}
		return domain.ErrTripConflict
	}

	trip.Version = readVersion + 1
	return nil
}

func (r *tripRepo) Delete(ctx context.Context, tripID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM trips WHERE id = $1", tripID)
	if err != nil {
		return fmt.Errorf("tripRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrTripNotFound
	}
	return nil
}

func marshalRecords(trip *domain.Trip) (json.RawMessage, json.RawMessage, error) {
	flights := trip.Flights
	if flights == nil {
		flights = []domain.FlightRecord{}
	}
	hotels := trip.Hotels
	if hotels == nil {
		hotels = []domain.HotelRecord{}
	}

	flightsJSON, err := json.Marshal(flights)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal flights: %w", err)
	}
	hotelsJSON, err := json.Marshal(hotels)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal hotels: %w", err)
	}
	return flightsJSON, hotelsJSON, nil
}

func rowToTrip(row *tripRow) (*domain.Trip, error) {
	trip := &domain.Trip{
		ID:         row.ID,
		Name:       row.Name,
		OwnerEmail: row.OwnerEmail,
		StartDate:  row.StartDate,
		EndDate:    row.EndDate,
		Route:      row.Route,
		Version:    row.Version,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}

	if len(row.Flights) > 0 {
		if err := json.Unmarshal(row.Flights, &trip.Flights); err != nil {
			return nil, fmt.Errorf("unmarshal flights for trip %s: %w", row.ID, err)
		}
	}
	if len(row.Hotels) > 0 {
		if err := json.Unmarshal(row.Hotels, &trip.Hotels); err != nil {
			return nil, fmt.Errorf("unmarshal hotels for trip %s: %w", row.ID, err)
		}
	}
	return trip, nil
}
