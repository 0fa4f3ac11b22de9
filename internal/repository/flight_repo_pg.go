package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rannerhq/ranner/internal/domain"
)

// Filter narrows FindAll. Zero-value fields are ignored; an empty filter
// returns every record in insertion order.
type Filter struct {
	ID     string
	TripID string
}

type FlightRepository interface {
	Create(ctx context.Context, flight *domain.Flight) error
	FindAll(ctx context.Context, filter Filter) ([]domain.Flight, error)
	ListByTrip(ctx context.Context, tripID string) ([]domain.Flight, error)
	GetByID(ctx context.Context, id string) (*domain.Flight, error)
	Delete(ctx context.Context, id string) error
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `id, trip_id, owner_username, origin, destination, departure_date, return_date, airline, flight_number, price_amount, price_currency, created_at, updated_at`

// Create checks the referenced trip and inserts inside one transaction so
// no partially created record is ever visible.
func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var tripExists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM trips WHERE id=$1)`, flight.TripID).Scan(&tripExists); err != nil {
		return err
	}
	if !tripExists {
		return fmt.Errorf("trip %s: %w", flight.TripID, domain.ErrNotFound)
	}

	if err := tx.QueryRow(ctx, `INSERT INTO flights (id, trip_id, owner_username, origin, destination, departure_date, return_date, airline, flight_number, price_amount, price_currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`,
		flight.ID, flight.TripID, flight.Owner, flight.Origin, flight.Destination, flight.DepartureDate, flight.ReturnDate,
		flight.Airline, flight.FlightNumber, flight.PriceAmount, flight.PriceCurrency).
		Scan(&flight.CreatedAt, &flight.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGFlightRepository) FindAll(ctx context.Context, filter Filter) ([]domain.Flight, error) {
	query := `SELECT ` + flightColumns + ` FROM flights`
	args := make([]any, 0, 2)
	where := ""
	if filter.ID != "" {
		args = append(args, filter.ID)
		where = fmt.Sprintf(" WHERE id=$%d", len(args))
	}
	if filter.TripID != "" {
		args = append(args, filter.TripID)
		clause := fmt.Sprintf("trip_id=$%d", len(args))
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
	}
	query += where + ` ORDER BY seq`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanFlights(rows)
}

func (r *PGFlightRepository) ListByTrip(ctx context.Context, tripID string) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights WHERE trip_id=$1 ORDER BY seq`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanFlights(rows)
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id)
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.TripID, &f.Owner, &f.Origin, &f.Destination, &f.DepartureDate, &f.ReturnDate,
		&f.Airline, &f.FlightNumber, &f.PriceAmount, &f.PriceCurrency, &f.CreatedAt, &f.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("flight %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return &f, nil
}

func (r *PGFlightRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM flights WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("flight %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanFlights(rows pgx.Rows) ([]domain.Flight, error) {
	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := rows.Scan(&f.ID, &f.TripID, &f.Owner, &f.Origin, &f.Destination, &f.DepartureDate, &f.ReturnDate,
			&f.Airline, &f.FlightNumber, &f.PriceAmount, &f.PriceCurrency, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

var _ FlightRepository = (*PGFlightRepository)(nil)
