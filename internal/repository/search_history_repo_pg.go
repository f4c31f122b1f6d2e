package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/skybooker/internal/domain"
)

type SearchHistoryRepository interface {
	Save(ctx context.Context, record domain.SearchRecord) error
}

type PGSearchHistoryRepository struct {
	db DBConn
}

func NewSearchHistoryRepository(db DBConn) SearchHistoryRepository {
	return &PGSearchHistoryRepository{db: db}
}

func (r *PGSearchHistoryRepository) Save(ctx context.Context, rec domain.SearchRecord) error {
	c := rec.Criteria
	_, err := r.db.Exec(ctx, `INSERT INTO search_history (search_id, user_id, origin, destination, departure_date,
		return_date, adults, children, infants, cabin_class, result_count, execution_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		rec.SearchID, rec.UserID, c.Origin, c.Destination, c.DepartureDate, c.ReturnDate,
		c.Passengers.Adults, c.Passengers.Children, c.Passengers.Infants, string(c.CabinClass),
		rec.ResultCount, rec.ExecutionTime.Milliseconds(), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert search %s: %w", rec.SearchID, err)
	}
	return nil
}

var _ SearchHistoryRepository = (*PGSearchHistoryRepository)(nil)
