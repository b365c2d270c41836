package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bhoomisetu/search/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// Compile-time check: PostgresRepository implements PropertyStore.
var _ PropertyStore = (*PostgresRepository)(nil)

const propertyColumns = `
	id, title, description, property_type, listing_type, status,
	price, area, bedrooms, bathrooms,
	address, city, locality, landmark, latitude, longitude,
	features, images, views_count, interested_count, is_featured,
	created_at, updated_at, deleted_at`

// PostgresRepository handles database operations
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement does not exist" errors
	if !strings.Contains(dsn, "?") {
		dsn += "?prefer_simple_protocol=true"
	} else {
		dsn += "&prefer_simple_protocol=true"
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// SearchWithFilters returns live properties matching the predicate set
func (r *PostgresRepository) SearchWithFilters(ctx context.Context, filters *HardFilters) ([]model.Property, error) {
	whereClauses := []string{"status = 'live'", "deleted_at IS NULL"}
	args := []interface{}{}
	argIndex := 1

	if filters != nil {
		if filters.ListingType != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("listing_type = $%d", argIndex))
			args = append(args, *filters.ListingType)
			argIndex++
		}
		if filters.PropertyType != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("property_type = $%d", argIndex))
			args = append(args, *filters.PropertyType)
			argIndex++
		}
		if filters.City != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("city ILIKE $%d", argIndex))
			args = append(args, *filters.City+"%")
			argIndex++
		}
		if filters.Locality != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("locality ILIKE $%d", argIndex))
			args = append(args, "%"+*filters.Locality+"%")
			argIndex++
		}
		if filters.Area != nil {
			// "area" is colloquial, so match loosely across location fields
			whereClauses = append(whereClauses, fmt.Sprintf(
				"(locality ILIKE $%d OR landmark ILIKE $%d OR address ILIKE $%d)",
				argIndex, argIndex, argIndex,
			))
			args = append(args, "%"+*filters.Area+"%")
			argIndex++
		}
		if filters.MinPrice != nil && filters.MaxPrice != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("price BETWEEN $%d AND $%d", argIndex, argIndex+1))
			args = append(args, *filters.MinPrice, *filters.MaxPrice)
			argIndex += 2
		} else if filters.MinPrice != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("price >= $%d", argIndex))
			args = append(args, *filters.MinPrice)
			argIndex++
		} else if filters.MaxPrice != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("price <= $%d", argIndex))
			args = append(args, *filters.MaxPrice)
			argIndex++
		}
		if filters.MinArea != nil && filters.MaxArea != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("area BETWEEN $%d AND $%d", argIndex, argIndex+1))
			args = append(args, *filters.MinArea, *filters.MaxArea)
			argIndex += 2
		} else if filters.MinArea != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("area >= $%d", argIndex))
			args = append(args, *filters.MinArea)
			argIndex++
		} else if filters.MaxArea != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("area <= $%d", argIndex))
			args = append(args, *filters.MaxArea)
			argIndex++
		}
		if filters.Bedrooms != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("bedrooms = $%d", argIndex))
			args = append(args, *filters.Bedrooms)
			argIndex++
		}
		if filters.Bathrooms != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("bathrooms = $%d", argIndex))
			args = append(args, *filters.Bathrooms)
			argIndex++
		}
	}

	query := fmt.Sprintf(
		"SELECT %s FROM properties WHERE %s",
		propertyColumns,
		strings.Join(whereClauses, " AND "),
	)

	var properties []model.Property
	if err := r.db.SelectContext(ctx, &properties, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch properties: %w", err)
	}

	return properties, nil
}

// FindByPriceRange returns live properties with price in [minPrice, maxPrice]
func (r *PostgresRepository) FindByPriceRange(ctx context.Context, minPrice, maxPrice float64, limit int) ([]model.Property, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM properties
		WHERE status = 'live' AND deleted_at IS NULL AND price BETWEEN $1 AND $2
		LIMIT $3
	`, propertyColumns)

	var properties []model.Property
	if err := r.db.SelectContext(ctx, &properties, query, minPrice, maxPrice, limit); err != nil {
		return nil, fmt.Errorf("failed to fetch properties by price range: %w", err)
	}

	return properties, nil
}

// BatchUpdateEmbeddings updates embedding vectors for multiple properties
func (r *PostgresRepository) BatchUpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string) {
	success := 0
	var errors []string

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		errors = append(errors, fmt.Sprintf("failed to start transaction: %v", err))
		return success, errors
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `UPDATE properties SET embedding = $1, updated_at = NOW() WHERE id = $2`)
	if err != nil {
		errors = append(errors, fmt.Sprintf("failed to prepare statement: %v", err))
		return success, errors
	}
	defer stmt.Close()

	for _, item := range items {
		vec := pgvector.NewVector(item.Embedding)
		if _, err := stmt.ExecContext(ctx, vec, item.PropertyID); err != nil {
			errors = append(errors, fmt.Sprintf("property %s: %v", item.PropertyID, err))
			continue
		}
		success++
	}

	if err := tx.Commit(); err != nil {
		errors = append(errors, fmt.Sprintf("failed to commit transaction: %v", err))
		return 0, errors
	}

	return success, errors
}
