package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/athlete-records-api/internal/models"
)

// CatalogRepository reads the fixed lookup catalogs from PostgreSQL.
type CatalogRepository struct {
	db       *sqlx.DB
	observer CallObserver
}

// NewCatalogRepository constructs a CatalogRepository.
func NewCatalogRepository(db *sqlx.DB, observer CallObserver) *CatalogRepository {
	return &CatalogRepository{db: db, observer: observerOrNoop(observer)}
}

// ListSports returns sport names ordered alphabetically.
func (r *CatalogRepository) ListSports(ctx context.Context) (sports []string, err error) {
	start := time.Now()
	defer func() { observe(r.observer, TableSports, start, err) }()

	sports = make([]string, 0)
	if err = r.db.SelectContext(ctx, &sports, `SELECT nombre FROM deportes ORDER BY nombre`); err != nil {
		return nil, fmt.Errorf("list sports: %w", err)
	}
	return sports, nil
}

// ListBelts returns belt colours in rank order.
func (r *CatalogRepository) ListBelts(ctx context.Context) (belts []string, err error) {
	start := time.Now()
	defer func() { observe(r.observer, TableBelts, start, err) }()

	belts = make([]string, 0)
	if err = r.db.SelectContext(ctx, &belts, `SELECT color FROM cinta_tipos ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list belts: %w", err)
	}
	return belts, nil
}

// ListFaculties returns the faculties served by get_facultades.
func (r *CatalogRepository) ListFaculties(ctx context.Context) (faculties []models.Faculty, err error) {
	start := time.Now()
	defer func() { observe(r.observer, ProcGetFaculties, start, err) }()

	faculties = make([]models.Faculty, 0)
	if err = r.db.SelectContext(ctx, &faculties, `SELECT id, nombre FROM get_facultades()`); err != nil {
		return nil, gatewayFailure("list faculties", err)
	}
	return faculties, nil
}

// ListMajors returns every major with its faculty.
func (r *CatalogRepository) ListMajors(ctx context.Context) (majors []models.Major, err error) {
	start := time.Now()
	defer func() { observe(r.observer, ProcGetMajors, start, err) }()

	majors = make([]models.Major, 0)
	if err = r.db.SelectContext(ctx, &majors, `SELECT id, nombre, facultad_id, facultad_nombre FROM get_carreras_con_facultad()`); err != nil {
		return nil, gatewayFailure("list majors", err)
	}
	return majors, nil
}
