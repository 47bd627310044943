package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/athlete-records-api/internal/models"
)

// StudentListRepository reads the denormalized student list view.
type StudentListRepository struct {
	db       *sqlx.DB
	observer CallObserver
}

// NewStudentListRepository constructs a StudentListRepository.
func NewStudentListRepository(db *sqlx.DB, observer CallObserver) *StudentListRepository {
	return &StudentListRepository{db: db, observer: observerOrNoop(observer)}
}

type studentListRow struct {
	ID       string         `db:"id"`
	Cedula   string         `db:"cedula"`
	Nombre   string         `db:"nombres_apellidos"`
	Edad     sql.NullInt64  `db:"edad"`
	Carrera  sql.NullString `db:"carrera"`
	Deportes textArray      `db:"deportes"`
	Cintas   textArray      `db:"cintas"`
}

// textArray scans a text[] whose elements may be NULL, which pq.StringArray rejects.
type textArray []sql.NullString

// Scan implements sql.Scanner.
func (a *textArray) Scan(src interface{}) error {
	var values []sql.NullString
	if err := pq.Array(&values).Scan(src); err != nil {
		return err
	}
	*a = values
	return nil
}

// ListStudents returns one row per student ordered by name.
func (r *StudentListRepository) ListStudents(ctx context.Context) (items []models.StudentListItem, err error) {
	start := time.Now()
	defer func() { observe(r.observer, ViewStudentsList, start, err) }()

	var rows []studentListRow
	query := `SELECT id::text AS id, cedula, nombres_apellidos, edad, carrera, deportes, cintas
        FROM vista_lista_estudiantes_completa ORDER BY nombres_apellidos`
	if err = r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	items = make([]models.StudentListItem, 0, len(rows))
	for _, row := range rows {
		item := models.StudentListItem{
			ID:         row.ID,
			NationalID: row.Cedula,
			FullName:   row.Nombre,
			Major:      row.Carrera.String,
			Sports:     compactStrings(row.Deportes),
			Belts:      compactStrings(row.Cintas),
		}
		if row.Edad.Valid {
			age := int(row.Edad.Int64)
			item.Age = &age
		}
		items = append(items, item)
	}
	return items, nil
}

// compactStrings drops the NULL and empty entries array_agg produces for missing joins.
func compactStrings(values textArray) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		if v.Valid && v.String != "" {
			result = append(result, v.String)
		}
	}
	return result
}
