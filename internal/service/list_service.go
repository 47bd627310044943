package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/athlete-records-api/internal/models"
	appErrors "github.com/noah-isme/athlete-records-api/pkg/errors"
)

// StudentListReader reads the denormalized student list.
type StudentListReader interface {
	ListStudents(ctx context.Context) ([]models.StudentListItem, error)
}

// StudentDeleter removes a student by internal id.
type StudentDeleter interface {
	DeleteStudent(ctx context.Context, id string) error
}

// ListPage is the state of the list page: every loaded row, the rows passing the filter,
// and the filter options. Warnings name the sources that failed to load.
type ListPage struct {
	Rows     []models.StudentListItem `json:"rows"`
	Visible  []models.StudentListItem `json:"visible"`
	Filter   models.ListFilter        `json:"filter"`
	Sports   []string                 `json:"sports"`
	Belts    []string                 `json:"belts"`
	Warnings map[string]string        `json:"warnings,omitempty"`
}

// Remove drops the row with the given internal id from the page and refilters.
func (p *ListPage) Remove(id string) {
	rows := make([]models.StudentListItem, 0, len(p.Rows))
	for _, row := range p.Rows {
		if row.ID != id {
			rows = append(rows, row)
		}
	}
	p.Rows = rows
	p.Visible = Filter(rows, p.Filter)
}

// ListService loads the student list and applies the in-memory filter.
type ListService struct {
	list     StudentListReader
	deleter  StudentDeleter
	catalogs *CatalogService
	cache    *CacheService
	ttl      time.Duration
	logger   *zap.Logger
}

// NewListService constructs a ListService. cache may be nil.
func NewListService(list StudentListReader, deleter StudentDeleter, catalogs *CatalogService, cache *CacheService, ttl time.Duration, logger *zap.Logger) *ListService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListService{list: list, deleter: deleter, catalogs: catalogs, cache: cache, ttl: ttl, logger: logger}
}

// Load fetches the list rows and the sport and belt catalogs concurrently and filters the
// rows. A failed source leaves its part empty and is reported in Warnings.
func (s *ListService) Load(ctx context.Context, filter models.ListFilter) (*ListPage, bool) {
	page := &ListPage{
		Rows:   []models.StudentListItem{},
		Filter: filter,
		Sports: []string{},
		Belts:  []string{},
	}
	warnings := map[string]string{}

	var (
		wg       sync.WaitGroup
		cacheHit bool
		catalogs models.Catalogs
		listErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		var rows []models.StudentListItem
		cacheHit, listErr = s.cache.Remember(ctx, cacheKeyStudentList, s.ttl, &rows, func(ctx context.Context) (err error) {
			rows, err = s.list.ListStudents(ctx)
			return err
		})
		if listErr == nil {
			page.Rows = rows
		}
	}()
	go func() {
		defer wg.Done()
		catalogs = s.catalogs.Load(ctx, models.CatalogSports, models.CatalogBelts)
	}()
	wg.Wait()

	if listErr != nil {
		s.logger.Warn("student list load failed", zap.Error(listErr))
		warnings["students"] = listErr.Error()
	}
	page.Sports = catalogs.Sports
	page.Belts = catalogs.Belts
	for name, msg := range catalogs.Errors {
		warnings[name] = msg
	}
	if len(warnings) > 0 {
		page.Warnings = warnings
	}
	page.Visible = Filter(page.Rows, filter)
	return page, cacheHit
}

// Filter returns the rows passing all three predicates. The search text matches the name
// case-insensitively or the national ID as typed; sport and belt must be exact members.
func Filter(rows []models.StudentListItem, filter models.ListFilter) []models.StudentListItem {
	visible := make([]models.StudentListItem, 0, len(rows))
	search := strings.ToLower(filter.Search)
	for _, row := range rows {
		if filter.Search != "" &&
			!strings.Contains(strings.ToLower(row.FullName), search) &&
			!strings.Contains(row.NationalID, filter.Search) {
			continue
		}
		if filter.Sport != "" && !contains(row.Sports, filter.Sport) {
			continue
		}
		if filter.Belt != "" && !contains(row.Belts, filter.Belt) {
			continue
		}
		visible = append(visible, row)
	}
	return visible
}

// Delete removes a student after explicit confirmation. Nothing is touched unless the data
// service reports success.
func (s *ListService) Delete(ctx context.Context, id string, confirmed bool) error {
	if _, err := uuid.Parse(id); err != nil {
		return appErrors.Validation("student id must be a UUID")
	}
	if !confirmed {
		return appErrors.Clone(appErrors.ErrConfirmationRequired, "confirm the deletion of this student")
	}
	if err := s.deleter.DeleteStudent(ctx, id); err != nil {
		s.logger.Error("delete student failed", zap.String("student_id", id), zap.Error(err))
		return gatewayError(err)
	}
	_ = s.cache.Invalidate(ctx, cacheKeyStudentList)
	return nil
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

// DeleteFromPage deletes a student and, only once the data service has succeeded, drops
// its row from the page. A failed delete leaves the page as it was.
func (s *ListService) DeleteFromPage(ctx context.Context, page *ListPage, id string, confirmed bool) error {
	if err := s.Delete(ctx, id, confirmed); err != nil {
		return err
	}
	page.Remove(id)
	return nil
}
