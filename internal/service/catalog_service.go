package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/athlete-records-api/internal/models"
)

// CatalogReader reads the fixed lookup catalogs.
type CatalogReader interface {
	ListSports(ctx context.Context) ([]string, error)
	ListBelts(ctx context.Context) ([]string, error)
	ListFaculties(ctx context.Context) ([]models.Faculty, error)
	ListMajors(ctx context.Context) ([]models.Major, error)
}

// CatalogService loads the lookup lists a page needs.
type CatalogService struct {
	repo   CatalogReader
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
}

// NewCatalogService constructs a CatalogService. cache may be nil.
func NewCatalogService(repo CatalogReader, cache *CacheService, ttl time.Duration, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// Load fetches the requested catalogs concurrently. Every catalog is awaited on its own:
// a failed source is reported in Catalogs.Errors and leaves the others populated.
// With no names, all four catalogs are loaded.
func (s *CatalogService) Load(ctx context.Context, names ...string) models.Catalogs {
	if len(names) == 0 {
		names = []string{models.CatalogSports, models.CatalogBelts, models.CatalogFaculties, models.CatalogMajors}
	}

	result := models.Catalogs{
		Sports:    []string{},
		Belts:     []string{},
		Faculties: []models.Faculty{},
		Majors:    []models.Major{},
	}
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs = map[string]string{}
	)
	fail := func(name string, err error) {
		s.logger.Warn("catalog load failed", zap.String("catalog", name), zap.Error(err))
		mu.Lock()
		errs[name] = err.Error()
		mu.Unlock()
	}

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name := name
		if seen[name] {
			continue
		}
		seen[name] = true
		switch name {
		case models.CatalogSports:
			wg.Add(1)
			go func() {
				defer wg.Done()
				var sports []string
				if err := s.cached(ctx, name, &sports, func(ctx context.Context) (err error) {
					sports, err = s.repo.ListSports(ctx)
					return err
				}); err != nil {
					fail(name, err)
					return
				}
				result.Sports = sports
			}()
		case models.CatalogBelts:
			wg.Add(1)
			go func() {
				defer wg.Done()
				var belts []string
				if err := s.cached(ctx, name, &belts, func(ctx context.Context) (err error) {
					belts, err = s.repo.ListBelts(ctx)
					return err
				}); err != nil {
					fail(name, err)
					return
				}
				result.Belts = belts
			}()
		case models.CatalogFaculties:
			wg.Add(1)
			go func() {
				defer wg.Done()
				var faculties []models.Faculty
				if err := s.cached(ctx, name, &faculties, func(ctx context.Context) (err error) {
					faculties, err = s.repo.ListFaculties(ctx)
					return err
				}); err != nil {
					fail(name, err)
					return
				}
				result.Faculties = faculties
			}()
		case models.CatalogMajors:
			wg.Add(1)
			go func() {
				defer wg.Done()
				var majors []models.Major
				if err := s.cached(ctx, name, &majors, func(ctx context.Context) (err error) {
					majors, err = s.repo.ListMajors(ctx)
					return err
				}); err != nil {
					fail(name, err)
					return
				}
				result.Majors = majors
			}()
		}
	}
	wg.Wait()

	if len(errs) > 0 {
		result.Errors = errs
	}
	return result
}

// Majors returns the majors offered by a faculty.
func (s *CatalogService) Majors(ctx context.Context, facultyID int64) ([]models.Major, error) {
	var majors []models.Major
	err := s.cached(ctx, models.CatalogMajors, &majors, func(ctx context.Context) (err error) {
		majors, err = s.repo.ListMajors(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return models.MajorsForFaculty(majors, facultyID), nil
}

func (s *CatalogService) cached(ctx context.Context, name string, dest interface{}, load func(ctx context.Context) error) error {
	_, err := s.cache.Remember(ctx, cacheKeyCatalogPrefix+name, s.ttl, dest, load)
	return err
}
