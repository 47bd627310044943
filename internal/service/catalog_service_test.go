package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/athlete-records-api/internal/models"
	appErrors "github.com/noah-isme/athlete-records-api/pkg/errors"
)

type catalogRepoStub struct {
	mu        sync.Mutex
	sports    []string
	belts     []string
	faculties []models.Faculty
	majors    []models.Major
	errs      map[string]error
	calls     map[string]int
}

func newCatalogRepoStub() *catalogRepoStub {
	return &catalogRepoStub{
		sports:    []string{"Judo", "Karate Do", "Taekwondo", "Wushu"},
		belts:     []string{"Blanco", "Amarillo", "Azul", "Negro"},
		faculties: []models.Faculty{{ID: 1, Name: "Ciencias"}, {ID: 2, Name: "Mecánica"}},
		majors: []models.Major{
			{ID: 10, Name: "Física", FacultyID: 1, FacultyName: "Ciencias"},
			{ID: 11, Name: "Química", FacultyID: 1, FacultyName: "Ciencias"},
			{ID: 20, Name: "Automotriz", FacultyID: 2, FacultyName: "Mecánica"},
		},
		errs:  map[string]error{},
		calls: map[string]int{},
	}
}

func (s *catalogRepoStub) hit(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[name]++
	return s.errs[name]
}

func (s *catalogRepoStub) callCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *catalogRepoStub) ListSports(ctx context.Context) ([]string, error) {
	if err := s.hit(models.CatalogSports); err != nil {
		return nil, err
	}
	return s.sports, nil
}

func (s *catalogRepoStub) ListBelts(ctx context.Context) ([]string, error) {
	if err := s.hit(models.CatalogBelts); err != nil {
		return nil, err
	}
	return s.belts, nil
}

func (s *catalogRepoStub) ListFaculties(ctx context.Context) ([]models.Faculty, error) {
	if err := s.hit(models.CatalogFaculties); err != nil {
		return nil, err
	}
	return s.faculties, nil
}

func (s *catalogRepoStub) ListMajors(ctx context.Context) ([]models.Major, error) {
	if err := s.hit(models.CatalogMajors); err != nil {
		return nil, err
	}
	return s.majors, nil
}

// memoryCacheStub is a JSON round-tripping stand-in for the Redis repository.
type memoryCacheStub struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCacheStub() *memoryCacheStub {
	return &memoryCacheStub{entries: map[string][]byte{}}
}

func (c *memoryCacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	raw, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.entries[key] = raw
	c.mu.Unlock()
	return nil
}

func (c *memoryCacheStub) DeleteByPattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.entries {
		if key == pattern || (prefix != pattern && strings.HasPrefix(key, prefix)) {
			delete(c.entries, key)
		}
	}
	return nil
}

func (c *memoryCacheStub) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

func newTestCache(repo CacheRepository) *CacheService {
	return NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
}

func TestCatalogLoadAll(t *testing.T) {
	repo := newCatalogRepoStub()
	svc := NewCatalogService(repo, nil, time.Minute, zap.NewNop())

	catalogs := svc.Load(context.Background())

	assert.Equal(t, repo.sports, catalogs.Sports)
	assert.Equal(t, repo.belts, catalogs.Belts)
	assert.Equal(t, repo.faculties, catalogs.Faculties)
	assert.Equal(t, repo.majors, catalogs.Majors)
	assert.Nil(t, catalogs.Errors)
}

func TestCatalogLoadReportsEachFailureSeparately(t *testing.T) {
	repo := newCatalogRepoStub()
	repo.errs[models.CatalogBelts] = errors.New("relation \"cinta_tipos\" does not exist")
	svc := NewCatalogService(repo, nil, time.Minute, zap.NewNop())

	catalogs := svc.Load(context.Background())

	require.Len(t, catalogs.Errors, 1)
	assert.Contains(t, catalogs.Errors[models.CatalogBelts], "cinta_tipos")
	assert.Empty(t, catalogs.Belts)
	assert.NotNil(t, catalogs.Belts)
	assert.Len(t, catalogs.Sports, 4)
	assert.Len(t, catalogs.Faculties, 2)
	assert.Len(t, catalogs.Majors, 3)
}

func TestCatalogLoadOnlyRequestedNames(t *testing.T) {
	repo := newCatalogRepoStub()
	svc := NewCatalogService(repo, nil, time.Minute, zap.NewNop())

	catalogs := svc.Load(context.Background(), models.CatalogSports, models.CatalogBelts, models.CatalogSports)

	assert.Len(t, catalogs.Sports, 4)
	assert.Len(t, catalogs.Belts, 4)
	assert.Empty(t, catalogs.Majors)
	assert.Equal(t, 1, repo.callCount(models.CatalogSports))
	assert.Equal(t, 0, repo.callCount(models.CatalogFaculties))
	assert.Equal(t, 0, repo.callCount(models.CatalogMajors))
}

func TestCatalogLoadServesFromCache(t *testing.T) {
	repo := newCatalogRepoStub()
	store := newMemoryCacheStub()
	svc := NewCatalogService(repo, newTestCache(store), time.Minute, zap.NewNop())

	first := svc.Load(context.Background())
	second := svc.Load(context.Background())

	assert.Equal(t, first.Majors, second.Majors)
	assert.Equal(t, first.Sports, second.Sports)
	assert.Equal(t, 1, repo.callCount(models.CatalogMajors))
	assert.Equal(t, 1, repo.callCount(models.CatalogSports))
	assert.True(t, store.has(cacheKeyCatalogPrefix+models.CatalogFaculties))
}

func TestCatalogFailuresAreNotCached(t *testing.T) {
	repo := newCatalogRepoStub()
	repo.errs[models.CatalogSports] = errors.New("timeout")
	store := newMemoryCacheStub()
	svc := NewCatalogService(repo, newTestCache(store), time.Minute, zap.NewNop())

	svc.Load(context.Background(), models.CatalogSports)

	assert.False(t, store.has(cacheKeyCatalogPrefix+models.CatalogSports))
}

func TestCatalogMajorsByFaculty(t *testing.T) {
	svc := NewCatalogService(newCatalogRepoStub(), nil, time.Minute, zap.NewNop())

	majors, err := svc.Majors(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, majors, 2)
	for _, m := range majors {
		assert.Equal(t, int64(1), m.FacultyID)
	}

	none, err := svc.Majors(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}
