package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/athlete-records-api/internal/form"
	"github.com/noah-isme/athlete-records-api/internal/models"
	appErrors "github.com/noah-isme/athlete-records-api/pkg/errors"
)

// FormState is a form page as returned to clients.
type FormState struct {
	ID string `json:"id"`
	form.View
}

// RowFields carries the editable fields of one child row in a request.
type RowFields struct {
	Category  string           `json:"category"`
	Name      string           `json:"name"`
	Unit      string           `json:"unit"`
	Result    string           `json:"result"`
	Date      string           `json:"date"`
	Placement models.Placement `json:"placement"`
}

// FormSessionService keeps one form per page visit in memory. Pages expire after the
// configured TTL of inactivity and are dropped when the client navigates away.
type FormSessionService struct {
	store    *sessionStore
	catalogs *CatalogService
	students *StudentService
	gateway  form.Gateway
	metrics  *MetricsService
	cache    *CacheService
	logger   *zap.Logger
}

// NewFormSessionService constructs a FormSessionService.
func NewFormSessionService(catalogs *CatalogService, students *StudentService, gateway form.Gateway, cache *CacheService, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *FormSessionService {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FormSessionService{
		store:    newSessionStore(ttl),
		catalogs: catalogs,
		students: students,
		gateway:  gateway,
		metrics:  metrics,
		cache:    cache,
		logger:   logger,
	}
}

// Open starts a form page: a registration form when nationalID is blank, otherwise an edit
// form populated from the student's current record.
func (s *FormSessionService) Open(ctx context.Context, nationalID string) (*FormState, error) {
	s.store.Sweep()

	catalogs := s.catalogs.Load(ctx)
	var f *form.Form
	if nationalID = strings.TrimSpace(nationalID); nationalID == "" {
		f = form.NewCreate(catalogs)
	} else {
		agg, err := s.students.Aggregate(ctx, nationalID)
		if err != nil {
			return nil, err
		}
		f = form.NewEdit(catalogs, agg)
	}

	session := &formSession{id: uuid.NewString(), form: f}
	s.store.Save(session)
	s.metrics.SetOpenFormSessions(s.store.Len())
	return session.state(), nil
}

// Get returns the current state of a form page.
func (s *FormSessionService) Get(id string) (*FormState, error) {
	session, err := s.session(id)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.state(), nil
}

// UpdateField sets one field of a section.
func (s *FormSessionService) UpdateField(id string, section form.Section, field, value string) (*FormState, error) {
	return s.mutate(id, func(f *form.Form) error {
		return f.UpdateField(section, field, value)
	})
}

// AddPhysicalTest appends a default physical test row.
func (s *FormSessionService) AddPhysicalTest(id string) (*FormState, error) {
	return s.mutate(id, func(f *form.Form) error {
		f.AddPhysicalTest()
		return nil
	})
}

// SetPhysicalTest replaces the physical test at index.
func (s *FormSessionService) SetPhysicalTest(id string, index int, fields RowFields) (*FormState, error) {
	return s.mutate(id, func(f *form.Form) error {
		return f.SetPhysicalTest(index, physicalTestFields(fields))
	})
}

// RemovePhysicalTest drops the physical test at index.
func (s *FormSessionService) RemovePhysicalTest(id string, index int) (*FormState, error) {
	return s.mutate(id, func(f *form.Form) error {
		return f.RemovePhysicalTest(index)
	})
}

// AddCompetitionRecord appends a default competition record row.
func (s *FormSessionService) AddCompetitionRecord(id string) (*FormState, error) {
	return s.mutate(id, func(f *form.Form) error {
		f.AddCompetitionRecord()
		return nil
	})
}

// SetCompetitionRecord replaces the competition record at index.
func (s *FormSessionService) SetCompetitionRecord(id string, index int, fields RowFields) (*FormState, error) {
	return s.mutate(id, func(f *form.Form) error {
		return f.SetCompetitionRecord(index, competitionRecordFields(fields))
	})
}

// RemoveCompetitionRecord drops the competition record at index.
func (s *FormSessionService) RemoveCompetitionRecord(id string, index int) (*FormState, error) {
	return s.mutate(id, func(f *form.Form) error {
		return f.RemoveCompetitionRecord(index)
	})
}

// Submit sends the form to the data service. The session lock is released during the
// call; the Submitting phase rejects concurrent submits and the form stays readable.
// A successful submit ends the page.
func (s *FormSessionService) Submit(ctx context.Context, id string) (*SubmitResult, error) {
	session, err := s.session(id)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	sub, err := session.form.BeginSubmit()
	session.mu.Unlock()
	if err != nil {
		return nil, err
	}

	sendErr := sub.Send(ctx, s.gateway)
	s.metrics.RecordFormSubmission(string(sub.Mode), sendErr)

	session.mu.Lock()
	err = session.form.CompleteSubmit(sendErr)
	session.mu.Unlock()
	if err != nil {
		s.logger.Warn("form submit failed", zap.String("form_id", id), zap.String("mode", string(sub.Mode)), zap.Error(sendErr))
		return nil, err
	}

	_ = s.cache.Invalidate(ctx, cacheKeyStudentList)
	s.store.Delete(id)
	s.metrics.SetOpenFormSessions(s.store.Len())
	return &SubmitResult{NationalID: sub.NationalID, Path: DetailPath(sub.NationalID)}, nil
}

// Close discards a form page. Closing an unknown page is not an error.
func (s *FormSessionService) Close(id string) {
	s.store.Delete(id)
	s.metrics.SetOpenFormSessions(s.store.Len())
}

func (s *FormSessionService) session(id string) (*formSession, error) {
	session, ok := s.store.Get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "form not found or expired")
	}
	return session, nil
}

func (s *FormSessionService) mutate(id string, apply func(f *form.Form) error) (*FormState, error) {
	session, err := s.session(id)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	if phase := session.form.Phase(); phase != form.PhaseReady {
		return nil, appErrors.Clone(appErrors.ErrConflict, "form cannot be edited while "+string(phase))
	}
	if err := apply(session.form); err != nil {
		return nil, err
	}
	return session.state(), nil
}

func physicalTestFields(fields RowFields) form.PhysicalTest {
	return form.PhysicalTest{
		Category: models.TestCategory(fields.Category),
		Name:     fields.Name,
		Unit:     fields.Unit,
		Result:   fields.Result,
	}
}

func competitionRecordFields(fields RowFields) form.CompetitionRecord {
	return form.CompetitionRecord{
		Name:      fields.Name,
		Date:      fields.Date,
		Result:    models.CompetitionResult(fields.Result),
		Placement: fields.Placement,
	}
}

type formSession struct {
	id      string
	mu      sync.Mutex
	form    *form.Form
	touched time.Time
}

// state must be called with mu held or before the session is shared.
func (fs *formSession) state() *FormState {
	return &FormState{ID: fs.id, View: fs.form.View()}
}

type sessionStore struct {
	ttl   time.Duration
	now   func() time.Time
	mu    sync.RWMutex
	items map[string]*formSession
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]*formSession),
	}
}

func (s *sessionStore) Save(session *formSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.touched = s.now()
	s.items[session.id] = session
}

func (s *sessionStore) Get(id string) (*formSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.items[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.Sub(session.touched) > s.ttl {
		delete(s.items, id)
		return nil, false
	}
	session.touched = now
	return session, true
}

func (s *sessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

func (s *sessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Sweep drops every expired session.
func (s *sessionStore) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, session := range s.items {
		if now.Sub(session.touched) > s.ttl {
			delete(s.items, id)
		}
	}
}
