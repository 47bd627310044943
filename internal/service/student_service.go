package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/athlete-records-api/internal/dto"
	"github.com/noah-isme/athlete-records-api/internal/form"
	"github.com/noah-isme/athlete-records-api/internal/models"
	appErrors "github.com/noah-isme/athlete-records-api/pkg/errors"
)

// StudentGateway is the set of student procedures the services call.
type StudentGateway interface {
	CreateFullStudent(ctx context.Context, params dto.CreateStudentParams) (string, error)
	UpdateFullStudent(ctx context.Context, params dto.UpdateStudentParams) error
	GetStudentFullDetails(ctx context.Context, nationalID string) (json.RawMessage, error)
}

// SearchResult tells the home page where to go for a national ID.
type SearchResult struct {
	Found      bool   `json:"found"`
	NationalID string `json:"national_id"`
	Path       string `json:"path"`
}

// SubmitResult is returned by a successful create or edit.
type SubmitResult struct {
	NationalID string `json:"national_id"`
	Path       string `json:"path"`
}

// StudentService serves the detail page, the home search and the stateless form endpoints.
type StudentService struct {
	gateway  StudentGateway
	catalogs *CatalogService
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

// NewStudentService constructs a StudentService.
func NewStudentService(gateway StudentGateway, catalogs *CatalogService, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{gateway: gateway, catalogs: catalogs, cache: cache, metrics: metrics, logger: logger, now: time.Now}
}

// DetailPath is the detail page location of a student.
func DetailPath(nationalID string) string {
	return "/students/" + url.PathEscape(nationalID)
}

// Search resolves the home page lookup.
func (s *StudentService) Search(ctx context.Context, nationalID string) (*SearchResult, error) {
	nationalID = strings.TrimSpace(nationalID)
	if nationalID == "" {
		return nil, appErrors.Validation("please enter a valid national ID")
	}
	raw, err := s.gateway.GetStudentFullDetails(ctx, nationalID)
	if err != nil {
		s.logger.Warn("student search failed", zap.String("national_id", nationalID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrGateway.Code, appErrors.ErrGateway.Status, "connection error, try again")
	}
	if _, err := DecodeAggregate(raw); err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no student is registered with that national ID")
		}
		return nil, err
	}
	return &SearchResult{Found: true, NationalID: nationalID, Path: DetailPath(nationalID)}, nil
}

// Aggregate loads and decodes the full record of a student.
func (s *StudentService) Aggregate(ctx context.Context, nationalID string) (*models.Aggregate, error) {
	nationalID = strings.TrimSpace(nationalID)
	if nationalID == "" {
		return nil, appErrors.Validation("national ID is required")
	}
	raw, err := s.gateway.GetStudentFullDetails(ctx, nationalID)
	if err != nil {
		s.logger.Warn("load student failed", zap.String("national_id", nationalID), zap.Error(err))
		return nil, gatewayError(err)
	}
	agg, err := DecodeAggregate(raw)
	if err != nil {
		if !errors.Is(err, appErrors.ErrNotFound) {
			s.logger.Error("decode student aggregate failed", zap.String("national_id", nationalID), zap.Error(err))
			return nil, appErrors.Wrap(err, appErrors.ErrGateway.Code, appErrors.ErrGateway.Status, "unexpected student document")
		}
		return nil, err
	}
	return agg, nil
}

// Detail returns the display model of a student.
func (s *StudentService) Detail(ctx context.Context, nationalID string) (*StudentView, error) {
	agg, err := s.Aggregate(ctx, nationalID)
	if err != nil {
		return nil, err
	}
	view := ToView(agg, s.now())
	return &view, nil
}

// Create registers a student from a complete form state.
func (s *StudentService) Create(ctx context.Context, state form.WorkingCopy) (*SubmitResult, error) {
	f := form.NewCreate(s.catalogs.Load(ctx, models.CatalogMajors))
	if err := f.ApplyWorkingCopy(state); err != nil {
		return nil, err
	}
	return s.submit(ctx, f)
}

// Update edits a student. The baseline is the record as loaded now; child rows carrying
// an id must belong to it and loaded rows missing from state are deleted.
func (s *StudentService) Update(ctx context.Context, nationalID string, state form.WorkingCopy) (*SubmitResult, error) {
	agg, err := s.Aggregate(ctx, nationalID)
	if err != nil {
		return nil, err
	}
	f := form.NewEdit(s.catalogs.Load(ctx, models.CatalogMajors), agg)
	if err := f.ApplyWorkingCopy(state); err != nil {
		return nil, err
	}
	return s.submit(ctx, f)
}

func (s *StudentService) submit(ctx context.Context, f *form.Form) (*SubmitResult, error) {
	sub, err := f.BeginSubmit()
	if err != nil {
		return nil, err
	}
	sendErr := sub.Send(ctx, s.gateway)
	s.metrics.RecordFormSubmission(string(sub.Mode), sendErr)
	if err := f.CompleteSubmit(sendErr); err != nil {
		s.logger.Warn("student submit failed", zap.String("mode", string(sub.Mode)), zap.String("national_id", sub.NationalID), zap.Error(sendErr))
		return nil, err
	}
	_ = s.cache.Invalidate(ctx, cacheKeyStudentList)
	return &SubmitResult{NationalID: sub.NationalID, Path: DetailPath(sub.NationalID)}, nil
}

func gatewayError(err error) error {
	return form.TranslateGatewayError(err)
}
