package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/workforce-api/internal/dto"
	"github.com/noah-isme/workforce-api/internal/models"
	"github.com/noah-isme/workforce-api/pkg/dateutil"
	appErrors "github.com/noah-isme/workforce-api/pkg/errors"
	"github.com/noah-isme/workforce-api/pkg/export"
)

type rosterRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// RecurrenceConfig bounds what the recurrence endpoints accept.
type RecurrenceConfig struct {
	MaxOccurrences int
}

// RecurrenceService exposes the occurrence generator to API clients.
type RecurrenceService struct {
	generator *OccurrenceGenerator
	csv       rosterRenderer
	pdf       rosterRenderer
	validator *validator.Validate
	logger    *zap.Logger
	cfg       RecurrenceConfig
}

// NewRecurrenceService wires the recurrence façade.
func NewRecurrenceService(generator *OccurrenceGenerator, csv, pdf rosterRenderer, validate *validator.Validate, logger *zap.Logger, cfg RecurrenceConfig) *RecurrenceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxOccurrences <= 0 {
		cfg.MaxOccurrences = 365
	}
	return &RecurrenceService{generator: generator, csv: csv, pdf: pdf, validator: validate, logger: logger, cfg: cfg}
}

// Validate reports every problem with the pattern. Invalid input is a normal answer here, not an error.
func (s *RecurrenceService) Validate(ctx context.Context, req dto.RecurrencePatternRequest) dto.ValidatePatternResponse {
	pattern, problems := s.parse(req)
	if len(problems) > 0 {
		return dto.ValidatePatternResponse{Valid: false, Problems: problems}
	}
	return dto.ValidatePatternResponse{Valid: true, Description: DescribePattern(pattern)}
}

// Expand returns the occurrences of a valid pattern.
func (s *RecurrenceService) Expand(ctx context.Context, req dto.RecurrencePatternRequest) (*dto.ExpandPatternResponse, error) {
	pattern, err := s.Pattern(req)
	if err != nil {
		return nil, err
	}
	items, err := s.generate(pattern)
	if err != nil {
		return nil, err
	}
	return &dto.ExpandPatternResponse{Description: DescribePattern(pattern), Occurrences: items}, nil
}

// ToggleException adds or removes an exception and regenerates the occurrences.
func (s *RecurrenceService) ToggleException(ctx context.Context, req dto.ToggleExceptionRequest) (*dto.ToggleExceptionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exception payload")
	}
	date, err := dateutil.ParseDate(strings.TrimSpace(req.Date))
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("date %q must be YYYY-MM-DD or RFC3339", req.Date))
	}
	pattern, err := s.Pattern(req.Pattern)
	if err != nil {
		return nil, err
	}

	switch req.Action {
	case dto.ExceptionAdd:
		pattern = AddException(pattern, date)
	case dto.ExceptionRemove:
		pattern = RemoveException(pattern, date)
	}

	items, err := s.generate(pattern)
	if err != nil {
		return nil, err
	}
	return &dto.ToggleExceptionResponse{
		Pattern:     PatternToRequest(pattern),
		Description: DescribePattern(pattern),
		Occurrences: items,
	}, nil
}

// Export renders the occurrences as a roster sheet. Exception rows are marked and muted.
func (s *RecurrenceService) Export(ctx context.Context, req dto.ExportRecurrenceRequest, format dto.ExportFormat) (*dto.ExportResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload")
	}
	var renderer rosterRenderer
	switch format {
	case dto.ExportFormatCSV, "":
		renderer = s.csv
	case dto.ExportFormatPDF:
		renderer = s.pdf
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if renderer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "export renderer unavailable")
	}

	pattern, err := s.Pattern(req.Pattern)
	if err != nil {
		return nil, err
	}
	items, err := s.generate(pattern)
	if err != nil {
		return nil, err
	}

	title := req.Title
	if title == "" {
		title = "Roster"
	}
	dataset := export.Dataset{
		Title:   fmt.Sprintf("%s: %s", title, DescribePattern(pattern)),
		Headers: []string{"#", "Date", "Weekday", "Status"},
		Rows:    make([]export.Row, 0, len(items)),
	}
	for _, item := range items {
		status := "scheduled"
		if item.IsException {
			status = "skipped"
		}
		dataset.Rows = append(dataset.Rows, export.Row{
			Values: map[string]string{
				"#":       strconv.Itoa(item.Index + 1),
				"Date":    dateutil.DateKey(item.Date),
				"Weekday": item.Date.Weekday().String(),
				"Status":  status,
			},
			Muted: item.IsException,
		})
	}

	body, err := renderer.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
	}
	filename := fmt.Sprintf("roster-%s.%s", dateutil.DateKey(pattern.StartDate), renderer.Extension())
	return &dto.ExportResult{Filename: filename, ContentType: renderer.ContentType(), Body: body}, nil
}

// ClearCache empties the generator cache and reports how many entries were dropped.
func (s *RecurrenceService) ClearCache(ctx context.Context) int {
	dropped := s.generator.CacheSize()
	s.generator.ClearCache()
	s.logger.Info("recurrence cache cleared", zap.Int("entries", dropped))
	return dropped
}

// Pattern parses and validates a wire pattern. Problems come back as INVALID_PATTERN details.
func (s *RecurrenceService) Pattern(req dto.RecurrencePatternRequest) (models.RecurrencePattern, error) {
	pattern, problems := s.parse(req)
	if len(problems) > 0 {
		return models.RecurrencePattern{}, appErrors.WithDetails(
			appErrors.ErrInvalidPattern,
			map[string][]string{"problems": problems},
		)
	}
	return pattern, nil
}

func (s *RecurrenceService) parse(req dto.RecurrencePatternRequest) (models.RecurrencePattern, []string) {
	var problems []string
	if err := s.validator.Struct(req); err != nil {
		problems = append(problems, describeValidation(err)...)
	}
	pattern, parseProblems := ParsePatternRequest(req)
	problems = append(problems, parseProblems...)
	problems = append(problems, PatternProblems(pattern)...)
	if pattern.Occurrences > s.cfg.MaxOccurrences {
		problems = append(problems, fmt.Sprintf("occurrences must not exceed %d", s.cfg.MaxOccurrences))
	}
	return pattern, problems
}

func (s *RecurrenceService) generate(pattern models.RecurrencePattern) ([]models.RecurrenceOccurrence, error) {
	items, err := s.generator.GenerateOccurrences(pattern)
	if err != nil {
		s.logger.Error("occurrence generation failed", zap.String("frequency", string(pattern.Frequency)), zap.Error(err))
		return nil, err
	}
	return items, nil
}

// ParsePatternRequest converts the wire pattern, collecting date format problems.
// Unparseable dates are left zero so PatternProblems can still report the rest.
func ParsePatternRequest(req dto.RecurrencePatternRequest) (models.RecurrencePattern, []string) {
	var problems []string
	pattern := models.RecurrencePattern{
		Frequency:   models.Frequency(strings.ToUpper(strings.TrimSpace(req.Frequency))),
		Occurrences: req.Occurrences,
	}

	if raw := strings.TrimSpace(req.StartDate); raw != "" {
		start, err := dateutil.ParseDate(raw)
		if err != nil {
			problems = append(problems, fmt.Sprintf("startDate %q must be YYYY-MM-DD or RFC3339", req.StartDate))
		} else {
			pattern.StartDate = start
		}
	}
	if raw := strings.TrimSpace(req.EndDate); raw != "" {
		end, err := dateutil.ParseDate(raw)
		if err != nil {
			problems = append(problems, fmt.Sprintf("endDate %q must be YYYY-MM-DD or RFC3339", req.EndDate))
		} else {
			pattern.EndDate = &end
		}
	}
	for _, raw := range req.Exceptions {
		ex, err := dateutil.ParseDate(strings.TrimSpace(raw))
		if err != nil {
			problems = append(problems, fmt.Sprintf("exception %q must be YYYY-MM-DD or RFC3339", raw))
			continue
		}
		pattern.Exceptions = append(pattern.Exceptions, ex)
	}
	return pattern, problems
}

// PatternToRequest renders a pattern back to its wire form.
func PatternToRequest(pattern models.RecurrencePattern) dto.RecurrencePatternRequest {
	req := dto.RecurrencePatternRequest{
		Frequency:   string(pattern.Frequency),
		StartDate:   formatPatternDate(pattern.StartDate),
		Occurrences: pattern.Occurrences,
	}
	if pattern.EndDate != nil {
		req.EndDate = formatPatternDate(*pattern.EndDate)
	}
	for _, ex := range pattern.Exceptions {
		req.Exceptions = append(req.Exceptions, dateutil.DateKey(ex))
	}
	return req
}

func formatPatternDate(t time.Time) string {
	if t.Equal(dateutil.DateOnly(t)) && t.Location() == time.UTC {
		return dateutil.DateKey(t)
	}
	return t.Format(time.RFC3339)
}

func describeValidation(err error) []string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			out = append(out, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		out = append(out, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return out
}
