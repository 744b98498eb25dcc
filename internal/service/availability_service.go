package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/workforce-api/internal/dto"
	"github.com/noah-isme/workforce-api/internal/models"
	"github.com/noah-isme/workforce-api/pkg/dateutil"
	appErrors "github.com/noah-isme/workforce-api/pkg/errors"
)

type availabilityBlockRepository interface {
	List(ctx context.Context, filter models.AvailabilityFilter) ([]models.AvailabilityBlock, int, error)
	ListOverlapping(ctx context.Context, exec sqlx.ExtContext, organizationID, subjectID string, from, to time.Time, lock bool) ([]models.AvailabilityBlock, error)
	FindByID(ctx context.Context, organizationID, id string) (*models.AvailabilityBlock, error)
	CreateBatch(ctx context.Context, exec sqlx.ExtContext, blocks []models.AvailabilityBlock) error
	UpdateRange(ctx context.Context, exec sqlx.ExtContext, id string, start, end time.Time) error
	Delete(ctx context.Context, exec sqlx.ExtContext, organizationID, id string) error
}

type txBeginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type availabilityCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

type availabilityEventPublisher interface {
	Publish(ctx context.Context, event models.AvailabilityEvent) error
}

type dbQueryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// Actor identifies who is acting on availability and for which tenant.
type Actor struct {
	UserID         string
	OrganizationID string
	Role           models.UserRole
}

// CanWriteSubject reports whether the actor may change blocks of subjectID.
// Staff may only change their own calendar.
func (a Actor) CanWriteSubject(subjectID string) bool {
	switch a.Role {
	case models.RoleOwner, models.RoleManager:
		return true
	case models.RoleStaff:
		return subjectID != "" && subjectID == a.UserID
	default:
		return false
	}
}

// AvailabilityConfig tunes the availability service.
type AvailabilityConfig struct {
	CacheTTL time.Duration
}

// AvailabilityService previews and applies availability, shift and booking blocks.
type AvailabilityService struct {
	repo       availabilityBlockRepository
	tx         txBeginner
	recurrence *RecurrenceService
	generator  *OccurrenceGenerator
	classifier *ConflictClassifier
	cache      availabilityCache
	events     availabilityEventPublisher
	metrics    dbQueryObserver
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        AvailabilityConfig
	now        func() time.Time
}

// NewAvailabilityService wires the availability use cases.
func NewAvailabilityService(
	repo availabilityBlockRepository,
	tx txBeginner,
	recurrence *RecurrenceService,
	generator *OccurrenceGenerator,
	classifier *ConflictClassifier,
	cache availabilityCache,
	events availabilityEventPublisher,
	metrics dbQueryObserver,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg AvailabilityConfig,
) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if classifier == nil {
		classifier = NewConflictClassifier(nil)
	}
	return &AvailabilityService{
		repo:       repo,
		tx:         tx,
		recurrence: recurrence,
		generator:  generator,
		classifier: classifier,
		cache:      cache,
		events:     events,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		cfg:        cfg,
		now:        time.Now,
	}
}

// availabilityWindow is the concrete interval proposed for one occurrence.
type availabilityWindow struct {
	occurrence models.RecurrenceOccurrence
	interval   dateutil.Interval
}

type availabilityPlan struct {
	pattern models.RecurrencePattern
	windows []availabilityWindow
}

func (p availabilityPlan) active() []availabilityWindow {
	out := make([]availabilityWindow, 0, len(p.windows))
	for _, w := range p.windows {
		if !w.occurrence.IsException {
			out = append(out, w)
		}
	}
	return out
}

// List returns blocks of the actor's organization.
func (s *AvailabilityService) List(ctx context.Context, actor Actor, query dto.ListAvailabilityQuery) ([]models.AvailabilityBlock, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability filter")
	}
	filter := models.AvailabilityFilter{
		OrganizationID: actor.OrganizationID,
		SubjectID:      query.SubjectID,
		Statuses:       query.Status,
		Page:           query.Page,
		PageSize:       query.PageSize,
	}
	if query.From != "" {
		from, err := dateutil.ParseDate(query.From)
		if err != nil {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "from must be YYYY-MM-DD or RFC3339")
		}
		filter.From = &from
	}
	if query.To != "" {
		to, err := dateutil.ParseDate(query.To)
		if err != nil {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "to must be YYYY-MM-DD or RFC3339")
		}
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "to must not precede from")
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}

	started := s.now()
	blocks, total, err := s.repo.List(ctx, filter)
	s.observe("availability_list", started)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list availability")
	}
	return blocks, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns one block of the actor's organization.
func (s *AvailabilityService) Get(ctx context.Context, actor Actor, id string) (*models.AvailabilityBlock, error) {
	block, err := s.repo.FindByID(ctx, actor.OrganizationID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "availability block not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability block")
	}
	return block, nil
}

// Preview classifies every generated window against the subject's existing blocks without writing.
func (s *AvailabilityService) Preview(ctx context.Context, actor Actor, req dto.AvailabilityRequest) (*dto.ConflictReport, error) {
	plan, err := s.plan(req)
	if err != nil {
		return nil, err
	}
	return s.report(actor.OrganizationID, req, plan, func(w availabilityWindow) ([]models.AvailabilityBlock, error) {
		return s.cachedOverlapping(ctx, actor.OrganizationID, req.SubjectID, w.interval)
	})
}

// Create applies the block. When conflicts exist the caller must confirm the recommended strategy;
// otherwise a CONFLICT error carrying the report is returned and nothing is written.
func (s *AvailabilityService) Create(ctx context.Context, actor Actor, req dto.CreateAvailabilityRequest) (resp *dto.CreateAvailabilityResponse, err error) {
	if !actor.CanWriteSubject(req.SubjectID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to change this subject's calendar")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}
	plan, err := s.plan(req.AvailabilityRequest)
	if err != nil {
		return nil, err
	}
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	loaded := newBlockLedger()
	report, err := s.report(actor.OrganizationID, req.AvailabilityRequest, plan, func(w availabilityWindow) ([]models.AvailabilityBlock, error) {
		started := s.now()
		blocks, err := s.repo.ListOverlapping(ctx, tx, actor.OrganizationID, req.SubjectID, w.interval.Start, w.interval.End, true)
		s.observe("availability_list_overlapping", started)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing blocks")
		}
		loaded.addPersisted(blocks)
		return blocks, nil
	})
	if err != nil {
		return nil, err
	}

	if report.TotalConflicts > 0 && (!req.Confirm || req.Strategy != report.Strategy) {
		err = appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("%d conflicting block(s) found; confirm with strategy %q to apply", report.TotalConflicts, report.Strategy)),
			report,
		)
		return nil, err
	}

	active := plan.active()
	template := models.AvailabilityBlock{
		OrganizationID: actor.OrganizationID,
		SubjectID:      req.SubjectID,
		SubjectType:    req.SubjectType,
		Kind:           req.Kind,
		Status:         req.Status,
		IsRecurring:    len(active) > 1,
		Label:          req.Label,
		CreatedBy:      actor.UserID,
	}
	if template.IsRecurring {
		group := uuid.NewString()
		template.RecurrenceGroupID = &group
	}

	for _, w := range active {
		loaded.apply(template, w.interval, report.Strategy)
	}

	removed := loaded.removedPersisted()
	for _, id := range removed {
		if err = s.repo.Delete(ctx, tx, actor.OrganizationID, id); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove replaced block")
			return nil, err
		}
	}
	updated := loaded.updatedPersisted()
	for _, block := range updated {
		if err = s.repo.UpdateRange(ctx, tx, block.ID, block.StartAt, block.EndAt); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to adjust existing block")
			return nil, err
		}
	}
	created := loaded.pending()
	if err = s.repo.CreateBatch(ctx, tx, created); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create availability blocks")
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit availability transaction")
		return nil, err
	}

	s.invalidate(ctx, actor.OrganizationID, req.SubjectID)

	ids := make([]string, 0, len(created)+len(updated))
	for _, b := range created {
		ids = append(ids, b.ID)
	}
	for _, b := range updated {
		ids = append(ids, b.ID)
	}
	s.publish(ctx, models.AvailabilityEvent{
		Type:           models.EventAvailabilityCreated,
		OrganizationID: actor.OrganizationID,
		SubjectID:      req.SubjectID,
		BlockIDs:       ids,
		Strategy:       report.Strategy,
		ActorID:        actor.UserID,
		OccurredAt:     s.now().UTC(),
	})

	s.logger.Info("availability applied",
		zap.String("organization_id", actor.OrganizationID),
		zap.String("subject_id", req.SubjectID),
		zap.String("strategy", string(report.Strategy)),
		zap.Int("created", len(created)),
		zap.Int("updated", len(updated)),
		zap.Int("removed", len(removed)),
	)

	return &dto.CreateAvailabilityResponse{
		Strategy:          report.Strategy,
		RecurrenceGroupID: template.RecurrenceGroupID,
		Created:           created,
		Updated:           updated,
		Removed:           removed,
		Report:            *report,
	}, nil
}

// Delete removes one block.
func (s *AvailabilityService) Delete(ctx context.Context, actor Actor, id string) error {
	block, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if !actor.CanWriteSubject(block.SubjectID) {
		return appErrors.Clone(appErrors.ErrForbidden, "not allowed to change this subject's calendar")
	}
	if err := s.repo.Delete(ctx, nil, actor.OrganizationID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "availability block not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete availability block")
	}

	s.invalidate(ctx, actor.OrganizationID, block.SubjectID)
	s.publish(ctx, models.AvailabilityEvent{
		Type:           models.EventAvailabilityDeleted,
		OrganizationID: actor.OrganizationID,
		SubjectID:      block.SubjectID,
		BlockIDs:       []string{id},
		ActorID:        actor.UserID,
		OccurredAt:     s.now().UTC(),
	})
	return nil
}

func (s *AvailabilityService) plan(req dto.AvailabilityRequest) (availabilityPlan, error) {
	if err := s.validator.Struct(req); err != nil {
		return availabilityPlan{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}
	startClock, err := dateutil.ParseClock(req.StartTime)
	if err != nil {
		return availabilityPlan{}, appErrors.Clone(appErrors.ErrValidation, "startTime must be HH:MM")
	}
	endClock, err := dateutil.ParseClock(req.EndTime)
	if err != nil {
		return availabilityPlan{}, appErrors.Clone(appErrors.ErrValidation, "endTime must be HH:MM")
	}
	if endClock == startClock {
		return availabilityPlan{}, appErrors.Clone(appErrors.ErrValidation, "endTime must differ from startTime")
	}

	pattern, err := s.recurrence.Pattern(req.Pattern)
	if err != nil {
		return availabilityPlan{}, err
	}
	items, err := s.generator.GenerateOccurrences(pattern)
	if err != nil {
		s.logger.Error("occurrence generation failed", zap.String("frequency", string(pattern.Frequency)), zap.Error(err))
		return availabilityPlan{}, err
	}

	plan := availabilityPlan{pattern: pattern, windows: make([]availabilityWindow, 0, len(items))}
	for _, item := range items {
		plan.windows = append(plan.windows, availabilityWindow{
			occurrence: item,
			interval:   windowFor(item.Date, startClock, endClock),
		})
	}
	return plan, nil
}

// windowFor places the wall-clock range on the occurrence day. An end before the start
// belongs to the following day.
func windowFor(day time.Time, startClock, endClock time.Duration) dateutil.Interval {
	start := dateutil.AtClock(day, startClock)
	endDay := day
	if endClock < startClock {
		endDay = day.AddDate(0, 0, 1)
	}
	return dateutil.Interval{Start: start, End: dateutil.AtClock(endDay, endClock)}
}

func (s *AvailabilityService) report(
	organizationID string,
	req dto.AvailabilityRequest,
	plan availabilityPlan,
	load func(availabilityWindow) ([]models.AvailabilityBlock, error),
) (*dto.ConflictReport, error) {
	report := &dto.ConflictReport{
		Description: DescribePattern(plan.pattern),
		Occurrences: make([]dto.OccurrenceConflicts, 0, len(plan.windows)),
	}
	var all []models.ConflictRecord
	var proposed models.TimeBlock
	for _, w := range plan.windows {
		entry := dto.OccurrenceConflicts{
			Index:       w.occurrence.Index,
			Date:        w.occurrence.Date,
			Start:       w.interval.Start,
			End:         w.interval.End,
			IsException: w.occurrence.IsException,
			Conflicts:   []dto.ConflictView{},
		}
		if w.occurrence.IsException {
			report.Occurrences = append(report.Occurrences, entry)
			continue
		}

		blocks, err := load(w)
		if err != nil {
			return nil, err
		}
		existing := make([]models.TimeBlock, 0, len(blocks))
		for _, b := range blocks {
			existing = append(existing, b.TimeBlock())
		}
		proposed = models.TimeBlock{Start: w.interval.Start, End: w.interval.End, Status: req.Status, IsRecurring: len(plan.windows) > 1}
		if req.Label != nil {
			proposed.Label = *req.Label
		}
		records, err := s.classifier.Classify(proposed, existing)
		if err != nil {
			s.logger.Error("conflict classification failed",
				zap.String("organization_id", organizationID),
				zap.String("subject_id", req.SubjectID),
				zap.Error(err))
			return nil, err
		}
		for _, record := range records {
			entry.Conflicts = append(entry.Conflicts, dto.ConflictView{
				ExistingBlock: record.ExistingBlock,
				ConflictType:  record.ConflictType,
				Explanation:   ExplainConflict(proposed, record),
			})
		}
		all = append(all, records...)
		report.Occurrences = append(report.Occurrences, entry)
	}
	report.TotalConflicts = len(all)
	report.Strategy = s.classifier.Resolve(proposed, all)
	return report, nil
}

func (s *AvailabilityService) cachedOverlapping(ctx context.Context, organizationID, subjectID string, window dateutil.Interval) ([]models.AvailabilityBlock, error) {
	key := availabilityCacheKey(organizationID, subjectID, window)
	var blocks []models.AvailabilityBlock
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, key, &blocks); err == nil && hit {
			return blocks, nil
		}
	}

	started := s.now()
	blocks, err := s.repo.ListOverlapping(ctx, nil, organizationID, subjectID, window.Start, window.End, false)
	s.observe("availability_list_overlapping", started)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing blocks")
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, blocks, s.cfg.CacheTTL)
	}
	return blocks, nil
}

func (s *AvailabilityService) invalidate(ctx context.Context, organizationID, subjectID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, availabilitySubjectPattern(organizationID, subjectID)); err != nil {
		s.logger.Warn("availability cache invalidation failed", zap.String("subject_id", subjectID), zap.Error(err))
	}
}

func (s *AvailabilityService) publish(ctx context.Context, event models.AvailabilityEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("availability event not queued", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

func (s *AvailabilityService) observe(label string, started time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveDBQuery(label, s.now().Sub(started))
	}
}

func availabilityCacheKey(organizationID, subjectID string, window dateutil.Interval) string {
	return fmt.Sprintf("availability:%s:%s:%d-%d", organizationID, subjectID, window.Start.Unix(), window.End.Unix())
}

func availabilitySubjectPattern(organizationID, subjectID string) string {
	return fmt.Sprintf("availability:%s:%s:*", escapeGlob(organizationID), escapeGlob(subjectID))
}

func escapeGlob(raw string) string {
	replacer := strings.NewReplacer(`*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return replacer.Replace(raw)
}

// --- Block ledger ---

// blockLedger tracks how persisted and new blocks change while a request's windows are applied
// one after another, so later windows see the effect of earlier ones.
type blockLedger struct {
	entries map[string]*ledgerEntry
	order   []string
}

type ledgerEntry struct {
	block     models.AvailabilityBlock
	persisted bool
	dirty     bool
	removed   bool
}

func newBlockLedger() *blockLedger {
	return &blockLedger{entries: make(map[string]*ledgerEntry)}
}

func (l *blockLedger) addPersisted(blocks []models.AvailabilityBlock) {
	for _, b := range blocks {
		if _, ok := l.entries[b.ID]; ok {
			continue
		}
		l.entries[b.ID] = &ledgerEntry{block: b, persisted: true}
		l.order = append(l.order, b.ID)
	}
}

func (l *blockLedger) addPending(block models.AvailabilityBlock) {
	block.ID = uuid.NewString()
	l.entries[block.ID] = &ledgerEntry{block: block}
	l.order = append(l.order, block.ID)
}

func (l *blockLedger) live() []*ledgerEntry {
	out := make([]*ledgerEntry, 0, len(l.order))
	for _, id := range l.order {
		if e := l.entries[id]; !e.removed {
			out = append(out, e)
		}
	}
	return out
}

// apply writes one window into the ledger.
// merge: same-status blocks touching the window are folded into one block spanning the union.
// override: differing-status blocks sharing time with the window are cut back, split or removed.
func (l *blockLedger) apply(template models.AvailabilityBlock, window dateutil.Interval, strategy models.ResolutionStrategy) {
	proposed := models.TimeBlock{Start: window.Start, End: window.End, Status: template.Status}

	var same, other []*ledgerEntry
	for _, e := range l.live() {
		conflictType, ok := ClassifyPair(proposed, e.block.TimeBlock())
		if !ok {
			continue
		}
		if e.block.Status == template.Status {
			same = append(same, e)
			continue
		}
		if conflictType != models.ConflictAdjacent {
			other = append(other, e)
		}
	}

	if strategy == models.ResolutionMerge && len(same) > 0 {
		union := window
		for _, e := range same {
			union = union.Union(dateutil.Interval{Start: e.block.StartAt, End: e.block.EndAt})
		}
		keeper := same[0]
		keeper.block.StartAt, keeper.block.EndAt = union.Start, union.End
		keeper.dirty = true
		for _, e := range same[1:] {
			e.removed = true
		}
		return
	}

	if strategy == models.ResolutionOverride {
		for _, e := range other {
			current := dateutil.Interval{Start: e.block.StartAt, End: e.block.EndAt}
			rest := current.Subtract(window)
			switch len(rest) {
			case 0:
				e.removed = true
			case 1:
				e.block.StartAt, e.block.EndAt = rest[0].Start, rest[0].End
				e.dirty = true
			default:
				e.block.StartAt, e.block.EndAt = rest[0].Start, rest[0].End
				e.dirty = true
				tail := e.block
				tail.StartAt, tail.EndAt = rest[1].Start, rest[1].End
				tail.CreatedAt, tail.UpdatedAt = time.Time{}, time.Time{}
				l.addPending(tail)
			}
		}
	}

	block := template
	block.StartAt, block.EndAt = window.Start, window.End
	l.addPending(block)
}

func (l *blockLedger) removedPersisted() []string {
	out := []string{}
	for _, id := range l.order {
		if e := l.entries[id]; e.persisted && e.removed {
			out = append(out, id)
		}
	}
	return out
}

func (l *blockLedger) updatedPersisted() []models.AvailabilityBlock {
	out := []models.AvailabilityBlock{}
	for _, id := range l.order {
		if e := l.entries[id]; e.persisted && e.dirty && !e.removed {
			out = append(out, e.block)
		}
	}
	return out
}

func (l *blockLedger) pending() []models.AvailabilityBlock {
	out := []models.AvailabilityBlock{}
	for _, id := range l.order {
		if e := l.entries[id]; !e.persisted && !e.removed {
			out = append(out, e.block)
		}
	}
	return out
}
