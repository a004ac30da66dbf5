// Package registry reads and writes the registrations spreadsheet.
//
// The spreadsheet is the external source of truth for who registered for
// what. The core treats it as read-mostly: the only writes are the
// documented spot-registration append and the roster edit write-back, both
// serialized behind a file lock. Reads go through an explicit snapshot
// cache that every write path invalidates.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/xuri/excelize/v2"

	"github.com/okian/mela/internal/domain/model"
	"github.com/okian/mela/pkg/logger"
	"github.com/okian/mela/pkg/metrics"
)

// Defaults for the source adapter.
const (
	defaultCacheTTL      = 30 * time.Second
	defaultLockTimeout   = 5 * time.Second
	defaultRetryInterval = 50 * time.Millisecond
)

// Header keywords for loosely mapped columns.
var (
	contactKeywords = []string{"contact", "phone", "mobile", "number"}
	emailKeywords   = []string{"email"}
	rosterKeywords  = []string{"participant", "student"}
)

// parsedRow is one spreadsheet row joined with its sheet position, which the
// write-back paths need.
type parsedRow struct {
	sheetRow int // 1-based sheet row
	reg      model.Registration
}

// Source is the excelize-backed registration source.
type Source struct {
	path        string
	mappingPath string

	mu            sync.Mutex // serializes in-process writers
	lock          *flock.Flock
	lockTimeout   time.Duration
	retryInterval time.Duration

	cache *cache
	log   logger.Logger
}

// Option applies a configuration option to the Source.
type Option func(*Source)

// WithCacheTTL bounds how stale a cached spreadsheet snapshot may get.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Source) {
		if ttl > 0 {
			s.cache = newCache(ttl)
		}
	}
}

// WithLockTimeout bounds how long writers wait for the spreadsheet lock.
func WithLockTimeout(timeout time.Duration) Option {
	return func(s *Source) {
		if timeout > 0 {
			s.lockTimeout = timeout
		}
	}
}

// WithLogger sets a custom logger for the source.
func WithLogger(log logger.Logger) Option {
	return func(s *Source) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates a Source reading the workbook at path and the column mapping
// document at mappingPath.
func New(path, mappingPath string, opts ...Option) *Source {
	s := &Source{
		path:          path,
		mappingPath:   mappingPath,
		lock:          flock.New(path + ".lock"),
		lockTimeout:   defaultLockTimeout,
		retryInterval: defaultRetryInterval,
		cache:         newCache(defaultCacheTTL),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Invalidate drops the cached snapshot.
func (s *Source) Invalidate() {
	s.cache.Invalidate()
}

// Mapping loads the column mapping document.
func (s *Source) Mapping(_ context.Context) (model.ColumnMap, error) {
	var m model.ColumnMap
	data, err := os.ReadFile(s.mappingPath)
	if errors.Is(err, os.ErrNotExist) {
		return m, ErrMappingNotSet
	}
	if err != nil {
		return m, fmt.Errorf("%w: read mapping: %w", ErrSourceUnavailable, err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("%w: decode mapping: %w", ErrSourceUnavailable, err)
	}
	if !m.Complete() {
		return m, ErrMappingNotSet
	}
	return m, nil
}

// SetMapping persists the column mapping document and invalidates the
// snapshot cache.
func (s *Source) SetMapping(_ context.Context, m model.ColumnMap) error {
	if !m.Complete() {
		return ErrMappingNotSet
	}
	data, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		return fmt.Errorf("%w: encode mapping: %w", ErrSourceUnavailable, err)
	}
	tmp := s.mappingPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: write mapping: %w", ErrSourceUnavailable, err)
	}
	if err := os.Rename(tmp, s.mappingPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: replace mapping: %w", ErrSourceUnavailable, err)
	}
	s.cache.Invalidate()
	return nil
}

// Columns returns the spreadsheet header row. Works without a mapping so
// admins can build one.
func (s *Source) Columns(ctx context.Context) ([]string, error) {
	snap, err := s.load(ctx)
	if err != nil && !errors.Is(err, ErrMappingNotSet) {
		return nil, err
	}
	if snap != nil {
		return snap.headers, nil
	}
	// No mapping yet: read headers straight from the workbook.
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrSourceUnavailable, s.path, err)
	}
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("%w: read rows: %w", ErrSourceUnavailable, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Lookup returns the registration for regNo, or ErrNotFound.
func (s *Source) Lookup(ctx context.Context, regNo string) (model.Registration, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return model.Registration{}, err
	}
	idx, ok := snap.byRegNo[regNo]
	if !ok {
		return model.Registration{}, ErrNotFound
	}
	return snap.rows[idx].reg, nil
}

// ListEvents returns the unique event names in first-seen row order.
func (s *Source) ListEvents(ctx context.Context) ([]string, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.events, nil
}

// All returns every registration in sheet order.
func (s *Source) All(ctx context.Context) ([]model.Registration, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Registration, len(snap.rows))
	for i, row := range snap.rows {
		out[i] = row.reg
	}
	return out, nil
}

// load returns the current snapshot, reading the workbook when the cache is
// cold or expired.
func (s *Source) load(ctx context.Context) (*snapshot, error) {
	if snap := s.cache.get(); snap != nil {
		return snap, nil
	}

	mapping, err := s.Mapping(ctx)
	if err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrSourceUnavailable, s.path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("%w: read rows: %w", ErrSourceUnavailable, err)
	}
	metrics.RecordSourceReload()

	snap := parseRows(rows, mapping)
	s.cache.put(snap)
	return snap, nil
}

// parseRows turns the raw sheet into a snapshot using the column mapping.
func parseRows(rows [][]string, mapping model.ColumnMap) *snapshot {
	snap := &snapshot{
		byRegNo:  map[string]int{},
		loadedAt: time.Now(),
	}
	if len(rows) == 0 {
		return snap
	}
	snap.headers = rows[0]
	cols := resolveColumns(snap.headers, mapping)

	cell := func(row []string, idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	seenEvents := map[string]struct{}{}
	for rowNum, row := range rows[1:] {
		regNo := cell(row, cols.regNo)
		if regNo == "" {
			continue
		}

		college := cell(row, cols.college)
		if college == "" || strings.EqualFold(college, "other") {
			if specified := cell(row, cols.specify); specified != "" {
				college = specified
			}
		}

		reg := model.Registration{
			RegNo:   regNo,
			Event:   cell(row, cols.event),
			College: college,
			Contact: cell(row, cols.contact),
			Email:   cell(row, cols.email),
			Leader:  cell(row, cols.leader),
		}
		for _, idx := range cols.members {
			if v := cell(row, idx); v != "" {
				reg.Members = append(reg.Members, v)
			}
		}
		for _, idx := range cols.extras {
			if v := cell(row, idx); v != "" {
				reg.Extra = append(reg.Extra, v)
			}
		}

		if reg.Event != "" {
			if _, ok := seenEvents[reg.Event]; !ok {
				seenEvents[reg.Event] = struct{}{}
				snap.events = append(snap.events, reg.Event)
			}
		}

		// First row wins on duplicate numbers, matching spreadsheet lookup
		// order in the original system.
		if _, ok := snap.byRegNo[regNo]; !ok {
			snap.byRegNo[regNo] = len(snap.rows)
			snap.rows = append(snap.rows, parsedRow{sheetRow: rowNum + 2, reg: reg})
		}
	}
	return snap
}

// columnSet holds resolved header indexes for one mapping. A value of -1
// means the column is absent.
type columnSet struct {
	regNo   int
	event   int
	college int
	specify int
	leader  int
	contact int
	email   int
	members []int
	extras  []int
}

// resolveColumns maps the configured column names (and the loose
// contact/email/roster fallbacks) onto header indexes.
func resolveColumns(headers []string, mapping model.ColumnMap) columnSet {
	cols := columnSet{
		regNo:   columnIndex(headers, mapping.RegNo),
		event:   columnIndex(headers, mapping.Event),
		college: columnIndex(headers, mapping.College),
		specify: columnIndex(headers, mapping.SpecifyCollege),
		leader:  columnIndex(headers, mapping.TeamLeader),
		contact: columnIndex(headers, mapping.Contact),
	}
	if cols.contact < 0 {
		cols.contact = matchHeader(headers, contactKeywords, nil)
	}
	cols.email = matchHeader(headers, emailKeywords, nil)

	mapped := map[int]struct{}{
		cols.regNo: {}, cols.event: {}, cols.college: {}, cols.specify: {},
		cols.leader: {}, cols.contact: {}, cols.email: {},
	}
	for _, name := range mapping.TeamMembers {
		if idx := columnIndex(headers, name); idx >= 0 {
			cols.members = append(cols.members, idx)
			mapped[idx] = struct{}{}
		}
	}
	cols.extras = matchHeaders(headers, rosterKeywords, mapped)
	return cols
}

// columnIndex finds a header by name, case-insensitively.
func columnIndex(headers []string, name string) int {
	if strings.TrimSpace(name) == "" {
		return -1
	}
	for i, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(name)) {
			return i
		}
	}
	return -1
}

// matchHeader returns the first header index containing any keyword,
// excluding already mapped columns.
func matchHeader(headers []string, keywords []string, exclude map[int]struct{}) int {
	cols := matchHeaders(headers, keywords, exclude)
	if len(cols) == 0 {
		return -1
	}
	return cols[0]
}

func matchHeaders(headers []string, keywords []string, exclude map[int]struct{}) []int {
	var out []int
	for i, h := range headers {
		if _, skip := exclude[i]; skip {
			continue
		}
		lower := strings.ToLower(h)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				out = append(out, i)
				break
			}
		}
	}
	return out
}

// acquire takes the spreadsheet write lock, bounded by the configured
// timeout. Caller must hold s.mu and release on success.
func (s *Source) acquire(ctx context.Context) error {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()
	ok, err := s.lock.TryLockContext(lockCtx, s.retryInterval)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: lock %s: timed out after %s", ErrBusy, s.path, s.lockTimeout)
		}
		return fmt.Errorf("%w: lock %s: %w", ErrSourceUnavailable, s.path, err)
	}
	if !ok {
		return fmt.Errorf("%w: lock %s", ErrBusy, s.path)
	}
	return nil
}

func (s *Source) release() {
	if err := s.lock.Unlock(); err != nil && s.log != nil {
		s.log.Warn(context.Background(), "releasing spreadsheet lock failed",
			logger.String("path", s.path), logger.Error(err))
	}
}
