package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/okian/mela/internal/domain/model"
)

// Append adds a spot registration as a new spreadsheet row. The caller is
// responsible for domain validation; this layer enforces only the mapping
// and the uniqueness of the registration number. The snapshot cache is
// invalidated on success.
func (s *Source) Append(ctx context.Context, reg model.Registration) error {
	mapping, err := s.Mapping(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrSourceUnavailable, s.path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("%w: read rows: %w", ErrSourceUnavailable, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w: empty workbook", ErrSourceUnavailable)
	}
	cols := resolveColumns(rows[0], mapping)
	if cols.regNo < 0 {
		return fmt.Errorf("%w: column %q not in sheet headers", ErrMappingNotSet, mapping.RegNo)
	}

	for _, row := range rows[1:] {
		if cols.regNo < len(row) && strings.TrimSpace(row[cols.regNo]) == reg.RegNo {
			return ErrDuplicateRegistration
		}
	}

	rowNum := len(rows) + 1
	set := func(colIdx int, value string) error {
		if colIdx < 0 || value == "" {
			return nil
		}
		cell, err := excelize.CoordinatesToCellName(colIdx+1, rowNum)
		if err != nil {
			return fmt.Errorf("%w: cell name: %w", ErrSourceUnavailable, err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("%w: set cell: %w", ErrSourceUnavailable, err)
		}
		return nil
	}

	leader := reg.Leader
	if leader == "" && len(reg.Members) > 0 {
		leader = reg.Members[0]
	}

	writes := []struct {
		col   int
		value string
	}{
		{cols.regNo, reg.RegNo},
		{cols.event, reg.Event},
		{cols.college, reg.College},
		{cols.leader, leader},
		{cols.contact, reg.Contact},
		{cols.email, reg.Email},
	}
	for _, w := range writes {
		if err := set(w.col, w.value); err != nil {
			return err
		}
	}
	for i, member := range reg.Members {
		if i >= len(cols.members) {
			break
		}
		if err := set(cols.members[i], member); err != nil {
			return err
		}
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("%w: save %s: %w", ErrSourceUnavailable, s.path, err)
	}
	s.cache.Invalidate()
	return nil
}

// ApplyRosterEdit writes an edited roster back into the registration's
// leader and member columns: first name into the leader column, the rest
// into member slots in order, clearing slots the new roster no longer
// fills. Names that outnumber the available columns are dropped from the
// write-back; the status override still carries them.
func (s *Source) ApplyRosterEdit(ctx context.Context, regNo string, names []string) error {
	mapping, err := s.Mapping(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrSourceUnavailable, s.path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("%w: read rows: %w", ErrSourceUnavailable, err)
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	cols := resolveColumns(rows[0], mapping)
	if cols.regNo < 0 {
		return fmt.Errorf("%w: column %q not in sheet headers", ErrMappingNotSet, mapping.RegNo)
	}

	rowNum := -1
	for i, row := range rows[1:] {
		if cols.regNo < len(row) && strings.TrimSpace(row[cols.regNo]) == regNo {
			rowNum = i + 2
			break
		}
	}
	if rowNum < 0 {
		return ErrNotFound
	}

	set := func(colIdx int, value string) error {
		if colIdx < 0 {
			return nil
		}
		cell, err := excelize.CoordinatesToCellName(colIdx+1, rowNum)
		if err != nil {
			return fmt.Errorf("%w: cell name: %w", ErrSourceUnavailable, err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("%w: set cell: %w", ErrSourceUnavailable, err)
		}
		return nil
	}

	rest := names
	if cols.leader >= 0 && len(names) > 0 {
		if err := set(cols.leader, names[0]); err != nil {
			return err
		}
		rest = names[1:]
	}
	for i, colIdx := range cols.members {
		value := ""
		if i < len(rest) {
			value = rest[i]
		}
		if err := set(colIdx, value); err != nil {
			return err
		}
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("%w: save %s: %w", ErrSourceUnavailable, s.path, err)
	}
	s.cache.Invalidate()
	return nil
}
