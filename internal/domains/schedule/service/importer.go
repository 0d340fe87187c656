package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"roomtime/internal/domains/schedule/model/dto"
	sessionModel "roomtime/internal/domains/session/model"
	"roomtime/internal/timetable"
	"roomtime/shared"
	"roomtime/shared/constant"
	"roomtime/shared/failure"
	gModel "roomtime/shared/model"
	"roomtime/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ImportRecurring expands every weekly-pattern row into dated sessions and
// persists them. Rows fail independently: a bad row is recorded and skipped,
// never aborting the batch.
func (s *serviceImpl) ImportRecurring(ctx context.Context, rows []dto.RecurringImportRow) (res dto.ImportResult, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".schedule.ImportRecurring")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = requireScheduleRole(ctx); err != nil {
		return res, err
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	res.Errors = []string{}

	for i, row := range rows {
		if err := s.importRecurringRow(ctx, row, user); err != nil {
			res.FailureCount++
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: %v", i+1, err))

			log.Warn().Err(err).Int("row", i+1).Msg("recurring import row failed")

			continue
		}

		res.SuccessCount++
	}

	return res, nil
}

func (s *serviceImpl) importRecurringRow(ctx context.Context, row dto.RecurringImportRow, user string) error {
	startDate, err := timezone.Parse(constant.DateOnlyFormat, row.StartDate)
	if err != nil {
		return fmt.Errorf("invalid start date %q: %w", row.StartDate, err)
	}

	endDate, err := timezone.Parse(constant.DateOnlyFormat, row.EndDate)
	if err != nil {
		return fmt.Errorf("invalid end date %q: %w", row.EndDate, err)
	}

	pattern, err := timetable.BuildWeeklyPattern(
		splitList(row.DaysOfWeek),
		splitList(row.StartTimes),
		splitList(row.EndTimes),
		splitList(row.RoomCodes),
	)
	if err != nil {
		return err
	}

	seed := timetable.SessionSeed{
		Subject:         row.SubjectCode,
		ClassCode:       row.ClassCode,
		LecturerName:    row.LecturerName,
		LecturerContact: row.LecturerContact,
	}

	expanded, err := timetable.ExpandWeekly(seed, startDate, endDate, pattern, func(codes []string) (map[string]string, error) {
		return s.roomRepo.ResolveCodes(ctx, codes)
	})
	if err != nil {
		return err
	}

	return s.persistExpanded(ctx, expanded, user)
}

// ImportPerDate persists rows that name explicit dates instead of a weekly
// pattern. Times come from explicit start/end lists when present, otherwise
// from the row's slot specifier under the selected numbering regime.
func (s *serviceImpl) ImportPerDate(ctx context.Context, rows []dto.PerDateImportRow) (res dto.ImportResult, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".schedule.ImportPerDate")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = requireScheduleRole(ctx); err != nil {
		return res, err
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	res.Errors = []string{}

	for i, row := range rows {
		if err := s.importPerDateRow(ctx, row, user); err != nil {
			res.FailureCount++
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: %v", i+1, err))

			log.Warn().Err(err).Int("row", i+1).Msg("per-date import row failed")

			continue
		}

		res.SuccessCount++
	}

	return res, nil
}

func (s *serviceImpl) importPerDateRow(ctx context.Context, row dto.PerDateImportRow, user string) error {
	dates, err := parseDateList(row.Dates)
	if err != nil {
		return err
	}

	spans, err := perDateSpans(row)
	if err != nil {
		return err
	}

	roomCode := strings.TrimSpace(row.RoomCode)

	resolved, err := s.roomRepo.ResolveCodes(ctx, []string{roomCode})
	if err != nil {
		return fmt.Errorf("failed to resolve room code: %w", err)
	}

	roomID, ok := resolved[roomCode]
	if !ok {
		return fmt.Errorf("unknown room %q", roomCode)
	}

	seed := timetable.SessionSeed{
		Subject:         row.Subject,
		ClassCode:       row.ClassCode,
		LecturerName:    row.LecturerName,
		LecturerContact: row.LecturerContact,
	}

	return s.persistExpanded(ctx, timetable.ExpandDates(seed, dates, spans, roomID, roomCode), user)
}

// perDateSpans builds the time spans of one per-date row. Explicit start/end
// lists win over the slot specifier.
func perDateSpans(row dto.PerDateImportRow) ([]timetable.SlotSpan, error) {
	starts := splitList(row.StartTimes)
	ends := splitList(row.EndTimes)

	if len(starts) > 0 || len(ends) > 0 {
		if len(starts) != len(ends) {
			return nil, fmt.Errorf("start and end time lists differ in length (%d vs %d)", len(starts), len(ends))
		}

		spans := make([]timetable.SlotSpan, len(starts))

		for i := range starts {
			start, err := timetable.ParseTimeOfDay(starts[i])
			if err != nil {
				return nil, fmt.Errorf("invalid start time %q: %w", starts[i], err)
			}

			end, err := timetable.ParseTimeOfDay(ends[i])
			if err != nil {
				return nil, fmt.Errorf("invalid end time %q: %w", ends[i], err)
			}

			spans[i] = timetable.SlotSpan{Start: start, End: end}
		}

		return spans, nil
	}

	slots, err := timetable.ParseSlotList(row.Slots)
	if err != nil {
		return nil, err
	}

	spans := make([]timetable.SlotSpan, len(slots))

	for i, slot := range slots {
		span, ok := timetable.SlotSpanFor(slot, row.IsNewSlot)
		if !ok {
			return nil, fmt.Errorf("slot %d has no time mapping", slot)
		}

		spans[i] = span
	}

	return spans, nil
}

func (s *serviceImpl) persistExpanded(ctx context.Context, expanded []timetable.Session, user string) error {
	// A recurring row whose date range contains none of its configured
	// weekdays expands to nothing. That is a valid no-op, not a failure.
	if len(expanded) == 0 {
		return nil
	}

	sessions := make([]sessionModel.Session, len(expanded))
	for i, e := range expanded {
		sessions[i] = sessionModel.Session{
			ID:              uuid.NewString(),
			RoomID:          e.RoomID,
			Date:            e.Date,
			Slot:            e.Slot,
			StartTime:       e.Start.String(),
			EndTime:         e.End.String(),
			Subject:         e.Subject,
			ClassCode:       e.ClassCode,
			LecturerName:    e.LecturerName,
			LecturerContact: e.LecturerContact,
			Metadata: gModel.Metadata{
				CreatedAt:  timezone.Now(),
				ModifiedAt: timezone.Now(),
				CreatedBy:  user,
				ModifiedBy: user,
			},
		}
	}

	if err := s.sessionRepo.InsertBatch(ctx, sessions); err != nil {
		return err
	}

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, constant.CacheRoomSchedule)
	}()

	return nil
}

func requireScheduleRole(ctx context.Context) error {
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)
	if role != constant.RoleAdmin && role != constant.RoleLecturer {
		return failure.Forbidden("only lecturers and administrators may import schedules") // nolint:wrapcheck
	}

	return nil
}

func splitList(value string) []string {
	var items []string

	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		items = append(items, part)
	}

	return items
}

func parseDateList(value string) ([]time.Time, error) {
	parts := splitList(value)
	if len(parts) == 0 {
		return nil, fmt.Errorf("no dates supplied")
	}

	dates := make([]time.Time, len(parts))

	for i, part := range parts {
		date, err := timezone.Parse(constant.DateOnlyFormat, part)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", part, err)
		}

		dates[i] = date
	}

	return dates, nil
}
