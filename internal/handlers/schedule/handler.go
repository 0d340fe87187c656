package schedule

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"roomtime/infras/otel"
	"roomtime/internal/domains/schedule/model/dto"
	"roomtime/internal/domains/schedule/service"
	"roomtime/shared/constant"
	"roomtime/shared/failure"
	"roomtime/shared/timezone"
	"roomtime/transport/http/response"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Schedule
	otel    otel.Otel
}

func New(service service.Schedule, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/schedules", func(routerGroup chi.Router) {
		routerGroup.Get("/rooms/{id}", handler.GetRoomSchedule)
		routerGroup.Post("/import/recurring", handler.ImportRecurring)
		routerGroup.Post("/import/per-date", handler.ImportPerDate)
	})
}

// GetRoomSchedule returns the merged booking and class occupancy of one room
// over an inclusive date range.
func (handler *Handler) GetRoomSchedule(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRoomSchedule")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	from, to, err := parseDateRange(request)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse date range")

		response.WithError(writer, err)

		return
	}

	res, err := handler.service.RoomSchedule(ctx, id, from, to)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get room schedule")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// ImportRecurring imports weekly-pattern schedule rows, supplied either as a
// JSON row batch or as an uploaded workbook.
func (handler *Handler) ImportRecurring(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ImportRecurring")
	defer scope.End()

	rows, err := handler.recurringRows(request)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse import workbook")

		response.WithError(writer, err)

		return
	}

	res, err := handler.service.ImportRecurring(ctx, rows)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to import recurring schedule")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// ImportPerDate imports legacy per-date schedule rows, supplied either as a
// JSON row batch or as an uploaded workbook.
func (handler *Handler) ImportPerDate(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ImportPerDate")
	defer scope.End()

	rows, err := handler.perDateRows(request)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse import workbook")

		response.WithError(writer, err)

		return
	}

	res, err := handler.service.ImportPerDate(ctx, rows)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to import per-date schedule")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

func (handler *Handler) recurringRows(request *http.Request) ([]dto.RecurringImportRow, error) {
	if !isWorkbookUpload(request) {
		var rows []dto.RecurringImportRow
		if err := json.NewDecoder(request.Body).Decode(&rows); err != nil {
			return nil, failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) // nolint:wrapcheck
		}

		return rows, nil
	}

	file, err := importFile(request)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	rows, err := service.ParseRecurringWorkbook(file)
	if err != nil {
		return nil, failure.BadRequest(err) // nolint:wrapcheck
	}

	return rows, nil
}

func (handler *Handler) perDateRows(request *http.Request) ([]dto.PerDateImportRow, error) {
	if !isWorkbookUpload(request) {
		var rows []dto.PerDateImportRow
		if err := json.NewDecoder(request.Body).Decode(&rows); err != nil {
			return nil, failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) // nolint:wrapcheck
		}

		return rows, nil
	}

	file, err := importFile(request)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	rows, err := service.ParsePerDateWorkbook(file)
	if err != nil {
		return nil, failure.BadRequest(err) // nolint:wrapcheck
	}

	return rows, nil
}

func isWorkbookUpload(request *http.Request) bool {
	return strings.HasPrefix(request.Header.Get(constant.RequestHeaderContentType), "multipart/")
}

func importFile(request *http.Request) (multipart.File, error) {
	if err := request.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		return nil, failure.BadRequestFromString("request must be multipart/form-data with a workbook file") // nolint:wrapcheck
	}

	file, _, err := request.FormFile(constant.FormFile)
	if err != nil {
		return nil, failure.BadRequestFromString("missing workbook file") // nolint:wrapcheck
	}

	return file, nil
}

func parseDateRange(request *http.Request) (time.Time, time.Time, error) {
	query := request.URL.Query()

	from, err := timezone.Parse(constant.DateOnlyFormat, query.Get(constant.RequestParamStartDate))
	if err != nil {
		return time.Time{}, time.Time{}, failure.BadRequestFromString("invalid start_date, expected YYYY-MM-DD") // nolint:wrapcheck
	}

	to, err := timezone.Parse(constant.DateOnlyFormat, query.Get(constant.RequestParamEndDate))
	if err != nil {
		return time.Time{}, time.Time{}, failure.BadRequestFromString("invalid end_date, expected YYYY-MM-DD") // nolint:wrapcheck
	}

	if to.Before(from) {
		return time.Time{}, time.Time{}, failure.BadRequestFromString("end_date is before start_date") // nolint:wrapcheck
	}

	return from, to, nil
}
