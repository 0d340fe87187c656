package session

import (
	"net/http"
	"roomtime/infras/otel"
	"roomtime/internal/domains/session/model"
	"roomtime/internal/domains/session/model/dto"
	"roomtime/internal/domains/session/repository"
	"roomtime/internal/domains/session/service"
	"roomtime/shared/constant"
	gDto "roomtime/shared/dto"
	"roomtime/shared/validator"
	"roomtime/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Session
	otel    otel.Otel
}

func New(service service.Session, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/sessions", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateSession)
		routerGroup.Get("/", handler.GetSessions)
		routerGroup.Get("/{id}", handler.GetSessionByID)
		routerGroup.Delete("/{id}", handler.DeleteSession)
	})
}

// CreateSession registers a teaching session by manual entry.
func (handler *Handler) CreateSession(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateSession")
	defer scope.End()

	var req dto.CreateSessionRequest
	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(writer, err)

		return
	}

	res, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create class session")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusCreated, res)
}

// GetSessions retrieves class sessions with optional room/class filtering.
func (handler *Handler) GetSessions(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSessions")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	filter := repository.ListFilter{
		RoomID:    request.URL.Query().Get(model.FieldRoomID),
		ClassCode: request.URL.Query().Get(model.FieldClassCode),
	}

	res, err := handler.service.GetAll(ctx, queryParams, filter)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get class sessions")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// GetSessionByID retrieves one class session.
func (handler *Handler) GetSessionByID(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSessionByID")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	res, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get class session")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// DeleteSession removes a class session.
func (handler *Handler) DeleteSession(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteSession")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete class session")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Class session deleted successfully")
}
