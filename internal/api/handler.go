package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rafflechain/settler/internal/ledger"
	"github.com/rafflechain/settler/internal/raffle"
	"github.com/rafflechain/settler/pkg/tracing"
)

// ActorHeader carries the wallet address of the caller. The identity is resolved upstream and trusted.
const (
	ActorHeader = "X-Actor-Id"
	actorKey    = "actor"
)

var ErrEngineNil = errors.New("raffle engine is nil")

type RaffleEngine interface {
	CreateRaffle(ctx context.Context, creatorID string, terms raffle.Terms, creationTxHash string) (*raffle.Raffle, error)
	DraftRaffle(ctx context.Context, creatorID string, terms raffle.Terms) (*raffle.Raffle, error)
	ActivateRaffle(ctx context.Context, raffleID string, actorID string, creationTxHash string) (*raffle.Raffle, error)
	PurchaseTickets(ctx context.Context, raffleID string, buyerID string, quantity int64, txHash string) (*raffle.Raffle, error)
	CloseIfEligible(ctx context.Context, raffleID string) (*raffle.Raffle, error)
	SelectWinner(ctx context.Context, raffleID string) (*raffle.Raffle, error)
	ApproveAsCreator(ctx context.Context, raffleID string, actorID string) (*raffle.Raffle, error)
	ApproveAsWinner(ctx context.Context, raffleID string, actorID string) (*raffle.Raffle, error)
	Dispute(ctx context.Context, raffleID string, actorID string, reason string) (*raffle.Raffle, error)
	GetRaffle(ctx context.Context, raffleID string) (*raffle.Raffle, error)
	GetPurchases(ctx context.Context, raffleID string) ([]*raffle.TicketPurchase, error)
	ListVerifiedRaffles(ctx context.Context, filter raffle.Filter) ([]*raffle.Raffle, error)
}

// HealthChecker is a dependency reported by the health endpoint.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	engine  RaffleEngine
	logger  *slog.Logger
	checks  map[string]HealthChecker
	tracing tracing.Settings
}

func WithLogger(logger *slog.Logger) func(*Handler) {
	return func(h *Handler) {
		h.logger = logger
	}
}

func WithHealthCheck(name string, check HealthChecker) func(*Handler) {
	return func(h *Handler) {
		h.checks[name] = check
	}
}

func WithTracer(attr ...attribute.KeyValue) func(*Handler) {
	return func(h *Handler) {
		h.tracing = tracing.Enable(attr...)
	}
}

type Option func(*Handler)

func NewHandler(engine RaffleEngine, opts ...Option) (*Handler, error) {
	if engine == nil {
		return nil, ErrEngineNil
	}

	h := &Handler{
		engine: engine,
		logger: slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})),
		checks: make(map[string]HealthChecker),
	}

	for _, opt := range opts {
		opt(h)
	}

	h.logger = h.logger.With(slog.String("module", "api"))

	return h, nil
}

// Register adds all routes below /v1.
func (h *Handler) Register(e *echo.Echo) {
	g := e.Group("/v1")

	g.GET("/health", h.Health)
	g.GET("/raffles", h.ListRaffles)
	g.GET("/raffles/:id", h.GetRaffle)
	g.GET("/raffles/:id/tickets", h.GetPurchases)
	g.POST("/raffles/:id/close", h.CloseRaffle)
	g.POST("/raffles/:id/draw", h.SelectWinner)

	g.POST("/raffles", h.CreateRaffle, RequireActor)
	g.POST("/raffles/drafts", h.DraftRaffle, RequireActor)
	g.POST("/raffles/:id/activation", h.ActivateRaffle, RequireActor)
	g.POST("/raffles/:id/tickets", h.PurchaseTickets, RequireActor)
	g.POST("/raffles/:id/approvals/creator", h.ApproveAsCreator, RequireActor)
	g.POST("/raffles/:id/approvals/winner", h.ApproveAsWinner, RequireActor)
	g.POST("/raffles/:id/dispute", h.Dispute, RequireActor)
}

// RequireActor rejects requests without a valid caller wallet address.
func RequireActor(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		actorID := c.Request().Header.Get(ActorHeader)
		if actorID == "" {
			return c.JSON(http.StatusUnauthorized, NewErrorFields(ErrStatusUnauthorized, ReasonMissingActor, ActorHeader+" header is required"))
		}

		_, err := ledger.ParseAddress(actorID)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, NewErrorFields(ErrStatusUnauthorized, ReasonMissingActor, err.Error()))
		}

		c.Set(actorKey, actorID)
		return next(c)
	}
}

func actorOf(c echo.Context) string {
	actorID, _ := c.Get(actorKey).(string)
	return actorID
}

func (h *Handler) CreateRaffle(c echo.Context) (err error) {
	ctx, span := h.tracing.Start(c.Request().Context(), "Handler:CreateRaffle")
	defer func() {
		tracing.EndTracing(span, err)
	}()

	var req CreateRaffleRequest
	terms, err := h.termsFrom(c, &req)
	if err != nil {
		return h.fail(ctx, c, err)
	}

	r, err := h.engine.CreateRaffle(ctx, actorOf(c), terms, req.CreationTxHash)
	if err != nil {
		return h.fail(ctx, c, err)
	}

	return c.JSON(http.StatusCreated, toRaffleResponse(r))
}

func (h *Handler) DraftRaffle(c echo.Context) error {
	ctx := c.Request().Context()

	var req TermsRequest
	terms, err := h.termsFrom(c, &req)
	if err != nil {
		return h.fail(ctx, c, err)
	}

	r, err := h.engine.DraftRaffle(ctx, actorOf(c), terms)
	if err != nil {
		return h.fail(ctx, c, err)
	}

	return c.JSON(http.StatusCreated, toRaffleResponse(r))
}

type termsRequest interface {
	Validate() error
	Terms() (raffle.Terms, error)
}

func (h *Handler) termsFrom(c echo.Context, req termsRequest) (raffle.Terms, error) {
	err := decodeBody(c.Request().Body, req)
	if err != nil {
		return raffle.Terms{}, err
	}

	err = req.Validate()
	if err != nil {
		return raffle.Terms{}, err
	}

	return req.Terms()
}

func (h *Handler) ActivateRaffle(c echo.Context) (err error) {
	ctx, span := h.tracing.Start(c.Request().Context(), "Handler:ActivateRaffle")
	defer func() {
		tracing.EndTracing(span, err)
	}()

	var req ActivateRaffleRequest
	err = h.bind(c, &req)
	if err != nil {
		return h.fail(ctx, c, err)
	}

	r, err := h.engine.ActivateRaffle(ctx, c.Param("id"), actorOf(c), req.CreationTxHash)
	if err != nil {
		return h.fail(ctx, c, err)
	}

	return c.JSON(http.StatusOK, toRaffleResponse(r))
}

func (h *Handler) PurchaseTickets(c echo.Context) (err error) {
	ctx, span := h.tracing.Start(c.Request().Context(), "Handler:PurchaseTickets")
	defer func() {
		tracing.EndTracing(span, err)
	}()

	var req PurchaseTicketsRequest
	err = h.bind(c, &req)
	if err != nil {
		return h.fail(ctx, c, err)
	}

	r, err := h.engine.PurchaseTickets(ctx, c.Param("id"), actorOf(c), req.Quantity, req.TxHash)
	if err != nil {
		return h.fail(ctx, c, err)
	}

	return c.JSON(http.StatusOK, toRaffleResponse(r))
}

func (h *Handler) CloseRaffle(c echo.Context) error {
	return h.respond(c, func(ctx context.Context) (*raffle.Raffle, error) {
		return h.engine.CloseIfEligible(ctx, c.Param("id"))
	})
}

func (h *Handler) SelectWinner(c echo.Context) error {
	return h.respond(c, func(ctx context.Context) (*raffle.Raffle, error) {
		return h.engine.SelectWinner(ctx, c.Param("id"))
	})
}

func (h *Handler) ApproveAsCreator(c echo.Context) error {
	return h.respond(c, func(ctx context.Context) (*raffle.Raffle, error) {
		return h.engine.ApproveAsCreator(ctx, c.Param("id"), actorOf(c))
	})
}

func (h *Handler) ApproveAsWinner(c echo.Context) error {
	return h.respond(c, func(ctx context.Context) (*raffle.Raffle, error) {
		return h.engine.ApproveAsWinner(ctx, c.Param("id"), actorOf(c))
	})
}

func (h *Handler) Dispute(c echo.Context) error {
	ctx := c.Request().Context()

	var req DisputeRequest
	err := h.bind(c, &req)
	if err != nil {
		return h.fail(ctx, c, err)
	}

	return h.respond(c, func(ctx context.Context) (*raffle.Raffle, error) {
		return h.engine.Dispute(ctx, c.Param("id"), actorOf(c), req.Reason)
	})
}

func (h *Handler) GetRaffle(c echo.Context) error {
	return h.respond(c, func(ctx context.Context) (*raffle.Raffle, error) {
		return h.engine.GetRaffle(ctx, c.Param("id"))
	})
}

func (h *Handler) GetPurchases(c echo.Context) error {
	ctx := c.Request().Context()

	purchases, err := h.engine.GetPurchases(ctx, c.Param("id"))
	if err != nil {
		return h.fail(ctx, c, err)
	}

	resp := make([]PurchaseResponse, 0, len(purchases))
	for _, p := range purchases {
		resp = append(resp, toPurchaseResponse(p))
	}

	return c.JSON(http.StatusOK, resp)
}

// ListRaffles supports the query parameters status (repeatable), creator, limit and offset.
func (h *Handler) ListRaffles(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		filter   raffle.Filter
		statuses []string
	)

	err := echo.QueryParamsBinder(c).
		Strings("status", &statuses).
		String("creator", &filter.CreatorID).
		Int("limit", &filter.Limit).
		Int("offset", &filter.Offset).
		BindError()
	if err != nil {
		return h.fail(ctx, c, errors.Join(ErrMalformedBody, err))
	}

	for _, s := range statuses {
		status := raffle.Status(s)
		if !status.Valid() {
			return c.JSON(http.StatusBadRequest, NewErrorFields(ErrStatusBadRequest, ReasonInvalidRequest, "unknown status "+s))
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	raffles, err := h.engine.ListVerifiedRaffles(ctx, filter)
	if err != nil {
		return h.fail(ctx, c, err)
	}

	resp := make([]RaffleResponse, 0, len(raffles))
	for _, r := range raffles {
		resp = append(resp, toRaffleResponse(r))
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) Health(c echo.Context) error {
	ctx := c.Request().Context()

	for name, check := range h.checks {
		err := check.Ping(ctx)
		if err != nil {
			h.logger.ErrorContext(ctx, "Health check failed", slog.String("check", name), slog.String("err", err.Error()))
			return c.JSON(http.StatusServiceUnavailable, NewErrorFields(ErrStatusServiceUnavailable, ReasonUnhealthy, name))
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type validator interface {
	Validate() error
}

func (h *Handler) bind(c echo.Context, req validator) error {
	err := decodeBody(c.Request().Body, req)
	if err != nil {
		return err
	}

	return req.Validate()
}

func (h *Handler) respond(c echo.Context, op func(ctx context.Context) (*raffle.Raffle, error)) error {
	ctx := c.Request().Context()

	r, err := op(ctx)
	if err != nil {
		return h.fail(ctx, c, err)
	}

	return c.JSON(http.StatusOK, toRaffleResponse(r))
}

func (h *Handler) fail(ctx context.Context, c echo.Context, err error) error {
	errFields := ErrorFieldsFor(err)

	if errFields.Status >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "Request failed",
			slog.String("uri", c.Request().RequestURI),
			slog.String("reason", errFields.ReasonCode),
			slog.String("err", err.Error()),
		)
	} else {
		h.logger.DebugContext(ctx, "Request rejected",
			slog.String("uri", c.Request().RequestURI),
			slog.String("reason", errFields.ReasonCode),
			slog.String("err", err.Error()),
		)
	}

	return c.JSON(errFields.Status, errFields)
}
