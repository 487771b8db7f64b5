package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gorilla/websocket"

	"weighbridge-server/internal/config"
	"weighbridge-server/internal/domain"
	"weighbridge-server/internal/logger"
	"weighbridge-server/internal/metrics"
	"weighbridge-server/internal/realtime"
	"weighbridge-server/internal/service"
)

var (
	errMalformed     = errors.New("malformed payload")
	errMissingSecret = errors.New("admin secret is required")
)

// WeightReader exposes the live weight for new sessions.
type WeightReader interface {
	Weight() float64
}

type commandHandler func(ctx context.Context, c *realtime.Client, payload json.RawMessage) error

// Gateway upgrades operator connections and dispatches their commands.
type Gateway struct {
	weighment service.WeighmentService
	admin     service.AdminService
	hub       *realtime.Hub
	weight    WeightReader
	metrics   *metrics.Metrics
	upgrader  websocket.Upgrader
	handlers  map[string]commandHandler
}

func NewGateway(
	weighment service.WeighmentService,
	admin service.AdminService,
	hub *realtime.Hub,
	weight WeightReader,
	m *metrics.Metrics,
) *Gateway {
	g := &Gateway{
		weighment: weighment,
		admin:     admin,
		hub:       hub,
		weight:    weight,
		metrics:   m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Operator and admin pages may be served from another host; CORS is open for the API too.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	g.handlers = map[string]commandHandler{
		"REGISTER_GATE_ENTRY":    g.registerGateEntry,
		"AUTHORIZE_ENTRY":        g.authorizeEntry,
		"AUTHORIZE_EXIT":         g.authorizeExit,
		"CONFIRM_VEHICLE_ON_WB":  g.confirmOnScale,
		"CAPTURE_FIRST_WEIGHT":   g.captureFirstWeight,
		"CAPTURE_SECOND_WEIGHT":  g.captureSecondWeight,
		"UPDATE_PRINT_DETAILS":   g.updatePrintDetails,
		"ADMIN_ACTION":           g.adminAction,
		"GET_COMPLETED_FOR_DATE": g.getCompletedForDate,
		"DELETE_ALL_COMPLETED":   g.deleteAllCompleted,
		"SEARCH_BY_SERIAL":       g.searchBySerial,
	}
	return g
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("WebSocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	client := realtime.NewClient(g.hub, conn)
	// The request context ends when the handler returns, so commands run on a detached one.
	client.Run(context.WithoutCancel(r.Context()), g.sendBaseline, g.Dispatch)
}

// sendBaseline gives a new session the live weight, the in-flight list and today's finalized list.
func (g *Gateway) sendBaseline(c *realtime.Client) {
	ctx := context.Background()
	c.Send(realtime.WeightMessage(g.weight.Weight()))

	pending, err := g.weighment.ListPending(ctx)
	if err != nil {
		logger.WithSession(c.ID()).Error("Failed to load in-flight list for new session", "error", err)
	} else {
		c.Send(realtime.PendingListMessage(pending))
	}

	today := g.weighment.Today()
	completed, err := g.weighment.ListCompleted(ctx, today)
	if err != nil {
		logger.WithSession(c.ID()).Error("Failed to load finalized list for new session", "error", err)
	} else {
		c.Send(realtime.CompletedListMessage(today, completed))
	}
}

// Dispatch decodes one frame and runs its command. A failing command never ends the session.
func (g *Gateway) Dispatch(ctx context.Context, c *realtime.Client, data []byte) {
	var in realtime.Inbound
	if err := json.Unmarshal(data, &in); err != nil {
		g.metrics.Command("", "invalid")
		logger.WithSession(c.ID()).Warn("Dropped unparseable message", "error", err)
		return
	}

	log := logger.WithSession(c.ID()).With("type", in.Type)
	handler, ok := g.handlers[in.Type]
	if !ok {
		g.metrics.Command(in.Type, "unknown")
		log.Warn("Dropped unknown message type")
		return
	}

	defer func() {
		if r := recover(); r != nil {
			g.metrics.Command(in.Type, "panic")
			log.Error("Command panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()

	if err := g.authorize(in); err != nil {
		g.metrics.Command(in.Type, "rejected")
		log.Warn("Command rejected", "error", err)
		c.Send(realtime.AdminResultMessage(service.AdminResult{Success: false, Message: "Invalid Admin Password"}))
		return
	}

	logger.EnterMethod("Gateway."+in.Type, "session", c.ID())
	err := handler(ctx, c, in.Payload)
	switch {
	case err == nil:
		g.metrics.Command(in.Type, "ok")
		logger.ExitMethod("Gateway."+in.Type, "session", c.ID())
	case errors.Is(err, domain.ErrNotFound):
		g.metrics.Command(in.Type, "not_found")
		log.Info("Command ignored: unknown transaction", "error", err)
	case errors.Is(err, errMalformed), errors.Is(err, domain.ErrInvalidInput):
		g.metrics.Command(in.Type, "invalid")
		log.Warn("Command dropped: invalid input", "error", err)
	default:
		g.metrics.Command(in.Type, "error")
		logger.ExitMethodWithError("Gateway."+in.Type, err, "session", c.ID())
	}
}

// authorize applies the message security level before the payload reaches a handler.
func (g *Gateway) authorize(in realtime.Inbound) error {
	switch config.GetSecurityLevel(in.Type) {
	case config.SecurityAdminSecret:
		var p struct {
			Password string `json:"password"`
		}
		if err := json.Unmarshal(in.Payload, &p); err != nil || p.Password == "" {
			return errMissingSecret
		}
	}
	return nil
}

func decode(payload json.RawMessage, v any) error {
	if len(payload) == 0 {
		return fmt.Errorf("%w: payload is required", errMalformed)
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	return nil
}

func requireID(id *flexID) (int64, error) {
	if id == nil {
		return 0, fmt.Errorf("%w: id is required", errMalformed)
	}
	return int64(*id), nil
}
