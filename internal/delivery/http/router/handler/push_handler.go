package handler

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"safeguard/config"
	deliverycontext "safeguard/internal/delivery/context"
	"safeguard/internal/domain/constants"
	"safeguard/internal/domain/service"
	"safeguard/internal/infra/pubsub"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"google.golang.org/api/idtoken"
)

// PushHandlerParams holds dependencies for PushHandler, injected by Fx.
type PushHandlerParams struct {
	fx.In

	Config   *config.Config
	Logger   *slog.Logger
	Notifier service.LocationNotifier
}

// PushHandler receives live location events relayed by a Pub/Sub push subscription
// and forwards them to the streams connected to this instance.
//
// Every request is authenticated: google pushes carry a Google-signed OIDC token,
// local pushes carry the shared push secret. Any other provider has no push
// subscription and the route is not mounted.
type PushHandler struct {
	verify   func(*http.Request) error
	notifier service.LocationNotifier
	logger   *slog.Logger
}

// NewPushHandler is the constructor for PushHandler
func NewPushHandler(params PushHandlerParams) *PushHandler {
	h := &PushHandler{
		notifier: params.Notifier,
		logger:   params.Logger,
	}

	cfg := params.Config.PubSub
	switch {
	case cfg == nil:
	case cfg.Provider == constants.PubSubProviderGoogle:
		h.verify = verifyPubSubToken
	case cfg.Provider == constants.PubSubProviderLocal && cfg.PushSecret != "":
		h.verify = sharedSecretVerifier(cfg.PushSecret)
	}

	return h
}

// Enabled reports whether this instance accepts pushes at all.
func (h *PushHandler) Enabled() bool {
	return h.verify != nil
}

// HandlePush handles POST /pubsub/push. Malformed messages are acknowledged with 400
// so the subscription does not redeliver them.
func (h *PushHandler) HandlePush(c echo.Context) error {
	ctx := c.Request().Context()

	if h.verify == nil {
		return c.NoContent(http.StatusUnauthorized)
	}
	if err := h.verify(c.Request()); err != nil {
		h.logger.Warn("[Push] Rejected unauthenticated push", slog.Any("error", err))

		return c.NoContent(http.StatusUnauthorized)
	}

	var pushMsg pubsub.PushMessage
	if err := c.Bind(&pushMsg); err != nil {
		h.logger.Error("[Push] Failed to parse push message", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	data, err := base64.StdEncoding.DecodeString(pushMsg.Message.Data)
	if err != nil {
		h.logger.Error("[Push] Failed to decode message data", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	var event service.LiveLocationEvent
	if err := json.Unmarshal(data, &event); err != nil || event.EventID == "" {
		h.logger.Error("[Push] Failed to parse live location event", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	requestID := extractRequestID(ctx, &pushMsg, &event)
	reqLogger := h.logger.With(slog.String("request_id", requestID))
	ctx = deliverycontext.WithRequestID(ctx, requestID)
	ctx = deliverycontext.WithLogger(ctx, reqLogger)

	reqLogger.Debug("[Push] Relaying live location event",
		slog.String("event_id", event.EventID),
		slog.String("type", string(event.Type)),
		slog.Int("recipient_count", len(event.Recipients)),
	)

	h.notifier.NotifyLiveLocation(ctx, &event)

	return c.NoContent(http.StatusOK)
}

// extractRequestID prefers message attributes, then the event, then the inbound request.
func extractRequestID(ctx context.Context, pushMsg *pubsub.PushMessage, event *service.LiveLocationEvent) string {
	if requestID := pushMsg.Message.Attributes["request_id"]; requestID != "" {
		return requestID
	}
	if event.RequestID != "" {
		return event.RequestID
	}
	if requestID := deliverycontext.GetRequestIDFromContext(ctx); requestID != "" {
		return requestID
	}

	return uuid.New().String()
}

// sharedSecretVerifier checks the secret the local publisher attaches to each push.
func sharedSecretVerifier(secret string) func(*http.Request) error {
	return func(req *http.Request) error {
		got := req.Header.Get(pubsub.PushSecretHeader)
		if got == "" {
			return errors.New("missing push secret")
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			return errors.New("push secret mismatch")
		}

		return nil
	}
}

// verifyPubSubToken checks the Google-signed OIDC token attached to push requests.
func verifyPubSubToken(req *http.Request) error {
	authHeader := req.Header.Get("Authorization")
	if authHeader == "" {
		return errors.New("missing authorization header")
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return errors.New("invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, bearerPrefix)

	// The audience is the push endpoint URL.
	scheme := "https"
	if req.TLS == nil {
		scheme = "http"
	}
	audience := fmt.Sprintf("%s://%s%s", scheme, req.Host, req.URL.Path)

	payload, err := idtoken.Validate(req.Context(), token, audience)
	if err != nil {
		return errors.Wrap(err, "failed to validate token")
	}

	if payload.Issuer != "accounts.google.com" && payload.Issuer != "https://accounts.google.com" {
		return errors.Errorf("invalid issuer: %s", payload.Issuer)
	}

	if emailVerified, ok := payload.Claims["email_verified"].(bool); ok && !emailVerified {
		return errors.New("email not verified")
	}

	return nil
}
