package controllers

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"gear-guard/internal/authz"
	"gear-guard/pkg/utils"
	appwebsocket "gear-guard/pkg/websocket"
)

// PrincipalResolver проверяет токен из query-параметра (браузер не шлёт заголовки при upgrade).
type PrincipalResolver interface {
	Resolve(ctx context.Context, token string) (authz.Principal, error)
}

type WebSocketController struct {
	hub      *appwebsocket.Hub
	resolver PrincipalResolver
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewWebSocketController(hub *appwebsocket.Hub, resolver PrincipalResolver, allowedOrigins []string, logger *zap.Logger) *WebSocketController {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}
	return &WebSocketController{
		hub:      hub,
		resolver: resolver,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := origins[origin]
				return ok
			},
		},
	}
}

func (c *WebSocketController) ServeWs(ctx echo.Context) error {
	token := ctx.QueryParam("token")
	if token == "" {
		return ctx.JSON(http.StatusUnauthorized, utils.HTTPResponse{Status: false, Message: "Отсутствует токен"})
	}

	principal, err := c.resolver.Resolve(ctx.Request().Context(), token)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	conn, err := c.upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		c.logger.Error("WebSocket: не удалось улучшить соединение", zap.Error(err))
		return nil
	}

	client := appwebsocket.NewClient(c.hub, conn, principal.ID)
	c.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	c.logger.Info("WebSocket: клиент подключен", zap.Uint64("userID", principal.ID))
	return nil
}
