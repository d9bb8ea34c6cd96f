package http

import (
	"net/http"
	"strings"

	"coopfin-loan-engine/internal/domain/actor"

	"github.com/labstack/echo/v4"
)

const (
	HeaderActorID   = "Ax-Actor-Id"
	HeaderActorRole = "Ax-Actor-Role"

	actorKey = "actor"
)

// ActorMiddleware resolves the caller identity set by the auth gateway.
func ActorMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := strings.TrimSpace(c.Request().Header.Get(HeaderActorID))
			if id == "" {
				return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing " + HeaderActorID})
			}
			role, err := actor.ParseRole(c.Request().Header.Get(HeaderActorRole))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid " + HeaderActorRole})
			}
			c.Set(actorKey, actor.New(id, role))
			return next(c)
		}
	}
}

func actorOf(c echo.Context) actor.Actor {
	a, _ := c.Get(actorKey).(actor.Actor)
	return a
}
