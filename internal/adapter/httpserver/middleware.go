package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/chargewatch/internal/adapter/remoteapi"
	"github.com/pscheid92/chargewatch/internal/app"
	"github.com/pscheid92/chargewatch/internal/platform/correlation"
	apperrors "github.com/pscheid92/chargewatch/internal/platform/errors"
)

const (
	contextKeyConsole  = "console"
	contextKeyClientID = "clientID"
	maxCorrelationLen  = 64
)

// correlationMiddleware adopts the caller's correlation ID when one is sent,
// so provider API calls share the ID of the dashboard request that made them.
func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Request().Header.Get(remoteapi.CorrelationHeader)
		if id == "" || len(id) > maxCorrelationLen {
			id = correlation.NewID()
		}
		c.Response().Header().Set(remoteapi.CorrelationHeader, id)
		ctx := correlation.WithID(c.Request().Context(), id)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// withConsole identifies the browser client by a signed cookie, issuing a new
// client ID on first contact, and attaches its console to the request.
func (s *Server) withConsole(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		session, err := s.sessionStore.Get(c.Request(), sessionName)
		if err != nil {
			slog.WarnContext(c.Request().Context(), "Discarding unreadable client cookie", "error", err)
			session, err = s.sessionStore.New(c.Request(), sessionName)
			if err != nil {
				return apperrors.InternalError("failed to create client session", err)
			}
		}

		clientID, _ := session.Values[sessionKeyClientID].(string)
		if _, err := uuid.Parse(clientID); err != nil {
			clientID = uuid.NewString()
			session.Values[sessionKeyClientID] = clientID
			if err := session.Save(c.Request(), c.Response().Writer); err != nil {
				return apperrors.InternalError("failed to save client session", err)
			}
		}

		ctx := correlation.WithClientID(c.Request().Context(), clientID)
		c.SetRequest(c.Request().WithContext(ctx))

		c.Set(contextKeyClientID, clientID)
		c.Set(contextKeyConsole, s.consoles.Get(ctx, clientID))
		return next(c)
	}
}

// requireLogin redirects clients without an active session to the login page.
// Must run after withConsole.
func (s *Server) requireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !consoleOf(c).State().Authenticated() {
			return s.redirect(c, "/auth/login")
		}
		return next(c)
	}
}

func consoleOf(c echo.Context) *app.Console {
	console, _ := c.Get(contextKeyConsole).(*app.Console)
	return console
}

func ErrorHandlingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				return err
			}

			structuredErr := apperrors.AsStructuredError(err)
			logError(c, structuredErr)

			if err := c.JSON(structuredErr.HTTPStatus(), structuredErr.ToResponse()); err != nil {
				return fmt.Errorf("failed to write error response: %w", err)
			}
			return nil
		}
	}
}

func logError(c echo.Context, err *apperrors.Error) {
	attrs := []any{
		"error_type", err.Type,
		"message", err.Message,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"status", err.HTTPStatus(),
	}

	for k, v := range err.Context {
		attrs = append(attrs, k, v)
	}

	ctx := c.Request().Context()
	switch err.Type {
	case apperrors.TypeValidation:
		slog.InfoContext(ctx, "Validation error", attrs...)
	case apperrors.TypeUnauthorized:
		slog.InfoContext(ctx, "Unauthorized", attrs...)
	case apperrors.TypeNotFound:
		slog.InfoContext(ctx, "Not found", attrs...)
	case apperrors.TypeInternal:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.ErrorContext(ctx, "Internal error", attrs...)
	case apperrors.TypeExternal:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.ErrorContext(ctx, "External service error", attrs...)
	default:
		slog.ErrorContext(ctx, "Unknown error type", attrs...)
	}
}

// isJSONRequest reports whether the client asked for a JSON reply rather than
// an HTML page.
func isJSONRequest(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

func writeJSON(c echo.Context, v any) error {
	if err := c.JSON(http.StatusOK, v); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
