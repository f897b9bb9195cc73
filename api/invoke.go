package api

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/relay/pkg/settings"
	"github.com/papercomputeco/relay/pkg/shell"
	"github.com/papercomputeco/relay/proxy"
)

// ErrorResponse is the body of every failed command.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// InvokeArgs are the JSON arguments of a command. Each command reads only the
// fields it needs.
type InvokeArgs struct {
	Endpoint string             `json:"endpoint"`
	Body     json.RawMessage    `json:"body,omitempty"`
	FilePath string             `json:"file_path,omitempty"`
	Settings *settings.Settings `json:"settings,omitempty"`
}

const (
	kindBadRequest = "bad_request"
	kindSettings   = "settings"
)

func (s *Server) handleInvoke(c *fiber.Ctx) error {
	command := c.Params("command")

	var args InvokeArgs
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &args); err != nil {
			return s.fail(c, command, fiber.StatusBadRequest, kindBadRequest, "invalid command arguments: "+err.Error())
		}
	}

	s.logger.Debug("command invoked",
		zap.String("command", command),
		zap.String("endpoint", args.Endpoint),
	)

	ctx := c.UserContext()

	switch command {
	case "api_get":
		return s.respond(c, command, func() (any, error) { return s.commands.APIGet(ctx, args.Endpoint) })

	case "api_post":
		return s.respond(c, command, func() (any, error) {
			body, err := decodeBody(args.Body)
			if err != nil {
				return nil, err
			}
			return s.commands.APIPost(ctx, args.Endpoint, body)
		})

	case "api_put":
		return s.respond(c, command, func() (any, error) {
			body, err := decodeBody(args.Body)
			if err != nil {
				return nil, err
			}
			return s.commands.APIPut(ctx, args.Endpoint, body)
		})

	case "api_delete":
		return s.respond(c, command, func() (any, error) { return s.commands.APIDelete(ctx, args.Endpoint) })

	case "api_upload":
		if args.FilePath == "" {
			return s.fail(c, command, fiber.StatusBadRequest, kindBadRequest, "file_path is required")
		}
		return s.respond(c, command, func() (any, error) {
			return s.commands.APIUpload(ctx, args.Endpoint, args.FilePath)
		})

	case "api_download":
		data, err := s.commands.APIDownload(ctx, args.Endpoint)
		if err != nil {
			return s.failWith(c, command, err)
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
		return c.Send(data)

	case "get_settings":
		st, err := s.commands.GetSettings()
		if err != nil {
			return s.failWith(c, command, err)
		}
		return c.JSON(st)

	case "save_settings_cmd":
		if args.Settings == nil {
			return s.fail(c, command, fiber.StatusBadRequest, kindBadRequest, "settings are required")
		}
		if err := s.commands.SaveSettings(*args.Settings); err != nil {
			return s.failWith(c, command, err)
		}
		return c.JSON(map[string]any{})

	case "reset_settings_cmd":
		st, err := s.commands.ResetSettings()
		if err != nil {
			return s.failWith(c, command, err)
		}
		return c.JSON(st)

	default:
		return s.fail(c, command, fiber.StatusNotFound, kindBadRequest, "unknown command: "+command)
	}
}

// respond runs a proxied call and writes its value. The endpoint is appended
// to the base URL as given, so an empty endpoint targets the base URL itself.
func (s *Server) respond(c *fiber.Ctx, command string, call func() (any, error)) error {
	value, err := call()
	if err != nil {
		return s.failWith(c, command, err)
	}

	return c.JSON(value)
}

// failWith maps a command error to a status and kind.
func (s *Server) failWith(c *fiber.Ctx, command string, err error) error {
	var badBody *bodyError

	switch {
	case errors.As(err, &badBody):
		return s.fail(c, command, fiber.StatusBadRequest, kindBadRequest, err.Error())
	case errors.Is(err, shell.ErrInvalidSettings):
		return s.fail(c, command, fiber.StatusBadRequest, kindSettings, err.Error())
	}

	kind := proxy.KindOf(err)
	status := fiber.StatusInternalServerError
	switch kind {
	case proxy.KindUpstream, proxy.KindTransport:
		status = fiber.StatusBadGateway
	case proxy.KindFileRead, proxy.KindInvalid:
		status = fiber.StatusBadRequest
	}

	// Settings I/O errors are not proxy errors; KindOf reports them as transport.
	if isSettingsCommand(command) && kind == proxy.KindTransport {
		kind = kindSettings
		status = fiber.StatusInternalServerError
	}

	return s.fail(c, command, status, string(kind), err.Error())
}

func (s *Server) fail(c *fiber.Ctx, command string, status int, kind, message string) error {
	s.logger.Debug("command failed",
		zap.String("command", command),
		zap.Int("status", status),
		zap.String("kind", kind),
		zap.String("error", message),
	)

	return c.Status(status).JSON(ErrorResponse{Error: message, Kind: kind})
}

func isSettingsCommand(command string) bool {
	switch command {
	case "get_settings", "save_settings_cmd", "reset_settings_cmd":
		return true
	}
	return false
}

type bodyError struct {
	err error
}

func (e *bodyError) Error() string {
	return "invalid body: " + e.err.Error()
}

// decodeBody turns the raw body argument into a JSON value. A missing body
// is nil, which the proxy sends as {}. A literal null is kept as null.
func decodeBody(raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, &bodyError{err: err}
	}
	if body == nil {
		return json.RawMessage("null"), nil
	}

	return body, nil
}
