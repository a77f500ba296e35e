package config

import (
	"GutAssistant/pkg/handlerUtil"
	"errors"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

// Chat bodies carry at most a 2000 character message plus a small profile.
const chatBodyLimit = 64 * 1024

var fiberErrorCodes = map[int]string{
	fiber.StatusNotFound:              "ROUTE_NOT_FOUND",
	fiber.StatusMethodNotAllowed:      "METHOD_NOT_ALLOWED",
	fiber.StatusRequestEntityTooLarge: "BODY_TOO_LARGE",
	fiber.StatusUnprocessableEntity:   "UNPROCESSABLE_BODY",
}

func NewFiber(logger *logrus.Logger) *fiber.App {
	app := fiber.New(
		fiber.Config{
			AppName:           "Gut Assistant",
			BodyLimit:         chatBodyLimit,
			StrictRouting:     true,
			CaseSensitive:     true,
			EnablePrintRoutes: logger.IsLevelEnabled(logrus.DebugLevel),
			JSONEncoder:       jsoniter.Marshal,
			JSONDecoder:       jsoniter.Unmarshal,
			ErrorHandler:      newErrorHandler(logger),
		})

	return app
}

// newErrorHandler renders errors that escape a route in the same JSON shape
// the chat handlers use.
func newErrorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if !errors.As(err, &fe) {
			status, body := handlerUtil.Classify(err)
			if status >= fiber.StatusInternalServerError {
				logger.WithFields(logrus.Fields{
					"path":  c.Path(),
					"error": err.Error(),
				}).Error("Unhandled route error")
			}
			return c.Status(status).JSON(body)
		}

		code, ok := fiberErrorCodes[fe.Code]
		if !ok {
			code = "HTTP_ERROR"
		}
		return c.Status(fe.Code).JSON(handlerUtil.ErrorResponse{
			Error: fe.Message,
			Code:  code,
		})
	}
}
