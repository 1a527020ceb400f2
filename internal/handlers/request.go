package handlers

import (
	"bytes"
	"strings"

	"stockroom/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// formFields are read from urlencoded and multipart bodies.
var formFields = []string{"name", "price", "availability"}

// readInput flattens the request body into raw strings. JSON and form
// bodies are supported; an empty body yields an empty Input.
func readInput(c *fiber.Ctx) (validation.Input, error) {
	ctype := strings.ToLower(string(c.Request().Header.ContentType()))
	if strings.HasPrefix(ctype, fiber.MIMEApplicationForm) || strings.HasPrefix(ctype, fiber.MIMEMultipartForm) {
		in := make(validation.Input, len(formFields))
		for _, f := range formFields {
			in[f] = c.FormValue(f)
		}
		return in, nil
	}

	body := bytes.TrimSpace(c.Body())
	if len(body) == 0 {
		return validation.Input{}, nil
	}

	values := map[string]any{}
	if err := c.App().Config().JSONDecoder(body, &values); err != nil {
		return nil, err
	}
	return validation.FromValues(values), nil
}
