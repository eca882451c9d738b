package server

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/models"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/service"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const msgInvalidBody = "Invalid request body"

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, models.NewBadRequestError("Invalid "+param))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// bindJSON decodes the request body into dst and validates it.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func bindJSON(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		_ = models.RespondWithError(c, models.NewBadRequestError(msgInvalidBody))
		return errResponseWritten
	}
	return validateOrRespond(c, dst)
}

func validateOrRespond(c *fiber.Ctx, dst any) error {
	if err := validation.Struct(dst); err != nil {
		_ = models.RespondWithError(c, err)
		return errResponseWritten
	}
	return nil
}

// readUpload reads the multipart file in field. A missing part yields an
// empty upload, which the image store rejects.
func readUpload(c *fiber.Ctx, field string) (service.ImageUpload, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return service.ImageUpload{}, nil
	}

	src, err := file.Open()
	if err != nil {
		return service.ImageUpload{}, models.NewBadRequestError("Unable to read uploaded file")
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return service.ImageUpload{}, models.NewBadRequestError("Unable to read uploaded file")
	}
	return service.ImageUpload{
		ContentType: file.Header.Get(fiber.HeaderContentType),
		Content:     content,
	}, nil
}

// readJSONPart decodes a multipart JSON part sent either as a plain form value
// or as a file part with its own content type.
func readJSONPart(c *fiber.Ctx, field string, dst any) error {
	raw := []byte(c.FormValue(field))
	if len(raw) == 0 {
		file, err := c.FormFile(field)
		if err != nil {
			return models.NewBadRequestError(msgInvalidBody)
		}
		src, err := file.Open()
		if err != nil {
			return models.NewBadRequestError(msgInvalidBody)
		}
		defer func() { _ = src.Close() }()
		if raw, err = io.ReadAll(src); err != nil {
			return models.NewBadRequestError(msgInvalidBody)
		}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return models.NewBadRequestError(msgInvalidBody)
	}
	return nil
}
