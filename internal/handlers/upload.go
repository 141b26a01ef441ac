package handlers

import (
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// formFiles returns the uploaded files under the first field name that has any.
func formFiles(c *fiber.Ctx, fields ...string) ([]*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "failed to parse multipart form")
	}
	for _, field := range fields {
		if files := form.File[field]; len(files) > 0 {
			return files, nil
		}
	}
	return nil, fiber.NewError(fiber.StatusBadRequest, "no file uploaded, expected field '"+fields[0]+"'")
}

// formLanguages reads the "languages" form field, either repeated or comma separated.
func formLanguages(c *fiber.Ctx) []string {
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	var languages []string
	for _, value := range form.Value["languages"] {
		for _, lang := range strings.Split(value, ",") {
			if lang = strings.TrimSpace(lang); lang != "" {
				languages = append(languages, lang)
			}
		}
	}
	return languages
}
