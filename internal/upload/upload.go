// Package upload lee los archivos adjuntos de las peticiones multipart y
// aplica los límites de tamaño y formato antes de tocar el blob store.
package upload

import (
	"fmt"
	"io"

	"meetings-backend/internal/blob"

	"github.com/gofiber/fiber/v2"
)

// Read devuelve el archivo adjunto del campo indicado, o (_, nil, nil) si
// la petición no adjunta ninguno.
func Read(c *fiber.Ctx, field string, maxMB int) (string, []byte, *fiber.Error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", nil, nil
	}

	if !blob.IsAllowedImage(fh.Filename) {
		return "", nil, fiber.NewError(fiber.StatusBadRequest,
			"Formato de archivo no permitido: jpg, jpeg, png, gif, webp")
	}
	if fh.Size > int64(maxMB)*1024*1024 {
		return "", nil, fiber.NewError(fiber.StatusRequestEntityTooLarge,
			fmt.Sprintf("El tamaño del archivo no debe ser superior a %d MB", maxMB))
	}

	f, err := fh.Open()
	if err != nil {
		return "", nil, fiber.NewError(fiber.StatusInternalServerError,
			"Se ha producido un error al leer el archivo subido")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, fiber.NewError(fiber.StatusInternalServerError,
			"Se ha producido un error al leer el archivo subido")
	}
	return fh.Filename, data, nil
}
