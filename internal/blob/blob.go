// Package blob almacena los archivos subidos (carteles y avatares) y
// devuelve referencias estables. El borrado es best-effort: un fallo se
// loguea y nunca aborta la operación principal.
package blob

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	EventFolder = "Meetings/Events"
	UserFolder  = "Meetings/Users"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

func IsAllowedImage(fileName string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(fileName))]
}

type Store interface {
	// Save guarda el contenido y devuelve su referencia estable.
	Save(folder, fileName string, data []byte) (string, error)
	Delete(ref string) error
}

// DiskStore guarda los archivos en disco bajo una raíz configurada y sirve
// referencias URL bajo BaseURL.
type DiskStore struct {
	Root    string
	BaseURL string
}

func NewDiskStore(root, baseURL string) *DiskStore {
	return &DiskStore{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (s *DiskStore) Save(folder, fileName string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	name := uuid.NewString() + ext

	dir := filepath.Join(s.Root, filepath.FromSlash(folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("no se ha podido crear la carpeta %q: %w", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("no se ha podido guardar el archivo %q: %w", name, err)
	}

	return s.BaseURL + "/" + path.Join(folder, name), nil
}

func (s *DiskStore) Delete(ref string) error {
	rel, ok := strings.CutPrefix(ref, s.BaseURL+"/")
	if !ok || rel == "" || strings.Contains(rel, "..") {
		return fmt.Errorf("referencia ajena al almacén: %q", ref)
	}
	return os.Remove(filepath.Join(s.Root, filepath.FromSlash(rel)))
}

// DeleteQuietly solicita el borrado de una referencia sin propagar el
// fallo. Las referencias vacías se ignoran.
func DeleteQuietly(s Store, ref, context string) {
	if s == nil || ref == "" {
		return
	}
	if err := s.Delete(ref); err != nil {
		log.Warn().Err(err).Str("ref", ref).Msg(context)
	}
}
