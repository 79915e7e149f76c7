package blob

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAllowedImage(t *testing.T) {
	allowed := []string{"cartel.jpg", "CARTEL.JPG", "avatar.jpeg", "foto.png", "anim.gif", "moderna.webp"}
	for _, name := range allowed {
		assert.True(t, IsAllowedImage(name), "archivo %q", name)
	}
	denied := []string{"documento.pdf", "script.sh", "sin-extension", "truco.png.exe", ""}
	for _, name := range denied {
		assert.False(t, IsAllowedImage(name), "archivo %q", name)
	}
}

func TestDiskStoreSaveAndDelete(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "/uploads/")

	ref, err := store.Save(EventFolder, "cartel.png", []byte("contenido"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "/uploads/"+EventFolder+"/"), "referencia %q", ref)
	assert.True(t, strings.HasSuffix(ref, ".png"), "conserva la extensión")
	assert.NotContains(t, ref, "cartel", "el nombre original no se filtra a la referencia")

	rel := strings.TrimPrefix(ref, "/uploads/")
	onDisk := filepath.Join(store.Root, filepath.FromSlash(rel))
	data, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, "contenido", string(data))

	require.NoError(t, store.Delete(ref))
	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err))
}

func TestDiskStoreDeleteRejectsForeignRefs(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "/uploads")

	assert.Error(t, store.Delete("/otra-ruta/archivo.png"))
	assert.Error(t, store.Delete("/uploads/../fuera.png"))
	assert.Error(t, store.Delete(""))
}

func TestDeleteQuietlyIgnoresEmptyRef(t *testing.T) {
	// No hay referencia: no se llega a tocar el almacén
	DeleteQuietly(nil, "", "contexto")
	DeleteQuietly(NewDiskStore(t.TempDir(), "/uploads"), "", "contexto")
}
