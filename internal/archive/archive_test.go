package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFolderKey(t *testing.T) {
	tests := []struct {
		company  string
		position string
		want     string
	}{
		{"Acme", "Engineer", "Acme_Engineer"},
		{"Acme, Inc.", "Sr. Software Engineer (Go)", "AcmeInc_SrSoftwareEngineerGo"},
		{"Café Zürich", "Dev/Ops", "CaféZürich_DevOps"},
		{"", "", "_"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FolderKey(tt.company, tt.position))
		})
	}
}

func TestFolderKey_Deterministic(t *testing.T) {
	assert.Equal(t, FolderKey("Acme!", "Eng"), FolderKey("Acme", "E-n-g"))
}

func TestLocal_Upload(t *testing.T) {
	dir := t.TempDir()
	a := NewLocal(dir)
	ctx := context.Background()

	require.NoError(t, a.Upload(ctx, "Acme_Engineer", map[string][]byte{
		"resume.txt":       []byte("v1"),
		"cover_letter.txt": []byte("letter"),
	}))
	require.NoError(t, a.Upload(ctx, "Acme_Engineer", map[string][]byte{
		"resume.txt": []byte("v2"),
	}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "re-upload must reuse the folder")

	data, err := os.ReadFile(filepath.Join(dir, "Acme_Engineer", "resume.txt"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "Acme_Engineer", "cover_letter.txt"))
	require.NoError(t, err)
	assert.Equal(t, "letter", string(data))
}

func TestLocal_UploadRejectsPaths(t *testing.T) {
	a := NewLocal(t.TempDir())
	ctx := context.Background()

	var archiveErr *Error
	assert.ErrorAs(t, a.Upload(ctx, "../escape", nil), &archiveErr)
	assert.ErrorAs(t, a.Upload(ctx, "", nil), &archiveErr)
	assert.ErrorAs(t, a.Upload(ctx, "ok", map[string][]byte{"../x.txt": nil}), &archiveErr)
}
