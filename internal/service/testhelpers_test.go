package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/claims-api/internal/models"
)

// openServiceDB gives each test its own in-memory database. The shared cache
// keeps the database alive across GORM's pooled connections.
func openServiceDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Module{}, &models.Claim{}, &models.SupportingDocument{}, &models.AuditLog{}))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id uint, role, fullName string) models.User {
	t.Helper()
	user := models.User{
		ID:           id,
		Username:     fmt.Sprintf("user%d", id),
		PasswordHash: "x",
		Email:        fmt.Sprintf("user%d@example.ac.za", id),
		Role:         role,
		FullName:     fullName,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// memStorage keeps document bytes in memory for tests.
type memStorage struct {
	files map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{files: map[string][]byte{}}
}

func (m *memStorage) Save(_ context.Context, name string, reader io.Reader) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	m.files[name] = data
	return name, nil
}

func (m *memStorage) Open(_ context.Context, path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", path)
	}
	return data, nil
}

func (m *memStorage) Remove(_ context.Context, path string) error {
	delete(m.files, path)
	return nil
}

// makeFileHeader builds a multipart file header the way Fiber hands one to
// the service.
func makeFileHeader(t *testing.T, fileName string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(&buf, writer.Boundary())
	form, err := reader.ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}
