package upload_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusconnect/internal/upload"
	dErrors "campusconnect/pkg/domain-errors"
	"campusconnect/pkg/testutil"
)

// fileHeader builds a real multipart.FileHeader the way the handler receives
// one, by round-tripping a form through the HTTP parser.
func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(upload.MaxFileSize))

	_, header, err := req.FormFile("image")
	require.NoError(t, err)
	return header
}

func TestDiskStorage(t *testing.T) {
	store, err := upload.NewDiskStorage(t.TempDir())
	require.NoError(t, err)

	testutil.Given(t, "a valid image upload", func(t *testing.T) {
		url, err := store.Save(fileHeader(t, "photo.PNG", []byte("pixels")))
		require.NoError(t, err)

		testutil.Then(t, "it is served under the uploads prefix", func(t *testing.T) {
			assert.True(t, strings.HasPrefix(url, upload.URLPrefix+"/"))
		})
		testutil.Then(t, "the stored name discards the client filename", func(t *testing.T) {
			assert.NotContains(t, url, "photo")
			assert.True(t, strings.HasSuffix(url, ".png"))
		})
		testutil.And(t, "the bytes land in the backing directory", func(t *testing.T) {
			stored, err := os.ReadFile(filepath.Join(store.Dir(), filepath.Base(url)))
			require.NoError(t, err)
			assert.Equal(t, []byte("pixels"), stored)
		})
	})

	testutil.When(t, "the extension is not an image type", func(t *testing.T) {
		_, err := store.Save(fileHeader(t, "script.sh", []byte("#!/bin/sh")))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	testutil.When(t, "the file has no extension at all", func(t *testing.T) {
		_, err := store.Save(fileHeader(t, "noext", []byte("data")))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	testutil.When(t, "the upload exceeds the size cap", func(t *testing.T) {
		header := fileHeader(t, "big.jpg", []byte("tiny"))
		header.Size = upload.MaxFileSize + 1

		_, err := store.Save(header)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}
