package service

import (
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/apppanel/apiclient-core/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type avatar struct {
	URL string `json:"url"`
}

type receivedPart struct {
	count       int
	fieldName   string
	fileName    string
	contentType string
	data        []byte
}

func multipartHandler(t *testing.T, got *receivedPart, status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if assert.NoError(t, err) && assert.Equal(t, "multipart/form-data", mediaType) {
			reader := multipart.NewReader(r.Body, params["boundary"])
			for {
				part, err := reader.NextPart()
				if err == io.EOF {
					break
				}
				if !assert.NoError(t, err) {
					break
				}
				got.count++
				got.fieldName = part.FormName()
				got.fileName = part.FileName()
				got.contentType = part.Header.Get("Content-Type")
				got.data, _ = io.ReadAll(part)
			}
		}
		respond(status, body)(w, r)
	}
}

func TestUpload_SingleNamedPart(t *testing.T) {
	var got receivedPart
	client := setupTestClient(t, multipartHandler(t, &got, http.StatusOK, `{"data":{"url":"https://cdn.example.com/a.jpg"}}`))

	req := models.UploadRequest{
		Method:    http.MethodPost,
		Path:      "/v1/profile/avatar",
		FieldName: "avatar",
		FileName:  "a.jpg",
		MimeType:  "image/jpeg",
		Data:      []byte{0xff, 0xd8, 0xff, 0xe0},
	}

	value, err := Upload[avatar](context.Background(), client, req).Get()
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.jpg", value.URL)

	assert.Equal(t, 1, got.count)
	assert.Equal(t, "avatar", got.fieldName)
	assert.Equal(t, "a.jpg", got.fileName)
	assert.Equal(t, "image/jpeg", got.contentType)
	assert.Equal(t, req.Data, got.data)
}

func TestUpload_SniffsMissingMimeType(t *testing.T) {
	var got receivedPart
	client := setupTestClient(t, multipartHandler(t, &got, http.StatusOK, `{"data":{"url":"u"}}`))

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	result := Upload[avatar](context.Background(), client, models.UploadRequest{
		Method:    http.MethodPut,
		Path:      "/v1/photos",
		FieldName: "photo",
		FileName:  "photo.png",
		Data:      png,
	})
	require.True(t, result.OK())
	assert.Equal(t, "image/png", got.contentType)
}

func TestUpload_SharesResponsePipeline(t *testing.T) {
	var got receivedPart
	client := setupTestClient(t, multipartHandler(t, &got, http.StatusUnprocessableEntity,
		`{"error":{"code":"1001","message":"Validation Error","validationError":{"body":[{"message":"file too large","path":["photo","size"]}]}}}`))

	result := UploadAsync[avatar](context.Background(), client, models.UploadRequest{
		Method:    http.MethodPost,
		Path:      "/v1/photos",
		FieldName: "photo",
		FileName:  "big.txt",
		MimeType:  "text/plain",
		Data:      []byte(strings.Repeat("x", 1024)),
	})

	r := <-result
	require.NotNil(t, r.Err)
	assert.Equal(t, models.KindAPI, r.Err.Kind)
	assert.Equal(t, []models.Field{{Field: "photo.size", Message: "file too large"}}, r.Err.Specific)
}

func TestUpload_MissingFieldName(t *testing.T) {
	client := setupTestClient(t, respond(http.StatusOK, `{}`))

	result := Upload[avatar](context.Background(), client, models.UploadRequest{
		Method:   http.MethodPost,
		Path:     "/v1/photos",
		FileName: "a.jpg",
		Data:     []byte("x"),
	})
	require.NotNil(t, result.Err)
	assert.ErrorIs(t, result.Err, ErrInvalidRequest)
	assert.Contains(t, result.Err.Message(), "fieldName")
}
