package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// PurposeFineTune marks an upload as a fine-tuning training file.
const PurposeFineTune = "fine-tune"

// UploadFile uploads the file at path for the given purpose.
func (c *Client) UploadFile(ctx context.Context, path, purpose string) (File, error) {
	var file File
	purpose = strings.TrimSpace(purpose)
	if purpose == "" {
		return file, errors.New("upload file: purpose required")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return file, fmt.Errorf("upload file: %w", err)
	}
	name := filepath.Base(path)

	err = c.do(ctx, request{
		op:     "upload file",
		method: http.MethodPost,
		path:   "/files",
		body: func() (io.Reader, string, error) {
			var buf bytes.Buffer
			writer := multipart.NewWriter(&buf)
			if err := writer.WriteField("purpose", purpose); err != nil {
				return nil, "", err
			}
			part, err := writer.CreateFormFile("file", name)
			if err != nil {
				return nil, "", err
			}
			if _, err := part.Write(content); err != nil {
				return nil, "", err
			}
			if err := writer.Close(); err != nil {
				return nil, "", err
			}
			return &buf, writer.FormDataContentType(), nil
		},
	}, &file)
	return file, err
}
