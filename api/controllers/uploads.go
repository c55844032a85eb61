package controllers

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"

	pkgerrors "github.com/serviprohq/servipro-backend/pkg/errors"
)

var imageExtByMIME = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

type imagePayload struct {
	Reader io.Reader
	Ext    string
}

// readImageFile buffers an uploaded file, sniffs its content type and enforces
// the size cap. A nil header means no file was submitted.
func readImageFile(header *multipart.FileHeader, maxBytes int64) (*imagePayload, error) {
	if header == nil {
		return nil, nil
	}
	if maxBytes > 0 && header.Size > maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image exceeds the maximum allowed size")
	}

	file, err := header.Open()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "open uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read uploaded file")
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image exceeds the maximum allowed size")
	}

	// The sniffed type is authoritative; the client-supplied content type and
	// filename extension are ignored.
	mimeType := http.DetectContentType(data)
	ext, ok := imageExtByMIME[mimeType]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image must be jpeg, png, gif or webp")
	}

	return &imagePayload{Reader: bytes.NewReader(data), Ext: ext}, nil
}

// formImage extracts an optional uploaded file from an already parsed
// multipart form.
func formImage(r *http.Request, field string, maxBytes int64) (*imagePayload, error) {
	if r.MultipartForm == nil || r.MultipartForm.File == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return nil, nil
	}
	return readImageFile(headers[0], maxBytes)
}
