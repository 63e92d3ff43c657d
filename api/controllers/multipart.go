package controllers

import (
	"encoding/json"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/pawfund/pawfund-backend/api/validators"
	"github.com/pawfund/pawfund-backend/internal/media"
	pkgerrors "github.com/pawfund/pawfund-backend/pkg/errors"
)

const maxMultipartMemory = 32 << 20

// decodeWithFiles fills dst from either a JSON body or a multipart form whose
// jsonField part carries the JSON document. Files under fileField are
// returned open; the caller closes them through the returned func.
func decodeWithFiles(r *http.Request, dst any, jsonField, fileField string) ([]media.File, func(), error) {
	noop := func() {}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := validators.DecodeJSONBody(r, dst); err != nil {
			return nil, noop, err
		}
		return nil, noop, nil
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, noop, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}
	raw := strings.TrimSpace(r.FormValue(jsonField))
	if raw == "" {
		return nil, noop, pkgerrors.Newf(pkgerrors.CodeValidation, "%s part is required", jsonField)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return nil, noop, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+jsonField+" json")
	}
	if err := validators.Struct(dst); err != nil {
		return nil, noop, err
	}

	headers := r.MultipartForm.File[fileField]
	files := make([]media.File, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			closeAll()
			return nil, noop, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read uploaded file")
		}
		opened = append(opened, f)
		files = append(files, media.File{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Body:        f,
		})
	}
	return files, closeAll, nil
}
