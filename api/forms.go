package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/tonypoem-foundation/site-backend/content"
	"github.com/tonypoem-foundation/site-backend/errs"
	"github.com/tonypoem-foundation/site-backend/models"
)

const (
	maxFormBytes   = 32 << 20
	maxMemoryBytes = 8 << 20
)

var allowedUploadTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp", "application/pdf"}

// formSpec lists which record fields a form accepts and which are required.
// requireOneOf is satisfied by any single listed field.
type formSpec struct {
	collection   models.Collection
	fields       []string
	required     []string
	requireOneOf []string
	fileFields   []string
	maxFiles     int
}

var (
	postForm = formSpec{
		collection: models.Blogs,
		fields:     []string{"title", "topic", "date", "content"},
		required:   []string{"title", "content"},
		fileFields: []string{"image"},
		maxFiles:   1,
	}
	programForm = formSpec{
		collection:   models.Programs,
		fields:       []string{"name", "title", "category", "description", "date"},
		required:     []string{"description"},
		requireOneOf: []string{"name", "title"},
		fileFields:   []string{"image", "images"},
		maxFiles:     6,
	}
	leaderForm = formSpec{
		collection: models.Leadership,
		fields:     []string{"name", "role", "department", "bio"},
		required:   []string{"name", "role"},
		fileFields: []string{"image"},
		maxFiles:   1,
	}
	testimonialForm = formSpec{
		collection: models.Testimonials,
		fields:     []string{"name", "role", "review"},
		required:   []string{"name", "review"},
		fileFields: []string{"image"},
		maxFiles:   1,
	}
	contactForm = formSpec{
		collection: models.Contacts,
		fields:     []string{"name", "email", "message"},
		required:   []string{"name", "email", "message"},
	}
	donationForm = formSpec{
		collection: models.Donations,
		fields:     []string{"name", "email", "amount", "message"},
		required:   []string{"name", "email"},
		fileFields: []string{"image"},
		maxFiles:   1,
	}
)

func (f formSpec) describe() FormResponse {
	return FormResponse{
		Collection: f.collection.Name,
		Fields:     f.fields,
		Required:   append(append([]string(nil), f.required...), f.requireOneOf...),
		Files:      f.fileFields,
	}
}

// parsedForm is a decoded submission. close releases multipart temp files.
type parsedForm struct {
	record  models.Record
	uploads []content.Upload
	close   func()
}

// parseForm reads a JSON or multipart body into a record of f's collection.
func (f formSpec) parse(w http.ResponseWriter, r *http.Request) (parsedForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	values := map[string]string{}
	var uploads []content.Upload
	closeFn := func() {}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxMemoryBytes); err != nil {
			return parsedForm{}, bodyError("form", err)
		}
		for _, name := range f.fields {
			if v := r.MultipartForm.Value[name]; len(v) > 0 {
				values[name] = v[0]
			}
		}

		form := r.MultipartForm
		files, closeFiles, err := f.openFiles(form)
		if err != nil {
			_ = form.RemoveAll()
			return parsedForm{}, err
		}
		uploads = files
		closeFn = func() {
			closeFiles()
			_ = form.RemoveAll()
		}
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return parsedForm{}, bodyError("form", err)
		}
		for _, name := range f.fields {
			if v := r.PostForm.Get(name); v != "" {
				values[name] = v
			}
		}
	case "application/json", "":
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return parsedForm{}, bodyError("JSON", err)
		}
		for _, name := range f.fields {
			switch v := raw[name].(type) {
			case string:
				values[name] = v
			case nil:
			default:
				return parsedForm{}, errs.NewInvalidFieldError(name, "must be a string")
			}
		}
	default:
		return parsedForm{}, errs.NewUnsupportedMediaTypeError(mediaType, []string{"application/json", "multipart/form-data", "application/x-www-form-urlencoded"})
	}

	for _, name := range f.required {
		if strings.TrimSpace(values[name]) == "" {
			closeFn()
			return parsedForm{}, errs.NewMissingRequiredFieldError(name)
		}
	}
	if len(f.requireOneOf) > 0 && !anyPresent(values, f.requireOneOf) {
		closeFn()
		return parsedForm{}, errs.NewMissingRequiredFieldError(strings.Join(f.requireOneOf, " or "))
	}

	fields := make(map[string]any, len(values))
	for k, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			fields[k] = v
		}
	}
	rec, err := models.RecordFromFields(f.collection.Name, "", fields)
	if err != nil {
		closeFn()
		return parsedForm{}, errs.NewMalformedPayloadError(f.collection.Entity, err)
	}

	return parsedForm{record: rec, uploads: uploads, close: closeFn}, nil
}

func (f formSpec) openFiles(form *multipart.Form) ([]content.Upload, func(), error) {
	var files []io.Closer
	closeAll := func() {
		for _, c := range files {
			_ = c.Close()
		}
	}

	var uploads []content.Upload
	for _, field := range f.fileFields {
		for _, header := range form.File[field] {
			if len(uploads) == f.maxFiles {
				closeAll()
				return nil, nil, errs.NewInvalidFieldError(field, "too many files")
			}

			contentType := header.Header.Get("Content-Type")
			if !allowedUpload(contentType) {
				closeAll()
				return nil, nil, errs.NewUnsupportedMediaTypeError(contentType, allowedUploadTypes)
			}

			file, err := header.Open()
			if err != nil {
				closeAll()
				return nil, nil, errs.NewMalformedPayloadError(field, err)
			}
			files = append(files, file)
			uploads = append(uploads, content.Upload{Name: header.Filename, ContentType: contentType, Body: file})
		}
	}
	return uploads, closeAll, nil
}

func allowedUpload(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	for _, allowed := range allowedUploadTypes {
		if mediaType == allowed {
			return true
		}
	}
	return false
}

func anyPresent(values map[string]string, names []string) bool {
	for _, name := range names {
		if strings.TrimSpace(values[name]) != "" {
			return true
		}
	}
	return false
}

func bodyError(kind string, err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errs.NewMaxBodySizeExceededError(maxErr.Limit)
	}
	if kind == "JSON" {
		return errs.NewInvalidJSONError(err)
	}
	return errs.NewMalformedPayloadError(kind, err)
}
