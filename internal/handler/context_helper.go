package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-roster-api/internal/middleware"
	"github.com/noah-isme/school-roster-api/internal/models"
	appErrors "github.com/noah-isme/school-roster-api/pkg/errors"
	"github.com/noah-isme/school-roster-api/pkg/response"
)

// viewer returns the caller's profile from the token claims, writing a 401
// when the request is unauthenticated.
func viewer(c *gin.Context) (models.UserProfile, bool) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return models.UserProfile{}, false
	}
	return claims.Profile(), true
}

// bindStrictJSON decodes the body into dst rejecting unknown keys.
func bindStrictJSON(c *gin.Context, dst interface{}) error {
	if c.Request.Body == nil {
		return appErrors.Clone(appErrors.ErrValidation, "request body is required")
	}
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return appErrors.Clone(appErrors.ErrValidation, "request body is required")
		}
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload: "+err.Error())
	}
	return nil
}

// bindJSON decodes a lenient JSON body.
func bindJSON(c *gin.Context, dst interface{}, message string) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message)
	}
	return nil
}

// readUpload returns the CSV payload from the multipart field "file" or, for
// any other content type, the raw body. maxBytes bounds both forms.
func readUpload(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

	var src io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		fh, err := c.FormFile("file")
		if err != nil {
			if isTooLarge(err) {
				return nil, tooLarge()
			}
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "multipart field \"file\" is required")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open upload")
		}
		defer f.Close()
		src = f
	}

	buf := &bytes.Buffer{}
	if _, err := io.Copy(buf, src); err != nil {
		if isTooLarge(err) {
			return nil, tooLarge()
		}
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read upload")
	}
	if buf.Len() == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "CSV file is empty")
	}
	return buf.Bytes(), nil
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func tooLarge() error {
	return appErrors.Clone(appErrors.ErrPayloadTooLarge, "upload exceeds the maximum size")
}

func studentFilterFromQuery(c *gin.Context) models.StudentFilter {
	return models.StudentFilter{
		Status:          strings.TrimSpace(c.Query("status")),
		Grade:           strings.TrimSpace(c.Query("grade")),
		ResidingCountry: strings.TrimSpace(c.Query("residingCountry")),
		FatherName:      strings.TrimSpace(c.Query("fatherName")),
		MotherName:      strings.TrimSpace(c.Query("motherName")),
		Search:          strings.TrimSpace(c.Query("q")),
	}
}
