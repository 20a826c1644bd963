package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/chat"
	listingdomain "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	reportdomain "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/report/domain"
	userdomain "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/user/domain"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = validator.New()

const maxJSONBody = 1 << 20

var errorStatuses = []struct {
	err    error
	status int
}{
	{listingdomain.ErrListingNotFound, http.StatusNotFound},
	{userdomain.ErrUserNotFound, http.StatusNotFound},
	{chat.ErrRoomNotFound, http.StatusNotFound},
	{chat.ErrListingNotFound, http.StatusNotFound},
	{reportdomain.ErrReportNotFound, http.StatusNotFound},
	{listingdomain.ErrForbidden, http.StatusForbidden},
	{chat.ErrNotParticipant, http.StatusForbidden},
	{userdomain.ErrInvalidCredentials, http.StatusUnauthorized},
	{userdomain.ErrDuplicateEmail, http.StatusConflict},
	{listingdomain.ErrPhotoTooLarge, http.StatusRequestEntityTooLarge},
	{listingdomain.ErrUnsupportedPhoto, http.StatusUnsupportedMediaType},
	{listingdomain.ErrStorageDisabled, http.StatusServiceUnavailable},
	{listingdomain.ErrInvalidStatus, http.StatusBadRequest},
	{listingdomain.ErrInvalidCategory, http.StatusBadRequest},
	{listingdomain.ErrInvalidPrice, http.StatusBadRequest},
	{userdomain.ErrInvalidRole, http.StatusBadRequest},
	{reportdomain.ErrReasonTooShort, http.StatusBadRequest},
	{chat.ErrSelfChat, http.StatusBadRequest},
	{chat.ErrEmptyMessage, http.StatusBadRequest},
	{chat.ErrMessageTooLong, http.StatusBadRequest},
}

// errBadRequest marks client input problems found by the handlers themselves.
type errBadRequest struct{ msg string }

func (e errBadRequest) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return errBadRequest{msg: fmt.Sprintf(format, args...)}
}

func statusFor(err error) int {
	var br errBadRequest
	if errors.As(err, &br) {
		return http.StatusBadRequest
	}
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to a status code. Internal errors are logged
// and replaced by a generic message.
func writeError(w http.ResponseWriter, log *logger.Logger, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Error("Request failed", zap.String("path", r.URL.Path), zap.Error(err))
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads a JSON body into dst and runs its validate tags.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		return badRequest("invalid request body: %v", err)
	}
	return validateStruct(dst)
}

func validateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return badRequest("validation failed: %s", strings.Join(fields, ", "))
		}
		return badRequest("validation failed: %v", err)
	}
	return nil
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, badRequest("%s must be a non-negative integer", key)
	}
	return n, nil
}

func queryPrice(r *http.Request, key string) (*float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, badRequest("%s must be a non-negative number", key)
	}
	return &v, nil
}
