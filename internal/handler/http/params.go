package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

// Clock supplies the request instant. Handlers never call time.Now directly.
type Clock func() time.Time

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) (int, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal, nil
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return 0, validator.ValidationErrors{{Field: key, Message: key + " must be a number"}}
	}
	return intVal, nil
}

const maxPageLimit = 500

// pageParams reads page and limit. A zero limit means the full list.
func pageParams(r *http.Request) (page, limit int, err error) {
	page, err = getIntQueryParam(r, "page", 1)
	if err != nil {
		return 0, 0, err
	}
	limit, err = getIntQueryParam(r, "limit", 0)
	if err != nil {
		return 0, 0, err
	}

	var errs validator.ValidationErrors
	if page < 1 {
		errs = append(errs, validator.ValidationError{Field: "page", Message: "page must be at least 1"})
	}
	if limit < 0 || limit > maxPageLimit {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "limit must be between 0 and " + strconv.Itoa(maxPageLimit)})
	}
	if len(errs) > 0 {
		return 0, 0, errs
	}
	return page, limit, nil
}

// optionalQuery returns a pointer to the query value or nil when absent.
func optionalQuery(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}

func callerIdentity(r *http.Request) (auth.Identity, error) {
	return middleware.IdentityFromContext(r.Context())
}
