package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
)

// ParseItemID reads a positive item id from the named chi URL parameter.
func ParseItemID(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 1 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "item id must be a positive integer").WithDetails(map[string]any{"field": key, "value": raw})
	}
	return value, nil
}

// RequirePathParam returns the trimmed chi URL parameter or a validation error.
func RequirePathParam(r *http.Request, key string) (string, error) {
	value := SanitizeString(chi.URLParam(r, key), maxIdentityLen)
	if value == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "path parameter is required").WithDetails(map[string]any{"field": key})
	}
	return value, nil
}

// ParseCategoryQuery reads an optional category filter; absent means any.
func ParseCategoryQuery(r *http.Request, key string) (enums.Category, error) {
	category, err := enums.ParseCategoryFilter(r.URL.Query().Get(key))
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid category filter").WithDetails(map[string]any{"field": key})
	}
	return category, nil
}
