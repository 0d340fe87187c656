package shared

import (
	"context"
	"fmt"
	"math"
	"roomtime/shared/cache"
	"roomtime/shared/constant"
	"roomtime/shared/dto"
	"roomtime/shared/timezone"
	"reflect"
	"strings"

	"github.com/rs/zerolog/log"
)

func CalculateTotalPage(total, limit int) (res int) {
	if total == 0 || limit <= 0 {
		res = 1
	} else {
		res = int(math.Ceil(float64(total) / float64(limit)))
	}

	return res
}

// TransformFields converts the non-zero fields of a struct into a map of updated fields.
func TransformFields(data interface{}, username string) map[string]any {
	val := reflect.ValueOf(data)
	typ := reflect.TypeOf(data)

	updatedFields := make(map[string]any)

	for index := range val.NumField() {
		field := val.Field(index)
		if field.IsZero() {
			continue
		}

		fieldName := typ.Field(index).Tag.Get("db")
		if fieldName == "" {
			continue
		}

		updatedFields[fieldName] = field.Interface()
	}

	updatedFields[constant.FieldModifiedAt] = timezone.Now()
	updatedFields[constant.FieldModifiedBy] = username

	return updatedFields
}

// BuildCacheKey joins a prefix and its parts into a colon-delimited cache key.
func BuildCacheKey(prefix string, parts ...string) string {
	if len(parts) == 0 {
		return prefix
	}

	return prefix + ":" + strings.Join(parts, ":")
}

// BuildCacheKeyWithQuery derives a cache key from the query parameters and filters
// of a list request so each distinct page/sort/filter combination caches separately.
func BuildCacheKeyWithQuery(prefix string, params dto.QueryParams, extra ...any) string {
	key := fmt.Sprintf("%s:%d:%d:%s:%s", prefix, params.Page, params.Limit, params.SortBy, params.SortDir)

	for _, e := range extra {
		key += fmt.Sprintf(":%v", e)
	}

	return key
}

// InvalidateCaches clears every cached entry under the given prefix.
func InvalidateCaches(ctx context.Context, redis cache.RedisCache, prefix string) {
	if err := redis.Clear(ctx, prefix+constant.Asterix); err != nil {
		log.Error().Err(err).Str("prefix", prefix).Msg("failed to invalidate caches")
	}
}
