package handlers

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/nxsys/task-tracker/internal/auth"
	"github.com/nxsys/task-tracker/internal/domain"
	apperrors "github.com/nxsys/task-tracker/pkg/util/errorutil"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseBody decodes the JSON body into dst and validates its struct tags.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return apperrors.NewValidationError("invalid payload", nil)
		}
		fields := make(map[string]any, len(fieldErrs))
		names := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields[fe.Field()] = fe.Tag()
			names = append(names, fe.Field())
		}
		return apperrors.NewValidationError("invalid fields: "+strings.Join(names, ", "),
			map[string]any{"fields": fields})
	}
	return nil
}

func pathID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", map[string]any{"id": c.Params("id")})
	}
	return id, nil
}

// optionalID treats a zero id the same as an absent one.
func optionalID(id *int64) *int64 {
	if id == nil || *id == 0 {
		return nil
	}
	return id
}

func currentUser(c *fiber.Ctx) (*domain.User, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal.User, nil
}

func parseDate(field string, value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(strings.TrimSpace(*value))
	if err != nil {
		return nil, apperrors.NewValidationError("invalid "+field+", expected YYYY-MM-DD",
			map[string]any{"fields": map[string]any{field: "datetime"}})
	}
	return &d, nil
}

func parseOptionalDate(field string, value domain.Optional[string]) (domain.Optional[time.Time], error) {
	if !value.Set {
		return domain.Optional[time.Time]{}, nil
	}
	d, err := parseDate(field, value.Value)
	if err != nil {
		return domain.Optional[time.Time]{}, err
	}
	if d == nil {
		return domain.Null[time.Time](), nil
	}
	return domain.Some(*d), nil
}
