package services

import (
	"database/sql"
	"errors"
	"reflect"
	"strings"
	"time"

	intconfig "pickupcore/internal/config"
	"pickupcore/internal/domain"
	"pickupcore/internal/utils"

	"github.com/go-playground/validator/v10"
)

// Clock yields the operator's wall-clock time. The zero value reads the
// system clock in time.Local.
type Clock struct {
	Loc     *time.Location
	NowFunc func() time.Time
}

func (c Clock) Now() time.Time {
	now := time.Now
	if c.NowFunc != nil {
		now = c.NowFunc
	}
	loc := c.Loc
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc)
}

func pickDB(db *sql.DB) *sql.DB {
	if db != nil {
		return db
	}
	return intconfig.DB
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validateInput runs struct tags and reports the first failure as a ValidationError.
func validateInput(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		fe := fields[0]
		msg := "failed " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		return domain.ValidationError{Field: fe.Field(), Msg: msg, Err: err}
	}
	return domain.ValidationError{Msg: err.Error(), Err: err}
}

func normalizeDate(field, raw string) (string, error) {
	d, err := utils.NormalizeDate(raw)
	if err != nil {
		return "", domain.ValidationError{Field: field, Msg: err.Error(), Err: err}
	}
	return d, nil
}

// wrapStore passes typed domain errors through and hides store failures behind InternalError.
func wrapStore(err error, msg string) error {
	if err == nil {
		return nil
	}
	if domain.KindOf(err) != domain.KindInternal || domain.IsInternal(err) {
		return err
	}
	return domain.InternalError{Msg: msg, Err: err}
}
