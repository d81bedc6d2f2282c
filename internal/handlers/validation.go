package handlers

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"taskflow/internal/models"
)

var registerOnce sync.Once

// RegisterValidators installs the enum validators used in request binding
// tags and makes JSON decoding reject unknown fields. Safe to call twice.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		binding.EnableDecoderDisallowUnknownFields = true

		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		// report json names, not Go field names
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		rules := map[string]validator.Func{
			"taskstatus": func(fl validator.FieldLevel) bool {
				return models.TaskStatus(fl.Field().String()).Valid()
			},
			"taskpriority": func(fl validator.FieldLevel) bool {
				return models.TaskPriority(fl.Field().String()).Valid()
			},
			"role": func(fl validator.FieldLevel) bool {
				return models.Role(fl.Field().String()).Valid()
			},
		}
		for tag, fn := range rules {
			if err = v.RegisterValidation(tag, fn); err != nil {
				return
			}
		}
	})
	return err
}

// bindMessage turns a binding error into something a client can act on.
func bindMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fieldMessage(fe))
		}
		return strings.Join(msgs, "; ")
	}
	if errors.Is(err, io.EOF) {
		return "Request body is required"
	}
	if strings.Contains(err.Error(), "unknown field") {
		return "Invalid request body: " + err.Error()
	}
	return "Invalid request body"
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "taskstatus":
		return fmt.Sprintf("invalid status %q (pending, in-progress, completed, cancelled)", fe.Value())
	case "taskpriority":
		return fmt.Sprintf("invalid priority %q (low, medium, high, urgent)", fe.Value())
	case "role":
		return fmt.Sprintf("invalid role %q (user, moderator, admin)", fe.Value())
	}
	return field + " is invalid"
}
