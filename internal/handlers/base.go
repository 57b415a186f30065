package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"foodgram/internal/logger"
	"foodgram/internal/middleware"
	"foodgram/internal/models"
	"foodgram/internal/store"
	"foodgram/internal/utils"
	"foodgram/internal/validate"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var registerOnce sync.Once

// RegisterValidators adds the domain rules to gin's validator and makes it
// report json field names.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("hexcolor6", func(fl validator.FieldLevel) bool {
			return validate.HexColor(fl.Field().String()) == ""
		})
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return validate.Username(fl.Field().String()) == ""
		})
		_ = v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
			return validate.PersonName(fl.Field().String()) == ""
		})
	})
}

func currentUser(c *gin.Context) *models.User {
	return middleware.CurrentUser(c)
}

// bindJSON binds the body into obj, writing a 400 on failure.
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			out := make(store.ValidationErrors, 0, len(verrs))
			for _, fe := range verrs {
				out = append(out, &store.ValidationError{Field: fieldName(fe), Message: tagMessage(fe)})
			}
			respondError(c, out)
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"non_field_errors": []string{"malformed request body"}}})
		return false
	}
	return true
}

func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "hexcolor6":
		return "must be a #RRGGBB color"
	case "username":
		return validate.Username(fmt.Sprint(fe.Value()))
	case "personname":
		return validate.PersonName(fmt.Sprint(fe.Value()))
	}
	return "invalid value (" + fe.Tag() + ")"
}

// statusFor maps a store/guard error to its HTTP status.
func statusFor(err error) int {
	var verrs store.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, store.ErrAlreadyExists),
		errors.Is(err, store.ErrSelfReference),
		errors.Is(err, store.ErrConstraintViolation):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	var verrs store.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		c.AbortWithStatusJSON(status, gin.H{"errors": verrs.Fields()})
	case status == http.StatusInternalServerError:
		logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.AbortWithStatusJSON(status, gin.H{"detail": "internal server error"})
	default:
		c.AbortWithStatusJSON(status, gin.H{"detail": detailFor(err)})
	}
}

func detailFor(err error) string {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return "not found"
	case errors.Is(err, store.ErrForbidden):
		return "you do not have permission to perform this action"
	case errors.Is(err, store.ErrAlreadyExists):
		return "already exists"
	case errors.Is(err, store.ErrSelfReference):
		return "you cannot subscribe to yourself"
	}
	var ce *store.ConstraintError
	if errors.As(err, &ce) {
		return "conflicts with existing data (" + ce.Constraint + ")"
	}
	return err.Error()
}

// paramID parses the :id path segment; a malformed id is reported as not found.
func paramID(c *gin.Context) (uint, bool) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": "not found"})
	}
	return id, ok
}

func queryInt(c *gin.Context, key string) int {
	return utils.StringToInt(c.Query(key))
}

func pageFromQuery(c *gin.Context, defaultLimit int) store.Page {
	return store.NewPage(queryInt(c, "page"), queryInt(c, "limit"), defaultLimit)
}

// paginated writes the {count, next, previous, results} envelope.
func paginated(c *gin.Context, page store.Page, total int64, results interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"count":    total,
		"next":     pageLink(c, page.Number+1, int64(page.Number*page.Limit) < total),
		"previous": pageLink(c, page.Number-1, page.Number > 1),
		"results":  results,
	})
}

func pageLink(c *gin.Context, number int, ok bool) interface{} {
	if !ok {
		return nil
	}
	u := url.URL{Path: c.Request.URL.Path}
	q := c.Request.URL.Query()
	q.Set("page", strconv.Itoa(number))
	u.RawQuery = q.Encode()
	return u.String()
}
