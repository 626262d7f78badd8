package handler

import (
	"net/http"
	"time"

	"github.com/MachinePay/backend-agarramais-sub000/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON inválido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError maps the domain error taxonomy onto HTTP statuses.
// Internal errors are logged with context and surfaced as a generic message.
func respondError(c *gin.Context, err error) {
	switch apierror.KindOf(err) {
	case apierror.KindValidation:
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	case apierror.KindNotFound:
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case apierror.KindForbidden:
		c.JSON(http.StatusForbidden, apierror.New(err.Error()))
	default:
		log.Error().
			Str("path", c.FullPath()).
			Str("method", c.Request.Method).
			Err(err).
			Msg("internal error")
		c.JSON(http.StatusInternalServerError, apierror.New("Erro interno do servidor"))
	}
}

// parseDateQuery reads a required "2006-01-02" date query param.
// ok=false means the error response was already written.
func parseDateQuery(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parâmetro "+name+" inválido (esperado AAAA-MM-DD)"))
		return time.Time{}, false
	}
	return t, true
}
