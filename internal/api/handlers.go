package api

import (
	"errors"
	"net/http"
	"net/textproto"

	"github.com/gin-gonic/gin"
	"github.com/guregu/null"
	"github.com/rs/zerolog"

	"shortener/internal/dto"
	"shortener/internal/service"
	"shortener/pkg/validator"
)

type handlers struct {
	svc service.Service
	log *zerolog.Logger
}

func (h *handlers) Redirect(c *gin.Context) {
	visit := service.Visit{
		Referer:   optionalHeader(c.Request.Header, "Referer"),
		UserAgent: optionalHeader(c.Request.Header, "User-Agent"),
	}

	link, err := h.svc.Redirect(c.Request.Context(), c.Param("id"), visit)
	if err != nil {
		if errors.Is(err, service.ErrLinkNotFound) {
			dto.NotFoundError(c)
			return
		}
		h.log.Error().Err(err).Msgf("Failed to look up link %s", c.Param("id"))
		dto.InternalServerError(c, err)
		return
	}

	dto.TemporaryRedirect(c, link.TargetURL)
}

func (h *handlers) CreateLink(c *gin.Context) {
	target, ok := h.bindTarget(c)
	if !ok {
		return
	}

	link, err := h.svc.CreateLink(c.Request.Context(), target)
	if err != nil {
		h.writeError(c, err, dto.CreateURLMalformed)
		return
	}

	dto.SuccessResponse(c, link)
}

func (h *handlers) UpdateLink(c *gin.Context) {
	target, ok := h.bindTarget(c)
	if !ok {
		return
	}

	link, err := h.svc.UpdateLink(c.Request.Context(), c.Param("id"), target)
	if err != nil {
		h.writeError(c, err, dto.UpdateURLMalformed)
		return
	}

	dto.SuccessResponse(c, link)
}

func (h *handlers) LinkStatistics(c *gin.Context) {
	stats, err := h.svc.LinkStatistics(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "")
		return
	}

	dto.SuccessResponse(c, stats)
}

func (h *handlers) Health(c *gin.Context) {
	if err := h.svc.Health(c.Request.Context()); err != nil {
		h.log.Warn().Err(err).Msg("Health check failed")
		dto.ServiceUnavailableError(c, err)
		return
	}
	c.String(http.StatusOK, dto.HealthOK)
}

func (h *handlers) bindTarget(c *gin.Context) (string, bool) {
	var req dto.LinkTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Msgf("Invalid request body: %v", err)
		dto.BadRequestError(c, err)
		return "", false
	}

	if err := validator.Validate(c.Request.Context(), req); err != nil {
		dto.UnprocessableEntityError(c, err)
		return "", false
	}

	return *req.TargetURL, true
}

func (h *handlers) writeError(c *gin.Context, err error, malformedMsg string) {
	if errors.Is(err, service.ErrURLMalformed) {
		dto.ConflictError(c, malformedMsg)
		return
	}

	h.log.Error().Err(err).Msgf("%s %s failed", c.Request.Method, c.Request.URL.Path)
	dto.InternalServerError(c, err)
}

// optionalHeader is null when the header is absent and empty when its value
// is not visible ASCII text.
func optionalHeader(h http.Header, name string) null.String {
	values, ok := h[textproto.CanonicalMIMEHeaderKey(name)]
	if !ok || len(values) == 0 {
		return null.String{}
	}
	if !isVisibleASCII(values[0]) {
		return null.StringFrom("")
	}
	return null.StringFrom(values[0])
}

func isVisibleASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b != '\t' && (b < 0x20 || b > 0x7e) {
			return false
		}
	}
	return true
}
