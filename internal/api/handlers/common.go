package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Ayash-Bera/campusqa/internal/auth"
	"github.com/Ayash-Bera/campusqa/internal/models"
	"github.com/Ayash-Bera/campusqa/internal/services"
	"github.com/Ayash-Bera/campusqa/pkg/utils"
)

const msgInvalidRequest = "Invalid request format."

func principal(c *gin.Context) *auth.Principal {
	return auth.FromContext(c.Request.Context())
}

// respondError writes err using its domain status and code. Anything that is
// not a domain error is logged and reported as a 500.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	if domainErr, ok := services.AsError(err); ok {
		utils.CodedErrorResponse(c, domainErr.Status, domainErr.Code, domainErr.Message)
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.CodedErrorResponse(c, http.StatusNotFound, services.CodeNotFound, "Not found.")
		return
	}

	logger.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
	}).Error("Request failed")
	utils.CodedErrorResponse(c, http.StatusInternalServerError, services.CodeInternal, "Internal server error.")
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.CodedErrorResponse(c, http.StatusBadRequest, services.CodeValidation, msgInvalidRequest)
		return false
	}
	return true
}

// pageParams reads page and page_size, falling back to defaults on junk input.
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("page_size"))
	return models.NormalizePage(page, size)
}

func pageMeta(page, size int, total int64) utils.PageMeta {
	return utils.PageMeta{Page: page, PageSize: size, Total: total}
}
