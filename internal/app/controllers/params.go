package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/app/models/dto"
)

// pathID parses a positive int64 path parameter. On failure it writes a
// VAL_001 response and returns false.
func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name).WithField(name)
		errorDetail = errorDetail.WithDetails(name + " must be a positive number")
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// queryKinds parses the optional comma separated ?kind= filter
func queryKinds(ctx *gin.Context) ([]models.PrerequisiteKind, bool) {
	raw := ctx.Query("kind")
	if raw == "" {
		return nil, true
	}

	var kinds []models.PrerequisiteKind
	for _, part := range strings.Split(raw, ",") {
		kind := models.PrerequisiteKind(strings.ToUpper(strings.TrimSpace(part)))
		if !kind.Valid() {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid prerequisite kind").WithField("kind")
			errorDetail = errorDetail.WithDetails("kind must be one of MANDATORY, RECOMMENDED, CO_REQUISITE")
			ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return nil, false
		}
		kinds = append(kinds, kind)
	}
	return kinds, true
}
