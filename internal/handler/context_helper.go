package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-record-api/internal/models"
	appErrors "github.com/noah-isme/academic-record-api/pkg/errors"
	"github.com/noah-isme/academic-record-api/pkg/response"
)

func padronParam(c *gin.Context) (int64, error) {
	raw := strings.TrimSpace(c.Param("padron"))
	padron, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || padron <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid padron %q", raw))
	}
	return padron, nil
}

func intParam(raw, name string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid %s %q", name, raw))
	}
	return value, nil
}

// outcomeStatus maps an outcome kind onto the HTTP status presented to callers.
func outcomeStatus(kind models.OutcomeKind) int {
	switch kind {
	case models.OutcomeCreated, models.OutcomeCreatedAdditional, models.OutcomeApproved:
		return http.StatusCreated
	case models.OutcomeWithdrawn:
		return http.StatusOK
	case models.OutcomeAlreadyExists, models.OutcomeAlreadyRegistered, models.OutcomeAlreadyApproved, models.OutcomeAlreadyEnrolled:
		return http.StatusConflict
	case models.OutcomeNotEnrolled, models.OutcomeNotFound:
		return http.StatusNotFound
	case models.OutcomeInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeOutcome(c *gin.Context, outcome models.Outcome) {
	if outcome.Failed() {
		response.Error(c, appErrors.Clone(appErrors.ErrOperationFailed, outcome.Message))
		return
	}
	response.JSON(c, outcomeStatus(outcome.Kind), outcome)
}
