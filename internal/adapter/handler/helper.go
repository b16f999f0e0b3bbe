package handler

import (
	stdErrors "errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/kgwiazdak/sprint-planning-copilot/errors"
	"github.com/kgwiazdak/sprint-planning-copilot/internal/adapter/dto/common"
	"github.com/kgwiazdak/sprint-planning-copilot/internal/domain/entities"
)

// HandleError maps domain and application errors to JSON responses. Every
// response funnels through an AppError so clients always see a stable
// machine-readable code.
func HandleError(c echo.Context, err error) error {
	var appErr errors.AppError
	if !stdErrors.As(err, &appErr) {
		appErr = fromDomainError(err)
	}

	var details map[string]interface{}
	if len(appErr.Details) > 0 {
		details = make(map[string]interface{}, len(appErr.Details))
		for k, v := range appErr.Details {
			details[k] = v
		}
	}
	return c.JSON(appErr.HTTPCode, common.ErrorResponse{
		Error:   appErr.Code.String(),
		Message: appErr.Message,
		Details: details,
		Code:    appErr.Code.String(),
	})
}

// fromDomainError maps domain sentinels to their application error
func fromDomainError(err error) errors.AppError {
	switch {
	case stdErrors.Is(err, entities.ErrMeetingNotFound):
		return errors.ErrMeetingNotFound()
	case stdErrors.Is(err, entities.ErrTaskNotFound):
		return errors.ErrTaskNotFound()
	case stdErrors.Is(err, entities.ErrRunNotFound):
		return errors.ErrNotFound("extraction run")
	case stdErrors.Is(err, entities.ErrUserNotFound):
		return errors.ErrNotFound("user")
	case stdErrors.Is(err, entities.ErrTaskAlreadyPushed):
		return errors.ErrTaskAlreadyPushed("")
	case stdErrors.Is(err, entities.ErrMeetingNotClaimable),
		stdErrors.Is(err, entities.ErrInvalidTransition):
		return errors.ErrMeetingNotQueued()
	case stdErrors.Is(err, entities.ErrNoMeetingSource):
		return errors.ErrMeetingSourceMissing()
	case stdErrors.Is(err, entities.ErrInvalidIssueType),
		stdErrors.Is(err, entities.ErrInvalidPriority),
		stdErrors.Is(err, entities.ErrInvalidStoryPoints),
		stdErrors.Is(err, entities.ErrInvalidName),
		stdErrors.Is(err, entities.ErrInvalidRequest):
		return errors.ErrInvalidArgument(err.Error())
	}
	return errors.ErrInternal(err)
}

// BindAndValidate binds the request body and runs struct validation
func BindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// ParseIDParam parses the :id path parameter as a UUID
func ParseIDParam(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id, expected a UUID")
	}
	return id, nil
}
