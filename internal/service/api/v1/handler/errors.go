package handler

import (
	"fmt"

	"github.com/darkkaiser/price-tracker/internal/service/api/constants"
	"github.com/darkkaiser/price-tracker/internal/service/api/httputil"
)

func NewErrInvalidBody() error {
	return httputil.NewBadRequestError(constants.ErrMsgInvalidBody)
}

func NewErrInvalidPathParam(name string) error {
	return httputil.NewBadRequestError(fmt.Sprintf(constants.ErrMsgInvalidPathParam, name))
}

func NewErrValidationFailed(msg string) error {
	return httputil.NewBadRequestError(msg)
}
