package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	credsdomain "github.com/smallbiznis/fieldbill/internal/credentials/domain"
	customerdomain "github.com/smallbiznis/fieldbill/internal/customer/domain"
	"github.com/smallbiznis/fieldbill/internal/gateway"
	invoicedomain "github.com/smallbiznis/fieldbill/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/fieldbill/internal/payment/domain"
	"go.uber.org/zap"
)

var badRequestErrs = []error{
	credsdomain.ErrInvalidPatch,
	customerdomain.ErrInvalidName,
	customerdomain.ErrInvalidEmail,
	invoicedomain.ErrInvalidCustomer,
	invoicedomain.ErrNoItems,
	invoicedomain.ErrInvalidItem,
	invoicedomain.ErrInvalidAmount,
	invoicedomain.ErrInvalidChannel,
	paymentdomain.ErrInvalidAmount,
	paymentdomain.ErrInvalidMethod,
	paymentdomain.ErrMissingToken,
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, customerdomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, invoicedomain.ErrCancelled):
		return http.StatusConflict
	case errors.Is(err, credsdomain.ErrNotConfigured):
		return http.StatusPreconditionFailed
	case gateway.IsRemoteRejection(err):
		return http.StatusUnprocessableEntity
	}
	for _, candidate := range badRequestErrs {
		if errors.Is(err, candidate) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

func (s *Server) respondError(c *gin.Context, err error) {
	status := httpStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
