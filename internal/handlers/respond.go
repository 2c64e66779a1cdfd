package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/contriboard/contriboard/internal/apperrors"
)

// respondError writes the kind-specific status code with a machine-readable
// error code. The underlying error text is only exposed outside release
// mode.
func respondError(c *gin.Context, err error) {
	body := gin.H{
		"error":   apperrors.Code(err),
		"message": publicMessage(err),
	}

	if gin.Mode() != gin.ReleaseMode {
		body["detail"] = err.Error()
	}

	c.JSON(apperrors.HTTPStatus(err), body)
}

func publicMessage(err error) string {
	switch apperrors.Code(err) {
	case "invalid_input":
		return "The request is missing or has an invalid field"
	case "not_found":
		return "No record exists for the requested user"
	case "upstream_unavailable":
		return "The repository data provider is unavailable"
	case "store_unavailable":
		return "The record store is unavailable"
	default:
		return "An internal error occurred"
	}
}
