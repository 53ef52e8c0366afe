package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/errors"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/httputil"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/validator"
)

// BindJSON decodes the request body into obj and answers 400 on failure.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		httputil.AbortWithError(c, errors.Validation(validator.Describe(err), err))
		return false
	}
	return true
}

// ParseID reads a uuid path parameter and answers 400 when it is malformed.
func ParseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		httputil.AbortWithError(c, errors.Validation("invalid "+param, err))
		return uuid.Nil, false
	}
	return id, true
}

// Fail answers with err and records it for the error logging middleware.
func Fail(c *gin.Context, err error) {
	httputil.AbortWithError(c, err)
}
