package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/deyby01/nexus-pm-v2/internal/constants"
)

func paginationContext(t *testing.T, query string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/tasks?"+query, nil)
	return c
}

func TestGetPaginationParams(t *testing.T) {
	params := GetPaginationParams(paginationContext(t, "page=3&limit=10"))
	require.Equal(t, 3, params.Page)
	require.Equal(t, 10, params.Limit)
	require.Equal(t, 20, params.Offset)
}

func TestGetPaginationParams_Defaults(t *testing.T) {
	params := GetPaginationParams(paginationContext(t, ""))
	require.Equal(t, 1, params.Page)
	require.Equal(t, constants.DefaultPageSize, params.Limit)
	require.Equal(t, 0, params.Offset)
}

func TestGetPaginationParams_ClampsOutOfRange(t *testing.T) {
	params := GetPaginationParams(paginationContext(t, "page=-2&limit=5000"))
	require.Equal(t, 1, params.Page)
	require.Equal(t, constants.DefaultPageSize, params.Limit)
	require.Equal(t, 0, params.Offset)
}
