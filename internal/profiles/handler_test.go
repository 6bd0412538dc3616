package profiles

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func listRequest(t *testing.T, query string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/profiles"+query, nil)

	// The invalid-input paths reject before any repository call.
	NewHandler(nil, nil).List(c)
	return w
}

func TestListRejectsUnknownRole(t *testing.T) {
	w := listRequest(t, "?role=bogus")
	require.Equal(t, http.StatusBadRequest, w.Code)

	// The role is validated even when combined with an area filter.
	w = listRequest(t, "?pref=%E6%9D%B1%E4%BA%AC%E9%83%BD&role=bogus")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListRequiresAFilter(t *testing.T) {
	w := listRequest(t, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}
