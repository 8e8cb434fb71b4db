package user

import (
	"net/http"
	"testing"

	"social-event-system/internal/global/logger"
	"social-event-system/internal/global/response"
	"social-event-system/internal/model"
	"social-event-system/test"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRoutes(t *testing.T) {
	_, s := newService(t)
	svc = s
	log = logger.New("User")
	r := test.Router((&ModuleUser{}).InitRouter)

	_, resp := test.Call(t, r, http.MethodPost, "/api/user/register", "", gin.H{
		"email": "not-an-email", "password": "Passw0rd", "first_name": "A", "birth_date": "1990-01-01",
	})
	test.ErrorCode(t, response.ErrInvalidRequest, resp)

	w, resp := test.Call(t, r, http.MethodPost, "/api/user/register", "", gin.H{
		"email": "lin@example.com", "password": "Passw0rd", "first_name": "Lin", "birth_date": "1995-05-05",
	})
	require.Equal(t, http.StatusOK, w.Code)
	test.NoError(t, resp)

	w, resp = test.Call(t, r, http.MethodPost, "/api/user/login", "", gin.H{"email": "lin@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	test.ErrorEqual(t, response.ErrInvalidPassword, resp)

	_, resp = test.Call(t, r, http.MethodPost, "/api/user/login", "", gin.H{"email": "lin@example.com", "password": "Passw0rd"})
	test.NoError(t, resp)
	var login struct {
		Token string     `json:"token"`
		User  model.User `json:"user"`
	}
	test.DecodeData(t, resp, &login)
	require.NotEmpty(t, login.Token)

	w, _ = test.Call(t, r, http.MethodGet, "/api/user/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	_, resp = test.Call(t, r, http.MethodPut, "/api/user/me", login.Token, gin.H{"last_name": "Wei"})
	test.NoError(t, resp)

	_, resp = test.Call(t, r, http.MethodGet, "/api/user/me", login.Token, nil)
	test.NoError(t, resp)
	var me model.User
	test.DecodeData(t, resp, &me)
	assert.Equal(t, "Wei", me.LastName)
	assert.Empty(t, me.Password)

	_, resp = test.Call(t, r, http.MethodGet, "/api/users/9999", login.Token, nil)
	test.ErrorCode(t, response.ErrNotFound, resp)
}
