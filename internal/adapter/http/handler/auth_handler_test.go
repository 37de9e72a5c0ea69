package handler_test

import (
	"net/http"
	"net/url"
	"testing"

	"tasksapi/internal/core/model/response"
	"tasksapi/pkg/test/factory"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"
)

type AuthHandlerSuite struct {
	apiSuite
}

func TestAuthHandlerSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(AuthHandlerSuite))
}

func (s *AuthHandlerSuite) TestObtainTokenSuccess() {
	rr := s.send(http.MethodPost, "/api-token-auth/", gin.H{
		"username": "usuario",
		"password": factory.DefaultPassword,
	}, "")

	Expect(rr.Code).To(Equal(http.StatusOK))

	data := decode[response.TokenResponse](rr)
	Expect(data.Token).ToNot(BeEmpty())

	rr = s.send(http.MethodGet, "/tasks/", nil, data.Token)
	Expect(rr.Code).To(Equal(http.StatusOK))
}

func (s *AuthHandlerSuite) TestObtainTokenWithForm() {
	rr := s.sendForm(http.MethodPost, "/api-token-auth/", url.Values{
		"username": {"usuario"},
		"password": {factory.DefaultPassword},
	}, "")

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(decode[response.TokenResponse](rr).Token).ToNot(BeEmpty())
}

func (s *AuthHandlerSuite) TestObtainTokenWrongPassword() {
	rr := s.send(http.MethodPost, "/api-token-auth/", gin.H{
		"username": "usuario",
		"password": "wrong-password",
	}, "")

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(rr.Body.String()).To(MatchJSON(`{"non_field_errors":["Unable to log in with provided credentials."]}`))
}

func (s *AuthHandlerSuite) TestObtainTokenUnknownUser() {
	rr := s.send(http.MethodPost, "/api-token-auth/", gin.H{
		"username": "nobody",
		"password": factory.DefaultPassword,
	}, "")

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(decode[response.NonFieldErrorsResponse](rr).NonFieldErrors).To(HaveLen(1))
}

func (s *AuthHandlerSuite) TestObtainTokenMissingFields() {
	rr := s.send(http.MethodPost, "/api-token-auth/", gin.H{}, "")

	Expect(rr.Code).To(Equal(http.StatusBadRequest))

	data := decode[map[string][]string](rr)
	Expect(data).To(HaveKey("username"))
	Expect(data).To(HaveKey("password"))
}

func (s *AuthHandlerSuite) TestObtainTokenMalformedBody() {
	rr := s.send(http.MethodPost, "/api-token-auth/", []string{"usuario"}, "")

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(decode[response.DetailResponse](rr).Detail).To(ContainSubstring("JSON parse error"))
}

func (s *AuthHandlerSuite) TestHealthz() {
	rr := s.send(http.MethodGet, "/healthz", nil, "")

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(rr.Body.String()).To(MatchJSON(`{"status":"ok","database":"ok"}`))
	Expect(rr.Header().Get("X-Request-ID")).ToNot(BeEmpty())
}
