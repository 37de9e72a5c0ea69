package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"strings"

	"tasksapi/internal/adapter/database/sqlite"
	"tasksapi/internal/adapter/database/sqlite/repository"
	"tasksapi/internal/adapter/http/handler"
	"tasksapi/internal/adapter/http/routes"
	"tasksapi/internal/core/domain"
	"tasksapi/internal/core/port"
	"tasksapi/internal/core/service"
	"tasksapi/pkg/auth"
	. "tasksapi/pkg/test"
	"tasksapi/pkg/test/factory"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"
)

// apiSuite runs requests through the real router backed by an in-memory
// database. Each test starts with a fresh database and one user.
type apiSuite struct {
	suite.Suite
	DB       *sqlite.DB
	Router   *gin.Engine
	UserRepo port.UserRepository
	TaskRepo port.TaskRepository
	Tokens   *auth.JWT

	owner domain.User
	token string
}

func (s *apiSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	cfg := Config()

	s.DB = InitTestDB()
	s.UserRepo = repository.NewUserRepository(s.DB, nil)
	s.TaskRepo = repository.NewTaskRepository(s.DB, nil)
	s.Tokens = auth.New(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	authSvc := service.NewAuthService(s.UserRepo, s.Tokens, nil)

	s.Router = routes.SetupRouter(routes.HandlersConfig{
		AuthHandler:   handler.NewAuthHandler(authSvc),
		TaskHandler:   handler.NewTaskHandler(service.NewTaskService(s.TaskRepo, s.UserRepo, nil), nil, cfg.Server.PageSize),
		UserHandler:   handler.NewUserHandler(service.NewUserService(s.UserRepo, nil), nil, cfg.Server.PageSize),
		HealthHandler: handler.NewHealthHandler(s.DB),
		AuthService:   authSvc,
	}, routes.Options{})

	s.owner, s.token = s.createUser(map[string]any{"Username": "usuario"})
}

func (s *apiSuite) TearDownTest() {
	if s.DB != nil {
		s.DB.Close()
	}
}

func (s *apiSuite) createUser(data map[string]any) (domain.User, string) {
	user, err := s.UserRepo.Create(context.Background(), factory.NewUser[domain.User](data))
	s.Require().NoError(err)

	token, err := s.Tokens.CreateToken(user.ID, user.Username)
	s.Require().NoError(err)

	return user, token
}

func (s *apiSuite) createTask(userID int, data map[string]any) domain.Task {
	if data == nil {
		data = map[string]any{}
	}
	data["UserID"] = userID

	task, err := s.TaskRepo.Create(context.Background(), factory.NewTask[domain.Task](data))
	s.Require().NoError(err)

	return task
}

// send performs a JSON request. An empty token sends no Authorization
// header.
func (s *apiSuite) send(method, path string, body any, token string) *httptest.ResponseRecorder {
	var payload bytes.Buffer

	if body != nil {
		s.Require().NoError(json.NewEncoder(&payload).Encode(body))
	}

	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "JWT "+token)
	}

	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)

	return rr
}

func (s *apiSuite) sendForm(method, path string, form url.Values, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if token != "" {
		req.Header.Set("Authorization", "JWT "+token)
	}

	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)

	return rr
}

func decode[T any](rr *httptest.ResponseRecorder) T {
	var data T
	Expect(json.Unmarshal(rr.Body.Bytes(), &data)).To(Succeed())

	return data
}

func (s *apiSuite) countTasks(userID int) int {
	_, count, err := s.TaskRepo.List(context.Background(), domain.TaskFilter{
		UserID:     userID,
		Pagination: domain.Pagination{Page: 1, PageSize: 1},
	})
	s.Require().NoError(err)

	return count
}

func (s *apiSuite) countUsers() int {
	_, count, err := s.UserRepo.List(context.Background(), domain.Pagination{Page: 1, PageSize: 1})
	s.Require().NoError(err)

	return count
}
