package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"tasksapi/pkg/config"
	"tasksapi/pkg/test/factory"

	database "tasksapi/internal/adapter/database/postgres"
	"tasksapi/internal/adapter/database/postgres/repository"
	"tasksapi/internal/core/domain"
	"tasksapi/internal/core/port"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const databaseURLEnv = "TASKS_TEST_DATABASE_URL"

type PostgresRepositorySuite struct {
	suite.Suite
	container testcontainers.Container
	db        *database.DB
	UserRepo port.UserRepository
	TaskRepo port.TaskRepository
	owner    domain.User
}

// TestPostgresRepositorySuite runs against TASKS_TEST_DATABASE_URL when set,
// otherwise against a throwaway postgres container.
func TestPostgresRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("postgres suite skipped in short mode")
	}

	if os.Getenv(databaseURLEnv) == "" {
		testcontainers.SkipIfProviderIsNotHealthy(t)
	}

	RegisterTestingT(t)
	suite.Run(t, new(PostgresRepositorySuite))
}

func (s *PostgresRepositorySuite) startContainer(ctx context.Context) string {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		Started: true,
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_DB":       "tasks",
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",

				// ILIKE folds non-ASCII letters only under a real locale
				"POSTGRES_INITDB_ARGS": "--encoding=UTF8 --locale-provider=icu --icu-locale=und",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
	})
	s.Require().NoError(err)

	s.container = container

	host, err := container.Host(ctx)
	s.Require().NoError(err)

	port, err := container.MappedPort(ctx, "5432")
	s.Require().NoError(err)

	return fmt.Sprintf("postgres://test:test@%s:%s/tasks?sslmode=disable", host, port.Port())
}

func (s *PostgresRepositorySuite) SetupSuite() {
	ctx := context.Background()

	url := os.Getenv(databaseURLEnv)
	if url == "" {
		url = s.startContainer(ctx)
	}

	db, err := database.New(ctx, config.DatabaseConfig{
		Driver:       "postgres",
		URL:          url,
		MaxOpenConns: 4,
	})
	s.Require().NoError(err)

	s.db = db
	s.UserRepo = repository.NewUserRepository(db, nil)
	s.TaskRepo = repository.NewTaskRepository(db, nil)
}

func (s *PostgresRepositorySuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}

	if s.container != nil {
		s.Require().NoError(s.container.Terminate(context.Background()))
	}
}

func (s *PostgresRepositorySuite) SetupTest() {
	_, err := s.db.Exec(context.Background(), "TRUNCATE tasks, users RESTART IDENTITY CASCADE")
	s.Require().NoError(err)

	s.owner, err = s.UserRepo.Create(context.Background(), factory.NewUser[domain.User]())
	s.Require().NoError(err)
}

func (s *PostgresRepositorySuite) createTask(userID int, data map[string]any) domain.Task {
	data["UserID"] = userID

	task, err := s.TaskRepo.Create(context.Background(), factory.NewTask[domain.Task](data))
	Expect(err).To(BeNil())

	return task
}

func (s *PostgresRepositorySuite) TestUser_CRUD() {
	ctx := context.Background()

	found, err := s.UserRepo.GetByUsername(ctx, s.owner.Username)
	Expect(err).To(BeNil())
	Expect(found.ID).To(Equal(s.owner.ID))

	found.Email = "changed@example.com"
	updated, err := s.UserRepo.Update(ctx, found)
	Expect(err).To(BeNil())
	Expect(updated.Email).To(Equal("changed@example.com"))

	users, count, err := s.UserRepo.List(ctx, domain.Pagination{Page: 1, PageSize: 10})
	Expect(err).To(BeNil())
	Expect(count).To(Equal(1))
	Expect(users).To(HaveLen(1))

	Expect(s.UserRepo.DeleteByID(ctx, s.owner.ID)).To(Succeed())
	Expect(s.UserRepo.DeleteByID(ctx, s.owner.ID)).To(MatchError(domain.ErrNotFound))

	_, err = s.UserRepo.GetByID(ctx, s.owner.ID)
	Expect(err).To(MatchError(domain.ErrNotFound))
}

func (s *PostgresRepositorySuite) TestUser_DuplicateUsername() {
	_, err := s.UserRepo.Create(context.Background(), factory.NewUser[domain.User](map[string]any{"Username": s.owner.Username}))

	Expect(err).To(MatchError(domain.ErrAlreadyExists))
}

func (s *PostgresRepositorySuite) TestTask_SearchIsCaseInsensitive() {
	s.createTask(s.owner.ID, map[string]any{"Title": "Tarea para la busqueda"})
	s.createTask(s.owner.ID, map[string]any{"Title": "Otra", "Description": "100% listo"})
	s.createTask(s.owner.ID, map[string]any{"Title": "Reunión con ÁLVARO", "Description": "Planificación"})

	search := func(term string) int {
		_, count, err := s.TaskRepo.List(context.Background(), domain.TaskFilter{
			UserID:     s.owner.ID,
			Search:     term,
			Pagination: domain.Pagination{Page: 1, PageSize: 10},
		})
		Expect(err).To(BeNil())
		return count
	}

	Expect(search("Tarea para la busqueda")).To(Equal(1))
	Expect(search("BUSQUEDA")).To(Equal(1))
	Expect(search("YYY")).To(Equal(0))
	Expect(search("100%")).To(Equal(1))
	Expect(search("%")).To(Equal(1))
	Expect(search("reunión con álvaro")).To(Equal(1))
	Expect(search("PLANIFICACIÓN")).To(Equal(1))
}

func (s *PostgresRepositorySuite) TestTask_UpdateAndCascade() {
	ctx := context.Background()
	task := s.createTask(s.owner.ID, map[string]any{})

	task.Done = true
	task.Datetime = time.Date(2022, time.January, 2, 3, 4, 5, 0, time.UTC)

	updated, err := s.TaskRepo.Update(ctx, task)
	Expect(err).To(BeNil())
	Expect(updated.Done).To(BeTrue())
	Expect(updated.Datetime).To(BeTemporally("==", task.Datetime))

	_, err = s.TaskRepo.Update(ctx, domain.Task{ID: task.ID + 100, UserID: s.owner.ID})
	Expect(err).To(MatchError(domain.ErrNotFound))

	Expect(s.UserRepo.DeleteByID(ctx, s.owner.ID)).To(Succeed())

	_, err = s.TaskRepo.GetByID(ctx, task.ID)
	Expect(err).To(MatchError(domain.ErrNotFound))
	Expect(s.TaskRepo.DeleteByID(ctx, task.ID)).To(MatchError(domain.ErrNotFound))
}
