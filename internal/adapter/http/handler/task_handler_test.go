package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"tasksapi/internal/core/domain"
	"tasksapi/internal/core/model/response"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"
)

type TaskHandlerSuite struct {
	apiSuite
}

func TestTaskHandlerSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TaskHandlerSuite))
}

func (s *TaskHandlerSuite) taskPayload(overrides gin.H) gin.H {
	payload := gin.H{
		"title":       "Tarea 1",
		"description": "Descripción de la tarea 1",
		"datetime":    "2021-04-10T14:00:00Z",
		"done":        false,
		"user":        s.owner.ID,
	}

	for key, value := range overrides {
		payload[key] = value
	}

	return payload
}

func taskPath(id int) string {
	return fmt.Sprintf("/tasks/%d/", id)
}

func (s *TaskHandlerSuite) TestUnauthenticatedRequestsAreRejected() {
	task := s.createTask(s.owner.ID, nil)

	requests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/tasks/"},
		{http.MethodPost, "/tasks/"},
		{http.MethodGet, taskPath(task.ID)},
		{http.MethodPut, taskPath(task.ID)},
		{http.MethodDelete, taskPath(task.ID)},
		{http.MethodGet, taskPath(9999)},
		{http.MethodPut, taskPath(9999)},
		{http.MethodDelete, taskPath(9999)},
	}

	for _, r := range requests {
		rr := s.send(r.method, r.path, s.taskPayload(nil), "")

		Expect(rr.Code).To(Equal(http.StatusUnauthorized), r.method+" "+r.path)
		Expect(rr.Header().Get("WWW-Authenticate")).To(Equal(`JWT realm="api"`))
		Expect(rr.Body.String()).To(ContainSubstring("detail"))
	}

	Expect(s.countTasks(0)).To(Equal(1))

	stored, err := s.TaskRepo.GetByID(context.Background(), task.ID)
	Expect(err).To(BeNil())
	Expect(stored.Title).To(Equal(task.Title))
}

func (s *TaskHandlerSuite) TestInvalidTokenIsRejected() {
	rr := s.send(http.MethodGet, "/tasks/", nil, "not-a-token")

	Expect(rr.Code).To(Equal(http.StatusUnauthorized))
	Expect(rr.Body.String()).To(MatchJSON(`{"detail":"Invalid token."}`))
}

func (s *TaskHandlerSuite) TestCreateTaskSuccess() {
	before := s.countTasks(s.owner.ID)

	rr := s.send(http.MethodPost, "/tasks/", s.taskPayload(nil), s.token)

	Expect(rr.Code).To(Equal(http.StatusCreated))

	data := decode[response.TaskResponse](rr)
	Expect(data.ID).ToNot(BeZero())
	Expect(data.Title).To(Equal("Tarea 1"))
	Expect(data.Description).To(Equal("Descripción de la tarea 1"))
	Expect(data.Datetime).To(BeTemporally("==", time.Date(2021, time.April, 10, 14, 0, 0, 0, time.UTC)))
	Expect(data.Done).To(BeFalse())
	Expect(data.User).To(Equal(s.owner.ID))

	Expect(s.countTasks(s.owner.ID)).To(Equal(before + 1))
}

func (s *TaskHandlerSuite) TestCreateTaskWithForm() {
	rr := s.sendForm(http.MethodPost, "/tasks/", url.Values{
		"title":       {"Desde formulario"},
		"description": {"Enviada como form"},
		"datetime":    {"2021-04-10 14:00"},
		"done":        {"true"},
		"user":        {strconv.Itoa(s.owner.ID)},
	}, s.token)

	Expect(rr.Code).To(Equal(http.StatusCreated))

	data := decode[response.TaskResponse](rr)
	Expect(data.Done).To(BeTrue())
	Expect(data.User).To(Equal(s.owner.ID))
}

func (s *TaskHandlerSuite) TestCreateTaskValidationErrors() {
	tests := []struct {
		name   string
		fields gin.H
		field  string
	}{
		{"malformed datetime", gin.H{"datetime": "xxxxxx"}, "datetime"},
		{"empty datetime", gin.H{"datetime": ""}, "datetime"},
		{"empty user", gin.H{"user": ""}, "user"},
		{"unknown user", gin.H{"user": 9999}, "user"},
		{"empty title", gin.H{"title": ""}, "title"},
		{"long title", gin.H{"title": strings.Repeat("a", domain.TaskTitleMaxLength+1)}, "title"},
		{"empty description", gin.H{"description": ""}, "description"},
		{"object as done", gin.H{"done": gin.H{"a": 1}}, "done"},
		{"boolean as title", gin.H{"title": true}, "title"},
		{"boolean as description", gin.H{"description": true}, "description"},
	}

	for _, tt := range tests {
		rr := s.send(http.MethodPost, "/tasks/", s.taskPayload(tt.fields), s.token)

		Expect(rr.Code).To(Equal(http.StatusBadRequest), tt.name)
		Expect(decode[map[string][]string](rr)).To(HaveKey(tt.field), tt.name)
	}

	Expect(s.countTasks(0)).To(BeZero())
}

func (s *TaskHandlerSuite) TestCreateTaskUnknownUserMessage() {
	rr := s.send(http.MethodPost, "/tasks/", s.taskPayload(gin.H{"user": "9999"}), s.token)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(rr.Body.String()).To(MatchJSON(`{"user":["Clave primaria \"9999\" inválida - objeto no existe."]}`))
}

func (s *TaskHandlerSuite) TestCreateTaskMissingFields() {
	rr := s.send(http.MethodPost, "/tasks/", gin.H{}, s.token)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))

	data := decode[map[string][]string](rr)
	Expect(data).To(HaveKey("title"))
	Expect(data).To(HaveKey("description"))
	Expect(data).To(HaveKey("datetime"))
	Expect(data).To(HaveKey("user"))
	Expect(data["title"]).To(ContainElement("Título es obligatorio"))
}

func (s *TaskHandlerSuite) TestListTasksOnlyReturnsOwnTasks() {
	other, otherToken := s.createUser(nil)

	s.createTask(s.owner.ID, gin.H{"Title": "Mía"})
	s.createTask(other.ID, gin.H{"Title": "Ajena"})

	rr := s.send(http.MethodGet, "/tasks/", nil, s.token)

	Expect(rr.Code).To(Equal(http.StatusOK))

	data := decode[response.PageResponse[response.TaskResponse]](rr)
	Expect(data.Count).To(Equal(1))
	Expect(data.Next).To(BeNil())
	Expect(data.Previous).To(BeNil())
	Expect(data.Results).To(HaveLen(1))
	Expect(data.Results[0].Title).To(Equal("Mía"))

	data = decode[response.PageResponse[response.TaskResponse]](s.send(http.MethodGet, "/tasks/", nil, otherToken))
	Expect(data.Count).To(Equal(1))
	Expect(data.Results[0].Title).To(Equal("Ajena"))
}

func (s *TaskHandlerSuite) TestListTasksEmpty() {
	rr := s.send(http.MethodGet, "/tasks/", nil, s.token)

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(rr.Body.String()).To(MatchJSON(`{"count":0,"next":null,"previous":null,"results":[]}`))
}

func (s *TaskHandlerSuite) TestSearchTasks() {
	s.createTask(s.owner.ID, gin.H{"Title": "Tarea para la busqueda", "Description": "Algo normal"})
	s.createTask(s.owner.ID, gin.H{"Title": "Otra tarea", "Description": "Texto con palabra clave escondida"})
	s.createTask(s.owner.ID, gin.H{"Title": "Tercera", "Description": "Nada"})
	s.createTask(s.owner.ID, gin.H{"Title": "Reunión con ÁLVARO", "Description": "Planificación"})

	tests := []struct {
		search string
		count  int
	}{
		{"Tarea para la busqueda", 1},
		{"YYY", 0},
		{"palabra clave", 1},
		{"TAREA PARA LA BUSQUEDA", 1},
		{"tarea", 2},
		{"ÁLVARO", 1},
		{"Reunión con ÁLVARO", 1},
		{"reunión con álvaro", 1},
		{"REUNIÓN", 1},
		{"PLANIFICACIÓN", 1},
		{"", 4},
	}

	for _, tt := range tests {
		rr := s.send(http.MethodGet, "/tasks/?search="+url.QueryEscape(tt.search), nil, s.token)

		Expect(rr.Code).To(Equal(http.StatusOK))
		Expect(decode[response.PageResponse[response.TaskResponse]](rr).Count).To(Equal(tt.count), tt.search)
	}
}

func (s *TaskHandlerSuite) TestListTasksPagination() {
	for i := 1; i <= 5; i++ {
		s.createTask(s.owner.ID, gin.H{"Title": fmt.Sprintf("Tarea %d", i)})
	}

	data := decode[response.PageResponse[response.TaskResponse]](s.send(http.MethodGet, "/tasks/?page_size=2", nil, s.token))

	Expect(data.Count).To(Equal(5))
	Expect(data.Results).To(HaveLen(2))
	Expect(data.Results[0].Title).To(Equal("Tarea 1"))
	Expect(data.Previous).To(BeNil())
	Expect(data.Next).ToNot(BeNil())
	Expect(*data.Next).To(HaveSuffix("/tasks/?page=2&page_size=2"))

	data = decode[response.PageResponse[response.TaskResponse]](s.send(http.MethodGet, "/tasks/?page=3&page_size=2", nil, s.token))

	Expect(data.Results).To(HaveLen(1))
	Expect(data.Results[0].Title).To(Equal("Tarea 5"))
	Expect(data.Next).To(BeNil())
	Expect(*data.Previous).To(HaveSuffix("/tasks/?page=2&page_size=2"))

	rr := s.send(http.MethodGet, "/tasks/?page=4&page_size=2", nil, s.token)

	Expect(rr.Code).To(Equal(http.StatusNotFound))
	Expect(rr.Body.String()).To(MatchJSON(`{"detail":"Invalid page."}`))
}

func (s *TaskHandlerSuite) TestGetTask() {
	task := s.createTask(s.owner.ID, gin.H{"Title": "Detalle"})

	rr := s.send(http.MethodGet, taskPath(task.ID), nil, s.token)

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(decode[response.TaskResponse](rr).Title).To(Equal("Detalle"))
}

func (s *TaskHandlerSuite) TestGetTaskNotFound() {
	for _, path := range []string{taskPath(9999), "/tasks/abc/", "/tasks/0/"} {
		rr := s.send(http.MethodGet, path, nil, s.token)

		Expect(rr.Code).To(Equal(http.StatusNotFound), path)
		Expect(rr.Body.String()).To(MatchJSON(`{"detail":"Not found."}`))
	}
}

func (s *TaskHandlerSuite) TestOtherUsersTaskIsNotFound() {
	other, _ := s.createUser(nil)
	task := s.createTask(other.ID, nil)

	Expect(s.send(http.MethodGet, taskPath(task.ID), nil, s.token).Code).To(Equal(http.StatusNotFound))
	Expect(s.send(http.MethodPut, taskPath(task.ID), s.taskPayload(nil), s.token).Code).To(Equal(http.StatusNotFound))
	Expect(s.send(http.MethodDelete, taskPath(task.ID), nil, s.token).Code).To(Equal(http.StatusNotFound))

	stored, err := s.TaskRepo.GetByID(context.Background(), task.ID)
	Expect(err).To(BeNil())
	Expect(stored.UserID).To(Equal(other.ID))
}

func (s *TaskHandlerSuite) TestUpdateTaskIsIdempotent() {
	task := s.createTask(s.owner.ID, nil)
	payload := s.taskPayload(gin.H{"title": "Actualizada", "done": true})

	first := s.send(http.MethodPut, taskPath(task.ID), payload, s.token)
	Expect(first.Code).To(Equal(http.StatusOK))

	second := s.send(http.MethodPut, taskPath(task.ID), payload, s.token)
	Expect(second.Code).To(Equal(http.StatusOK))

	a := decode[response.TaskResponse](first)
	b := decode[response.TaskResponse](second)

	Expect(b.Title).To(Equal("Actualizada"))
	Expect(b.Done).To(BeTrue())
	Expect(b.Title).To(Equal(a.Title))
	Expect(b.Description).To(Equal(a.Description))
	Expect(b.Datetime).To(BeTemporally("==", a.Datetime))
	Expect(b.CreatedAt).To(BeTemporally("==", a.CreatedAt))
	Expect(s.countTasks(0)).To(Equal(1))
}

func (s *TaskHandlerSuite) TestUpdateTaskValidationError() {
	task := s.createTask(s.owner.ID, gin.H{"Title": "Original"})

	rr := s.send(http.MethodPut, taskPath(task.ID), s.taskPayload(gin.H{"datetime": "xxxxxx"}), s.token)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(decode[map[string][]string](rr)).To(HaveKey("datetime"))

	stored, err := s.TaskRepo.GetByID(context.Background(), task.ID)
	Expect(err).To(BeNil())
	Expect(stored.Title).To(Equal("Original"))
}

func (s *TaskHandlerSuite) TestUpdateMissingTaskIsNotFoundBeforeValidation() {
	rr := s.send(http.MethodPut, taskPath(9999), gin.H{"datetime": "xxxxxx"}, s.token)

	Expect(rr.Code).To(Equal(http.StatusNotFound))
}

func (s *TaskHandlerSuite) TestUpdateTaskTransfersOwnership() {
	other, otherToken := s.createUser(nil)
	task := s.createTask(s.owner.ID, nil)

	rr := s.send(http.MethodPut, taskPath(task.ID), s.taskPayload(gin.H{"user": other.ID}), s.token)

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(decode[response.TaskResponse](rr).User).To(Equal(other.ID))

	Expect(s.send(http.MethodGet, taskPath(task.ID), nil, s.token).Code).To(Equal(http.StatusNotFound))
	Expect(s.send(http.MethodGet, taskPath(task.ID), nil, otherToken).Code).To(Equal(http.StatusOK))
}

func (s *TaskHandlerSuite) TestDeleteTask() {
	task := s.createTask(s.owner.ID, nil)

	rr := s.send(http.MethodDelete, taskPath(task.ID), nil, s.token)

	Expect(rr.Code).To(Equal(http.StatusNoContent))
	Expect(rr.Body.String()).To(BeEmpty())
	Expect(s.countTasks(0)).To(BeZero())

	Expect(s.send(http.MethodDelete, taskPath(task.ID), nil, s.token).Code).To(Equal(http.StatusNotFound))
}

func (s *TaskHandlerSuite) TestDeleteMissingTaskTwice() {
	s.createTask(s.owner.ID, nil)

	for i := 0; i < 2; i++ {
		rr := s.send(http.MethodDelete, taskPath(9999), nil, s.token)

		Expect(rr.Code).To(Equal(http.StatusNotFound))
	}

	Expect(s.countTasks(0)).To(Equal(1))
}
