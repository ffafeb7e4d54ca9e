package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskboard/internal/auth"
	"taskboard/internal/handler"
	"taskboard/internal/hub"
	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupTaskTest() (*gin.Engine, *MockTaskRepository, *fakePublisher) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	mockRepo := new(MockTaskRepository)
	events := &fakePublisher{}
	taskHandler := handler.NewTaskHandler(mockRepo, events)

	r.GET("/api/getTasks", taskHandler.GetTasks)
	r.GET("/api/getArchivedTasks", taskHandler.GetArchivedTasks)

	authorized := r.Group("/api")
	authorized.Use(middleware.PrincipalAuthMiddleware())
	authorized.POST("/createTask", taskHandler.Create)
	authorized.PUT("/updateTask/:id", taskHandler.Update)
	authorized.DELETE("/deleteTask/:id", taskHandler.Delete)
	authorized.POST("/signalResponsible/:id", taskHandler.SignalResponsible)

	return r, mockRepo, events
}

func authedRequest(method, url string, body []byte) *http.Request {
	req, _ := http.NewRequest(method, url, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(auth.PrincipalHeader, principalHeader("user-1", "Alice", auth.RoleAuthenticated, auth.RoleBoardUser))
	return req
}

func TestCreateTask_Success(t *testing.T) {
	// Arrange
	router, mockRepo, events := setupTaskTest()

	mockRepo.On("NextNumericID", mock.Anything).Return(int64(7), nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Task")).Return(nil)

	body, _ := json.Marshal(handler.CreateTaskRequest{
		Title:       "Revisar contrato",
		Description: "Contrato do fornecedor",
		Responsible: model.ResponsibleList{{Name: "Alice", Email: "alice@example.com"}},
	})

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, authedRequest("POST", "/api/createTask", body))

	// Assert
	assert.Equal(t, http.StatusCreated, resp.Code)

	var task model.Task
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &task))
	assert.Equal(t, "TC-007", task.ID)
	assert.Equal(t, model.StatusTodo, task.Status)
	assert.Equal(t, model.DefaultPriority, task.Priority)
	assert.Equal(t, model.DefaultProjectColor, task.ProjectColor)
	assert.Equal(t, "Alice", task.CreatedBy)
	assert.Negative(t, task.Order)
	assert.Len(t, task.History, 1)
	assert.Equal(t, model.StatusTodo, task.History[0].Status)

	published := events.published()
	assert.Len(t, published, 1)
	assert.Equal(t, hub.EventTaskCreated, published[0].Target)

	mockRepo.AssertExpectations(t)
}

func TestCreateTask_MissingIdentity(t *testing.T) {
	// Arrange
	router, mockRepo, events := setupTaskTest()

	body, _ := json.Marshal(handler.CreateTaskRequest{
		Title:       "Revisar contrato",
		Description: "Contrato do fornecedor",
		Responsible: model.ResponsibleList{{Name: "Alice"}},
	})
	req, _ := http.NewRequest("POST", "/api/createTask", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert: rejected before any persistence or notification
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Empty(t, events.published())
	mockRepo.AssertNotCalled(t, "NextNumericID", mock.Anything)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateTask_MissingFields(t *testing.T) {
	// Arrange
	router, mockRepo, _ := setupTaskTest()

	body, _ := json.Marshal(map[string]string{"title": "Sem descrição"})

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, authedRequest("POST", "/api/createTask", body))

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateTask_StatusChangeGrowsHistory(t *testing.T) {
	// Arrange
	router, mockRepo, events := setupTaskTest()

	stored := &model.Task{
		ID:     "TC-001",
		Title:  "Revisar contrato",
		Status: model.StatusTodo,
		History: []model.HistoryEntry{
			{Status: model.StatusTodo, Timestamp: "2026-01-01T10:00:00Z"},
		},
	}
	mockRepo.On("GetByID", mock.Anything, "TC-001").Return(stored, nil)
	mockRepo.On("Replace", mock.Anything, mock.AnythingOfType("*model.Task")).Return(nil)

	newStatus := model.StatusInProgress
	body, _ := json.Marshal(handler.UpdateTaskRequest{Status: &newStatus})

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, authedRequest("PUT", "/api/updateTask/TC-001", body))

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var task model.Task
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &task))
	assert.Equal(t, model.StatusInProgress, task.Status)
	assert.Len(t, task.History, 2)
	assert.Equal(t, model.StatusInProgress, task.History[1].Status)

	published := events.published()
	assert.Len(t, published, 1)
	assert.Equal(t, hub.EventTaskUpdated, published[0].Target)
}

func TestUpdateTask_EditRecordsSentinel(t *testing.T) {
	// Arrange
	router, mockRepo, _ := setupTaskTest()

	stored := &model.Task{ID: "TC-001", Title: "Velho título", Status: model.StatusTodo}
	mockRepo.On("GetByID", mock.Anything, "TC-001").Return(stored, nil)
	mockRepo.On("Replace", mock.Anything, mock.AnythingOfType("*model.Task")).Return(nil)

	newTitle := "Novo título"
	body, _ := json.Marshal(handler.UpdateTaskRequest{Title: &newTitle})

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, authedRequest("PUT", "/api/updateTask/TC-001", body))

	// Assert: a non-status edit lands in the history as "edited"
	assert.Equal(t, http.StatusOK, resp.Code)

	var task model.Task
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &task))
	assert.Equal(t, "Novo título", task.Title)
	assert.Equal(t, model.StatusTodo, task.Status)
	assert.Len(t, task.History, 1)
	assert.Equal(t, model.StatusEdited, task.History[0].Status)
}

func TestUpdateTask_NotFound(t *testing.T) {
	// Arrange
	router, mockRepo, events := setupTaskTest()

	mockRepo.On("GetByID", mock.Anything, "TC-999").Return(nil, repository.ErrTaskNotFound)

	newTitle := "Qualquer"
	body, _ := json.Marshal(handler.UpdateTaskRequest{Title: &newTitle})

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, authedRequest("PUT", "/api/updateTask/TC-999", body))

	// Assert
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Empty(t, events.published())
}

func TestDeleteTask_Success(t *testing.T) {
	// Arrange
	router, mockRepo, events := setupTaskTest()

	mockRepo.On("Delete", mock.Anything, "TC-001").Return(nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, authedRequest("DELETE", "/api/deleteTask/TC-001", nil))

	// Assert: 204 plus a taskDeleted event carrying the id
	assert.Equal(t, http.StatusNoContent, resp.Code)

	published := events.published()
	assert.Len(t, published, 1)
	assert.Equal(t, hub.EventTaskDeleted, published[0].Target)
	assert.Equal(t, []any{"TC-001"}, published[0].Args)
}

func TestDeleteTask_NotFound(t *testing.T) {
	// Arrange
	router, mockRepo, events := setupTaskTest()

	mockRepo.On("Delete", mock.Anything, "TC-999").Return(repository.ErrTaskNotFound)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, authedRequest("DELETE", "/api/deleteTask/TC-999", nil))

	// Assert
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Empty(t, events.published())
}

func TestSignalResponsible_Dedup(t *testing.T) {
	// Arrange
	router, mockRepo, events := setupTaskTest()

	stored := &model.Task{
		ID:            "TC-001",
		Responsible:   model.ResponsibleList{{Name: "Alice"}, {Name: "Bob"}},
		PendingAlerts: []string{"Alice"},
	}
	mockRepo.On("GetByID", mock.Anything, "TC-001").Return(stored, nil)
	mockRepo.On("Replace", mock.Anything, mock.AnythingOfType("*model.Task")).Return(nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, authedRequest("POST", "/api/signalResponsible/TC-001", nil))

	// Assert: Bob is added, Alice is not duplicated
	assert.Equal(t, http.StatusOK, resp.Code)

	var task model.Task
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &task))
	assert.Equal(t, []string{"Alice", "Bob"}, task.PendingAlerts)

	published := events.published()
	assert.Len(t, published, 1)
	assert.Equal(t, hub.EventTaskUpdated, published[0].Target)
}

// countingTaskRepo hands out strictly increasing ids, like the counter
// document transaction does.
type countingTaskRepo struct {
	MockTaskRepository
	next int64
}

func (r *countingTaskRepo) NextNumericID(ctx context.Context) (int64, error) {
	r.next++
	return r.next, nil
}

func (r *countingTaskRepo) Create(ctx context.Context, task *model.Task) error {
	return nil
}

func TestCreateTask_SequentialIDs(t *testing.T) {
	// Arrange
	gin.SetMode(gin.TestMode)
	r := gin.New()
	repo := &countingTaskRepo{}
	taskHandler := handler.NewTaskHandler(repo, &fakePublisher{})
	r.POST("/api/createTask", middleware.PrincipalAuthMiddleware(), taskHandler.Create)

	body, _ := json.Marshal(handler.CreateTaskRequest{
		Title:       "Tarefa",
		Description: "Descrição",
		Responsible: model.ResponsibleList{{Name: "Alice"}},
	})

	ids := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		// Act
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, authedRequest("POST", "/api/createTask", body))
		assert.Equal(t, http.StatusCreated, resp.Code)

		var task model.Task
		assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &task))
		ids = append(ids, task.ID)
	}

	// Assert: zero-padded and strictly increasing
	assert.Equal(t, []string{"TC-001", "TC-002", "TC-003"}, ids)
}

func TestGetTasks_EmptyBoard(t *testing.T) {
	// Arrange
	router, mockRepo, _ := setupTaskTest()
	mockRepo.On("GetAll", mock.Anything).Return(nil, nil)

	// Act
	resp := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/getTasks", nil)
	router.ServeHTTP(resp, req)

	// Assert: an empty board is [], not null
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "[]", resp.Body.String())
}
