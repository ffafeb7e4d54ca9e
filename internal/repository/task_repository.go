package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"taskboard/internal/model"
)

const (
	tasksCollection = "Tasks"

	// updateBatchSize is the ceiling one bulk commit may carry. Batches run
	// sequentially; partial completion on failure is recovered by a retry or
	// a client refresh, never rolled back.
	updateBatchSize = 100
)

// OrderUpdate is one entry of a bulk reorder request.
type OrderUpdate struct {
	ID    string `json:"id" binding:"required"`
	Order int64  `json:"order"`
}

type TaskRepository struct {
	client *firestore.Client
}

type TaskRepositoryInterface interface {
	GetAll(ctx context.Context) ([]model.Task, error)
	GetArchived(ctx context.Context) ([]model.Task, error)
	GetByID(ctx context.Context, id string) (*model.Task, error)
	Create(ctx context.Context, task *model.Task) error
	Replace(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id string) error
	NextNumericID(ctx context.Context) (int64, error)
	UpdateOrders(ctx context.Context, updates []OrderUpdate) error
	UpdateProjectColor(ctx context.Context, projectName, newColor string) (int, error)
}

var _ TaskRepositoryInterface = (*TaskRepository)(nil)

func NewTaskRepository(client *firestore.Client) *TaskRepository {
	return &TaskRepository{client: client}
}

func (r *TaskRepository) col() *firestore.CollectionRef {
	return r.client.Collection(tasksCollection)
}

// GetAll retrieves every task document. The counter document lives in the
// same collection and is skipped.
func (r *TaskRepository) GetAll(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	iter := r.col().Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		if doc.Ref.ID == model.CounterDocID {
			continue
		}
		var task model.Task
		if err := doc.DataTo(&task); err != nil {
			return nil, fmt.Errorf("decoding task %s: %w", doc.Ref.ID, err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// GetArchived retrieves tasks whose status is "done".
func (r *TaskRepository) GetArchived(ctx context.Context) ([]model.Task, error) {
	docs, err := r.col().Where("status", "==", model.StatusDone).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	tasks := make([]model.Task, 0, len(docs))
	for _, doc := range docs {
		var task model.Task
		if err := doc.DataTo(&task); err != nil {
			return nil, fmt.Errorf("decoding task %s: %w", doc.Ref.ID, err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// GetByID retrieves a task by its ID
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*model.Task, error) {
	doc, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	var task model.Task
	if err := doc.DataTo(&task); err != nil {
		return nil, fmt.Errorf("decoding task %s: %w", id, err)
	}
	return &task, nil
}

// Create inserts a new task document keyed by the task id.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	_, err := r.col().Doc(task.ID).Create(ctx, task)
	return err
}

// Replace overwrites the whole task document. Last write wins: concurrent
// replaces of the same task clobber each other, which matches the original
// system's accepted behavior.
func (r *TaskRepository) Replace(ctx context.Context, task *model.Task) error {
	_, err := r.col().Doc(task.ID).Set(ctx, task)
	return err
}

// Delete removes a task by its ID
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	_, err := r.col().Doc(id).Delete(ctx, firestore.Exists)
	if status.Code(err) == codes.NotFound || status.Code(err) == codes.FailedPrecondition {
		return ErrTaskNotFound
	}
	return err
}

// NextNumericID atomically increments the counter document and returns the
// new value. The read and the write happen inside one transaction, so
// concurrent creations can never observe the same value; the follow-up task
// insert is a separate call and a crash in between leaks a counter value,
// which is acceptable since ids need only be unique.
func (r *TaskRepository) NextNumericID(ctx context.Context) (int64, error) {
	ref := r.col().Doc(model.CounterDocID)
	var next int64
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var counter model.Counter
		doc, err := tx.Get(ref)
		switch {
		case status.Code(err) == codes.NotFound:
			// First task ever: the counter document is created on demand.
		case err != nil:
			return err
		default:
			if err := doc.DataTo(&counter); err != nil {
				return err
			}
		}
		counter.CurrentID++
		next = counter.CurrentID
		return tx.Set(ref, counter)
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

// UpdateOrders applies the submitted order values, one field update per
// task, committed in batches of updateBatchSize.
func (r *TaskRepository) UpdateOrders(ctx context.Context, updates []OrderUpdate) error {
	for start := 0; start < len(updates); start += updateBatchSize {
		end := start + updateBatchSize
		if end > len(updates) {
			end = len(updates)
		}

		bw := r.client.BulkWriter(ctx)
		jobs := make([]*firestore.BulkWriterJob, 0, end-start)
		for _, u := range updates[start:end] {
			job, err := bw.Update(r.col().Doc(u.ID), []firestore.Update{
				{Path: "order", Value: u.Order},
			})
			if err != nil {
				return err
			}
			jobs = append(jobs, job)
		}
		bw.End()

		for _, job := range jobs {
			if _, err := job.Results(); err != nil {
				return err
			}
		}
	}
	return nil
}

// UpdateProjectColor sets projectColor on every task of the named project
// and returns how many tasks were touched. The color is denormalized onto
// each task document, so a rename of the color has to fan out like this.
func (r *TaskRepository) UpdateProjectColor(ctx context.Context, projectName, newColor string) (int, error) {
	docs, err := r.col().Where("project", "==", projectName).Documents(ctx).GetAll()
	if err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, nil
	}

	for start := 0; start < len(docs); start += updateBatchSize {
		end := start + updateBatchSize
		if end > len(docs) {
			end = len(docs)
		}

		bw := r.client.BulkWriter(ctx)
		jobs := make([]*firestore.BulkWriterJob, 0, end-start)
		for _, doc := range docs[start:end] {
			job, err := bw.Update(doc.Ref, []firestore.Update{
				{Path: "projectColor", Value: newColor},
			})
			if err != nil {
				return 0, err
			}
			jobs = append(jobs, job)
		}
		bw.End()

		for _, job := range jobs {
			if _, err := job.Results(); err != nil {
				return 0, err
			}
		}
	}
	return len(docs), nil
}
