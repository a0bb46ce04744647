package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/todo-list-api/internal/model"
)

// TodoRepo encapsulates all queries on the 'todos' table. Every method
// takes the owner id and filters on it, so one user's calls can never
// observe or change another user's rows.
type TodoRepo struct {
	db *sql.DB
}

// NewTodoRepo constructs a TodoRepo with the provided DB handle.
func NewTodoRepo(db *sql.DB) *TodoRepo {
	return &TodoRepo{db: db}
}

// ListByOwner returns all todos of the owner in insertion order. An owner
// without todos gets an empty, non-nil slice.
func (r *TodoRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Todo, error) {
	const q = `SELECT id, owner_id, text, completed
	           FROM todos WHERE owner_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Todo{}
	for rows.Next() {
		var t model.Todo
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Text, &t.Completed); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a new, not yet completed todo for the owner. It returns
// ErrOwnerNotFound when the owner row does not exist.
func (r *TodoRepo) Create(ctx context.Context, ownerID uint64, text string) (model.Todo, error) {
	const q = "INSERT INTO todos (owner_id, text, completed) VALUES (?, ?, ?)"
	res, err := r.db.ExecContext(ctx, q, ownerID, text, false)
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.Todo{}, ErrOwnerNotFound
		}
		return model.Todo{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Todo{}, err
	}
	return model.Todo{ID: uint64(id), OwnerID: ownerID, Text: text, Completed: false}, nil
}

// UpdateCompleted sets the completed flag of a todo owned by ownerID.
// It returns ErrTodoNotFound when no row matches both id and owner.
func (r *TodoRepo) UpdateCompleted(ctx context.Context, id, ownerID uint64, completed bool) error {
	const q = "UPDATE todos SET completed = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND owner_id = ?"
	res, err := r.db.ExecContext(ctx, q, completed, id, ownerID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeleteByIDAndOwner removes a todo owned by ownerID. It returns
// ErrTodoNotFound when no row matches both id and owner.
func (r *TodoRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	const q = "DELETE FROM todos WHERE id = ? AND owner_id = ?"
	res, err := r.db.ExecContext(ctx, q, id, ownerID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTodoNotFound
	}
	return nil
}
