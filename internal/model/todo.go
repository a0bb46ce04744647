package model

// Todo is a row of the `todos` table. Every todo belongs to exactly one
// user through OwnerID, and every query filters on it.
type Todo struct {
    ID        uint64 // todos.id
    OwnerID   uint64 // todos.owner_id (references users.id)
    Text      string // todos.text
    Completed bool   // todos.completed
}
