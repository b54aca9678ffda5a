package storage

import "time"

// Event is one applied state-changing operation, journaled for
// durability. The in-memory record store is rebuilt by replaying
// events in ascending Seq order.
type Event struct {
	Seq       int64     `json:"seq" db:"seq"`
	Height    int64     `json:"height" db:"height"`
	Sender    string    `json:"sender" db:"sender"`
	Op        string    `json:"op" db:"op"`
	Payload   []byte    `json:"payload" db:"payload"`
	AppliedAt time.Time `json:"applied_at" db:"applied_at"`
}
