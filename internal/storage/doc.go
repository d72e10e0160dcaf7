// Package storage provides the durable reminder task store.
//
// Two drivers implement the same TaskStore contract:
//   - sqlite: a SQLite database file (default)
//   - file:   a dependency-free jsonl journal with snapshot compaction
//
// The store is the sole id authority: ids are assigned on insert and stay
// stable for the task's lifetime. Deleting a row that is already gone is not
// an error; the scheduler and the command router may both delete rows.
package storage
