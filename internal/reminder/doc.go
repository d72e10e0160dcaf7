// Package reminder implements the reminder scheduling core.
//
// The scheduler keeps a 1:1 mapping between live, not-yet-fired tasks and
// armed one-shot timers. A task whose time has already passed today is
// skipped, never rolled to tomorrow; its row stays in the store until the
// user deletes or clears it. Firing is terminal: the user is notified, the
// row is deleted, and the timer entry is removed.
//
// Delivery and store writes are best-effort. A failed toast or a failed row
// delete is logged and swallowed; nothing here retries or propagates errors
// that would abort a larger operation.
package reminder
