// Package notify delivers fired reminders and other assistant messages to
// the user.
//
// Delivery fans out to independent channels: the OS desktop toast (via the
// platform's notification utility) and, when configured, a Telegram chat for
// reminders that should reach the user away from the desk. Each channel is
// best-effort and fault-isolated; a failure in one never blocks another and
// never surfaces beyond a log line.
package notify
