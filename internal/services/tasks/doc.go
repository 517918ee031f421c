// Package tasks groups the owner-scoped task subsystem.
//
// Every read and write is keyed on both the task id and the caller's user id,
// so a task owned by someone else is indistinguishable from one that does not
// exist.
package tasks
