// SPDX-License-Identifier: MPL-2.0

// Package worker runs analysis work inside a separate Python process.
//
// A Process is a long-lived interpreter started with an embedded bootstrap
// loop. Requests and responses are single JSON lines on the child's stdin and
// stdout; anything the work prints goes to the child's stderr, which is logged
// at debug level. A Pool keeps one Process per interpreter executable and
// implements pyenv.WorkerFactory. A Process that dies, or is killed because a
// caller's context ended, is dropped from the Pool and replaced on the next
// submission.
package worker
