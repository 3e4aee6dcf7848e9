// Package events is the in-process bridge between task creation and task
// processing. Producers (the HTTP layer, inbound email routing) emit a
// task_created event once the task row is durable; the lifecycle engine
// subscribes and runs summarization asynchronously. Handlers run on their
// own goroutines, so a slow provider call never holds up a webhook ack.
package events
