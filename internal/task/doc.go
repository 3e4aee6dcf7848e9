// Package task drives the summarization pipeline. It owns the task
// lifecycle from creation through summarization to a terminal state, the
// notification fan-out that follows a completed summary, and the background
// sweepers that deliver notifications and re-drive tasks stranded by
// crashes, ensuring slow work never blocks HTTP request handling.
package task
