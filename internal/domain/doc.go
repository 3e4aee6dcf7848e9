// Package domain contains the core entities of the pipeline: tenants and
// their notification preferences, tasks and their lifecycle states,
// summaries, notification events, and inbound email records. The state
// transition rules live on the entities themselves, independent of any
// storage or transport.
package domain
