/*
Package schedule dispatches the operations of a host object on declarative schedules. A host lists its operations,
each paired with a Spec; a Controller turns every Spec into a firing plan (fixed rate, fixed delay, one-shot, or
anchored to a minute, hour or weekday) and keeps a registry of the running tasks so they can be cancelled by key.

Each firing counts its invocations and removes the task once the count is exceeded. A failing invocation ends the
schedule under the default FailStop policy; FailOpen keeps it running.
*/
package schedule
