/*
Package session implements session bookkeeping and per-key serialization.

It provides the keyed locks used to serialize appends to a thread, optionally backed by
a distributed locker across replicas, and a Manager that loads, creates and updates the
session bookmarks kept in a ports.SessionStore. A Manager also exposes each session as a
durable ports.CallLedger for the run orchestrator.
*/
package session
