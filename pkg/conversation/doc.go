// Package conversation keeps the identity of a conversation thread and appends user
// messages to it. The ordered history lives on the remote service.
package conversation
