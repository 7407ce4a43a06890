// Package openai implements the relay remote client on the OpenAI Assistants API
// (assistants, threads, messages and runs).
package openai
