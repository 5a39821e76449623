// Package openai implements the ai.Embedder interface against
// OpenAI-compatible embedding APIs through langchaingo. It works with
// the hosted OpenAI API as well as local servers (Ollama, LocalAI,
// vLLM) that speak the same protocol.
package openai
