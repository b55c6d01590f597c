// Package model defines the provider-agnostic abstractions and concrete
// helpers for interacting with language models inside SalesMesh.
//
// Core goals:
//   - A single blocking completion interface (Model) for all providers
//   - Keep request/response shapes minimal and transport independent
//   - Carry the requesting agent's name on every request for attribution
//   - Facilitate lightweight mocking for tests (Mock)
//
// Providers (e.g. OpenAI, Anthropic) implement the Model interface from this
// package so higher layers (agents, pipelines) remain decoupled from vendor
// SDKs.
package model
