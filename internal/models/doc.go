// Package models lists the OpenAI chat models that can be used to write
// example sentences with the API key at hand.
package models
