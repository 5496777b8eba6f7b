// Package ui renders process lifecycle events as concise console log lines.
package ui
