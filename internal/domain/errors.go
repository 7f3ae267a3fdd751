// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

import (
	"strings"
)

// ErrorInfo provides user-friendly error information.
type ErrorInfo struct {
	Message     string   // User-friendly message
	Suggestions []string // Actionable suggestions
	ShowDetails bool     // Whether to show technical details
}

type errorMatcher struct {
	patterns []string
	getInfo  func(widget string, verbose bool) ErrorInfo
}

// getErrorMatchers returns error patterns and their corresponding info.
func getErrorMatchers() []errorMatcher {
	return []errorMatcher{
		{
			patterns: []string{"permission", "denied", "read-only"},
			getInfo: func(_ string, verbose bool) ErrorInfo {
				return ErrorInfo{
					Message:     "Permission denied",
					Suggestions: []string{"Check that the widgets directory is writable"},
					ShowDetails: verbose,
				}
			},
		},
		{
			patterns: []string{"network", "connection", "timeout", "no such host", "status"},
			getInfo: func(_ string, verbose bool) ErrorInfo {
				return ErrorInfo{
					Message:     "Network connection failed",
					Suggestions: []string{"Check your internet connection", "Try again in a few moments"},
					ShowDetails: verbose,
				}
			},
		},
		{
			patterns: []string{"invalid bundle"},
			getInfo: func(_ string, verbose bool) ErrorInfo {
				return ErrorInfo{
					Message:     "Not a valid widget bundle",
					Suggestions: []string{"Pick a .pock bundle or archive"},
					ShowDetails: true,
				}
			},
		},
		{
			patterns: []string{"widget not found", "not installed"},
			getInfo: func(widget string, verbose bool) ErrorInfo {
				if widget != "" {
					return ErrorInfo{
						Message:     "Widget '" + widget + "' is not installed",
						Suggestions: []string{"Use 'widgetctl list' to see installed widgets"},
						ShowDetails: verbose,
					}
				}

				return ErrorInfo{
					Message:     "Widget not installed",
					Suggestions: []string{"Use 'widgetctl list' to see installed widgets"},
					ShowDetails: verbose,
				}
			},
		},
		{
			patterns: []string{"already installed"},
			getInfo: func(_ string, verbose bool) ErrorInfo {
				return ErrorInfo{
					Message:     "Already installed",
					Suggestions: []string{"Remove the widget first or use 'widgetctl update'"},
					ShowDetails: verbose,
				}
			},
		},
	}
}

// GetErrorInfo analyzes an error and returns user-friendly information.
func GetErrorInfo(err error, widget string, verbose bool) ErrorInfo {
	if err == nil {
		return ErrorInfo{}
	}

	errStr := strings.ToLower(err.Error())

	for _, matcher := range getErrorMatchers() {
		for _, pattern := range matcher.patterns {
			if strings.Contains(errStr, pattern) {
				return matcher.getInfo(widget, verbose)
			}
		}
	}

	return ErrorInfo{
		Message:     err.Error(),
		Suggestions: []string{"Run with --verbose for more details"},
	}
}

// FormatErrorMessage formats an error for display.
func FormatErrorMessage(err error, widget string, verbose bool) string {
	info := GetErrorInfo(err, widget, verbose)

	var result strings.Builder

	if widget != "" {
		result.WriteString(widget)
		result.WriteString(": ")
	}

	result.WriteString(info.Message)

	if info.ShowDetails && err != nil {
		result.WriteString("\n  Details: ")
		result.WriteString(err.Error())
	}

	if len(info.Suggestions) > 0 && !verbose {
		result.WriteString(" (")
		result.WriteString(info.Suggestions[0])
		result.WriteString(")")
	} else if len(info.Suggestions) > 0 {
		result.WriteString("\n  Suggestions:")

		for _, suggestion := range info.Suggestions {
			result.WriteString("\n    • ")
			result.WriteString(suggestion)
		}
	}

	return result.String()
}
