// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetErrorInfo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		widget      string
		wantMessage string
		wantDetails bool
	}{
		{
			name:        "nil error",
			wantMessage: "",
		},
		{
			name:        "permission denied",
			err:         errors.New("open /widgets: permission denied"),
			wantMessage: "Permission denied",
		},
		{
			name:        "network failure",
			err:         errors.New("network request failed: dial tcp: no such host"),
			wantMessage: "Network connection failed",
		},
		{
			name:        "invalid bundle always shows details",
			err:         InvalidBundle("widget.toml is missing"),
			wantMessage: "Not a valid widget bundle",
			wantDetails: true,
		},
		{
			name:        "not installed with widget name",
			err:         fmt.Errorf("%w: com.pock.widget.clock", ErrWidgetNotFound),
			widget:      "Clock",
			wantMessage: "Widget 'Clock' is not installed",
		},
		{
			name:        "not installed without widget name",
			err:         ErrNotInstalled,
			wantMessage: "Widget not installed",
		},
		{
			name:        "already installed",
			err:         fmt.Errorf("%w: Clock", ErrAlreadyInstalled),
			wantMessage: "Already installed",
		},
		{
			name:        "unmatched error keeps its text",
			err:         errors.New("disk quota exceeded"),
			wantMessage: "disk quota exceeded",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			info := GetErrorInfo(testCase.err, testCase.widget, false)

			assert.Equal(t, testCase.wantMessage, info.Message)
			assert.Equal(t, testCase.wantDetails, info.ShowDetails)

			if testCase.err != nil {
				assert.NotEmpty(t, info.Suggestions)
			}
		})
	}
}

func TestFormatErrorMessage(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("%w: Clock", ErrAlreadyInstalled)

	short := FormatErrorMessage(err, "Clock", false)
	assert.Equal(t, "Clock: Already installed (Remove the widget first or use 'widgetctl update')", short)

	verbose := FormatErrorMessage(err, "Clock", true)
	assert.Contains(t, verbose, "Details: already installed: Clock")
	assert.Contains(t, verbose, "Suggestions:")
}

func TestExitError(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")

	withCause := NewExitError(3, "failed to load configuration", cause)
	assert.Equal(t, "failed to load configuration: boom", withCause.Error())
	require.ErrorIs(t, withCause, cause)

	bare := NewExitError(2, "usage", nil)
	assert.Equal(t, "usage", bare.Error())
	assert.NoError(t, bare.Unwrap())
}
