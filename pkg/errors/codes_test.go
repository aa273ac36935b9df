package errors

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode_String(t *testing.T) {
	assert.Equal(t, "FRG_001", ErrCodeConnectivity.String())
}

func TestExitStatusForCode(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected int
	}{
		{CodeOK, ExitOK},
		{ErrCodeInternal, ExitFailure},
		{ErrCodeBadRequest, ExitUsage},
		{ErrCodeConnectivity, ExitPlacement},
		{ErrCodeMinimizerFailed, ExitMinimizer},
		{ErrCodeMolFileParse, ExitInput},
		{ErrCodeCacheError, ExitInfrastructure},
		{ErrorCode("UNKNOWN"), ExitFailure},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ExitStatusForCode(tt.code), tt.code)
	}
}

func TestDefaultMessageForCode(t *testing.T) {
	assert.Equal(t, "internal error", DefaultMessageForCode(ErrCodeInternal))
	assert.Equal(t, "unknown error", DefaultMessageForCode(ErrorCode("UNKNOWN")))
}

func TestIsInputError(t *testing.T) {
	assert.True(t, IsInputError(ErrCodeHitInvalid))
	assert.True(t, IsInputError(ErrCodeBadRequest))
	assert.False(t, IsInputError(ErrCodeMatchingExhausted))
}

func TestModuleForCode(t *testing.T) {
	assert.Equal(t, "COMMON", ModuleForCode(ErrCodeInternal))
	assert.Equal(t, "FRG", ModuleForCode(ErrCodeMatchingExhausted))
	assert.Equal(t, "IO", ModuleForCode(ErrCodeMolFileParse))
	assert.Equal(t, "UNKNOWN", ModuleForCode(ErrorCode("")))
	assert.Equal(t, "UNKNOWN", ModuleForCode(ErrorCode("NOPREFIX")))
}

func TestErrorCodeMappings_Completeness(t *testing.T) {
	re := regexp.MustCompile(`^[A-Z]+_\d{3}$`)
	for code := range ErrorCodeExitStatus {
		assert.Regexp(t, re, string(code))
		_, hasMessage := ErrorCodeMessage[code]
		assert.True(t, hasMessage, "missing message for %s", code)
	}
	assert.Equal(t, len(ErrorCodeExitStatus), len(ErrorCodeMessage))
}

//Personal.AI order the ending
