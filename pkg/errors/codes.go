package errors

import (
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal        ErrorCode = "COMMON_001"
	ErrCodeBadRequest      ErrorCode = "COMMON_002"
	ErrCodeNotFound        ErrorCode = "COMMON_005"
	ErrCodeTimeout         ErrorCode = "COMMON_009"
	ErrCodeValidation      ErrorCode = "COMMON_010"
	ErrCodeSerialization   ErrorCode = "COMMON_011"
	ErrCodeCacheError      ErrorCode = "COMMON_013"
	ErrCodeCancelled       ErrorCode = "COMMON_017"
	ErrCodeConfigInvalid   ErrorCode = "COMMON_018"
	ErrCodeNotImplemented  ErrorCode = "COMMON_016"
	ErrCodeExternalService ErrorCode = "COMMON_014"
)

// Aliases used by call sites that predate the ErrCode prefix.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeTimeout      = ErrCodeTimeout
	CodeCacheError   = ErrCodeCacheError
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// Placement Module Error Codes
const (
	// ErrCodeConnectivity: no spatial correspondence between a scaffold and a fragment.
	ErrCodeConnectivity ErrorCode = "FRG_001"
	// ErrCodeMatchingExhausted: no lax substructure correspondence agrees with the strict one.
	ErrCodeMatchingExhausted ErrorCode = "FRG_002"
	// ErrCodeValenceValidation: graph revalidation found an atom with impossible valence.
	ErrCodeValenceValidation ErrorCode = "FRG_003"
	ErrCodeMinimizerFailed   ErrorCode = "FRG_004"
	ErrCodeHitInvalid        ErrorCode = "FRG_005"
	ErrCodeAlignmentFailed   ErrorCode = "FRG_006"
	ErrCodeGraphInvalid      ErrorCode = "FRG_007"
)

// Structure I/O Error Codes
const (
	ErrCodeMolFileParse ErrorCode = "IO_001"
	ErrCodeMolFileWrite ErrorCode = "IO_002"
	ErrCodeFileAccess   ErrorCode = "IO_003"
)

// Process exit codes used by the command-line interface.
const (
	ExitOK             = 0
	ExitFailure        = 1
	ExitUsage          = 2
	ExitInput          = 3
	ExitPlacement      = 4
	ExitMinimizer      = 5
	ExitInfrastructure = 6
)

// ErrorCodeExitStatus maps ErrorCodes to process exit codes.
var ErrorCodeExitStatus = map[ErrorCode]int{
	ErrCodeInternal:        ExitFailure,
	ErrCodeBadRequest:      ExitUsage,
	ErrCodeNotFound:        ExitInput,
	ErrCodeTimeout:         ExitFailure,
	ErrCodeValidation:      ExitUsage,
	ErrCodeSerialization:   ExitFailure,
	ErrCodeCacheError:      ExitInfrastructure,
	ErrCodeCancelled:       ExitFailure,
	ErrCodeConfigInvalid:   ExitUsage,
	ErrCodeNotImplemented:  ExitFailure,
	ErrCodeExternalService: ExitInfrastructure,

	ErrCodeConnectivity:      ExitPlacement,
	ErrCodeMatchingExhausted: ExitPlacement,
	ErrCodeValenceValidation: ExitPlacement,
	ErrCodeMinimizerFailed:   ExitMinimizer,
	ErrCodeHitInvalid:        ExitInput,
	ErrCodeAlignmentFailed:   ExitPlacement,
	ErrCodeGraphInvalid:      ExitInput,

	ErrCodeMolFileParse: ExitInput,
	ErrCodeMolFileWrite: ExitFailure,
	ErrCodeFileAccess:   ExitInput,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:        "internal error",
	ErrCodeBadRequest:      "bad request",
	ErrCodeNotFound:        "resource not found",
	ErrCodeTimeout:         "operation timed out",
	ErrCodeValidation:      "validation failed",
	ErrCodeSerialization:   "serialization failed",
	ErrCodeCacheError:      "cache error",
	ErrCodeCancelled:       "operation cancelled",
	ErrCodeConfigInvalid:   "invalid configuration",
	ErrCodeNotImplemented:  "not implemented",
	ErrCodeExternalService: "external service error",

	ErrCodeConnectivity:      "no spatial overlap between scaffold and fragment",
	ErrCodeMatchingExhausted: "no substructure correspondence consistent with the strict match",
	ErrCodeValenceValidation: "invalid valence after graph revalidation",
	ErrCodeMinimizerFailed:   "conformer embedding or relaxation failed",
	ErrCodeHitInvalid:        "invalid hit",
	ErrCodeAlignmentFailed:   "rigid alignment failed",
	ErrCodeGraphInvalid:      "invalid molecular graph",

	ErrCodeMolFileParse: "malformed molfile",
	ErrCodeMolFileWrite: "failed to write molfile",
	ErrCodeFileAccess:   "failed to access file",
}

// ExitStatusForCode returns the process exit code for an ErrorCode.
// Unknown codes map to ExitFailure.
func ExitStatusForCode(code ErrorCode) int {
	if code == CodeOK {
		return ExitOK
	}
	if status, ok := ErrorCodeExitStatus[code]; ok {
		return status
	}
	return ExitFailure
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsInputError reports whether the code describes a problem with caller-supplied input.
func IsInputError(code ErrorCode) bool {
	switch ExitStatusForCode(code) {
	case ExitUsage, ExitInput:
		return true
	}
	return false
}

// ModuleForCode returns the module prefix of an error code (e.g. "FRG").
func ModuleForCode(code ErrorCode) string {
	s := string(code)
	if s == "" {
		return "UNKNOWN"
	}
	idx := strings.Index(s, "_")
	if idx == -1 {
		return "UNKNOWN"
	}
	return s[:idx]
}

//Personal.AI order the ending
