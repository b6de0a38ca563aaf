// Package core provides the mineral collection service.
//
// # Error Codes Reference
//
// User-facing errors carry a code that users can quote when reporting a
// problem. Messages are in Czech, the language of the viewer.
//
// # Source Errors (SRC001-SRC099)
//
//	SRC001 - Source unreadable: the collection file could not be loaded
//	         Matches: source.ErrAcquisition
//
//	SRC002 - Source HTTP status: the server answered with an error status
//	         Matches: source.ErrStatus
//
//	SRC003 - Source too large: the file exceeds the size limit
//	         Matches: source.ErrTooLarge
//
//	SRC004 - Reload busy: another reload is running
//	         Matches: ErrReloadBusy
//
//	SRC005 - No source: no file path or URL is configured
//	         Matches: ErrNoSource
//
// # Data Errors (DATA001-DATA099)
//
//	DATA001 - No data: nothing has been loaded yet
//	          Matches: ErrNoData
//
//	DATA002 - Malformed file: fewer than two lines, nothing to show
//	          Matches: ErrMalformed
//
// # File Errors (FILE001-FILE099)
//
//	FILE003 - Upload too large: the request body exceeds UPLOAD_MAX_FILE_SIZE
//	          Patterns: "request body too large"
//
//	FILE004 - No file: the upload carried no file
//	          Patterns: "no file provided"
//
//	FILE005 - Empty file: the uploaded file is empty
//	          Patterns: "empty file"
//
// # Request Errors (REQ001-REQ099, UPL001-UPL099)
//
//	REQ001 - Invalid view parameters in the query string
//	         Patterns: "invalid view request"
//
//	UPL004 - Request cancelled
//	         Matches: context.Canceled, Patterns: "context canceled"
//
//	UPL005 - Request timeout
//	         Matches: context.DeadlineExceeded, Patterns: "context deadline exceeded"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Too many requests
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error; check the logs for the technical error.
//
// # Matching
//
// Sentinel errors are matched first with errors.Is, in table order, so a
// wrapped cause wins over the generic acquisition error. Remaining errors are
// matched case-insensitively by substring; the first pattern wins.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/mineraly/internal/source"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorKind struct {
	target error
	msg    UserMessage
}

// errorKinds is checked before errorPatterns. Specific causes come before
// the errors that wrap them.
var errorKinds = []errorKind{
	{
		target: source.ErrTooLarge,
		msg: UserMessage{
			Message: "Soubor sbírky je příliš velký",
			Action:  "Zmenšete soubor nebo zvyšte SOURCE_MAX_BYTES",
			Code:    "SRC003",
		},
	},
	{
		target: source.ErrStatus,
		msg: UserMessage{
			Message: "Server se souborem sbírky vrátil chybu",
			Action:  "Ověřte adresu souboru a zkuste to znovu",
			Code:    "SRC002",
		},
	},
	{
		target: ErrReloadBusy,
		msg: UserMessage{
			Message: "Data se právě načítají",
			Action:  "Počkejte chvíli a zkuste to znovu",
			Code:    "SRC004",
		},
	},
	{
		target: ErrNoSource,
		msg: UserMessage{
			Message: "Není nastaven zdroj dat",
			Action:  "Nastavte SOURCE_PATH nebo SOURCE_URL",
			Code:    "SRC005",
		},
	},
	{
		target: ErrNoData,
		msg: UserMessage{
			Message: "Data zatím nejsou načtena",
			Action:  "Počkejte na načtení nebo nahrajte soubor",
			Code:    "DATA001",
		},
	},
	{
		target: ErrMalformed,
		msg: UserMessage{
			Message: "Soubor neobsahuje hlavičku a alespoň jeden řádek",
			Action:  "Zkontrolujte obsah souboru",
			Code:    "DATA002",
		},
	},
	{
		target: context.Canceled,
		msg: UserMessage{
			Message: "Požadavek byl zrušen",
			Action:  "Zkuste to znovu",
			Code:    "UPL004",
		},
	},
	{
		target: context.DeadlineExceeded,
		msg: UserMessage{
			Message: "Vypršel časový limit požadavku",
			Action:  "Zkuste to znovu později",
			Code:    "UPL005",
		},
	},
	{
		target: source.ErrAcquisition,
		msg: UserMessage{
			Message: "Chyba načítání dat.",
			Action:  "Ověřte, že soubor sbírky existuje a je čitelný",
			Code:    "SRC001",
		},
	},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user messages.
// The first matching pattern wins.
var errorPatterns = []errorPattern{
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "Nahraný soubor je příliš velký",
			Action:  "Zmenšete soubor nebo zvyšte UPLOAD_MAX_FILE_SIZE",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "Nebyl vybrán žádný soubor",
			Action:  "Vyberte CSV soubor sbírky",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "Nahraný soubor je prázdný",
			Action:  "Nahrajte CSV soubor s daty",
			Code:    "FILE005",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Požadavek byl zrušen",
			Action:  "Zkuste to znovu",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Vypršel časový limit požadavku",
			Action:  "Zkuste to znovu později",
			Code:    "UPL005",
		},
	},
	{
		pattern: "invalid view request",
		msg: UserMessage{
			Message: "Neplatné parametry zobrazení",
			Action:  "Upravte odkaz nebo začněte znovu od úvodní stránky",
			Code:    "REQ001",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Příliš mnoho požadavků",
			Action:  "Chvíli počkejte a zkuste to znovu",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "Došlo k neočekávané chybě",
	Action:  "Zkuste to znovu nebo kontaktujte správce",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. A nil
// error maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			return k.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display:
// "Message (Kód: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Kód: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
