package msi

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupported is returned by every engine call on platforms without
// Windows Installer.
var ErrUnsupported = errors.New("windows installer is not available on this platform")

// Engine return codes the package interprets.
const (
	CodeSuccess                = 0
	CodeInvalidParameter       = 87
	CodeMoreData               = 234
	CodeNoMoreItems            = 259
	CodeBadConfiguration       = 1610
	CodeInstallUserExit        = 1602
	CodeInstallFailure         = 1603
	CodeUnknownProperty        = 1608
	CodeUnknownProduct         = 1605
	CodeInstallAlreadyRunning  = 1618
	CodeInstallPackageOpen     = 1619
	CodeInstallPackageInvalid  = 1620
	CodeSuccessRebootInitiated = 1641
	CodeSuccessRebootRequired  = 3010
)

var codeNames = map[uint32]string{
	CodeInvalidParameter:       "invalid parameter",
	CodeMoreData:               "more data",
	CodeNoMoreItems:            "no more items",
	CodeBadConfiguration:       "bad configuration",
	CodeInstallUserExit:        "cancelled by user",
	CodeInstallFailure:         "fatal error during installation",
	CodeUnknownProperty:        "unknown property",
	CodeUnknownProduct:         "unknown product",
	CodeInstallAlreadyRunning:  "another installation is in progress",
	CodeInstallPackageOpen:     "package could not be opened",
	CodeInstallPackageInvalid:  "package is invalid",
	CodeSuccessRebootInitiated: "reboot initiated",
	CodeSuccessRebootRequired:  "reboot required",
}

// Error is a non-zero return code from an engine call.
type Error struct {
	Op   string // Engine function, e.g. "MsiInstallProduct"
	Code uint32
}

func (e *Error) Error() string {
	text := strings.TrimSpace(ErrorMessage(e.Code))
	if text == "" {
		text = codeNames[e.Code]
	}
	if text == "" {
		return fmt.Sprintf("%s: error %d", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: error %d: %s", e.Op, e.Code, text)
}

// checkCode converts an engine return code into an error.
func checkCode(op string, code uint32) error {
	if code == CodeSuccess {
		return nil
	}
	return &Error{Op: op, Code: code}
}

// IsRebootRequired reports whether err is an engine result meaning the
// operation succeeded but a reboot is pending or has been started.
func IsRebootRequired(err error) bool {
	return hasCode(err, CodeSuccessRebootRequired) || hasCode(err, CodeSuccessRebootInitiated)
}

// IsUserExit reports whether the operation was cancelled, either by the
// user or by an external UI handler replying IDCANCEL.
func IsUserExit(err error) bool {
	return hasCode(err, CodeInstallUserExit)
}

// IsUnknownProduct reports whether the engine does not know the product.
func IsUnknownProduct(err error) bool {
	return hasCode(err, CodeUnknownProduct)
}

func hasCode(err error, code uint32) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
