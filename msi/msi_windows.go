//go:build windows

package msi

import (
	"fmt"
	"runtime"
	"strings"
	"unsafe"

	ole "github.com/go-ole/go-ole"
	"golang.org/x/sys/windows"
)

var (
	modmsi = windows.NewLazySystemDLL("msi.dll")

	procMsiInstallProductW      = modmsi.NewProc("MsiInstallProductW")
	procMsiAdvertiseProductW    = modmsi.NewProc("MsiAdvertiseProductW")
	procMsiConfigureProductExW  = modmsi.NewProc("MsiConfigureProductExW")
	procMsiQueryProductStateW   = modmsi.NewProc("MsiQueryProductStateW")
	procMsiEnumRelatedProductsW = modmsi.NewProc("MsiEnumRelatedProductsW")
	procMsiGetProductInfoW      = modmsi.NewProc("MsiGetProductInfoW")
	procMsiSetInternalUI        = modmsi.NewProc("MsiSetInternalUI")
	procMsiSetExternalUIW       = modmsi.NewProc("MsiSetExternalUIW")
	procMsiVerifyPackageW       = modmsi.NewProc("MsiVerifyPackageW")
	procMsiApplyPatchW          = modmsi.NewProc("MsiApplyPatchW")
	procMsiEnumPatchesW         = modmsi.NewProc("MsiEnumPatchesW")
	procMsiOpenPackageExW       = modmsi.NewProc("MsiOpenPackageExW")
	procMsiGetProductPropertyW  = modmsi.NewProc("MsiGetProductPropertyW")
	procMsiCloseHandle          = modmsi.NewProc("MsiCloseHandle")
)

// guidChars is the length of a braced GUID plus the terminating null.
const guidChars = 39

// withCOM runs fn on a locked OS thread with COM initialized. Custom actions
// started by the engine expect an initialized apartment on the calling
// thread.
func withCOM(fn func() error) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil {
		oleErr, ok := err.(*ole.OleError)
		if !ok || (oleErr.Code() != 0 && oleErr.Code() != 1) { // S_OK=0, S_FALSE=1
			// Already initialized in another mode; the apartment is usable
			// but not ours to tear down.
			return fn()
		}
	}
	defer ole.CoUninitialize()

	return fn()
}

// utf16Ptr encodes s for an engine call. An empty s becomes a null pointer
// when optional is set.
func utf16Ptr(s string, optional bool) (*uint16, error) {
	if s == "" && optional {
		return nil, nil
	}
	return windows.UTF16PtrFromString(s)
}

// InstallProduct installs or configures the product in the package at
// packagePath. commandLine holds PROPERTY=value pairs.
func InstallProduct(packagePath, commandLine string) error {
	path, err := utf16Ptr(packagePath, false)
	if err != nil {
		return fmt.Errorf("encode package path: %w", err)
	}
	cmd, err := utf16Ptr(commandLine, true)
	if err != nil {
		return fmt.Errorf("encode command line: %w", err)
	}

	return withCOM(func() error {
		r1, _, _ := procMsiInstallProductW.Call(
			uintptr(unsafe.Pointer(path)),
			uintptr(unsafe.Pointer(cmd)),
		)
		return checkCode("MsiInstallProduct", uint32(r1))
	})
}

// AdvertiseProduct advertises the product in the package at packagePath.
// transforms is a semicolon separated list of transform paths; language is
// a LANGID, 0 for the package default.
func AdvertiseProduct(packagePath string, scope AdvertiseScope, transforms string, language uint16) error {
	path, err := utf16Ptr(packagePath, false)
	if err != nil {
		return fmt.Errorf("encode package path: %w", err)
	}
	trans, err := utf16Ptr(transforms, true)
	if err != nil {
		return fmt.Errorf("encode transforms: %w", err)
	}

	return withCOM(func() error {
		r1, _, _ := procMsiAdvertiseProductW.Call(
			uintptr(unsafe.Pointer(path)),
			uintptr(scope), // szScriptfilePath doubles as ADVERTISEFLAGS_*
			uintptr(unsafe.Pointer(trans)),
			uintptr(language),
		)
		return checkCode("MsiAdvertiseProduct", uint32(r1))
	})
}

// ConfigureProduct installs or uninstalls a product already known to the
// engine.
func ConfigureProduct(code GUID, level InstallLevel, state InstallState, commandLine string) error {
	product, err := utf16Ptr(code.String(), false)
	if err != nil {
		return fmt.Errorf("encode product code: %w", err)
	}
	cmd, err := utf16Ptr(commandLine, true)
	if err != nil {
		return fmt.Errorf("encode command line: %w", err)
	}

	return withCOM(func() error {
		r1, _, _ := procMsiConfigureProductExW.Call(
			uintptr(unsafe.Pointer(product)),
			uintptr(level),
			uintptr(state),
			uintptr(unsafe.Pointer(cmd)),
		)
		return checkCode("MsiConfigureProduct", uint32(r1))
	})
}

// RemoveProduct uninstalls a product.
func RemoveProduct(code GUID) error {
	return ConfigureProduct(code, InstallLevelDefault, InstallStateAbsent, "")
}

// QueryProductState returns the install state of a product for the current
// user.
func QueryProductState(code GUID) InstallState {
	product, err := utf16Ptr(code.String(), false)
	if err != nil {
		return InstallStateInvalidArg
	}
	r1, _, _ := procMsiQueryProductStateW.Call(uintptr(unsafe.Pointer(product)))
	return InstallState(int32(r1))
}

// RelatedProduct returns the product at index in the list of products
// sharing upgradeCode. Past the end it returns an *Error with CodeNoMoreItems.
func RelatedProduct(upgradeCode GUID, index uint32) (GUID, error) {
	upgrade, err := utf16Ptr(upgradeCode.String(), false)
	if err != nil {
		return Nil, fmt.Errorf("encode upgrade code: %w", err)
	}

	var buf [guidChars]uint16
	r1, _, _ := procMsiEnumRelatedProductsW.Call(
		uintptr(unsafe.Pointer(upgrade)),
		0, // dwReserved
		uintptr(index),
		uintptr(unsafe.Pointer(&buf[0])),
	)
	if err := checkCode("MsiEnumRelatedProducts", uint32(r1)); err != nil {
		return Nil, err
	}
	return ParseGUID(windows.UTF16ToString(buf[:]))
}

// RelatedProducts returns every installed or advertised product sharing
// upgradeCode.
func RelatedProducts(upgradeCode GUID) ([]GUID, error) {
	// Enumeration calls must come from the same thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var products []GUID
	for index := uint32(0); ; index++ {
		code, err := RelatedProduct(upgradeCode, index)
		if hasCode(err, CodeNoMoreItems) {
			return products, nil
		}
		if err != nil {
			return products, fmt.Errorf("enumerate related products at index %d: %w", index, err)
		}
		products = append(products, code)
	}
}

// ProductInfo returns a property of an installed or advertised product.
func ProductInfo(code GUID, property string) (string, error) {
	product, err := utf16Ptr(code.String(), false)
	if err != nil {
		return "", fmt.Errorf("encode product code: %w", err)
	}
	prop, err := utf16Ptr(property, false)
	if err != nil {
		return "", fmt.Errorf("encode property: %w", err)
	}

	bufLen := uint32(windows.MAX_PATH)
	for {
		buf := make([]uint16, bufLen)
		r1, _, _ := procMsiGetProductInfoW.Call(
			uintptr(unsafe.Pointer(product)),
			uintptr(unsafe.Pointer(prop)),
			uintptr(unsafe.Pointer(&buf[0])),
			uintptr(unsafe.Pointer(&bufLen)),
		)
		if r1 == CodeMoreData {
			// bufLen now holds the length without the terminator.
			bufLen++
			continue
		}
		if err := checkCode("MsiGetProductInfo", uint32(r1)); err != nil {
			return "", err
		}
		return windows.UTF16ToString(buf[:bufLen]), nil
	}
}

// InstalledVersion returns the version string of an installed product.
func InstalledVersion(code GUID) (string, error) {
	return ProductInfo(code, PropertyVersionString)
}

// SetInternalUI sets the engine's UI level for this process and returns the
// previous level.
func SetInternalUI(level UILevel) UILevel {
	r1, _, _ := procMsiSetInternalUI.Call(uintptr(level), 0)
	return UILevel(r1)
}

// VerifyPackage checks that path is a valid installer package.
func VerifyPackage(path string) error {
	p, err := utf16Ptr(path, false)
	if err != nil {
		return fmt.Errorf("encode package path: %w", err)
	}
	r1, _, _ := procMsiVerifyPackageW.Call(uintptr(unsafe.Pointer(p)))
	return checkCode("MsiVerifyPackage", uint32(r1))
}

// ApplyPatch applies the patch package at patchPath. target depends on typ:
// empty for PatchDefault, a package path for PatchNetworkImage and a braced
// product code for PatchSingleInstance. commandLine holds PROPERTY=value
// pairs.
func ApplyPatch(patchPath, target string, typ PatchType, commandLine string) error {
	if err := checkPatchTarget(target, typ); err != nil {
		return err
	}
	patch, err := utf16Ptr(patchPath, false)
	if err != nil {
		return fmt.Errorf("encode patch path: %w", err)
	}
	install, err := utf16Ptr(target, true)
	if err != nil {
		return fmt.Errorf("encode patch target: %w", err)
	}
	cmdLine, err := utf16Ptr(commandLine, true)
	if err != nil {
		return fmt.Errorf("encode command line: %w", err)
	}

	return withCOM(func() error {
		r1, _, _ := procMsiApplyPatchW.Call(
			uintptr(unsafe.Pointer(patch)),
			uintptr(unsafe.Pointer(install)),
			uintptr(typ),
			uintptr(unsafe.Pointer(cmdLine)),
		)
		return checkCode("MsiApplyPatch", uint32(r1))
	})
}

// Patches returns the patch codes applied to a product.
func Patches(code GUID) ([]GUID, error) {
	product, err := utf16Ptr(code.String(), false)
	if err != nil {
		return nil, fmt.Errorf("encode product code: %w", err)
	}

	// Enumeration calls must come from the same thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var patches []GUID
	transformsLen := uint32(windows.MAX_PATH)
	for index := uint32(0); ; {
		var buf [guidChars]uint16
		transforms := make([]uint16, transformsLen)
		size := transformsLen
		r1, _, _ := procMsiEnumPatchesW.Call(
			uintptr(unsafe.Pointer(product)),
			uintptr(index),
			uintptr(unsafe.Pointer(&buf[0])),
			uintptr(unsafe.Pointer(&transforms[0])),
			uintptr(unsafe.Pointer(&size)),
		)
		switch uint32(r1) {
		case CodeNoMoreItems:
			return patches, nil
		case CodeMoreData:
			// size now holds the transform list length without the
			// terminator; retry the same index.
			transformsLen = size + 1
			continue
		}
		if err := checkCode("MsiEnumPatches", uint32(r1)); err != nil {
			return patches, fmt.Errorf("enumerate patches at index %d: %w", index, err)
		}
		patch, err := ParseGUID(windows.UTF16ToString(buf[:]))
		if err != nil {
			return patches, err
		}
		patches = append(patches, patch)
		index++
	}
}

// msiOpenPackageIgnoreMachineState opens a package without evaluating
// machine state (MSIOPENPACKAGEFLAGS_IGNOREMACHINESTATE).
const msiOpenPackageIgnoreMachineState = 1

// PackageProperty reads a property from the Property table of the package
// at path without installing it. A property the package does not define
// reads as "".
func PackageProperty(path, name string) (string, error) {
	pkg, err := utf16Ptr(path, false)
	if err != nil {
		return "", fmt.Errorf("encode package path: %w", err)
	}
	prop, err := utf16Ptr(name, false)
	if err != nil {
		return "", fmt.Errorf("encode property: %w", err)
	}

	var handle uint32
	r1, _, _ := procMsiOpenPackageExW.Call(
		uintptr(unsafe.Pointer(pkg)),
		msiOpenPackageIgnoreMachineState,
		uintptr(unsafe.Pointer(&handle)),
	)
	if err := checkCode("MsiOpenPackageEx", uint32(r1)); err != nil {
		return "", err
	}
	defer procMsiCloseHandle.Call(uintptr(handle))

	bufLen := uint32(windows.MAX_PATH)
	for {
		buf := make([]uint16, bufLen)
		r1, _, _ := procMsiGetProductPropertyW.Call(
			uintptr(handle),
			uintptr(unsafe.Pointer(prop)),
			uintptr(unsafe.Pointer(&buf[0])),
			uintptr(unsafe.Pointer(&bufLen)),
		)
		switch uint32(r1) {
		case CodeMoreData:
			bufLen++
			continue
		case CodeUnknownProperty:
			return "", nil
		}
		if err := checkCode("MsiGetProductProperty", uint32(r1)); err != nil {
			return "", err
		}
		return windows.UTF16ToString(buf[:bufLen]), nil
	}
}

// ErrorMessage returns the system text for an engine or Win32 error code,
// or "" if the system has none.
func ErrorMessage(code uint32) string {
	buf := make([]uint16, 1024)
	n, err := windows.FormatMessage(
		windows.FORMAT_MESSAGE_FROM_SYSTEM|windows.FORMAT_MESSAGE_IGNORE_INSERTS,
		0, code, 0, buf, nil)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(windows.UTF16ToString(buf[:n]))
}

// Available reports whether the engine library can be loaded.
func Available() error {
	if err := modmsi.Load(); err != nil {
		return fmt.Errorf("load msi.dll: %w", err)
	}
	return nil
}
