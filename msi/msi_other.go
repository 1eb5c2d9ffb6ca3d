//go:build !windows

package msi

// InstallProduct is not supported on non-Windows platforms.
func InstallProduct(packagePath, commandLine string) error {
	return ErrUnsupported
}

// AdvertiseProduct is not supported on non-Windows platforms.
func AdvertiseProduct(packagePath string, scope AdvertiseScope, transforms string, language uint16) error {
	return ErrUnsupported
}

// ConfigureProduct is not supported on non-Windows platforms.
func ConfigureProduct(code GUID, level InstallLevel, state InstallState, commandLine string) error {
	return ErrUnsupported
}

// RemoveProduct is not supported on non-Windows platforms.
func RemoveProduct(code GUID) error {
	return ErrUnsupported
}

// QueryProductState always reports InstallStateUnknown on non-Windows
// platforms.
func QueryProductState(code GUID) InstallState {
	return InstallStateUnknown
}

// RelatedProduct is not supported on non-Windows platforms.
func RelatedProduct(upgradeCode GUID, index uint32) (GUID, error) {
	return Nil, ErrUnsupported
}

// RelatedProducts is not supported on non-Windows platforms.
func RelatedProducts(upgradeCode GUID) ([]GUID, error) {
	return nil, ErrUnsupported
}

// ProductInfo is not supported on non-Windows platforms.
func ProductInfo(code GUID, property string) (string, error) {
	return "", ErrUnsupported
}

// InstalledVersion is not supported on non-Windows platforms.
func InstalledVersion(code GUID) (string, error) {
	return "", ErrUnsupported
}

// SetInternalUI does nothing on non-Windows platforms.
func SetInternalUI(level UILevel) UILevel {
	return UILevelNoChange
}

// SetExternalUI is not supported on non-Windows platforms.
func SetExternalUI(h MessageHandler, filter uint32) (restore func(), err error) {
	return nil, ErrUnsupported
}

// VerifyPackage is not supported on non-Windows platforms.
func VerifyPackage(path string) error {
	return ErrUnsupported
}

// ApplyPatch is not supported on non-Windows platforms.
func ApplyPatch(patchPath, target string, typ PatchType, commandLine string) error {
	return ErrUnsupported
}

// Patches is not supported on non-Windows platforms.
func Patches(code GUID) ([]GUID, error) {
	return nil, ErrUnsupported
}

// PackageProperty is not supported on non-Windows platforms.
func PackageProperty(path, name string) (string, error) {
	return "", ErrUnsupported
}

// ErrorMessage has no system text to offer on non-Windows platforms.
func ErrorMessage(code uint32) string {
	return ""
}

// Available reports ErrUnsupported on non-Windows platforms.
func Available() error {
	return ErrUnsupported
}
