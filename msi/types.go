package msi

import "fmt"

// InstallState is the state of a product as reported by the engine
// (INSTALLSTATE_*).
type InstallState int32

const (
	InstallStateNotUsed      InstallState = -7 // component disabled
	InstallStateBadConfig    InstallState = -6 // configuration data corrupt
	InstallStateIncomplete   InstallState = -5 // installation suspended or in progress
	InstallStateSourceAbsent InstallState = -4 // run from source, source is unavailable
	InstallStateMoreData     InstallState = -3 // return buffer overflow
	InstallStateInvalidArg   InstallState = -2 // invalid function argument
	InstallStateUnknown      InstallState = -1 // unrecognized product or feature
	InstallStateBroken       InstallState = 0
	InstallStateAdvertised   InstallState = 1
	InstallStateAbsent       InstallState = 2
	InstallStateLocal        InstallState = 3
	InstallStateSource       InstallState = 4
	InstallStateDefault      InstallState = 5
)

// InstallStateRemoved shares its value with InstallStateAdvertised. It is an
// action state passed to ConfigureProduct, not something the engine reports.
const InstallStateRemoved InstallState = 1

func (s InstallState) String() string {
	switch s {
	case InstallStateNotUsed:
		return "not used"
	case InstallStateBadConfig:
		return "bad config"
	case InstallStateIncomplete:
		return "incomplete"
	case InstallStateSourceAbsent:
		return "source absent"
	case InstallStateMoreData:
		return "more data"
	case InstallStateInvalidArg:
		return "invalid argument"
	case InstallStateUnknown:
		return "unknown"
	case InstallStateBroken:
		return "broken"
	case InstallStateAdvertised:
		return "advertised"
	case InstallStateAbsent:
		return "absent"
	case InstallStateLocal:
		return "local"
	case InstallStateSource:
		return "source"
	case InstallStateDefault:
		return "default"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Installed reports whether the product is present on the machine in some
// runnable form.
func (s InstallState) Installed() bool {
	return s == InstallStateLocal || s == InstallStateSource || s == InstallStateDefault
}

// UILevel selects how much of its own UI the engine shows (INSTALLUILEVEL_*).
// The base level may be combined with the flag values.
type UILevel uint32

const (
	UILevelNoChange UILevel = 0
	UILevelDefault  UILevel = 1
	UILevelNone     UILevel = 2
	UILevelBasic    UILevel = 3
	UILevelReduced  UILevel = 4
	UILevelFull     UILevel = 5

	UILevelHideCancel    UILevel = 0x20
	UILevelProgressOnly  UILevel = 0x40
	UILevelEndDialog     UILevel = 0x80
	UILevelSourceResOnly UILevel = 0x100
)

// ParseUILevel maps a level name ("none", "basic", "reduced", "full",
// "default") to a UILevel.
func ParseUILevel(name string) (UILevel, error) {
	switch name {
	case "", "none":
		return UILevelNone, nil
	case "basic":
		return UILevelBasic, nil
	case "basic-progress":
		return UILevelBasic | UILevelProgressOnly, nil
	case "reduced":
		return UILevelReduced, nil
	case "full":
		return UILevelFull, nil
	case "default":
		return UILevelDefault, nil
	default:
		return 0, fmt.Errorf("unknown UI level %q", name)
	}
}

// InstallLevel selects which features ConfigureProduct installs.
type InstallLevel int32

const (
	InstallLevelDefault InstallLevel = 0
	InstallLevelMinimum InstallLevel = 1
	InstallLevelMaximum InstallLevel = 0xFFFF
)

// AdvertiseScope selects whether AdvertiseProduct assigns the product to
// the machine or to the current user.
type AdvertiseScope uintptr

const (
	AdvertiseMachine AdvertiseScope = 0 // ADVERTISEFLAGS_MACHINEASSIGN
	AdvertiseUser    AdvertiseScope = 1 // ADVERTISEFLAGS_USERASSIGN
)

// Product properties accepted by ProductInfo (INSTALLPROPERTY_*).
const (
	PropertyVersionString   = "VersionString"
	PropertyProductName     = "ProductName"
	PropertyPublisher       = "Publisher"
	PropertyInstallLocation = "InstallLocation"
	PropertyInstallDate     = "InstallDate"
	PropertyLocalPackage    = "LocalPackage"
	PropertyHelpLink        = "HelpLink"
)

// Package properties read by PackageProperty from a package's Property
// table.
const (
	PackageProductCode    = "ProductCode"
	PackageUpgradeCode    = "UpgradeCode"
	PackageProductVersion = "ProductVersion"
	PackageProductName    = "ProductName"
	PackageManufacturer   = "Manufacturer"
)

// PatchType selects what ApplyPatch patches (INSTALLTYPE_*).
type PatchType int32

const (
	// PatchDefault patches every product the patch targets. The target is
	// empty.
	PatchDefault PatchType = 0
	// PatchNetworkImage patches an administrative image. The target is the
	// path to its package.
	PatchNetworkImage PatchType = 1
	// PatchSingleInstance patches one installed product. The target is its
	// product code.
	PatchSingleInstance PatchType = 2
)

func (t PatchType) String() string {
	switch t {
	case PatchDefault:
		return "default"
	case PatchNetworkImage:
		return "network image"
	case PatchSingleInstance:
		return "single instance"
	default:
		return fmt.Sprintf("patch type(%d)", int32(t))
	}
}

// checkPatchTarget validates the target argument of ApplyPatch for typ.
func checkPatchTarget(target string, typ PatchType) error {
	switch typ {
	case PatchDefault:
		if target != "" {
			return fmt.Errorf("patch type %s takes no target, got %q", typ, target)
		}
	case PatchNetworkImage:
		if target == "" {
			return fmt.Errorf("patch type %s needs the package path of the image", typ)
		}
	case PatchSingleInstance:
		if _, err := ParseGUID(target); err != nil {
			return fmt.Errorf("patch type %s needs a product code: %w", typ, err)
		}
	default:
		return fmt.Errorf("unknown patch type %d", int32(typ))
	}
	return nil
}
