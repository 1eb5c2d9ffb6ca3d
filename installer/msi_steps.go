package installer

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/crafted-tech/msiflow/msi"
	"github.com/crafted-tech/msiflow/progress"
)

// EngineOptions configures how an MSI step drives the engine.
type EngineOptions struct {
	// UILevel is the engine's internal UI during the call. Zero means
	// msi.UILevelNone; the external handler drives the progress display.
	UILevel msi.UILevel

	// Progress options for the step's relay, e.g. progress.WithAccumulation.
	Progress []progress.Option

	// Transcript, if set, records every engine message and call result.
	Transcript *TranscriptWriter

	// Log receives engine errors, warnings and dropped progress messages.
	Log *Logger
}

// engineLogMode selects the messages routed to a step's relay.
var engineLogMode = progress.LogMode(
	progress.MessageProgress,
	progress.MessageActionStart,
	progress.MessageError,
	progress.MessageFatalExit,
	progress.MessageWarning,
)

// Engine entry points, replaced in tests.
var (
	engineSetExternalUI = msi.SetExternalUI
	engineSetInternalUI = msi.SetInternalUI
	engineInstall       = msi.InstallProduct
	engineAdvertise     = msi.AdvertiseProduct
	engineRemove        = msi.RemoveProduct
	engineQueryState    = msi.QueryProductState
	engineRelated       = msi.RelatedProducts
	engineVersion       = msi.InstalledVersion
	engineVerify        = msi.VerifyPackage
	engineApplyPatch    = msi.ApplyPatch
	enginePackageProp   = msi.PackageProperty
)

// stepStatus holds the latest fraction and action text of a running engine
// call. Progress and action messages arrive on different paths.
type stepStatus struct {
	mu       sync.Mutex
	fraction float64
	status   string
}

func (s *stepStatus) setFraction(f float64) (float64, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fraction = f
	return s.fraction, s.status
}

func (s *stepStatus) setStatus(status string) (float64, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	return s.fraction, s.status
}

// runEngine runs call with a fresh relay installed as the engine's external
// UI. It reports whether the engine asked for a restart.
func runEngine(ctx context.Context, op string, opts EngineOptions, report Reporter, call func() error) (rebootRequired bool, err error) {
	log := opts.Log
	if report == nil {
		report = func(float64, string) {}
	}

	var st stepStatus
	relayOpts := []progress.Option{
		progress.WithLogger(log),
		progress.WithMessageFunc(func(kind progress.MessageKind, text string) {
			switch kind.Type() {
			case progress.MessageActionStart:
				if desc := actionDescription(text); desc != "" {
					report(st.setStatus(desc))
				}
			case progress.MessageError, progress.MessageFatalExit:
				log.Error("%s: %s", op, strings.TrimSpace(text))
			case progress.MessageWarning:
				log.Warn("%s: %s", op, strings.TrimSpace(text))
			}
		}),
	}
	relay := progress.NewRelay(func(f float64) {
		report(st.setFraction(f))
	}, append(relayOpts, opts.Progress...)...)

	stop := context.AfterFunc(ctx, relay.Cancel)
	defer stop()

	restore, err := engineSetExternalUI(opts.Transcript.Tee(relay), engineLogMode)
	if err != nil {
		return false, fmt.Errorf("install progress handler: %w", err)
	}
	defer restore()

	level := opts.UILevel
	if level == msi.UILevelNoChange {
		level = msi.UILevelNone
	}
	prev := engineSetInternalUI(level)
	defer engineSetInternalUI(prev)

	err = call()

	if werr := opts.Transcript.WriteResult(resultFor(op, err)); werr != nil {
		log.Warn("record %s result: %v", op, werr)
	}
	stats := relay.Stats()
	log.Debug("%s: %d messages, %d decoded, %d dropped, %d emitted",
		op, stats.Delivered, stats.Decoded, stats.Dropped, stats.Emitted)

	switch {
	case err == nil:
		return false, nil
	case msi.IsRebootRequired(err):
		log.Warn("%s: restart required to complete the operation", op)
		return true, nil
	case relay.Cancelled() && msi.IsUserExit(err):
		return false, ErrCancelled
	default:
		return false, err
	}
}

// actionDescription extracts the display text from an ActionStart message
// of the form "Action 12:34:56: InstallFiles. Copying new files". It falls
// back to the action name when the description is empty.
func actionDescription(text string) string {
	rest := strings.TrimSpace(text)
	if strings.HasPrefix(rest, "Action ") {
		if i := strings.Index(rest, ": "); i >= 0 {
			rest = rest[i+2:]
		}
	}
	name, desc, _ := strings.Cut(rest, ". ")
	if desc = strings.TrimSpace(desc); desc != "" {
		return desc
	}
	return strings.TrimSuffix(strings.TrimSpace(name), ".")
}

func engineResult(reboot bool, err error) StepResult {
	switch {
	case err != nil:
		return Failed(err)
	case reboot:
		return StepResult{Info: "restart required", Reboot: true}
	default:
		return Success("")
	}
}

// PackageName returns the file name of a package path. Both separators are
// accepted so Windows paths name the same file on every platform.
func PackageName(path string) string {
	if i := strings.LastIndexAny(path, `\/`); i >= 0 {
		return path[i+1:]
	}
	return path
}

// verifyPackage rejects a file the engine would not open before any handler
// is installed.
func verifyPackage(path string) error {
	if err := engineVerify(path); err != nil {
		return fmt.Errorf("verify %s: %w", PackageName(path), err)
	}
	return nil
}

// StepInstallPackage creates a Step that installs the package at
// packagePath. commandLine holds PROPERTY=value pairs.
func StepInstallPackage(packagePath, commandLine string, opts EngineOptions) Step {
	return Step{
		Name: fmt.Sprintf("Install %s", PackageName(packagePath)),
		Action: func(ctx context.Context, report Reporter) StepResult {
			if err := verifyPackage(packagePath); err != nil {
				return Failed(err)
			}
			opts.Log.Info("Installing %s", packagePath)
			return engineResult(runEngine(ctx, "install", opts, report, func() error {
				return engineInstall(packagePath, commandLine)
			}))
		},
	}
}

// StepAdvertisePackage creates a Step that advertises the package at
// packagePath for the machine or the current user.
func StepAdvertisePackage(packagePath string, scope msi.AdvertiseScope, opts EngineOptions) Step {
	return Step{
		Name: fmt.Sprintf("Advertise %s", PackageName(packagePath)),
		Action: func(ctx context.Context, report Reporter) StepResult {
			if err := verifyPackage(packagePath); err != nil {
				return Failed(err)
			}
			opts.Log.Info("Advertising %s", packagePath)
			return engineResult(runEngine(ctx, "advertise", opts, report, func() error {
				return engineAdvertise(packagePath, scope, "", 0)
			}))
		},
	}
}

// StepApplyPatch creates a Step that applies the patch package at patchPath
// to one installed product. commandLine holds PROPERTY=value pairs. Skips if
// the product is not installed.
func StepApplyPatch(patchPath string, code msi.GUID, commandLine string, opts EngineOptions) Step {
	return Step{
		Name: fmt.Sprintf("Apply %s", PackageName(patchPath)),
		Action: func(ctx context.Context, report Reporter) StepResult {
			if state := engineQueryState(code); !state.Installed() {
				return Skipped(fmt.Sprintf("product %s not installed (%s)", code, state))
			}
			opts.Log.Info("Applying %s to %s", patchPath, code)
			return engineResult(runEngine(ctx, "patch", opts, report, func() error {
				return engineApplyPatch(patchPath, code.String(), msi.PatchSingleInstance, commandLine)
			}))
		},
	}
}

// StepRemoveProduct creates a Step that uninstalls a product. Skips if the
// product is neither installed nor advertised.
func StepRemoveProduct(code msi.GUID, opts EngineOptions) Step {
	return Step{
		Name: fmt.Sprintf("Remove %s", code),
		Action: func(ctx context.Context, report Reporter) StepResult {
			if state := engineQueryState(code); !removable(state) {
				return Skipped(fmt.Sprintf("not installed (%s)", state))
			}
			return engineResult(runEngine(ctx, "remove", opts, report, func() error {
				return engineRemove(code)
			}))
		},
	}
}

// StepRemoveRelatedProducts creates a Step that uninstalls every product
// sharing upgradeCode, except those listed in keep. Skips if there are
// none. Progress is split evenly across the products.
func StepRemoveRelatedProducts(upgradeCode msi.GUID, opts EngineOptions, keep ...msi.GUID) Step {
	return Step{
		Name: "Remove previous versions",
		Action: func(ctx context.Context, report Reporter) StepResult {
			related, err := engineRelated(upgradeCode)
			if err != nil {
				return Failed(fmt.Errorf("find related products: %w", err))
			}

			var products []msi.GUID
			for _, code := range related {
				if !slices.Contains(keep, code) {
					products = append(products, code)
				}
			}
			if len(products) == 0 {
				return Skipped("no related products installed")
			}

			var reboot bool
			n := float64(len(products))
			for i, code := range products {
				if ctx.Err() != nil {
					return Failed(ErrCancelled)
				}
				opts.Log.Info("Removing related product %s", code)
				base := float64(i)
				sub := func(fraction float64, status string) {
					report((base+clampFraction(fraction))/n, status)
				}
				r, err := runEngine(ctx, "remove", opts, sub, func() error {
					return engineRemove(code)
				})
				if err != nil {
					return Failed(fmt.Errorf("remove %s: %w", code, err))
				}
				reboot = reboot || r
			}

			info := fmt.Sprintf("removed %d product(s)", len(products))
			if reboot {
				info += ", restart required"
			}
			return StepResult{Info: info, Reboot: reboot}
		},
	}
}

func removable(state msi.InstallState) bool {
	return state.Installed() || state == msi.InstallStateAdvertised
}

// PackageInfo holds the identity of a package read from its Property table.
type PackageInfo struct {
	ProductCode    msi.GUID
	UpgradeCode    msi.GUID // msi.Nil if the package declares none
	ProductVersion string
	ProductName    string
}

// ReadPackageInfo reads the product code, upgrade code, version and name
// from the package at path without installing it.
func ReadPackageInfo(path string) (PackageInfo, error) {
	var info PackageInfo
	read := func(name string) (string, error) {
		v, err := enginePackageProp(path, name)
		if err != nil {
			return "", fmt.Errorf("read %s of %s: %w", name, PackageName(path), err)
		}
		return strings.TrimSpace(v), nil
	}

	code, err := read(msi.PackageProductCode)
	if err != nil {
		return info, err
	}
	if info.ProductCode, err = msi.ParseGUID(code); err != nil {
		return info, fmt.Errorf("%s: product code: %w", PackageName(path), err)
	}

	upgrade, err := read(msi.PackageUpgradeCode)
	if err != nil {
		return info, err
	}
	if upgrade != "" {
		if info.UpgradeCode, err = msi.ParseGUID(upgrade); err != nil {
			return info, fmt.Errorf("%s: upgrade code: %w", PackageName(path), err)
		}
	}

	if info.ProductVersion, err = read(msi.PackageProductVersion); err != nil {
		return info, err
	}
	if err := ValidateProductVersion(info.ProductVersion); err != nil {
		return info, fmt.Errorf("%s: %w", PackageName(path), err)
	}

	info.ProductName, err = read(msi.PackageProductName)
	return info, err
}
