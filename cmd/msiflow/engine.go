package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/crafted-tech/msiflow/installer"
	"github.com/crafted-tech/msiflow/msi"
)

func newInstallCmd(a *app) *cobra.Command {
	var (
		upgradeCode    string
		productCode    string
		packageVersion string
	)

	cmd := &cobra.Command{
		Use:   "install <package> [PROPERTY=VALUE...]",
		Short: "Install a package",
		Long: `Install a Windows Installer package, showing the engine's progress.

The product code, upgrade code and version are read from the package unless
given with --product-code, --upgrade-code and --package-version. Products
sharing the upgrade code are removed first, and the planned action (fresh
install, upgrade, downgrade or reinstall) is logged before anything runs.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg := args[0]
			name := installer.PackageName(pkg)
			properties := strings.Join(args[1:], " ")

			var product, upgrade msi.GUID
			if upgradeCode != "" {
				var err error
				if upgrade, err = msi.ParseGUID(upgradeCode); err != nil {
					return err
				}
			}
			if productCode != "" {
				var err error
				if product, err = msi.ParseGUID(productCode); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			s, err := a.openSession()
			if err != nil {
				return err
			}
			defer s.close()

			heading := "Installing " + name
			if upgradeCode == "" || productCode == "" || packageVersion == "" {
				info, err := readPackageInfo(pkg)
				if err != nil {
					s.log.Warn("%v", err)
				} else {
					s.log.Info("Package %s: product %s, upgrade %s, version %s",
						name, info.ProductCode, info.UpgradeCode, info.ProductVersion)
					if upgradeCode == "" {
						upgrade = info.UpgradeCode
					}
					if productCode == "" {
						product = info.ProductCode
					}
					if packageVersion == "" {
						packageVersion = info.ProductVersion
					}
					if info.ProductName != "" {
						heading = fmt.Sprintf("Installing %s %s", info.ProductName, info.ProductVersion)
					}
				}
			}

			var keep []msi.GUID
			if !product.IsZero() {
				keep = append(keep, product)
			}
			if len(keep) > 0 && packageVersion != "" {
				action, installed, err := installer.DetectAction(product, packageVersion)
				if err != nil {
					s.log.Warn("%v", err)
				} else {
					s.log.Info("Planned action: %s (installed %q, package %q)", action, installed, packageVersion)
					a.out.Field("Action", action.String())
				}
			}

			var steps []installer.Step
			if !upgrade.IsZero() {
				steps = append(steps, installer.StepRemoveRelatedProducts(upgrade, s.opts, keep...))
			}
			steps = append(steps, installer.StepInstallPackage(pkg, properties, s.opts))

			err = a.runSteps(ctx, "Installing "+name, heading, steps, s.log)
			return a.finish(s, err, "Installed %s", name)
		},
	}

	cmd.Flags().StringVar(&upgradeCode, "upgrade-code", "",
		"Remove installed products with this upgrade code first (default: read from the package)")
	cmd.Flags().StringVar(&productCode, "product-code", "",
		"Product code of the package; kept when removing related products (default: read from the package)")
	cmd.Flags().StringVar(&packageVersion, "package-version", "",
		"Version of the package, for logging the planned action (default: read from the package)")

	return cmd
}

// readPackageInfo is replaced in tests.
var readPackageInfo = installer.ReadPackageInfo

func newAdvertiseCmd(a *app) *cobra.Command {
	var user bool

	cmd := &cobra.Command{
		Use:   "advertise <package>",
		Short: "Advertise a package for the machine or the current user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg := args[0]
			scope := msi.AdvertiseMachine
			if user {
				scope = msi.AdvertiseUser
			}

			ctx := cmd.Context()
			s, err := a.openSession()
			if err != nil {
				return err
			}
			defer s.close()

			name := installer.PackageName(pkg)
			steps := []installer.Step{installer.StepAdvertisePackage(pkg, scope, s.opts)}
			err = a.runSteps(ctx, "Advertising "+name, "Advertising "+name, steps, s.log)
			return a.finish(s, err, "Advertised %s", name)
		},
	}

	cmd.Flags().BoolVar(&user, "user", false, "Advertise for the current user instead of the machine")
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <product-code>",
		Short: "Uninstall a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := msi.ParseGUID(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			s, err := a.openSession()
			if err != nil {
				return err
			}
			defer s.close()

			title := "Removing " + code.String()
			steps := []installer.Step{installer.StepRemoveProduct(code, s.opts)}
			err = a.runSteps(ctx, title, title, steps, s.log)
			return a.finish(s, err, "Removed %s", code)
		},
	}
}

func newPatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "patch <patch> <product-code> [PROPERTY=VALUE...]",
		Short: "Apply a patch to an installed product",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := args[0]
			code, err := msi.ParseGUID(args[1])
			if err != nil {
				return err
			}
			properties := strings.Join(args[2:], " ")

			ctx := cmd.Context()
			s, err := a.openSession()
			if err != nil {
				return err
			}
			defer s.close()

			name := installer.PackageName(patch)
			title := "Applying " + name
			steps := []installer.Step{installer.StepApplyPatch(patch, code, properties, s.opts)}
			err = a.runSteps(ctx, title, title, steps, s.log)
			return a.finish(s, err, "Applied %s to %s", name, code)
		},
	}
}

func newPatchesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "patches <product-code>",
		Short: "List the patches applied to a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := msi.ParseGUID(args[0])
			if err != nil {
				return err
			}
			patches, err := listPatches(code)
			if err != nil {
				return err
			}
			if len(patches) == 0 {
				a.out.Info("No patches applied to %s", code)
				return nil
			}
			for _, patch := range patches {
				a.out.Info("%s", patch)
			}
			return nil
		},
	}
}

// listPatches is replaced in tests.
var listPatches = msi.Patches

func newStateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "state <product-code>",
		Short: "Show the install state of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := msi.ParseGUID(args[0])
			if err != nil {
				return err
			}
			if err := msi.Available(); err != nil {
				return err
			}
			state := msi.QueryProductState(code)
			a.out.Field("Product", code.String())
			a.out.Field("State", stateString(state))
			return nil
		},
	}
}

func stateString(s msi.InstallState) string {
	switch {
	case s.Installed():
		return color.GreenString(s.String())
	case s == msi.InstallStateAdvertised:
		return color.CyanString(s.String())
	case s == msi.InstallStateUnknown, s == msi.InstallStateAbsent:
		return color.YellowString(s.String())
	default:
		return color.RedString(s.String())
	}
}

func newRelatedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "related <upgrade-code>",
		Short: "List products sharing an upgrade code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			upgrade, err := msi.ParseGUID(args[0])
			if err != nil {
				return err
			}
			products, err := msi.RelatedProducts(upgrade)
			if err != nil {
				return err
			}
			if len(products) == 0 {
				a.out.Info("No products found for %s", upgrade)
				return nil
			}
			for _, code := range products {
				version, err := msi.InstalledVersion(code)
				if err != nil {
					version = "-"
				}
				a.out.Info("%s  %-14s %s", code, version, stateString(msi.QueryProductState(code)))
			}
			return nil
		},
	}
}

func newVersionCmd(a *app) *cobra.Command {
	var packageVersion string

	cmd := &cobra.Command{
		Use:   "version <product-code>",
		Short: "Show the installed version of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := msi.ParseGUID(args[0])
			if err != nil {
				return err
			}

			if packageVersion != "" {
				if err := installer.ValidateProductVersion(packageVersion); err != nil {
					return err
				}
				action, installed, err := installer.DetectAction(code, packageVersion)
				if err != nil {
					return err
				}
				if installed == "" {
					installed = "(not installed)"
				}
				a.out.Field("Installed", installed)
				a.out.Field("Package", packageVersion)
				a.out.Field("Action", action.String())
				return nil
			}

			version, err := msi.InstalledVersion(code)
			if msi.IsUnknownProduct(err) {
				return fmt.Errorf("product %s is not installed", code)
			}
			if err != nil {
				return err
			}
			a.out.Info("%s", version)
			return nil
		},
	}

	cmd.Flags().StringVar(&packageVersion, "package-version", "",
		"Compare against this package version and show the resulting action")
	return cmd
}

// exitCode maps an error to the process exit code. Engine errors exit with
// the engine's code and a pending restart with 3010, like msiexec.
func exitCode(err error) int {
	var engineErr *msi.Error
	switch {
	case err == nil:
		return 0
	case errors.Is(err, installer.ErrRebootRequired):
		return msi.CodeSuccessRebootRequired
	case errors.Is(err, installer.ErrCancelled):
		return msi.CodeInstallUserExit
	case errors.As(err, &engineErr):
		return int(engineErr.Code)
	default:
		return 1
	}
}
