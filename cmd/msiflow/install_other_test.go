//go:build !windows

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crafted-tech/msiflow/installer"
	"github.com/crafted-tech/msiflow/msi"
)

// Without an engine each step fails at its first engine call, which shows
// which steps the install command planned.
func TestInstallReadsPackageIdentity(t *testing.T) {
	orig := readPackageInfo
	t.Cleanup(func() { readPackageInfo = orig })

	var readFrom string
	info := installer.PackageInfo{
		ProductCode:    msi.MustParseGUID("{11111111-1111-1111-1111-111111111111}"),
		UpgradeCode:    msi.MustParseGUID("{44444444-4444-4444-4444-444444444444}"),
		ProductVersion: "2.1.0",
		ProductName:    "Acme App",
	}
	readPackageInfo = func(path string) (installer.PackageInfo, error) {
		readFrom = path
		return info, nil
	}

	_, _, err := runCLI(t, "install", `C:\pkgs\app.msi`)
	assert.ErrorContains(t, err, "find related products")
	assert.Equal(t, `C:\pkgs\app.msi`, readFrom)

	info.UpgradeCode = msi.Nil
	_, _, err = runCLI(t, "install", `C:\pkgs\app.msi`)
	assert.ErrorContains(t, err, "verify app.msi")
}

func TestInstallFlagsSkipPackageRead(t *testing.T) {
	orig := readPackageInfo
	t.Cleanup(func() { readPackageInfo = orig })
	readPackageInfo = func(string) (installer.PackageInfo, error) {
		t.Error("package read although every identity flag was given")
		return installer.PackageInfo{}, nil
	}

	_, _, err := runCLI(t, "install", "app.msi",
		"--product-code", "{11111111-1111-1111-1111-111111111111}",
		"--upgrade-code", "{44444444-4444-4444-4444-444444444444}",
		"--package-version", "2.1.0")
	assert.ErrorContains(t, err, "find related products")
}
