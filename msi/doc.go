// Package msi is a thin binding to the Windows Installer engine (msi.dll).
//
// It covers the handful of operations an installer front end needs:
//
//   - Install, advertise and remove products, and apply patches
//   - Read properties from a package before installing it
//   - Query product state and installed version
//   - Enumerate related products by upgrade code and applied patches
//   - Control the engine's internal UI level
//   - Route engine messages to an external handler such as progress.Relay
//   - Look up system error text for engine return codes
//
// On platforms other than Windows every engine call returns ErrUnsupported.
// GUID, InstallState, UILevel and Error are available everywhere.
//
// # Example Usage
//
//	relay := progress.NewRelay(func(f float64) { fmt.Printf("%.0f%%\n", f*100) })
//	restore, err := msi.SetExternalUI(relay, progress.DefaultLogMode)
//	if err != nil {
//	    return err
//	}
//	defer restore()
//
//	prev := msi.SetInternalUI(msi.UILevelNone)
//	defer msi.SetInternalUI(prev)
//
//	if err := msi.InstallProduct(`C:\pkg\app.msi`, "REBOOT=ReallySuppress"); err != nil {
//	    if !msi.IsRebootRequired(err) {
//	        return err
//	    }
//	}
package msi
