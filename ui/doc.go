// Package ui shows a single-page progress window with a Cancel button.
//
//	w, err := ui.New(ui.WithTitle("Setup"), ui.WithTheme(ui.ThemeSystem))
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//	return w.Run(ctx, func(ctx context.Context) error {
//	    return installer.RunSteps(ctx, w, steps, log)
//	})
//
// Run must be called from the thread that owns the UI, usually main.
package ui
