package config

import (
	"context"
	"path/filepath"

	"github.com/Kellerman81/go_portfolio_admin/apperrors"
	"github.com/Kellerman81/go_portfolio_admin/logger"
	"github.com/fsnotify/fsnotify"
)

// Watch reloads Configfile whenever it is written until ctx is done.
// onReload is called with the new snapshot after each successful reload.
// The directory is watched since editors replace files on save.
func Watch(ctx context.Context, onReload func(*ConfigSnapshot)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(Configfile)); err != nil {
		watcher.Close()
		return err
	}

	target := filepath.Clean(Configfile)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				cfg, err := Readconfigtoml()
				if err == nil {
					err = Apply(cfg)
				}
				if err != nil {
					apperrors.LogClassifiedError(logger.Logtype(logger.StatusError, 0),
						apperrors.Wrap(apperrors.ErrClassConfig, "reload", err)).
						Str(logger.StrFile, Configfile).
						Msg("Config reload failed, keeping previous settings")
					continue
				}
				logger.Logtype(logger.StatusInfo, 0).Str(logger.StrFile, Configfile).Msg("Config reloaded")
				if onReload != nil {
					onReload(getCurrentConfig())
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Logtype(logger.StatusWarning, 0).Err(err).Msg("Config watcher error")
			}
		}
	}()
	return nil
}
