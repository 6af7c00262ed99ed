package main

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/justyntemme/wtosc/pkg/debug"
	"github.com/justyntemme/wtosc/pkg/engine"
	"github.com/justyntemme/wtosc/pkg/wtfile"
)

// watchTable reloads the wavetable whenever the file changes, swapping
// it into the engine atomically. A malformed save is logged and the
// previous table keeps playing. Watches the parent directory because
// editors typically replace files by rename.
func watchTable(eng *engine.Engine, path string) (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}

	go func() {
		var pending *time.Timer
		reload := make(chan struct{}, 1)
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(path) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				// Debounce: editors fire several events per save.
				if pending == nil {
					pending = time.AfterFunc(100*time.Millisecond, func() {
						reload <- struct{}{}
					})
				} else {
					pending.Reset(100 * time.Millisecond)
				}
			case <-reload:
				table, err := wtfile.Load(path)
				if err != nil {
					debug.Error("reload %s: %v", path, err)
					continue
				}
				eng.SetTable(table)
				debug.Info("reloaded wavetable %s", path)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				debug.Error("watch: %v", err)
			}
		}
	}()
	return w, nil
}
