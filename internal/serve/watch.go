package serve

import (
	"github.com/charmbracelet/log"

	"github.com/fsnotify/fsnotify"
)

// WatchRcloneConfig warns when the rclone configuration file changes while
// servers are running: children read their configuration at startup, so
// edits only take effect on the next serve invocation.
//
// Returns a stop function releasing the watcher. Watch failures are logged
// and otherwise ignored — this is advisory only.
func WatchRcloneConfig(path string) (stop func()) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Debug("Config watch unavailable", "error", err)
		return func() {}
	}
	if err := watcher.Add(path); err != nil {
		log.Debug("Config watch unavailable", "path", path, "error", err)
		watcher.Close()
		return func() {}
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) {
					log.Warn("rclone config changed; running servers keep their startup configuration until restarted", "path", path)
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return func() { watcher.Close() }
}
