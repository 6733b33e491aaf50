package fswatcher

import (
	"github.com/fsnotify/fsnotify"

	"github.com/pynezz/pynezzentials/ansi"
)

// Watch blocks watching the given file and invokes onWrite every time
// it is modified. Run it in its own goroutine.
func Watch(file string, onWrite func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(file); err != nil {
		return err
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) {
				ansi.PrintInfo("Config file modified: " + event.Name)
				onWrite()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			ansi.PrintError("Config watcher error: " + err.Error())
		}
	}
}
