// Package workspace finds and tracks projects below a root directory.
//
// A Manager caches loaded projects by root path and keeps the cache in
// step with rename, move and delete notifications. A Scanner walks a tree
// and reports every project root it recognizes. A Watcher follows a root
// on the operating system filesystem and reports projects as they appear
// or vanish.
package workspace
