// Package hooks provides notification hooks around structural project
// operations.
//
// Every rename, move, copy and delete fires a pre hook before the host
// touches the filesystem (renaming, moving, copying, deleting) and a post
// hook once it is done (renamed, moved, copied, deleted). With no handlers
// registered a hook is a no-op.
package hooks
