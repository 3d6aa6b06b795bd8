// Package project implements the directory-backed extension project kind.
//
// Recognition:
//
// A directory is a project iff it has a direct child named manifest.json.
// The file's content is never read.
//
// Capabilities:
//
// Every Project exposes a fixed, ordered set of capabilities through
// Lookup or the typed accessors:
//   - Information: live name, display name and the bundled icon
//   - LogicalView: decorates the host's tree node for the root
//   - ActionDispatcher: rename, move, copy and delete, delegated to the Host
//   - MoveOperation, CopyOperation, DeleteOperation: file classification and
//     the pre/post notifications around host I/O (rename uses MoveOperation)
//
// The set is built once per Project, on first access, and is identity-stable
// afterwards.
//
// Host SPI:
//
// The host supplies the default structural operations (Host), the generic
// tree node builder (view.NodeFactory) and, optionally, a hooks.Manager that
// receives every notification.
package project
