// Package mcp exposes the workspace to MCP clients.
//
// The server registers three tools over the go-sdk: project_scan lists the
// projects under the served root, project_inspect describes one project and
// project_invoke runs a structural command on it. Paths are resolved
// against the root and may not escape it. Failures are returned as tool
// errors so a bad call never takes the session down.
package mcp
