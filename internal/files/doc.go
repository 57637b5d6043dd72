// Package files resolves input arguments into file lists and manages the
// scratch workspaces that hold uploaded inputs while a transformation runs.
//
// Discovery accepts either a directory, which yields every .txt log in it
// regardless of the extension's case, or a glob pattern. Results are absolute,
// unique and sorted so batch output order is stable.
//
//	discovery := files.NewDiscovery(baseDir)
//	logs, err := discovery.FindLogFiles("Upload")
//
// Manager creates one Workspace per request; callers defer Remove so the
// directory never outlives the request.
//
//	ws, err := manager.NewWorkspace(ctx)
//	defer ws.Remove()
//	path, err := ws.Save(header.Filename, part, maxBytes)
package files
