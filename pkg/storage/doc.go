// Package storage provides file management for downloaded media.
//
// The storage package handles:
//   - Creating the output directory and optional per-user folders
//   - Saving media and profile archives with atomic writes
//   - Detecting files that were already downloaded
//
// Files are written to a temporary name and renamed into place, so an
// interrupted download never leaves a truncated file behind. Existing files
// are scanned on startup and kept in an in-memory index.
//
// Usage:
//
//	manager, err := storage.NewManager(cfg.Output)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if !manager.IsDownloaded("nasa", "Cx1_1.jpg") {
//	    path, err := manager.Save("nasa", "Cx1_1.jpg", body)
//	    if err != nil {
//	        log.Printf("Failed to save media: %v", err)
//	    }
//	}
//
// Streaming writes such as a profile ZIP use Create, then Commit or Abort.
package storage
