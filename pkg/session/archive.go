package session

import (
	"context"
	"errors"
	"io"

	errs "igloader/pkg/errors"
)

// ErrArchiveUnavailable is returned when no finished posts job exists or
// an archive download is already running
var ErrArchiveUnavailable = errors.New("session: profile archive not available")

// ArchiveName is the file name used for a profile's ZIP export
func ArchiveName(username string) string {
	return username + "_posts.zip"
}

// DownloadArchive streams the ZIP of the active profile's posts into w.
// It requires the posts job to have succeeded. Failures are also recorded
// as LoadMoreError, next to the grid.
func (s *Session) DownloadArchive(ctx context.Context, w io.Writer) (string, int64, error) {
	s.mu.Lock()
	profile, ok := s.state.Profile()
	if s.closed || !ok || profile.PostsTaskID == "" || !s.state.ArchiveAvailable() || s.state.DownloadingArchive {
		s.mu.Unlock()
		return "", 0, ErrArchiveUnavailable
	}
	gen := s.state.Generation
	taskID := profile.PostsTaskID
	name := ArchiveName(profile.Profile.Username)
	settings := s.settings
	s.state.DownloadingArchive = true
	s.state.LoadMoreError = ""
	s.commitAndUnlock()

	log := s.log.WithFields(map[string]interface{}{"task_id": taskID, "file": name})
	log.Info("downloading profile archive")

	n, err := s.backend.DownloadProfileArchive(ctx, taskID, settings, w)

	s.apply(gen, func(st *State) {
		st.DownloadingArchive = false
		if err != nil {
			st.LoadMoreError = errs.Message(err)
		}
	})
	if err != nil {
		log.WithError(err).Error("archive download failed")
		return name, n, err
	}

	log.WithField("bytes", n).Info("archive downloaded")
	return name, n, nil
}
