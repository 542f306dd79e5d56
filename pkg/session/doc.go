// Package session drives one viewer session against the media backend.
//
// A Session runs searches for posts, profiles and highlight reels. For a
// profile it also owns the background work the backend expects from its
// client: resolving the first page of posts from the posts job, loading
// further pages when the end of the list becomes visible, polling the job
// status until the ZIP export is ready, and polling for highlights.
//
// Every search or reset starts a new generation. Work belonging to an
// older generation is cancelled and anything it still reports is dropped,
// so a slow answer for a previous profile can never leak into the current
// one.
//
//	s, err := session.New(client, session.DefaultOptions())
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
//	s.BindVisibility(session.AlwaysVisible{})
//	if err := s.Submit(ctx, "@nasa"); err != nil {
//		return err
//	}
//	st, err := s.WaitFor(ctx, func(st session.State) bool { return !st.HasMore() })
package session
