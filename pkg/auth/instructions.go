package auth

import (
	"fmt"
	"io"
	"strings"
)

// WriteSettingsGuide explains the backend settings and where they are kept
func WriteSettingsGuide(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w, "BACKEND SETTINGS")
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Every request to the backend carries an optional settings object.")
	fmt.Fprintln(w, "All fields are optional and are passed through unchanged:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "   proxy      host:port or host:port:user:pass")
	fmt.Fprintln(w, "   doc-id     GraphQL document id used by the backend for post lookups")
	fmt.Fprintln(w, "   username   account the backend signs in with")
	fmt.Fprintln(w, "   password   password for that account")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Settings are looked up in this order:")
	fmt.Fprintf(w, "   1. environment (%s, %s, %s, %s)\n", EnvProxy, EnvDocID, EnvUsername, EnvPassword)
	fmt.Fprintln(w, "   2. the system keychain, when one is available")
	fmt.Fprintf(w, "   3. an encrypted settings file (passphrase from %s or a generated file)\n", EnvPassphrase)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Save them with:  igloader settings set --proxy ... --username ...")
	fmt.Fprintln(w, "Inspect with:    igloader settings show")
	fmt.Fprintln(w, strings.Repeat("=", 72))
}

// QuickSettingsHint is a one-line reminder shown after a backend rejects a request
const QuickSettingsHint = "Backend settings: igloader settings set --help (proxy, doc-id, username, password)"
