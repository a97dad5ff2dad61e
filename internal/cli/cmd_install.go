package cli

import (
	"pydo/internal/config"
)

// cmdInstall writes the default config file so users have something to
// edit. The task database itself is created lazily on first use.
func cmdInstall(o *IO, env map[string]string, args []string) error {
	if hasHelpFlag(args) {
		o.Println("Usage: pydo install")
		o.Println("")
		o.Println("Create the default config file under the XDG config directory.")

		return nil
	}

	path, err := config.WriteDefault(env)
	if err != nil {
		return err
	}

	o.Println("Wrote config to", path)

	return nil
}
