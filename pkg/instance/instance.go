package instance

import "os"

// GetID returns the process instance identifier: the Heroku dyno name, the
// container hostname, or "local".
func GetID() string {
	for _, key := range []string{"DYNO", "INSTANCE_ID", "HOSTNAME"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	return "local"
}
