package instance

import "os"

// GetID identifies the running process in logs. Heroku-style DYNO wins over
// the container hostname.
func GetID() string {
	for _, key := range []string{"PAWFUND_INSTANCE_ID", "DYNO", "HOSTNAME"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	return "local"
}
