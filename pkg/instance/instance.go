package instance

import "github.com/angelmondragon/iotfarm-web/pkg/env"

// ID names the running process in logs. A Heroku-style DYNO wins over the explicit
// override.
func ID() string {
	return env.First("local", "DYNO", "IOTFARM_INSTANCE_ID")
}
