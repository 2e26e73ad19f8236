package common

import (
	"os"
	"strings"
	"time"
)

func LookupEnvBool(name string) (bool, bool) {
	if v, ok := os.LookupEnv(name); ok {
		if v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "Y") || strings.EqualFold(v, "Yes") {
			return true, true
		}
		if v == "0" || strings.EqualFold(v, "false") || strings.EqualFold(v, "N") || strings.EqualFold(v, "No") {
			return false, true
		}
	}
	return false, false
}

// LookupEnvDuration accepts Go duration strings ("90s") or plain seconds ("90").
func LookupEnvDuration(name string) (time.Duration, bool) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return 0, false
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d, true
	}
	if d, err := time.ParseDuration(v + "s"); err == nil {
		return d, true
	}
	return 0, false
}
