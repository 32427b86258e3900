package logger

import "strings"

var levelNames = map[string]string{
	"debug":   "DEBUG",
	"info":    "INFO",
	"warn":    "WARN",
	"warning": "WARN",
	"error":   "ERROR",
}

var knownStatus = map[string]struct{}{
	"ok":        {},
	"fail":      {},
	"skip":      {},
	"retry":     {},
	"cancelled": {},
}

var knownOutcome = map[string]struct{}{
	"ok":        {},
	"fail":      {},
	"cancelled": {},
	"advanced":  {},
	"completed": {},
	"ignored":   {},
}

func normalizeLevel(level string) string {
	if level == "" {
		return "INFO"
	}
	if mapped, ok := levelNames[strings.ToLower(level)]; ok {
		return mapped
	}
	return strings.ToUpper(level)
}

// normalizeStatus lowercases status values; unknown values pass through unchanged.
func normalizeStatus(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	if _, ok := knownStatus[s]; ok {
		return s
	}
	return status
}

func normalizeOutcome(outcome string) (string, bool) {
	o := strings.ToLower(strings.TrimSpace(outcome))
	_, ok := knownOutcome[o]
	return o, ok
}

var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"chat_type",
	"handler",
	"outcome",
	"duration_ms",
	"messages",
	"stage",
	"answers",
	"lead_id",
	"leads",
	"admin_id",
	"admins",
	"delivered",
	"failed",
	"payload",
	"username",
	"mode",
	"listen",
	"public_url",
	"driver",
	"db",
	"host",
	"err",
	"err_code",
	"cause",
	"attempts",
}
