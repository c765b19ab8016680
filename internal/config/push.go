package config

import (
	"encoding/base64"
	"os"
)

const (
	fcmProjectIDEnv       = "FCM_PROJECT_ID"
	fcmServiceAccountEnv  = "FCM_SERVICE_ACCOUNT_JSON"
	fcmServiceAccountB64E = "FCM_SERVICE_ACCOUNT_JSON_BASE64"
	notifyDryRunEnv       = "NOTIFY_DRY_RUN"
)

type PushConfig struct {
	ProjectID          string
	ServiceAccountJSON []byte
	DryRun             bool
}

func LoadPushConfig() *PushConfig {
	cfg := &PushConfig{
		ProjectID: os.Getenv(fcmProjectIDEnv),
		DryRun:    os.Getenv(notifyDryRunEnv) == "true",
	}

	if raw := os.Getenv(fcmServiceAccountEnv); raw != "" {
		cfg.ServiceAccountJSON = []byte(raw)
	} else if encoded := os.Getenv(fcmServiceAccountB64E); encoded != "" {
		if decoded, err := base64.StdEncoding.DecodeString(encoded); err == nil {
			cfg.ServiceAccountJSON = decoded
		}
	}

	return cfg
}
