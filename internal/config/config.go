package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string

	// DB
	Env    string // "dev" | "prod"
	DBPath string // e.g. "./data/vaultaccess.db"

	// Image storage
	ImageDir     string
	ImageBaseURL string

	// Face comparison boundary
	FaceCompareURL     string
	FaceCompareToken   string
	FaceCompareTimeout time.Duration

	// PENDING reconciliation
	FacePendingMaxAge time.Duration // 0 = sweeper disabled
	SweepInterval     time.Duration

	// Repeated-failure anomaly alert
	FailedAttemptThreshold int // 0 = rule disabled
	FailedAttemptWindow    time.Duration
	AnomalyCooldown        time.Duration
}

func FromEnv() Config {
	addr := getenvDefault("VAULTACCESS_HTTP_ADDR", ":8080")

	env := strings.ToLower(getenvDefault("VAULTACCESS_ENV", "dev"))
	if env != "dev" && env != "prod" {
		// fail-soft: treat unknown as dev
		env = "dev"
	}

	return Config{
		HTTPAddr: addr,
		Env:      env,
		DBPath:   getenvDefault("VAULTACCESS_DB_PATH", "./data/vaultaccess.db"),

		ImageDir:     getenvDefault("VAULTACCESS_IMAGE_DIR", "./data/images"),
		ImageBaseURL: getenvDefault("VAULTACCESS_IMAGE_BASE_URL", "http://localhost:8080/images"),

		FaceCompareURL:     os.Getenv("VAULTACCESS_FACE_COMPARE_URL"),
		FaceCompareToken:   os.Getenv("VAULTACCESS_FACE_COMPARE_TOKEN"),
		FaceCompareTimeout: time.Duration(getenvInt("VAULTACCESS_FACE_COMPARE_TIMEOUT_S", 5)) * time.Second,

		FacePendingMaxAge: time.Duration(getenvInt("VAULTACCESS_FACE_PENDING_MAX_AGE_S", 60)) * time.Second,
		SweepInterval:     time.Duration(getenvInt("VAULTACCESS_SWEEP_INTERVAL_S", 30)) * time.Second,

		FailedAttemptThreshold: getenvInt("VAULTACCESS_FAILED_ATTEMPT_THRESHOLD", 5),
		FailedAttemptWindow:    time.Duration(getenvInt("VAULTACCESS_FAILED_ATTEMPT_WINDOW_MIN", 10)) * time.Minute,
		AnomalyCooldown:        time.Duration(getenvInt("VAULTACCESS_ANOMALY_COOLDOWN_MIN", 15)) * time.Minute,
	}
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
