package main

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"syscall"

	"ghosttab/logger"
)

type Config struct {
	NsID                   int    `json:"ns_id"`
	TextChangeDebounce     int    `json:"text_change_debounce"` // in milliseconds
	CompletionTimeout      int    `json:"completion_timeout"`   // in milliseconds
	MaxContextTokens       int    `json:"max_context_tokens"`
	ProviderURL            string `json:"provider_url"`
	ProviderModel          string `json:"provider_model"`
	ProviderAPIKey         string `json:"provider_api_key"`
	MaxCandidates          int    `json:"max_candidates"`
	DebugImmediateShutdown bool   `json:"debug_immediate_shutdown"`
	LogLevel               string `json:"log_level"` // trace, debug, info, warn, error
}

type ServerMode string

const (
	ModeDaemon ServerMode = "daemon"
	ModeClient ServerMode = "client"
)

// Setup logger to log to a file in the same directory as the executable.
// Caller must defer logger.Close()
func setupLogger(logLevel string) *logger.FileLogger {
	execPath, err := os.Executable()
	if err != nil {
		log.Fatalf("error getting executable path: %v", err)
	}
	logPath := filepath.Join(filepath.Dir(execPath), "ghosttab.log")

	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}

	fileLogger := logger.NewFileLogger(f, logger.ParseLevel(logLevel))
	log.SetOutput(fileLogger)
	return fileLogger
}

func getSocketPath() string {
	execPath, err := os.Executable()
	if err != nil {
		log.Fatalf("error getting executable path: %v", err)
	}
	return filepath.Join(filepath.Dir(execPath), "ghosttab.sock")
}

func getPidPath() string {
	execPath, err := os.Executable()
	if err != nil {
		log.Fatalf("error getting executable path: %v", err)
	}
	return filepath.Join(filepath.Dir(execPath), "ghosttab.pid")
}

func isDaemonRunning() (bool, int) {
	data, err := os.ReadFile(getPidPath())
	if err != nil {
		return false, 0
	}

	pid, err := strconv.Atoi(string(data))
	if err != nil {
		return false, 0
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false, 0
	}

	// On Unix, Signal(0) checks if the process exists
	err = process.Signal(syscall.Signal(0))
	return err == nil, pid
}

func loadConfig() Config {
	var config Config
	if err := json.Unmarshal([]byte(os.Getenv("GHOSTTAB_CONFIG")), &config); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	if config.TextChangeDebounce == 0 {
		config.TextChangeDebounce = 150
	}
	if config.CompletionTimeout == 0 {
		config.CompletionTimeout = 5000
	}

	log.Printf("config: %+v", config)
	return config
}

func runDaemon() {
	config := loadConfig()

	logLevel := config.LogLevel
	if logLevel == "" {
		logLevel = "info"
	}

	fileLogger := setupLogger(logLevel)
	defer fileLogger.Close()

	daemon, err := NewDaemon(config)
	if err != nil {
		log.Fatalf("error creating daemon: %v", err)
	}

	if err := daemon.Start(); err != nil {
		log.Fatalf("error starting daemon: %v", err)
	}
}

func runClient() {
	client := NewClient()

	if err := client.EnsureDaemonRunning(); err != nil {
		log.Fatalf("error ensuring daemon is running: %v", err)
	}

	if err := client.Connect(); err != nil {
		log.Fatalf("error connecting to daemon: %v", err)
	}
}

func main() {
	var mode ServerMode = ModeClient

	if len(os.Args) > 1 && os.Args[1] == "--daemon" {
		mode = ModeDaemon
	}

	switch mode {
	case ModeDaemon:
		runDaemon()
	case ModeClient:
		runClient()
	}
}
